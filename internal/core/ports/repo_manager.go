package ports

import "github.com/arkade-os/xreserve/internal/core/domain"

type RepoManager interface {
	Registry() domain.AssetRegistryRepository
	Traps() domain.TrapRepository
	Close()
}
