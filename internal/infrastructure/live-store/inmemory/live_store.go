package inmemorylivestore

import "github.com/arkade-os/xreserve/internal/core/ports"

type liveStore struct {
	balances ports.BalanceStore
	versions ports.VersionDirectory
}

func NewLiveStore() ports.LiveStore {
	return &liveStore{
		balances: NewBalanceStore(),
		versions: NewVersionDirectory(),
	}
}

func (s *liveStore) Balances() ports.BalanceStore {
	return s.balances
}

func (s *liveStore) Versions() ports.VersionDirectory {
	return s.versions
}
