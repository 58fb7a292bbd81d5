package inmemorylivestore

import (
	"context"
	"sync"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
)

type versionDirectory struct {
	lock     sync.RWMutex
	versions map[string]domain.Version
}

func NewVersionDirectory() ports.VersionDirectory {
	return &versionDirectory{
		versions: make(map[string]domain.Version),
	}
}

func (m *versionDirectory) SupportedVersion(
	_ context.Context, dest domain.Location,
) (domain.Version, bool, error) {
	key, err := dest.Key()
	if err != nil {
		return 0, false, err
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	version, ok := m.versions[key]
	return version, ok, nil
}

func (m *versionDirectory) SetSupportedVersion(
	_ context.Context, dest domain.Location, version domain.Version,
) error {
	key, err := dest.Key()
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.versions[key] = version
	return nil
}

func (m *versionDirectory) Forget(_ context.Context, dest domain.Location) error {
	key, err := dest.Key()
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.versions, key)
	return nil
}
