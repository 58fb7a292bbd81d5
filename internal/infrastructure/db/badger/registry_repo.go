package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const registryStoreDir = "registry"

// registryEntry is keyed by local id. LocationKey holds the hex encoding of
// the location and is unique across entries.
type registryEntry struct {
	LocalId     uint32
	LocationKey string
}

type registryRepository struct {
	store *badgerhold.Store
}

func NewAssetRegistryRepository(config ...interface{}) (domain.AssetRegistryRepository, error) {
	store, err := openStore(config, registryStoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry store: %s", err)
	}
	return &registryRepository{store}, nil
}

func (r *registryRepository) Register(_ context.Context, entry domain.RegistryEntry) error {
	key, err := entry.Location.Key()
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}
	data := registryEntry{LocalId: entry.LocalId, LocationKey: key}

	return update(r.store, func(tx *badger.Txn) error {
		var existing registryEntry
		err := r.store.TxGet(tx, entry.LocalId, &existing)
		if err == nil {
			return domain.ErrLocalIdTaken
		}
		if !errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}

		var byLocation []registryEntry
		if err := r.store.TxFind(
			tx, &byLocation, badgerhold.Where("LocationKey").Eq(key),
		); err != nil {
			return err
		}
		if len(byLocation) > 0 {
			return domain.ErrLocationTaken
		}
		return r.store.TxInsert(tx, entry.LocalId, data)
	})
}

func (r *registryRepository) Unregister(
	_ context.Context, localId uint32,
) (*domain.RegistryEntry, error) {
	var removed registryEntry
	err := update(r.store, func(tx *badger.Txn) error {
		if err := r.store.TxGet(tx, localId, &removed); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrEntryNotFound
			}
			return err
		}
		return r.store.TxDelete(tx, localId, registryEntry{})
	})
	if err != nil {
		return nil, err
	}
	return removed.toDomain()
}

func (r *registryRepository) GetByLocalId(
	_ context.Context, localId uint32,
) (*domain.RegistryEntry, error) {
	var data registryEntry
	if err := r.store.Get(localId, &data); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registry entry: %w", err)
	}
	return data.toDomain()
}

func (r *registryRepository) GetByLocation(
	_ context.Context, location domain.Location,
) (*domain.RegistryEntry, error) {
	key, err := location.Key()
	if err != nil {
		return nil, fmt.Errorf("failed to encode location: %w", err)
	}
	var found []registryEntry
	if err := r.store.Find(&found, badgerhold.Where("LocationKey").Eq(key)); err != nil {
		return nil, fmt.Errorf("failed to find registry entry: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0].toDomain()
}

func (r *registryRepository) List(_ context.Context) ([]domain.RegistryEntry, error) {
	var found []registryEntry
	if err := r.store.Find(&found, (&badgerhold.Query{}).SortBy("LocalId")); err != nil {
		return nil, fmt.Errorf("failed to list registry entries: %w", err)
	}
	entries := make([]domain.RegistryEntry, 0, len(found))
	for _, data := range found {
		entry, err := data.toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (r *registryRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (e registryEntry) toDomain() (*domain.RegistryEntry, error) {
	loc, err := domain.LocationFromKey(e.LocationKey)
	if err != nil {
		return nil, err
	}
	return &domain.RegistryEntry{LocalId: e.LocalId, Location: loc}, nil
}
