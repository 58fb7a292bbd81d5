package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const trapStoreDir = "traps"

type trapRecord struct {
	Hash      string
	Origin    []byte
	Assets    []byte
	Count     uint32
	UpdatedAt int64
}

type trapRepository struct {
	store *badgerhold.Store
	lock  sync.Mutex
}

func NewTrapRepository(config ...interface{}) (domain.TrapRepository, error) {
	store, err := openStore(config, trapStoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open trap store: %s", err)
	}
	return &trapRepository{store: store}, nil
}

func (r *trapRepository) Trap(
	_ context.Context, record domain.TrapRecord,
) (*domain.TrapRecord, error) {
	origin, assets, err := domain.EncodeTrapPayload(record)
	if err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	var stored trapRecord
	err = update(r.store, func(tx *badger.Txn) error {
		stored = trapRecord{}
		err := r.store.TxGet(tx, record.Hash, &stored)
		switch {
		case errors.Is(err, badgerhold.ErrNotFound):
			stored = trapRecord{Hash: record.Hash, Origin: origin, Assets: assets}
		case err != nil:
			return err
		}
		stored.Count++
		stored.UpdatedAt = record.UpdatedAt
		return r.store.TxUpsert(tx, record.Hash, stored)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to trap assets: %w", err)
	}
	return stored.toDomain()
}

func (r *trapRepository) Claim(_ context.Context, hash string) (*domain.TrapRecord, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var stored trapRecord
	err := update(r.store, func(tx *badger.Txn) error {
		if err := r.store.TxGet(tx, hash, &stored); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrNotTrapped
			}
			return err
		}
		stored.Count--
		if stored.Count == 0 {
			return r.store.TxDelete(tx, hash, trapRecord{})
		}
		return r.store.TxUpdate(tx, hash, stored)
	})
	if err != nil {
		return nil, err
	}
	return stored.toDomain()
}

func (r *trapRepository) Get(_ context.Context, hash string) (*domain.TrapRecord, error) {
	var stored trapRecord
	if err := r.store.Get(hash, &stored); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trap record: %w", err)
	}
	return stored.toDomain()
}

func (r *trapRepository) List(_ context.Context) ([]domain.TrapRecord, error) {
	var found []trapRecord
	if err := r.store.Find(&found, (&badgerhold.Query{}).SortBy("Hash")); err != nil {
		return nil, fmt.Errorf("failed to list trap records: %w", err)
	}
	records := make([]domain.TrapRecord, 0, len(found))
	for _, stored := range found {
		record, err := stored.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (r *trapRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (t trapRecord) toDomain() (*domain.TrapRecord, error) {
	origin, assets, err := domain.DecodeTrapPayload(t.Origin, t.Assets)
	if err != nil {
		return nil, err
	}
	return &domain.TrapRecord{
		Hash:      t.Hash,
		Origin:    origin,
		Assets:    assets,
		Count:     t.Count,
		UpdatedAt: t.UpdatedAt,
	}, nil
}
