package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/infrastructure/db/postgres/sqlc/queries"
	"github.com/lib/pq"
)

type registryRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewAssetRegistryRepository(config ...interface{}) (domain.AssetRegistryRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config: expected 1 argument, got %d", len(config))
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open registry repository: expected *sql.DB but got %T", config[0],
		)
	}
	return &registryRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *registryRepository) Register(ctx context.Context, entry domain.RegistryEntry) error {
	key, err := entry.Location.Key()
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}

	return execTx(ctx, r.db, func(querierWithTx *queries.Queries) error {
		_, err := querierWithTx.GetRegistryEntryByLocalId(ctx, int64(entry.LocalId))
		if err == nil {
			return domain.ErrLocalIdTaken
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		_, err = querierWithTx.GetRegistryEntryByLocation(ctx, key)
		if err == nil {
			return domain.ErrLocationTaken
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		return uniqueViolation(querierWithTx.InsertRegistryEntry(ctx, queries.InsertRegistryEntryParams{
			LocalID:     int64(entry.LocalId),
			LocationKey: key,
		}))
	})
}

// uniqueViolation maps a concurrent insert that lost the race on either
// side of the bijection to the matching sentinel.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}
	if strings.Contains(pqErr.Constraint, "location_key") {
		return domain.ErrLocationTaken
	}
	return domain.ErrLocalIdTaken
}

func (r *registryRepository) Unregister(
	ctx context.Context, localId uint32,
) (*domain.RegistryEntry, error) {
	var removed *domain.RegistryEntry
	err := execTx(ctx, r.db, func(querierWithTx *queries.Queries) error {
		entry, err := toRegistryEntry(
			querierWithTx.GetRegistryEntryByLocalId(ctx, int64(localId)),
		)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrEntryNotFound
		}
		if err := querierWithTx.DeleteRegistryEntry(ctx, int64(localId)); err != nil {
			return err
		}
		removed = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *registryRepository) GetByLocalId(
	ctx context.Context, localId uint32,
) (*domain.RegistryEntry, error) {
	return toRegistryEntry(r.querier.GetRegistryEntryByLocalId(ctx, int64(localId)))
}

func (r *registryRepository) GetByLocation(
	ctx context.Context, location domain.Location,
) (*domain.RegistryEntry, error) {
	key, err := location.Key()
	if err != nil {
		return nil, fmt.Errorf("failed to encode location: %w", err)
	}
	return toRegistryEntry(r.querier.GetRegistryEntryByLocation(ctx, key))
}

func (r *registryRepository) List(ctx context.Context) ([]domain.RegistryEntry, error) {
	rows, err := r.querier.ListRegistryEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry entries: %w", err)
	}

	entries := make([]domain.RegistryEntry, 0, len(rows))
	for _, row := range rows {
		loc, err := domain.LocationFromKey(row.LocationKey)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.RegistryEntry{LocalId: uint32(row.LocalID), Location: loc})
	}
	return entries, nil
}

func (r *registryRepository) Close() {
	_ = r.db.Close()
}

func toRegistryEntry(row queries.AssetRegistry, err error) (*domain.RegistryEntry, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registry entry: %w", err)
	}
	loc, err := domain.LocationFromKey(row.LocationKey)
	if err != nil {
		return nil, err
	}
	return &domain.RegistryEntry{LocalId: uint32(row.LocalID), Location: loc}, nil
}
