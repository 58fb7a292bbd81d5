package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/infrastructure/db/postgres/sqlc/queries"
)

type trapRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewTrapRepository(config ...interface{}) (domain.TrapRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config: expected 1 argument, got %d", len(config))
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open trap repository: expected *sql.DB but got %T", config[0],
		)
	}
	return &trapRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *trapRepository) Trap(
	ctx context.Context, record domain.TrapRecord,
) (*domain.TrapRecord, error) {
	origin, assets, err := domain.EncodeTrapPayload(record)
	if err != nil {
		return nil, err
	}

	var stored *domain.TrapRecord
	err = execTx(ctx, r.db, func(querierWithTx *queries.Queries) error {
		if err := querierWithTx.UpsertTrappedAsset(ctx, queries.UpsertTrappedAssetParams{
			Hash:      record.Hash,
			Origin:    origin,
			Assets:    assets,
			UpdatedAt: record.UpdatedAt,
		}); err != nil {
			return err
		}
		stored, err = toTrapRecord(querierWithTx.GetTrappedAsset(ctx, record.Hash))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to trap assets: %w", err)
	}
	return stored, nil
}

func (r *trapRepository) Claim(ctx context.Context, hash string) (*domain.TrapRecord, error) {
	var claimed *domain.TrapRecord
	err := execTx(ctx, r.db, func(querierWithTx *queries.Queries) error {
		record, err := toTrapRecord(querierWithTx.GetTrappedAssetForUpdate(ctx, hash))
		if err != nil {
			return err
		}
		if record == nil {
			return domain.ErrNotTrapped
		}

		if record.Count <= 1 {
			err = querierWithTx.DeleteTrappedAsset(ctx, hash)
		} else {
			err = querierWithTx.DecrementTrappedAsset(ctx, hash)
		}
		if err != nil {
			return err
		}
		record.Count--
		claimed = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *trapRepository) Get(ctx context.Context, hash string) (*domain.TrapRecord, error) {
	return toTrapRecord(r.querier.GetTrappedAsset(ctx, hash))
}

func (r *trapRepository) List(ctx context.Context) ([]domain.TrapRecord, error) {
	rows, err := r.querier.ListTrappedAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trap records: %w", err)
	}

	records := make([]domain.TrapRecord, 0, len(rows))
	for _, row := range rows {
		record, err := toTrapRecord(row, nil)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (r *trapRepository) Close() {
	_ = r.db.Close()
}

func toTrapRecord(row queries.TrappedAsset, err error) (*domain.TrapRecord, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trap record: %w", err)
	}
	loc, list, err := domain.DecodeTrapPayload(row.Origin, row.Assets)
	if err != nil {
		return nil, err
	}
	return &domain.TrapRecord{
		Hash:      row.Hash,
		Origin:    loc,
		Assets:    list,
		Count:     uint32(row.Count),
		UpdatedAt: row.UpdatedAt,
	}, nil
}
