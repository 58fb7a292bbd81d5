package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type trapHandler struct {
	repo           domain.TrapRepository
	registry       *registry
	nativeLocation domain.Location
	cfg            TrapConfig
	now            func() int64
}

// drop charges each asset according to its shape and traps what is left
// under one record keyed by origin and the trapped list.
func (h *trapHandler) drop(
	ctx context.Context, origin domain.Location, assets domain.Assets,
) (*TrapOutcome, errors.Error) {
	outcome := &TrapOutcome{}
	charged := make([]domain.Asset, 0, len(assets))
	trapped := make([]domain.Asset, 0, len(assets))

	deduct := func(asset domain.Asset, fee uint64) {
		fee = min(fee, asset.Fun.Amount)
		if fee > 0 {
			charged = append(charged, domain.NewFungibleAsset(asset.Id.Location, fee))
		}
		if left := asset.Fun.Amount - fee; left > 0 {
			trapped = append(trapped, domain.NewFungibleAsset(asset.Id.Location, left))
		}
	}

	for _, asset := range assets {
		if asset.IsFungible() && asset.Id.IsConcrete() {
			if asset.Id.Location.Equal(h.nativeLocation) {
				if asset.Fun.Amount < h.cfg.MinBalance {
					charged = append(charged, asset)
					continue
				}
				deduct(asset, h.cfg.NativeRate)
				continue
			}

			localId, lookups, err := h.registry.resolveId(ctx, asset.Id.Location)
			outcome.Weight += uint64(lookups) * h.cfg.LookupWeight
			if err != nil {
				return nil, err
			}
			if localId != nil {
				if asset.Fun.Amount < h.cfg.MinBalance {
					charged = append(charged, asset)
					continue
				}
				deduct(asset, h.cfg.FungibleRate)
				continue
			}
		}

		outcome.Weight += h.cfg.DefaultRate
		trapped = append(trapped, asset)
	}

	var err error
	if outcome.Charged, err = domain.NewAssets(charged...); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if outcome.Trapped, err = domain.NewAssets(trapped...); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(outcome.Trapped) == 0 {
		return outcome, nil
	}

	record, err := domain.NewTrapRecord(origin, outcome.Trapped, h.now())
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	stored, err := h.repo.Trap(ctx, record)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to trap assets: %w", err))
	}
	outcome.Record = stored

	log.WithFields(log.Fields{
		"hash":   stored.Hash,
		"origin": origin.String(),
		"count":  stored.Count,
	}).Infof("trapped %d asset(s)", len(outcome.Trapped))
	return outcome, nil
}

// claim consumes one unit of the record matching origin and assets and
// returns the trapped list.
func (h *trapHandler) claim(
	ctx context.Context, origin domain.Location, assets domain.Assets,
) (domain.Assets, errors.Error) {
	hash, err := domain.TrapHash(origin, assets)
	if err != nil {
		return nil, errors.INVALID_ASSETS.Wrap(err)
	}

	record, err := h.repo.Claim(ctx, hash)
	if err != nil {
		if stderrors.Is(err, domain.ErrNotTrapped) {
			return nil, errors.NOT_TRAPPED.New("no assets trapped from %s under %s", origin, hash).
				WithMetadata(errors.TrapMetadata{Hash: hash})
		}
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to claim assets: %w", err))
	}

	log.WithFields(log.Fields{
		"hash":   hash,
		"origin": origin.String(),
		"left":   record.Count,
	}).Info("claimed trapped assets")
	return record.Assets, nil
}

func (h *trapHandler) list(ctx context.Context) ([]domain.TrapRecord, errors.Error) {
	records, err := h.repo.List(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return records, nil
}
