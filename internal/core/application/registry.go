package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/arkade-os/xreserve/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// registry guards the asset registry bijection behind the authority check.
// Lookups report the number of store reads they performed so callers can
// account weight for them.
type registry struct {
	repo      domain.AssetRegistryRepository
	authority ports.Authority
}

func (r *registry) register(
	ctx context.Context, caller string, localId uint32, location domain.Location,
) errors.Error {
	if !r.authority.IsPrivileged(ctx, caller) {
		return errors.BAD_ORIGIN.New("caller %s is not allowed to register assets", caller).
			WithMetadata(errors.OriginMetadata{Caller: caller})
	}
	if err := location.Validate(); err != nil {
		return errors.INVALID_LOCATION.Wrap(err).
			WithMetadata(errors.LocationMetadata{Location: location.String()})
	}

	metadata := errors.AssetIdMetadata{LocalId: localId, Location: location.String()}
	err := r.repo.Register(ctx, domain.RegistryEntry{LocalId: localId, Location: location})
	switch {
	case err == nil:
	case stderrors.Is(err, domain.ErrLocalIdTaken):
		return errors.ALREADY_REGISTERED.New("local id %d is already registered", localId).
			WithMetadata(metadata)
	case stderrors.Is(err, domain.ErrLocationTaken):
		return errors.ALREADY_REGISTERED.New("location %s is already registered", location).
			WithMetadata(metadata)
	default:
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to register asset: %w", err))
	}

	log.WithFields(log.Fields{
		"local_id": localId,
		"location": location.String(),
	}).Info("registered asset")
	return nil
}

func (r *registry) unregister(ctx context.Context, caller string, localId uint32) errors.Error {
	if !r.authority.IsPrivileged(ctx, caller) {
		return errors.BAD_ORIGIN.New("caller %s is not allowed to unregister assets", caller).
			WithMetadata(errors.OriginMetadata{Caller: caller})
	}

	entry, err := r.repo.Unregister(ctx, localId)
	if err != nil {
		if stderrors.Is(err, domain.ErrEntryNotFound) {
			return errors.NOT_REGISTERED.New("local id %d is not registered", localId).
				WithMetadata(errors.AssetIdMetadata{LocalId: localId})
		}
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to unregister asset: %w", err))
	}

	log.WithFields(log.Fields{
		"local_id": localId,
		"location": entry.Location.String(),
	}).Info("unregistered asset")
	return nil
}

func (r *registry) resolveLocation(
	ctx context.Context, localId uint32,
) (*domain.Location, int, errors.Error) {
	entry, err := r.repo.GetByLocalId(ctx, localId)
	if err != nil {
		return nil, 1, errors.INTERNAL_ERROR.Wrap(err)
	}
	if entry == nil {
		return nil, 1, nil
	}
	return &entry.Location, 1, nil
}

func (r *registry) resolveId(
	ctx context.Context, location domain.Location,
) (*uint32, int, errors.Error) {
	entry, err := r.repo.GetByLocation(ctx, location)
	if err != nil {
		return nil, 1, errors.INTERNAL_ERROR.Wrap(err)
	}
	if entry == nil {
		return nil, 1, nil
	}
	return &entry.LocalId, 1, nil
}

func (r *registry) list(ctx context.Context) ([]domain.RegistryEntry, errors.Error) {
	entries, err := r.repo.List(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return entries, nil
}

// currencyOf maps a concrete fungible asset to the balance currency it is
// accounted in. It reports false for assets that are neither native nor
// registered.
func (r *registry) currencyOf(
	ctx context.Context, id domain.AssetId, native domain.Location,
) (string, bool, int, errors.Error) {
	if !id.IsConcrete() {
		return "", false, 0, nil
	}
	if id.Location.Equal(native) {
		return domain.NativeCurrency, true, 0, nil
	}
	localId, lookups, err := r.resolveId(ctx, id.Location)
	if err != nil || localId == nil {
		return "", false, lookups, err
	}
	return domain.RegisteredCurrency(*localId), true, lookups, nil
}
