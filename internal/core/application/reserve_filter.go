package application

import (
	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/pkg/errors"
)

// AcceptsReserve reports whether origin is the reserve of asset, that is
// whether the chain part of the asset location equals origin exactly.
// Abstract assets carry no location and are always rejected.
func AcceptsReserve(asset domain.Asset, origin domain.Location) bool {
	return CheckReserve(asset, origin) == nil
}

// CheckReserve is AcceptsReserve reporting why the asset was rejected.
func CheckReserve(asset domain.Asset, origin domain.Location) errors.Error {
	metadata := errors.ReserveMetadata{Asset: asset.Id.String(), Origin: origin.String()}
	if !asset.Id.IsConcrete() {
		return errors.UNRESOLVED_RESERVE.New("abstract asset %s has no reserve", asset.Id).
			WithMetadata(metadata)
	}

	reserve, ok := domain.ChainPart(asset.Id.Location)
	if !ok {
		return errors.UNRESOLVED_RESERVE.New("cannot determine reserve of %s", asset.Id).
			WithMetadata(metadata)
	}
	if !reserve.Equal(origin) {
		return errors.UNTRUSTED_RESERVE.New(
			"reserve of %s is %s, not %s", asset.Id, reserve, origin,
		).WithMetadata(metadata)
	}
	return nil
}
