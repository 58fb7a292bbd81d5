package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/domain/wire"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/arkade-os/xreserve/pkg/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// transfer debits the caller and enqueues a reserve transfer program
// towards the destination. Either both happen or the caller balance is left
// as it was.
func (s *service) transfer(ctx context.Context, req TransferRequest) (*TransferResult, errors.Error) {
	dest, err := req.Destination.Latest()
	if err != nil {
		return nil, errors.INVALID_LOCATION.Wrap(fmt.Errorf("invalid destination: %w", err))
	}
	beneficiary, err := req.Beneficiary.Latest()
	if err != nil {
		return nil, errors.INVALID_LOCATION.Wrap(fmt.Errorf("invalid beneficiary: %w", err))
	}
	if req.Amount == 0 {
		return nil, errors.INVALID_ASSETS.New("transfer amount must be greater than zero")
	}
	if req.Amount > math.MaxUint64-req.Fee {
		return nil, errors.INVALID_ASSETS.New("amount plus fee overflows")
	}
	total := req.Amount + req.Fee

	assetLocation, currency, txErr := s.transferAsset(ctx, req.Assets, total)
	if txErr != nil {
		return nil, txErr
	}

	version, ok, err := s.cache.Versions().SupportedVersion(ctx, dest)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to get version of %s: %w", dest, err))
	}
	if !ok {
		return nil, errors.UNREACHABLE_DESTINATION.New("no known version for %s", dest).
			WithMetadata(errors.DestinationMetadata{Destination: dest.String()})
	}

	messageId := uuid.New()
	program, err := buildTransferProgram(
		assetLocation, total, req.Fee, dest, reanchorBeneficiary(beneficiary, dest), messageId,
	)
	if err != nil {
		return nil, errors.INVALID_ASSETS.Wrap(err)
	}
	versioned, txErr := downgradeFor(program, dest, version)
	if txErr != nil {
		return nil, txErr
	}
	payload, err := wire.Marshal(versioned)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to encode program: %w", err))
	}

	balances := s.cache.Balances()
	if err := balances.Debit(ctx, req.Caller, currency, total); err != nil {
		if stderrors.Is(err, domain.ErrInsufficientBalance) {
			// nolint
			available, _ := balances.Balance(ctx, req.Caller, currency)
			return nil, errors.INSUFFICIENT_FUNDS.New(
				"%s holds %d %s, needs %d", req.Caller, available, currency, total,
			).WithMetadata(errors.BalanceMetadata{
				Account: req.Caller, Currency: currency, Requested: total, Available: available,
			})
		}
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to debit %s: %w", req.Caller, err))
	}

	msg := ports.OutboundMessage{
		Id:          messageId.String(),
		Destination: dest,
		Version:     versioned.Version,
		Payload:     payload,
	}
	if err := s.transport.Enqueue(ctx, msg); err != nil {
		if refundErr := s.rollback(ctx, req.Caller, currency, total, msg, err); refundErr != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf(
				"enqueue failed: %w, and refund of %d %s to %s failed: %w",
				err, total, currency, req.Caller, refundErr,
			))
		}
		return nil, errors.ENQUEUE_FAILED.Wrap(err).WithMetadata(errors.EnqueueMetadata{
			Destination: dest.String(), Account: req.Caller, Refunded: total,
		})
	}

	log.WithFields(log.Fields{
		"message":     msg.Id,
		"account":     req.Caller,
		"destination": dest.String(),
		"version":     versioned.Version,
	}).Infof("enqueued transfer of %d %s", req.Amount, currency)

	return &TransferResult{
		MessageId: msg.Id,
		Currency:  currency,
		Debited:   total,
		Program:   versioned,
	}, nil
}

// transferAsset resolves the location and balance currency of the asset
// being moved.
func (s *service) transferAsset(
	ctx context.Context, assets *domain.VersionedAssets, total uint64,
) (domain.Location, string, errors.Error) {
	if assets == nil {
		return s.cfg.NativeLocation, domain.NativeCurrency, nil
	}
	list, err := assets.Latest()
	if err != nil {
		return domain.Location{}, "", errors.INVALID_ASSETS.Wrap(err)
	}
	if len(list) == 0 {
		return s.cfg.NativeLocation, domain.NativeCurrency, nil
	}
	if len(list) != 1 {
		return domain.Location{}, "", errors.INVALID_ASSETS.New(
			"expected a single asset to transfer, got %d", len(list),
		)
	}

	asset := list[0]
	if !asset.IsFungible() {
		return domain.Location{}, "", errors.INVALID_ASSETS.New("asset %s is not fungible", asset.Id)
	}
	if asset.Fun.Amount != total {
		return domain.Location{}, "", errors.INVALID_ASSETS.New(
			"asset amount %d does not match amount plus fee %d", asset.Fun.Amount, total,
		)
	}
	if !asset.Id.IsConcrete() {
		return domain.Location{}, "", errors.UNRESOLVED_RESERVE.New(
			"abstract asset %s has no reserve", asset.Id,
		).WithMetadata(errors.ReserveMetadata{Asset: asset.Id.String()})
	}

	loc := asset.Id.Location
	if loc.Equal(s.cfg.NativeLocation) {
		return loc, domain.NativeCurrency, nil
	}
	if _, ok := domain.ChainPart(loc); !ok {
		return domain.Location{}, "", errors.UNRESOLVED_RESERVE.New(
			"cannot determine reserve of %s", loc,
		).WithMetadata(errors.ReserveMetadata{Asset: loc.String()})
	}
	currency, ok, _, lookupErr := s.registry.currencyOf(ctx, asset.Id, s.cfg.NativeLocation)
	if lookupErr != nil {
		return domain.Location{}, "", lookupErr
	}
	if !ok {
		return domain.Location{}, "", errors.NOT_REGISTERED.New("asset %s is not registered", loc).
			WithMetadata(errors.AssetIdMetadata{Location: loc.String()})
	}
	return loc, currency, nil
}

// rollback credits back exactly what was debited for a message the
// transport refused. The alert is only raised once the refund is credited.
func (s *service) rollback(
	ctx context.Context, account, currency string, amount uint64,
	msg ports.OutboundMessage, cause error,
) error {
	entry := log.WithFields(log.Fields{
		"message": msg.Id,
		"account": account,
	})
	if err := s.cache.Balances().Credit(ctx, account, currency, amount); err != nil {
		entry.WithError(err).Errorf("failed to refund %d %s", amount, currency)
		return err
	}
	entry.WithError(cause).Warnf("enqueue failed, refunded %d %s", amount, currency)
	s.metrics.rollback(ctx)

	s.onRolledBack(msg, account, currency, amount, cause)
	return nil
}

// reanchorBeneficiary expresses the beneficiary relative to dest when it is
// given as a path through dest. Any other beneficiary is taken as already
// relative to dest.
func reanchorBeneficiary(beneficiary, dest domain.Location) domain.Location {
	if rest, ok := beneficiary.StripPrefix(dest); ok && !rest.IsHere() {
		return rest
	}
	return beneficiary
}

func buildTransferProgram(
	asset domain.Location, total, fee uint64,
	dest, beneficiary domain.Location, messageId uuid.UUID,
) (domain.Program, error) {
	withdraw, err := domain.NewAssets(domain.NewFungibleAsset(asset, total))
	if err != nil {
		return nil, err
	}
	var topic [32]byte
	copy(topic[:], messageId[:])

	return domain.Program{
		domain.WithdrawAsset(withdraw),
		domain.BuyExecution(domain.NewFungibleAsset(asset, fee), domain.Unlimited()),
		domain.DepositReserveAsset(domain.AllCounted(1), dest, domain.Program{
			domain.DepositAsset(domain.AllCounted(1), beneficiary),
		}),
		domain.SetTopic(topic),
	}, nil
}

// downgradeFor maps conversion failures onto the transfer error kinds.
func downgradeFor(
	program domain.Program, dest domain.Location, version domain.Version,
) (domain.VersionedProgram, errors.Error) {
	versioned, err := domain.Downgrade(program, version)
	if err == nil {
		return versioned, nil
	}
	metadata := errors.DestinationMetadata{Destination: dest.String(), Version: uint8(version)}
	if stderrors.Is(err, domain.ErrUnsupportedVersion) {
		return domain.VersionedProgram{}, errors.UNREACHABLE_DESTINATION.Wrap(err).
			WithMetadata(metadata)
	}
	return domain.VersionedProgram{}, errors.UNSUPPORTED_VERSION.Wrap(err).WithMetadata(metadata)
}
