package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/domain/wire"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/arkade-os/xreserve/pkg/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// execution is the state of one inbound program run.
type execution struct {
	svc     *service
	origin  *domain.Location
	holding *holding
	outcome *ExecutionOutcome
}

type ledgerEntry struct {
	currency string
	amount   uint64
}

// execute runs program on behalf of origin. Whatever is still held when
// the program stops, successfully or not, is trapped under origin.
func (s *service) execute(
	ctx context.Context, origin domain.Location, versioned domain.VersionedProgram,
) ExecutionOutcome {
	outcome := ExecutionOutcome{}
	program, err := versioned.Latest()
	if err != nil {
		outcome.Error = errors.UNSUPPORTED_VERSION.Wrap(err).
			WithMetadata(errors.DestinationMetadata{
				Destination: origin.String(), Version: uint8(versioned.Version),
			})
		return outcome
	}

	current := origin
	exec := &execution{svc: s, origin: &current, holding: newHolding(), outcome: &outcome}
	for _, in := range program {
		if err := exec.step(ctx, in); err != nil {
			outcome.Error = err
			log.WithError(err).WithField("origin", origin.String()).
				Debugf("program stopped at %s", in.Kind)
			break
		}
		outcome.Executed++
	}

	exec.trapLeftovers(ctx, origin)
	return outcome
}

func (e *execution) step(ctx context.Context, in domain.Instruction) errors.Error {
	switch in.Kind {
	case domain.InstrReserveAssetDeposited:
		origin, err := e.requireOrigin()
		if err != nil {
			return err
		}
		for _, asset := range in.Assets {
			if err := CheckReserve(asset, origin); err != nil {
				return err
			}
		}
		return e.hold(in.Assets)

	case domain.InstrReceiveTeleportedAsset:
		return errors.UNTRUSTED_RESERVE.New("teleported assets are not accepted")

	case domain.InstrWithdrawAsset:
		return e.withdraw(ctx, in.Assets)

	case domain.InstrClaimAsset:
		origin, err := e.requireOrigin()
		if err != nil {
			return err
		}
		if err := e.hold(in.Assets); err != nil {
			return err
		}
		if _, err := e.svc.traps.claim(ctx, origin, in.Assets); err != nil {
			e.release(in.Assets)
			return err
		}
		return nil

	case domain.InstrBuyExecution:
		if in.Fees.IsFungible() && in.Fees.Fun.Amount == 0 {
			return nil
		}
		if err := e.holding.subtract(in.Fees); err != nil {
			return errors.INSUFFICIENT_FUNDS.Wrap(err).WithMetadata(errors.BalanceMetadata{
				Account: "holding", Currency: in.Fees.Id.String(), Requested: in.Fees.Fun.Amount,
			})
		}
		return nil

	case domain.InstrDepositAsset:
		return e.deposit(ctx, in.Filter, in.Location)

	case domain.InstrDepositReserveAsset:
		return e.depositReserve(ctx, in.Filter, in.Location, in.Program)

	case domain.InstrClearOrigin:
		e.origin = nil
		return nil

	case domain.InstrSetTopic:
		topic := in.Topic
		e.outcome.Topic = &topic
		return nil

	default:
		return errors.BAD_ORIGIN.New("instruction %s is not supported", in.Kind)
	}
}

func (e *execution) requireOrigin() (domain.Location, errors.Error) {
	if e.origin == nil {
		return domain.Location{}, errors.BAD_ORIGIN.New("origin was cleared")
	}
	return *e.origin, nil
}

func (e *execution) hold(assets domain.Assets) errors.Error {
	if err := e.holding.addAll(assets); err != nil {
		return errors.INVALID_ASSETS.Wrap(err)
	}
	return nil
}

// entries maps assets onto balance entries, failing for assets that are
// not accounted locally.
func (e *execution) entries(ctx context.Context, assets domain.Assets) ([]ledgerEntry, errors.Error) {
	out := make([]ledgerEntry, 0, len(assets))
	for _, asset := range assets {
		if !asset.IsFungible() {
			return nil, errors.INVALID_ASSETS.New("non fungible asset %s cannot be accounted", asset.Id)
		}
		currency, ok, lookups, err := e.svc.registry.currencyOf(
			ctx, asset.Id, e.svc.cfg.NativeLocation,
		)
		e.outcome.Weight += uint64(lookups) * e.svc.cfg.Trap.LookupWeight
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NOT_REGISTERED.New("asset %s is not registered", asset.Id).
				WithMetadata(errors.AssetIdMetadata{Location: asset.Id.String()})
		}
		out = append(out, ledgerEntry{currency, asset.Fun.Amount})
	}
	return out, nil
}

func (e *execution) withdraw(ctx context.Context, assets domain.Assets) errors.Error {
	origin, err := e.requireOrigin()
	if err != nil {
		return err
	}
	account, ok := domain.AccountOf(origin)
	if !ok {
		return errors.BAD_ORIGIN.New("origin %s has no local account", origin).
			WithMetadata(errors.OriginMetadata{Caller: origin.String()})
	}
	entries, err := e.entries(ctx, assets)
	if err != nil {
		return err
	}
	if err := e.hold(assets); err != nil {
		return err
	}
	if err := e.svc.debitAll(ctx, account, entries); err != nil {
		e.release(assets)
		return err
	}
	return nil
}

func (e *execution) deposit(
	ctx context.Context, filter domain.AssetFilter, beneficiary domain.Location,
) errors.Error {
	assets, takeErr := e.holding.take(filter)
	if takeErr != nil {
		return errors.INVALID_ASSETS.Wrap(takeErr)
	}

	err := func() errors.Error {
		account, ok := domain.AccountOf(beneficiary)
		if !ok {
			return errors.INVALID_LOCATION.New("beneficiary %s has no local account", beneficiary).
				WithMetadata(errors.LocationMetadata{Location: beneficiary.String()})
		}
		entries, err := e.entries(ctx, assets)
		if err != nil {
			return err
		}
		return e.svc.creditAll(ctx, account, entries)
	}()
	if err != nil {
		e.putBack(assets)
	}
	return err
}

// depositReserve credits the sovereign account of dest and tells dest the
// assets were deposited, followed by the given program.
func (e *execution) depositReserve(
	ctx context.Context, filter domain.AssetFilter, dest domain.Location, program domain.Program,
) errors.Error {
	assets, takeErr := e.holding.take(filter)
	if takeErr != nil {
		return errors.INVALID_ASSETS.Wrap(takeErr)
	}

	err := func() errors.Error {
		sovereign, ok := domain.AccountOf(dest)
		if !ok {
			return errors.INVALID_LOCATION.New("destination %s has no sovereign account", dest).
				WithMetadata(errors.LocationMetadata{Location: dest.String()})
		}
		entries, err := e.entries(ctx, assets)
		if err != nil {
			return err
		}

		msg, err := e.svc.reserveMessage(ctx, assets, dest, program)
		if err != nil {
			return err
		}

		if err := e.svc.creditAll(ctx, sovereign, entries); err != nil {
			return err
		}
		if err := e.svc.transport.Enqueue(ctx, *msg); err != nil {
			if debitErr := e.svc.debitAll(ctx, sovereign, entries); debitErr != nil {
				log.WithError(debitErr).Errorf("failed to revert credit of %s", sovereign)
			}
			return errors.ENQUEUE_FAILED.Wrap(err).WithMetadata(errors.EnqueueMetadata{
				Destination: dest.String(), Account: sovereign,
			})
		}
		return nil
	}()
	if err != nil {
		e.putBack(assets)
	}
	return err
}

func (e *execution) putBack(assets domain.Assets) {
	if err := e.holding.addAll(assets); err != nil {
		log.WithError(err).Error("failed to restore holding")
	}
}

// release drops assets held for a step that did not complete.
func (e *execution) release(assets domain.Assets) {
	if err := e.holding.subtractAll(assets); err != nil {
		log.WithError(err).Error("failed to release holding")
	}
}

func (e *execution) trapLeftovers(ctx context.Context, origin domain.Location) {
	if e.holding.isEmpty() {
		return
	}
	leftovers, err := e.holding.assets()
	if err != nil {
		log.WithError(err).Error("failed to collect leftover assets")
		return
	}
	outcome, trapErr := e.svc.traps.drop(ctx, origin, leftovers)
	if trapErr != nil {
		trapErr.Log().WithError(trapErr).Error("failed to trap leftover assets")
		return
	}
	e.outcome.Weight += outcome.Weight
	e.outcome.Trapped = outcome.Record
	e.svc.onTrapped(ctx, outcome)
}

// reserveMessage builds the notification sent to dest for a reserve
// deposit, downgraded to the version dest understands.
func (s *service) reserveMessage(
	ctx context.Context, assets domain.Assets, dest domain.Location, program domain.Program,
) (*ports.OutboundMessage, errors.Error) {
	version, ok, err := s.cache.Versions().SupportedVersion(ctx, dest)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if !ok {
		return nil, errors.UNREACHABLE_DESTINATION.New("no known version for %s", dest).
			WithMetadata(errors.DestinationMetadata{Destination: dest.String()})
	}

	reanchored := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		if a.Id.IsConcrete() {
			loc, err := domain.Reanchor(a.Id.Location, dest, s.cfg.ChainId)
			if err != nil {
				return nil, errors.INVALID_LOCATION.Wrap(err).
					WithMetadata(errors.LocationMetadata{Location: a.Id.Location.String()})
			}
			a.Id = domain.ConcreteId(loc)
		}
		reanchored = append(reanchored, a)
	}
	deposited, err := domain.NewAssets(reanchored...)
	if err != nil {
		return nil, errors.INVALID_ASSETS.Wrap(err)
	}

	outbound := append(domain.Program{
		domain.ReserveAssetDeposited(deposited),
		domain.ClearOrigin(),
	}, program...)
	versioned, txErr := downgradeFor(outbound, dest, version)
	if txErr != nil {
		return nil, txErr
	}
	payload, err := wire.Marshal(versioned)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return &ports.OutboundMessage{
		Id:          uuid.NewString(),
		Destination: dest,
		Version:     versioned.Version,
		Payload:     payload,
	}, nil
}

// debitAll debits every entry or none of them.
func (s *service) debitAll(ctx context.Context, account string, entries []ledgerEntry) errors.Error {
	balances := s.cache.Balances()
	for i, en := range entries {
		err := balances.Debit(ctx, account, en.currency, en.amount)
		if err == nil {
			continue
		}
		for _, done := range entries[:i] {
			if creditErr := balances.Credit(ctx, account, done.currency, done.amount); creditErr != nil {
				log.WithError(creditErr).Errorf("failed to revert debit of %s", account)
			}
		}
		if stderrors.Is(err, domain.ErrInsufficientBalance) {
			// nolint
			available, _ := balances.Balance(ctx, account, en.currency)
			return errors.INSUFFICIENT_FUNDS.New(
				"%s holds %d %s, needs %d", account, available, en.currency, en.amount,
			).WithMetadata(errors.BalanceMetadata{
				Account: account, Currency: en.currency, Requested: en.amount, Available: available,
			})
		}
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to debit %s: %w", account, err))
	}
	return nil
}

// creditAll credits every entry or none of them.
func (s *service) creditAll(ctx context.Context, account string, entries []ledgerEntry) errors.Error {
	balances := s.cache.Balances()
	for i, en := range entries {
		err := balances.Credit(ctx, account, en.currency, en.amount)
		if err == nil {
			continue
		}
		for _, done := range entries[:i] {
			if debitErr := balances.Debit(ctx, account, done.currency, done.amount); debitErr != nil {
				log.WithError(debitErr).Errorf("failed to revert credit of %s", account)
			}
		}
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to credit %s: %w", account, err))
	}
	return nil
}
