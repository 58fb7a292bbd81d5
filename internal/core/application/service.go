package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/domain/wire"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/arkade-os/xreserve/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultVersionRefreshInterval = time.Minute

type service struct {
	repoManager   ports.RepoManager
	cache         ports.LiveStore
	transport     ports.Transport
	inbox         ports.Inbox
	authority     ports.Authority
	scheduler     ports.SchedulerService
	alerts        ports.Alerts
	versionSource ports.VersionSource

	cfg Config

	registry *registry
	traps    *trapHandler
	metrics  *metrics

	// mu admits one public operation at a time over registry, balances and
	// trap ledger.
	mu sync.Mutex

	stop func()
	ctx  context.Context
	wg   *sync.WaitGroup
}

func NewService(
	repoManager ports.RepoManager,
	cache ports.LiveStore,
	transport ports.Transport,
	inbox ports.Inbox,
	authority ports.Authority,
	scheduler ports.SchedulerService,
	alerts ports.Alerts,
	versionSource ports.VersionSource,
	cfg Config,
) (Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if cache == nil {
		return nil, fmt.Errorf("missing live store")
	}
	if transport == nil {
		return nil, fmt.Errorf("missing transport")
	}
	if authority == nil {
		return nil, fmt.Errorf("missing authority")
	}
	if err := cfg.NativeLocation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid native location: %w", err)
	}
	if cfg.VersionRefreshInterval <= 0 {
		cfg.VersionRefreshInterval = defaultVersionRefreshInterval
	}

	metrics, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	reg := &registry{repo: repoManager.Registry(), authority: authority}
	svc := &service{
		repoManager:   repoManager,
		cache:         cache,
		transport:     transport,
		inbox:         inbox,
		authority:     authority,
		scheduler:     scheduler,
		alerts:        alerts,
		versionSource: versionSource,
		cfg:           cfg,
		registry:      reg,
		traps: &trapHandler{
			repo:           repoManager.Traps(),
			registry:       reg,
			nativeLocation: cfg.NativeLocation,
			cfg:            cfg.Trap,
			now:            func() int64 { return time.Now().Unix() },
		},
		metrics: metrics,
		stop:    cancel,
		ctx:     ctx,
		wg:      &sync.WaitGroup{},
	}
	return svc, nil
}

func (s *service) Start() errors.Error {
	if s.versionSource != nil {
		s.refreshVersions()
		if s.scheduler != nil {
			if err := s.scheduler.ScheduleEvery(
				s.cfg.VersionRefreshInterval, s.refreshVersions,
			); err != nil {
				return errors.INTERNAL_ERROR.Wrap(
					fmt.Errorf("failed to schedule version refresh: %w", err),
				)
			}
			s.scheduler.Start()
		}
	}

	if s.inbox != nil {
		log.Debug("starting inbox consumer...")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.inbox.Consume(s.ctx, s.handleInbound); err != nil {
				log.WithError(err).Error("inbox consumer stopped")
			}
		}()
	}
	return nil
}

func (s *service) Stop() {
	s.stop()
	s.wg.Wait()
	if s.scheduler != nil {
		s.scheduler.Stop()
		log.Debug("stopped scheduler")
	}
	if s.inbox != nil {
		if err := s.inbox.Close(); err != nil {
			log.WithError(err).Warn("failed to close inbox")
		}
	}
	if err := s.transport.Close(); err != nil {
		log.WithError(err).Warn("failed to close transport")
	}
	log.Debug("closed transport")
	s.repoManager.Close()
	log.Debug("closed connection to db")
}

func (s *service) RegisterAsset(
	ctx context.Context, caller string, localId uint32, location domain.Location,
) errors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.register(ctx, caller, localId, location); err != nil {
		return err
	}
	s.metrics.registryMutation(ctx, "register")
	return nil
}

func (s *service) UnregisterAsset(ctx context.Context, caller string, localId uint32) errors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.unregister(ctx, caller, localId); err != nil {
		return err
	}
	s.metrics.registryMutation(ctx, "unregister")
	return nil
}

func (s *service) ResolveLocation(
	ctx context.Context, localId uint32,
) (*domain.Location, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, _, err := s.registry.resolveLocation(ctx, localId)
	return loc, err
}

func (s *service) ResolveId(ctx context.Context, location domain.Location) (*uint32, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _, err := s.registry.resolveId(ctx, location)
	return id, err
}

func (s *service) ListAssets(ctx context.Context) ([]domain.RegistryEntry, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registry.list(ctx)
}

func (s *service) DropAssets(
	ctx context.Context, origin domain.Location, assets domain.Assets,
) (*TrapOutcome, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.traps.drop(ctx, origin, assets)
	if err != nil {
		return nil, err
	}
	s.onTrapped(ctx, outcome)
	return outcome, nil
}

func (s *service) ClaimAssets(
	ctx context.Context, origin domain.Location, assets domain.Assets,
) (domain.Assets, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.traps.claim(ctx, origin, assets)
}

func (s *service) TrappedAssets(ctx context.Context) ([]domain.TrapRecord, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.traps.list(ctx)
}

func (s *service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.transfer(ctx, req)
	outcome := "success"
	if err != nil {
		outcome = err.CodeName()
	}
	s.metrics.transfer(ctx, outcome)
	return res, err
}

func (s *service) Execute(
	ctx context.Context, origin domain.Location, program domain.VersionedProgram,
) ExecutionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.execute(ctx, origin, program)
}

func (s *service) Deposit(
	ctx context.Context, account, currency string, amount uint64,
) errors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == 0 {
		return errors.INVALID_ASSETS.New("deposit amount must be greater than zero")
	}
	if err := s.cache.Balances().Credit(ctx, account, currency, amount); err != nil {
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to credit %s: %w", account, err))
	}
	return nil
}

func (s *service) GetBalances(ctx context.Context, account string) (map[string]uint64, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balances, err := s.cache.Balances().Balances(ctx, account)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return balances, nil
}

func (s *service) SetDestinationVersion(
	ctx context.Context, dest domain.Location, version domain.Version,
) errors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !version.Supported() {
		return errors.UNSUPPORTED_VERSION.New("version %d is not supported", version).
			WithMetadata(errors.DestinationMetadata{
				Destination: dest.String(), Version: uint8(version),
			})
	}
	if err := s.cache.Versions().SetSupportedVersion(ctx, dest, version); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	return nil
}

func (s *service) refreshVersions() {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	versions, err := s.versionSource.Versions(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load destination versions")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range versions {
		if !v.Version.Supported() {
			log.Warnf("skipping unsupported version %d for %s", v.Version, v.Destination)
			continue
		}
		if err := s.cache.Versions().SetSupportedVersion(ctx, v.Destination, v.Version); err != nil {
			log.WithError(err).Warnf("failed to update version of %s", v.Destination)
		}
	}
	log.Debugf("refreshed %d destination versions", len(versions))
}

func (s *service) handleInbound(ctx context.Context, msg ports.InboundMessage) error {
	var program domain.VersionedProgram
	if err := wire.Unmarshal(msg.Payload, &program); err != nil {
		return fmt.Errorf("failed to decode program %s: %w", msg.Id, err)
	}

	outcome := s.Execute(ctx, msg.Origin, program)
	entry := log.WithFields(log.Fields{
		"message": msg.Id,
		"origin":  msg.Origin.String(),
		"weight":  outcome.Weight,
	})
	if outcome.Error != nil {
		entry.WithError(outcome.Error).Warn("inbound program failed")
		return nil
	}
	entry.Debugf("executed %d instructions", outcome.Executed)
	return nil
}
