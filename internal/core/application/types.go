package application

import (
	"context"
	"time"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/pkg/errors"
)

type Service interface {
	Start() errors.Error
	Stop()

	RegisterAsset(
		ctx context.Context, caller string, localId uint32, location domain.Location,
	) errors.Error
	UnregisterAsset(ctx context.Context, caller string, localId uint32) errors.Error
	ResolveLocation(ctx context.Context, localId uint32) (*domain.Location, errors.Error)
	ResolveId(ctx context.Context, location domain.Location) (*uint32, errors.Error)
	ListAssets(ctx context.Context) ([]domain.RegistryEntry, errors.Error)

	DropAssets(
		ctx context.Context, origin domain.Location, assets domain.Assets,
	) (*TrapOutcome, errors.Error)
	ClaimAssets(
		ctx context.Context, origin domain.Location, assets domain.Assets,
	) (domain.Assets, errors.Error)
	TrappedAssets(ctx context.Context) ([]domain.TrapRecord, errors.Error)

	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, errors.Error)
	Execute(
		ctx context.Context, origin domain.Location, program domain.VersionedProgram,
	) ExecutionOutcome

	Deposit(ctx context.Context, account, currency string, amount uint64) errors.Error
	GetBalances(ctx context.Context, account string) (map[string]uint64, errors.Error)
	SetDestinationVersion(
		ctx context.Context, dest domain.Location, version domain.Version,
	) errors.Error
}

type Config struct {
	// NativeLocation is where the chain's own asset lives, Here by default.
	NativeLocation domain.Location
	// ChainId is the local chain id under the shared parent, used to
	// re-anchor local assets sent to other chains.
	ChainId uint32
	Trap    TrapConfig

	VersionRefreshInterval time.Duration
}

// TrapConfig holds the calibration inputs of the trap fee policy.
type TrapConfig struct {
	MinBalance   uint64
	NativeRate   uint64
	FungibleRate uint64
	DefaultRate  uint64
	LookupWeight uint64
}

type TrapOutcome struct {
	// Weight accounts for the registry lookups and the flat default charge.
	Weight uint64
	// Charged is what the policy took from the dropped assets.
	Charged domain.Assets
	Trapped domain.Assets
	// Record is nil when nothing was left to trap.
	Record *domain.TrapRecord
}

type TransferRequest struct {
	Caller      string
	Destination domain.VersionedLocation
	Beneficiary domain.VersionedLocation
	Amount      uint64
	Fee         uint64
	// Assets optionally names the transferred asset; the native asset is
	// used when empty.
	Assets *domain.VersionedAssets
}

type TransferResult struct {
	MessageId string
	Currency  string
	Debited   uint64
	Program   domain.VersionedProgram
}

type ExecutionOutcome struct {
	Weight   uint64
	Executed int
	Topic    *[32]byte
	Trapped  *domain.TrapRecord
	Error    errors.Error
}
