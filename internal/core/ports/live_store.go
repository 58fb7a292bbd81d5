package ports

import (
	"context"

	"github.com/arkade-os/xreserve/internal/core/domain"
)

type LiveStore interface {
	Balances() BalanceStore
	Versions() VersionDirectory
}

// BalanceStore keeps per-account balances, one per currency. Debit and
// Credit are atomic at the ledger level.
type BalanceStore interface {
	Balance(ctx context.Context, account, currency string) (uint64, error)
	Balances(ctx context.Context, account string) (map[string]uint64, error)
	// Debit fails with domain.ErrInsufficientBalance leaving the balance
	// untouched.
	Debit(ctx context.Context, account, currency string, amount uint64) error
	Credit(ctx context.Context, account, currency string, amount uint64) error
}

// VersionDirectory records the last protocol version each destination
// announced support for.
type VersionDirectory interface {
	SupportedVersion(ctx context.Context, dest domain.Location) (domain.Version, bool, error)
	SetSupportedVersion(ctx context.Context, dest domain.Location, version domain.Version) error
	Forget(ctx context.Context, dest domain.Location) error
}

type DestinationVersion struct {
	Destination domain.Location
	Version     domain.Version
}

// VersionSource provides statically configured destination versions.
type VersionSource interface {
	Versions(ctx context.Context) ([]DestinationVersion, error)
}
