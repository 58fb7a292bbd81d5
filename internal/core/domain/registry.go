package domain

import (
	"context"
	"errors"
)

var (
	ErrLocalIdTaken  = errors.New("local id already registered")
	ErrLocationTaken = errors.New("location already registered")
	ErrEntryNotFound = errors.New("registry entry not found")
)

// RegistryEntry binds a local asset id to the canonical location of the
// asset. The registry is a bijection over entries.
type RegistryEntry struct {
	LocalId  uint32
	Location Location
}

type AssetRegistryRepository interface {
	// Register stores both directions of the entry in one transaction. It
	// fails with ErrLocalIdTaken or ErrLocationTaken when either side is
	// already mapped.
	Register(ctx context.Context, entry RegistryEntry) error
	// Unregister removes both directions and returns the removed entry, or
	// ErrEntryNotFound.
	Unregister(ctx context.Context, localId uint32) (*RegistryEntry, error)
	GetByLocalId(ctx context.Context, localId uint32) (*RegistryEntry, error)
	GetByLocation(ctx context.Context, location Location) (*RegistryEntry, error)
	List(ctx context.Context) ([]RegistryEntry, error)
	Close()
}
