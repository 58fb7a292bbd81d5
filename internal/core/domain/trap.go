package domain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain/wire"
	"golang.org/x/crypto/blake2b"
)

var ErrNotTrapped = errors.New("no trapped assets under hash")

// TrapRecord is a set of assets trapped from one origin. Count is the number
// of claims the record can still serve.
type TrapRecord struct {
	Hash      string
	Origin    Location
	Assets    Assets
	Count     uint32
	UpdatedAt int64
}

type TrapRepository interface {
	// Trap creates the record with count 1 or increments the count of an
	// existing record with the same hash.
	Trap(ctx context.Context, record TrapRecord) (*TrapRecord, error)
	// Claim consumes one unit of the record count, deleting the record when
	// it reaches zero. Unknown hashes fail with ErrNotTrapped.
	Claim(ctx context.Context, hash string) (*TrapRecord, error)
	Get(ctx context.Context, hash string) (*TrapRecord, error)
	List(ctx context.Context) ([]TrapRecord, error)
	Close()
}

// TrapHash is the blake2b-256 digest of the versioned origin followed by the
// versioned assets, both at the current version.
func TrapHash(origin Location, assets Assets) (string, error) {
	enc, err := wire.Marshal(NewVersionedLocation(origin))
	if err != nil {
		return "", fmt.Errorf("failed to encode origin: %w", err)
	}
	buf, err := wire.Marshal(NewVersionedAssets(assets))
	if err != nil {
		return "", fmt.Errorf("failed to encode assets: %w", err)
	}
	digest := blake2b.Sum256(append(enc, buf...))
	return hex.EncodeToString(digest[:]), nil
}

// NewTrapRecord builds a record for the assets with its hash computed.
func NewTrapRecord(origin Location, assets Assets, now int64) (TrapRecord, error) {
	hash, err := TrapHash(origin, assets)
	if err != nil {
		return TrapRecord{}, err
	}
	return TrapRecord{
		Hash: hash, Origin: origin, Assets: assets, Count: 1, UpdatedAt: now,
	}, nil
}

// EncodeTrapPayload returns the stored form of the origin and assets of a
// record.
func EncodeTrapPayload(r TrapRecord) (origin, assets []byte, err error) {
	if origin, err = wire.Marshal(r.Origin); err != nil {
		return nil, nil, err
	}
	if assets, err = wire.Marshal(r.Assets); err != nil {
		return nil, nil, err
	}
	return origin, assets, nil
}

func DecodeTrapPayload(origin, assets []byte) (Location, Assets, error) {
	var loc Location
	if err := wire.Unmarshal(origin, &loc); err != nil {
		return Location{}, nil, fmt.Errorf("failed to decode trap origin: %w", err)
	}
	var list Assets
	if err := wire.Unmarshal(assets, &list); err != nil {
		return Location{}, nil, fmt.Errorf("failed to decode trapped assets: %w", err)
	}
	return loc, list, nil
}
