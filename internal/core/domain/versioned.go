package domain

import (
	"errors"
	"fmt"

	v2 "github.com/arkade-os/xreserve/internal/core/domain/v2"
	"github.com/arkade-os/xreserve/internal/core/domain/wire"
)

type Version uint8

const (
	V2 Version = 2
	V3 Version = 3

	CurrentVersion = V3
	MinimumVersion = V2
)

// defaultProofSize is assumed for weight limits coming from peers that only
// express reference time.
const defaultProofSize = 64 * 1024

var (
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
	// ErrUnsupported is returned when a value cannot be expressed in the
	// requested version.
	ErrUnsupported = errors.New("value not representable in target version")
	errEmptyEnvelope = errors.New("empty versioned envelope")
)

func (v Version) Supported() bool {
	return v >= MinimumVersion && v <= CurrentVersion
}

func checkVersion(v Version) error {
	if !v.Supported() {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return nil
}

// VersionedLocation carries a location in exactly one protocol version.
type VersionedLocation struct {
	Version Version
	V2      *v2.Location
	V3      *Location
}

func NewVersionedLocation(l Location) VersionedLocation {
	return VersionedLocation{Version: CurrentVersion, V3: &l}
}

// Latest returns the location in the current shape, upgrading if needed.
func (v VersionedLocation) Latest() (Location, error) {
	switch v.Version {
	case V3:
		if v.V3 == nil {
			return Location{}, errEmptyEnvelope
		}
		return *v.V3, nil
	case V2:
		if v.V2 == nil {
			return Location{}, errEmptyEnvelope
		}
		return locationFromV2(*v.V2)
	default:
		return Location{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v.Version)
	}
}

// Into re-expresses the location in the target version.
func (v VersionedLocation) Into(target Version) (VersionedLocation, error) {
	if err := checkVersion(target); err != nil {
		return VersionedLocation{}, err
	}
	latest, err := v.Latest()
	if err != nil {
		return VersionedLocation{}, err
	}
	if target == V3 {
		return NewVersionedLocation(latest), nil
	}
	legacy, err := locationToV2(latest)
	if err != nil {
		return VersionedLocation{}, err
	}
	return VersionedLocation{Version: V2, V2: &legacy}, nil
}

func (v VersionedLocation) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(v.Version)); err != nil {
		return err
	}
	switch {
	case v.Version == V3 && v.V3 != nil:
		return v.V3.Encode(enc)
	case v.Version == V2 && v.V2 != nil:
		return v.V2.Encode(enc)
	default:
		return errEmptyEnvelope
	}
}

func (v *VersionedLocation) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*v = VersionedLocation{Version: Version(tag)}
	switch v.Version {
	case V3:
		v.V3 = &Location{}
		return v.V3.Decode(dec)
	case V2:
		v.V2 = &v2.Location{}
		return v.V2.Decode(dec)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, tag)
	}
}

// VersionedAssets carries an asset list in exactly one protocol version.
type VersionedAssets struct {
	Version Version
	V2      v2.Assets
	V3      Assets
}

func NewVersionedAssets(as Assets) VersionedAssets {
	return VersionedAssets{Version: CurrentVersion, V3: as}
}

func (v VersionedAssets) Latest() (Assets, error) {
	switch v.Version {
	case V3:
		return v.V3, nil
	case V2:
		return assetsFromV2(v.V2)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v.Version)
	}
}

func (v VersionedAssets) Into(target Version) (VersionedAssets, error) {
	if err := checkVersion(target); err != nil {
		return VersionedAssets{}, err
	}
	latest, err := v.Latest()
	if err != nil {
		return VersionedAssets{}, err
	}
	if target == V3 {
		return NewVersionedAssets(latest), nil
	}
	legacy, err := assetsToV2(latest)
	if err != nil {
		return VersionedAssets{}, err
	}
	return VersionedAssets{Version: V2, V2: legacy}, nil
}

func (v VersionedAssets) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(v.Version)); err != nil {
		return err
	}
	switch v.Version {
	case V3:
		return v.V3.Encode(enc)
	case V2:
		return v.V2.Encode(enc)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v.Version)
	}
}

func (v *VersionedAssets) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*v = VersionedAssets{Version: Version(tag)}
	switch v.Version {
	case V3:
		return v.V3.Decode(dec)
	case V2:
		return v.V2.Decode(dec)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, tag)
	}
}

// VersionedProgram carries a program in exactly one protocol version.
type VersionedProgram struct {
	Version Version
	V2      v2.Program
	V3      Program
}

func NewVersionedProgram(p Program) VersionedProgram {
	return VersionedProgram{Version: CurrentVersion, V3: p}
}

func (v VersionedProgram) Latest() (Program, error) {
	switch v.Version {
	case V3:
		return v.V3, nil
	case V2:
		return programFromV2(v.V2)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v.Version)
	}
}

// Downgrade re-expresses a current program in the target version. It fails
// with ErrUnsupported when the program uses something the target version
// cannot express.
func Downgrade(p Program, target Version) (VersionedProgram, error) {
	if err := checkVersion(target); err != nil {
		return VersionedProgram{}, err
	}
	if target == V3 {
		return NewVersionedProgram(p), nil
	}
	legacy, err := programToV2(p)
	if err != nil {
		return VersionedProgram{}, err
	}
	return VersionedProgram{Version: V2, V2: legacy}, nil
}

func (v VersionedProgram) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(v.Version)); err != nil {
		return err
	}
	switch v.Version {
	case V3:
		return v.V3.Encode(enc)
	case V2:
		return v.V2.Encode(enc)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v.Version)
	}
}

func (v *VersionedProgram) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*v = VersionedProgram{Version: Version(tag)}
	switch v.Version {
	case V3:
		return v.V3.Decode(dec)
	case V2:
		return v.V2.Decode(dec)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, tag)
	}
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}
