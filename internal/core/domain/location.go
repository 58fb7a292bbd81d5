package domain

import (
	"bytes"
	"errors"
	"fmt"
)

// MaxInteriorDepth is the maximum number of junctions a Location interior
// may hold on the wire.
const MaxInteriorDepth = 8

// MaxGeneralKeyLength bounds the payload of a GeneralKey junction.
const MaxGeneralKeyLength = 32

var ErrInteriorTooDeep = fmt.Errorf("location interior exceeds %d junctions", MaxInteriorDepth)

type NetworkKind uint8

const (
	NetworkByGenesis NetworkKind = 0
	NetworkPolkadot  NetworkKind = 2
	NetworkKusama    NetworkKind = 3
	NetworkWestend   NetworkKind = 4
	NetworkRococo    NetworkKind = 5
	NetworkEthereum  NetworkKind = 7
)

// NetworkId identifies a consensus system. Genesis is only meaningful for
// NetworkByGenesis and ChainId only for NetworkEthereum.
type NetworkId struct {
	Kind    NetworkKind
	Genesis [32]byte
	ChainId uint64
}

func Polkadot() *NetworkId { return &NetworkId{Kind: NetworkPolkadot} }
func Kusama() *NetworkId   { return &NetworkId{Kind: NetworkKusama} }

func Ethereum(chainId uint64) *NetworkId {
	return &NetworkId{Kind: NetworkEthereum, ChainId: chainId}
}

func (n NetworkId) Equal(o NetworkId) bool {
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case NetworkByGenesis:
		return n.Genesis == o.Genesis
	case NetworkEthereum:
		return n.ChainId == o.ChainId
	default:
		return true
	}
}

type JunctionKind uint8

const (
	JunctionParachain       JunctionKind = 0
	JunctionAccountId32     JunctionKind = 1
	JunctionAccountIndex64  JunctionKind = 2
	JunctionAccountKey20    JunctionKind = 3
	JunctionPalletInstance  JunctionKind = 4
	JunctionGeneralIndex    JunctionKind = 5
	JunctionGeneralKey      JunctionKind = 6
	JunctionOnlyChild       JunctionKind = 7
	JunctionGlobalConsensus JunctionKind = 9
)

// Junction is one named step of a Location interior. Which payload fields
// are meaningful depends on Kind:
//   - Parachain, PalletInstance, GeneralIndex, AccountIndex64: Index
//   - AccountId32 (32 bytes), AccountKey20 (20 bytes), GeneralKey: Key
//   - account kinds: optional Network
//   - GlobalConsensus: Network (required)
type Junction struct {
	Kind    JunctionKind
	Network *NetworkId
	Index   uint64
	Key     []byte
}

func Parachain(id uint32) Junction {
	return Junction{Kind: JunctionParachain, Index: uint64(id)}
}

func AccountId32(network *NetworkId, id [32]byte) Junction {
	return Junction{Kind: JunctionAccountId32, Network: network, Key: id[:]}
}

func AccountIndex64(network *NetworkId, index uint64) Junction {
	return Junction{Kind: JunctionAccountIndex64, Network: network, Index: index}
}

func AccountKey20(network *NetworkId, key [20]byte) Junction {
	return Junction{Kind: JunctionAccountKey20, Network: network, Key: key[:]}
}

func PalletInstance(index uint8) Junction {
	return Junction{Kind: JunctionPalletInstance, Index: uint64(index)}
}

func GeneralIndex(index uint64) Junction {
	return Junction{Kind: JunctionGeneralIndex, Index: index}
}

func GeneralKey(key []byte) Junction {
	return Junction{Kind: JunctionGeneralKey, Key: append([]byte(nil), key...)}
}

func OnlyChild() Junction {
	return Junction{Kind: JunctionOnlyChild}
}

func GlobalConsensus(network NetworkId) Junction {
	return Junction{Kind: JunctionGlobalConsensus, Network: &network}
}

// IsChain reports whether the junction identifies a chain.
func (j Junction) IsChain() bool {
	return j.Kind == JunctionParachain
}

func (j Junction) Equal(o Junction) bool {
	if j.Kind != o.Kind || j.Index != o.Index || !bytes.Equal(j.Key, o.Key) {
		return false
	}
	if (j.Network == nil) != (o.Network == nil) {
		return false
	}
	return j.Network == nil || j.Network.Equal(*o.Network)
}

func (j Junction) validate() error {
	switch j.Kind {
	case JunctionParachain:
		if j.Index > uint64(^uint32(0)) {
			return fmt.Errorf("parachain id %d overflows u32", j.Index)
		}
	case JunctionPalletInstance:
		if j.Index > 255 {
			return fmt.Errorf("pallet instance %d overflows u8", j.Index)
		}
	case JunctionAccountId32:
		if len(j.Key) != 32 {
			return fmt.Errorf("account id must be 32 bytes, got %d", len(j.Key))
		}
	case JunctionAccountKey20:
		if len(j.Key) != 20 {
			return fmt.Errorf("account key must be 20 bytes, got %d", len(j.Key))
		}
	case JunctionGeneralKey:
		if len(j.Key) > MaxGeneralKeyLength {
			return fmt.Errorf("general key exceeds %d bytes", MaxGeneralKeyLength)
		}
	case JunctionGlobalConsensus:
		if j.Network == nil {
			return errors.New("global consensus junction without network")
		}
	case JunctionAccountIndex64, JunctionGeneralIndex, JunctionOnlyChild:
	default:
		return fmt.Errorf("unknown junction kind %d", j.Kind)
	}
	return nil
}

// Location is a relative path: climb Parents levels, then descend through
// Interior. The zero value is Here.
type Location struct {
	Parents  uint8
	Interior []Junction
}

// NewLocation builds a Location, refusing malformed junctions and interiors
// deeper than MaxInteriorDepth.
func NewLocation(parents uint8, interior ...Junction) (Location, error) {
	if len(interior) > MaxInteriorDepth {
		return Location{}, ErrInteriorTooDeep
	}
	for _, j := range interior {
		if err := j.validate(); err != nil {
			return Location{}, err
		}
	}
	return Location{Parents: parents, Interior: cloneJunctions(interior)}, nil
}

// Here is the local root.
func Here() Location {
	return Location{}
}

// ParentLocation is the relay/parent chain seen from a child.
func ParentLocation() Location {
	return Location{Parents: 1}
}

// SiblingChain is a chain sharing our parent.
func SiblingChain(id uint32) Location {
	return Location{Parents: 1, Interior: []Junction{Parachain(id)}}
}

// First peeks at the outermost interior junction.
func (l Location) First() (Junction, bool) {
	if len(l.Interior) == 0 {
		return Junction{}, false
	}
	return l.Interior[0], true
}

// TakeFirst splits off the outermost interior junction, returning it and the
// shrunk location.
func (l Location) TakeFirst() (Junction, Location, bool) {
	if len(l.Interior) == 0 {
		return Junction{}, l, false
	}
	rest := Location{Parents: l.Parents, Interior: cloneJunctions(l.Interior[1:])}
	return l.Interior[0], rest, true
}

func (l Location) IsHere() bool {
	return l.Parents == 0 && len(l.Interior) == 0
}

func (l Location) Equal(o Location) bool {
	if l.Parents != o.Parents || len(l.Interior) != len(o.Interior) {
		return false
	}
	for i := range l.Interior {
		if !l.Interior[i].Equal(o.Interior[i]) {
			return false
		}
	}
	return true
}

// Append returns a new location with junctions pushed at the inner end.
func (l Location) Append(junctions ...Junction) (Location, error) {
	interior := make([]Junction, 0, len(l.Interior)+len(junctions))
	interior = append(interior, l.Interior...)
	interior = append(interior, junctions...)
	return NewLocation(l.Parents, interior...)
}

// StripPrefix removes prefix from the start of l. It reports false when
// prefix does not share l's parents or is not a leading subpath of l.
func (l Location) StripPrefix(prefix Location) (Location, bool) {
	if l.Parents != prefix.Parents || len(prefix.Interior) > len(l.Interior) {
		return Location{}, false
	}
	for i := range prefix.Interior {
		if !l.Interior[i].Equal(prefix.Interior[i]) {
			return Location{}, false
		}
	}
	return Location{Interior: cloneJunctions(l.Interior[len(prefix.Interior):])}, true
}

func (l Location) Validate() error {
	_, err := NewLocation(l.Parents, l.Interior...)
	return err
}

func cloneJunctions(js []Junction) []Junction {
	if len(js) == 0 {
		return nil
	}
	out := make([]Junction, len(js))
	for i, j := range js {
		out[i] = j
		if j.Key != nil {
			out[i].Key = append([]byte(nil), j.Key...)
		}
		if j.Network != nil {
			n := *j.Network
			out[i].Network = &n
		}
	}
	return out
}
