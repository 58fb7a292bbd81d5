package domain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/arkade-os/xreserve/internal/core/domain/wire"
)

// MaxAssets bounds the number of entries of an asset list on the wire.
const MaxAssets = 64

var ErrDuplicateAsset = errors.New("duplicate asset in asset list")

type AssetIdKind uint8

const (
	AssetIdConcrete AssetIdKind = 0
	AssetIdAbstract AssetIdKind = 1
)

// AssetId is either Concrete (a Location) or Abstract (an opaque 32-byte name).
type AssetId struct {
	Kind     AssetIdKind
	Location Location
	Abstract [32]byte
}

func ConcreteId(loc Location) AssetId {
	return AssetId{Kind: AssetIdConcrete, Location: loc}
}

func AbstractId(name []byte) AssetId {
	id := AssetId{Kind: AssetIdAbstract}
	copy(id.Abstract[:], name)
	return id
}

func (id AssetId) IsConcrete() bool {
	return id.Kind == AssetIdConcrete
}

func (id AssetId) Equal(o AssetId) bool {
	if id.Kind != o.Kind {
		return false
	}
	if id.Kind == AssetIdAbstract {
		return id.Abstract == o.Abstract
	}
	return id.Location.Equal(o.Location)
}

func (id AssetId) String() string {
	if id.Kind == AssetIdAbstract {
		return fmt.Sprintf("Abstract(%s)", hexString(bytes.TrimRight(id.Abstract[:], "\x00")))
	}
	return id.Location.String()
}

type InstanceKind uint8

const (
	InstanceUndefined InstanceKind = 0
	InstanceIndex     InstanceKind = 1
	InstanceArray4    InstanceKind = 2
	InstanceArray8    InstanceKind = 3
	InstanceArray16   InstanceKind = 4
	InstanceArray32   InstanceKind = 5
)

// AssetInstance names one item of a non-fungible class.
type AssetInstance struct {
	Kind  InstanceKind
	Index uint64
	Data  []byte
}

func (i AssetInstance) Equal(o AssetInstance) bool {
	return i.Kind == o.Kind && i.Index == o.Index && bytes.Equal(i.Data, o.Data)
}

func (k InstanceKind) dataLen() int {
	switch k {
	case InstanceArray4:
		return 4
	case InstanceArray8:
		return 8
	case InstanceArray16:
		return 16
	case InstanceArray32:
		return 32
	default:
		return 0
	}
}

type FungibilityKind uint8

const (
	Fungible    FungibilityKind = 0
	NonFungible FungibilityKind = 1
)

type Fungibility struct {
	Kind     FungibilityKind
	Amount   uint64
	Instance AssetInstance
}

func (f Fungibility) Equal(o Fungibility) bool {
	if f.Kind != o.Kind {
		return false
	}
	if f.Kind == Fungible {
		return f.Amount == o.Amount
	}
	return f.Instance.Equal(o.Instance)
}

type Asset struct {
	Id  AssetId
	Fun Fungibility
}

func NewFungibleAsset(loc Location, amount uint64) Asset {
	return Asset{Id: ConcreteId(loc), Fun: Fungibility{Kind: Fungible, Amount: amount}}
}

func NewNonFungibleAsset(id AssetId, instance AssetInstance) Asset {
	return Asset{Id: id, Fun: Fungibility{Kind: NonFungible, Instance: instance}}
}

func (a Asset) IsFungible() bool {
	return a.Fun.Kind == Fungible
}

func (a Asset) Equal(o Asset) bool {
	return a.Id.Equal(o.Id) && a.Fun.Equal(o.Fun)
}

func (a Asset) String() string {
	if a.IsFungible() {
		return fmt.Sprintf("%d of %s", a.Fun.Amount, a.Id)
	}
	return fmt.Sprintf("instance %v of %s", a.Fun.Instance, a.Id)
}

// Assets is an asset list with no duplicate ids, kept in canonical order so
// that equal lists have equal encodings.
type Assets []Asset

// NewAssets validates and sorts the given assets.
func NewAssets(list ...Asset) (Assets, error) {
	if len(list) > MaxAssets {
		return nil, fmt.Errorf("asset list exceeds %d entries", MaxAssets)
	}
	out := make(Assets, 0, len(list))
	for _, a := range list {
		if err := a.validate(); err != nil {
			return nil, err
		}
		for _, o := range out {
			if o.sameSlot(a) {
				return nil, ErrDuplicateAsset
			}
		}
		out = append(out, a)
	}
	out.sort()
	return out, nil
}

// sameSlot reports whether both assets would occupy the same entry of a
// list: fungibles of one id, or the same instance of one class.
func (a Asset) sameSlot(o Asset) bool {
	if !a.Id.Equal(o.Id) || a.Fun.Kind != o.Fun.Kind {
		return false
	}
	return a.Fun.Kind == Fungible || a.Fun.Instance.Equal(o.Fun.Instance)
}

// Key identifies the list entry of the asset.
func (a Asset) Key() (string, error) {
	if a.IsFungible() {
		buf, err := encodeAssetId(a.Id)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(append(buf, byte(Fungible))), nil
	}
	buf, err := wire.Marshal(a)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Find returns the fungible entry of id, or the first instance of the class.
func (as Assets) Find(id AssetId) (Asset, bool) {
	for _, a := range as {
		if a.Id.Equal(id) {
			return a, true
		}
	}
	return Asset{}, false
}

func (as Assets) Equal(o Assets) bool {
	if len(as) != len(o) {
		return false
	}
	for i := range as {
		if !as[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (as Assets) sort() {
	keys := make([][]byte, len(as))
	for i, a := range as {
		// the encoding cannot fail for validated assets
		key, _ := a.Key()
		keys[i], _ = hex.DecodeString(key)
	}
	sort.Sort(byKey{as, keys})
}

type byKey struct {
	assets Assets
	keys   [][]byte
}

func (b byKey) Len() int           { return len(b.assets) }
func (b byKey) Less(i, j int) bool { return bytes.Compare(b.keys[i], b.keys[j]) < 0 }
func (b byKey) Swap(i, j int) {
	b.assets[i], b.assets[j] = b.assets[j], b.assets[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

func (a Asset) validate() error {
	if a.Id.Kind == AssetIdConcrete {
		if err := a.Id.Location.Validate(); err != nil {
			return err
		}
	} else if a.Id.Kind != AssetIdAbstract {
		return fmt.Errorf("unknown asset id kind %d", a.Id.Kind)
	}
	switch a.Fun.Kind {
	case Fungible:
		if a.Fun.Amount == 0 {
			return errors.New("fungible asset with zero amount")
		}
	case NonFungible:
		if a.Fun.Instance.Kind > InstanceArray32 {
			return fmt.Errorf("unknown asset instance kind %d", a.Fun.Instance.Kind)
		}
		if want := a.Fun.Instance.Kind.dataLen(); len(a.Fun.Instance.Data) != want {
			return fmt.Errorf("asset instance data must be %d bytes", want)
		}
	default:
		return fmt.Errorf("unknown fungibility kind %d", a.Fun.Kind)
	}
	return nil
}
