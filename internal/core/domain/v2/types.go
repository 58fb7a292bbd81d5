// Package v2 holds the legacy (version 2) shapes of locations, assets and
// programs, kept for peers that have not announced support for newer
// versions.
package v2

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	MaxInteriorDepth = 8
	MaxNameLength    = 32
	MaxAssets        = 64
	MaxInstructions  = 100
)

var ErrInteriorTooDeep = fmt.Errorf("location interior exceeds %d junctions", MaxInteriorDepth)

type NetworkKind uint8

const (
	NetworkAny      NetworkKind = 0
	NetworkNamed    NetworkKind = 1
	NetworkPolkadot NetworkKind = 2
	NetworkKusama   NetworkKind = 3
)

type NetworkId struct {
	Kind NetworkKind
	Name []byte
}

func (n NetworkId) Equal(o NetworkId) bool {
	return n.Kind == o.Kind && bytes.Equal(n.Name, o.Name)
}

type JunctionKind uint8

const (
	JunctionParachain      JunctionKind = 0
	JunctionAccountId32    JunctionKind = 1
	JunctionAccountIndex64 JunctionKind = 2
	JunctionAccountKey20   JunctionKind = 3
	JunctionPalletInstance JunctionKind = 4
	JunctionGeneralIndex   JunctionKind = 5
	JunctionGeneralKey     JunctionKind = 6
	JunctionOnlyChild      JunctionKind = 7
)

// Junction mirrors the current junction shape, except account junctions
// always carry a network (NetworkAny when unspecified).
type Junction struct {
	Kind    JunctionKind
	Network NetworkId
	Index   uint64
	Key     []byte
}

func (j Junction) Equal(o Junction) bool {
	return j.Kind == o.Kind && j.Index == o.Index && bytes.Equal(j.Key, o.Key) &&
		j.Network.Equal(o.Network)
}

type Location struct {
	Parents  uint8
	Interior []Junction
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

type AssetIdKind uint8

const (
	AssetIdConcrete AssetIdKind = 0
	AssetIdAbstract AssetIdKind = 1
)

// AssetId names abstract assets with a variable-length byte string.
type AssetId struct {
	Kind     AssetIdKind
	Location Location
	Abstract []byte
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

type AssetInstance struct {
	Kind  InstanceKind
	Index uint64
	Data  []byte
}

type Asset struct {
	Id          AssetId
	NonFungible bool
	Amount      uint64
	Instance    AssetInstance
}

type Assets []Asset

// AssetFilter is either a definite list or the All wildcard.
type AssetFilter struct {
	Wild   bool
	Assets Assets
}

type InstructionKind uint8

const (
	InstrWithdrawAsset          InstructionKind = 0
	InstrReserveAssetDeposited  InstructionKind = 1
	InstrReceiveTeleportedAsset InstructionKind = 2
	InstrClearOrigin            InstructionKind = 10
	InstrDepositAsset           InstructionKind = 13
	InstrDepositReserveAsset    InstructionKind = 14
	InstrBuyExecution           InstructionKind = 19
	InstrClaimAsset             InstructionKind = 24
)

// Instruction payload fields follow the current shape; MaxAssets is used by
// the deposit instructions and WeightLimit (nil means unlimited) by
// BuyExecution.
type Instruction struct {
	Kind        InstructionKind
	Assets      Assets
	Filter      AssetFilter
	MaxAssets   uint32
	Location    Location
	Fees        Asset
	WeightLimit *uint64
	Program     Program
}

type Program []Instruction

var errUnknownKind = errors.New("unknown variant")

func checkDepth(l Location) error {
	if len(l.Interior) > MaxInteriorDepth {
		return ErrInteriorTooDeep
	}
	return nil
}
