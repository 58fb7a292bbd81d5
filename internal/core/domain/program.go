package domain

import "fmt"

// MaxInstructions bounds the length of a program on the wire.
const MaxInstructions = 100

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
	InstrUniversalOrigin        InstructionKind = 37
	InstrSetTopic               InstructionKind = 44
)

func (k InstructionKind) String() string {
	switch k {
	case InstrWithdrawAsset:
		return "WithdrawAsset"
	case InstrReserveAssetDeposited:
		return "ReserveAssetDeposited"
	case InstrReceiveTeleportedAsset:
		return "ReceiveTeleportedAsset"
	case InstrClearOrigin:
		return "ClearOrigin"
	case InstrDepositAsset:
		return "DepositAsset"
	case InstrDepositReserveAsset:
		return "DepositReserveAsset"
	case InstrBuyExecution:
		return "BuyExecution"
	case InstrClaimAsset:
		return "ClaimAsset"
	case InstrUniversalOrigin:
		return "UniversalOrigin"
	case InstrSetTopic:
		return "SetTopic"
	default:
		return fmt.Sprintf("Instruction(%d)", uint8(k))
	}
}

type Weight struct {
	RefTime   uint64
	ProofSize uint64
}

type WeightLimit struct {
	Unlimited bool
	Limit     Weight
}

func Unlimited() WeightLimit {
	return WeightLimit{Unlimited: true}
}

func Limited(w Weight) WeightLimit {
	return WeightLimit{Limit: w}
}

type WildKind uint8

const (
	WildAll        WildKind = 0
	WildAllCounted WildKind = 2
)

// AssetFilter selects assets out of holding: either a definite list or a
// wildcard (all, or all up to Count distinct assets).
type AssetFilter struct {
	Wild   bool
	Assets Assets
	Kind   WildKind
	Count  uint32
}

func Definite(assets Assets) AssetFilter {
	return AssetFilter{Assets: assets}
}

func All() AssetFilter {
	return AssetFilter{Wild: true, Kind: WildAll}
}

func AllCounted(n uint32) AssetFilter {
	return AssetFilter{Wild: true, Kind: WildAllCounted, Count: n}
}

// Instruction is one step of a program. Payload fields by kind:
//   - WithdrawAsset, ReserveAssetDeposited, ReceiveTeleportedAsset: Assets
//   - ClaimAsset: Assets, Location (ticket)
//   - BuyExecution: Fees, WeightLimit
//   - DepositAsset: Filter, Location (beneficiary)
//   - DepositReserveAsset: Filter, Location (destination), Program
//   - UniversalOrigin: Junction
//   - SetTopic: Topic
type Instruction struct {
	Kind        InstructionKind
	Assets      Assets
	Filter      AssetFilter
	Location    Location
	Fees        Asset
	WeightLimit WeightLimit
	Program     Program
	Junction    Junction
	Topic       [32]byte
}

type Program []Instruction

func WithdrawAsset(assets Assets) Instruction {
	return Instruction{Kind: InstrWithdrawAsset, Assets: assets}
}

func ReserveAssetDeposited(assets Assets) Instruction {
	return Instruction{Kind: InstrReserveAssetDeposited, Assets: assets}
}

func ReceiveTeleportedAsset(assets Assets) Instruction {
	return Instruction{Kind: InstrReceiveTeleportedAsset, Assets: assets}
}

func ClearOrigin() Instruction {
	return Instruction{Kind: InstrClearOrigin}
}

func BuyExecution(fees Asset, limit WeightLimit) Instruction {
	return Instruction{Kind: InstrBuyExecution, Fees: fees, WeightLimit: limit}
}

func DepositAsset(filter AssetFilter, beneficiary Location) Instruction {
	return Instruction{Kind: InstrDepositAsset, Filter: filter, Location: beneficiary}
}

func DepositReserveAsset(filter AssetFilter, dest Location, xcm Program) Instruction {
	return Instruction{Kind: InstrDepositReserveAsset, Filter: filter, Location: dest, Program: xcm}
}

func ClaimAsset(assets Assets, ticket Location) Instruction {
	return Instruction{Kind: InstrClaimAsset, Assets: assets, Location: ticket}
}

func UniversalOrigin(j Junction) Instruction {
	return Instruction{Kind: InstrUniversalOrigin, Junction: j}
}

func SetTopic(topic [32]byte) Instruction {
	return Instruction{Kind: InstrSetTopic, Topic: topic}
}
