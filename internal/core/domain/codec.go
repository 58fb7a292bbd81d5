package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain/wire"
)

// maxProgramNesting bounds how deep programs may embed other programs
// (DepositReserveAsset) when decoding.
const maxProgramNesting = 8

func (n NetworkId) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(n.Kind)); err != nil {
		return err
	}
	switch n.Kind {
	case NetworkByGenesis:
		return wire.PutFixed(enc, n.Genesis[:])
	case NetworkEthereum:
		return wire.PutCompact(enc, n.ChainId)
	case NetworkPolkadot, NetworkKusama, NetworkWestend, NetworkRococo:
		return nil
	default:
		return fmt.Errorf("unknown network kind %d", n.Kind)
	}
}

func (n *NetworkId) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*n = NetworkId{Kind: NetworkKind(tag)}
	switch n.Kind {
	case NetworkByGenesis:
		genesis, err := wire.Fixed(dec, 32)
		if err != nil {
			return err
		}
		copy(n.Genesis[:], genesis)
	case NetworkEthereum:
		if n.ChainId, err = wire.Compact(dec); err != nil {
			return err
		}
	case NetworkPolkadot, NetworkKusama, NetworkWestend, NetworkRococo:
	default:
		return fmt.Errorf("unsupported network tag %d", tag)
	}
	return nil
}

func encodeOptionalNetwork(enc wire.Encoder, n *NetworkId) error {
	return wire.PutOption(enc, n != nil, func() error { return n.Encode(enc) })
}

func decodeOptionalNetwork(dec wire.Decoder) (*NetworkId, error) {
	var n NetworkId
	present, err := wire.Option(dec, func() error { return n.Decode(dec) })
	if err != nil || !present {
		return nil, err
	}
	return &n, nil
}

func (j Junction) Encode(enc wire.Encoder) error {
	if err := j.validate(); err != nil {
		return err
	}
	if err := wire.PutByte(enc, byte(j.Kind)); err != nil {
		return err
	}
	switch j.Kind {
	case JunctionParachain, JunctionGeneralIndex:
		return wire.PutCompact(enc, j.Index)
	case JunctionPalletInstance:
		return wire.PutByte(enc, byte(j.Index))
	case JunctionAccountId32, JunctionAccountKey20:
		if err := encodeOptionalNetwork(enc, j.Network); err != nil {
			return err
		}
		return wire.PutFixed(enc, j.Key)
	case JunctionAccountIndex64:
		if err := encodeOptionalNetwork(enc, j.Network); err != nil {
			return err
		}
		return wire.PutCompact(enc, j.Index)
	case JunctionGeneralKey:
		// fixed 32-byte buffer with an explicit length
		var data [32]byte
		copy(data[:], j.Key)
		if err := wire.PutByte(enc, byte(len(j.Key))); err != nil {
			return err
		}
		return wire.PutFixed(enc, data[:])
	case JunctionOnlyChild:
		return nil
	case JunctionGlobalConsensus:
		return j.Network.Encode(enc)
	}
	return nil
}

func (j *Junction) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*j = Junction{Kind: JunctionKind(tag)}
	switch j.Kind {
	case JunctionParachain:
		if j.Index, err = wire.Compact(dec); err != nil {
			return err
		}
	case JunctionGeneralIndex:
		if j.Index, err = wire.Compact(dec); err != nil {
			return err
		}
	case JunctionPalletInstance:
		b, err := wire.Byte(dec)
		if err != nil {
			return err
		}
		j.Index = uint64(b)
	case JunctionAccountId32, JunctionAccountKey20:
		if j.Network, err = decodeOptionalNetwork(dec); err != nil {
			return err
		}
		size := 32
		if j.Kind == JunctionAccountKey20 {
			size = 20
		}
		if j.Key, err = wire.Fixed(dec, size); err != nil {
			return err
		}
	case JunctionAccountIndex64:
		if j.Network, err = decodeOptionalNetwork(dec); err != nil {
			return err
		}
		if j.Index, err = wire.Compact(dec); err != nil {
			return err
		}
	case JunctionGeneralKey:
		length, err := wire.Byte(dec)
		if err != nil {
			return err
		}
		data, err := wire.Fixed(dec, 32)
		if err != nil {
			return err
		}
		if int(length) > MaxGeneralKeyLength {
			return fmt.Errorf("general key length %d exceeds %d", length, MaxGeneralKeyLength)
		}
		j.Key = data[:length]
	case JunctionOnlyChild:
	case JunctionGlobalConsensus:
		var n NetworkId
		if err := n.Decode(dec); err != nil {
			return err
		}
		j.Network = &n
	default:
		return fmt.Errorf("unsupported junction tag %d", tag)
	}
	return j.validate()
}

// Encode writes parents followed by the interior, whose variant index is
// its length (Here = 0, X1..X8).
func (l Location) Encode(enc wire.Encoder) error {
	if len(l.Interior) > MaxInteriorDepth {
		return ErrInteriorTooDeep
	}
	if err := wire.PutByte(enc, l.Parents); err != nil {
		return err
	}
	if err := wire.PutByte(enc, byte(len(l.Interior))); err != nil {
		return err
	}
	for _, j := range l.Interior {
		if err := j.Encode(enc); err != nil {
			return err
		}
	}
	return nil
}

func (l *Location) Decode(dec wire.Decoder) error {
	parents, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	depth, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	if depth > MaxInteriorDepth {
		return ErrInteriorTooDeep
	}
	*l = Location{Parents: parents}
	if depth == 0 {
		return nil
	}
	l.Interior = make([]Junction, depth)
	for i := range l.Interior {
		if err := l.Interior[i].Decode(dec); err != nil {
			return err
		}
	}
	return nil
}

// Key is a stable textual key for the location, suitable for storage
// indexes.
func (l Location) Key() (string, error) {
	buf, err := wire.Marshal(l)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// LocationFromKey is the inverse of Location.Key.
func LocationFromKey(key string) (Location, error) {
	buf, err := hex.DecodeString(key)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location key: %w", err)
	}
	var l Location
	if err := wire.Unmarshal(buf, &l); err != nil {
		return Location{}, fmt.Errorf("invalid location key: %w", err)
	}
	return l, nil
}

func (id AssetId) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(id.Kind)); err != nil {
		return err
	}
	switch id.Kind {
	case AssetIdConcrete:
		return id.Location.Encode(enc)
	case AssetIdAbstract:
		return wire.PutFixed(enc, id.Abstract[:])
	default:
		return fmt.Errorf("unknown asset id kind %d", id.Kind)
	}
}

func (id *AssetId) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*id = AssetId{Kind: AssetIdKind(tag)}
	switch id.Kind {
	case AssetIdConcrete:
		return id.Location.Decode(dec)
	case AssetIdAbstract:
		name, err := wire.Fixed(dec, 32)
		if err != nil {
			return err
		}
		copy(id.Abstract[:], name)
		return nil
	default:
		return fmt.Errorf("unsupported asset id tag %d", tag)
	}
}

func encodeAssetId(id AssetId) ([]byte, error) {
	return wire.Marshal(id)
}

func (i AssetInstance) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(i.Kind)); err != nil {
		return err
	}
	switch i.Kind {
	case InstanceUndefined:
		return nil
	case InstanceIndex:
		return wire.PutCompact(enc, i.Index)
	case InstanceArray4, InstanceArray8, InstanceArray16, InstanceArray32:
		if len(i.Data) != i.Kind.dataLen() {
			return fmt.Errorf("asset instance data must be %d bytes", i.Kind.dataLen())
		}
		return wire.PutFixed(enc, i.Data)
	default:
		return fmt.Errorf("unknown asset instance kind %d", i.Kind)
	}
}

func (i *AssetInstance) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*i = AssetInstance{Kind: InstanceKind(tag)}
	switch i.Kind {
	case InstanceUndefined:
		return nil
	case InstanceIndex:
		i.Index, err = wire.Compact(dec)
		return err
	case InstanceArray4, InstanceArray8, InstanceArray16, InstanceArray32:
		i.Data, err = wire.Fixed(dec, i.Kind.dataLen())
		return err
	default:
		return fmt.Errorf("unsupported asset instance tag %d", tag)
	}
}

func (a Asset) Encode(enc wire.Encoder) error {
	if err := a.Id.Encode(enc); err != nil {
		return err
	}
	if err := wire.PutByte(enc, byte(a.Fun.Kind)); err != nil {
		return err
	}
	if a.Fun.Kind == Fungible {
		return wire.PutCompact(enc, a.Fun.Amount)
	}
	return a.Fun.Instance.Encode(enc)
}

func (a *Asset) Decode(dec wire.Decoder) error {
	if err := a.Id.Decode(dec); err != nil {
		return err
	}
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	a.Fun = Fungibility{Kind: FungibilityKind(tag)}
	switch a.Fun.Kind {
	case Fungible:
		a.Fun.Amount, err = wire.Compact(dec)
		return err
	case NonFungible:
		return a.Fun.Instance.Decode(dec)
	default:
		return fmt.Errorf("unsupported fungibility tag %d", tag)
	}
}

func (as Assets) Encode(enc wire.Encoder) error {
	if len(as) > MaxAssets {
		return fmt.Errorf("asset list exceeds %d entries", MaxAssets)
	}
	if err := wire.PutCompact(enc, uint64(len(as))); err != nil {
		return err
	}
	for _, a := range as {
		if err := a.Encode(enc); err != nil {
			return err
		}
	}
	return nil
}

func (as *Assets) Decode(dec wire.Decoder) error {
	n, err := wire.Length(dec, MaxAssets)
	if err != nil {
		return err
	}
	list := make([]Asset, n)
	for i := range list {
		if err := list[i].Decode(dec); err != nil {
			return err
		}
	}
	assets, err := NewAssets(list...)
	if err != nil {
		return err
	}
	*as = assets
	return nil
}

func (f AssetFilter) Encode(enc wire.Encoder) error {
	if !f.Wild {
		if err := wire.PutByte(enc, 0); err != nil {
			return err
		}
		return f.Assets.Encode(enc)
	}
	if err := wire.PutByte(enc, 1); err != nil {
		return err
	}
	if err := wire.PutByte(enc, byte(f.Kind)); err != nil {
		return err
	}
	switch f.Kind {
	case WildAll:
		return nil
	case WildAllCounted:
		return wire.PutCompact(enc, uint64(f.Count))
	default:
		return fmt.Errorf("unknown wildcard kind %d", f.Kind)
	}
}

func (f *AssetFilter) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*f = AssetFilter{}
	switch tag {
	case 0:
		return f.Assets.Decode(dec)
	case 1:
		f.Wild = true
		kind, err := wire.Byte(dec)
		if err != nil {
			return err
		}
		f.Kind = WildKind(kind)
		switch f.Kind {
		case WildAll:
			return nil
		case WildAllCounted:
			count, err := wire.Compact(dec)
			if err != nil {
				return err
			}
			if count > uint64(^uint32(0)) {
				return fmt.Errorf("wildcard count %d overflows u32", count)
			}
			f.Count = uint32(count)
			return nil
		default:
			return fmt.Errorf("unsupported wildcard tag %d", kind)
		}
	default:
		return fmt.Errorf("unsupported asset filter tag %d", tag)
	}
}

func (w WeightLimit) Encode(enc wire.Encoder) error {
	if w.Unlimited {
		return wire.PutByte(enc, 0)
	}
	if err := wire.PutByte(enc, 1); err != nil {
		return err
	}
	if err := wire.PutCompact(enc, w.Limit.RefTime); err != nil {
		return err
	}
	return wire.PutCompact(enc, w.Limit.ProofSize)
}

func (w *WeightLimit) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*w = WeightLimit{}
	switch tag {
	case 0:
		w.Unlimited = true
		return nil
	case 1:
		if w.Limit.RefTime, err = wire.Compact(dec); err != nil {
			return err
		}
		w.Limit.ProofSize, err = wire.Compact(dec)
		return err
	default:
		return fmt.Errorf("unsupported weight limit tag %d", tag)
	}
}

func (in Instruction) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(in.Kind)); err != nil {
		return err
	}
	switch in.Kind {
	case InstrWithdrawAsset, InstrReserveAssetDeposited, InstrReceiveTeleportedAsset:
		return in.Assets.Encode(enc)
	case InstrClearOrigin:
		return nil
	case InstrDepositAsset:
		if err := in.Filter.Encode(enc); err != nil {
			return err
		}
		return in.Location.Encode(enc)
	case InstrDepositReserveAsset:
		if err := in.Filter.Encode(enc); err != nil {
			return err
		}
		if err := in.Location.Encode(enc); err != nil {
			return err
		}
		return in.Program.Encode(enc)
	case InstrBuyExecution:
		if err := in.Fees.Encode(enc); err != nil {
			return err
		}
		return in.WeightLimit.Encode(enc)
	case InstrClaimAsset:
		if err := in.Assets.Encode(enc); err != nil {
			return err
		}
		return in.Location.Encode(enc)
	case InstrUniversalOrigin:
		return in.Junction.Encode(enc)
	case InstrSetTopic:
		return wire.PutFixed(enc, in.Topic[:])
	default:
		return fmt.Errorf("unsupported instruction %s", in.Kind)
	}
}

func (in *Instruction) decode(dec wire.Decoder, nesting int) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*in = Instruction{Kind: InstructionKind(tag)}
	switch in.Kind {
	case InstrWithdrawAsset, InstrReserveAssetDeposited, InstrReceiveTeleportedAsset:
		return in.Assets.Decode(dec)
	case InstrClearOrigin:
		return nil
	case InstrDepositAsset:
		if err := in.Filter.Decode(dec); err != nil {
			return err
		}
		return in.Location.Decode(dec)
	case InstrDepositReserveAsset:
		if err := in.Filter.Decode(dec); err != nil {
			return err
		}
		if err := in.Location.Decode(dec); err != nil {
			return err
		}
		return in.Program.decode(dec, nesting+1)
	case InstrBuyExecution:
		if err := in.Fees.Decode(dec); err != nil {
			return err
		}
		return in.WeightLimit.Decode(dec)
	case InstrClaimAsset:
		if err := in.Assets.Decode(dec); err != nil {
			return err
		}
		return in.Location.Decode(dec)
	case InstrUniversalOrigin:
		return in.Junction.Decode(dec)
	case InstrSetTopic:
		topic, err := wire.Fixed(dec, 32)
		if err != nil {
			return err
		}
		copy(in.Topic[:], topic)
		return nil
	default:
		return fmt.Errorf("unsupported instruction tag %d", tag)
	}
}

func (p Program) Encode(enc wire.Encoder) error {
	if len(p) > MaxInstructions {
		return fmt.Errorf("program exceeds %d instructions", MaxInstructions)
	}
	if err := wire.PutCompact(enc, uint64(len(p))); err != nil {
		return err
	}
	for _, in := range p {
		if err := in.Encode(enc); err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) Decode(dec wire.Decoder) error {
	return p.decode(dec, 0)
}

func (p *Program) decode(dec wire.Decoder, nesting int) error {
	if nesting > maxProgramNesting {
		return fmt.Errorf("program nesting exceeds %d", maxProgramNesting)
	}
	n, err := wire.Length(dec, MaxInstructions)
	if err != nil {
		return err
	}
	prog := make(Program, n)
	for i := range prog {
		if err := prog[i].decode(dec, nesting); err != nil {
			return err
		}
	}
	*p = prog
	return nil
}
