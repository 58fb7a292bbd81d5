package v2

import (
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/domain/wire"
)

const maxProgramNesting = 8

func (n NetworkId) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(n.Kind)); err != nil {
		return err
	}
	switch n.Kind {
	case NetworkAny, NetworkPolkadot, NetworkKusama:
		return nil
	case NetworkNamed:
		if len(n.Name) > MaxNameLength {
			return fmt.Errorf("network name exceeds %d bytes", MaxNameLength)
		}
		return wire.PutBytes(enc, n.Name)
	default:
		return fmt.Errorf("network kind %d: %w", n.Kind, errUnknownKind)
	}
}

func (n *NetworkId) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*n = NetworkId{Kind: NetworkKind(tag)}
	switch n.Kind {
	case NetworkAny, NetworkPolkadot, NetworkKusama:
		return nil
	case NetworkNamed:
		n.Name, err = wire.Bytes(dec, MaxNameLength)
		return err
	default:
		return fmt.Errorf("network tag %d: %w", tag, errUnknownKind)
	}
}

func (j Junction) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(j.Kind)); err != nil {
		return err
	}
	switch j.Kind {
	case JunctionParachain, JunctionGeneralIndex:
		return wire.PutCompact(enc, j.Index)
	case JunctionPalletInstance:
		return wire.PutByte(enc, byte(j.Index))
	case JunctionAccountId32, JunctionAccountKey20:
		if err := j.Network.Encode(enc); err != nil {
			return err
		}
		return wire.PutFixed(enc, j.Key)
	case JunctionAccountIndex64:
		if err := j.Network.Encode(enc); err != nil {
			return err
		}
		return wire.PutCompact(enc, j.Index)
	case JunctionGeneralKey:
		return wire.PutBytes(enc, j.Key)
	case JunctionOnlyChild:
		return nil
	default:
		return fmt.Errorf("junction kind %d: %w", j.Kind, errUnknownKind)
	}
}

func (j *Junction) Decode(dec wire.Decoder) error {
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	*j = Junction{Kind: JunctionKind(tag)}
	switch j.Kind {
	case JunctionParachain, JunctionGeneralIndex:
		j.Index, err = wire.Compact(dec)
		return err
	case JunctionPalletInstance:
		b, err := wire.Byte(dec)
		j.Index = uint64(b)
		return err
	case JunctionAccountId32, JunctionAccountKey20:
		if err := j.Network.Decode(dec); err != nil {
			return err
		}
		size := 32
		if j.Kind == JunctionAccountKey20 {
			size = 20
		}
		j.Key, err = wire.Fixed(dec, size)
		return err
	case JunctionAccountIndex64:
		if err := j.Network.Decode(dec); err != nil {
			return err
		}
		j.Index, err = wire.Compact(dec)
		return err
	case JunctionGeneralKey:
		j.Key, err = wire.Bytes(dec, MaxNameLength)
		return err
	case JunctionOnlyChild:
		return nil
	default:
		return fmt.Errorf("junction tag %d: %w", tag, errUnknownKind)
	}
}

func (l Location) Encode(enc wire.Encoder) error {
	if err := checkDepth(l); err != nil {
		return err
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

func (id AssetId) Encode(enc wire.Encoder) error {
	if err := wire.PutByte(enc, byte(id.Kind)); err != nil {
		return err
	}
	switch id.Kind {
	case AssetIdConcrete:
		return id.Location.Encode(enc)
	case AssetIdAbstract:
		return wire.PutBytes(enc, id.Abstract)
	default:
		return fmt.Errorf("asset id kind %d: %w", id.Kind, errUnknownKind)
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
		id.Abstract, err = wire.Bytes(dec, MaxNameLength)
		return err
	default:
		return fmt.Errorf("asset id tag %d: %w", tag, errUnknownKind)
	}
}

func instanceDataLen(k InstanceKind) int {
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
		return wire.PutFixed(enc, i.Data)
	default:
		return fmt.Errorf("asset instance kind %d: %w", i.Kind, errUnknownKind)
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
		i.Data, err = wire.Fixed(dec, instanceDataLen(i.Kind))
		return err
	default:
		return fmt.Errorf("asset instance tag %d: %w", tag, errUnknownKind)
	}
}

func (a Asset) Encode(enc wire.Encoder) error {
	if err := a.Id.Encode(enc); err != nil {
		return err
	}
	if a.NonFungible {
		if err := wire.PutByte(enc, 1); err != nil {
			return err
		}
		return a.Instance.Encode(enc)
	}
	if err := wire.PutByte(enc, 0); err != nil {
		return err
	}
	return wire.PutCompact(enc, a.Amount)
}

func (a *Asset) Decode(dec wire.Decoder) error {
	if err := a.Id.Decode(dec); err != nil {
		return err
	}
	tag, err := wire.Byte(dec)
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		a.Amount, err = wire.Compact(dec)
		return err
	case 1:
		a.NonFungible = true
		return a.Instance.Decode(dec)
	default:
		return fmt.Errorf("fungibility tag %d: %w", tag, errUnknownKind)
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
	list := make(Assets, n)
	for i := range list {
		if err := list[i].Decode(dec); err != nil {
			return err
		}
	}
	*as = list
	return nil
}

func (f AssetFilter) Encode(enc wire.Encoder) error {
	if f.Wild {
		// Wild(All)
		return wire.PutFixed(enc, []byte{1, 0})
	}
	if err := wire.PutByte(enc, 0); err != nil {
		return err
	}
	return f.Assets.Encode(enc)
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
		kind, err := wire.Byte(dec)
		if err != nil {
			return err
		}
		if kind != 0 {
			return fmt.Errorf("wildcard tag %d: %w", kind, errUnknownKind)
		}
		f.Wild = true
		return nil
	default:
		return fmt.Errorf("asset filter tag %d: %w", tag, errUnknownKind)
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
	case InstrDepositAsset, InstrDepositReserveAsset:
		if err := in.Filter.Encode(enc); err != nil {
			return err
		}
		if err := wire.PutCompact(enc, uint64(in.MaxAssets)); err != nil {
			return err
		}
		if err := in.Location.Encode(enc); err != nil {
			return err
		}
		if in.Kind == InstrDepositAsset {
			return nil
		}
		return in.Program.Encode(enc)
	case InstrBuyExecution:
		if err := in.Fees.Encode(enc); err != nil {
			return err
		}
		return wire.PutOption(enc, in.WeightLimit != nil, func() error {
			return wire.PutCompact(enc, *in.WeightLimit)
		})
	case InstrClaimAsset:
		if err := in.Assets.Encode(enc); err != nil {
			return err
		}
		return in.Location.Encode(enc)
	default:
		return fmt.Errorf("instruction %d: %w", in.Kind, errUnknownKind)
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
	case InstrDepositAsset, InstrDepositReserveAsset:
		if err := in.Filter.Decode(dec); err != nil {
			return err
		}
		maxAssets, err := wire.Compact(dec)
		if err != nil {
			return err
		}
		if maxAssets > uint64(^uint32(0)) {
			return fmt.Errorf("max assets %d overflows u32", maxAssets)
		}
		in.MaxAssets = uint32(maxAssets)
		if err := in.Location.Decode(dec); err != nil {
			return err
		}
		if in.Kind == InstrDepositAsset {
			return nil
		}
		return in.Program.decode(dec, nesting+1)
	case InstrBuyExecution:
		if err := in.Fees.Decode(dec); err != nil {
			return err
		}
		var limit uint64
		present, err := wire.Option(dec, func() error {
			var err error
			limit, err = wire.Compact(dec)
			return err
		})
		if err != nil {
			return err
		}
		if present {
			in.WeightLimit = &limit
		}
		return nil
	case InstrClaimAsset:
		if err := in.Assets.Decode(dec); err != nil {
			return err
		}
		return in.Location.Decode(dec)
	default:
		return fmt.Errorf("instruction tag %d: %w", tag, errUnknownKind)
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
