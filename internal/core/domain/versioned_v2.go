package domain

import (
	"bytes"

	v2 "github.com/arkade-os/xreserve/internal/core/domain/v2"
)

func networkToV2(n *NetworkId) (v2.NetworkId, error) {
	if n == nil {
		return v2.NetworkId{Kind: v2.NetworkAny}, nil
	}
	switch n.Kind {
	case NetworkPolkadot:
		return v2.NetworkId{Kind: v2.NetworkPolkadot}, nil
	case NetworkKusama:
		return v2.NetworkId{Kind: v2.NetworkKusama}, nil
	default:
		return v2.NetworkId{}, unsupported("network %s", n)
	}
}

func networkFromV2(n v2.NetworkId) (*NetworkId, error) {
	switch n.Kind {
	case v2.NetworkAny:
		return nil, nil
	case v2.NetworkPolkadot:
		return Polkadot(), nil
	case v2.NetworkKusama:
		return Kusama(), nil
	default:
		return nil, unsupported("named network %q", n.Name)
	}
}

func junctionToV2(j Junction) (v2.Junction, error) {
	out := v2.Junction{Index: j.Index, Key: append([]byte(nil), j.Key...)}
	switch j.Kind {
	case JunctionParachain:
		out.Kind = v2.JunctionParachain
	case JunctionPalletInstance:
		out.Kind = v2.JunctionPalletInstance
	case JunctionGeneralIndex:
		out.Kind = v2.JunctionGeneralIndex
	case JunctionGeneralKey:
		out.Kind = v2.JunctionGeneralKey
	case JunctionOnlyChild:
		out.Kind = v2.JunctionOnlyChild
	case JunctionAccountId32, JunctionAccountIndex64, JunctionAccountKey20:
		network, err := networkToV2(j.Network)
		if err != nil {
			return v2.Junction{}, err
		}
		out.Network = network
		switch j.Kind {
		case JunctionAccountId32:
			out.Kind = v2.JunctionAccountId32
		case JunctionAccountIndex64:
			out.Kind = v2.JunctionAccountIndex64
		default:
			out.Kind = v2.JunctionAccountKey20
		}
	default:
		return v2.Junction{}, unsupported("junction %s", j)
	}
	return out, nil
}

func junctionFromV2(j v2.Junction) (Junction, error) {
	switch j.Kind {
	case v2.JunctionParachain:
		return Junction{Kind: JunctionParachain, Index: j.Index}, nil
	case v2.JunctionPalletInstance:
		return Junction{Kind: JunctionPalletInstance, Index: j.Index}, nil
	case v2.JunctionGeneralIndex:
		return GeneralIndex(j.Index), nil
	case v2.JunctionGeneralKey:
		if len(j.Key) > MaxGeneralKeyLength {
			return Junction{}, unsupported("general key of %d bytes", len(j.Key))
		}
		return GeneralKey(j.Key), nil
	case v2.JunctionOnlyChild:
		return OnlyChild(), nil
	case v2.JunctionAccountId32, v2.JunctionAccountIndex64, v2.JunctionAccountKey20:
		network, err := networkFromV2(j.Network)
		if err != nil {
			return Junction{}, err
		}
		out := Junction{Network: network, Index: j.Index, Key: append([]byte(nil), j.Key...)}
		switch j.Kind {
		case v2.JunctionAccountId32:
			out.Kind = JunctionAccountId32
		case v2.JunctionAccountIndex64:
			out.Kind = JunctionAccountIndex64
		default:
			out.Kind = JunctionAccountKey20
		}
		return out, nil
	default:
		return Junction{}, unsupported("legacy junction kind %d", j.Kind)
	}
}

func locationToV2(l Location) (v2.Location, error) {
	out := v2.Location{Parents: l.Parents}
	for _, j := range l.Interior {
		legacy, err := junctionToV2(j)
		if err != nil {
			return v2.Location{}, err
		}
		out.Interior = append(out.Interior, legacy)
	}
	return out, nil
}

func locationFromV2(l v2.Location) (Location, error) {
	interior := make([]Junction, 0, len(l.Interior))
	for _, j := range l.Interior {
		current, err := junctionFromV2(j)
		if err != nil {
			return Location{}, err
		}
		interior = append(interior, current)
	}
	return NewLocation(l.Parents, interior...)
}

func assetToV2(a Asset) (v2.Asset, error) {
	var out v2.Asset
	switch a.Id.Kind {
	case AssetIdConcrete:
		loc, err := locationToV2(a.Id.Location)
		if err != nil {
			return v2.Asset{}, err
		}
		out.Id = v2.AssetId{Kind: v2.AssetIdConcrete, Location: loc}
	default:
		out.Id = v2.AssetId{Kind: v2.AssetIdAbstract, Abstract: append([]byte(nil), a.Id.Abstract[:]...)}
	}
	if a.IsFungible() {
		out.Amount = a.Fun.Amount
		return out, nil
	}
	out.NonFungible = true
	out.Instance = v2.AssetInstance{
		Kind:  v2.InstanceKind(a.Fun.Instance.Kind),
		Index: a.Fun.Instance.Index,
		Data:  append([]byte(nil), a.Fun.Instance.Data...),
	}
	return out, nil
}

func assetFromV2(a v2.Asset) (Asset, error) {
	var out Asset
	switch a.Id.Kind {
	case v2.AssetIdConcrete:
		loc, err := locationFromV2(a.Id.Location)
		if err != nil {
			return Asset{}, err
		}
		out.Id = ConcreteId(loc)
	case v2.AssetIdAbstract:
		if len(a.Id.Abstract) > 32 {
			return Asset{}, unsupported("abstract id of %d bytes", len(a.Id.Abstract))
		}
		out.Id = AbstractId(bytes.Clone(a.Id.Abstract))
	default:
		return Asset{}, unsupported("legacy asset id kind %d", a.Id.Kind)
	}
	if !a.NonFungible {
		out.Fun = Fungibility{Kind: Fungible, Amount: a.Amount}
		return out, nil
	}
	out.Fun = Fungibility{Kind: NonFungible, Instance: AssetInstance{
		Kind:  InstanceKind(a.Instance.Kind),
		Index: a.Instance.Index,
		Data:  bytes.Clone(a.Instance.Data),
	}}
	return out, nil
}

func assetsToV2(as Assets) (v2.Assets, error) {
	out := make(v2.Assets, 0, len(as))
	for _, a := range as {
		legacy, err := assetToV2(a)
		if err != nil {
			return nil, err
		}
		out = append(out, legacy)
	}
	return out, nil
}

func assetsFromV2(as v2.Assets) (Assets, error) {
	list := make([]Asset, 0, len(as))
	for _, a := range as {
		current, err := assetFromV2(a)
		if err != nil {
			return nil, err
		}
		list = append(list, current)
	}
	return NewAssets(list...)
}

// filterToV2 returns the legacy filter and the max_assets value the legacy
// deposit instructions carry alongside it.
func filterToV2(f AssetFilter) (v2.AssetFilter, uint32, error) {
	if !f.Wild {
		assets, err := assetsToV2(f.Assets)
		if err != nil {
			return v2.AssetFilter{}, 0, err
		}
		return v2.AssetFilter{Assets: assets}, uint32(len(assets)), nil
	}
	switch f.Kind {
	case WildAll:
		return v2.AssetFilter{Wild: true}, MaxAssets, nil
	case WildAllCounted:
		return v2.AssetFilter{Wild: true}, f.Count, nil
	default:
		return v2.AssetFilter{}, 0, unsupported("wildcard kind %d", f.Kind)
	}
}

func filterFromV2(f v2.AssetFilter, maxAssets uint32) (AssetFilter, error) {
	if f.Wild {
		return AllCounted(maxAssets), nil
	}
	assets, err := assetsFromV2(f.Assets)
	if err != nil {
		return AssetFilter{}, err
	}
	return Definite(assets), nil
}

func programToV2(p Program) (v2.Program, error) {
	out := make(v2.Program, 0, len(p))
	for _, in := range p {
		legacy := v2.Instruction{}
		switch in.Kind {
		case InstrWithdrawAsset, InstrReserveAssetDeposited, InstrReceiveTeleportedAsset:
			assets, err := assetsToV2(in.Assets)
			if err != nil {
				return nil, err
			}
			legacy.Kind = v2.InstructionKind(in.Kind)
			legacy.Assets = assets
		case InstrClearOrigin:
			legacy.Kind = v2.InstrClearOrigin
		case InstrDepositAsset, InstrDepositReserveAsset:
			filter, maxAssets, err := filterToV2(in.Filter)
			if err != nil {
				return nil, err
			}
			loc, err := locationToV2(in.Location)
			if err != nil {
				return nil, err
			}
			legacy.Kind = v2.InstructionKind(in.Kind)
			legacy.Filter = filter
			legacy.MaxAssets = maxAssets
			legacy.Location = loc
			if in.Kind == InstrDepositReserveAsset {
				if legacy.Program, err = programToV2(in.Program); err != nil {
					return nil, err
				}
			}
		case InstrBuyExecution:
			fees, err := assetToV2(in.Fees)
			if err != nil {
				return nil, err
			}
			legacy.Kind = v2.InstrBuyExecution
			legacy.Fees = fees
			if !in.WeightLimit.Unlimited {
				limit := in.WeightLimit.Limit.RefTime
				legacy.WeightLimit = &limit
			}
		case InstrClaimAsset:
			assets, err := assetsToV2(in.Assets)
			if err != nil {
				return nil, err
			}
			ticket, err := locationToV2(in.Location)
			if err != nil {
				return nil, err
			}
			legacy.Kind = v2.InstrClaimAsset
			legacy.Assets = assets
			legacy.Location = ticket
		case InstrSetTopic:
			// topics are routing metadata only
			continue
		default:
			return nil, unsupported("instruction %s", in.Kind)
		}
		out = append(out, legacy)
	}
	return out, nil
}

func programFromV2(p v2.Program) (Program, error) {
	out := make(Program, 0, len(p))
	for _, in := range p {
		current := Instruction{}
		switch in.Kind {
		case v2.InstrWithdrawAsset, v2.InstrReserveAssetDeposited, v2.InstrReceiveTeleportedAsset:
			assets, err := assetsFromV2(in.Assets)
			if err != nil {
				return nil, err
			}
			current.Kind = InstructionKind(in.Kind)
			current.Assets = assets
		case v2.InstrClearOrigin:
			current.Kind = InstrClearOrigin
		case v2.InstrDepositAsset, v2.InstrDepositReserveAsset:
			filter, err := filterFromV2(in.Filter, in.MaxAssets)
			if err != nil {
				return nil, err
			}
			loc, err := locationFromV2(in.Location)
			if err != nil {
				return nil, err
			}
			current.Kind = InstructionKind(in.Kind)
			current.Filter = filter
			current.Location = loc
			if in.Kind == v2.InstrDepositReserveAsset {
				if current.Program, err = programFromV2(in.Program); err != nil {
					return nil, err
				}
			}
		case v2.InstrBuyExecution:
			fees, err := assetFromV2(in.Fees)
			if err != nil {
				return nil, err
			}
			current.Kind = InstrBuyExecution
			current.Fees = fees
			current.WeightLimit = Unlimited()
			if in.WeightLimit != nil {
				current.WeightLimit = Limited(Weight{RefTime: *in.WeightLimit, ProofSize: defaultProofSize})
			}
		case v2.InstrClaimAsset:
			assets, err := assetsFromV2(in.Assets)
			if err != nil {
				return nil, err
			}
			ticket, err := locationFromV2(in.Location)
			if err != nil {
				return nil, err
			}
			current.Kind = InstrClaimAsset
			current.Assets = assets
			current.Location = ticket
		default:
			return nil, unsupported("legacy instruction %d", in.Kind)
		}
		out = append(out, current)
	}
	return out, nil
}
