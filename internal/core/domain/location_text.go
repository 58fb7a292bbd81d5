package domain

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// String renders the location in path notation, e.g.
// "../Parachain(1000)/PalletInstance(50)/GeneralIndex(1984)". Here is ".".
func (l Location) String() string {
	parts := make([]string, 0, int(l.Parents)+len(l.Interior))
	for i := 0; i < int(l.Parents); i++ {
		parts = append(parts, "..")
	}
	for _, j := range l.Interior {
		parts = append(parts, j.String())
	}
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func (j Junction) String() string {
	switch j.Kind {
	case JunctionParachain:
		return fmt.Sprintf("Parachain(%d)", j.Index)
	case JunctionAccountId32:
		return fmt.Sprintf("AccountId32(%s)", withNetwork(j.Network, hexString(j.Key)))
	case JunctionAccountIndex64:
		return fmt.Sprintf("AccountIndex64(%s)", withNetwork(j.Network, strconv.FormatUint(j.Index, 10)))
	case JunctionAccountKey20:
		return fmt.Sprintf("AccountKey20(%s)", withNetwork(j.Network, hexString(j.Key)))
	case JunctionPalletInstance:
		return fmt.Sprintf("PalletInstance(%d)", j.Index)
	case JunctionGeneralIndex:
		return fmt.Sprintf("GeneralIndex(%d)", j.Index)
	case JunctionGeneralKey:
		return fmt.Sprintf("GeneralKey(%s)", hexString(j.Key))
	case JunctionOnlyChild:
		return "OnlyChild"
	case JunctionGlobalConsensus:
		if j.Network == nil {
			return "GlobalConsensus(?)"
		}
		return fmt.Sprintf("GlobalConsensus(%s)", j.Network)
	default:
		return fmt.Sprintf("Unknown(%d)", j.Kind)
	}
}

func (n NetworkId) String() string {
	switch n.Kind {
	case NetworkByGenesis:
		return fmt.Sprintf("ByGenesis(%s)", hexString(n.Genesis[:]))
	case NetworkPolkadot:
		return "Polkadot"
	case NetworkKusama:
		return "Kusama"
	case NetworkWestend:
		return "Westend"
	case NetworkRococo:
		return "Rococo"
	case NetworkEthereum:
		return fmt.Sprintf("Ethereum(%d)", n.ChainId)
	default:
		return fmt.Sprintf("Network(%d)", n.Kind)
	}
}

// ParseLocation parses the notation produced by Location.String.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return Here(), nil
	}

	var parents uint8
	interior := make([]Junction, 0)
	for _, part := range strings.Split(s, "/") {
		if part == ".." {
			if len(interior) > 0 {
				return Location{}, fmt.Errorf("'..' after a junction in %q", s)
			}
			if parents == 255 {
				return Location{}, fmt.Errorf("too many parents in %q", s)
			}
			parents++
			continue
		}
		j, err := parseJunction(part)
		if err != nil {
			return Location{}, err
		}
		interior = append(interior, j)
	}
	return NewLocation(parents, interior...)
}

func parseJunction(s string) (Junction, error) {
	name, arg, err := splitCall(s)
	if err != nil {
		return Junction{}, err
	}

	switch name {
	case "Parachain":
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return Junction{}, fmt.Errorf("invalid parachain id %q: %w", arg, err)
		}
		return Parachain(uint32(id)), nil
	case "PalletInstance":
		idx, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return Junction{}, fmt.Errorf("invalid pallet instance %q: %w", arg, err)
		}
		return PalletInstance(uint8(idx)), nil
	case "GeneralIndex":
		idx, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return Junction{}, fmt.Errorf("invalid general index %q: %w", arg, err)
		}
		return GeneralIndex(idx), nil
	case "GeneralKey":
		key, err := parseHex(arg)
		if err != nil {
			return Junction{}, err
		}
		return GeneralKey(key), nil
	case "OnlyChild":
		return OnlyChild(), nil
	case "GlobalConsensus":
		network, err := parseNetwork(arg)
		if err != nil {
			return Junction{}, err
		}
		return GlobalConsensus(*network), nil
	case "AccountId32", "AccountKey20", "AccountIndex64":
		network, value, err := splitNetwork(arg)
		if err != nil {
			return Junction{}, err
		}
		switch name {
		case "AccountIndex64":
			idx, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Junction{}, fmt.Errorf("invalid account index %q: %w", value, err)
			}
			return AccountIndex64(network, idx), nil
		case "AccountId32":
			key, err := parseHex(value)
			if err != nil {
				return Junction{}, err
			}
			if len(key) != 32 {
				return Junction{}, fmt.Errorf("account id must be 32 bytes, got %d", len(key))
			}
			var id [32]byte
			copy(id[:], key)
			return AccountId32(network, id), nil
		default:
			key, err := parseHex(value)
			if err != nil {
				return Junction{}, err
			}
			if len(key) != 20 {
				return Junction{}, fmt.Errorf("account key must be 20 bytes, got %d", len(key))
			}
			var k [20]byte
			copy(k[:], key)
			return AccountKey20(network, k), nil
		}
	default:
		return Junction{}, fmt.Errorf("unknown junction %q", s)
	}
}

func parseNetwork(s string) (*NetworkId, error) {
	name, arg, err := splitCall(s)
	if err != nil {
		return nil, err
	}
	switch name {
	case "Polkadot":
		return &NetworkId{Kind: NetworkPolkadot}, nil
	case "Kusama":
		return &NetworkId{Kind: NetworkKusama}, nil
	case "Westend":
		return &NetworkId{Kind: NetworkWestend}, nil
	case "Rococo":
		return &NetworkId{Kind: NetworkRococo}, nil
	case "Ethereum":
		chainId, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ethereum chain id %q: %w", arg, err)
		}
		return Ethereum(chainId), nil
	case "ByGenesis":
		genesis, err := parseHex(arg)
		if err != nil {
			return nil, err
		}
		if len(genesis) != 32 {
			return nil, fmt.Errorf("genesis hash must be 32 bytes, got %d", len(genesis))
		}
		n := &NetworkId{Kind: NetworkByGenesis}
		copy(n.Genesis[:], genesis)
		return n, nil
	default:
		return nil, fmt.Errorf("unknown network %q", s)
	}
}

// splitCall splits "Name(arg)" into its parts; a bare "Name" has no arg.
func splitCall(s string) (string, string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, "", nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", "", fmt.Errorf("unbalanced parenthesis in %q", s)
	}
	return s[:open], s[open+1 : len(s)-1], nil
}

// splitNetwork splits an optional "Network:" prefix off an account payload.
func splitNetwork(s string) (*NetworkId, string, error) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return nil, s, nil
	}
	network, err := parseNetwork(s[:idx])
	if err != nil {
		return nil, "", err
	}
	return network, s[idx+1:], nil
}

func withNetwork(network *NetworkId, value string) string {
	if network == nil {
		return value
	}
	return fmt.Sprintf("%s:%s", network, value)
}

func hexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func parseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}
