package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// NativeCurrency is the balance currency of the chain's own asset.
const NativeCurrency = "native"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// RegisteredCurrency is the balance currency of a registered foreign asset.
func RegisteredCurrency(localId uint32) string {
	return fmt.Sprintf("asset:%d", localId)
}

// AccountOf maps a location to the local account it controls. Local
// accounts are hex encoded keys; other chains map to their sovereign
// account.
func AccountOf(loc Location) (string, bool) {
	switch {
	case loc.Parents == 1 && len(loc.Interior) == 0:
		return "parent", true
	case len(loc.Interior) != 1:
		return "", false
	}

	j := loc.Interior[0]
	switch {
	case loc.Parents == 0 && (j.Kind == JunctionAccountId32 || j.Kind == JunctionAccountKey20):
		return hex.EncodeToString(j.Key), true
	case loc.Parents == 0 && j.Kind == JunctionParachain:
		return fmt.Sprintf("child:%d", j.Index), true
	case loc.Parents == 1 && j.Kind == JunctionParachain:
		return fmt.Sprintf("sibling:%d", j.Index), true
	default:
		return "", false
	}
}

// ParseAccount accepts either a raw account (32 or 20 byte hex, optionally
// 0x prefixed) or a sovereign account name as returned by AccountOf.
func ParseAccount(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "parent":
		return s, nil
	case strings.HasPrefix(s, "sibling:"), strings.HasPrefix(s, "child:"):
		var id uint32
		prefix := s[:strings.Index(s, ":")]
		if _, err := fmt.Sscanf(s[len(prefix)+1:], "%d", &id); err != nil {
			return "", fmt.Errorf("invalid sovereign account %q", s)
		}
		return fmt.Sprintf("%s:%d", prefix, id), nil
	}

	buf, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid account %q: %w", s, err)
	}
	if len(buf) != 32 && len(buf) != 20 {
		return "", fmt.Errorf("invalid account %q: expected 20 or 32 bytes, got %d", s, len(buf))
	}
	return hex.EncodeToString(buf), nil
}
