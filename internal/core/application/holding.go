package application

import (
	"fmt"
	"math"
	"sort"

	"github.com/arkade-os/xreserve/internal/core/domain"
)

// holding is the transient asset register of one program execution.
type holding struct {
	entries map[string]domain.Asset
}

func newHolding() *holding {
	return &holding{entries: make(map[string]domain.Asset)}
}

func (h *holding) isEmpty() bool {
	return len(h.entries) == 0
}

func (h *holding) add(asset domain.Asset) error {
	key, err := asset.Key()
	if err != nil {
		return err
	}
	current, ok := h.entries[key]
	if !ok {
		h.entries[key] = asset
		return nil
	}
	if !asset.IsFungible() {
		return fmt.Errorf("instance of %s already held", asset.Id)
	}
	if current.Fun.Amount > math.MaxUint64-asset.Fun.Amount {
		return fmt.Errorf("holding of %s overflows", asset.Id)
	}
	current.Fun.Amount += asset.Fun.Amount
	h.entries[key] = current
	return nil
}

// addAll adds every asset or, on error, leaves the holding unchanged.
func (h *holding) addAll(assets domain.Assets) error {
	saved := h.snapshot()
	for _, a := range assets {
		if err := h.add(a); err != nil {
			h.entries = saved
			return err
		}
	}
	return nil
}

// subtractAll removes every asset or, on error, leaves the holding
// unchanged.
func (h *holding) subtractAll(assets domain.Assets) error {
	saved := h.snapshot()
	for _, a := range assets {
		if err := h.subtract(a); err != nil {
			h.entries = saved
			return err
		}
	}
	return nil
}

func (h *holding) snapshot() map[string]domain.Asset {
	saved := make(map[string]domain.Asset, len(h.entries))
	for k, v := range h.entries {
		saved[k] = v
	}
	return saved
}

// subtract removes exactly asset from the holding.
func (h *holding) subtract(asset domain.Asset) error {
	key, err := asset.Key()
	if err != nil {
		return err
	}
	current, ok := h.entries[key]
	if !ok {
		return fmt.Errorf("%s is not held", asset.Id)
	}
	if !asset.IsFungible() {
		delete(h.entries, key)
		return nil
	}
	if current.Fun.Amount < asset.Fun.Amount {
		return fmt.Errorf("holding has %d of %s, needs %d", current.Fun.Amount, asset.Id, asset.Fun.Amount)
	}
	current.Fun.Amount -= asset.Fun.Amount
	if current.Fun.Amount == 0 {
		delete(h.entries, key)
		return nil
	}
	h.entries[key] = current
	return nil
}

// take removes and returns the assets selected by filter. Definite filters
// must be fully covered by the holding, otherwise nothing is taken.
func (h *holding) take(filter domain.AssetFilter) (domain.Assets, error) {
	if !filter.Wild {
		if err := h.subtractAll(filter.Assets); err != nil {
			return nil, err
		}
		return filter.Assets, nil
	}

	keys := h.sortedKeys()
	if filter.Kind == domain.WildAllCounted && int(filter.Count) < len(keys) {
		keys = keys[:filter.Count]
	}
	taken := make([]domain.Asset, 0, len(keys))
	for _, k := range keys {
		taken = append(taken, h.entries[k])
		delete(h.entries, k)
	}
	return domain.NewAssets(taken...)
}

func (h *holding) assets() (domain.Assets, error) {
	list := make([]domain.Asset, 0, len(h.entries))
	for _, k := range h.sortedKeys() {
		list = append(list, h.entries[k])
	}
	return domain.NewAssets(list...)
}

func (h *holding) sortedKeys() []string {
	keys := make([]string, 0, len(h.entries))
	for k := range h.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
