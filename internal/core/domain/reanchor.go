package domain

import "fmt"

// Reanchor re-expresses loc, given relative to the local chain, as seen from
// dest. self is the local chain id under the shared parent; it is only
// needed for local locations sent up or sideways.
func Reanchor(loc, dest Location, self uint32) (Location, error) {
	if rest, ok := loc.StripPrefix(dest); ok {
		return rest, nil
	}

	switch {
	case dest.Parents == 1 && len(dest.Interior) <= 1:
		// parent or sibling: both sit under our parent
		var up Location
		if loc.Parents == 0 {
			if self == 0 {
				return Location{}, fmt.Errorf("cannot reanchor local location %s without a chain id", loc)
			}
			up = Location{Parents: 1, Interior: append([]Junction{Parachain(self)}, loc.Interior...)}
		} else {
			up = loc
		}
		if len(dest.Interior) == 1 {
			return NewLocation(up.Parents, up.Interior...)
		}
		return NewLocation(up.Parents-1, up.Interior...)
	case dest.Parents == 0 && len(dest.Interior) == 1 && dest.Interior[0].IsChain():
		if loc.Parents == 255 {
			return Location{}, fmt.Errorf("cannot reanchor %s: too many parents", loc)
		}
		return NewLocation(loc.Parents+1, loc.Interior...)
	default:
		return Location{}, fmt.Errorf("cannot reanchor %s towards %s", loc, dest)
	}
}
