package domain

// ChainPart returns the chain-identifying prefix of loc:
//   - parents 1, leading chain id C: the sibling {1, [C]}
//   - parents 1, no chain id anywhere in the interior: the parent {1, []}
//   - parents 0, leading chain id C: the child {0, [C]}
//
// Anything else has no chain part.
func ChainPart(loc Location) (Location, bool) {
	first, hasFirst := loc.First()

	switch loc.Parents {
	case 1:
		if hasFirst && first.IsChain() {
			return Location{Parents: 1, Interior: []Junction{first}}, true
		}
		if !containsChain(loc.Interior) {
			return ParentLocation(), true
		}
	case 0:
		if hasFirst && first.IsChain() {
			return Location{Interior: []Junction{first}}, true
		}
	}
	return Location{}, false
}

// NonChainPart returns the sub-path of loc inside the chain hosting it,
// with leading chain ids stripped and re-rooted at parents 0. It reports
// false when nothing is left.
func NonChainPart(loc Location) (Location, bool) {
	interior := loc.Interior
	for len(interior) > 0 && interior[0].IsChain() {
		interior = interior[1:]
	}
	if len(interior) == 0 {
		return Location{}, false
	}
	return Location{Interior: cloneJunctions(interior)}, true
}

func containsChain(js []Junction) bool {
	for _, j := range js {
		if j.IsChain() {
			return true
		}
	}
	return false
}
