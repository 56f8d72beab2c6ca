// Package types holds the shared domain vocabulary for the interpretation
// pipeline: powers, phases, locations, and the order-set containers exchanged
// with the rules engine.
package types

import "sort"

// Power identifies one of the playable great powers, e.g. "FRANCE".
type Power string

// Phase identifies one game phase in engine notation, e.g. "S1901M".
type Phase string

// Location is a board position identifier: a three-letter province code with
// an optional coast suffix, e.g. "PAR" or "STP/NC".
type Location string

// LegalActionSet maps each orderable location to the exact order strings the
// rules engine currently accepts for the unit there. It is a per-phase
// snapshot: fetched once before interpretation begins and never mutated by
// the pipeline.
type LegalActionSet map[Location][]string

// Contains reports whether order is an accepted entry for loc.
func (s LegalActionSet) Contains(loc Location, order string) bool {
	for _, o := range s[loc] {
		if o == order {
			return true
		}
	}
	return false
}

// Resolution is the final decision for one location: the order string that
// will be submitted and whether it was synthesized rather than extracted from
// generator text.
type Resolution struct {
	Order    string `json:"order"`
	Fallback bool   `json:"fallback"`
}

// ValidatedOrderSet holds exactly one resolved order per orderable location
// for one power in one phase. Finalized once, then treated as immutable.
type ValidatedOrderSet map[Location]Resolution

// Orders returns the order strings in deterministic (sorted-location) order,
// in the shape the engine's submit call expects.
func (v ValidatedOrderSet) Orders() []string {
	locs := make([]Location, 0, len(v))
	for loc := range v {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })

	orders := make([]string, 0, len(v))
	for _, loc := range locs {
		orders = append(orders, v[loc].Order)
	}
	return orders
}

// FallbackLocations returns the locations whose orders were synthesized,
// sorted for stable logging.
func (v ValidatedOrderSet) FallbackLocations() []Location {
	var locs []Location
	for loc, r := range v {
		if r.Fallback {
			locs = append(locs, loc)
		}
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
	return locs
}
