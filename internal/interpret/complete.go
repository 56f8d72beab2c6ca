package interpret

import (
	"sort"

	"concordat/internal/grammar"
	"concordat/internal/types"
)

// Discard records a duplicate assignment: an accepted candidate dropped
// because an earlier candidate already claimed its location. Not an error.
type Discard struct {
	Loc   types.Location `json:"loc"`
	Order string         `json:"order"`
}

// Completion is the completion guarantee's output: exactly one order per
// orderable location, with the duplicates that lost the first-appearance
// tie-break.
type Completion struct {
	Orders   types.ValidatedOrderSet
	Discards []Discard
}

// Complete enforces exactly-one-order-per-location. The first accepted
// candidate for a location wins by appearance order; later ones are recorded
// as discards. A location with no accepted candidate gets a synthesized
// fallback: the hold order if the legal set has one, otherwise the
// lexicographically-first legal entry. The same policy holds for the whole
// run; mixing policies would break replay determinism.
func Complete(accepted []Recognized, locs []types.Location, legal types.LegalActionSet) Completion {
	chosen := make(map[types.Location]string, len(locs))
	var discards []Discard

	orderable := make(map[types.Location]bool, len(locs))
	for _, loc := range locs {
		orderable[loc] = true
	}

	for _, r := range accepted {
		loc := r.Order.Location()
		if !orderable[loc] {
			continue
		}
		if _, taken := chosen[loc]; taken {
			discards = append(discards, Discard{Loc: loc, Order: r.Order.Canonical()})
			continue
		}
		chosen[loc] = r.Order.Canonical()
	}

	out := make(types.ValidatedOrderSet, len(locs))
	for _, loc := range locs {
		if order, ok := chosen[loc]; ok {
			out[loc] = types.Resolution{Order: order}
			continue
		}
		fb, ok := fallback(legal[loc])
		if !ok {
			// The engine hands out a non-empty legal set for every orderable
			// location; an empty one means the location is not actually
			// orderable this phase.
			continue
		}
		out[loc] = types.Resolution{Order: fb, Fallback: true}
	}

	return Completion{Orders: out, Discards: discards}
}

// fallback picks the synthesized order for a location that got nothing from
// filtering: the hold order when the phase has one, else the
// lexicographically-first legal entry (retreat and adjustment phases have no
// hold).
func fallback(legal []string) (string, bool) {
	if len(legal) == 0 {
		return "", false
	}
	for _, entry := range legal {
		if o, ok := grammar.Parse(entry); ok && o.Kind == grammar.Hold {
			return entry, true
		}
	}
	sorted := make([]string, len(legal))
	copy(sorted, legal)
	sort.Strings(sorted)
	return sorted[0], true
}
