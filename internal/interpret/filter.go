package interpret

import "concordat/internal/types"

// FilterResult is the outcome of legality filtering: the surviving candidates
// in appearance order plus a count of grammar-valid candidates the engine
// does not accept this phase.
type FilterResult struct {
	Accepted []Recognized
	Illegal  int
}

// Filter keeps only candidates whose canonical form exactly equals an entry
// of the legal-action snapshot for the candidate's own location. Pure set
// membership: no fuzzy matching, no partial credit, no engine queries.
func Filter(recs []Recognized, legal types.LegalActionSet) FilterResult {
	var res FilterResult
	for _, r := range recs {
		if legal.Contains(r.Order.Location(), r.Order.Canonical()) {
			res.Accepted = append(res.Accepted, r)
		} else {
			res.Illegal++
		}
	}
	return res
}
