package interpret

import "concordat/internal/types"

// Report carries every stage's intermediate output for one interpretation
// call, so the audit record can reproduce the decision end to end.
type Report struct {
	Raw        string
	ParseOK    bool
	Extracted  []string // leaf candidates, appearance order
	Recognized []string // grammar-matched canonical forms
	Accepted   []string // survivors of the legality filter
	Illegal    int      // grammar-valid but not in the legal set
	Discards   []Discard
	Fallbacks  []types.Location
}

// FallbackUsed reports whether any location needed a synthesized order.
func (r Report) FallbackUsed() bool { return len(r.Fallbacks) > 0 }

// Orders runs the full pipeline for one power in one phase: normalize the raw
// response, extract leaf candidates, match them against the order grammar,
// filter against the legal-action snapshot, and complete to exactly one order
// per orderable location. Pure and synchronous; identical inputs produce
// byte-identical output.
func Orders(raw string, locs []types.Location, legal types.LegalActionSet) (types.ValidatedOrderSet, Report) {
	attempt := Normalize(raw)
	cands := Extract(attempt)
	recs := MatchOrders(cands)
	filtered := Filter(recs, legal)
	completion := Complete(filtered.Accepted, locs, legal)

	report := Report{
		Raw:       raw,
		ParseOK:   attempt.Parsed,
		Illegal:   filtered.Illegal,
		Discards:  completion.Discards,
		Fallbacks: completion.Orders.FallbackLocations(),
	}
	for _, c := range cands {
		report.Extracted = append(report.Extracted, c.Text)
	}
	for _, r := range recs {
		report.Recognized = append(report.Recognized, r.Order.Canonical())
	}
	for _, r := range filtered.Accepted {
		report.Accepted = append(report.Accepted, r.Order.Canonical())
	}

	return completion.Orders, report
}
