// Package analysis computes per-power statistics from a persisted audit
// trail: interpretation quality (fallback and illegal-candidate rates) and
// cooperation scoring (whether declared offers were followed by supportive or
// hostile orders). It consumes only the stable audit-record contract.
package analysis

import (
	"encoding/json"
	"fmt"
	"sort"

	"concordat/internal/audit"
	"concordat/internal/grammar"
	"concordat/internal/press"
	"concordat/internal/types"
)

// PowerStats aggregates one power's record history.
type PowerStats struct {
	Power types.Power `json:"power"`

	MessagesSent     int          `json:"messages_sent"`
	SilentPhases     int          `json:"silent_phases"`
	AvgTrust         float64      `json:"avg_trust"`
	MostCommonIntent press.Intent `json:"most_common_intent"`

	ActionRecords  int     `json:"action_records"`
	FallbackRate   float64 `json:"fallback_rate"`
	IllegalDropped int     `json:"illegal_dropped"`
	Discarded      int     `json:"discarded"`

	Offers      int     `json:"offers"`
	KeptOffers  int     `json:"kept_offers"`
	Betrayals   int     `json:"betrayals"`
	HonestyRate float64 `json:"honesty_rate"`
	SuccessRate float64 `json:"negotiation_success_rate"`
}

// offer is a declared alliance/support message awaiting scoring against the
// sender's actual orders that phase.
type offer struct {
	phase  types.Phase
	intent press.Intent
}

// Compute aggregates stats from records in trail order.
func Compute(records []audit.Record) []PowerStats {
	type acc struct {
		stats       PowerStats
		trustSum    float64
		trustN      int
		intents     map[press.Intent]int
		offers      []offer
		phaseOrders map[types.Phase][]string
		fallbackLoc int
		totalLoc    int
	}
	accs := make(map[types.Power]*acc)
	get := func(p types.Power) *acc {
		a, ok := accs[p]
		if !ok {
			a = &acc{
				stats:       PowerStats{Power: p},
				intents:     make(map[press.Intent]int),
				phaseOrders: make(map[types.Phase][]string),
			}
			accs[p] = a
		}
		return a
	}

	for _, rec := range records {
		a := get(rec.Power)
		switch rec.Kind {
		case audit.KindMessage:
			if rec.Silent {
				a.stats.SilentPhases++
				continue
			}
			a.stats.MessagesSent++
			msg, ok := decodeMessage(rec.FinalResult)
			if !ok || msg.Meta == nil {
				continue
			}
			a.intents[msg.Meta.Intent]++
			for _, v := range msg.Meta.Trust {
				a.trustSum += v
				a.trustN++
			}
			if msg.Meta.Intent == press.IntentOfferAlliance ||
				msg.Meta.Intent == press.IntentRequestSupport ||
				msg.Meta.Intent == press.IntentLie {
				a.offers = append(a.offers, offer{phase: rec.Phase, intent: msg.Meta.Intent})
			}

		case audit.KindAction:
			a.stats.ActionRecords++
			a.stats.IllegalDropped += rec.Illegal
			a.stats.Discarded += len(rec.Discards)
			orders, ok := decodeOrders(rec.FinalResult)
			if !ok {
				continue
			}
			a.totalLoc += len(orders)
			for _, res := range orders {
				if res.Fallback {
					a.fallbackLoc++
				}
				a.phaseOrders[rec.Phase] = append(a.phaseOrders[rec.Phase], res.Order)
			}
		}
	}

	out := make([]PowerStats, 0, len(accs))
	for _, a := range accs {
		s := a.stats
		if a.trustN > 0 {
			s.AvgTrust = a.trustSum / float64(a.trustN)
		}
		s.MostCommonIntent = topIntent(a.intents)
		if a.totalLoc > 0 {
			s.FallbackRate = float64(a.fallbackLoc) / float64(a.totalLoc)
		}
		scoreOffers(&s, a.offers, a.phaseOrders)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Power < out[j].Power })
	return out
}

// FromJSONL computes stats from a persisted trail file.
func FromJSONL(path string) ([]PowerStats, error) {
	records, err := audit.ReadJSONL(path)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	return Compute(records), nil
}

// scoreOffers classifies each declared offer against the orders the sender
// actually gave that phase: a declared lie counts as betrayal outright; an
// offer backed by any support order counts as kept; everything else is
// neutral. Honesty is the complement of the betrayal rate.
func scoreOffers(s *PowerStats, offers []offer, phaseOrders map[types.Phase][]string) {
	for _, of := range offers {
		s.Offers++
		if of.intent == press.IntentLie {
			s.Betrayals++
			continue
		}
		if supported(phaseOrders[of.phase]) {
			s.KeptOffers++
		}
	}
	if s.Offers > 0 {
		s.SuccessRate = float64(s.KeptOffers) / float64(s.Offers)
		s.HonestyRate = 1 - float64(s.Betrayals)/float64(s.Offers)
	}
}

// supported reports whether any order in the set is a support order.
func supported(orders []string) bool {
	for _, raw := range orders {
		if o, ok := grammar.Parse(raw); ok {
			if o.Kind == grammar.SupportHold || o.Kind == grammar.SupportMove {
				return true
			}
		}
	}
	return false
}

func topIntent(counts map[press.Intent]int) press.Intent {
	top := press.IntentOther
	best := 0
	// Sorted iteration keeps ties deterministic.
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[press.Intent(k)] > best {
			best = counts[press.Intent(k)]
			top = press.Intent(k)
		}
	}
	return top
}

// decodeMessage recovers a message from a record's final result, whether the
// record is fresh in memory (typed) or reloaded from JSONL (generic maps).
func decodeMessage(v any) (*press.Message, bool) {
	if msg, ok := v.(*press.Message); ok {
		return msg, true
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var msg press.Message
	if err := json.Unmarshal(buf, &msg); err != nil {
		return nil, false
	}
	if len(msg.Recipients) == 0 {
		return nil, false
	}
	return &msg, true
}

// decodeOrders recovers a validated order set from a record's final result.
func decodeOrders(v any) (types.ValidatedOrderSet, bool) {
	if orders, ok := v.(types.ValidatedOrderSet); ok {
		return orders, true
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var orders types.ValidatedOrderSet
	if err := json.Unmarshal(buf, &orders); err != nil {
		return nil, false
	}
	if len(orders) == 0 {
		return nil, false
	}
	return orders, true
}
