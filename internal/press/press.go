// Package press validates negotiation-message responses. A response either
// becomes a fully-formed Message or the power is silent for the phase; no
// partially-valid message ever leaves this package.
package press

import (
	"encoding/json"
	"strings"

	"concordat/internal/interpret"
	"concordat/internal/types"
)

// Intent classifies a message's declared purpose. Unrecognized or absent
// intents coerce to IntentOther.
type Intent string

const (
	IntentOfferAlliance  Intent = "offer_alliance"
	IntentRequestSupport Intent = "request_support"
	IntentInform         Intent = "inform"
	IntentThreaten       Intent = "threaten"
	IntentLie            Intent = "lie"
	IntentOther          Intent = "other"
)

var knownIntents = map[Intent]bool{
	IntentOfferAlliance:  true,
	IntentRequestSupport: true,
	IntentInform:         true,
	IntentThreaten:       true,
	IntentLie:            true,
	IntentOther:          true,
}

// ParseIntent coerces a raw intent string into the declared enum.
func ParseIntent(s string) Intent {
	in := Intent(strings.ToLower(strings.TrimSpace(s)))
	if knownIntents[in] {
		return in
	}
	return IntentOther
}

// Metadata is the optional structured annotation on a message. Trust values
// and confidence are clamped into [0,1]; unknown trust keys are kept as-is,
// downstream consumers decide their relevance.
type Metadata struct {
	Intent     Intent                  `json:"intent"`
	Trust      map[types.Power]float64 `json:"trust,omitempty"`
	Confidence *float64                `json:"confidence,omitempty"`
}

// Message is one validated negotiation message. Immutable after validation.
type Message struct {
	Sender     types.Power   `json:"sender"`
	Recipients []types.Power `json:"recipients"`
	Body       string        `json:"body"`
	Meta       *Metadata     `json:"meta,omitempty"`
}

// Report records why a response was accepted or rejected, for the audit
// record.
type Report struct {
	Raw               string
	ParseOK           bool
	Silent            bool
	Reason            string // empty when a message was produced
	DroppedRecipients []string
}

// envelope is the schema the generator is asked to produce.
type envelope struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	Meta       *struct {
		Intent     string             `json:"intent"`
		Trust      map[string]float64 `json:"trust"`
		Confidence *float64           `json:"confidence"`
	} `json:"meta"`
}

// Validate interprets a message-intent response for sender. others is the set
// of valid recipients (every participant but the sender). A nil Message means
// the power stays silent this phase; silence is an outcome, not an error.
func Validate(raw string, sender types.Power, others []types.Power) (*Message, Report) {
	report := Report{Raw: raw}

	attempt := interpret.Normalize(raw)
	report.ParseOK = attempt.Parsed
	if !attempt.Parsed {
		return silent(&report, "response not decodable")
	}

	obj, ok := attempt.Value.(map[string]any)
	if !ok {
		return silent(&report, "response is not an object")
	}
	if len(obj) == 0 {
		// Explicit empty-object sentinel: the power chooses silence.
		return silent(&report, "empty-object sentinel")
	}

	// Re-encode the already-decoded value so the envelope decode sees exactly
	// what normalization recovered (the raw text may have had wrappers).
	buf, err := json.Marshal(obj)
	if err != nil {
		return silent(&report, "response not re-encodable")
	}
	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return silent(&report, "schema mismatch: "+err.Error())
	}

	body := strings.TrimSpace(env.Message)
	if body == "" {
		return silent(&report, "empty message body")
	}

	recipients, dropped := filterRecipients(env.Recipients, others)
	report.DroppedRecipients = dropped
	if len(recipients) == 0 {
		return silent(&report, "no valid recipients")
	}

	msg := &Message{
		Sender:     sender,
		Recipients: recipients,
		Body:       body,
	}
	if env.Meta != nil {
		meta := &Metadata{Intent: ParseIntent(env.Meta.Intent)}
		if len(env.Meta.Trust) > 0 {
			meta.Trust = make(map[types.Power]float64, len(env.Meta.Trust))
			for p, v := range env.Meta.Trust {
				meta.Trust[types.Power(p)] = clamp01(v)
			}
		}
		if env.Meta.Confidence != nil {
			c := clamp01(*env.Meta.Confidence)
			meta.Confidence = &c
		}
		msg.Meta = meta
	}

	return msg, report
}

func silent(report *Report, reason string) (*Message, Report) {
	report.Silent = true
	report.Reason = reason
	return nil, *report
}

// filterRecipients keeps the ordered, distinct recipients that name a valid
// other participant; everything else is dropped, not fatal.
func filterRecipients(raw []string, others []types.Power) ([]types.Power, []string) {
	valid := make(map[types.Power]bool, len(others))
	for _, p := range others {
		valid[p] = true
	}

	var kept []types.Power
	var dropped []string
	seen := make(map[types.Power]bool)
	for _, r := range raw {
		p := types.Power(strings.ToUpper(strings.TrimSpace(r)))
		if !valid[p] {
			dropped = append(dropped, r)
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		kept = append(kept, p)
	}
	return kept, dropped
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
