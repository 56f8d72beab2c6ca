// Package prompt assembles the order and negotiation prompts sent to the
// text-generation service. Prompt text is input to an untrusted collaborator;
// nothing downstream may assume the model honored any of it.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"concordat/internal/press"
	"concordat/internal/types"
)

// Rulebook is the order-format reference appended to every order prompt.
const Rulebook = `### DIPLOMACY - COMPLETE ORDER-FORMAT REFERENCE (7-Player Standard Map) ###

GENERAL
- Seven powers each control Armies (A) and/or Fleets (F).
- Each unit occupies ONE province. Only one unit may occupy a province at a time.
- All orders use three-letter province abbreviations (e.g., PAR, TYR, NTH).
- All players write orders simultaneously; adjudication follows standard rules.

ORDER TYPES & SYNTAX
1. Hold    - A PAR H
2. Move    - A PAR - BUR
3. Support - A MAR S A PAR - BUR   (support-hold: A MAR S A PAR)
4. Convoy  - F ENG C A LON - BEL   (one convoy order per fleet in the chain)
5. Retreat - A BUR R PAR
6. Disband - A BUR D
7. Build   - BUILD A PAR

COASTAL PROVINCES
- Specify coasts when needed: F STP/NC - BAR, F SPA/SC - WES.

OUTPUT SPECIFICATION
Return exactly one JSON array of strings, one string per current unit
location. Each string must be a properly-formatted order as defined above.
Example: ["A PAR - BUR", "A MAR S A PAR - BUR", "F ENG C A LON - BEL"]
NO extra keys, explanation, or text outside the JSON array.`

// MessageSystem is the system context for negotiation prompts.
const MessageSystem = `You are a Diplomacy agent. Reply in English only.
Return only a single JSON object, no extra text.
SCHEMA:
  {
    "recipients": ["<power>", ...],       REQUIRED, non-empty array
    "message": "<your message>",          REQUIRED, non-empty string
    "meta": {                             OPTIONAL
      "intent": "offer_alliance|request_support|inform|threaten|lie|other",
      "trust": {"<power>": 0.0-1.0, ...},
      "confidence": 0.0-1.0
    }
  }
To send no message this phase, return exactly {}.`

// Orders builds the order prompt for one power: rulebook, phase, and the
// legal-action snapshot restricted to the power's own locations, serialized
// deterministically.
func Orders(power types.Power, phase types.Phase, locs []types.Location, legal types.LegalActionSet) string {
	own := make(map[types.Location][]string, len(locs))
	for _, loc := range locs {
		own[loc] = legal[loc]
	}

	var sb strings.Builder
	sb.WriteString(Rulebook)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "# You are %s. Current phase: %s\n", power, phase)
	sb.WriteString("Legal orders for your units:\n")
	sb.WriteString(marshalLegal(own))
	sb.WriteString("\n\nBEGIN JSON ARRAY NOW:")
	return sb.String()
}

// Messages builds the negotiation prompt for one power, including the
// messages already exchanged this phase.
func Messages(power types.Power, phase types.Phase, others []types.Power, history []*press.Message) string {
	names := make([]string, len(others))
	for i, p := range others {
		names[i] = string(p)
	}

	var sb strings.Builder
	sb.WriteString("### DIPLOMACY CHAT ###\n")
	fmt.Fprintf(&sb, "Phase: %s\n", phase)
	fmt.Fprintf(&sb, "You are the official representative of %s.\n", power)
	sb.WriteString("You may send a private message to one or more other powers. ")
	sb.WriteString("Alliances, coordinated moves, offers of support, deception and betrayal are all legitimate tools.\n")
	fmt.Fprintf(&sb, "Valid recipients: %s.\n\n", strings.Join(names, ", "))

	sb.WriteString("Past messages this phase:\n")
	if len(history) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, m := range history {
		recips := make([]string, len(m.Recipients))
		for i, r := range m.Recipients {
			recips[i] = string(r)
		}
		fmt.Fprintf(&sb, "%s -> %s: %s\n", m.Sender, strings.Join(recips, ","), m.Body)
	}

	sb.WriteString("\nYour reply (JSON only):")
	return sb.String()
}

// marshalLegal renders the legal-action map with sorted keys so identical
// snapshots always produce identical prompts.
func marshalLegal(own map[types.Location][]string) string {
	locs := make([]string, 0, len(own))
	for loc := range own {
		locs = append(locs, string(loc))
	}
	sort.Strings(locs)

	var sb strings.Builder
	sb.WriteString("{\n")
	for i, loc := range locs {
		actions, _ := json.Marshal(own[types.Location(loc)])
		fmt.Fprintf(&sb, "  %q: %s", loc, actions)
		if i < len(locs)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}
