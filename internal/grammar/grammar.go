// Package grammar defines the order token grammar: the single authority for
// deciding whether a string is a well-formed order and for producing its
// canonical form. All later equality checks (legality filtering, duplicate
// detection) compare canonical forms, never raw text.
//
// Accepted productions:
//
//	<unit> <loc> H                           hold
//	<unit> <loc> - <loc>                     move
//	<unit> <loc> S <unit> <loc> [- <loc>]    support hold / support move
//	<unit> <loc> C <unit> <loc> - <loc>      convoy
//	<unit> <loc> R <loc>                     retreat
//	<unit> <loc> D                           disband
//	BUILD <unit> <loc>                       build
//
// Keywords match case-insensitively. Locations are exactly three letters with
// an optional two-letter coast suffix ("STP/NC"). The canonical form is the
// token sequence upper-cased and joined by single spaces.
package grammar

import (
	"strings"

	"concordat/internal/types"
)

// UnitType is an army or fleet designator.
type UnitType string

const (
	Army  UnitType = "A"
	Fleet UnitType = "F"
)

// Kind discriminates the order productions.
type Kind int

const (
	Hold Kind = iota
	Move
	SupportHold
	SupportMove
	Convoy
	Retreat
	Disband
	Build
)

var kindNames = map[Kind]string{
	Hold:        "hold",
	Move:        "move",
	SupportHold: "support_hold",
	SupportMove: "support_move",
	Convoy:      "convoy",
	Retreat:     "retreat",
	Disband:     "disband",
	Build:       "build",
}

func (k Kind) String() string { return kindNames[k] }

// Order is one recognized order. Loc is the acting unit's location (the build
// site for builds); Dest is the destination for moves and retreats; the Aux
// fields describe the supported or convoyed unit.
type Order struct {
	Kind    Kind
	Unit    UnitType
	Loc     types.Location
	Dest    types.Location
	AuxUnit UnitType
	AuxLoc  types.Location
	AuxDest types.Location

	canonical string
}

// Canonical returns the normalized order string: upper-cased tokens joined by
// single spaces.
func (o Order) Canonical() string { return o.canonical }

// Location returns the location the order is assigned to: the first location
// token of the canonical form.
func (o Order) Location() types.Location { return o.Loc }

// Parse recognizes s as an order. The boolean is false for anything that does
// not match a production exactly; near-misses are not reported as errors
// because non-matching leaves are expected noise, not faults.
func Parse(s string) (Order, bool) {
	toks := strings.Fields(s)
	return parseTokens(toks)
}

func parseTokens(toks []string) (Order, bool) {
	if len(toks) == 0 {
		return Order{}, false
	}

	// BUILD <unit> <loc>
	if strings.EqualFold(toks[0], "BUILD") {
		if len(toks) != 3 {
			return Order{}, false
		}
		unit, ok := parseUnit(toks[1])
		if !ok {
			return Order{}, false
		}
		loc, ok := parseLocation(toks[2])
		if !ok {
			return Order{}, false
		}
		return finish(Order{Kind: Build, Unit: unit, Loc: loc},
			"BUILD", string(unit), string(loc)), true
	}

	if len(toks) < 3 {
		return Order{}, false
	}
	unit, ok := parseUnit(toks[0])
	if !ok {
		return Order{}, false
	}
	loc, ok := parseLocation(toks[1])
	if !ok {
		return Order{}, false
	}

	verb := strings.ToUpper(toks[2])
	rest := toks[3:]

	switch verb {
	case "H":
		if len(rest) != 0 {
			return Order{}, false
		}
		return finish(Order{Kind: Hold, Unit: unit, Loc: loc},
			string(unit), string(loc), "H"), true

	case "-":
		if len(rest) != 1 {
			return Order{}, false
		}
		dest, ok := parseLocation(rest[0])
		if !ok {
			return Order{}, false
		}
		return finish(Order{Kind: Move, Unit: unit, Loc: loc, Dest: dest},
			string(unit), string(loc), "-", string(dest)), true

	case "S":
		// S <unit> <loc> for support-hold, plus "- <loc>" for support-move.
		if len(rest) != 2 && len(rest) != 4 {
			return Order{}, false
		}
		auxUnit, ok := parseUnit(rest[0])
		if !ok {
			return Order{}, false
		}
		auxLoc, ok := parseLocation(rest[1])
		if !ok {
			return Order{}, false
		}
		if len(rest) == 2 {
			return finish(Order{Kind: SupportHold, Unit: unit, Loc: loc, AuxUnit: auxUnit, AuxLoc: auxLoc},
				string(unit), string(loc), "S", string(auxUnit), string(auxLoc)), true
		}
		if rest[2] != "-" {
			return Order{}, false
		}
		auxDest, ok := parseLocation(rest[3])
		if !ok {
			return Order{}, false
		}
		return finish(Order{Kind: SupportMove, Unit: unit, Loc: loc, AuxUnit: auxUnit, AuxLoc: auxLoc, AuxDest: auxDest},
			string(unit), string(loc), "S", string(auxUnit), string(auxLoc), "-", string(auxDest)), true

	case "C":
		if len(rest) != 4 || rest[2] != "-" {
			return Order{}, false
		}
		auxUnit, ok := parseUnit(rest[0])
		if !ok {
			return Order{}, false
		}
		auxLoc, ok := parseLocation(rest[1])
		if !ok {
			return Order{}, false
		}
		auxDest, ok := parseLocation(rest[3])
		if !ok {
			return Order{}, false
		}
		return finish(Order{Kind: Convoy, Unit: unit, Loc: loc, AuxUnit: auxUnit, AuxLoc: auxLoc, AuxDest: auxDest},
			string(unit), string(loc), "C", string(auxUnit), string(auxLoc), "-", string(auxDest)), true

	case "R":
		if len(rest) != 1 {
			return Order{}, false
		}
		dest, ok := parseLocation(rest[0])
		if !ok {
			return Order{}, false
		}
		return finish(Order{Kind: Retreat, Unit: unit, Loc: loc, Dest: dest},
			string(unit), string(loc), "R", string(dest)), true

	case "D":
		if len(rest) != 0 {
			return Order{}, false
		}
		return finish(Order{Kind: Disband, Unit: unit, Loc: loc},
			string(unit), string(loc), "D"), true
	}

	return Order{}, false
}

func finish(o Order, toks ...string) Order {
	o.canonical = strings.Join(toks, " ")
	return o
}

func parseUnit(tok string) (UnitType, bool) {
	switch strings.ToUpper(tok) {
	case "A":
		return Army, true
	case "F":
		return Fleet, true
	}
	return "", false
}

// parseLocation accepts a three-letter province code with an optional
// two-letter coast suffix and returns it upper-cased.
func parseLocation(tok string) (types.Location, bool) {
	code, coast, hasCoast := strings.Cut(tok, "/")
	if !isLetters(code, 3) {
		return "", false
	}
	if hasCoast && !isLetters(coast, 2) {
		return "", false
	}
	up := strings.ToUpper(code)
	if hasCoast {
		up += "/" + strings.ToUpper(coast)
	}
	return types.Location(up), true
}

func isLetters(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// FindAll scans free-form text for grammar-shaped substrings, used when the
// generator response never decoded into a structured value. Tokens are split
// on whitespace with surrounding punctuation stripped; at each position that
// could start an order the longest matching production wins, so "A PAR - BUR"
// is recognized as a move rather than stopping early. Appearance order is
// preserved.
func FindAll(text string) []Order {
	raw := strings.Fields(text)
	toks := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(t, `"'[]{}(),.;:!`+"`")
		if t != "" {
			toks = append(toks, t)
		}
	}

	var orders []Order
	for i := 0; i < len(toks); {
		o, n := longestMatch(toks[i:])
		if n == 0 {
			i++
			continue
		}
		orders = append(orders, o)
		i += n
	}
	return orders
}

// match lengths from longest production (7 tokens) down to shortest (3).
var matchLengths = []int{7, 5, 4, 3}

func longestMatch(toks []string) (Order, int) {
	for _, n := range matchLengths {
		if n > len(toks) {
			continue
		}
		if o, ok := parseTokens(toks[:n]); ok {
			return o, n
		}
	}
	return Order{}, 0
}
