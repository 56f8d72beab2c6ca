package interpret

import (
	"fmt"
	"sort"
	"strings"

	"concordat/internal/grammar"
)

// Candidate is one leaf string pulled out of the normalized value, with the
// extraction path it was found at. Candidates are transient: they exist only
// between extraction and filtering.
type Candidate struct {
	Text  string
	Path  string
	Keyed bool // synthesized from a location-keyed map entry
}

// Extract collects every leaf string from a parsed value in first-appearance
// order. Map keys and values are both visited: responses encode the
// unit-to-order relation in either position. For a map entry whose key looks
// like a bare location and whose value is a string, a joined "<key> <value>"
// candidate is synthesized as well, so {"PAR": "- BUR"} and "A PAR - BUR"
// normalize to the same shape before grammar matching.
//
// For an unparsed attempt the raw text is scanned for grammar-shaped
// substrings instead; no surrounding structure is required.
func Extract(a Attempt) []Candidate {
	if !a.Parsed {
		var cands []Candidate
		for _, o := range grammar.FindAll(a.Raw) {
			cands = append(cands, Candidate{Text: o.Canonical(), Path: "raw"})
		}
		return cands
	}

	var cands []Candidate
	walk(a.Value, "$", &cands)
	return cands
}

func walk(v any, path string, out *[]Candidate) {
	switch val := v.(type) {
	case string:
		*out = append(*out, Candidate{Text: val, Path: path})

	case []any:
		for i, elem := range val {
			walk(elem, fmt.Sprintf("%s[%d]", path, i), out)
		}

	case map[string]any:
		// encoding/json does not preserve object key order, so sorted keys
		// are the deterministic traversal.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			kpath := path + "." + k
			*out = append(*out, Candidate{Text: k, Path: kpath + "#key"})
			if s, ok := val[k].(string); ok && looksLikeLocation(k) {
				*out = append(*out, Candidate{
					Text:  k + " " + s,
					Path:  kpath,
					Keyed: true,
				})
			}
			walk(val[k], kpath, out)
		}
	}
	// Numbers, booleans and nulls carry no order text.
}

// looksLikeLocation reports whether s could be a location key: a three-letter
// code with optional coast, or a "A PAR"-style unit-prefixed location.
func looksLikeLocation(s string) bool {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return isLocationToken(fields[0])
	case 2:
		u := strings.ToUpper(fields[0])
		return (u == "A" || u == "F") && isLocationToken(fields[1])
	}
	return false
}

func isLocationToken(tok string) bool {
	code, coast, hasCoast := strings.Cut(tok, "/")
	if len(code) != 3 || !alpha(code) {
		return false
	}
	if hasCoast && (len(coast) != 2 || !alpha(coast)) {
		return false
	}
	return true
}

func alpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Recognized pairs a grammar-matched order with the candidate it came from.
type Recognized struct {
	Order  grammar.Order
	Source Candidate
}

// MatchOrders runs every candidate through the order grammar and keeps the
// ones that parse, in appearance order. Non-matching candidates are noise
// (commentary, partial words), dropped without ceremony.
//
// A keyed candidate like "PAR - BUR" carries no unit designator, so both
// readings are tried; at most one can survive the legality filter, since one
// location holds one unit.
func MatchOrders(cands []Candidate) []Recognized {
	var recs []Recognized
	for _, c := range cands {
		if o, ok := grammar.Parse(c.Text); ok {
			recs = append(recs, Recognized{Order: o, Source: c})
			continue
		}
		if !c.Keyed {
			continue
		}
		for _, unit := range []string{"A ", "F "} {
			if o, ok := grammar.Parse(unit + c.Text); ok {
				recs = append(recs, Recognized{Order: o, Source: c})
			}
		}
	}
	return recs
}
