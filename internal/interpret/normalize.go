// Package interpret turns an untrusted generator response into a validated
// order set: normalization, structural extraction, grammar matching, legality
// filtering against the engine's snapshot, and the completion guarantee that
// every orderable location ends up with exactly one legal order.
package interpret

import (
	"encoding/json"
	"strings"
)

// Attempt is the Normalizer's result: either a decoded structured value or
// the original text kept for raw scanning. It is always one of the two;
// normalization never fails outward.
type Attempt struct {
	Parsed bool
	Value  any    // set when Parsed
	Raw    string // original input, always retained
}

// Normalize attempts to decode raw as a structured value. It tries the whole
// trimmed text first (after peeling markdown code fences), then scans for
// balanced top-level bracketed substrings and decodes the first one that
// parses. Anything else comes back as an unparsed attempt carrying the
// original text. Pure function of the input.
func Normalize(raw string) Attempt {
	trimmed := stripFences(strings.TrimSpace(raw))

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil && v != nil {
		return Attempt{Parsed: true, Value: v, Raw: raw}
	}

	for _, cand := range bracketCandidates(trimmed) {
		var v any
		if err := json.Unmarshal([]byte(cand), &v); err == nil && v != nil {
			return Attempt{Parsed: true, Value: v, Raw: raw}
		}
	}

	return Attempt{Raw: raw}
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		// Fence with no newline: drop just the language tag if any.
		body = strings.TrimLeft(body, "jsonJSON")
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// bracketCandidates scans s for balanced top-level {...} and [...] substrings.
// Delimiters inside string literals are ignored, escape sequences respected.
// A closer that does not match the innermost opener abandons the current
// candidate. Byte iteration is safe: the delimiters are ASCII and UTF-8 never
// embeds ASCII bytes in multi-byte sequences.
func bracketCandidates(s string) []string {
	var candidates []string
	var stack []byte
	start := -1
	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			// Only strings inside a candidate matter; a stray quote outside
			// any bracket is prose, not a literal.
			if len(stack) > 0 {
				inString = true
			}
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			stack = append(stack, b)
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			if (b == '}' && open != '{') || (b == ']' && open != '[') {
				// Mismatched closer: not a structured value, start over.
				stack = stack[:0]
				start = -1
				continue
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 && start != -1 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}

	return candidates
}
