package interpret

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		parsed bool
	}{
		{
			name:   "bare_array",
			input:  `["A PAR - BUR"]`,
			parsed: true,
		},
		{
			name:   "bare_object",
			input:  `{"recipients": ["FRANCE"], "message": "hello"}`,
			parsed: true,
		},
		{
			name:   "prose_wrapped_array",
			input:  `Sure! Here are my orders: ["A PAR - BUR", "F BRE H"] Good luck!`,
			parsed: true,
		},
		{
			name:   "markdown_fenced",
			input:  "```json\n[\"A PAR - BUR\"]\n```",
			parsed: true,
		},
		{
			name:   "fence_without_language",
			input:  "```\n{\"message\": \"hi\", \"recipients\": [\"ITALY\"]}\n```",
			parsed: true,
		},
		{
			name:   "braces_inside_string_literal",
			input:  `noise {"message": "use } carefully", "recipients": ["ITALY"]} noise`,
			parsed: true,
		},
		{
			name:   "escaped_quote_in_string",
			input:  `{"message": "she said \"yes\"", "recipients": ["ITALY"]}`,
			parsed: true,
		},
		{
			name:   "truncated_structure",
			input:  `["A PAR - BUR", "A MAR`,
			parsed: false,
		},
		{
			name:   "plain_prose",
			input:  `I will hold everything this turn.`,
			parsed: false,
		},
		{
			name:   "empty",
			input:  "",
			parsed: false,
		},
		{
			name:   "null_literal",
			input:  "null",
			parsed: false,
		},
		{
			name:   "mismatched_brackets",
			input:  `{"a": [1, 2}`,
			parsed: false,
		},
		{
			name:   "second_candidate_decodes",
			input:  `{"bad": } then ["A PAR H"] follows`,
			parsed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got.Parsed != tt.parsed {
				t.Fatalf("Normalize(%q).Parsed = %v, want %v", tt.input, got.Parsed, tt.parsed)
			}
			if got.Raw != tt.input {
				t.Errorf("original text not retained: %q", got.Raw)
			}
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	got := Normalize(`Sure! ["A PAR - BUR"]`)
	if !got.Parsed {
		t.Fatal("expected parsed attempt")
	}
	want := []any{"A PAR - BUR"}
	if !reflect.DeepEqual(got.Value, want) {
		t.Errorf("value = %#v, want %#v", got.Value, want)
	}
}

func TestBracketCandidates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "object_and_array",
			input: `a {"x": 1} b [2, 3] c`,
			want:  []string{`{"x": 1}`, `[2, 3]`},
		},
		{
			name:  "nested",
			input: `{"orders": ["A PAR H"]}`,
			want:  []string{`{"orders": ["A PAR H"]}`},
		},
		{
			name:  "mismatch_resets",
			input: `{"a": 1] {"b": 2}`,
			want:  []string{`{"b": 2}`},
		},
		{
			name:  "unterminated",
			input: `{"a": 1`,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bracketCandidates(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("bracketCandidates(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
