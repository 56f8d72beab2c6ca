package grammar

import "testing"

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		kind  Kind
		loc   string
	}{
		{
			name:  "hold",
			input: "A PAR H",
			want:  "A PAR H",
			kind:  Hold,
			loc:   "PAR",
		},
		{
			name:  "move",
			input: "A PAR - BUR",
			want:  "A PAR - BUR",
			kind:  Move,
			loc:   "PAR",
		},
		{
			name:  "lowercase_keywords",
			input: "a par - bur",
			want:  "A PAR - BUR",
			kind:  Move,
			loc:   "PAR",
		},
		{
			name:  "whitespace_collapsed",
			input: "  A   PAR    -  BUR ",
			want:  "A PAR - BUR",
			kind:  Move,
			loc:   "PAR",
		},
		{
			name:  "support_hold",
			input: "A MAR S A PAR",
			want:  "A MAR S A PAR",
			kind:  SupportHold,
			loc:   "MAR",
		},
		{
			name:  "support_move",
			input: "A MAR S A PAR - BUR",
			want:  "A MAR S A PAR - BUR",
			kind:  SupportMove,
			loc:   "MAR",
		},
		{
			name:  "convoy",
			input: "F ENG C A LON - BEL",
			want:  "F ENG C A LON - BEL",
			kind:  Convoy,
			loc:   "ENG",
		},
		{
			name:  "retreat",
			input: "A BUR R PAR",
			want:  "A BUR R PAR",
			kind:  Retreat,
			loc:   "BUR",
		},
		{
			name:  "disband",
			input: "F BRE D",
			want:  "F BRE D",
			kind:  Disband,
			loc:   "BRE",
		},
		{
			name:  "build",
			input: "build f bre",
			want:  "BUILD F BRE",
			kind:  Build,
			loc:   "BRE",
		},
		{
			name:  "coast_move",
			input: "F STP/NC - BAR",
			want:  "F STP/NC - BAR",
			kind:  Move,
			loc:   "STP/NC",
		},
		{
			name:  "coast_lowercase",
			input: "f spa/sc - wes",
			want:  "F SPA/SC - WES",
			kind:  Move,
			loc:   "SPA/SC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := Parse(tt.input)
			if !ok {
				t.Fatalf("Parse(%q) rejected", tt.input)
			}
			if o.Canonical() != tt.want {
				t.Errorf("canonical = %q, want %q", o.Canonical(), tt.want)
			}
			if o.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", o.Kind, tt.kind)
			}
			if string(o.Location()) != tt.loc {
				t.Errorf("location = %q, want %q", o.Location(), tt.loc)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	inputs := []string{
		"",
		"hold my beer",
		"A PAR",
		"A PARIS H",
		"A PA H",
		"X PAR H",
		"A PAR - ",
		"A PAR - BURGUNDY",
		"A PAR H extra",
		"A PAR S",
		"A MAR S A PAR -",
		"F ENG C A LON BEL",
		"A PAR R",
		"BUILD A",
		"BUILD A PAR extra",
		"A P4R H",
		"F STP/NORTH - BAR",
	}
	for _, in := range inputs {
		if o, ok := Parse(in); ok {
			t.Errorf("Parse(%q) accepted as %q, want reject", in, o.Canonical())
		}
	}
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "prose_wrapped",
			input: `Sure! I will order A PAR - BUR and also F BRE H this turn.`,
			want:  []string{"A PAR - BUR", "F BRE H"},
		},
		{
			name:  "quoted_list_fragment",
			input: `["A PAR - BUR", "A MAR S A PAR - BUR"`,
			want:  []string{"A PAR - BUR", "A MAR S A PAR - BUR"},
		},
		{
			name:  "longest_match_wins",
			input: `A MAR S A PAR - BUR`,
			want:  []string{"A MAR S A PAR - BUR"},
		},
		{
			name:  "no_orders",
			input: `I am thinking about my strategy for this phase.`,
			want:  nil,
		},
		{
			name:  "punctuation_stripped",
			input: "Orders: `A PAR H`, (F BRE - MAO).",
			want:  []string{"A PAR H", "F BRE - MAO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d orders %v, want %d", len(got), canonicals(got), len(tt.want))
			}
			for i, o := range got {
				if o.Canonical() != tt.want[i] {
					t.Errorf("order[%d] = %q, want %q", i, o.Canonical(), tt.want[i])
				}
			}
		})
	}
}

func canonicals(orders []Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.Canonical()
	}
	return out
}
