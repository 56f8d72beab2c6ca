package interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concordat/internal/types"
)

var parisLegal = types.LegalActionSet{
	"PAR": {"A PAR H", "A PAR - BUR", "A PAR - PIC"},
}

func TestOrdersAcceptsWrappedArray(t *testing.T) {
	orders, report := Orders(`Sure! ["A PAR - BUR"]`, []types.Location{"PAR"}, parisLegal)

	require.Len(t, orders, 1)
	assert.Equal(t, "A PAR - BUR", orders["PAR"].Order)
	assert.False(t, orders["PAR"].Fallback)
	assert.False(t, report.FallbackUsed())
}

func TestOrdersFallsBackToHoldOnNoise(t *testing.T) {
	orders, report := Orders(`complete nonsense with no orders at all`, []types.Location{"PAR"}, parisLegal)

	require.Len(t, orders, 1)
	assert.Equal(t, "A PAR H", orders["PAR"].Order)
	assert.True(t, orders["PAR"].Fallback)
	assert.True(t, report.FallbackUsed())
	assert.Equal(t, []types.Location{"PAR"}, report.Fallbacks)
}

func TestOrdersFirstAppearanceWins(t *testing.T) {
	orders, report := Orders(`["A PAR H", "A PAR - BUR"]`, []types.Location{"PAR"}, parisLegal)

	assert.Equal(t, "A PAR H", orders["PAR"].Order)
	assert.False(t, orders["PAR"].Fallback)
	require.Len(t, report.Discards, 1)
	assert.Equal(t, Discard{Loc: "PAR", Order: "A PAR - BUR"}, report.Discards[0])
}

func TestOrdersIllegalCandidatesDroppedSilently(t *testing.T) {
	// Grammar-valid but the engine does not offer PAR -> GAS this phase.
	orders, report := Orders(`["A PAR - GAS"]`, []types.Location{"PAR"}, parisLegal)

	assert.Equal(t, "A PAR H", orders["PAR"].Order)
	assert.True(t, orders["PAR"].Fallback)
	assert.Equal(t, 1, report.Illegal)
}

func TestOrdersEveryLocationCovered(t *testing.T) {
	legal := types.LegalActionSet{
		"PAR": {"A PAR H", "A PAR - BUR"},
		"MAR": {"A MAR H", "A MAR - PIE"},
		"BRE": {"F BRE H", "F BRE - MAO"},
	}
	locs := []types.Location{"PAR", "MAR", "BRE"}

	orders, _ := Orders(`["A PAR - BUR", "F BRE - MAO"]`, locs, legal)

	require.Len(t, orders, len(locs))
	for _, loc := range locs {
		res, ok := orders[loc]
		require.True(t, ok, "missing location %s", loc)
		assert.Contains(t, legal[loc], res.Order)
	}
	assert.False(t, orders["PAR"].Fallback)
	assert.True(t, orders["MAR"].Fallback)
	assert.False(t, orders["BRE"].Fallback)
}

func TestOrdersExtractionRobustness(t *testing.T) {
	// The same legal order survives fencing, prose, and extra nesting.
	inputs := []string{
		`["A PAR - BUR"]`,
		"```json\n[\"A PAR - BUR\"]\n```",
		`Of course. My orders: ["A PAR - BUR"] — wish me luck.`,
		`{"orders": ["A PAR - BUR"]}`,
		`[["A PAR - BUR"]]`,
		`a   par   -   bur`,
	}
	for _, in := range inputs {
		orders, _ := Orders(in, []types.Location{"PAR"}, parisLegal)
		assert.Equal(t, "A PAR - BUR", orders["PAR"].Order, "input %q", in)
		assert.False(t, orders["PAR"].Fallback, "input %q", in)
	}
}

func TestOrdersKeyedMapForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "location_to_order", input: `{"PAR": "A PAR - BUR"}`},
		{name: "location_to_verb_body", input: `{"PAR": "- BUR"}`},
		{name: "unit_key_to_verb_body", input: `{"A PAR": "- BUR"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, _ := Orders(tt.input, []types.Location{"PAR"}, parisLegal)
			assert.Equal(t, "A PAR - BUR", orders["PAR"].Order)
			assert.False(t, orders["PAR"].Fallback)
		})
	}
}

func TestOrdersDeterministic(t *testing.T) {
	legal := types.LegalActionSet{
		"PAR": {"A PAR H", "A PAR - BUR"},
		"MAR": {"A MAR H", "A MAR - PIE"},
	}
	locs := []types.Location{"PAR", "MAR"}
	raw := `garbage {"PAR": "- BUR"} more garbage`

	first, firstReport := Orders(raw, locs, legal)
	second, secondReport := Orders(raw, locs, legal)

	assert.Equal(t, first, second)
	assert.Equal(t, firstReport, secondReport)
}

func TestOrdersEmptyInputFullFallback(t *testing.T) {
	legal := types.LegalActionSet{
		"PAR": {"A PAR H", "A PAR - BUR"},
		"MAR": {"A MAR H"},
	}
	locs := []types.Location{"PAR", "MAR"}

	orders, report := Orders("", locs, legal)

	require.Len(t, orders, 2)
	for _, loc := range locs {
		assert.True(t, orders[loc].Fallback, "location %s", loc)
	}
	assert.False(t, report.ParseOK)
	assert.Empty(t, report.Extracted)
}

func TestFallbackWithoutHoldIsLexicographic(t *testing.T) {
	// Retreat phase: no hold order available.
	legal := types.LegalActionSet{
		"BUR": {"A BUR R PIC", "A BUR R GAS", "A BUR D"},
	}

	orders, _ := Orders("nothing usable", []types.Location{"BUR"}, legal)

	assert.Equal(t, "A BUR D", orders["BUR"].Order)
	assert.True(t, orders["BUR"].Fallback)
}

func TestOrdersRawScanWhenTruncated(t *testing.T) {
	// Truncated mid-structure: normalization fails, the raw scan still
	// recovers the complete order.
	raw := `{"orders": ["A PAR - BUR", "A MAR`

	orders, report := Orders(raw, []types.Location{"PAR"}, parisLegal)

	assert.False(t, report.ParseOK)
	assert.Equal(t, "A PAR - BUR", orders["PAR"].Order)
	assert.False(t, orders["PAR"].Fallback)
}
