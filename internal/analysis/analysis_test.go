package analysis

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concordat/internal/audit"
	"concordat/internal/press"
	"concordat/internal/types"
)

func fptr(v float64) *float64 { return &v }

func sampleRecords() []audit.Record {
	return []audit.Record{
		{
			Phase: "S1901M", Power: "FRANCE", Kind: audit.KindMessage,
			FinalResult: &press.Message{
				Sender:     "FRANCE",
				Recipients: []types.Power{"GERMANY"},
				Body:       "Shall we split Burgundy?",
				Meta: &press.Metadata{
					Intent:     press.IntentOfferAlliance,
					Trust:      map[types.Power]float64{"GERMANY": 0.8},
					Confidence: fptr(0.9),
				},
			},
		},
		{
			Phase: "S1901M", Power: "FRANCE", Kind: audit.KindAction,
			FinalResult: types.ValidatedOrderSet{
				"PAR": {Order: "A PAR S A MUN - RUH"},
				"MAR": {Order: "A MAR H", Fallback: true},
			},
			FallbackUsed: true,
			Illegal:      2,
		},
		{
			Phase: "S1901M", Power: "GERMANY", Kind: audit.KindMessage,
			Silent: true, Reason: "empty-object sentinel",
		},
		{
			Phase: "S1901M", Power: "GERMANY", Kind: audit.KindAction,
			FinalResult: types.ValidatedOrderSet{
				"MUN": {Order: "A MUN - RUH"},
			},
		},
		{
			Phase: "F1901M", Power: "FRANCE", Kind: audit.KindMessage,
			FinalResult: &press.Message{
				Sender:     "FRANCE",
				Recipients: []types.Power{"GERMANY"},
				Body:       "Trust me.",
				Meta:       &press.Metadata{Intent: press.IntentLie},
			},
		},
		{
			Phase: "F1901M", Power: "FRANCE", Kind: audit.KindAction,
			FinalResult: types.ValidatedOrderSet{
				"PAR": {Order: "A PAR - BUR"},
				"MAR": {Order: "A MAR - PIE"},
			},
		},
	}
}

func TestComputePowerStats(t *testing.T) {
	stats := Compute(sampleRecords())
	require.Len(t, stats, 2)

	fra := stats[0]
	require.Equal(t, types.Power("FRANCE"), fra.Power)
	assert.Equal(t, 2, fra.MessagesSent)
	assert.Equal(t, 0, fra.SilentPhases)
	assert.InDelta(t, 0.8, fra.AvgTrust, 1e-9)
	assert.Equal(t, 2, fra.ActionRecords)
	assert.Equal(t, 2, fra.IllegalDropped)
	// One fallback across four resolved locations.
	assert.InDelta(t, 0.25, fra.FallbackRate, 1e-9)
	// The alliance offer was backed by a support order; the lie is a betrayal.
	assert.Equal(t, 2, fra.Offers)
	assert.Equal(t, 1, fra.KeptOffers)
	assert.Equal(t, 1, fra.Betrayals)
	assert.InDelta(t, 0.5, fra.SuccessRate, 1e-9)
	assert.InDelta(t, 0.5, fra.HonestyRate, 1e-9)

	ger := stats[1]
	require.Equal(t, types.Power("GERMANY"), ger.Power)
	assert.Equal(t, 0, ger.MessagesSent)
	assert.Equal(t, 1, ger.SilentPhases)
	assert.Equal(t, 0, ger.Offers)
	assert.Equal(t, 0.0, ger.FallbackRate)
}

func TestFromJSONLMatchesInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.jsonl")
	sink, err := audit.NewJSONLSink(path)
	require.NoError(t, err)
	trail := audit.NewTrail(sink)
	for _, rec := range sampleRecords() {
		trail.Append(rec)
	}
	require.NoError(t, trail.Close())

	fromFile, err := FromJSONL(path)
	require.NoError(t, err)

	inMemory := Compute(sampleRecords())
	assert.Equal(t, inMemory, fromFile)
}
