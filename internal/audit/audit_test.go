package audit

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concordat/internal/types"
)

func TestTrailAppendOrdering(t *testing.T) {
	trail := NewTrail()

	trail.Append(Record{Phase: "S1901M", Power: "FRANCE", Kind: KindMessage})
	trail.Append(Record{Phase: "S1901M", Power: "FRANCE", Kind: KindAction})
	trail.Append(Record{Phase: "F1901M", Power: "FRANCE", Kind: KindAction})

	recs := trail.PowerRecords("FRANCE")
	require.Len(t, recs, 3)
	assert.Equal(t, KindMessage, recs[0].Kind)
	assert.Equal(t, KindAction, recs[1].Kind)
	assert.True(t, recs[0].Seq < recs[1].Seq && recs[1].Seq < recs[2].Seq)
	for _, r := range recs {
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, trail.RunID(), r.RunID)
	}
}

func TestTrailConcurrentAppend(t *testing.T) {
	trail := NewTrail()
	powers := []types.Power{"AUSTRIA", "ENGLAND", "FRANCE", "GERMANY", "ITALY", "RUSSIA", "TURKEY"}
	const perPower = 20

	var wg sync.WaitGroup
	for _, p := range powers {
		wg.Add(1)
		go func(p types.Power) {
			defer wg.Done()
			for i := 0; i < perPower; i++ {
				kind := KindMessage
				if i%2 == 1 {
					kind = KindAction
				}
				trail.Append(Record{Phase: "S1901M", Power: p, Kind: kind})
			}
		}(p)
	}
	wg.Wait()

	recs := trail.Records()
	require.Len(t, recs, len(powers)*perPower)

	// Seq is strictly increasing in append order.
	for i := 1; i < len(recs); i++ {
		assert.Equal(t, recs[i-1].Seq+1, recs[i].Seq)
	}

	// Per-power order matches each goroutine's append order.
	for _, p := range powers {
		pr := trail.PowerRecords(p)
		require.Len(t, pr, perPower)
		for i, r := range pr {
			want := KindMessage
			if i%2 == 1 {
				want = KindAction
			}
			assert.Equal(t, want, r.Kind)
		}
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.jsonl")
	sink, err := NewJSONLSink(path)
	require.NoError(t, err)

	trail := NewTrail(sink)
	trail.Append(Record{
		Phase:        "S1901M",
		Power:        "FRANCE",
		Kind:         KindAction,
		RawInput:     `Sure! ["A PAR - BUR"]`,
		ParseOK:      true,
		Extracted:    []string{"A PAR - BUR"},
		Accepted:     []string{"A PAR - BUR"},
		FinalResult:  map[string]string{"PAR": "A PAR - BUR"},
		FallbackUsed: false,
	})
	trail.Append(Record{
		Phase:  "S1901M",
		Power:  "FRANCE",
		Kind:   KindMessage,
		Silent: true,
		Reason: "empty-object sentinel",
	})
	require.NoError(t, trail.Close())
	require.Empty(t, trail.SinkErrors())

	recs, err := ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, KindAction, recs[0].Kind)
	assert.Equal(t, `Sure! ["A PAR - BUR"]`, recs[0].RawInput)
	assert.Equal(t, []string{"A PAR - BUR"}, recs[0].Extracted)
	assert.True(t, recs[1].Silent)
}

func TestStoreArchivesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	trail := NewTrail(store)
	trail.Append(Record{Phase: "S1901M", Power: "FRANCE", Kind: KindAction, FallbackUsed: true})
	trail.Append(Record{Phase: "S1901M", Power: "FRANCE", Kind: KindMessage, Silent: true})
	trail.Append(Record{Phase: "F1901M", Power: "ITALY", Kind: KindAction})
	require.Empty(t, trail.SinkErrors())

	counts, err := store.CountByKind(trail.RunID())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[KindAction])
	assert.Equal(t, 1, counts[KindMessage])
}
