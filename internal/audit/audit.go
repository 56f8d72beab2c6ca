// Package audit is the append-only record of every interpretation decision.
// The persisted sequence is a contract: external scoring tooling parses the
// field names directly, so they must stay stable. Records are never mutated
// or deleted after append.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"concordat/internal/types"
)

// Kind discriminates what a record describes.
type Kind string

const (
	KindAction  Kind = "action"
	KindMessage Kind = "message"
)

// Record is one audited pipeline outcome. One record per (power, phase,
// kind); the stage intermediates ride along so any decision can be replayed
// from the record alone.
type Record struct {
	ID    string `json:"id"`
	RunID string `json:"run_id"`
	Seq   int64  `json:"seq"`
	Time  int64  `json:"ts"` // unix milliseconds

	Phase types.Phase `json:"phase"`
	Power types.Power `json:"power"`
	Kind  Kind        `json:"kind"`

	RawInput     string   `json:"raw_input"`
	ParseOK      bool     `json:"parse_ok"`
	Extracted    []string `json:"extracted_candidates"`
	FinalResult  any      `json:"final_result"`
	FallbackUsed bool     `json:"fallback_used"`

	// Action-only detail.
	Accepted  []string         `json:"accepted,omitempty"`
	Illegal   int              `json:"illegal_dropped,omitempty"`
	Discards  []Discard        `json:"discards,omitempty"`
	Fallbacks []types.Location `json:"fallback_locations,omitempty"`

	// Message-only detail.
	Silent bool   `json:"silent,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Discard mirrors a duplicate-assignment drop for persistence.
type Discard struct {
	Loc   types.Location `json:"loc"`
	Order string         `json:"order"`
}

// Sink receives records as they are appended. Append is called under the
// trail's lock, one record at a time.
type Sink interface {
	Append(Record) error
	Close() error
}

// Trail is the shared append-only audit log for one run. Appends are
// serialized; records already appended are never touched again. Each power's
// records arrive from its own interpretation goroutine in pipeline order, so
// per-power ordering is preserved by construction.
type Trail struct {
	mu      sync.Mutex
	runID   string
	seq     int64
	records []Record
	sinks   []Sink
	errs    []error
}

// NewTrail creates a trail with a fresh run ID and the given sinks.
func NewTrail(sinks ...Sink) *Trail {
	return &Trail{runID: uuid.NewString(), sinks: sinks}
}

// RunID identifies this run in persisted records.
func (t *Trail) RunID() string { return t.runID }

// Append stamps and stores the record and forwards it to every sink. Sink
// failures are collected, not propagated: audit trouble must never abort a
// phase.
func (t *Trail) Append(rec Record) Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	rec.ID = uuid.NewString()
	rec.RunID = t.runID
	rec.Seq = t.seq
	if rec.Time == 0 {
		rec.Time = time.Now().UnixMilli()
	}

	t.records = append(t.records, rec)
	for _, s := range t.sinks {
		if err := s.Append(rec); err != nil {
			t.errs = append(t.errs, err)
		}
	}
	return rec
}

// Records returns a copy of the appended records in append order.
func (t *Trail) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// PowerRecords returns power's records in append order.
func (t *Trail) PowerRecords(power types.Power) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Record
	for _, r := range t.records {
		if r.Power == power {
			out = append(out, r)
		}
	}
	return out
}

// SinkErrors returns any errors sinks reported during the run.
func (t *Trail) SinkErrors() []error {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]error, len(t.errs))
	copy(out, t.errs)
	return out
}

// Close closes every sink.
func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var first error
	for _, s := range t.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
