package engine

import (
	"context"
	"fmt"
	"sync"

	"concordat/internal/press"
	"concordat/internal/types"
)

// ScriptedPhase is one pre-baked phase of a scripted game: the legal-action
// snapshot and each power's orderable locations.
type ScriptedPhase struct {
	Phase     types.Phase
	Orderable map[types.Power][]types.Location
	Legal     types.LegalActionSet
}

// Scripted is an in-memory Engine driven by a fixed phase script. It backs
// the test suite and the dry-run mode; it performs no adjudication, it only
// records what was submitted and walks the script.
type Scripted struct {
	mu      sync.Mutex
	powers  []types.Power
	phases  []ScriptedPhase
	current int

	Submitted map[types.Phase]map[types.Power]types.ValidatedOrderSet
	Delivered []*press.Message
}

// NewScripted builds a scripted engine over the given phases.
func NewScripted(powers []types.Power, phases ...ScriptedPhase) *Scripted {
	return &Scripted{
		powers:    powers,
		phases:    phases,
		Submitted: make(map[types.Phase]map[types.Power]types.ValidatedOrderSet),
	}
}

func (s *Scripted) CurrentPhase() types.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.phases) {
		return ""
	}
	return s.phases[s.current].Phase
}

func (s *Scripted) Participants() []types.Power {
	out := make([]types.Power, len(s.powers))
	copy(out, s.powers)
	return out
}

func (s *Scripted) OrderableLocations(power types.Power) []types.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.phases) {
		return nil
	}
	locs := s.phases[s.current].Orderable[power]
	out := make([]types.Location, len(locs))
	copy(out, locs)
	return out
}

func (s *Scripted) LegalActions() types.LegalActionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.phases) {
		return nil
	}
	// Snapshot copy: the caller must be free to hold it across the phase.
	src := s.phases[s.current].Legal
	out := make(types.LegalActionSet, len(src))
	for loc, actions := range src {
		cp := make([]string, len(actions))
		copy(cp, actions)
		out[loc] = cp
	}
	return out
}

func (s *Scripted) SubmitOrders(_ context.Context, power types.Power, orders types.ValidatedOrderSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.phases) {
		return fmt.Errorf("submit after game end")
	}
	phase := s.phases[s.current].Phase
	if s.Submitted[phase] == nil {
		s.Submitted[phase] = make(map[types.Power]types.ValidatedOrderSet)
	}
	s.Submitted[phase][power] = orders
	return nil
}

func (s *Scripted) DeliverMessage(_ context.Context, msg *press.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delivered = append(s.Delivered, msg)
	return nil
}

func (s *Scripted) AdvancePhase(_ context.Context) (PhaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.phases) {
		return PhaseResult{Done: true}, nil
	}
	completed := s.phases[s.current].Phase
	s.current++
	res := PhaseResult{Completed: completed, Done: s.current >= len(s.phases)}
	if !res.Done {
		res.Next = s.phases[s.current].Phase
	}
	return res, nil
}
