// Package engine defines the rules-engine collaborator. The engine is the
// sole authority on legality and adjudication; the pipeline only ever queries
// it, never reimplements it.
package engine

import (
	"context"

	"concordat/internal/press"
	"concordat/internal/types"
)

// PhaseResult is what advancing a phase reports back.
type PhaseResult struct {
	Completed types.Phase
	Next      types.Phase
	Done      bool
}

// Engine is the external rules engine. LegalActions is queried once per phase
// before any power's interpretation begins; the returned snapshot is treated
// as immutable for the rest of the phase.
type Engine interface {
	// CurrentPhase returns the phase awaiting orders.
	CurrentPhase() types.Phase

	// Participants returns every power in the game, dead or alive, for
	// message-recipient validation.
	Participants() []types.Power

	// OrderableLocations returns the locations whose units require exactly
	// one order from power this phase.
	OrderableLocations(power types.Power) []types.Location

	// LegalActions returns the full legal-action snapshot for the current
	// phase, covering every orderable location of every power.
	LegalActions() types.LegalActionSet

	// SubmitOrders hands power's validated order set to the engine.
	SubmitOrders(ctx context.Context, power types.Power, orders types.ValidatedOrderSet) error

	// DeliverMessage passes a validated negotiation message into the
	// engine's messaging mechanism.
	DeliverMessage(ctx context.Context, msg *press.Message) error

	// AdvancePhase adjudicates the submitted orders and moves to the next
	// phase.
	AdvancePhase(ctx context.Context) (PhaseResult, error)
}
