// Package campaign drives the phase loop: one negotiation round and one
// orders round per phase, every decision audited, no power ever able to stall
// or crash the game. All per-phase state (legal-action snapshot, message
// history) lives in explicit values threaded through calls, never in package
// globals.
package campaign

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"concordat/internal/audit"
	"concordat/internal/engine"
	"concordat/internal/generator"
	"concordat/internal/interpret"
	"concordat/internal/press"
	"concordat/internal/prompt"
	"concordat/internal/types"
)

// Config controls one campaign run.
type Config struct {
	// Models maps each power to its generation model. Powers without an
	// entry use DefaultModel.
	Models       map[types.Power]string
	DefaultModel string

	// MaxTokens bounds each generation response.
	MaxTokens int

	// Timeout bounds each generation call; on expiry the power's response
	// is treated as empty and the pipeline falls back fully.
	Timeout time.Duration

	// MaxYear stops the run after the named game year completes.
	MaxYear int

	// Press enables the negotiation round before each orders round.
	Press bool
}

// Runner owns one campaign run: the engine, the generator, and the shared
// audit trail.
type Runner struct {
	eng   engine.Engine
	gen   generator.Client
	trail *audit.Trail
	log   *zap.Logger
	cfg   Config
}

// New assembles a runner.
func New(eng engine.Engine, gen generator.Client, trail *audit.Trail, log *zap.Logger, cfg Config) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Runner{eng: eng, gen: gen, trail: trail, log: log, cfg: cfg}
}

// Run executes phases until the engine reports the game done, MaxYear is
// exceeded, or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		phase := r.eng.CurrentPhase()
		if phase == "" {
			return nil
		}
		if r.cfg.MaxYear > 0 {
			if year, ok := yearOf(phase); ok && year > r.cfg.MaxYear {
				r.log.Info("reached max year, stopping",
					zap.String("phase", string(phase)), zap.Int("max_year", r.cfg.MaxYear))
				return nil
			}
		}

		res, err := r.RunPhase(ctx)
		if err != nil {
			return fmt.Errorf("phase %s: %w", phase, err)
		}
		r.log.Info("phase processed", zap.String("phase", string(res.Completed)))
		if res.Done {
			return nil
		}
	}
}

// RunPhase plays out the current phase: snapshot legal actions once, run the
// negotiation round (sequential, so later powers see earlier messages), run
// the orders round (parallel, each power's interpretation is pure), then
// advance the engine.
func (r *Runner) RunPhase(ctx context.Context) (engine.PhaseResult, error) {
	phase := r.eng.CurrentPhase()
	legal := r.eng.LegalActions()
	participants := r.eng.Participants()

	if r.cfg.Press {
		if err := r.pressRound(ctx, phase, participants); err != nil {
			return engine.PhaseResult{}, err
		}
	}
	if err := r.ordersRound(ctx, phase, participants, legal); err != nil {
		return engine.PhaseResult{}, err
	}

	return r.eng.AdvancePhase(ctx)
}

// pressRound runs the negotiation round. The phase's message history is an
// explicit local that grows as powers speak; it feeds each later power's
// prompt and dies with the phase.
func (r *Runner) pressRound(ctx context.Context, phase types.Phase, participants []types.Power) error {
	var history []*press.Message

	for _, power := range participants {
		if err := ctx.Err(); err != nil {
			return err
		}
		others := otherPowers(participants, power)
		raw := r.generate(ctx, power, generator.Request{
			Model:     r.model(power),
			System:    prompt.MessageSystem,
			Prompt:    prompt.Messages(power, phase, others, history),
			MaxTokens: r.cfg.MaxTokens,
		})

		msg, report := press.Validate(raw, power, others)
		r.trail.Append(messageRecord(phase, power, msg, report))

		if msg == nil {
			r.log.Debug("power silent",
				zap.String("power", string(power)), zap.String("reason", report.Reason))
			continue
		}
		history = append(history, msg)
		if err := r.eng.DeliverMessage(ctx, msg); err != nil {
			return fmt.Errorf("deliver message from %s: %w", power, err)
		}
	}
	return nil
}

// ordersRound fans the powers out in parallel. Each goroutine touches only
// its own power's state plus the immutable snapshot; the trail serializes its
// own appends.
func (r *Runner) ordersRound(ctx context.Context, phase types.Phase, participants []types.Power, legal types.LegalActionSet) error {
	eg, egCtx := errgroup.WithContext(ctx)

	for _, power := range participants {
		locs := r.eng.OrderableLocations(power)
		if len(locs) == 0 {
			continue
		}

		eg.Go(func() error {
			raw := r.generate(egCtx, power, generator.Request{
				Model:     r.model(power),
				Prompt:    prompt.Orders(power, phase, locs, legal),
				MaxTokens: r.cfg.MaxTokens,
			})

			orders, report := interpret.Orders(raw, locs, legal)
			r.trail.Append(actionRecord(phase, power, orders, report))

			if report.FallbackUsed() {
				r.log.Warn("fallback orders synthesized",
					zap.String("power", string(power)),
					zap.String("phase", string(phase)),
					zap.Int("locations", len(report.Fallbacks)))
			}
			if err := r.eng.SubmitOrders(egCtx, power, orders); err != nil {
				return fmt.Errorf("submit orders for %s: %w", power, err)
			}
			return nil
		})
	}

	return eg.Wait()
}

// generate performs the single bounded generator call for one power. Any
// failure degrades to empty input: the pipeline then falls back fully rather
// than aborting the phase.
func (r *Runner) generate(ctx context.Context, power types.Power, req generator.Request) string {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	raw, err := r.gen.Generate(callCtx, req)
	if err != nil {
		r.log.Warn("generator unavailable, treating response as empty",
			zap.String("power", string(power)), zap.Error(err))
		return ""
	}
	return raw
}

func (r *Runner) model(power types.Power) string {
	if m, ok := r.cfg.Models[power]; ok {
		return m
	}
	return r.cfg.DefaultModel
}

func otherPowers(participants []types.Power, self types.Power) []types.Power {
	others := make([]types.Power, 0, len(participants)-1)
	for _, p := range participants {
		if p != self {
			others = append(others, p)
		}
	}
	return others
}

// yearOf parses the year out of engine phase notation like "S1901M".
func yearOf(phase types.Phase) (int, bool) {
	s := string(phase)
	if len(s) < 5 {
		return 0, false
	}
	year, err := strconv.Atoi(s[1:5])
	if err != nil {
		return 0, false
	}
	return year, true
}

func actionRecord(phase types.Phase, power types.Power, orders types.ValidatedOrderSet, report interpret.Report) audit.Record {
	discards := make([]audit.Discard, 0, len(report.Discards))
	for _, d := range report.Discards {
		discards = append(discards, audit.Discard{Loc: d.Loc, Order: d.Order})
	}
	return audit.Record{
		Phase:        phase,
		Power:        power,
		Kind:         audit.KindAction,
		RawInput:     report.Raw,
		ParseOK:      report.ParseOK,
		Extracted:    report.Extracted,
		FinalResult:  orders,
		FallbackUsed: report.FallbackUsed(),
		Accepted:     report.Accepted,
		Illegal:      report.Illegal,
		Discards:     discards,
		Fallbacks:    report.Fallbacks,
	}
}

func messageRecord(phase types.Phase, power types.Power, msg *press.Message, report press.Report) audit.Record {
	rec := audit.Record{
		Phase:    phase,
		Power:    power,
		Kind:     audit.KindMessage,
		RawInput: report.Raw,
		ParseOK:  report.ParseOK,
		Silent:   report.Silent,
		Reason:   report.Reason,
	}
	if msg != nil {
		rec.FinalResult = msg
	}
	return rec
}
