package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"concordat/internal/audit"
	"concordat/internal/campaign"
	"concordat/internal/config"
	"concordat/internal/engine"
	"concordat/internal/generator"
	"concordat/internal/types"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a campaign: one generation + interpretation cycle per power per phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		timeout, err := cfg.GeneratorTimeout()
		if err != nil {
			return err
		}

		var sinks []audit.Sink
		if cfg.Audit.TrailPath != "" {
			sink, err := audit.NewJSONLSink(cfg.Audit.TrailPath)
			if err != nil {
				return err
			}
			sinks = append(sinks, sink)
		}
		if cfg.Audit.ArchivePath != "" {
			store, err := audit.NewStore(cfg.Audit.ArchivePath)
			if err != nil {
				return err
			}
			sinks = append(sinks, store)
		}
		trail := audit.NewTrail(sinks...)
		defer trail.Close()

		gen, err := buildGenerator(ctx, cfg)
		if err != nil {
			return err
		}

		eng, err := buildEngine()
		if err != nil {
			return err
		}

		logger.Info("starting campaign",
			zap.String("run_id", trail.RunID()),
			zap.String("provider", cfg.Generator.Provider),
			zap.Int("max_year", cfg.Game.MaxYear),
			zap.Bool("press", cfg.Game.Press))

		runner := campaign.New(eng, gen, trail, logger, campaign.Config{
			Models:       cfg.Models,
			DefaultModel: cfg.Generator.DefaultModel,
			MaxTokens:    cfg.Generator.MaxTokens,
			Timeout:      timeout,
			MaxYear:      cfg.Game.MaxYear,
			Press:        cfg.Game.Press,
		})
		if err := runner.Run(ctx); err != nil {
			return err
		}

		for _, serr := range trail.SinkErrors() {
			logger.Warn("audit sink error", zap.Error(serr))
		}
		logger.Info("campaign finished",
			zap.Int("records", len(trail.Records())),
			zap.String("trail", cfg.Audit.TrailPath))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"play a canned two-phase game against the scripted engine instead of a live one")
}

// buildGenerator selects the generation backend. Dry runs use a canned
// generator that exercises the pipeline without any network.
func buildGenerator(ctx context.Context, cfg *config.Config) (generator.Client, error) {
	if dryRun {
		return cannedGenerator(), nil
	}
	switch cfg.Generator.Provider {
	case "gemini":
		return generator.NewGeminiClient(ctx, cfg.ResolveAPIKey())
	case "openai", "ollama":
		timeout, err := cfg.GeneratorTimeout()
		if err != nil {
			return nil, err
		}
		return generator.NewOpenAIClient(generator.OpenAIConfig{
			APIKey:  cfg.ResolveAPIKey(),
			BaseURL: cfg.Generator.BaseURL,
			Timeout: timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}

// buildEngine wires the rules engine. Live adjudication is an external
// collaborator reached through engine.Engine; without one configured, only
// dry runs are possible.
func buildEngine() (engine.Engine, error) {
	if !dryRun {
		return nil, fmt.Errorf("no rules engine configured; use --dry-run for the scripted game")
	}
	powers := []types.Power{"FRANCE", "GERMANY"}
	return engine.NewScripted(powers,
		engine.ScriptedPhase{
			Phase: "S1901M",
			Orderable: map[types.Power][]types.Location{
				"FRANCE":  {"PAR", "MAR", "BRE"},
				"GERMANY": {"MUN", "BER", "KIE"},
			},
			Legal: types.LegalActionSet{
				"PAR": {"A PAR H", "A PAR - BUR", "A PAR - PIC", "A PAR - GAS"},
				"MAR": {"A MAR H", "A MAR - PIE", "A MAR - SPA"},
				"BRE": {"F BRE H", "F BRE - MAO", "F BRE - ENG"},
				"MUN": {"A MUN H", "A MUN - RUH", "A MUN - TYR"},
				"BER": {"A BER H", "A BER - SIL"},
				"KIE": {"F KIE H", "F KIE - DEN", "F KIE - HOL"},
			},
		},
		engine.ScriptedPhase{
			Phase: "F1901M",
			Orderable: map[types.Power][]types.Location{
				"FRANCE":  {"BUR", "MAR", "MAO"},
				"GERMANY": {"RUH", "BER", "DEN"},
			},
			Legal: types.LegalActionSet{
				"BUR": {"A BUR H", "A BUR - BEL", "A BUR - MUN"},
				"MAR": {"A MAR H", "A MAR - SPA"},
				"MAO": {"F MAO H", "F MAO - POR", "F MAO - SPA/SC"},
				"RUH": {"A RUH H", "A RUH - BEL", "A RUH - HOL"},
				"BER": {"A BER H", "A BER - PRU"},
				"DEN": {"F DEN H", "F DEN - SWE"},
			},
		},
	), nil
}

// cannedGenerator replays fixed responses with the kinds of wrapping real
// models produce, so a dry run exercises every recovery path.
func cannedGenerator() generator.Client {
	orders := map[string]int{}
	return generator.Func(func(_ context.Context, req generator.Request) (string, error) {
		if req.System != "" {
			// Negotiation round.
			return `{"recipients": ["GERMANY"], "message": "Shall we keep the peace this year?",
				"meta": {"intent": "offer_alliance", "trust": {"GERMANY": 0.7}}}`, nil
		}
		orders[req.Model]++
		switch orders[req.Model] % 3 {
		case 1:
			return "```json\n[\"A PAR - BUR\", \"F BRE - MAO\", \"A MUN - RUH\", \"F KIE - DEN\"]\n```", nil
		case 2:
			return `Of course! My orders: {"BUR": "- BEL", "RUH": "- HOL"} Good luck to all.`, nil
		default:
			return "I would rather not reveal my plans.", nil
		}
	})
}
