package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/expand"
	"github.com/leadharvest/leadharvest-cli/internal/export"
	"github.com/leadharvest/leadharvest-cli/internal/model"
	"github.com/leadharvest/leadharvest-cli/internal/orchestrator"
	"github.com/leadharvest/leadharvest-cli/internal/source"
	"github.com/leadharvest/leadharvest-cli/internal/store"
	"github.com/leadharvest/leadharvest-cli/pkg/anthropic"
	"github.com/leadharvest/leadharvest-cli/pkg/notion"
)

// signalContext returns a context cancelled on SIGINT/SIGTERM so an
// interrupted run flows into the scrapers' autosave recovery path.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// buildOrchestrator wires the three source units from config. Query
// expansion for the map source is attached only when an Anthropic key is
// configured; without it the map source runs the original query alone.
func buildOrchestrator() *orchestrator.Orchestrator {
	scrapers := cfg.Scrapers
	unitConfig := func(src model.Source) source.Config {
		sc := scrapers.Scraper(src)
		return source.Config{
			Command:     sc.Command,
			Args:        sc.Args,
			ArtifactDir: scrapers.ArtifactDir,
			GracePeriod: scrapers.GracePeriod(),
		}
	}

	var expander source.Expander
	if cfg.Anthropic.Key != "" {
		expander = expand.New(anthropic.NewClient(cfg.Anthropic.Key)).Expand
	}

	units := []source.Unit{
		source.NewWebSearch(unitConfig(model.SourceWebSearch)),
		source.NewPronet(unitConfig(model.SourcePronet)),
		source.NewMapSearch(unitConfig(model.SourceMapSearch), expander, scrapers.MapSearchWorkers),
	}

	return orchestrator.New(units,
		orchestrator.WithInterSourcePause(scrapers.InterSourcePause()),
		orchestrator.WithHooks(progressHooks()),
	)
}

func progressHooks() orchestrator.Hooks {
	return orchestrator.Hooks{
		OnPhase: func(src model.Source, phase orchestrator.Phase) {
			zap.L().Info("run: phase",
				zap.String("source", string(src)),
				zap.String("phase", string(phase)),
			)
		},
		OnBatch: func(src model.Source, count int) {
			zap.L().Info("run: source yielded leads",
				zap.String("source", string(src)),
				zap.Int("leads", count),
			)
		},
	}
}

func newRunOptions(dataType string, maxResults int) model.RunOptions {
	return model.RunOptions{
		DataType:   model.DataType(dataType),
		MaxResults: maxResults,
		APIKeys:    cfg.Keys.Map(),
		SessionID:  uuid.New().String(),
	}
}

// buildRunResult collapses an orchestrator result into the persisted form.
func buildRunResult(res *orchestrator.Result, exportPath string) *model.RunResult {
	out := &model.RunResult{
		Sources:     res.Sources,
		MergedLeads: len(res.Leads),
		ExportPath:  exportPath,
	}
	for _, sc := range res.Sources {
		out.TotalRaw += sc.RawCount
		out.TotalLeads += sc.LeadCount
	}
	return out
}

// finishRun exports the merged leads, optionally delivers them to Notion,
// and records the terminal run state in the ledger.
func finishRun(ctx context.Context, st store.Store, runID string, res *orchestrator.Result, format export.Format, destination string) (*model.RunResult, error) {
	if destination == "" {
		destination = filepath.Join(cfg.Export.Dir, "leads-"+runID[:8])
	}

	path, err := export.Write(res.Leads, format, destination)
	if err != nil {
		_ = st.CompleteRun(ctx, runID, model.RunStatusFailed, &model.RunResult{
			Sources: res.Sources,
			Error:   err.Error(),
		})
		return nil, err
	}
	export.Summary(res.Leads, res.Sources)

	if cfg.Notion.Token != "" && cfg.Notion.LeadDB != "" {
		client := notion.NewClient(cfg.Notion.Token)
		if _, err := notion.Deliver(ctx, client, cfg.Notion.LeadDB, res.Leads); err != nil {
			// Delivery is additive; the export already succeeded.
			zap.L().Warn("run: notion delivery failed", zap.Error(err))
		}
	}

	result := buildRunResult(res, path)
	if err := st.CompleteRun(ctx, runID, model.RunStatusExported, result); err != nil {
		return nil, err
	}
	return result, nil
}

// failRun records a failed run, keeping whatever per-source outcomes exist.
func failRun(ctx context.Context, st store.Store, runID string, sources []model.SourceOutcome, runErr error) {
	result := &model.RunResult{Sources: sources, Error: runErr.Error()}
	if err := st.CompleteRun(ctx, runID, model.RunStatusFailed, result); err != nil {
		zap.L().Error("run: record failure", zap.String("run_id", runID), zap.Error(err))
	}
}
