// Package orchestrator sequences validation, source execution,
// normalization, and deduplication for single-source and combined runs.
package orchestrator

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/dedupe"
	"github.com/leadharvest/leadharvest-cli/internal/model"
	"github.com/leadharvest/leadharvest-cli/internal/normalize"
	"github.com/leadharvest/leadharvest-cli/internal/source"
	"github.com/leadharvest/leadharvest-cli/internal/validate"
)

// DefaultInterSourcePause spaces out the sequential sources in combined
// mode so the scrapers never hit shared upstream quotas simultaneously.
const DefaultInterSourcePause = 5 * time.Second

// Result is a run's terminal in-memory artifact, handed to the exporter.
type Result struct {
	Leads   []model.MergedRecord  `json:"leads"`
	Sources []model.SourceOutcome `json:"sources"`
}

// Orchestrator drives source units through the run state machine.
type Orchestrator struct {
	units map[model.Source]source.Unit
	hooks Hooks
	pause time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHooks installs the progress side-channel.
func WithHooks(h Hooks) Option {
	return func(o *Orchestrator) { o.hooks = h }
}

// WithInterSourcePause overrides the combined-mode pause between sources.
func WithInterSourcePause(d time.Duration) Option {
	return func(o *Orchestrator) { o.pause = d }
}

// New creates an orchestrator over the given source units.
func New(units []source.Unit, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		units: make(map[model.Source]source.Unit, len(units)),
		pause: DefaultInterSourcePause,
	}
	for _, u := range units {
		o.units[u.Source()] = u
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunSingle executes the pipeline for one source:
// validating → running-source → normalizing → deduplicating.
// Validation errors and hard source failures fail the run; a
// recovered-partial outcome proceeds with whatever was salvaged.
func (o *Orchestrator) RunSingle(ctx context.Context, src model.Source, q model.Query, opts model.RunOptions) (*Result, error) {
	unit, ok := o.units[src]
	if !ok {
		return nil, eris.Errorf("orchestrator: no unit registered for source %s", src)
	}

	o.hooks.phase(src, PhaseValidating)
	if err := validate.Query(src, q); err != nil {
		o.hooks.phase(src, PhaseFailed)
		return nil, err
	}
	if err := validate.Options(src, opts); err != nil {
		o.hooks.phase(src, PhaseFailed)
		return nil, err
	}

	leads, srcResult, err := o.runSource(ctx, unit, q, opts, opts.DataType)
	if err != nil {
		o.hooks.phase(src, PhaseFailed)
		return nil, err
	}

	o.hooks.phase(src, PhaseDeduplicating)
	merged := dedupe.Merge(leads)

	o.hooks.phase(src, PhaseDone)
	return &Result{Leads: merged, Sources: []model.SourceOutcome{srcResult}}, nil
}

// RunCombined executes all registered sources sequentially in the fixed
// declared order with an inter-source pause, then performs one cross-source
// merge. A hard failure in one source is recorded and the run proceeds;
// cancellation stops the loop but preserves completed sources' results
// alongside the interrupted source's recovery.
func (o *Orchestrator) RunCombined(ctx context.Context, q model.Query, opts model.RunOptions) (*Result, error) {
	var (
		allLeads []model.UnifiedRecord
		outcomes []model.SourceOutcome
	)

	ran := 0
	for _, src := range model.AllSources {
		unit, ok := o.units[src]
		if !ok {
			continue
		}

		if ran > 0 {
			if !o.interSourcePause(ctx) {
				break
			}
		}
		ran++

		srcOpts := opts
		srcOpts.DataType = combinedDataType(src, opts.DataType)

		o.hooks.phase(src, PhaseValidating)
		if err := validate.Query(src, q); err != nil {
			outcomes = append(outcomes, failedOutcome(src, err))
			continue
		}
		if err := validate.Options(src, srcOpts); err != nil {
			outcomes = append(outcomes, failedOutcome(src, err))
			continue
		}

		leads, srcResult, err := o.runSource(ctx, unit, q, srcOpts, srcOpts.DataType)
		if err != nil {
			// Per-source isolation: record the failure, keep going.
			zap.L().Error("orchestrator: source failed in combined run",
				zap.String("source", string(src)),
				zap.Error(err),
			)
			outcomes = append(outcomes, failedOutcome(src, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		allLeads = append(allLeads, leads...)
		outcomes = append(outcomes, srcResult)

		if ctx.Err() != nil {
			// The interrupted source already contributed its recovery.
			break
		}
	}

	o.hooks.phase(model.SourceCombined, PhaseDeduplicating)
	merged := dedupe.Merge(allLeads)

	o.hooks.phase(model.SourceCombined, PhaseDone)
	return &Result{Leads: merged, Sources: outcomes}, nil
}

// runSource executes one unit and normalizes its records, firing the
// record/batch hooks.
func (o *Orchestrator) runSource(ctx context.Context, unit source.Unit, q model.Query, opts model.RunOptions, dataType model.DataType) ([]model.UnifiedRecord, model.SourceOutcome, error) {
	src := unit.Source()

	o.hooks.phase(src, PhaseRunningSource)
	start := time.Now()
	outcome, err := unit.Run(ctx, q, opts)
	elapsed := time.Since(start)
	if err != nil {
		return nil, model.SourceOutcome{}, err
	}

	o.hooks.phase(src, PhaseNormalizing)
	leads := normalize.Records(src, outcome.Records, dataType)
	for _, lead := range leads {
		o.hooks.record(lead)
	}
	o.hooks.batch(src, len(leads))

	status := model.SourceStatusComplete
	if outcome.Recovered {
		status = model.SourceStatusRecovered
	}

	srcResult := model.SourceOutcome{
		Source:     src,
		Status:     status,
		RawCount:   len(outcome.Records),
		LeadCount:  len(leads),
		DurationMS: elapsed.Milliseconds(),
	}

	zap.L().Info("orchestrator: source finished",
		zap.String("source", string(src)),
		zap.String("status", string(status)),
		zap.Int("raw", srcResult.RawCount),
		zap.Int("leads", srcResult.LeadCount),
		zap.Duration("took", elapsed),
	)

	return leads, srcResult, nil
}

// interSourcePause waits the configured pause, returning false if the run
// was cancelled while waiting.
func (o *Orchestrator) interSourcePause(ctx context.Context) bool {
	if o.pause <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(o.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// combinedDataType maps the requested data type onto each source's accepted
// set for combined runs: the closest contact-oriented equivalent is used
// where the literal value is source-invalid.
func combinedDataType(src model.Source, requested model.DataType) model.DataType {
	switch src {
	case model.SourceWebSearch:
		switch requested {
		case model.DataTypeEmails, model.DataTypePhones, model.DataTypeContacts:
			return requested
		default:
			return model.DataTypeContacts
		}
	case model.SourcePronet, model.SourceMapSearch:
		switch requested {
		case model.DataTypeProfiles, model.DataTypeContacts, model.DataTypeComplete:
			return requested
		default:
			return model.DataTypeComplete
		}
	}
	return requested
}

func failedOutcome(src model.Source, err error) model.SourceOutcome {
	return model.SourceOutcome{
		Source: src,
		Status: model.SourceStatusFailed,
		Error:  err.Error(),
	}
}
