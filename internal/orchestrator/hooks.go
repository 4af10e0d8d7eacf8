package orchestrator

import (
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// Phase names the orchestrator's state-machine states, surfaced through the
// OnPhase hook so long-running callers can stream progress.
type Phase string

const (
	PhaseValidating    Phase = "validating"
	PhaseRunningSource Phase = "running_source"
	PhaseNormalizing   Phase = "normalizing"
	PhaseDeduplicating Phase = "deduplicating"
	PhaseDone          Phase = "done"
	PhaseFailed        Phase = "failed"
)

// Hooks are the orchestrator's observability side-channel. All three are
// optional and fire-and-forget: a hook that panics is logged and swallowed,
// it can never abort the run.
type Hooks struct {
	// OnRecord fires for each normalized lead as it is produced.
	OnRecord func(model.UnifiedRecord)
	// OnBatch fires once per source with the number of leads it yielded.
	OnBatch func(src model.Source, count int)
	// OnPhase fires on each state transition.
	OnPhase func(src model.Source, phase Phase)
}

func (h Hooks) record(rec model.UnifiedRecord) {
	if h.OnRecord == nil {
		return
	}
	defer recoverHook("on_record")
	h.OnRecord(rec)
}

func (h Hooks) batch(src model.Source, count int) {
	if h.OnBatch == nil {
		return
	}
	defer recoverHook("on_batch")
	h.OnBatch(src, count)
}

func (h Hooks) phase(src model.Source, phase Phase) {
	if h.OnPhase == nil {
		return
	}
	defer recoverHook("on_phase")
	h.OnPhase(src, phase)
}

func recoverHook(name string) {
	if p := recover(); p != nil {
		zap.L().Warn("orchestrator: progress hook panicked",
			zap.String("hook", name),
			zap.Any("panic", p),
		)
	}
}
