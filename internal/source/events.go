package source

import "github.com/leadharvest/leadharvest-cli/internal/model"

// EventKind classifies a structured progress event from a scraper.
type EventKind string

const (
	// EventPhase marks a scraper phase transition (searching, probing,
	// extracting, flushing).
	EventPhase EventKind = "phase"
	// EventRecord carries one raw record as it is produced.
	EventRecord EventKind = "record"
	// EventProgress carries a running count (entities probed, profiles
	// counted) without record payloads.
	EventProgress EventKind = "progress"
)

// Event is one structured NDJSON progress message on a scraper's stdout.
// Scrapers emit these instead of free-text logs so the orchestration layer
// subscribes to typed events rather than pattern-matching printed lines.
type Event struct {
	Kind   EventKind        `json:"kind"`
	Phase  string           `json:"phase,omitempty"`
	Count  int              `json:"count,omitempty"`
	Record *model.RawRecord `json:"record,omitempty"`
}

// EventFunc receives scraper events. Delivery is best-effort: a panicking
// handler is caught by the runner and must never abort the run.
type EventFunc func(Event)
