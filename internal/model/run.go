package model

import "time"

// RunStatus represents the current state of a scraping run.
type RunStatus string

const (
	RunStatusQueued        RunStatus = "queued"
	RunStatusValidating    RunStatus = "validating"
	RunStatusRunningSource RunStatus = "running_source"
	RunStatusNormalizing   RunStatus = "normalizing"
	RunStatusDeduplicating RunStatus = "deduplicating"
	RunStatusExported      RunStatus = "exported"
	RunStatusFailed        RunStatus = "failed"
)

// SourceStatus classifies how a single source's contribution ended.
type SourceStatus string

const (
	SourceStatusComplete  SourceStatus = "complete"
	SourceStatusRecovered SourceStatus = "recovered"
	SourceStatusFailed    SourceStatus = "failed"
)

// Run is one orchestrated scraping run, identified by its session ID.
type Run struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Query     Query      `json:"query"`
	Source    Source     `json:"source"`
	DataType  DataType   `json:"data_type"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SourceOutcome summarizes one source's contribution to a run. A failed
// source carries its error text so operators can distinguish "no matches"
// from "source errored".
type SourceOutcome struct {
	Source     Source       `json:"source"`
	Status     SourceStatus `json:"status"`
	RawCount   int          `json:"raw_count"`
	LeadCount  int          `json:"lead_count"`
	DurationMS int64        `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	Sources     []SourceOutcome `json:"sources"`
	TotalRaw    int             `json:"total_raw"`
	TotalLeads  int             `json:"total_leads"`
	MergedLeads int             `json:"merged_leads"`
	ExportPath  string          `json:"export_path,omitempty"`
	Error       string          `json:"error,omitempty"`
}
