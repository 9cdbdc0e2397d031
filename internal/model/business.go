package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusEnriching   RunStatus = "enriching"
	RunStatusAnalyzing   RunStatus = "analyzing"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Business is an establishment whose reviews are analysed.
type Business struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Types      []string  `json:"types,omitempty"`       // taxonomy tags from the place provider
	ManualType string    `json:"manual_type,omitempty"` // operator override, wins over detection
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Run represents a single analysis run for a business.
type Run struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InsightRecord is everything the pipeline stores for a business. It is
// written with upsert-by-business-key semantics.
type InsightRecord struct {
	BusinessID     string              `json:"business_id"`
	RunID          string              `json:"run_id,omitempty"`
	Classification Classification      `json:"classification"`
	Report         AnalysisReport      `json:"report"`
	Keywords       *KeywordAggregation `json:"keywords,omitempty"`
	RootCause      *RootCauseAnalysis  `json:"root_cause,omitempty"`
	Enriched       bool                `json:"enriched"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
