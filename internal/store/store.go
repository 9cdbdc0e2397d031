package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-insights/internal/model"
)

// ErrNotFound is wrapped by lookups that find no row.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status     model.RunStatus `json:"status,omitempty"`
	BusinessID string          `json:"business_id,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Businesses
	UpsertBusiness(ctx context.Context, b *model.Business) error
	GetBusiness(ctx context.Context, id string) (*model.Business, error)
	ListBusinesses(ctx context.Context, limit, offset int) ([]model.Business, error)
	SetManualType(ctx context.Context, id string, businessType model.BusinessType) error

	// Reviews
	ReplaceReviews(ctx context.Context, businessID string, reviews []model.Review) (int, error)
	UpsertReviews(ctx context.Context, businessID string, reviews []model.Review) (int, error)
	ListReviews(ctx context.Context, businessID string) ([]model.Review, error)

	// Insights. GetInsight returns nil, nil when the business has none.
	UpsertInsight(ctx context.Context, rec *model.InsightRecord) error
	GetInsight(ctx context.Context, businessID string) (*model.InsightRecord, error)

	// Runs
	CreateRun(ctx context.Context, businessID string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, elapsed time.Duration) error
	FailRun(ctx context.Context, runID string, cause error, elapsed time.Duration) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
