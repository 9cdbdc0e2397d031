package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/bizclass"
	"github.com/sells-group/review-insights/internal/config"
	"github.com/sells-group/review-insights/internal/keyword"
	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/store"
	"github.com/sells-group/review-insights/internal/transform"
)

// Enricher produces the optional collaborator insight for a business.
type Enricher interface {
	Enrich(ctx context.Context, b model.Business, reviews []model.Review) (*model.Insight, error)
}

// Pipeline runs the per-business analysis: classify, aggregate keywords,
// enrich, transform, root cause, persist.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	enricher Enricher
	now      func() time.Time
}

// New creates a Pipeline. enricher may be nil, in which case reports are
// built from the reviews alone.
func New(cfg *config.Config, st store.Store, enricher Enricher) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		enricher: enricher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run analyses one stored business and upserts its insight record. The run
// row tracks progress; a failure marks the run failed and is returned.
func (p *Pipeline) Run(ctx context.Context, businessID string) (*model.InsightRecord, error) {
	log := zap.L().With(zap.String("business_id", businessID))
	start := time.Now()

	run, err := p.store.CreateRun(ctx, businessID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	log = log.With(zap.String("run_id", run.ID))
	log.Info("pipeline: starting analysis")

	rec, err := p.run(ctx, run.ID, businessID, log)
	elapsed := time.Since(start)
	if err != nil {
		if failErr := p.store.FailRun(ctx, run.ID, err, elapsed); failErr != nil {
			log.Warn("pipeline: failed to record run failure", zap.Error(failErr))
		}
		log.Error("pipeline: analysis failed",
			zap.Int64("duration_ms", elapsed.Milliseconds()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, run.ID, elapsed); err != nil {
		log.Warn("pipeline: failed to complete run", zap.Error(err))
	}
	log.Info("pipeline: analysis complete",
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.Int("reviews", rec.Report.Overview.TotalReviews),
		zap.String("business_type", string(rec.Classification.Type)),
		zap.Bool("enriched", rec.Enriched),
	)
	return rec, nil
}

func (p *Pipeline) run(ctx context.Context, runID, businessID string, log *zap.Logger) (*model.InsightRecord, error) {
	setStatus := func(status model.RunStatus) {
		if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
			log.Warn("pipeline: failed to update status", zap.String("status", string(status)), zap.Error(err))
		}
	}

	b, err := p.store.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load business")
	}
	reviews, err := p.store.ListReviews(ctx, businessID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load reviews")
	}

	var insight *model.Insight
	if p.enricher != nil && len(reviews) > 0 {
		setStatus(model.RunStatusEnriching)
		insight = p.enrich(ctx, *b, reviews)
	}

	setStatus(model.RunStatusAnalyzing)
	rec := p.Build(*b, reviews, insight, "")
	rec.RunID = runID

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: cancelled")
	}
	if err := p.store.UpsertInsight(ctx, rec); err != nil {
		return nil, eris.Wrap(err, "pipeline: upsert insight")
	}
	return rec, nil
}

// Analyze builds the insight record for a business and its reviews without
// touching the store. problem overrides the issue passed to root cause
// analysis; when empty the top issue is used. Enrichment failures are logged
// and the report is built without an insight.
func (p *Pipeline) Analyze(ctx context.Context, b model.Business, reviews []model.Review, problem string) *model.InsightRecord {
	return p.Build(b, reviews, p.enrich(ctx, b, reviews), problem)
}

// Build assembles the insight record from an already known insight, which
// may be nil.
func (p *Pipeline) Build(b model.Business, reviews []model.Review, insight *model.Insight, problem string) *model.InsightRecord {
	classification := Classify(b, reviews)
	keywords := keyword.Aggregate(reviews, model.KeywordModeFrequency)
	report := transform.TransformWith(insight, reviews, p.transformOptions())

	return &model.InsightRecord{
		BusinessID:     b.ID,
		Classification: classification,
		Report:         report,
		Keywords:       &keywords,
		RootCause:      RootCause(report, keywords, reviews, problem),
		Enriched:       insight != nil,
		UpdatedAt:      p.now(),
	}
}

func (p *Pipeline) enrich(ctx context.Context, b model.Business, reviews []model.Review) *model.Insight {
	if p.enricher == nil || len(reviews) == 0 {
		return nil
	}
	start := time.Now()
	insight, err := p.enricher.Enrich(ctx, b, reviews)
	if err != nil {
		zap.L().Warn("pipeline: enrichment failed, continuing without insight",
			zap.String("business_id", b.ID),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err),
		)
		return nil
	}
	return insight
}

func (p *Pipeline) transformOptions() transform.Options {
	opts := transform.Options{Now: p.now()}
	if p.cfg == nil {
		return opts
	}
	a := p.cfg.Analysis
	opts.TopKeywords = a.TopKeywords
	opts.MaxVerbatims = a.MaxVerbatims
	opts.VerbatimLength = a.VerbatimLength
	opts.TrendMonths = a.TrendMonths
	opts.TrendThresholdPct = a.TrendThresholdPct
	return opts
}

// Classify prefers a stored manual type and otherwise detects the type from
// the business name, its taxonomy tags and its review texts.
func Classify(b model.Business, reviews []model.Review) model.Classification {
	if strings.TrimSpace(b.ManualType) != "" {
		return bizclass.Manual(b.ManualType)
	}
	texts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	return bizclass.Detect(b.Name, b.Types, texts)
}
