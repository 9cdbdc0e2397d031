package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/review-insights/internal/config"
	"github.com/sells-group/review-insights/internal/enrich"
	"github.com/sells-group/review-insights/internal/ingest"
	"github.com/sells-group/review-insights/internal/pipeline"
	"github.com/sells-group/review-insights/internal/store"
	anthropicpkg "github.com/sells-group/review-insights/pkg/anthropic"
)

// pipelineEnv holds the store and pipeline needed by the run, batch and
// serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "reviews.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens and migrates the store. Callers should defer Close.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate(config.ModeStore); err != nil {
		return nil, err
	}
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEnricher returns the LLM enricher when enrichment is enabled, nil
// otherwise. force enables it regardless of enrich.enabled.
func initEnricher(force bool) (pipeline.Enricher, error) {
	if !cfg.Enrich.Enabled && !force {
		zap.L().Debug("enrichment disabled")
		return nil, nil
	}
	if err := cfg.Validate(config.ModeEnrich); err != nil {
		return nil, err
	}
	zap.L().Info("enrichment enabled", zap.String("model", cfg.Anthropic.Model))
	return enrich.New(anthropicpkg.NewClient(cfg.Anthropic.Key), enrichConfig(cfg)), nil
}

func enrichConfig(c *config.Config) enrich.Config {
	return enrich.Config{
		Model:             c.Anthropic.Model,
		MaxTokens:         c.Anthropic.MaxTokens,
		MaxReviews:        c.Enrich.MaxReviews,
		MaxAttempts:       c.Enrich.MaxAttempts,
		RequestsPerSecond: c.Anthropic.RequestsPerSecond,
		BreakerThreshold:  c.Enrich.BreakerThreshold,
		BreakerCooldown:   time.Duration(c.Enrich.BreakerCooldownS) * time.Second,
	}
}

// initPipeline opens the store and builds the Pipeline. Callers should
// defer env.Close().
func initPipeline(ctx context.Context, forceEnrich bool) (*pipelineEnv, error) {
	enricher, err := initEnricher(forceEnrich)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, st, enricher),
	}, nil
}

func newDownloader() *ingest.Downloader {
	return ingest.NewDownloader(ingest.DownloadOptions{
		UserAgent: cfg.Ingest.UserAgent,
		Timeout:   time.Duration(cfg.Ingest.TimeoutSecs) * time.Second,
		Rate:      rate.Limit(cfg.Ingest.RequestsPerSecond),
	})
}
