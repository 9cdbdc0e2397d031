// Package enrich asks the LLM collaborator for a summarised Insight of a
// business's reviews.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/resilience"
	"github.com/sells-group/review-insights/pkg/anthropic"
)

// ErrMalformedResponse is returned when the collaborator's reply is not a
// JSON insight object. It is retried like a transient error.
var ErrMalformedResponse = eris.New("enrich: malformed response")

// Config tunes the enrichment call.
type Config struct {
	Model             string
	MaxTokens         int64
	MaxReviews        int
	MaxAttempts       int
	RequestsPerSecond float64
	BreakerThreshold  int
	BreakerCooldown   time.Duration
}

// Enricher calls the collaborator with rate limiting, retry, and a circuit
// breaker shared across a batch.
type Enricher struct {
	client  anthropic.Client
	cfg     Config
	limiter *rate.Limiter
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

// New builds an Enricher. Zero config fields fall back to defaults.
func New(client anthropic.Client, cfg Config) *Enricher {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.MaxReviews <= 0 {
		cfg.MaxReviews = 80
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Enricher{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		breaker: resilience.NewBreaker("enrich", cfg.BreakerThreshold, cfg.BreakerCooldown),
		retry:   resilience.DefaultRetryConfig().WithAttempts(cfg.MaxAttempts),
	}
}

// Enrich returns the collaborator's insight for the business. An empty
// review list needs no call and yields nil.
func (e *Enricher) Enrich(ctx context.Context, b model.Business, reviews []model.Review) (*model.Insight, error) {
	if len(reviews) == 0 {
		return nil, nil
	}

	req := anthropic.MessageRequest{
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		System:    anthropic.CachedSystem(systemPrompt, "1h"),
		Messages:  []anthropic.Message{{Role: "user", Content: userPrompt(b, reviews, e.cfg.MaxReviews)}},
	}

	retry := e.retry
	retry.ShouldRetry = shouldRetry
	retry.OnRetry = resilience.RetryLogger("enrich", b.ID)

	insight, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*model.Insight, error) {
		return resilience.Execute(ctx, e.breaker, func(ctx context.Context) (*model.Insight, error) {
			return e.call(ctx, b.ID, req)
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: business %s", b.ID)
	}
	return insight, nil
}

func (e *Enricher) call(ctx context.Context, businessID string, req anthropic.MessageRequest) (*model.Insight, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "enrich: rate limit wait")
	}

	resp, err := e.client.CreateMessage(ctx, req)
	if err != nil {
		if resilience.IsTransientHTTPStatus(anthropic.StatusCode(err)) {
			return nil, resilience.NewTransientError(err, anthropic.StatusCode(err))
		}
		return nil, err
	}
	resp.Usage.LogCost(e.cfg.Model, businessID)

	insight, err := ParseInsight(resp.Text())
	if err != nil {
		zap.L().Warn("enrich: unparseable response",
			zap.String("business_id", businessID),
			zap.String("stop_reason", resp.StopReason),
			zap.Error(err),
		)
		return nil, err
	}
	return insight, nil
}

func shouldRetry(err error) bool {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	return errors.Is(err, ErrMalformedResponse) || resilience.IsTransient(err)
}

// ParseInsight decodes the collaborator's reply. Markdown fences and prose
// around the JSON object are tolerated.
func ParseInsight(text string) (*model.Insight, error) {
	cleaned := cleanJSON(text)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, eris.Wrap(ErrMalformedResponse, "no JSON object")
	}
	var insight model.Insight
	if err := json.Unmarshal([]byte(cleaned), &insight); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "decode: %v", err)
	}
	return &insight, nil
}

// cleanJSON extracts a JSON object from text that may carry markdown code
// fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```json", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			if idx := strings.LastIndex(text, "```"); idx >= 0 {
				text = text[:idx]
			}
			break
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
