package ingest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/resilience"
)

// AdaptiveLimiter wraps a rate.Limiter that speeds up by 20% on success (up
// to 2x initial) and halves on 429 (down to initial/4).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.maxRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
	zap.L().Warn("ingest: reducing download rate after 429",
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// DownloadOptions configures a Downloader.
type DownloadOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	Rate       rate.Limit
}

// Downloader fetches remote review exports with retry and rate limiting.
type Downloader struct {
	client  *http.Client
	opts    DownloadOptions
	limiter *AdaptiveLimiter
	retry   resilience.RetryConfig
}

// NewDownloader creates a Downloader, filling zero options with defaults.
func NewDownloader(opts DownloadOptions) *Downloader {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "review-insights/1.0"
	}
	if opts.Rate == 0 {
		opts.Rate = 5
	}
	return &Downloader{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: NewAdaptiveLimiter(opts.Rate, int(opts.Rate)+1),
		retry:   resilience.DefaultRetryConfig().WithAttempts(opts.MaxRetries),
	}
}

// Download fetches rawURL and returns the response body.
func (d *Downloader) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: create request")
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)

	retry := d.retry
	retry.OnRetry = func(attempt int, err error) {
		zap.L().Warn("ingest: download failed, retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*http.Response, error) {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}
		resp, err := d.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			d.limiter.OnRateLimit()
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			return nil, resilience.NewTransientError(eris.Errorf("http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
		}
		d.limiter.OnSuccess()
		return resp, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "ingest: download")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("ingest: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// ReadURL downloads a review export to a temporary file and reads it. The
// format comes from the URL path's extension.
func (d *Downloader) ReadURL(ctx context.Context, rawURL string) ([]model.Review, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: parse url")
	}
	ext := path.Ext(u.Path)
	if _, err := DetectFormat(ext); err != nil {
		return nil, err
	}

	body, err := d.Download(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	tmp, err := os.CreateTemp("", "reviews-*"+ext)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return nil, eris.Wrap(err, "ingest: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return nil, eris.Wrap(err, "ingest: close temp file")
	}
	return ReadFile(ctx, tmp.Name())
}
