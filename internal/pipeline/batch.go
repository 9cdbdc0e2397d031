package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchResult summarises a batch run.
type BatchResult struct {
	Succeeded int64            `json:"succeeded"`
	Failed    int64            `json:"failed"`
	Errors    map[string]error `json:"-"`
}

// RunBatch analyses businessIDs with at most concurrency runs in flight.
// Individual failures are counted and never abort the batch; only context
// cancellation does.
func (p *Pipeline) RunBatch(ctx context.Context, businessIDs []string, concurrency int) (*BatchResult, error) {
	res := &BatchResult{Errors: make(map[string]error)}
	if len(businessIDs) == 0 {
		zap.L().Info("pipeline: no businesses to analyse")
		return res, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("pipeline: processing batch",
		zap.Int("businesses", len(businessIDs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	errs := make([]error, len(businessIDs))

	for i, id := range businessIDs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if _, err := p.Run(gctx, id); err != nil {
				failed.Add(1)
				errs[i] = err
				return nil // don't abort batch on individual failure
			}
			succeeded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: batch")
	}

	for i, err := range errs {
		if err != nil {
			res.Errors[businessIDs[i]] = err
		}
	}
	res.Succeeded = succeeded.Load()
	res.Failed = failed.Load()

	zap.L().Info("pipeline: batch complete",
		zap.Int64("succeeded", res.Succeeded),
		zap.Int64("failed", res.Failed),
	)
	return res, nil
}

// ListBusinessIDs pages through every stored business.
func (p *Pipeline) ListBusinessIDs(ctx context.Context, limit int) ([]string, error) {
	const page = 100
	var ids []string
	for offset := 0; ; offset += page {
		bs, err := p.store.ListBusinesses(ctx, page, offset)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: list businesses")
		}
		for _, b := range bs {
			ids = append(ids, b.ID)
			if limit > 0 && len(ids) >= limit {
				return ids, nil
			}
		}
		if len(bs) < page {
			return ids, nil
		}
	}
}
