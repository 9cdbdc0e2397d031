package ingest

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-insights/internal/model"
)

// DecodeJSONArray decodes a JSON array element by element onto a channel.
// Both channels are closed when processing completes.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for decoder.More() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
			var item T
			if err := decoder.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "json: decode element")
				return
			}
			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := decoder.Token(); err != nil && err != io.EOF {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// ReadJSON reads a JSON array of reviews. Ratings may be numbers, numeric
// strings or enum words; rows with neither text nor rating are skipped.
func ReadJSON(ctx context.Context, r io.Reader) ([]model.Review, error) {
	itemCh, errCh := DecodeJSONArray[model.Review](ctx, r)
	reviews := []model.Review{}
	for rev := range itemCh {
		if rev.Text == "" && rev.Rating.IsZero() {
			continue
		}
		reviews = append(reviews, rev)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return reviews, nil
}
