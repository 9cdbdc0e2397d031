// Package ingest loads review exports (CSV, XLSX, JSON) into model.Review
// values.
package ingest

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/model"
)

// Format is a supported export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", eris.Errorf("ingest: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadFile loads every review from path. Rows with neither text nor rating
// are skipped.
func ReadFile(ctx context.Context, path string) ([]model.Review, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var reviews []model.Review
	switch format {
	case FormatXLSX:
		reviews, err = readTable(ctx, func(ctx context.Context) (<-chan []string, <-chan error) {
			return StreamXLSX(ctx, path, XLSXOptions{})
		})
	case FormatCSV:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, eris.Wrap(openErr, "ingest: open file")
		}
		defer f.Close() //nolint:errcheck
		reviews, err = readTable(ctx, func(ctx context.Context) (<-chan []string, <-chan error) {
			return StreamCSV(ctx, f, CSVOptions{Delimiter: Sniff, TrimSpace: true, LazyQuotes: true})
		})
	case FormatJSON:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, eris.Wrap(openErr, "ingest: open file")
		}
		defer f.Close() //nolint:errcheck
		reviews, err = ReadJSON(ctx, f)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", filepath.Base(path))
	}

	zap.L().Info("ingest: loaded reviews",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("reviews", len(reviews)),
	)
	return reviews, nil
}

// readTable drains a row stream whose first row is the header.
func readTable(ctx context.Context, stream func(ctx context.Context) (<-chan []string, <-chan error)) ([]model.Review, error) {
	rowCh, errCh := stream(ctx)

	var cols *columns
	var reviews []model.Review
	line := 0
	for row := range rowCh {
		line++
		if cols == nil {
			c, err := mapHeader(row)
			if err != nil {
				// Drain so the producer goroutine can exit.
				for range rowCh {
				}
				return nil, err
			}
			cols = c
			continue
		}
		if r, ok := cols.review(row); ok {
			reviews = append(reviews, r)
		} else {
			zap.L().Debug("ingest: skipping empty row", zap.Int("line", line))
		}
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, eris.New("ingest: empty file")
	}
	return reviews, nil
}

// headerAliases maps accepted header names to canonical columns.
var headerAliases = map[string]string{
	"id":           "id",
	"review_id":    "id",
	"text":         "text",
	"texte":        "text",
	"comment":      "text",
	"commentaire":  "text",
	"review":       "text",
	"avis":         "text",
	"rating":       "rating",
	"note":         "rating",
	"stars":        "rating",
	"star_rating":  "rating",
	"published_at": "published_at",
	"date":         "published_at",
	"publish_time": "published_at",
	"themes":       "themes",
	"thèmes":       "themes",
	"topics":       "themes",
}

type columns struct {
	idx map[string]int
}

func mapHeader(header []string) (*columns, error) {
	c := &columns{idx: make(map[string]int)}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := headerAliases[key]; ok {
			if _, dup := c.idx[canon]; !dup {
				c.idx[canon] = i
			}
		}
	}
	_, hasText := c.idx["text"]
	_, hasRating := c.idx["rating"]
	if !hasText && !hasRating {
		return nil, eris.Errorf("ingest: header %v has neither a text nor a rating column", header)
	}
	return c, nil
}

func (c *columns) get(row []string, name string) string {
	i, ok := c.idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c *columns) review(row []string) (model.Review, bool) {
	r := model.Review{
		ID:          c.get(row, "id"),
		Text:        c.get(row, "text"),
		Rating:      ParseRating(c.get(row, "rating")),
		PublishedAt: c.get(row, "published_at"),
		Themes:      ParseThemes(c.get(row, "themes")),
	}
	if r.Text == "" && r.Rating.IsZero() {
		return r, false
	}
	return r, true
}

// ParseRating keeps a finite numeric cell as a number and anything else,
// including "NaN" and "Inf", as text. An empty cell is no rating.
func ParseRating(cell string) model.RatingValue {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return model.RatingValue{}
	}
	if n, err := strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return model.NumericRating(n)
	}
	return model.TextRating(cell)
}

// ParseThemes splits a ";"-separated theme cell.
func ParseThemes(cell string) []model.ReviewTheme {
	var out []model.ReviewTheme
	for _, part := range strings.Split(cell, ";") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, model.ReviewTheme{Name: name})
		}
	}
	return out
}
