package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/review-insights/internal/ingest"
	"github.com/sells-group/review-insights/internal/model"
)

// writeOutput encodes v as indented JSON or YAML.
func writeOutput(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case "yaml", "yml":
		// Round-trip through JSON so YAML keys follow the json tags.
		raw, err := json.Marshal(v)
		if err != nil {
			return eris.Wrap(err, "encode json")
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return eris.Wrap(err, "decode json")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	default:
		return eris.Errorf("unsupported output format %q (json, yaml)", format)
	}
}

// loadReviews reads reviews from a local file or an http(s) URL.
func loadReviews(ctx context.Context, source string) ([]model.Review, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return newDownloader().ReadURL(ctx, source)
	}
	return ingest.ReadFile(ctx, source)
}

// loadInsight reads a collaborator insight from a JSON file. An empty path
// yields nil.
func loadInsight(path string) (*model.Insight, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read insight")
	}
	var in model.Insight
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, eris.Wrap(err, "decode insight")
	}
	return &in, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
