// Package transform folds raw reviews and an optional enrichment insight
// into the report-ready AnalysisReport.
package transform

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sells-group/review-insights/internal/keyword"
	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/rating"
)

// Options tunes report assembly. Zero fields take DefaultOptions values.
type Options struct {
	Now               time.Time
	TopKeywords       int
	MaxVerbatims      int
	VerbatimLength    int
	TrendMonths       int
	TrendThresholdPct float64
}

// DefaultOptions returns the standard report settings.
func DefaultOptions() Options {
	return Options{
		TopKeywords:       15,
		MaxVerbatims:      8,
		VerbatimLength:    200,
		TrendMonths:       3,
		TrendThresholdPct: 2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	if o.TopKeywords <= 0 {
		o.TopKeywords = d.TopKeywords
	}
	if o.MaxVerbatims <= 0 {
		o.MaxVerbatims = d.MaxVerbatims
	}
	if o.VerbatimLength <= 0 {
		o.VerbatimLength = d.VerbatimLength
	}
	if o.TrendMonths <= 0 {
		o.TrendMonths = d.TrendMonths
	}
	if o.TrendThresholdPct <= 0 {
		o.TrendThresholdPct = d.TrendThresholdPct
	}
	return o
}

// scored is a review with its normalised rating.
type scored struct {
	review model.Review
	rating int
}

// Transform builds the report with default options. insight may be nil.
func Transform(insight *model.Insight, reviews []model.Review) model.AnalysisReport {
	return TransformWith(insight, reviews, Options{})
}

// TransformWith builds the report. Both inputs may be empty; the result is
// always well formed.
func TransformWith(insight *model.Insight, reviews []model.Review, opts Options) model.AnalysisReport {
	opts = opts.withDefaults()
	if insight == nil {
		insight = &model.Insight{}
	}

	rows := make([]scored, len(reviews))
	for i, r := range reviews {
		rows[i] = scored{review: r, rating: rating.Normalize(r.Rating)}
	}

	sentiment := sentimentBreakdown(rows)
	overview := buildOverview(insight, rows, sentiment, opts)
	issues := pareto(insight.TopIssues, overview.TotalReviews)
	strengths := pareto(insight.TopPraises, overview.TotalReviews)

	report := model.AnalysisReport{
		Overview:        overview,
		History:         history(rows),
		Sentiment:       sentiment,
		ParetoIssues:    issues,
		ParetoStrengths: strengths,
		Themes:          themes(insight, overview.TotalReviews),
		Qualitative: model.Qualitative{
			TopKeywords:  topKeywords(rows, opts.TopKeywords),
			KeyVerbatims: verbatims(rows, opts.MaxVerbatims, opts.VerbatimLength),
		},
	}
	report.Diagnostic = diagnostic(insight, report, opts)
	return report
}

// sentimentBreakdown tallies every review, including those without text.
func sentimentBreakdown(rows []scored) model.SentimentBreakdown {
	var s model.SentimentBreakdown
	for _, r := range rows {
		switch rating.Sentiment(r.rating) {
		case model.SentimentPositive:
			s.Positive++
		case model.SentimentNegative:
			s.Negative++
		default:
			s.Neutral++
		}
	}
	return s
}

func buildOverview(in *model.Insight, rows []scored, s model.SentimentBreakdown, opts Options) model.Overview {
	o := model.Overview{TotalReviews: len(rows), Trend: model.TrendStable}
	if len(rows) == 0 && in.TotalReviews != nil && *in.TotalReviews > 0 {
		o.TotalReviews = *in.TotalReviews
	}

	switch {
	case in.AverageRating != nil:
		o.AverageRating = round(*in.AverageRating, 2)
	case len(rows) > 0:
		sum := 0
		for _, r := range rows {
			sum += r.rating
		}
		o.AverageRating = round(float64(sum)/float64(len(rows)), 2)
	}

	if len(rows) > 0 {
		pcts := percentages(s.Positive, s.Neutral, s.Negative)
		o.PositivePct, o.NeutralPct, o.NegativePct = pcts[0], pcts[1], pcts[2]
	} else {
		o.PositivePct = pctValue(in.PositivePct)
		o.NeutralPct = pctValue(in.NeutralPct)
		o.NegativePct = pctValue(in.NegativePct)
	}

	o.Trend, o.TrendValue = trend(rows, opts)
	return o
}

// trend compares the average rating of the last opts.TrendMonths months to
// the average before that. Both sides need at least one dated review.
func trend(rows []scored, opts Options) (model.Trend, float64) {
	boundary := opts.Now.AddDate(0, -opts.TrendMonths, 0)
	var recentSum, recentN, olderSum, olderN int
	for _, r := range rows {
		t, ok := r.review.PublishedTime()
		if !ok {
			continue
		}
		if t.Before(boundary) {
			olderSum += r.rating
			olderN++
		} else {
			recentSum += r.rating
			recentN++
		}
	}
	if recentN == 0 || olderN == 0 {
		return model.TrendStable, 0
	}
	recent := float64(recentSum) / float64(recentN)
	older := float64(olderSum) / float64(olderN)
	change := (recent - older) / older * 100
	switch {
	case change > opts.TrendThresholdPct:
		return model.TrendUp, round(change, 1)
	case change < -opts.TrendThresholdPct:
		return model.TrendDown, round(change, 1)
	default:
		return model.TrendStable, round(change, 1)
	}
}

// history buckets dated reviews by calendar month, ascending. Reviews
// without a parsable date are skipped.
func history(rows []scored) []model.HistoryPoint {
	type bucket struct{ sum, n int }
	buckets := make(map[string]*bucket)
	for _, r := range rows {
		t, ok := r.review.PublishedTime()
		if !ok {
			continue
		}
		key := t.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += r.rating
		b.n++
	}

	out := make([]model.HistoryPoint, 0, len(buckets))
	for month, b := range buckets {
		out = append(out, model.HistoryPoint{
			Month:         month,
			AverageRating: round(float64(b.sum)/float64(b.n), 2),
			Count:         b.n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// pareto projects insight items 1:1 with their share of total reviews.
func pareto(items []model.InsightItem, total int) []model.ParetoItem {
	out := make([]model.ParetoItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.ParetoItem{
			Name:       it.Theme,
			Count:      it.Count,
			Percentage: round(ratio(it.Count, total)*100, 1),
			Examples:   it.Examples,
		})
	}
	return out
}

// themes prefers the collaborator's theme list and otherwise derives one
// from issues (frequent problems score low) and praises (frequent praise
// scores high). Names present on both sides sum their counts and keep the
// higher score.
func themes(in *model.Insight, total int) []model.ThemeScore {
	if len(in.Themes) > 0 {
		out := make([]model.ThemeScore, 0, len(in.Themes))
		for _, t := range in.Themes {
			out = append(out, model.ThemeScore{Name: t.Name, Score: t.Score, Count: t.Count})
		}
		return out
	}

	out := []model.ThemeScore{}
	index := make(map[string]int)
	upsert := func(name string, count int, score float64) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return
		}
		if i, ok := index[key]; ok {
			out[i].Count += count
			out[i].Score = math.Max(out[i].Score, score)
			return
		}
		index[key] = len(out)
		out = append(out, model.ThemeScore{Name: strings.TrimSpace(name), Score: score, Count: count})
	}
	for _, it := range in.TopIssues {
		upsert(it.Theme, it.Count, round(clamp01(1-ratio(it.Count, total)), 2))
	}
	for _, it := range in.TopPraises {
		upsert(it.Theme, it.Count, round(math.Min(1, 0.5+ratio(it.Count, total)), 2))
	}
	return out
}

func topKeywords(rows []scored, n int) []model.KeywordCount {
	texts := make([]string, 0, len(rows))
	for _, r := range rows {
		texts = append(texts, r.review.Text)
	}
	return keyword.TopWords(texts, n)
}

// verbatims selects up to limit excerpts, preferring ratings 1, 3 and 5
// over 2 and 4, each group in input order.
func verbatims(rows []scored, limit, length int) []model.Verbatim {
	var preferred, rest []model.Verbatim
	for _, r := range rows {
		text := keyword.OriginalSegment(r.review.Text)
		if text == "" {
			continue
		}
		v := model.Verbatim{
			Text:        truncate(text, length),
			Rating:      r.rating,
			Sentiment:   rating.Sentiment(r.rating),
			PublishedAt: r.review.PublishedAt,
		}
		if r.rating == 1 || r.rating == 3 || r.rating == 5 {
			preferred = append(preferred, v)
		} else {
			rest = append(rest, v)
		}
	}
	out := append(preferred, rest...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []model.Verbatim{}
	}
	return out
}
