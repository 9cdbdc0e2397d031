package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/review-insights/internal/model"
)

const diagnosticTop = 3

func diagnostic(in *model.Insight, r model.AnalysisReport, opts Options) model.Diagnostic {
	d := model.Diagnostic{
		Summary:         summary(in, r, opts),
		TopStrengths:    names(r.ParetoStrengths, diagnosticTop),
		TopWeaknesses:   names(r.ParetoIssues, diagnosticTop),
		Recommendations: []string{},
	}
	if len(d.TopStrengths) == 0 && in.Summary != nil {
		d.TopStrengths = head(in.Summary.Strengths, diagnosticTop)
	}
	if len(d.TopWeaknesses) == 0 && in.Summary != nil {
		d.TopWeaknesses = head(in.Summary.Weaknesses, diagnosticTop)
	}
	for _, rec := range in.Recommendations {
		if a := strings.TrimSpace(rec.Action); a != "" {
			d.Recommendations = append(d.Recommendations, a)
		}
	}
	return d
}

func summary(in *model.Insight, r model.AnalysisReport, opts Options) string {
	var parts []string
	if h := strings.TrimSpace(in.Summary.Headline()); h != "" {
		parts = append(parts, h)
	}

	o := r.Overview
	if o.TotalReviews == 0 {
		parts = append(parts, "Aucun avis à analyser.")
		return strings.Join(parts, " ")
	}
	parts = append(parts, fmt.Sprintf(
		"Note moyenne de %.1f/5 sur %d avis (%d%% positifs, %d%% neutres, %d%% négatifs).",
		o.AverageRating, o.TotalReviews, o.PositivePct, o.NeutralPct, o.NegativePct))

	if len(r.ParetoIssues) > 0 {
		top := r.ParetoIssues[0]
		parts = append(parts, fmt.Sprintf("Principal point d'amélioration : %s (%.0f%% des avis).", top.Name, top.Percentage))
	}
	if len(r.ParetoStrengths) > 0 {
		parts = append(parts, fmt.Sprintf("Principal point fort : %s.", r.ParetoStrengths[0].Name))
	}
	switch o.Trend {
	case model.TrendUp:
		parts = append(parts, fmt.Sprintf("Tendance en hausse sur les %d derniers mois (+%.1f%%).", opts.TrendMonths, o.TrendValue))
	case model.TrendDown:
		parts = append(parts, fmt.Sprintf("Tendance en baisse sur les %d derniers mois (%.1f%%).", opts.TrendMonths, o.TrendValue))
	}
	return strings.Join(parts, " ")
}

func names(items []model.ParetoItem, n int) []string {
	out := make([]string, 0, n)
	for _, it := range items {
		if len(out) == n {
			break
		}
		if it.Name != "" {
			out = append(out, it.Name)
		}
	}
	return out
}

func head(list []string, n int) []string {
	out := make([]string, 0, n)
	for _, s := range list {
		if len(out) == n {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// percentages splits 100 across counts with the largest remainder method so
// the parts always sum to 100 when any count is positive.
func percentages(counts ...int) []int {
	out := make([]int, len(counts))
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return out
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(counts))
	assigned := 0
	for i, c := range counts {
		exact := float64(c) * 100 / float64(total)
		out[i] = int(math.Floor(exact))
		assigned += out[i]
		rems[i] = rem{idx: i, frac: exact - float64(out[i])}
	}
	// Stable selection: larger remainder first, earlier index on ties.
	for left := 100 - assigned; left > 0; left-- {
		best := -1
		for i, r := range rems {
			if r.frac < 0 {
				continue
			}
			if best < 0 || r.frac > rems[best].frac {
				best = i
			}
		}
		if best < 0 {
			break
		}
		out[rems[best].idx]++
		rems[best].frac = -1
	}
	return out
}

func pctValue(p *float64) int {
	if p == nil || math.IsNaN(*p) {
		return 0
	}
	return int(math.Round(*p))
}

func ratio(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
