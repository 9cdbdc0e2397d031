package pipeline

import (
	"sort"
	"strings"

	"github.com/sells-group/review-insights/internal/keyword"
	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/rating"
	"github.com/sells-group/review-insights/internal/rootcause"
	"github.com/sells-group/review-insights/internal/theme"
)

// maxThemeVerbatims caps the negative excerpts attached to a theme.
const maxThemeVerbatims = 5

// RootCause runs root cause analysis on problem, or on the report's main
// issue when problem is empty. Returns nil when there is nothing to analyse.
func RootCause(report model.AnalysisReport, keywords model.KeywordAggregation, reviews []model.Review, problem string) *model.RootCauseAnalysis {
	negThemes := negativeThemes(reviews)

	problem = strings.TrimSpace(problem)
	if problem == "" {
		problem = mainIssue(report, negThemes)
	}
	if problem == "" {
		return nil
	}

	var negKeywords []model.KeywordCount
	if keywords.BySentiment != nil {
		negKeywords = keywords.BySentiment.Negative
	}

	rc := rootcause.Analyze(rootcause.Input{
		Problem:      problem,
		Themes:       negThemes,
		Keywords:     negKeywords,
		ParetoIssues: report.ParetoIssues,
		Reviews:      reviews,
	})
	return &rc
}

// mainIssue is the first Pareto issue, else the canonical theme with the
// most negative reviews.
func mainIssue(report model.AnalysisReport, negThemes []model.ThemeAnalysis) string {
	for _, it := range report.ParetoIssues {
		if name := strings.TrimSpace(it.Name); name != "" {
			return name
		}
	}
	if len(negThemes) > 0 {
		return negThemes[0].Name
	}
	return ""
}

// negativeThemes groups negative reviews by canonical theme, most mentioned
// first, theme precedence on ties.
func negativeThemes(reviews []model.Review) []model.ThemeAnalysis {
	byTheme := make(map[model.Theme]*model.ThemeAnalysis)
	for _, r := range reviews {
		if rating.SentimentOf(r.Rating) != model.SentimentNegative {
			continue
		}
		text := strings.TrimSpace(keyword.OriginalSegment(r.Text))
		for _, t := range theme.Resolve(r) {
			ta, ok := byTheme[t]
			if !ok {
				ta = &model.ThemeAnalysis{Name: strings.ToLower(string(t)), Sentiment: model.SentimentNegative}
				byTheme[t] = ta
			}
			ta.Count++
			if text != "" && len(ta.Verbatims) < maxThemeVerbatims {
				ta.Verbatims = append(ta.Verbatims, text)
			}
		}
	}

	var out []model.ThemeAnalysis
	for _, t := range model.AllThemes {
		if ta, ok := byTheme[t]; ok {
			out = append(out, *ta)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
