// Package rootcause explains a named problem by mining review evidence and
// sorting candidate causes into Ishikawa categories.
package rootcause

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/keyword"
	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/rating"
	"github.com/sells-group/review-insights/internal/theme"
)

const (
	// maxEvidencePerCause caps the snippets attached to a cause.
	maxEvidencePerCause = 2
	// snippetRunes is the length evidence snippets are truncated to.
	snippetRunes = 160
	// negativeCeiling is the highest rating a raw review may have to count as evidence.
	negativeCeiling = 3
)

// Input is everything the analyzer may draw evidence from. Only Problem is
// required.
type Input struct {
	Problem      string
	Themes       []model.ThemeAnalysis
	Keywords     []model.KeywordCount
	ParetoIssues []model.ParetoItem
	Reviews      []model.Review
}

// Analyze produces the root cause breakdown for in.Problem.
func Analyze(in Input) model.RootCauseAnalysis {
	active := activeLens(in.Problem)
	pool := collectEvidence(in, active)

	var out []model.RootCauseCategory
	for _, cat := range categories {
		if causes := evaluate(cat, pool); len(causes) > 0 {
			out = append(out, model.RootCauseCategory{Name: cat.name, Causes: causes})
		}
	}

	if len(out) == 0 && len(pool) > 0 {
		out = append(out, model.RootCauseCategory{
			Name: CategoryProcess,
			Causes: []model.RootCause{{
				Description: fmt.Sprintf("Dysfonctionnement récurrent lié à « %s »", strings.TrimSpace(in.Problem)),
				Probability: model.ProbabilityPossible,
				Evidence:    snippets(pool),
			}},
		})
	}
	if out == nil {
		out = []model.RootCauseCategory{}
	}

	zap.L().Debug("rootcause: analysis complete",
		zap.String("problem", in.Problem),
		zap.String("lens", active.name),
		zap.Int("evidence", len(pool)),
		zap.Int("categories", len(out)),
	)

	return model.RootCauseAnalysis{
		Problem:    in.Problem,
		Categories: out,
		Summary:    summarize(in.Problem, out),
	}
}

// activeLens returns the first lens triggered by the problem. When none is,
// a lens is built from the problem's own keywords.
func activeLens(problem string) lens {
	lower := strings.ToLower(problem)
	for _, l := range lenses {
		if containsAny(lower, l.triggers) {
			return l
		}
	}
	adhoc := lens{name: "adhoc", vocabulary: keyword.Extract(problem)}
	if t, ok := theme.MapText(problem); ok {
		adhoc.themes = []model.Theme{t}
	}
	return adhoc
}

// collectEvidence gathers relevant verbatims, Pareto examples, negative
// reviews and keyword mentions, deduplicated in that order.
func collectEvidence(in Input, l lens) []string {
	var pool []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		pool = append(pool, s)
	}

	for _, ta := range in.Themes {
		if !l.matchesName(ta.Name) {
			continue
		}
		for _, v := range ta.Verbatims {
			add(v)
		}
	}
	for _, issue := range in.ParetoIssues {
		if !l.matchesName(issue.Name) {
			continue
		}
		for _, ex := range issue.Examples {
			add(ex)
		}
	}
	for _, r := range in.Reviews {
		if rating.Normalize(r.Rating) > negativeCeiling {
			continue
		}
		text := keyword.OriginalSegment(r.Text)
		if containsAny(strings.ToLower(text), l.vocabulary) {
			add(text)
		}
	}
	for _, kc := range in.Keywords {
		if containsAny(kc.Word, l.vocabulary) {
			add(fmt.Sprintf("« %s » mentionné %d fois", kc.Word, kc.Count))
		}
	}
	return pool
}

// matchesName reports whether a theme or issue name falls under the lens.
func (l lens) matchesName(name string) bool {
	lower := strings.ToLower(name)
	if lower == "" {
		return false
	}
	if t, ok := theme.MapLabel(name); ok {
		for _, lt := range l.themes {
			if lt == t {
				return true
			}
		}
	}
	return containsAny(lower, l.triggers) || containsAny(lower, l.vocabulary)
}

// evaluate applies a category's rules to the evidence that mentions the
// category's domain. A category with evidence but no matching rule gets its
// fallback cause.
func evaluate(cat category, pool []string) []model.RootCause {
	var scoped []string
	for _, ev := range pool {
		if containsAny(strings.ToLower(ev), cat.domain) {
			scoped = append(scoped, ev)
		}
	}
	if len(scoped) == 0 {
		return nil
	}

	var causes []model.RootCause
	for _, rule := range cat.rules {
		var hits []string
		for _, ev := range scoped {
			if containsAny(strings.ToLower(ev), rule.patterns) {
				hits = append(hits, ev)
			}
		}
		if len(hits) == 0 {
			continue
		}
		causes = append(causes, model.RootCause{
			Description: rule.description,
			Probability: rule.probability,
			Evidence:    snippets(hits),
		})
	}

	if len(causes) == 0 {
		causes = append(causes, model.RootCause{
			Description: cat.fallback,
			Probability: model.ProbabilityPossible,
			Evidence:    snippets(scoped),
		})
	}
	return causes
}

// summarize writes the deterministic summary sentence.
func summarize(problem string, cats []model.RootCauseCategory) string {
	var probable []string
	var fallback string
	for _, tier := range []model.Probability{model.ProbabilityProbable, model.ProbabilityPossible, model.ProbabilityOccasional} {
		for _, c := range cats {
			for _, cause := range c.Causes {
				if cause.Probability != tier {
					continue
				}
				label := fmt.Sprintf("%s (%s)", cause.Description, strings.ToLower(c.Name))
				if tier == model.ProbabilityProbable {
					probable = append(probable, label)
				} else if fallback == "" {
					fallback = label
				}
			}
		}
	}

	switch {
	case len(probable) > 0:
		s := fmt.Sprintf("Cause dominante : %s.", probable[0])
		if len(probable) > 1 {
			s += fmt.Sprintf(" Facteurs contributifs : %s.", strings.Join(probable[1:], ", "))
		}
		return s
	case fallback != "":
		return fmt.Sprintf("Cause la plus plausible : %s. Une investigation complémentaire est nécessaire pour la confirmer.", fallback)
	default:
		p := strings.TrimSpace(problem)
		if p == "" {
			p = "signalé"
		}
		return fmt.Sprintf("Le problème « %s » a plusieurs origines possibles ; une investigation sur site est nécessaire.", p)
	}
}

func snippets(items []string) []string {
	n := min(len(items), maxEvidencePerCause)
	out := make([]string, 0, n)
	for _, s := range items[:n] {
		out = append(out, truncate(s, snippetRunes))
	}
	return out
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit])) + "..."
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
