// Package bizclass detects the business type of an establishment from
// place-provider taxonomy tags and keyword evidence in its name and reviews.
package bizclass

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/model"
)

const (
	// taxonomyMatchScore is added to a type per matching taxonomy tag.
	taxonomyMatchScore = 10
	// strongConfidence is the taxonomy confidence accepted without consulting keywords.
	strongConfidence = 75
	// nameBonus is the extra weight of a keyword found in the business name.
	nameBonus = 2
	maxCandidates = 3
)

// Detect classifies a business. A strong taxonomy signal is returned as-is;
// otherwise the keyword signal is computed and, when a weak taxonomy signal
// exists, both are merged.
func Detect(name string, types []string, texts []string) model.Classification {
	taxo, ok := taxonomySignal(types)
	if ok && taxo.Confidence >= strongConfidence {
		return taxo
	}
	kw := keywordSignal(name, texts)
	if !ok {
		return kw
	}
	return merge(taxo, kw)
}

// Manual builds a classification from an operator-supplied type.
func Manual(raw string) model.Classification {
	bt := NormalizeType(raw)
	conf := 100
	if bt == model.BusinessAutre {
		conf = 0
	}
	return model.Classification{
		Type:       bt,
		Confidence: conf,
		Candidates: []model.BusinessTypeCandidate{{Type: bt, Confidence: conf}},
		Source:     model.SourceManual,
	}
}

// NormalizeType maps any external value to a known business type, falling
// back to autre.
func NormalizeType(raw string) model.BusinessType {
	key := model.BusinessType(strings.ToLower(strings.TrimSpace(raw)))
	for _, bt := range model.AllBusinessTypes {
		if bt == key {
			return bt
		}
	}
	if raw != "" {
		zap.L().Debug("bizclass: unknown business type, using autre", zap.String("raw", raw))
	}
	return model.BusinessAutre
}

// taxonomySignal scores the taxonomy tags. Returns false when no tag matched.
func taxonomySignal(types []string) (model.Classification, bool) {
	if len(types) == 0 {
		return model.Classification{}, false
	}
	scores := make(map[model.BusinessType]int)
	var order []model.BusinessType
	for _, entry := range taxonomyTags {
		for _, t := range types {
			if strings.EqualFold(strings.TrimSpace(t), entry.tag) {
				if _, seen := scores[entry.bt]; !seen {
					order = append(order, entry.bt)
				}
				scores[entry.bt] += taxonomyMatchScore
			}
		}
	}
	if len(order) == 0 {
		return model.Classification{}, false
	}

	candidates := make([]model.BusinessTypeCandidate, 0, len(order))
	for _, bt := range order {
		candidates = append(candidates, model.BusinessTypeCandidate{
			Type:       bt,
			Confidence: min(100, scores[bt]*10),
		})
	}
	// Stable sort keeps table order among equal confidences.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return model.Classification{
		Type:       candidates[0].Type,
		Confidence: candidates[0].Confidence,
		Candidates: candidates,
		Source:     model.SourcePlaces,
	}, true
}

// keywordSignal scores each type by keyword presence in the name and review
// texts. Confidence is normalised against the per-type maximum of three
// points per keyword.
func keywordSignal(name string, texts []string) model.Classification {
	lowerName := strings.ToLower(name)
	blob := strings.ToLower(name + " " + strings.Join(texts, " "))

	var candidates []model.BusinessTypeCandidate
	for _, entry := range typeKeywords {
		score := 0
		for _, w := range entry.words {
			if strings.Contains(blob, w) {
				score++
			}
			if strings.Contains(lowerName, w) {
				score += nameBonus
			}
		}
		if score == 0 {
			continue
		}
		conf := int(math.Round(100 * float64(score) / float64(len(entry.words)*3)))
		candidates = append(candidates, model.BusinessTypeCandidate{Type: entry.bt, Confidence: conf})
	}

	if len(candidates) == 0 {
		return model.Classification{
			Type:       model.BusinessAutre,
			Confidence: 0,
			Candidates: []model.BusinessTypeCandidate{},
			Source:     model.SourceKeywords,
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return model.Classification{
		Type:       candidates[0].Type,
		Confidence: candidates[0].Confidence,
		Candidates: candidates,
		Source:     model.SourceKeywords,
	}
}

// merge combines a weak taxonomy signal with the keyword signal. The two
// confidences live on different scales and are compared directly; ties go
// to the taxonomy.
func merge(taxo, kw model.Classification) model.Classification {
	var merged []model.BusinessTypeCandidate
	seen := make(map[model.BusinessType]bool)
	for _, list := range [][]model.BusinessTypeCandidate{taxo.Candidates, kw.Candidates} {
		for _, c := range list {
			if seen[c.Type] || len(merged) >= maxCandidates {
				continue
			}
			seen[c.Type] = true
			merged = append(merged, c)
		}
	}

	winner := taxo
	if kw.Confidence > taxo.Confidence {
		winner = kw
	}
	zap.L().Debug("bizclass: merged weak taxonomy with keywords",
		zap.String("taxonomy_type", string(taxo.Type)),
		zap.Int("taxonomy_confidence", taxo.Confidence),
		zap.String("keyword_type", string(kw.Type)),
		zap.Int("keyword_confidence", kw.Confidence),
		zap.String("winner", string(winner.Source)),
	)
	return model.Classification{
		Type:       winner.Type,
		Confidence: winner.Confidence,
		Candidates: merged,
		Source:     winner.Source,
	}
}
