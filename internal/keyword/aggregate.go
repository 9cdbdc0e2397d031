package keyword

import (
	"sort"

	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/rating"
	"github.com/sells-group/review-insights/internal/theme"
)

// counter counts occurrences per class and remembers first-seen order so
// that ties resolve to the class encountered first.
type counter[K comparable] struct {
	order  []K
	counts map[K]int
}

func (c *counter[K]) add(k K) {
	if c.counts == nil {
		c.counts = make(map[K]int)
	}
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k]++
}

// dominant returns the class with the highest count, first-seen on ties.
func (c *counter[K]) dominant() (K, bool) {
	var best K
	bestN := 0
	for _, k := range c.order {
		if n := c.counts[k]; n > bestN {
			best, bestN = k, n
		}
	}
	return best, bestN > 0
}

type wordStats struct {
	word       string
	count      int
	sentiments counter[model.Sentiment]
	themes     counter[model.Theme]
}

// Aggregate counts keywords across reviews and computes the bundles the mode
// asks for: frequency computes all three, sentiment and theme only their own.
// Unknown modes are treated as frequency.
func Aggregate(reviews []model.Review, mode model.KeywordMode) model.KeywordAggregation {
	if mode != model.KeywordModeSentiment && mode != model.KeywordModeTheme {
		mode = model.KeywordModeFrequency
	}

	stats := collect(reviews)
	agg := model.KeywordAggregation{Mode: mode}

	if mode == model.KeywordModeFrequency || mode == model.KeywordModeSentiment {
		agg.BySentiment = bySentiment(stats)
	}
	if mode == model.KeywordModeFrequency || mode == model.KeywordModeTheme {
		agg.ByTheme = byTheme(stats)
	}
	if mode == model.KeywordModeFrequency {
		agg.ByFrequency = make([]model.KeywordCount, 0, len(stats))
		for _, s := range stats {
			agg.ByFrequency = append(agg.ByFrequency, toCount(s))
		}
	}
	return agg
}

// collect tokenises every review and returns per-word statistics sorted by
// count descending, first-seen order on ties.
func collect(reviews []model.Review) []*wordStats {
	index := make(map[string]*wordStats)
	var ordered []*wordStats

	for _, r := range reviews {
		tokens := Extract(r.Text)
		if len(tokens) == 0 {
			continue
		}
		sentiment := rating.SentimentOf(r.Rating)
		themes := theme.Resolve(r)

		for _, tok := range tokens {
			s, ok := index[tok]
			if !ok {
				s = &wordStats{word: tok}
				index[tok] = s
				ordered = append(ordered, s)
			}
			s.count++
			s.sentiments.add(sentiment)
			for _, t := range themes {
				s.themes.add(t)
			}
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})
	return ordered
}

func toCount(s *wordStats) model.KeywordCount {
	kc := model.KeywordCount{Word: s.word, Count: s.count}
	if sent, ok := s.sentiments.dominant(); ok {
		kc.Sentiment = sent
	}
	if th, ok := s.themes.dominant(); ok {
		kc.Theme = th
	}
	return kc
}

func bySentiment(stats []*wordStats) *model.SentimentKeywords {
	out := &model.SentimentKeywords{
		Positive: []model.KeywordCount{},
		Neutral:  []model.KeywordCount{},
		Negative: []model.KeywordCount{},
	}
	for _, s := range stats {
		kc := toCount(s)
		switch kc.Sentiment {
		case model.SentimentPositive:
			out.Positive = append(out.Positive, kc)
		case model.SentimentNegative:
			out.Negative = append(out.Negative, kc)
		default:
			out.Neutral = append(out.Neutral, kc)
		}
	}
	return out
}

// byTheme buckets words by dominant theme. Words with no resolvable theme
// are left out.
func byTheme(stats []*wordStats) map[model.Theme][]model.KeywordCount {
	out := make(map[model.Theme][]model.KeywordCount, len(model.AllThemes))
	for _, t := range model.AllThemes {
		out[t] = []model.KeywordCount{}
	}
	for _, s := range stats {
		kc := toCount(s)
		if kc.Theme == "" {
			continue
		}
		out[kc.Theme] = append(out[kc.Theme], kc)
	}
	return out
}

// TopWords counts keywords over texts after reducing each to its original
// language segment, and returns the n most frequent. n <= 0 returns all.
func TopWords(texts []string, n int) []model.KeywordCount {
	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, tok := range Extract(OriginalSegment(text)) {
			if _, ok := counts[tok]; !ok {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	out := make([]model.KeywordCount, 0, len(order))
	for _, w := range order {
		out = append(out, model.KeywordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
