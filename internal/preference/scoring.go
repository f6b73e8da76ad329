// Package preference – candidate scoring and ranking.
package preference

import (
	"sort"
	"strings"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/pricing"
)

// Scored pairs a candidate series with its computed preference score.
type Scored struct {
	Series domain.Series
	Score  float64
}

// Averages holds the dataset-wide mean of each score sub-dimension, keyed by
// the ScoreLabels display names. A candidate's score dimension only earns a
// bonus when it beats both the dataset average and the candidate's own
// overall score.
type Averages map[string]float64

// Similarity computes the match between one categorical dimension of an item
// and the preference vector. The item value is split on "/": the base
// similarity is the summed preference weight of matched tokens over the total
// weight of the dimension. Matching more than one token earns a diversity
// bonus of +10% per extra token (capped at 1.0); when every token of a
// multi-token value matches, a ×1.2 full-match bonus applies on top, so the
// result is always within [0, 1.2].
func Similarity(v Vector, dim, itemValue string) float64 {
	if itemValue == "" {
		return 0
	}
	total := v.Total(dim)
	if total <= 0 {
		return 0
	}

	tokens := strings.Split(itemValue, "/")
	var matchedWeight float64
	matched := 0
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if w, ok := v[dim][tok]; ok && w > 0 {
			matchedWeight += w
			matched++
		}
	}
	if matched == 0 {
		return 0
	}

	sim := matchedWeight / total
	if matched > 1 {
		sim *= 1 + 0.1*float64(matched-1)
	}
	if sim > 1 {
		sim = 1
	}
	if matched == len(tokens) && len(tokens) > 1 {
		sim *= 1.2
	}
	return sim
}

// ScoreCandidates scores every candidate against the vector and returns the
// ranking: candidates below MinScore are dropped, the rest are sorted by
// score descending (ties broken by id ascending for a deterministic order)
// and truncated to RecommendNum.
//
// Candidates the user already interacted with are expected to be filtered out
// by the caller before scoring.
func ScoreCandidates(v Vector, candidates []domain.Series, avg Averages, p Params) []Scored {
	ranked := make([]Scored, 0, len(candidates))
	for _, s := range candidates {
		score := scoreOne(v, s, avg, p)
		if score < p.MinScore {
			continue
		}
		ranked = append(ranked, Scored{Series: s, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Series.ID < ranked[j].Series.ID
	})
	if p.RecommendNum > 0 && len(ranked) > p.RecommendNum {
		ranked = ranked[:p.RecommendNum]
	}
	return ranked
}

func scoreOne(v Vector, s domain.Series, avg Averages, p Params) float64 {
	var total float64

	total += Similarity(v, DimCountry, s.Country) * p.DimensionWeights[DimCountry]
	total += Similarity(v, DimBrand, s.BrandName) * p.DimensionWeights[DimBrand]
	total += Similarity(v, DimModel, s.ModelType) * p.DimensionWeights[DimModel]
	total += Similarity(v, DimEnergy, s.EnergyType) * p.DimensionWeights[DimEnergy]
	if label := candidatePriceBucket(s, p.PriceBreakpoints); label != "" {
		total += Similarity(v, DimPrice, label) * p.DimensionWeights[DimPrice]
	}

	// Score sub-dimensions: reward items that are both locally strong (the
	// dimension beats the dataset average and the item's own overall score)
	// and historically preferred. The check applies to every dimension
	// individually.
	scores := seriesScores(s)
	for _, label := range ScoreLabels {
		val := scores[label]
		if val == nil || s.OverallScore == nil {
			continue
		}
		if *val >= avg[label] && *val >= *s.OverallScore {
			total += (*val + v[DimScore][label]) * p.OverallScoreWeight
		}
	}

	return total
}

// candidatePriceBucket labels a series by its minimum price, falling back to
// the maximum when no minimum is recorded.
func candidatePriceBucket(s domain.Series, breakpoints []float64) string {
	switch {
	case s.MinPrice != nil:
		return pricing.BucketLabel(*s.MinPrice, breakpoints)
	case s.MaxPrice != nil:
		return pricing.BucketLabel(*s.MaxPrice, breakpoints)
	default:
		return ""
	}
}
