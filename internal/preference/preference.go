// Package preference implements the user preference model behind the
// recommendation engine: exponential time-decay weighting of interaction
// history, accumulation into a multi-dimensional preference vector, and
// scoring of candidate series against that vector.
//
// The package is deliberately free of persistence and logging concerns
// (callers decide how/what to log); every tunable is passed in explicitly
// through Params, so the engine has no hidden global state and is trivially
// testable.
package preference

import (
	"math"
	"time"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/pricing"
)

// Dimension names of the preference vector.
const (
	DimCountry = "country"
	DimBrand   = "brand"
	DimModel   = "modelType"
	DimEnergy  = "energyType"
	DimPrice   = "price"
	DimScore   = "score"
)

// Score sub-dimension display names. These double as the accumulation keys
// of the DimScore dimension, matching the labels shown in the admin UI.
const (
	ScoreOverall       = "综合"
	ScoreExterior      = "外观"
	ScoreInterior      = "内饰"
	ScoreSpace         = "空间"
	ScoreHandling      = "操控"
	ScoreComfort       = "舒适性"
	ScorePower         = "动力"
	ScoreConfiguration = "配置"
)

// ScoreLabels lists the eight score sub-dimensions in display order.
var ScoreLabels = []string{
	ScoreOverall, ScoreExterior, ScoreInterior, ScoreSpace,
	ScoreHandling, ScoreComfort, ScorePower, ScoreConfiguration,
}

// Kind distinguishes the interaction types feeding the vector.
type Kind int

const (
	// KindView is a browsing interaction.
	KindView Kind = iota
	// KindLike is a like interaction; likes default to a higher base score.
	KindLike
)

// Params carries every tunable of the engine. Zero values are replaced by the
// documented defaults via Normalize, so a Params populated only partially from
// the config store still behaves sensibly.
type Params struct {
	// DecayFactor is the per-day exponential decay base in (0,1].
	DecayFactor float64
	// ViewScore / LikeScore are the base weights used when an interaction
	// record carries no score of its own.
	ViewScore float64
	LikeScore float64
	// ViewThreshold / LikeThreshold are the regeneration triggers: a new
	// recommendation is generated once the count of interactions created
	// after the latest snapshot reaches either threshold.
	ViewThreshold int
	LikeThreshold int
	// DimensionWeights maps the five categorical dimensions to their weight
	// in the candidate score.
	DimensionWeights map[string]float64
	// GreaterFactor / LessFactor weight a score sub-dimension that stands
	// above / below the record's own overall score.
	GreaterFactor float64
	LessFactor    float64
	// OverallScoreWeight multiplies the score sub-dimension contribution of
	// a candidate.
	OverallScoreWeight float64
	// MinScore discards candidates scoring below it.
	MinScore float64
	// RecommendNum caps the persisted ranking length.
	RecommendNum int
	// PriceBreakpoints defines the price bucket boundaries in yuan.
	PriceBreakpoints []float64
}

// DefaultParams returns the engine defaults used when the config store has no
// override for a tunable.
func DefaultParams() Params {
	return Params{
		DecayFactor:   0.95,
		ViewScore:     5,
		LikeScore:     15,
		ViewThreshold: 5,
		LikeThreshold: 1,
		DimensionWeights: map[string]float64{
			DimCountry: 5,
			DimBrand:   30,
			DimModel:   15,
			DimEnergy:  6,
			DimPrice:   21,
		},
		GreaterFactor:      2,
		LessFactor:         0.5,
		OverallScoreWeight: 1,
		MinScore:           1,
		RecommendNum:       3000,
		PriceBreakpoints:   pricing.DefaultBreakpoints,
	}
}

// Normalize fills unset fields with defaults and returns the result.
func (p Params) Normalize() Params {
	def := DefaultParams()
	if p.DecayFactor <= 0 || p.DecayFactor > 1 {
		p.DecayFactor = def.DecayFactor
	}
	if p.ViewScore <= 0 {
		p.ViewScore = def.ViewScore
	}
	if p.LikeScore <= 0 {
		p.LikeScore = def.LikeScore
	}
	if p.ViewThreshold <= 0 {
		p.ViewThreshold = def.ViewThreshold
	}
	if p.LikeThreshold <= 0 {
		p.LikeThreshold = def.LikeThreshold
	}
	if len(p.DimensionWeights) == 0 {
		p.DimensionWeights = def.DimensionWeights
	}
	if p.GreaterFactor <= 0 {
		p.GreaterFactor = def.GreaterFactor
	}
	if p.LessFactor <= 0 {
		p.LessFactor = def.LessFactor
	}
	if p.OverallScoreWeight <= 0 {
		p.OverallScoreWeight = def.OverallScoreWeight
	}
	if p.MinScore <= 0 {
		p.MinScore = def.MinScore
	}
	if p.RecommendNum <= 0 {
		p.RecommendNum = def.RecommendNum
	}
	if len(p.PriceBreakpoints) == 0 {
		p.PriceBreakpoints = def.PriceBreakpoints
	}
	return p
}

// TimeWeight returns decay^max(0, days). Same-day (or clock-skewed future)
// interactions get full weight 1.0; the weight is strictly decreasing in the
// day count for decay in (0,1).
func TimeWeight(decay float64, days int) float64 {
	if days <= 0 {
		return 1.0
	}
	return math.Pow(decay, float64(days))
}

// Vector is an ephemeral preference vector: dimension → label → accumulated
// weight. It is rebuilt from scratch on every generation; only the ranking
// it produces is persisted.
type Vector map[string]map[string]float64

// NewVector returns an empty vector.
func NewVector() Vector { return make(Vector) }

// Add accumulates weight w under (dim, label). Empty labels are ignored.
func (v Vector) Add(dim, label string, w float64) {
	if label == "" {
		return
	}
	m, ok := v[dim]
	if !ok {
		m = make(map[string]float64)
		v[dim] = m
	}
	m[label] += w
}

// Total returns the summed weight of one dimension.
func (v Vector) Total(dim string) float64 {
	var sum float64
	for _, w := range v[dim] {
		sum += w
	}
	return sum
}

// Accumulate folds one interaction record into the vector. The order of calls
// does not matter: accumulation is commutative.
//
// The record contributes timeWeight × baseScore into the five categorical
// dimensions, keyed by the record's denormalized attribute values as-is
// (multi-value fields like "SUV/轿车" are split only at scoring time, not
// here). The eight score sub-dimensions instead accumulate a weight factor
// per field: GreaterFactor when that field exceeds the record's own overall
// score, LessFactor when below, 1.0 otherwise. A sub-dimension matters more
// when it stands out from the item's own average.
func Accumulate(v Vector, rec domain.Interaction, kind Kind, now time.Time, p Params) {
	days := int(now.Sub(rec.CreateTime).Hours() / 24)
	base := p.ViewScore
	if kind == KindLike {
		base = p.LikeScore
	}
	if rec.Score != nil && *rec.Score > 0 {
		base = *rec.Score
	}
	w := TimeWeight(p.DecayFactor, days) * base

	v.Add(DimCountry, rec.Country, w)
	v.Add(DimBrand, rec.BrandName, w)
	v.Add(DimModel, rec.ModelType, w)
	v.Add(DimEnergy, rec.EnergyType, w)
	if rec.Price != nil {
		v.Add(DimPrice, pricing.BucketLabel(*rec.Price, p.PriceBreakpoints), w)
	}

	scores := interactionScores(rec)
	for _, label := range ScoreLabels {
		factor := 1.0
		val := scores[label]
		if label != ScoreOverall && val != nil && rec.OverallScore != nil {
			switch {
			case *val > *rec.OverallScore:
				factor = p.GreaterFactor
			case *val < *rec.OverallScore:
				factor = p.LessFactor
			}
		}
		v.Add(DimScore, label, factor)
	}
}

// BuildVector accumulates a full view and like history into a fresh vector.
func BuildVector(views []domain.View, likes []domain.Like, now time.Time, p Params) Vector {
	v := NewVector()
	for _, rec := range views {
		Accumulate(v, rec.Interaction, KindView, now, p)
	}
	for _, rec := range likes {
		Accumulate(v, rec.Interaction, KindLike, now, p)
	}
	return v
}

func interactionScores(rec domain.Interaction) map[string]*float64 {
	return map[string]*float64{
		ScoreOverall:       rec.OverallScore,
		ScoreExterior:      rec.ExteriorScore,
		ScoreInterior:      rec.InteriorScore,
		ScoreSpace:         rec.SpaceScore,
		ScoreHandling:      rec.HandlingScore,
		ScoreComfort:       rec.ComfortScore,
		ScorePower:         rec.PowerScore,
		ScoreConfiguration: rec.ConfigurationScore,
	}
}

func seriesScores(s domain.Series) map[string]*float64 {
	return map[string]*float64{
		ScoreOverall:       s.OverallScore,
		ScoreExterior:      s.ExteriorScore,
		ScoreInterior:      s.InteriorScore,
		ScoreSpace:         s.SpaceScore,
		ScoreHandling:      s.HandlingScore,
		ScoreComfort:       s.ComfortScore,
		ScorePower:         s.PowerScore,
		ScoreConfiguration: s.ConfigurationScore,
	}
}
