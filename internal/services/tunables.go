// Package services – engine tunables read from the key/value config store.
//
// Every tunable is read fresh per call (no in-process caching), so a config
// change takes effect on the next operation. Absent or malformed values fall
// back to the documented defaults and are never treated as errors.
package services

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/preference"
	"github.com/yyang/go-car-backend/internal/pricing"
	"github.com/yyang/go-car-backend/internal/repo"
)

// Config keys of the recommendation and statistics tunables.
const (
	cfgKeyLikeScore          = "car:score:like"
	cfgKeyViewScore          = "car:score:view"
	cfgKeyViewRecordNum      = "car:view:number"
	cfgKeyLikeRecordNum      = "car:like:number"
	cfgKeyRecommendNum       = "car:recommend:number"
	cfgKeyDecayFactor        = "car:time:decay:factor"
	cfgKeyModelWeight        = "car:model:weight"
	cfgKeyOverallScoreWeight = "car:overall:score:weight"
	cfgKeyPriceRange         = "statistics:price:range"
)

// modelWeightConfig is the JSON shape stored under car:model:weight.
type modelWeightConfig struct {
	Country     float64 `json:"country"`
	Brand       float64 `json:"brand"`
	ModelType   float64 `json:"modelType"`
	EnergyType  float64 `json:"energyType"`
	Price       float64 `json:"price"`
	GreaterThan float64 `json:"greaterThan"`
	LessThan    float64 `json:"lessThan"`
	MinScore    float64 `json:"minScore"`
}

// loadParams assembles the preference engine parameters from the config
// store, falling back to defaults for anything absent or malformed.
func loadParams(ctx context.Context, db *gorm.DB) preference.Params {
	p := preference.DefaultParams()

	p.LikeScore = configFloat(ctx, db, cfgKeyLikeScore, p.LikeScore)
	p.ViewScore = configFloat(ctx, db, cfgKeyViewScore, p.ViewScore)
	p.ViewThreshold = configInt(ctx, db, cfgKeyViewRecordNum, p.ViewThreshold)
	p.LikeThreshold = configInt(ctx, db, cfgKeyLikeRecordNum, p.LikeThreshold)
	p.RecommendNum = configInt(ctx, db, cfgKeyRecommendNum, p.RecommendNum)
	p.DecayFactor = configFloat(ctx, db, cfgKeyDecayFactor, p.DecayFactor)
	p.OverallScoreWeight = configFloat(ctx, db, cfgKeyOverallScoreWeight, p.OverallScoreWeight)
	p.PriceBreakpoints = configBreakpoints(ctx, db, p.PriceBreakpoints)

	if raw, ok := configString(ctx, db, cfgKeyModelWeight); ok {
		var mw modelWeightConfig
		if err := json.Unmarshal([]byte(raw), &mw); err != nil {
			log.Warn().Err(err).Str("key", cfgKeyModelWeight).Msg("malformed model weight config, using defaults")
		} else {
			if mw.Country > 0 {
				p.DimensionWeights[preference.DimCountry] = mw.Country
			}
			if mw.Brand > 0 {
				p.DimensionWeights[preference.DimBrand] = mw.Brand
			}
			if mw.ModelType > 0 {
				p.DimensionWeights[preference.DimModel] = mw.ModelType
			}
			if mw.EnergyType > 0 {
				p.DimensionWeights[preference.DimEnergy] = mw.EnergyType
			}
			if mw.Price > 0 {
				p.DimensionWeights[preference.DimPrice] = mw.Price
			}
			if mw.GreaterThan > 0 {
				p.GreaterFactor = mw.GreaterThan
			}
			if mw.LessThan > 0 {
				p.LessFactor = mw.LessThan
			}
			if mw.MinScore > 0 {
				p.MinScore = mw.MinScore
			}
		}
	}

	return p.Normalize()
}

// loadBreakpoints returns the configured statistics price bucket boundaries.
func loadBreakpoints(ctx context.Context, db *gorm.DB) []float64 {
	return configBreakpoints(ctx, db, pricing.DefaultBreakpoints)
}

func configString(ctx context.Context, db *gorm.DB, key string) (string, bool) {
	v, ok, err := repo.GetConfigValue(ctx, db, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("config read failed, using default")
		return "", false
	}
	return v, ok
}

func configFloat(ctx context.Context, db *gorm.DB, key string, def float64) float64 {
	raw, ok := configString(ctx, db, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("malformed config value, using default")
		return def
	}
	return v
}

func configInt(ctx context.Context, db *gorm.DB, key string, def int) int {
	raw, ok := configString(ctx, db, key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("malformed config value, using default")
		return def
	}
	return v
}

func configBreakpoints(ctx context.Context, db *gorm.DB, def []float64) []float64 {
	raw, ok := configString(ctx, db, cfgKeyPriceRange)
	if !ok {
		return def
	}
	if bp := pricing.ParseBreakpoints(raw); bp != nil {
		return bp
	}
	log.Warn().Str("key", cfgKeyPriceRange).Str("value", raw).Msg("malformed price range config, using default")
	return def
}
