// Package fusion combines technical indicators and news sentiment into a
// single success probability and trading recommendation.
package fusion

import (
	"inversor/internal/config"
	"inversor/internal/models"
)

// Policy is a named blending strategy. The two observed formulas are not
// reconcilable into one; they are kept as swappable implementations and the
// active one is chosen in configuration.
type Policy interface {
	Name() string
	Evaluate(snap models.IndicatorSnapshot, sentimentScore float64, verdicts []models.HeadlineVerdict) (probability float64, rec models.Recommendation)
}

// ThresholdDeltaPolicy starts at the midpoint and applies fixed deltas for
// oversold/overbought RSI, MACD position relative to its signal line, and
// bullish/bearish sentiment, then maps the clamped probability onto the
// five-level recommendation scale.
type ThresholdDeltaPolicy struct {
	cfg config.FusionConfig
}

// NewThresholdDeltaPolicy creates the policy from fusion configuration.
func NewThresholdDeltaPolicy(cfg config.FusionConfig) *ThresholdDeltaPolicy {
	return &ThresholdDeltaPolicy{cfg: cfg}
}

func (p *ThresholdDeltaPolicy) Name() string { return "threshold_delta" }

func (p *ThresholdDeltaPolicy) Evaluate(snap models.IndicatorSnapshot, sentimentScore float64, _ []models.HeadlineVerdict) (float64, models.Recommendation) {
	probability := 50.0

	// Invalid indicators contribute nothing.
	if snap.RSIValid {
		if snap.RSI < p.cfg.RSIOversold {
			probability += p.cfg.RSIDelta
		} else if snap.RSI > p.cfg.RSIOverbought {
			probability -= p.cfg.RSIDelta
		}
	}

	if snap.MACDValid {
		if snap.MACD > snap.MACDSignal {
			probability += p.cfg.MACDDelta
		} else {
			probability -= p.cfg.MACDDelta
		}
	}

	if sentimentScore > p.cfg.SentimentBullish {
		probability += p.cfg.SentimentDelta
	} else if sentimentScore < p.cfg.SentimentBearish {
		probability -= p.cfg.SentimentDelta
	}

	probability = clamp(probability, 0, 100)
	return probability, p.recommend(probability)
}

func (p *ThresholdDeltaPolicy) recommend(probability float64) models.Recommendation {
	switch {
	case probability > p.cfg.StrongBuyCutoff:
		return models.StrongBuy
	case probability < p.cfg.StrongSellCutoff:
		return models.StrongSell
	case probability > p.cfg.BuyCutoff:
		return models.Buy
	case probability < p.cfg.SellCutoff:
		return models.Sell
	default:
		return models.Hold
	}
}

// ConfidenceThresholdPolicy derives the probability purely from mean
// headline polarity and only signals when it clears a configurable
// confidence margin above or below the midpoint; everything else is HOLD.
type ConfidenceThresholdPolicy struct {
	cfg config.FusionConfig
}

// NewConfidenceThresholdPolicy creates the policy from fusion configuration.
func NewConfidenceThresholdPolicy(cfg config.FusionConfig) *ConfidenceThresholdPolicy {
	return &ConfidenceThresholdPolicy{cfg: cfg}
}

func (p *ConfidenceThresholdPolicy) Name() string { return "confidence_threshold" }

func (p *ConfidenceThresholdPolicy) Evaluate(_ models.IndicatorSnapshot, sentimentScore float64, _ []models.HeadlineVerdict) (float64, models.Recommendation) {
	probability := clamp(sentimentScore, 0, 100)

	// Threshold is expressed as a fraction; 0.80 means 80 on the
	// probability scale above the midpoint, 20 below it.
	upper := p.cfg.ConfidenceThreshold * 100
	lower := 100 - upper

	switch {
	case probability > upper:
		return probability, models.StrongBuy
	case probability < lower:
		return probability, models.StrongSell
	default:
		return probability, models.Hold
	}
}

// PolicyFromConfig returns the configured policy implementation.
func PolicyFromConfig(cfg config.FusionConfig) Policy {
	if cfg.Policy == "confidence_threshold" {
		return NewConfidenceThresholdPolicy(cfg)
	}
	return NewThresholdDeltaPolicy(cfg)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
