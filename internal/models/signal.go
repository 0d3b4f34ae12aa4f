package models

import "time"

// IndicatorSnapshot holds the technical indicators for the most recent bar.
// RSIValid and MACDValid are false when the history window is too short for
// the respective calculation; an invalid indicator is a neutral signal, not
// an error.
type IndicatorSnapshot struct {
	RSI        float64
	RSIValid   bool
	MACD       float64
	MACDSignal float64
	MACDValid  bool
}

// FusionResult is the outcome of one evaluation: a success probability, the
// discrete recommendation derived from it, and the evidence that produced
// the sentiment component. Produced fresh per evaluation, never mutated.
type FusionResult struct {
	Symbol         string
	Probability    float64 // [0, 100]
	Recommendation Recommendation
	SentimentScore float64 // [0, 100]
	Indicators     IndicatorSnapshot
	Evidence       []HeadlineVerdict
	Policy         string
	GeneratedAt    time.Time
}

// PositiveCount returns the number of POSITIVE verdicts in the evidence.
func (r *FusionResult) PositiveCount() int {
	return r.countLabel(SentimentPositive)
}

// NegativeCount returns the number of NEGATIVE verdicts in the evidence.
func (r *FusionResult) NegativeCount() int {
	return r.countLabel(SentimentNegative)
}

func (r *FusionResult) countLabel(label SentimentLabel) int {
	n := 0
	for _, ev := range r.Evidence {
		if ev.Verdict.Label == label {
			n++
		}
	}
	return n
}
