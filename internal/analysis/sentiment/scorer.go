// Package sentiment provides lexical polarity scoring for news headlines.
package sentiment

import (
	"strings"

	"inversor/internal/models"
)

// Label thresholds on polarity. Design constants, not derived.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// NeutralScore is the aggregate score when no headline could be scored.
const NeutralScore = 50.0

// Scorer classifies headline polarity and aggregates it into a 0-100 score.
type Scorer struct {
	maxHeadlines int
}

// NewScorer creates a scorer that considers at most maxHeadlines per call.
func NewScorer(maxHeadlines int) *Scorer {
	if maxHeadlines <= 0 {
		maxHeadlines = 8
	}
	return &Scorer{maxHeadlines: maxHeadlines}
}

// ScoreHeadline estimates polarity of a single headline text in [-1, 1]
// and labels it. A text with no lexicon hits is neutral with polarity 0.
func (s *Scorer) ScoreHeadline(text string) models.SentimentVerdict {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, w := range positiveWords {
		positive += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		negative += strings.Count(lower, w)
	}

	var polarity float64
	if total := positive + negative; total > 0 {
		polarity = float64(positive-negative) / float64(total)
	}

	return models.SentimentVerdict{
		Label:    labelFor(polarity),
		Polarity: polarity,
	}
}

// Score scores up to maxHeadlines headlines and aggregates their polarity
// onto [0, 100]. Headlines without a title are skipped entirely, they do not
// drag the mean toward zero. Zero scorable headlines yields the neutral
// midpoint.
func (s *Scorer) Score(headlines []models.Headline) ([]models.HeadlineVerdict, float64) {
	if len(headlines) > s.maxHeadlines {
		headlines = headlines[:s.maxHeadlines]
	}

	verdicts := make([]models.HeadlineVerdict, 0, len(headlines))
	var polaritySum float64

	for _, h := range headlines {
		if strings.TrimSpace(h.Title) == "" {
			continue
		}
		v := s.ScoreHeadline(h.Title)
		verdicts = append(verdicts, models.HeadlineVerdict{Headline: h, Verdict: v})
		polaritySum += v.Polarity
	}

	if len(verdicts) == 0 {
		return verdicts, NeutralScore
	}

	meanPolarity := polaritySum / float64(len(verdicts))
	return verdicts, PolarityToScore(meanPolarity)
}

// PolarityToScore maps a polarity in [-1, 1] onto [0, 100].
func PolarityToScore(polarity float64) float64 {
	return (polarity + 1) / 2 * 100
}

func labelFor(polarity float64) models.SentimentLabel {
	switch {
	case polarity > PositiveThreshold:
		return models.SentimentPositive
	case polarity < NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
