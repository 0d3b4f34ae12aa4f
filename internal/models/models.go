// Package models provides domain models for the paper-trading application.
package models

import (
	"time"
)

// Side represents the side of a transaction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Recommendation is the discrete trading signal produced by the fusion engine.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// SentimentLabel classifies a single headline's polarity.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// Candle represents OHLCV data for one sampling interval.
// Immutable once fetched.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Quote represents the latest market snapshot for a symbol.
type Quote struct {
	Symbol        string
	Price         float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	Volume        int64
	Timestamp     time.Time
}

// Headline is a normalized news item. Provider-specific shape variants
// (title nested under a "content" field and the like) are resolved at the
// gateway boundary; nothing downstream branches on source shape.
type Headline struct {
	Title     string
	Publisher string
	Link      string
}

// SentimentVerdict is the per-headline polarity classification.
type SentimentVerdict struct {
	Label    SentimentLabel
	Polarity float64 // [-1, 1]
}

// HeadlineVerdict pairs a headline with its verdict for display.
type HeadlineVerdict struct {
	Headline Headline
	Verdict  SentimentVerdict
}
