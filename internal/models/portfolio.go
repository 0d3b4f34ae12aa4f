package models

import "time"

// Transaction records one executed simulated order. Immutable once appended.
type Transaction struct {
	ID         int64
	Timestamp  time.Time
	Symbol     string
	Side       Side
	Quantity   float64 // shares, > 0
	Price      float64 // per share, > 0
	Commission float64 // >= 0
}

// GrossValue returns quantity * price.
func (t Transaction) GrossValue() float64 {
	return t.Quantity * t.Price
}

// PortfolioSnapshot is a read-only copy of the ledger's state, safe to hand
// to the presentation layer.
type PortfolioSnapshot struct {
	Cash    float64
	Shares  float64
	History []Transaction
}

// Equity values the portfolio at the given price. Computed on demand so it
// is never stale.
func (p PortfolioSnapshot) Equity(currentPrice float64) float64 {
	return p.Cash + p.Shares*currentPrice
}
