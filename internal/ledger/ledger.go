// Package ledger provides the virtual cash-and-shares portfolio and its
// order accounting.
package ledger

import (
	"math"
	"sync"
	"time"

	apperrors "inversor/internal/errors"
	"inversor/internal/models"
)

// Recorder persists executed transactions and portfolio state. A nil
// Recorder keeps the ledger memory-only.
type Recorder interface {
	RecordTransaction(tx models.Transaction) error
	SaveState(cash, shares float64) error
	ClearHistory() error
}

// Ledger owns one portfolio: cash balance, share position and an
// append-only transaction history. Every mutation either fully applies with
// exactly one Transaction appended, or leaves the state untouched and
// returns an error. The ledger knows nothing about market hours; gating is
// the caller's responsibility.
type Ledger struct {
	startingCash   float64
	commissionRate float64
	recorder       Recorder

	mu      sync.RWMutex
	cash    float64
	shares  float64
	history []models.Transaction
	nextID  int64
}

// New creates a ledger with the given starting cash and commission rate.
func New(startingCash, commissionRate float64, recorder Recorder) *Ledger {
	return &Ledger{
		startingCash:   startingCash,
		commissionRate: commissionRate,
		recorder:       recorder,
		cash:           startingCash,
		nextID:         1,
	}
}

// Restore seeds the ledger from persisted state. Meant for session
// resumption at startup, before any trading begins.
func (l *Ledger) Restore(cash, shares float64, history []models.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cash = cash
	l.shares = shares
	l.history = append([]models.Transaction(nil), history...)
	l.nextID = int64(len(history)) + 1
}

// Buy spends amountToSpend of cash on shares at pricePerShare. Commission
// is deducted from the spend before shares are acquired.
func (l *Ledger) Buy(symbol string, amountToSpend, pricePerShare float64) (*models.Transaction, error) {
	if !positiveFinite(amountToSpend) {
		return nil, apperrors.NewOrderError(symbol, string(models.SideBuy), "amount must be positive and finite", apperrors.ErrInvalidOrder)
	}
	if !positiveFinite(pricePerShare) {
		return nil, apperrors.NewOrderError(symbol, string(models.SideBuy), "price must be positive and finite", apperrors.ErrInvalidOrder)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amountToSpend > l.cash {
		return nil, apperrors.NewOrderError(symbol, string(models.SideBuy), "amount exceeds available cash", apperrors.ErrInsufficientFunds)
	}

	commission := amountToSpend * l.commissionRate
	quantity := (amountToSpend - commission) / pricePerShare

	tx := models.Transaction{
		ID:         l.nextID,
		Timestamp:  time.Now(),
		Symbol:     symbol,
		Side:       models.SideBuy,
		Quantity:   quantity,
		Price:      pricePerShare,
		Commission: commission,
	}

	l.cash -= amountToSpend
	l.shares += quantity
	l.history = append(l.history, tx)
	l.nextID++

	l.persist(tx)
	return &tx, nil
}

// Sell disposes quantity shares at pricePerShare. Commission is deducted
// from the gross proceeds.
func (l *Ledger) Sell(symbol string, quantity, pricePerShare float64) (*models.Transaction, error) {
	if !positiveFinite(quantity) {
		return nil, apperrors.NewOrderError(symbol, string(models.SideSell), "quantity must be positive and finite", apperrors.ErrInvalidOrder)
	}
	if !positiveFinite(pricePerShare) {
		return nil, apperrors.NewOrderError(symbol, string(models.SideSell), "price must be positive and finite", apperrors.ErrInvalidOrder)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if quantity > l.shares {
		return nil, apperrors.NewOrderError(symbol, string(models.SideSell), "quantity exceeds share position", apperrors.ErrInsufficientPosition)
	}

	gross := quantity * pricePerShare
	commission := gross * l.commissionRate
	net := gross - commission

	tx := models.Transaction{
		ID:         l.nextID,
		Timestamp:  time.Now(),
		Symbol:     symbol,
		Side:       models.SideSell,
		Quantity:   quantity,
		Price:      pricePerShare,
		Commission: commission,
	}

	l.shares -= quantity
	l.cash += net
	l.history = append(l.history, tx)
	l.nextID++

	l.persist(tx)
	return &tx, nil
}

// Reset restores the starting cash balance, zeroes the position and clears
// the history. Always succeeds; calling it twice is the same as once.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cash = l.startingCash
	l.shares = 0
	l.history = nil
	l.nextID = 1

	if l.recorder != nil {
		// Persistence failures degrade to memory-only state.
		_ = l.recorder.ClearHistory()
		_ = l.recorder.SaveState(l.cash, l.shares)
	}
}

// Snapshot returns a read-only copy of the portfolio.
func (l *Ledger) Snapshot() models.PortfolioSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := make([]models.Transaction, len(l.history))
	copy(history, l.history)

	return models.PortfolioSnapshot{
		Cash:    l.cash,
		Shares:  l.shares,
		History: history,
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash
}

// Shares returns the current share position.
func (l *Ledger) Shares() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shares
}

// Equity values the portfolio at the given price: cash + shares*price.
// Computed on demand, never stored.
func (l *Ledger) Equity(currentPrice float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash + l.shares*currentPrice
}

// positiveFinite guards order inputs. NaN compares false against
// everything, so a plain <= 0 check would let it through and poison cash
// and shares for the rest of the session.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func (l *Ledger) persist(tx models.Transaction) {
	if l.recorder == nil {
		return
	}
	// Persistence failures do not roll back the in-memory state; the
	// ledger is the source of truth within a session.
	_ = l.recorder.RecordTransaction(tx)
	_ = l.recorder.SaveState(l.cash, l.shares)
}
