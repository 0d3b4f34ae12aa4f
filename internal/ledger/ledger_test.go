package ledger

import (
	"math"
	"testing"

	apperrors "inversor/internal/errors"
	"inversor/internal/models"
)

const (
	testStartingCash   = 10000.0
	testCommissionRate = 0.0015
)

// recordingStub captures persistence calls.
type recordingStub struct {
	transactions []models.Transaction
	savedCash    float64
	savedShares  float64
	cleared      int
	failAll      bool
}

func (r *recordingStub) RecordTransaction(tx models.Transaction) error {
	if r.failAll {
		return apperrors.ErrDatabaseError
	}
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *recordingStub) SaveState(cash, shares float64) error {
	if r.failAll {
		return apperrors.ErrDatabaseError
	}
	r.savedCash = cash
	r.savedShares = shares
	return nil
}

func (r *recordingStub) ClearHistory() error {
	if r.failAll {
		return apperrors.ErrDatabaseError
	}
	r.cleared++
	return nil
}

func newTestLedger() *Ledger {
	return New(testStartingCash, testCommissionRate, nil)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuy(t *testing.T) {
	l := newTestLedger()

	tx, err := l.Buy("AAPL", 1000, 100)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	// Commission 1.50 comes out of the spend: (1000-1.50)/100 shares.
	if !approxEqual(tx.Commission, 1.5) {
		t.Errorf("commission = %v, want 1.5", tx.Commission)
	}
	if !approxEqual(tx.Quantity, 9.985) {
		t.Errorf("quantity = %v, want 9.985", tx.Quantity)
	}
	if !approxEqual(l.Cash(), 9000) {
		t.Errorf("cash = %v, want 9000", l.Cash())
	}
	if !approxEqual(l.Shares(), 9.985) {
		t.Errorf("shares = %v, want 9.985", l.Shares())
	}
	if tx.Side != models.SideBuy {
		t.Errorf("side = %s", tx.Side)
	}
}

func TestBuy_InvalidOrder(t *testing.T) {
	l := newTestLedger()

	for _, tc := range []struct {
		name   string
		amount float64
		price  float64
	}{
		{"zero amount", 0, 100},
		{"negative amount", -50, 100},
		{"zero price", 100, 0},
		{"negative price", 100, -1},
		{"NaN amount", math.NaN(), 100},
		{"infinite amount", math.Inf(1), 100},
		{"NaN price", 100, math.NaN()},
		{"infinite price", 100, math.Inf(1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := l.Buy("AAPL", tc.amount, tc.price); !apperrors.Is(err, apperrors.ErrInvalidOrder) {
				t.Errorf("expected ErrInvalidOrder, got %v", err)
			}
		})
	}

	if l.Cash() != testStartingCash || l.Shares() != 0 || len(l.Snapshot().History) != 0 {
		t.Error("rejected orders must leave state untouched")
	}
}

func TestBuy_InsufficientFunds(t *testing.T) {
	l := newTestLedger()

	_, err := l.Buy("AAPL", testStartingCash+0.01, 100)
	if !apperrors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if l.Cash() != testStartingCash {
		t.Errorf("cash changed on rejected order: %v", l.Cash())
	}

	// Spending exactly all cash is allowed.
	if _, err := l.Buy("AAPL", testStartingCash, 100); err != nil {
		t.Errorf("full-cash buy should succeed: %v", err)
	}
	if !approxEqual(l.Cash(), 0) {
		t.Errorf("cash = %v, want 0", l.Cash())
	}
}

func TestSell(t *testing.T) {
	l := newTestLedger()

	if _, err := l.Buy("AAPL", 1000, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	tx, err := l.Sell("AAPL", 5, 110)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}

	gross := 5 * 110.0
	commission := gross * testCommissionRate
	if !approxEqual(tx.Commission, commission) {
		t.Errorf("commission = %v, want %v", tx.Commission, commission)
	}
	if !approxEqual(l.Cash(), 9000+gross-commission) {
		t.Errorf("cash = %v, want %v", l.Cash(), 9000+gross-commission)
	}
	if !approxEqual(l.Shares(), 9.985-5) {
		t.Errorf("shares = %v, want %v", l.Shares(), 9.985-5)
	}
}

func TestSell_InsufficientPosition(t *testing.T) {
	l := newTestLedger()

	if _, err := l.Buy("AAPL", 1000, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	cashBefore, sharesBefore := l.Cash(), l.Shares()

	_, err := l.Sell("AAPL", sharesBefore+0.0001, 100)
	if !apperrors.Is(err, apperrors.ErrInsufficientPosition) {
		t.Fatalf("expected ErrInsufficientPosition, got %v", err)
	}
	if l.Cash() != cashBefore || l.Shares() != sharesBefore {
		t.Error("rejected sell must leave state untouched")
	}
	if got := len(l.Snapshot().History); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}

	// Selling the entire position exactly is allowed.
	if _, err := l.Sell("AAPL", sharesBefore, 100); err != nil {
		t.Errorf("full-position sell should succeed: %v", err)
	}
	if !approxEqual(l.Shares(), 0) {
		t.Errorf("shares = %v, want 0", l.Shares())
	}
}

func TestSell_InvalidOrder(t *testing.T) {
	l := newTestLedger()

	if _, err := l.Sell("AAPL", 0, 100); !apperrors.Is(err, apperrors.ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder for zero quantity, got %v", err)
	}
	if _, err := l.Sell("AAPL", 1, -5); !apperrors.Is(err, apperrors.ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder for negative price, got %v", err)
	}
	if _, err := l.Sell("AAPL", math.NaN(), 100); !apperrors.Is(err, apperrors.ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder for NaN quantity, got %v", err)
	}
	if _, err := l.Sell("AAPL", 1, math.Inf(1)); !apperrors.Is(err, apperrors.ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder for infinite price, got %v", err)
	}
}

func TestOrders_NonFiniteInputsCannotCorruptState(t *testing.T) {
	l := newTestLedger()

	if _, err := l.Buy("AAPL", 1000, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	cashBefore, sharesBefore := l.Cash(), l.Shares()

	// NaN fails every comparison, so a naive threshold check would accept
	// these orders and poison the balances.
	l.Buy("AAPL", math.NaN(), 100)
	l.Buy("AAPL", 500, math.NaN())
	l.Buy("AAPL", math.Inf(1), 100)
	l.Sell("AAPL", math.NaN(), 100)
	l.Sell("AAPL", 1, math.Inf(1))

	if math.IsNaN(l.Cash()) || math.IsNaN(l.Shares()) {
		t.Fatal("non-finite order inputs corrupted the balances")
	}
	if l.Cash() != cashBefore || l.Shares() != sharesBefore {
		t.Errorf("state changed: cash %v -> %v, shares %v -> %v",
			cashBefore, l.Cash(), sharesBefore, l.Shares())
	}
	if got := len(l.Snapshot().History); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestReset(t *testing.T) {
	l := newTestLedger()

	if _, err := l.Buy("AAPL", 1000, 100); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if _, err := l.Sell("AAPL", 2, 105); err != nil {
		t.Fatalf("Sell: %v", err)
	}

	l.Reset()

	snap := l.Snapshot()
	if snap.Cash != testStartingCash || snap.Shares != 0 || len(snap.History) != 0 {
		t.Errorf("unexpected state after reset: %+v", snap)
	}

	// Reset is idempotent.
	l.Reset()
	snap = l.Snapshot()
	if snap.Cash != testStartingCash || snap.Shares != 0 || len(snap.History) != 0 {
		t.Errorf("second reset changed state: %+v", snap)
	}

	// IDs restart after reset.
	tx, err := l.Buy("AAPL", 500, 50)
	if err != nil {
		t.Fatalf("Buy after reset: %v", err)
	}
	if tx.ID != 1 {
		t.Errorf("transaction ID after reset = %d, want 1", tx.ID)
	}
}

func TestHistoryOrdering(t *testing.T) {
	l := newTestLedger()

	l.Buy("AAPL", 1000, 100)
	l.Sell("AAPL", 1, 110)
	l.Buy("AAPL", 500, 105)

	history := l.Snapshot().History
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	for i, tx := range history {
		if tx.ID != int64(i+1) {
			t.Errorf("history[%d].ID = %d, want %d", i, tx.ID, i+1)
		}
	}
	if history[0].Side != models.SideBuy || history[1].Side != models.SideSell || history[2].Side != models.SideBuy {
		t.Error("history order does not match execution order")
	}
}

func TestEquity(t *testing.T) {
	l := newTestLedger()

	if !approxEqual(l.Equity(123), testStartingCash) {
		t.Errorf("fresh ledger equity = %v, want %v", l.Equity(123), testStartingCash)
	}

	l.Buy("AAPL", 1000, 100)

	want := 9000 + 9.985*120
	if !approxEqual(l.Equity(120), want) {
		t.Errorf("equity = %v, want %v", l.Equity(120), want)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	l := newTestLedger()
	l.Buy("AAPL", 1000, 100)

	snap := l.Snapshot()
	snap.History[0].Quantity = 999999

	if l.Snapshot().History[0].Quantity == 999999 {
		t.Error("mutating a snapshot must not affect the ledger")
	}
}

func TestPersistence(t *testing.T) {
	rec := &recordingStub{}
	l := New(testStartingCash, testCommissionRate, rec)

	l.Buy("AAPL", 1000, 100)
	if len(rec.transactions) != 1 {
		t.Fatalf("recorded %d transactions, want 1", len(rec.transactions))
	}
	if !approxEqual(rec.savedCash, 9000) {
		t.Errorf("saved cash = %v, want 9000", rec.savedCash)
	}

	l.Reset()
	if rec.cleared != 1 {
		t.Errorf("ClearHistory calls = %d, want 1", rec.cleared)
	}
	if rec.savedCash != testStartingCash || rec.savedShares != 0 {
		t.Errorf("saved state after reset: cash=%v shares=%v", rec.savedCash, rec.savedShares)
	}
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	rec := &recordingStub{failAll: true}
	l := New(testStartingCash, testCommissionRate, rec)

	if _, err := l.Buy("AAPL", 1000, 100); err != nil {
		t.Fatalf("storage failure must not fail the order: %v", err)
	}
	if !approxEqual(l.Cash(), 9000) {
		t.Errorf("cash = %v, want 9000", l.Cash())
	}
}

func TestRestore(t *testing.T) {
	l := newTestLedger()

	history := []models.Transaction{
		{ID: 1, Symbol: "AAPL", Side: models.SideBuy, Quantity: 5, Price: 100, Commission: 0.75},
	}
	l.Restore(9500, 5, history)

	if l.Cash() != 9500 || l.Shares() != 5 {
		t.Errorf("restored state: cash=%v shares=%v", l.Cash(), l.Shares())
	}

	// The next transaction continues the ID sequence.
	tx, err := l.Sell("AAPL", 1, 120)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if tx.ID != 2 {
		t.Errorf("transaction ID = %d, want 2", tx.ID)
	}
}
