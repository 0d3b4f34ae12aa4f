package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "inversor/internal/errors"
	"inversor/internal/models"
)

// flakyGateway fails a set number of calls before succeeding.
type flakyGateway struct {
	failuresLeft int
	calls        int
}

func (f *flakyGateway) attempt() error {
	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return apperrors.NewDataError("chart", "AAPL", "transient failure", nil)
	}
	return nil
}

func (f *flakyGateway) GetHistory(_ context.Context, _, _, _ string) ([]models.Candle, error) {
	if err := f.attempt(); err != nil {
		return nil, err
	}
	return []models.Candle{{Close: 100}}, nil
}

func (f *flakyGateway) GetLatestPrice(_ context.Context, _ string) (float64, error) {
	if err := f.attempt(); err != nil {
		return 0, err
	}
	return 100, nil
}

func (f *flakyGateway) GetPreviousClose(_ context.Context, _ string) (float64, error) {
	if err := f.attempt(); err != nil {
		return 0, err
	}
	return 99, nil
}

func (f *flakyGateway) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	if err := f.attempt(); err != nil {
		return nil, err
	}
	return &models.Quote{Symbol: symbol, Price: 100}, nil
}

func (f *flakyGateway) GetNews(_ context.Context, _ string) ([]models.Headline, error) {
	if err := f.attempt(); err != nil {
		return nil, err
	}
	return nil, nil
}

func fastConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:    3,
		RetryDelay:     time.Millisecond,
		TripThreshold:  2,
		CooldownPeriod: 50 * time.Millisecond,
	}
}

func TestResilient_RetriesTransientFailure(t *testing.T) {
	inner := &flakyGateway{failuresLeft: 2}
	g := NewResilientGateway(inner, fastConfig(), zerolog.Nop())

	price, err := g.GetLatestPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected recovery within retries: %v", err)
	}
	if price != 100 {
		t.Errorf("price = %v", price)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestResilient_ExhaustedRetriesReturnLastError(t *testing.T) {
	inner := &flakyGateway{failuresLeft: 100}
	g := NewResilientGateway(inner, fastConfig(), zerolog.Nop())

	_, err := g.GetHistory(context.Background(), "AAPL", "3mo", "1d")
	if !apperrors.Is(err, apperrors.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestResilient_TripsAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyGateway{failuresLeft: 1000}
	g := NewResilientGateway(inner, fastConfig(), zerolog.Nop())

	ctx := context.Background()
	g.GetLatestPrice(ctx, "AAPL") // failed call 1
	g.GetLatestPrice(ctx, "AAPL") // failed call 2, trips

	if !g.Tripped() {
		t.Fatal("expected gateway to trip after threshold failures")
	}

	callsBefore := inner.calls
	_, err := g.GetLatestPrice(ctx, "AAPL")
	if !apperrors.Is(err, apperrors.ErrDataUnavailable) {
		t.Errorf("expected fast refusal, got %v", err)
	}
	if inner.calls != callsBefore {
		t.Error("tripped gateway must not reach the inner gateway")
	}
}

func TestResilient_RecoversAfterCooldown(t *testing.T) {
	inner := &flakyGateway{failuresLeft: 6} // both pre-trip calls exhaust retries
	g := NewResilientGateway(inner, fastConfig(), zerolog.Nop())

	ctx := context.Background()
	g.GetLatestPrice(ctx, "AAPL")
	g.GetLatestPrice(ctx, "AAPL")
	if !g.Tripped() {
		t.Fatal("expected trip")
	}

	time.Sleep(60 * time.Millisecond)

	price, err := g.GetLatestPrice(ctx, "AAPL")
	if err != nil {
		t.Fatalf("expected recovery after cooldown: %v", err)
	}
	if price != 100 {
		t.Errorf("price = %v", price)
	}
	if g.Tripped() {
		t.Error("success must reset the trip state")
	}
}

func TestResilient_SuccessResetsFailureCount(t *testing.T) {
	inner := &flakyGateway{}
	g := NewResilientGateway(inner, fastConfig(), zerolog.Nop())

	ctx := context.Background()

	inner.failuresLeft = 3 // one exhausted call
	g.GetLatestPrice(ctx, "AAPL")

	inner.failuresLeft = 0
	if _, err := g.GetLatestPrice(ctx, "AAPL"); err != nil {
		t.Fatalf("GetLatestPrice: %v", err)
	}

	inner.failuresLeft = 3 // another exhausted call, but count restarted
	g.GetLatestPrice(ctx, "AAPL")

	if g.Tripped() {
		t.Error("non-consecutive failures must not trip the gateway")
	}
}

func TestResilient_ContextCancellation(t *testing.T) {
	inner := &flakyGateway{failuresLeft: 1000}
	cfg := fastConfig()
	cfg.RetryDelay = time.Hour // cancellation must cut the backoff short
	g := NewResilientGateway(inner, cfg, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.GetLatestPrice(ctx, "AAPL")
	if err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the retry delay")
	}
}
