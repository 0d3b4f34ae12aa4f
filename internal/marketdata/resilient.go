package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "inversor/internal/errors"
	"inversor/internal/models"
)

// ResilientConfig tunes the retry and trip behavior of ResilientGateway.
type ResilientConfig struct {
	// MaxAttempts is the number of tries per call, including the first.
	MaxAttempts int
	// RetryDelay is the wait before the first retry; it doubles per retry.
	RetryDelay time.Duration
	// TripThreshold is the number of consecutive failed calls after which
	// further calls are refused outright.
	TripThreshold int
	// CooldownPeriod is how long a tripped gateway refuses calls before
	// letting one through again.
	CooldownPeriod time.Duration
}

// DefaultResilientConfig returns the production settings.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:    3,
		RetryDelay:     500 * time.Millisecond,
		TripThreshold:  5,
		CooldownPeriod: 30 * time.Second,
	}
}

// ResilientGateway wraps a Gateway with retries and a trip switch. Transient
// upstream failures are retried with backoff; a run of consecutive failures
// trips the gateway so an extended outage fails fast instead of stalling
// every command on timeouts. All refusals surface as data-unavailable
// errors, the same contract the inner gateway has.
type ResilientGateway struct {
	inner  Gateway
	cfg    ResilientConfig
	logger zerolog.Logger

	mu          sync.Mutex
	consecutive int
	trippedAt   time.Time
}

// NewResilientGateway wraps inner with retry and trip protection.
func NewResilientGateway(inner Gateway, cfg ResilientConfig, logger zerolog.Logger) *ResilientGateway {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &ResilientGateway{inner: inner, cfg: cfg, logger: logger}
}

var _ Gateway = (*ResilientGateway)(nil)

// Tripped reports whether the gateway is currently refusing calls.
func (r *ResilientGateway) Tripped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refusing(time.Now())
}

func (r *ResilientGateway) refusing(now time.Time) bool {
	if r.cfg.TripThreshold <= 0 || r.consecutive < r.cfg.TripThreshold {
		return false
	}
	return now.Sub(r.trippedAt) < r.cfg.CooldownPeriod
}

func (r *ResilientGateway) allow(symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refusing(time.Now()) {
		return apperrors.NewDataError("gateway", symbol, "temporarily unavailable after repeated failures", nil)
	}
	return nil
}

func (r *ResilientGateway) recordSuccess() {
	r.mu.Lock()
	r.consecutive = 0
	r.mu.Unlock()
}

func (r *ResilientGateway) recordFailure() {
	r.mu.Lock()
	r.consecutive++
	if r.cfg.TripThreshold > 0 && r.consecutive >= r.cfg.TripThreshold {
		r.trippedAt = time.Now()
		r.logger.Warn().Int("failures", r.consecutive).Msg("Market data gateway tripped")
	}
	r.mu.Unlock()
}

func call[T any](r *ResilientGateway, ctx context.Context, symbol string, fn func() (T, error)) (T, error) {
	var zero T

	if err := r.allow(symbol); err != nil {
		return zero, err
	}

	delay := r.cfg.RetryDelay
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				r.recordFailure()
				return zero, apperrors.NewDataError("gateway", symbol, "canceled", ctx.Err())
			}
			delay *= 2
		}

		value, err := fn()
		if err == nil {
			r.recordSuccess()
			return value, nil
		}
		lastErr = err

		r.logger.Debug().Err(err).Str("symbol", symbol).Int("attempt", attempt).Msg("Market data fetch failed")

		if ctx.Err() != nil {
			break
		}
	}

	r.recordFailure()
	return zero, lastErr
}

func (r *ResilientGateway) GetHistory(ctx context.Context, symbol, period, interval string) ([]models.Candle, error) {
	return call(r, ctx, symbol, func() ([]models.Candle, error) {
		return r.inner.GetHistory(ctx, symbol, period, interval)
	})
}

func (r *ResilientGateway) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	return call(r, ctx, symbol, func() (float64, error) {
		return r.inner.GetLatestPrice(ctx, symbol)
	})
}

func (r *ResilientGateway) GetPreviousClose(ctx context.Context, symbol string) (float64, error) {
	return call(r, ctx, symbol, func() (float64, error) {
		return r.inner.GetPreviousClose(ctx, symbol)
	})
}

func (r *ResilientGateway) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return call(r, ctx, symbol, func() (*models.Quote, error) {
		return r.inner.GetQuote(ctx, symbol)
	})
}

func (r *ResilientGateway) GetNews(ctx context.Context, symbol string) ([]models.Headline, error) {
	return call(r, ctx, symbol, func() ([]models.Headline, error) {
		return r.inner.GetNews(ctx, symbol)
	})
}
