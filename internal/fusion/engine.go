package fusion

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inversor/internal/analysis/indicators"
	"inversor/internal/analysis/sentiment"
	"inversor/internal/logging"
	"inversor/internal/marketdata"
	"inversor/internal/models"
)

// History window fetched per evaluation. Daily bars over three months cover
// the slowest indicator period with room for holidays.
const (
	historyPeriod   = "3mo"
	historyInterval = "1d"
)

// Engine produces FusionResults for symbols. Results are cached per symbol
// for a short TTL to bound external fetch frequency within an interactive
// session; a TTL of zero disables caching.
type Engine struct {
	gateway marketdata.Gateway
	scorer  *sentiment.Scorer
	policy  Policy
	ttl     time.Duration
	logger  zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*models.FusionResult
}

// NewEngine creates a fusion engine.
func NewEngine(gateway marketdata.Gateway, scorer *sentiment.Scorer, policy Policy, ttl time.Duration, logger zerolog.Logger) *Engine {
	return &Engine{
		gateway: gateway,
		scorer:  scorer,
		policy:  policy,
		ttl:     ttl,
		logger:  logger,
		cache:   make(map[string]*models.FusionResult),
	}
}

// Evaluate fetches market data for the symbol and blends indicator and
// sentiment signals into a FusionResult. A cached result is returned as long
// as it is no staler than the TTL.
func (e *Engine) Evaluate(ctx context.Context, symbol string) (*models.FusionResult, error) {
	if cached := e.cached(symbol); cached != nil {
		e.logger.Debug().Str("symbol", symbol).Msg("Fusion cache hit")
		return cached, nil
	}

	candles, err := e.gateway.GetHistory(ctx, symbol, historyPeriod, historyInterval)
	if err != nil {
		return nil, err
	}

	// Short or empty history is not an error; the snapshot's fields are
	// simply invalid and the policy treats them as neutral.
	snap := indicators.Snapshot(candles)

	headlines, err := e.gateway.GetNews(ctx, symbol)
	if err != nil {
		// Partial results are accepted: a news outage degrades the
		// evaluation to indicators plus neutral sentiment.
		e.logger.Warn().Err(err).Str("symbol", symbol).Msg("News unavailable, scoring without headlines")
		headlines = nil
	}

	verdicts, sentimentScore := e.scorer.Score(headlines)

	probability, recommendation := e.policy.Evaluate(snap, sentimentScore, verdicts)

	result := &models.FusionResult{
		Symbol:         symbol,
		Probability:    probability,
		Recommendation: recommendation,
		SentimentScore: sentimentScore,
		Indicators:     snap,
		Evidence:       verdicts,
		Policy:         e.policy.Name(),
		GeneratedAt:    time.Now(),
	}

	e.store(symbol, result)
	logging.LogFusion(e.logger, symbol, probability, string(recommendation))

	return result, nil
}

// Invalidate drops any cached result for the symbol.
func (e *Engine) Invalidate(symbol string) {
	e.mu.Lock()
	delete(e.cache, symbol)
	e.mu.Unlock()
}

func (e *Engine) cached(symbol string) *models.FusionResult {
	if e.ttl <= 0 {
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	result, ok := e.cache[symbol]
	if !ok || time.Since(result.GeneratedAt) > e.ttl {
		return nil
	}
	return result
}

func (e *Engine) store(symbol string, result *models.FusionResult) {
	if e.ttl <= 0 {
		return
	}

	e.mu.Lock()
	e.cache[symbol] = result
	e.mu.Unlock()
}
