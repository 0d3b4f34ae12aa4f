// Package marketdata provides access to external market data providers.
package marketdata

import (
	"context"

	"inversor/internal/models"
)

// Gateway supplies price history, live quotes and news for a symbol.
// Empty results (market holiday, no recent news) are valid responses, not
// errors; errors mean the provider could not be consulted at all.
type Gateway interface {
	// GetHistory returns ordered OHLCV bars for the period/interval, oldest
	// first.
	GetHistory(ctx context.Context, symbol, period, interval string) ([]models.Candle, error)

	// GetLatestPrice returns the most recent traded price.
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)

	// GetPreviousClose returns the prior session's closing price.
	GetPreviousClose(ctx context.Context, symbol string) (float64, error)

	// GetQuote returns the latest price together with change versus the
	// previous close and volume.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetNews returns recent headlines, normalized to the fixed Headline
	// shape. Items with no extractable title are dropped here.
	GetNews(ctx context.Context, symbol string) ([]models.Headline, error)
}
