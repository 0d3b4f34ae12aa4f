package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	apperrors "inversor/internal/errors"
	"inversor/internal/models"
)

// YahooGateway implements Gateway using the Yahoo Finance public API.
type YahooGateway struct {
	client   *http.Client
	chartURL string
	newsURL  string
}

// NewYahooGateway creates a new Yahoo Finance gateway.
func NewYahooGateway() *YahooGateway {
	return &YahooGateway{
		client:   &http.Client{Timeout: 30 * time.Second},
		chartURL: "https://query1.finance.yahoo.com/v8/finance/chart",
		newsURL:  "https://query1.finance.yahoo.com/v1/finance/search",
	}
}

// NewYahooGatewayWithBase creates a gateway against custom endpoints.
// Used by tests to point at a local server.
func NewYahooGatewayWithBase(client *http.Client, chartURL, newsURL string) *YahooGateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &YahooGateway{client: client, chartURL: chartURL, newsURL: newsURL}
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooNews is the response structure from the Yahoo Finance search API.
// The title occasionally arrives nested under a "content" object instead of
// at the top level; both spots are checked during normalization.
type yahooNews struct {
	News []struct {
		Title     string `json:"title"`
		Publisher string `json:"publisher"`
		Link      string `json:"link"`
		Content   *struct {
			Title string `json:"title"`
		} `json:"content"`
	} `json:"news"`
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (g *YahooGateway) fetchChart(ctx context.Context, symbol, interval, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		g.chartURL, url.PathEscape(symbol), interval, rng)

	body, err := g.get(ctx, u)
	if err != nil {
		return nil, apperrors.NewDataError("chart", symbol, "fetch failed", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, apperrors.NewDataError("chart", symbol, "decode failed", err)
	}
	if chart.Chart.Error != nil {
		return nil, apperrors.NewDataError("chart", symbol, chart.Chart.Error.Description, nil)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, apperrors.NewDataError("chart", symbol, "no result", nil)
	}

	return &chart, nil
}

func (g *YahooGateway) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

// GetHistory returns OHLCV bars for the period/interval, oldest first.
// Null bars (holidays) are skipped; an empty slice is a valid response.
func (g *YahooGateway) GetHistory(ctx context.Context, symbol, period, interval string) ([]models.Candle, error) {
	chart, err := g.fetchChart(ctx, symbol, interval, period)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []models.Candle{}, nil
	}

	quote := result.Indicators.Quote[0]
	bars := make([]models.Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		// Malformed responses can carry quote arrays shorter than the
		// timestamp list; trailing timestamps without bars are dropped.
		if i >= len(quote.Open) || i >= len(quote.High) ||
			i >= len(quote.Low) || i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue
		}
		bars = append(bars, models.Candle{
			Timestamp: time.Unix(ts, 0),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

// GetLatestPrice returns the most recent traded price for the symbol.
func (g *YahooGateway) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := g.GetQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return quote.Price, nil
}

// GetPreviousClose returns the prior session's closing price.
func (g *YahooGateway) GetPreviousClose(ctx context.Context, symbol string) (float64, error) {
	quote, err := g.GetQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return quote.PreviousClose, nil
}

// GetQuote returns the latest price, change versus previous close, and
// volume for the symbol.
func (g *YahooGateway) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	chart, err := g.fetchChart(ctx, symbol, "1d", "5d")
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	price := result.Meta.RegularMarketPrice
	prevClose := result.Meta.PreviousClose

	var volume int64
	if len(result.Indicators.Quote) > 0 && len(result.Indicators.Quote[0].Volume) > 0 {
		vols := result.Indicators.Quote[0].Volume
		volume = int64(toFloat(vols[len(vols)-1]))
	}

	if price == 0 {
		// Fall back to the last non-null close.
		if len(result.Indicators.Quote) > 0 {
			closes := result.Indicators.Quote[0].Close
			for i := len(closes) - 1; i >= 0; i-- {
				if c := toFloat(closes[i]); c != 0 {
					price = c
					break
				}
			}
		}
	}
	if price == 0 {
		return nil, apperrors.NewDataError("quote", symbol, "no usable price", nil)
	}

	q := &models.Quote{
		Symbol:        symbol,
		Price:         price,
		PreviousClose: prevClose,
		Volume:        volume,
		Timestamp:     time.Now(),
	}
	if prevClose > 0 {
		q.Change = price - prevClose
		q.ChangePercent = q.Change / prevClose * 100
	}
	return q, nil
}

// GetNews returns recent headlines for the symbol, normalized to the fixed
// Headline shape. Items whose title cannot be extracted from either the top
// level or the nested content object are dropped.
func (g *YahooGateway) GetNews(ctx context.Context, symbol string) ([]models.Headline, error) {
	u := fmt.Sprintf("%s?q=%s&newsCount=20", g.newsURL, url.QueryEscape(symbol))

	body, err := g.get(ctx, u)
	if err != nil {
		return nil, apperrors.NewDataError("news", symbol, "fetch failed", err)
	}

	var news yahooNews
	if err := json.Unmarshal(body, &news); err != nil {
		return nil, apperrors.NewDataError("news", symbol, "decode failed", err)
	}

	headlines := make([]models.Headline, 0, len(news.News))
	for _, item := range news.News {
		title := item.Title
		if title == "" && item.Content != nil {
			title = item.Content.Title
		}
		if title == "" {
			continue
		}
		headlines = append(headlines, models.Headline{
			Title:     title,
			Publisher: item.Publisher,
			Link:      item.Link,
		})
	}

	return headlines, nil
}

var _ Gateway = (*YahooGateway)(nil)
