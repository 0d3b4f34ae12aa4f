package market

import (
	"testing"
	"time"

	"inversor/internal/config"
)

func testMarketConfig() config.MarketConfig {
	return config.MarketConfig{
		Timezone:    "America/New_York",
		OpenHour:    9,
		OpenMinute:  30,
		CloseHour:   16,
		CloseMinute: 0,
	}
}

// nyTime builds a time in the exchange's local zone.
func nyTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

func TestIsContinuousMarket(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"BTC-USD", true},
		{"ETH-USD", true},
		{"btc-usd", true}, // case-insensitive
		{"EURUSD=X", true},
		{"JPY=X", true},
		{"AAPL", false},
		{"MSFT", false},
		{"USD", false},     // suffix must include the dash
		{"X", false},
		{"BRK-B", false},   // share class dash is not a crypto suffix
	}

	for _, tt := range tests {
		if got := IsContinuousMarket(tt.symbol); got != tt.want {
			t.Errorf("IsContinuousMarket(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
	}
}

func TestStatus_ContinuousAlwaysTradable(t *testing.T) {
	g := NewGate(testMarketConfig(), false)

	// Sunday 03:00 New York, deep outside equity hours.
	now := nyTime(t, 2024, time.June, 2, 3, 0)

	state := g.Status("BTC-USD", now)
	if !state.Tradable || !state.ExchangeOpen || !state.Continuous {
		t.Errorf("crypto must always be tradable: %+v", state)
	}
}

func TestStatus_EquityDuringSession(t *testing.T) {
	g := NewGate(testMarketConfig(), false)

	// Wednesday 11:00 New York.
	now := nyTime(t, 2024, time.June, 5, 11, 0)

	state := g.Status("AAPL", now)
	if !state.Tradable || !state.ExchangeOpen {
		t.Errorf("expected open session: %+v", state)
	}
	if state.Continuous {
		t.Error("equity must not be flagged continuous")
	}
}

func TestStatus_EquitySessionBoundaries(t *testing.T) {
	g := NewGate(testMarketConfig(), false)

	tests := []struct {
		name string
		now  time.Time
		open bool
	}{
		{"moment of open", nyTime(t, 2024, time.June, 5, 9, 30), true},
		{"minute before open", nyTime(t, 2024, time.June, 5, 9, 29), false},
		{"minute before close", nyTime(t, 2024, time.June, 5, 15, 59), true},
		{"moment of close", nyTime(t, 2024, time.June, 5, 16, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := g.Status("AAPL", tt.now)
			if state.ExchangeOpen != tt.open {
				t.Errorf("ExchangeOpen = %v, want %v", state.ExchangeOpen, tt.open)
			}
		})
	}
}

func TestStatus_Weekend(t *testing.T) {
	g := NewGate(testMarketConfig(), false)

	for _, day := range []int{1, 2} { // Sat June 1, Sun June 2 2024
		now := nyTime(t, 2024, time.June, day, 11, 0)
		state := g.Status("AAPL", now)
		if state.Tradable || state.ExchangeOpen {
			t.Errorf("weekend %v must be closed: %+v", now.Weekday(), state)
		}
	}
}

func TestStatus_TimezoneConversion(t *testing.T) {
	g := NewGate(testMarketConfig(), false)

	// 14:00 UTC on a June weekday is 10:00 in New York: open.
	now := time.Date(2024, time.June, 5, 14, 0, 0, 0, time.UTC)
	if state := g.Status("AAPL", now); !state.ExchangeOpen {
		t.Errorf("expected open at 10:00 exchange-local: %+v", state)
	}

	// 02:00 UTC is 22:00 New York the previous evening: closed.
	now = time.Date(2024, time.June, 5, 2, 0, 0, 0, time.UTC)
	if state := g.Status("AAPL", now); state.ExchangeOpen {
		t.Errorf("expected closed at 22:00 exchange-local: %+v", state)
	}
}

func TestStatus_SimulationOverride(t *testing.T) {
	g := NewGate(testMarketConfig(), true)

	// Sunday: exchange closed, but simulation mode allows the trade.
	now := nyTime(t, 2024, time.June, 2, 11, 0)

	state := g.Status("AAPL", now)
	if !state.Tradable {
		t.Error("simulation mode must allow trading")
	}
	if state.ExchangeOpen {
		t.Error("override must not mask the true exchange state")
	}
	if state.Description != "Simulation mode (exchange closed)" {
		t.Errorf("description = %q", state.Description)
	}
}

func TestStatus_SimulationDuringOpenSession(t *testing.T) {
	g := NewGate(testMarketConfig(), true)

	// Open session: the override has nothing to do.
	now := nyTime(t, 2024, time.June, 5, 11, 0)

	state := g.Status("AAPL", now)
	if !state.Tradable || !state.ExchangeOpen {
		t.Errorf("expected plain open session: %+v", state)
	}
	if state.Description != "Exchange open" {
		t.Errorf("description = %q", state.Description)
	}
}

func TestNextOpen(t *testing.T) {
	g := NewGate(testMarketConfig(), false)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"weekday before open",
			nyTime(t, 2024, time.June, 5, 8, 0),
			nyTime(t, 2024, time.June, 5, 9, 30),
		},
		{
			"weekday after close",
			nyTime(t, 2024, time.June, 5, 17, 0),
			nyTime(t, 2024, time.June, 6, 9, 30),
		},
		{
			"friday evening skips to monday",
			nyTime(t, 2024, time.June, 7, 17, 0),
			nyTime(t, 2024, time.June, 10, 9, 30),
		},
		{
			"saturday skips to monday",
			nyTime(t, 2024, time.June, 8, 11, 0),
			nyTime(t, 2024, time.June, 10, 9, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.NextOpen(tt.now); !got.Equal(tt.want) {
				t.Errorf("NextOpen = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewGate_BadTimezoneFallsBackToUTC(t *testing.T) {
	cfg := testMarketConfig()
	cfg.Timezone = "Not/AZone"
	g := NewGate(cfg, false)

	// 11:00 UTC Wednesday should read as an open session under the
	// UTC fallback.
	now := time.Date(2024, time.June, 5, 11, 0, 0, 0, time.UTC)
	if state := g.Status("AAPL", now); !state.ExchangeOpen {
		t.Errorf("expected open under UTC fallback: %+v", state)
	}
}
