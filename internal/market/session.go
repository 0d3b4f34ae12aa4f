// Package market decides whether simulated orders are currently permitted.
package market

import (
	"strings"
	"time"

	"inversor/internal/config"
)

// SessionState describes the gate's decision for one symbol at one instant.
// Tradable is what the ledger caller acts on; ExchangeOpen is the true
// exchange calendar state, reported separately so a simulation override
// never masks it in the UI.
type SessionState struct {
	Symbol       string
	Tradable     bool
	ExchangeOpen bool
	Continuous   bool // 24/7 market (crypto, forex)
	Description  string
}

// Gate determines tradability from the exchange calendar and an optional
// simulation-mode override. Pure function of (symbol, now, override); it
// holds no mutable state.
type Gate struct {
	location   *time.Location
	openMins   int
	closeMins  int
	simulation bool
}

// NewGate creates a session gate from market configuration.
func NewGate(cfg config.MarketConfig, simulation bool) *Gate {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Gate{
		location:   loc,
		openMins:   cfg.OpenHour*60 + cfg.OpenMinute,
		closeMins:  cfg.CloseHour*60 + cfg.CloseMinute,
		simulation: simulation,
	}
}

// IsContinuousMarket reports whether the symbol trades around the clock.
// Yahoo-style suffixes identify them: "-USD" for crypto pairs, "=X" for
// foreign exchange.
func IsContinuousMarket(symbol string) bool {
	upper := strings.ToUpper(symbol)
	return strings.HasSuffix(upper, "-USD") || strings.HasSuffix(upper, "=X")
}

// Status returns the gate's decision for the symbol at the given time.
func (g *Gate) Status(symbol string, now time.Time) SessionState {
	state := SessionState{Symbol: symbol}

	if IsContinuousMarket(symbol) {
		state.Tradable = true
		state.ExchangeOpen = true
		state.Continuous = true
		state.Description = "24/7 market"
		return state
	}

	state.ExchangeOpen = g.exchangeOpen(now)
	state.Tradable = state.ExchangeOpen

	if state.ExchangeOpen {
		state.Description = "Exchange open"
	} else {
		state.Description = "Exchange closed"
	}

	if g.simulation && !state.Tradable {
		state.Tradable = true
		state.Description = "Simulation mode (exchange closed)"
	}

	return state
}

func (g *Gate) exchangeOpen(now time.Time) bool {
	local := now.In(g.location)

	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}

	mins := local.Hour()*60 + local.Minute()
	return mins >= g.openMins && mins < g.closeMins
}

// NextOpen returns the next time the exchange session begins, for display
// when an order is refused outside trading hours.
func (g *Gate) NextOpen(now time.Time) time.Time {
	local := now.In(g.location)

	next := time.Date(local.Year(), local.Month(), local.Day(),
		g.openMins/60, g.openMins%60, 0, 0, g.location)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
