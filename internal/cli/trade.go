package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "inversor/internal/errors"
	"inversor/internal/logging"
	"inversor/internal/models"
	"inversor/pkg/utils"
)

// addTradingCommands adds ledger commands.
func addTradingCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newResetCmd(app))
}

func newBuyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <symbol> <amount>",
		Short: "Spend an amount of cash on shares at the current price",
		Long: `Place a simulated buy order. The amount is cash to spend; commission is
deducted from it before shares are acquired at the latest market price.
Orders are refused while the symbol's market session is closed, unless
simulation mode is enabled in the configuration.`,
		Example: `  inversor buy AAPL 1000
  inversor buy BTC-USD 250`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				output.Error("Invalid amount: %s", args[1])
				return apperrors.ErrInvalidOrder
			}

			if err := checkTradable(app, output, symbol); err != nil {
				return err
			}

			price, err := app.Gateway.GetLatestPrice(ctx, symbol)
			if err != nil {
				output.Error("No usable price for %s: %v", symbol, err)
				return err
			}

			tx, err := app.Ledger.Buy(symbol, amount, price)
			if err != nil {
				output.Error("Buy rejected: %v", err)
				return err
			}

			logging.LogTransaction(app.Logger, symbol, string(tx.Side), tx.Quantity, tx.Price, tx.Commission)

			if output.IsJSON() {
				return output.JSON(tx)
			}

			output.Success("Bought %s shares of %s at %s (commission %s)",
				utils.FormatShares(tx.Quantity), symbol,
				utils.FormatCurrency(tx.Price), utils.FormatCurrency(tx.Commission))
			output.Printf("Cash remaining: %s\n", utils.FormatCurrency(app.Ledger.Cash()))
			return nil
		},
	}
}

func newSellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <symbol> <quantity>",
		Short: "Sell a share quantity at the current price",
		Long: `Place a simulated sell order. Commission is deducted from the gross
proceeds before cash is credited.`,
		Example: `  inversor sell AAPL 5
  inversor sell AAPL 2.5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			quantity, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				output.Error("Invalid quantity: %s", args[1])
				return apperrors.ErrInvalidOrder
			}

			if err := checkTradable(app, output, symbol); err != nil {
				return err
			}

			price, err := app.Gateway.GetLatestPrice(ctx, symbol)
			if err != nil {
				output.Error("No usable price for %s: %v", symbol, err)
				return err
			}

			tx, err := app.Ledger.Sell(symbol, quantity, price)
			if err != nil {
				output.Error("Sell rejected: %v", err)
				return err
			}

			logging.LogTransaction(app.Logger, symbol, string(tx.Side), tx.Quantity, tx.Price, tx.Commission)

			if output.IsJSON() {
				return output.JSON(tx)
			}

			net := tx.GrossValue() - tx.Commission
			output.Success("Sold %s shares of %s at %s, net proceeds %s (commission %s)",
				utils.FormatShares(tx.Quantity), symbol,
				utils.FormatCurrency(tx.Price), utils.FormatCurrency(net),
				utils.FormatCurrency(tx.Commission))
			output.Printf("Cash balance: %s\n", utils.FormatCurrency(app.Ledger.Cash()))
			return nil
		},
	}
}

func newPortfolioCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio [symbol]",
		Short: "Show cash, position, equity and transaction history",
		Long: `Show the portfolio. When a symbol is given, the position is valued at
its latest price and total equity is reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			snapshot := app.Ledger.Snapshot()

			var equity float64
			var priced bool
			if len(args) == 1 {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()

				symbol := strings.ToUpper(args[0])
				price, err := app.Gateway.GetLatestPrice(ctx, symbol)
				if err != nil {
					output.Warning("No usable price for %s, equity unavailable", symbol)
				} else {
					equity = snapshot.Equity(price)
					priced = true
				}
			}

			if output.IsJSON() {
				payload := map[string]interface{}{
					"cash":    snapshot.Cash,
					"shares":  snapshot.Shares,
					"history": snapshot.History,
				}
				if priced {
					payload["equity"] = equity
				}
				return output.JSON(payload)
			}

			output.Bold("Portfolio")
			output.Printf("  Cash:   %s\n", utils.FormatCurrency(snapshot.Cash))
			output.Printf("  Shares: %s\n", utils.FormatShares(snapshot.Shares))
			if priced {
				output.Printf("  Equity: %s\n", utils.FormatCurrency(equity))
			}

			if len(snapshot.History) == 0 {
				output.Println()
				output.Info("No transactions yet")
				return nil
			}

			output.Println()
			output.Bold("History")
			for _, tx := range snapshot.History {
				side := output.Green(string(tx.Side))
				if tx.Side == models.SideSell {
					side = output.Red(string(tx.Side))
				}
				output.Printf("  %s  %s %-10s %s @ %s  commission %s\n",
					tx.Timestamp.Format("2006-01-02 15:04"),
					side, tx.Symbol,
					utils.FormatShares(tx.Quantity),
					utils.FormatCurrency(tx.Price),
					utils.FormatCurrency(tx.Commission))
			}
			return nil
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the starting balance and clear the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			app.Ledger.Reset()
			app.Logger.Info().Msg("Portfolio reset")

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"cash":   app.Ledger.Cash(),
					"shares": app.Ledger.Shares(),
				})
			}

			output.Success("Portfolio reset: cash %s, no position",
				utils.FormatCurrency(app.Ledger.Cash()))
			return nil
		},
	}
}

// checkTradable enforces the session gate before any ledger call.
func checkTradable(app *App, output *Output, symbol string) error {
	state := app.Gate.Status(symbol, time.Now())
	if state.Tradable {
		return nil
	}

	next := app.Gate.NextOpen(time.Now())
	output.Error("Market closed for %s. Next session opens %s.",
		symbol, next.Format("Mon Jan 2 15:04 MST"))
	output.Info("Enable simulation_mode in the config to trade outside market hours.")
	return fmt.Errorf("%s: %w", symbol, apperrors.ErrMarketClosed)
}
