package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inversor/internal/models"
	"inversor/pkg/utils"
)

// addAnalysisCommands adds signal evaluation commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newNewsCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Evaluate a symbol's combined technical and sentiment signal",
		Long: `Fetch price history and recent headlines for a symbol, compute RSI and
MACD, score headline sentiment, and fuse both into a success probability
and a discrete recommendation.`,
		Example: `  inversor analyze AAPL
  inversor analyze BTC-USD --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])

			result, err := app.Engine.Evaluate(ctx, symbol)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			quote, quoteErr := app.Gateway.GetQuote(ctx, symbol)

			if output.IsJSON() {
				payload := map[string]interface{}{
					"result": result,
				}
				if quoteErr == nil {
					payload["quote"] = quote
				}
				return output.JSON(payload)
			}

			output.Bold("Analysis: %s", symbol)
			output.Println()

			if quoteErr == nil {
				output.Printf("  Price:    %s  %s (%s)\n",
					utils.FormatCurrency(quote.Price),
					changeColored(output, quote.Change),
					utils.FormatPercent(quote.ChangePercent))
				output.Printf("  Volume:   %d\n", quote.Volume)
				output.Println()
			}

			printIndicators(output, result.Indicators)
			output.Println()

			printEvidence(output, result)
			output.Println()

			output.Printf("  Sentiment score: %.1f / 100\n", result.SentimentScore)
			output.Printf("  Probability:     %.1f / 100  (policy: %s)\n", result.Probability, result.Policy)
			output.Printf("  Recommendation:  %s\n", recommendationColored(output, result.Recommendation))

			return nil
		},
	}
}

func newNewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "news <symbol>",
		Short: "Show recent headlines with per-headline sentiment verdicts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])

			result, err := app.Engine.Evaluate(ctx, symbol)
			if err != nil {
				output.Error("Failed to fetch news: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result.Evidence)
			}

			if len(result.Evidence) == 0 {
				output.Warning("No recent headlines found for %s", symbol)
				return nil
			}

			output.Bold("Headlines: %s", symbol)
			printEvidence(output, result)
			output.Println()
			output.Info("Summary: %d buy signals vs %d sell signals",
				result.PositiveCount(), result.NegativeCount())

			return nil
		},
	}
}

func printIndicators(output *Output, snap models.IndicatorSnapshot) {
	if snap.RSIValid {
		output.Printf("  RSI(14):  %.1f\n", snap.RSI)
	} else {
		output.Printf("  RSI(14):  n/a (insufficient history)\n")
	}
	if snap.MACDValid {
		output.Printf("  MACD:     %.3f  signal %.3f\n", snap.MACD, snap.MACDSignal)
	} else {
		output.Printf("  MACD:     n/a (insufficient history)\n")
	}
}

func printEvidence(output *Output, result *models.FusionResult) {
	for _, ev := range result.Evidence {
		tag := verdictTag(output, ev.Verdict.Label)
		output.Printf("  %s %s\n", tag, ev.Headline.Title)
		if ev.Headline.Publisher != "" {
			output.Printf("       %s  polarity %+.2f\n", ev.Headline.Publisher, ev.Verdict.Polarity)
		}
	}
}

func verdictTag(output *Output, label models.SentimentLabel) string {
	switch label {
	case models.SentimentPositive:
		return output.Green("[POS]")
	case models.SentimentNegative:
		return output.Red("[NEG]")
	default:
		return output.Yellow("[NEU]")
	}
}

func recommendationColored(output *Output, rec models.Recommendation) string {
	switch rec {
	case models.StrongBuy, models.Buy:
		return output.Green(string(rec))
	case models.StrongSell, models.Sell:
		return output.Red(string(rec))
	default:
		return output.Yellow(string(rec))
	}
}

func changeColored(output *Output, change float64) string {
	formatted := utils.FormatCurrency(change)
	if change >= 0 {
		return output.Green("+" + formatted)
	}
	return output.Red(formatted)
}
