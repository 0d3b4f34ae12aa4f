package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// addMarketCommands adds session gate commands.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newMarketCmd(app))
}

func newMarketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "market <symbol>",
		Short: "Show whether simulated orders are currently permitted",
		Long: `Show the session gate state for a symbol: whether orders are permitted
right now, and the true exchange calendar state. The two can differ when
simulation mode is enabled; both are always reported.`,
		Example: `  inversor market AAPL
  inversor market EURUSD=X`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbol := strings.ToUpper(args[0])
			state := app.Gate.Status(symbol, time.Now())

			if output.IsJSON() {
				return output.JSON(state)
			}

			output.Bold("Market session: %s", symbol)
			output.Printf("  %s\n", state.Description)

			if state.Tradable {
				output.Success("  Orders permitted")
			} else {
				output.Error("  Orders not permitted")
			}

			if state.Continuous {
				return nil
			}

			if state.ExchangeOpen {
				output.Printf("  Exchange: open\n")
			} else {
				output.Printf("  Exchange: closed, next session opens %s\n",
					app.Gate.NextOpen(time.Now()).Format("Mon Jan 2 15:04 MST"))
			}
			return nil
		},
	}
}
