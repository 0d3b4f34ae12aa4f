package cli

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inversor/internal/analysis/sentiment"
	"inversor/internal/config"
	"inversor/internal/fusion"
	"inversor/internal/ledger"
	"inversor/internal/logging"
	"inversor/internal/market"
	"inversor/internal/marketdata"
	"inversor/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Gateway marketdata.Gateway
	Engine  *fusion.Engine
	Ledger  *ledger.Ledger
	Gate    *market.Gate
	Store   *store.SQLiteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Gateway: marketdata.NewResilientGateway(
			marketdata.NewYahooGateway(),
			marketdata.DefaultResilientConfig(),
			logger,
		),
		Gate: market.NewGate(cfg.Market, cfg.Trading.SimulationMode),
	}

	app.Engine = fusion.NewEngine(
		app.Gateway,
		sentiment.NewScorer(cfg.News.MaxHeadlines),
		fusion.PolicyFromConfig(cfg.Fusion),
		time.Duration(cfg.Fusion.CacheTTLSeconds)*time.Second,
		logger,
	)

	// The store is optional: without it the session is memory-only.
	dbPath := filepath.Join(config.DefaultConfigDir(), "inversor.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, session will not persist")
	} else {
		app.Store = dataStore
	}

	var recorder ledger.Recorder
	if app.Store != nil {
		recorder = app.Store
	}
	app.Ledger = ledger.New(cfg.Trading.StartingCash, cfg.Trading.CommissionRate, recorder)

	if app.Store != nil {
		restoreSession(app)
	}

	rootCmd := &cobra.Command{
		Use:   "inversor",
		Short: "Inversor - signal-fusion paper trading CLI",
		Long: `Inversor fuses technical indicators with news sentiment into a single
buy/sell/hold recommendation, and lets you act on it against a virtual
cash-and-shares portfolio.

Use 'inversor analyze <symbol>' to evaluate a symbol, then 'inversor buy'
or 'inversor sell' to paper-trade the recommendation.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addAnalysisCommands(rootCmd, app)
	addTradingCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)

	return rootCmd
}

// Close releases the App's resources. Safe to call with no store attached
// and safe to call more than once.
func (a *App) Close() {
	if a.Store == nil {
		return
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close store")
	}
	a.Store = nil
}

// restoreSession seeds the ledger from the persisted portfolio, if any.
func restoreSession(app *App) {
	cash, shares, found, err := app.Store.LoadState()
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to load portfolio state")
		return
	}
	if !found {
		return
	}

	history, err := app.Store.LoadTransactions()
	if err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to load transaction history")
		return
	}

	app.Ledger.Restore(cash, shares, history)
	app.Logger.Debug().
		Float64("cash", cash).
		Float64("shares", shares).
		Int("transactions", len(history)).
		Msg("Session restored")
}
