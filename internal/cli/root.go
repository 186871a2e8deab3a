package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/LeJamon/goDutchAuction/internal/config"
	"github.com/spf13/cobra"
)

// DefaultRPCURL is where client commands send requests.
const DefaultRPCURL = "http://127.0.0.1:5005/"

var (
	// Global flags
	configFile string
	debug      bool
	quiet      bool
	rpcURL     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "auctiond",
	Short: "auctiond - Dutch auction settlement ledger",
	Long: `auctiond runs a ledger that sells escrowed tokens by Dutch auction:
the price falls on a schedule from a start price to a floor, and the first
buyer to settle pays the price current at that instant.

Client subcommands sign transactions locally and submit them over JSON-RPC.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", DefaultRPCURL, "JSON-RPC endpoint for client commands")
}

// initLogging installs a default logger from the flags alone. The server
// replaces it once the configuration is loaded.
func initLogging() {
	slog.SetDefault(newLogger(os.Stderr, config.LogConfig{Level: "info", Format: "text"}))
}

// newLogger builds the root logger. --debug and --quiet override the
// configured level.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
