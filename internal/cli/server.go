package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LeJamon/goDutchAuction/internal/config"
	_ "github.com/LeJamon/goDutchAuction/internal/core/tx/all"
	"github.com/LeJamon/goDutchAuction/internal/di"
	"github.com/spf13/cobra"
)

var (
	// Server flags
	port        int
	bindAddr    string
	writeConfig string
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the auction ledger daemon",
	Long: `Start the auctiond server which provides:
- HTTP JSON-RPC API on /
- WebSocket event stream on /ws
- Health check on /health

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}

	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	serverCmd.Flags().StringVar(&bindAddr, "bind", "", "address to bind to (overrides server.host)")
	serverCmd.Flags().StringVar(&writeConfig, "write-config", "", "write an example configuration to this path and exit")
}

func runServer(cmd *cobra.Command, args []string) error {
	if writeConfig != "" {
		if err := config.SaveExampleConfig(writeConfig); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote example configuration to %s\n", writeConfig)
		return nil
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if bindAddr != "" {
		cfg.Server.Host = bindAddr
	}
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg.Log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := di.New()
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()
	provider := di.NewProvider(ctx, container, cfg, logger)
	provider.RegisterAll()

	server, err := provider.RPCServer()
	if err != nil {
		return err
	}

	logger.Info("starting auctiond",
		"version", rootCmd.Version,
		"config", cfg.GetConfigPath(),
		"database", cfg.Database.Type,
		"journal", cfg.Journal.Driver,
		"clock", cfg.Clock.Source,
		"admin", cfg.Server.Admin,
	)
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Server Configuration:")
		fmt.Fprintf(cmd.OutOrStdout(), "  - HTTP JSON-RPC: http://%s/\n", cfg.Server.Addr())
		fmt.Fprintf(cmd.OutOrStdout(), "  - WebSocket:     ws://%s/ws\n", cfg.Server.Addr())
		fmt.Fprintf(cmd.OutOrStdout(), "  - Health:        http://%s/health\n", cfg.Server.Addr())
	}

	return server.ListenAndServe(ctx)
}
