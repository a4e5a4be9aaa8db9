package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"adscript/internal/app"
	"adscript/internal/server"
	"adscript/pkg/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve script generation over HTTP",
	Long: `Run an HTTP server exposing POST /v1/scripts, GET /healthz and GET /metrics.
The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator, cfg, err := loadOrchestrator(ctx)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	return server.New(orchestrator, addr).Run(ctx)
}

func loadOrchestrator(ctx context.Context) (*app.Orchestrator, *config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	orchestrator, err := app.BuildOrchestrator(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return orchestrator, cfg, nil
}
