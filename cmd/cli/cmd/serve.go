// Package cmd - serve command
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"catering-finance/adapters/storage"
	"catering-finance/api"
	"catering-finance/internal/config"
	"catering-finance/internal/logging"
)

var (
	serveAddr   string
	serveRules  string
	serveMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the financials API:

  POST /v1/financials      compute one event
  POST /v1/menu/override   price menu selections
  GET  /v1/rules/default   built-in rule document
  POST /v1/rules/validate  consistency issues of a rule document
  GET  /v1/snapshots       stored rule snapshots
  GET  /v1/records/{id}    a stored result
  GET  /health, /version`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVarP(&serveRules, "rules", "r", "", "rules document for requests that bring none")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "keep snapshots in memory instead of SQLite")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ruleDoc, err := loadRules(serveRules)
	if err != nil {
		return err
	}

	var store storage.Store
	if serveMemory {
		store = storage.NewMemoryStore()
	} else {
		store, err = openStore()
		if err != nil {
			return err
		}
	}
	defer store.Close()

	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}

	logger := logging.Named("api")
	logger.Info("starting server", zap.String("version", version), zap.Bool("memory_store", serveMemory))

	srv := api.NewServer(version,
		api.WithRules(ruleDoc),
		api.WithStore(store),
		api.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, serverCfg)
}
