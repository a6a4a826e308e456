package cli

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relief-network/reliefd/internal/api"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reliefd HTTP API server",
	Long: `Run the HTTP API server. Dashboards and the web layer call this
API for shortage views, allocations, and statistics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, close, err := openRuntime()
	if err != nil {
		return err
	}
	defer close()

	server := api.NewServer(rt.engine, rt.stats, rt.logger)
	if rt.cfg.API.Metrics {
		server.EnableMetrics()
	}

	addr := rt.cfg.ListenAddr()
	rt.logger.Info("reliefd API listening",
		zap.String("addr", addr),
		zap.Bool("metrics", rt.cfg.API.Metrics),
	)
	return http.ListenAndServe(addr, server.Handler())
}
