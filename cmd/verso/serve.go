package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/verso-dev/verso"
	"github.com/verso-dev/verso/pkg/middleware"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		staticDir   string
		prefix      string
		actionPath  string
		devMode     bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a Verso server",
		Long: `Start a Verso server serving static files and the action endpoint.

Examples:
  verso serve --static public
  verso serve --addr :3000 --dev
  verso serve --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, staticDir, prefix, actionPath, devMode, metricsAddr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&staticDir, "static", "s", "public", "Static files directory")
	cmd.Flags().StringVar(&prefix, "prefix", "/", "URL prefix for static files")
	cmd.Flags().StringVar(&actionPath, "action-path", "", "Action endpoint path (default /_verso/action)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (hot reload)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runServe(addr, staticDir, prefix, actionPath string, devMode bool, metricsAddr string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := verso.DefaultConfig()
	cfg.Static.Dir = staticDir
	cfg.Static.Prefix = prefix
	cfg.DevMode = devMode
	cfg.Logger = logger
	if actionPath != "" {
		cfg.Action.Path = actionPath
	}
	if !devMode {
		cfg.Static.CacheControl = verso.CacheControlProduction
	}

	app := verso.New(cfg)
	app.Use(middleware.Prometheus())
	app.Use(middleware.OpenTelemetry())

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("metrics listening", "addr", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	return app.Run(addr)
}
