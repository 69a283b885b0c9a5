package cli

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/internal/server"
	"github.com/matzehuels/burrow/pkg/observability"
	"github.com/matzehuels/burrow/pkg/observability/prom"
	"github.com/matzehuels/burrow/pkg/solver"
)

type serveFlags struct {
	addr           string
	requestTimeout time.Duration
	maxExpansions  int
	noCache        bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solver service",
		Long: `Serve answers POST /v1/solve with the same engine and cache as solve.
Prometheus metrics are exposed on /metrics and liveness on /healthz.`,
		Example: `  burrow serve --addr :9090
  curl -s localhost:9090/v1/solve -d '{"tokens": "BA CD BC DA"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &f)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&f.requestTimeout, "request-timeout", 0, "per-request search timeout")
	cmd.Flags().IntVar(&f.maxExpansions, "max-expansions", 0, "upper bound on a request's expansion budget")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the answer cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, f *serveFlags) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if cmd.Flags().Changed("request-timeout") {
		cfg.Server.RequestTimeout = f.requestTimeout
	}
	if cmd.Flags().Changed("max-expansions") {
		cfg.Server.MaxExpansions = f.maxExpansions
	}

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := prom.New(reg)
	observability.SetSearchHooks(metrics)
	observability.SetCacheHooks(metrics)
	defer observability.Reset()

	srv := server.New(runner, server.Options{
		Addr:           cfg.Server.Addr,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxExpansions:  cfg.Server.MaxExpansions,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         c.Logger,
		Base: solver.Options{
			CorridorLength: cfg.Puzzle.CorridorLength,
			Entrances:      cfg.Puzzle.Entrances,
			Types:          cfg.TokenTypes(),
			Search:         cfg.SearchOptions(),
		},
	})

	out := cmd.OutOrStdout()
	printKeyValue(out, "Listening", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
	printKeyValue(out, "Cache", cfg.Cache.Backend)
	printNextStep(out, "Try", `curl -s `+displayAddr(cfg.Server.Addr)+`/v1/solve -d '{"tokens": "BA CD BC DA"}'`)

	return srv.Run(ctx)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
