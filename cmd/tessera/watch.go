package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/tessera/pkg/cli"
	"mercator-hq/tessera/pkg/config"
	"mercator-hq/tessera/pkg/engine"
	"mercator-hq/tessera/pkg/history"
	"mercator-hq/tessera/pkg/security/auth"
	"mercator-hq/tessera/pkg/server"
	"mercator-hq/tessera/pkg/telemetry/health"
	"mercator-hq/tessera/pkg/watch"
)

var watchFlags struct {
	rules  string
	listen string
}

var watchCmd = &cobra.Command{
	Use:   "watch DATA",
	Short: "Re-validate whenever the data or rules change",
	Long: `Validate a dataset (and optionally its rules) now and again every time
one of the files changes. Bursts of changes are coalesced for
watch.debounce_interval.

With --listen, or telemetry.metrics.listen_address in the config, an HTTP
endpoint serves Prometheus metrics on telemetry.metrics.path together with
/health, /ready and /version. /ready fails while the files cannot be loaded.
With telemetry.metrics.api_keys set, the metrics path requires one of the
keys as a bearer token or X-API-Key header.

Run history is pruned on history.prune_schedule while watching.

Send SIGHUP to reload the config file. Validation settings from the new
config apply from the next run; listener and history settings need a
restart.

Examples:
  tessera watch data.yaml --rules rules.yaml
  tessera watch data.yaml --listen :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.rules, "rules", "r", "", "rules file to validate with the data")
	watchCmd.Flags().StringVarP(&watchFlags.listen, "listen", "l", "", "serve metrics and health on this address")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	if watchFlags.listen != "" {
		cfg.Telemetry.Metrics.ListenAddress = watchFlags.listen
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	collector := newCollector(cfg)
	store, err := openHistory(cfg)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	if store != nil {
		defer store.Close()

		pruner := history.NewPruner(store, historyConfig(cfg))
		pruner.OnPruned(collector.RecordHistoryPruned)
		scheduler := history.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer scheduler.Stop()
	}

	opts := engineOptions{store: store, collector: collector}
	runner := &watch.Runner{
		DataPath:  args[0],
		RulesPath: watchFlags.rules,
		Engine:    newEngine(cfg, opts),
		OnReport: func(r *engine.Report) {
			printWatchReport(r)
		},
	}
	if err := runner.Run(ctx); err != nil {
		// Keep watching: the file may be mid-edit.
		slog.Error("initial validation failed", "error", err)
	}

	wcfg := watch.DefaultConfig()
	wcfg.Paths = runner.Paths()
	wcfg.DebounceInterval = cfg.Watch.DebounceInterval
	fw, err := watch.NewFileWatcher(wcfg, slog.Default())
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer fw.Stop()

	stopReload := cli.NotifyReload(ctx, func() { reloadConfig(ctx, runner, opts) })
	defer stopReload()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fw.Watch(gctx, runner.Run)
	})

	if addr := cfg.Telemetry.Metrics.ListenAddress; addr != "" {
		checker := health.New(2 * time.Second)
		checker.RegisterCheck("dataset", runner.Ready)

		var metricsHandler http.Handler = collector.Handler()
		if keys := cfg.Telemetry.Metrics.APIKeys; len(keys) > 0 {
			validator := auth.NewKeyValidator(auth.KeysFromConfig(keys))
			metricsHandler = auth.NewMiddleware(validator, auth.DefaultSources()).Handle(metricsHandler)
		}

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, metricsHandler)
		health.Register(mux, checker, Version, GitCommit, BuildDate)

		srv := server.New(&server.Config{ListenAddress: addr}, mux)
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}

	fmt.Fprintf(stdout, "watching %d files (Ctrl-C to stop)\n", len(wcfg.Paths))
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// reloadConfig re-reads the config file, rebuilds the runner's engine from
// it and revalidates. The running engine is kept when the file is invalid.
func reloadConfig(ctx context.Context, runner *watch.Runner, opts engineOptions) {
	if err := config.ReloadConfig(cfgFile); err != nil {
		slog.Error("config reload failed", "path", cfgFile, "error", err)
		return
	}
	runner.SetEngine(newEngine(config.GetConfig(), opts))
	slog.Info("configuration reloaded", "path", cfgFile)

	if err := runner.Run(ctx); err != nil {
		slog.Error("revalidation failed", "error", err)
	}
}

func printWatchReport(r *engine.Report) {
	line := fmt.Sprintf("%s  %s: %s, %s",
		time.Now().Format(time.TimeOnly), status(r.IsValid()),
		plural(len(r.Result.Errors), "error"), plural(len(r.Result.Warnings), "warning"))
	if r.RuleResult != nil {
		line += fmt.Sprintf("; rules %s, %s", plural(len(r.RuleResult.Errors), "error"),
			plural(len(r.RuleResult.Conflicts), "conflict"))
	}
	fmt.Fprintln(stdout, line)
}
