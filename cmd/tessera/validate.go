package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/tessera/pkg/cli"
	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/engine"
	"mercator-hq/tessera/pkg/rules"
	"mercator-hq/tessera/pkg/telemetry/logging"
)

var validateFlags struct {
	rules     string
	format    string
	noHistory bool
	progress  bool
}

var validateCmd = &cobra.Command{
	Use:   "validate DATA...",
	Short: "Validate datasets and, optionally, their business rules",
	Long: `Validate one or more dataset files (YAML or JSON with clients, workers and
tasks). With --rules the business rules are validated against each dataset
as well.

Findings are grouped by category in text output. Every run is recorded in
the history store unless --no-history is given or history is disabled.

Exit status is 1 when any dataset or the rules are invalid.

Examples:
  # Validate one dataset
  tessera validate data.yaml

  # Validate data and rules, print JSON
  tessera validate data.yaml --rules rules.yaml --format json

  # Validate several snapshots, one CSV row per finding
  tessera validate snapshots/*.yaml --format csv --progress`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.rules, "rules", "r", "", "rules file to validate against each dataset")
	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "output format: text, json, csv")
	validateCmd.Flags().BoolVar(&validateFlags.noHistory, "no-history", false, "do not record the run")
	validateCmd.Flags().BoolVar(&validateFlags.progress, "progress", false, "show progress on stderr")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}
	cfg, err := appConfig()
	if err != nil {
		return err
	}

	var rs []rules.Rule
	if validateFlags.rules != "" {
		rs, err = rules.LoadFile(validateFlags.rules)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
	}

	opts := engineOptions{collector: newCollector(cfg)}
	if !validateFlags.noHistory {
		store, err := openHistory(cfg)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		if store != nil {
			defer store.Close()
			opts.store = store
		}
	}
	eng := newEngine(cfg, opts)

	var progress cli.ProgressReporter
	if validateFlags.progress {
		progress = cli.NewProgressReporter(os.Stderr, "files")
		progress.Start(int64(len(args)))
	}

	ctx := commandContext(cmd)
	if validateFlags.rules != "" {
		ctx = logging.WithRulesSource(ctx, validateFlags.rules)
	}

	reports := make([]*engine.Report, 0, len(args))
	for i, path := range args {
		ds, err := dataset.Load(path)
		if err != nil {
			if progress != nil {
				progress.Error(err)
			}
			return cli.NewCommandError("validate", err)
		}
		report, err := eng.Run(logging.WithSource(ctx, path), ds, rs)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		reports = append(reports, report)
		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}
	if progress != nil {
		progress.Finish()
	}

	view := newReportView(reports)
	if err := cli.NewFormatter(format).FormatTo(stdout, view); err != nil {
		return err
	}
	if !view.Valid {
		return cli.NewExitError(cli.ExitInvalid, fmt.Sprintf("validation failed for %s", plural(len(invalidReports(reports)), "dataset")))
	}
	return nil
}

func invalidReports(reports []*engine.Report) []*engine.Report {
	var out []*engine.Report
	for _, r := range reports {
		if !r.IsValid() {
			out = append(out, r)
		}
	}
	return out
}

// commandContext returns the command's context, or a background context when
// the command was invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
