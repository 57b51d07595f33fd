package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/tessera/pkg/cli"
	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/telemetry/logging"
)

var fixFlags struct {
	output  string
	inPlace bool
	dryRun  bool
	format  string
}

var fixCmd = &cobra.Command{
	Use:   "fix DATA",
	Short: "Apply automatic fixes to a dataset",
	Long: `Validate a dataset, apply every fix the validation proposes and validate
the corrected data again. Fixes only cover values with a single correct
answer, such as clamping an out-of-range priority; the remaining errors are
listed for manual correction.

The corrected dataset is written to --output, or back to DATA with
--in-place. Files ending in .json are written as JSON, everything else as
YAML.

Examples:
  tessera fix data.yaml -o data.fixed.yaml
  tessera fix data.yaml --in-place
  tessera fix data.yaml --dry-run --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().StringVarP(&fixFlags.output, "output", "o", "", "write the fixed dataset to this file")
	fixCmd.Flags().BoolVar(&fixFlags.inPlace, "in-place", false, "overwrite DATA with the fixed dataset")
	fixCmd.Flags().BoolVar(&fixFlags.dryRun, "dry-run", false, "report what would change without writing")
	fixCmd.Flags().StringVarP(&fixFlags.format, "format", "f", "text", "output format: text, json")
}

func runFix(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(fixFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewConfigError("format", "fix does not support csv output")
	}

	output := fixFlags.output
	if fixFlags.inPlace {
		if output != "" {
			return cli.NewConfigError("output", "--output and --in-place are mutually exclusive")
		}
		output = args[0]
	}
	if output == "" && !fixFlags.dryRun {
		return cli.NewConfigError("output", "one of --output, --in-place or --dry-run is required")
	}

	cfg, err := appConfig()
	if err != nil {
		return err
	}
	ds, err := dataset.Load(args[0])
	if err != nil {
		return cli.NewCommandError("fix", err)
	}

	opts := engineOptions{collector: newCollector(cfg)}
	store, err := openHistory(cfg)
	if err != nil {
		return cli.NewCommandError("fix", err)
	}
	if store != nil {
		defer store.Close()
		opts.store = store
	}

	ctx := logging.WithSource(commandContext(cmd), args[0])
	out, err := newEngine(cfg, opts).Fix(ctx, ds, nil)
	if err != nil {
		return cli.NewCommandError("fix", err)
	}

	if !fixFlags.dryRun {
		if err := dataset.Save(output, out.After.Dataset); err != nil {
			return cli.NewCommandError("fix", err)
		}
	}

	view := newFixView(args[0], output, fixFlags.dryRun, out)
	if err := cli.NewFormatter(format).FormatTo(stdout, view); err != nil {
		return err
	}
	if !out.After.IsValid() {
		return cli.NewExitError(cli.ExitInvalid, "errors remain after fixing")
	}
	return nil
}
