package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/tessera/pkg/cli"
	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/engine"
	"mercator-hq/tessera/pkg/export"
	"mercator-hq/tessera/pkg/rules"
	"mercator-hq/tessera/pkg/telemetry/logging"
)

var exportFlags struct {
	rules  string
	output string
	force  bool
}

var exportCmd = &cobra.Command{
	Use:   "export DATA",
	Short: "Write rules.json for the allocator",
	Long: `Validate a dataset and its rules and write the rules.json document: the
active rules, the prioritization weights from the export section of the
config and the validation state of the data.

The document is not written when the data or rules are invalid unless
--force is given; the validation flags in its metadata then record the
failure.

Examples:
  tessera export data.yaml --rules rules.yaml -o rules.json
  tessera export data.yaml --rules rules.yaml            # to stdout`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.rules, "rules", "r", "", "rules file (required)")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (stdout when empty)")
	exportCmd.Flags().BoolVar(&exportFlags.force, "force", false, "write the document even when validation fails")
	_ = exportCmd.MarkFlagRequired("rules")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlags.rules == "" {
		return cli.NewConfigError("rules", "--rules is required")
	}
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	if err := export.ValidateWeights(cfg.Export.Weights); err != nil {
		return cli.NewConfigError("export.weights", err.Error())
	}

	ds, err := dataset.Load(args[0])
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	rs, err := rules.LoadFile(exportFlags.rules)
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	ctx := logging.WithRulesSource(logging.WithSource(commandContext(cmd), args[0]), exportFlags.rules)
	report, err := newEngine(cfg, engineOptions{}).Run(ctx, ds, rs)
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	if !report.IsValid() && !exportFlags.force {
		if err := newReportView([]*engine.Report{report}).RenderText(os.Stderr); err != nil {
			return err
		}
		return cli.NewExitError(cli.ExitInvalid, "not exporting invalid data or rules (use --force to override)")
	}

	doc := export.Build(export.Input{
		Version:    cfg.Export.Version,
		Rules:      rs,
		Weights:    cfg.Export.Weights,
		Counts:     report.Result.Summary.EntityCounts,
		DataResult: report.Result,
		RuleResult: report.RuleResult,
	})

	if exportFlags.output == "" {
		return export.Write(stdout, doc)
	}

	f, err := os.Create(exportFlags.output)
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	if err := export.Write(f, doc); err != nil {
		f.Close()
		return cli.NewCommandError("export", err)
	}
	if err := f.Close(); err != nil {
		return cli.NewCommandError("export", err)
	}

	fmt.Fprintf(os.Stderr, "✓ wrote %s (%d active rules)\n", exportFlags.output, doc.Metadata.ActiveRules)
	return nil
}
