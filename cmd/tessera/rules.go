package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/tessera/pkg/cli"
	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with business rule files",
}

var rulesValidateFlags struct {
	data   string
	format string
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate RULES",
	Short: "Validate a business rule file against a dataset",
	Long: `Validate the active rules in a rule file. Rules are checked against the
dataset given with --data; without it, only the checks that do not need data
run and every data reference is reported as missing.

Conflicts between rules are reported but do not make the rules invalid.

Examples:
  tessera rules validate rules.yaml --data data.yaml
  tessera rules validate rules.yaml --data data.yaml --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesValidate,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesValidateCmd)

	rulesValidateCmd.Flags().StringVarP(&rulesValidateFlags.data, "data", "d", "", "dataset the rules refer to")
	rulesValidateCmd.Flags().StringVarP(&rulesValidateFlags.format, "format", "f", "text", "output format: text, json, csv")
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(rulesValidateFlags.format)
	if err != nil {
		return err
	}
	cfg, err := appConfig()
	if err != nil {
		return err
	}

	rs, err := rules.LoadFile(args[0])
	if err != nil {
		return cli.NewCommandError("rules validate", err)
	}

	ds := &dataset.DataSet{}
	if rulesValidateFlags.data != "" {
		ds, err = dataset.Load(rulesValidateFlags.data)
		if err != nil {
			return cli.NewCommandError("rules validate", err)
		}
		if cfg.Validation.AutoNormalize {
			ds = dataset.Normalize(ds)
		}
	}

	result := newRuleValidator(cfg).Validate(rs, ds)

	view := &ruleReportView{Source: args[0], Result: result}
	if err := cli.NewFormatter(format).FormatTo(stdout, view); err != nil {
		return err
	}
	if !result.IsValid {
		return cli.NewExitError(cli.ExitInvalid, "rule validation failed")
	}
	return nil
}
