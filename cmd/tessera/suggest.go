package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/tessera/pkg/cli"
	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/rules"
	"mercator-hq/tessera/pkg/suggest"
)

var suggestFlags struct {
	output     string
	format     string
	noCache    bool
	clearCache bool
}

var suggestCmd = &cobra.Command{
	Use:   "suggest DATA",
	Short: "Propose business rules for a dataset",
	Long: `Propose rules from the shape of a dataset: co-run rules for categories
with several tasks, load limits per worker group and common-slot
restrictions per client group. Suggested rules are inactive; enable the ones
you want before exporting.

Suggestions are cached by a hash of the dataset's shape for suggest.ttl, in
memory or in the SQLite file at suggest.cache_path.

Examples:
  tessera suggest data.yaml
  tessera suggest data.yaml -o suggested.yaml
  tessera suggest data.yaml --clear-cache --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVarP(&suggestFlags.output, "output", "o", "", "write the suggested rules to this file")
	suggestCmd.Flags().StringVarP(&suggestFlags.format, "format", "f", "text", "output format: text (YAML), json")
	suggestCmd.Flags().BoolVar(&suggestFlags.noCache, "no-cache", false, "bypass the suggestion cache")
	suggestCmd.Flags().BoolVar(&suggestFlags.clearCache, "clear-cache", false, "clear the suggestion cache first")
}

// ruleList renders rules as a YAML rules document in text mode.
type ruleList struct {
	Rules []rules.Rule `json:"rules" yaml:"rules"`
}

// RenderText implements cli.TextRenderer.
func (l *ruleList) RenderText(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	return enc.Close()
}

func runSuggest(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(suggestFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewConfigError("format", "suggest does not support csv output")
	}
	cfg, err := appConfig()
	if err != nil {
		return err
	}

	ds, err := dataset.Load(args[0])
	if err != nil {
		return cli.NewCommandError("suggest", err)
	}
	ctx := commandContext(cmd)

	var s suggest.Suggester = suggest.NewHeuristic()
	if !suggestFlags.noCache {
		cache, err := openSuggestCache(cfg)
		if err != nil {
			return cli.NewCommandError("suggest", err)
		}
		defer cache.Close()

		if suggestFlags.clearCache {
			if err := cache.Clear(ctx); err != nil {
				return cli.NewCommandError("suggest", err)
			}
		}
		s = suggest.Memoize(s, cache, cfg.Suggest.TTL, suggest.WithObserver(newCollector(cfg)))
	}

	proposed, err := s.Suggest(ctx, dataset.Summarize(dataset.Normalize(ds)))
	if err != nil {
		return cli.NewCommandError("suggest", err)
	}

	if suggestFlags.output != "" {
		if err := rules.SaveFile(suggestFlags.output, proposed); err != nil {
			return cli.NewCommandError("suggest", err)
		}
	}
	return cli.NewFormatter(format).FormatTo(stdout, &ruleList{Rules: proposed})
}
