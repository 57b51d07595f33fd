package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/tessera/pkg/cli"
	"mercator-hq/tessera/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and prune the validation run history",
}

var historyListFlags struct {
	limit  int
	format string
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded validation runs, newest first",
	Long: `List recorded validation runs, newest first.

Examples:
  tessera history list
  tessera history list --limit 5 --format csv`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete runs older than history.retention_days, then the oldest runs
beyond history.max_records. Watch mode does this on history.prune_schedule.`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyPruneCmd)

	historyListCmd.Flags().IntVarP(&historyListFlags.limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	historyListCmd.Flags().StringVarP(&historyListFlags.format, "format", "f", "text", "output format: text, json, csv")
}

// requireHistory opens the history store or explains why there is none.
func requireHistory() (history.Store, error) {
	cfg, err := appConfig()
	if err != nil {
		return nil, err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, cli.NewConfigError("history.enabled", "run history is disabled")
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyListFlags.format)
	if err != nil {
		return err
	}
	store, err := requireHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(commandContext(cmd), historyListFlags.limit)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	if records == nil {
		records = []*history.Record{}
	}
	return cli.NewFormatter(format).FormatTo(stdout, &historyView{Records: records})
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	store, err := requireHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	before, err := store.Count(ctx)
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}

	deleted, err := history.NewPruner(store, historyConfig(cfg)).Prune(ctx)
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}

	fmt.Fprintf(stdout, "pruned %d of %d runs\n", deleted, before)
	return nil
}
