// Package watch re-validates a dataset whenever its files change.
//
// FileWatcher uses fsnotify on the directories holding the watched files and
// coalesces bursts of events with a Debouncer. Runner loads the dataset and
// optional rules file and runs them through an engine.Engine; its Ready
// method plugs into a health.Checker as a readiness check.
//
//	runner := &watch.Runner{DataPath: "data.yaml", RulesPath: "rules.yaml", Engine: eng}
//	if err := runner.Run(ctx); err != nil {
//		return err
//	}
//
//	cfg := watch.DefaultConfig()
//	cfg.Paths = runner.Paths()
//	fw, err := watch.NewFileWatcher(cfg, logger)
//	if err != nil {
//		return err
//	}
//	defer fw.Stop()
//	return fw.Watch(ctx, runner.Run)
package watch
