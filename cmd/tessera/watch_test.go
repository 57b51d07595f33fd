package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/tessera/pkg/config"
	"mercator-hq/tessera/pkg/engine"
	"mercator-hq/tessera/pkg/watch"
)

func TestReloadConfig(t *testing.T) {
	setupCommand(t)
	prev := cfgFile
	t.Cleanup(func() { cfgFile = prev })

	cfgFile = filepath.Join(t.TempDir(), "tessera.yaml")
	if err := os.WriteFile(cfgFile, []byte("validation:\n  auto_normalize: false\nhistory:\n  backend: memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	initial := engine.New(engine.Options{AutoNormalize: true})
	runner := &watch.Runner{DataPath: testdata("valid.yaml"), Engine: initial}
	ctx := context.Background()

	reloadConfig(ctx, runner, engineOptions{})

	if config.GetConfig().Validation.AutoNormalize {
		t.Error("process config not replaced by the reloaded file")
	}
	if runner.Engine == initial {
		t.Fatal("engine not rebuilt after reload")
	}
	last := runner.Last()
	if last == nil {
		t.Fatal("no revalidation after reload")
	}
	if last.Normalized {
		t.Error("revalidation ignored auto_normalize: false")
	}

	// A broken file keeps the current config and engine.
	current := runner.Engine
	if err := os.WriteFile(cfgFile, []byte("validation: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reloadConfig(ctx, runner, engineOptions{})
	if runner.Engine != current {
		t.Error("engine replaced after a failed reload")
	}
	if config.GetConfig().Validation.AutoNormalize {
		t.Error("config replaced after a failed reload")
	}
}
