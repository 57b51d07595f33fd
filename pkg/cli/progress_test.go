package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "files").(*SimpleProgress)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	progress.now = func() time.Time { return now }

	progress.Start(4)
	now = start.Add(time.Second)
	progress.Update(2)
	if !strings.Contains(buf.String(), "50% 2/4 files (2.0/s)") {
		t.Errorf("output = %q", buf.String())
	}

	progress.Finish()
	if !strings.Contains(buf.String(), "100% 4/4 files") {
		t.Errorf("Finish() output = %q", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("Finish() should end the line")
	}
}

func TestSimpleProgressClampsOverflow(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "").(*SimpleProgress)

	progress.Start(2)
	progress.Update(5)
	if progress.current != 2 {
		t.Errorf("current = %d, want 2", progress.current)
	}
	if !strings.Contains(buf.String(), "items") {
		t.Errorf("default unit missing: %q", buf.String())
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "files")

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("zero total wrote %q", buf.String())
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "files")

	progress.Start(3)
	progress.Error(errors.New("data.yaml: bad yaml"))

	if !strings.Contains(buf.String(), "✗ data.yaml: bad yaml") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewProgressReporterDefaultsToStderr(t *testing.T) {
	p := NewProgressReporter(nil, "files").(*SimpleProgress)
	if p.writer == nil {
		t.Error("writer is nil")
	}
}
