package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchpaper/pkg/source"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("info logger wrote %q", out)
	}
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(out) {
		t.Errorf("missing timestamp prefix: %q", out)
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("want log.Default() without an attached logger")
	}
}

func TestWithRunTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.InfoLevel))

	ctx, id := withRun(ctx)
	if len(id) != 8 {
		t.Errorf("run id %q, want 8 characters", id)
	}
	logger := loggerFromContext(ctx)
	logger.Info("showing wallpaper", "image", "dunes")
	logger.With("target", "DP-1").Warn("transition not shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "run="+id) {
			t.Errorf("line %q lacks run=%s", line, id)
		}
	}

	_, other := withRun(context.Background())
	if other == id {
		t.Error("two runs got the same id")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("frames ready", "images", 3)

	out := buf.String()
	for _, want := range []string{"frames ready", "images=3", "took="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
}

func TestWarmupProgressMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), "Discovering images...")
	defer s.Stop()
	p := &warmupProgress{spinner: s, logger: newLogger(&buf, log.DebugLevel)}

	img := source.Image{Name: "dunes", Path: "/walls/dunes.jpg"}
	p.OnFrame(img, 0, 3, false)
	if s.message != "Glitching dunes (1/3)" {
		t.Errorf("message = %q", s.message)
	}
	p.OnFrame(img, 2, 3, true)
	if s.message != "Glitching dunes (3/3)" {
		t.Errorf("message = %q", s.message)
	}

	p.OnImage(img, 1, 3)
	if out := buf.String(); !strings.Contains(out, "image ready") || !strings.Contains(out, "image=dunes") {
		t.Errorf("OnImage logged %q", out)
	}
}
