package detector

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestArgsExpandPlaceholders(t *testing.T) {
	r := NewRunner("yolo", []string{"predict", "source={source}", "project={output}"}, "")

	got := r.Args("/data/images", "/data/images/pred")
	expected := []string{"predict", "source=/data/images", "project=/data/images/pred"}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("arg %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestRunStreamsOutput(t *testing.T) {
	requireShell(t)
	out := filepath.Join(t.TempDir(), "pred")
	r := NewRunner("sh", []string{"-c", "echo start {source}; echo done"}, "")

	var lines []string
	if err := r.Run(context.Background(), "images", out, func(l string) { lines = append(lines, l) }); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(lines) != 2 || lines[0] != "start images" || lines[1] != "done" {
		t.Errorf("unexpected output %q", lines)
	}
}

func TestRunNotInstalled(t *testing.T) {
	r := NewRunner("gobbox-no-such-detector", nil, "")

	err := r.Run(context.Background(), "a", t.TempDir(), nil)
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
}

func TestRunFailure(t *testing.T) {
	requireShell(t)
	r := NewRunner("sh", []string{"-c", "echo model missing >&2; exit 3"}, "")

	err := r.Run(context.Background(), "a", t.TempDir(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "model missing") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	requireShell(t)
	r := NewRunner("sh", []string{"-c", "sleep 10"}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx, "a", t.TempDir(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunCancelledWithChildHoldingOutput(t *testing.T) {
	requireShell(t)
	// the background sleep inherits stdout and outlives the killed shell
	r := NewRunner("sh", []string{"-c", "sleep 30 & wait"}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := r.Run(ctx, "a", t.TempDir(), nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("expected Run to return after cancel, took %v", elapsed)
	}
}
