package detector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrNotInstalled is returned when the detector command cannot be found
var ErrNotInstalled = errors.New("detector command not found")

// Placeholders replaced in the argument list
const (
	PlaceholderSource = "{source}"
	PlaceholderOutput = "{output}"
)

// waitDelay bounds how long Run waits for the output of a cancelled
// command, children of the detector may keep its pipes open
const waitDelay = 2 * time.Second

// Runner runs an external object detector that writes YOLO label files
type Runner struct {
	command string
	args    []string
	workDir string
}

// NewRunner creates a runner for command. args may contain the
// {source} and {output} placeholders.
func NewRunner(command string, args []string, workDir string) *Runner {
	return &Runner{
		command: command,
		args:    args,
		workDir: workDir,
	}
}

// Args returns the argument list with placeholders expanded
func (r *Runner) Args(source, output string) []string {
	expanded := make([]string, len(r.args))
	replacer := strings.NewReplacer(PlaceholderSource, source, PlaceholderOutput, output)
	for i, a := range r.args {
		expanded[i] = replacer.Replace(a)
	}
	return expanded
}

// Run predicts labels for source (an image or a folder) into output.
// Every line the command prints is passed to onLine, which may be nil.
// Cancelling ctx kills the process.
func (r *Runner) Run(ctx context.Context, source, output string, onLine func(string)) error {
	path, err := exec.LookPath(r.command)
	if err != nil {
		return fmt.Errorf("%w: %s is not in PATH", ErrNotInstalled, r.command)
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	cmd := exec.CommandContext(ctx, path, r.Args(source, output)...)
	cmd.Dir = r.workDir
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	var stderr bytes.Buffer
	cmd.Stdout = pw
	cmd.Stderr = io.MultiWriter(pw, &stderr)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		// drain so the process never blocks on a full pipe
		_, _ = io.Copy(io.Discard, pr)
	}()

	err = cmd.Run()
	pw.Close()
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		var errMsg strings.Builder
		errMsg.WriteString(fmt.Sprintf("failed to run %s: %v", r.command, err))
		if stderr.Len() > 0 {
			errMsg.WriteString("\nstderr: ")
			errMsg.WriteString(strings.TrimSpace(stderr.String()))
		}
		return errors.New(errMsg.String())
	}

	return nil
}
