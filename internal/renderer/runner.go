// Package renderer invokes the external render tool as a subprocess and
// reports a single terminal outcome per job.
package renderer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"clipforge/internal/pkg/logger"
)

// commandContext is swapped out in tests to stub the external tool.
var commandContext = exec.CommandContext

// stderrTailLines bounds the diagnostic text carried into the job record.
const stderrTailLines = 50

// Result is the terminal outcome of one render invocation. It is consumed
// once by the orchestrator and never persisted.
type Result struct {
	OK           bool
	OutputPath   string
	ErrorMessage string
}

// Runner renders one job's template and property bag into a local video file.
type Runner interface {
	Render(ctx context.Context, jobID, templateID string, props map[string]any) Result
}

// Option configures the CLI runner.
type Option func(*CLI)

// WithBinary overrides the default tool binary.
func WithBinary(binary string, args ...string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
			c.baseArgs = args
		}
	}
}

// WithTempDir overrides the directory for props and output files.
func WithTempDir(dir string) Option {
	return func(c *CLI) {
		if dir != "" {
			c.tempDir = dir
		}
	}
}

// WithLogger attaches a logger for streamed tool output.
func WithLogger(log *logger.Logger) Option {
	return func(c *CLI) {
		if log != nil {
			c.log = log
		}
	}
}

// CLI wraps the external render command line. The default invocation is
// `npx remotion render <templateID> <outputPath> --props=<propsFile>`.
type CLI struct {
	binary   string
	baseArgs []string
	tempDir  string
	log      *logger.Logger
}

// NewCLI constructs a runner using defaults.
func NewCLI(opts ...Option) *CLI {
	c := &CLI{
		binary:   "npx",
		baseArgs: []string{"remotion", "render"},
		tempDir:  os.TempDir(),
		log:      logger.NewDefault().WithComponent("renderer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render serializes the property bag to a temp file, runs the tool and
// resolves to a Result. It never returns a Go error: every failure mode is
// folded into the result so the orchestrator has exactly one path to handle.
// The props file is removed on every exit path.
func (c *CLI) Render(ctx context.Context, jobID, templateID string, props map[string]any) Result {
	log := c.log.WithJobID(jobID)

	outputPath := filepath.Join(c.tempDir, fmt.Sprintf("%s-%s.mp4", jobID, templateID))

	// Props travel via file rather than argv: property values are arbitrary
	// user text and argv length/escaping limits differ across platforms.
	propsPath := filepath.Join(c.tempDir, jobID+"-props.json")
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("serialize props: %v", err)}
	}
	if err := os.WriteFile(propsPath, propsJSON, 0o644); err != nil {
		return Result{ErrorMessage: fmt.Sprintf("write props file: %v", err)}
	}
	defer func() {
		if err := os.Remove(propsPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove props file", "path", propsPath, "error", err.Error())
		}
	}()

	args := append(append([]string(nil), c.baseArgs...), templateID, outputPath, "--props="+propsPath)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("stdout pipe: %v", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("stderr pipe: %v", err)}
	}

	log.Info("starting render", "binary", c.binary, "template_id", templateID, "output", outputPath)

	if err := cmd.Start(); err != nil {
		return Result{ErrorMessage: fmt.Sprintf("failed to start render tool: %v", err)}
	}

	// Drain both streams incrementally so the child never blocks on a full
	// pipe buffer during long renders.
	var (
		wg         sync.WaitGroup
		stderrTail []string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			log.Debug("render tool output", "line", scanner.Text())
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			log.Debug("render tool stderr", "line", line)
			stderrTail = append(stderrTail, line)
			if len(stderrTail) > stderrTailLines {
				stderrTail = stderrTail[1:]
			}
		}
	}()
	wg.Wait()

	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		c.removeStrayOutput(outputPath, log)
		return Result{ErrorMessage: fmt.Sprintf("render canceled: %v", ctx.Err())}
	}

	if waitErr != nil {
		c.removeStrayOutput(outputPath, log)
		msg := strings.TrimSpace(strings.Join(stderrTail, "\n"))
		if msg == "" {
			msg = fmt.Sprintf("render failed with exit code %d", cmd.ProcessState.ExitCode())
		}
		return Result{ErrorMessage: msg}
	}

	// A zero exit code alone does not prove the artifact was written.
	if _, err := os.Stat(outputPath); err != nil {
		msg := strings.TrimSpace(strings.Join(stderrTail, "\n"))
		if msg == "" {
			msg = "render tool exited 0 but produced no output file"
		}
		return Result{ErrorMessage: msg}
	}

	log.Info("render finished", "output", outputPath)
	return Result{OK: true, OutputPath: outputPath}
}

func (c *CLI) removeStrayOutput(path string, log *logger.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove partial output", "path", path, "error", err.Error())
	}
}

var _ Runner = (*CLI)(nil)
