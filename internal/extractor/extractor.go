// Package extractor runs the external catalog extraction tool.
//
// The tool is opaque: called with no arguments it prints the catalog as
// JSON, called with --database and --table it prints that table's rows.
// Anything it writes to stderr is an error for the whole call.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/leapstack-labs/catalognav/pkg/core"
)

// DefaultPath is where the extraction tool is installed.
const DefaultPath = "/opt/gaia/bin/gaia_db_extract"

// Result is the captured output of one extraction run.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// ErrorText returns the trimmed stderr text, empty when the run succeeded.
func (r Result) ErrorText() string {
	return strings.TrimSpace(string(r.Stderr))
}

// Runner invokes the extraction tool and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

// ToolError is the message the extraction tool wrote to stderr.
type ToolError struct {
	Args    []string
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

// Check converts a non-empty stderr into a *ToolError.
func (r Result) Check(args []string) error {
	if msg := r.ErrorText(); msg != "" {
		return &ToolError{Args: args, Message: msg}
	}
	return nil
}

// CatalogArgs returns the arguments that dump the whole catalog.
func CatalogArgs() []string {
	return nil
}

// TableArgs returns the arguments that dump the rows selected by link.
func TableArgs(link core.Link) []string {
	args := []string{
		"--database=" + link.Database,
		"--table=" + link.Table,
	}
	if link.IsRelated() {
		args = append(args,
			"--link-name="+link.LinkName,
			"--link-row="+link.LinkRow,
		)
	}
	return args
}

// ExecRunner runs the extraction tool as a child process.
type ExecRunner struct {
	path   string
	logger *slog.Logger
}

// NewExecRunner creates a runner for the binary at path.
func NewExecRunner(path string, logger *slog.Logger) *ExecRunner {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecRunner{path: path, logger: logger}
}

// Path returns the binary the runner executes.
func (r *ExecRunner) Path() string {
	return r.path
}

// Run executes the tool with args and captures both output streams.
// A non-zero exit status is not an error by itself; callers inspect stderr.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("extractor finished",
		"path", r.path,
		"args", args,
		"duration", time.Since(start),
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len(),
	)

	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		// The tool reports its own failures on stderr and may exit non-zero;
		// only a failure to run it at all is an error here.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, nil
		}
		return res, fmt.Errorf("failed to run extractor %s: %w", r.path, err)
	}
	return res, nil
}
