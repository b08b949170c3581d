// SPDX-License-Identifier: MIT

// Package runner dispatches package update scripts to interpreter-specific
// script runners and recovers the data the script observed through a
// delimited marker block on standard output.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Marker lines delimiting the JSON parameter echo in script output.
// Callers locate the block between these two lines and parse it as JSON,
// so the literals must never change.
const (
	MarkerStart = "## AER-SCRIPT-RUNNER:START ##"
	MarkerEnd   = "## AER-SCRIPT-RUNNER:END ##"
)

type (
	// ExecContext contains all information needed to run a script.
	ExecContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// WorkDir is the directory the script runs in. Created when missing.
		WorkDir string
		// ScriptPath is the path to the script to run.
		ScriptPath string
		// Params is the parameter mapping handed to the script. The script
		// observes it as decoded JSON and the runner echoes it back inside
		// the marker block.
		Params Params
		// ExtraEnv contains additional environment variables for the script.
		ExtraEnv map[string]string
		// Stdout receives the script's non-marker standard output when set.
		Stdout io.Writer
		// Verbose enables verbose relay of script output.
		Verbose bool
	}

	// ScriptRunner runs scripts of a specific interpreter family.
	ScriptRunner interface {
		// Name returns the runner name.
		Name() string
		// CanRun reports whether this runner handles the given script path.
		CanRun(scriptPath string) bool
		// Available reports whether the runner's interpreter exists on this
		// system.
		Available() bool
		// Run executes the script and returns the captured result.
		Run(ctx *ExecContext) *Result
	}

	// Registry holds registered script runners in dispatch order.
	Registry struct {
		runners []ScriptRunner
	}
)

// NewExecContext creates an execution context with defaults.
func NewExecContext(scriptPath string, params Params) *ExecContext {
	return &ExecContext{
		Context:    context.Background(),
		ScriptPath: scriptPath,
		Params:     params,
		ExtraEnv:   make(map[string]string),
		Stdout:     os.Stdout,
	}
}

// NewRegistry creates an empty runner registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry creates a registry with all built-in runners. The virtual
// shell runner registers after the system shell runner so it only handles
// shell scripts when no system shell exists.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPowerShellRunner())

	sh := NewShellRunner()
	if sh.Available() {
		r.Register(sh)
	} else {
		r.Register(NewVirtualShellRunner())
	}
	return r
}

// Register adds a runner to the registry.
func (r *Registry) Register(sr ScriptRunner) {
	r.runners = append(r.runners, sr)
}

// ForScript returns the first registered runner that handles the script.
func (r *Registry) ForScript(scriptPath string) (ScriptRunner, error) {
	for _, sr := range r.runners {
		if sr.CanRun(scriptPath) {
			return sr, nil
		}
	}
	return nil, &NoRunnerError{ScriptPath: scriptPath}
}

// Run dispatches the script in ctx to a matching runner, ensuring the work
// directory exists first.
func (r *Registry) Run(ctx *ExecContext) *Result {
	if err := ensureWorkDir(ctx); err != nil {
		return NewErrorResult(1, err)
	}

	scriptPath, err := filepath.Abs(ctx.ScriptPath)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("resolve script path: %w", err))
	}
	ctx.ScriptPath = scriptPath

	sr, err := r.ForScript(scriptPath)
	if err != nil {
		return NewErrorResult(1, err)
	}
	if !sr.Available() {
		return NewErrorResult(1, fmt.Errorf("runner '%s' is not available on this system", sr.Name()))
	}

	return sr.Run(ctx)
}

// NoRunnerError is returned when no registered runner handles a script.
type NoRunnerError struct {
	ScriptPath string
}

// Error implements the error interface.
func (e *NoRunnerError) Error() string {
	return fmt.Sprintf("no supported runner was found for '%s'", e.ScriptPath)
}

func ensureWorkDir(ctx *ExecContext) error {
	if ctx.WorkDir == "" {
		ctx.WorkDir = "."
	}

	info, err := os.Stat(ctx.WorkDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(ctx.WorkDir, 0o755); err != nil {
			return fmt.Errorf("failed to create work directory: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to inspect work directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("the specified directory '%s' is not a directory", ctx.WorkDir)
	}

	workDir, err := filepath.Abs(ctx.WorkDir)
	if err != nil {
		return fmt.Errorf("resolve work directory: %w", err)
	}
	ctx.WorkDir = workDir

	return nil
}

// EnvToSlice converts a map of environment variables to a KEY=VALUE slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
