// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"aer-cli/internal/logging"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualShellRunner runs .sh update scripts through the embedded shell
// interpreter. It serves as the fallback when no system shell exists; the
// marker block is emitted by the runner itself, after the interpreter
// finishes, to keep the wrapper contract identical to the other runners.
type VirtualShellRunner struct{}

// NewVirtualShellRunner creates a new embedded shell script runner.
func NewVirtualShellRunner() *VirtualShellRunner {
	return &VirtualShellRunner{}
}

// Name returns the runner name.
func (r *VirtualShellRunner) Name() string {
	return "virtual-shell"
}

// CanRun reports whether the script is a shell script.
func (r *VirtualShellRunner) CanRun(scriptPath string) bool {
	return strings.HasSuffix(scriptPath, ".sh")
}

// Available reports whether this runner is available. The interpreter is
// built in, so it always is.
func (r *VirtualShellRunner) Available() bool {
	return true
}

// Run executes the script and recovers the echoed params.
func (r *VirtualShellRunner) Run(ctx *ExecContext) *Result {
	data, err := ctx.Params.Encode()
	if err != nil {
		return NewErrorResult(1, err)
	}

	src, err := os.ReadFile(ctx.ScriptPath)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to read script: %w", err))
	}

	prog, err := syntax.NewParser().Parse(bytes.NewReader(src), ctx.ScriptPath)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("script syntax error: %w", err))
	}

	logging.Logger().Info("running script", "script", ctx.ScriptPath)

	env := append(os.Environ(), "AER_PARAMS="+string(data))
	env = append(env, EnvToSlice(ctx.ExtraEnv)...)

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.Dir(ctx.WorkDir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &stdout, &stderr),
		interp.Params("--", string(data)),
	}

	sh, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	res := &Result{}
	if err := sh.Run(execCtx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			res = NewExitCodeResult(ExitCode(status))
			logging.Logger().Error("script runner returned error code", "code", res.ExitCode)
		} else {
			logging.Logger().Error(err.Error())
			fmt.Fprintln(&stderr, err.Error())
			res.ExitCode = 1
		}
	}

	// The interpreter has no wrapper process around it, so the marker block
	// is appended here with the exact JSON the script observed in $1.
	fmt.Fprintf(&stdout, "%s\n%s\n%s\n", MarkerStart, data, MarkerEnd)

	res.Output = stdout.String()
	res.ErrOutput = stderr.String()

	return finishResult(ctx, res)
}
