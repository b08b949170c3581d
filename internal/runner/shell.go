// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"aer-cli/internal/logging"
)

// ShellRunner runs .sh update scripts through the system shell. The wrapper
// exports the params JSON as AER_PARAMS, passes it as the script's first
// argument, echoes it between the marker lines and exits with the script's
// own exit code.
type ShellRunner struct {
	// Shell overrides the detected shell executable.
	Shell string
}

// NewShellRunner creates a new system shell script runner.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{}
}

// Name returns the runner name.
func (r *ShellRunner) Name() string {
	return "shell"
}

// CanRun reports whether the script is a shell script.
func (r *ShellRunner) CanRun(scriptPath string) bool {
	return strings.HasSuffix(scriptPath, ".sh")
}

// Available reports whether a POSIX shell exists on this system.
func (r *ShellRunner) Available() bool {
	_, err := r.shellPath()
	return err == nil
}

// Run executes the script and recovers the echoed params.
func (r *ShellRunner) Run(ctx *ExecContext) *Result {
	shell, err := r.shellPath()
	if err != nil {
		return NewErrorResult(1, err)
	}

	data, err := ctx.Params.Encode()
	if err != nil {
		return NewErrorResult(1, err)
	}

	wrapper := buildShellWrapper(shell, ctx.ScriptPath, data)

	logging.Logger().Info("running script", "script", ctx.ScriptPath)

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	cmd := exec.CommandContext(execCtx, shell, "-c", wrapper)
	cmd.Dir = ctx.WorkDir
	cmd.Env = append(os.Environ(), EnvToSlice(ctx.ExtraEnv)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &Result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res = NewExitCodeResult(ExitCode(exitErr.ExitCode()))
			logging.Logger().Error("script runner returned error code", "code", res.ExitCode)
		} else {
			logging.Logger().Error(err.Error())
			return NewErrorResult(1, fmt.Errorf("the running of the shell failed with '%s'", err))
		}
	}
	res.Output = stdout.String()
	res.ErrOutput = stderr.String()

	return finishResult(ctx, res)
}

// buildShellWrapper renders the wrapper passed to `<shell> -c`. The script
// itself runs through the same resolved shell. The params JSON is embedded
// single-quoted and echoed back verbatim, which is trivially the JSON the
// script observed since shell scripts cannot mutate the exported copy in
// the wrapper's scope.
func buildShellWrapper(shell, scriptPath string, paramsJSON []byte) string {
	escapedJSON := strings.ReplaceAll(string(paramsJSON), "'", `'\''`)
	escapedShell := strings.ReplaceAll(shell, "'", `'\''`)
	escapedPath := strings.ReplaceAll(scriptPath, "'", `'\''`)

	return fmt.Sprintf(
		"AER_PARAMS='%s'; export AER_PARAMS; exit_code=0; "+
			"'%s' '%s' \"$AER_PARAMS\" || exit_code=$?; "+
			"printf '%%s\\n' '%s'; printf '%%s\\n' \"$AER_PARAMS\"; printf '%%s\\n' '%s'; "+
			"exit $exit_code",
		escapedJSON, escapedShell, escapedPath, MarkerStart, MarkerEnd)
}

func (r *ShellRunner) shellPath() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	if shell := os.Getenv("SHELL"); shell != "" && isPOSIXShell(shell) {
		return shell, nil
	}
	if bash, err := exec.LookPath("bash"); err == nil {
		return bash, nil
	}
	if sh, err := exec.LookPath("sh"); err == nil {
		return sh, nil
	}
	return "", errors.New("no shell found")
}

// posixShells are shells known to parse the wrapper syntax. $SHELL can name
// the user's interactive shell of choice, fish included, so it is only
// trusted when it resolves to one of these.
var posixShells = map[string]bool{
	"sh": true, "bash": true, "dash": true, "ash": true,
	"ksh": true, "mksh": true, "zsh": true,
}

func isPOSIXShell(shell string) bool {
	name := strings.TrimSuffix(filepath.Base(shell), ".exe")
	return posixShells[name]
}
