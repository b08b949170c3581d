// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"aer-cli/internal/logging"
)

// PowerShellRunner runs .ps1 update scripts through a PowerShell wrapper
// that decodes the params JSON, invokes the script, echoes the params
// between the marker lines and preserves the script's exit code.
type PowerShellRunner struct {
	// Exe overrides the detected PowerShell executable.
	Exe string

	once sync.Once
	path string
}

// NewPowerShellRunner creates a new PowerShell script runner.
func NewPowerShellRunner() *PowerShellRunner {
	return &PowerShellRunner{}
}

// Name returns the runner name.
func (r *PowerShellRunner) Name() string {
	return "powershell"
}

// CanRun reports whether the script is a PowerShell script.
func (r *PowerShellRunner) CanRun(scriptPath string) bool {
	return strings.HasSuffix(scriptPath, ".ps1")
}

// Available reports whether a PowerShell executable exists on PATH.
func (r *PowerShellRunner) Available() bool {
	return r.exePath() != ""
}

// Run executes the script and recovers the echoed params.
func (r *PowerShellRunner) Run(ctx *ExecContext) *Result {
	exe := r.exePath()
	if exe == "" {
		logging.Logger().Error("no powershell executable was found")
		return NewErrorResult(1, errors.New("no powershell executable was found"))
	}

	data, err := ctx.Params.Encode()
	if err != nil {
		return NewErrorResult(1, err)
	}

	wrapper := buildPowerShellWrapper(ctx.ScriptPath, data)

	logging.Logger().Info("running script", "script", ctx.ScriptPath)

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	cmd := exec.CommandContext(execCtx, exe, "-NoProfile", "-NonInteractive", "-Command", wrapper)
	cmd.Dir = ctx.WorkDir
	cmd.Env = append(os.Environ(), "POWERSHELL_TELEMETRY_OPTOUT=1")
	cmd.Env = append(cmd.Env, EnvToSlice(ctx.ExtraEnv)...)

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
			return NewErrorResult(1, fmt.Errorf("the running of powershell failed with '%s'", err))
		}
	}
	res.Output = stdout.String()
	res.ErrOutput = stderr.String()

	return finishResult(ctx, res)
}

// buildPowerShellWrapper renders the inline wrapper command. The params JSON
// is embedded as a double-quoted literal with quotes backtick-escaped; the
// script receives the decoded hashtable as its single argument. A script that
// fails without setting an exit code yields 1, any other non-zero code is
// preserved as the wrapper's own exit code.
func buildPowerShellWrapper(scriptPath string, paramsJSON []byte) string {
	execPolicy := ""
	if runtime.GOOS == "windows" {
		execPolicy = "Set-ExecutionPolicy Bypass -Scope Process; "
	}

	escapedJSON := strings.ReplaceAll(string(paramsJSON), `"`, "`\"")
	escapedPath := strings.ReplaceAll(scriptPath, "'", "''")

	return fmt.Sprintf(
		"$ErrorActionPreference = 'Stop'; $InformationPreference = 'Continue'; "+
			"$VerbosePreference = 'Continue'; $DebugPreference = 'Continue'; "+
			"%s$data = (\"%s\" | ConvertFrom-Json -AsHashtable); [int]$exitCode = 0; "+
			"try { & '%s' $data; [int]$exitCode = $LASTEXITCODE; } "+
			"catch { Write-Error $_; if ($LASTEXITCODE -eq 0) { [int]$exitCode = 1; } }; "+
			"Write-Host \"%s\"; Write-Host ($data | ConvertTo-Json); Write-Host \"%s\"; "+
			"if ($exitCode -ne 0) { exit $exitCode }",
		execPolicy, escapedJSON, escapedPath, MarkerStart, MarkerEnd)
}

func (r *PowerShellRunner) exePath() string {
	if r.Exe != "" {
		return r.Exe
	}

	r.once.Do(func() {
		for _, name := range []string{"pwsh", "pwsh.exe", "powershell.exe"} {
			if path, err := exec.LookPath(name); err == nil {
				r.path = path
				return
			}
		}
	})
	return r.path
}
