// SPDX-License-Identifier: MIT

package runner

// Result contains the result of a script run.
type Result struct {
	// ExitCode is the exit code of the script.
	ExitCode ExitCode
	// Error contains any error that occurred.
	Error error
	// Output contains the script's captured stdout.
	Output string
	// ErrOutput contains the script's captured stderr.
	ErrOutput string
	// Params is the parameter mapping recovered from the marker block,
	// reflecting any changes the script made to its copy.
	Params Params
}

// Success returns true if the script ran successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}
