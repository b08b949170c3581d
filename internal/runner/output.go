// SPDX-License-Identifier: MIT

package runner

import (
	"fmt"
	"strings"

	"aer-cli/internal/logging"
)

// scanMarkerBlock walks the script's stdout line by line, accumulating the
// JSON between the marker lines and relaying everything else: lines are
// written to the context's Stdout sink when one is set, WARNING: prefixed
// lines log at warn level and the rest at debug, or at info when the
// context is verbose.
func scanMarkerBlock(ctx *ExecContext, stdout string) string {
	var block strings.Builder
	inData := false

	log := logging.Logger()
	log.Debug("script runner stdout:")

	for _, line := range strings.Split(stdout, "\n") {
		switch strings.TrimSpace(line) {
		case MarkerStart:
			inData = true
		case MarkerEnd:
			inData = false
		default:
			trimmed := strings.TrimSpace(line)
			if inData {
				block.WriteString(trimmed)
				continue
			}
			if trimmed == "" {
				continue
			}
			if ctx.Stdout != nil {
				fmt.Fprintln(ctx.Stdout, line)
			}
			switch {
			case strings.HasPrefix(trimmed, "WARNING:"):
				log.Warn(trimmed)
			case ctx.Verbose:
				log.Info(trimmed)
			default:
				log.Debug(trimmed)
			}
		}
	}

	return block.String()
}

// relayStderr logs every stderr line and reports whether any were present.
// WARNING: prefixed lines log at warn level, the rest at error.
func relayStderr(stderr string) bool {
	log := logging.Logger()
	log.Debug("script runner stderr:")

	fail := false
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		fail = true
		if strings.HasPrefix(trimmed, "WARNING:") {
			log.Warn(trimmed)
		} else {
			log.Error(trimmed)
		}
	}
	return fail
}

// finishResult applies the shared tail of the wrapper contract to a raw
// capture: scrape the marker block from stdout, relay stderr (any stderr
// output fails the run), and decode the echoed params.
func finishResult(ctx *ExecContext, res *Result) *Result {
	block := scanMarkerBlock(ctx, res.Output)

	if relayStderr(res.ErrOutput) {
		res.Error = fmt.Errorf("an exception occurred when running the script:\n%s", res.ErrOutput)
		if res.ExitCode.IsSuccess() {
			res.ExitCode = 1
		}
		return res
	}

	if block != "" {
		params, err := ParseParams([]byte(block))
		if err != nil {
			logging.Logger().Error(err.Error())
			res.Error = fmt.Errorf("deserializing script runner data failed: %w", err)
			if res.ExitCode.IsSuccess() {
				res.ExitCode = 1
			}
			return res
		}
		res.Params = params
	}

	return res
}
