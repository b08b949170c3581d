// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"strings"

	"aer-cli/internal/runner"

	"github.com/spf13/cobra"
)

var (
	runWorkDir    string
	runParamsJSON string
	runParams     []string
	runEnv        []string

	runCmd = &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script through the parameter wrapper",
		Long: `Run a script through the parameter wrapper.

The script receives the parameters as decoded JSON and its output is
scanned for the delimited parameter block the wrapper emits. The script's
exit code becomes the exit code of aer; a script that throws without
setting an exit code is reported as exit code 1.

` + SubtitleStyle.Render("Examples:") + `
  aer run update.ps1 --params '{"id":"astyle","url":"https://example.org"}'
  aer run update.sh --param id=astyle --param url=https://example.org
  aer run build.ps1 --workdir ./pkg --env CI=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args[0])
		},
	}
)

func init() {
	runCmd.Flags().StringVarP(&runWorkDir, "workdir", "w", "", "directory to run the script in (created when missing)")
	runCmd.Flags().StringVar(&runParamsJSON, "params", "", "parameters as a JSON object")
	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "single parameter as key=value (repeatable)")
	runCmd.Flags().StringArrayVarP(&runEnv, "env", "e", nil, "extra environment variable as KEY=VALUE (repeatable)")
}

func runScript(cmd *cobra.Command, script string) error {
	params, err := collectParams(runParamsJSON, runParams)
	if err != nil {
		return err
	}

	env, err := collectEnv(runEnv)
	if err != nil {
		return err
	}

	execCtx := runner.NewExecContext(script, params)
	execCtx.Context = cmd.Context()
	execCtx.WorkDir = runWorkDir
	execCtx.ExtraEnv = env
	execCtx.Verbose = verbose

	res := runner.DefaultRegistry().Run(execCtx)
	if res.Error != nil {
		return &ExitError{Code: res.ExitCode, Err: res.Error}
	}
	if !res.ExitCode.IsSuccess() {
		return &ExitError{Code: res.ExitCode}
	}

	if res.Params != nil {
		encoded, err := res.Params.Encode()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(encoded))
	}

	return nil
}

// collectParams merges the --params JSON object with --param key=value pairs.
// Individual pairs win over the JSON object.
func collectParams(paramsJSON string, pairs []string) (runner.Params, error) {
	params := runner.Params{}

	if paramsJSON != "" {
		parsed, err := runner.ParseParams([]byte(paramsJSON))
		if err != nil {
			return nil, err
		}
		params = parsed
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params[key] = value
	}

	return params, nil
}

func collectEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}
