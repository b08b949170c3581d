// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"os"

	"aer-cli/internal/config"
	"aer-cli/internal/issue"
	"aer-cli/internal/update"
	"aer-cli/internal/web"

	"github.com/spf13/cobra"
)

var (
	updateScript   string
	updateWorkDir  string
	updateDownload bool

	updateCmd = &cobra.Command{
		Use:   "update <package-file>...",
		Short: "Update package data files from their release pages",
		Long: `Update package data files from their release pages.

For each package file the updater section is read, the release page is
parsed for download links matching the configured regexes, and the
update script next to the package file (update.ps1 or update.sh) runs
with the package metadata as parameters. Changes the script makes to
the allowed fields are written back to the package data.

` + SubtitleStyle.Render("Examples:") + `
  aer update astyle.aer.toml
  aer update --download pkgs/*.aer.toml
  aer update --script custom.ps1 astyle.aer.toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args)
		},
	}
)

func init() {
	updateCmd.Flags().StringVarP(&updateScript, "script", "s", "", "update script to run instead of the conventional one")
	updateCmd.Flags().StringVarP(&updateWorkDir, "workdir", "w", "", "directory to run scripts and store downloads in")
	updateCmd.Flags().BoolVarP(&updateDownload, "download", "d", false, "download the matched architecture files")
}

func runUpdate(cmd *cobra.Command, paths []string) error {
	workDir := updateWorkDir
	downloadDir := ""
	if cfg, err := config.Load(); err == nil {
		if workDir == "" {
			workDir = cfg.WorkDir.String()
		}
		if updateWorkDir == "" {
			downloadDir = cfg.DownloadDir.String()
		}
	}
	client := newWebClient()

	failed := 0
	for _, path := range paths {
		if err := updateOne(cmd, path, workDir, downloadDir, client); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", ErrorStyle.Render("✗"), path, formatErrorForDisplay(err, verbose))
		}
	}

	if failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d package(s) failed to update", failed, len(paths))}
	}
	return nil
}

func updateOne(cmd *cobra.Command, path, workDir, downloadDir string, client *web.Client) error {
	res, err := update.Run(cmd.Context(), path, update.Options{
		WorkDir:     workDir,
		DownloadDir: downloadDir,
		Script:      updateScript,
		Download:    updateDownload,
		Client:      client,
	})
	if err != nil {
		renderUpdateIssue(err)
		return err
	}

	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), path)

	if v := res.Links.Version(); v != nil {
		fmt.Printf("  %s: %s\n", CmdStyle.Render("version"), v.String())
	}
	if res.Links.Arch32 != nil {
		fmt.Printf("  %s: %s\n", CmdStyle.Render("arch32"), res.Links.Arch32.URL.String())
	}
	if res.Links.Arch64 != nil {
		fmt.Printf("  %s: %s\n", CmdStyle.Render("arch64"), res.Links.Arch64.URL.String())
	}
	for _, file := range res.Downloaded {
		fmt.Printf("  %s: %s\n", CmdStyle.Render("downloaded"), file)
	}
	if !res.ScriptRan {
		fmt.Printf("  %s\n", SubtitleStyle.Render("(no update script found)"))
	}

	return nil
}

// renderUpdateIssue prints remediation guidance for well-known failures.
func renderUpdateIssue(err error) {
	var id issue.Id
	var scriptErr *update.ScriptError

	switch {
	case errors.Is(err, update.ErrNoUpdater):
		id = issue.NoUpdaterConfiguredId
	case errors.As(err, &scriptErr):
		id = issue.ScriptFailedId
	default:
		return
	}

	if rendered, renderErr := issue.Get(id).Render("dark"); renderErr == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
}
