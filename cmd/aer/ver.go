// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"aer-cli/internal/issue"
	"aer-cli/pkg/version"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	verFix bool

	verCmd = &cobra.Command{
		Use:   "ver",
		Short: "Parse and compare package versions",
		Long: `Parse and compare package versions.

Versions are accepted in semantic form (1.2.3, 1.2.3-alpha.5+6) or in
Chocolatey form with up to four numeric parts (2.1, 2.1.0.5-alpha0055).

` + SubtitleStyle.Render("Examples:") + `
  aer ver parse 2.1.0.5-alpha0055
  aer ver parse --fix 7.3.1
  aer ver compare 1.5.0-beta0055 1.5.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	parseCmd := &cobra.Command{
		Use:   "parse <version>",
		Short: "Parse a version and show its normalized forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseVersion(args[0])
		},
	}
	parseCmd.Flags().BoolVar(&verFix, "fix", false, "add a date-stamped fix version to the Chocolatey form")
	verCmd.AddCommand(parseCmd)

	verCmd.AddCommand(&cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare two versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return compareVersions(args[0], args[1])
		},
	})
}

func parseVersion(raw string) error {
	v, err := version.Parse(raw)
	if err != nil {
		if rendered, renderErr := issue.Get(issue.InvalidVersionId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return err
	}

	choco := v.Choco()
	if verFix {
		choco.AddFix()
	}

	form := "chocolatey"
	if v.IsSemVer() {
		form = "semver"
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")
	table.Append("input", raw)
	table.Append("form", form)
	table.Append("display", v.String())
	table.Append("semver", v.SemVer())
	table.Append("chocolatey", choco.String())
	table.Render()

	return nil
}

func compareVersions(rawA, rawB string) error {
	a, err := version.Parse(rawA)
	if err != nil {
		return fmt.Errorf("parse %q: %w", rawA, err)
	}
	b, err := version.Parse(rawB)
	if err != nil {
		return fmt.Errorf("parse %q: %w", rawB, err)
	}

	switch version.Compare(a, b) {
	case -1:
		fmt.Printf("%s < %s\n", a, b)
	case 1:
		fmt.Printf("%s > %s\n", a, b)
	default:
		fmt.Printf("%s == %s\n", a, b)
	}

	return nil
}
