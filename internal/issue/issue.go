// SPDX-License-Identifier: MIT

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PackageFileNotFoundId Id = iota + 1
	PackageFileParseErrorId
	NoRunnerFoundId
	InterpreterNotFoundId
	ScriptFailedId
	ConfigLoadFailedId
	DownloadFailedId
	NoUpdaterConfiguredId
	InvalidVersionId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	packageFileNotFoundIssue = &Issue{
		id: PackageFileNotFoundId,
		mdMsg: `
# Package file not found!

We could not find the package data file you specified.

## Things you can try:
- Check the path for typos
- Package files must end in one of the supported suffixes:
~~~
my-package.aer.toml
my-package.aer.yml
my-package.aer.yaml
~~~
- List the directory to verify the file exists`,
	}

	packageFileParseErrorIssue = &Issue{
		id: PackageFileParseErrorId,
		mdMsg: `
# Failed to parse package file!

Your package file contains syntax errors or invalid values.

## Common issues:
- Invalid TOML/YAML syntax (missing quotes, bad indentation)
- Unknown updater type (valid: none, installer, archive)
- A license table with keys other than expression/location

## Things you can try:
- Check the error message above for the offending field
- Run with verbose mode for more details:
~~~
$ aer --verbose update my-package.aer.toml
~~~

## Example of a minimal package file:
~~~toml
[metadata]
id = "test-package"
project_url = "https://test.com/test-package"
summary = "Short summary of the software"
license = "MIT"
~~~`,
	}

	noRunnerFoundIssue = &Issue{
		id: NoRunnerFoundId,
		mdMsg: `
# No runner found for the script!

The update script's file extension matches none of the supported runners.

## Supported script types:
- **.ps1**: run with PowerShell (pwsh or powershell)
- **.sh**: run with the system shell, or the built-in interpreter when no
  shell exists

## Things you can try:
- Rename the script to a supported extension
- Check the --script flag points at the right file`,
	}

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Script interpreter not found!

A runner matched your script but its interpreter is not installed.

## Interpreters we look for:
- PowerShell: pwsh, pwsh.exe, powershell.exe
- Shell: $SHELL, bash, sh

## Things you can try:
- Install PowerShell: https://github.com/PowerShell/PowerShell
- Install bash or another POSIX shell
- Shell scripts fall back to the built-in interpreter automatically`,
	}

	scriptFailedIssue = &Issue{
		id: ScriptFailedId,
		mdMsg: `
# Update script failed!

The update script finished with a failure exit code, or wrote to its
error stream.

## Common causes:
- The script threw an error without setting an exit code (reported as 1)
- Any output on the error stream fails the run even with exit code 0
- Missing tools inside the script

## Things you can try:
- Run with verbose mode to see the relayed script output:
~~~
$ aer --verbose update my-package.aer.toml
~~~
- Test the script manually with the same parameters`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the aer configuration file.

## Configuration file locations:
- Linux: ~/.config/aer/config.toml
- macOS: ~/Library/Application Support/aer/config.toml
- Windows: %APPDATA%\aer\config.toml

## Things you can try:
- Create a default configuration:
~~~
$ aer config init
~~~
- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~toml
log_level = "info"

[ui]
color_scheme = "auto"
verbose = false
~~~`,
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Download failed!

A remote file could not be fetched.

## Common causes:
- The server answered with an error status
- The link regex matched a page instead of a file
- Network or proxy trouble

## Things you can try:
- Open the link in a browser to verify it still exists
- Check the regexes section of the package file
- Retry with verbose mode to see the request log`,
	}

	noUpdaterConfiguredIssue = &Issue{
		id: NoUpdaterConfiguredId,
		mdMsg: `
# No updater configured!

The package file has no updater section, so there is nothing to update.

## Example updater section:
~~~toml
[updater.chocolatey]
type = "installer"
parse_url = "https://example.org/downloads"

[updater.chocolatey.regexes]
arch64 = 'x64\.zip$'
~~~`,
	}

	invalidVersionIssue = &Issue{
		id: InvalidVersionId,
		mdMsg: `
# Invalid version!

The version string could not be parsed.

## Supported formats:
- Semantic versions: ` + "`1.2.3`, `1.2.3-alpha.5+6`" + `
- Chocolatey versions with up to four numeric parts:
  ` + "`2.1`, `2.1.0.5`, `2.1.0.5-alpha0055`" + `

## Things you can try:
- Check for stray characters before the first number
- A fifth numeric part is never valid`,
	}

	issues = map[Id]*Issue{
		packageFileNotFoundIssue.Id():   packageFileNotFoundIssue,
		packageFileParseErrorIssue.Id(): packageFileParseErrorIssue,
		noRunnerFoundIssue.Id():         noRunnerFoundIssue,
		interpreterNotFoundIssue.Id():   interpreterNotFoundIssue,
		scriptFailedIssue.Id():          scriptFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		downloadFailedIssue.Id():        downloadFailedIssue,
		noUpdaterConfiguredIssue.Id():   noUpdaterConfiguredIssue,
		invalidVersionIssue.Id():        invalidVersionIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
