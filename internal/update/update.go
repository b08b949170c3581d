// SPDX-License-Identifier: MIT

package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"aer-cli/internal/logging"
	"aer-cli/internal/runner"
	"aer-cli/internal/web"
	"aer-cli/pkg/pkgfile"
	"aer-cli/pkg/version"
)

// ErrNoParseURL is returned when a package has an updater section but no
// url to locate download links on.
var ErrNoParseURL = errors.New("no url has been specified to parse")

// ErrNoUpdater is returned when a package file carries no updater
// configuration at all.
var ErrNoUpdater = errors.New("the package has no updater configuration")

// ScriptError is returned when an update script finished with a failure
// exit code.
type ScriptError struct {
	Script string
	Code   runner.ExitCode
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("update script %q failed with exit code %d", e.Script, e.Code)
}

// Options adjusts how an update run behaves.
type Options struct {
	// WorkDir is where update scripts run and downloads land. Defaults to
	// the directory of the package file.
	WorkDir string
	// DownloadDir overrides where downloads land. WorkDir is used when
	// empty.
	DownloadDir string
	// Script overrides the update script. Without it a script named
	// update.ps1 or update.sh next to the package file is used when
	// present.
	Script string
	// Download fetches the matched architecture files into WorkDir.
	Download bool
	// Registry dispatches update scripts. Defaults to the standard
	// registry.
	Registry *runner.Registry
	// Client performs the web requests. Defaults to a fresh client.
	Client *web.Client
}

// ArchLinks holds the download links selected by the per architecture
// patterns of a package. Only the first match per architecture is kept,
// links matching patterns with other names are collected as extras.
type ArchLinks struct {
	Arch32 *web.Link
	Arch64 *web.Link
	Others []web.Link
}

// Version returns the version captured for the selected links, preferring
// the 64-bit link.
func (a ArchLinks) Version() *version.Version {
	if a.Arch64 != nil && a.Arch64.Version != nil {
		return a.Arch64.Version
	}
	if a.Arch32 != nil && a.Arch32.Version != nil {
		return a.Arch32.Version
	}
	return nil
}

// Result reports what an update run found and changed.
type Result struct {
	// Data is the package data with any script changes applied.
	Data *pkgfile.PackageData
	// Links are the download links selected for each architecture.
	Links ArchLinks
	// Downloaded lists the files fetched when downloading was requested.
	Downloaded []string
	// ScriptRan reports whether an update script was executed.
	ScriptRan bool
}

// Run loads the package file at path and performs a full update pass:
// locating download links, matching them per architecture, optionally
// downloading them, and running the package's update script with the
// package parameters.
func Run(ctx context.Context, path string, opts Options) (*Result, error) {
	logger := logging.Logger()

	data, err := pkgfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Successfully loaded package data", "id", data.Metadata.ID)

	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Dir(path)
	}
	if opts.Client == nil {
		opts.Client = web.NewClient()
	}
	if opts.Registry == nil {
		opts.Registry = runner.DefaultRegistry()
	}

	choco := data.Updater.Chocolatey
	if choco == nil {
		logger.Warn("The package has no updater configuration", "id", data.Metadata.ID)
		return nil, ErrNoUpdater
	}

	links, err := resolveLinks(ctx, opts.Client, choco.ParseURL)
	if err != nil {
		return nil, err
	}

	archLinks, err := matchArchLinks(links, choco.Regexes)
	if err != nil {
		return nil, err
	}
	logArchLinks(archLinks)

	result := &Result{Data: data, Links: archLinks}

	if opts.Download {
		downloadDir := opts.DownloadDir
		if downloadDir == "" {
			downloadDir = opts.WorkDir
		}
		downloaded, err := downloadArchLinks(ctx, opts.Client, archLinks, downloadDir)
		if err != nil {
			return nil, err
		}
		result.Downloaded = downloaded
	}

	script := opts.Script
	if script == "" {
		script = findUpdateScript(filepath.Dir(path))
	}
	if script != "" {
		if err := runUpdateScript(ctx, opts.Registry, script, opts.WorkDir, data); err != nil {
			return nil, err
		}
		result.ScriptRan = true
	}

	return result, nil
}

// resolveLinks fetches the page holding download links. A parse url with a
// regex is a two-hop lookup: the first link matching the regex on the
// initial page is followed, and the links of that page are returned.
func resolveLinks(ctx context.Context, client *web.Client, parseURL *pkgfile.ParseURL) ([]web.Link, error) {
	if parseURL == nil {
		return nil, ErrNoParseURL
	}
	logger := logging.Logger()

	if parseURL.Regex == "" {
		resp, err := client.GetHTML(ctx, parseURL.URL)
		if err != nil {
			return nil, err
		}
		_, links, err := resp.Links("")
		return links, err
	}

	logger.Info("Parsing links", "url", parseURL.URL, "regex", parseURL.Regex)
	resp, err := client.GetHTML(ctx, parseURL.URL)
	if err != nil {
		return nil, err
	}
	_, links, err := resp.Links(parseURL.Regex)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return links, nil
	}

	logger.Info("Links found, using first one to get links", "count", len(links))
	first := links[0]
	logger.Info("Parsing links", "url", first.URL)

	resp, err = client.GetHTML(ctx, first.URL.String())
	if err != nil {
		return nil, err
	}
	_, links, err = resp.Links("")
	return links, err
}

// matchArchLinks filters links against the per architecture patterns. The
// arch32 and arch64 keys keep a single match, preferring the first link
// that points at a binary file; all matches of other keys are collected.
func matchArchLinks(links []web.Link, regexes map[string]string) (ArchLinks, error) {
	var arch ArchLinks
	logger := logging.Logger()

	for key, pattern := range regexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return arch, fmt.Errorf("invalid regex for %s: %w", key, err)
		}
		logger.Debug("Filtering urls", "key", key, "regex", pattern)

		var matches []web.Link
		for _, link := range links {
			capture := re.FindStringSubmatch(link.URL.String())
			if capture == nil {
				continue
			}
			match := link
			if v := capturedVersion(re, capture); v != nil {
				match.Version = v
			}
			matches = append(matches, match)
		}

		switch key {
		case "arch32":
			if len(matches) > 0 {
				arch.Arch32 = preferBinary(matches)
			}
		case "arch64":
			if len(matches) > 0 {
				arch.Arch64 = preferBinary(matches)
			}
		default:
			arch.Others = append(arch.Others, matches...)
		}
	}

	return arch, nil
}

// preferBinary returns the first link classified as a binary file, falling
// back to the first match. Release pages often carry a landing page link
// matching the same pattern as the file itself.
func preferBinary(matches []web.Link) *web.Link {
	for i := range matches {
		if matches[i].IsBinary() {
			return &matches[i]
		}
	}
	return &matches[0]
}

func capturedVersion(re *regexp.Regexp, capture []string) *version.Version {
	for i, name := range re.SubexpNames() {
		if name != "version" || i >= len(capture) || capture[i] == "" {
			continue
		}
		if v, err := version.Parse(capture[i]); err == nil {
			return v
		}
	}
	return nil
}

func logArchLinks(arch ArchLinks) {
	logger := logging.Logger()
	if arch.Arch32 != nil {
		logger.Info("Arch 32", "url", arch.Arch32.URL)
	} else {
		logger.Info("Arch 32: none")
	}
	if arch.Arch64 != nil {
		logger.Info("Arch 64", "url", arch.Arch64.URL)
	} else {
		logger.Info("Arch 64: none")
	}
	for _, link := range arch.Others {
		logger.Info("Other", "url", link.URL)
	}
}

func downloadArchLinks(ctx context.Context, client *web.Client, arch ArchLinks, workDir string) ([]string, error) {
	var downloaded []string
	for _, link := range []*web.Link{arch.Arch32, arch.Arch64} {
		if link == nil {
			continue
		}
		resp, err := client.GetBinary(ctx, link.URL.String(), "", "")
		if err != nil {
			return downloaded, err
		}
		resp.SetWorkDir(workDir)
		path, err := resp.Download("")
		if err != nil {
			return downloaded, err
		}
		downloaded = append(downloaded, path)
	}
	return downloaded, nil
}

// findUpdateScript looks for a conventional update script next to the
// package file.
func findUpdateScript(dir string) string {
	for _, name := range []string{"update.ps1", "update.sh"} {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// runUpdateScript executes the update script with the package parameters
// and folds the echoed parameters back into the package data.
func runUpdateScript(ctx context.Context, registry *runner.Registry, script, workDir string, data *pkgfile.PackageData) error {
	res := registry.Run(&runner.ExecContext{
		Context:    ctx,
		WorkDir:    workDir,
		ScriptPath: script,
		Params:     data.ToParams(),
	})
	if res.Error != nil {
		return res.Error
	}
	if !res.ExitCode.IsSuccess() {
		return &ScriptError{Script: script, Code: res.ExitCode}
	}

	data.ApplyParams(res.Params)
	return nil
}
