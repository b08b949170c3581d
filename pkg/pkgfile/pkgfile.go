// SPDX-License-Identifier: MIT

package pkgfile

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
)

// PackageData holds all the data a user can specify for a package, both the
// metadata that ends up inside created packages and the updater section that
// drives automatic updates.
type PackageData struct {
	Metadata Metadata `toml:"metadata" yaml:"metadata"`
	Updater  Updater  `toml:"updater,omitempty" yaml:"updater,omitempty"`
}

// Metadata stores common values that are shared between package managers.
type Metadata struct {
	// ID is the package identifier. It is read-only for update scripts.
	ID string
	// Maintainers lists the people responsible for creating and updating
	// the package.
	Maintainers []string
	// Summary is a short description of the software.
	Summary string
	// ProjectURL is the landing page of the software.
	ProjectURL string
	// License is either a license expression, the url to a license file,
	// or both.
	License License
	// Chocolatey holds values that only apply when creating Chocolatey
	// packages.
	Chocolatey *ChocolateyMetadata
}

// License identifies the license of the packaged software. Either field may
// be empty; package files can specify a bare expression, a bare url, or a
// table containing both.
type License struct {
	Expression string
	Location   string
}

// IsZero reports whether no license information is set.
func (l License) IsZero() bool {
	return l.Expression == "" && l.Location == ""
}

func (l License) String() string {
	switch {
	case l.Expression != "" && l.Location != "":
		return fmt.Sprintf("%s (%s)", l.Expression, l.Location)
	case l.Expression != "":
		return l.Expression
	default:
		return l.Location
	}
}

// Description is the package description, either inline text or a reference
// to a markdown file with an optional number of lines skipped at each end.
type Description struct {
	Text      string
	FromFile  string
	SkipStart int
	SkipEnd   int
}

// IsZero reports whether no description is set.
func (d Description) IsZero() bool {
	return d.Text == "" && d.FromFile == ""
}

// ChocolateyMetadata holds values that are specific to Chocolatey packages.
type ChocolateyMetadata struct {
	// LowercaseID forces the package identifier to lower case, which the
	// Chocolatey community repository requires.
	LowercaseID bool
	Title       string
	Copyright   string
	// Version of the Chocolatey package. Updated automatically, so it does
	// not need to be set initially.
	Version                  string
	Authors                  []string
	Description              Description
	RequireLicenseAcceptance bool
	DocumentationURL         string
	IssuesURL                string
	Tags                     []string
	ReleaseNotes             string
	Dependencies             map[string]string
}

// NewChocolateyMetadata returns Chocolatey metadata with the defaults the
// community repository expects.
func NewChocolateyMetadata() *ChocolateyMetadata {
	return &ChocolateyMetadata{
		LowercaseID:              true,
		RequireLicenseAcceptance: true,
		Dependencies:             map[string]string{},
	}
}

// Updater holds the per package manager update configuration.
type Updater struct {
	Chocolatey *ChocolateyUpdater
}

// UpdaterType tells the update pipeline what kind of artifact the package
// wraps.
type UpdaterType string

const (
	UpdaterTypeNone      UpdaterType = "none"
	UpdaterTypeInstaller UpdaterType = "installer"
	UpdaterTypeArchive   UpdaterType = "archive"
)

// ChocolateyUpdater configures how new versions and download links are
// located for a Chocolatey package.
type ChocolateyUpdater struct {
	// Embedded marks packages that embed the software binaries instead of
	// downloading them at install time.
	Embedded bool
	Type     UpdaterType
	// ParseURL locates the page holding download links. With a regex set
	// the matching link on the initial page is followed first.
	ParseURL *ParseURL
	// Regexes maps architecture names (arch32, arch64) to patterns that
	// select download links. Unknown names are collected as extra links.
	Regexes map[string]string
}

// ParseURL is a page url with an optional link-matching regex. The regex may
// contain a named `version` capture group.
type ParseURL struct {
	URL   string
	Regex string
}

// New returns package data for the given identifier with the maintainer list
// defaulted from the AER_MAINTAINER environment variable or the current user.
func New(id string) *PackageData {
	return &PackageData{
		Metadata: Metadata{
			ID:          id,
			Maintainers: defaultMaintainers(),
		},
	}
}

func defaultMaintainers() []string {
	if m := os.Getenv("AER_MAINTAINER"); m != "" {
		return []string{m}
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return []string{u.Username}
	}
	return []string{os.Getenv("USER")}
}

// Validate checks the values that later stages depend on.
func (p *PackageData) Validate() error {
	if p.Metadata.ID == "" {
		return fmt.Errorf("package file: metadata is missing an id")
	}
	if p.Metadata.ProjectURL != "" {
		if _, err := url.ParseRequestURI(p.Metadata.ProjectURL); err != nil {
			return fmt.Errorf("package file: invalid project url: %w", err)
		}
	}
	if choco := p.Updater.Chocolatey; choco != nil && choco.ParseURL != nil {
		if _, err := url.ParseRequestURI(choco.ParseURL.URL); err != nil {
			return fmt.Errorf("package file: invalid parse url: %w", err)
		}
	}
	return nil
}
