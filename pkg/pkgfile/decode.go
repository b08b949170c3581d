// SPDX-License-Identifier: MIT

package pkgfile

import (
	"fmt"
	"net/url"
)

// rawPackage mirrors the package file layout before the polymorphic fields
// (license, description, parse_url) are normalized into their typed forms.
type rawPackage struct {
	Metadata rawMetadata `toml:"metadata" yaml:"metadata"`
	Updater  rawUpdater  `toml:"updater" yaml:"updater"`
}

type rawMetadata struct {
	ID          string       `toml:"id" yaml:"id"`
	Maintainers []string     `toml:"maintainers" yaml:"maintainers"`
	Summary     string       `toml:"summary" yaml:"summary"`
	ProjectURL  string       `toml:"project_url" yaml:"project_url"`
	License     any          `toml:"license" yaml:"license"`
	Chocolatey  *rawChocoMet `toml:"chocolatey" yaml:"chocolatey"`
}

type rawChocoMet struct {
	LowercaseID              *bool             `toml:"lowercase_id" yaml:"lowercase_id"`
	Title                    string            `toml:"title" yaml:"title"`
	Copyright                string            `toml:"copyright" yaml:"copyright"`
	Version                  string            `toml:"version" yaml:"version"`
	Authors                  []string          `toml:"authors" yaml:"authors"`
	Description              any               `toml:"description" yaml:"description"`
	RequireLicenseAcceptance *bool             `toml:"require_license_acceptance" yaml:"require_license_acceptance"`
	DocumentationURL         string            `toml:"documentation_url" yaml:"documentation_url"`
	IssuesURL                string            `toml:"issues_url" yaml:"issues_url"`
	Tags                     []string          `toml:"tags" yaml:"tags"`
	ReleaseNotes             string            `toml:"release_notes" yaml:"release_notes"`
	Dependencies             map[string]string `toml:"dependencies" yaml:"dependencies"`
}

type rawUpdater struct {
	Chocolatey *rawChocoUpd `toml:"chocolatey" yaml:"chocolatey"`
}

type rawChocoUpd struct {
	Embedded bool              `toml:"embedded" yaml:"embedded"`
	Type     string            `toml:"type" yaml:"type"`
	ParseURL any               `toml:"parse_url" yaml:"parse_url"`
	Regexes  map[string]string `toml:"regexes" yaml:"regexes"`
}

func (raw *rawPackage) normalize() (*PackageData, error) {
	data := New(raw.Metadata.ID)
	if len(raw.Metadata.Maintainers) > 0 {
		data.Metadata.Maintainers = raw.Metadata.Maintainers
	}
	data.Metadata.Summary = raw.Metadata.Summary
	data.Metadata.ProjectURL = raw.Metadata.ProjectURL

	license, err := normalizeLicense(raw.Metadata.License)
	if err != nil {
		return nil, err
	}
	data.Metadata.License = license

	if raw.Metadata.Chocolatey != nil {
		choco, err := raw.Metadata.Chocolatey.normalize()
		if err != nil {
			return nil, err
		}
		data.Metadata.Chocolatey = choco
	}

	if raw.Updater.Chocolatey != nil {
		upd, err := raw.Updater.Chocolatey.normalize()
		if err != nil {
			return nil, err
		}
		data.Updater.Chocolatey = upd
	}

	return data, nil
}

func (raw *rawChocoMet) normalize() (*ChocolateyMetadata, error) {
	choco := NewChocolateyMetadata()
	if raw.LowercaseID != nil {
		choco.LowercaseID = *raw.LowercaseID
	}
	if raw.RequireLicenseAcceptance != nil {
		choco.RequireLicenseAcceptance = *raw.RequireLicenseAcceptance
	}
	choco.Title = raw.Title
	choco.Copyright = raw.Copyright
	choco.Version = raw.Version
	choco.Authors = raw.Authors
	choco.DocumentationURL = raw.DocumentationURL
	choco.IssuesURL = raw.IssuesURL
	choco.Tags = raw.Tags
	choco.ReleaseNotes = raw.ReleaseNotes
	if raw.Dependencies != nil {
		choco.Dependencies = raw.Dependencies
	}

	desc, err := normalizeDescription(raw.Description)
	if err != nil {
		return nil, err
	}
	choco.Description = desc

	return choco, nil
}

func (raw *rawChocoUpd) normalize() (*ChocolateyUpdater, error) {
	upd := &ChocolateyUpdater{
		Embedded: raw.Embedded,
		Type:     UpdaterTypeNone,
		Regexes:  raw.Regexes,
	}
	if upd.Regexes == nil {
		upd.Regexes = map[string]string{}
	}

	switch raw.Type {
	case "", string(UpdaterTypeNone):
	case string(UpdaterTypeInstaller):
		upd.Type = UpdaterTypeInstaller
	case string(UpdaterTypeArchive):
		upd.Type = UpdaterTypeArchive
	default:
		return nil, fmt.Errorf("unknown updater type %q", raw.Type)
	}

	parseURL, err := normalizeParseURL(raw.ParseURL)
	if err != nil {
		return nil, err
	}
	upd.ParseURL = parseURL

	return upd, nil
}

// normalizeLicense accepts a bare string or a table with expression and
// location keys. A bare string that parses as an absolute url is treated as
// the license location, anything else as a license expression.
func normalizeLicense(val any) (License, error) {
	switch v := val.(type) {
	case nil:
		return License{}, nil
	case string:
		if isAbsoluteURL(v) {
			return License{Location: v}, nil
		}
		return License{Expression: v}, nil
	case map[string]any:
		var license License
		for key, entry := range v {
			text, ok := entry.(string)
			if !ok {
				return License{}, fmt.Errorf("license field %q must be a string", key)
			}
			switch key {
			case "expression":
				license.Expression = text
			case "location":
				license.Location = text
			default:
				return License{}, fmt.Errorf("unknown license field %q", key)
			}
		}
		return license, nil
	default:
		return License{}, fmt.Errorf("license must be a string or a table, got %T", val)
	}
}

// normalizeDescription accepts inline text or a table referencing a file
// with optional skip counts.
func normalizeDescription(val any) (Description, error) {
	switch v := val.(type) {
	case nil:
		return Description{}, nil
	case string:
		return Description{Text: v}, nil
	case map[string]any:
		var desc Description
		for key, entry := range v {
			switch key {
			case "from":
				text, ok := entry.(string)
				if !ok {
					return Description{}, fmt.Errorf("description field %q must be a string", key)
				}
				desc.FromFile = text
			case "skip_start", "skip_end":
				num, err := toInt(entry)
				if err != nil {
					return Description{}, fmt.Errorf("description field %q: %w", key, err)
				}
				if key == "skip_start" {
					desc.SkipStart = num
				} else {
					desc.SkipEnd = num
				}
			default:
				return Description{}, fmt.Errorf("unknown description field %q", key)
			}
		}
		return desc, nil
	default:
		return Description{}, fmt.Errorf("description must be a string or a table, got %T", val)
	}
}

// normalizeParseURL accepts a bare url or a table with url and regex keys.
func normalizeParseURL(val any) (*ParseURL, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case string:
		return &ParseURL{URL: v}, nil
	case map[string]any:
		var parseURL ParseURL
		for key, entry := range v {
			text, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("parse_url field %q must be a string", key)
			}
			switch key {
			case "url":
				parseURL.URL = text
			case "regex":
				parseURL.Regex = text
			default:
				return nil, fmt.Errorf("unknown parse_url field %q", key)
			}
		}
		if parseURL.URL == "" {
			return nil, fmt.Errorf("parse_url table is missing the url field")
		}
		return &parseURL, nil
	default:
		return nil, fmt.Errorf("parse_url must be a string or a table, got %T", val)
	}
}

func toInt(val any) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", val)
	}
}

func isAbsoluteURL(val string) bool {
	u, err := url.Parse(val)
	return err == nil && u.IsAbs() && u.Host != ""
}
