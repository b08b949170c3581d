// SPDX-License-Identifier: MIT

package pkgfile

// ToParams exports the values update scripts are given as their parameter
// object. The identifier is included so scripts can locate existing package
// sources, but changes to it are never read back.
func (p *PackageData) ToParams() map[string]any {
	license := map[string]any{}
	if p.Metadata.License.Location != "" {
		license["url"] = p.Metadata.License.Location
	}
	if p.Metadata.License.Expression != "" {
		license["expr"] = p.Metadata.License.Expression
	}

	return map[string]any{
		"id":      p.Metadata.ID,
		"url":     p.Metadata.ProjectURL,
		"license": license,
	}
}

// ApplyParams folds the parameter object a script echoed back into the
// package data. Only the project url, the summary and the license may be
// changed; every other key is ignored.
func (p *PackageData) ApplyParams(params map[string]any) {
	for key, val := range params {
		switch key {
		case "project_url":
			if text, ok := asString(val); ok {
				p.Metadata.ProjectURL = text
			}
		case "summary":
			if text, ok := asString(val); ok {
				p.Metadata.Summary = text
			}
		case "license":
			if child, ok := val.(map[string]any); ok {
				p.Metadata.License = licenseFromParams(child)
			}
		}
	}
}

func licenseFromParams(child map[string]any) License {
	var license License
	for key, val := range child {
		text, ok := asString(val)
		if !ok {
			continue
		}
		switch key {
		case "url":
			license.Location = text
		case "expr":
			license.Expression = text
		}
	}
	return license
}

func asString(val any) (string, bool) {
	text, ok := val.(string)
	return text, ok
}
