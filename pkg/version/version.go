// SPDX-License-Identifier: MIT

// Package version parses and compares the two version forms found on
// release pages: strict semantic versions and Chocolatey's two-to-four part
// form. Either form converts to the other so versions stay comparable.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a parsed version in either semantic or Chocolatey form.
type Version struct {
	sem   string
	choco *ChocoVersion
}

// Parse parses a version string, preferring strict three-part semantic
// versions and falling back to the Chocolatey form.
func Parse(val string) (*Version, error) {
	if isStrictSemVer(val) {
		return &Version{sem: val}, nil
	}

	choco, err := ParseChoco(val)
	if err != nil {
		return nil, fmt.Errorf("failed to parse version '%s': %w", val, err)
	}
	return &Version{choco: choco}, nil
}

// MustParse parses a version string and panics on failure. Only for use
// with known-good literals.
func MustParse(val string) *Version {
	v, err := Parse(val)
	if err != nil {
		panic(err)
	}
	return v
}

// IsSemVer reports whether the version was parsed as a semantic version.
func (v *Version) IsSemVer() bool {
	return v.choco == nil
}

// String renders the version in its parsed form.
func (v *Version) String() string {
	if v.choco != nil {
		return v.choco.String()
	}
	return v.sem
}

// SemVer returns the version in semantic form, converting from the
// Chocolatey form when needed.
func (v *Version) SemVer() string {
	if v.choco == nil {
		return v.sem
	}
	return chocoToSemVer(v.choco)
}

// Choco returns the version in Chocolatey form, converting from the
// semantic form when needed.
func (v *Version) Choco() *ChocoVersion {
	if v.choco != nil {
		return v.choco
	}
	return semVerToChoco(v.sem)
}

// Compare orders two versions by canonicalizing both to semantic form.
// Build metadata is ignored, matching semantic version precedence.
func Compare(a, b *Version) int {
	return semver.Compare("v"+a.SemVer(), "v"+b.SemVer())
}

// isStrictSemVer reports whether val is a full three-part semantic version.
// x/mod/semver also accepts shortened forms, which belong to the Chocolatey
// parser here, so the core part count is checked first.
func isStrictSemVer(val string) bool {
	core := val
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.Count(core, ".") != 2 {
		return false
	}
	return semver.IsValid("v" + val)
}

// chocoToSemVer renders a Chocolatey version as a semantic version: the
// fourth part moves into build metadata and a padded numeric pre-release
// identifier becomes a plain dotted one ("2.1.0.5-alpha0055" becomes
// "2.1.0-alpha.55+5").
func chocoToSemVer(choco *ChocoVersion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", choco.Major, choco.Minor, choco.patchOr(0))

	pendingNum := uint64(0)
	for _, pre := range choco.Pre {
		if pre.IsNum {
			if pendingNum > 0 {
				fmt.Fprintf(&sb, "-%d", pendingNum)
			}
			pendingNum = pre.Num
			continue
		}

		prefix, suffix := pre.Alpha, ""
		if idx := strings.IndexFunc(pre.Alpha, isASCIIDigit); idx >= 0 {
			prefix, suffix = pre.Alpha[:idx], pre.Alpha[idx:]
		}
		if prefix != "" {
			fmt.Fprintf(&sb, "-%s", prefix)
		}
		if num, err := strconv.ParseUint(suffix, 10, 64); err == nil && suffix != "" {
			if pendingNum > 0 {
				fmt.Fprintf(&sb, "-%d", pendingNum)
			}
			pendingNum = num
		} else if suffix != "" {
			if prefix == "" {
				fmt.Fprintf(&sb, "-%s", suffix)
			} else {
				sb.WriteString(suffix)
			}
		}
	}

	delim, altDelim := "+", "-"
	if strings.Contains(sb.String(), "-") {
		delim, altDelim = ".", "+"
	}

	switch {
	case choco.Build != nil && pendingNum > 0:
		fmt.Fprintf(&sb, "%s%d%s%d", delim, pendingNum, altDelim, *choco.Build)
	case choco.Build != nil:
		fmt.Fprintf(&sb, "%s%d", delim, *choco.Build)
	case pendingNum > 0:
		fmt.Fprintf(&sb, "%s%d", delim, pendingNum)
	}

	return sb.String()
}

// semVerToChoco converts a semantic version, clamping numeric parts to 255
// and normalizing pre-release identifiers. Build metadata is dropped.
func semVerToChoco(sem string) *ChocoVersion {
	major, minor, patch, pre := semVerParts(sem)

	choco := NewChocoVersion(clampPart(major), clampPart(minor))
	choco.SetPatch(clampPart(patch))

	var ids []Identifier
	for _, part := range pre {
		if num, err := strconv.ParseUint(part, 10, 64); err == nil && !strings.HasPrefix(part, "-") {
			if len(ids) == 0 {
				ids = append(ids, AlphaIdentifier(normalPre))
			}
			ids = append(ids, NumericIdentifier(num))
			continue
		}
		ids = append(ids, extractPrerelease(part)...)
	}
	choco.Pre = ids

	return choco
}

// semVerParts splits a semantic version string into numeric core parts and
// pre-release identifiers.
func semVerParts(sem string) (major, minor, patch int, pre []string) {
	core := sem
	if i := strings.IndexByte(core, '+'); i >= 0 {
		core = core[:i]
	}
	if i := strings.IndexByte(core, '-'); i >= 0 {
		pre = strings.Split(core[i+1:], ".")
		core = core[:i]
	}

	parts := strings.Split(core, ".")
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		patch, _ = strconv.Atoi(parts[2])
	}
	return major, minor, patch, pre
}

func clampPart(val int) int {
	if val > 255 {
		return 255
	}
	return val
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
