// SPDX-License-Identifier: MIT

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fixVersionThreshold is the lowest date-stamp build number; builds at or
// above it are treated as replaceable date fixes.
const fixVersionThreshold = 20070101

type (
	// Identifier is a single pre-release identifier, either numeric or
	// alphanumeric.
	Identifier struct {
		Alpha string
		Num   uint64
		IsNum bool
	}

	// ChocoVersion is a Chocolatey-compatible version: two to four numeric
	// parts with an optional normalized pre-release tail. The build part is
	// wide enough to carry date-stamp fix versions.
	ChocoVersion struct {
		Major int
		Minor int
		Patch *int
		Build *int
		Pre   []Identifier
	}
)

// NumericIdentifier creates a numeric pre-release identifier.
func NumericIdentifier(num uint64) Identifier {
	return Identifier{Num: num, IsNum: true}
}

// AlphaIdentifier creates an alphanumeric pre-release identifier.
func AlphaIdentifier(val string) Identifier {
	return Identifier{Alpha: val}
}

// String returns the identifier as it appears in a version string.
func (i Identifier) String() string {
	if i.IsNum {
		return strconv.FormatUint(i.Num, 10)
	}
	return i.Alpha
}

// NewChocoVersion creates a two-part Chocolatey version.
func NewChocoVersion(major, minor int) *ChocoVersion {
	return &ChocoVersion{Major: major, Minor: minor}
}

// ChocoWithPatch creates a three-part Chocolatey version.
func ChocoWithPatch(major, minor, patch int) *ChocoVersion {
	v := NewChocoVersion(major, minor)
	v.SetPatch(patch)
	return v
}

// ChocoWithBuild creates a four-part Chocolatey version.
func ChocoWithBuild(major, minor, patch, build int) *ChocoVersion {
	v := ChocoWithPatch(major, minor, patch)
	v.SetBuild(build)
	return v
}

// ParseChoco parses a Chocolatey version string: up to four dot-separated
// numeric parts followed by an optional pre-release tail.
func ParseChoco(val string) (*ChocoVersion, error) {
	if val == "" {
		return nil, errors.New("there is no version string to parse")
	}
	if val[0] < '0' || val[0] > '9' {
		return nil, errors.New("the version string does not start with a number")
	}

	parts := [4]int{}
	hasPart := [4]bool{}
	i := 0
	var numStr strings.Builder

	flush := func() error {
		if numStr.Len() == 0 {
			return nil
		}
		if i > 3 {
			return errors.New("there were additional numeric characters after the first 4 parts of the version")
		}
		num, err := strconv.Atoi(numStr.String())
		if err != nil {
			return err
		}
		parts[i] = num
		hasPart[i] = true
		numStr.Reset()
		return nil
	}

	rest := ""
	for pos, ch := range val {
		switch {
		case ch >= '0' && ch <= '9':
			numStr.WriteRune(ch)
		case ch == '.':
			if err := flush(); err != nil {
				return nil, err
			}
			i++
		default:
			rest = val[pos:]
		}
		if rest != "" {
			break
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	v := &ChocoVersion{Major: parts[0], Minor: parts[1]}
	if hasPart[2] {
		patch := parts[2]
		v.Patch = &patch
	}
	if hasPart[3] {
		build := parts[3]
		v.Build = &build
	}
	v.Pre = extractPrerelease(rest)

	return v, nil
}

// SetPatch sets the patch part.
func (v *ChocoVersion) SetPatch(patch int) {
	v.Patch = &patch
}

// SetBuild sets the build part, defaulting the patch part to 0 first when
// unset so the version stays contiguous.
func (v *ChocoVersion) SetBuild(build int) {
	if v.Patch == nil {
		v.SetPatch(0)
	}
	v.Build = &build
}

// AddFix applies a date-stamp fix version to the build part. An existing
// build below the date-stamp range is left alone; an older date stamp is
// replaced with today's.
func (v *ChocoVersion) AddFix() {
	if v.Build == nil || *v.Build >= fixVersionThreshold {
		stamp, _ := strconv.Atoi(time.Now().Format("20060102"))
		v.SetBuild(stamp)
	}
}

// patchOr returns the patch part or def when unset.
func (v *ChocoVersion) patchOr(def int) int {
	if v.Patch == nil {
		return def
	}
	return *v.Patch
}

// buildOr returns the build part or def when unset.
func (v *ChocoVersion) buildOr(def int) int {
	if v.Build == nil {
		return def
	}
	return *v.Build
}

// Equal reports whether the numeric parts of both versions match. Unset
// patch and build parts compare as zero; the pre-release tail is ignored.
func (v *ChocoVersion) Equal(other *ChocoVersion) bool {
	return v.Major == other.Major &&
		v.Minor == other.Minor &&
		v.patchOr(0) == other.patchOr(0) &&
		v.buildOr(0) == other.buildOr(0)
}

// Compare orders two Chocolatey versions. Numeric parts compare first; on a
// tie a version without a pre-release tail sorts after one with, and two
// tails compare identifier by identifier.
func (v *ChocoVersion) Compare(other *ChocoVersion) int {
	if c := intCompare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := intCompare(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := intCompare(v.patchOr(0), other.patchOr(0)); c != 0 {
		return c
	}
	if c := intCompare(v.buildOr(0), other.buildOr(0)); c != 0 {
		return c
	}
	return comparePrerelease(v.Pre, other.Pre)
}

// String renders the version in normalized Chocolatey form: numeric
// pre-release identifiers pad to four digits and attach directly to a
// preceding alphanumeric identifier.
func (v *ChocoVersion) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d", v.Major, v.Minor)
	if v.Patch != nil {
		fmt.Fprintf(&sb, ".%d", *v.Patch)
	}
	if v.Build != nil {
		fmt.Fprintf(&sb, ".%d", *v.Build)
	}

	prevAlpha := false
	for _, pre := range v.Pre {
		if pre.IsNum {
			if prevAlpha {
				fmt.Fprintf(&sb, "%04d", pre.Num)
				prevAlpha = false
			} else {
				fmt.Fprintf(&sb, "-%04d", pre.Num)
			}
		} else {
			fmt.Fprintf(&sb, "-%s", pre.Alpha)
			prevAlpha = true
		}
	}

	return sb.String()
}

func intCompare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease orders pre-release tails: an empty tail outranks any
// non-empty one, numeric identifiers rank below alphanumeric ones, and
// otherwise identifiers compare pairwise.
func comparePrerelease(a, b []Identifier) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareIdentifiers(a[i], b[i]); c != 0 {
			return c
		}
	}
	return intCompare(len(a), len(b))
}

func compareIdentifiers(a, b Identifier) int {
	switch {
	case a.IsNum && b.IsNum:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		default:
			return 0
		}
	case a.IsNum:
		return -1
	case b.IsNum:
		return 1
	default:
		return strings.Compare(a.Alpha, b.Alpha)
	}
}

const normalPre = "unstable"

// extractPrerelease normalizes a raw pre-release tail into identifiers.
// A tail that starts with bare digits gains an "unstable" label, and a
// label that follows its number is reordered in front of it.
func extractPrerelease(val string) []Identifier {
	var result []Identifier
	var current, next strings.Builder

	flushInto := func(sb *strings.Builder) {
		if id, ok := getIdentifier(sb.String()); ok {
			result = append(result, id)
		}
		sb.Reset()
	}

	for _, ch := range val {
		if ch == '+' {
			break
		}

		switch {
		case ch == '-' || ch == '.':
			flushInto(&current)
			if id, ok := getIdentifier(next.String()); ok {
				result = append(result, id)
				next.Reset()
			}
			continue
		case ch >= '0' && ch <= '9':
			if len(result) == 0 && current.Len() == 0 {
				result = append(result, AlphaIdentifier(normalPre))
			} else if strings.ContainsFunc(current.String(), func(r rune) bool { return r < '0' || r > '9' }) {
				flushInto(&current)
			}
		default:
			if current.Len() == 0 && len(result) > 1 && result[0] == AlphaIdentifier(normalPre) {
				last := result[len(result)-1]
				result = result[1 : len(result)-1]
				next.Reset()
				next.WriteString(last.String())
			} else if current.Len() > 0 && len(result) > 0 && result[0] == AlphaIdentifier(normalPre) {
				result = result[1:]
				next.Reset()
				next.WriteString(current.String())
				current.Reset()
			}
		}
		current.WriteRune(ch)
	}

	flushInto(&current)
	if id, ok := getIdentifier(next.String()); ok {
		result = append(result, id)
	}

	return result
}

// getIdentifier converts a raw chunk into an identifier. Mixed chunks merge
// their digits into a single four-digit-padded suffix ("alpha001" becomes
// "alpha0001").
func getIdentifier(value string) (Identifier, bool) {
	if value == "" {
		return Identifier{}, false
	}

	allDigits := !strings.ContainsFunc(value, func(r rune) bool { return r < '0' || r > '9' })
	if allDigits {
		if num, err := strconv.ParseUint(value, 10, 64); err == nil {
			return NumericIdentifier(num), true
		}
	}

	var vals, nums strings.Builder
	for _, ch := range value {
		if ch >= '0' && ch <= '9' {
			nums.WriteRune(ch)
		} else {
			vals.WriteRune(ch)
		}
	}

	if nums.Len() == 0 {
		return AlphaIdentifier(vals.String()), true
	}
	if num, err := strconv.ParseUint(nums.String(), 10, 32); err == nil {
		return AlphaIdentifier(fmt.Sprintf("%s%04d", vals.String(), num)), true
	}
	return AlphaIdentifier(vals.String() + nums.String()), true
}
