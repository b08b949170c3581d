// SPDX-License-Identifier: MIT

// Package platform holds cross-platform file naming rules. Package archives
// are consumed on Windows even when aer runs elsewhere, so downloaded file
// names have to be valid there.
package platform

import "strings"

// windowsReservedNames are base file names the Windows operating system
// reserves for devices, regardless of extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name, ignoring any extension and
// letter case, is reserved by Windows.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.IndexByte(upper, '.'); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// invalidFileNameChars are characters Windows does not allow in file names.
// Slashes are included so a name can never escape its directory.
const invalidFileNameChars = `<>:"/\|?*`

// SafeFileName replaces characters in name that are not valid in a Windows
// file name with underscores and trims trailing dots and spaces, which
// Windows strips silently. An empty or reserved result yields "".
func SafeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(invalidFileNameChars, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.TrimRight(b.String(), ". ")
	if cleaned == "" || IsWindowsReservedName(cleaned) {
		return ""
	}
	return cleaned
}
