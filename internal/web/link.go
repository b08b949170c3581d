// SPDX-License-Identifier: MIT

package web

import (
	"net/url"
	"strings"

	"aer-cli/pkg/version"
)

// LinkType classifies what a link points at, either by file extension or by
// the MIME type a server reported. It can be wrong for links that were only
// seen on a page but never requested.
type LinkType int

const (
	LinkUnknown LinkType = iota
	LinkHTML
	LinkText
	LinkCSS
	LinkJSON
	LinkBinary
)

func (t LinkType) String() string {
	switch t {
	case LinkHTML:
		return "HTML"
	case LinkText:
		return "Text"
	case LinkCSS:
		return "StyleSheet"
	case LinkJSON:
		return "JSON"
	case LinkBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Link holds what is known about a single link found on a page.
type Link struct {
	// URL is the full link, resolved against the page it was found on.
	URL *url.URL
	// Title holds the html title attribute when present.
	Title string
	// Text is the trimmed inner text of the anchor.
	Text string
	// Version is filled when a link-matching pattern with a version capture
	// group matched this link.
	Version *version.Version
	// Type classifies the link by extension or reported MIME type.
	Type LinkType
	// Attributes holds any remaining anchor attributes.
	Attributes map[string]string
}

// IsBinary reports whether the link points at a binary file.
func (l Link) IsBinary() bool {
	return l.Type == LinkBinary
}

var binaryExtensions = []string{
	".zip", ".7z", ".exe", ".msi", ".tar", ".tar.gz", ".tar.bz2", ".nupkg",
}

func classifyPath(path string) LinkType {
	switch {
	case strings.HasSuffix(path, ".html"):
		return LinkHTML
	case strings.HasSuffix(path, ".json"):
		return LinkJSON
	case strings.HasSuffix(path, ".css"):
		return LinkCSS
	case strings.HasSuffix(path, ".txt"):
		return LinkText
	}
	for _, ext := range binaryExtensions {
		if strings.HasSuffix(path, ext) {
			return LinkBinary
		}
	}
	return LinkUnknown
}

var mimeTypes = map[string]LinkType{
	"text/html":                LinkHTML,
	"text/plain":               LinkText,
	"text/json":                LinkJSON,
	"application/json":         LinkJSON,
	"text/css":                 LinkCSS,
	"application/octet-stream": LinkBinary,
}

func classifyMIME(contentType string) LinkType {
	for mime, typ := range mimeTypes {
		if strings.Contains(contentType, mime) {
			return typ
		}
	}
	return LinkUnknown
}
