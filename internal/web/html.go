// SPDX-License-Identifier: MIT

package web

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"aer-cli/pkg/version"
)

// HTMLResponse holds a single html response and extracts link elements from
// the page body. Created by Client.GetHTML, not directly.
type HTMLResponse struct {
	resp *http.Response
}

// StatusCode returns the status the server answered with.
func (r *HTMLResponse) StatusCode() int {
	return r.resp.StatusCode
}

// URL returns the final url of the response after redirects.
func (r *HTMLResponse) URL() *url.URL {
	return r.resp.Request.URL
}

// Links reads the response body and extracts every anchor element on the
// page, resolved against the page url. With a non-empty pattern only links
// matching it are returned; a `version` capture group in the pattern fills
// the Version field of matching links. The returned parent link describes
// the page itself, classified by its content type header.
func (r *HTMLResponse) Links(pattern string) (Link, []Link, error) {
	defer r.resp.Body.Close()

	parent := Link{
		URL:  r.URL(),
		Type: classifyMIME(r.resp.Header.Get("Content-Type")),
	}

	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return parent, nil, fmt.Errorf("invalid link pattern: %w", err)
		}
	}

	doc, err := html.Parse(r.resp.Body)
	if err != nil {
		return parent, nil, fmt.Errorf("parsing html page: %w", err)
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := anchorLink(n, r.URL(), re); ok {
				links = append(links, link)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return parent, links, nil
}

func anchorLink(n *html.Node, parent *url.URL, re *regexp.Regexp) (Link, bool) {
	var href string
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "href") {
			href = attr.Val
			break
		}
	}
	if href == "" {
		return Link{}, false
	}

	resolved, err := resolveHref(href, parent)
	if err != nil {
		return Link{}, false
	}

	link := Link{
		URL:        resolved,
		Text:       strings.TrimSpace(nodeText(n)),
		Type:       classifyPath(resolved.Path),
		Attributes: map[string]string{},
	}

	if re != nil {
		capture := re.FindStringSubmatch(resolved.String())
		if capture == nil {
			return Link{}, false
		}
		link.Version = capturedVersion(re, capture)
	}

	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		switch key {
		case "href":
		case "title":
			link.Title = attr.Val
		default:
			link.Attributes[key] = attr.Val
		}
	}

	return link, true
}

// resolveHref joins relative references onto the parent page url; anything
// else must be an absolute url on its own.
func resolveHref(href string, parent *url.URL) (*url.URL, error) {
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, ".") || strings.HasPrefix(href, "#") {
		ref, err := url.Parse(href)
		if err != nil {
			return nil, err
		}
		return parent.ResolveReference(ref), nil
	}

	resolved, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	if !resolved.IsAbs() {
		return nil, fmt.Errorf("relative url %q without a base prefix", href)
	}
	return resolved, nil
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

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
