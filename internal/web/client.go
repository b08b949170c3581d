// SPDX-License-Identifier: MIT

package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aer-cli/internal/logging"
)

// defaultUserAgent is sent when no user agent has been configured.
const defaultUserAgent = "aer/1.0"

const (
	acceptHTML   = "text/html; charset=UTF-8"
	acceptBinary = "application/octet-stream"
)

// StatusError is returned when a server answers with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// Client requests remote pages and binary files.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient builds a client with the shared request headers set.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		userAgent:  defaultUserAgent,
	}
}

// SetUserAgent overrides the User-Agent header sent with every request.
// An empty value keeps the default.
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US, en;q=0.8, *;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	return req, nil
}

// GetHTML requests the page at rawURL without downloading any linked
// content. The returned response extracts the links found on the page.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (*HTMLResponse, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHTML)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	logging.Logger().Debug("The web server responded", "status", resp.Status, "url", rawURL)
	return &HTMLResponse{resp: resp}, nil
}

// GetBinary requests the binary file at rawURL without downloading it. When
// an etag or last-modified value from an earlier request is given and the
// server answers not modified, the returned response reports UpToDate and
// carries no body.
func (c *Client) GetBinary(ctx context.Context, rawURL, etag, lastModified string) (*BinaryResponse, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptBinary)
	if etag != "" {
		req.Header.Set("If-None-Match", fmt.Sprintf("%q", strings.Trim(etag, `"`)))
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		logging.Logger().Info("The remote file is up to date", "url", rawURL)
		return &BinaryResponse{resp: resp, rawURL: rawURL, upToDate: true}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	logging.Logger().Debug("The web server responded", "status", resp.Status, "url", rawURL)
	return &BinaryResponse{resp: resp, rawURL: rawURL}, nil
}
