// SPDX-License-Identifier: MIT

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const linksPage = `<!DOCTYPE html>
<html><body>
<a href="/releases/download/v1.0.6/setup-1.0.6.exe" title="Download" rel="nofollow">Setup v1.0.6 for Windows</a>
<a href="./notes.html">Release notes</a>
<a href="https://example.org/style.css">Style</a>
<a href="">empty</a>
<a>no href</a>
<a href="https://example.org/archive.nupkg">archive.nupkg</a>
</body></html>`

func TestGetHTMLLinks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, linksPage)
	}))
	defer srv.Close()

	resp, err := NewClient().GetHTML(context.Background(), srv.URL+"/releases/tag/v1.0.6")
	if err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}

	parent, links, err := resp.Links("")
	if err != nil {
		t.Fatalf("Links() error = %v", err)
	}

	if parent.Type != LinkHTML {
		t.Errorf("parent.Type = %v, want %v", parent.Type, LinkHTML)
	}
	if len(links) != 4 {
		t.Fatalf("len(links) = %d, want 4", len(links))
	}

	first := links[0]
	if got := first.URL.String(); got != srv.URL+"/releases/download/v1.0.6/setup-1.0.6.exe" {
		t.Errorf("links[0].URL = %q", got)
	}
	if first.Type != LinkBinary {
		t.Errorf("links[0].Type = %v, want %v", first.Type, LinkBinary)
	}
	if first.Title != "Download" {
		t.Errorf("links[0].Title = %q", first.Title)
	}
	if first.Text != "Setup v1.0.6 for Windows" {
		t.Errorf("links[0].Text = %q", first.Text)
	}
	if first.Attributes["rel"] != "nofollow" {
		t.Errorf("links[0].Attributes = %v", first.Attributes)
	}

	if links[1].Type != LinkHTML {
		t.Errorf("links[1].Type = %v, want %v", links[1].Type, LinkHTML)
	}
	if links[2].Type != LinkCSS {
		t.Errorf("links[2].Type = %v, want %v", links[2].Type, LinkCSS)
	}
	if links[3].Type != LinkBinary {
		t.Errorf("links[3].Type = %v, want %v", links[3].Type, LinkBinary)
	}
}

func TestLinksFilterByPatternAndCaptureVersion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, linksPage)
	}))
	defer srv.Close()

	resp, err := NewClient().GetHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}

	_, links, err := resp.Links(`/v\.?(?P<version>[\d\.]+)/.*\.exe$`)
	if err != nil {
		t.Fatalf("Links() error = %v", err)
	}

	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	if links[0].Version == nil {
		t.Fatal("links[0].Version = nil, want parsed version")
	}
	if got := links[0].Version.String(); got != "1.0.6" {
		t.Errorf("Version = %q, want %q", got, "1.0.6")
	}
	if !links[0].IsBinary() {
		t.Error("IsBinary() = false, want true")
	}
}

func TestLinksInvalidPattern(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	resp, err := NewClient().GetHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}

	if _, _, err := resp.Links("(unclosed"); err == nil {
		t.Error("Links() expected error for invalid pattern")
	}
}

func TestClientUserAgent(t *testing.T) {
	t.Parallel()

	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	client := NewClient()
	if _, err := client.GetHTML(context.Background(), srv.URL); err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}
	if got != defaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", got, defaultUserAgent)
	}

	client.SetUserAgent("wormie-bot/2.1")
	if _, err := client.GetHTML(context.Background(), srv.URL); err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}
	if got != "wormie-bot/2.1" {
		t.Errorf("User-Agent = %q, want %q", got, "wormie-bot/2.1")
	}

	client.SetUserAgent("")
	if _, err := client.GetHTML(context.Background(), srv.URL); err != nil {
		t.Fatalf("GetHTML() error = %v", err)
	}
	if got != "wormie-bot/2.1" {
		t.Errorf("User-Agent = %q after empty override, want %q", got, "wormie-bot/2.1")
	}
}

func TestGetHTMLStatusError(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := NewClient().GetHTML(context.Background(), srv.URL)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Errorf("GetHTML() error = %v, want StatusError", err)
		} else if statusErr.StatusCode != status {
			t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, status)
		}
		srv.Close()
	}
}

func TestGetBinaryDownload(t *testing.T) {
	t.Parallel()

	const content = "binary file content"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="setup-1.0.0.exe"`)
		fmt.Fprint(w, content)
	}))
	defer srv.Close()

	resp, err := NewClient().GetBinary(context.Background(), srv.URL+"/download", "", "")
	if err != nil {
		t.Fatalf("GetBinary() error = %v", err)
	}

	workDir := t.TempDir()
	resp.SetWorkDir(workDir)

	path, err := resp.Download("")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if path != filepath.Join(workDir, "setup-1.0.0.exe") {
		t.Errorf("Download() = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("file content = %q, want %q", data, content)
	}
}

func TestGetBinaryNotModified(t *testing.T) {
	t.Parallel()

	const etag = "e3d41332a09dd059961efade340c12da"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"`+etag+`"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		fmt.Fprint(w, "content")
	}))
	defer srv.Close()

	resp, err := NewClient().GetBinary(context.Background(), srv.URL, etag, "")
	if err != nil {
		t.Fatalf("GetBinary() error = %v", err)
	}
	if !resp.UpToDate() {
		t.Fatal("UpToDate() = false, want true")
	}
	if _, err := resp.Download(""); !errors.Is(err, ErrUpToDate) {
		t.Errorf("Download() error = %v, want ErrUpToDate", err)
	}
}

func TestFileNameFromDisposition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		disposition string
		want        string
	}{
		{"attachment; filename=Cake.Recipe.2.0.0.nupkg", "Cake.Recipe.2.0.0.nupkg"},
		{`attachment; filename="Cake.nupkg"`, "Cake.nupkg"},
		{"attachment; filename=Test.exe; name=test", "Test.exe"},
		{`attachment; filename=  "  Test.exe  "  ; name=test`, "Test.exe"},
		{"attachment", ""},
		{"inline; name=field-name", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := fileNameFromDisposition(tt.disposition); got != tt.want {
			t.Errorf("fileNameFromDisposition(%q) = %q, want %q", tt.disposition, got, tt.want)
		}
	}
}

func TestFileNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/misc/wget/1.21.1/32/wget.exe", "wget.exe"},
		{"/releases/download/1.3.1/ClementineSetup-1.3.1.exe", "ClementineSetup-1.3.1.exe"},
		{"/projects/codeblocks/files/Binaries/20.03/Windows/codeblocks-20.03-setup.exe/download", "codeblocks-20.03-setup.exe"},
		{"/downloads/binaries/", ""},
	}

	for _, tt := range tests {
		if got := fileNameFromURL(tt.path); got != tt.want {
			t.Errorf("fileNameFromURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestClassifyPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want LinkType
	}{
		{"/page.html", LinkHTML},
		{"/data.json", LinkJSON},
		{"/style.css", LinkCSS},
		{"/readme.txt", LinkText},
		{"/pkg.zip", LinkBinary},
		{"/pkg.tar.gz", LinkBinary},
		{"/pkg.nupkg", LinkBinary},
		{"/download", LinkUnknown},
	}

	for _, tt := range tests {
		if got := classifyPath(tt.path); got != tt.want {
			t.Errorf("classifyPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
