// SPDX-License-Identifier: MIT

package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"aer-cli/internal/runner"
	"aer-cli/internal/web"
	"aer-cli/pkg/pkgfile"
)

func mustLink(t *testing.T, rawURL string) web.Link {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	return web.Link{URL: u}
}

func TestMatchArchLinks(t *testing.T) {
	t.Parallel()

	links := []web.Link{
		mustLink(t, "https://example.org/files/app-1.2.0-x86.zip"),
		mustLink(t, "https://example.org/files/app-1.2.0-x64.zip"),
		mustLink(t, "https://example.org/files/app-1.3.0-x86.zip"),
		mustLink(t, "https://example.org/files/app-1.2.0.nupkg"),
	}

	arch, err := matchArchLinks(links, map[string]string{
		"arch32": `app-(?P<version>[\d\.]+)-x86\.zip$`,
		"arch64": `app-(?P<version>[\d\.]+)-x64\.zip$`,
		"extras": `\.nupkg$`,
	})
	if err != nil {
		t.Fatalf("matchArchLinks() error = %v", err)
	}

	if arch.Arch32 == nil || arch.Arch32.URL.String() != "https://example.org/files/app-1.2.0-x86.zip" {
		t.Errorf("Arch32 = %+v, want first x86 match", arch.Arch32)
	}
	if arch.Arch64 == nil {
		t.Fatal("Arch64 = nil, want match")
	}
	if arch.Arch64.Version == nil || arch.Arch64.Version.String() != "1.2.0" {
		t.Errorf("Arch64.Version = %v, want 1.2.0", arch.Arch64.Version)
	}
	if len(arch.Others) != 1 {
		t.Errorf("len(Others) = %d, want 1", len(arch.Others))
	}
	if got := arch.Version(); got == nil || got.String() != "1.2.0" {
		t.Errorf("Version() = %v, want 1.2.0", got)
	}
}

func TestMatchArchLinksPrefersBinary(t *testing.T) {
	t.Parallel()

	landing := mustLink(t, "https://example.org/app/1.2.0/x64/")
	archive := mustLink(t, "https://example.org/app/app-1.2.0-x64.zip")
	archive.Type = web.LinkBinary

	arch, err := matchArchLinks([]web.Link{landing, archive}, map[string]string{
		"arch64": `(?P<version>[\d\.]+).*x64`,
	})
	if err != nil {
		t.Fatalf("matchArchLinks() error = %v", err)
	}

	if arch.Arch64 == nil {
		t.Fatal("Arch64 = nil, want the binary link")
	}
	if got := arch.Arch64.URL.String(); got != archive.URL.String() {
		t.Errorf("Arch64.URL = %q, want the binary link over the landing page", got)
	}
}

func TestMatchArchLinksInvalidRegex(t *testing.T) {
	t.Parallel()

	_, err := matchArchLinks(nil, map[string]string{"arch32": "(unclosed"})
	if err == nil {
		t.Error("matchArchLinks() expected error for invalid regex")
	}
}

func TestResolveLinksNoParseURL(t *testing.T) {
	t.Parallel()

	_, err := resolveLinks(context.Background(), web.NewClient(), nil)
	if !errors.Is(err, ErrNoParseURL) {
		t.Errorf("resolveLinks() error = %v, want ErrNoParseURL", err)
	}
}

func TestResolveLinksTwoHop(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
<a href="/releases/tag/1.2.0">app 1.2.0</a>
<a href="/about.html">about</a>
</body></html>`)
	})
	mux.HandleFunc("/releases/tag/1.2.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
<a href="/download/app-1.2.0-x64.zip">64 bit</a>
<a href="/download/app-1.2.0-x86.zip">32 bit</a>
</body></html>`)
	})

	links, err := resolveLinks(context.Background(), web.NewClient(), &pkgfile.ParseURL{
		URL:   srv.URL + "/releases",
		Regex: `/tag/(?P<version>[\d\.]+)$`,
	})
	if err != nil {
		t.Fatalf("resolveLinks() error = %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0].URL.Path != "/download/app-1.2.0-x64.zip" {
		t.Errorf("links[0] = %q", links[0].URL)
	}
}

func TestResolveLinksPlainURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/download/app.zip">app</a></body></html>`)
	}))
	defer srv.Close()

	links, err := resolveLinks(context.Background(), web.NewClient(), &pkgfile.ParseURL{URL: srv.URL})
	if err != nil {
		t.Fatalf("resolveLinks() error = %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
}

// echoRunner pretends to run any script and reports back changed params.
type echoRunner struct {
	result *runner.Result
	ran    bool
}

func (*echoRunner) Name() string       { return "echo" }
func (*echoRunner) CanRun(string) bool { return true }
func (*echoRunner) Available() bool    { return true }
func (r *echoRunner) Run(*runner.ExecContext) *runner.Result {
	r.ran = true
	return r.result
}

func writePackageFile(t *testing.T, dir, parseURL string) string {
	t.Helper()
	doc := fmt.Sprintf(`[metadata]
id = "test-package"
project_url = "https://some-page.org"
summary = "A summary"
license = "MIT"

[updater.chocolatey]
parse_url = %q

[updater.chocolatey.regexes]
arch64 = 'x64\.zip$'
`, parseURL)
	path := filepath.Join(dir, "test-package.aer.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunAppliesScriptParams(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/download/app-x64.zip">64 bit</a></body></html>`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := writePackageFile(t, dir, srv.URL)

	script := filepath.Join(dir, "update.sh")
	if err := os.WriteFile(script, []byte("true\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	echo := &echoRunner{result: &runner.Result{
		Params: runner.Params{
			"summary":     "Updated summary",
			"project_url": "https://new-page.org",
		},
	}}
	registry := runner.NewRegistry()
	registry.Register(echo)

	result, err := Run(context.Background(), path, Options{Registry: registry})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !echo.ran {
		t.Error("update script was not dispatched")
	}
	if !result.ScriptRan {
		t.Error("ScriptRan = false, want true")
	}
	if result.Data.Metadata.Summary != "Updated summary" {
		t.Errorf("Summary = %q", result.Data.Metadata.Summary)
	}
	if result.Data.Metadata.ProjectURL != "https://new-page.org" {
		t.Errorf("ProjectURL = %q", result.Data.Metadata.ProjectURL)
	}
	if result.Data.Metadata.ID != "test-package" {
		t.Errorf("ID = %q, want unchanged", result.Data.Metadata.ID)
	}
	if result.Links.Arch64 == nil {
		t.Error("Arch64 = nil, want matched link")
	}
}

func TestRunScriptFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/download/app-x64.zip">64 bit</a></body></html>`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := writePackageFile(t, dir, srv.URL)
	script := filepath.Join(dir, "update.sh")
	if err := os.WriteFile(script, []byte("exit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	registry := runner.NewRegistry()
	registry.Register(&echoRunner{result: runner.NewExitCodeResult(3)})

	_, err := Run(context.Background(), path, Options{Registry: registry})

	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("Run() error = %v, want ScriptError", err)
	}
	if scriptErr.Code != 3 {
		t.Errorf("Code = %d, want 3", scriptErr.Code)
	}
}

func TestRunNoUpdater(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "plain.aer.toml")
	if err := os.WriteFile(path, []byte("[metadata]\nid = \"plain\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), path, Options{})
	if !errors.Is(err, ErrNoUpdater) {
		t.Errorf("Run() error = %v, want ErrNoUpdater", err)
	}
}

func TestRunDownloadsArchFiles(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/download/app-x64.zip">64 bit</a></body></html>`)
	})
	mux.HandleFunc("/download/app-x64.zip", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "zip bytes")
	})

	dir := t.TempDir()
	path := writePackageFile(t, dir, srv.URL)
	workDir := t.TempDir()

	registry := runner.NewRegistry()
	registry.Register(&echoRunner{result: runner.NewExitCodeResult(0)})

	result, err := Run(context.Background(), path, Options{
		WorkDir:  workDir,
		Download: true,
		Registry: registry,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Downloaded) != 1 {
		t.Fatalf("Downloaded = %v, want one file", result.Downloaded)
	}
	if result.Downloaded[0] != filepath.Join(workDir, "app-x64.zip") {
		t.Errorf("Downloaded[0] = %q", result.Downloaded[0])
	}
	if _, err := os.Stat(result.Downloaded[0]); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

func TestRunDownloadsToDownloadDir(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/download/app-x64.zip">64 bit</a></body></html>`)
	})
	mux.HandleFunc("/download/app-x64.zip", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "zip bytes")
	})

	dir := t.TempDir()
	path := writePackageFile(t, dir, srv.URL)
	workDir := t.TempDir()
	downloadDir := t.TempDir()

	registry := runner.NewRegistry()
	registry.Register(&echoRunner{result: runner.NewExitCodeResult(0)})

	result, err := Run(context.Background(), path, Options{
		WorkDir:     workDir,
		DownloadDir: downloadDir,
		Download:    true,
		Registry:    registry,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Downloaded) != 1 {
		t.Fatalf("Downloaded = %v, want one file", result.Downloaded)
	}
	if result.Downloaded[0] != filepath.Join(downloadDir, "app-x64.zip") {
		t.Errorf("Downloaded[0] = %q, want it under the download dir", result.Downloaded[0])
	}
}
