// SPDX-License-Identifier: MIT

package web

import (
	"bufio"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"aer-cli/internal/logging"
	"aer-cli/internal/platform"
)

// ErrUpToDate is returned when trying to download a response the server
// already reported as not modified.
var ErrUpToDate = errors.New("the remote file has not changed")

// BinaryResponse holds the response for a remote binary file and downloads
// it into a work directory. Created by Client.GetBinary, not directly.
type BinaryResponse struct {
	resp     *http.Response
	rawURL   string
	workDir  string
	upToDate bool
}

// UpToDate reports whether the server answered not modified for the etag or
// last-modified value sent with the request.
func (r *BinaryResponse) UpToDate() bool {
	return r.upToDate
}

// StatusCode returns the status the server answered with.
func (r *BinaryResponse) StatusCode() int {
	return r.resp.StatusCode
}

// ETag returns the entity tag the server sent, if any.
func (r *BinaryResponse) ETag() string {
	return strings.Trim(r.resp.Header.Get("ETag"), `"`)
}

// LastModified returns the last modified header the server sent, if any.
func (r *BinaryResponse) LastModified() string {
	return r.resp.Header.Get("Last-Modified")
}

// SetWorkDir sets the directory downloaded files are written to. Without it
// the current directory of the program is used, so it should always be set.
func (r *BinaryResponse) SetWorkDir(dir string) {
	r.workDir = dir
}

// FileName resolves the name of the remote file from the content disposition
// header, or failing that from the last url path segment carrying a file
// extension. The name is sanitized for Windows before it is returned.
// Returns an empty string when neither source yields a usable name.
func (r *BinaryResponse) FileName() string {
	if name := platform.SafeFileName(fileNameFromDisposition(r.resp.Header.Get("Content-Disposition"))); name != "" {
		return name
	}
	return platform.SafeFileName(fileNameFromURL(r.resp.Request.URL.Path))
}

// Download writes the response body to output inside the work directory,
// resolving the file name from the response when output is empty. Returns
// the path of the written file.
func (r *BinaryResponse) Download(output string) (string, error) {
	if r.upToDate {
		return "", ErrUpToDate
	}
	defer r.resp.Body.Close()

	if output == "" {
		output = r.FileName()
		if output == "" {
			return "", errors.New("unable to resolve a file name for the download")
		}
	}
	target := filepath.Join(r.workDir, output)

	logger := logging.Logger()
	logger.Info("Downloading file", "url", r.rawURL, "target", target)

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	if _, err := io.Copy(writer, r.resp.Body); err != nil {
		logger.Warn("Failed to download file", "url", r.rawURL, "err", err)
		return "", err
	}
	if err := writer.Flush(); err != nil {
		return "", err
	}

	logger.Info("Successfully downloaded file", "target", target)
	return target, nil
}

func fileNameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return name
		}
	}

	// Servers in the wild send dispositions the mime package rejects, like
	// unquoted names with spaces around them.
	idx := strings.Index(disposition, "filename")
	if idx < 0 {
		return ""
	}
	rest := disposition[idx+len("filename"):]
	if eq := strings.IndexByte(rest, '='); eq >= 0 {
		rest = rest[eq+1:]
	} else {
		return ""
	}
	rest = strings.TrimLeft(rest, ` "=`)
	if end := strings.IndexAny(rest, `";`); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// fileNameFromURL returns the last path segment that looks like a file
// name. Download portals often append a trailing action segment, so every
// segment is considered, not just the final one.
func fileNameFromURL(urlPath string) string {
	var name string
	for _, segment := range strings.Split(urlPath, "/") {
		if segment == "" {
			continue
		}
		if ext := path.Ext(segment); ext != "" && ext != "." {
			name = segment
		}
	}
	return name
}
