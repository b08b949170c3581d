// SPDX-License-Identifier: MIT

package pkgfile

import (
	"fmt"
	"io"
	"os"

	"aer-cli/internal/logging"
)

// DataReader reads and transforms a specific file format into PackageData.
type DataReader interface {
	// CanHandle decides whether this reader handles the given file,
	// usually by file extension.
	CanHandle(path string) bool
	// ReadData deserializes the content of reader into package data.
	ReadData(r io.Reader) (*PackageData, error)
}

// NoReaderError is returned when no registered reader handles a file.
type NoReaderError struct {
	Path string
}

func (e *NoReaderError) Error() string {
	return fmt.Sprintf("no reader that could handle %q was found", e.Path)
}

// LoadError wraps failures to open or read a package file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DecodeError wraps deserialization failures with the file that caused them.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Readers returns the data readers for every supported package file format.
func Readers() []DataReader {
	return []DataReader{&TOMLReader{}, &YAMLReader{}}
}

// ReadFile finds a reader that handles path and uses it to deserialize the
// file into package data.
func ReadFile(path string) (*PackageData, error) {
	logger := logging.Logger()

	for _, reader := range Readers() {
		if !reader.CanHandle(path) {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			logger.Error("Failed to open package file", "path", path, "err", err)
			return nil, &LoadError{Path: path, Err: err}
		}
		defer f.Close()

		logger.Debug("Reading package file", "path", path)
		data, err := reader.ReadData(f)
		if err != nil {
			logger.Error("Failed to decode package file", "path", path, "err", err)
			return nil, &DecodeError{Path: path, Err: err}
		}
		if err := data.Validate(); err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return data, nil
	}

	logger.Warn("No reader found for package file", "path", path)
	return nil, &NoReaderError{Path: path}
}
