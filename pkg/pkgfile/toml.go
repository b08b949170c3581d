// SPDX-License-Identifier: MIT

package pkgfile

import (
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TOMLReader reads package files stored in the TOML language.
type TOMLReader struct{}

// CanHandle reports whether path names a .aer.toml file.
func (*TOMLReader) CanHandle(path string) bool {
	return strings.HasSuffix(path, ".aer.toml")
}

// ReadData deserializes a TOML document into package data.
func (*TOMLReader) ReadData(r io.Reader) (*PackageData, error) {
	var raw rawPackage

	dec := toml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return raw.normalize()
}
