// SPDX-License-Identifier: MIT

package pkgfile

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLReader reads package files stored in the YAML language.
type YAMLReader struct{}

// CanHandle reports whether path names a .aer.yml or .aer.yaml file.
func (*YAMLReader) CanHandle(path string) bool {
	return strings.HasSuffix(path, ".aer.yml") || strings.HasSuffix(path, ".aer.yaml")
}

// ReadData deserializes a YAML document into package data.
func (*YAMLReader) ReadData(r io.Reader) (*PackageData, error) {
	var raw rawPackage

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return raw.normalize()
}
