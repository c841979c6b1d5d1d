package loader

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Format identifies the encoding of an input document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(ErrUnsupportedFormat, "%s", path),
		"use a .json, .yaml, .yml or .cue file")
}
