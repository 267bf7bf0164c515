package io

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/matzehuels/talklike/pkg/errors"
)

// Format is a definition document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats in lookup order.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// Extensions lists every recognised file extension, in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported definition file %q (want .json, .yaml, .yml or .toml)", filepath.Base(path))
}

// FormatFromContentType maps an HTTP Content-Type to a format. Unknown or
// missing types fall back to the URL's extension.
func FormatFromContentType(contentType, fallbackPath string) (Format, error) {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "application/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	case "application/toml", "text/toml":
		return FormatTOML, nil
	}
	return FormatFromPath(fallbackPath)
}

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
}

// Ext returns the canonical file extension for f.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return "." + string(f)
}
