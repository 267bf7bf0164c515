package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
)

// Encode serializes def in the given format.
func Encode(def *definition.Definition, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, def, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes def to w.
func Write(w io.Writer, def *definition.Definition, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(def); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	return nil
}

// Export writes def to path, choosing the format from its extension.
func Export(def *definition.Definition, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, def, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
