package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
)

// Decode parses a definition document and validates its structure.
func Decode(data []byte, format Format) (*definition.Definition, error) {
	var def definition.Definition
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &def)
	case FormatYAML:
		err = yaml.Unmarshal(data, &def)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&def)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s definition", format)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Read decodes a definition from r. Read does not close r.
func Read(r io.Reader, format Format) (*definition.Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data, format)
}

// Import reads the definition file at path. The format follows the file
// extension. A script.file reference is read relative to the definition and
// inlined into script.lua. A missing name defaults to the file stem.
func Import(path string) (*definition.Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	def, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = Stem(path)
	}
	if err := ResolveScript(def, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return def, nil
}

// ResolveScript inlines a script.file reference, resolved against dir.
// Absolute paths and paths escaping dir are rejected.
func ResolveScript(def *definition.Definition, dir string) error {
	if def.Script == nil || def.Script.File == "" || def.Script.Lua != "" {
		return nil
	}
	if err := errors.ValidatePath(def.Script.File); err != nil {
		return err
	}
	path := filepath.Join(dir, filepath.FromSlash(def.Script.File))
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", def.Script.File)
	}
	def.Script.Lua = string(src)
	return nil
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
