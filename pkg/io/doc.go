// Package io reads and writes filter definitions.
//
// # Overview
//
// Definitions are stored as JSON, YAML or TOML documents sharing one schema
// (see [github.com/matzehuels/talklike/pkg/definition]). The format is
// chosen from the file extension:
//
//	.json         JSON
//	.yaml, .yml   YAML
//	.toml         TOML
//
// [Import] reads a file, validates its structure and resolves a Lua script
// referenced by path relative to the definition file. [Export] writes a
// definition back out, which is how `talklike convert` moves a filter
// between formats and how `talklike lint --fix` saves a cleaned file.
//
// Round trips preserve meaning, not layout: keys are emitted in schema
// order and map entries sorted.
package io
