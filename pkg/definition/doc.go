// Package definition describes filters as data.
//
// # Overview
//
// A filter definition is a small document, usually JSON, that lists the
// vocabulary of an accent or dialect. No code is needed to add a new filter:
//
//	{
//	  "name": "Pirate",
//	  "substitutions": {"hello": "ahoy", "friend": "matey", "my": "me"},
//	  "characters": {"ing": "in'"},
//	  "sentence_augmentation": [
//	    {"punctuation": "!", "additions": [" Arrr!", " Shiver me timbers!"], "frequency": 2}
//	  ],
//	  "suffix_text": " ☠"
//	}
//
// The same schema can be written as YAML or TOML; see
// [github.com/matzehuels/talklike/pkg/io] for reading and writing files.
//
// # Keys
//
// Data-driven definitions may use any combination of:
//
//   - substitutions: words and phrases, matched on word boundaries
//   - characters: character sequences, matched anywhere
//   - translate: {from, to} rune-for-rune translation
//   - suffixes: suffix -> replacement, or suffix -> {replacement, min_stem}
//   - prefixes: prefix -> replacement
//   - sentence_augmentation: [{punctuation, additions, frequency}]
//   - script: {lua} or {file}, a Lua transform(text) function
//   - glitch: percentage, or {percentage, seed}; corrupts the final output
//   - preserve_case, word_boundary: matching options, both default true
//   - prefix_text, suffix_text: fixed text wrapped around the result
//
// At least one transformation key must be present. Keys are always applied
// in the order listed above, whatever order the document uses.
//
// # Algorithmic Filters
//
// Built-in effects are selected with the alternate form:
//
//	{"type": "algorithmic", "module": "glitch", "params": {"percentage": 35, "seed": 7}}
//
// Known modules are glitch, studly, lolcat and duck.
//
// # Validation
//
// [Definition.Validate] checks structure only: known modules, positive
// frequencies, non-empty additions and percentages within range. Pattern
// problems surface when the definition is assembled into a filter.
package definition
