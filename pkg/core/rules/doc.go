// Package rules compiles declarative filter data into ordered match-and-
// replace rules.
//
// # Overview
//
// A filter definition describes its vocabulary as plain mappings: words and
// phrases ("going to" -> "gonna"), character sequences ("th" -> "d"),
// suffixes ("ing" -> "in'") and prefixes. This package turns each mapping
// into a [Set] of compiled [Rule] values that stages apply to text.
//
// Compilation is the only step that can fail. Once a Set exists, applying it
// to any string always succeeds.
//
// # Ordering
//
// [CompileWords] and [CompileChars] sort keys by descending length in runes
// so that phrases and longer sequences are tried before the shorter keys
// they contain. Keys of equal length are ordered lexicographically, which
// keeps compilation deterministic even though Go maps are unordered.
// [CompileTable] keeps the caller's order for fixed tables where order is
// part of the behavior.
//
// Each rule performs exactly one left-to-right, non-overlapping pass. Output
// produced by one rule is visible to the rules after it but never re-scanned
// by the same rule.
//
// # Pattern Engine
//
// Patterns are compiled with [github.com/dlclark/regexp2], whose \b and
// case-insensitive matching follow Unicode word semantics. Literal keys are
// always escaped; multi-word keys match any run of whitespace between words,
// so "going  to" and "going\nto" both match the key "going to".
//
// # Morphology
//
// [CompileSuffix] and [CompilePrefix] build stem-preserving rules. A suffix
// rule only fires when at least MinStem ASCII letters precede the suffix and
// the suffix ends the word; the stem is copied through verbatim. Words that
// are too short simply do not match.
package rules
