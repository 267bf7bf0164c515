// Package stage implements the units a filter pipeline is built from.
//
// # Overview
//
// Every stage rewrites text: it takes a string and returns a string. The
// set of stages is closed and selected once when a filter is assembled:
//
//   - [Substitution]: word and phrase replacement, optionally case preserving
//   - [Characters]: character-sequence replacement inside words (accents)
//   - [Translation]: rune-for-rune translation, like tr(1)
//   - [Suffixes] and [Prefixes]: stem-preserving morphology rules
//   - [Augmenter]: phrases inserted after punctuation, cycling with a frequency
//   - [Glitch], [Studly], [Lolcat], [Duck]: built-in algorithmic effects
//   - [Script]: a Lua function supplied by the filter author
//   - [Func]: any Go function, for programmatic filters
//
// # State
//
// Stages are immutable and safe to share between goroutines. Anything that
// changes while text flows through (augmentation counters, random generator
// positions, a Lua VM) lives in a separate state record created by
// [Stage.NewState] and passed back into every [Stage.Transform] call:
//
//	st := s.NewState()
//	out1 := s.Transform("Hello.", st)
//	out2 := s.Transform("Bye.", st) // continues counters from out1
//
// Passing a fresh state starts the sequence over. Passing nil is allowed and
// behaves like a fresh state that is discarded afterwards. State records
// must not be shared between goroutines.
//
// # Scripts
//
// A [Script] stage runs Lua 5.2 through github.com/Shopify/go-lua. Its string
// library has no pattern matching: string.find works for plain text only,
// and string.gsub, string.match and string.gmatch do not exist. Scripts use
// the replace(text, pattern, repl) helper instead, which takes the same
// regular expressions as substitution rules. byte, char, format, len, lower,
// rep, reverse, sub and upper are available as usual.
//
// Every Transform call runs under an instruction budget ([DefaultMaxSteps]).
// A script that exceeds it, like one that raises an error, leaves the text
// unchanged.
//
// # Encoding
//
// Text is expected to be UTF-8. Translation and the random effects copy
// invalid bytes through unchanged. Rule-based stages (substitutions,
// characters, suffixes, prefixes, lolcat words) match on runes, so when one
// of their rules matches, invalid bytes elsewhere in that text come out as
// U+FFFD. Text without a match is returned byte for byte.
//
// # Errors
//
// Constructors validate their configuration and return errors from
// [github.com/matzehuels/talklike/pkg/errors]. Transform never fails.
package stage
