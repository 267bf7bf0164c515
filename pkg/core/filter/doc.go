// Package filter composes stages into a text filter.
//
// # Overview
//
// A [Filter] is an ordered list of stages plus optional fixed text wrapped
// around the result. It runs stages strictly in the order given and never
// reorders them:
//
//	f := filter.New([]stage.Stage{sub, chars, aug}, filter.WithSuffixText(" ☠"))
//	out := f.Transform("Hello my friend!")
//
// Filters are immutable and safe for concurrent use.
//
// # Sessions
//
// Some stages remember things between calls: augmentation counters and the
// positions of seeded generators. A [Session] holds that memory. Repeated
// calls on one session continue where the last one stopped; a new session
// starts from the beginning:
//
//	s := f.NewSession()
//	s.Transform("One.")   // counters advance
//	s.Transform("Two.")   // and keep advancing
//	s.Reset()             // back to the start
//
// [Filter.Transform] is shorthand for a one-call fresh session. Sessions are
// not safe for concurrent use; give each goroutine its own.
//
// # Assembly
//
// [Assemble] turns a [definition.Definition] into a Filter. It is the only
// place that decides stage order, following [CanonicalOrder]:
//
//  1. substitutions (phrases and words)
//  2. characters
//  3. translate
//  4. suffixes
//  5. prefixes
//  6. sentence_augmentation
//  7. script
//  8. glitch
//
// Phrases must be consolidated before single words are replaced, words
// before character-level accents, and morphology and punctuation after the
// wording is final. The glitch overlay corrupts the finished text. Getting
// this wrong does not fail loudly, it just produces wrong output, so the
// order is a fixed recipe rather than something callers arrange.
//
// The algorithmic form of a definition assembles to a single stage.
package filter
