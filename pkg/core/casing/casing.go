// Package casing projects the capitalization of matched text onto a
// replacement.
//
// A substitution such as "hello" -> "ahoy" should read naturally whatever
// the input looked like: "Hello" becomes "Ahoy" and "HELLO" becomes "AHOY".
// [Project] classifies the original span into one of three shapes (all caps,
// leading capital, lower) and re-applies that shape to the replacement.
//
//	casing.Project("Hello", "ahoy")         // "Ahoy"
//	casing.Project("HELLO", "ahoy")         // "AHOY"
//	casing.Project("hello", "AHOY")         // "ahoy"
//	casing.Project("Going to", "gonna go")  // "Gonna go"
//
// Only the first character of a multi-word replacement is capitalized; the
// projection never title-cases each word.
package casing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Shape is the capitalization class of a span of text.
type Shape int

const (
	// Lower covers everything that is neither Upper nor Capitalized,
	// including spans without any letters.
	Lower Shape = iota
	// Capitalized spans start with an uppercase character.
	Capitalized
	// Upper spans contain at least one cased letter and no lowercase ones.
	Upper
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case Upper:
		return "upper"
	case Capitalized:
		return "capitalized"
	default:
		return "lower"
	}
}

// Classify returns the capitalization shape of s.
func Classify(s string) Shape {
	if isUpper(s) {
		return Upper
	}
	if first, _ := utf8.DecodeRuneInString(s); unicode.IsUpper(first) {
		return Capitalized
	}
	return Lower
}

// Apply re-cases replacement to the given shape.
func (s Shape) Apply(replacement string) string {
	switch s {
	case Upper:
		return strings.ToUpper(replacement)
	case Capitalized:
		first, n := utf8.DecodeRuneInString(replacement)
		return string(unicode.ToUpper(first)) + strings.ToLower(replacement[n:])
	default:
		return strings.ToLower(replacement)
	}
}

// Project returns replacement re-cased to match the capitalization of
// original. If either string is empty, replacement is returned unchanged.
func Project(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	return Classify(original).Apply(replacement)
}

// isUpper reports whether s has at least one cased letter and no lowercase
// letters. Digits and punctuation do not affect the result, so "A1" and
// "OK!" are uppercase while "42" is not.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			cased = true
		}
	}
	return cased
}
