package rules

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/matzehuels/talklike/pkg/core/casing"
	"github.com/matzehuels/talklike/pkg/errors"
)

// DefaultMinStem is the minimum number of letters a suffix rule requires
// before the suffix.
const DefaultMinStem = 2

// Options controls how word and character mappings are compiled.
type Options struct {
	// WordBoundary anchors each key with \b on both sides.
	WordBoundary bool
	// PreserveCase matches case-insensitively and re-cases the replacement
	// to the shape of the matched text.
	PreserveCase bool
	// FoldCase matches case-insensitively but emits the replacement as
	// given. Ignored when PreserveCase is set.
	FoldCase bool
}

// DefaultOptions returns the options used when a definition leaves them
// unset: word boundaries on, case preserved.
func DefaultOptions() Options {
	return Options{WordBoundary: true, PreserveCase: true}
}

// Entry is one key/replacement pair of a mapping.
type Entry struct {
	Key         string
	Replacement string
}

// Rule is a compiled matcher and its replacer. Rules are immutable.
type Rule struct {
	Key         string
	Replacement string

	re      *regexp2.Regexp
	replace regexp2.MatchEvaluator
}

// Pattern returns the compiled regular expression source.
func (r Rule) Pattern() string {
	if r.re == nil {
		return ""
	}
	return r.re.String()
}

// Apply runs one replacement pass over text.
func (r Rule) Apply(text string) string {
	if r.re == nil || text == "" {
		return text
	}
	out, err := r.re.ReplaceFunc(text, r.replace, -1, -1)
	if err != nil {
		// Only a match timeout can fail here and rules never set one.
		return text
	}
	return out
}

// Set is an ordered list of rules applied one after another.
type Set []Rule

// Apply runs every rule over text in order.
func (s Set) Apply(text string) string {
	for _, r := range s {
		text = r.Apply(text)
	}
	return text
}

// Keys returns the rule keys in application order.
func (s Set) Keys() []string {
	keys := make([]string, len(s))
	for i, r := range s {
		keys[i] = r.Key
	}
	return keys
}

// SortedEntries returns the mapping as entries ordered longest key first,
// ties broken by ascending key.
func SortedEntries(mapping map[string]string) []Entry {
	entries := make([]Entry, 0, len(mapping))
	for k, v := range mapping {
		entries = append(entries, Entry{Key: k, Replacement: v})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		la, lb := utf8.RuneCountInString(a.Key), utf8.RuneCountInString(b.Key)
		if la != lb {
			return cmp.Compare(lb, la)
		}
		return strings.Compare(a.Key, b.Key)
	})
	return entries
}

// CompileWords compiles a word and phrase mapping.
func CompileWords(mapping map[string]string, opts Options) (Set, error) {
	return CompileTable(SortedEntries(mapping), opts)
}

// CompileChars compiles a character-sequence mapping. Character rules never
// anchor on word boundaries and may match inside words.
func CompileChars(mapping map[string]string, preserveCase bool) (Set, error) {
	return CompileTable(SortedEntries(mapping), Options{PreserveCase: preserveCase})
}

// CompileTable compiles entries in the order given.
func CompileTable(entries []Entry, opts Options) (Set, error) {
	set := make(Set, 0, len(entries))
	for _, e := range entries {
		r, err := compileLiteral(e, opts)
		if err != nil {
			return nil, err
		}
		set = append(set, r)
	}
	return set, nil
}

func compileLiteral(e Entry, opts Options) (Rule, error) {
	words := strings.Fields(e.Key)
	if len(words) == 0 {
		return Rule{}, errors.Pattern(nil, "empty key in mapping (replacement %q)", e.Replacement)
	}

	var pattern string
	if strings.ContainsFunc(e.Key, unicode.IsSpace) {
		escaped := make([]string, len(words))
		for i, w := range words {
			escaped[i] = regexp2.Escape(w)
		}
		pattern = strings.Join(escaped, `\s+`)
	} else {
		pattern = regexp2.Escape(e.Key)
	}
	if opts.WordBoundary {
		pattern = `\b` + pattern + `\b`
	}

	flags := regexp2.None
	if opts.PreserveCase || opts.FoldCase {
		flags |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, flags)
	if err != nil {
		return Rule{}, errors.Pattern(err, "compile %q", e.Key)
	}

	replacement := e.Replacement
	var replace regexp2.MatchEvaluator
	if opts.PreserveCase {
		replace = func(m regexp2.Match) string {
			return casing.Project(m.String(), replacement)
		}
	} else {
		replace = func(regexp2.Match) string { return replacement }
	}
	return Rule{Key: e.Key, Replacement: e.Replacement, re: re, replace: replace}, nil
}

// CompileSuffix compiles a suffix rule: at least minStem letters, then the
// literal suffix, then the end of the word. The stem is kept and the suffix
// is swapped for replacement.
func CompileSuffix(suffix, replacement string, minStem int) (Rule, error) {
	if suffix == "" {
		return Rule{}, errors.Pattern(nil, "empty suffix (replacement %q)", replacement)
	}
	if minStem < 1 {
		return Rule{}, errors.Pattern(nil, "suffix %q: min_stem must be at least 1, got %d", suffix, minStem)
	}
	pattern := `([a-zA-Z]{` + strconv.Itoa(minStem) + `,})` + regexp2.Escape(suffix) + `\b`
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return Rule{}, errors.Pattern(err, "compile suffix %q", suffix)
	}
	return Rule{
		Key:         suffix,
		Replacement: replacement,
		re:          re,
		replace: func(m regexp2.Match) string {
			return m.GroupByNumber(1).String() + replacement
		},
	}, nil
}

// CompilePrefix compiles a prefix rule: a word start, the literal prefix,
// then one or more letters which are kept after replacement.
func CompilePrefix(prefix, replacement string) (Rule, error) {
	if prefix == "" {
		return Rule{}, errors.Pattern(nil, "empty prefix (replacement %q)", replacement)
	}
	re, err := regexp2.Compile(`\b`+regexp2.Escape(prefix)+`([a-zA-Z]+)`, regexp2.IgnoreCase)
	if err != nil {
		return Rule{}, errors.Pattern(err, "compile prefix %q", prefix)
	}
	return Rule{
		Key:         prefix,
		Replacement: replacement,
		re:          re,
		replace: func(m regexp2.Match) string {
			return replacement + m.GroupByNumber(1).String()
		},
	}, nil
}
