package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/talklike/pkg/core/rules"
	"github.com/matzehuels/talklike/pkg/definition"
)

// IssueKind classifies a lint finding.
type IssueKind string

const (
	// IssueSelfMapping is a key that maps to itself.
	IssueSelfMapping IssueKind = "self_mapping"
	// IssueCaseDuplicate is a key that folds to the same pattern as
	// another key, which always matches first.
	IssueCaseDuplicate IssueKind = "case_duplicate"
	// IssueDeadAffix is a suffix or prefix whose word boundary can only
	// match in unusual positions.
	IssueDeadAffix IssueKind = "dead_affix"
	// IssueCascade is an augmentation addition that a later rule will
	// augment again.
	IssueCascade IssueKind = "cascade"
	// IssueDuplicateKey is a key repeated in the raw JSON document; only
	// the last occurrence survives decoding.
	IssueDuplicateKey IssueKind = "duplicate_key"
)

// Issue is one lint finding.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Section string    `json:"section"`
	Key     string    `json:"key"`
	Message string    `json:"message"`
	// Fixable reports whether [Fix] removes the issue.
	Fixable bool `json:"fixable"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%q]: %s", i.Section, i.Key, i.Message)
}

// Lint inspects a definition for rules that can never have an effect or
// behave surprisingly. Issues are ordered by section, then key.
func Lint(def *definition.Definition) []Issue {
	var issues []Issue
	preserveCase, _ := def.CaseOptions()

	issues = append(issues, selfMappings("substitutions", def.Substitutions)...)
	issues = append(issues, selfMappings("characters", def.Characters)...)
	if preserveCase {
		issues = append(issues, caseDuplicates("substitutions", def.Substitutions)...)
		issues = append(issues, caseDuplicates("characters", def.Characters)...)
	}

	if def.Translate != nil {
		from, to := []rune(def.Translate.From), []rune(def.Translate.To)
		for i := range min(len(from), len(to)) {
			if from[i] == to[i] {
				issues = append(issues, Issue{Kind: IssueSelfMapping, Section: "translate", Key: string(from[i]),
					Message: "translates to itself", Fixable: true})
			}
		}
	}

	suffixes := make(map[string]string, len(def.Suffixes))
	for k, r := range def.Suffixes {
		suffixes[k] = r.Replacement
	}
	issues = append(issues, selfMappings("suffixes", suffixes)...)
	issues = append(issues, caseDuplicates("suffixes", suffixes)...)
	for _, k := range slices.Sorted(maps.Keys(suffixes)) {
		if r, _ := utf8.DecodeLastRuneInString(k); k != "" && !isWordRune(r) {
			issues = append(issues, Issue{Kind: IssueDeadAffix, Section: "suffixes", Key: k,
				Message: "ends in a non-word character, so it only matches when a letter follows"})
		}
	}

	issues = append(issues, selfMappings("prefixes", def.Prefixes)...)
	issues = append(issues, caseDuplicates("prefixes", def.Prefixes)...)
	for _, k := range slices.Sorted(maps.Keys(def.Prefixes)) {
		if r, _ := utf8.DecodeRuneInString(k); k != "" && !isWordRune(r) {
			issues = append(issues, Issue{Kind: IssueDeadAffix, Section: "prefixes", Key: k,
				Message: "starts with a non-word character, so it only matches after a letter"})
		}
	}

	for i, a := range def.SentenceAugmentation {
		for j, later := range def.SentenceAugmentation[i+1:] {
			for _, add := range a.Additions {
				if later.Punctuation != "" && strings.Contains(add, later.Punctuation) {
					issues = append(issues, Issue{Kind: IssueCascade, Section: "sentence_augmentation", Key: a.Punctuation,
						Message: fmt.Sprintf("addition %q contains %q and is augmented again by rule %d", add, later.Punctuation, i+j+1)})
				}
			}
		}
	}
	return issues
}

// Fix returns a copy of def without the fixable issues Lint reports, and
// the issues it removed. def is not modified.
func Fix(def *definition.Definition) (*definition.Definition, []Issue) {
	out := *def
	out.Substitutions = maps.Clone(def.Substitutions)
	out.Characters = maps.Clone(def.Characters)
	out.Prefixes = maps.Clone(def.Prefixes)
	out.Suffixes = maps.Clone(def.Suffixes)
	if def.Translate != nil {
		tr := *def.Translate
		out.Translate = &tr
	}

	var fixed []Issue
	for _, is := range Lint(def) {
		if !is.Fixable {
			continue
		}
		switch is.Section {
		case "substitutions":
			delete(out.Substitutions, is.Key)
		case "characters":
			delete(out.Characters, is.Key)
		case "prefixes":
			delete(out.Prefixes, is.Key)
		case "suffixes":
			delete(out.Suffixes, is.Key)
		case "translate":
			out.Translate = dropTranslation(out.Translate, []rune(is.Key)[0])
		default:
			continue
		}
		fixed = append(fixed, is)
	}
	return &out, fixed
}

func dropTranslation(tr *definition.Translate, r rune) *definition.Translate {
	from, to := []rune(tr.From), []rune(tr.To)
	var nf, nt []rune
	for i := range from {
		if from[i] == r && i < len(to) && to[i] == r {
			continue
		}
		nf = append(nf, from[i])
		if i < len(to) {
			nt = append(nt, to[i])
		}
	}
	return &definition.Translate{From: string(nf), To: string(nt)}
}

func selfMappings(section string, m map[string]string) []Issue {
	var issues []Issue
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if m[k] == k {
			issues = append(issues, Issue{Kind: IssueSelfMapping, Section: section, Key: k,
				Message: "maps to itself", Fixable: true})
		}
	}
	return issues
}

// caseDuplicates reports keys that compile to the same case-insensitive
// pattern as an earlier key in application order.
func caseDuplicates(section string, m map[string]string) []Issue {
	var issues []Issue
	winners := make(map[string]string)
	for _, e := range rules.SortedEntries(m) {
		folded := strings.Join(strings.Fields(strings.ToLower(e.Key)), " ")
		if w, ok := winners[folded]; ok {
			if m[e.Key] == e.Key {
				continue // already reported as a self-mapping
			}
			issues = append(issues, Issue{Kind: IssueCaseDuplicate, Section: section, Key: e.Key,
				Message: fmt.Sprintf("never applies; %q matches the same text first", w), Fixable: true})
			continue
		}
		winners[folded] = e.Key
	}
	slices.SortFunc(issues, func(a, b Issue) int { return strings.Compare(a.Key, b.Key) })
	return issues
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// DuplicateJSONKeys scans a raw JSON document and reports every object key
// that appears more than once in the same object, as dotted paths.
func DuplicateJSONKeys(data []byte) ([]Issue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var issues []Issue
	if err := scanJSON(dec, "", &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func scanJSON(dec *json.Decoder, path string, issues *[]Issue) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		seen := make(map[string]bool)
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return err
			}
			key := kt.(string)
			if seen[key] {
				*issues = append(*issues, Issue{Kind: IssueDuplicateKey, Section: path, Key: key,
					Message: "repeated; only the last value is kept", Fixable: true})
			}
			seen[key] = true
			if err := scanJSON(dec, joinPath(path, key), issues); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			if err := scanJSON(dec, fmt.Sprintf("%s[%d]", path, i), issues); err != nil {
				return err
			}
		}
	}
	_, err = dec.Token()
	return err
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
