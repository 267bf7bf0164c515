package catalog

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
	tio "github.com/matzehuels/talklike/pkg/io"
)

// Entry describes one filter available from a source.
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	// Error is set when the definition exists but does not load.
	Error string `json:"error,omitempty"`
}

// Source lists and loads filter definitions.
type Source interface {
	// Name identifies the source in listings and logs.
	Name() string
	// List returns the available filters sorted by id.
	List(ctx context.Context) ([]Entry, error)
	// Load returns the definition for id. An unknown id yields an error
	// with code FILTER_NOT_FOUND.
	Load(ctx context.Context, id string) (*definition.Definition, error)
}

// NotFound returns the error sources use for an unknown id.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeFilterNotFound, "filter %q not found", id)
}

// NormalizeID strips a known definition extension: "disco.json" and
// "disco" both name the filter "disco".
func NormalizeID(name string) string {
	ext := filepath.Ext(name)
	if slices.Contains(tio.Extensions, strings.ToLower(ext)) {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// DisplayName formats an id for humans. Underscores separate words, each
// word is title-cased, and a word that is a number or a decade ("1950s")
// is put in parentheses.
func DisplayName(id string) string {
	title := cases.Title(language.English)
	parts := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, p := range parts {
		if isEra(p) {
			parts[i] = "(" + p + ")"
		} else {
			parts[i] = title.String(p)
		}
	}
	return strings.Join(parts, " ")
}

func isEra(word string) bool {
	digits := strings.TrimSuffix(word, "s")
	return digits != "" && !strings.ContainsFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
}

func entryFor(id, source string, def *definition.Definition, err error) Entry {
	e := Entry{ID: id, Name: DisplayName(id), Source: source}
	if err != nil {
		e.Error = errors.UserMessage(err)
		return e
	}
	e.Description = def.Description
	return e
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })
}
