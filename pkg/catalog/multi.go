package catalog

import (
	"context"

	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
)

// MultiSource consults several sources in order.
type MultiSource struct {
	sources []Source
}

// NewMultiSource combines sources. Nil sources are dropped.
func NewMultiSource(sources ...Source) *MultiSource {
	m := &MultiSource{}
	for _, s := range sources {
		if s != nil {
			m.sources = append(m.sources, s)
		}
	}
	return m
}

// Sources returns the combined sources in lookup order.
func (m *MultiSource) Sources() []Source { return m.sources }

func (m *MultiSource) Name() string { return "multi" }

// Load returns the definition from the first source that has id. Errors
// other than not-found stop the search, so a broken local file is
// reported rather than silently replaced by a built-in.
func (m *MultiSource) Load(ctx context.Context, id string) (*definition.Definition, error) {
	for _, s := range m.sources {
		def, err := s.Load(ctx, id)
		if err == nil {
			return def, nil
		}
		if !errors.Is(err, errors.ErrCodeFilterNotFound) {
			return nil, err
		}
	}
	return nil, NotFound(id)
}

// List merges listings; an id is reported once, from its first source.
func (m *MultiSource) List(ctx context.Context) ([]Entry, error) {
	seen := make(map[string]bool)
	var out []Entry
	for _, s := range m.sources {
		entries, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !seen[e.ID] {
				seen[e.ID] = true
				out = append(out, e)
			}
		}
	}
	sortEntries(out)
	return out, nil
}
