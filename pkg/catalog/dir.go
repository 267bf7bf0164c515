package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
	tio "github.com/matzehuels/talklike/pkg/io"
)

// DirSource loads definition files from directories searched in order.
type DirSource struct {
	dirs []string
}

// NewDirSource returns a source over dirs. Missing directories are skipped.
func NewDirSource(dirs ...string) *DirSource {
	return &DirSource{dirs: dirs}
}

// Dirs returns the search path.
func (s *DirSource) Dirs() []string { return s.dirs }

func (s *DirSource) Name() string { return "dir" }

// Find returns the path of the file defining id. An id with a definition
// extension matches that file only; a bare id tries every extension in
// [tio.Extensions] order within each directory before moving on.
func (s *DirSource) Find(id string) (string, error) {
	if err := errors.ValidateFilterName(id); err != nil {
		return "", err
	}
	names := []string{id}
	if NormalizeID(id) == id {
		names = names[:0]
		for _, ext := range tio.Extensions {
			names = append(names, id+ext)
		}
	}
	for _, dir := range s.dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", NotFound(id)
}

func (s *DirSource) Load(ctx context.Context, id string) (*definition.Definition, error) {
	path, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	return tio.Import(path)
}

// Paths returns every definition file keyed by id. Earlier directories
// win, and within a directory extensions follow [tio.Extensions] order.
func (s *DirSource) Paths() (map[string]string, error) {
	paths := make(map[string]string)
	for _, dir := range s.dirs {
		files, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, ext := range tio.Extensions {
			for _, f := range files {
				if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ext) {
					continue
				}
				id := tio.Stem(f.Name())
				if _, seen := paths[id]; !seen {
					paths[id] = filepath.Join(dir, f.Name())
				}
			}
		}
	}
	return paths, nil
}

func (s *DirSource) List(ctx context.Context) ([]Entry, error) {
	paths, err := s.Paths()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(paths))
	for id, path := range paths {
		def, err := tio.Import(path)
		entries = append(entries, entryFor(id, s.Name(), def, err))
	}
	sortEntries(entries)
	return entries, nil
}
