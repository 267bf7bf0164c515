package catalog

import (
	"context"
	"embed"
	"io/fs"
	"path"

	"github.com/matzehuels/talklike/pkg/definition"
	tio "github.com/matzehuels/talklike/pkg/io"
)

//go:embed builtin
var builtinFS embed.FS

// EmbeddedSource serves definitions from a file system, by default the
// filters compiled into the binary.
type EmbeddedSource struct {
	fsys fs.FS
}

// Builtin returns the filters shipped with talklike.
func Builtin() *EmbeddedSource {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return &EmbeddedSource{fsys: sub}
}

// NewFSSource serves definitions from the root of fsys.
func NewFSSource(fsys fs.FS) *EmbeddedSource {
	return &EmbeddedSource{fsys: fsys}
}

func (s *EmbeddedSource) Name() string { return "builtin" }

func (s *EmbeddedSource) files() (map[string]string, error) {
	files, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, ext := range tio.Extensions {
		for _, f := range files {
			if f.IsDir() || path.Ext(f.Name()) != ext {
				continue
			}
			id := tio.Stem(f.Name())
			if _, seen := out[id]; !seen {
				out[id] = f.Name()
			}
		}
	}
	return out, nil
}

func (s *EmbeddedSource) load(id, name string) (*definition.Definition, error) {
	format, err := tio.FormatFromPath(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, err
	}
	def, err := tio.Decode(data, format)
	if err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = id
	}
	return def, nil
}

func (s *EmbeddedSource) Load(ctx context.Context, id string) (*definition.Definition, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	name, ok := files[NormalizeID(id)]
	if !ok {
		return nil, NotFound(id)
	}
	return s.load(NormalizeID(id), name)
}

func (s *EmbeddedSource) List(ctx context.Context) ([]Entry, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(files))
	for id, name := range files {
		def, err := s.load(id, name)
		entries = append(entries, entryFor(id, s.Name(), def, err))
	}
	sortEntries(entries)
	return entries, nil
}
