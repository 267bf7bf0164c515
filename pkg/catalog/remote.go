package catalog

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/talklike/pkg/cache"
	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/httputil"
	tio "github.com/matzehuels/talklike/pkg/io"
)

// IndexFile is the listing a remote catalog publishes at its base URL.
const IndexFile = "index.json"

// Index is the document served at <base>/index.json.
type Index struct {
	Filters []IndexEntry `json:"filters"`
}

// IndexEntry points at one definition file relative to the base URL.
type IndexEntry struct {
	ID          string `json:"id"`
	File        string `json:"file"`
	Description string `json:"description,omitempty"`
}

// RemoteSource loads definitions published over HTTP. Responses are cached
// for ttl in the client's cache.
type RemoteSource struct {
	base    *url.URL
	client  *httputil.Client
	keyer   cache.Keyer
	ttl     time.Duration
	refresh bool
}

// RemoteOption configures a RemoteSource.
type RemoteOption func(*RemoteSource)

// WithTTL sets how long fetched documents are cached.
func WithTTL(ttl time.Duration) RemoteOption {
	return func(s *RemoteSource) { s.ttl = ttl }
}

// WithRefresh bypasses cached documents.
func WithRefresh(refresh bool) RemoteOption {
	return func(s *RemoteSource) { s.refresh = refresh }
}

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) RemoteOption {
	return func(s *RemoteSource) { s.keyer = k }
}

// NewRemoteSource returns a source rooted at baseURL.
func NewRemoteSource(baseURL string, client *httputil.Client, opts ...RemoteOption) (*RemoteSource, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "catalog url")
	}
	if client == nil {
		client = httputil.NewClient(nil)
	}
	s := &RemoteSource{base: base, client: client, keyer: cache.NewDefaultKeyer(), ttl: cache.TTLDefinition}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RemoteSource) Name() string { return "remote" }

// URL returns the base URL.
func (s *RemoteSource) URL() string { return s.base.String() }

func (s *RemoteSource) resolve(file string) (string, error) {
	if err := errors.ValidatePath(file); err != nil {
		return "", err
	}
	ref, err := url.Parse(file)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "file %q", file)
	}
	return s.base.ResolveReference(ref).String(), nil
}

func (s *RemoteSource) fetch(ctx context.Context, rawURL string) (*httputil.Response, error) {
	key := s.keyer.DefinitionKey(s.Name(), rawURL)
	return s.client.Cached(ctx, key, rawURL, s.ttl, s.refresh)
}

// Index fetches the catalog listing.
func (s *RemoteSource) Index(ctx context.Context) (*Index, error) {
	u, err := s.resolve(IndexFile)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(resp.Body, &idx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", u)
	}
	return &idx, nil
}

func (s *RemoteSource) List(ctx context.Context) ([]Entry, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(idx.Filters))
	for _, f := range idx.Filters {
		entries = append(entries, Entry{ID: f.ID, Name: DisplayName(f.ID), Description: f.Description, Source: s.Name()})
	}
	sortEntries(entries)
	return entries, nil
}

func (s *RemoteSource) Load(ctx context.Context, id string) (*definition.Definition, error) {
	id = NormalizeID(id)
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range idx.Filters {
		if f.ID == id {
			return s.loadFile(ctx, id, f.File)
		}
	}
	return nil, NotFound(id)
}

func (s *RemoteSource) loadFile(ctx context.Context, id, file string) (*definition.Definition, error) {
	u, err := s.resolve(file)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	format, err := tio.FormatFromContentType(resp.ContentType, file)
	if err != nil {
		return nil, err
	}
	def, err := tio.Decode(resp.Body, format)
	if err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = id
	}
	if def.Script != nil && def.Script.Lua == "" {
		su, err := s.resolve(def.Script.File)
		if err != nil {
			return nil, err
		}
		script, err := s.fetch(ctx, su)
		if err != nil {
			return nil, err
		}
		def.Script.Lua = string(script.Body)
	}
	return def, nil
}
