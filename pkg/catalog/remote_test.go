package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/talklike/pkg/cache"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/httputil"
)

func remoteServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/filters/index.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"filters": [
			{"id": "pirate", "file": "defs/pirate.yaml", "description": "arr"},
			{"id": "robot", "file": "defs/robot.json"},
			{"id": "evil", "file": "../secret.json"}
		]}`))
	})
	mux.HandleFunc("/filters/defs/pirate.yaml", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("substitutions:\n  hello: ahoy\n"))
	})
	mux.HandleFunc("/filters/defs/robot.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"script": {"file": "beep.lua"}}`))
	})
	mux.HandleFunc("/filters/beep.lua", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`function transform(s) return s .. " beep" end`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSource(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	srv := remoteServer(t, &hits)

	client := httputil.NewClient(cache.NewMemoryCache(100), httputil.WithRetry(1, time.Millisecond))
	src, err := NewRemoteSource(srv.URL+"/filters", client)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := src.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[1].ID != "pirate" || entries[1].Description != "arr" || entries[1].Name != "Pirate" {
		t.Errorf("List() = %+v", entries)
	}

	def, err := src.Load(ctx, "pirate")
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != "pirate" || def.Substitutions["hello"] != "ahoy" {
		t.Errorf("Load(pirate) = %+v", def)
	}

	robot, err := src.Load(ctx, "robot.json")
	if err != nil {
		t.Fatal(err)
	}
	if robot.Script == nil || robot.Script.Lua == "" {
		t.Error("remote script file not fetched")
	}

	if _, err := src.Load(ctx, "evil"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Load(evil) error = %v, want INVALID_PATH", err)
	}
	if _, err := src.Load(ctx, "nope"); !errors.Is(err, errors.ErrCodeFilterNotFound) {
		t.Errorf("Load(nope) error = %v", err)
	}

	before := hits.Load()
	if _, err := src.Load(ctx, "pirate"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != before {
		t.Errorf("cached load hit the server %d times", hits.Load()-before)
	}
}

func TestRemoteSourceURL(t *testing.T) {
	if _, err := NewRemoteSource("ftp://example.com", nil); err == nil {
		t.Error("expected error for non-http url")
	}
	src, err := NewRemoteSource("https://example.com/talk/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if src.URL() != "https://example.com/talk/" {
		t.Errorf("URL() = %q", src.URL())
	}
}
