package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/goleak"

	"github.com/matzehuels/talklike/pkg/cache"
	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/core/stage"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/observability/metrics"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	fsys := fstest.MapFS{
		"pirate.yaml":       {Data: []byte("description: Arr\nsubstitutions: {hello: ahoy, my friend: me hearty}\n")},
		"valley_1980s.json": {Data: []byte(`{"substitutions": {"really": "like, totally"}}`)},
		"broken.json":       {Data: []byte(`{"type": "algorithmic", "module": "goose"}`)},
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(catalog.NewFSSource(fsys), cache.NewMemoryCache(0), nil, logger)
	srv := httptest.NewServer(New(runner, logger, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestTransform(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/transform", `{"filter": "pirate", "text": "Hello my friend"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var got TransformResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	want := TransformResponse{Result: "Ahoy me hearty", Filter: "pirate"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	_, body = postJSON(t, srv.URL+"/api/transform", `{"filter": "pirate.yaml", "text": "Hello my friend"}`)
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if !got.Cached {
		t.Error("repeated request was not served from cache")
	}
}

func TestTransformErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"missing text", `{"filter": "pirate"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing filter", `{"text": "hi"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed", `{"filter": `, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"traversal", `{"filter": "../etc/passwd", "text": "hi"}`, http.StatusBadRequest, errors.ErrCodeInvalidName},
		{"unknown filter", `{"filter": "parrot", "text": "hi"}`, http.StatusNotFound, errors.ErrCodeFilterNotFound},
		{"broken filter", `{"filter": "broken", "text": "hi"}`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, srv.URL+"/api/transform", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			var e ErrorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code || e.Error == "" {
				t.Errorf("error body = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/filters")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var entries []catalog.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"Broken", "Pirate", "Valley (1980s)"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if entries[0].Error == "" {
		t.Error("broken entry has no error")
	}
}

func TestGetFilter(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/filters/pirate")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got FilterResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "pirate" || got.Description != "Arr" || len(got.Stages) != 1 || got.Stages[0].Kind != stage.KindSubstitution {
		t.Errorf("filter = %+v", got)
	}

	missing, err := http.Get(srv.URL + "/api/filters/parrot")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown filter status = %d", missing.StatusCode)
	}
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("generated request id %q is not a uuid", resp.Header.Get(RequestIDHeader))
	}

	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, WithMetrics(metrics.New()))
	postJSON(t, srv.URL+"/api/transform", `{"filter": "pirate", "text": "hello"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	want := `talklike_http_requests_total{method="POST",route="/api/transform",status="200"} 1`
	if !bytes.Contains(body, []byte(want)) {
		t.Errorf("metrics missing %q", want)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeFilterNotFound, "x"), http.StatusNotFound},
		{errors.Pattern(nil, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServeShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(catalog.Builtin(), nil, nil, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Serve() = %v", err)
	}
}
