package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/core/filter"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

// TransformRequest is the body of POST /api/transform.
type TransformRequest struct {
	Filter  string `json:"filter"`
	Text    string `json:"text"`
	Refresh bool   `json:"refresh,omitempty"`
}

// TransformResponse is the reply to POST /api/transform.
type TransformResponse struct {
	Result string `json:"result"`
	Filter string `json:"filter"`
	Cached bool   `json:"cached"`
}

// FilterResponse is the reply to GET /api/filters/{id}.
type FilterResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Stages      []filter.StageInfo `json:"stages"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	entries, err := s.runner.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	id := catalog.NormalizeID(chi.URLParam(r, "id"))
	c, err := s.runner.Compile(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FilterResponse{
		ID:          c.ID,
		Name:        catalog.DisplayName(c.ID),
		Description: c.Definition.Description,
		Stages:      c.Filter.Describe(),
	})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Filter == "" || req.Text == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "missing filter or text"))
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Filter:  req.Filter,
		Text:    req.Text,
		Refresh: req.Refresh,
		Logger:  s.logger.With("request_id", RequestID(r.Context())),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{
		Result: res.Output,
		Filter: res.Filter,
		Cached: res.CacheInfo.ResultHit,
	})
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch code := errors.GetCode(err); {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsDefinitionError(err):
		return http.StatusUnprocessableEntity
	case code == errors.ErrCodeInvalidInput, code == errors.ErrCodeInvalidName, code == errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestID(r.Context()))
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
