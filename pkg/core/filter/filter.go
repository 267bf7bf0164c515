package filter

import (
	"slices"
	"strings"

	"github.com/matzehuels/talklike/pkg/core/stage"
)

// Filter is an immutable ordered pipeline of stages.
type Filter struct {
	name       string
	stages     []stage.Stage
	prefixText string
	suffixText string
}

// Option configures a Filter.
type Option func(*Filter)

// WithName sets the filter's display name.
func WithName(name string) Option {
	return func(f *Filter) { f.name = name }
}

// WithPrefixText sets text prepended to every result. It is never processed
// by any stage.
func WithPrefixText(text string) Option {
	return func(f *Filter) { f.prefixText = text }
}

// WithSuffixText sets text appended to every result. It is never processed
// by any stage.
func WithSuffixText(text string) Option {
	return func(f *Filter) { f.suffixText = text }
}

// New returns a filter running stages in the given order.
func New(stages []stage.Stage, opts ...Option) *Filter {
	f := &Filter{stages: slices.Clone(stages)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the filter's display name.
func (f *Filter) Name() string { return f.name }

// Stages returns a copy of the stage list.
func (f *Filter) Stages() []stage.Stage { return slices.Clone(f.stages) }

// PrefixText returns the text prepended to every result.
func (f *Filter) PrefixText() string { return f.prefixText }

// SuffixText returns the text appended to every result.
func (f *Filter) SuffixText() string { return f.suffixText }

// Kinds returns the stage kinds in execution order.
func (f *Filter) Kinds() []stage.Kind {
	kinds := make([]stage.Kind, len(f.stages))
	for i, s := range f.stages {
		kinds[i] = s.Kind()
	}
	return kinds
}

// Stateful reports whether any stage carries state between calls.
func (f *Filter) Stateful() bool {
	for _, s := range f.stages {
		if s.NewState() != nil {
			return true
		}
	}
	return false
}

// Transform runs text through a fresh session.
func (f *Filter) Transform(text string) string {
	return f.NewSession().Transform(text)
}

// NewSession returns a session with fresh state for every stage.
func (f *Filter) NewSession() *Session {
	s := &Session{filter: f}
	s.Reset()
	return s
}

// Session runs a filter while carrying stage state across calls.
type Session struct {
	filter *Filter
	states []stage.State
	calls  int
}

// Filter returns the filter this session runs.
func (s *Session) Filter() *Filter { return s.filter }

// Calls returns how many times Transform ran since the last reset.
func (s *Session) Calls() int { return s.calls }

// Reset discards all stage state.
func (s *Session) Reset() {
	s.states = make([]stage.State, len(s.filter.stages))
	for i, st := range s.filter.stages {
		s.states[i] = st.NewState()
	}
	s.calls = 0
}

// Transform runs every stage in order, then wraps the result with the
// filter's prefix and suffix text.
func (s *Session) Transform(text string) string {
	for i, st := range s.filter.stages {
		text = st.Transform(text, s.states[i])
	}
	s.calls++
	if s.filter.prefixText == "" && s.filter.suffixText == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(s.filter.prefixText) + len(text) + len(s.filter.suffixText))
	b.WriteString(s.filter.prefixText)
	b.WriteString(text)
	b.WriteString(s.filter.suffixText)
	return b.String()
}

// StageInfo describes one stage for display.
type StageInfo struct {
	Kind  stage.Kind `json:"kind"`
	Rules []string   `json:"rules"`
}

// Describe returns the stages in execution order with their rules.
func (f *Filter) Describe() []StageInfo {
	infos := make([]StageInfo, len(f.stages))
	for i, s := range f.stages {
		infos[i] = StageInfo{Kind: s.Kind(), Rules: s.Describe()}
	}
	return infos
}
