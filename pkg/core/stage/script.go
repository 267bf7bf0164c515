package stage

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Shopify/go-lua"
	"github.com/dlclark/regexp2"

	"github.com/matzehuels/talklike/pkg/core/casing"
	"github.com/matzehuels/talklike/pkg/core/rng"
	"github.com/matzehuels/talklike/pkg/errors"
)

// ScriptEntry is the global function a script must define.
const ScriptEntry = "transform"

const (
	// DefaultMaxSteps bounds the Lua instructions one Transform call, or the
	// top-level chunk of a new state, may execute.
	DefaultMaxSteps = 10_000_000

	// stepInterval is how often the instruction budget is checked.
	stepInterval = 1000

	// replaceTimeout bounds a single replace() pattern match.
	replaceTimeout = time.Second
)

// Script runs a Lua function over the text. The script must define a global
// function transform(text) returning a string. Three helpers are available
// to it:
//
//	same_cap(original, replacement)  -- case projection
//	random([lo, hi])                 -- seeded draw: float in [0,1) or int in [lo,hi]
//	replace(text, pattern, repl)     -- regular expression replacement
//
// The source is compiled once by [NewScript]. Each state owns its own Lua VM
// loaded from the compiled chunk, so globals set by the script persist
// between calls on the same state and nowhere else.
type Script struct {
	Name   string
	Source string
	Seed   int64
	// MaxSteps overrides DefaultMaxSteps when positive.
	MaxSteps int

	chunk []byte
}

// ScriptState is the per-session Lua VM.
type ScriptState struct {
	L        *lua.State
	gen      *rng.Generator
	patterns map[string]*regexp2.Regexp
	steps    int
	limit    int
}

// NewScript compiles source and checks that it defines [ScriptEntry].
func NewScript(name, source string, seed int64) (*Script, error) {
	s := &Script{Name: name, Source: source, Seed: seed}

	l := lua.NewState()
	if err := lua.LoadBuffer(l, source, s.chunkName(), "t"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "script %s", s.label())
	}
	var buf bytes.Buffer
	if err := l.Dump(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "script %s", s.label())
	}
	s.chunk = buf.Bytes()

	if _, err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Script) chunkName() string { return "=" + s.label() }

func (s *Script) maxSteps() int {
	if s.MaxSteps > 0 {
		return s.MaxSteps
	}
	return DefaultMaxSteps
}

// open creates a VM, loads the compiled chunk and runs its top level.
func (s *Script) open() (*ScriptState, error) {
	st := &ScriptState{
		L:        lua.NewState(),
		gen:      rng.New(s.Seed),
		patterns: make(map[string]*regexp2.Regexp),
		limit:    s.maxSteps(),
	}
	l := st.L
	lua.OpenLibraries(l)
	l.Register("same_cap", luaSameCap)
	l.Register("random", st.luaRandom)
	l.Register("replace", st.luaReplace)
	lua.SetDebugHook(l, st.countSteps, lua.MaskCount, stepInterval)

	if err := l.Load(bytes.NewReader(s.chunk), s.chunkName(), "b"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "script %s", s.label())
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "script %s", s.label())
	}
	l.Global(ScriptEntry)
	defer l.Pop(1)
	if !l.IsFunction(-1) {
		return nil, errors.Configuration("script %s: missing global function %q", s.label(), ScriptEntry)
	}
	return st, nil
}

func (s *Script) label() string {
	if s.Name == "" {
		return "<inline>"
	}
	return s.Name
}

// Kind returns [KindScript].
func (s *Script) Kind() Kind { return KindScript }

// NewState returns a fresh VM. It never parses the source again.
func (s *Script) NewState() State {
	st, err := s.open()
	if err != nil {
		// The chunk ran cleanly in NewScript and always starts from the same seed.
		return nil
	}
	return st
}

// Transform calls the script. A runtime error, or running past the
// instruction budget, leaves the text unchanged.
func (s *Script) Transform(text string, st State) string {
	state, ok := st.(*ScriptState)
	if !ok || state == nil {
		if state, ok = s.NewState().(*ScriptState); !ok || state == nil {
			return text
		}
	}
	l := state.L
	top := l.Top()
	defer l.SetTop(top)

	state.steps = 0
	l.Global(ScriptEntry)
	l.PushString(text)
	if err := l.ProtectedCall(1, 1, 0); err != nil {
		return text
	}
	out, ok := l.ToString(-1)
	if !ok {
		return text
	}
	return out
}

// Describe names the script and its seed.
func (s *Script) Describe() []string {
	return []string{fmt.Sprintf("lua %s (seed %d)", s.label(), s.Seed)}
}

func (st *ScriptState) countSteps(l *lua.State, _ lua.Debug) {
	st.steps += stepInterval
	if st.steps > st.limit {
		lua.Errorf(l, "instruction budget of %d exceeded", st.limit)
	}
}

func luaSameCap(l *lua.State) int {
	original := lua.CheckString(l, 1)
	replacement := lua.CheckString(l, 2)
	l.PushString(casing.Project(original, replacement))
	return 1
}

func (st *ScriptState) luaRandom(l *lua.State) int {
	if l.Top() == 0 {
		l.PushNumber(st.gen.Float64())
		return 1
	}
	lo := lua.CheckInteger(l, 1)
	hi := lua.CheckInteger(l, 2)
	l.PushInteger(st.gen.IntRange(lo, hi))
	return 1
}

// luaReplace implements replace(text, pattern, repl). pattern uses the same
// regular expression syntax as substitution rules. A string repl may refer
// to groups as $1. A function repl receives the captures, or the whole
// match when the pattern has none, and its result replaces the match unless
// it is nil or false.
func (st *ScriptState) luaReplace(l *lua.State) int {
	text := lua.CheckString(l, 1)
	re, err := st.pattern(lua.CheckString(l, 2))
	if err != nil {
		lua.ArgumentError(l, 2, err.Error())
	}

	var out string
	switch l.TypeOf(3) {
	case lua.TypeString, lua.TypeNumber:
		repl, _ := l.ToString(3)
		out, err = re.Replace(text, repl, -1, -1)
	case lua.TypeFunction:
		var callErr string
		out, err = re.ReplaceFunc(text, func(m regexp2.Match) string {
			if callErr != "" {
				return m.String()
			}
			return callReplacer(l, m, &callErr)
		}, -1, -1)
		if callErr != "" {
			lua.Errorf(l, "%s", callErr)
		}
	default:
		lua.ArgumentError(l, 3, "string or function expected")
	}
	if err != nil {
		lua.Errorf(l, "replace: %s", err.Error())
	}
	l.PushString(out)
	return 1
}

// callReplacer calls the function at index 3 for one match. Lua errors are
// recorded in errMsg rather than raised, since raising would unwind through
// the regexp engine.
func callReplacer(l *lua.State, m regexp2.Match, errMsg *string) string {
	top := l.Top()
	defer l.SetTop(top)

	l.PushValue(3)
	groups := m.Groups()
	if len(groups) > 1 {
		for _, g := range groups[1:] {
			l.PushString(g.String())
		}
	} else {
		l.PushString(m.String())
	}
	if err := l.ProtectedCall(max(len(groups)-1, 1), 1, 0); err != nil {
		*errMsg = err.Error()
		return m.String()
	}
	if l.IsNil(-1) || (l.IsBoolean(-1) && !l.ToBoolean(-1)) {
		return m.String()
	}
	s, ok := l.ToString(-1)
	if !ok {
		return m.String()
	}
	return s
}

func (st *ScriptState) pattern(expr string) (*regexp2.Regexp, error) {
	if re, ok := st.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = replaceTimeout
	st.patterns[expr] = re
	return re, nil
}
