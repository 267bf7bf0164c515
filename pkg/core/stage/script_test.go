package stage

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/talklike/pkg/errors"
)

func TestScript(t *testing.T) {
	s, err := NewScript("shout", `function transform(text) return string.upper(text) .. "!" end`, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.Transform("hey", s.NewState()), "HEY!"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestScriptSameCap(t *testing.T) {
	src := `
function transform(text)
  return replace(text, [[\p{L}+]], function(w) return same_cap(w, "meow") end)
end`
	s, err := NewScript("meow", src, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.Transform("Hello BIG world", nil), "Meow MEOW meow"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestScriptReplace(t *testing.T) {
	tests := []struct {
		name string
		body string
		in   string
		want string
	}{
		{
			name: "string with group reference",
			body: `return replace(text, [[(\w+)@(\w+)]], "$2 at $1")`,
			in:   "mail bob@home now",
			want: "mail home at bob now",
		},
		{
			name: "function receives captures",
			body: `return replace(text, [[(\d+)-(\d+)]], function(a, b) return b .. "-" .. a end)`,
			in:   "1-2 and 30-40",
			want: "2-1 and 40-30",
		},
		{
			name: "function receives whole match without groups",
			body: `return replace(text, [[\bcat\b]], function(m) return string.upper(m) end)`,
			in:   "cat catalog cat",
			want: "CAT catalog CAT",
		},
		{
			name: "nil keeps the match",
			body: `return replace(text, [[\w+]], function(w) if w == "keep" then return nil end return "x" end)`,
			in:   "keep this",
			want: "keep x",
		},
		{
			name: "no match",
			body: `return replace(text, "zzz", "y")`,
			in:   "unchanged",
			want: "unchanged",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScript(tt.name, "function transform(text) "+tt.body+" end", 1)
			if err != nil {
				t.Fatal(err)
			}
			if got := s.Transform(tt.in, nil); got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScriptReplaceErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad pattern", `return replace(text, "(", "x")`},
		{"bad replacement type", `return replace(text, "a", {})`},
		{"error in replacer", `return replace(text, "a", function() error("boom") end)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScript(tt.name, "function transform(text) "+tt.body+" end", 1)
			if err != nil {
				t.Fatal(err)
			}
			if got := s.Transform("banana", nil); got != "banana" {
				t.Errorf("Transform() = %q, want input unchanged", got)
			}
		})
	}
}

func TestScriptStepBudget(t *testing.T) {
	s, err := NewScript("spin", `function transform(text) while true do end end`, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.MaxSteps = 100_000

	done := make(chan string, 1)
	go func() { done <- s.Transform("still here", nil) }()
	select {
	case got := <-done:
		if got != "still here" {
			t.Errorf("Transform() = %q, want input unchanged", got)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Transform did not return")
	}
}

func TestScriptStepBudgetResetsPerCall(t *testing.T) {
	src := `
function transform(text)
  local n = 0
  for i = 1, 20000 do n = n + 1 end
  return text .. n
end`
	s, err := NewScript("loop", src, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.MaxSteps = 200_000
	st := s.NewState()
	for i := range 20 {
		if got := s.Transform("n=", st); got != "n=20000" {
			t.Fatalf("call %d: Transform() = %q, want n=20000", i, got)
		}
	}
}

func TestNewScriptTopLevelLoop(t *testing.T) {
	_, err := NewScript("spin", `while true do end`, 1)
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("NewScript() error = %v, want %s", err, errors.ErrCodeInvalidConfiguration)
	}
}

func TestScriptNewStateUsesCompiledChunk(t *testing.T) {
	s, err := NewScript("shout", `function transform(text) return string.upper(text) end`, 1)
	if err != nil {
		t.Fatal(err)
	}
	// States load the chunk compiled by NewScript, not Source.
	s.Source = "this is not lua"
	if got, want := s.Transform("hey", s.NewState()), "HEY"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func BenchmarkScriptNewState(b *testing.B) {
	src := strings.Repeat("unused = 1\n", 500) + `function transform(text) return text end`
	s, err := NewScript("bench", src, 1)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for range b.N {
		s.Transform("x", s.NewState())
	}
}

func TestScriptStatePersists(t *testing.T) {
	src := `
count = 0
function transform(text)
  count = count + 1
  return text .. " #" .. count
end`
	s, err := NewScript("counter", src, 1)
	if err != nil {
		t.Fatal(err)
	}
	st := s.NewState()
	s.Transform("a", st)
	if got, want := s.Transform("b", st), "b #2"; got != want {
		t.Errorf("continued state = %q, want %q", got, want)
	}
	if got, want := s.Transform("c", s.NewState()), "c #1"; got != want {
		t.Errorf("fresh state = %q, want %q", got, want)
	}
}

func TestScriptRandomIsSeeded(t *testing.T) {
	src := `function transform(text) return text .. random(1, 1000000) end`
	s, err := NewScript("dice", src, 42)
	if err != nil {
		t.Fatal(err)
	}
	a := s.Transform("n=", s.NewState())
	b := s.Transform("n=", s.NewState())
	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}
}

func TestScriptRuntimeErrorPassesThrough(t *testing.T) {
	s, err := NewScript("broken", `function transform(text) error("boom") end`, 1)
	if err != nil {
		t.Fatal(err)
	}
	st := s.NewState()
	for range 3 {
		if got := s.Transform("unchanged", st); got != "unchanged" {
			t.Fatalf("Transform() = %q, want input unchanged", got)
		}
	}
}

func TestNewScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `function transform(text) return text`},
		{"missing entry point", `function other(text) return text end`},
		{"entry point not a function", `transform = 42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScript(tt.name, tt.src, 1)
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("NewScript() error = %v, want %s", err, errors.ErrCodeInvalidConfiguration)
			}
		})
	}
}
