package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/errors"
	tio "github.com/matzehuels/talklike/pkg/io"
)

const pirateYAML = `name: pirate
description: Talk like a pirate
substitutions:
  hello: ahoy
  my friend: me hearty
sentence_augmentation:
  - punctuation: "!"
    additions: [" Arr!"]
    frequency: 2
`

// filtersDir writes files into a fresh directory and returns it.
func filtersDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// runCLI executes the root command in isolation from the user's profile
// and cache, returning what the command wrote to stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	quietStatus(t)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTransform(t *testing.T) {
	dir := filtersDir(t, map[string]string{"pirate.yaml": pirateYAML})

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "text arguments",
			args: []string{"-d", dir, "transform", "pirate", "Hello", "my", "friend!"},
			want: "Ahoy me hearty! Arr!\n",
		},
		{
			name:  "stdin shares one session",
			stdin: "Hello!\nHello!\n\nHello!\n",
			args:  []string{"-d", dir, "transform", "pirate"},
			want:  "Ahoy! Arr!\nAhoy!\n\nAhoy! Arr!\n",
		},
		{
			name: "definition file",
			args: []string{"transform", filepath.Join(dir, "pirate.yaml"), "hello there!"},
			want: "ahoy there! Arr!\n",
		},
		{
			name: "alias",
			args: []string{"--no-cache", "-d", dir, "t", "pirate", "Hello"},
			want: "Ahoy\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransformErrors(t *testing.T) {
	_, err := runCLI(t, "", "transform", "parrot", "hello")
	if !errors.IsNotFound(err) {
		t.Errorf("unknown filter error = %v, want not found", err)
	}

	_, err = runCLI(t, "", "transform", "pirate", "")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty text error = %v, want INVALID_INPUT", err)
	}

	if _, err := runCLI(t, "", "transform"); err == nil {
		t.Error("transform without a filter succeeded")
	}
}

func TestTransformStdinKeepsEarlierLines(t *testing.T) {
	dir := filtersDir(t, map[string]string{"pirate.yaml": pirateYAML})

	out, err := runCLI(t, "Hello!\nhello \xff\nHello!\n", "-d", dir, "transform", "pirate")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
	if want := "Ahoy! Arr!\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestTransformStdinStats(t *testing.T) {
	dir := filtersDir(t, map[string]string{"pirate.yaml": pirateYAML})
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	status := quietStatus(t)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader("Hello!\nHello!\n"))
	root.SetArgs([]string{"-d", dir, "transform", "--stats", "pirate"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := status.String(); !strings.Contains(got, "12 → 15 bytes") {
		t.Errorf("stats = %q, want byte counts for both lines", got)
	}
}

func TestList(t *testing.T) {
	dir := filtersDir(t, map[string]string{"pirate.yaml": pirateYAML})

	out, err := runCLI(t, "", "-d", dir, "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var entries []catalog.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	sources := map[string]string{}
	for _, e := range entries {
		sources[e.ID] = e.Source
	}
	if sources["pirate"] != "dir" {
		t.Errorf("pirate source = %q, want the directory to shadow the built-in", sources["pirate"])
	}
	if sources["duck"] != "builtin" {
		t.Errorf("duck source = %q, want builtin", sources["duck"])
	}

	table, err := runCLI(t, "", "-d", dir, "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(table, "Talk like a pirate") {
		t.Errorf("table missing description:\n%s", table)
	}
}

func TestExplain(t *testing.T) {
	dir := filtersDir(t, map[string]string{"pirate.yaml": pirateYAML})

	out, err := runCLI(t, "", "-d", dir, "explain", "pirate")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"pirate", "substitutions", "sentence_augmentation"} {
		if !strings.Contains(out, want) {
			t.Errorf("explain output missing %q:\n%s", want, out)
		}
	}

	dot, err := runCLI(t, "", "-d", dir, "explain", "pirate", "--dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dot, "digraph G {") || !strings.Contains(dot, `"stage0" -> "stage1"`) {
		t.Errorf("unexpected DOT:\n%s", dot)
	}

	if _, err := runCLI(t, "", "explain", "duck", "--dot", "--svg", "x.svg"); err == nil {
		t.Error("--dot and --svg together succeeded")
	}
}

func TestLint(t *testing.T) {
	const doc = `{
  "substitutions": {"hello": "ahoy", "hello": "howdy", "ship": "ship"}
}`
	dir := filtersDir(t, map[string]string{"sloppy.json": doc, "pirate.yaml": pirateYAML})
	path := filepath.Join(dir, "sloppy.json")

	out, err := runCLI(t, "", "-d", dir, "lint")
	if err == nil || !strings.Contains(err.Error(), "2 issues found") {
		t.Fatalf("lint error = %v, want 2 issues", err)
	}
	for _, want := range []string{string(catalog.IssueDuplicateKey), string(catalog.IssueSelfMapping)} {
		if !strings.Contains(out, want) {
			t.Errorf("lint output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "", "lint", "--fix", path); err != nil {
		t.Fatalf("lint --fix: %v", err)
	}
	def, err := tio.Import(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"hello": "howdy"}, def.Substitutions); diff != "" {
		t.Errorf("fixed substitutions mismatch (-want +got):\n%s", diff)
	}
	if _, err := runCLI(t, "", "lint", path); err != nil {
		t.Errorf("lint after fix: %v", err)
	}
}

func TestLintBuiltin(t *testing.T) {
	if _, err := runCLI(t, "", "lint", "duck"); err != nil {
		t.Errorf("lint duck: %v", err)
	}
}

func TestConvert(t *testing.T) {
	dir := filtersDir(t, map[string]string{"pirate.yaml": pirateYAML})
	in := filepath.Join(dir, "pirate.yaml")
	out := filepath.Join(dir, "pirate.toml")

	if _, err := runCLI(t, "", "convert", in, out); err != nil {
		t.Fatal(err)
	}
	want, err := tio.Import(in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tio.Import(out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("converted definition mismatch (-want +got):\n%s", diff)
	}

	if _, err := runCLI(t, "", "convert", in, filepath.Join(dir, "pirate.xml")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown output format error = %v", err)
	}
}

func TestCachePath(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	quietStatus(t)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cacheHome, appName) + "\n"; out.String() != want {
		t.Errorf("cache path = %q, want %q", out.String(), want)
	}
}

func TestCompletion(t *testing.T) {
	out, err := runCLI(t, "", "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "talklike") {
		t.Error("bash completion does not mention talklike")
	}
	if _, err := runCLI(t, "", "completion", "tcsh"); err == nil {
		t.Error("unsupported shell accepted")
	}
}

func TestIsDefinitionFile(t *testing.T) {
	dir := filtersDir(t, map[string]string{"pirate.yaml": pirateYAML})
	t.Chdir(dir)

	tests := []struct {
		arg  string
		want bool
	}{
		{"pirate", false},
		{"pirate.yaml", true},
		{"disco.json", false},
		{"./anything.yaml", true},
		{"sub/dir", true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			if got := isDefinitionFile(tt.arg); got != tt.want {
				t.Errorf("isDefinitionFile(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}
