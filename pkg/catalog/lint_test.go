package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/talklike/pkg/definition"
)

func TestLint(t *testing.T) {
	f := false
	tests := []struct {
		name string
		def  definition.Definition
		want []Issue
	}{
		{
			name: "clean",
			def:  definition.Definition{Substitutions: map[string]string{"hello": "ahoy"}},
		},
		{
			name: "self mapping",
			def:  definition.Definition{Substitutions: map[string]string{"cool": "cool", "hi": "yo"}},
			want: []Issue{{Kind: IssueSelfMapping, Section: "substitutions", Key: "cool", Fixable: true}},
		},
		{
			name: "case duplicate",
			def:  definition.Definition{Substitutions: map[string]string{"Hello": "Ahoy", "hello": "yo", "good  morning": "x", "good morning": "y"}},
			want: []Issue{
				{Kind: IssueCaseDuplicate, Section: "substitutions", Key: "good morning", Fixable: true},
				{Kind: IssueCaseDuplicate, Section: "substitutions", Key: "hello", Fixable: true},
			},
		},
		{
			name: "case sensitive keys are distinct",
			def:  definition.Definition{Substitutions: map[string]string{"Hello": "Ahoy", "hello": "yo"}, PreserveCase: &f},
		},
		{
			name: "translate identity",
			def:  definition.Definition{Translate: &definition.Translate{From: "abc", To: "xbz"}},
			want: []Issue{{Kind: IssueSelfMapping, Section: "translate", Key: "b", Fixable: true}},
		},
		{
			name: "dead affixes",
			def: definition.Definition{
				Suffixes: map[string]definition.SuffixRule{"s'": {Replacement: "z"}, "ing": {Replacement: "in'"}},
				Prefixes: map[string]string{"-re": "x"},
			},
			want: []Issue{
				{Kind: IssueDeadAffix, Section: "suffixes", Key: "s'"},
				{Kind: IssueDeadAffix, Section: "prefixes", Key: "-re"},
			},
		},
		{
			name: "cascade",
			def: definition.Definition{SentenceAugmentation: []definition.Augmentation{
				{Punctuation: ".", Additions: []string{" Wow!"}},
				{Punctuation: "!", Additions: []string{" Yeah."}},
			}},
			want: []Issue{{Kind: IssueCascade, Section: "sentence_augmentation", Key: "."}},
		},
	}
	ignoreMessage := cmpopts.IgnoreFields(Issue{}, "Message")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Lint(&tt.def), ignoreMessage, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Lint() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFix(t *testing.T) {
	def := &definition.Definition{
		Substitutions: map[string]string{"cool": "cool", "Hello": "Ahoy", "hello": "yo", "bye": "later"},
		Translate:     &definition.Translate{From: "abc", To: "xbz"},
		Suffixes:      map[string]definition.SuffixRule{"ing": {Replacement: "ing"}, "s'": {Replacement: "z"}},
	}
	fixed, issues := Fix(def)

	want := map[string]string{"Hello": "Ahoy", "bye": "later"}
	if diff := cmp.Diff(want, fixed.Substitutions); diff != "" {
		t.Errorf("substitutions mismatch (-want +got):\n%s", diff)
	}
	if fixed.Translate.From != "ac" || fixed.Translate.To != "xz" {
		t.Errorf("translate = %+v", fixed.Translate)
	}
	if _, ok := fixed.Suffixes["ing"]; ok {
		t.Error("self-mapping suffix kept")
	}
	if _, ok := fixed.Suffixes["s'"]; !ok {
		t.Error("unfixable suffix removed")
	}
	if len(issues) != 4 {
		t.Errorf("Fix() removed %d issues, want 4: %v", len(issues), issues)
	}
	if len(def.Substitutions) != 4 || def.Translate.From != "abc" {
		t.Error("Fix modified its input")
	}
	if rest := Lint(fixed); len(rest) != 1 {
		t.Errorf("Lint(fixed) = %v, want only the dead suffix", rest)
	}
}

func TestDuplicateJSONKeys(t *testing.T) {
	src := `{
		"name": "x",
		"substitutions": {"hello": "a", "bye": "b", "hello": "c"},
		"sentence_augmentation": [{"punctuation": ".", "punctuation": "!", "additions": []}],
		"name": "y"
	}`
	issues, err := DuplicateJSONKeys([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, is := range issues {
		got = append(got, joinPath(is.Section, is.Key))
	}
	want := []string{"substitutions.hello", "sentence_augmentation[0].punctuation", "name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DuplicateJSONKeys() mismatch (-want +got):\n%s", diff)
	}

	if _, err := DuplicateJSONKeys([]byte(`{"a": `)); err == nil {
		t.Error("expected error for truncated document")
	}
}
