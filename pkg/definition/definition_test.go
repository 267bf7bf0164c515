package definition

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/talklike/pkg/core/rng"
	"github.com/matzehuels/talklike/pkg/errors"
)

func intPtr(n int) *int { return &n }

func TestSuffixRuleDecode(t *testing.T) {
	want := map[string]SuffixRule{
		"ing":  {Replacement: "in'"},
		"tion": {Replacement: "shun", MinStem: intPtr(3)},
	}

	t.Run("json", func(t *testing.T) {
		var got map[string]SuffixRule
		src := `{"ing": "in'", "tion": {"replacement": "shun", "min_stem": 3}}`
		if err := json.Unmarshal([]byte(src), &got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var got map[string]SuffixRule
		src := "ing: in'\ntion:\n  replacement: shun\n  min_stem: 3\n"
		if err := yaml.Unmarshal([]byte(src), &got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("toml", func(t *testing.T) {
		var got struct {
			Suffixes map[string]SuffixRule `toml:"suffixes"`
		}
		src := "[suffixes]\ning = \"in'\"\ntion = { replacement = \"shun\", min_stem = 3 }\n"
		if _, err := toml.Decode(src, &got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got.Suffixes); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("json rejects number", func(t *testing.T) {
		var got SuffixRule
		if err := json.Unmarshal([]byte(`7`), &got); err == nil {
			t.Error("expected error")
		}
	})
}

func TestSuffixRuleEncode(t *testing.T) {
	data, err := json.Marshal(map[string]SuffixRule{
		"ing":  {Replacement: "in'"},
		"tion": {Replacement: "shun", MinStem: intPtr(3)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"ing":"in'","tion":{"replacement":"shun","min_stem":3}}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestGlitchDecode(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Glitch
	}{
		{"number", `{"glitch": 30}`, Glitch{Percentage: 30, Seed: rng.DefaultSeed}},
		{"object", `{"glitch": {"percentage": 5, "seed": 9}}`, Glitch{Percentage: 5, Seed: 9}},
		{"object defaults", `{"glitch": {}}`, Glitch{Percentage: DefaultGlitchPercentage, Seed: rng.DefaultSeed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Definition
			if err := json.Unmarshal([]byte(tt.src), &d); err != nil {
				t.Fatal(err)
			}
			if d.Glitch == nil || *d.Glitch != tt.want {
				t.Errorf("Glitch = %+v, want %+v", d.Glitch, tt.want)
			}
		})
	}

	var y Definition
	if err := yaml.Unmarshal([]byte("glitch:\n  seed: 3\n"), &y); err != nil {
		t.Fatal(err)
	}
	if want := (Glitch{Percentage: DefaultGlitchPercentage, Seed: 3}); *y.Glitch != want {
		t.Errorf("yaml Glitch = %+v, want %+v", *y.Glitch, want)
	}

	var tm Definition
	if _, err := toml.Decode("glitch = 12\n", &tm); err != nil {
		t.Fatal(err)
	}
	if want := (Glitch{Percentage: 12, Seed: rng.DefaultSeed}); *tm.Glitch != want {
		t.Errorf("toml Glitch = %+v, want %+v", *tm.Glitch, want)
	}
}

func TestGlitchEncode(t *testing.T) {
	for _, tt := range []struct {
		g    Glitch
		want string
	}{
		{Glitch{Percentage: 30, Seed: rng.DefaultSeed}, `30`},
		{Glitch{Percentage: 30, Seed: 7}, `{"percentage":30,"seed":7}`},
	} {
		data, err := json.Marshal(tt.g)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%+v) = %s, want %s", tt.g, data, tt.want)
		}
	}
}

func TestTransformationKeys(t *testing.T) {
	d := Definition{
		Glitch:        &Glitch{Percentage: 10},
		Prefixes:      map[string]string{},
		Substitutions: map[string]string{"a": "b"},
	}
	want := []string{"substitutions", "prefixes", "glitch"}
	if diff := cmp.Diff(want, d.TransformationKeys()); diff != "" {
		t.Errorf("TransformationKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestCaseOptions(t *testing.T) {
	var d Definition
	if pc, wb := d.CaseOptions(); !pc || !wb {
		t.Errorf("defaults = %v, %v, want true, true", pc, wb)
	}
	f := false
	d.PreserveCase, d.WordBoundary = &f, &f
	if pc, wb := d.CaseOptions(); pc || wb {
		t.Errorf("overrides = %v, %v, want false, false", pc, wb)
	}
}

func TestParamsDefaults(t *testing.T) {
	var p *Params
	if p.EffectiveSeed() != rng.DefaultSeed || p.EffectivePercentage() != DefaultGlitchPercentage {
		t.Errorf("nil params = %d, %d", p.EffectiveSeed(), p.EffectivePercentage())
	}
	seed := int64(5)
	p = &Params{Percentage: intPtr(20), Seed: &seed}
	if p.EffectiveSeed() != 5 || p.EffectivePercentage() != 20 {
		t.Errorf("params = %d, %d", p.EffectiveSeed(), p.EffectivePercentage())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{"substitutions", Definition{Substitutions: map[string]string{"a": "b"}}, ""},
		{"explicit data type", Definition{Type: "data", Prefixes: map[string]string{"a": "b"}}, ""},
		{"algorithmic", Definition{Type: TypeAlgorithmic, Module: ModuleDuck}, ""},
		{"no keys", Definition{Name: "x"}, "no transformation keys"},
		{"unknown type", Definition{Type: "neural"}, "unknown filter type"},
		{"missing module", Definition{Type: TypeAlgorithmic}, "needs a module"},
		{"unknown module", Definition{Type: TypeAlgorithmic, Module: "cow"}, "unknown algorithmic module"},
		{"module percentage", Definition{Type: TypeAlgorithmic, Module: ModuleGlitch, Params: &Params{Percentage: intPtr(-1)}}, "between 0 and 100"},
		{"empty translate", Definition{Translate: &Translate{}}, "translate.from"},
		{"min stem", Definition{Suffixes: map[string]SuffixRule{"s": {Replacement: "z", MinStem: intPtr(0)}}}, "min_stem"},
		{"no punctuation", Definition{SentenceAugmentation: []Augmentation{{Additions: []string{"x"}}}}, "punctuation"},
		{"no additions", Definition{SentenceAugmentation: []Augmentation{{Punctuation: "."}}}, "additions"},
		{"bad frequency", Definition{SentenceAugmentation: []Augmentation{{Punctuation: ".", Additions: []string{"x"}, Frequency: intPtr(-2)}}}, "frequency"},
		{"empty script", Definition{Script: &Script{}}, "script"},
		{"glitch range", Definition{Glitch: &Glitch{Percentage: 150}}, "glitch percentage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Fatalf("Validate() = %v, want configuration error", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want message containing %q", err, tt.wantErr)
			}
		})
	}
}
