package definition

import (
	"slices"
	"strings"

	"github.com/matzehuels/talklike/pkg/core/rng"
	"github.com/matzehuels/talklike/pkg/errors"
)

// TypeAlgorithmic selects a built-in effect instead of data-driven stages.
const TypeAlgorithmic = "algorithmic"

// Algorithmic modules.
const (
	ModuleGlitch = "glitch"
	ModuleStudly = "studly"
	ModuleLolcat = "lolcat"
	ModuleDuck   = "duck"
)

// Modules lists the known algorithmic modules.
var Modules = []string{ModuleGlitch, ModuleStudly, ModuleLolcat, ModuleDuck}

// Definition is the declarative form of a filter.
type Definition struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	Type   string  `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Module string  `json:"module,omitempty" yaml:"module,omitempty" toml:"module,omitempty"`
	Params *Params `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`

	Substitutions        map[string]string     `json:"substitutions,omitempty" yaml:"substitutions,omitempty" toml:"substitutions,omitempty"`
	Characters           map[string]string     `json:"characters,omitempty" yaml:"characters,omitempty" toml:"characters,omitempty"`
	Translate            *Translate            `json:"translate,omitempty" yaml:"translate,omitempty" toml:"translate,omitempty"`
	Suffixes             map[string]SuffixRule `json:"suffixes,omitempty" yaml:"suffixes,omitempty" toml:"suffixes,omitempty"`
	Prefixes             map[string]string     `json:"prefixes,omitempty" yaml:"prefixes,omitempty" toml:"prefixes,omitempty"`
	SentenceAugmentation []Augmentation        `json:"sentence_augmentation,omitempty" yaml:"sentence_augmentation,omitempty" toml:"sentence_augmentation,omitempty"`
	Script               *Script               `json:"script,omitempty" yaml:"script,omitempty" toml:"script,omitempty"`
	Glitch               *Glitch               `json:"glitch,omitempty" yaml:"glitch,omitempty" toml:"glitch,omitempty"`

	PreserveCase *bool `json:"preserve_case,omitempty" yaml:"preserve_case,omitempty" toml:"preserve_case,omitempty"`
	WordBoundary *bool `json:"word_boundary,omitempty" yaml:"word_boundary,omitempty" toml:"word_boundary,omitempty"`

	PrefixText string `json:"prefix_text,omitempty" yaml:"prefix_text,omitempty" toml:"prefix_text,omitempty"`
	SuffixText string `json:"suffix_text,omitempty" yaml:"suffix_text,omitempty" toml:"suffix_text,omitempty"`
}

// Params configures an algorithmic module.
type Params struct {
	Percentage *int   `json:"percentage,omitempty" yaml:"percentage,omitempty" toml:"percentage,omitempty"`
	Seed       *int64 `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
}

// Translate is a rune-for-rune translation table.
type Translate struct {
	From string `json:"from" yaml:"from" toml:"from"`
	To   string `json:"to" yaml:"to" toml:"to"`
}

// Augmentation inserts phrases after a punctuation mark.
type Augmentation struct {
	Punctuation string   `json:"punctuation" yaml:"punctuation" toml:"punctuation"`
	Additions   []string `json:"additions" yaml:"additions" toml:"additions"`
	Frequency   *int     `json:"frequency,omitempty" yaml:"frequency,omitempty" toml:"frequency,omitempty"`
}

// Every returns the effective frequency; unset means every occurrence.
func (a Augmentation) Every() int {
	if a.Frequency == nil {
		return 1
	}
	return *a.Frequency
}

// Script embeds or references a Lua transform(text) function. File paths
// are resolved relative to the definition by the loader, which fills Lua.
type Script struct {
	Lua  string `json:"lua,omitempty" yaml:"lua,omitempty" toml:"lua,omitempty"`
	File string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
}

// CaseOptions returns the matching options with defaults applied.
func (d *Definition) CaseOptions() (preserveCase, wordBoundary bool) {
	preserveCase, wordBoundary = true, true
	if d.PreserveCase != nil {
		preserveCase = *d.PreserveCase
	}
	if d.WordBoundary != nil {
		wordBoundary = *d.WordBoundary
	}
	return preserveCase, wordBoundary
}

// IsAlgorithmic reports whether d uses the algorithmic form.
func (d *Definition) IsAlgorithmic() bool {
	return d.Type == TypeAlgorithmic
}

// EffectiveSeed returns the configured seed, defaulting to [rng.DefaultSeed].
func (p *Params) EffectiveSeed() int64 {
	if p == nil || p.Seed == nil {
		return rng.DefaultSeed
	}
	return *p.Seed
}

// EffectivePercentage returns the configured percentage, defaulting to 100.
func (p *Params) EffectivePercentage() int {
	if p == nil || p.Percentage == nil {
		return DefaultGlitchPercentage
	}
	return *p.Percentage
}

// TransformationKeys lists the data-driven keys present in d, in canonical
// order.
func (d *Definition) TransformationKeys() []string {
	var keys []string
	add := func(present bool, key string) {
		if present {
			keys = append(keys, key)
		}
	}
	add(d.Substitutions != nil, "substitutions")
	add(d.Characters != nil, "characters")
	add(d.Translate != nil, "translate")
	add(d.Suffixes != nil, "suffixes")
	add(d.Prefixes != nil, "prefixes")
	add(d.SentenceAugmentation != nil, "sentence_augmentation")
	add(d.Script != nil, "script")
	add(d.Glitch != nil, "glitch")
	return keys
}

// Validate checks the structure of d.
func (d *Definition) Validate() error {
	switch d.Type {
	case TypeAlgorithmic:
		return d.validateAlgorithmic()
	case "", "data":
		return d.validateData()
	default:
		return errors.Configuration("unknown filter type %q", d.Type)
	}
}

func (d *Definition) validateAlgorithmic() error {
	if d.Module == "" {
		return errors.Configuration("algorithmic filter needs a module (one of %s)", strings.Join(Modules, ", "))
	}
	if !slices.Contains(Modules, d.Module) {
		return errors.Configuration("unknown algorithmic module %q (one of %s)", d.Module, strings.Join(Modules, ", "))
	}
	if p := d.Params.EffectivePercentage(); p < 0 || p > 100 {
		return errors.Configuration("params.percentage must be between 0 and 100, got %d", p)
	}
	return nil
}

func (d *Definition) validateData() error {
	if len(d.TransformationKeys()) == 0 {
		return errors.Configuration("definition has no transformation keys")
	}
	if d.Translate != nil && d.Translate.From == "" {
		return errors.Configuration("translate.from must not be empty")
	}
	for suffix, r := range d.Suffixes {
		if r.MinStem != nil && *r.MinStem < 1 {
			return errors.Configuration("suffix %q: min_stem must be at least 1, got %d", suffix, *r.MinStem)
		}
	}
	for i, a := range d.SentenceAugmentation {
		switch {
		case a.Punctuation == "":
			return errors.Configuration("sentence_augmentation[%d]: punctuation must not be empty", i)
		case len(a.Additions) == 0:
			return errors.Configuration("sentence_augmentation[%d] %q: additions must not be empty", i, a.Punctuation)
		case a.Every() <= 0:
			return errors.Configuration("sentence_augmentation[%d] %q: frequency must be positive, got %d", i, a.Punctuation, a.Every())
		}
	}
	if d.Script != nil && d.Script.Lua == "" && d.Script.File == "" {
		return errors.Configuration("script needs lua source or a file")
	}
	if d.Glitch != nil && (d.Glitch.Percentage < 0 || d.Glitch.Percentage > 100) {
		return errors.Configuration("glitch percentage must be between 0 and 100, got %d", d.Glitch.Percentage)
	}
	return nil
}
