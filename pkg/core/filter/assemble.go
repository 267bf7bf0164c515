package filter

import (
	"github.com/matzehuels/talklike/pkg/core/rng"
	"github.com/matzehuels/talklike/pkg/core/rules"
	"github.com/matzehuels/talklike/pkg/core/stage"
	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
)

// step builds the stage for one definition key, or returns nil when the key
// is absent.
type step struct {
	kind  stage.Kind
	build func(d *definition.Definition) (stage.Stage, error)
}

// recipe is the canonical stage order for data-driven definitions.
var recipe = []step{
	{stage.KindSubstitution, buildSubstitution},
	{stage.KindCharacters, buildCharacters},
	{stage.KindTranslation, buildTranslation},
	{stage.KindSuffixes, buildSuffixes},
	{stage.KindPrefixes, buildPrefixes},
	{stage.KindAugmentation, buildAugmentation},
	{stage.KindScript, buildScript},
	{stage.KindGlitch, buildGlitch},
}

// CanonicalOrder returns the stage kinds in the order [Assemble] builds
// them.
func CanonicalOrder() []stage.Kind {
	kinds := make([]stage.Kind, len(recipe))
	for i, s := range recipe {
		kinds[i] = s.kind
	}
	return kinds
}

// Assemble validates d and builds its filter. All configuration and pattern
// errors surface here; the returned filter never fails.
func Assemble(d *definition.Definition) (*Filter, error) {
	if d == nil {
		return nil, errors.Configuration("nil definition")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	opts := []Option{WithName(d.Name), WithPrefixText(d.PrefixText), WithSuffixText(d.SuffixText)}

	if d.IsAlgorithmic() {
		s, err := buildAlgorithmic(d)
		if err != nil {
			return nil, err
		}
		return New([]stage.Stage{s}, opts...), nil
	}

	var stages []stage.Stage
	for _, step := range recipe {
		s, err := step.build(d)
		if err != nil {
			return nil, err
		}
		if s != nil {
			stages = append(stages, s)
		}
	}
	return New(stages, opts...), nil
}

func buildAlgorithmic(d *definition.Definition) (stage.Stage, error) {
	seed := d.Params.EffectiveSeed()
	switch d.Module {
	case definition.ModuleGlitch:
		return stage.NewGlitch(d.Params.EffectivePercentage(), seed)
	case definition.ModuleStudly:
		return stage.NewStudly(seed), nil
	case definition.ModuleLolcat:
		return stage.NewLolcat(seed), nil
	case definition.ModuleDuck:
		return stage.NewDuck(), nil
	}
	return nil, errors.Configuration("unknown algorithmic module %q", d.Module)
}

func wordOptions(d *definition.Definition) rules.Options {
	preserveCase, wordBoundary := d.CaseOptions()
	return rules.Options{WordBoundary: wordBoundary, PreserveCase: preserveCase}
}

func buildSubstitution(d *definition.Definition) (stage.Stage, error) {
	if d.Substitutions == nil {
		return nil, nil
	}
	return stage.NewSubstitution(d.Substitutions, wordOptions(d))
}

func buildCharacters(d *definition.Definition) (stage.Stage, error) {
	if d.Characters == nil {
		return nil, nil
	}
	preserveCase, _ := d.CaseOptions()
	return stage.NewCharacters(d.Characters, preserveCase)
}

func buildTranslation(d *definition.Definition) (stage.Stage, error) {
	if d.Translate == nil {
		return nil, nil
	}
	return stage.NewTranslation(d.Translate.From, d.Translate.To)
}

func buildSuffixes(d *definition.Definition) (stage.Stage, error) {
	if d.Suffixes == nil {
		return nil, nil
	}
	affixes := make([]stage.Affix, 0, len(d.Suffixes))
	for suffix, r := range d.Suffixes {
		affixes = append(affixes, stage.Affix{Literal: suffix, Replacement: r.Replacement, MinStem: r.Stem()})
	}
	return stage.NewSuffixes(affixes...)
}

func buildPrefixes(d *definition.Definition) (stage.Stage, error) {
	if d.Prefixes == nil {
		return nil, nil
	}
	affixes := make([]stage.Affix, 0, len(d.Prefixes))
	for prefix, repl := range d.Prefixes {
		affixes = append(affixes, stage.Affix{Literal: prefix, Replacement: repl})
	}
	return stage.NewPrefixes(affixes...)
}

func buildAugmentation(d *definition.Definition) (stage.Stage, error) {
	if d.SentenceAugmentation == nil {
		return nil, nil
	}
	augs := make([]stage.AugmentRule, len(d.SentenceAugmentation))
	for i, a := range d.SentenceAugmentation {
		augs[i] = stage.AugmentRule{Punctuation: a.Punctuation, Additions: a.Additions, Frequency: a.Every()}
	}
	return stage.NewAugmenter(augs...)
}

func buildScript(d *definition.Definition) (stage.Stage, error) {
	if d.Script == nil {
		return nil, nil
	}
	if d.Script.Lua == "" {
		return nil, errors.Configuration("script file %q was not resolved", d.Script.File)
	}
	name := d.Script.File
	if name == "" {
		name = d.Name
	}
	return stage.NewScript(name, d.Script.Lua, rng.DefaultSeed)
}

func buildGlitch(d *definition.Definition) (stage.Stage, error) {
	if d.Glitch == nil {
		return nil, nil
	}
	return stage.NewGlitch(d.Glitch.Percentage, d.Glitch.Seed)
}
