package definition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/talklike/pkg/core/rng"
)

// DefaultGlitchPercentage applies when a glitch object omits percentage.
const DefaultGlitchPercentage = 100

// SuffixRule is a suffix replacement. In documents it is either a plain
// string or an object {replacement, min_stem}.
type SuffixRule struct {
	Replacement string `toml:"replacement"`
	MinStem     *int   `toml:"min_stem,omitempty"`
}

type suffixRuleObject struct {
	Replacement string `json:"replacement" yaml:"replacement"`
	MinStem     *int   `json:"min_stem,omitempty" yaml:"min_stem,omitempty"`
}

// Stem returns the minimum stem length, or 0 when unset.
func (r SuffixRule) Stem() int {
	if r.MinStem == nil {
		return 0
	}
	return *r.MinStem
}

func (r *SuffixRule) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = SuffixRule{Replacement: s}
		return nil
	}
	var obj suffixRuleObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("suffix rule: want string or {replacement, min_stem}: %w", err)
	}
	*r = SuffixRule(obj)
	return nil
}

func (r SuffixRule) MarshalJSON() ([]byte, error) {
	if r.MinStem == nil {
		return json.Marshal(r.Replacement)
	}
	return json.Marshal(suffixRuleObject(r))
}

func (r *SuffixRule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*r = SuffixRule{Replacement: s}
		return nil
	}
	var obj suffixRuleObject
	if err := value.Decode(&obj); err != nil {
		return fmt.Errorf("suffix rule: want string or {replacement, min_stem}: %w", err)
	}
	*r = SuffixRule(obj)
	return nil
}

func (r SuffixRule) MarshalYAML() (any, error) {
	if r.MinStem == nil {
		return r.Replacement, nil
	}
	return suffixRuleObject(r), nil
}

func (r *SuffixRule) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*r = SuffixRule{Replacement: v}
		return nil
	case map[string]any:
		repl, ok := v["replacement"].(string)
		if !ok {
			return fmt.Errorf("suffix rule: replacement must be a string")
		}
		*r = SuffixRule{Replacement: repl}
		if raw, ok := v["min_stem"]; ok {
			n, ok := raw.(int64)
			if !ok {
				return fmt.Errorf("suffix rule: min_stem must be an integer")
			}
			stem := int(n)
			r.MinStem = &stem
		}
		return nil
	default:
		return fmt.Errorf("suffix rule: want string or table, got %T", v)
	}
}

// Glitch configures the glitch overlay. In documents it is either a
// percentage or an object {percentage, seed}.
type Glitch struct {
	Percentage int   `toml:"percentage"`
	Seed       int64 `toml:"seed"`
}

type glitchObject struct {
	Percentage *int   `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	Seed       *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

func (o glitchObject) glitch() Glitch {
	g := Glitch{Percentage: DefaultGlitchPercentage, Seed: rng.DefaultSeed}
	if o.Percentage != nil {
		g.Percentage = *o.Percentage
	}
	if o.Seed != nil {
		g.Seed = *o.Seed
	}
	return g
}

func (g Glitch) object() glitchObject {
	p, s := g.Percentage, g.Seed
	return glitchObject{Percentage: &p, Seed: &s}
}

func (g *Glitch) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("glitch: want number or {percentage, seed}: %w", err)
		}
		*g = Glitch{Percentage: int(n), Seed: rng.DefaultSeed}
		return nil
	}
	var obj glitchObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("glitch: want number or {percentage, seed}: %w", err)
	}
	*g = obj.glitch()
	return nil
}

func (g Glitch) MarshalJSON() ([]byte, error) {
	if g.Seed == rng.DefaultSeed {
		return json.Marshal(g.Percentage)
	}
	return json.Marshal(g.object())
}

func (g *Glitch) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("glitch: want number or {percentage, seed}: %w", err)
		}
		*g = Glitch{Percentage: n, Seed: rng.DefaultSeed}
		return nil
	}
	var obj glitchObject
	if err := value.Decode(&obj); err != nil {
		return fmt.Errorf("glitch: want number or {percentage, seed}: %w", err)
	}
	*g = obj.glitch()
	return nil
}

func (g Glitch) MarshalYAML() (any, error) {
	if g.Seed == rng.DefaultSeed {
		return g.Percentage, nil
	}
	return g.object(), nil
}

func (g *Glitch) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		*g = Glitch{Percentage: int(v), Seed: rng.DefaultSeed}
		return nil
	case float64:
		*g = Glitch{Percentage: int(v), Seed: rng.DefaultSeed}
		return nil
	case map[string]any:
		*g = Glitch{Percentage: DefaultGlitchPercentage, Seed: rng.DefaultSeed}
		if raw, ok := v["percentage"]; ok {
			n, ok := raw.(int64)
			if !ok {
				return fmt.Errorf("glitch: percentage must be an integer")
			}
			g.Percentage = int(n)
		}
		if raw, ok := v["seed"]; ok {
			n, ok := raw.(int64)
			if !ok {
				return fmt.Errorf("glitch: seed must be an integer")
			}
			g.Seed = n
		}
		return nil
	default:
		return fmt.Errorf("glitch: want integer or table, got %T", v)
	}
}
