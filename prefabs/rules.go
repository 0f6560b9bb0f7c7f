package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

var ErrNoRules = errors.New("prefabs: script does not define rules")

// RuleSpec is the attack and run-away table of one species.
type RuleSpec struct {
	Attack  []string
	RunAway []string
}

// LoadRules runs a rule script with the global species bound to names and
// reads back the rules map it builds.
func LoadRules(name string, names []string) (map[string]RuleSpec, error) {
	src, err := LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	rules, err := EvalRules(src, names)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return rules, nil
}

func EvalRules(src []byte, names []string) (map[string]RuleSpec, error) {
	list := make([]any, len(names))
	for i, n := range names {
		list[i] = n
	}

	script := tengo.NewScript(src)
	if err := script.Add("species", list); err != nil {
		return nil, err
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Run()
	if err != nil {
		return nil, err
	}
	if !compiled.IsDefined("rules") {
		return nil, ErrNoRules
	}

	raw := compiled.Get("rules").Map()
	if raw == nil {
		return nil, fmt.Errorf("%w: rules is not a map", ErrNoRules)
	}

	out := make(map[string]RuleSpec, len(raw))
	for species, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("prefabs: rules[%q] is %T, want map", species, v)
		}
		attack, err := stringList(entry["attack"])
		if err != nil {
			return nil, fmt.Errorf("prefabs: rules[%q].attack: %w", species, err)
		}
		runAway, err := stringList(entry["run_away"])
		if err != nil {
			return nil, fmt.Errorf("prefabs: rules[%q].run_away: %w", species, err)
		}
		out[species] = RuleSpec{Attack: attack, RunAway: runAway}
	}
	return out, nil
}

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("got %T, want array", v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %v is %T, want string", item, item)
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

// ResolveRules builds the rule table of an arena. Script rules come first;
// attack or run_away lists written on a species replace the scripted ones.
func (a *ArenaSpec) ResolveRules() (map[string]RuleSpec, error) {
	rules := make(map[string]RuleSpec, len(a.Species))
	if strings.TrimSpace(a.Rules) != "" {
		scripted, err := LoadRules(a.Rules, a.SpeciesNames())
		if err != nil {
			return nil, err
		}
		for k, v := range scripted {
			rules[k] = v
		}
	}
	for _, s := range a.Species {
		name := strings.TrimSpace(s.Name)
		r := rules[name]
		if len(s.Attack) > 0 {
			r.Attack = s.Attack
		}
		if len(s.RunAway) > 0 {
			r.RunAway = s.RunAway
		}
		rules[name] = r
	}
	return rules, nil
}
