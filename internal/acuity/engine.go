package acuity

import (
	"errors"
	"fmt"
	"slices"
)

// Engine evaluates an ordered rule table, first match wins.
type Engine struct {
	rules []RuleGroup
}

// NewEngine validates rules and returns an engine over a private copy of
// them. The table must be non-empty, end with an Always group so every
// evaluation terminates in an outcome, and carry a valid level and a
// confidence in (0, 1] on each group.
func NewEngine(rules []RuleGroup) (*Engine, error) {
	if len(rules) == 0 {
		return nil, errors.New("rule table is empty")
	}
	var errs []error
	seen := make(map[string]bool, len(rules))
	for i, g := range rules {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("rule %d: missing name", i))
		} else if seen[g.Name] {
			errs = append(errs, fmt.Errorf("rule %d: duplicate name %q", i, g.Name))
		}
		seen[g.Name] = true
		if g.When == nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): missing predicate", i, g.Name))
		}
		if !g.Level.Valid() {
			errs = append(errs, fmt.Errorf("rule %d (%s): invalid level %d", i, g.Name, g.Level))
		}
		if g.Confidence <= 0 || g.Confidence > 1 {
			errs = append(errs, fmt.Errorf("rule %d (%s): confidence %v outside (0, 1]", i, g.Name, g.Confidence))
		}
	}
	if _, ok := rules[len(rules)-1].When.(always); !ok {
		errs = append(errs, errors.New("last rule must be unconditional"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Engine{rules: slices.Clone(rules)}, nil
}

// New returns an engine running the default rules over vocabulary v.
func New(v Vocabulary) (*Engine, error) {
	for _, name := range DefaultVocabulary().Names() {
		if _, ok := v[name]; !ok {
			return nil, fmt.Errorf("vocabulary is missing marker set %q", name)
		}
	}
	return NewEngine(DefaultRules(v))
}

// Default returns an engine running the default rules and vocabulary.
func Default() *Engine {
	e, err := New(DefaultVocabulary())
	if err != nil {
		panic("acuity: default rules invalid: " + err.Error())
	}
	return e
}

// Evaluate normalizes in and returns the outcome of the first matching
// rule group.
func (e *Engine) Evaluate(in Input) Outcome {
	n := Normalize(in)
	return e.EvaluateNormalized(&n)
}

// EvaluateNormalized runs the rule scan over an already-normalized input.
func (e *Engine) EvaluateNormalized(n *Normalized) Outcome {
	for _, g := range e.rules {
		if trigger, ok := g.When.Match(n); ok {
			return g.outcome(trigger)
		}
	}
	// unreachable: NewEngine requires an unconditional last group
	last := e.rules[len(e.rules)-1]
	return last.outcome(RuleDefault)
}

// Rules returns the rule table in evaluation order.
func (e *Engine) Rules() []RuleGroup {
	return slices.Clone(e.rules)
}
