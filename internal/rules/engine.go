package rules

import (
	"github.com/wikibots/redirect-patroller/internal/collate"
	"github.com/wikibots/redirect-patroller/internal/trustlist"
)

// Engine evaluates an ordered rule chain. Rules are independent disjuncts, so
// order only decides which rule is reported as the match.
type Engine struct {
	rules []Rule
	equal Comparator
}

func NewEngine(rules []Rule) *Engine {
	return &Engine{
		rules: append([]Rule(nil), rules...),
		equal: collate.BaseEqual,
	}
}

// Rules returns the IDs of the active rules in evaluation order.
func (e *Engine) Rules() []ID {
	out := make([]ID, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, rule.ID)
	}
	return out
}

func (e *Engine) Decide(title, target, creator string, trust trustlist.Set) Decision {
	if trust.Contains(creator) {
		return Decision{Patrol: true, Trusted: true}
	}
	for _, rule := range e.rules {
		if rule.Matches(title, target, e.equal) {
			return Decision{Patrol: true, Rule: rule.ID}
		}
	}
	return Decision{}
}

func (e *Engine) ShouldPatrol(title, target, creator string, trust trustlist.Set) bool {
	return e.Decide(title, target, creator, trust).Patrol
}

// Matches applies the rule transform to fresh copies of its inputs.
func (r Rule) Matches(title, target string, equal Comparator) bool {
	transform := r.Transform
	if transform == nil {
		transform = identity
	}

	switch r.Side {
	case SideTitle:
		return equal(transform(title), target)
	case SideTarget:
		return equal(transform(target), title)
	case SideBoth:
		return equal(transform(target), transform(title))
	case SideEither:
		return equal(transform(title), target) || equal(transform(target), title)
	default:
		return false
	}
}

func identity(s string) string {
	return s
}
