package policy

import (
	"github.com/wikibots/redirect-patroller/internal/normalize"
	"github.com/wikibots/redirect-patroller/internal/redirect"
	"github.com/wikibots/redirect-patroller/internal/rules"
)

// Evaluation is the decision for one candidate together with the normalized
// names it was made on.
type Evaluation struct {
	Candidate redirect.Candidate
	Pair      normalize.Pair
	Decision  rules.Decision
}

// Normalized returns the candidate with its title and target normalized.
func (e Evaluation) Normalized() redirect.Candidate {
	c := e.Candidate
	c.Title = e.Pair.Title
	c.RawTarget = e.Pair.Target
	return c
}
