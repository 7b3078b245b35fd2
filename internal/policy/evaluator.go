package policy

import (
	"fmt"
	"strconv"

	"github.com/wikibots/redirect-patroller/internal/normalize"
	"github.com/wikibots/redirect-patroller/internal/redirect"
	"github.com/wikibots/redirect-patroller/internal/rules"
	"github.com/wikibots/redirect-patroller/internal/trustlist"
	"go.uber.org/zap"
)

// Filter runs the rule engine over a batch of candidates.
type Filter struct {
	Engine  *rules.Engine
	Trust   trustlist.Set
	Verbose bool
	Logger  *zap.Logger
}

func NewFilter(engine *rules.Engine, trust trustlist.Set, verbose bool, logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{Engine: engine, Trust: trust, Verbose: verbose, Logger: logger}
}

// Evaluate decides every well-formed candidate in input order. Malformed
// candidates are logged and left out.
func (f *Filter) Evaluate(candidates []redirect.Candidate) []Evaluation {
	out := make([]Evaluation, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			f.logger().Warn("skipping redirect", zap.Error(err))
			continue
		}

		pair := normalize.Normalize(c.Title, c.RawTarget)
		decision := f.Engine.Decide(pair.Title, pair.Target, c.Creator, f.Trust)
		if f.Verbose {
			f.logger().Info(AuditLine(pair.Title, pair.Target, c.Creator, decision.Patrol))
		}
		out = append(out, Evaluation{Candidate: c, Pair: pair, Decision: decision})
	}
	return out
}

// Patrollable returns, in input order, the candidates that may be reviewed
// automatically. Returned candidates carry normalized titles and targets.
func (f *Filter) Patrollable(candidates []redirect.Candidate) []redirect.Candidate {
	return Patrollable(f.Evaluate(candidates))
}

func Patrollable(evals []Evaluation) []redirect.Candidate {
	out := make([]redirect.Candidate, 0, len(evals))
	for _, e := range evals {
		if e.Decision.Patrol {
			out = append(out, e.Normalized())
		}
	}
	return out
}

// AuditLine formats the per-candidate audit record.
func AuditLine(title, target, creator string, patrol bool) string {
	return fmt.Sprintf("%s -> %s created by %s - %s", title, target, creator, strconv.FormatBool(patrol))
}

func (f *Filter) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}
