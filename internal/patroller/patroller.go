// Package patroller runs one batch: fetch unreviewed redirects, classify them,
// publish the report and review the patrollable ones.
package patroller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/logging"
	"github.com/wikibots/redirect-patroller/internal/mediawiki"
	"github.com/wikibots/redirect-patroller/internal/observability"
	"github.com/wikibots/redirect-patroller/internal/policy"
	"github.com/wikibots/redirect-patroller/internal/ratelimit"
	"github.com/wikibots/redirect-patroller/internal/redirect"
	"github.com/wikibots/redirect-patroller/internal/report"
	"github.com/wikibots/redirect-patroller/internal/rules"
	"github.com/wikibots/redirect-patroller/internal/trustlist"
	"go.uber.org/zap"
)

type CandidateSource interface {
	Candidates(ctx context.Context) ([]redirect.Candidate, error)
}

type PageReader interface {
	PageContent(ctx context.Context, title string) (string, error)
}

// Wiki is the logged-in side of the run. *mediawiki.Session implements it.
type Wiki interface {
	PageReader
	Edit(ctx context.Context, edit mediawiki.EditRequest) error
	Review(ctx context.Context, pageID int64) error
}

type RunOptions struct {
	Dry     bool
	Verbose bool
}

type Status string

const (
	StatusPatrolled Status = logging.ActionPatrolled
	StatusFailed    Status = logging.ActionFailed
	StatusDryRun    Status = logging.ActionDryRun
)

type Outcome struct {
	PageID    int64
	Title     string
	Status    Status
	ErrorCode string
	Err       error
}

type Result struct {
	RunID       string
	Fetched     int
	Malformed   int
	Evaluated   int
	Patrollable int
	Patrolled   int
	Failed      int
	DryRun      int
	Skipped     int
	Report      []report.Record
	Outcomes    []Outcome
}

// ActionError is a failed review action on one page.
type ActionError struct {
	PageID int64
	Code   string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("review page %d: %s: %v", e.PageID, e.Code, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

type settings struct {
	reportPage  string
	editSummary string
	trustPage   string
	markers     trustlist.Markers
}

type Patroller struct {
	source   CandidateSource
	wiki     Wiki
	engine   *rules.Engine
	settings settings
	throttle *ratelimit.Throttle

	logger      *zap.Logger
	decisionLog *logging.DecisionLogger
	metrics     *observability.Metrics
	out         io.Writer

	now      func() time.Time
	newRunID func() string
}

func New(cfg *config.Config, source CandidateSource, wiki Wiki, logger *zap.Logger) (*Patroller, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if source == nil || wiki == nil {
		return nil, errors.New("candidate source and wiki are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := rules.BuildEngine(cfg)
	if err != nil {
		return nil, err
	}

	return &Patroller{
		source: source,
		wiki:   wiki,
		engine: engine,
		settings: settings{
			reportPage:  cfg.Wiki.ReportPage,
			editSummary: cfg.Wiki.EditSummary,
			trustPage:   cfg.TrustList.Page,
			markers:     TrustMarkers(cfg.TrustList),
		},
		throttle: ratelimit.NewThrottle(cfg.Patrol.RatePerMinute, cfg.Patrol.Burst),
		logger:   logger,
		out:      os.Stdout,
		now:      time.Now,
		newRunID: uuid.NewString,
	}, nil
}

func (p *Patroller) SetDecisionLogger(logger *logging.DecisionLogger) {
	p.decisionLog = logger
}

func (p *Patroller) SetMetrics(metrics *observability.Metrics) {
	p.metrics = metrics
}

// SetOutput sets where the dry-run report is printed.
func (p *Patroller) SetOutput(w io.Writer) {
	p.out = w
}

func (p *Patroller) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := p.now()
	result := &Result{RunID: p.newRunID()}
	logger := p.logger.With(zap.String("run_id", result.RunID))

	logger.Info("Running query to fetch unpatrolled redirects")
	candidates, err := p.source.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	result.Fetched = len(candidates)

	trust, err := LoadTrustList(ctx, p.wiki, p.settings.trustPage, p.settings.markers)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveTrustList(trust.Len())

	evals := policy.NewFilter(p.engine, trust, opts.Verbose, logger).Evaluate(candidates)
	result.Evaluated = len(evals)
	result.Malformed = result.Fetched - result.Evaluated
	p.metrics.ObserveCandidates(result.Fetched, result.Malformed)

	patrollable := policy.Patrollable(evals)
	result.Patrollable = len(patrollable)
	result.Report = report.Records(patrollable)
	payload, err := report.EncodeRecords(result.Report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	p.updateReport(ctx, logger, payload)

	var loopErr error
	if opts.Dry {
		fmt.Fprintln(p.out, string(payload))
		result.Outcomes = dryRunOutcomes(patrollable)
	} else {
		result.Outcomes, loopErr = p.patrol(ctx, logger, patrollable)
	}

	for _, o := range result.Outcomes {
		switch o.Status {
		case StatusPatrolled:
			result.Patrolled++
		case StatusFailed:
			result.Failed++
		case StatusDryRun:
			result.DryRun++
		}
	}
	result.Skipped = result.Patrollable - len(result.Outcomes)

	p.writeDecisions(logger, result.RunID, evals, result.Outcomes)
	finished := p.now()
	p.metrics.ObserveRun(finished.Sub(start), finished)

	fields := []zap.Field{
		zap.Int("fetched", result.Fetched),
		zap.Int("patrollable", result.Patrollable),
		zap.Int("patrolled", result.Patrolled),
		zap.Int("failed", result.Failed),
	}
	if loopErr != nil {
		logger.Warn("run interrupted", append(fields, zap.Int("skipped", result.Skipped), zap.Error(loopErr))...)
		return result, loopErr
	}
	logger.Info("Task complete!", fields...)
	return result, nil
}

// updateReport replaces the report page content. Failures are logged only.
func (p *Patroller) updateReport(ctx context.Context, logger *zap.Logger, payload []byte) {
	if p.settings.reportPage == "" {
		return
	}
	logger.Info("Writing report", zap.String("page", p.settings.reportPage))
	err := p.wiki.Edit(ctx, mediawiki.EditRequest{
		Title:   p.settings.reportPage,
		Text:    string(payload),
		Summary: p.settings.editSummary,
	})
	if err != nil {
		logger.Warn("Failed to write to page", zap.String("code", mediawiki.ErrorCode(err)), zap.Error(err))
	}
}

// patrol reviews each candidate in order, one call at a time. It stops early
// only when ctx is done.
func (p *Patroller) patrol(ctx context.Context, logger *zap.Logger, candidates []redirect.Candidate) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(candidates))
	for i, c := range candidates {
		if err := p.throttle.Wait(ctx); err != nil {
			return outcomes, fmt.Errorf("patrol stopped after %d of %d pages: %w", i, len(candidates), err)
		}

		logger.Info("Patrolling", zap.Int64("pageid", c.PageID), zap.String("title", c.Title))
		outcome := Outcome{PageID: c.PageID, Title: c.Title, Status: StatusPatrolled}
		if err := p.wiki.Review(ctx, c.PageID); err != nil {
			actionErr := &ActionError{PageID: c.PageID, Code: mediawiki.ErrorCode(err), Err: err}
			outcome.Status = StatusFailed
			outcome.ErrorCode = actionErr.Code
			outcome.Err = actionErr
			logger.Warn("Failed to patrol page", zap.Int64("pageid", c.PageID), zap.String("code", actionErr.Code), zap.Error(err))
		}
		p.metrics.ObserveAction(string(outcome.Status), outcome.ErrorCode)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func dryRunOutcomes(candidates []redirect.Candidate) []Outcome {
	out := make([]Outcome, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Outcome{PageID: c.PageID, Title: c.Title, Status: StatusDryRun})
	}
	return out
}

// writeDecisions records one entry per evaluation. Outcomes line up with the
// patrollable evaluations in order; those past the end were never acted on.
func (p *Patroller) writeDecisions(logger *zap.Logger, runID string, evals []policy.Evaluation, outcomes []Outcome) {
	next := 0
	for _, e := range evals {
		p.metrics.ObserveDecision(e.Decision.Patrol, e.Decision.Trusted, string(e.Decision.Rule))

		entry := logging.Decision{
			RunID:   runID,
			PageID:  e.Candidate.PageID,
			Title:   e.Pair.Title,
			Target:  e.Pair.Target,
			Creator: e.Candidate.Creator,
			Patrol:  e.Decision.Patrol,
			Rule:    string(e.Decision.Rule),
			Trusted: e.Decision.Trusted,
			Action:  logging.ActionNone,
		}
		if e.Decision.Patrol {
			entry.Action = logging.ActionSkipped
			if next < len(outcomes) {
				entry.Action = string(outcomes[next].Status)
				entry.ErrorCode = outcomes[next].ErrorCode
				next++
			}
		}

		if err := p.decisionLog.Write(entry); err != nil {
			logger.Warn("decision log write failed", zap.Error(err))
			return
		}
	}
}
