package patroller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/logging"
	"github.com/wikibots/redirect-patroller/internal/mediawiki"
	"github.com/wikibots/redirect-patroller/internal/redirect"
	"github.com/wikibots/redirect-patroller/internal/trustlist"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	candidates []redirect.Candidate
	err        error
}

func (f *fakeSource) Candidates(context.Context) ([]redirect.Candidate, error) {
	return f.candidates, f.err
}

type fakeWiki struct {
	pages     map[string]string
	edits     []mediawiki.EditRequest
	editErr   error
	reviewed  []int64
	fail      map[int64]error
	onReview  func(pageID int64)
	pageReads []string
}

func (f *fakeWiki) PageContent(_ context.Context, title string) (string, error) {
	f.pageReads = append(f.pageReads, title)
	content, ok := f.pages[title]
	if !ok {
		return "", mediawiki.ErrPageMissing
	}
	return content, nil
}

func (f *fakeWiki) Edit(_ context.Context, edit mediawiki.EditRequest) error {
	f.edits = append(f.edits, edit)
	return f.editErr
}

func (f *fakeWiki) Review(_ context.Context, pageID int64) error {
	f.reviewed = append(f.reviewed, pageID)
	if f.onReview != nil {
		f.onReview(pageID)
	}
	return f.fail[pageID]
}

const trustPage = "User:Example bot/Trusted"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Wiki.ReportPage = "User:Example bot/Redirects.json"
	cfg.TrustList.Page = trustPage
	cfg.Patrol.RatePerMinute = 0
	return &cfg
}

func sampleCandidates() []redirect.Candidate {
	return []redirect.Candidate{
		{PageID: 1, Title: "Dogs", RawTarget: "REDIRECT Dog", Creator: "Alice"},
		{PageID: 2, Title: "Apples", RawTarget: "REDIRECT Oranges", Creator: "Bob"},
		{PageID: 3, Title: "Smith,_John", RawTarget: "REDIRECT John Smith", Creator: "Carol"},
		{PageID: 4, Title: "Xyzzy", RawTarget: "REDIRECT Plugh", Creator: "Trusted One"},
		{PageID: 5, Title: "Broken", Creator: "Dave"},
	}
}

func newWiki() *fakeWiki {
	return &fakeWiki{
		pages: map[string]string{
			trustPage: "intro\n<!-- BEGIN TRUSTED CREATORS -->\n* Trusted One\n<!-- END TRUSTED CREATORS -->\n",
		},
		fail: map[int64]error{},
	}
}

func newTestPatroller(t *testing.T, cfg *config.Config, source CandidateSource, wiki Wiki, logger *zap.Logger) (*Patroller, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	p, err := New(cfg, source, wiki, logger)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	decisions := &bytes.Buffer{}
	p.SetOutput(out)
	p.SetDecisionLogger(logging.NewDecisionLogger(decisions))
	p.newRunID = func() string { return "run-1" }
	return p, out, decisions
}

func decodeDecisions(t *testing.T, buf *bytes.Buffer) []logging.Decision {
	t.Helper()
	var out []logging.Decision
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var d logging.Decision
		require.NoError(t, json.Unmarshal([]byte(line), &d))
		out = append(out, d)
	}
	return out
}

func TestRunPatrolsInOrder(t *testing.T) {
	wiki := newWiki()
	core, logs := observer.New(zapcore.InfoLevel)
	p, out, decisions := newTestPatroller(t, testConfig(), &fakeSource{candidates: sampleCandidates()}, wiki, zap.New(core))

	result, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3, 4}, wiki.reviewed)
	assert.Empty(t, out.String())
	assert.Equal(t, 5, result.Fetched)
	assert.Equal(t, 1, result.Malformed)
	assert.Equal(t, 3, result.Patrollable)
	assert.Equal(t, 3, result.Patrolled)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, wiki.edits, 1)
	assert.Equal(t, "User:Example bot/Redirects.json", wiki.edits[0].Title)
	assert.Equal(t, "Redirects to patrol (bot)", wiki.edits[0].Summary)
	assert.JSONEq(t, `[
		{"pageid":1,"title":"Dogs","target":"Dog","user":"Alice"},
		{"pageid":3,"title":"Smith, John","target":"John Smith","user":"Carol"},
		{"pageid":4,"title":"Xyzzy","target":"Plugh","user":"Trusted One"}
	]`, wiki.edits[0].Text)

	entries := decodeDecisions(t, decisions)
	require.Len(t, entries, 4)
	assert.Equal(t, "R2", entries[0].Rule)
	assert.Equal(t, logging.ActionPatrolled, entries[0].Action)
	assert.Equal(t, logging.ActionNone, entries[1].Action)
	assert.True(t, entries[3].Trusted)
	assert.Equal(t, "run-1", entries[2].RunID)

	assert.Equal(t, 1, logs.FilterMessage("Task complete!").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping redirect").Len())
}

func TestRunDryDoesNotReview(t *testing.T) {
	wiki := newWiki()
	p, out, decisions := newTestPatroller(t, testConfig(), &fakeSource{candidates: sampleCandidates()}, wiki, zap.NewNop())

	result, err := p.Run(context.Background(), RunOptions{Dry: true})
	require.NoError(t, err)

	assert.Empty(t, wiki.reviewed)
	assert.Len(t, wiki.edits, 1)
	assert.Equal(t, 3, result.DryRun)
	assert.Equal(t, wiki.edits[0].Text+"\n", out.String())
	for _, d := range decodeDecisions(t, decisions) {
		if d.Patrol {
			assert.Equal(t, logging.ActionDryRun, d.Action)
		}
	}
}

func TestRunContinuesAfterFailedReview(t *testing.T) {
	wiki := newWiki()
	wiki.fail[1] = &mediawiki.APIError{Code: "bad-pagetriage-page"}
	wiki.fail[3] = errors.New("connection reset")
	wiki.editErr = &mediawiki.APIError{Code: "protectedpage"}
	p, _, decisions := newTestPatroller(t, testConfig(), &fakeSource{candidates: sampleCandidates()}, wiki, zap.NewNop())

	result, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3, 4}, wiki.reviewed)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Patrolled)

	var actionErr *ActionError
	require.ErrorAs(t, result.Outcomes[0].Err, &actionErr)
	assert.Equal(t, "bad-pagetriage-page", actionErr.Code)
	assert.Equal(t, "Unknown", result.Outcomes[1].ErrorCode)

	entries := decodeDecisions(t, decisions)
	assert.Equal(t, "bad-pagetriage-page", entries[0].ErrorCode)
	assert.Equal(t, logging.ActionFailed, entries[0].Action)
}

func TestRunStopsOnCancel(t *testing.T) {
	wiki := newWiki()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wiki.onReview = func(int64) { cancel() }
	p, _, decisions := newTestPatroller(t, testConfig(), &fakeSource{candidates: sampleCandidates()}, wiki, zap.NewNop())

	result, err := p.Run(ctx, RunOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	assert.Equal(t, []int64{1}, wiki.reviewed)
	assert.Equal(t, 2, result.Skipped)

	entries := decodeDecisions(t, decisions)
	assert.Equal(t, logging.ActionSkipped, entries[2].Action)
}

func TestRunTrustListErrorsAbort(t *testing.T) {
	wiki := newWiki()
	wiki.pages[trustPage] = "no markers here"
	p, _, _ := newTestPatroller(t, testConfig(), &fakeSource{candidates: sampleCandidates()}, wiki, zap.NewNop())

	_, err := p.Run(context.Background(), RunOptions{})
	var parseErr *trustlist.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Empty(t, wiki.edits)
	assert.Empty(t, wiki.reviewed)

	delete(wiki.pages, trustPage)
	_, err = p.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, mediawiki.ErrPageMissing)
}

func TestRunWithoutTrustPage(t *testing.T) {
	cfg := testConfig()
	cfg.TrustList.Page = ""
	wiki := newWiki()
	p, _, _ := newTestPatroller(t, cfg, &fakeSource{candidates: sampleCandidates()}, wiki, zap.NewNop())

	result, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, wiki.pageReads)
	assert.Equal(t, []int64{1, 3}, wiki.reviewed)
	assert.Equal(t, 2, result.Patrolled)
}

func TestRunSourceError(t *testing.T) {
	p, _, _ := newTestPatroller(t, testConfig(), &fakeSource{err: errors.New("replica down")}, newWiki(), zap.NewNop())

	_, err := p.Run(context.Background(), RunOptions{})
	assert.ErrorContains(t, err, "replica down")
}

func TestRunEmptyQueue(t *testing.T) {
	wiki := newWiki()
	p, _, decisions := newTestPatroller(t, testConfig(), &fakeSource{}, wiki, zap.NewNop())

	result, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, wiki.edits, 1)
	assert.Equal(t, "[]", wiki.edits[0].Text)
	assert.Zero(t, result.Patrollable)
	assert.Empty(t, decisions.String())
}

func TestNewRejectsUnknownRule(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.Disabled = []string{"R42"}
	_, err := New(cfg, &fakeSource{}, newWiki(), nil)
	assert.Error(t, err)
}
