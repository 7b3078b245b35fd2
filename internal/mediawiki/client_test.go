package mediawiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikibots/redirect-patroller/internal/config"
	"go.uber.org/zap"
)

type fakeWiki struct {
	mu       sync.Mutex
	pages    map[string]string
	edits    map[string]string
	reviewed []string
	badToken int
	actions  []string
	agents   []string
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{pages: map[string]string{}, edits: map[string]string{}}
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("format") != "json" || r.PostForm.Get("formatversion") != "2" {
		http.Error(w, "bad format", http.StatusBadRequest)
		return
	}
	action := r.PostForm.Get("action")
	f.actions = append(f.actions, action)
	f.agents = append(f.agents, r.UserAgent())
	w.Header().Set("Content-Type", "application/json")

	loggedIn := false
	if c, err := r.Cookie("session"); err == nil && c.Value == "ok" {
		loggedIn = true
	}

	switch action {
	case "query":
		if r.PostForm.Get("meta") == "tokens" {
			if r.PostForm.Get("type") == "login" {
				fmt.Fprint(w, `{"query":{"tokens":{"logintoken":"LT+\\"}}}`)
				return
			}
			fmt.Fprint(w, `{"query":{"tokens":{"csrftoken":"CSRF+\\"}}}`)
			return
		}
		title := r.PostForm.Get("titles")
		content, ok := f.pages[title]
		if !ok {
			fmt.Fprintf(w, `{"query":{"pages":[{"ns":2,"title":%q,"missing":true}]}}`, title)
			return
		}
		fmt.Fprintf(w, `{"query":{"pages":[{"pageid":1,"title":%q,"revisions":[{"slots":{"main":{"content":%q}}}]}]}}`, title, content)
	case "login":
		if r.PostForm.Get("lgtoken") != `LT+\` || r.PostForm.Get("lgpassword") != "secret" {
			fmt.Fprint(w, `{"login":{"result":"Failed","reason":"Incorrect username or password entered."}}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		fmt.Fprintf(w, `{"login":{"result":"Success","lgusername":%q}}`, r.PostForm.Get("lgname"))
	case "edit":
		if !loggedIn {
			fmt.Fprint(w, `{"error":{"code":"permissiondenied","info":"not logged in"}}`)
			return
		}
		if f.badToken > 0 {
			f.badToken--
			fmt.Fprint(w, `{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`)
			return
		}
		f.edits[r.PostForm.Get("title")] = r.PostForm.Get("text")
		fmt.Fprint(w, `{"edit":{"result":"Success"}}`)
	case "pagetriageaction":
		if !loggedIn || r.PostForm.Get("token") != `CSRF+\` {
			fmt.Fprint(w, `{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`)
			return
		}
		if r.PostForm.Get("pageid") == "404" {
			fmt.Fprint(w, `{"error":{"code":"bad-pagetriage-page","info":"The page specified does not exist in pagetriage queue"}}`)
			return
		}
		if r.PostForm.Get("reviewed") != "1" {
			http.Error(w, "reviewed must be 1", http.StatusBadRequest)
			return
		}
		f.reviewed = append(f.reviewed, r.PostForm.Get("pageid"))
		fmt.Fprint(w, `{"pagetriageaction":{"result":"success"}}`)
	case "logout":
		fmt.Fprint(w, `{}`)
	default:
		fmt.Fprint(w, `{"error":{"code":"badvalue","info":"Unrecognized value for parameter \"action\"."}}`)
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.WikiConfig{
		APIURL:    server.URL,
		UserAgent: "redirect-patroller-test/1.0",
		Timeout:   5 * time.Second,
		Retries:   2,
	}, zap.NewNop())
	require.NoError(t, err)
	client.http.RetryWaitMin = time.Millisecond
	client.http.RetryWaitMax = 5 * time.Millisecond
	return client
}

func TestPageContent(t *testing.T) {
	wiki := newFakeWiki()
	wiki.pages["User:Bot/Trusted"] = "* Alice\n"
	client := newTestClient(t, wiki)

	content, err := client.PageContent(context.Background(), "User:Bot/Trusted")
	require.NoError(t, err)
	assert.Equal(t, "* Alice\n", content)
	assert.Equal(t, "redirect-patroller-test/1.0", wiki.agents[0])

	_, err = client.PageContent(context.Background(), "User:Bot/Nope")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestLoginEditReviewClose(t *testing.T) {
	wiki := newFakeWiki()
	client := newTestClient(t, wiki)
	ctx := context.Background()

	session, err := client.Login(ctx, "Example bot@patrol", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Example bot@patrol", session.Username())

	require.NoError(t, session.Edit(ctx, EditRequest{Title: "User:Bot/Report", Text: "[]", Summary: "Redirects to patrol (bot)"}))
	assert.Equal(t, "[]", wiki.edits["User:Bot/Report"])

	require.NoError(t, session.Review(ctx, 42))
	assert.Equal(t, []string{"42"}, wiki.reviewed)

	err = session.Review(ctx, 404)
	require.Error(t, err)
	assert.Equal(t, "bad-pagetriage-page", ErrorCode(err))

	require.NoError(t, session.Close(ctx))
	require.NoError(t, session.Close(ctx))
	assert.ErrorIs(t, session.Review(ctx, 1), ErrSessionClosed)
	assert.Equal(t, "logout", wiki.actions[len(wiki.actions)-1])
}

func TestLoginFailure(t *testing.T) {
	client := newTestClient(t, newFakeWiki())

	_, err := client.Login(context.Background(), "Example bot@patrol", "wrong")
	require.Error(t, err)
	assert.Equal(t, "failed", ErrorCode(err))
}

func TestEditRefreshesBadToken(t *testing.T) {
	wiki := newFakeWiki()
	client := newTestClient(t, wiki)
	ctx := context.Background()

	session, err := client.Login(ctx, "Example bot@patrol", "secret")
	require.NoError(t, err)

	wiki.badToken = 1
	require.NoError(t, session.Edit(ctx, EditRequest{Title: "Report", Text: "[]"}))
	assert.Equal(t, "[]", wiki.edits["Report"])

	wiki.badToken = 2
	err = session.Edit(ctx, EditRequest{Title: "Report", Text: "[1]"})
	assert.Equal(t, "badtoken", ErrorCode(err))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int
	var mu sync.Mutex
	wiki := newFakeWiki()
	wiki.pages["Page"] = "body"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		wiki.ServeHTTP(w, r)
	})
	client := newTestClient(t, handler)

	content, err := client.PageContent(context.Background(), "Page")
	require.NoError(t, err)
	assert.Equal(t, "body", content)
	assert.Equal(t, 2, calls)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "Unknown", ErrorCode(errors.New("boom")))
	assert.Equal(t, "Unknown", ErrorCode(nil))
	assert.Equal(t, "ratelimited", ErrorCode(fmt.Errorf("wrap: %w", &APIError{Code: "ratelimited"})))
	assert.Equal(t, "mediawiki api error ratelimited: slow down", (&APIError{Code: "ratelimited", Info: "slow down"}).Error())
}
