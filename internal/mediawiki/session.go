package mediawiki

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Session is a logged-in handle. It is not safe for concurrent use.
type Session struct {
	client    *Client
	username  string
	csrfToken string
	closed    bool
}

type EditRequest struct {
	Title   string
	Text    string
	Summary string
	Bot     bool
}

func (s *Session) Username() string {
	return s.username
}

func (s *Session) PageContent(ctx context.Context, title string) (string, error) {
	return s.client.PageContent(ctx, title)
}

// Edit replaces the content of a page.
func (s *Session) Edit(ctx context.Context, edit EditRequest) error {
	return s.withToken(ctx, func(token string) error {
		var resp editResponse
		err := s.client.post(ctx, editParams{
			Action:  "edit",
			Title:   edit.Title,
			Text:    edit.Text,
			Summary: edit.Summary,
			Bot:     edit.Bot,
			Token:   token,
		}, &resp)
		if err != nil {
			return err
		}
		if resp.Edit.Result != "Success" {
			return &APIError{Code: "edit-" + strings.ToLower(defaultResult(resp.Edit.Result))}
		}
		return nil
	})
}

// Review marks a page as reviewed in the PageTriage queue.
func (s *Session) Review(ctx context.Context, pageID int64) error {
	return s.withToken(ctx, func(token string) error {
		var resp reviewResponse
		err := s.client.post(ctx, reviewParams{
			Action:   "pagetriageaction",
			PageID:   pageID,
			Reviewed: 1,
			Token:    token,
		}, &resp)
		if err != nil {
			return err
		}
		if !strings.EqualFold(resp.PageTriageAction.Result, "success") {
			return &APIError{Code: "pagetriage-" + strings.ToLower(defaultResult(resp.PageTriageAction.Result))}
		}
		return nil
	})
}

// Close logs out. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.client.post(ctx, logoutParams{Action: "logout", Token: s.csrfToken}, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.client.logger.Debug("logged out", zap.String("user", s.username))
	return nil
}

// withToken runs fn with the CSRF token, refreshing it once on badtoken.
func (s *Session) withToken(ctx context.Context, fn func(token string) error) error {
	if s.closed {
		return ErrSessionClosed
	}

	err := fn(s.csrfToken)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "badtoken" {
		return err
	}

	token, tokenErr := s.client.token(ctx, "csrf")
	if tokenErr != nil {
		return err
	}
	s.csrfToken = token
	return fn(token)
}

func defaultResult(result string) string {
	if result == "" {
		return "unknown"
	}
	return result
}
