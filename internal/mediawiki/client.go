// Package mediawiki is a small MediaWiki Action API client covering what the
// patroller needs: anonymous page reads, bot login, page edits and PageTriage
// review actions.
package mediawiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/logging"
	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

type Client struct {
	apiURL    string
	userAgent string
	http      *retryablehttp.Client
	logger    *zap.Logger
}

// New builds a client with retries on connection errors, 5xx and 429. Each
// client has its own cookie jar, which carries the login session.
func New(cfg config.WikiConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("api url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(logging.NewLeveledZap(logger.Named("http")))
	retryClient.HTTPClient.Jar = jar
	if cfg.Timeout > 0 {
		retryClient.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		apiURL:    cfg.APIURL,
		userAgent: cfg.UserAgent,
		http:      retryClient,
		logger:    logger,
	}, nil
}

// PageContent returns the main-slot wikitext of the latest revision of title.
func (c *Client) PageContent(ctx context.Context, title string) (string, error) {
	var resp revisionsResponse
	err := c.post(ctx, revisionsQuery{
		Action: "query",
		Prop:   "revisions",
		Titles: title,
		Slots:  "main",
		RvProp: "content",
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Query.Pages) == 0 {
		return "", fmt.Errorf("%w: %s", ErrPageMissing, title)
	}
	page := resp.Query.Pages[0]
	if page.Missing || page.Invalid || len(page.Revisions) == 0 {
		return "", fmt.Errorf("%w: %s", ErrPageMissing, title)
	}
	return page.Revisions[0].Slots.Main.Content, nil
}

// Login authenticates with a bot password and returns the session handle.
// The caller owns the session and must Close it.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	loginToken, err := c.token(ctx, "login")
	if err != nil {
		return nil, fmt.Errorf("fetch login token: %w", err)
	}

	var resp loginResponse
	err = c.post(ctx, loginParams{
		Action:   "login",
		Name:     username,
		Password: password,
		Token:    loginToken,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Login.Result != "Success" {
		return nil, fmt.Errorf("login: %w", &APIError{Code: strings.ToLower(resp.Login.Result), Info: resp.Login.Reason})
	}

	csrf, err := c.token(ctx, "csrf")
	if err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}

	name := resp.Login.Username
	if name == "" {
		name = username
	}
	c.logger.Debug("logged in", zap.String("user", name))
	return &Session{client: c, username: name, csrfToken: csrf}, nil
}

func (c *Client) token(ctx context.Context, kind string) (string, error) {
	var resp tokensResponse
	if err := c.post(ctx, tokenQuery{Action: "query", Meta: "tokens", Type: kind}, &resp); err != nil {
		return "", err
	}

	var token string
	switch kind {
	case "login":
		token = resp.Query.Tokens.LoginToken
	default:
		token = resp.Query.Tokens.CSRFToken
	}
	if token == "" {
		return "", fmt.Errorf("no %s token in response", kind)
	}
	return token, nil
}

// post sends params as a form-encoded request and decodes the JSON response
// into out. API error envelopes are returned as *APIError.
func (c *Client) post(ctx context.Context, params any, out any) error {
	values, err := query.Values(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	values.Set("format", "json")
	values.Set("formatversion", "2")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, []byte(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d", resp.StatusCode)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
