// Package jira provides a Jira REST v2 implementation of domain.IssueStore.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/runoshun/todolog/internal/domain"
)

// Ensure Client implements domain.IssueStore.
var _ domain.IssueStore = (*Client)(nil)

// timeLayout is the timestamp format Jira uses in requests and responses.
const timeLayout = "2006-01-02T15:04:05.000-0700"

// worklogPageSize is the maxResults requested per worklog page.
const worklogPageSize = 100

// Options configures a Client.
// Fields are ordered to minimize memory padding.
type Options struct {
	HTTPClient *http.Client // Base client; defaults to http.DefaultClient
	Logger     domain.Logger
	BaseURL    string        // e.g. https://example.atlassian.net
	Email      string        // Account email (basic auth)
	Token      string        // API token or personal access token
	Auth       domain.JiraAuth
	Timeout    time.Duration // Per-request timeout
}

// Client talks to the Jira REST v2 API.
type Client struct {
	http    *http.Client
	logger  domain.Logger
	baseURL *url.URL
}

// New creates a Client. Bearer auth attaches the token through an oauth2
// static token source; basic auth sends the email and API token.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid jira base url %q", opts.BaseURL)
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("jira token is empty")
	}

	baseClient := opts.HTTPClient
	if baseClient == nil {
		baseClient = http.DefaultClient
	}
	var client *http.Client
	switch opts.Auth {
	case domain.JiraAuthBearer:
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	default:
		if opts.Email == "" {
			return nil, fmt.Errorf("jira basic auth needs an email")
		}
		client = &http.Client{
			Transport: &basicAuthTransport{base: baseClient.Transport, user: opts.Email, token: opts.Token},
			Jar:       baseClient.Jar,
		}
	}
	client.Timeout = opts.Timeout
	if client.Timeout == 0 {
		client.Timeout = domain.DefaultJiraTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Client{http: client, logger: logger, baseURL: base}, nil
}

type basicAuthTransport struct {
	base  http.RoundTripper
	user  string
	token string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.user, t.token)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// issueResponse is the subset of GET /issue/{key} the store reads.
type issueResponse struct {
	Fields struct {
		Description *string `json:"description"`
		Updated     string  `json:"updated"`
	} `json:"fields"`
}

type worklogAuthor struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

type worklogJSON struct {
	Author           *worklogAuthor `json:"author,omitempty"`
	ID               string         `json:"id,omitempty"`
	Comment          string         `json:"comment"`
	Created          string         `json:"created,omitempty"`
	Started          string         `json:"started"`
	TimeSpentSeconds int64          `json:"timeSpentSeconds"`
}

type worklogPage struct {
	Worklogs   []worklogJSON `json:"worklogs"`
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
}

// GetDescription returns the issue description. The version is the
// issue's fields.updated timestamp.
func (c *Client) GetDescription(ctx context.Context, issueKey string) (string, string, error) {
	issue, err := c.getIssue(ctx, issueKey)
	if err != nil {
		return "", "", err
	}
	text := ""
	if issue.Fields.Description != nil {
		text = *issue.Fields.Description
	}
	return text, issue.Fields.Updated, nil
}

// SetDescription re-reads fields.updated and writes the description only
// if it still equals expectedVersion. Jira has no conditional update, so a
// writer landing between the read and the PUT is not detected.
func (c *Client) SetDescription(ctx context.Context, issueKey, text, expectedVersion string) error {
	issue, err := c.getIssue(ctx, issueKey)
	if err != nil {
		return err
	}
	if issue.Fields.Updated != expectedVersion {
		c.logger.Debug(issueKey, "jira",
			fmt.Sprintf("version moved from %s to %s", expectedVersion, issue.Fields.Updated))
		return domain.ErrVersionConflict
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := map[string]any{"fields": map[string]any{"description": text}}
	if err := c.do(ctx, http.MethodPut, c.issuePath(issueKey), nil, body, nil); err != nil {
		return fmt.Errorf("update description of %s: %w", issueKey, err)
	}
	return nil
}

// AppendWorklog posts a worklog entry.
func (c *Client) AppendWorklog(ctx context.Context, issueKey string, in domain.WorklogInput) (*domain.WorklogEntry, error) {
	req := worklogJSON{
		Comment:          in.Comment,
		Started:          in.Started.Format(timeLayout),
		TimeSpentSeconds: in.Seconds,
	}
	var resp worklogJSON
	if err := c.do(ctx, http.MethodPost, c.issuePath(issueKey)+"/worklog", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("add worklog to %s: %w", issueKey, err)
	}
	entry := toEntry(issueKey, resp)
	return &entry, nil
}

// ListWorklogs returns all worklog entries of the issue, following pagination.
func (c *Client) ListWorklogs(ctx context.Context, issueKey string) ([]domain.WorklogEntry, error) {
	var entries []domain.WorklogEntry
	for startAt := 0; ; {
		query := url.Values{}
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(worklogPageSize))

		var page worklogPage
		if err := c.do(ctx, http.MethodGet, c.issuePath(issueKey)+"/worklog", query, nil, &page); err != nil {
			return nil, fmt.Errorf("list worklogs of %s: %w", issueKey, err)
		}
		for _, w := range page.Worklogs {
			entries = append(entries, toEntry(issueKey, w))
		}
		startAt += len(page.Worklogs)
		if len(page.Worklogs) == 0 || startAt >= page.Total {
			return entries, nil
		}
	}
}

func toEntry(issueKey string, w worklogJSON) domain.WorklogEntry {
	entry := domain.WorklogEntry{
		ID:               w.ID,
		IssueKey:         issueKey,
		Comment:          w.Comment,
		TimeSpentSeconds: w.TimeSpentSeconds,
	}
	if w.Author != nil {
		entry.Author = w.Author.EmailAddress
		if entry.Author == "" {
			entry.Author = w.Author.DisplayName
		}
	}
	if t, err := time.Parse(timeLayout, w.Started); err == nil {
		entry.Started = t
	}
	if t, err := time.Parse(timeLayout, w.Created); err == nil {
		entry.CreatedAt = t
	}
	return entry
}

func (c *Client) getIssue(ctx context.Context, issueKey string) (*issueResponse, error) {
	query := url.Values{}
	query.Set("fields", "description,updated")
	var issue issueResponse
	if err := c.do(ctx, http.MethodGet, c.issuePath(issueKey), query, nil, &issue); err != nil {
		return nil, fmt.Errorf("get issue %s: %w", issueKey, err)
	}
	return &issue, nil
}

func (c *Client) issuePath(issueKey string) string {
	return "/rest/api/2/issue/" + url.PathEscape(issueKey)
}

// do sends one request and decodes a JSON response into out when non-nil.
// Status codes map onto domain errors: 404 is ErrIssueNotFound, 409 is
// ErrVersionConflict, and transport failures, auth failures, and 5xx are
// ErrStoreUnavailable.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrStoreUnavailable, err)
	}
	c.logger.Debug("", "jira", fmt.Sprintf("%s %s -> %d", method, u.Path, resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrIssueNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrVersionConflict
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: permission denied (%d): %s", domain.ErrStoreUnavailable, resp.StatusCode, errorMessage(respBody))
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: jira returned %d: %s", domain.ErrStoreUnavailable, resp.StatusCode, errorMessage(respBody))
	case resp.StatusCode >= 300:
		return fmt.Errorf("jira returned %d: %s", resp.StatusCode, errorMessage(respBody))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts Jira's errorMessages/errors payload, falling back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Errors        map[string]string `json:"errors"`
		ErrorMessages []string          `json:"errorMessages"`
	}
	if json.Unmarshal(body, &payload) == nil {
		fields := make([]string, 0, len(payload.Errors))
		for field, msg := range payload.Errors {
			fields = append(fields, field+": "+msg)
		}
		sort.Strings(fields)
		msgs := append(append([]string(nil), payload.ErrorMessages...), fields...)
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(string(body))
}
