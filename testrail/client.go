package testrail

// This file contains the TestRail API client. It wraps the handful of
// REST v2 endpoints needed to mirror test results: run creation, case
// association, result posting, comments and attachments.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single HTTP attempt when the configuration
// does not specify one.
const DefaultTimeout = 5 * time.Second

// Transient failures are retried with exponential backoff, capped at
// maxAttempts total attempts per call.
const (
	maxAttempts  = 5
	retryWaitMin = 1 * time.Second
	retryWaitMax = 10 * time.Second
)

// Config holds the connection settings for one TestRail instance.
type Config struct {
	BaseURL   string
	Username  string
	APIKey    string
	ProjectID int
	SuiteID   int
	Timeout   time.Duration
}

// Run is the handle of a TestRail test run. It is created exactly once
// per session and passed explicitly to every operation that posts
// against the run.
type Run struct {
	ID int
}

// Started reports whether the handle refers to a created run.
func (r Run) Started() bool {
	return r.ID != 0
}

// Client performs authenticated calls against a TestRail instance.
type Client struct {
	baseURL   string
	username  string
	apiKey    string
	projectID int
	suiteID   int
	http      *retryablehttp.Client
}

// NewClient builds a client for the given instance. The base URL is
// normalized once here; retry policy and per-request timeout apply to
// every call made through the client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxAttempts - 1
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.Logger = retryLogger{logger: logger}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rc.HTTPClient.Timeout = timeout

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		username:  cfg.Username,
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
		suiteID:   cfg.SuiteID,
		http:      rc,
	}
}

// CreateRun creates a new test run under the configured project/suite
// and returns its handle.
func (c *Client) CreateRun(ctx context.Context, name string) (Run, error) {
	payload := map[string]any{
		"name":        name,
		"include_all": false,
		"case_ids":    []string{},
	}
	if c.suiteID != 0 {
		payload["suite_id"] = c.suiteID
	}

	data, err := c.postJSON(ctx, "add_run", c.endpoint("add_run", fmt.Sprint(c.projectID)), payload)
	if err != nil {
		return Run{}, err
	}

	var resp struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return Run{}, fmt.Errorf("testrail: decoding add_run response: %w", err)
	}
	if resp.ID == 0 {
		return Run{}, fmt.Errorf("testrail: add_run response carries no run id")
	}
	return Run{ID: resp.ID}, nil
}

// AddCasesToRun associates the given case IDs with an existing run.
func (c *Client) AddCasesToRun(ctx context.Context, run Run, caseIDs []string) error {
	if !run.Started() {
		return ErrRunNotStarted
	}
	payload := map[string]any{"case_ids": caseIDs}
	_, err := c.postJSON(ctx, "update_run", c.endpoint("update_run", fmt.Sprint(run.ID)), payload)
	return err
}

// PostResult records one result for one case against the run.
func (c *Client) PostResult(ctx context.Context, run Run, caseID string, status Status, comment string) error {
	if !run.Started() {
		return ErrRunNotStarted
	}
	payload := map[string]any{
		"status_id": int(status),
		"comment":   comment,
	}
	_, err := c.postJSON(ctx, "add_result_for_case",
		c.endpoint("add_result_for_case", fmt.Sprint(run.ID), caseID), payload)
	return err
}

// AddComment posts a comment on a case without changing its status.
func (c *Client) AddComment(ctx context.Context, caseID, text string) error {
	payload := map[string]any{"comment": text}
	_, err := c.postJSON(ctx, "add_comment_to_case", c.endpoint("add_comment_to_case", caseID), payload)
	return err
}

// AttachFile uploads the file at path as a multipart attachment on the
// given case. A rejected upload yields an AttachmentError rather than a
// generic HTTPError.
func (c *Client) AttachFile(ctx context.Context, caseID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("testrail: reading attachment: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("attachment", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("testrail: building multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("testrail: building multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("testrail: building multipart body: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("add_attachment_to_case", caseID), buf.Bytes())
	if err != nil {
		return fmt.Errorf("testrail: building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth(c.username, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &AttachmentError{
			CaseID:     caseID,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return nil
}

// endpoint builds a TestRail REST v2 URL: index.php?/api/v2/<verb>/<ids...>
func (c *Client) endpoint(verb string, ids ...string) string {
	var sb strings.Builder
	sb.WriteString(c.baseURL)
	sb.WriteString("/index.php?/api/v2/")
	sb.WriteString(verb)
	for _, id := range ids {
		sb.WriteString("/")
		sb.WriteString(id)
	}
	return sb.String()
}

// postJSON performs one retried POST with a JSON body and returns the
// response body. Transport errors after retry exhaustion propagate
// unmodified; non-2xx responses become an HTTPError.
func (c *Client) postJSON(ctx context.Context, op, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("testrail: encoding %s payload: %w", op, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("testrail: building %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("testrail: reading %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	return data, nil
}
