package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"wyboard/internal/kanban/models"
)

const (
	// DefaultTimeout bounds every backend call when no timeout is configured
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-call id so client and server logs line up
	RequestIDHeader = "X-Request-ID"
)

// Options configures a Client
type Options struct {
	BaseURL    string        // e.g. http://localhost:8080/pms
	Token      string        // bearer token; empty means unauthenticated
	Timeout    time.Duration // per call
	HTTPClient *http.Client  // base transport, mainly for tests
	Logger     log.FieldLogger
}

// Client implements Service over the backend's JSON REST API
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     log.FieldLogger
}

var _ Service = (*Client)(nil)

// New creates a REST client. When a token is given every request carries it
// as a bearer credential.
func New(ctx context.Context, opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", base, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.Token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		timeout: timeout,
		log:     logger,
	}, nil
}

// ListColumns implements Service.
func (c *Client) ListColumns(ctx context.Context, projectID int64) ([]models.Column, error) {
	var cols []models.Column
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/columns", projectID), nil, nil, &cols)
	return cols, err
}

// ListTasks implements Service.
func (c *Client) ListTasks(ctx context.Context, columnID int64) ([]models.Task, error) {
	var tasks []models.Task
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/column/%d", columnID), nil, nil, &tasks)
	return tasks, err
}

// CreateColumn implements Service.
func (c *Client) CreateColumn(ctx context.Context, projectID int64, req models.ColumnRequest) (models.Column, error) {
	var col models.Column
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/columns", projectID), nil, req, &col)
	return col, err
}

// UpdateColumn implements Service. The backend takes the changed fields as
// query parameters with an empty body.
func (c *Client) UpdateColumn(ctx context.Context, projectID, columnID int64, upd models.ColumnUpdate) (models.Column, error) {
	q := url.Values{}
	if upd.Name != nil {
		q.Set("name", *upd.Name)
	}
	if upd.Color != nil {
		q.Set("color", *upd.Color)
	}
	if upd.WIPLimit != nil {
		q.Set("wipLimit", strconv.Itoa(*upd.WIPLimit))
	}

	var col models.Column
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/columns/%d", projectID, columnID), q, struct{}{}, &col)
	return col, err
}

// DeleteColumn implements Service.
func (c *Client) DeleteColumn(ctx context.Context, projectID, columnID, targetColumnID int64) error {
	q := url.Values{"targetColumnId": {strconv.FormatInt(targetColumnID, 10)}}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d/columns/%d", projectID, columnID), q, nil, nil)
}

// ReorderColumns implements Service.
func (c *Client) ReorderColumns(ctx context.Context, projectID int64, columnIDs []int64) error {
	if columnIDs == nil {
		columnIDs = []int64{}
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/columns/reorder", projectID), nil, columnIDs, nil)
}

// CreateTask implements Service.
func (c *Client) CreateTask(ctx context.Context, req models.TaskRequest) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &task)
	return task, err
}

// UpdateTask implements Service.
func (c *Client) UpdateTask(ctx context.Context, taskID int64, req models.TaskRequest) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), nil, req, &task)
	return task, err
}

// DeleteTask implements Service.
func (c *Client) DeleteTask(ctx context.Context, taskID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), nil, nil, nil)
}

// MoveTask implements Service.
func (c *Client) MoveTask(ctx context.Context, taskID, columnID int64, position int) (models.Task, error) {
	q := url.Values{
		"columnId": {strconv.FormatInt(columnID, 10)},
		"position": {strconv.Itoa(position)},
	}
	var task models.Task
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tasks/%d/move", taskID), q, struct{}{}, &task)
	return task, err
}

// ReorderTask implements Service.
func (c *Client) ReorderTask(ctx context.Context, taskID int64, newPosition int) (models.Task, error) {
	q := url.Values{"newPosition": {strconv.Itoa(newPosition)}}
	var task models.Task
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d/reorder", taskID), q, struct{}{}, &task)
	return task, err
}

// ListMembers implements Service.
func (c *Client) ListMembers(ctx context.Context, projectID int64) ([]models.Member, error) {
	var members []models.Member
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/project/%d", projectID), nil, nil, &members)
	return members, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(log.Fields{"method": method, "path": path, "request_id": requestID}).
			WithError(err).Warn("backend unreachable")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.log.WithFields(log.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"request_id":  requestID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("backend call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, data),
			Method:     method,
			Path:       path,
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}
