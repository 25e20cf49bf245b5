// Package rest implements the service.Service interface against the
// /tarefas REST resource.
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/googleapi"

	"tarefas/internal/config"
	"tarefas/internal/service"
	"tarefas/internal/wire"
)

const (
	// CollectionPath is the path segment of the task collection.
	CollectionPath = "tarefas"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// DefaultBackoff is the retry pause schedule for idempotent requests.
var DefaultBackoff = gax.Backoff{
	Initial:    100 * time.Millisecond,
	Max:        2 * time.Second,
	Multiplier: 2,
}

// Client implements service.Service over HTTP.
type Client struct {
	http       *http.Client
	collection *url.URL
	dialect    wire.Dialect
	timeout    time.Duration
	retries    int
	backoff    gax.Backoff
	log        *slog.Logger
}

// New creates a REST client from cfg using http.DefaultClient.
func New(cfg *config.Config) (*Client, error) {
	return NewWithHTTPClient(cfg, http.DefaultClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(cfg *config.Config, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// Accept both the API root and the collection URL itself.
	collection := base
	if path.Base(base.Path) != CollectionPath {
		collection = base.JoinPath(CollectionPath)
	}

	dialect := cfg.Dialect
	if dialect == "" {
		dialect = wire.Status
	}

	return &Client{
		http:       httpClient,
		collection: collection,
		dialect:    dialect,
		timeout:    cfg.Timeout,
		retries:    cfg.Retries,
		backoff:    DefaultBackoff,
		log:        cfg.Logger(),
	}, nil
}

// SetBackoff replaces the retry pause schedule (for testing).
func (c *Client) SetBackoff(bo gax.Backoff) {
	c.backoff = bo
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	err := c.invokeIdempotent(ctx, func(ctx context.Context) error {
		body, err := c.do(ctx, http.MethodGet, c.collection.String(), nil)
		if err != nil {
			return err
		}
		tasks, err = wire.DecodeList(body)
		if err != nil {
			return &decodeError{err: err}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return tasks, nil
}

// CreateTask implements service.Service. Never retried.
func (c *Client) CreateTask(ctx context.Context, title string, state service.CompletionState) (service.Task, error) {
	body, err := c.dialect.EncodeFields(wire.Fields{Title: &title, State: &state})
	if err != nil {
		return service.Task{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, c.collection.String(), body)
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return c.decodeWriteResponse(resp), nil
}

// UpdateTask implements service.Service. Never retried.
func (c *Client) UpdateTask(ctx context.Context, id service.TaskID, patch service.TaskPatch) (service.Task, error) {
	body, err := c.dialect.EncodeFields(wire.Fields{Title: patch.Title, State: patch.State})
	if err != nil {
		return service.Task{}, err
	}

	resp, err := c.do(ctx, http.MethodPut, c.itemURL(id), body)
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return c.decodeWriteResponse(resp), nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id service.TaskID) error {
	err := c.invokeIdempotent(ctx, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil)
		return err
	})
	return wrapError(err)
}

// itemURL appends the escaped id as a single segment under the collection.
// Dot segments are percent-encoded so they never resolve to the
// collection or its parent.
func (c *Client) itemURL(id service.TaskID) string {
	seg := url.PathEscape(string(id))
	if seg == "." || seg == ".." {
		seg = strings.Repeat("%2E", len(seg))
	}
	return strings.TrimSuffix(c.collection.String(), "/") + "/" + seg
}

// decodeWriteResponse returns the task echoed by a POST or PUT, if any.
// The sync client refreshes after every write, so an empty or
// unrecognised body is not an error.
func (c *Client) decodeWriteResponse(body []byte) service.Task {
	if len(bytes.TrimSpace(body)) == 0 {
		return service.Task{}
	}
	task, err := wire.DecodeTask(body)
	if err != nil {
		c.log.Debug("ignoring write response", "err", err)
		return service.Task{}
	}
	return task
}

// do performs one request under the per-call timeout and returns the
// response body of a 2xx response.
func (c *Client) do(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "url", u, "err", err)
		return nil, err
	}
	defer res.Body.Close()
	c.log.Debug("request", "method", method, "url", u, "status", res.StatusCode, "duration", time.Since(start))

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// decodeError marks a response body that could not be parsed.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "malformed response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// wrapError maps transport and HTTP errors onto the service taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound {
			return service.ErrNotFound
		}
		return fmt.Errorf("%w: server returned HTTP %d", service.ErrConnectivity, apiErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrConnectivity)
	}

	return fmt.Errorf("%w: %w", service.ErrConnectivity, err)
}
