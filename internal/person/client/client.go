// Package client is a Go consumer of the /persons API. It follows the same
// pattern the desktop form uses: load the full list, submit a mutation, then
// reload the list.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"usermgmt/internal/person/models"
	"usermgmt/pkg/platform/circuit"
	"usermgmt/pkg/platform/sentinel"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the service. A 404 unwraps to
// sentinel.ErrNotFound.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("person service returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return sentinel.ErrNotFound
	}
	return nil
}

// Client talks to one person service instance.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	breaker      *circuit.Breaker
	skipValidate bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBreaker replaces the default breaker guarding the transport.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithoutValidation sends drafts as-is instead of checking them first.
func WithoutValidation() Option {
	return func(c *Client) {
		c.skipValidate = true
	}
}

// New builds a client for baseURL, e.g. "http://localhost:5000/".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		breaker:    circuit.New("person-service"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("client", "person-service")
	return c, nil
}

// List fetches every person in server order.
func (c *Client) List(ctx context.Context) ([]models.Person, error) {
	var persons []models.Person
	if err := c.do(ctx, http.MethodGet, "/persons", nil, http.StatusOK, &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

// Create submits a new person and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, draft models.Draft) (models.Person, error) {
	if err := c.validate(draft); err != nil {
		return models.Person{}, err
	}
	var p models.Person
	if err := c.do(ctx, http.MethodPost, "/persons", draft, http.StatusCreated, &p); err != nil {
		return models.Person{}, err
	}
	c.logger.DebugContext(ctx, "person created", "person_id", p.ID)
	return p, nil
}

// Update replaces the mutable fields of person id.
func (c *Client) Update(ctx context.Context, id string, draft models.Draft) (models.Person, error) {
	if err := c.validate(draft); err != nil {
		return models.Person{}, err
	}
	var p models.Person
	if err := c.do(ctx, http.MethodPut, personPath(id), draft, http.StatusOK, &p); err != nil {
		return models.Person{}, err
	}
	return p, nil
}

// Delete removes person id and returns the server's confirmation message.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, personPath(id), nil, http.StatusOK, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Save creates the draft when id is empty and updates person id otherwise,
// then reloads the list so callers redraw from server state.
func (c *Client) Save(ctx context.Context, id string, draft models.Draft) (models.Person, []models.Person, error) {
	var (
		saved models.Person
		err   error
	)
	if id == "" {
		saved, err = c.Create(ctx, draft)
	} else {
		saved, err = c.Update(ctx, id, draft)
	}
	if err != nil {
		return models.Person{}, nil, err
	}
	persons, err := c.List(ctx)
	if err != nil {
		return saved, nil, fmt.Errorf("reload after save: %w", err)
	}
	return saved, persons, nil
}

// Remove deletes person id and reloads the list.
func (c *Client) Remove(ctx context.Context, id string) ([]models.Person, error) {
	if _, err := c.Delete(ctx, id); err != nil {
		return nil, err
	}
	persons, err := c.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload after delete: %w", err)
	}
	return persons, nil
}

func (c *Client) validate(draft models.Draft) error {
	if c.skipValidate {
		return nil
	}
	return draft.Validate()
}

func personPath(id string) string {
	return "/persons/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !c.breaker.Allow() {
		return fmt.Errorf("%w: circuit %s open", sentinel.ErrUnavailable, c.breaker.Name())
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "circuit opened", "breaker", c.breaker.Name(), "error", err)
		}
		return fmt.Errorf("%w: %s %s: %v", sentinel.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit closed", "breaker", c.breaker.Name())
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode != want {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(payload))
		if json.Unmarshal(payload, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
