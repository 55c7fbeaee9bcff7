// Package client talks to the notes API on behalf of an explicit Session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"notes-app/src/domain"
	"notes-app/src/view"
)

var (
	// ErrSessionExpired is returned after the server rejected the token; the session is gone
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrTransient marks network failures and server errors worth retrying
	ErrTransient = errors.New("temporary failure, please retry")
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response the client has no dedicated error for
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client issues note requests with the token of one session
type Client struct {
	httpClient *http.Client

	mu       sync.Mutex
	session  *Session
	onExpire func()
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithExpiryHandler is called once when the server answers 401
func WithExpiryHandler(fn func()) Option {
	return func(c *Client) {
		c.onExpire = fn
	}
}

// New binds a client to session
func New(session *Session, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the bound session, nil once it expired
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// UpdateRequest carries a partial update; nil fields are not sent
type UpdateRequest struct {
	Title *string   `json:"title,omitempty"`
	Body  *string   `json:"body,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

type noteEnvelope struct {
	Message string       `json:"message"`
	Note    *domain.Note `json:"note"`
}

type notesEnvelope struct {
	Notes []domain.Note `json:"notes"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// ListActive fetches the active collection
func (c *Client) ListActive(ctx context.Context) ([]domain.Note, error) {
	var out notesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Notes), nil
}

// ListTrashed fetches the trash collection
func (c *Client) ListTrashed(ctx context.Context) ([]domain.Note, error) {
	var out notesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/notes/trash", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Notes), nil
}

// Fetch fetches the collection a section is drawn from
func (c *Client) Fetch(ctx context.Context, section view.Section) ([]domain.Note, error) {
	if view.SectionCollection(section) == domain.CollectionTrashed {
		return c.ListTrashed(ctx)
	}
	return c.ListActive(ctx)
}

// Get fetches one note
func (c *Client) Get(ctx context.Context, id string) (*domain.Note, error) {
	var out noteEnvelope
	if err := c.do(ctx, http.MethodGet, notePath(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// Create creates a note
func (c *Client) Create(ctx context.Context, title, body string, tags []string) (*domain.Note, error) {
	if tags == nil {
		tags = []string{}
	}
	req := map[string]interface{}{"title": title, "body": body, "tags": tags}

	var out noteEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/notes", req, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// Update applies a partial update
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Note, error) {
	var out noteEnvelope
	if err := c.do(ctx, http.MethodPut, notePath(id), req, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// SoftDelete moves a note to the trash
func (c *Client) SoftDelete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, notePath(id), nil, &messageEnvelope{})
}

// Restore moves a note out of the trash
func (c *Client) Restore(ctx context.Context, id string) (*domain.Note, error) {
	var out noteEnvelope
	if err := c.do(ctx, http.MethodPatch, notePath(id)+"/restore", nil, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// ToggleFavorite flips the favorite flag and returns the note with its new state
func (c *Client) ToggleFavorite(ctx context.Context, id string) (*domain.Note, error) {
	var out noteEnvelope
	if err := c.do(ctx, http.MethodPatch, notePath(id)+"/favorite", nil, &out); err != nil {
		return nil, err
	}
	return out.Note, nil
}

// PermanentlyDelete destroys a note
func (c *Client) PermanentlyDelete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, notePath(id)+"/permanent", nil, &messageEnvelope{})
}

// Me returns the user behind the session token
func (c *Client) Me(ctx context.Context) (*domain.PublicUser, error) {
	var out struct {
		User domain.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return ErrSessionExpired
	}

	status, body, err := send(ctx, c.httpClient, method, session.ServerURL+path, session.Token, in)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		c.expire()
		return ErrSessionExpired
	}
	if status >= 300 {
		return decodeError(status, body)
	}
	return decodeBody(body, out)
}

// expire drops the session and notifies the owner once
func (c *Client) expire() {
	c.mu.Lock()
	wasActive := c.session != nil
	c.session = nil
	onExpire := c.onExpire
	c.mu.Unlock()

	if wasActive && onExpire != nil {
		onExpire()
	}
}

func send(ctx context.Context, hc *http.Client, method, url, token string, in interface{}) (int, []byte, error) {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(url, "/"), reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return resp.StatusCode, body, nil
}

func decodeBody(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

type errorEnvelope struct {
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decodeError(status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	if env.Message == "" {
		env.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest:
		field := ""
		if len(env.Errors) > 0 {
			field = env.Errors[0].Field
		}
		return domain.NewValidationError(field, env.Message)
	case status == http.StatusNotFound:
		return domain.ErrNoteNotFound
	case status == http.StatusConflict:
		if strings.Contains(strings.ToLower(env.Message), "username") {
			return domain.ErrUsernameTaken
		}
		return domain.ErrEmailTaken
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: %s", ErrTransient, env.Message)
	default:
		return &APIError{Status: status, Message: env.Message}
	}
}

// notePath escapes id so it always stays a single path segment
func notePath(id string) string {
	return "/api/notes/" + url.PathEscape(id)
}

func nonNil(notes []domain.Note) []domain.Note {
	if notes == nil {
		return []domain.Note{}
	}
	return notes
}
