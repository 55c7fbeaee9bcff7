package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"notes-app/src/domain"
)

// ErrInvalidCredentials is returned by Login on a 401
var ErrInvalidCredentials = errors.New("invalid email or password")

type authEnvelope struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

// Login exchanges credentials for a new Session
func Login(ctx context.Context, hc *http.Client, serverURL, email, password string) (*Session, error) {
	return authenticate(ctx, hc, serverURL, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and returns its first Session
func Register(ctx context.Context, hc *http.Client, serverURL, username, email, password string) (*Session, error) {
	return authenticate(ctx, hc, serverURL, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func authenticate(ctx context.Context, hc *http.Client, serverURL, path string, payload interface{}) (*Session, error) {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	serverURL = strings.TrimRight(serverURL, "/")

	status, body, err := send(ctx, hc, http.MethodPost, serverURL+path, "", payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if status >= 300 {
		return nil, decodeError(status, body)
	}

	var env authEnvelope
	if err := decodeBody(body, &env); err != nil {
		return nil, err
	}
	if env.Token == "" {
		return nil, &APIError{Status: status, Message: "response carried no token"}
	}

	return &Session{
		ServerURL: serverURL,
		Token:     env.Token,
		User:      env.User,
		CreatedAt: time.Now(),
	}, nil
}
