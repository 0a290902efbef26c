package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
	"golang.org/x/oauth2"
)

// Backend API paths
const (
	PathLogin       = "/api/login"
	PathLogout      = "/api/logout"
	PathCurrentUser = "/api/current_user"
)

const maxResponseBytes = 1 << 20

var _ Service = (*HTTPClient)(nil)

// RejectedError carries the backend's message when it refuses a request
type RejectedError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Err, e.StatusCode, e.Message)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// LoginResult is a successful login
type LoginResult struct {
	Token    string
	Identity credentials.Identity
}

// HTTPClient talks to the backend's REST endpoints
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPClientOption configures an HTTPClient
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets the underlying client used for requests
func WithHTTPClient(c *http.Client) HTTPClientOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.httpClient = c
		}
	}
}

// NewHTTPClient creates a client for the backend at baseURL (e.g. "http://127.0.0.1:5000")
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	h := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// bearerClient returns an http.Client that attaches token as a bearer credential
func (h *HTTPClient) bearerClient(token string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   h.httpClient.Transport,
		},
		Timeout: h.httpClient.Timeout,
	}
}

// CurrentUser asks the backend who owns token
func (h *HTTPClient) CurrentUser(ctx context.Context, token string) (*credentials.Identity, error) {
	if token == "" {
		return nil, errors.ErrNoCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+PathCurrentUser, nil)
	if err != nil {
		return nil, fmt.Errorf("[HTTPClient CurrentUser] failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.bearerClient(token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("[HTTPClient CurrentUser] %w: %w", errors.ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	var body CurrentUserResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Message: body.Message, Err: errors.ErrCredentialInvalid}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("[HTTPClient CurrentUser] %w: %w", errors.ErrMalformedResponse, decodeErr)
	}
	if !body.Success {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Message: body.Message, Err: errors.ErrCredentialInvalid}
	}
	if body.User == nil {
		return nil, fmt.Errorf("[HTTPClient CurrentUser] %w: missing user", errors.ErrMalformedResponse)
	}

	role, err := roles.Parse(body.User.Role)
	if err != nil {
		return nil, fmt.Errorf("[HTTPClient CurrentUser] %w: %w", errors.ErrMalformedResponse, err)
	}

	return &credentials.Identity{Username: body.User.Username, Role: role}, nil
}

// Login exchanges a username and password for a token.
// A recognised login with a role outside the closed set returns the
// result together with ErrUnknownRole.
func (h *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("[HTTPClient Login] failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+PathLogin, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("[HTTPClient Login] failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[HTTPClient Login] %w: %w", errors.ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	var body LoginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &RejectedError{StatusCode: resp.StatusCode, Err: errors.ErrInvalidCredentials}
		}
		return nil, fmt.Errorf("[HTTPClient Login] %w: %w", errors.ErrMalformedResponse, err)
	}

	if !body.Success || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Message: body.Message, Err: errors.ErrInvalidCredentials}
	}
	if body.Token == "" {
		return nil, fmt.Errorf("[HTTPClient Login] %w: missing token", errors.ErrMalformedResponse)
	}

	result := &LoginResult{
		Token:    body.Token,
		Identity: credentials.Identity{Username: body.Username, Role: roles.Role(body.Role)},
	}
	if _, err := roles.Parse(body.Role); err != nil {
		return result, fmt.Errorf("[HTTPClient Login] %w", err)
	}
	return result, nil
}

// Logout tells the backend the session is over. The gateway clears its own
// store regardless of the outcome.
func (h *HTTPClient) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+PathLogout, nil)
	if err != nil {
		return fmt.Errorf("[HTTPClient Logout] failed to create request: %w", err)
	}

	client := h.httpClient
	if token != "" {
		client = h.bearerClient(token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("[HTTPClient Logout] %w: %w", errors.ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("[HTTPClient Logout] unexpected status %d", resp.StatusCode)
	}
	return nil
}
