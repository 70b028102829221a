package api

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
	"time"
)

const (
	defaultBaseURL = "https://api.layoutcraft.io"
	defaultTimeout = 120 * time.Second
)

var (
	// ErrSessionExpired is the distinguished signal for an authenticated
	// call rejected by the server. Callers stop processing when they see
	// it; the login hint has already been surfaced elsewhere, so it must
	// not turn into a second user-visible error.
	ErrSessionExpired = errors.New("session expired")

	ErrGenerateFailed = errors.New("generation failed")
	ErrRefineFailed   = errors.New("refine failed")
	ErrRequestFailed  = errors.New("request failed")
)

// TokenSource supplies the bearer token for authenticated calls. The
// auth gate implements it.
type TokenSource interface {
	Token() (string, bool)
}

type Config struct {
	BaseURL    string
	Tokens     TokenSource
	TimeoutSec int
}

// Client wraps the LayoutCraft HTTP API. Calls are single-shot with no
// automatic retry; every method takes a context.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

func New(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	return &Client{
		baseURL: baseURL,
		tokens:  cfg.Tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiErrorBody covers the error payload shapes the API produces.
type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// serverMessage extracts the server-provided error message, falling
// back to a generic string.
func serverMessage(body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return "something went wrong, please try again"
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do issues the request, handling auth, the expired-session sentinel,
// and error payload extraction. out may be nil for calls whose body is
// not needed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, out any, authed bool) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if authed {
		token, ok := c.token()
		if !ok {
			return ErrSessionExpired
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if authed {
			return ErrSessionExpired
		}
		// A 401 on a credential exchange means the credentials
		// themselves were rejected, not a stale session.
		if strings.HasPrefix(path, "/auth/") {
			return fmt.Errorf("%w: %s", ErrBadCredentials, serverMessage(respBody))
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrRequestFailed, serverMessage(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) token() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	return c.tokens.Token()
}
