package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

var ErrBadCredentials = errors.New("invalid email or password")

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken               string      `json:"access_token"`
	User                      models.User `json:"user"`
	EmailConfirmationRequired bool        `json:"email_confirmation_required"`
	Message                   string      `json:"message"`
}

// LoginResult is the outcome of a login or registration call. Either a
// session was issued, or the account still needs email confirmation
// and Message carries the server's instruction.
type LoginResult struct {
	Session             *models.Session
	ConfirmationPending bool
	Message             string
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return c.postAuth(ctx, "/auth/login", email, password)
}

// Register creates an account. Depending on server policy the result
// is either an immediate session or a confirmation-pending notice.
func (c *Client) Register(ctx context.Context, email, password string) (*LoginResult, error) {
	return c.postAuth(ctx, "/auth/register", email, password)
}

func (c *Client) postAuth(ctx context.Context, path, email, password string) (*LoginResult, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, path, nil, &credentials{Email: email, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}

	if resp.EmailConfirmationRequired {
		return &LoginResult{ConfirmationPending: true, Message: resp.Message}, nil
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response missing access token", ErrRequestFailed)
	}

	return &LoginResult{
		Session: &models.Session{Token: resp.AccessToken, User: resp.User},
	}, nil
}

// Profile fetches the current user's profile.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}
