package auth

import (
	"context"
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

// User is the platform's view of the authenticated account.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}

// LoginResult is the login response: a bearer token plus the account it
// belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Login authenticates against the platform. Password is optional; the
// hosted platform provisions accounts on first login by email, while
// hardened deployments (and the sandbox in password mode) require one.
func Login(ctx context.Context, c *client.Client, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.Do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &result)
	if err != nil {
		if errx.IsType(err, errx.TypeAuthorization) {
			return nil, errorRegistry.WrapWith(ErrLogin, err)
		}
		return nil, err
	}
	return &result, nil
}

// Me fetches the account behind the current credential.
func Me(ctx context.Context, c *client.Client) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the server-side session. Local credential clearing is
// the store's job; callers typically do both.
func Logout(ctx context.Context, c *client.Client) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
