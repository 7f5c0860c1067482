// Package admin covers the user-management endpoints available to
// administrator accounts.
package admin

import (
	"context"
	"fmt"
	"net/url"

	"github.com/agentflow-ai/agentflow-go/pkg/auth"
	"github.com/agentflow-ai/agentflow-go/pkg/client"
)

// API wraps the admin endpoints. Every call requires an admin token; the
// server answers 403 otherwise.
type API struct {
	client *client.Client
}

// NewAPI creates an admin API bound to c.
func NewAPI(c *client.Client) *API {
	return &API{client: c}
}

type usersResponse struct {
	Users []auth.User `json:"users"`
	Total int         `json:"total"`
}

// Users lists all active accounts, newest first.
func (a *API) Users(ctx context.Context) ([]auth.User, error) {
	var out usersResponse
	if err := a.client.Get(ctx, "/admin/users", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ActionResult is the server's confirmation of a user action.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DisableUser blocks an account from logging in. Admin accounts cannot be
// disabled; the server rejects the attempt.
func (a *API) DisableUser(ctx context.Context, userID int) (*ActionResult, error) {
	return a.userAction(ctx, "POST", fmt.Sprintf("/admin/users/%d/disable", userID))
}

// EnableUser reactivates a disabled account.
func (a *API) EnableUser(ctx context.Context, userID int) (*ActionResult, error) {
	return a.userAction(ctx, "POST", fmt.Sprintf("/admin/users/%d/enable", userID))
}

// DeleteUser soft-deletes an account.
func (a *API) DeleteUser(ctx context.Context, userID int) (*ActionResult, error) {
	return a.userAction(ctx, "DELETE", fmt.Sprintf("/admin/users/%d", userID))
}

func (a *API) userAction(ctx context.Context, method, path string) (*ActionResult, error) {
	var out ActionResult
	if err := a.client.Do(ctx, method, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
