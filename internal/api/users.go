package api

import (
	"context"

	"github.com/mmynk/tabkeeper/internal/models"
)

// Login exchanges credentials for a session token. POST /api/login
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var result models.LoginResult
	if err := c.post(ctx, "/api/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a staff account and returns the backend's message.
// POST /api/register
func (c *Client) Register(ctx context.Context, reg models.Registration) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/api/register", reg, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout ends the backend session. POST /api/logout
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/logout", nil, nil)
}

// ResetPassword sets a new password for the account with the given email.
// POST /api/users/resetPassword
func (c *Client) ResetPassword(ctx context.Context, req models.PasswordReset) error {
	return c.post(ctx, "/api/users/resetPassword", req, nil)
}

// GetUser returns a user profile. GET /api/users/{id}
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/api/users/"+segment(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser returns the signed-in user; requires a bearer token.
// GET /api/users/user
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/api/users/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// IsAdmin reports whether a user has admin access.
// POST /api/users/adminAccess
func (c *Client) IsAdmin(ctx context.Context, username string) (bool, error) {
	var resp models.AdminAccess
	if err := c.post(ctx, "/api/users/adminAccess", models.AdminAccess{Username: username}, &resp); err != nil {
		return false, err
	}
	return resp.IsAdmin, nil
}

// GrantAdmin gives a user admin access. PUT /api/users/adminAccess
func (c *Client) GrantAdmin(ctx context.Context, username string) error {
	return c.put(ctx, "/api/users/adminAccess", models.AdminAccess{Username: username, IsAdmin: true}, nil)
}

// SubmitFeedback sends app feedback. POST /api/feedback
func (c *Client) SubmitFeedback(ctx context.Context, fb models.Feedback) error {
	return c.post(ctx, "/api/feedback", fb, nil)
}
