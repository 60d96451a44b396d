package remote

import (
	"context"
	"net/http"

	"cheatsheets/pkg/models"
)

// Register creates an account and returns its first access token
func (c *Client) Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   reg,
		out:    &out,
	})
	return out, err
}

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   creds,
		out:    &out,
	})
	return out, err
}

// Profile returns the user the current token belongs to
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, call{
		op:     "profile",
		method: http.MethodGet,
		path:   "/auth/me",
		out:    &user,
	})
	return user, err
}
