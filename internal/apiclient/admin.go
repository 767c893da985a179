package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/ec-admin-console/internal/readmodel"
)

// Login exchanges admin credentials for a bearer token. It is the only call
// made without a credential.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req, err := jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{
		"email":    email,
		"password": password,
	}, "Login failed")
	if err != nil {
		return "", err
	}
	req.anonymous = true

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, req, &out); err != nil {
		// a 401 here means bad credentials, not an expired session
		if errors.Is(err, ErrUnauthorized) {
			return "", &APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
		}
		return "", err
	}
	if out.Token == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "Login failed"}
	}
	return out.Token, nil
}

func (c *Client) Profile(ctx context.Context) (*readmodel.Profile, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/admin/profile", nil, "Failed to load admin details")
	var p readmodel.Profile
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Stats(ctx context.Context) (*readmodel.Stats, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/admin/stats", nil, "Failed to load stats")
	var s readmodel.Stats
	if err := c.do(ctx, req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ChangePassword sends the password change; the API checks currentPassword
func (c *Client) ChangePassword(ctx context.Context, current, next, confirm string) error {
	req, err := jsonRequest(http.MethodPut, "/api/admin/password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
		"confirmPassword": confirm,
	}, "Failed to change password")
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) ChangeEmail(ctx context.Context, newEmail string) error {
	req, err := jsonRequest(http.MethodPut, "/api/admin/email", map[string]string{
		"newEmail": newEmail,
	}, "Failed to update email")
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) PayoutAccount(ctx context.Context) (*readmodel.PayoutAccount, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/admin/account", nil, "Failed to load account details")
	var a readmodel.PayoutAccount
	if err := c.do(ctx, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdatePayoutAccount(ctx context.Context, account readmodel.PayoutAccount) error {
	req, err := jsonRequest(http.MethodPut, "/api/admin/account", account, "Failed to update account details")
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
