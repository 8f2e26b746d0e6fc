// Package session is the only surface external screens call. Each operation
// resolves its role-scoped path, goes through the HTTP gateway, and returns
// the raw success payload or the gateway's normalized error.
package session

import (
	"context"
	"fmt"
	"log"

	"agrofarm/internal/platform/httpclient"
	"agrofarm/internal/routes"
	"agrofarm/internal/token"
)

// Client is the session facade.
type Client struct {
	gateway *httpclient.Client
	tokens  token.Store
	log     *log.Logger
}

// NewClient wires the facade. tokens must be the same store the gateway reads
// from, so a login is visible to the very next request.
func NewClient(gateway *httpclient.Client, tokens token.Store, log *log.Logger) *Client {
	return &Client{gateway: gateway, tokens: tokens, log: log}
}

// Register creates an unverified account. It never logs the user in; the
// backend answers with a verification challenge sent by email.
func (c *Client) Register(ctx context.Context, role routes.Role, profile RegistrationProfile) (Payload, error) {
	var out Payload
	if err := c.gateway.Post(ctx, routes.PathFor(role, routes.OpRegister), profile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login authenticates and, when the response carries a token, persists it so
// subsequent requests are authenticated.
func (c *Client) Login(ctx context.Context, role routes.Role, creds Credentials) (Payload, error) {
	var out Payload
	if err := c.gateway.Post(ctx, routes.PathFor(role, routes.OpLogin), creds, &out); err != nil {
		return nil, err
	}
	if tok := extractToken(out); tok != "" {
		if err := c.tokens.Save(ctx, tok); err != nil {
			return nil, fmt.Errorf("persist token: %w", err)
		}
	}
	return out, nil
}

// Logout is best-effort remote, guaranteed local: the stored token is cleared
// even when the backend call fails.
func (c *Client) Logout(ctx context.Context, role routes.Role) error {
	err := c.gateway.Get(ctx, routes.PathFor(role, routes.OpLogout), nil)
	if clearErr := c.tokens.Clear(ctx); clearErr != nil {
		c.log.Printf("clearing stored token failed: %v", clearErr)
		if err == nil {
			err = clearErr
		}
	}
	return err
}

// VerifyEmail redeems the emailed verification code.
func (c *Client) VerifyEmail(ctx context.Context, role routes.Role, email, otp string) (Payload, error) {
	body := struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}{email, otp}
	var out Payload
	if err := c.gateway.Post(ctx, routes.PathFor(role, routes.OpVerifyEmail), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResendOTP asks the backend to email a fresh verification code.
func (c *Client) ResendOTP(ctx context.Context, role routes.Role, email string) (Payload, error) {
	body := struct {
		Email string `json:"email"`
	}{email}
	var out Payload
	if err := c.gateway.Post(ctx, routes.PathFor(role, routes.OpResendOTP), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForgotPassword starts the reset flow; the backend emails a reset code.
func (c *Client) ForgotPassword(ctx context.Context, role routes.Role, email, phone string) (Payload, error) {
	body := struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}{email, phone}
	var out Payload
	if err := c.gateway.Post(ctx, routes.PathFor(role, routes.OpForgotPassword), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResetPassword redeems a reset code for a new password.
func (c *Client) ResetPassword(ctx context.Context, role routes.Role, email, phone, otp, newPassword string) (Payload, error) {
	body := struct {
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}{email, phone, otp, newPassword}
	var out Payload
	if err := c.gateway.Post(ctx, routes.PathFor(role, routes.OpResetPassword), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMyProfile fetches the authenticated account's profile.
func (c *Client) GetMyProfile(ctx context.Context, role routes.Role) (Payload, error) {
	var out Payload
	if err := c.gateway.Get(ctx, routes.PathFor(role, routes.OpProfile), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile applies a partial profile edit.
func (c *Client) UpdateProfile(ctx context.Context, role routes.Role, update ProfileUpdate) (Payload, error) {
	var out Payload
	if err := c.gateway.Put(ctx, routes.PathFor(role, routes.OpUpdateProfile), update, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProfile removes the authenticated account on the backend. It does not
// touch the stored token; callers that also want a local logout call Logout.
func (c *Client) DeleteProfile(ctx context.Context, role routes.Role) (Payload, error) {
	var out Payload
	if err := c.gateway.Delete(ctx, routes.PathFor(role, routes.OpDeleteProfile), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangePassword rotates the password of a logged-in account.
func (c *Client) ChangePassword(ctx context.Context, role routes.Role, oldPassword, newPassword string) (Payload, error) {
	body := struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}{oldPassword, newPassword}
	var out Payload
	if err := c.gateway.Put(ctx, routes.PathFor(role, routes.OpChangePassword), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll fetches the public directory of accounts for one role.
func (c *Client) ListAll(ctx context.Context, role routes.Role) (Payload, error) {
	var out Payload
	if err := c.gateway.Get(ctx, routes.PathFor(role, routes.OpListAll), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProfileWithProducts fetches a vendor's public profile with their product
// listing. Only farmers and suppliers have one; the VendorRole parameter
// keeps a buyer call from compiling at all.
func (c *Client) ProfileWithProducts(ctx context.Context, vendor routes.VendorRole, id string) (Payload, error) {
	var out Payload
	if err := c.gateway.Get(ctx, routes.ProfileWithProductsPath(vendor, id), &out); err != nil {
		return nil, err
	}
	return out, nil
}
