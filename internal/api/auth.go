package api

import (
	"context"
	"net/http"
	"strings"

	"financas/internal/core"
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// AuthResult is the answer to a successful login or registration.
type AuthResult struct {
	Token   string `json:"token"`
	User    User   `json:"usuario"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
	Valid   bool   `json:"valid"`
}

func (c *Client) Login(ctx context.Context, in core.Credentials) (AuthResult, error) {
	if err := in.Validate(); err != nil {
		return AuthResult{}, err
	}
	body := map[string]string{"email": strings.TrimSpace(in.Email), "password": in.Password}
	var out AuthResult
	if err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "auth/login/", body: body, out: &out}); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in core.Registration) (AuthResult, error) {
	if err := in.Validate(); err != nil {
		return AuthResult{}, err
	}
	body := map[string]string{
		"nome":     strings.TrimSpace(in.Name),
		"email":    strings.TrimSpace(in.Email),
		"password": in.Password,
	}
	var out AuthResult
	if err := c.do(ctx, call{op: "register", method: http.MethodPost, path: "auth/cadastro/", body: body, out: &out}); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

// ForgotPassword asks the API to email a reset code. The API answers the same
// way whether or not the address exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", core.FieldErrors{"email": "Email é obrigatório"}
	}
	var out messageResponse
	if err := c.do(ctx, call{op: "forgot password", method: http.MethodPost, path: "auth/forgot-password/", body: map[string]string{"email": email}, out: &out}); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) VerifyResetCode(ctx context.Context, email, code string) error {
	fe := core.FieldErrors{}
	if strings.TrimSpace(email) == "" {
		fe["email"] = "Email é obrigatório"
	}
	if strings.TrimSpace(code) == "" {
		fe["code"] = "Código é obrigatório"
	}
	if len(fe) > 0 {
		return fe
	}
	body := map[string]string{"email": strings.TrimSpace(email), "codigo": strings.TrimSpace(code)}
	return c.do(ctx, call{op: "verify reset code", method: http.MethodPost, path: "auth/verify-reset-code/", body: body})
}

func (c *Client) ResetPassword(ctx context.Context, in core.PasswordReset) error {
	if err := in.Validate(); err != nil {
		return err
	}
	body := map[string]string{
		"email":      strings.TrimSpace(in.Email),
		"codigo":     strings.TrimSpace(in.Code),
		"nova_senha": in.Password,
	}
	return c.do(ctx, call{op: "reset password", method: http.MethodPost, path: "auth/reset-password/", body: body})
}

// VerifyToken checks the session token with the API and returns its user.
func (c *Client) VerifyToken(ctx context.Context) (User, error) {
	var out struct {
		Valid bool `json:"valid"`
		User  User `json:"usuario"`
	}
	if err := c.do(ctx, call{op: "verify token", method: http.MethodGet, path: "auth/verify-token/", out: &out, authed: true}); err != nil {
		return User{}, err
	}
	if !out.Valid {
		return User{}, ErrNotAuthenticated
	}
	return out.User, nil
}
