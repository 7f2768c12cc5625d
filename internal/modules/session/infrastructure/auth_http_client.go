package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"guardpost/internal/modules/session/application/port"
	"guardpost/internal/modules/session/domain"
	"guardpost/internal/shared/rest"
)

// AuthHTTPClient implements AuthAPI against the upstream /api/client auth
// endpoints.
type AuthHTTPClient struct {
	rest    *rest.Client
	timeout time.Duration
}

func NewAuthHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *AuthHTTPClient {
	return &AuthHTTPClient{rest: rest.NewClient(baseURL, timeout, client), timeout: timeout}
}

type loginPayload struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

type loginData struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
}

func (c *AuthHTTPClient) Login(ctx context.Context, creds port.Credentials) (*port.LoginResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	device := strings.TrimSpace(creds.DeviceName)
	if device == "" {
		device = "web-browser"
	}
	body, err := json.Marshal(loginPayload{Email: creds.Email, Password: creds.Password, DeviceName: device})
	if err != nil {
		return nil, fmt.Errorf("encode login payload: %w", err)
	}

	req, err := c.rest.NewRequest(ctx, http.MethodPost, "/api/client/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("login request error", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	slog.Debug("login response", slog.Int("status", res.StatusCode))

	// Status takes precedence over the envelope: the upstream distinguishes
	// failure classes by code, not by message.
	switch res.StatusCode {
	case http.StatusUnauthorized:
		return nil, port.ErrInvalidCredentials
	case http.StatusUnprocessableEntity:
		return nil, port.ErrValidation
	case http.StatusForbidden:
		return nil, port.ErrAccountDisabled
	}

	envelope, err := rest.DecodeEnvelope(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		slog.Error("login unexpected status", slog.Int("status", res.StatusCode), slog.String("message", envelope.Message))
		return nil, fmt.Errorf("%w: status %d", port.ErrUpstream, res.StatusCode)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("%w: %s", port.ErrUpstream, envelope.Message)
	}

	var data loginData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("decode login data: %w", err)
	}
	if strings.TrimSpace(data.Token) == "" {
		return nil, fmt.Errorf("%w: empty token", port.ErrUpstream)
	}

	return &port.LoginResult{User: data.User, Token: data.Token, TokenType: data.TokenType, Message: envelope.Message}, nil
}

func (c *AuthHTTPClient) SendOTP(ctx context.Context, token string) error {
	return c.postJSON(ctx, "/api/client/send-otp", token, nil, nil)
}

func (c *AuthHTTPClient) VerifyOTP(ctx context.Context, token, otp string) error {
	payload := map[string]string{"otp": strings.TrimSpace(otp)}
	err := c.postJSON(ctx, "/api/client/verify-otp", token, payload, nil)
	var rejected *upstreamStatusError
	if errors.As(err, &rejected) && rejected.status >= 400 && rejected.status < 500 {
		return port.ErrOTPRejected
	}
	return err
}

func (c *AuthHTTPClient) ChangePassword(ctx context.Context, token string, change port.PasswordChange) (string, error) {
	payload := map[string]string{
		"current_password":          change.CurrentPassword,
		"new_password":              change.NewPassword,
		"new_password_confirmation": change.Confirmation,
	}
	var message string
	if err := c.postJSON(ctx, "/api/client/change-password", token, payload, &message); err != nil {
		return "", err
	}
	if message == "" {
		message = "Password changed successfully"
	}
	return message, nil
}

func (c *AuthHTTPClient) AccountInfo(ctx context.Context, token string) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodGet, "/api/client/account-info", token, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.rest.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return nil, port.ErrInvalidCredentials
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", port.ErrUpstream, res.StatusCode)
	}
	envelope, err := rest.DecodeEnvelope(res.Body)
	if err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *AuthHTTPClient) postJSON(ctx context.Context, endpoint, token string, payload any, message *string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, endpoint, token, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("auth request error", slog.String("endpoint", endpoint), slog.Any("error", err))
		return fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return port.ErrInvalidCredentials
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		slog.Warn("auth request rejected", slog.String("endpoint", endpoint), slog.Int("status", res.StatusCode))
		return &upstreamStatusError{status: res.StatusCode}
	}

	if message != nil {
		if envelope, err := rest.DecodeEnvelope(res.Body); err == nil {
			*message = envelope.Message
		}
	}
	return nil
}

// upstreamStatusError keeps the non-2xx code so callers can refine the
// generic upstream error; it still unwraps to port.ErrUpstream.
type upstreamStatusError struct {
	status int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("upstream auth request failed: status %d", e.status)
}

func (e *upstreamStatusError) Unwrap() error { return port.ErrUpstream }

var _ port.AuthAPI = (*AuthHTTPClient)(nil)
