package port

import (
	"context"
	"encoding/json"
	"errors"

	"guardpost/internal/modules/session/domain"
)

var (
	// ErrInvalidCredentials maps upstream 401 responses.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrValidation maps upstream 422 responses.
	ErrValidation = errors.New("credentials failed validation")
	// ErrAccountDisabled maps upstream 403 responses.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountInactive covers is_active != "1" on an otherwise good login.
	ErrAccountInactive = errors.New("account inactive")
	// ErrLoginDisabled covers is_login_enable != "1".
	ErrLoginDisabled = errors.New("login disabled for account")
	// ErrUpstream covers any other non-2xx upstream response.
	ErrUpstream = errors.New("upstream auth request failed")
	// ErrNetwork covers transport-level failures before a response arrived.
	ErrNetwork = errors.New("auth network error")
	// ErrOTPRejected covers a failed OTP verification.
	ErrOTPRejected = errors.New("otp rejected")
)

type Credentials struct {
	Email      string
	Password   string
	DeviceName string
}

type LoginResult struct {
	User      domain.User
	Token     string
	TokenType string
	Message   string
}

type PasswordChange struct {
	CurrentPassword string
	NewPassword     string
	Confirmation    string
}

// AuthAPI is the upstream contract behind login and the password wizard.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	SendOTP(ctx context.Context, token string) error
	VerifyOTP(ctx context.Context, token, otp string) error
	ChangePassword(ctx context.Context, token string, change PasswordChange) (string, error)
	AccountInfo(ctx context.Context, token string) (json.RawMessage, error)
}
