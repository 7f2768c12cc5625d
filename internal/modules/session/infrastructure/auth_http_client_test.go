package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guardpost/internal/modules/session/application/port"
)

func loginServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/client/login" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode login payload: %v", err)
		}
		if payload["device_name"] == "" {
			t.Fatalf("expected device_name to be set")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestLoginMapsStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"invalid credentials", http.StatusUnauthorized, port.ErrInvalidCredentials},
		{"validation", http.StatusUnprocessableEntity, port.ErrValidation},
		{"disabled", http.StatusForbidden, port.ErrAccountDisabled},
		{"server error", http.StatusInternalServerError, port.ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := loginServer(t, tc.status, `{"status":false,"message":"nope","data":null}`)
			defer server.Close()

			client := NewAuthHTTPClient(server.URL, 5*time.Second, nil)
			_, err := client.Login(context.Background(), port.Credentials{Email: "a@b.com", Password: "wrongpw"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoginSuccessReturnsUserAndToken(t *testing.T) {
	body := `{"status":true,"message":"Welcome","data":{"user":{"id":7,"name":"Ada","email":"a@b.com","is_active":"1","is_login_enable":"1"},"token":"tok-1","token_type":"Bearer"}}`
	server := loginServer(t, http.StatusOK, body)
	defer server.Close()

	client := NewAuthHTTPClient(server.URL, 5*time.Second, nil)
	result, err := client.Login(context.Background(), port.Credentials{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token != "tok-1" {
		t.Fatalf("expected token tok-1, got %s", result.Token)
	}
	if !result.User.Active() || !result.User.LoginEnabled() {
		t.Fatalf("expected active user flags, got %+v", result.User)
	}
}

func TestLoginFalseEnvelopeStatusFails(t *testing.T) {
	server := loginServer(t, http.StatusOK, `{"status":false,"message":"Login failed","data":null}`)
	defer server.Close()

	client := NewAuthHTTPClient(server.URL, 5*time.Second, nil)
	if _, err := client.Login(context.Background(), port.Credentials{Email: "a@b.com", Password: "secret1"}); !errors.Is(err, port.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestLoginNetworkErrorWraps(t *testing.T) {
	client := NewAuthHTTPClient("http://127.0.0.1:1", 100*time.Millisecond, nil)
	if _, err := client.Login(context.Background(), port.Credentials{Email: "a@b.com", Password: "secret1"}); !errors.Is(err, port.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestVerifyOTPRejectedMapsSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Fatalf("expected bearer header, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid OTP"}`))
	}))
	defer server.Close()

	client := NewAuthHTTPClient(server.URL, 5*time.Second, nil)
	if err := client.VerifyOTP(context.Background(), "tok-1", "9999"); !errors.Is(err, port.ErrOTPRejected) {
		t.Fatalf("expected ErrOTPRejected, got %v", err)
	}
}

func TestChangePasswordSendsSnakeCasePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		for _, key := range []string{"current_password", "new_password", "new_password_confirmation"} {
			if payload[key] == "" {
				t.Fatalf("missing %s in payload", key)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Password changed successfully","data":null}`))
	}))
	defer server.Close()

	client := NewAuthHTTPClient(server.URL, 5*time.Second, nil)
	message, err := client.ChangePassword(context.Background(), "tok-1", port.PasswordChange{
		CurrentPassword: "oldpw1",
		NewPassword:     "newpw123",
		Confirmation:    "newpw123",
	})
	if err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if message != "Password changed successfully" {
		t.Fatalf("unexpected message %q", message)
	}
}
