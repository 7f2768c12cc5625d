package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/session/application/port"
	"guardpost/internal/modules/session/application/usecase"
	"guardpost/internal/modules/session/domain"
	"guardpost/internal/modules/session/infrastructure"
)

type stubAuthAPI struct {
	result *port.LoginResult
	err    error
}

func (s *stubAuthAPI) Login(ctx context.Context, creds port.Credentials) (*port.LoginResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAuthAPI) SendOTP(ctx context.Context, token string) error { return nil }

func (s *stubAuthAPI) VerifyOTP(ctx context.Context, token, otp string) error { return nil }

func (s *stubAuthAPI) ChangePassword(ctx context.Context, token string, change port.PasswordChange) (string, error) {
	return "Password changed successfully", nil
}

func (s *stubAuthAPI) AccountInfo(ctx context.Context, token string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func newTestHandler(api port.AuthAPI) (*Handler, *infrastructure.SessionStore) {
	store := infrastructure.NewSessionStore(7 * 24 * time.Hour)
	login := usecase.NewLoginUseCase(api, store, nil)
	passwords := usecase.NewPasswordChangeUseCase(api)
	handler := NewHandler(login, passwords, store, CookieSettings{Name: "auth_token", MaxAge: 7 * 24 * time.Hour, Secure: true})
	return handler, store
}

func postJSON(target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleLoginSetsHTTPOnlyCookie(t *testing.T) {
	api := &stubAuthAPI{result: &port.LoginResult{
		User:  domain.User{ID: 7, Name: "Ada", Email: "a@b.com", IsActive: "1", IsLoginEnable: "1"},
		Token: "tok-1",
	}}
	handler, _ := newTestHandler(api)

	c, rec := postJSON("/auth/login", `{"email":"a@b.com","password":"secret1"}`)
	if err := handler.HandleLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != "auth_token" || cookie.Value != "tok-1" {
		t.Fatalf("unexpected cookie %s=%s", cookie.Name, cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
	if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("expected 7 day max age, got %d", cookie.MaxAge)
	}
}

func TestHandleLoginInvalidCredentialsSetsNoCookie(t *testing.T) {
	api := &stubAuthAPI{err: port.ErrInvalidCredentials}
	handler, _ := newTestHandler(api)

	c, rec := postJSON("/auth/login", `{"email":"a@b.com","password":"wrongpw"}`)
	if err := handler.HandleLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "Invalid email or password" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestHandleLoginRejectsShortPasswordLocally(t *testing.T) {
	api := &stubAuthAPI{err: port.ErrInvalidCredentials}
	handler, _ := newTestHandler(api)

	c, rec := postJSON("/auth/login", `{"email":"a@b.com","password":"abc"}`)
	if err := handler.HandleLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestRequireSessionBlocksWithoutCookie(t *testing.T) {
	handler, _ := newTestHandler(&stubAuthAPI{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := handler.RequireSession(func(c echo.Context) error {
		t.Fatalf("next handler must not run without a session")
		return nil
	})
	if err := next(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireSessionRestoresFromCookie(t *testing.T) {
	handler, store := newTestHandler(&stubAuthAPI{})
	store.Create("tok-9", domain.User{ID: 2, Name: "Grace"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/payments", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok-9"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := handler.RequireSession(func(c echo.Context) error {
		called = true
		session := SessionFrom(c)
		if session == nil || session.Token != "tok-9" {
			t.Fatalf("expected restored session, got %+v", session)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := next(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if !called {
		t.Fatalf("expected next handler to run")
	}
}

func TestHandleLogoutClearsCookie(t *testing.T) {
	handler, store := newTestHandler(&stubAuthAPI{})
	store.Create("tok-9", domain.User{ID: 2})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok-9"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleLogout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %+v", cookies)
	}
	if store.Len() != 0 {
		t.Fatalf("expected store cleared")
	}
}
