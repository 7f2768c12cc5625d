package transport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/session/application/port"
	"guardpost/internal/modules/session/application/usecase"
	"guardpost/internal/modules/session/domain"
	"guardpost/internal/modules/session/infrastructure"
	"guardpost/internal/shared/auth"
	"guardpost/internal/shared/httputil"
)

// sessionContextKey is where the middleware parks the restored session.
const sessionContextKey = "guardpost.session"

// CookieSettings mirrors the session section of the runtime configuration.
type CookieSettings struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

type Handler struct {
	Login     *usecase.LoginUseCase
	Passwords *usecase.PasswordChangeUseCase
	Store     *infrastructure.SessionStore
	Cookies   CookieSettings
}

func NewHandler(login *usecase.LoginUseCase, passwords *usecase.PasswordChangeUseCase, store *infrastructure.SessionStore, cookies CookieSettings) *Handler {
	if cookies.Name == "" {
		cookies.Name = "auth_token"
	}
	return &Handler{Login: login, Passwords: passwords, Store: store, Cookies: cookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin signs the user in upstream and sets the http-only session
// cookie. Failure messages are selected by the error class alone.
func (h *Handler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return c.JSON(http.StatusUnprocessableEntity, failure("please enter a valid email"))
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusUnprocessableEntity, failure("password must be at least 6 characters"))
	}

	out, err := h.Login.Execute(c.Request().Context(), usecase.LoginInput{Email: email, Password: req.Password})
	if err != nil {
		info := loginErrors.Map(err)
		return c.JSON(info.Status, failure(info.Message))
	}

	c.SetCookie(&http.Cookie{
		Name:     h.Cookies.Name,
		Value:    out.Session.Token,
		Path:     "/",
		MaxAge:   int(h.Cookies.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"success":       true,
		"message":       out.Message,
		"user":          out.Session.User,
		"channel_token": out.ChannelToken,
	})
}

var loginErrors = httputil.NewErrorMapper().
	WithMapping(port.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password").
	WithMapping(port.ErrValidation, http.StatusUnprocessableEntity, "Please check your email and password").
	WithMapping(port.ErrAccountDisabled, http.StatusForbidden, "Your account has been disabled. Please contact support.").
	WithMapping(port.ErrAccountInactive, http.StatusForbidden, "Your account is inactive. Please contact support.").
	WithMapping(port.ErrLoginDisabled, http.StatusForbidden, "Login is disabled for your account. Please contact support.").
	WithMapping(port.ErrNetwork, http.StatusBadGateway, "Network error. Please check your connection and try again.").
	WithDefault(http.StatusBadGateway, "Login failed. Please try again.")

// HandleLogout clears the cookie and the stored session.
func (h *Handler) HandleLogout(c echo.Context) error {
	if token := h.tokenFrom(c); token != "" {
		if session, ok := h.Store.Restore(token); ok {
			h.Passwords.Forget(session.ID)
		}
		h.Login.Logout(token)
	}
	c.SetCookie(&http.Cookie{
		Name:     h.Cookies.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]any{"success": true, "redirect": "/sign-in"})
}

// HandleSession reports the current session user for dashboard bootstrap.
func (h *Handler) HandleSession(c echo.Context) error {
	session := SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "user": session.User})
}

type otpRequest struct {
	OTP string `json:"otp"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	Confirmation    string `json:"new_password_confirmation"`
}

func (h *Handler) HandleRequestOTP(c echo.Context) error {
	session := SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	state, err := h.Passwords.RequestOTP(c.Request().Context(), session)
	if err != nil {
		return c.JSON(wizardFailure(err), wizardBody(state, err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "OTP sent to your email address", "state": state})
}

func (h *Handler) HandleVerifyOTP(c echo.Context) error {
	session := SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}
	state, err := h.Passwords.VerifyOTP(c.Request().Context(), session, req.OTP)
	if err != nil {
		return c.JSON(wizardFailure(err), wizardBody(state, err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Identity verified successfully", "state": state})
}

func (h *Handler) HandleChangePassword(c echo.Context) error {
	session := SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}
	message, state, err := h.Passwords.Submit(c.Request().Context(), session, port.PasswordChange{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		Confirmation:    req.Confirmation,
	})
	if err != nil {
		return c.JSON(wizardFailure(err), wizardBody(state, err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": message, "state": state})
}

func (h *Handler) HandleWizardBack(c echo.Context) error {
	session := SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	state, err := h.Passwords.Back(session)
	if err != nil {
		return c.JSON(wizardFailure(err), wizardBody(state, err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "state": state})
}

// wizardErrors maps status only; the response body carries the wizard error
// text and state verbatim.
var wizardErrors = httputil.NewErrorMapper().
	WithMapping(domain.ErrInvalidTransition, http.StatusConflict, "").
	WithMapping(domain.ErrOTPTooShort, http.StatusUnprocessableEntity, "").
	WithMapping(usecase.ErrPasswordMismatch, http.StatusUnprocessableEntity, "").
	WithMapping(usecase.ErrPasswordTooShort, http.StatusUnprocessableEntity, "").
	WithMapping(port.ErrOTPRejected, http.StatusBadRequest, "").
	WithMapping(port.ErrInvalidCredentials, http.StatusUnauthorized, "").
	WithDefault(http.StatusBadGateway, "")

func wizardFailure(err error) int {
	return wizardErrors.Map(err).Status
}

func wizardBody(state domain.WizardState, err error) map[string]any {
	return map[string]any{"success": false, "message": err.Error(), "state": state}
}

// RequireSession restores the session from the auth cookie (or a bearer
// header for non-browser callers) and blocks the request when absent, without
// ever touching the upstream.
func (h *Handler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := h.tokenFrom(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
		}
		session, ok := h.Store.Restore(token)
		if !ok || session == nil {
			slog.Debug("session restore failed")
			return c.JSON(http.StatusUnauthorized, failure("Session expired. Please login again."))
		}
		AttachSession(c, session)
		return next(c)
	}
}

// AttachSession parks a restored session on the echo context for SessionFrom.
func AttachSession(c echo.Context, session *domain.Session) {
	c.Set(sessionContextKey, session)
}

func (h *Handler) tokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(h.Cookies.Name); err == nil && cookie != nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	return auth.ExtractBearerToken(c.Request())
}

// SessionFrom pulls the restored session out of the echo context.
func SessionFrom(c echo.Context) *domain.Session {
	session, _ := c.Get(sessionContextKey).(*domain.Session)
	return session
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
