package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/account/application/port"
	"guardpost/internal/modules/account/application/usecase"
	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/shared/httputil"
)

type Handler struct {
	Accounts *usecase.AccountUseCase
}

func NewHandler(accounts *usecase.AccountUseCase) *Handler {
	return &Handler{Accounts: accounts}
}

// HandleAccountInfo answers GET /dashboard/account-info.
func (h *Handler) HandleAccountInfo(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	account, err := h.Accounts.AccountInfo(c.Request().Context(), session.Token)
	if err != nil {
		return c.JSON(accountFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "account": account})
}

// HandleOverview answers GET /dashboard/overview-data with the headline
// stats, the attendance chart, and the recent activity feed.
func (h *Handler) HandleOverview(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	overview, err := h.Accounts.Overview(c.Request().Context(), session.Token)
	if err != nil {
		return c.JSON(accountFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "overview": overview})
}

// HandleEscalationTypes answers GET /dashboard/escalation-types.
func (h *Handler) HandleEscalationTypes(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	types, err := h.Accounts.EscalationTypes(c.Request().Context(), session.Token)
	if err != nil {
		return c.JSON(accountFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "types": types})
}

var accountErrors = httputil.NewErrorMapper().
	WithMapping(port.ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(port.ErrNetwork, http.StatusBadGateway, "Unable to reach the server").
	WithDefault(http.StatusBadGateway, "Failed to load account data")

func accountFailure(err error) (int, map[string]any) {
	info := accountErrors.Map(err)
	return info.Status, failure(info.Message)
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
