package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/listing/application/port"
	"guardpost/internal/modules/listing/application/usecase"
	"guardpost/internal/modules/listing/domain"
	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/shared/httputil"
)

// Handler serves the initial dashboard page loads. Interactive refinement
// (search, filters, paging) runs over the websocket channel instead.
type Handler struct {
	Lister *usecase.ListResourceUseCase
	// PerPage is the page size used when the request does not ask for one.
	PerPage int
}

func NewHandler(lister *usecase.ListResourceUseCase, defaultPerPage int) *Handler {
	if defaultPerPage <= 0 {
		defaultPerPage = domain.DefaultPerPage
	}
	return &Handler{Lister: lister, PerPage: defaultPerPage}
}

// HandleList answers GET /dashboard/:resource.
func (h *Handler) HandleList(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}

	resource := strings.TrimSpace(c.Param("resource"))
	query := h.queryFromRequest(c)

	result, fromCache, err := h.Lister.List(c.Request().Context(), session.Token, resource, query)
	if err != nil {
		return c.JSON(listFailure(err))
	}

	from, to, total := result.Page.ShowingRange()
	body := map[string]any{
		"success":    true,
		"resource":   resource,
		"page":       result.Page,
		"from_cache": fromCache,
		"showing":    map[string]int{"from": from, "to": to, "total": total},
	}
	if len(result.Extra) > 0 {
		body["extra"] = result.Extra
	}
	return c.JSON(http.StatusOK, body)
}

// HandleDetail answers GET /dashboard/:resource/:id.
func (h *Handler) HandleDetail(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}

	resource := strings.TrimSpace(c.Param("resource"))
	record, err := h.Lister.Detail(c.Request().Context(), session.Token, resource, c.Param("id"))
	if err != nil {
		return c.JSON(listFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "resource": resource, "record": record})
}

func (h *Handler) queryFromRequest(c echo.Context) domain.PagedQuery {
	query := domain.PagedQuery{
		Search:  c.QueryParam("search"),
		PerPage: h.PerPage,
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.QueryParam("per_page")); err == nil && perPage > 0 {
		query.PerPage = perPage
	}

	filters := map[string]string{}
	for key, values := range c.QueryParams() {
		switch key {
		case "page", "per_page", "search":
			continue
		}
		if len(values) == 0 {
			continue
		}
		if value := strings.TrimSpace(values[0]); value != "" {
			filters[key] = value
		}
	}
	if len(filters) > 0 {
		query.Filters = filters
	}
	return query
}

var listErrors = httputil.NewErrorMapper().
	WithMapping(port.ErrUnauthenticated, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(port.ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(port.ErrResourceUnsupported, http.StatusNotFound, "Unknown resource").
	WithMapping(port.ErrNotFound, http.StatusNotFound, "Not found").
	WithMapping(port.ErrNetwork, http.StatusBadGateway, "Network error. Please check your connection and try again.").
	WithDefault(http.StatusBadGateway, "Unable to load data. Please try again.")

func listFailure(err error) (int, map[string]any) {
	info := listErrors.Map(err)
	return info.Status, failure(info.Message)
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
