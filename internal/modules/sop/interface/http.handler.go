package transport

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	listingport "guardpost/internal/modules/listing/application/port"
	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/modules/sop/application/usecase"
	"guardpost/internal/modules/sop/domain"
	"guardpost/internal/shared/httputil"
)

type Handler struct {
	SOPs *usecase.SOPUseCase
}

func NewHandler(sops *usecase.SOPUseCase) *Handler {
	return &Handler{SOPs: sops}
}

// HandlePreview answers GET /dashboard/sop/:id/preview with the document
// fields and the rendered HTML body.
func (h *Handler) HandlePreview(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}

	preview, err := h.SOPs.Preview(c.Request().Context(), session.Token, c.Param("id"))
	if err != nil {
		return c.JSON(sopFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"document": preview.Document,
		"html":     preview.HTML,
	})
}

// HandleExport answers GET /dashboard/sop/:id/export with a PDF download.
func (h *Handler) HandleExport(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}

	data, filename, err := h.SOPs.ExportPDF(c.Request().Context(), session.Token, c.Param("id"))
	if err != nil {
		return c.JSON(sopFailure(err))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

var sopErrors = httputil.NewErrorMapper().
	WithMapping(listingport.ErrNotFound, http.StatusNotFound, "SOP not found").
	WithMapping(listingport.ErrUnauthenticated, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(listingport.ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(domain.ErrEmptyDocument, http.StatusBadGateway, "SOP document is incomplete").
	WithDefault(http.StatusBadGateway, "Failed to load SOP")

func sopFailure(err error) (int, map[string]any) {
	info := sopErrors.Map(err)
	return info.Status, failure(info.Message)
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
