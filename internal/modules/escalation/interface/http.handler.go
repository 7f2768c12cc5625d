package transport

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/escalation/application/port"
	"guardpost/internal/modules/escalation/application/usecase"
	"guardpost/internal/modules/escalation/domain"
	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/shared/httputil"
	"guardpost/internal/shared/rest"
	"guardpost/internal/shared/upload"
)

type Handler struct {
	Escalations *usecase.EscalationUseCase
}

func NewHandler(escalations *usecase.EscalationUseCase) *Handler {
	return &Handler{Escalations: escalations}
}

// HandleThread answers GET /dashboard/escalations/:id with the complaint and
// its replies in server order.
func (h *Handler) HandleThread(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	thread, err := h.Escalations.Open(c.Request().Context(), session.Token, c.Param("id"))
	if err != nil {
		return c.JSON(escalationFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "thread": thread})
}

type replyRequest struct {
	Message string `json:"message"`
}

// HandleReply answers POST /dashboard/escalations/:id/reply and returns the
// re-fetched thread.
func (h *Handler) HandleReply(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	var req replyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}
	thread, err := h.Escalations.Reply(c.Request().Context(), session.Token, c.Param("id"), req.Message)
	if err != nil {
		return c.JSON(escalationFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "thread": thread})
}

// HandleSubmit answers POST /dashboard/escalations (multipart form).
func (h *Handler) HandleSubmit(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}

	submission := domain.Submission{
		EscalationType:  c.FormValue("escalation_type"),
		StaffIdentifier: c.FormValue("staff_identifier"),
		Message:         c.FormValue("message"),
	}
	if header, err := c.FormFile("image"); err == nil && header != nil {
		file, err := readFormFile(header)
		if err != nil {
			return c.JSON(http.StatusBadRequest, failure("Unable to read uploaded image"))
		}
		submission.Image = file
	}

	if err := h.Escalations.Submit(c.Request().Context(), session.Token, submission); err != nil {
		return c.JSON(escalationFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Submitted successfully"})
}

func readFormFile(header *multipart.FileHeader) (*upload.File, error) {
	file := &upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	// Oversized images fail the policy on the declared size, never buffered.
	if header.Size > domain.MaxImageSize {
		return file, nil
	}
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	content, err := io.ReadAll(io.LimitReader(src, domain.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	file.Size = int64(len(content))
	file.Content = content
	return file, nil
}

var escalationErrors = httputil.NewErrorMapper().
	WithMapping(domain.ErrEmptyReply, http.StatusUnprocessableEntity, "Reply cannot be empty").
	WithMapping(domain.ErrMissingType, http.StatusUnprocessableEntity, "Escalation type is required").
	WithMapping(domain.ErrMissingStaff, http.StatusUnprocessableEntity, "Please provide staff ID").
	WithMapping(domain.ErrEmptyDescription, http.StatusUnprocessableEntity, "Description is required").
	WithMapping(domain.ErrDescriptionTooLong, http.StatusUnprocessableEntity, "Description is too long").
	WithMapping(upload.ErrFileTooLarge, http.StatusUnprocessableEntity, "Image must be less than 5MB").
	WithMapping(upload.ErrUnsupportedType, http.StatusUnprocessableEntity, "Only .jpg, .jpeg, .png and .webp formats are supported").
	WithMapping(port.ErrThreadNotFound, http.StatusNotFound, "Escalation not found").
	WithMapping(port.ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(port.ErrNetwork, http.StatusBadGateway, "Network error. Please check your connection and try again.").
	WithDefault(http.StatusBadGateway, "Something went wrong. Please try again.")

func escalationFailure(err error) (int, map[string]any) {
	var validation *rest.ValidationError
	if errors.As(err, &validation) {
		return http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"message": validation.Message,
			"errors":  validation.Fields,
		}
	}
	info := escalationErrors.Map(err)
	return info.Status, failure(info.Message)
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
