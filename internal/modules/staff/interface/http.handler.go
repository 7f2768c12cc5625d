package transport

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/modules/staff/application/port"
	"guardpost/internal/modules/staff/application/usecase"
	"guardpost/internal/modules/staff/domain"
	"guardpost/internal/shared/httputil"
	"guardpost/internal/shared/rest"
)

type Handler struct {
	Reviews *usecase.ReviewUseCase
}

func NewHandler(reviews *usecase.ReviewUseCase) *Handler {
	return &Handler{Reviews: reviews}
}

type reviewRequest struct {
	StaffID int    `json:"staff_id"`
	Star    int    `json:"star"`
	Review  string `json:"review"`
}

// HandleAddReview answers POST /dashboard/staff/reviews.
func (h *Handler) HandleAddReview(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}

	message, err := h.Reviews.AddReview(c.Request().Context(), session.Token, domain.Review{
		StaffID: req.StaffID,
		Star:    req.Star,
		Comment: req.Review,
	})
	if err != nil {
		return c.JSON(reviewFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": message})
}

var reviewErrors = httputil.NewErrorMapper().
	WithMapping(domain.ErrNoRating, http.StatusUnprocessableEntity, "Please select a star rating").
	WithMapping(domain.ErrEmptyComment, http.StatusUnprocessableEntity, "Please enter a review message").
	WithMapping(domain.ErrStarOutOfRange, http.StatusUnprocessableEntity, domain.ErrStarOutOfRange.Error()).
	WithMapping(domain.ErrMissingStaff, http.StatusUnprocessableEntity, domain.ErrMissingStaff.Error()).
	WithMapping(port.ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(port.ErrNetwork, http.StatusBadGateway, "An error occurred while submitting the review").
	WithDefault(http.StatusBadGateway, "Failed to submit review")

func reviewFailure(err error) (int, map[string]any) {
	var validation *rest.ValidationError
	if errors.As(err, &validation) {
		return http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"message": validation.Message,
			"errors":  validation.Fields,
		}
	}
	info := reviewErrors.Map(err)
	return info.Status, failure(info.Message)
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
