package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/payment/application/port"
	"guardpost/internal/modules/payment/application/usecase"
	"guardpost/internal/modules/payment/domain"
	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/shared/httputil"
)

// overviewPath is where the browser lands after verification, success or not.
const overviewPath = "/dashboard/overview"

type Handler struct {
	Payments *usecase.PaymentUseCase
}

func NewHandler(payments *usecase.PaymentUseCase) *Handler {
	return &Handler{Payments: payments}
}

type initializeRequest struct {
	SubscriptionID int    `json:"subscription_id"`
	CallbackURL    string `json:"callback_url"`
}

// HandleInitialize answers POST /dashboard/payments/initialize.
func (h *Handler) HandleInitialize(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	var req initializeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}
	if req.SubscriptionID <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, failure("Invalid subscription selected"))
	}

	authorizationURL, err := h.Payments.Initialize(c.Request().Context(), session.Token, req.SubscriptionID, req.CallbackURL)
	if err != nil {
		return c.JSON(paymentFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "authorization_url": authorizationURL})
}

// HandleVerify answers GET /dashboard/payments/verify/:reference. The
// response always carries the overview redirect: the browser leaves the
// verification screen whatever the outcome.
func (h *Handler) HandleVerify(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}

	outcome, replayed, err := h.Payments.Verify(c.Request().Context(), session.Token, c.Param("reference"))
	if err != nil {
		status, body := paymentFailure(err)
		body["redirect"] = overviewPath
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  outcome.Success,
		"message":  outcome.Message,
		"replayed": replayed,
		"redirect": overviewPath,
	})
}

type serviceRequestBody struct {
	Service    string `json:"service"`
	StaffCount int    `json:"staff_count"`
	Location   string `json:"location"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// HandleRequestService answers POST /dashboard/services/request.
func (h *Handler) HandleRequestService(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}
	var req serviceRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}

	message, err := h.Payments.RequestService(c.Request().Context(), session.Token, domain.ServiceRequest{
		Service:    req.Service,
		StaffCount: req.StaffCount,
		Location:   req.Location,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if err != nil {
		return c.JSON(paymentFailure(err))
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": message})
}

var paymentErrors = httputil.NewErrorMapper().
	WithMapping(domain.ErrMissingService, http.StatusUnprocessableEntity, domain.ErrMissingService.Error()).
	WithMapping(domain.ErrInvalidStaff, http.StatusUnprocessableEntity, domain.ErrInvalidStaff.Error()).
	WithMapping(domain.ErrMissingLocation, http.StatusUnprocessableEntity, domain.ErrMissingLocation.Error()).
	WithMapping(domain.ErrMissingStartDate, http.StatusUnprocessableEntity, domain.ErrMissingStartDate.Error()).
	WithMapping(domain.ErrMissingEndDate, http.StatusUnprocessableEntity, domain.ErrMissingEndDate.Error()).
	WithMapping(domain.ErrMissingReference, http.StatusUnprocessableEntity, domain.ErrMissingReference.Error()).
	WithMapping(port.ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(port.ErrNetwork, http.StatusBadGateway, "Network error during verification.").
	WithDefault(http.StatusBadGateway, "An error occurred. Please try again.")

func paymentFailure(err error) (int, map[string]any) {
	info := paymentErrors.Map(err)
	return info.Status, failure(info.Message)
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
