package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"guardpost/internal/modules/payment/application/port"
	"guardpost/internal/modules/payment/domain"
	"guardpost/internal/shared/rest"
)

const (
	initializePath     = "/api/client/initialize"
	verifyPath         = "/api/client/verify-transaction"
	requestServicePath = "/api/client/request-service"
)

// PaymentHTTPClient implements PaymentAPI against the upstream billing
// endpoints.
type PaymentHTTPClient struct {
	rest    *rest.Client
	timeout time.Duration
}

func NewPaymentHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *PaymentHTTPClient {
	return &PaymentHTTPClient{rest: rest.NewClient(baseURL, timeout, client), timeout: timeout}
}

// initializeResponse is not the usual envelope: the gateway URL sits at the
// top level next to status.
type initializeResponse struct {
	Status           bool   `json:"status"`
	Message          string `json:"message"`
	AuthorizationURL string `json:"authorization_url"`
}

func (c *PaymentHTTPClient) Initialize(ctx context.Context, token string, subscriptionID int, callbackURL string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"subscription_id": subscriptionID,
		"callback_url":    callbackURL,
	})
	if err != nil {
		return "", err
	}
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, initializePath, token, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("payment initialize error", slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return "", port.ErrSessionExpired
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", port.ErrUpstream, res.StatusCode)
	}

	var decoded initializeResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", port.ErrUpstream, err)
	}
	if !decoded.Status || strings.TrimSpace(decoded.AuthorizationURL) == "" {
		message := decoded.Message
		if message == "" {
			message = "Could not initialize payment."
		}
		return "", fmt.Errorf("%w: %s", port.ErrUpstream, message)
	}
	return decoded.AuthorizationURL, nil
}

func (c *PaymentHTTPClient) Verify(ctx context.Context, token, reference string) (*port.VerifyOutcome, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, domain.ErrMissingReference
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	path := verifyPath + "/" + url.PathEscape(trimmed)
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("payment verify error", slog.String("reference", trimmed), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return nil, port.ErrSessionExpired
	}

	envelope, err := rest.DecodeEnvelope(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrUpstream, err)
	}
	outcome := &port.VerifyOutcome{Success: envelope.Status, Message: envelope.Message}
	if outcome.Message == "" {
		if outcome.Success {
			outcome.Message = "Payment Successful!"
		} else {
			outcome.Message = "Payment Verification Failed."
		}
	}
	return outcome, nil
}

func (c *PaymentHTTPClient) RequestService(ctx context.Context, token string, request domain.ServiceRequest) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"service":     request.Service,
		"staff_count": request.StaffCount,
		"location":    request.Location,
		"start_date":  request.StartDate,
		"end_date":    request.EndDate,
	})
	if err != nil {
		return "", err
	}
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, requestServicePath, token, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.rest.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return "", port.ErrSessionExpired
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: status %d", port.ErrUpstream, res.StatusCode)
	}

	envelope, err := rest.DecodeEnvelope(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", port.ErrUpstream, err)
	}
	if !envelope.Status {
		return "", fmt.Errorf("%w: %s", port.ErrUpstream, envelope.Message)
	}
	if envelope.Message == "" {
		return "Plan requested successfully", nil
	}
	return envelope.Message, nil
}

func (c *PaymentHTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

var _ port.PaymentAPI = (*PaymentHTTPClient)(nil)
