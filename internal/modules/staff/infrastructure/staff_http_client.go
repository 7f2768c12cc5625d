package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"guardpost/internal/modules/staff/application/port"
	"guardpost/internal/modules/staff/domain"
	"guardpost/internal/shared/rest"
)

const addReviewPath = "/api/client/add-review"

// StaffHTTPClient implements StaffAPI against the upstream REST API.
type StaffHTTPClient struct {
	rest    *rest.Client
	timeout time.Duration
}

func NewStaffHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *StaffHTTPClient {
	return &StaffHTTPClient{rest: rest.NewClient(baseURL, timeout, client), timeout: timeout}
}

func (c *StaffHTTPClient) AddReview(ctx context.Context, token string, review domain.Review) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(map[string]any{
		"staff_id": review.StaffID,
		"star":     review.Star,
		"review":   review.Comment,
	})
	if err != nil {
		return "", err
	}
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, addReviewPath, token, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("add review error", slog.Int("staffId", review.StaffID), slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return "", port.ErrSessionExpired
	case http.StatusUnprocessableEntity:
		envelope, decodeErr := rest.DecodeEnvelope(res.Body)
		if decodeErr != nil {
			return "", fmt.Errorf("%w: status 422", port.ErrUpstream)
		}
		return "", rest.ValidationFromEnvelope(envelope)
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
		return "Review submitted successfully", nil
	}
	return envelope.Message, nil
}

var _ port.StaffAPI = (*StaffHTTPClient)(nil)
