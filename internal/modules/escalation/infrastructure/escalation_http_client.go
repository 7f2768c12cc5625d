package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"guardpost/internal/modules/escalation/application/port"
	"guardpost/internal/modules/escalation/domain"
	"guardpost/internal/shared/rest"
)

const (
	escalationPath       = "/api/client/escalations"
	submitEscalationPath = "/api/client/submit-escalation"
)

// EscalationHTTPClient implements EscalationAPI against the upstream REST API.
type EscalationHTTPClient struct {
	rest    *rest.Client
	timeout time.Duration
}

func NewEscalationHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *EscalationHTTPClient {
	return &EscalationHTTPClient{rest: rest.NewClient(baseURL, timeout, client), timeout: timeout}
}

func (c *EscalationHTTPClient) Thread(ctx context.Context, token, escalationID string) (json.RawMessage, error) {
	identifier := strings.TrimSpace(escalationID)
	if identifier == "" {
		return nil, port.ErrThreadNotFound
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	path := escalationPath + "/" + url.PathEscape(identifier)
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *EscalationHTTPClient) Reply(ctx context.Context, token, escalationID, message string) error {
	identifier := strings.TrimSpace(escalationID)
	if identifier == "" {
		return port.ErrThreadNotFound
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return err
	}
	path := escalationPath + "/" + url.PathEscape(identifier) + "/reply"
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, path, token, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *EscalationHTTPClient) Submit(ctx context.Context, token string, submission domain.Submission) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"escalation_type":  submission.EscalationType,
		"staff_identifier": submission.StaffIdentifier,
		"message":          submission.Message,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	if submission.Image != nil {
		part, err := writer.CreateFormFile("image", submission.Image.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(submission.Image.Content); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, submitEscalationPath, token, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = c.do(req)
	return err
}

func (c *EscalationHTTPClient) do(req *http.Request) (json.RawMessage, error) {
	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("escalation request error", slog.String("url", req.URL.Path), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return nil, port.ErrSessionExpired
	case http.StatusNotFound:
		return nil, port.ErrThreadNotFound
	case http.StatusUnprocessableEntity:
		envelope, decodeErr := rest.DecodeEnvelope(res.Body)
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: status 422", port.ErrUpstream)
		}
		return nil, rest.ValidationFromEnvelope(envelope)
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d", port.ErrUpstream, res.StatusCode)
	}

	envelope, err := rest.DecodeEnvelope(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrUpstream, err)
	}
	if !envelope.Status {
		slog.Warn("escalation envelope rejected", slog.String("message", envelope.Message))
		return nil, fmt.Errorf("%w: %s", port.ErrUpstream, envelope.Message)
	}
	return envelope.Data, nil
}

func (c *EscalationHTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

var _ port.EscalationAPI = (*EscalationHTTPClient)(nil)
