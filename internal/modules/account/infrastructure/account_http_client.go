package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"guardpost/internal/modules/account/domain"
	"guardpost/internal/modules/account/application/port"
	"guardpost/internal/shared/rest"
)

const (
	accountInfoPath     = "/api/client/account-info"
	overviewPath        = "/api/operations/dashboard"
	escalationTypesPath = "/api/client/escalation-type"
)

// AccountHTTPClient implements AccountAPI against the upstream REST API.
type AccountHTTPClient struct {
	rest    *rest.Client
	timeout time.Duration
}

func NewAccountHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *AccountHTTPClient {
	return &AccountHTTPClient{rest: rest.NewClient(baseURL, timeout, client), timeout: timeout}
}

func (c *AccountHTTPClient) AccountInfo(ctx context.Context, token string) (*domain.Account, error) {
	data, err := c.get(ctx, token, accountInfoPath)
	if err != nil {
		return nil, err
	}
	var account domain.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("%w: decode account info: %v", port.ErrUpstream, err)
	}
	return &account, nil
}

func (c *AccountHTTPClient) Overview(ctx context.Context, token string) (*domain.Overview, error) {
	data, err := c.get(ctx, token, overviewPath)
	if err != nil {
		return nil, err
	}
	var overview domain.Overview
	if err := json.Unmarshal(data, &overview); err != nil {
		return nil, fmt.Errorf("%w: decode overview: %v", port.ErrUpstream, err)
	}
	return &overview, nil
}

func (c *AccountHTTPClient) EscalationTypes(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, escalationTypesPath)
}

func (c *AccountHTTPClient) get(ctx context.Context, token, path string) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("account fetch error", slog.String("path", path), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return nil, port.ErrSessionExpired
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", port.ErrUpstream, res.StatusCode)
	}

	envelope, err := rest.DecodeEnvelope(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrUpstream, err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("%w: %s", port.ErrUpstream, envelope.Message)
	}
	return envelope.Data, nil
}

var _ port.AccountAPI = (*AccountHTTPClient)(nil)
