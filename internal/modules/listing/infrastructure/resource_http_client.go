package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"guardpost/internal/modules/listing/application/port"
	"guardpost/internal/modules/listing/domain"
	"guardpost/internal/shared/rest"
)

// resourceEndpoint describes how one dashboard resource maps onto the
// upstream API: its paths, the query key the backend expects for free-text
// search, which filter keys it honours, and where the paginator sits inside
// the envelope data (billing endpoints nest it under "rows" next to a header
// card and the available filter options).
type resourceEndpoint struct {
	listPath      string
	detailPath    string
	searchKey     string
	collectionKey string
	filterKeys    []string
}

func (e resourceEndpoint) allowsFilter(key string) bool {
	for _, allowed := range e.filterKeys {
		if allowed == key {
			return true
		}
	}
	return false
}

var resourceEndpoints = map[string]resourceEndpoint{
	"payments": {
		listPath:      "/api/client/payment",
		searchKey:     "q",
		collectionKey: "rows",
		filterKeys:    []string{"type", "status", "from", "to"},
	},
	"subscriptions": {
		listPath:      "/api/client/subscription",
		searchKey:     "q",
		collectionKey: "rows",
		filterKeys:    []string{"service", "status", "period"},
	},
	"attendance": {
		listPath:   "/api/operations/attendance",
		searchKey:  "search",
		filterKeys: []string{"from", "to"},
	},
	"incidents": {
		listPath:   "/api/operations/incidents",
		detailPath: "/api/operations/incidents",
		searchKey:  "search",
		filterKeys: []string{"type", "status"},
	},
	"patrol-logs": {
		listPath:   "/api/operations/patrol-logs",
		searchKey:  "search",
		filterKeys: []string{"from", "to"},
	},
	"sop-generators": {
		listPath:   "/api/operations/sop-generators",
		detailPath: "/api/operations/sop-generators",
		searchKey:  "search",
	},
	"assessments": {
		listPath:   "/api/operations/assessments",
		detailPath: "/api/operations/assessments",
		searchKey:  "search",
	},
	"manning-structures": {
		listPath:   "/api/operations/manning-structures",
		detailPath: "/api/operations/manning-structures",
		searchKey:  "search",
	},
	"staff": {
		listPath:  "/api/client/staff",
		searchKey: "search",
	},
	"escalations": {
		listPath:   "/api/client/all-escalations",
		detailPath: "/api/client/escalations",
		searchKey:  "search",
		filterKeys: []string{"status"},
	},
}

// SupportedResources lists every resource name the client can serve.
func SupportedResources() []string {
	names := make([]string, 0, len(resourceEndpoints))
	for name := range resourceEndpoints {
		names = append(names, name)
	}
	return names
}

// ResourceHTTPClient implements ResourceFetcher against the upstream REST API.
type ResourceHTTPClient struct {
	rest    *rest.Client
	timeout time.Duration
}

func NewResourceHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *ResourceHTTPClient {
	return &ResourceHTTPClient{rest: rest.NewClient(baseURL, timeout, client), timeout: timeout}
}

func (c *ResourceHTTPClient) ListPage(ctx context.Context, token, resource string, query domain.PagedQuery) (*port.PageResult, error) {
	endpoint, ok := resourceEndpoints[strings.ToLower(strings.TrimSpace(resource))]
	if !ok {
		slog.Warn("list resource unsupported", slog.String("resource", resource))
		return nil, port.ErrResourceUnsupported
	}
	if strings.TrimSpace(token) == "" {
		return nil, port.ErrUnauthenticated
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	normalized := query.Normalize()
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodGet, endpoint.listPath, token, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = buildQueryValues(normalized, endpoint).Encode()
	slog.Debug("list request", slog.String("resource", resource), slog.String("url", req.URL.String()))

	data, err := c.do(req, resource)
	if err != nil {
		return nil, err
	}

	result := &port.PageResult{Resource: resource, Query: normalized}
	paginator := data
	if endpoint.collectionKey != "" {
		var siblings map[string]json.RawMessage
		if err := json.Unmarshal(data, &siblings); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", resource, err)
		}
		nested, ok := siblings[endpoint.collectionKey]
		if !ok {
			return nil, fmt.Errorf("%s data missing %q: %w", resource, endpoint.collectionKey, domain.ErrMalformedPage)
		}
		delete(siblings, endpoint.collectionKey)
		result.Extra = siblings
		paginator = nested
	}

	page, err := domain.DecodeCollection(paginator)
	if err != nil {
		return nil, err
	}
	result.Page = page
	return result, nil
}

func (c *ResourceHTTPClient) FetchDetail(ctx context.Context, token, resource, resourceID string) (json.RawMessage, error) {
	endpoint, ok := resourceEndpoints[strings.ToLower(strings.TrimSpace(resource))]
	if !ok || endpoint.detailPath == "" {
		slog.Warn("detail resource unsupported", slog.String("resource", resource))
		return nil, port.ErrResourceUnsupported
	}
	if strings.TrimSpace(token) == "" {
		return nil, port.ErrUnauthenticated
	}
	identifier := strings.TrimSpace(resourceID)
	if identifier == "" {
		return nil, port.ErrNotFound
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	path := strings.TrimRight(endpoint.detailPath, "/") + "/" + url.PathEscape(identifier)
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	slog.Debug("detail request", slog.String("resource", resource), slog.String("url", req.URL.String()))

	return c.do(req, resource)
}

func (c *ResourceHTTPClient) do(req *http.Request, resource string) (json.RawMessage, error) {
	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("list request error", slog.String("resource", resource), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return nil, port.ErrSessionExpired
	case res.StatusCode == http.StatusNotFound:
		return nil, port.ErrNotFound
	case res.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		slog.Error("list unexpected status",
			slog.String("resource", resource),
			slog.Int("status", res.StatusCode),
			slog.String("body", strings.TrimSpace(string(body))))
		return nil, fmt.Errorf("%w: status %d", port.ErrUpstream, res.StatusCode)
	}

	envelope, err := rest.DecodeEnvelope(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrUpstream, err)
	}
	if !envelope.Status {
		slog.Warn("list envelope rejected", slog.String("resource", resource), slog.String("message", envelope.Message))
		return nil, fmt.Errorf("%w: %s", port.ErrUpstream, envelope.Message)
	}
	return envelope.Data, nil
}

func buildQueryValues(query domain.PagedQuery, endpoint resourceEndpoint) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(query.Page))
	values.Set("per_page", strconv.Itoa(query.PerPage))
	if query.Search != "" {
		values.Set(endpoint.searchKey, query.Search)
	}
	for key, value := range query.Filters {
		if !endpoint.allowsFilter(key) {
			continue
		}
		values.Set(key, value)
	}
	return values
}

var _ port.ResourceFetcher = (*ResourceHTTPClient)(nil)
