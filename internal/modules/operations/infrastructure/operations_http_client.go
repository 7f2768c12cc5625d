package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"guardpost/internal/modules/operations/application/port"
	"guardpost/internal/modules/operations/domain"
	"guardpost/internal/shared/rest"
	"guardpost/internal/shared/upload"
)

// OperationsHTTPClient implements OperationsAPI against the upstream REST API.
type OperationsHTTPClient struct {
	rest    *rest.Client
	timeout time.Duration
}

func NewOperationsHTTPClient(baseURL string, timeout time.Duration, client *http.Client) *OperationsHTTPClient {
	return &OperationsHTTPClient{rest: rest.NewClient(baseURL, timeout, client), timeout: timeout}
}

func (c *OperationsHTTPClient) Submit(ctx context.Context, token string, spec domain.FormSpec, fields map[string]string, files []upload.File) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var req *http.Request
	var err error
	if spec.Encoding == domain.EncodingJSON {
		req, err = c.jsonRequest(ctx, token, spec, fields)
	} else {
		req, err = c.multipartRequest(ctx, token, spec, fields, files)
	}
	if err != nil {
		return nil, err
	}

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("operations request error", slog.String("form", spec.Name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrNetwork, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return nil, port.ErrSessionExpired
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
		slog.Warn("operations envelope rejected", slog.String("form", spec.Name), slog.String("message", envelope.Message))
		return nil, fmt.Errorf("%w: %s", port.ErrUpstream, envelope.Message)
	}
	return envelope.Data, nil
}

func (c *OperationsHTTPClient) jsonRequest(ctx context.Context, token string, spec domain.FormSpec, fields map[string]string) (*http.Request, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, spec.Path, token, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *OperationsHTTPClient) multipartRequest(ctx context.Context, token string, spec domain.FormSpec, fields map[string]string, files []upload.File) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	for _, file := range files {
		part, err := writer.CreatePart(filePartHeader(spec.FileKey, file))
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.rest.NewAuthenticatedRequest(ctx, http.MethodPost, spec.Path, token, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// filePartHeader keeps the screened Content-Type on the forwarded part so the
// upstream sees the same MIME type the policy accepted.
func filePartHeader(fieldName string, file upload.File) textproto.MIMEHeader {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	return header
}

var _ port.OperationsAPI = (*OperationsHTTPClient)(nil)
