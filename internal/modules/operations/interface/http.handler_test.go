package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/operations/application/usecase"
	"guardpost/internal/modules/operations/domain"
	sessiondomain "guardpost/internal/modules/session/domain"
	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/shared/upload"
)

type recordingAPI struct {
	files []upload.File
}

func (a *recordingAPI) Submit(ctx context.Context, token string, spec domain.FormSpec, fields map[string]string, files []upload.File) (json.RawMessage, error) {
	a.files = files
	return json.RawMessage(`{"id":1}`), nil
}

func addPhotoPart(t *testing.T, writer *multipart.Writer, name, contentType string, content []byte) {
	t.Helper()
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="photos[]"; filename="`+name+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
}

func TestHandleSubmitRefusesOversizedPartWithoutBuffering(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range map[string]string{
		"guard_name":    "John",
		"incident_type": "theft",
		"incident_date": "2026-08-30",
		"location":      "Gate 4",
		"description":   "Attempted break-in",
	} {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	addPhotoPart(t, writer, "small.jpg", "image/jpeg", []byte{1, 2, 3, 4})
	addPhotoPart(t, writer, "huge.jpg", "image/jpeg", bytes.Repeat([]byte{9}, 64))
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/operations/incidents", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("form")
	c.SetParamValues("incidents")
	sessiontransport.AttachSession(c, &sessiondomain.Session{ID: "s-1", Token: "tok-1"})

	api := &recordingAPI{}
	handler := NewHandler(usecase.NewSubmitFormUseCase(api), 16)
	if err := handler.HandleSubmit(c); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(api.files) != 1 || api.files[0].Name != "small.jpg" {
		t.Fatalf("only the small file may reach the upstream, got %+v", api.files)
	}

	var response struct {
		Success  bool `json:"success"`
		Rejected []struct {
			Name   string
			Reason string
		} `json:"rejected_files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success {
		t.Fatalf("expected success despite the rejection")
	}
	if len(response.Rejected) != 1 || response.Rejected[0].Name != "huge.jpg" || response.Rejected[0].Reason != "too large" {
		t.Fatalf("expected huge.jpg rejected as too large, got %+v", response.Rejected)
	}
}
