package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"guardpost/internal/modules/operations/domain"
	"guardpost/internal/shared/upload"
)

type fakeOperationsAPI struct {
	calls     int
	lastFiles []upload.File
	err       error
}

func (f *fakeOperationsAPI) Submit(ctx context.Context, token string, spec domain.FormSpec, fields map[string]string, files []upload.File) (json.RawMessage, error) {
	f.calls++
	f.lastFiles = files
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"id":1}`), nil
}

func incidentFields() map[string]string {
	return map[string]string{
		"guard_name":    "John",
		"incident_type": "theft",
		"incident_date": "2026-08-30",
		"location":      "Gate 4",
		"description":   "Attempted break-in",
	}
}

func TestSubmitForwardsAcceptedAndReportsRejected(t *testing.T) {
	api := &fakeOperationsAPI{}
	uc := NewSubmitFormUseCase(api)

	result, err := uc.Submit(context.Background(), "tok-1", "incidents", incidentFields(), []upload.File{
		{Name: "ok.jpg", ContentType: "image/jpeg", Size: 10},
		{Name: "huge.jpg", ContentType: "image/jpeg", Size: domain.MaxUploadSize + 1},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(api.lastFiles) != 1 || api.lastFiles[0].Name != "ok.jpg" {
		t.Fatalf("only accepted files may be forwarded, got %+v", api.lastFiles)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Name != "huge.jpg" {
		t.Fatalf("rejected files must be reported, got %+v", result.Rejected)
	}
}

func TestSubmitMissingFieldsSkipsNetwork(t *testing.T) {
	api := &fakeOperationsAPI{}
	uc := NewSubmitFormUseCase(api)

	fields := incidentFields()
	delete(fields, "description")
	_, err := uc.Submit(context.Background(), "tok-1", "incidents", fields, nil)

	var missing *domain.MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("invalid form must not reach the upstream")
	}
}

func TestSubmitUnknownForm(t *testing.T) {
	uc := NewSubmitFormUseCase(&fakeOperationsAPI{})
	if _, err := uc.Submit(context.Background(), "tok-1", "widgets", nil, nil); !errors.Is(err, domain.ErrFormUnsupported) {
		t.Fatalf("expected ErrFormUnsupported, got %v", err)
	}
}
