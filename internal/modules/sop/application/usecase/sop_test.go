package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	listingport "guardpost/internal/modules/listing/application/port"
)

type fakeSource struct {
	raw      json.RawMessage
	err      error
	resource string
	id       string
}

func (f *fakeSource) Detail(ctx context.Context, token, resource, resourceID string) (json.RawMessage, error) {
	f.resource = resource
	f.id = resourceID
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

const sampleRecord = `{
	"id": 12,
	"title": "Night Gate Access",
	"site": "Lekki Depot",
	"effective_date": "2026-01-15",
	"procedure_steps": ["Verify ID badge", "Log entry time"],
	"responsibilities": ["Gate operative keeps the log"],
	"emergency_instructions": ["Call the control room"]
}`

func TestPreviewRendersHTML(t *testing.T) {
	source := &fakeSource{raw: json.RawMessage(sampleRecord)}
	uc := NewSOPUseCase(source)

	preview, err := uc.Preview(context.Background(), "tok-1", "12")
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if source.resource != "sop-generators" || source.id != "12" {
		t.Fatalf("unexpected fetch %s/%s", source.resource, source.id)
	}
	for _, want := range []string{
		"<h1>Night Gate Access</h1>",
		"<strong>Site:</strong>",
		"<h2>Procedure Steps</h2>",
		"<li>Verify ID badge</li>",
		"<h2>Emergency Instructions</h2>",
	} {
		if !strings.Contains(preview.HTML, want) {
			t.Fatalf("preview missing %q:\n%s", want, preview.HTML)
		}
	}
	if preview.Document.Title != "Night Gate Access" {
		t.Fatalf("unexpected document title %q", preview.Document.Title)
	}
}

func TestPreviewEscapesUpstreamMarkup(t *testing.T) {
	source := &fakeSource{raw: json.RawMessage(`{
		"id": 9,
		"title": "Visitor Policy",
		"procedure_steps": ["<script>alert(1)</script> greet the visitor"]
	}`)}
	uc := NewSOPUseCase(source)

	preview, err := uc.Preview(context.Background(), "tok-1", "9")
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if strings.Contains(preview.HTML, "<script>") {
		t.Fatalf("raw markup must not survive rendering:\n%s", preview.HTML)
	}
}

func TestExportPDF(t *testing.T) {
	source := &fakeSource{raw: json.RawMessage(sampleRecord)}
	uc := NewSOPUseCase(source)

	data, filename, err := uc.ExportPDF(context.Background(), "tok-1", "12")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF header, got %q", data[:min(len(data), 8)])
	}
	if filename != "SOP_12_Night_Gate_Access.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocumentPropagatesFetchErrors(t *testing.T) {
	source := &fakeSource{err: listingport.ErrNotFound}
	uc := NewSOPUseCase(source)

	if _, err := uc.Document(context.Background(), "tok-1", "404"); !errors.Is(err, listingport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
