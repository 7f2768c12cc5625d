package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"guardpost/internal/modules/sop/domain"
)

const documentResource = "sop-generators"

// mdRenderer escapes raw HTML so upstream content cannot inject markup
// into the preview.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// DocumentSource fetches one upstream record of a dashboard resource.
type DocumentSource interface {
	Detail(ctx context.Context, token, resource, resourceID string) (json.RawMessage, error)
}

// Preview pairs a procedure document with its rendered HTML body.
type Preview struct {
	Document *domain.Document
	HTML     string
}

// SOPUseCase loads standard operating procedures and renders them for
// on-screen preview or PDF download.
type SOPUseCase struct {
	source DocumentSource
}

func NewSOPUseCase(source DocumentSource) *SOPUseCase {
	return &SOPUseCase{source: source}
}

func (uc *SOPUseCase) Document(ctx context.Context, token, documentID string) (*domain.Document, error) {
	raw, err := uc.source.Detail(ctx, token, documentResource, documentID)
	if err != nil {
		return nil, err
	}
	return domain.ParseDocument(raw)
}

func (uc *SOPUseCase) Preview(ctx context.Context, token, documentID string) (*Preview, error) {
	document, err := uc.Document(ctx, token, documentID)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := mdRenderer.Convert([]byte(document.Markdown()), &body); err != nil {
		return nil, fmt.Errorf("render sop preview: %w", err)
	}
	return &Preview{Document: document, HTML: body.String()}, nil
}

// ExportPDF returns the rendered document and the download filename.
func (uc *SOPUseCase) ExportPDF(ctx context.Context, token, documentID string) ([]byte, string, error) {
	document, err := uc.Document(ctx, token, documentID)
	if err != nil {
		return nil, "", err
	}
	data, err := buildDocumentPDF(document)
	if err != nil {
		return nil, "", err
	}
	return data, document.Filename(), nil
}

func buildDocumentPDF(document *domain.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(document.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, document.Title, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	if document.Site != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Site: %s", document.Site))
		pdf.Ln(6)
	}
	if document.EffectiveDate != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Effective date: %s", document.EffectiveDate))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	writePDFSection(pdf, "Procedure Steps", document.ProcedureSteps, true)
	writePDFSection(pdf, "Responsibilities", document.Responsibilities, false)
	writePDFSection(pdf, "Emergency Instructions", document.EmergencyInstructions, false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("build sop pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writePDFSection(pdf *gofpdf.Fpdf, heading string, items []string, numbered bool) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, heading)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for index, item := range items {
		marker := "-"
		if numbered {
			marker = fmt.Sprintf("%d.", index+1)
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("%s %s", marker, item), "", "L", false)
	}
	pdf.Ln(3)
}
