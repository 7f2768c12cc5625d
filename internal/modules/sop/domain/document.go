package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"guardpost/internal/shared/rest"
)

var ErrEmptyDocument = errors.New("sop document has no title")

// Document is one standard operating procedure as the upstream stores it.
type Document struct {
	ID                    rest.FlexInt `json:"id"`
	Title                 string       `json:"title"`
	Site                  string       `json:"site"`
	EffectiveDate         string       `json:"effective_date"`
	ProcedureSteps        []string     `json:"procedure_steps"`
	Responsibilities      []string     `json:"responsibilities"`
	EmergencyInstructions []string     `json:"emergency_instructions"`
}

// ParseDocument decodes an upstream SOP record.
func ParseDocument(raw json.RawMessage) (*Document, error) {
	var document Document
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("decode sop document: %w", err)
	}
	if strings.TrimSpace(document.Title) == "" {
		return nil, ErrEmptyDocument
	}
	return &document, nil
}

// Markdown lays the document out as a markdown source that both the HTML
// preview and the PDF export are built from.
func (d *Document) Markdown() string {
	var builder strings.Builder
	builder.WriteString("# ")
	builder.WriteString(strings.TrimSpace(d.Title))
	builder.WriteString("\n\n")

	if site := strings.TrimSpace(d.Site); site != "" {
		fmt.Fprintf(&builder, "**Site:** %s\n\n", site)
	}
	if date := strings.TrimSpace(d.EffectiveDate); date != "" {
		fmt.Fprintf(&builder, "**Effective date:** %s\n\n", date)
	}

	writeSection(&builder, "Procedure Steps", d.ProcedureSteps, true)
	writeSection(&builder, "Responsibilities", d.Responsibilities, false)
	writeSection(&builder, "Emergency Instructions", d.EmergencyInstructions, false)

	return builder.String()
}

func writeSection(builder *strings.Builder, heading string, items []string, numbered bool) {
	entries := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	if len(entries) == 0 {
		return
	}
	builder.WriteString("## ")
	builder.WriteString(heading)
	builder.WriteString("\n\n")
	for index, entry := range entries {
		if numbered {
			fmt.Fprintf(builder, "%d. %s\n", index+1, entry)
		} else {
			fmt.Fprintf(builder, "- %s\n", entry)
		}
	}
	builder.WriteString("\n")
}

// Filename derives a safe download name for the exported PDF.
func (d *Document) Filename() string {
	title := strings.TrimSpace(d.Title)
	var builder strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			builder.WriteRune('_')
		}
	}
	name := strings.Trim(builder.String(), "_")
	if name == "" {
		name = "sop"
	}
	return fmt.Sprintf("SOP_%d_%s.pdf", d.ID.Int(), name)
}
