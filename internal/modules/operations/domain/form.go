package domain

import (
	"errors"
	"fmt"
	"strings"

	"guardpost/internal/shared/upload"
)

// MaxUploadSize caps each attachment on the operations forms.
const MaxUploadSize = 5 * 1024 * 1024

// Encoding selects how a form travels upstream.
type Encoding string

const (
	EncodingMultipart Encoding = "multipart"
	EncodingJSON      Encoding = "json"
)

var ErrFormUnsupported = errors.New("operations form unsupported")

// MissingFieldsError reports which required fields were left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// FormSpec describes one operations submission form: where it posts, which
// fields the upstream requires, and how attachments are keyed and bounded.
type FormSpec struct {
	Name     string
	Path     string
	Encoding Encoding
	Required []string
	Optional []string
	FileKey  string
	Multi    bool
	Policy   upload.Policy
}

var photoPolicy = upload.Policy{
	MaxSize:      MaxUploadSize,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/jpg"},
}

var forms = map[string]FormSpec{
	"incidents": {
		Name:     "incidents",
		Path:     "/api/operations/incidents",
		Encoding: EncodingMultipart,
		Required: []string{"guard_name", "incident_type", "incident_date", "location", "description"},
		FileKey:  "photos[]",
		Multi:    true,
		Policy:   photoPolicy,
	},
	"patrol-logs": {
		Name:     "patrol-logs",
		Path:     "/api/operations/patrol-logs",
		Encoding: EncodingMultipart,
		Required: []string{"guard_name", "location", "patrol_area", "patrol_date", "patrol_time", "observation"},
		Optional: []string{"incident_found", "incident_description"},
		FileKey:  "evidence[]",
		Multi:    true,
		Policy: upload.Policy{
			MaxSize:      MaxUploadSize,
			AllowedTypes: []string{"image/*", "video/*"},
		},
	},
	"assessments": {
		Name:     "assessments",
		Path:     "/api/operations/assessments",
		Encoding: EncodingMultipart,
		Required: []string{"client_id", "site_address", "facility_type"},
		Optional: []string{"assessment_date", "guard_requirements"},
		FileKey:  "photo",
		Policy:   photoPolicy,
	},
	"manning-structures": {
		Name:     "manning-structures",
		Path:     "/api/operations/manning-structures",
		Encoding: EncodingJSON,
		Required: []string{"client_name", "location", "start_date", "total_guards"},
	},
	"sop-generators": {
		Name:     "sop-generators",
		Path:     "/api/operations/sop-generators",
		Encoding: EncodingJSON,
		Required: []string{"sop_title", "client_name", "location", "effective_date"},
	},
}

// FormFor resolves a submission form by name.
func FormFor(name string) (FormSpec, error) {
	spec, ok := forms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FormSpec{}, ErrFormUnsupported
	}
	return spec, nil
}

// ValidateFields checks the required fields and returns the sanitized set,
// keeping only fields the form knows about.
func (s FormSpec) ValidateFields(fields map[string]string) (map[string]string, error) {
	sanitized := make(map[string]string, len(s.Required)+len(s.Optional))
	var missing []string
	for _, name := range s.Required {
		value := strings.TrimSpace(fields[name])
		if value == "" {
			missing = append(missing, name)
			continue
		}
		sanitized[name] = value
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	for _, name := range s.Optional {
		if value := strings.TrimSpace(fields[name]); value != "" {
			sanitized[name] = value
		}
	}
	return sanitized, nil
}

// ScreenFiles applies the form's attachment policy.
func (s FormSpec) ScreenFiles(files []upload.File) (accepted []upload.File, rejected []upload.Rejected) {
	if s.FileKey == "" {
		return nil, nil
	}
	accepted, rejected = s.Policy.Screen(files)
	if !s.Multi && len(accepted) > 1 {
		for _, extra := range accepted[1:] {
			rejected = append(rejected, upload.Rejected{Name: extra.Name, Reason: "only one file allowed"})
		}
		accepted = accepted[:1]
	}
	return accepted, rejected
}
