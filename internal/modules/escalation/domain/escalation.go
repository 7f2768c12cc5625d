package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"guardpost/internal/shared/upload"
)

const (
	MaxDescriptionLength = 1000
	// The enquiry form caps attachments at 5MB flat, not 5MiB.
	MaxImageSize = 5_120_000
)

var ImagePolicy = upload.Policy{
	MaxSize:      MaxImageSize,
	AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
}

var (
	ErrEmptyReply         = errors.New("reply message is empty")
	ErrMissingType        = errors.New("escalation type is required")
	ErrMissingStaff       = errors.New("staff identifier is required")
	ErrEmptyDescription   = errors.New("description is required")
	ErrDescriptionTooLong = errors.New("description is too long")
)

// ReplyMessage trims and validates a thread reply before it may touch the
// network.
func ReplyMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", ErrEmptyReply
	}
	return trimmed, nil
}

// Submission is one enquiry escalation form.
type Submission struct {
	EscalationType  string
	StaffIdentifier string
	Message         string
	Image           *upload.File
}

func (s Submission) Validate() error {
	if strings.TrimSpace(s.EscalationType) == "" {
		return ErrMissingType
	}
	if strings.TrimSpace(s.StaffIdentifier) == "" {
		return ErrMissingStaff
	}
	message := strings.TrimSpace(s.Message)
	if message == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(message) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if s.Image != nil {
		if err := ImagePolicy.Check(*s.Image); err != nil {
			return err
		}
	}
	return nil
}
