package rest

import "strings"

// ValidationError carries the field error map of an upstream 422 response so
// handlers can surface per-field messages instead of a generic failure.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation failed"
	}
	if len(e.Fields) == 0 {
		return e.Message
	}
	var builder strings.Builder
	builder.WriteString(e.Message)
	for field, messages := range e.Fields {
		builder.WriteString("; ")
		builder.WriteString(field)
		builder.WriteString(": ")
		builder.WriteString(strings.Join(messages, ", "))
	}
	return builder.String()
}

// ValidationFromEnvelope builds a ValidationError from a 422 envelope.
func ValidationFromEnvelope(envelope *Envelope) *ValidationError {
	message := "Validation failed"
	if envelope != nil && strings.TrimSpace(envelope.Message) != "" {
		message = envelope.Message
	}
	var fields map[string][]string
	if envelope != nil {
		fields = envelope.Errors
	}
	return &ValidationError{Message: message, Fields: fields}
}
