package rest

import (
	"encoding/json"
	"fmt"
	"io"
)

// Envelope is the `{status, message, data}` wrapper every upstream endpoint
// returns. Validation failures additionally carry a field error map.
type Envelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// DecodeEnvelope reads and decodes an upstream response body.
func DecodeEnvelope(body io.Reader) (*Envelope, error) {
	var envelope Envelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &envelope, nil
}

// FlexInt tolerates numeric fields that arrive either as JSON numbers or as
// quoted strings, which the upstream paginator does for per_page.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		var parsed int
		if _, err := fmt.Sscanf(raw, "%d", &parsed); err != nil {
			return fmt.Errorf("parse flexible int %q: %w", raw, err)
		}
		*f = FlexInt(parsed)
		return nil
	}
	var parsed int
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*f = FlexInt(parsed)
	return nil
}

func (f FlexInt) Int() int { return int(f) }
