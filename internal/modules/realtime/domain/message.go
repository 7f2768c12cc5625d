package domain

import (
	"strings"
	"time"
)

const (
	ActionLoading   = "loading"
	ActionPage      = "page"
	ActionRefresh   = "refresh"
	ActionError     = "error"
	ActionConnected = "connected"
	ActionPong      = "pong"
)

// Message is one frame pushed to websocket clients, either a list page for a
// single watcher or a refresh hint broadcast to a resource topic.
type Message struct {
	Topic      string            `json:"topic"`
	Resource   string            `json:"resource,omitempty"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

func PageTopic(resource string) string    { return strings.TrimSpace(resource) + ".page" }
func RefreshTopic(resource string) string { return strings.TrimSpace(resource) + ".refresh" }
func ErrorTopic(resource string) string   { return strings.TrimSpace(resource) + ".error" }

// ResourceForEventTopic maps a broker event topic to the dashboard resource
// whose cached pages it invalidates. Event topics follow
// <domain>.<resource>.<action>, e.g. operations.incidents.created.
func ResourceForEventTopic(topic string) string {
	parts := strings.Split(strings.TrimSpace(topic), ".")
	if len(parts) < 3 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-2])
}
