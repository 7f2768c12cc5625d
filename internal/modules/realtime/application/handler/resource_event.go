package handler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"guardpost/internal/modules/realtime/application/port"
	"guardpost/internal/modules/realtime/application/usecase"
	"guardpost/internal/modules/realtime/domain"
)

// PageInvalidator drops the cached pages of a dashboard resource.
type PageInvalidator interface {
	Invalidate(resource string)
}

// ResourceEventHandler turns broker events into dashboard refreshes: the
// cached pages of the affected resource are dropped, every open list session
// re-fetches its current page, and subscribed clients get a refresh hint.
type ResourceEventHandler struct {
	kafkaTopic  string
	resource    string
	lister      PageInvalidator
	watchers    *usecase.WatchManager
	broadcastUC *usecase.BroadcastUseCase
}

func NewResourceEventHandler(kafkaTopic string, lister PageInvalidator, watchers *usecase.WatchManager, broadcastUC *usecase.BroadcastUseCase) *ResourceEventHandler {
	return &ResourceEventHandler{
		kafkaTopic:  strings.TrimSpace(kafkaTopic),
		resource:    domain.ResourceForEventTopic(kafkaTopic),
		lister:      lister,
		watchers:    watchers,
		broadcastUC: broadcastUC,
	}
}

func (h *ResourceEventHandler) Topic() string { return h.kafkaTopic }

func (h *ResourceEventHandler) Handle(ctx context.Context, msg *domain.Message) error {
	resource := h.resource
	if resource == "" {
		resource = strings.TrimSpace(msg.Resource)
	}
	if resource == "" {
		slog.Debug("resource event without resource", slog.String("topic", h.kafkaTopic))
		return nil
	}

	if h.lister != nil {
		h.lister.Invalidate(resource)
	}
	if h.watchers != nil {
		h.watchers.RefreshResource(resource)
	}
	if h.broadcastUC != nil {
		hint := &domain.Message{
			Topic:      domain.RefreshTopic(resource),
			Resource:   resource,
			Action:     domain.ActionRefresh,
			ResourceID: msg.ResourceID,
			Metadata:   msg.Metadata,
			Timestamp:  time.Now().UTC(),
		}
		h.broadcastUC.Execute(ctx, hint)
	}

	slog.Info("resource event handled",
		slog.String("topic", h.kafkaTopic),
		slog.String("resource", resource),
		slog.String("action", msg.Action),
		slog.String("resourceId", msg.ResourceID),
	)
	return nil
}

var _ port.TopicHandler = (*ResourceEventHandler)(nil)
