package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	listingdomain "guardpost/internal/modules/listing/domain"
	"guardpost/internal/modules/realtime/application/usecase"
	"guardpost/internal/modules/realtime/domain"
	"guardpost/internal/modules/realtime/infrastructure"
	sessiondomain "guardpost/internal/modules/session/domain"
	"guardpost/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionResolver maps the sid claim of a channel token back to the live
// session holding the upstream bearer token.
type SessionResolver interface {
	FindByID(sessionID string) (*sessiondomain.Session, bool)
}

// NewWebsocketHandler exposes GET /ws/dashboard and validates the channel
// JWT locally; no upstream round trip happens on the handshake. Connected
// clients watch dashboard resources with list/filter/search/page commands
// and receive refresh hints on the resource topics.
func NewWebsocketHandler(
	hub *infrastructure.Hub,
	validator auth.TokenValidator,
	sessions SessionResolver,
	watchers *usecase.WatchManager,
	resources []string,
	sendBuffer int,
) func(echo.Context) error {
	if sendBuffer <= 0 {
		sendBuffer = 8
	}

	return func(c echo.Context) error {
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			token = auth.ExtractToken(c.Request(), "token")
		}

		claims, err := validator.Validate(token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				status = http.StatusBadRequest
				message = "missing token"
			}
			slog.Warn("ws handshake rejected", slog.Int("status", status), slog.Any("error", err))
			return echo.NewHTTPError(status, message)
		}

		session, ok := sessions.FindByID(claims.SessionID)
		if !ok {
			// Valid JWT but the cookie session is gone, e.g. after logout.
			slog.Warn("ws handshake for closed session", slog.String("sessionId", claims.SessionID))
			return echo.NewHTTPError(http.StatusUnauthorized, "session closed")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.Any("error", err))
			return err
		}

		connID := uuid.NewString()
		userID := claims.RegisteredClaims.Subject

		var watcher *usecase.Watcher
		commandFn := newWatchCommandHandler(func() *usecase.Watcher { return watcher })

		client := infrastructure.NewClient(hub, conn, connID, userID, claims.SessionID, sendBuffer, commandFn)
		watcher = watchers.Register(context.Background(), connID, session.Token, client)
		client.AddCloseHook(func(*infrastructure.Client) {
			watchers.Unregister(connID)
		})

		hub.AttachClient(client, refreshTopics(resources))

		go client.WritePump()
		go client.ReadPump()

		connected := &domain.Message{
			Topic:    "system.connected",
			Resource: "system",
			Action:   domain.ActionConnected,
			Metadata: map[string]string{
				"userId":    userID,
				"sessionId": claims.SessionID,
			},
			Data: map[string]any{
				"connectionId": connID,
				"resources":    resources,
			},
			Timestamp: time.Now().UTC(),
		}
		client.SendMessage(connected)
		slog.Info("ws connected", slog.String("connId", connID), slog.String("userId", userID), slog.String("sessionId", claims.SessionID))

		return nil
	}
}

func refreshTopics(resources []string) []string {
	topics := make([]string, 0, len(resources))
	for _, resource := range resources {
		if trimmed := strings.TrimSpace(resource); trimmed != "" {
			topics = append(topics, domain.RefreshTopic(trimmed))
		}
	}
	return topics
}

// newWatchCommandHandler routes resource-scoped commands to the connection's
// watcher. The watcher is resolved lazily since the client must exist before
// it can be registered.
func newWatchCommandHandler(watcherFn func() *usecase.Watcher) infrastructure.CommandHandler {
	return func(_ context.Context, client *infrastructure.Client, cmd infrastructure.Command) {
		watcher := watcherFn()
		if watcher == nil {
			return
		}

		action := strings.ToLower(strings.TrimSpace(cmd.Action))
		switch action {
		case "watch", "list":
			var payload domain.WatchCommand
			if len(cmd.Payload) > 0 {
				if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
					sendCommandError(client, cmd.Resource, action, "invalid payload")
					return
				}
			}
			resource := commandResource(cmd, payload.Resource)
			if resource == "" {
				sendCommandError(client, resource, action, "missing resource")
				return
			}
			query := listingdomain.PagedQuery{
				Page:    payload.Page,
				PerPage: payload.PerPage,
				Search:  payload.Search,
				Filters: payload.Filters,
			}
			watcher.Watch(resource, query)
		case "filter":
			var payload domain.FilterCommand
			if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
				sendCommandError(client, cmd.Resource, action, "invalid payload")
				return
			}
			resource := commandResource(cmd, payload.Resource)
			if resource == "" {
				sendCommandError(client, resource, action, "missing resource")
				return
			}
			watcher.Filter(resource, payload.Filters)
		case "search":
			var payload domain.SearchCommand
			if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
				sendCommandError(client, cmd.Resource, action, "invalid payload")
				return
			}
			resource := commandResource(cmd, payload.Resource)
			if resource == "" {
				sendCommandError(client, resource, action, "missing resource")
				return
			}
			watcher.Search(resource, payload.Search)
		case "page", "goto":
			var payload domain.PageCommand
			if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
				sendCommandError(client, cmd.Resource, action, "invalid payload")
				return
			}
			resource := commandResource(cmd, payload.Resource)
			if resource == "" {
				sendCommandError(client, resource, action, "missing resource")
				return
			}
			watcher.Page(resource, payload.Page)
		case "stop", "unwatch":
			resource := commandResource(cmd, "")
			if resource == "" {
				sendCommandError(client, resource, action, "missing resource")
				return
			}
			watcher.Unwatch(resource)
		default:
			slog.Debug("ws unknown action", slog.String("action", cmd.Action))
			sendCommandError(client, cmd.Resource, action, "unsupported action")
		}
	}
}

func commandResource(cmd infrastructure.Command, payloadResource string) string {
	if resource := strings.TrimSpace(cmd.Resource); resource != "" {
		return resource
	}
	return strings.TrimSpace(payloadResource)
}

func sendCommandError(client *infrastructure.Client, resource, action, reason string) {
	topic := "system.error"
	if strings.TrimSpace(resource) != "" {
		topic = domain.ErrorTopic(resource)
	}
	client.SendMessage(&domain.Message{
		Topic:    topic,
		Resource: strings.TrimSpace(resource),
		Action:   domain.ActionError,
		Metadata: map[string]string{
			"action": action,
			"reason": reason,
		},
		Timestamp: time.Now().UTC(),
	})
}
