package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime setting of the dashboard gateway.
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Session   SessionConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Listing   ListingConfig
	Uploads   UploadsConfig
	Kafka     KafkaConfig
	Websocket WebsocketConfig
}

type ServerConfig struct {
	Port string
}

// UpstreamConfig points at the remote security-operations REST API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	CookieName   string
	CookieMaxAge time.Duration
	CookieSecure bool
}

type SecurityConfig struct {
	// JWTSecret signs the short-lived channel tokens handed to the browser
	// for websocket connects.
	JWTSecret       string
	ChannelTokenTTL time.Duration
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

type ListingConfig struct {
	DebounceWindow time.Duration
	DefaultPerPage int
}

type UploadsConfig struct {
	MaxFileSize int64
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

type WebsocketConfig struct {
	SendBuffer int
}

// Load reads the environment and returns a validated configuration.
func Load() (*Config, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("UPSTREAM_API_URL")), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_API_URL is required")
	}

	secret := strings.TrimSpace(os.Getenv("CHANNEL_JWT_SECRET"))
	if secret == "" {
		return nil, fmt.Errorf("CHANNEL_JWT_SECRET is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: envOr("PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL: baseURL,
			Timeout: envDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			CookieName:   envOr("SESSION_COOKIE_NAME", "auth_token"),
			CookieMaxAge: envDuration("SESSION_COOKIE_MAX_AGE", 7*24*time.Hour),
			CookieSecure: envBool("SESSION_COOKIE_SECURE", true),
		},
		Security: SecurityConfig{
			JWTSecret:       secret,
			ChannelTokenTTL: envDuration("CHANNEL_TOKEN_TTL", 7*24*time.Hour),
		},
		Logging: LoggingConfig{
			Directory: envOr("LOG_DIR", "./logs"),
			Level:     envOr("LOG_LEVEL", "info"),
			Format:    envOr("LOG_FORMAT", "text"),
		},
		Listing: ListingConfig{
			DebounceWindow: envDuration("LIST_DEBOUNCE_WINDOW", 500*time.Millisecond),
			DefaultPerPage: envInt("LIST_DEFAULT_PER_PAGE", 15),
		},
		Uploads: UploadsConfig{
			MaxFileSize: int64(envInt("UPLOAD_MAX_FILE_SIZE", 5*1024*1024)),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(firstNonEmpty(os.Getenv("KAFKA_BROKERS"), os.Getenv("KAFKA_BROKER"))),
			GroupID: envOr("KAFKA_GROUP_ID", "guardpost-dashboard"),
			Topics:  splitList(envOr("KAFKA_TOPICS", "operations.incidents.created,operations.patrol-logs.created,operations.attendance.recorded,client.escalations.replied")),
		},
		Websocket: WebsocketConfig{
			SendBuffer: envInt("WS_SEND_BUFFER", 64),
		},
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
