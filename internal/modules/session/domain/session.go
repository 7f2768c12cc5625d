package domain

import (
	"strings"
	"time"
)

// User mirrors the client record returned by the upstream login endpoint.
// Flag fields arrive as "0"/"1" strings and are passed through unmodified.
type User struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Type           string  `json:"type"`
	Avatar         string  `json:"avatar"`
	PlanExpireDate *string `json:"plan_expire_date"`
	RequestedPlan  string  `json:"requested_plan"`
	IsLoginEnable  string  `json:"is_login_enable"`
	IsActive       string  `json:"is_active"`
	LastLogin      *string `json:"last_login"`
	ReferralCode   string  `json:"referral_code"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func (u User) Active() bool       { return strings.TrimSpace(u.IsActive) == "1" }
func (u User) LoginEnabled() bool { return strings.TrimSpace(u.IsLoginEnable) == "1" }

// Session binds the upstream bearer token to the user it authenticates. The
// token is opaque to the gateway; it is only ever forwarded as an
// Authorization header.
type Session struct {
	ID        string
	Token     string
	User      User
	CreatedAt time.Time
}

func (s *Session) Valid(ttl time.Duration) bool {
	if s == nil || strings.TrimSpace(s.Token) == "" {
		return false
	}
	if ttl <= 0 {
		return true
	}
	return time.Since(s.CreatedAt) < ttl
}
