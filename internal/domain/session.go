package domain

import "time"

type Session struct {
	ID          string    `json:"id"`
	Token       string    `json:"-"`
	Permissions []string  `json:"permissions"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
