package chat

import "time"

// Session is the persisted state behind one session cookie.
type Session struct {
	ID        string    `json:"id"`
	History   History   `json:"history"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Expired reports whether the session has outlived ttl. A non-positive ttl never expires.
func (s Session) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
