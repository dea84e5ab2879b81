package models

import (
	"strings"
	"time"
)

// Page is an offset page request. Zero values fall back to defaults.
type Page struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Skip returns the number of documents to skip for this page.
func (p Page) Skip() int64 {
	n := p.Normalize()
	return int64((n.Page - 1) * n.Limit)
}

// Cursor marks the last item of a newest-first page. Items that share a
// createdAt are ordered by id descending, so the pair never repeats or skips.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorFor returns the cursor that resumes after the item (createdAt, id).
func CursorFor(createdAt time.Time, id string) Cursor {
	return Cursor{CreatedAt: createdAt, ID: id}
}

// String encodes c as "<RFC3339Nano>_<id>".
func (c Cursor) String() string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + "_" + c.ID
}

func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero()
}

// Includes reports whether an item created at t with id belongs after c.
// The zero cursor includes everything.
func (c Cursor) Includes(t time.Time, id string) bool {
	if c.IsZero() {
		return true
	}
	if t.Before(c.CreatedAt) {
		return true
	}
	return c.ID != "" && t.Equal(c.CreatedAt) && id < c.ID
}

// ParseCursor decodes a nextBefore value. The empty string is the zero cursor.
// A bare timestamp without an id matches items strictly older than it.
func ParseCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	ts, id, _ := strings.Cut(s, "_")
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{CreatedAt: t, ID: id}, nil
}

// NewestFirst orders items by createdAt then id, both descending.
func NewestFirst(ti time.Time, idi string, tj time.Time, idj string) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}

// ReminderPayload is the asynq payload for a scheduled reminder notification.
type ReminderPayload struct {
	UserID   string            `json:"userId"`
	Type     NotificationType  `json:"type"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	FireDate time.Time         `json:"fireDate"`
}

// FanOutPayload is the asynq payload for notifying an author's connections.
type FanOutPayload struct {
	AuthorID string            `json:"authorId"`
	Type     NotificationType  `json:"type"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
}

// AdminStats is the platform summary for the admin dashboard.
type AdminStats struct {
	Users         int64            `json:"users"`
	PremiumUsers  int64            `json:"premiumUsers"`
	VerifiedUsers int64            `json:"verifiedUsers"`
	Services      int64            `json:"services"`
	Posts         int64            `json:"posts"`
	Swaps         map[string]int64 `json:"swaps"`
}
