package notifications

import (
	"time"

	"github.com/tracepanic/compyle/pkg/sanitizer"
)

// Type is the severity of a notification. Clients use it to pick an icon.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Types lists every valid Type.
var Types = []Type{TypeInfo, TypeSuccess, TypeWarning, TypeError}

// OrDefault maps the zero value to TypeInfo.
func (t Type) OrDefault() Type {
	if t == "" {
		return TypeInfo
	}
	return t
}

// ListLimit caps the number of notifications List returns.
const ListLimit = 50

// Field limits enforced on input.
const (
	MaxTitleLength   = 255
	MaxMessageLength = 2000
	MaxLinkLength    = 2048
)

// Notification is a persisted message addressed to exactly one user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	Link      *string   `json:"link"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Content is the user-visible part of a notification.
type Content struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Type    Type    `json:"type,omitempty"`
	Link    *string `json:"link,omitempty"`
}

// NewNotification is the input to Store.Insert.
type NewNotification struct {
	UserID string `json:"user_id"`
	Content
}

// For addresses c to userID.
func (c Content) For(userID string) NewNotification {
	return NewNotification{UserID: userID, Content: c}
}

var (
	cleanTitle   = sanitizer.Compose(sanitizer.StripControl, sanitizer.SingleLine)
	cleanMessage = sanitizer.Compose(sanitizer.StripControl, sanitizer.CollapseBlankLines, sanitizer.TrimSpace)
)

// Normalize returns c with a single-line title, a trimmed message without
// control characters, and a nil link when the link is blank.
func (c Content) Normalize() Content {
	c.Title = cleanTitle(c.Title)
	c.Message = cleanMessage(c.Message)
	if c.Link != nil {
		c.Link = Link(sanitizer.TrimSpace(*c.Link))
	}
	return c
}

// Topic is the event bus topic carrying live notifications for userID.
func Topic(userID string) string {
	return "notification:" + userID
}

// Link returns a pointer suitable for Content.Link. An empty string means
// no link.
func Link(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
