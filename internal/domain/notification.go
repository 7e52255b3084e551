package domain

import "time"

// RecipientKind distinguishes the two account populations a notification
// row can target.
type RecipientKind string

const (
	RecipientStudent   RecipientKind = "STUDENT"
	RecipientAuthority RecipientKind = "AUTHORITY"
)

// Notification is an in-app notification row. Creation is always
// best-effort from the caller's point of view.
type Notification struct {
	ID            int32             `json:"id"`
	RecipientKind RecipientKind     `json:"recipient_kind"`
	RecipientID   int32             `json:"recipient_id"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Attributes    map[string]string `json:"attributes"`
	IsRead        bool              `json:"is_read"`
	CreatedAt     time.Time         `json:"created_at"`
}
