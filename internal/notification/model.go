package notification

import "time"

// Notification represents a notification in the system. Recipients are
// identified by their auth user ID.
type Notification struct {
	ID                int64     `json:"id"`
	RecipientID       string    `json:"recipient_id"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"` // e.g., "BILL"
	RelatedEntityID   *string   `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeParticipantAdded NotificationType = "PARTICIPANT_ADDED"
)
