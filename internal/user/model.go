package user

import "time"

// User represents a user profile in the system. The ID is the subject of
// the caller's auth token; profiles are created lazily on first write.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	FCMToken    *string   `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
