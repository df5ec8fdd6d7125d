package user

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a user profile by their auth ID
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, display_name, avatar_url, fcm_token, created_at
		FROM users
		WHERE id = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.FCMToken,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Upsert creates or updates a user profile. Only fields set in the request
// change; an absent row is created first.
func (r *Repository) Upsert(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	query := `
		INSERT INTO users (id, display_name, avatar_url)
		VALUES ($1, COALESCE($2, ''), $3)
		ON CONFLICT (id) DO UPDATE
		SET display_name = COALESCE($2, users.display_name),
		    avatar_url = COALESCE($3, users.avatar_url)
		RETURNING id, display_name, avatar_url, fcm_token, created_at
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id, req.DisplayName, req.AvatarURL).Scan(
		&user.ID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.FCMToken,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// SetFCMToken stores the device token used for push notifications
func (r *Repository) SetFCMToken(ctx context.Context, id, token string) error {
	query := `
		INSERT INTO users (id, display_name, fcm_token)
		VALUES ($1, '', $2)
		ON CONFLICT (id) DO UPDATE
		SET fcm_token = $2
	`

	if _, err := r.db.ExecContext(ctx, query, id, token); err != nil {
		return fmt.Errorf("failed to set fcm token: %w", err)
	}

	return nil
}

// GetFCMToken returns the device token for a user, or nil when the user has
// none registered
func (r *Repository) GetFCMToken(ctx context.Context, id string) (*string, error) {
	query := `SELECT fcm_token FROM users WHERE id = $1`

	var token *string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fcm token: %w", err)
	}

	return token, nil
}
