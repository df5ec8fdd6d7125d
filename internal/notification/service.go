package notification

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// TokenSource looks up a user's registered device token. Implemented by the
// user repository.
type TokenSource interface {
	GetFCMToken(ctx context.Context, id string) (*string, error)
}

// Service handles notification business logic
type Service struct {
	repo   *Repository
	tokens TokenSource
	push   *PushSender
}

// NewService creates a new notification service
func NewService(repo *Repository, tokens TokenSource, push *PushSender) *Service {
	return &Service{repo: repo, tokens: tokens, push: push}
}

// Create creates a new notification
func (s *Service) Create(ctx context.Context, recipientID, message string, entityType, entityID *string) (*Notification, error) {
	return s.repo.Create(ctx, recipientID, message, entityType, entityID)
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id int64, userID string) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// ParticipantAdded records that a user was added to a bill and sends a push
// to their device. The whole dispatch is best effort; failures are logged
// and never affect the triggering request.
func (s *Service) ParticipantAdded(ctx context.Context, billID uuid.UUID, billTitle, linkedUserID string) {
	title := billTitle
	if title == "" {
		title = "a bill"
	}
	message := "You were added to " + title

	entityType := "BILL"
	entityID := billID.String()
	if _, err := s.repo.Create(ctx, linkedUserID, message, &entityType, &entityID); err != nil {
		log.Printf("notification not recorded for user %s: %v", linkedUserID, err)
	}

	token, err := s.tokens.GetFCMToken(ctx, linkedUserID)
	if err != nil {
		log.Printf("push skipped for user %s: %v", linkedUserID, err)
		return
	}
	if token == nil {
		return
	}

	data := map[string]string{"bill_id": entityID}
	if err := s.push.Send(ctx, *token, "Added to a bill", message, data); err != nil && !errors.Is(err, ErrPushNotConfigured) {
		log.Printf("push failed for user %s: %v", linkedUserID, err)
	}
}
