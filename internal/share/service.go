package share

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/splitzy/splitzy/internal/bill"
)

// Common errors
var (
	ErrBillNotFound = errors.New("bill not found")
	ErrNotOwner     = errors.New("only the bill owner can manage share links")
	ErrLinkNotFound = errors.New("bill not found or link expired")
)

// Store is the persistence interface the service depends on
type Store interface {
	GetBillOwner(ctx context.Context, billID uuid.UUID) (string, bool, error)
	SetShareToken(ctx context.Context, billID uuid.UUID, token string) error
	GetShareToken(ctx context.Context, billID uuid.UUID) (*string, error)
	ClearShareToken(ctx context.Context, billID uuid.UUID) error
	GetSnapshotByToken(ctx context.Context, token string) (*PublicSnapshot, error)
}

// Service handles share link business logic
type Service struct {
	store  Store
	bills  *bill.Service
	cache  *Cache
	appURL string
}

// NewService creates a new share service with dependencies injected
func NewService(store Store, bills *bill.Service, cache *Cache, appURL string) *Service {
	return &Service{store: store, bills: bills, cache: cache, appURL: appURL}
}

// CreateLink issues a new share token for a bill. Only the owner may share;
// reissuing replaces any previous token, invalidating old links.
func (s *Service) CreateLink(ctx context.Context, billID uuid.UUID, userID string) (*LinkResponse, error) {
	if err := s.requireOwner(ctx, billID, userID); err != nil {
		return nil, err
	}

	old, err := s.store.GetShareToken(ctx, billID)
	if err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	if err := s.store.SetShareToken(ctx, billID, token); err != nil {
		return nil, err
	}

	if old != nil {
		s.cache.DeleteSnapshot(ctx, *old)
	}

	return &LinkResponse{
		Token: token,
		URL:   fmt.Sprintf("%s/b/%s", s.appURL, token),
	}, nil
}

// RevokeLink deactivates a bill's share link. Only the owner may revoke.
func (s *Service) RevokeLink(ctx context.Context, billID uuid.UUID, userID string) error {
	if err := s.requireOwner(ctx, billID, userID); err != nil {
		return err
	}

	token, err := s.store.GetShareToken(ctx, billID)
	if err != nil {
		return err
	}

	if err := s.store.ClearShareToken(ctx, billID); err != nil {
		return err
	}

	if token != nil {
		s.cache.DeleteSnapshot(ctx, *token)
	}

	return nil
}

// PublicSnapshot returns the redacted bill view for a share token. No
// authentication: possession of an active token is the whole authorization.
func (s *Service) PublicSnapshot(ctx context.Context, token string) (*PublicSnapshot, error) {
	if snapshot := s.cache.GetSnapshot(ctx, token); snapshot != nil {
		return snapshot, nil
	}

	snapshot, err := s.store.GetSnapshotByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrLinkNotFound
	}

	s.cache.SetSnapshot(ctx, token, snapshot)
	return snapshot, nil
}

// ShareText renders the plain-text split summary the owner can paste into a
// chat. It recomputes the split from the current snapshot.
func (s *Service) ShareText(ctx context.Context, billID uuid.UUID, userID string) (string, error) {
	details, err := s.bills.GetBill(ctx, billID, userID)
	if err != nil {
		if errors.Is(err, bill.ErrBillNotFound) {
			return "", ErrBillNotFound
		}
		if errors.Is(err, bill.ErrNotOwner) {
			return "", ErrNotOwner
		}
		return "", err
	}

	result, _, err := s.bills.ComputeSplit(ctx, billID, userID)
	if err != nil {
		return "", err
	}

	return RenderShareText(details, result), nil
}

// requireOwner checks that the bill exists and belongs to userID
func (s *Service) requireOwner(ctx context.Context, billID uuid.UUID, userID string) error {
	ownerID, found, err := s.store.GetBillOwner(ctx, billID)
	if err != nil {
		return err
	}
	if !found {
		return ErrBillNotFound
	}
	if ownerID != userID {
		return ErrNotOwner
	}
	return nil
}

// newToken generates a 128-bit random hex token
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
