package bill

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/splitzy/splitzy/internal/split"
)

// Common errors
var (
	ErrBillNotFound        = errors.New("bill not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrNotOwner            = errors.New("only the bill owner can do this")
	ErrUnknownAssignee     = errors.New("assignment references a participant not on this bill")
)

// Store is the persistence interface the service depends on. *Repository is
// the production implementation; tests use an in-memory fake.
type Store interface {
	CreateBill(ctx context.Context, ownerID string, req *CreateBillRequest) (*Bill, error)
	GetBillByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	ListBillsByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*Bill, int, error)
	UpdateBill(ctx context.Context, id uuid.UUID, req *UpdateBillRequest) (*Bill, error)
	DeleteBill(ctx context.Context, id uuid.UUID) error

	AddParticipant(ctx context.Context, billID uuid.UUID, req *AddParticipantRequest) (*Participant, error)
	ListParticipants(ctx context.Context, billID uuid.UUID) ([]*Participant, error)
	DeleteParticipant(ctx context.Context, billID, participantID uuid.UUID) error

	AddItem(ctx context.Context, billID uuid.UUID, req *AddItemRequest) (*Item, error)
	GetItemByID(ctx context.Context, billID, itemID uuid.UUID) (*Item, error)
	UpdateItem(ctx context.Context, billID, itemID uuid.UUID, req *UpdateItemRequest) (*Item, error)
	DeleteItem(ctx context.Context, billID, itemID uuid.UUID) error
	ListItems(ctx context.Context, billID uuid.UUID) ([]*Item, error)
	SetAssignments(ctx context.Context, itemID uuid.UUID, participantIDs []uuid.UUID) error
}

// Notifier is told when a participant with a linked user is added to a bill.
// Implemented by the notification service; a nil Notifier disables dispatch.
type Notifier interface {
	ParticipantAdded(ctx context.Context, billID uuid.UUID, billTitle, linkedUserID string)
}

// Service handles bill business logic
type Service struct {
	store    Store
	notifier Notifier
}

// NewService creates a new bill service with dependencies injected
func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// CreateBill creates a new bill owned by the given user
func (s *Service) CreateBill(ctx context.Context, ownerID string, req *CreateBillRequest) (*Bill, error) {
	if req.Currency == "" {
		req.Currency = "USD"
	}
	return s.store.CreateBill(ctx, ownerID, req)
}

// GetBill retrieves a bill with its participants and items. Only the owner
// may read a bill through this path; viewers use the public share snapshot.
func (s *Service) GetBill(ctx context.Context, billID uuid.UUID, userID string) (*BillDetails, error) {
	b, err := s.ownedBill(ctx, billID, userID)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.ListParticipants(ctx, billID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListItems(ctx, billID)
	if err != nil {
		return nil, err
	}

	return &BillDetails{Bill: b, Participants: participants, Items: items}, nil
}

// ListBills retrieves the user's bills, newest first
func (s *Service) ListBills(ctx context.Context, userID string, page, perPage int) ([]*Bill, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListBillsByOwner(ctx, userID, perPage, offset)
}

// UpdateBill applies a partial update to a bill the user owns
func (s *Service) UpdateBill(ctx context.Context, billID uuid.UUID, userID string, req *UpdateBillRequest) (*Bill, error) {
	if _, err := s.ownedBill(ctx, billID, userID); err != nil {
		return nil, err
	}

	b, err := s.store.UpdateBill(ctx, billID, req)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBillNotFound
	}
	return b, nil
}

// DeleteBill removes a bill the user owns
func (s *Service) DeleteBill(ctx context.Context, billID uuid.UUID, userID string) error {
	if _, err := s.ownedBill(ctx, billID, userID); err != nil {
		return err
	}
	return s.store.DeleteBill(ctx, billID)
}

// AddParticipant adds a participant to a bill the user owns. If the
// participant is linked to a registered user, that user gets notified.
func (s *Service) AddParticipant(ctx context.Context, billID uuid.UUID, userID string, req *AddParticipantRequest) (*Participant, error) {
	b, err := s.ownedBill(ctx, billID, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.store.AddParticipant(ctx, billID, req)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && p.LinkedUserID != nil && *p.LinkedUserID != "" {
		s.notifier.ParticipantAdded(ctx, b.ID, b.Title, *p.LinkedUserID)
	}

	return p, nil
}

// RemoveParticipant removes a participant from a bill the user owns
func (s *Service) RemoveParticipant(ctx context.Context, billID, participantID uuid.UUID, userID string) error {
	if _, err := s.ownedBill(ctx, billID, userID); err != nil {
		return err
	}
	return s.store.DeleteParticipant(ctx, billID, participantID)
}

// AddItem adds a line item to a bill the user owns
func (s *Service) AddItem(ctx context.Context, billID uuid.UUID, userID string, req *AddItemRequest) (*Item, error) {
	if _, err := s.ownedBill(ctx, billID, userID); err != nil {
		return nil, err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	return s.store.AddItem(ctx, billID, req)
}

// UpdateItem applies a partial update to a line item on a bill the user owns
func (s *Service) UpdateItem(ctx context.Context, billID, itemID uuid.UUID, userID string, req *UpdateItemRequest) (*Item, error) {
	if _, err := s.ownedBill(ctx, billID, userID); err != nil {
		return nil, err
	}

	i, err := s.store.UpdateItem(ctx, billID, itemID, req)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, ErrItemNotFound
	}
	return i, nil
}

// RemoveItem removes a line item from a bill the user owns
func (s *Service) RemoveItem(ctx context.Context, billID, itemID uuid.UUID, userID string) error {
	if _, err := s.ownedBill(ctx, billID, userID); err != nil {
		return err
	}
	return s.store.DeleteItem(ctx, billID, itemID)
}

// SetAssignments replaces an item's ordered assignee list. Every referenced
// participant must already be on the bill.
func (s *Service) SetAssignments(ctx context.Context, billID, itemID uuid.UUID, userID string, participantIDs []uuid.UUID) error {
	if _, err := s.ownedBill(ctx, billID, userID); err != nil {
		return err
	}

	item, err := s.store.GetItemByID(ctx, billID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}

	participants, err := s.store.ListParticipants(ctx, billID)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(participants))
	for _, p := range participants {
		known[p.ID] = true
	}
	for _, pid := range participantIDs {
		if !known[pid] {
			return ErrUnknownAssignee
		}
	}

	return s.store.SetAssignments(ctx, itemID, participantIDs)
}

// ComputeSplit recomputes the full split from the bill's current snapshot.
// The engine is stateless, so every call re-derives the result from scratch.
func (s *Service) ComputeSplit(ctx context.Context, billID uuid.UUID, userID string) (*split.BillResult, []*Participant, error) {
	details, err := s.GetBill(ctx, billID, userID)
	if err != nil {
		return nil, nil, err
	}

	result, err := split.Calculate(ToSplitInput(details))
	if err != nil {
		return nil, nil, err
	}

	return result, details.Participants, nil
}

// ToSplitInput maps a bill snapshot onto the calculation engine's input
func ToSplitInput(details *BillDetails) split.BillInput {
	participants := make([]split.Participant, len(details.Participants))
	for i, p := range details.Participants {
		participants[i] = split.Participant{ID: p.ID, Name: p.DisplayName}
	}

	items := make([]split.LineItem, len(details.Items))
	for i, it := range details.Items {
		items[i] = split.LineItem{
			ID:                     it.ID,
			Name:                   it.Name,
			UnitPriceCents:         it.UnitPriceCents,
			Quantity:               it.Quantity,
			AssignedParticipantIDs: it.AssignedParticipantIDs,
		}
	}

	return split.BillInput{
		Items:        items,
		TaxCents:     details.Bill.TaxCents,
		TipCents:     details.Bill.TipCents,
		Participants: participants,
	}
}

// ownedBill loads a bill and enforces that userID owns it
func (s *Service) ownedBill(ctx context.Context, billID uuid.UUID, userID string) (*Bill, error) {
	b, err := s.store.GetBillByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBillNotFound
	}
	if b.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return b, nil
}
