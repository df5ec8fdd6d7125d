package bill

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store implementation for service tests
type fakeStore struct {
	bills        map[uuid.UUID]*Bill
	participants map[uuid.UUID][]*Participant // keyed by bill ID
	items        map[uuid.UUID][]*Item        // keyed by bill ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bills:        make(map[uuid.UUID]*Bill),
		participants: make(map[uuid.UUID][]*Participant),
		items:        make(map[uuid.UUID][]*Item),
	}
}

func (f *fakeStore) CreateBill(_ context.Context, ownerID string, req *CreateBillRequest) (*Bill, error) {
	b := &Bill{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     req.Title,
		Currency:  req.Currency,
		TaxCents:  req.TaxCents,
		TipCents:  req.TipCents,
		CreatedAt: time.Now().UTC(),
	}
	f.bills[b.ID] = b
	return b, nil
}

func (f *fakeStore) GetBillByID(_ context.Context, id uuid.UUID) (*Bill, error) {
	return f.bills[id], nil
}

func (f *fakeStore) ListBillsByOwner(_ context.Context, ownerID string, _, _ int) ([]*Bill, int, error) {
	var out []*Bill
	for _, b := range f.bills {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateBill(_ context.Context, id uuid.UUID, req *UpdateBillRequest) (*Bill, error) {
	b := f.bills[id]
	if b == nil {
		return nil, nil
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Currency != nil {
		b.Currency = *req.Currency
	}
	if req.TaxCents != nil {
		b.TaxCents = *req.TaxCents
	}
	if req.TipCents != nil {
		b.TipCents = *req.TipCents
	}
	return b, nil
}

func (f *fakeStore) DeleteBill(_ context.Context, id uuid.UUID) error {
	if f.bills[id] == nil {
		return ErrBillNotFound
	}
	delete(f.bills, id)
	return nil
}

func (f *fakeStore) AddParticipant(_ context.Context, billID uuid.UUID, req *AddParticipantRequest) (*Participant, error) {
	p := &Participant{
		ID:           uuid.New(),
		BillID:       billID,
		DisplayName:  req.DisplayName,
		LinkedUserID: req.LinkedUserID,
		CreatedAt:    time.Now().UTC(),
	}
	f.participants[billID] = append(f.participants[billID], p)
	return p, nil
}

func (f *fakeStore) ListParticipants(_ context.Context, billID uuid.UUID) ([]*Participant, error) {
	return f.participants[billID], nil
}

func (f *fakeStore) DeleteParticipant(_ context.Context, billID, participantID uuid.UUID) error {
	list := f.participants[billID]
	for i, p := range list {
		if p.ID == participantID {
			f.participants[billID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrParticipantNotFound
}

func (f *fakeStore) AddItem(_ context.Context, billID uuid.UUID, req *AddItemRequest) (*Item, error) {
	i := &Item{
		ID:                     uuid.New(),
		BillID:                 billID,
		Name:                   req.Name,
		UnitPriceCents:         req.UnitPriceCents,
		Quantity:               req.Quantity,
		AssignedParticipantIDs: []uuid.UUID{},
		CreatedAt:              time.Now().UTC(),
	}
	f.items[billID] = append(f.items[billID], i)
	return i, nil
}

func (f *fakeStore) GetItemByID(_ context.Context, billID, itemID uuid.UUID) (*Item, error) {
	for _, i := range f.items[billID] {
		if i.ID == itemID {
			return i, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateItem(_ context.Context, billID, itemID uuid.UUID, req *UpdateItemRequest) (*Item, error) {
	for _, i := range f.items[billID] {
		if i.ID == itemID {
			if req.Name != nil {
				i.Name = *req.Name
			}
			if req.UnitPriceCents != nil {
				i.UnitPriceCents = *req.UnitPriceCents
			}
			if req.Quantity != nil {
				i.Quantity = *req.Quantity
			}
			return i, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeleteItem(_ context.Context, billID, itemID uuid.UUID) error {
	list := f.items[billID]
	for i, it := range list {
		if it.ID == itemID {
			f.items[billID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (f *fakeStore) ListItems(_ context.Context, billID uuid.UUID) ([]*Item, error) {
	return f.items[billID], nil
}

func (f *fakeStore) SetAssignments(_ context.Context, itemID uuid.UUID, participantIDs []uuid.UUID) error {
	for _, items := range f.items {
		for _, i := range items {
			if i.ID == itemID {
				i.AssignedParticipantIDs = append([]uuid.UUID{}, participantIDs...)
				return nil
			}
		}
	}
	return ErrItemNotFound
}

// recordingNotifier records ParticipantAdded calls
type recordingNotifier struct {
	userIDs []string
}

func (n *recordingNotifier) ParticipantAdded(_ context.Context, _ uuid.UUID, _ string, linkedUserID string) {
	n.userIDs = append(n.userIDs, linkedUserID)
}

func setupService(t *testing.T) (*Service, *fakeStore, *recordingNotifier) {
	t.Helper()
	store := newFakeStore()
	notifier := &recordingNotifier{}
	return NewService(store, notifier), store, notifier
}

func TestComputeSplit_EndToEnd(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, "owner-1", &CreateBillRequest{Title: "Dinner", TaxCents: 400, TipCents: 800})
	require.NoError(t, err)

	p1, err := svc.AddParticipant(ctx, b.ID, "owner-1", &AddParticipantRequest{DisplayName: "Alice"})
	require.NoError(t, err)
	p2, err := svc.AddParticipant(ctx, b.ID, "owner-1", &AddParticipantRequest{DisplayName: "Bob"})
	require.NoError(t, err)

	cheap, err := svc.AddItem(ctx, b.ID, "owner-1", &AddItemRequest{Name: "Salad", UnitPriceCents: 1000, Quantity: 1})
	require.NoError(t, err)
	pricey, err := svc.AddItem(ctx, b.ID, "owner-1", &AddItemRequest{Name: "Steak", UnitPriceCents: 3000, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.SetAssignments(ctx, b.ID, cheap.ID, "owner-1", []uuid.UUID{p1.ID}))
	require.NoError(t, svc.SetAssignments(ctx, b.ID, pricey.ID, "owner-1", []uuid.UUID{p2.ID}))

	result, participants, err := svc.ComputeSplit(ctx, b.ID, "owner-1")
	require.NoError(t, err)
	require.Len(t, participants, 2)

	require.Len(t, result.ParticipantShares, 2)
	assert.Equal(t, int64(4000), result.TotalSubtotalCents)
	assert.Equal(t, int64(5200), result.GrandTotalCents)

	for _, s := range result.ParticipantShares {
		switch s.ParticipantID {
		case p1.ID:
			assert.Equal(t, int64(1000), s.SubtotalCents)
			assert.Equal(t, int64(100), s.TaxShareCents)
			assert.Equal(t, int64(200), s.TipShareCents)
		case p2.ID:
			assert.Equal(t, int64(3000), s.SubtotalCents)
			assert.Equal(t, int64(300), s.TaxShareCents)
			assert.Equal(t, int64(600), s.TipShareCents)
		default:
			t.Fatalf("unexpected participant %s", s.ParticipantID)
		}
	}
}

func TestOwnership_Enforced(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, "owner-1", &CreateBillRequest{Title: "Lunch"})
	require.NoError(t, err)

	_, err = svc.GetBill(ctx, b.ID, "intruder")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.AddParticipant(ctx, b.ID, "intruder", &AddParticipantRequest{DisplayName: "Eve"})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.DeleteBill(ctx, b.ID, "intruder")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, _, err = svc.ComputeSplit(ctx, b.ID, "intruder")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestGetBill_NotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.GetBill(context.Background(), uuid.New(), "owner-1")
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestSetAssignments_RejectsUnknownParticipant(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, "owner-1", &CreateBillRequest{Title: "Drinks"})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, b.ID, "owner-1", &AddItemRequest{Name: "Beer", UnitPriceCents: 500, Quantity: 2})
	require.NoError(t, err)

	err = svc.SetAssignments(ctx, b.ID, item.ID, "owner-1", []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownAssignee)
}

func TestAddParticipant_NotifiesLinkedUser(t *testing.T) {
	svc, _, notifier := setupService(t)
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, "owner-1", &CreateBillRequest{Title: "Brunch"})
	require.NoError(t, err)

	// Unlinked participant: no notification.
	_, err = svc.AddParticipant(ctx, b.ID, "owner-1", &AddParticipantRequest{DisplayName: "Guest"})
	require.NoError(t, err)
	assert.Empty(t, notifier.userIDs)

	linked := "user-42"
	_, err = svc.AddParticipant(ctx, b.ID, "owner-1", &AddParticipantRequest{DisplayName: "Friend", LinkedUserID: &linked})
	require.NoError(t, err)
	assert.Equal(t, []string{"user-42"}, notifier.userIDs)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, "owner-1", &CreateBillRequest{Title: "Snacks"})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, b.ID, "owner-1", &AddItemRequest{Name: "Chips", UnitPriceCents: 300})
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Quantity)
}
