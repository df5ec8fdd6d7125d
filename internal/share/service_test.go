package share

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store implementation for service tests
type fakeStore struct {
	owners    map[uuid.UUID]string
	tokens    map[uuid.UUID]string
	snapshots map[string]*PublicSnapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		owners:    make(map[uuid.UUID]string),
		tokens:    make(map[uuid.UUID]string),
		snapshots: make(map[string]*PublicSnapshot),
	}
}

func (f *fakeStore) GetBillOwner(_ context.Context, billID uuid.UUID) (string, bool, error) {
	owner, ok := f.owners[billID]
	return owner, ok, nil
}

func (f *fakeStore) SetShareToken(_ context.Context, billID uuid.UUID, token string) error {
	if old, ok := f.tokens[billID]; ok {
		delete(f.snapshots, old)
	}
	f.tokens[billID] = token
	f.snapshots[token] = &PublicSnapshot{Title: "shared"}
	return nil
}

func (f *fakeStore) GetShareToken(_ context.Context, billID uuid.UUID) (*string, error) {
	token, ok := f.tokens[billID]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

func (f *fakeStore) ClearShareToken(_ context.Context, billID uuid.UUID) error {
	if token, ok := f.tokens[billID]; ok {
		delete(f.snapshots, token)
	}
	delete(f.tokens, billID)
	return nil
}

func (f *fakeStore) GetSnapshotByToken(_ context.Context, token string) (*PublicSnapshot, error) {
	return f.snapshots[token], nil
}

func setupService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewService(store, nil, NewCache(nil), "https://splitzy-app.web.app")
	return svc, store
}

func TestCreateLink_OwnerOnly(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	billID := uuid.New()
	store.owners[billID] = "owner-1"

	_, err := svc.CreateLink(ctx, billID, "intruder")
	assert.ErrorIs(t, err, ErrNotOwner)

	link, err := svc.CreateLink(ctx, billID, "owner-1")
	require.NoError(t, err)
	assert.Len(t, link.Token, 32) // 128-bit hex
	assert.Equal(t, "https://splitzy-app.web.app/b/"+link.Token, link.URL)
}

func TestCreateLink_UnknownBill(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CreateLink(context.Background(), uuid.New(), "owner-1")
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestCreateLink_ReissueInvalidatesOldToken(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	billID := uuid.New()
	svcStore := svc.store.(*fakeStore)
	svcStore.owners[billID] = "owner-1"

	first, err := svc.CreateLink(ctx, billID, "owner-1")
	require.NoError(t, err)
	second, err := svc.CreateLink(ctx, billID, "owner-1")
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = svc.PublicSnapshot(ctx, first.Token)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	snapshot, err := svc.PublicSnapshot(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "shared", snapshot.Title)
}

func TestRevokeLink_KillsSnapshot(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	billID := uuid.New()
	store.owners[billID] = "owner-1"

	link, err := svc.CreateLink(ctx, billID, "owner-1")
	require.NoError(t, err)

	err = svc.RevokeLink(ctx, billID, "intruder")
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.RevokeLink(ctx, billID, "owner-1"))

	_, err = svc.PublicSnapshot(ctx, link.Token)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestPublicSnapshot_UnknownToken(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.PublicSnapshot(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}
