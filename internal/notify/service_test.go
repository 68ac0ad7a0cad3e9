package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/domain"
)

type fakeNotifyRepo struct {
	byID map[domain.ID]*domain.Notification
}

func newFakeNotifyRepo() *fakeNotifyRepo {
	return &fakeNotifyRepo{byID: map[domain.ID]*domain.Notification{}}
}

func (f *fakeNotifyRepo) CreateNotification(ctx context.Context, n *domain.Notification) error {
	f.byID[n.ID] = n
	return nil
}

func (f *fakeNotifyRepo) ListNotifications(ctx context.Context, userID domain.ID, limit, offset int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range f.byID {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifyRepo) ListUnread(ctx context.Context, userID domain.ID) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range f.byID {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifyRepo) CountUnread(ctx context.Context, userID domain.ID) (int, error) {
	unread, _ := f.ListUnread(ctx, userID)
	return len(unread), nil
}

func (f *fakeNotifyRepo) MarkRead(ctx context.Context, id domain.ID) error {
	if n, ok := f.byID[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (f *fakeNotifyRepo) MarkAllRead(ctx context.Context, userID domain.ID) error {
	for _, n := range f.byID {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifyRepo) DeleteNotification(ctx context.Context, id domain.ID) error {
	delete(f.byID, id)
	return nil
}

func TestService_NotifyPersistsAndCountsUnread(t *testing.T) {
	repo := newFakeNotifyRepo()
	svc := NewService(repo, nil)
	user := domain.NewID()

	svc.Notify(context.Background(), user, "Loan approved", "go pick it up", "loan", domain.NewID())
	svc.Notify(context.Background(), user, "Loan overdue", "return it", "loan", domain.NewID())

	count, err := svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unread, err := svc.ListUnread(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	require.NoError(t, svc.MarkRead(context.Background(), unread[0].ID))
	count, err = svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.MarkAllRead(context.Background(), user))
	count, err = svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_Delete(t *testing.T) {
	repo := newFakeNotifyRepo()
	svc := NewService(repo, nil)
	user := domain.NewID()
	svc.Notify(context.Background(), user, "t", "m", "loan", domain.NewID())

	list, err := svc.List(context.Background(), user, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), list[0].ID))
	list, err = svc.List(context.Background(), user, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
