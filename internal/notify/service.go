package notify

import (
	"context"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// Repository is the persistence seam for plane 1 of §4.7.
type Repository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, userID domain.ID, limit, offset int) ([]*domain.Notification, error)
	ListUnread(ctx context.Context, userID domain.ID) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID domain.ID) (int, error)
	MarkRead(ctx context.Context, id domain.ID) error
	MarkAllRead(ctx context.Context, userID domain.ID) error
	DeleteNotification(ctx context.Context, id domain.ID) error
}

// Service implements the persisted notification plane and mirrors every
// create onto the realtime hub, satisfying workflow.Notifier and
// scheduler.MaintenanceNotifier.
type Service struct {
	repo Repository
	hub  *Hub
	now  func() time.Time
}

func NewService(repo Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub, now: time.Now}
}

// Notify persists a notification and pushes it to the user's live
// sessions, if any. It intentionally returns nothing: per §7, notification
// delivery is a best-effort side effect that must never fail the workflow
// command that triggered it.
func (s *Service) Notify(ctx context.Context, userID domain.ID, title, message, entityType string, entityID domain.ID) {
	n := &domain.Notification{
		ID:         domain.NewID(),
		UserID:     userID,
		Title:      title,
		Message:    message,
		EntityType: entityType,
		EntityID:   &entityID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return
	}
	if s.hub != nil {
		s.hub.SendToUser(userID.String(), "notification.created", n)
	}
}

func (s *Service) List(ctx context.Context, userID domain.ID, limit, offset int) ([]*domain.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) ListUnread(ctx context.Context, userID domain.ID) ([]*domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *Service) CountUnread(ctx context.Context, userID domain.ID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id domain.ID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return apierrors.Database("mark_notification_read", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID domain.ID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return apierrors.Database("mark_all_notifications_read", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id domain.ID) error {
	if err := s.repo.DeleteNotification(ctx, id); err != nil {
		return apierrors.Database("delete_notification", err)
	}
	return nil
}
