package sensors

import (
	"context"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// AlertRepository is the persistence seam for the alert ack/resolve
// lifecycle.
type AlertRepository interface {
	GetAlert(ctx context.Context, id domain.ID) (*domain.SensorAlert, error)
	UpdateAlert(ctx context.Context, alert *domain.SensorAlert) error
}

// AlertService implements active → acknowledged → resolved (§4.5).
// Acknowledged alerts remain listed as acknowledged until resolved.
type AlertService struct {
	repo AlertRepository
	now  func() time.Time
}

func NewAlertService(repo AlertRepository) *AlertService {
	return &AlertService{repo: repo, now: time.Now}
}

// Acknowledge moves active -> acknowledged.
func (s *AlertService) Acknowledge(ctx context.Context, id domain.ID, actorID domain.ID) (*domain.SensorAlert, error) {
	alert, err := s.repo.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Status != domain.AlertActive {
		return nil, apierrors.InvalidStateTransition(string(alert.Status), string(domain.AlertAcknowledged))
	}
	now := s.now().UTC()
	alert.Status = domain.AlertAcknowledged
	alert.AckByID = &actorID
	alert.AckAt = &now
	if err := s.repo.UpdateAlert(ctx, alert); err != nil {
		return nil, apierrors.Database("acknowledge_alert", err)
	}
	return alert, nil
}

// Resolve moves active|acknowledged -> resolved.
func (s *AlertService) Resolve(ctx context.Context, id domain.ID, actorID domain.ID, notes string) (*domain.SensorAlert, error) {
	alert, err := s.repo.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Status == domain.AlertResolved {
		return nil, apierrors.InvalidStateTransition(string(alert.Status), string(domain.AlertResolved))
	}
	now := s.now().UTC()
	alert.Status = domain.AlertResolved
	alert.ResolvedByID = &actorID
	alert.ResolvedAt = &now
	alert.ResolutionNotes = notes
	if err := s.repo.UpdateAlert(ctx, alert); err != nil {
		return nil, apierrors.Database("resolve_alert", err)
	}
	return alert, nil
}
