// Package audit records the whole-system security trail (SPEC_FULL §4.15
// expansion), independent of the per-asset lifecycle_history kept by
// internal/lifecycle. Entries come from explicit Recorder.Record calls in
// the HTTP handlers for assets, loans, rentals, work orders, conversions,
// maintenance creation, approvals, and billing approve/invoice; the
// timesheet, sensor, notification, and billing-calculate handlers record
// nothing. It writes structured
// entries via zap for operational tailing and persists the same entry
// through Repository for query and retention.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/assetledger/backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

type Recorder struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewRecorder(repo Repository, log *zap.Logger) *Recorder {
	return &Recorder{repo: repo, log: log, now: time.Now}
}

// Record writes a structured zap entry immediately and persists the same
// fact through Repository; persistence failures are logged, not returned,
// so an audit-store outage never blocks the action being audited.
func (r *Recorder) Record(ctx context.Context, actorID *domain.ID, action, resourceType string, resourceID domain.ID, before, after map[string]any) {
	entry := &domain.AuditLog{
		ID:           domain.NewID(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Before:       before,
		After:        after,
		Timestamp:    r.now().UTC(),
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.String("resource_type", resourceType),
		zap.String("resource_id", resourceID.String()),
	}
	if actorID != nil {
		fields = append(fields, zap.String("actor_id", actorID.String()))
	}
	r.log.Info("audit", fields...)

	if err := r.repo.Create(ctx, entry); err != nil {
		r.log.Warn("audit persistence failed", zap.Error(err), zap.String("action", action))
	}
}
