// Package sensors implements time-series ingest with synchronous
// threshold evaluation and the alert ack/resolve lifecycle (SPEC_FULL
// §4.5).
package sensors

import (
	"context"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

const defaultAlertDelaySeconds = 60

// Repository is the persistence seam for readings, thresholds, and
// alerts.
type Repository interface {
	InsertReading(ctx context.Context, reading domain.SensorReading) error
	ThresholdsForAsset(ctx context.Context, assetID domain.ID) ([]domain.SensorThreshold, error)
	RecentAlert(ctx context.Context, assetID domain.ID, sensorID string, thresholdID domain.ID, severity domain.AlertSeverity, since time.Time) (bool, error)
	InsertAlert(ctx context.Context, alert *domain.SensorAlert) error
}

// IngestService records readings and evaluates thresholds synchronously
// (§4.5): a reading never returns before its alert side effects, if any,
// have been decided.
type IngestService struct {
	repo Repository
	now  func() time.Time
}

func NewIngestService(repo Repository) *IngestService {
	return &IngestService{repo: repo, now: time.Now}
}

// RecordReading persists the reading and evaluates every populated field
// against its matching threshold, inserting an Alert when severity is not
// normal and the threshold has alerting enabled, subject to the
// alert_delay_seconds suppression window.
func (s *IngestService) RecordReading(ctx context.Context, reading domain.SensorReading) ([]*domain.SensorAlert, error) {
	if err := s.repo.InsertReading(ctx, reading); err != nil {
		return nil, apierrors.Database("insert_reading", err)
	}

	thresholds, err := s.repo.ThresholdsForAsset(ctx, reading.AssetID)
	if err != nil {
		return nil, apierrors.Database("load_thresholds", err)
	}

	var alerts []*domain.SensorAlert
	fields := reading.Fields()
	now := s.now().UTC()

	for _, threshold := range thresholds {
		value, ok := fields[threshold.SensorType]
		if !ok {
			continue
		}
		severity := threshold.Evaluate(value)
		if severity == domain.SeverityNormal || !threshold.AlertEnabled {
			continue
		}

		delay := threshold.AlertDelaySecs
		if delay <= 0 {
			delay = defaultAlertDelaySeconds
		}
		since := now.Add(-time.Duration(delay) * time.Second)

		suppressed, err := s.repo.RecentAlert(ctx, reading.AssetID, reading.SensorID, threshold.ID, severity, since)
		if err != nil {
			return alerts, apierrors.Database("check_recent_alert", err)
		}
		if suppressed {
			continue
		}

		alert := &domain.SensorAlert{
			ID:          domain.NewID(),
			AssetID:     reading.AssetID,
			SensorID:    reading.SensorID,
			ThresholdID: threshold.ID,
			Severity:    severity,
			SensorValue: value,
			Status:      domain.AlertActive,
			CreatedAt:   now,
		}
		if err := s.repo.InsertAlert(ctx, alert); err != nil {
			return alerts, apierrors.Database("insert_alert", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
