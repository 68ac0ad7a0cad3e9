package sensors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type fakeSensorRepo struct {
	readings []domain.SensorReading
	alerts   []*domain.SensorAlert
	thresholds []domain.SensorThreshold
}

func (f *fakeSensorRepo) InsertReading(ctx context.Context, reading domain.SensorReading) error {
	f.readings = append(f.readings, reading)
	return nil
}

func (f *fakeSensorRepo) ThresholdsForAsset(ctx context.Context, assetID domain.ID) ([]domain.SensorThreshold, error) {
	return f.thresholds, nil
}

func (f *fakeSensorRepo) RecentAlert(ctx context.Context, assetID domain.ID, sensorID string, thresholdID domain.ID, severity domain.AlertSeverity, since time.Time) (bool, error) {
	for _, a := range f.alerts {
		if a.AssetID == assetID && a.SensorID == sensorID && a.ThresholdID == thresholdID && a.Severity == severity && a.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSensorRepo) InsertAlert(ctx context.Context, alert *domain.SensorAlert) error {
	f.alerts = append(f.alerts, alert)
	return nil
}

func ptr(v float64) *float64 { return &v }

func TestIngestService_CriticalAlert_WorkedExample(t *testing.T) {
	asset := domain.NewID()
	min, max, warnMin, warnMax := 10.0, 30.0, 15.0, 25.0
	threshold := domain.SensorThreshold{
		ID: domain.NewID(), AssetID: asset, SensorType: "temperature",
		Min: &min, Max: &max, WarnMin: &warnMin, WarnMax: &warnMax, AlertEnabled: true,
	}
	repo := &fakeSensorRepo{thresholds: []domain.SensorThreshold{threshold}}
	svc := NewIngestService(repo)

	alerts, err := svc.RecordReading(context.Background(), domain.SensorReading{
		AssetID: asset, SensorID: "s1", Temperature: ptr(35),
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)

	// Second reading within the suppression window produces no new alert.
	alerts, err = svc.RecordReading(context.Background(), domain.SensorReading{
		AssetID: asset, SensorID: "s1", Temperature: ptr(33),
	})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestIngestService_WarningBand(t *testing.T) {
	asset := domain.NewID()
	min, max, warnMin, warnMax := 10.0, 30.0, 15.0, 25.0
	threshold := domain.SensorThreshold{
		ID: domain.NewID(), AssetID: asset, SensorType: "temperature",
		Min: &min, Max: &max, WarnMin: &warnMin, WarnMax: &warnMax, AlertEnabled: true,
	}
	repo := &fakeSensorRepo{thresholds: []domain.SensorThreshold{threshold}}
	svc := NewIngestService(repo)

	alerts, err := svc.RecordReading(context.Background(), domain.SensorReading{
		AssetID: asset, SensorID: "s1", Temperature: ptr(27),
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityWarning, alerts[0].Severity)
}

func TestIngestService_NormalProducesNoAlert(t *testing.T) {
	asset := domain.NewID()
	min, max := 10.0, 30.0
	threshold := domain.SensorThreshold{ID: domain.NewID(), AssetID: asset, SensorType: "temperature", Min: &min, Max: &max, AlertEnabled: true}
	repo := &fakeSensorRepo{thresholds: []domain.SensorThreshold{threshold}}
	svc := NewIngestService(repo)

	alerts, err := svc.RecordReading(context.Background(), domain.SensorReading{AssetID: asset, SensorID: "s1", Temperature: ptr(20)})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertService_AcknowledgeThenResolve(t *testing.T) {
	repo := &fakeSensorRepo{}
	alertRepoFacade := &alertRepoAdapter{repo: repo}
	svc := NewAlertService(alertRepoFacade)

	alert := &domain.SensorAlert{ID: domain.NewID(), Status: domain.AlertActive}
	repo.alerts = append(repo.alerts, alert)

	acked, err := svc.Acknowledge(context.Background(), alert.ID, domain.NewID())
	require.NoError(t, err)
	assert.Equal(t, domain.AlertAcknowledged, acked.Status)

	resolved, err := svc.Resolve(context.Background(), alert.ID, domain.NewID(), "fixed")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResolved, resolved.Status)
}

// alertRepoAdapter adapts fakeSensorRepo's alert slice to AlertRepository
// for the ack/resolve test above, avoiding a second fake type.
type alertRepoAdapter struct {
	repo *fakeSensorRepo
}

func (a *alertRepoAdapter) GetAlert(ctx context.Context, id domain.ID) (*domain.SensorAlert, error) {
	for _, al := range a.repo.alerts {
		if al.ID == id {
			return al, nil
		}
	}
	return nil, apierrors.NotFound("sensor_alert", id.String())
}

func (a *alertRepoAdapter) UpdateAlert(ctx context.Context, alert *domain.SensorAlert) error {
	for i, al := range a.repo.alerts {
		if al.ID == alert.ID {
			a.repo.alerts[i] = alert
		}
	}
	return nil
}
