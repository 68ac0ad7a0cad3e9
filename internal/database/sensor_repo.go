package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assetledger/backend/internal/domain"
)

type SensorRepo struct {
	db *sqlx.DB
}

func NewSensorRepo(db *sqlx.DB) *SensorRepo { return &SensorRepo{db: db} }

func (r *SensorRepo) InsertReading(ctx context.Context, reading domain.SensorReading) error {
	custom, err := json.Marshal(reading.Custom)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sensor_readings (time, asset_id, sensor_id, temperature, humidity, vibration_x, vibration_y,
			vibration_z, pressure, power, custom, unit, quality)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, reading.Time, reading.AssetID, reading.SensorID, reading.Temperature, reading.Humidity, reading.VibrationX,
		reading.VibrationY, reading.VibrationZ, reading.Pressure, reading.Power, custom, reading.Unit, reading.Quality)
	if err != nil {
		return translate("insert_sensor_reading", "sensor_reading", err)
	}
	return nil
}

type thresholdRow struct {
	ID             string          `db:"id"`
	AssetID        string          `db:"asset_id"`
	SensorType     string          `db:"sensor_type"`
	Min            sql.NullFloat64 `db:"min_value"`
	Max            sql.NullFloat64 `db:"max_value"`
	WarnMin        sql.NullFloat64 `db:"warn_min"`
	WarnMax        sql.NullFloat64 `db:"warn_max"`
	AlertEnabled   bool            `db:"alert_enabled"`
	AlertDelaySecs int             `db:"alert_delay_secs"`
}

func (r thresholdRow) toDomain() (domain.SensorThreshold, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return domain.SensorThreshold{}, err
	}
	assetID, err := domain.ParseID(r.AssetID)
	if err != nil {
		return domain.SensorThreshold{}, err
	}
	t := domain.SensorThreshold{
		ID:             id,
		AssetID:        assetID,
		SensorType:     r.SensorType,
		AlertEnabled:   r.AlertEnabled,
		AlertDelaySecs: r.AlertDelaySecs,
	}
	if r.Min.Valid {
		v := r.Min.Float64
		t.Min = &v
	}
	if r.Max.Valid {
		v := r.Max.Float64
		t.Max = &v
	}
	if r.WarnMin.Valid {
		v := r.WarnMin.Float64
		t.WarnMin = &v
	}
	if r.WarnMax.Valid {
		v := r.WarnMax.Float64
		t.WarnMax = &v
	}
	return t, nil
}

func (r *SensorRepo) ThresholdsForAsset(ctx context.Context, assetID domain.ID) ([]domain.SensorThreshold, error) {
	var rows []thresholdRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM sensor_thresholds WHERE asset_id = $1`, assetID)
	if err != nil {
		return nil, translate("list_sensor_thresholds", "sensor_threshold", err)
	}
	out := make([]domain.SensorThreshold, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SensorRepo) RecentAlert(ctx context.Context, assetID domain.ID, sensorID string, thresholdID domain.ID, severity domain.AlertSeverity, since time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM sensor_alerts
			WHERE asset_id = $1 AND sensor_id = $2 AND threshold_id = $3 AND severity = $4 AND created_at >= $5
		)
	`, assetID, sensorID, thresholdID, severity, since)
	if err != nil {
		return false, translate("recent_sensor_alert", "sensor_alert", err)
	}
	return exists, nil
}

func (r *SensorRepo) InsertAlert(ctx context.Context, alert *domain.SensorAlert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sensor_alerts (id, asset_id, sensor_id, threshold_id, severity, sensor_value, status,
			ack_by_id, ack_at, resolved_by_id, resolved_at, resolution_notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, alert.ID, alert.AssetID, alert.SensorID, alert.ThresholdID, alert.Severity, alert.SensorValue, alert.Status,
		alert.AckByID, alert.AckAt, alert.ResolvedByID, alert.ResolvedAt, alert.ResolutionNotes, alert.CreatedAt)
	if err != nil {
		return translate("insert_sensor_alert", "sensor_alert", err)
	}
	return nil
}

type alertRow struct {
	ID              string         `db:"id"`
	AssetID         string         `db:"asset_id"`
	SensorID        string         `db:"sensor_id"`
	ThresholdID     string         `db:"threshold_id"`
	Severity        string         `db:"severity"`
	SensorValue     float64        `db:"sensor_value"`
	Status          string         `db:"status"`
	AckByID         sql.NullString `db:"ack_by_id"`
	AckAt           sql.NullTime   `db:"ack_at"`
	ResolvedByID    sql.NullString `db:"resolved_by_id"`
	ResolvedAt      sql.NullTime   `db:"resolved_at"`
	ResolutionNotes string         `db:"resolution_notes"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (r alertRow) toDomain() (*domain.SensorAlert, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	assetID, err := domain.ParseID(r.AssetID)
	if err != nil {
		return nil, err
	}
	thresholdID, err := domain.ParseID(r.ThresholdID)
	if err != nil {
		return nil, err
	}
	a := &domain.SensorAlert{
		ID:              id,
		AssetID:         assetID,
		SensorID:        r.SensorID,
		ThresholdID:     thresholdID,
		Severity:        domain.AlertSeverity(r.Severity),
		SensorValue:     r.SensorValue,
		Status:          domain.AlertStatus(r.Status),
		ResolutionNotes: r.ResolutionNotes,
		CreatedAt:       r.CreatedAt,
	}
	if r.AckByID.Valid {
		id, err := domain.ParseID(r.AckByID.String)
		if err != nil {
			return nil, err
		}
		a.AckByID = &id
	}
	if r.AckAt.Valid {
		t := r.AckAt.Time
		a.AckAt = &t
	}
	if r.ResolvedByID.Valid {
		id, err := domain.ParseID(r.ResolvedByID.String)
		if err != nil {
			return nil, err
		}
		a.ResolvedByID = &id
	}
	if r.ResolvedAt.Valid {
		t := r.ResolvedAt.Time
		a.ResolvedAt = &t
	}
	return a, nil
}

func (r *SensorRepo) GetAlert(ctx context.Context, id domain.ID) (*domain.SensorAlert, error) {
	var row alertRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM sensor_alerts WHERE id = $1`, id); err != nil {
		return nil, translate("get_sensor_alert", "sensor_alert", err)
	}
	return row.toDomain()
}

func (r *SensorRepo) UpdateAlert(ctx context.Context, alert *domain.SensorAlert) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sensor_alerts SET status = $2, ack_by_id = $3, ack_at = $4, resolved_by_id = $5, resolved_at = $6,
			resolution_notes = $7
		WHERE id = $1
	`, alert.ID, alert.Status, alert.AckByID, alert.AckAt, alert.ResolvedByID, alert.ResolvedAt, alert.ResolutionNotes)
	if err != nil {
		return translate("update_sensor_alert", "sensor_alert", err)
	}
	return nil
}
