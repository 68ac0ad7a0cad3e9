package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/assetledger/backend/internal/domain"
)

type MaintenanceRepo struct {
	db *sqlx.DB
}

func NewMaintenanceRepo(db *sqlx.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

type maintenanceRow struct {
	ID                 string    `db:"id"`
	AssetID            string    `db:"asset_id"`
	ScheduledDate      time.Time `db:"scheduled_date"`
	Type               string    `db:"type"`
	AssignedTechnician sql.NullString `db:"assigned_technician"`
	Status             string    `db:"status"`
	Notes              string    `db:"notes"`
}

func (r maintenanceRow) toDomain() (*domain.MaintenanceRecord, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	assetID, err := domain.ParseID(r.AssetID)
	if err != nil {
		return nil, err
	}
	m := &domain.MaintenanceRecord{
		ID:            id,
		AssetID:       assetID,
		ScheduledDate: r.ScheduledDate,
		Type:          r.Type,
		Status:        domain.MaintenanceRecordStatus(r.Status),
		Notes:         r.Notes,
	}
	if r.AssignedTechnician.Valid {
		tid, err := domain.ParseID(r.AssignedTechnician.String)
		if err != nil {
			return nil, err
		}
		m.AssignedTechnician = &tid
	}
	return m, nil
}

func (r *MaintenanceRepo) Create(ctx context.Context, m *domain.MaintenanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO maintenance_records (id, asset_id, scheduled_date, type, assigned_technician, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, m.ID, m.AssetID, m.ScheduledDate, m.Type, m.AssignedTechnician, m.Status, m.Notes)
	if err != nil {
		return translate("create_maintenance_record", "maintenance_record", err)
	}
	return nil
}

func (r *MaintenanceRepo) Get(ctx context.Context, id domain.ID) (*domain.MaintenanceRecord, error) {
	var row maintenanceRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM maintenance_records WHERE id = $1`, id); err != nil {
		return nil, translate("get_maintenance_record", "maintenance_record", err)
	}
	return row.toDomain()
}

func (r *MaintenanceRepo) Update(ctx context.Context, m *domain.MaintenanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE maintenance_records SET scheduled_date = $2, type = $3, assigned_technician = $4, status = $5,
			notes = $6
		WHERE id = $1
	`, m.ID, m.ScheduledDate, m.Type, m.AssignedTechnician, m.Status, m.Notes)
	if err != nil {
		return translate("update_maintenance_record", "maintenance_record", err)
	}
	return nil
}

// DueMaintenanceRecords implements scheduler.MaintenanceRepository: every
// scheduled record whose date falls on one of the requested horizon days
// from asOf.
func (r *MaintenanceRepo) DueMaintenanceRecords(ctx context.Context, asOf time.Time, horizonDays []int) ([]*domain.MaintenanceRecord, error) {
	day := asOf.Truncate(24 * time.Hour)
	var rows []maintenanceRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM maintenance_records
		WHERE status = 'scheduled'
			AND scheduled_date::date = ANY($1::date[])
	`, pqDateOffsets(day, horizonDays))
	if err != nil {
		return nil, translate("list_due_maintenance", "maintenance_record", err)
	}
	out := make([]*domain.MaintenanceRecord, 0, len(rows))
	for _, row := range rows {
		m, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MaintenanceRepo) WasNotified(ctx context.Context, recordID domain.ID, date time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM maintenance_notifications_sent WHERE record_id = $1 AND notify_date = $2)
	`, recordID, date)
	if err != nil {
		return false, translate("was_notified", "maintenance_notification", err)
	}
	return exists, nil
}

func (r *MaintenanceRepo) MarkNotified(ctx context.Context, recordID domain.ID, date time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO maintenance_notifications_sent (record_id, notify_date) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, recordID, date)
	if err != nil {
		return translate("mark_notified", "maintenance_notification", err)
	}
	return nil
}
