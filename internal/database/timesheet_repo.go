package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/domain"
)

type TimesheetRepo struct {
	db *sqlx.DB
}

func NewTimesheetRepo(db *sqlx.DB) *TimesheetRepo { return &TimesheetRepo{db: db} }

type timesheetRow struct {
	ID              string          `db:"id"`
	RentalID        string          `db:"rental_id"`
	WorkDate        time.Time       `db:"work_date"`
	OperatingHours  decimal.Decimal `db:"operating_hours"`
	StandbyHours    decimal.Decimal `db:"standby_hours"`
	OvertimeHours   decimal.Decimal `db:"overtime_hours"`
	BreakdownHours  decimal.Decimal `db:"breakdown_hours"`
	HMKMStart       sql.NullString  `db:"hmkm_start"`
	HMKMEnd         sql.NullString  `db:"hmkm_end"`
	HMKMUsage       sql.NullString  `db:"hmkm_usage"`
	OperationStatus string          `db:"operation_status"`
	Status          string          `db:"status"`
	CheckerID       string          `db:"checker_id"`
	VerifierID      sql.NullString  `db:"verifier_id"`
	ClientPICID     sql.NullString  `db:"client_pic_id"`
	Notes           string          `db:"notes"`
	Photos          pq.StringArray  `db:"photos"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r timesheetRow) toDomain() (*domain.RentalTimesheet, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	rentalID, err := domain.ParseID(r.RentalID)
	if err != nil {
		return nil, err
	}
	checkerID, err := domain.ParseID(r.CheckerID)
	if err != nil {
		return nil, err
	}
	ts := &domain.RentalTimesheet{
		ID:              id,
		RentalID:        rentalID,
		WorkDate:        r.WorkDate,
		OperatingHours:  r.OperatingHours,
		StandbyHours:    r.StandbyHours,
		OvertimeHours:   r.OvertimeHours,
		BreakdownHours:  r.BreakdownHours,
		OperationStatus: r.OperationStatus,
		Status:          domain.TimesheetStatus(r.Status),
		CheckerID:       checkerID,
		Notes:           r.Notes,
		Photos:          []string(r.Photos),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if ts.HMKMStart, err = parseNullDecimal(r.HMKMStart); err != nil {
		return nil, err
	}
	if ts.HMKMEnd, err = parseNullDecimal(r.HMKMEnd); err != nil {
		return nil, err
	}
	if ts.HMKMUsage, err = parseNullDecimal(r.HMKMUsage); err != nil {
		return nil, err
	}
	if r.VerifierID.Valid {
		vid, err := domain.ParseID(r.VerifierID.String)
		if err != nil {
			return nil, err
		}
		ts.VerifierID = &vid
	}
	if r.ClientPICID.Valid {
		pid, err := domain.ParseID(r.ClientPICID.String)
		if err != nil {
			return nil, err
		}
		ts.ClientPICID = &pid
	}
	return ts, nil
}

func (r *TimesheetRepo) GetTimesheet(ctx context.Context, id domain.ID) (*domain.RentalTimesheet, error) {
	var row timesheetRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM rental_timesheets WHERE id = $1`, id); err != nil {
		return nil, translate("get_timesheet", "rental_timesheet", err)
	}
	return row.toDomain()
}

// UpdateTimesheet upserts, matching TimesheetService.Create's use of
// UpdateTimesheet to persist a brand new Draft row.
func (r *TimesheetRepo) UpdateTimesheet(ctx context.Context, ts *domain.RentalTimesheet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rental_timesheets (id, rental_id, work_date, operating_hours, standby_hours, overtime_hours,
			breakdown_hours, hmkm_start, hmkm_end, hmkm_usage, operation_status, status, checker_id, verifier_id,
			client_pic_id, notes, photos, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			operating_hours = EXCLUDED.operating_hours, standby_hours = EXCLUDED.standby_hours,
			overtime_hours = EXCLUDED.overtime_hours, breakdown_hours = EXCLUDED.breakdown_hours,
			hmkm_start = EXCLUDED.hmkm_start, hmkm_end = EXCLUDED.hmkm_end, hmkm_usage = EXCLUDED.hmkm_usage,
			operation_status = EXCLUDED.operation_status, status = EXCLUDED.status,
			verifier_id = EXCLUDED.verifier_id, client_pic_id = EXCLUDED.client_pic_id, notes = EXCLUDED.notes,
			photos = EXCLUDED.photos, updated_at = EXCLUDED.updated_at
	`, ts.ID, ts.RentalID, ts.WorkDate, ts.OperatingHours, ts.StandbyHours, ts.OvertimeHours, ts.BreakdownHours,
		nullDecimal(ts.HMKMStart), nullDecimal(ts.HMKMEnd), nullDecimal(ts.HMKMUsage), ts.OperationStatus,
		ts.Status, ts.CheckerID, ts.VerifierID, ts.ClientPICID, ts.Notes, pqStringArray(ts.Photos),
		ts.CreatedAt, ts.UpdatedAt)
	if err != nil {
		return translate("update_timesheet", "rental_timesheet", err)
	}
	return nil
}

// CanApproveTimesheet implements billing.UserLevelLookup.
func (r *TimesheetRepo) CanApproveTimesheet(ctx context.Context, userID domain.ID) (bool, error) {
	var can bool
	err := r.db.GetContext(ctx, &can, `SELECT can_approve_timesheet FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, translate("lookup_can_approve_timesheet", "user", err)
	}
	return can, nil
}
