package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/domain"
)

type RentalRepo struct {
	db *sqlx.DB
}

func NewRentalRepo(db *sqlx.DB) *RentalRepo { return &RentalRepo{db: db} }

type rentalRow struct {
	ID           string          `db:"id"`
	RentalNumber string          `db:"rental_number"`
	AssetID      string          `db:"asset_id"`
	ClientID     string          `db:"client_id"`
	RateID       sql.NullString  `db:"rate_id"`
	Status       string          `db:"status"`
	RequestDate  time.Time       `db:"request_date"`
	StartDate    sql.NullTime    `db:"start_date"`
	ExpectedEnd  sql.NullTime    `db:"expected_end"`
	ActualEnd    sql.NullTime    `db:"actual_end"`
	DailyRate    decimal.Decimal `db:"daily_rate"`
	TotalDays    int             `db:"total_days"`
	Subtotal     decimal.Decimal `db:"subtotal"`
	Deposit      decimal.Decimal `db:"deposit"`
	Penalty      decimal.Decimal `db:"penalty"`
	Total        decimal.Decimal `db:"total"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r rentalRow) toDomain() (*domain.Rental, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	assetID, err := domain.ParseID(r.AssetID)
	if err != nil {
		return nil, err
	}
	clientID, err := domain.ParseID(r.ClientID)
	if err != nil {
		return nil, err
	}
	rental := &domain.Rental{
		ID:           id,
		RentalNumber: r.RentalNumber,
		AssetID:      assetID,
		ClientID:     clientID,
		Status:       domain.RentalStatus(r.Status),
		RequestDate:  r.RequestDate,
		DailyRate:    r.DailyRate,
		TotalDays:    r.TotalDays,
		Subtotal:     r.Subtotal,
		Deposit:      r.Deposit,
		Penalty:      r.Penalty,
		Total:        r.Total,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.RateID.Valid {
		rid, err := domain.ParseID(r.RateID.String)
		if err != nil {
			return nil, err
		}
		rental.RateID = &rid
	}
	if r.StartDate.Valid {
		t := r.StartDate.Time
		rental.StartDate = &t
	}
	if r.ExpectedEnd.Valid {
		t := r.ExpectedEnd.Time
		rental.ExpectedEnd = &t
	}
	if r.ActualEnd.Valid {
		t := r.ActualEnd.Time
		rental.ActualEnd = &t
	}
	return rental, nil
}

func (r *RentalRepo) GetRental(ctx context.Context, id domain.ID) (*domain.Rental, error) {
	var row rentalRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM rentals WHERE id = $1`, id); err != nil {
		return nil, translate("get_rental", "rental", err)
	}
	return row.toDomain()
}

func (r *RentalRepo) CreateRental(ctx context.Context, rental *domain.Rental) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rentals (id, rental_number, asset_id, client_id, rate_id, status, request_date, start_date,
			expected_end, actual_end, daily_rate, total_days, subtotal, deposit, penalty, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, rental.ID, rental.RentalNumber, rental.AssetID, rental.ClientID, rental.RateID, rental.Status,
		rental.RequestDate, rental.StartDate, rental.ExpectedEnd, rental.ActualEnd, rental.DailyRate,
		rental.TotalDays, rental.Subtotal, rental.Deposit, rental.Penalty, rental.Total, rental.CreatedAt, rental.UpdatedAt)
	if err != nil {
		return translate("create_rental", "rental", err)
	}
	return nil
}

func (r *RentalRepo) UpdateRental(ctx context.Context, rental *domain.Rental) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE rentals SET rate_id = $2, status = $3, start_date = $4, expected_end = $5, actual_end = $6,
			daily_rate = $7, total_days = $8, subtotal = $9, deposit = $10, penalty = $11, total = $12, updated_at = $13
		WHERE id = $1
	`, rental.ID, rental.RateID, rental.Status, rental.StartDate, rental.ExpectedEnd, rental.ActualEnd,
		rental.DailyRate, rental.TotalDays, rental.Subtotal, rental.Deposit, rental.Penalty, rental.Total, rental.UpdatedAt)
	if err != nil {
		return translate("update_rental", "rental", err)
	}
	return nil
}

func (r *RentalRepo) CreateHandover(ctx context.Context, handover *domain.RentalHandover) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rental_handovers (id, rental_id, kind, condition_rating, photos, has_damage, recorded_by_id,
			signature, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, handover.ID, handover.RentalID, handover.Kind, handover.ConditionRating,
		pqStringArray(handover.Photos), handover.HasDamage, handover.RecordedByID, handover.Signature, handover.CreatedAt)
	if err != nil {
		return translate("create_rental_handover", "rental_handover", err)
	}
	return nil
}

// ListOpenRentals implements scheduler.RentalLister.
func (r *RentalRepo) ListOpenRentals(ctx context.Context) ([]*domain.Rental, error) {
	var rows []rentalRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM rentals WHERE status = 'rented_out'`)
	if err != nil {
		return nil, translate("list_open_rentals", "rental", err)
	}
	out := make([]*domain.Rental, 0, len(rows))
	for _, row := range rows {
		rental, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rental)
	}
	return out, nil
}
