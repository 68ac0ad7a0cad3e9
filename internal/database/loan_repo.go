package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/assetledger/backend/internal/domain"
)

type LoanRepo struct {
	db *sqlx.DB
}

func NewLoanRepo(db *sqlx.DB) *LoanRepo { return &LoanRepo{db: db} }

type loanRow struct {
	ID              string          `db:"id"`
	LoanNumber      string          `db:"loan_number"`
	AssetID         string          `db:"asset_id"`
	BorrowerID      string          `db:"borrower_id"`
	ApproverID      sql.NullString  `db:"approver_id"`
	LoanDate        time.Time       `db:"loan_date"`
	ExpectedReturn  time.Time       `db:"expected_return"`
	ActualReturn    sql.NullTime    `db:"actual_return"`
	Status          string          `db:"status"`
	ConditionBefore string          `db:"condition_before"`
	ConditionAfter  string          `db:"condition_after"`
	Damage          string          `db:"damage"`
	TermsAccepted   bool            `db:"terms_accepted"`
	Deposit         decimal.Decimal `db:"deposit"`
	Penalty         decimal.Decimal `db:"penalty"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r loanRow) toDomain() (*domain.Loan, error) {
	id, err := domain.ParseID(r.ID)
	if err != nil {
		return nil, err
	}
	assetID, err := domain.ParseID(r.AssetID)
	if err != nil {
		return nil, err
	}
	borrowerID, err := domain.ParseID(r.BorrowerID)
	if err != nil {
		return nil, err
	}
	loan := &domain.Loan{
		ID:              id,
		LoanNumber:      r.LoanNumber,
		AssetID:         assetID,
		BorrowerID:      borrowerID,
		LoanDate:        r.LoanDate,
		ExpectedReturn:  r.ExpectedReturn,
		Status:          domain.LoanStatus(r.Status),
		ConditionBefore: r.ConditionBefore,
		ConditionAfter:  r.ConditionAfter,
		Damage:          r.Damage,
		TermsAccepted:   r.TermsAccepted,
		Deposit:         r.Deposit,
		Penalty:         r.Penalty,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ApproverID.Valid {
		aid, err := domain.ParseID(r.ApproverID.String)
		if err != nil {
			return nil, err
		}
		loan.ApproverID = &aid
	}
	if r.ActualReturn.Valid {
		t := r.ActualReturn.Time
		loan.ActualReturn = &t
	}
	return loan, nil
}

func (r *LoanRepo) GetLoan(ctx context.Context, id domain.ID) (*domain.Loan, error) {
	var row loanRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM loans WHERE id = $1`, id); err != nil {
		return nil, translate("get_loan", "loan", err)
	}
	return row.toDomain()
}

func (r *LoanRepo) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loans (id, loan_number, asset_id, borrower_id, approver_id, loan_date, expected_return,
			actual_return, status, condition_before, condition_after, damage, terms_accepted, deposit, penalty,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, loan.ID, loan.LoanNumber, loan.AssetID, loan.BorrowerID, loan.ApproverID, loan.LoanDate, loan.ExpectedReturn,
		loan.ActualReturn, loan.Status, loan.ConditionBefore, loan.ConditionAfter, loan.Damage, loan.TermsAccepted,
		loan.Deposit, loan.Penalty, loan.CreatedAt, loan.UpdatedAt)
	if err != nil {
		return translate("create_loan", "loan", err)
	}
	return nil
}

func (r *LoanRepo) UpdateLoan(ctx context.Context, loan *domain.Loan) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE loans SET approver_id = $2, actual_return = $3, status = $4, condition_before = $5,
			condition_after = $6, damage = $7, terms_accepted = $8, deposit = $9, penalty = $10, updated_at = $11
		WHERE id = $1
	`, loan.ID, loan.ApproverID, loan.ActualReturn, loan.Status, loan.ConditionBefore, loan.ConditionAfter,
		loan.Damage, loan.TermsAccepted, loan.Deposit, loan.Penalty, loan.UpdatedAt)
	if err != nil {
		return translate("update_loan", "loan", err)
	}
	return nil
}

// ListOpenLoans implements scheduler.LoanLister: every loan still out,
// regardless of whether it has already crossed its expected_return, so the
// scheduler's own IsOverdue check decides what actually sweeps.
func (r *LoanRepo) ListOpenLoans(ctx context.Context) ([]*domain.Loan, error) {
	var rows []loanRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM loans WHERE status IN ('checked_out', 'in_use')
	`)
	if err != nil {
		return nil, translate("list_open_loans", "loan", err)
	}
	out := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loan, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, loan)
	}
	return out, nil
}
