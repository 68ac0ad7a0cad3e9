package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the internal-loan workflow FSM's state (§4.2).
type LoanStatus string

const (
	LoanRequested  LoanStatus = "requested"
	LoanApproved   LoanStatus = "approved"
	LoanRejected   LoanStatus = "rejected"
	LoanCheckedOut LoanStatus = "checked_out"
	LoanInUse      LoanStatus = "in_use"
	LoanOverdue    LoanStatus = "overdue"
	LoanReturned   LoanStatus = "returned"
	LoanDamaged    LoanStatus = "damaged"
	LoanLost       LoanStatus = "lost"
)

// Loan is an internal asset loan to an employee.
type Loan struct {
	ID               ID
	LoanNumber       string
	AssetID          ID
	BorrowerID       ID
	ApproverID       *ID
	LoanDate         time.Time
	ExpectedReturn   time.Time
	ActualReturn     *time.Time
	Status           LoanStatus
	ConditionBefore  string
	ConditionAfter   string
	Damage           string
	TermsAccepted    bool
	Deposit          decimal.Decimal
	Penalty          decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsOverdue reports whether the loan should be swept into Overdue by the
// scheduler (§4.6): still out, and past its expected return date.
func (l Loan) IsOverdue(today time.Time) bool {
	if l.Status != LoanCheckedOut && l.Status != LoanInUse {
		return false
	}
	return today.After(truncateToDate(l.ExpectedReturn))
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
