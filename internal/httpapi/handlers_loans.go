package httpapi

import (
	"net/http"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type createLoanRequest struct {
	AssetID         string    `json:"asset_id" validate:"required,uuid4"`
	BorrowerID      string    `json:"borrower_id" validate:"required,uuid4"`
	ExpectedReturn  time.Time `json:"expected_return" validate:"required"`
	ConditionBefore string    `json:"condition_before"`
	TermsAccepted   bool      `json:"terms_accepted" validate:"required"`
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createLoanRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	assetID, err := domain.ParseID(req.AssetID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("asset_id", "must be a valid id"))
		return
	}
	borrowerID, err := domain.ParseID(req.BorrowerID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("borrower_id", "must be a valid id"))
		return
	}
	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:              domain.NewID(),
		AssetID:         assetID,
		BorrowerID:      borrowerID,
		LoanDate:        now,
		ExpectedReturn:  req.ExpectedReturn,
		ConditionBefore: req.ConditionBefore,
		TermsAccepted:   req.TermsAccepted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.loans.Create(r.Context(), loan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "loan.create", "loan", created.ID, nil, map[string]any{"asset_id": created.AssetID})
	writeSuccess(w, http.StatusCreated, "loan requested", created)
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "loanID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loanRepo.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", loan)
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.loanRepo.ListOpenLoans(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", loans)
}

func (s *Server) handleApproveLoan(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "loanID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.Approve(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "loan.approve", "loan", loan.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "loan approved", loan)
}

func (s *Server) handleRejectLoan(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "loanID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.Reject(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "loan.reject", "loan", loan.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "loan rejected", loan)
}

type checkoutLoanRequest struct {
	ConditionBefore string `json:"condition_before"`
}

func (s *Server) handleCheckoutLoan(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "loanID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req checkoutLoanRequest
	_ = decodeAndValidate(r, &req)
	loan, err := s.loans.Checkout(r.Context(), id, claims.Subject, req.ConditionBefore)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "loan.checkout", "loan", loan.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "loan checked out", loan)
}

type checkinLoanRequest struct {
	ConditionAfter string `json:"condition_after"`
}

func (s *Server) handleCheckinLoan(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "loanID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req checkinLoanRequest
	_ = decodeAndValidate(r, &req)
	loan, err := s.loans.Checkin(r.Context(), id, claims.Subject, req.ConditionAfter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "loan.checkin", "loan", loan.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "loan checked in", loan)
}
