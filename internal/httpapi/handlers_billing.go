package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

func (s *Server) handleGetBillingPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "periodID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := s.billingRepo.GetBillingPeriod(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", period)
}

type calculateBillingPeriodRequest struct {
	Mobilization   decimal.Decimal `json:"mobilization"`
	Demobilization decimal.Decimal `json:"demobilization"`
	Other          decimal.Decimal `json:"other"`
}

func (s *Server) handleCalculateBillingPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "periodID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req calculateBillingPeriodRequest
	_ = decodeAndValidate(r, &req)
	period, err := s.billing.Calculate(r.Context(), id, req.Mobilization, req.Demobilization, req.Other)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "billing period calculated", period)
}

func (s *Server) handleApproveBillingPeriod(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "periodID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := s.billing.Approve(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "billing_period.approve", "billing_period", period.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "billing period approved", period)
}

func (s *Server) handleInvoiceBillingPeriod(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "periodID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := s.billing.Invoice(r.Context(), id, time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auditor.Record(r.Context(), &claims.Subject, "billing_period.invoice", "billing_period", period.ID, nil, nil)
	writeSuccess(w, http.StatusOK, "billing period invoiced", period)
}
