package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type loanRequest struct {
	Name            string          `json:"name"`
	Principal       decimal.Decimal `json:"principal"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	InterestType    string          `json:"interestType"`
	TermMonths      int             `json:"termMonths"`
	Balance         decimal.Decimal `json:"balance"`
	NextPaymentDate core.Date       `json:"nextPaymentDate"`
	Icon            string          `json:"icon"`
	Color           string          `json:"color"`
}

type loanPatchRequest struct {
	Name            *string          `json:"name"`
	Principal       *decimal.Decimal `json:"principal"`
	InterestRate    *decimal.Decimal `json:"interestRate"`
	InterestType    *string          `json:"interestType"`
	TermMonths      *int             `json:"termMonths"`
	Balance         *decimal.Decimal `json:"balance"`
	NextPaymentDate *core.Date       `json:"nextPaymentDate"`
	Icon            *string          `json:"icon"`
	Color           *string          `json:"color"`
}

type loanResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Principal       decimal.Decimal `json:"principal"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	InterestType    string          `json:"interestType"`
	TermMonths      int             `json:"termMonths"`
	MonthlyPayment  decimal.Decimal `json:"monthlyPayment"`
	Balance         decimal.Decimal `json:"balance"`
	NextPaymentDate core.Date       `json:"nextPaymentDate"`
	Icon            string          `json:"icon,omitempty"`
	Color           string          `json:"color,omitempty"`
}

type payoffResponse struct {
	MonthlyPayment   decimal.Decimal `json:"monthlyPayment"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	RemainingMonths  int             `json:"remainingMonths"`
	TotalInterest    decimal.Decimal `json:"totalInterest"`
	PayoffDate       core.Date       `json:"payoffDate"`
}

func toLoanResponse(l core.Loan) loanResponse {
	return loanResponse{
		ID:              l.ID,
		Name:            l.Name,
		Principal:       l.Principal,
		InterestRate:    l.InterestRate,
		InterestType:    string(l.InterestType),
		TermMonths:      l.TermMonths,
		MonthlyPayment:  l.MonthlyPayment,
		Balance:         l.Balance,
		NextPaymentDate: l.NextPaymentDate,
		Icon:            l.Icon,
		Color:           l.Color,
	}
}

func (h *Handler) createLoan(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req loanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateLoan(r.Context(), core.Loan{
		UserID:          uid,
		Name:            req.Name,
		Principal:       req.Principal,
		InterestRate:    req.InterestRate,
		InterestType:    core.InterestType(req.InterestType),
		TermMonths:      req.TermMonths,
		Balance:         req.Balance,
		NextPaymentDate: req.NextPaymentDate,
		Icon:            req.Icon,
		Color:           req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanResponse(created))
}

func (h *Handler) getLoan(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	l, err := h.svc.GetLoan(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(l))
}

func (h *Handler) updateLoan(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req loanPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := ledger.LoanPatch{
		Name:            req.Name,
		Principal:       req.Principal,
		InterestRate:    req.InterestRate,
		TermMonths:      req.TermMonths,
		Balance:         req.Balance,
		NextPaymentDate: req.NextPaymentDate,
		Icon:            req.Icon,
		Color:           req.Color,
	}
	if req.InterestType != nil {
		it := core.InterestType(*req.InterestType)
		patch.InterestType = &it
	}

	updated, err := h.svc.UpdateLoan(r.Context(), uid, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(updated))
}

func (h *Handler) deleteLoan(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.DeleteLoan(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	loans, err := h.svc.ListLoans(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]loanResponse, len(loans))
	for i, l := range loans {
		out[i] = toLoanResponse(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) projectLoanPayoff(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	now, err := queryTime(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.svc.ProjectLoanPayoff(r.Context(), uid, id, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payoffResponse{
		MonthlyPayment:   p.MonthlyPayment,
		RemainingBalance: p.RemainingBalance,
		RemainingMonths:  p.RemainingMonths,
		TotalInterest:    p.TotalInterest,
		PayoffDate:       p.PayoffDate,
	})
}
