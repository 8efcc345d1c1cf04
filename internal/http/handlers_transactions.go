package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type transactionRequest struct {
	Amount      decimal.Decimal      `json:"amount"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Type        core.TransactionType `json:"type"`
	Date        core.Date            `json:"date"`
	TimeOfDay   string               `json:"timeOfDay"`
	GoalID      *uuid.UUID           `json:"goalId"`
	LoanID      *uuid.UUID           `json:"loanId"`
}

type transactionPatchRequest struct {
	Amount      *decimal.Decimal      `json:"amount"`
	Description *string               `json:"description"`
	Category    *string               `json:"category"`
	Type        *core.TransactionType `json:"type"`
	Date        *core.Date            `json:"date"`
	TimeOfDay   *string               `json:"timeOfDay"`
	GoalID      *uuid.UUID            `json:"goalId"`
	LoanID      *uuid.UUID            `json:"loanId"`
}

type transactionResponse struct {
	ID          uuid.UUID            `json:"id"`
	Amount      decimal.Decimal      `json:"amount"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Type        core.TransactionType `json:"type"`
	Date        core.Date            `json:"date"`
	TimeOfDay   string               `json:"timeOfDay,omitempty"`
	GoalID      *uuid.UUID           `json:"goalId,omitempty"`
	LoanID      *uuid.UUID           `json:"loanId,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Type:        t.Type,
		Date:        t.Date,
		TimeOfDay:   t.TimeOfDay,
		GoalID:      t.GoalID,
		LoanID:      t.LoanID,
		CreatedAt:   t.CreatedAt,
	}
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateTransaction(r.Context(), core.Transaction{
		UserID:      uid,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Date:        req.Date,
		TimeOfDay:   req.TimeOfDay,
		GoalID:      req.GoalID,
		LoanID:      req.LoanID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
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

	t, err := h.svc.GetTransaction(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
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

	var req transactionPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateTransaction(r.Context(), uid, id, ledger.TransactionPatch{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Date:        req.Date,
		TimeOfDay:   req.TimeOfDay,
		GoalID:      req.GoalID,
		LoanID:      req.LoanID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.DeleteTransaction(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := ledger.TransactionFilter{
		Category: r.URL.Query().Get("category"),
		Type:     core.TransactionType(r.URL.Query().Get("type")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		writeError(w, r, core.Invalid("type", "unknown transaction type"))
		return
	}

	txs, err := h.svc.ListTransactions(r.Context(), uid, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = toTransactionResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}
