package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// budgetRequest deliberately has no spent field; consumption is derived from
// transactions and cannot be set by the client.
type budgetRequest struct {
	Category  string            `json:"category"`
	Amount    decimal.Decimal   `json:"amount"`
	Period    core.BudgetPeriod `json:"period"`
	StartDate core.Date         `json:"startDate"`
	EndDate   core.Date         `json:"endDate"`
	Icon      string            `json:"icon"`
}

type budgetPatchRequest struct {
	Category  *string            `json:"category"`
	Amount    *decimal.Decimal   `json:"amount"`
	Period    *core.BudgetPeriod `json:"period"`
	StartDate *core.Date         `json:"startDate"`
	EndDate   *core.Date         `json:"endDate"`
	Icon      *string            `json:"icon"`
}

type budgetResponse struct {
	ID        uuid.UUID         `json:"id"`
	Category  string            `json:"category"`
	Amount    decimal.Decimal   `json:"amount"`
	Spent     decimal.Decimal   `json:"spent"`
	Period    core.BudgetPeriod `json:"period"`
	StartDate core.Date         `json:"startDate"`
	EndDate   core.Date         `json:"endDate"`
	Icon      string            `json:"icon,omitempty"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:        b.ID,
		Category:  b.Category,
		Amount:    b.Amount,
		Spent:     b.Spent,
		Period:    b.Period,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Icon:      b.Icon,
	}
}

func (h *Handler) createBudget(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateBudget(r.Context(), core.Budget{
		UserID:    uid,
		Category:  req.Category,
		Amount:    req.Amount,
		Period:    req.Period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Icon:      req.Icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(created))
}

func (h *Handler) getBudget(w http.ResponseWriter, r *http.Request) {
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

	b, err := h.svc.GetBudget(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (h *Handler) updateBudget(w http.ResponseWriter, r *http.Request) {
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

	var req budgetPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateBudget(r.Context(), uid, id, ledger.BudgetPatch{
		Category:  req.Category,
		Amount:    req.Amount,
		Period:    req.Period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Icon:      req.Icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(updated))
}

func (h *Handler) deleteBudget(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.DeleteBudget(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listBudgets(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budgets, err := h.svc.ListBudgets(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}
