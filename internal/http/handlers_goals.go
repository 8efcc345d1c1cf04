package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type goalRequest struct {
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Current  decimal.Decimal `json:"current"`
	Deadline *core.Date      `json:"deadline"`
	Icon     string          `json:"icon"`
	Color    string          `json:"color"`
}

type goalPatchRequest struct {
	Name     *string          `json:"name"`
	Target   *decimal.Decimal `json:"target"`
	Current  *decimal.Decimal `json:"current"`
	Deadline *core.Date       `json:"deadline"`
	Icon     *string          `json:"icon"`
	Color    *string          `json:"color"`
}

type goalResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Current  decimal.Decimal `json:"current"`
	Deadline *core.Date      `json:"deadline,omitempty"`
	Icon     string          `json:"icon,omitempty"`
	Color    string          `json:"color,omitempty"`
}

func toGoalResponse(g core.SavingsGoal) goalResponse {
	return goalResponse{
		ID:       g.ID,
		Name:     g.Name,
		Target:   g.Target,
		Current:  g.Current,
		Deadline: g.Deadline,
		Icon:     g.Icon,
		Color:    g.Color,
	}
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateSavingsGoal(r.Context(), core.SavingsGoal{
		UserID:   uid,
		Name:     req.Name,
		Target:   req.Target,
		Current:  req.Current,
		Deadline: req.Deadline,
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(created))
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request) {
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

	g, err := h.svc.GetSavingsGoal(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request) {
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

	var req goalPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateSavingsGoal(r.Context(), uid, id, ledger.SavingsGoalPatch{
		Name:     req.Name,
		Target:   req.Target,
		Current:  req.Current,
		Deadline: req.Deadline,
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.DeleteSavingsGoal(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goals, err := h.svc.ListSavingsGoals(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]goalResponse, len(goals))
	for i, g := range goals {
		out[i] = toGoalResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}
