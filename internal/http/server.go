// Package http exposes the ledger operations as a small JSON API. The user
// id is taken from the X-User-ID header, which the authenticating proxy in
// front of this service is expected to set; requests without it fall back to
// the implicit local user so the local-only backends work standalone.
package http

import (
	"net/http"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/service"
)

type Handler struct {
	svc    *service.Ledger
	logger *log.Logger
}

func NewServer(addr string, svc *service.Ledger, logger *log.Logger) *http.Server {
	h := &Handler{svc: svc, logger: logger.WithComponent("http")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)

	mux.HandleFunc("POST /api/transactions", h.createTransaction)
	mux.HandleFunc("GET /api/transactions", h.listTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", h.getTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", h.updateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.deleteTransaction)

	mux.HandleFunc("POST /api/budgets", h.createBudget)
	mux.HandleFunc("GET /api/budgets", h.listBudgets)
	mux.HandleFunc("GET /api/budgets/{id}", h.getBudget)
	mux.HandleFunc("PATCH /api/budgets/{id}", h.updateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", h.deleteBudget)

	mux.HandleFunc("POST /api/goals", h.createGoal)
	mux.HandleFunc("GET /api/goals", h.listGoals)
	mux.HandleFunc("GET /api/goals/{id}", h.getGoal)
	mux.HandleFunc("PATCH /api/goals/{id}", h.updateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", h.deleteGoal)

	mux.HandleFunc("POST /api/loans", h.createLoan)
	mux.HandleFunc("GET /api/loans", h.listLoans)
	mux.HandleFunc("GET /api/loans/{id}", h.getLoan)
	mux.HandleFunc("PATCH /api/loans/{id}", h.updateLoan)
	mux.HandleFunc("DELETE /api/loans/{id}", h.deleteLoan)
	mux.HandleFunc("GET /api/loans/{id}/payoff", h.projectLoanPayoff)

	mux.HandleFunc("GET /api/summary", h.summary)

	return &http.Server{Addr: addr, Handler: mux}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userID resolves the caller's user id. Authentication itself happens
// upstream; by the time a request reaches this service the header is
// trustworthy.
func userID(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get("X-User-ID")
	if header == "" {
		return core.LocalUserID, nil
	}
	id, err := uuid.Parse(header)
	if err != nil {
		return uuid.Nil, core.Invalid("userId", "malformed X-User-ID header")
	}
	return id, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, core.Invalid("id", "malformed id in path")
	}
	return id, nil
}
