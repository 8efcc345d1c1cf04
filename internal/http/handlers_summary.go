package http

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type summaryResponse struct {
	NetWorth        decimal.Decimal `json:"netWorth"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	TotalSavings    decimal.Decimal `json:"totalSavings"`
	TotalDebt       decimal.Decimal `json:"totalDebt"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	now, err := queryTime(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.svc.Summary(r.Context(), uid, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		NetWorth:        s.NetWorth,
		MonthlyIncome:   s.MonthlyIncome,
		MonthlyExpenses: s.MonthlyExpenses,
		TotalSavings:    s.TotalSavings,
		TotalDebt:       s.TotalDebt,
	})
}
