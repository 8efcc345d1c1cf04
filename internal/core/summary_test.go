package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSummarize(t *testing.T) {
	owner := uuid.New()
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

	tx := func(txType TransactionType, amount string, date Date) Transaction {
		return Transaction{
			ID:       uuid.New(),
			UserID:   owner,
			Amount:   d(amount),
			Category: "misc",
			Type:     txType,
			Date:     date,
		}
	}

	txs := []Transaction{
		tx(Income, "3000", NewDate(2025, 3, 1)),
		tx(Expense, "500", NewDate(2025, 3, 5)),
		tx(SavingsDeposit, "200", NewDate(2025, 3, 10)),
		tx(LoanPayment, "300", NewDate(2025, 3, 15)),
		tx(SavingsWithdrawal, "50", NewDate(2025, 3, 18)),
		tx(LoanReceived, "1000", NewDate(2025, 3, 2)),
		// Outside the month of now; must not count.
		tx(Expense, "999", NewDate(2025, 2, 28)),
		tx(Income, "888", NewDate(2025, 4, 1)),
		tx(Expense, "777", NewDate(2024, 3, 20)),
	}

	goals := []SavingsGoal{
		{ID: uuid.New(), UserID: owner, Name: "emergency", Target: d("5000"), Current: d("1500")},
		{ID: uuid.New(), UserID: owner, Name: "vacation", Target: d("2000"), Current: d("500")},
	}
	loans := []Loan{
		{ID: uuid.New(), UserID: owner, Name: "car", Principal: d("12000"), Balance: d("5000")},
	}

	s := Summarize(txs, goals, loans, now)

	if want := d("4050"); !s.MonthlyIncome.Equal(want) {
		t.Errorf("MonthlyIncome = %s, want %s", s.MonthlyIncome, want)
	}
	if want := d("1000"); !s.MonthlyExpenses.Equal(want) {
		t.Errorf("MonthlyExpenses = %s, want %s", s.MonthlyExpenses, want)
	}
	if want := d("2000"); !s.TotalSavings.Equal(want) {
		t.Errorf("TotalSavings = %s, want %s", s.TotalSavings, want)
	}
	if want := d("5000"); !s.TotalDebt.Equal(want) {
		t.Errorf("TotalDebt = %s, want %s", s.TotalDebt, want)
	}
	if want := d("-3000"); !s.NetWorth.Equal(want) {
		t.Errorf("NetWorth = %s, want %s", s.NetWorth, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, nil, time.Now())

	for name, v := range map[string]interface{ IsZero() bool }{
		"NetWorth":        s.NetWorth,
		"MonthlyIncome":   s.MonthlyIncome,
		"MonthlyExpenses": s.MonthlyExpenses,
		"TotalSavings":    s.TotalSavings,
		"TotalDebt":       s.TotalDebt,
	} {
		if !v.IsZero() {
			t.Errorf("%s not zero on empty ledger", name)
		}
	}
}
