package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the aggregate financial picture for one user at a point in time.
type Summary struct {
	NetWorth        decimal.Decimal
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	TotalSavings    decimal.Decimal
	TotalDebt       decimal.Decimal
}

// Summarize computes the summary from current ledger contents. The caller
// supplies now so month scoping is reproducible in tests; nothing here reads
// the wall clock or mutates state. All arithmetic stays in decimal with no
// intermediate rounding.
func Summarize(txs []Transaction, goals []SavingsGoal, loans []Loan, now time.Time) Summary {
	s := Summary{
		MonthlyIncome:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		TotalSavings:    decimal.Zero,
		TotalDebt:       decimal.Zero,
	}

	for _, t := range txs {
		if !t.Date.SameMonth(now) {
			continue
		}
		switch t.Type {
		case Income, SavingsWithdrawal, LoanReceived:
			s.MonthlyIncome = s.MonthlyIncome.Add(t.Amount)
		case Expense, SavingsDeposit, LoanPayment:
			s.MonthlyExpenses = s.MonthlyExpenses.Add(t.Amount)
		}
	}

	for _, g := range goals {
		s.TotalSavings = s.TotalSavings.Add(g.Current)
	}
	for _, l := range loans {
		s.TotalDebt = s.TotalDebt.Add(l.Balance)
	}

	s.NetWorth = s.TotalSavings.Sub(s.TotalDebt)
	return s
}
