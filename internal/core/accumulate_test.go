package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestAffectsBudget(t *testing.T) {
	tests := []struct {
		txType TransactionType
		want   bool
	}{
		{Expense, true},
		{LoanPayment, true},
		{Income, false},
		{SavingsDeposit, false},
		{SavingsWithdrawal, false},
		{LoanReceived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			if got := AffectsBudget(tt.txType); got != tt.want {
				t.Errorf("AffectsBudget(%s) = %v, want %v", tt.txType, got, tt.want)
			}
		})
	}
}

func TestMatchesBudget(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	budget := Budget{
		UserID:    owner,
		Category:  "groceries",
		Amount:    d("500"),
		Period:    Monthly,
		StartDate: NewDate(2025, 3, 1),
		EndDate:   NewDate(2025, 3, 31),
	}

	base := Transaction{
		UserID:   owner,
		Amount:   d("40"),
		Category: "groceries",
		Type:     Expense,
		Date:     NewDate(2025, 3, 15),
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   bool
	}{
		{"matching expense", func(*Transaction) {}, true},
		{"loan payment counts", func(tx *Transaction) { tx.Type = LoanPayment }, true},
		{"first day of window", func(tx *Transaction) { tx.Date = NewDate(2025, 3, 1) }, true},
		{"last day of window", func(tx *Transaction) { tx.Date = NewDate(2025, 3, 31) }, true},
		{"day before window", func(tx *Transaction) { tx.Date = NewDate(2025, 2, 28) }, false},
		{"day after window", func(tx *Transaction) { tx.Date = NewDate(2025, 4, 1) }, false},
		{"different category", func(tx *Transaction) { tx.Category = "transport" }, false},
		{"different owner", func(tx *Transaction) { tx.UserID = stranger }, false},
		{"income never matches", func(tx *Transaction) { tx.Type = Income }, false},
		{"savings deposit never matches", func(tx *Transaction) { tx.Type = SavingsDeposit }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base
			tt.mutate(&tx)
			if got := MatchesBudget(tx, budget); got != tt.want {
				t.Errorf("MatchesBudget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplySpent(t *testing.T) {
	tests := []struct {
		name  string
		spent string
		delta string
		want  string
	}{
		{"add contribution", "100", "50", "150"},
		{"reverse contribution", "150", "-50", "100"},
		{"reverse to exactly zero", "50", "-50", "0"},
		{"reversal clamps at zero", "30", "-80", "0"},
		{"fractional cents preserved", "10.25", "0.75", "11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySpent(d(tt.spent), d(tt.delta))
			if !got.Equal(d(tt.want)) {
				t.Errorf("ApplySpent(%s, %s) = %s, want %s", tt.spent, tt.delta, got, tt.want)
			}
		})
	}
}
