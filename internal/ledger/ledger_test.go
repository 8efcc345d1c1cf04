package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func ptr[T any](v T) *T { return &v }

func TestTransactionPatchReferences(t *testing.T) {
	goalID := uuid.New()
	tx := core.Transaction{GoalID: &goalID}

	// Untouched fields survive an empty patch.
	TransactionPatch{}.Apply(&tx)
	if tx.GoalID == nil || *tx.GoalID != goalID {
		t.Fatalf("GoalID = %v, want %s", tx.GoalID, goalID)
	}

	// A pointer to the nil uuid clears the reference.
	TransactionPatch{GoalID: ptr(uuid.Nil)}.Apply(&tx)
	if tx.GoalID != nil {
		t.Errorf("GoalID = %v, want cleared", tx.GoalID)
	}

	// And a real id sets it again, without aliasing the patch value.
	loanID := uuid.New()
	orig := loanID
	p := TransactionPatch{LoanID: &loanID}
	p.Apply(&tx)
	if tx.LoanID == nil || *tx.LoanID != orig {
		t.Fatalf("LoanID = %v, want %s", tx.LoanID, orig)
	}
	*p.LoanID = uuid.New()
	if *tx.LoanID != orig {
		t.Error("patched transaction aliases the patch's pointer")
	}
}

func TestSavingsGoalPatchDeadline(t *testing.T) {
	deadline := core.NewDate(2026, 1, 1)
	g := core.SavingsGoal{Deadline: &deadline}

	// A zero date clears; a real one replaces.
	SavingsGoalPatch{Deadline: &core.Date{}}.Apply(&g)
	if g.Deadline != nil {
		t.Errorf("Deadline = %v, want cleared", g.Deadline)
	}

	next := core.NewDate(2027, 6, 30)
	SavingsGoalPatch{Deadline: &next}.Apply(&g)
	if g.Deadline == nil || g.Deadline.String() != "2027-06-30" {
		t.Errorf("Deadline = %v, want 2027-06-30", g.Deadline)
	}
}

func TestLoanPatchChangesTerms(t *testing.T) {
	tests := []struct {
		name  string
		patch LoanPatch
		want  bool
	}{
		{"empty", LoanPatch{}, false},
		{"principal", LoanPatch{Principal: ptr(decimal.NewFromInt(1000))}, true},
		{"rate", LoanPatch{InterestRate: ptr(decimal.NewFromInt(5))}, true},
		{"term", LoanPatch{TermMonths: ptr(24)}, true},
		{"balance only", LoanPatch{Balance: ptr(decimal.NewFromInt(500))}, false},
		{"cosmetic", LoanPatch{Name: ptr("renamed"), Icon: ptr("bank")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.ChangesTerms(); got != tt.want {
				t.Errorf("ChangesTerms() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransactionFilterMatch(t *testing.T) {
	tx := core.Transaction{Category: "groceries", Type: core.Expense}

	tests := []struct {
		name   string
		filter TransactionFilter
		want   bool
	}{
		{"empty matches everything", TransactionFilter{}, true},
		{"category match", TransactionFilter{Category: "groceries"}, true},
		{"category mismatch", TransactionFilter{Category: "transport"}, false},
		{"type match", TransactionFilter{Type: core.Expense}, true},
		{"type mismatch", TransactionFilter{Type: core.Income}, false},
		{"both must match", TransactionFilter{Category: "groceries", Type: core.Income}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tx); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
