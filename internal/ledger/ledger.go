package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Store is the contract every ledger backend satisfies. All reads and writes
// are scoped to the user id passed by the caller; touching a record owned by
// anyone else yields core.ErrNotFound. Transaction mutations carry out budget
// accumulation inside the same store transaction, so "transaction persisted"
// and "budget totals updated" are observed together or not at all.
type Store interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	ListTransactions(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]core.Transaction, error)

	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, userID, id uuid.UUID) (core.Budget, error)
	UpdateBudget(ctx context.Context, userID, id uuid.UUID, patch BudgetPatch) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, id uuid.UUID) error
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error)

	CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
	GetSavingsGoal(ctx context.Context, userID, id uuid.UUID) (core.SavingsGoal, error)
	UpdateSavingsGoal(ctx context.Context, userID, id uuid.UUID, patch SavingsGoalPatch) (core.SavingsGoal, error)
	DeleteSavingsGoal(ctx context.Context, userID, id uuid.UUID) error
	ListSavingsGoals(ctx context.Context, userID uuid.UUID) ([]core.SavingsGoal, error)

	CreateLoan(ctx context.Context, l core.Loan) (core.Loan, error)
	GetLoan(ctx context.Context, userID, id uuid.UUID) (core.Loan, error)
	UpdateLoan(ctx context.Context, userID, id uuid.UUID, patch LoanPatch) (core.Loan, error)
	DeleteLoan(ctx context.Context, userID, id uuid.UUID) error
	ListLoans(ctx context.Context, userID uuid.UUID) ([]core.Loan, error)

	Close() error
}

// TransactionFilter narrows ListTransactions; zero values match everything.
type TransactionFilter struct {
	Category string
	Type     core.TransactionType
}

// Match reports whether t passes the filter.
func (f TransactionFilter) Match(t core.Transaction) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// TransactionPatch is a partial transaction update. Nil fields are left
// untouched. There is deliberately no owner field. For the optional goal and
// loan references a pointer to uuid.Nil clears the reference.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Type        *core.TransactionType
	Date        *core.Date
	TimeOfDay   *string
	GoalID      *uuid.UUID
	LoanID      *uuid.UUID
}

// Apply merges the patch into t.
func (p TransactionPatch) Apply(t *core.Transaction) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.TimeOfDay != nil {
		t.TimeOfDay = *p.TimeOfDay
	}
	if p.GoalID != nil {
		if *p.GoalID == uuid.Nil {
			t.GoalID = nil
		} else {
			id := *p.GoalID
			t.GoalID = &id
		}
	}
	if p.LoanID != nil {
		if *p.LoanID == uuid.Nil {
			t.LoanID = nil
		} else {
			id := *p.LoanID
			t.LoanID = &id
		}
	}
}

// BudgetPatch is a partial budget update. Spent is absent on purpose: it is
// owned by the accumulation step and cannot be set through the update path.
type BudgetPatch struct {
	Category  *string
	Amount    *decimal.Decimal
	Period    *core.BudgetPeriod
	StartDate *core.Date
	EndDate   *core.Date
	Icon      *string
}

func (p BudgetPatch) Apply(b *core.Budget) {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if p.Icon != nil {
		b.Icon = *p.Icon
	}
}

// SavingsGoalPatch is a partial savings goal update. Current is settable
// here: the stored amount is the authoritative figure for the goal.
type SavingsGoalPatch struct {
	Name     *string
	Target   *decimal.Decimal
	Current  *decimal.Decimal
	Deadline *core.Date
	Icon     *string
	Color    *string
}

func (p SavingsGoalPatch) Apply(g *core.SavingsGoal) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Target != nil {
		g.Target = *p.Target
	}
	if p.Current != nil {
		g.Current = *p.Current
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			g.Deadline = nil
		} else {
			d := *p.Deadline
			g.Deadline = &d
		}
	}
	if p.Icon != nil {
		g.Icon = *p.Icon
	}
	if p.Color != nil {
		g.Color = *p.Color
	}
}

// LoanPatch is a partial loan update. MonthlyPayment is absent: stores
// recompute it via core.MonthlyPayment whenever principal, rate, or term
// changes.
type LoanPatch struct {
	Name            *string
	Principal       *decimal.Decimal
	InterestRate    *decimal.Decimal
	InterestType    *core.InterestType
	TermMonths      *int
	Balance         *decimal.Decimal
	NextPaymentDate *core.Date
	Icon            *string
	Color           *string
}

func (p LoanPatch) Apply(l *core.Loan) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Principal != nil {
		l.Principal = *p.Principal
	}
	if p.InterestRate != nil {
		l.InterestRate = *p.InterestRate
	}
	if p.InterestType != nil {
		l.InterestType = *p.InterestType
	}
	if p.TermMonths != nil {
		l.TermMonths = *p.TermMonths
	}
	if p.Balance != nil {
		l.Balance = *p.Balance
	}
	if p.NextPaymentDate != nil {
		l.NextPaymentDate = *p.NextPaymentDate
	}
	if p.Icon != nil {
		l.Icon = *p.Icon
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
}

// ChangesTerms reports whether the patch touches any amortization input.
func (p LoanPatch) ChangesTerms() bool {
	return p.Principal != nil || p.InterestRate != nil || p.TermMonths != nil
}
