package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func ptr[T any](v T) *T { return &v }

func newExpense(user uuid.UUID, amount, category string, date core.Date) core.Transaction {
	return core.Transaction{
		UserID:   user,
		Amount:   d(amount),
		Category: category,
		Type:     core.Expense,
		Date:     date,
	}
}

func mustBudget(t *testing.T, s *Store, user uuid.UUID, category string) core.Budget {
	t.Helper()
	b, err := s.CreateBudget(context.Background(), core.Budget{
		UserID:    user,
		Category:  category,
		Amount:    d("1000"),
		Period:    core.Monthly,
		StartDate: core.NewDate(2025, 3, 1),
		EndDate:   core.NewDate(2025, 3, 31),
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	return b
}

func spentOf(t *testing.T, s *Store, user, id uuid.UUID) decimal.Decimal {
	t.Helper()
	b, err := s.GetBudget(context.Background(), user, id)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	return b.Spent
}

func TestBudgetAccumulation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()
	budget := mustBudget(t, s, user, "groceries")

	// A matching expense lands on the budget.
	tx, err := s.CreateTransaction(ctx, newExpense(user, "50", "groceries", core.NewDate(2025, 3, 10)))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.Equal(d("50")) {
		t.Fatalf("spent after create = %s, want 50", got)
	}

	// Changing the amount reverses the old contribution first.
	if _, err := s.UpdateTransaction(ctx, user, tx.ID, ledger.TransactionPatch{Amount: ptr(d("80"))}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.Equal(d("80")) {
		t.Fatalf("spent after amount change = %s, want 80", got)
	}

	// A second matching expense stacks on top.
	tx2, err := s.CreateTransaction(ctx, newExpense(user, "30", "groceries", core.NewDate(2025, 3, 20)))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.Equal(d("110")) {
		t.Fatalf("spent after second expense = %s, want 110", got)
	}

	// Moving a transaction out of the window removes its contribution.
	if _, err := s.UpdateTransaction(ctx, user, tx2.ID, ledger.TransactionPatch{Date: ptr(core.NewDate(2025, 4, 2))}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.Equal(d("80")) {
		t.Fatalf("spent after moving out of window = %s, want 80", got)
	}

	// Recategorizing does the same.
	if _, err := s.UpdateTransaction(ctx, user, tx.ID, ledger.TransactionPatch{Category: ptr("transport")}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.IsZero() {
		t.Fatalf("spent after recategorizing = %s, want 0", got)
	}

	// And back in restores it.
	if _, err := s.UpdateTransaction(ctx, user, tx.ID, ledger.TransactionPatch{Category: ptr("groceries")}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.Equal(d("80")) {
		t.Fatalf("spent after restoring category = %s, want 80", got)
	}

	// Deleting reverses the contribution.
	if err := s.DeleteTransaction(ctx, user, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.IsZero() {
		t.Fatalf("spent after delete = %s, want 0", got)
	}
}

func TestSeedRecomputesSpent(t *testing.T) {
	s := NewStore()
	user := uuid.New()

	s.Seed(
		[]core.Transaction{
			newExpense(user, "50", "groceries", core.NewDate(2025, 3, 10)),
			newExpense(user, "30", "groceries", core.NewDate(2025, 3, 20)),
			newExpense(user, "99", "transport", core.NewDate(2025, 3, 5)),
		},
		[]core.Budget{{
			UserID:    user,
			Category:  "groceries",
			Amount:    d("1000"),
			Spent:     d("777"), // stale seed value, must be recomputed
			Period:    core.Monthly,
			StartDate: core.NewDate(2025, 3, 1),
			EndDate:   core.NewDate(2025, 3, 31),
		}},
		nil, nil,
	)

	budgets, err := s.ListBudgets(context.Background(), user)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets, want 1", len(budgets))
	}
	if !budgets[0].Spent.Equal(d("80")) {
		t.Errorf("seeded spent = %s, want recomputed 80", budgets[0].Spent)
	}
}

func TestBudgetSpentNeverNegative(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()

	tx, err := s.CreateTransaction(ctx, newExpense(user, "40", "groceries", core.NewDate(2025, 3, 10)))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// The budget is created after the expense, so its spent starts at zero
	// and never saw the contribution. Deleting the expense must not push
	// spent below zero.
	budget := mustBudget(t, s, user, "groceries")
	if err := s.DeleteTransaction(ctx, user, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.IsZero() {
		t.Fatalf("spent = %s, want 0", got)
	}
}

func TestBudgetCreateIgnoresSpent(t *testing.T) {
	s := NewStore()
	user := uuid.New()

	b, err := s.CreateBudget(context.Background(), core.Budget{
		UserID:    user,
		Category:  "groceries",
		Amount:    d("1000"),
		Spent:     d("999"), // client-supplied, must be discarded
		Period:    core.Monthly,
		StartDate: core.NewDate(2025, 3, 1),
		EndDate:   core.NewDate(2025, 3, 31),
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if !b.Spent.IsZero() {
		t.Errorf("Spent = %s, want 0", b.Spent)
	}
}

func TestIncomeDoesNotAccumulate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()
	budget := mustBudget(t, s, user, "groceries")

	income := core.Transaction{
		UserID:   user,
		Amount:   d("500"),
		Category: "groceries",
		Type:     core.Income,
		Date:     core.NewDate(2025, 3, 10),
	}
	if _, err := s.CreateTransaction(ctx, income); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if got := spentOf(t, s, user, budget.ID); !got.IsZero() {
		t.Errorf("income moved spent to %s, want 0", got)
	}
}

func TestPerUserIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice, bob := uuid.New(), uuid.New()

	budget := mustBudget(t, s, alice, "groceries")
	tx, err := s.CreateTransaction(ctx, newExpense(alice, "25", "groceries", core.NewDate(2025, 3, 5)))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// Bob's spending never lands on Alice's budget.
	if _, err := s.CreateTransaction(ctx, newExpense(bob, "60", "groceries", core.NewDate(2025, 3, 6))); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if got := spentOf(t, s, alice, budget.ID); !got.Equal(d("25")) {
		t.Errorf("alice spent = %s, want 25", got)
	}

	// Bob cannot read, rewrite or delete Alice's records.
	if _, err := s.GetTransaction(ctx, bob, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user get = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateTransaction(ctx, bob, tx.ID, ledger.TransactionPatch{Amount: ptr(d("1"))}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user update = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, bob, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user delete = %v, want ErrNotFound", err)
	}
	if _, err := s.GetBudget(ctx, bob, budget.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user budget get = %v, want ErrNotFound", err)
	}

	bobTxs, err := s.ListTransactions(ctx, bob, ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(bobTxs) != 1 {
		t.Errorf("bob sees %d transactions, want 1", len(bobTxs))
	}
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()

	tx, err := s.CreateTransaction(ctx, newExpense(user, "10", "misc", core.NewDate(2025, 3, 1)))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if err := s.DeleteTransaction(ctx, user, tx.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, user, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestListTransactionsOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()

	clock := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	s.SetNow(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	mk := func(amount, category string, txType core.TransactionType, date core.Date) core.Transaction {
		tx, err := s.CreateTransaction(ctx, core.Transaction{
			UserID: user, Amount: d(amount), Category: category, Type: txType, Date: date,
		})
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
		return tx
	}

	old := mk("10", "groceries", core.Expense, core.NewDate(2025, 3, 1))
	sameDayFirst := mk("20", "transport", core.Expense, core.NewDate(2025, 3, 10))
	sameDaySecond := mk("30", "groceries", core.Income, core.NewDate(2025, 3, 10))
	newest := mk("40", "groceries", core.Expense, core.NewDate(2025, 3, 20))

	all, err := s.ListTransactions(ctx, user, ledger.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	wantOrder := []uuid.UUID{newest.ID, sameDaySecond.ID, sameDayFirst.ID, old.ID}
	if len(all) != len(wantOrder) {
		t.Fatalf("got %d transactions, want %d", len(all), len(wantOrder))
	}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, all[i].ID, want)
		}
	}

	byCategory, err := s.ListTransactions(ctx, user, ledger.TransactionFilter{Category: "groceries"})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(byCategory) != 3 {
		t.Errorf("category filter returned %d, want 3", len(byCategory))
	}

	byType, err := s.ListTransactions(ctx, user, ledger.TransactionFilter{Type: core.Expense})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(byType) != 3 {
		t.Errorf("type filter returned %d, want 3", len(byType))
	}

	both, err := s.ListTransactions(ctx, user, ledger.TransactionFilter{Category: "groceries", Type: core.Expense})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(both) != 2 {
		t.Errorf("combined filter returned %d, want 2", len(both))
	}
}

func TestLoanLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()

	l, err := s.CreateLoan(ctx, core.Loan{
		UserID:          user,
		Name:            "car",
		Principal:       d("120000"),
		InterestRate:    d("12"),
		InterestType:    core.CompoundInterest,
		TermMonths:      12,
		NextPaymentDate: core.NewDate(2025, 4, 1),
	})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if want := d("10661.85"); !l.MonthlyPayment.Equal(want) {
		t.Errorf("MonthlyPayment = %s, want %s", l.MonthlyPayment, want)
	}
	if !l.Balance.Equal(l.Principal) {
		t.Errorf("Balance = %s, want principal %s", l.Balance, l.Principal)
	}

	// Changing a term field recomputes the payment.
	updated, err := s.UpdateLoan(ctx, user, l.ID, ledger.LoanPatch{TermMonths: ptr(24)})
	if err != nil {
		t.Fatalf("UpdateLoan: %v", err)
	}
	if updated.MonthlyPayment.Equal(l.MonthlyPayment) {
		t.Error("payment unchanged after term change")
	}

	// A cosmetic change leaves it alone.
	renamed, err := s.UpdateLoan(ctx, user, l.ID, ledger.LoanPatch{Name: ptr("family car")})
	if err != nil {
		t.Fatalf("UpdateLoan: %v", err)
	}
	if !renamed.MonthlyPayment.Equal(updated.MonthlyPayment) {
		t.Errorf("payment drifted on rename: %s -> %s", updated.MonthlyPayment, renamed.MonthlyPayment)
	}

	if err := s.DeleteLoan(ctx, user, l.ID); err != nil {
		t.Fatalf("DeleteLoan: %v", err)
	}
	if _, err := s.GetLoan(ctx, user, l.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestSavingsGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := uuid.New()

	g, err := s.CreateSavingsGoal(ctx, core.SavingsGoal{
		UserID:  user,
		Name:    "emergency",
		Target:  d("5000"),
		Current: d("100"),
	})
	if err != nil {
		t.Fatalf("CreateSavingsGoal: %v", err)
	}

	deadline := core.NewDate(2026, 6, 1)
	updated, err := s.UpdateSavingsGoal(ctx, user, g.ID, ledger.SavingsGoalPatch{
		Current:  ptr(d("250")),
		Deadline: &deadline,
	})
	if err != nil {
		t.Fatalf("UpdateSavingsGoal: %v", err)
	}
	if !updated.Current.Equal(d("250")) {
		t.Errorf("Current = %s, want 250", updated.Current)
	}
	if updated.Deadline == nil || updated.Deadline.String() != "2026-06-01" {
		t.Errorf("Deadline = %v, want 2026-06-01", updated.Deadline)
	}

	goals, err := s.ListSavingsGoals(ctx, user)
	if err != nil {
		t.Fatalf("ListSavingsGoals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("got %d goals, want 1", len(goals))
	}
}
