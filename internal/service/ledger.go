// Package service exposes the ledger operations to transports. It delegates
// storage to whichever backend the factory selected and keeps the cross-store
// logic — payoff projection and summary aggregation — in one place so the
// backends cannot diverge.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

var twelveHundred = decimal.NewFromInt(1200)

type Ledger struct {
	store ledger.Store
}

func NewLedger(store ledger.Store) *Ledger {
	return &Ledger{store: store}
}

func (s *Ledger) Close() error {
	return s.store.Close()
}

func (s *Ledger) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	return s.store.CreateTransaction(ctx, t)
}

func (s *Ledger) GetTransaction(ctx context.Context, userID, id uuid.UUID) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *Ledger) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch ledger.TransactionPatch) (core.Transaction, error) {
	return s.store.UpdateTransaction(ctx, userID, id, patch)
}

func (s *Ledger) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteTransaction(ctx, userID, id)
}

func (s *Ledger) ListTransactions(ctx context.Context, userID uuid.UUID, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, filter)
}

func (s *Ledger) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	return s.store.CreateBudget(ctx, b)
}

func (s *Ledger) GetBudget(ctx context.Context, userID, id uuid.UUID) (core.Budget, error) {
	return s.store.GetBudget(ctx, userID, id)
}

func (s *Ledger) UpdateBudget(ctx context.Context, userID, id uuid.UUID, patch ledger.BudgetPatch) (core.Budget, error) {
	return s.store.UpdateBudget(ctx, userID, id, patch)
}

func (s *Ledger) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteBudget(ctx, userID, id)
}

func (s *Ledger) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

func (s *Ledger) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	return s.store.CreateSavingsGoal(ctx, g)
}

func (s *Ledger) GetSavingsGoal(ctx context.Context, userID, id uuid.UUID) (core.SavingsGoal, error) {
	return s.store.GetSavingsGoal(ctx, userID, id)
}

func (s *Ledger) UpdateSavingsGoal(ctx context.Context, userID, id uuid.UUID, patch ledger.SavingsGoalPatch) (core.SavingsGoal, error) {
	return s.store.UpdateSavingsGoal(ctx, userID, id, patch)
}

func (s *Ledger) DeleteSavingsGoal(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteSavingsGoal(ctx, userID, id)
}

func (s *Ledger) ListSavingsGoals(ctx context.Context, userID uuid.UUID) ([]core.SavingsGoal, error) {
	return s.store.ListSavingsGoals(ctx, userID)
}

func (s *Ledger) CreateLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	return s.store.CreateLoan(ctx, l)
}

func (s *Ledger) GetLoan(ctx context.Context, userID, id uuid.UUID) (core.Loan, error) {
	return s.store.GetLoan(ctx, userID, id)
}

func (s *Ledger) UpdateLoan(ctx context.Context, userID, id uuid.UUID, patch ledger.LoanPatch) (core.Loan, error) {
	return s.store.UpdateLoan(ctx, userID, id, patch)
}

func (s *Ledger) DeleteLoan(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteLoan(ctx, userID, id)
}

func (s *Ledger) ListLoans(ctx context.Context, userID uuid.UUID) ([]core.Loan, error) {
	return s.store.ListLoans(ctx, userID)
}

// Payoff is the forward projection of a loan's remaining life.
type Payoff struct {
	MonthlyPayment   decimal.Decimal
	RemainingBalance decimal.Decimal
	RemainingMonths  int
	TotalInterest    decimal.Decimal
	PayoffDate       core.Date
}

// ProjectLoanPayoff projects how the loan retires from its current balance at
// its stored payment. now is injected so projections are reproducible.
func (s *Ledger) ProjectLoanPayoff(ctx context.Context, userID, loanID uuid.UUID, now time.Time) (Payoff, error) {
	l, err := s.store.GetLoan(ctx, userID, loanID)
	if err != nil {
		return Payoff{}, err
	}

	monthlyRate := l.InterestRate.Div(twelveHundred)
	proj, err := core.ProjectPayoff(l.Balance, l.MonthlyPayment, monthlyRate, now)
	if err != nil {
		return Payoff{}, err
	}

	return Payoff{
		MonthlyPayment:   l.MonthlyPayment,
		RemainingBalance: l.Balance,
		RemainingMonths:  proj.RemainingMonths,
		TotalInterest:    proj.TotalInterest,
		PayoffDate:       proj.PayoffDate,
	}, nil
}

// Summary computes the user's aggregate financial picture from current store
// contents. The three entity sets load concurrently; the aggregation itself
// is core.Summarize, shared by every backend. Nothing is cached.
func (s *Ledger) Summary(ctx context.Context, userID uuid.UUID, now time.Time) (core.Summary, error) {
	var (
		txs   []core.Transaction
		goals []core.SavingsGoal
		loans []core.Loan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, ledger.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.store.ListSavingsGoals(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		loans, err = s.store.ListLoans(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, fmt.Errorf("load ledger state: %w", err)
	}

	return core.Summarize(txs, goals, loans, now), nil
}
