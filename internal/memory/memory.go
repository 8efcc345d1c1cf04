// Package memory implements the ledger store contract on plain in-process
// maps. It backs the service tests and lets the server run without a
// database; nothing is persisted across restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]core.Transaction
	budgets      map[uuid.UUID]core.Budget
	goals        map[uuid.UUID]core.SavingsGoal
	loans        map[uuid.UUID]core.Loan

	nowFn func() time.Time // overridable in tests
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[uuid.UUID]core.Transaction),
		budgets:      make(map[uuid.UUID]core.Budget),
		goals:        make(map[uuid.UUID]core.SavingsGoal),
		loans:        make(map[uuid.UUID]core.Loan),
		nowFn:        time.Now,
	}
}

var _ ledger.Store = (*Store)(nil)

// SetNow overrides the store clock. Test helper.
func (s *Store) SetNow(fn func() time.Time) {
	s.nowFn = fn
}

// Seed loads pre-built records verbatim, assigning ids where missing. Budget
// spent totals are recomputed from the seeded transactions rather than
// trusted, so a seed can never violate the accumulation invariant.
func (s *Store) Seed(txs []core.Transaction, budgets []core.Budget, goals []core.SavingsGoal, loans []core.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range budgets {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		b.Spent = decimal.Zero
		s.budgets[b.ID] = b
	}
	for _, t := range txs {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.nowFn().UTC()
		}
		s.transactions[t.ID] = t
		s.accumulate(t, false)
	}
	for _, g := range goals {
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		s.goals[g.ID] = g
	}
	for _, l := range loans {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.Balance.IsZero() {
			l.Balance = l.Principal
		}
		s.loans[l.ID] = l
	}
}

func (s *Store) Close() error { return nil }

// accumulate applies the transaction's budget contribution with the given
// sign. Called with the store lock held, so the transaction write and the
// spent adjustments are observed together.
func (s *Store) accumulate(t core.Transaction, reverse bool) {
	if !core.AffectsBudget(t.Type) {
		return
	}
	delta := t.Amount
	if reverse {
		delta = delta.Neg()
	}
	for id, b := range s.budgets {
		if core.MatchesBudget(t, b) {
			b.Spent = core.ApplySpent(b.Spent, delta)
			s.budgets[id] = b
		}
	}
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.New()
	t.CreatedAt = s.nowFn().UTC()
	s.transactions[t.ID] = t
	s.accumulate(t, false)
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id uuid.UUID) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID, id uuid.UUID, patch ledger.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.transactions[id]
	if !ok || old.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}

	updated := old
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	// Reverse the pre-update contribution, then apply the new one.
	s.accumulate(old, true)
	s.accumulate(updated, false)
	s.transactions[id] = updated
	return updated, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}

	s.accumulate(t, true)
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID uuid.UUID, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID == userID && filter.Match(t) {
			out = append(out, t)
		}
	}

	// Newest first, creation time as tiebreak.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	b.Spent = decimal.Zero // derived total always starts at zero
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = uuid.New()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) GetBudget(_ context.Context, userID, id uuid.UUID) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, userID, id uuid.UUID, patch ledger.BudgetPatch) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return core.Budget{}, core.ErrNotFound
	}

	patch.Apply(&b)
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.budgets[id] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListBudgets(_ context.Context, userID uuid.UUID) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].StartDate.Before(out[j].StartDate.Time)
	})
	return out, nil
}

func (s *Store) CreateSavingsGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = uuid.New()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) GetSavingsGoal(_ context.Context, userID, id uuid.UUID) (core.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	return g, nil
}

func (s *Store) UpdateSavingsGoal(_ context.Context, userID, id uuid.UUID, patch ledger.SavingsGoalPatch) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.SavingsGoal{}, core.ErrNotFound
	}

	patch.Apply(&g)
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	s.goals[id] = g
	return g, nil
}

func (s *Store) DeleteSavingsGoal(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) ListSavingsGoals(_ context.Context, userID uuid.UUID) ([]core.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.SavingsGoal, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateLoan(_ context.Context, l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}

	payment, err := core.MonthlyPayment(l.Principal, l.InterestRate, l.TermMonths)
	if err != nil {
		return core.Loan{}, err
	}
	l.MonthlyPayment = payment
	if l.Balance.IsZero() {
		l.Balance = l.Principal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = uuid.New()
	s.loans[l.ID] = l
	return l, nil
}

func (s *Store) GetLoan(_ context.Context, userID, id uuid.UUID) (core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans[id]
	if !ok || l.UserID != userID {
		return core.Loan{}, core.ErrNotFound
	}
	return l, nil
}

func (s *Store) UpdateLoan(_ context.Context, userID, id uuid.UUID, patch ledger.LoanPatch) (core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok || l.UserID != userID {
		return core.Loan{}, core.ErrNotFound
	}

	patch.Apply(&l)
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}

	if patch.ChangesTerms() {
		payment, err := core.MonthlyPayment(l.Principal, l.InterestRate, l.TermMonths)
		if err != nil {
			return core.Loan{}, err
		}
		l.MonthlyPayment = payment
	}

	s.loans[id] = l
	return l, nil
}

func (s *Store) DeleteLoan(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[id]
	if !ok || l.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.loans, id)
	return nil
}

func (s *Store) ListLoans(_ context.Context, userID uuid.UUID) ([]core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Loan, 0)
	for _, l := range s.loans {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
