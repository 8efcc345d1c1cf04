package core

import "github.com/shopspring/decimal"

// AffectsBudget reports whether a transaction of this type contributes to
// budget consumption. Income and savings/loan inflows never do.
func AffectsBudget(t TransactionType) bool {
	return t == Expense || t == LoanPayment
}

// MatchesBudget reports whether transaction t contributes to budget b: same
// owner, same category, type counted as spending, and dated inside the
// budget's inclusive accumulation window.
func MatchesBudget(t Transaction, b Budget) bool {
	return t.UserID == b.UserID &&
		AffectsBudget(t.Type) &&
		t.Category == b.Category &&
		t.Date.Within(b.StartDate, b.EndDate)
}

// ApplySpent adjusts a budget's consumed total by delta, clamped so the
// total never drops below zero when a contribution is reversed.
func ApplySpent(spent, delta decimal.Decimal) decimal.Decimal {
	next := spent.Add(delta)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}
