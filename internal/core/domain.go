package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income            TransactionType = "income"
	Expense           TransactionType = "expense"
	SavingsDeposit    TransactionType = "savings_deposit"
	SavingsWithdrawal TransactionType = "savings_withdrawal"
	LoanReceived      TransactionType = "loan_received"
	LoanPayment       TransactionType = "loan_payment"
)

const (
	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

const (
	SimpleInterest   InterestType = "simple"
	CompoundInterest InterestType = "compound"
)

// LocalUserID is the implicit owner of every record in the local-only backend.
var LocalUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type (
	TransactionType string
	BudgetPeriod    string
	InterestType    string

	// Date is a calendar date. The wrapped time is always midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          uuid.UUID
		UserID      uuid.UUID
		Amount      decimal.Decimal // always positive; direction is carried by Type
		Description string
		Category    string
		Type        TransactionType
		Date        Date
		TimeOfDay   string // optional "HH:MM", empty when unset
		GoalID      *uuid.UUID
		LoanID      *uuid.UUID
		CreatedAt   time.Time
	}

	Budget struct {
		ID        uuid.UUID
		UserID    uuid.UUID
		Category  string
		Amount    decimal.Decimal
		Spent     decimal.Decimal // engine-derived, starts at zero
		Period    BudgetPeriod
		StartDate Date
		EndDate   Date
		Icon      string
	}

	SavingsGoal struct {
		ID       uuid.UUID
		UserID   uuid.UUID
		Name     string
		Target   decimal.Decimal
		Current  decimal.Decimal
		Deadline *Date
		Icon     string
		Color    string
	}

	Loan struct {
		ID              uuid.UUID
		UserID          uuid.UUID
		Name            string
		Principal       decimal.Decimal
		InterestRate    decimal.Decimal // annual percent
		InterestType    InterestType
		TermMonths      int
		MonthlyPayment  decimal.Decimal // engine-computed
		Balance         decimal.Decimal
		NextPaymentDate Date
		Icon            string
		Color           string
	}
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, SavingsDeposit, SavingsWithdrawal, LoanReceived, LoanPayment:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (it InterestType) Valid() bool {
	switch it {
	case SimpleInterest, CompoundInterest:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Within reports whether d falls in [start, end], both ends inclusive.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

// SameMonth reports whether d falls in the calendar month of t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.UTC().Year() && d.Month() == t.UTC().Month()
}

func (t Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return Invalid("userId", "missing owner")
	}
	if !t.Amount.IsPositive() {
		return Invalid("amount", "must be positive")
	}
	if t.Amount.Exponent() < -2 {
		return Invalid("amount", "more than two fractional digits")
	}
	if strings.TrimSpace(t.Category) == "" {
		return Invalid("category", "cannot be empty")
	}
	if len(t.Description) > 200 {
		return Invalid("description", "too long (max 200 characters)")
	}
	if !t.Type.Valid() {
		return Invalid("type", "unknown transaction type")
	}
	if t.Date.IsZero() {
		return Invalid("date", "cannot be zero")
	}
	if t.TimeOfDay != "" {
		if _, err := time.Parse("15:04", t.TimeOfDay); err != nil {
			return Invalid("timeOfDay", "must be HH:MM")
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if b.UserID == uuid.Nil {
		return Invalid("userId", "missing owner")
	}
	if strings.TrimSpace(b.Category) == "" {
		return Invalid("category", "cannot be empty")
	}
	if !b.Amount.IsPositive() {
		return Invalid("amount", "must be positive")
	}
	if !b.Period.Valid() {
		return Invalid("period", "must be weekly, monthly or yearly")
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return Invalid("window", "start and end dates are required")
	}
	if b.EndDate.Before(b.StartDate.Time) {
		return Invalid("window", "end date precedes start date")
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if g.UserID == uuid.Nil {
		return Invalid("userId", "missing owner")
	}
	if strings.TrimSpace(g.Name) == "" {
		return Invalid("name", "cannot be empty")
	}
	if !g.Target.IsPositive() {
		return Invalid("target", "must be positive")
	}
	if g.Current.IsNegative() {
		return Invalid("current", "cannot be negative")
	}
	return nil
}

func (l Loan) Validate() error {
	if l.UserID == uuid.Nil {
		return Invalid("userId", "missing owner")
	}
	if strings.TrimSpace(l.Name) == "" {
		return Invalid("name", "cannot be empty")
	}
	if !l.Principal.IsPositive() || l.TermMonths <= 0 || l.InterestRate.IsNegative() {
		return ErrInvalidLoanTerms
	}
	if l.InterestType != "" && !l.InterestType.Valid() {
		return Invalid("interestType", "must be simple or compound")
	}
	if l.Balance.IsNegative() {
		return Invalid("balance", "cannot be negative")
	}
	return nil
}
