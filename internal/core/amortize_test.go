package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name       string
		principal  string
		annualRate string
		termMonths int
		want       string
		wantErr    error
	}{
		{
			name:       "zero rate splits principal evenly",
			principal:  "1200",
			annualRate: "0",
			termMonths: 12,
			want:       "100.00",
		},
		{
			name:       "twelve percent over one year",
			principal:  "120000",
			annualRate: "12",
			termMonths: 12,
			want:       "10661.85",
		},
		{
			name:       "zero rate with rounding",
			principal:  "1000",
			annualRate: "0",
			termMonths: 3,
			want:       "333.33",
		},
		{
			name:       "thirty year mortgage",
			principal:  "300000",
			annualRate: "6",
			termMonths: 360,
			want:       "1798.65",
		},
		{
			name:       "zero principal",
			principal:  "0",
			annualRate: "5",
			termMonths: 12,
			wantErr:    ErrInvalidLoanTerms,
		},
		{
			name:       "negative principal",
			principal:  "-100",
			annualRate: "5",
			termMonths: 12,
			wantErr:    ErrInvalidLoanTerms,
		},
		{
			name:       "zero term",
			principal:  "1000",
			annualRate: "5",
			termMonths: 0,
			wantErr:    ErrInvalidLoanTerms,
		},
		{
			name:       "negative rate",
			principal:  "1000",
			annualRate: "-1",
			termMonths: 12,
			wantErr:    ErrInvalidLoanTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthlyPayment(d(tt.principal), d(tt.annualRate), tt.termMonths)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("MonthlyPayment() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("MonthlyPayment() unexpected error: %v", err)
			}
			if !got.Equal(d(tt.want)) {
				t.Errorf("MonthlyPayment() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMonthlyPaymentCoversPrincipal(t *testing.T) {
	// N rounded payments must retire the principal; the closed form
	// guarantees this up to sub-cent rounding drift.
	payment, err := MonthlyPayment(d("25000"), d("4.5"), 60)
	if err != nil {
		t.Fatalf("MonthlyPayment() unexpected error: %v", err)
	}

	balance := d("25000")
	rate := d("4.5").Div(d("100")).Div(d("12"))
	for i := 0; i < 60; i++ {
		balance = balance.Add(balance.Mul(rate)).Sub(payment)
	}
	if balance.Abs().Cmp(d("0.5")) > 0 {
		t.Errorf("residual balance after full term = %s, want within half a unit of zero", balance)
	}
}

func TestProjectPayoff(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		balance      string
		payment      string
		monthlyRate  string
		wantMonths   int
		wantInterest string
		wantPayoff   string
		wantErr      error
	}{
		{
			name:         "zero balance pays off immediately",
			balance:      "0",
			payment:      "100",
			monthlyRate:  "0.01",
			wantMonths:   0,
			wantInterest: "0",
			wantPayoff:   "2025-03-10",
		},
		{
			name:         "zero rate divides evenly",
			balance:      "1000",
			payment:      "250",
			monthlyRate:  "0",
			wantMonths:   4,
			wantInterest: "0",
			wantPayoff:   "2025-07-10",
		},
		{
			name:         "zero rate with partial final payment",
			balance:      "1000",
			payment:      "300",
			monthlyRate:  "0",
			wantMonths:   4,
			wantInterest: "200",
			wantPayoff:   "2025-07-10",
		},
		{
			name:         "one percent monthly",
			balance:      "1000",
			payment:      "200",
			monthlyRate:  "0.01",
			wantMonths:   6,
			wantInterest: "200",
			wantPayoff:   "2025-09-10",
		},
		{
			name:        "payment below monthly interest",
			balance:     "10000",
			payment:     "150",
			monthlyRate: "0.02",
			wantErr:     ErrNonAmortizingLoan,
		},
		{
			name:        "payment exactly at monthly interest",
			balance:     "10000",
			payment:     "200",
			monthlyRate: "0.02",
			wantErr:     ErrNonAmortizingLoan,
		},
		{
			name:        "zero rate with zero payment",
			balance:     "1000",
			payment:     "0",
			monthlyRate: "0",
			wantErr:     ErrNonAmortizingLoan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectPayoff(d(tt.balance), d(tt.payment), d(tt.monthlyRate), now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ProjectPayoff() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProjectPayoff() unexpected error: %v", err)
			}
			if got.RemainingMonths != tt.wantMonths {
				t.Errorf("RemainingMonths = %d, want %d", got.RemainingMonths, tt.wantMonths)
			}
			if !got.TotalInterest.Equal(d(tt.wantInterest)) {
				t.Errorf("TotalInterest = %s, want %s", got.TotalInterest, tt.wantInterest)
			}
			if got.PayoffDate.String() != tt.wantPayoff {
				t.Errorf("PayoffDate = %s, want %s", got.PayoffDate, tt.wantPayoff)
			}
		})
	}
}

func TestProjectPayoffNegativeBalance(t *testing.T) {
	_, err := ProjectPayoff(d("-1"), d("100"), d("0"), time.Now())
	if !IsValidation(err) {
		t.Fatalf("ProjectPayoff() error = %v, want validation error", err)
	}
}

func TestProjectPayoffMatchesSimulation(t *testing.T) {
	// The closed form must agree with a month by month simulation.
	balance := d("5000")
	payment := d("450")
	rate := d("0.015")

	got, err := ProjectPayoff(balance, payment, rate, time.Now())
	if err != nil {
		t.Fatalf("ProjectPayoff() unexpected error: %v", err)
	}

	months := 0
	for b := balance; b.IsPositive(); months++ {
		b = b.Add(b.Mul(rate)).Sub(payment)
	}
	if got.RemainingMonths != months {
		t.Errorf("RemainingMonths = %d, simulation says %d", got.RemainingMonths, months)
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{"plain advance", "2025-03-10", 6, "2025-09-10"},
		{"end of january clamps to february", "2025-01-31", 1, "2025-02-28"},
		{"leap year february", "2024-01-31", 1, "2024-02-29"},
		{"year rollover", "2025-11-15", 3, "2026-02-15"},
		{"multi year", "2025-06-30", 24, "2027-06-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := ParseDate(tt.start)
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.start, err)
			}
			if got := addMonthsClamped(start, tt.months); got.String() != tt.want {
				t.Errorf("addMonthsClamped(%s, %d) = %s, want %s", tt.start, tt.months, got, tt.want)
			}
		})
	}
}
