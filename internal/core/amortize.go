package core

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// MonthlyPayment computes the fixed payment that fully amortizes principal at
// annualRatePct percent over termMonths equal installments. The result is
// rounded to cents, half away from zero, once at the end.
func MonthlyPayment(principal, annualRatePct decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() || termMonths <= 0 || annualRatePct.IsNegative() {
		return decimal.Zero, ErrInvalidLoanTerms
	}

	n := decimal.NewFromInt(int64(termMonths))
	if annualRatePct.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	// r = R/100/12, M = P*r*(1+r)^N / ((1+r)^N - 1)
	r := annualRatePct.Div(hundred).Div(monthsInYear)
	compound := decimal.NewFromInt(1).Add(r).Pow(n)
	payment := principal.Mul(r).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1)))
	return payment.Round(2), nil
}

// Projection describes the remaining life of a loan at its current balance.
type Projection struct {
	RemainingMonths int
	TotalInterest   decimal.Decimal
	PayoffDate      Date
}

// ProjectPayoff computes how many payments remain on a loan, the interest
// still to be paid, and the payoff date counted in whole months from now.
// A payment that does not exceed the interest accruing per month never
// retires the balance; that case is reported as ErrNonAmortizingLoan.
func ProjectPayoff(balance, payment, monthlyRate decimal.Decimal, now time.Time) (Projection, error) {
	if balance.IsNegative() {
		return Projection{}, Invalid("balance", "cannot be negative")
	}
	if balance.IsZero() {
		return Projection{TotalInterest: decimal.Zero, PayoffDate: DateOf(now)}, nil
	}

	var months int
	if monthlyRate.IsZero() {
		if !payment.IsPositive() {
			return Projection{}, ErrNonAmortizingLoan
		}
		months = int(balance.Div(payment).Ceil().IntPart())
	} else {
		if payment.Cmp(balance.Mul(monthlyRate)) <= 0 {
			return Projection{}, ErrNonAmortizingLoan
		}
		// months = ceil(-ln(1 - B*r/M) / ln(1+r))
		ratio, _ := balance.Mul(monthlyRate).Div(payment).Float64()
		rate, _ := monthlyRate.Float64()
		months = int(math.Ceil(-math.Log1p(-ratio) / math.Log1p(rate)))
	}

	interest := payment.Mul(decimal.NewFromInt(int64(months))).Sub(balance)
	if interest.IsNegative() {
		interest = decimal.Zero
	}

	return Projection{
		RemainingMonths: months,
		TotalInterest:   interest,
		PayoffDate:      addMonthsClamped(DateOf(now), months),
	}, nil
}

// addMonthsClamped advances d by n whole months keeping the day of month,
// clamped to the last day of the target month instead of letting time.AddDate
// normalize (Jan 31 + 1 month is Feb 28/29, not Mar 2/3).
func addMonthsClamped(d Date, n int) Date {
	year, month, day := d.Date()
	total := int(month) - 1 + n
	year += total / 12
	month = time.Month(total%12 + 1)

	if last := daysIn(year, month); day > last {
		day = last
	}
	return NewDate(year, int(month), day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
