// Package finance implements the amortizing-loan math the decision engines
// and the sanction letter share.
package finance

import (
	"fmt"
	"math"
)

// EMI returns the equated monthly installment for an amortizing loan.
// A zero rate degrades to an even principal split.
func EMI(principal float64, annualRatePercent float64, tenureMonths int) (float64, error) {
	if tenureMonths <= 0 {
		return 0, fmt.Errorf("tenure must be positive, got %d", tenureMonths)
	}
	if principal < 0 {
		return 0, fmt.Errorf("principal must be non-negative, got %.2f", principal)
	}
	if annualRatePercent < 0 {
		return 0, fmt.Errorf("rate must be non-negative, got %.2f", annualRatePercent)
	}

	if annualRatePercent == 0 {
		return principal / float64(tenureMonths), nil
	}

	r := annualRatePercent / 12 / 100
	factor := math.Pow(1+r, float64(tenureMonths))
	return principal * r * factor / (factor - 1), nil
}

// MaxLoanAmount is the algebraic inverse of EMI: the largest principal
// serviceable by maxEMI at the given rate and tenure.
func MaxLoanAmount(maxEMI float64, annualRatePercent float64, tenureMonths int) (float64, error) {
	if tenureMonths <= 0 {
		return 0, fmt.Errorf("tenure must be positive, got %d", tenureMonths)
	}
	if maxEMI <= 0 {
		return 0, nil
	}

	if annualRatePercent == 0 {
		return maxEMI * float64(tenureMonths), nil
	}

	r := annualRatePercent / 12 / 100
	factor := math.Pow(1+r, float64(tenureMonths))
	return maxEMI * (factor - 1) / (r * factor), nil
}

// InterestRateForScore maps a credit score to the annual rate offered.
// Step function, non-increasing in score.
func InterestRateForScore(score int) float64 {
	switch {
	case score >= 800:
		return 10.5
	case score >= 750:
		return 11.5
	case score >= 700:
		return 12.5
	case score >= 650:
		return 13.5
	default:
		return 15.0
	}
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Month            int     `json:"month"`
	EMI              float64 `json:"emi"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Schedule simulates a reducing-balance repayment month by month. months
// caps the output length; pass tenureMonths for the full schedule.
func Schedule(principal float64, annualRatePercent float64, tenureMonths, months int) ([]Installment, error) {
	emi, err := EMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}
	if months > tenureMonths {
		months = tenureMonths
	}

	monthlyRate := annualRatePercent / 12 / 100
	balance := principal
	rows := make([]Installment, 0, months)

	for m := 1; m <= months; m++ {
		interest := balance * monthlyRate
		principalPaid := emi - interest
		if principalPaid > balance {
			principalPaid = balance
		}
		balance -= principalPaid

		rows = append(rows, Installment{
			Month:            m,
			EMI:              emi,
			Principal:        principalPaid,
			Interest:         interest,
			RemainingBalance: balance,
		})
	}

	return rows, nil
}

// TotalInterest returns the interest paid over the full tenure.
func TotalInterest(principal float64, annualRatePercent float64, tenureMonths int) (float64, error) {
	emi, err := EMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return 0, err
	}
	return emi*float64(tenureMonths) - principal, nil
}

// RoundCurrency rounds to the nearest whole currency unit. Applied at
// presentation boundaries only; internal math keeps floating precision.
func RoundCurrency(v float64) int64 {
	return int64(math.Round(v))
}
