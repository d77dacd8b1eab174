// Package affordability classifies a requested loan against an
// income-ratio policy and proposes alternative structures.
package affordability

import (
	"fmt"
	"sort"

	"finsync-advisor/internal/finance"
	"finsync-advisor/internal/models"
)

// Policy constants: the fraction of monthly income that existing EMIs plus
// the new EMI may consume.
const (
	MaxRatio         = 0.50
	RecommendedRatio = 0.40
)

// Input carries everything Analyze needs. All fields are read-only.
type Input struct {
	MonthlyIncome    int64
	ExistingEMIs     int64
	RequestedAmount  int64
	AnnualRatePercent float64
	TenureMonths     int
}

// Analyze is pure: it computes the affordability verdict and up to three
// ranked alternatives without touching any external state.
func Analyze(in Input) (*models.AffordabilityAnalysis, error) {
	// Zero income can never afford anything. Guard before any division.
	if in.MonthlyIncome <= 0 {
		return &models.AffordabilityAnalysis{
			CanAfford: false,
			Message:   "We need a verified monthly income before assessing affordability.",
		}, nil
	}

	requestedEMI, err := finance.EMI(float64(in.RequestedAmount), in.AnnualRatePercent, in.TenureMonths)
	if err != nil {
		return nil, err
	}

	income := float64(in.MonthlyIncome)
	existing := float64(in.ExistingEMIs)
	ratio := (existing + requestedEMI) / income

	maxSafeEMI := income*MaxRatio - existing
	maxAffordable, err := finance.MaxLoanAmount(maxSafeEMI, in.AnnualRatePercent, in.TenureMonths)
	if err != nil {
		return nil, err
	}

	analysis := &models.AffordabilityAnalysis{
		CanAfford:           ratio <= MaxRatio,
		RequestedEMI:        requestedEMI,
		MaxAffordableAmount: maxAffordable,
		MaxAffordableEMI:    maxSafeEMI,
		EMIToIncomeRatio:    ratio,
	}

	switch {
	case !analysis.CanAfford:
		analysis.Message = fmt.Sprintf(
			"The requested EMI of ₹%d would take your total obligations to %.0f%% of income, above our %.0f%% limit. Based on your income, you could comfortably borrow up to ₹%d.",
			finance.RoundCurrency(requestedEMI), ratio*100, MaxRatio*100, finance.RoundCurrency(maxAffordable),
		)
		analysis.AlternativeOptions = alternatives(maxAffordable, in)

	case ratio > RecommendedRatio:
		analysis.Message = fmt.Sprintf(
			"This loan is within limits but your EMI burden would reach %.0f%% of income, above the recommended %.0f%%. You may want a slightly smaller amount or a longer tenure.",
			ratio*100, RecommendedRatio*100,
		)
		analysis.AlternativeOptions = alternatives(0.8*maxAffordable, in)

	default:
		analysis.Message = fmt.Sprintf(
			"Good news, the EMI of ₹%d fits comfortably at %.0f%% of your income.",
			finance.RoundCurrency(requestedEMI), ratio*100,
		)
	}

	return analysis, nil
}

// alternatives builds up to three candidate structures anchored at the given
// amount, sorted ascending by EMI.
func alternatives(anchor float64, in Input) []models.LoanOption {
	if anchor <= 0 {
		return nil
	}

	candidates := []struct {
		amount float64
		tenure int
	}{
		{0.9 * anchor, in.TenureMonths},
		{anchor, extendTenure(in.TenureMonths)},
		{0.8 * anchor, in.TenureMonths},
	}

	options := make([]models.LoanOption, 0, len(candidates))
	for _, c := range candidates {
		emi, err := finance.EMI(c.amount, in.AnnualRatePercent, c.tenure)
		if err != nil {
			continue
		}
		totalInterest, err := finance.TotalInterest(c.amount, in.AnnualRatePercent, c.tenure)
		if err != nil {
			continue
		}
		options = append(options, models.LoanOption{
			Amount:        finance.RoundCurrency(c.amount),
			TenureMonths:  c.tenure,
			EMI:           emi,
			TotalInterest: totalInterest,
		})
	}

	sort.Slice(options, func(i, j int) bool {
		return options[i].EMI < options[j].EMI
	})

	if len(options) > 3 {
		options = options[:3]
	}
	return options
}

// extendTenure adds a year, capped at 60 months.
func extendTenure(tenure int) int {
	extended := tenure + 12
	if extended > 60 {
		extended = 60
	}
	return extended
}
