// Package underwriting implements the deterministic loan decision tree.
package underwriting

import (
	"fmt"

	"finsync-advisor/internal/finance"
	"finsync-advisor/internal/models"
)

const (
	// MinimumScore is the hard floor below which no loan is offered.
	MinimumScore = 700
	// ConditionalMultiple caps conditional approvals at this multiple of
	// the pre-approved limit.
	ConditionalMultiple = 2
	// MaxEMIRatioPercent caps total EMI burden as a share of income.
	MaxEMIRatioPercent = 50.0
	// assumedTenureMonths is used for the EMI burden check when the
	// applicant has not fixed a tenure.
	assumedTenureMonths = 36
)

// conditionalDocuments is the fixed checklist attached to every
// conditional approval.
var conditionalDocuments = []string{
	"Latest 3 months salary slips required",
	"Bank statement for last 6 months required",
	"Employment verification letter required",
}

// Evaluate runs the decision tree in fixed order, first match wins. Pure:
// the score is computed by the caller and passed in, never derived here.
func Evaluate(customer *models.CustomerProfile, creditScore int, requestedAmount int64) (*models.UnderwritingVerdict, error) {
	if customer == nil {
		return nil, fmt.Errorf("customer profile is required")
	}
	if requestedAmount <= 0 {
		return nil, fmt.Errorf("requested amount must be positive, got %d", requestedAmount)
	}
	if customer.MonthlyIncome <= 0 {
		return nil, fmt.Errorf("monthly income must be positive, got %d", customer.MonthlyIncome)
	}
	if customer.PreApprovedLimit < 0 {
		return nil, fmt.Errorf("pre-approved limit must be non-negative, got %d", customer.PreApprovedLimit)
	}

	// Rule 1: hard score floor.
	if creditScore < MinimumScore {
		return rejected(creditScore, requestedAmount,
			fmt.Sprintf("Credit score below minimum threshold (%d)", MinimumScore)), nil
	}

	// Rule 2: within the pre-approved limit, no further checks.
	if requestedAmount <= customer.PreApprovedLimit {
		return &models.UnderwritingVerdict{
			Decision:        models.DecisionInstantApproved,
			Reason:          "Amount within pre-approved limit",
			CreditScore:     creditScore,
			RequestedAmount: requestedAmount,
			ApprovedAmount:  requestedAmount,
			Conditions:      []string{},
			InterestRate:    finance.InterestRateForScore(creditScore),
		}, nil
	}

	// Rule 3: hard ceiling at a multiple of the limit.
	maxConditional := customer.PreApprovedLimit * ConditionalMultiple
	if requestedAmount > maxConditional {
		return rejected(creditScore, requestedAmount,
			fmt.Sprintf("Requested amount exceeds %dx pre-approved limit (₹%d)", ConditionalMultiple, maxConditional)), nil
	}

	// Rule 4: EMI burden check at the score-implied rate.
	interestRate := finance.InterestRateForScore(creditScore)
	emi, err := finance.EMI(float64(requestedAmount), interestRate, assumedTenureMonths)
	if err != nil {
		return nil, fmt.Errorf("emi computation failed: %w", err)
	}

	totalEMI := emi + float64(customer.ExistingEMIs)
	emiRatio := totalEMI / float64(customer.MonthlyIncome) * 100
	if emiRatio > MaxEMIRatioPercent {
		return rejected(creditScore, requestedAmount,
			fmt.Sprintf("Total EMI burden (%.1f%%) exceeds %.0f%% of monthly income", emiRatio, MaxEMIRatioPercent)), nil
	}

	// Rule 5: acceptable risk above the limit, document-gated.
	return &models.UnderwritingVerdict{
		Decision:        models.DecisionConditionalApproved,
		Reason:          "Amount exceeds pre-approved limit but within acceptable risk",
		CreditScore:     creditScore,
		RequestedAmount: requestedAmount,
		ApprovedAmount:  requestedAmount,
		Conditions:      append([]string(nil), conditionalDocuments...),
		InterestRate:    interestRate,
	}, nil
}

func rejected(creditScore int, requestedAmount int64, reason string) *models.UnderwritingVerdict {
	return &models.UnderwritingVerdict{
		Decision:        models.DecisionRejected,
		Reason:          reason,
		CreditScore:     creditScore,
		RequestedAmount: requestedAmount,
		ApprovedAmount:  0,
	}
}
