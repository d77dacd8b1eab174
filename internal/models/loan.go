package models

// DefaultTenureMonths applies when the applicant did not state a tenure.
const DefaultTenureMonths = 36

// LoanRequest captures what the applicant asked for.
type LoanRequest struct {
	RequestedAmount int64  `json:"requestedAmount"`
	TenureMonths    int    `json:"tenureMonths,omitempty"`
	Purpose         string `json:"purpose,omitempty"`
}

// Tenure returns the requested tenure, defaulting when unset.
func (r LoanRequest) Tenure() int {
	if r.TenureMonths <= 0 {
		return DefaultTenureMonths
	}
	return r.TenureMonths
}

// Decision enumerates underwriting outcomes.
type Decision string

const (
	DecisionInstantApproved     Decision = "INSTANT_APPROVED"
	DecisionConditionalApproved Decision = "CONDITIONAL_APPROVED"
	DecisionRejected            Decision = "REJECTED"
)

// UnderwritingVerdict is the outcome of the underwriting decision tree.
type UnderwritingVerdict struct {
	Decision        Decision `json:"decision"`
	Reason          string   `json:"reason"`
	CreditScore     int      `json:"creditScore"`
	RequestedAmount int64    `json:"requestedAmount"`
	ApprovedAmount  int64    `json:"approvedAmount"` // 0 when rejected
	Conditions      []string `json:"conditions,omitempty"`
	InterestRate    float64  `json:"interestRate,omitempty"`
}

// Approved reports whether the verdict permits the loan to proceed.
func (v *UnderwritingVerdict) Approved() bool {
	return v.Decision == DecisionInstantApproved || v.Decision == DecisionConditionalApproved
}

// LoanOption is one alternative structure offered when the requested loan
// fails or strains the affordability policy.
type LoanOption struct {
	Amount        int64   `json:"amount"`
	TenureMonths  int     `json:"tenureMonths"`
	EMI           float64 `json:"emi"`
	TotalInterest float64 `json:"totalInterest"`
}

// AffordabilityAnalysis is the analyzer's verdict on a requested loan.
type AffordabilityAnalysis struct {
	CanAfford           bool         `json:"canAfford"`
	RequestedEMI        float64      `json:"requestedEmi"`
	MaxAffordableAmount float64      `json:"maxAffordableAmount"`
	MaxAffordableEMI    float64      `json:"maxAffordableEmi"`
	EMIToIncomeRatio    float64      `json:"emiToIncomeRatio"`
	Message             string       `json:"message"`
	AlternativeOptions  []LoanOption `json:"alternativeOptions,omitempty"`
}

// LoanProduct is one entry in the product catalog.
type LoanProduct struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	MinAmount     int64   `json:"minAmount"`
	MaxAmount     int64   `json:"maxAmount"`
	MinTenure     int     `json:"minTenure"`
	MaxTenure     int     `json:"maxTenure"`
	BaseRate      float64 `json:"baseRate"`
	ProcessingFee float64 `json:"processingFee"` // fraction of principal
	Description   string  `json:"description,omitempty"`
}
