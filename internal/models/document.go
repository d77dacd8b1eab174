package models

import "time"

// SalarySlipData holds fields extracted from an uploaded salary document.
// Any field may be absent when extraction fails for it.
type SalarySlipData struct {
	EmployeeName  string `json:"employeeName,omitempty"`
	EmployerName  string `json:"employerName,omitempty"`
	MonthlyIncome int64  `json:"monthlyIncome,omitempty"`
	PayPeriod     string `json:"payPeriod,omitempty"`
}

// HasIncome reports whether an income figure was extracted.
func (s *SalarySlipData) HasIncome() bool {
	return s != nil && s.MonthlyIncome > 0
}

// DocumentVerification records the outcome of checking an uploaded document
// against the declared profile.
type DocumentVerification struct {
	Verified        bool      `json:"verified"`
	DeclaredIncome  int64     `json:"declaredIncome"`
	ExtractedIncome int64     `json:"extractedIncome"`
	Mismatch        bool      `json:"mismatch"`
	Notes           string    `json:"notes,omitempty"`
	VerifiedAt      time.Time `json:"verifiedAt,omitempty"`
}

// SanctionLetter is the composed approval document plus delivery metadata.
type SanctionLetter struct {
	LetterNumber string    `json:"letterNumber"`
	CustomerID   string    `json:"customerId"`
	Body         string    `json:"body"`
	GeneratedAt  time.Time `json:"generatedAt"`
}
