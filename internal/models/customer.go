package models

import (
	"strings"
	"time"
)

// EmploymentType enumerates supported employment categories.
type EmploymentType string

const (
	EmploymentSalaried     EmploymentType = "Salaried"
	EmploymentSelfEmployed EmploymentType = "Self-Employed"
)

// ProspectIDPrefix marks profiles synthesized from KYC answers rather than
// fetched from the customer store. Prospect profiles go through local
// underwriting; store-backed profiles go through the remote evaluator.
const ProspectIDPrefix = "TEMP-"

// CustomerProfile represents a loan applicant. Immutable once established
// for a conversation.
type CustomerProfile struct {
	CustomerID       string         `json:"customerId" db:"customer_id"`
	Name             string         `json:"name" db:"name"`
	Phone            string         `json:"phone,omitempty" db:"phone"`
	Email            string         `json:"email,omitempty" db:"email"`
	EmploymentType   EmploymentType `json:"employmentType" db:"employment_type"`
	Employer         string         `json:"employer,omitempty" db:"employer"`
	YearsAtJob       int            `json:"yearsAtJob" db:"years_at_job"`
	MonthlyIncome    int64          `json:"monthlyIncome" db:"monthly_income"`
	ExistingEMIs     int64          `json:"existingEmis" db:"existing_emis"`
	PreApprovedLimit int64          `json:"preApprovedLimit" db:"pre_approved_limit"`
	CreatedAt        time.Time      `json:"createdAt,omitempty" db:"created_at"`
}

// IsProspect reports whether the profile was synthesized locally.
func (c *CustomerProfile) IsProspect() bool {
	return strings.HasPrefix(c.CustomerID, ProspectIDPrefix)
}

// CreditRating bands a score into a human-readable label.
type CreditRating string

const (
	RatingExcellent CreditRating = "Excellent"
	RatingGood      CreditRating = "Good"
	RatingFair      CreditRating = "Fair"
	RatingPoor      CreditRating = "Poor"
)

// CreditScoreRecord holds a bureau or locally estimated credit score.
type CreditScoreRecord struct {
	CustomerID string       `json:"customerId" db:"customer_id"`
	Score      int          `json:"score" db:"score"`
	Confidence float64      `json:"confidence" db:"confidence"`
	Rating     CreditRating `json:"rating" db:"rating"`
	FetchedAt  time.Time    `json:"fetchedAt,omitempty" db:"fetched_at"`
}

// RatingForScore maps a score to its band.
func RatingForScore(score int) CreditRating {
	switch {
	case score >= 800:
		return RatingExcellent
	case score >= 700:
		return RatingGood
	case score >= 650:
		return RatingFair
	default:
		return RatingPoor
	}
}

// CustomerRepository defines customer data access.
type CustomerRepository interface {
	FindByPhone(phone string) (*CustomerProfile, error)
	FindByEmail(email string) (*CustomerProfile, error)
	FindByID(customerID string) (*CustomerProfile, error)
	CreditScore(customerID string) (*CreditScoreRecord, error)
}
