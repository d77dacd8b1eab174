package conversation

import (
	"finsync-advisor/internal/models"
	"finsync-advisor/internal/sentiment"
)

// ProspectData accumulates KYC answers for a new prospect. Pointer fields
// distinguish "not asked yet" from a zero answer.
type ProspectData struct {
	Phone          string
	Email          string
	Name           string
	DOB            string
	PAN            string
	Address        string
	EmploymentType models.EmploymentType
	Employer       string
	Income         *int64
	ExistingEMIs   *int64
}

// Complete reports whether enough KYC data is present to proceed.
// ExistingEMIs is collected last, so its presence closes the stage.
func (p *ProspectData) Complete() bool {
	return p != nil && p.ExistingEMIs != nil
}

// Context is the single mutable bag a session owns. It grows monotonically
// over the conversation and is never rolled back except on an explicit
// "start new application." Guards only read it; callers mutate it before
// calling Transition.
type Context struct {
	SessionID    string
	MessageCount int

	// Identification
	Customer       *models.CustomerProfile
	HasContactInfo bool
	Prospect       *ProspectData

	// Loan discussion
	LoanPurpose     string
	RequestedAmount int64
	TenureMonths    int

	// Decisions. Pointers distinguish "not yet evaluated" from a verdict.
	EligibilityPassed *bool
	Affordability     *models.AffordabilityAnalysis
	CreditScore       *models.CreditScoreRecord
	Underwriting      *models.UnderwritingVerdict
	Decision          models.Decision

	// Document verification
	AwaitingDocument  bool
	DocumentVerified  bool
	FinalDecision     models.Decision
	Verification      *models.DocumentVerification

	// Sanction letter
	Letter                  *models.SanctionLetter
	SanctionLetterGenerated bool
	LetterDelivered         bool

	// Advisory signals
	SentimentHistory []sentiment.Result
}

// NewContext returns an empty context for a fresh session.
func NewContext(sessionID string) *Context {
	return &Context{SessionID: sessionID}
}

// Reset clears everything except identity, for an explicit "start new
// application" request.
func (c *Context) Reset() {
	customer := c.Customer
	sessionID := c.SessionID
	*c = Context{
		SessionID:      sessionID,
		Customer:       customer,
		HasContactInfo: c.HasContactInfo,
	}
}

// SetEligibility records the affordability gate outcome.
func (c *Context) SetEligibility(passed bool) {
	c.EligibilityPassed = &passed
}
