package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finsync-advisor/internal/credit"
	"finsync-advisor/internal/finance"
	"finsync-advisor/internal/models"
	"finsync-advisor/internal/sanction"
)

// prospectLimitMultiple is the conservative pre-approved limit granted to
// a brand-new prospect: three months of income.
const prospectLimitMultiple = 3

// collectKYC runs the staged prospect interview. The stage is simply the
// first field still missing, so a failed validation re-asks the same
// question.
func (e *Engine) collectKYC(ctx context.Context, t *turn, userInput string) string {
	p := t.convCtx.Prospect

	switch {
	case p.Name == "":
		p.Name = strings.TrimSpace(userInput)
		return fmt.Sprintf("Thank you, %s! Next, I need your PAN Card number for identity verification.\n\nPlease enter your 10-character PAN number (e.g., ABCDE1234F):", p.Name)

	case p.PAN == "":
		pan := parsePAN(userInput)
		if pan == "" {
			return "I couldn't validate that PAN number. Please enter a valid 10-character PAN (format: ABCDE1234F):"
		}
		p.PAN = pan
		return "PAN verified! Now, what is your Date of Birth?\n\nPlease provide in DD/MM/YYYY format:"

	case p.DOB == "":
		dob := parseDOB(userInput)
		if dob == "" {
			return "Please provide date of birth in DD/MM/YYYY format:"
		}
		p.DOB = dob
		return "Thank you! Now, please provide your current residential address:"

	case p.Address == "":
		p.Address = strings.TrimSpace(userInput)
		return "Got it! Are you currently:\n1. Salaried (working for a company)\n2. Self-Employed (business owner/freelancer)\n\nPlease type \"Salaried\" or \"Self-Employed\":"

	case p.EmploymentType == "":
		if strings.Contains(strings.ToLower(userInput), "self") {
			p.EmploymentType = models.EmploymentSelfEmployed
			return "Excellent! What is your business name?"
		}
		p.EmploymentType = models.EmploymentSalaried
		return "Great! Which company do you work for?"

	case p.Employer == "":
		p.Employer = strings.TrimSpace(userInput)
		return "Thank you! What is your monthly income (in rupees)?\n\nPlease enter the amount (e.g., 50000):"

	case p.Income == nil:
		income, ok := parseNumber(userInput)
		if !ok || income <= 0 {
			return "Please enter a valid monthly income amount in rupees:"
		}
		p.Income = &income
		return "Noted! Do you have any existing loan EMIs?\n\nPlease enter your total monthly EMI amount (or type \"0\" if none):"

	default: // ExistingEMIs
		emis, ok := parseNumber(userInput)
		if !ok {
			return "Please enter your total monthly EMI amount (or 0 if none):"
		}
		p.ExistingEMIs = &emis
		return e.completeKYC(ctx, t)
	}
}

// completeKYC turns the interview answers into a provisional customer
// profile with an estimated score and a conservative pre-approved limit.
func (e *Engine) completeKYC(ctx context.Context, t *turn) string {
	p := t.convCtx.Prospect
	income := *p.Income
	emis := *p.ExistingEMIs

	customer := &models.CustomerProfile{
		CustomerID:       fmt.Sprintf("%s%d", models.ProspectIDPrefix, time.Now().UnixMilli()),
		Name:             p.Name,
		Phone:            p.Phone,
		Email:            p.Email,
		EmploymentType:   p.EmploymentType,
		Employer:         p.Employer,
		MonthlyIncome:    income,
		ExistingEMIs:     emis,
		PreApprovedLimit: income * prospectLimitMultiple,
		CreatedAt:        time.Now().UTC(),
	}

	record, err := e.estimator.Estimate(credit.Input{
		CustomerID:     customer.CustomerID,
		MonthlyIncome:  income,
		ExistingEMIs:   emis,
		EmploymentType: p.EmploymentType,
		PANVerified:    p.PAN != "",
	})
	if err != nil {
		// Only reachable with non-positive income, which the interview
		// already rejects.
		e.log.Error("score estimation failed", map[string]interface{}{
			"sessionId": t.convCtx.SessionID,
			"error":     err.Error(),
		})
		p.Income = nil
		p.ExistingEMIs = nil
		return "Something looked off with the income figure. What is your monthly income in rupees?"
	}

	t.convCtx.Customer = customer
	t.convCtx.CreditScore = record
	e.advance(ctx, t)

	return fmt.Sprintf(
		"Perfect! I've collected all your KYC details. Let me quickly fetch your credit score from the bureau...\n\n"+
			"--- Credit Bureau Check Complete ---\n\n"+
			"Your Profile Summary:\n- Name: %s\n- PAN: %s\n- Employment: %s at %s\n- Monthly Income: ₹%s\n"+
			"- Credit Score: %d/900\n- Pre-approved Limit: ₹%s\n- Interest Rate: %.1f%% per annum\n\n"+
			"Great news! Based on your profile, you're eligible for a personal loan. How much would you like to borrow?",
		customer.Name, p.PAN, customer.EmploymentType, customer.Employer,
		sanction.FormatINR(income), record.Score, sanction.FormatINR(customer.PreApprovedLimit),
		finance.InterestRateForScore(record.Score),
	)
}
