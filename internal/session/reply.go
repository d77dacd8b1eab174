package session

import (
	"context"

	"finsync-advisor/internal/conversation"
	"finsync-advisor/internal/conversation/spin"
	"finsync-advisor/internal/sanction"
	"finsync-advisor/internal/services/llm"
)

// advisorReply produces the turn's reply when no pipeline stage claimed
// it. The state template is always computed first; the phraser only
// rewrites it, so a model failure degrades to the template.
func (e *Engine) advisorReply(ctx context.Context, t *turn, userInput string) string {
	template := e.templateReply(t)
	if e.phraser == nil {
		return template
	}

	score := 0
	if t.convCtx.CreditScore != nil {
		score = t.convCtx.CreditScore.Score
	}
	system := llm.ContextualPrompt(t.convCtx.Customer, score) +
		"\n\n" + spin.StagePrompt(t.spinEng.Stage(), customerSummary(t.convCtx)) +
		"\n\n" + t.mood.TonePrompt() +
		"\n\nRespond to the customer's latest message. If unsure, you may use this suggested reply: " + template

	reply, err := e.phraser.Generate(ctx, system, userInput)
	if err != nil {
		e.log.Warn("phrasing degraded to template", map[string]interface{}{
			"sessionId": t.convCtx.SessionID,
			"error":     err.Error(),
		})
		return template
	}
	return reply
}

func (e *Engine) templateReply(t *turn) string {
	c := t.convCtx

	switch t.machine.Current() {
	case conversation.StateInitial, conversation.StateGreeting:
		return "Hello! Welcome to FinSync AI, your trusted partner for instant personal loans.\n\n" +
			"We offer:\n- Instant approval in minutes\n- Competitive interest rates from 10.5% p.a.\n- Flexible tenures from 12 to 60 months\n\n" +
			"How can I help you today?"

	case conversation.StateIdentification:
		return "To get started, may I have your registered mobile number or email? " +
			"I'll check if you have any pre-approved offers waiting."

	case conversation.StateKYCCollection:
		return "Let's continue with your KYC details so I can fetch your personalized offer."

	case conversation.StateLoanInquiry:
		if q := t.spinEng.NextQuestion(spinFacts(c)); q != nil {
			return q.Text
		}
		return "What would you like to use the loan for? We cover education, medical needs, travel, weddings, business, and more."

	case conversation.StateAmountDiscussion:
		return "How much would you like to borrow, and over what tenure? " +
			"For example: \"I need 5 lakhs for 3 years\"."

	case conversation.StateEligibilityCheck, conversation.StateUnderwriting:
		return "Give me just a moment while our Underwriting Agent evaluates your application..."

	case conversation.StateConditionalApproval, conversation.StateDocumentUpload:
		return "Please upload your latest salary slip so our Verification Agent can complete the review."

	case conversation.StateFinalApproval, conversation.StateSanctionLetter:
		if c.Letter != nil {
			return "Your sanction letter " + c.Letter.LetterNumber + " is ready. " +
				"Review the terms and accept within 15 days to proceed with disbursement."
		}
		return "Your approval is being finalized. The sanction letter will be with you shortly."

	case conversation.StateRejection:
		reply := "I understand this isn't the outcome you hoped for. "
		if c.Affordability != nil && len(c.Affordability.AlternativeOptions) > 0 {
			return reply + "Here are structures that could work instead:" +
				formatOptions(c.Affordability.AlternativeOptions) +
				"\n\nSay \"start new application\" any time to try a different amount."
		}
		return reply + "You can say \"start new application\" to try a different amount, or ask me how to improve your eligibility."

	default: // Farewell
		return "Thank you for choosing FinSync AI. If you need anything else about your loan, just message me here. Have a great day!"
	}
}

// spinFacts projects the conversation context onto the discovery gates.
func spinFacts(c *conversation.Context) spin.Facts {
	facts := spin.Facts{
		LoanPurpose:     c.LoanPurpose,
		RequestedAmount: c.RequestedAmount,
	}
	if c.Customer != nil {
		income := c.Customer.MonthlyIncome
		emis := c.Customer.ExistingEMIs
		facts.Income = &income
		facts.ExistingEMIs = &emis
		facts.Employer = c.Customer.Employer
	}
	facts.UrgencyKnown = c.LoanPurpose != ""
	facts.ConsequencesCovered = c.RequestedAmount > 0
	return facts
}

func customerSummary(c *conversation.Context) string {
	if c.Customer == nil {
		return "Unidentified visitor, no profile on file yet."
	}
	return c.Customer.Name + ", income ₹" + sanction.FormatINR(c.Customer.MonthlyIncome) +
		"/month, pre-approved limit ₹" + sanction.FormatINR(c.Customer.PreApprovedLimit)
}
