package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finsync-advisor/internal/affordability"
	"finsync-advisor/internal/common/metrics"
	"finsync-advisor/internal/conversation"
	"finsync-advisor/internal/credit"
	"finsync-advisor/internal/finance"
	"finsync-advisor/internal/models"
	"finsync-advisor/internal/sanction"
	"finsync-advisor/internal/underwriting"
)

// underwrite runs the affordability gate and then the decision rules,
// steering the machine to the matching branch.
func (e *Engine) underwrite(ctx context.Context, t *turn) string {
	c := t.convCtx

	if reply, ok := e.checkCatalog(ctx, t); !ok {
		return reply
	}

	score := e.resolveScore(ctx, t)
	rate := finance.InterestRateForScore(score.Score)

	analysis, err := affordability.Analyze(affordability.Input{
		MonthlyIncome:     c.Customer.MonthlyIncome,
		ExistingEMIs:      c.Customer.ExistingEMIs,
		RequestedAmount:   c.RequestedAmount,
		AnnualRatePercent: rate,
		TenureMonths:      c.TenureMonths,
	})
	if err != nil {
		e.log.Error("affordability analysis failed", map[string]interface{}{
			"sessionId": c.SessionID,
			"error":     err.Error(),
		})
		return "I ran into a problem checking affordability for that amount. Could you restate the amount and tenure you have in mind?"
	}

	c.Affordability = analysis
	c.SetEligibility(analysis.CanAfford)

	if !analysis.CanAfford {
		// Back to amount discussion for a revised figure. The stale ask is
		// cleared so the next amount mentioned is captured.
		requested := c.RequestedAmount
		c.RequestedAmount = 0
		c.EligibilityPassed = nil
		e.forceTo(ctx, t, conversation.StateAmountDiscussion)
		return fmt.Sprintf(
			"You're requesting ₹%s, but let's make sure the EMI stays comfortable first.\n\n%s%s\n\nWould you like to proceed with one of the alternative amounts? Just let me know which option works best for you!",
			sanction.FormatINR(requested), analysis.Message, formatOptions(analysis.AlternativeOptions),
		)
	}

	e.advance(ctx, t)

	verdict := e.evaluate(ctx, t, score)
	c.Underwriting = verdict
	c.Decision = verdict.Decision

	e.auditor.record(ctx, AuditEvent{
		SessionID: c.SessionID,
		Kind:      AuditDecision,
		Decision:  string(verdict.Decision),
		Details: map[string]interface{}{
			"creditScore":     score.Score,
			"requestedAmount": c.RequestedAmount,
			"approvedAmount":  verdict.ApprovedAmount,
		},
	})
	e.notifyDecision(ctx, t, verdict)

	switch verdict.Decision {
	case models.DecisionInstantApproved:
		return e.approve(ctx, t, verdict, score)

	case models.DecisionConditionalApproved:
		c.AwaitingDocument = true
		e.forceTo(ctx, t, conversation.StateConditionalApproval)
		e.advance(ctx, t)
		return fmt.Sprintf(
			"Our Underwriting Agent has reviewed your application:\n\n%s\n\nRequired Documents:\n%s\n\nPlease upload your salary slip to proceed with verification.",
			verdict.Reason, bulletList(verdict.Conditions),
		)

	default:
		e.forceTo(ctx, t, conversation.StateRejection)
		return fmt.Sprintf(
			"Our Underwriting Agent has reviewed your application:\n\n%s\n\nWould you like to explore alternative loan amounts or improve your eligibility?",
			verdict.Reason,
		)
	}
}

// resolveScore returns the working credit score, fetching or estimating
// it if the context does not carry one yet.
// checkCatalog verifies the request falls inside at least one offered
// product. A miss sends the conversation back to amount discussion.
func (e *Engine) checkCatalog(ctx context.Context, t *turn) (string, bool) {
	if e.catalog == nil {
		return "", true
	}
	c := t.convCtx
	if matches := e.catalog.Match(c.RequestedAmount, c.TenureMonths); len(matches) > 0 {
		return "", true
	}

	var minAmount, maxAmount int64
	for _, p := range e.catalog.Products() {
		if minAmount == 0 || p.MinAmount < minAmount {
			minAmount = p.MinAmount
		}
		if p.MaxAmount > maxAmount {
			maxAmount = p.MaxAmount
		}
	}

	requested := c.RequestedAmount
	tenure := c.TenureMonths
	c.RequestedAmount = 0
	c.EligibilityPassed = nil
	e.forceTo(ctx, t, conversation.StateAmountDiscussion)
	return fmt.Sprintf(
		"I'm sorry, ₹%s over %d months falls outside the loan products we currently offer. Our personal loans range from ₹%s to ₹%s. Could you share a revised amount and tenure?",
		sanction.FormatINR(requested), tenure,
		sanction.FormatINR(minAmount), sanction.FormatINR(maxAmount),
	), false
}

func (e *Engine) resolveScore(ctx context.Context, t *turn) *models.CreditScoreRecord {
	c := t.convCtx
	if c.CreditScore != nil {
		return c.CreditScore
	}
	if c.Customer.IsProspect() {
		record, err := e.estimator.Estimate(credit.Input{
			CustomerID:     c.Customer.CustomerID,
			MonthlyIncome:  c.Customer.MonthlyIncome,
			ExistingEMIs:   c.Customer.ExistingEMIs,
			EmploymentType: c.Customer.EmploymentType,
		})
		if err == nil {
			c.CreditScore = record
			return record
		}
		e.log.Warn("estimator fell back to default score", map[string]interface{}{
			"sessionId": c.SessionID,
			"error":     err.Error(),
		})
		fallback := &models.CreditScoreRecord{
			CustomerID: c.Customer.CustomerID,
			Score:      e.cfg.FallbackCreditScore,
			Rating:     models.RatingForScore(e.cfg.FallbackCreditScore),
			FetchedAt:  time.Now().UTC(),
		}
		c.CreditScore = fallback
		return fallback
	}
	record := e.bureauScore(ctx, c.Customer.CustomerID)
	c.CreditScore = record
	return record
}

// evaluate picks remote evaluation for known customers when configured,
// falling back to the local rules on any remote failure. Prospects are
// always decided locally.
func (e *Engine) evaluate(ctx context.Context, t *turn, score *models.CreditScoreRecord) *models.UnderwritingVerdict {
	c := t.convCtx

	if e.remote != nil && !c.Customer.IsProspect() {
		verdict, err := e.remote.Evaluate(ctx, c.Customer, score.Score, c.RequestedAmount)
		if err == nil {
			metrics.UnderwritingVerdicts.WithLabelValues(string(verdict.Decision), "remote").Inc()
			return verdict
		}
		e.log.Warn("remote underwriting failed, deciding locally", map[string]interface{}{
			"sessionId": c.SessionID,
			"error":     err.Error(),
		})
	}

	verdict, err := underwriting.Evaluate(c.Customer, score.Score, c.RequestedAmount)
	if err != nil {
		// Invalid request data. Treat as a rejection with the reason.
		verdict = &models.UnderwritingVerdict{
			Decision: models.DecisionRejected,
			Reason:   "We could not evaluate this request: " + err.Error(),
		}
	}
	metrics.UnderwritingVerdicts.WithLabelValues(string(verdict.Decision), "local").Inc()
	return verdict
}

// approve composes the sanction letter, routes the machine through final
// approval, and kicks off delivery and the schedule export.
func (e *Engine) approve(ctx context.Context, t *turn, verdict *models.UnderwritingVerdict, score *models.CreditScoreRecord) string {
	c := t.convCtx
	rate := finance.InterestRateForScore(score.Score)
	emi, err := finance.EMI(float64(verdict.ApprovedAmount), rate, c.TenureMonths)
	if err != nil {
		e.log.Error("EMI computation failed", map[string]interface{}{
			"sessionId": c.SessionID,
			"error":     err.Error(),
		})
		return "Your loan is approved, but I hit a snag preparing the sanction letter. Our team will share it shortly."
	}

	terms := sanction.Terms{
		Customer:     c.Customer,
		Amount:       verdict.ApprovedAmount,
		InterestRate: rate,
		TenureMonths: c.TenureMonths,
		EMI:          emi,
		LetterNumber: sanction.NewLetterNumber(c.Customer.CustomerID),
		IssuedAt:     time.Now().UTC(),
	}

	letter, err := sanction.Compose(terms)
	if err != nil {
		e.log.Error("sanction letter composition failed", map[string]interface{}{
			"sessionId": c.SessionID,
			"error":     err.Error(),
		})
		return "Your loan is approved, but I hit a snag preparing the sanction letter. Our team will share it shortly."
	}

	c.Letter = letter
	c.SanctionLetterGenerated = true
	e.forceTo(ctx, t, conversation.StateFinalApproval)
	e.advance(ctx, t)

	e.deliverLetter(ctx, t, letter)
	e.exportSchedule(terms)

	validUntil := terms.IssuedAt.AddDate(0, 0, 15).Format("02/01/2006")
	return fmt.Sprintf(
		"CONGRATULATIONS! Your loan has been approved.\n\n%s\n\nHere's your official Sanction Letter:\n\n%s\n\n"+
			"Next Steps:\n- Review the sanction letter carefully\n- Accept the offer to proceed\n- Complete final KYC documentation\n- Funds will be disbursed within 48 hours\n\n"+
			"This is a limited-time offer valid until %s. The complete amortization schedule will be emailed separately.",
		verdict.Reason, letter.Body, validUntil,
	)
}

func (e *Engine) deliverLetter(ctx context.Context, t *turn, letter *models.SanctionLetter) {
	if e.notifier == nil || t.convCtx.Customer.Email == "" {
		return
	}
	if err := e.notifier.SendSanctionLetter(ctx, t.convCtx.Customer.Email, letter); err != nil {
		e.log.Warn("letter delivery failed", map[string]interface{}{
			"sessionId": t.convCtx.SessionID,
			"error":     err.Error(),
		})
		e.auditor.record(ctx, AuditEvent{
			SessionID: t.convCtx.SessionID,
			Kind:      AuditDelivery,
			Details:   map[string]interface{}{"channel": "email", "delivered": false},
		})
		return
	}
	t.convCtx.LetterDelivered = true
	e.advance(ctx, t)
	e.auditor.record(ctx, AuditEvent{
		SessionID: t.convCtx.SessionID,
		Kind:      AuditDelivery,
		Details:   map[string]interface{}{"channel": "email", "delivered": true},
	})
}

func (e *Engine) exportSchedule(terms sanction.Terms) {
	if e.exporter == nil {
		return
	}
	path, err := e.exporter.WriteSchedule(terms)
	if err != nil {
		e.log.Warn("schedule export failed", map[string]interface{}{
			"letterNumber": terms.LetterNumber,
			"error":        err.Error(),
		})
		return
	}
	e.log.Info("schedule workbook ready", map[string]interface{}{
		"letterNumber": terms.LetterNumber,
		"path":         path,
	})
}

func (e *Engine) notifyDecision(ctx context.Context, t *turn, verdict *models.UnderwritingVerdict) {
	if e.notifier == nil || t.convCtx.Customer.Phone == "" {
		return
	}
	if err := e.notifier.SendDecisionSMS(ctx, t.convCtx.Customer.Phone, verdict); err != nil {
		e.log.Warn("decision SMS failed", map[string]interface{}{
			"sessionId": t.convCtx.SessionID,
			"error":     err.Error(),
		})
	}
}

// verifyDocument checks an uploaded salary slip against the declared
// income, applies the verification bonus, and re-runs the decision.
func (e *Engine) verifyDocument(ctx context.Context, t *turn, documentText string) string {
	c := t.convCtx

	if c.Customer == nil || !c.AwaitingDocument {
		return "I don't have a pending document request on this application. Could you tell me what you'd like to do next?"
	}

	slip := e.docs.ExtractSalarySlip(documentText)
	verification := e.docs.Verify(c.Customer.MonthlyIncome, slip)
	c.Verification = verification

	if !slip.HasIncome() {
		return "I couldn't read an income figure from that document. Please upload a clearer copy of your latest salary slip."
	}

	if verification.Mismatch {
		return fmt.Sprintf(
			"Salary Slip Analysis Complete.\n\n- Declared Monthly Income: ₹%s\n- Verified Income from Slip: ₹%s\n\n"+
				"Income mismatch detected. The income on your salary slip differs significantly from what was declared. Please provide updated information.",
			sanction.FormatINR(verification.DeclaredIncome), sanction.FormatINR(verification.ExtractedIncome),
		)
	}

	// Verified. Prospects earn the documentation bonus before re-scoring.
	score := e.resolveScore(ctx, t)
	if c.Customer.IsProspect() {
		bonus := credit.WithVerificationBonus(*score)
		score = &bonus
		c.CreditScore = score
	}

	verdict := e.evaluate(ctx, t, score)
	c.Underwriting = verdict
	c.DocumentVerified = true

	e.auditor.record(ctx, AuditEvent{
		SessionID: c.SessionID,
		Kind:      AuditDecision,
		Decision:  string(verdict.Decision),
		Details: map[string]interface{}{
			"creditScore": score.Score,
			"afterUpload": true,
		},
	})

	if verdict.Approved() {
		c.FinalDecision = verdict.Decision
		e.advance(ctx, t)
		preface := "Income verification: PASSED\nEmployment status: CONFIRMED\nDocument authenticity: VERIFIED\n\n"
		return preface + e.approve(ctx, t, verdict, score)
	}

	c.FinalDecision = models.DecisionRejected
	e.advance(ctx, t)
	return fmt.Sprintf(
		"After reviewing your submitted documents and re-evaluating your application:\n\n%s\n\n"+
			"We're unable to approve the requested amount at this time. Would you like to explore alternative loan amounts or discuss ways to improve your eligibility?",
		verdict.Reason,
	)
}

func formatOptions(options []models.LoanOption) string {
	if len(options) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nAlternative options:")
	for i, opt := range options {
		fmt.Fprintf(&b, "\n%d. ₹%s over %d months at ₹%s/month",
			i+1, sanction.FormatINR(opt.Amount), opt.TenureMonths,
			sanction.FormatINR(finance.RoundCurrency(opt.EMI)))
	}
	return b.String()
}

func bulletList(items []string) string {
	bullets := make([]string, len(items))
	for i, item := range items {
		bullets[i] = "- " + item
	}
	return strings.Join(bullets, "\n")
}
