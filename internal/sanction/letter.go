// Package sanction composes the approval letter text. Pure string work;
// rendering to PDF and delivery belong to the boundary collaborators.
package sanction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finsync-advisor/internal/finance"
	"finsync-advisor/internal/models"
)

const (
	// processingFeeRate is charged on the sanctioned principal.
	processingFeeRate = 0.02
	// validityDays is how long the sanction stays open.
	validityDays = 15
	// previewMonths caps the amortization preview in the letter body. The
	// full schedule is exported and emailed separately.
	previewMonths = 6

	baseRatePercent = 12.5
)

var divider = strings.Repeat("━", 61)

// Terms are the sanctioned loan particulars the composer renders.
type Terms struct {
	Customer     *models.CustomerProfile
	Amount       int64
	InterestRate float64
	TenureMonths int
	EMI          float64
	LetterNumber string
	IssuedAt     time.Time
}

// NewLetterNumber mints a sanction letter reference for a customer.
func NewLetterNumber(customerID string) string {
	return fmt.Sprintf("FSL-%s-%s", customerID, strings.ToUpper(uuid.NewString()[:8]))
}

// Compose renders the full sanction letter. Pure given its input: same
// terms, same text.
func Compose(t Terms) (*models.SanctionLetter, error) {
	if t.Customer == nil {
		return nil, fmt.Errorf("customer is required")
	}
	if t.Amount <= 0 {
		return nil, fmt.Errorf("sanctioned amount must be positive, got %d", t.Amount)
	}
	if t.TenureMonths <= 0 {
		return nil, fmt.Errorf("tenure must be positive, got %d", t.TenureMonths)
	}

	issued := t.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	validUntil := issued.AddDate(0, 0, validityDays)
	firstEMIDate := issued.AddDate(0, 0, 30)

	processingFee := finance.RoundCurrency(float64(t.Amount) * processingFeeRate)
	totalRepayment := t.EMI * float64(t.TenureMonths)
	totalInterest := totalRepayment - float64(t.Amount)

	schedule, err := finance.Schedule(float64(t.Amount), t.InterestRate, t.TenureMonths, previewMonths)
	if err != nil {
		return nil, err
	}

	tier := pricingTier(t.InterestRate)
	rateDiscount := baseRatePercent - t.InterestRate

	var b strings.Builder
	b.WriteString("╔═══════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║                   LOAN SANCTION LETTER                        ║\n")
	b.WriteString("║                   FinSync AI - NBFC Division                  ║\n")
	b.WriteString("╚═══════════════════════════════════════════════════════════════╝\n\n")

	fmt.Fprintf(&b, "Sanction Letter No: %s\n", t.LetterNumber)
	fmt.Fprintf(&b, "Date: %s\n", issued.Format("02/01/2006"))
	fmt.Fprintf(&b, "Pricing Tier: %s (You saved %.2f%% vs base rate!)\n\n", tier, rateDiscount)

	fmt.Fprintf(&b, "Dear %s,\n\n", t.Customer.Name)
	b.WriteString("We are pleased to inform you that your personal loan application has been\nAPPROVED by FinSync AI's automated underwriting system.\n\n")

	b.WriteString(divider + "\n\nLOAN DETAILS:\n" + divider + "\n\n")
	fmt.Fprintf(&b, "Borrower Name:           %s\n", t.Customer.Name)
	fmt.Fprintf(&b, "Customer ID:             %s\n", t.Customer.CustomerID)
	fmt.Fprintf(&b, "Loan Amount Sanctioned:  ₹%s (Rupees %s Only)\n", FormatINR(t.Amount), AmountInWords(t.Amount))
	fmt.Fprintf(&b, "Interest Rate:           %.1f%% per annum%s\n", t.InterestRate, bestRateTag(tier))
	fmt.Fprintf(&b, "Loan Tenure:             %d months (%d years)\n", t.TenureMonths, (t.TenureMonths+6)/12)
	fmt.Fprintf(&b, "Monthly EMI:             ₹%s\n", FormatINR(finance.RoundCurrency(t.EMI)))
	fmt.Fprintf(&b, "First EMI Date:          %s\n\n", firstEMIDate.Format("02/01/2006"))

	b.WriteString(divider + "\n\nFINANCIAL BREAKDOWN:\n" + divider + "\n\n")
	fmt.Fprintf(&b, "Principal Amount:        ₹%s\n", FormatINR(t.Amount))
	fmt.Fprintf(&b, "Total Interest:          ₹%s\n", FormatINR(finance.RoundCurrency(totalInterest)))
	fmt.Fprintf(&b, "Processing Fee (2%%):     ₹%s\n", FormatINR(processingFee))
	fmt.Fprintf(&b, "Total Repayment:         ₹%s\n\n", FormatINR(finance.RoundCurrency(totalRepayment)))

	b.WriteString(divider + "\n\nEMI AMORTIZATION SCHEDULE (First 6 Months):\n" + divider + "\n\n")
	for _, row := range schedule {
		emiDate := issued.AddDate(0, row.Month, 0)
		fmt.Fprintf(&b, "EMI %d  %s  ₹%s  Principal: ₹%s  Interest: ₹%s\n",
			row.Month,
			emiDate.Format("02 Jan 2006"),
			FormatINR(finance.RoundCurrency(row.EMI)),
			FormatINR(finance.RoundCurrency(row.Principal)),
			FormatINR(finance.RoundCurrency(row.Interest)),
		)
	}
	b.WriteString("\nNote: Above schedule shows principal vs interest breakdown for early EMIs.\nComplete amortization schedule will be emailed separately.\n\n")

	b.WriteString(divider + "\n\nTERMS & CONDITIONS:\n" + divider + "\n\n")
	fmt.Fprintf(&b, "1. This sanction is valid until: %s\n", validUntil.Format("02/01/2006"))
	b.WriteString("2. The loan will be disbursed within 48 hours of document submission\n")
	b.WriteString("3. First EMI will be due 30 days after disbursement\n")
	b.WriteString("4. Pre-payment allowed after 6 months with 2% penalty\n")
	b.WriteString("5. Late payment charges: 2% per month on overdue amount\n")
	b.WriteString("6. All terms subject to final documentation and verification\n\n")

	b.WriteString(divider + "\n\nNEXT STEPS:\n" + divider + "\n\n")
	b.WriteString("> Submit signed sanction letter\n")
	b.WriteString("> Complete final KYC documentation\n")
	b.WriteString("> Provide bank account details for disbursement\n")
	b.WriteString("> Sign loan agreement\n\n")

	b.WriteString(divider + "\n\n")
	b.WriteString("This is a system-generated sanction letter processed by FinSync AI's\nmulti-agent underwriting system.\n\n")
	b.WriteString("For queries, contact: support@finsyncai.com | 1800-XXX-XXXX\n\n")
	b.WriteString("Congratulations on your loan approval!\n\n")
	b.WriteString(divider + "\n\n")
	b.WriteString("Authorized by: FinSync AI Underwriting System\n")
	b.WriteString("Digital Signature: VERIFIED\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", issued.Format(time.RFC3339))

	return &models.SanctionLetter{
		LetterNumber: t.LetterNumber,
		CustomerID:   t.Customer.CustomerID,
		Body:         b.String(),
		GeneratedAt:  issued,
	}, nil
}

// pricingTier buckets the offered rate against the base rate.
func pricingTier(rate float64) string {
	switch {
	case rate <= 10.5:
		return "Premium"
	case rate <= 11.5:
		return "Gold"
	case rate <= 12.5:
		return "Silver"
	default:
		return "Standard"
	}
}

func bestRateTag(tier string) string {
	if tier == "Premium" {
		return " (Best Rate!)"
	}
	return ""
}

// FormatINR groups digits Indian style: last three, then pairs.
func FormatINR(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		s = strings.Join(append(groups, tail), ",")
	}
	if neg {
		return "-" + s
	}
	return s
}
