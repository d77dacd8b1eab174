// Package docs extracts salary figures from uploaded documents and checks
// them against the declared profile.
package docs

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/models"
)

// DefaultIncomeTolerance is the allowed relative gap between declared and
// extracted income before a mismatch is flagged.
const DefaultIncomeTolerance = 0.20

var (
	employerRe = regexp.MustCompile(`(?i)(?:company|employer|organization)[ \t:]*([A-Za-z&. ]+)`)
	nameRe     = regexp.MustCompile(`(?i)(?:employee name|name)[ \t:]*([A-Za-z. ]+)`)
	grossRe    = regexp.MustCompile(`(?i)(?:gross salary|gross pay|total earnings|gross)[\s:]*(?:Rs\.?|INR|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`)
	periodRe   = regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)[\s-]*([0-9]{4})`)
)

// Analyzer parses OCR text output. The OCR step itself is an external
// collaborator; this package owns only the extraction and the verification
// contract.
type Analyzer struct {
	tolerance float64
	log       logger.Logger
}

func NewAnalyzer(tolerance float64, log logger.Logger) *Analyzer {
	if tolerance <= 0 {
		tolerance = DefaultIncomeTolerance
	}
	return &Analyzer{tolerance: tolerance, log: log}
}

// ExtractSalarySlip pulls employer, employee, income, and pay period out
// of raw document text. Absent fields stay zero-valued.
func (a *Analyzer) ExtractSalarySlip(text string) *models.SalarySlipData {
	data := &models.SalarySlipData{}

	if m := employerRe.FindStringSubmatch(text); m != nil {
		data.EmployerName = strings.TrimSpace(m[1])
	}
	if m := nameRe.FindStringSubmatch(text); m != nil {
		data.EmployeeName = strings.TrimSpace(m[1])
	}
	if m := grossRe.FindStringSubmatch(text); m != nil {
		data.MonthlyIncome = parseAmount(m[1])
	}
	if m := periodRe.FindStringSubmatch(text); m != nil {
		data.PayPeriod = m[1] + " " + m[2]
	}

	return data
}

// Verify checks extracted income against the declared figure. Within
// tolerance counts as verified; outside flags a mismatch that halts the
// approval pipeline pending new input. A mismatch is a business outcome,
// not an error.
func (a *Analyzer) Verify(declared int64, slip *models.SalarySlipData) *models.DocumentVerification {
	v := &models.DocumentVerification{
		DeclaredIncome: declared,
		VerifiedAt:     time.Now().UTC(),
	}

	if !slip.HasIncome() {
		v.Notes = "Could not extract an income figure from the document"
		return v
	}
	v.ExtractedIncome = slip.MonthlyIncome

	if declared <= 0 {
		v.Notes = "No declared income to compare against"
		return v
	}

	gap := math.Abs(float64(slip.MonthlyIncome)-float64(declared)) / float64(declared)
	if gap <= a.tolerance {
		v.Verified = true
		return v
	}

	v.Mismatch = true
	v.Notes = "Extracted income differs from the declared income beyond tolerance"
	a.log.Warn("document income mismatch", map[string]interface{}{
		"declared":  declared,
		"extracted": slip.MonthlyIncome,
	})
	return v
}

func parseAmount(s string) int64 {
	cleaned := strings.ReplaceAll(s, ",", "")
	if dot := strings.Index(cleaned, "."); dot >= 0 {
		cleaned = cleaned[:dot]
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
