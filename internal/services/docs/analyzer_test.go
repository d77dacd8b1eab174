package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/models"
)

func newAnalyzer() *Analyzer {
	return NewAnalyzer(0, logger.NewZapAdapter(zap.NewNop()))
}

const sampleSlip = `
Acme Industries Pvt Ltd
Employee Name: Asha Verma
Company: Acme Industries
Pay period: March 2026

Gross Salary: Rs. 82,500.00
Total Deductions: Rs. 12,500.00
Net Pay: Rs. 70,000.00
`

func TestExtractSalarySlip(t *testing.T) {
	t.Run("full slip", func(t *testing.T) {
		data := newAnalyzer().ExtractSalarySlip(sampleSlip)
		assert.Equal(t, int64(82500), data.MonthlyIncome)
		assert.Equal(t, "Asha Verma", data.EmployeeName)
		assert.Equal(t, "March 2026", data.PayPeriod)
		assert.True(t, data.HasIncome())
	})

	t.Run("unreadable text extracts nothing", func(t *testing.T) {
		data := newAnalyzer().ExtractSalarySlip("%%%% garbled @@ scan ####")
		assert.False(t, data.HasIncome())
		assert.Empty(t, data.EmployeeName)
	})

	t.Run("amount with commas and paise", func(t *testing.T) {
		data := newAnalyzer().ExtractSalarySlip("Gross Pay: ₹1,25,000.50")
		assert.Equal(t, int64(125000), data.MonthlyIncome)
	})
}

func TestVerify(t *testing.T) {
	a := newAnalyzer()

	t.Run("within tolerance verifies", func(t *testing.T) {
		v := a.Verify(80000, &models.SalarySlipData{MonthlyIncome: 82500})
		assert.True(t, v.Verified)
		assert.False(t, v.Mismatch)
	})

	t.Run("exactly at twenty percent still verifies", func(t *testing.T) {
		v := a.Verify(100000, &models.SalarySlipData{MonthlyIncome: 80000})
		assert.True(t, v.Verified)
	})

	t.Run("beyond tolerance flags mismatch", func(t *testing.T) {
		v := a.Verify(100000, &models.SalarySlipData{MonthlyIncome: 60000})
		assert.False(t, v.Verified)
		assert.True(t, v.Mismatch)
	})

	t.Run("missing income is neither verified nor mismatch", func(t *testing.T) {
		v := a.Verify(80000, &models.SalarySlipData{})
		assert.False(t, v.Verified)
		assert.False(t, v.Mismatch)
		require.NotEmpty(t, v.Notes)
	})

	t.Run("zero declared income cannot verify", func(t *testing.T) {
		v := a.Verify(0, &models.SalarySlipData{MonthlyIncome: 50000})
		assert.False(t, v.Verified)
	})
}
