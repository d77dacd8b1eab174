package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsync-advisor/internal/models"
)

func profile(income, existingEMIs, limit int64) *models.CustomerProfile {
	return &models.CustomerProfile{
		CustomerID:       "C001",
		Name:             "Test Applicant",
		EmploymentType:   models.EmploymentSalaried,
		MonthlyIncome:    income,
		ExistingEMIs:     existingEMIs,
		PreApprovedLimit: limit,
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("score below 700 rejects regardless of amount", func(t *testing.T) {
		verdict, err := Evaluate(profile(50000, 0, 100000), 650, 1)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionRejected, verdict.Decision)
		assert.Equal(t, int64(0), verdict.ApprovedAmount)
		assert.Contains(t, verdict.Reason, "Credit score below minimum threshold")
	})

	t.Run("within pre-approved limit is instant", func(t *testing.T) {
		verdict, err := Evaluate(profile(50000, 0, 100000), 750, 50000)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionInstantApproved, verdict.Decision)
		assert.Equal(t, int64(50000), verdict.ApprovedAmount)
		assert.Empty(t, verdict.Conditions)
	})

	t.Run("exactly at limit is still instant", func(t *testing.T) {
		verdict, err := Evaluate(profile(50000, 0, 100000), 750, 100000)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionInstantApproved, verdict.Decision)
	})

	t.Run("above 2x limit rejects regardless of income", func(t *testing.T) {
		verdict, err := Evaluate(profile(10000000, 0, 100000), 750, 250000)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionRejected, verdict.Decision)
		assert.Equal(t, int64(0), verdict.ApprovedAmount)
		assert.Contains(t, verdict.Reason, "2x pre-approved limit")
	})

	t.Run("between limit and 2x with low burden is conditional", func(t *testing.T) {
		// 150000 at 11.5% over 36 months is about 4945, well under half
		// of a 100000 income.
		verdict, err := Evaluate(profile(100000, 0, 100000), 750, 150000)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionConditionalApproved, verdict.Decision)
		assert.Equal(t, int64(150000), verdict.ApprovedAmount)
		assert.Len(t, verdict.Conditions, 3)
	})

	t.Run("conditional approval always carries conditions", func(t *testing.T) {
		verdict, err := Evaluate(profile(100000, 0, 100000), 800, 180000)
		require.NoError(t, err)
		require.Equal(t, models.DecisionConditionalApproved, verdict.Decision)
		assert.NotEmpty(t, verdict.Conditions)
	})

	t.Run("EMI burden over half of income rejects", func(t *testing.T) {
		// 190000 at 11.5% over 36 months is about 6265. With existing
		// EMIs of 3000 against a 15000 income the ratio passes 50%.
		verdict, err := Evaluate(profile(15000, 3000, 100000), 750, 190000)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionRejected, verdict.Decision)
		assert.Contains(t, verdict.Reason, "EMI burden")
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		p := profile(60000, 5000, 120000)
		first, err := Evaluate(p, 720, 180000)
		require.NoError(t, err)
		second, err := Evaluate(p, 720, 180000)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("input validation", func(t *testing.T) {
		_, err := Evaluate(nil, 750, 100000)
		assert.Error(t, err)

		_, err = Evaluate(profile(0, 0, 100000), 750, 100000)
		assert.Error(t, err)

		_, err = Evaluate(profile(50000, 0, 100000), 750, 0)
		assert.Error(t, err)

		_, err = Evaluate(profile(50000, 0, -1), 750, 100000)
		assert.Error(t, err)
	})
}
