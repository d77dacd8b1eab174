package credit

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsync-advisor/internal/models"
)

func seededEstimator(seed int64) *Estimator {
	return NewEstimator(rand.New(rand.NewSource(seed)))
}

func TestEstimate(t *testing.T) {
	strong := Input{
		CustomerID:      "TEMP-1001",
		MonthlyIncome:   150000,
		ExistingEMIs:    0,
		EmploymentType:  models.EmploymentSalaried,
		YearsAtJob:      6,
		Age:             40,
		AadhaarVerified: true,
		PANVerified:     true,
	}

	t.Run("score stays within valid range", func(t *testing.T) {
		e := seededEstimator(1)
		for i := 0; i < 100; i++ {
			record, err := e.Estimate(strong)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, record.Score, MinScore)
			assert.LessOrEqual(t, record.Score, MaxScore)
		}
	})

	t.Run("strong profile clamps at ceiling", func(t *testing.T) {
		// 500 + 150 + 100 + 80 + 50 + 50 = 930 before jitter, so even the
		// worst draw stays above 900 and clamps.
		record, err := seededEstimator(7).Estimate(strong)
		require.NoError(t, err)
		assert.Equal(t, MaxScore, record.Score)
		assert.Equal(t, models.RatingExcellent, record.Rating)
	})

	t.Run("over-leveraged profile scores lower", func(t *testing.T) {
		weak := strong
		weak.ExistingEMIs = 100000 // two thirds of income
		weak.AadhaarVerified = false
		weak.PANVerified = false

		seed := int64(42)
		strongScore, err := seededEstimator(seed).Estimate(strong)
		require.NoError(t, err)
		weakScore, err := seededEstimator(seed).Estimate(weak)
		require.NoError(t, err)

		assert.Less(t, weakScore.Score, strongScore.Score)
	})

	t.Run("same seed reproduces the same score", func(t *testing.T) {
		first, err := seededEstimator(99).Estimate(strong)
		require.NoError(t, err)
		second, err := seededEstimator(99).Estimate(strong)
		require.NoError(t, err)
		assert.Equal(t, first.Score, second.Score)
	})

	t.Run("zero income is rejected", func(t *testing.T) {
		_, err := seededEstimator(1).Estimate(Input{CustomerID: "TEMP-1"})
		assert.Error(t, err)
	})

	t.Run("confidence grows with completeness", func(t *testing.T) {
		sparse := Input{
			CustomerID:     "TEMP-2",
			MonthlyIncome:  40000,
			EmploymentType: models.EmploymentSelfEmployed,
		}
		sparseRec, err := seededEstimator(3).Estimate(sparse)
		require.NoError(t, err)
		fullRec, err := seededEstimator(3).Estimate(strong)
		require.NoError(t, err)

		assert.Greater(t, fullRec.Confidence, sparseRec.Confidence)
		assert.LessOrEqual(t, fullRec.Confidence, 1.0)
	})
}

func TestWithVerificationBonus(t *testing.T) {
	t.Run("adds the bonus", func(t *testing.T) {
		record := models.CreditScoreRecord{Score: 700, Rating: models.RatingGood}
		bumped := WithVerificationBonus(record)
		assert.Equal(t, 720, bumped.Score)
	})

	t.Run("clamps at ceiling", func(t *testing.T) {
		record := models.CreditScoreRecord{Score: 895}
		bumped := WithVerificationBonus(record)
		assert.Equal(t, MaxScore, bumped.Score)
	})

	t.Run("rating is recomputed", func(t *testing.T) {
		record := models.CreditScoreRecord{Score: 790, Rating: models.RatingGood}
		bumped := WithVerificationBonus(record)
		assert.Equal(t, models.RatingExcellent, bumped.Rating)
	})
}
