// Package credit estimates a score for prospects who have no bureau record.
package credit

import (
	"fmt"
	"math/rand"
	"time"

	"finsync-advisor/internal/models"
)

const (
	MinScore = 300
	MaxScore = 900

	baseScore = 500
	// jitterRange bounds the simulated real-world variation: the final
	// score moves by a uniform pick from [-20, +20].
	jitterRange = 20

	// VerificationBonus is added to a prospect's score once an uploaded
	// document confirms the declared income.
	VerificationBonus = 20
)

// Input holds the self-reported figures a prospect supplies during KYC.
type Input struct {
	CustomerID      string
	MonthlyIncome   int64
	ExistingEMIs    int64
	EmploymentType  models.EmploymentType
	YearsAtJob      int
	Age             int
	AadhaarVerified bool
	PANVerified     bool
}

// Estimator synthesizes credit scores from financial heuristics. The
// randomness source is injected so tests can pin deterministic outputs.
type Estimator struct {
	rng *rand.Rand
}

func NewEstimator(rng *rand.Rand) *Estimator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Estimator{rng: rng}
}

// Estimate computes a score in [300, 900] from income, leverage,
// employment stability, age, and verification completeness, plus bounded
// jitter. Not reproducible across runs unless the source is seeded.
func (e *Estimator) Estimate(in Input) (*models.CreditScoreRecord, error) {
	if in.MonthlyIncome <= 0 {
		return nil, fmt.Errorf("monthly income must be positive, got %d", in.MonthlyIncome)
	}

	score := baseScore
	score += incomePoints(in.MonthlyIncome)
	score += leveragePoints(in.ExistingEMIs, in.MonthlyIncome)
	score += employmentPoints(in.EmploymentType, in.YearsAtJob)
	score += agePoints(in.Age)
	score += verificationPoints(in.AadhaarVerified, in.PANVerified)

	score += e.rng.Intn(2*jitterRange+1) - jitterRange

	score = clamp(score, MinScore, MaxScore)

	return &models.CreditScoreRecord{
		CustomerID: in.CustomerID,
		Score:      score,
		Confidence: confidence(in),
		Rating:     models.RatingForScore(score),
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// WithVerificationBonus returns a copy of the record with the document
// verification bonus applied, still clamped to the valid range.
func WithVerificationBonus(record models.CreditScoreRecord) models.CreditScoreRecord {
	record.Score = clamp(record.Score+VerificationBonus, MinScore, MaxScore)
	record.Rating = models.RatingForScore(record.Score)
	return record
}

// incomePoints awards up to 150 points for income strength.
func incomePoints(income int64) int {
	switch {
	case income >= 150000:
		return 150
	case income >= 100000:
		return 120
	case income >= 75000:
		return 100
	case income >= 50000:
		return 80
	case income >= 30000:
		return 50
	case income >= 20000:
		return 30
	default:
		return 0
	}
}

// leveragePoints rewards low EMI-to-income ratios and penalizes
// over-leverage, ranging from +100 down to -100.
func leveragePoints(existingEMIs, income int64) int {
	ratio := float64(existingEMIs) / float64(income) * 100
	switch {
	case ratio == 0:
		return 100
	case ratio < 20:
		return 80
	case ratio < 30:
		return 50
	case ratio < 40:
		return 20
	case ratio < 50:
		return -20
	case ratio < 60:
		return -50
	default:
		return -100
	}
}

// employmentPoints awards up to 80 points for employment stability.
func employmentPoints(empType models.EmploymentType, years int) int {
	switch empType {
	case models.EmploymentSalaried:
		points := 50
		switch {
		case years >= 5:
			points += 30
		case years >= 3:
			points += 20
		case years >= 1:
			points += 10
		}
		return points
	case models.EmploymentSelfEmployed:
		points := 30
		switch {
		case years >= 5:
			points += 20
		case years >= 3:
			points += 10
		}
		return points
	default:
		return 0
	}
}

// agePoints awards up to 50 points, peaking at prime earning age.
func agePoints(age int) int {
	switch {
	case age >= 35 && age <= 50:
		return 50
	case age >= 30 && age < 35:
		return 40
	case age > 50 && age < 60:
		return 35
	case age >= 25 && age < 30:
		return 30
	case age >= 21 && age < 25:
		return 20
	default:
		return 0
	}
}

// verificationPoints awards up to 50 points for identity documents.
func verificationPoints(aadhaar, pan bool) int {
	switch {
	case aadhaar && pan:
		return 50
	case aadhaar || pan:
		return 25
	default:
		return 0
	}
}

// confidence grows with data completeness, capped at 1.0.
func confidence(in Input) float64 {
	c := 0.70
	if in.AadhaarVerified && in.PANVerified {
		c += 0.15
	}
	if in.Age > 0 {
		c += 0.05
	}
	if in.YearsAtJob > 0 {
		c += 0.10
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
