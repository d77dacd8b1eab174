// test/e2e/conversation_test.go
package e2e

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/conversation"
	"finsync-advisor/internal/models"
	"finsync-advisor/internal/sanction"
	"finsync-advisor/internal/session"
)

// fakeDirectory stands in for the CRM. Lookups hit an in-memory map so the
// whole journey runs without Postgres.
type fakeDirectory struct {
	customers map[string]*models.CustomerProfile
	scores    map[string]int
}

func (d *fakeDirectory) find(key func(*models.CustomerProfile) string, value string) (*models.CustomerProfile, error) {
	for _, c := range d.customers {
		if key(c) == value {
			clone := *c
			return &clone, nil
		}
	}
	return nil, apperrors.NewCustomerNotFoundError(value)
}

func (d *fakeDirectory) FindByPhone(_ context.Context, phone string) (*models.CustomerProfile, error) {
	return d.find(func(c *models.CustomerProfile) string { return c.Phone }, phone)
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (*models.CustomerProfile, error) {
	return d.find(func(c *models.CustomerProfile) string { return c.Email }, email)
}

func (d *fakeDirectory) FindByID(_ context.Context, id string) (*models.CustomerProfile, error) {
	return d.find(func(c *models.CustomerProfile) string { return c.CustomerID }, id)
}

func (d *fakeDirectory) CreditScore(_ context.Context, customerID string) (*models.CreditScoreRecord, error) {
	score, ok := d.scores[customerID]
	if !ok {
		return nil, apperrors.NewBureauUnavailableError(fmt.Errorf("no score on file for %s", customerID))
	}
	return &models.CreditScoreRecord{CustomerID: customerID, Score: score, FetchedAt: time.Now()}, nil
}

// fakeNotifier records deliveries instead of calling SES/SNS.
type fakeNotifier struct {
	letters []*models.SanctionLetter
	sms     []string
}

func (n *fakeNotifier) SendSanctionLetter(_ context.Context, _ string, letter *models.SanctionLetter) error {
	n.letters = append(n.letters, letter)
	return nil
}

func (n *fakeNotifier) SendDecisionSMS(_ context.Context, phone string, _ *models.UnderwritingVerdict) error {
	n.sms = append(n.sms, phone)
	return nil
}

func newE2EEngine(t *testing.T, directory session.CustomerDirectory, notifier session.Deliverer) *session.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.NewZapAdapter(zap.NewNop())
	return session.NewEngine(session.Config{FallbackCreditScore: 750}, session.Dependencies{
		Store:     session.NewStore(rdb, 30*time.Minute, log),
		Directory: directory,
		Notifier:  notifier,
		Rand:      rand.New(rand.NewSource(7)),
		Logger:    log,
	})
}

func say(t *testing.T, e *session.Engine, sessionID, input string) *session.TurnResult {
	t.Helper()
	result, err := e.ProcessTurn(context.Background(), sessionID, input)
	require.NoError(t, err)
	t.Logf("  you> %s", input)
	t.Logf("  advisor [%s]> %.120s", result.State, result.Reply)
	return result
}

// TestProspectJourneyEndToEnd walks a brand-new applicant through the whole
// funnel: greeting, KYC, loan inquiry, conditional approval, salary slip
// verification, and the final sanction letter.
func TestProspectJourneyEndToEnd(t *testing.T) {
	directory := &fakeDirectory{customers: map[string]*models.CustomerProfile{}, scores: map[string]int{}}
	notifier := &fakeNotifier{}
	e := newE2EEngine(t, directory, notifier)
	sessionID := "e2e-prospect"

	t.Log("🚀 Prospect journey: greeting and identification...")
	opening := say(t, e, sessionID, "Hi, I need a loan")
	assert.Equal(t, conversation.StateGreeting, opening.State)

	contact := say(t, e, sessionID, "My number is 9123456780")
	assert.Equal(t, conversation.StateKYCCollection, contact.State)
	assert.Contains(t, contact.Reply, "full name")

	t.Log("📋 KYC collection...")
	say(t, e, sessionID, "Asha Verma")
	say(t, e, sessionID, "ABCDE1234F")
	say(t, e, sessionID, "12/04/1992")
	say(t, e, sessionID, "42 MG Road, Bengaluru")
	say(t, e, sessionID, "I'm salaried")
	say(t, e, sessionID, "Wipro")
	say(t, e, sessionID, "80000")
	profile := say(t, e, sessionID, "0")
	assert.Equal(t, conversation.StateLoanInquiry, profile.State)
	assert.Contains(t, profile.Reply, "Credit Score:")

	t.Log("💰 Loan request above the pre-approved limit...")
	decision := say(t, e, sessionID, "I need 3 lakhs for my sister's wedding over 3 years")
	require.NotNil(t, decision.Verdict)
	assert.Equal(t, models.DecisionConditionalApproved, decision.Verdict.Decision)
	assert.Equal(t, conversation.StateDocumentUpload, decision.State)
	// Prospects have no delivery channel on file yet.
	assert.Len(t, notifier.sms, 0)

	t.Log("📄 Salary slip verification...")
	slip := "Salary Slip - March 2026\nEmployee Name: Asha Verma\nGross Salary: Rs. 80,000.00\nNet Pay: Rs. 72,000.00"
	verified, err := e.ProcessDocument(context.Background(), sessionID, slip)
	require.NoError(t, err)
	assert.Contains(t, verified.Reply, "Income verification: PASSED")
	require.NotNil(t, verified.Letter)
	assert.Contains(t, verified.Letter.Body, "Asha Verma")
	assert.Contains(t, verified.Letter.Body, "Rupees "+sanction.AmountInWords(300000)+" Only")

	t.Log("✅ Prospect journey complete — sanction letter issued")
}

// TestReturningCustomerJourneyEndToEnd covers the short path: a CRM match,
// an in-limit request, instant approval, and out-of-band delivery closing
// the conversation.
func TestReturningCustomerJourneyEndToEnd(t *testing.T) {
	directory := &fakeDirectory{
		customers: map[string]*models.CustomerProfile{
			"C042": {
				CustomerID:       "C042",
				Name:             "Priya Sharma",
				Phone:            "+91-9876501234",
				Email:            "priya@example.com",
				EmploymentType:   models.EmploymentSalaried,
				Employer:         "TCS",
				MonthlyIncome:    95000,
				ExistingEMIs:     8000,
				PreApprovedLimit: 600000,
			},
		},
		scores: map[string]int{"C042": 805},
	}
	notifier := &fakeNotifier{}
	e := newE2EEngine(t, directory, notifier)
	sessionID := "e2e-customer"

	t.Log("🚀 Returning customer journey...")
	welcome := say(t, e, sessionID, "Hello, I'm C042")
	assert.Contains(t, welcome.Reply, "Welcome back, Priya Sharma")
	assert.Contains(t, welcome.Reply, "805/900")
	assert.Equal(t, conversation.StateLoanInquiry, welcome.State)

	final := say(t, e, sessionID, "I want 4 lakhs for home renovation over 4 years")
	require.NotNil(t, final.Verdict)
	assert.Equal(t, models.DecisionInstantApproved, final.Verdict.Decision)
	require.NotNil(t, final.Letter)
	assert.Contains(t, final.Reply, "CONGRATULATIONS")

	// Delivery succeeded, so the session closed out.
	assert.Equal(t, conversation.StateFarewell, final.State)
	require.Len(t, notifier.letters, 1)
	assert.Equal(t, final.Letter.LetterNumber, notifier.letters[0].LetterNumber)
	require.Len(t, notifier.sms, 1)
	assert.Equal(t, "+91-9876501234", notifier.sms[0])

	t.Log("✅ Returning customer journey complete — letter delivered")
}
