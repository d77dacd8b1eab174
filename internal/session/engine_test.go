package session

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
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
	"finsync-advisor/pkg/registry"
)

type stubDirectory struct {
	customers map[string]*models.CustomerProfile
	scores    map[string]int
}

func (d *stubDirectory) FindByPhone(_ context.Context, phone string) (*models.CustomerProfile, error) {
	for _, c := range d.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, apperrors.NewCustomerNotFoundError(phone)
}

func (d *stubDirectory) FindByEmail(_ context.Context, email string) (*models.CustomerProfile, error) {
	for _, c := range d.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, apperrors.NewCustomerNotFoundError(email)
}

func (d *stubDirectory) FindByID(_ context.Context, customerID string) (*models.CustomerProfile, error) {
	if c, ok := d.customers[customerID]; ok {
		return c, nil
	}
	return nil, apperrors.NewCustomerNotFoundError(customerID)
}

func (d *stubDirectory) CreditScore(_ context.Context, customerID string) (*models.CreditScoreRecord, error) {
	score, ok := d.scores[customerID]
	if !ok {
		return nil, apperrors.NewCustomerNotFoundError(customerID)
	}
	return &models.CreditScoreRecord{
		CustomerID: customerID,
		Score:      score,
		Rating:     models.RatingForScore(score),
		FetchedAt:  time.Now().UTC(),
	}, nil
}

type stubNotifier struct {
	lettersSent int
	smsSent     int
}

func (n *stubNotifier) SendSanctionLetter(_ context.Context, _ string, _ *models.SanctionLetter) error {
	n.lettersSent++
	return nil
}

func (n *stubNotifier) SendDecisionSMS(_ context.Context, _ string, _ *models.UnderwritingVerdict) error {
	n.smsSent++
	return nil
}

func newTestEngine(t *testing.T, directory CustomerDirectory, notifier Deliverer) *Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.NewZapAdapter(zap.NewNop())
	return NewEngine(Config{FallbackCreditScore: 750}, Dependencies{
		Store:     NewStore(rdb, 30*time.Minute, log),
		Directory: directory,
		Notifier:  notifier,
		Rand:      rand.New(rand.NewSource(42)),
		Logger:    log,
	})
}

func knownCustomer() *stubDirectory {
	return &stubDirectory{
		customers: map[string]*models.CustomerProfile{
			"C001": {
				CustomerID:       "C001",
				Name:             "Rajesh Kumar",
				Phone:            "+91-9876543210",
				Email:            "rajesh@example.com",
				EmploymentType:   models.EmploymentSalaried,
				Employer:         "Infosys",
				MonthlyIncome:    85000,
				ExistingEMIs:     12000,
				PreApprovedLimit: 500000,
			},
		},
		scores: map[string]int{"C001": 780},
	}
}

func runKYC(t *testing.T, e *Engine, sessionID string) {
	t.Helper()
	ctx := context.Background()
	steps := []string{
		"Hi, I need a loan",
		"You can reach me on 9123456780",
		"Asha Verma",
		"ABCDE1234F",
		"12/08/1992",
		"14 MG Road, Pune",
		"Salaried",
		"Acme Industries",
		"80000",
		"0",
	}
	for _, msg := range steps {
		_, err := e.ProcessTurn(ctx, sessionID, msg)
		require.NoError(t, err)
	}
}

func TestProspectInstantApproval(t *testing.T) {
	e := newTestEngine(t, &stubDirectory{}, nil)
	ctx := context.Background()

	first, err := e.ProcessTurn(ctx, "s1", "Hi, I need a loan")
	require.NoError(t, err)
	assert.Equal(t, conversation.StateGreeting, first.State)

	contact, err := e.ProcessTurn(ctx, "s1", "You can reach me on 9123456780")
	require.NoError(t, err)
	assert.Equal(t, conversation.StateKYCCollection, contact.State)
	assert.Contains(t, contact.Reply, "full name")

	kycSteps := []string{"Asha Verma", "ABCDE1234F", "12/08/1992", "14 MG Road, Pune", "Salaried", "Acme Industries", "80000"}
	for _, msg := range kycSteps {
		_, err := e.ProcessTurn(ctx, "s1", msg)
		require.NoError(t, err)
	}

	profile, err := e.ProcessTurn(ctx, "s1", "0")
	require.NoError(t, err)
	assert.Equal(t, conversation.StateLoanInquiry, profile.State)
	assert.Contains(t, profile.Reply, "Credit Score:")
	assert.Contains(t, profile.Reply, "How much would you like to borrow?")

	result, err := e.ProcessTurn(ctx, "s1", "I need 1 lakh for education over 3 years")
	require.NoError(t, err)
	require.NotNil(t, result.Verdict)
	assert.Equal(t, models.DecisionInstantApproved, result.Verdict.Decision)
	assert.Equal(t, int64(100000), result.Verdict.ApprovedAmount)
	require.NotNil(t, result.Letter)
	assert.Contains(t, result.Reply, "CONGRATULATIONS")
	// No delivery channel wired, so the session parks at the letter.
	assert.Equal(t, conversation.StateSanctionLetter, result.State)
}

func TestProspectConditionalAndDocumentVerification(t *testing.T) {
	e := newTestEngine(t, &stubDirectory{}, nil)
	ctx := context.Background()
	runKYC(t, e, "s2")

	result, err := e.ProcessTurn(ctx, "s2", "I need 3 lakhs for a wedding")
	require.NoError(t, err)
	require.NotNil(t, result.Verdict)
	assert.Equal(t, models.DecisionConditionalApproved, result.Verdict.Decision)
	assert.Len(t, result.Verdict.Conditions, 3)
	assert.Contains(t, result.Reply, "salary slip")
	assert.Equal(t, conversation.StateDocumentUpload, result.State)

	doc, err := e.ProcessDocument(ctx, "s2", "Employee Name: Asha Verma\nCompany: Acme Industries\nGross Salary: Rs. 80,000.00")
	require.NoError(t, err)
	require.NotNil(t, doc.Verdict)
	assert.True(t, doc.Verdict.Approved())
	require.NotNil(t, doc.Letter)
	assert.Contains(t, doc.Reply, "Income verification: PASSED")
	assert.Equal(t, conversation.StateSanctionLetter, doc.State)
}

func TestDocumentMismatchHaltsApproval(t *testing.T) {
	e := newTestEngine(t, &stubDirectory{}, nil)
	ctx := context.Background()
	runKYC(t, e, "s3")

	_, err := e.ProcessTurn(ctx, "s3", "I need 3 lakhs for a wedding")
	require.NoError(t, err)

	// Slip shows barely half the declared income.
	doc, err := e.ProcessDocument(ctx, "s3", "Gross Salary: Rs. 45,000.00")
	require.NoError(t, err)
	assert.Contains(t, doc.Reply, "Income mismatch detected")
	assert.Nil(t, doc.Letter)
	assert.Equal(t, conversation.StateDocumentUpload, doc.State)
}

func TestKnownCustomerIdentification(t *testing.T) {
	notifier := &stubNotifier{}
	e := newTestEngine(t, knownCustomer(), notifier)
	ctx := context.Background()

	result, err := e.ProcessTurn(ctx, "s4", "Hello, my number is 9876543210")
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "Welcome back, Rajesh Kumar")
	assert.Contains(t, result.Reply, "780/900")
	assert.Contains(t, result.Reply, "₹5,00,000")
	assert.Equal(t, conversation.StateLoanInquiry, result.State)

	final, err := e.ProcessTurn(ctx, "s4", "I need 2 lakhs for home renovation over 2 years")
	require.NoError(t, err)
	require.NotNil(t, final.Verdict)
	assert.Equal(t, models.DecisionInstantApproved, final.Verdict.Decision)
	assert.Equal(t, 1, notifier.lettersSent)
	assert.Equal(t, 1, notifier.smsSent)
	// Delivered letter closes the conversation.
	assert.Equal(t, conversation.StateFarewell, final.State)
}

func TestAffordabilityGateForcesRevisedAmount(t *testing.T) {
	directory := knownCustomer()
	directory.customers["C001"].MonthlyIncome = 20000
	directory.customers["C001"].ExistingEMIs = 0
	directory.customers["C001"].PreApprovedLimit = 60000
	e := newTestEngine(t, directory, &stubNotifier{})
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "s5", "Hi, my number is 9876543210")
	require.NoError(t, err)

	gate, err := e.ProcessTurn(ctx, "s5", "I need 10 lakhs for a wedding")
	require.NoError(t, err)
	assert.Nil(t, gate.Verdict)
	assert.Contains(t, gate.Reply, "alternative")
	assert.Equal(t, conversation.StateAmountDiscussion, gate.State)

	revised, err := e.ProcessTurn(ctx, "s5", "Okay, make it 50 thousand then")
	require.NoError(t, err)
	require.NotNil(t, revised.Verdict)
	assert.Equal(t, models.DecisionInstantApproved, revised.Verdict.Decision)
}

func TestLowScoreRejection(t *testing.T) {
	directory := knownCustomer()
	directory.scores["C001"] = 650
	e := newTestEngine(t, directory, nil)
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "s6", "Hi, my number is 9876543210")
	require.NoError(t, err)

	result, err := e.ProcessTurn(ctx, "s6", "I need 2 lakhs for travel")
	require.NoError(t, err)
	require.NotNil(t, result.Verdict)
	assert.Equal(t, models.DecisionRejected, result.Verdict.Decision)
	assert.Equal(t, conversation.StateRejection, result.State)
}

func TestBureauOutageFallsBackToDefaultScore(t *testing.T) {
	directory := knownCustomer()
	delete(directory.scores, "C001")
	e := newTestEngine(t, directory, nil)

	result, err := e.ProcessTurn(context.Background(), "s7", "Hi, my number is 9876543210")
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "750/900")
}

func TestSessionResumesAcrossEngines(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.NewZapAdapter(zap.NewNop())
	store := NewStore(rdb, 30*time.Minute, log)

	build := func() *Engine {
		return NewEngine(Config{FallbackCreditScore: 750}, Dependencies{
			Store:     store,
			Directory: knownCustomer(),
			Rand:      rand.New(rand.NewSource(7)),
			Logger:    log,
		})
	}

	ctx := context.Background()
	_, err := build().ProcessTurn(ctx, "s8", "Hi, my number is 9876543210")
	require.NoError(t, err)

	// A fresh engine picks up the same session from Redis.
	result, err := build().ProcessTurn(ctx, "s8", "I need 2 lakhs for travel")
	require.NoError(t, err)
	require.NotNil(t, result.Verdict)
	assert.Equal(t, models.DecisionInstantApproved, result.Verdict.Decision)
}

func TestStartNewApplicationResets(t *testing.T) {
	e := newTestEngine(t, knownCustomer(), &stubNotifier{})
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "s9", "Hi, my number is 9876543210")
	require.NoError(t, err)
	_, err = e.ProcessTurn(ctx, "s9", "I need 2 lakhs for travel")
	require.NoError(t, err)

	reset, err := e.ProcessTurn(ctx, "s9", "I'd like to start new application please")
	require.NoError(t, err)
	assert.Nil(t, reset.Verdict)
	assert.Equal(t, conversation.StateLoanInquiry, reset.State)
	assert.Contains(t, reset.Reply, "start fresh")
}

func TestSanctionLetterContents(t *testing.T) {
	e := newTestEngine(t, knownCustomer(), nil)
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "s10", "Hi, my number is 9876543210")
	require.NoError(t, err)

	result, err := e.ProcessTurn(ctx, "s10", "I need 2 lakhs for home renovation over 2 years")
	require.NoError(t, err)
	require.NotNil(t, result.Letter)

	body := result.Letter.Body
	assert.Contains(t, body, "Rupees "+sanction.AmountInWords(200000)+" Only")
	assert.Contains(t, body, "Rajesh Kumar")
	assert.Contains(t, body, "11.5")
}

func TestCatalogGateRedirectsOutOfRangeRequests(t *testing.T) {
	catalogJSON := `{"products": [{
		"productId": "PL-SMALL",
		"name": "Small Personal Loan",
		"minAmount": 10000,
		"maxAmount": 150000,
		"minTenure": 3,
		"maxTenure": 24,
		"baseRate": 12.5
	}]}`
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))
	catalog, err := registry.Load(path)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.NewZapAdapter(zap.NewNop())
	e := NewEngine(Config{FallbackCreditScore: 750}, Dependencies{
		Store:     NewStore(rdb, 30*time.Minute, log),
		Directory: knownCustomer(),
		Catalog:   catalog,
		Rand:      rand.New(rand.NewSource(42)),
		Logger:    log,
	})
	ctx := context.Background()

	_, err = e.ProcessTurn(ctx, "s11", "Hi, my number is 9876543210")
	require.NoError(t, err)

	rejected, err := e.ProcessTurn(ctx, "s11", "I need 2 lakhs for travel over 12 months")
	require.NoError(t, err)
	assert.Nil(t, rejected.Verdict)
	assert.Contains(t, rejected.Reply, "falls outside the loan products")
	assert.Contains(t, rejected.Reply, "₹1,50,000")
	assert.Equal(t, conversation.StateAmountDiscussion, rejected.State)

	approved, err := e.ProcessTurn(ctx, "s11", "Let's do 1 lakh over 12 months then")
	require.NoError(t, err)
	require.NotNil(t, approved.Verdict)
	assert.Equal(t, models.DecisionInstantApproved, approved.Verdict.Decision)
}
