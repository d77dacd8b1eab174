package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/common/metrics"
	"finsync-advisor/internal/conversation"
	"finsync-advisor/internal/conversation/spin"
	"finsync-advisor/internal/credit"
	"finsync-advisor/internal/finance"
	"finsync-advisor/internal/models"
	"finsync-advisor/internal/sanction"
	"finsync-advisor/internal/sentiment"
	"finsync-advisor/internal/services/docs"
)

// CustomerDirectory is the CRM lookup surface the engine needs.
type CustomerDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*models.CustomerProfile, error)
	FindByEmail(ctx context.Context, email string) (*models.CustomerProfile, error)
	FindByID(ctx context.Context, customerID string) (*models.CustomerProfile, error)
	CreditScore(ctx context.Context, customerID string) (*models.CreditScoreRecord, error)
}

// Underwriter evaluates a loan request. The remote implementation is
// used for existing customers when configured; prospects always go local.
type Underwriter interface {
	Evaluate(ctx context.Context, customer *models.CustomerProfile, creditScore int, requestedAmount int64) (*models.UnderwritingVerdict, error)
}

// Deliverer sends the sanction letter and decision notices out of band.
type Deliverer interface {
	SendSanctionLetter(ctx context.Context, toEmail string, letter *models.SanctionLetter) error
	SendDecisionSMS(ctx context.Context, phone string, verdict *models.UnderwritingVerdict) error
}

// ScheduleExporter writes the full amortization workbook.
type ScheduleExporter interface {
	WriteSchedule(terms sanction.Terms) (string, error)
}

// Phraser rewrites a templated reply in the advisor's voice. Optional;
// the template is always the fallback.
type Phraser interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// ProductCatalog reports which offered loan products cover a request.
type ProductCatalog interface {
	Match(amount int64, tenureMonths int) []models.LoanProduct
	Products() []models.LoanProduct
}

type Config struct {
	FallbackCreditScore int
}

// Engine drives one conversation turn end to end: sentiment, state
// transitions, decisioning, document verification, and delivery.
type Engine struct {
	cfg       Config
	store     *Store
	auditor   *Auditor
	directory CustomerDirectory
	remote    Underwriter
	estimator *credit.Estimator
	docs      *docs.Analyzer
	notifier  Deliverer
	exporter  ScheduleExporter
	phraser   Phraser
	catalog   ProductCatalog
	rng       *rand.Rand
	log       logger.Logger
}

type Dependencies struct {
	Store     *Store
	Auditor   *Auditor
	Directory CustomerDirectory
	Remote    Underwriter
	Estimator *credit.Estimator
	Docs      *docs.Analyzer
	Notifier  Deliverer
	Exporter  ScheduleExporter
	Phraser   Phraser
	Catalog   ProductCatalog
	Rand      *rand.Rand
	Logger    logger.Logger
}

func NewEngine(cfg Config, deps Dependencies) *Engine {
	if cfg.FallbackCreditScore == 0 {
		cfg.FallbackCreditScore = 750
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	estimator := deps.Estimator
	if estimator == nil {
		estimator = credit.NewEstimator(rng)
	}
	docsAnalyzer := deps.Docs
	if docsAnalyzer == nil {
		docsAnalyzer = docs.NewAnalyzer(0, deps.Logger)
	}
	return &Engine{
		cfg:       cfg,
		store:     deps.Store,
		auditor:   deps.Auditor,
		directory: deps.Directory,
		remote:    deps.Remote,
		estimator: estimator,
		docs:      docsAnalyzer,
		notifier:  deps.Notifier,
		exporter:  deps.Exporter,
		phraser:   deps.Phraser,
		catalog:   deps.Catalog,
		rng:       rng,
		log:       deps.Logger,
	}
}

// TurnResult is what one processed message produces.
type TurnResult struct {
	SessionID string                        `json:"sessionId"`
	State     conversation.State            `json:"state"`
	Agent     conversation.AgentRole        `json:"agent"`
	Reply     string                        `json:"reply"`
	Sentiment sentiment.Result              `json:"sentiment"`
	Verdict   *models.UnderwritingVerdict   `json:"verdict,omitempty"`
	Letter    *models.SanctionLetter        `json:"letter,omitempty"`
}

// turn bundles the per-turn working set.
type turn struct {
	machine     *conversation.Machine
	convCtx     *conversation.Context
	spinEng     *spin.Engine
	mood        sentiment.Result
	wasTerminal bool
}

// ProcessTurn runs one user message through the full pipeline and
// persists the updated session before returning.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, userInput string) (*TurnResult, error) {
	started := time.Now()

	t, err := e.resume(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	t.mood = sentiment.Analyze(userInput)
	t.convCtx.SentimentHistory = append(t.convCtx.SentimentHistory, t.mood)
	metrics.SentimentLabels.WithLabelValues(string(t.mood.Label)).Inc()

	reply := e.dispatch(ctx, t, userInput)
	t.convCtx.MessageCount++

	if err := e.persist(ctx, t); err != nil {
		return nil, err
	}

	metrics.TurnDuration.WithLabelValues(string(t.machine.Current())).Observe(time.Since(started).Seconds())

	return &TurnResult{
		SessionID: sessionID,
		State:     t.machine.Current(),
		Agent:     t.machine.CurrentAgent(),
		Reply:     reply,
		Sentiment: t.mood,
		Verdict:   t.convCtx.Underwriting,
		Letter:    t.convCtx.Letter,
	}, nil
}

// ProcessDocument handles a salary-slip upload: extraction, the income
// check, the verification re-score, and the follow-on decision.
func (e *Engine) ProcessDocument(ctx context.Context, sessionID, documentText string) (*TurnResult, error) {
	t, err := e.resume(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply := e.verifyDocument(ctx, t, documentText)

	if err := e.persist(ctx, t); err != nil {
		return nil, err
	}

	return &TurnResult{
		SessionID: sessionID,
		State:     t.machine.Current(),
		Agent:     t.machine.CurrentAgent(),
		Reply:     reply,
		Verdict:   t.convCtx.Underwriting,
		Letter:    t.convCtx.Letter,
	}, nil
}

func (e *Engine) resume(ctx context.Context, sessionID string) (*turn, error) {
	rec, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		metrics.ActiveSessions.Inc()
		return &turn{
			machine: conversation.NewMachine(e.log),
			convCtx: conversation.NewContext(sessionID),
			spinEng: spin.NewEngine(e.rng),
		}, nil
	}
	machine := conversation.Resume(rec.State, e.log)
	return &turn{
		machine:     machine,
		convCtx:     rec.Context,
		spinEng:     spin.Resume(rec.SPINStage, e.rng),
		wasTerminal: machine.IsTerminal(),
	}, nil
}

func (e *Engine) persist(ctx context.Context, t *turn) error {
	if t.machine.IsTerminal() && !t.wasTerminal {
		metrics.ActiveSessions.Dec()
	}
	return e.store.Save(ctx, &Record{
		SessionID: t.convCtx.SessionID,
		State:     t.machine.Current(),
		SPINStage: t.spinEng.Stage(),
		Context:   t.convCtx,
	})
}

// dispatch mirrors a loan officer's checklist for a turn: greet, identify,
// collect KYC, capture the ask, then decide.
func (e *Engine) dispatch(ctx context.Context, t *turn, userInput string) string {
	if t.machine.Current() == conversation.StateInitial {
		e.advance(ctx, t)
	}

	// Explicit restart request wipes the application but keeps identity.
	if strings.Contains(strings.ToLower(userInput), "start new application") {
		t.convCtx.Reset()
		t.spinEng.Reset()
		e.forceTo(ctx, t, conversation.StateLoanInquiry)
		return "Of course, let's start fresh. What would you be looking to finance this time?"
	}

	if t.convCtx.Customer == nil && !identificationAttempted(t.convCtx) {
		if reply, handled := e.identify(ctx, t, userInput); handled {
			return reply
		}
	}

	if t.convCtx.Customer == nil && t.convCtx.Prospect != nil && !t.convCtx.Prospect.Complete() {
		return e.collectKYC(ctx, t, userInput)
	}

	e.captureLoanDetails(t.convCtx, userInput)
	e.advance(ctx, t)

	if t.convCtx.Customer != nil && t.convCtx.RequestedAmount > 0 && t.convCtx.Underwriting == nil {
		return e.underwrite(ctx, t)
	}

	return e.advisorReply(ctx, t, userInput)
}

func identificationAttempted(c *conversation.Context) bool {
	return c.Customer != nil || c.Prospect != nil
}

// identify tries to resolve the sender against the CRM. A contact handle
// that resolves nothing starts the prospect KYC flow instead.
func (e *Engine) identify(ctx context.Context, t *turn, userInput string) (string, bool) {
	info := parseContactInfo(userInput)
	if info.empty() {
		return "", false
	}

	customer, err := e.lookup(ctx, info)
	if err != nil && !apperrors.IsNotFound(err) {
		// CRM outage: keep the conversation alive, try again next turn.
		e.log.Error("customer lookup failed", map[string]interface{}{
			"sessionId": t.convCtx.SessionID,
			"error":     err.Error(),
		})
		return "I'm having trouble reaching our customer records right now. Could you share your registered phone number or email once more in a moment?", true
	}

	if customer != nil {
		t.convCtx.Customer = customer
		t.convCtx.HasContactInfo = true
		t.convCtx.CreditScore = e.bureauScore(ctx, customer.CustomerID)
		e.advance(ctx, t)
		if t.machine.Current() == conversation.StateGreeting {
			e.forceTo(ctx, t, conversation.StateLoanInquiry)
		}
		return e.welcomeBack(t), true
	}

	// Unknown contact: new prospect, start KYC.
	t.convCtx.HasContactInfo = true
	t.convCtx.Prospect = &conversation.ProspectData{Phone: info.Phone, Email: info.Email}
	e.advance(ctx, t)
	return "Thank you for your interest! I see you're a new customer. Welcome to FinSync AI!\n\n" +
		"To help you get the best loan offer, I'll need to collect some KYC details for verification. This process is quick and secure.\n\n" +
		"Let me start by confirming, what is your full name?", true
}

func (e *Engine) lookup(ctx context.Context, info contactInfo) (*models.CustomerProfile, error) {
	switch {
	case info.CustomerID != "":
		return e.directory.FindByID(ctx, info.CustomerID)
	case info.Phone != "":
		return e.directory.FindByPhone(ctx, info.Phone)
	case info.Email != "":
		return e.directory.FindByEmail(ctx, info.Email)
	}
	return nil, nil
}

// bureauScore fetches the bureau record, falling back to the configured
// default so a bureau outage never blocks the conversation.
func (e *Engine) bureauScore(ctx context.Context, customerID string) *models.CreditScoreRecord {
	record, err := e.directory.CreditScore(ctx, customerID)
	if err != nil {
		e.log.Warn("bureau score unavailable, using fallback", map[string]interface{}{
			"customerId": customerID,
			"fallback":   e.cfg.FallbackCreditScore,
			"error":      err.Error(),
		})
		return &models.CreditScoreRecord{
			CustomerID: customerID,
			Score:      e.cfg.FallbackCreditScore,
			Rating:     models.RatingForScore(e.cfg.FallbackCreditScore),
			FetchedAt:  time.Now().UTC(),
		}
	}
	return record
}

func (e *Engine) welcomeBack(t *turn) string {
	c := t.convCtx.Customer
	score := t.convCtx.CreditScore
	return fmt.Sprintf(
		"Welcome back, %s! I've pulled up your profile from our CRM system.\n\n"+
			"Your Details:\n- Customer ID: %s\n- Phone: %s\n- Credit Score: %d/900 (Fetched from Credit Bureau)\n"+
			"- Pre-approved Personal Loan Limit: ₹%s\n- Monthly Income: ₹%s\n- Current Interest Rate: %.1f%% per annum\n\n"+
			"You have an excellent profile with us. How can I help you today? Would you like to know about your pre-approved loan offer?",
		c.Name, c.CustomerID, c.Phone, score.Score,
		sanction.FormatINR(c.PreApprovedLimit), sanction.FormatINR(c.MonthlyIncome),
		finance.InterestRateForScore(score.Score),
	)
}

// advance lets the machine consume every guard the current context
// satisfies. Bounded because the graph is acyclic outside self-loops.
func (e *Engine) advance(ctx context.Context, t *turn) {
	for i := 0; i < len(conversation.AllStates); i++ {
		from := t.machine.Current()
		tasks := t.machine.ParallelTasks(t.convCtx)
		to := t.machine.Transition(t.convCtx)
		if to == from {
			return
		}
		event := AuditEvent{
			SessionID: t.convCtx.SessionID,
			Kind:      AuditTransition,
			From:      from,
			To:        to,
		}
		if len(tasks) > 0 {
			event.Details = map[string]interface{}{"parallelTasks": tasks}
		}
		e.auditor.record(ctx, event)
	}
}

func (e *Engine) forceTo(ctx context.Context, t *turn, to conversation.State) {
	from := t.machine.Current()
	t.machine.ForceTransition(t.convCtx, to)
	e.auditor.record(ctx, AuditEvent{
		SessionID: t.convCtx.SessionID,
		Kind:      AuditForcedTransition,
		From:      from,
		To:        to,
	})
}

// captureLoanDetails pulls purpose, amount, and tenure out of free text.
// Amounts are only captured once; a phone number is never read as one.
func (e *Engine) captureLoanDetails(c *conversation.Context, userInput string) {
	if c.LoanPurpose == "" {
		c.LoanPurpose = parsePurpose(userInput)
	}

	if c.RequestedAmount == 0 && !phoneRe.MatchString(userInput) {
		if amount := parseAmount(userInput); amount > 0 {
			c.RequestedAmount = amount
			if c.LoanPurpose == "" {
				c.LoanPurpose = "personal"
			}
		}
	}

	if tenure := parseTenure(userInput); tenure > 0 {
		c.TenureMonths = tenure
	}
	if c.RequestedAmount > 0 && c.TenureMonths == 0 {
		c.TenureMonths = models.DefaultTenureMonths
	}
}
