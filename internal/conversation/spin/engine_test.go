package spin

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededEngine(seed int64) *Engine {
	return NewEngine(rand.New(rand.NewSource(seed)))
}

func int64Ptr(v int64) *int64 { return &v }

func TestStageProgression(t *testing.T) {
	e := seededEngine(1)
	assert.Equal(t, Situation, e.Stage())

	// No facts yet: stay in SITUATION.
	q := e.NextQuestion(Facts{})
	require.NotNil(t, q)
	assert.Equal(t, Situation, q.Stage)
	assert.Equal(t, Situation, e.Stage())

	// Situation facts complete: advance and ask a PROBLEM question.
	facts := Facts{
		Income:       int64Ptr(60000),
		Employer:     "Acme Ltd",
		ExistingEMIs: int64Ptr(0),
	}
	q = e.NextQuestion(facts)
	require.NotNil(t, q)
	assert.Equal(t, Problem, q.Stage)
	assert.Equal(t, Problem, e.Stage())

	// Problem facts complete: advance to IMPLICATION.
	facts.LoanPurpose = "home renovation"
	facts.RequestedAmount = 300000
	q = e.NextQuestion(facts)
	require.NotNil(t, q)
	assert.Equal(t, Implication, q.Stage)

	// Implication covered: advance to NEED_PAYOFF.
	facts.UrgencyKnown = true
	q = e.NextQuestion(facts)
	require.NotNil(t, q)
	assert.Equal(t, NeedPayoff, q.Stage)

	// Discovery complete: nil signals closing.
	assert.Nil(t, e.NextQuestion(facts))
}

func TestSituationGateNeedsAllThreeFacts(t *testing.T) {
	e := seededEngine(2)
	q := e.NextQuestion(Facts{Income: int64Ptr(50000), Employer: "Acme"})
	require.NotNil(t, q)
	assert.Equal(t, Situation, q.Stage)
}

func TestZeroEMIsStillCountsAsAnswered(t *testing.T) {
	e := seededEngine(3)
	q := e.NextQuestion(Facts{
		Income:       int64Ptr(50000),
		Employer:     "Acme",
		ExistingEMIs: int64Ptr(0),
	})
	require.NotNil(t, q)
	assert.Equal(t, Problem, q.Stage)
}

func TestQuestionPickIsSeedDeterministic(t *testing.T) {
	first := seededEngine(42).NextQuestion(Facts{})
	second := seededEngine(42).NextQuestion(Facts{})
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Text, second.Text)
}

func TestReset(t *testing.T) {
	e := seededEngine(1)
	e.NextQuestion(Facts{
		Income:       int64Ptr(50000),
		Employer:     "Acme",
		ExistingEMIs: int64Ptr(0),
	})
	require.Equal(t, Problem, e.Stage())

	e.Reset()
	assert.Equal(t, Situation, e.Stage())
	assert.Equal(t, 25, e.Progress())
}

func TestProgress(t *testing.T) {
	e := seededEngine(1)
	assert.Equal(t, 25, e.Progress())

	facts := Facts{Income: int64Ptr(1), Employer: "x", ExistingEMIs: int64Ptr(0)}
	e.NextQuestion(facts)
	assert.Equal(t, 50, e.Progress())
}

func TestStagePromptMentionsStage(t *testing.T) {
	prompt := StagePrompt(Implication, "salaried, 60k income")
	assert.Contains(t, prompt, "IMPLICATION")
	assert.Contains(t, prompt, "salaried, 60k income")
}
