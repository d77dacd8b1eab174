// Package spin implements the SPIN selling discovery sub-machine:
// SITUATION, PROBLEM, IMPLICATION, NEED_PAYOFF. It only shapes question
// phrasing, never decisions.
package spin

import (
	"fmt"
	"math/rand"
	"time"
)

// Stage is one of the four SPIN discovery stages.
type Stage string

const (
	Situation  Stage = "SITUATION"
	Problem    Stage = "PROBLEM"
	Implication Stage = "IMPLICATION"
	NeedPayoff Stage = "NEED_PAYOFF"
)

// Question is one candidate discovery prompt.
type Question struct {
	Stage    Stage
	Text     string
	Context  string
}

// Facts are the discovery fields collected so far. Pointer and bool fields
// distinguish "answered zero" from "not yet asked."
type Facts struct {
	Income               *int64
	Employer             string
	ExistingEMIs         *int64
	LoanPurpose          string
	RequestedAmount      int64
	UrgencyKnown         bool
	ConsequencesCovered  bool
}

var situationQuestions = []Question{
	{Situation, "To better understand your needs, could you tell me about your current financial situation? Do you have any existing loans or EMIs?", "Understanding baseline financial status"},
	{Situation, "What is your current monthly income and employment status?", "Assessing income stability"},
	{Situation, "How long have you been with your current employer?", "Evaluating job stability"},
}

var problemQuestions = []Question{
	{Problem, "What specific need or goal is prompting you to consider a personal loan right now?", "Identifying pain point"},
	{Problem, "Have you explored other financing options? What challenges did you face?", "Understanding previous barriers"},
	{Problem, "Is there a time constraint or urgency for this funding?", "Assessing urgency level"},
}

var implicationQuestions = []Question{
	{Implication, "If you don't get this funding in time, how would that affect your plans?", "Highlighting consequences"},
	{Implication, "How much would a delay or inability to get this loan cost you, financially or in terms of opportunities?", "Quantifying impact"},
	{Implication, "Beyond the immediate need, what other areas of your life would benefit from having this financial flexibility?", "Expanding problem awareness"},
}

var needPayoffQuestions = []Question{
	{NeedPayoff, "How would having instant loan approval with competitive rates help your situation?", "Building solution value"},
	{NeedPayoff, "If you could get this loan approved within minutes with minimal documentation, how valuable would that be to you?", "Emphasizing speed benefit"},
	{NeedPayoff, "What would it mean for you to have flexible repayment options and no hidden charges?", "Highlighting transparency"},
}

// Engine advances through the stages as their required facts appear. The
// randomness source picks question phrasing and is injected for testability.
type Engine struct {
	stage Stage
	rng   *rand.Rand
}

func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{stage: Situation, rng: rng}
}

// Resume restores an engine at a persisted stage.
func Resume(stage Stage, rng *rand.Rand) *Engine {
	e := NewEngine(rng)
	if stage != "" {
		e.stage = stage
	}
	return e
}

// Stage returns the current discovery stage.
func (e *Engine) Stage() Stage {
	return e.stage
}

// NextQuestion advances the stage when its gating facts are present, then
// picks a question uniformly at random from the active pool. A nil return
// means discovery is complete.
func (e *Engine) NextQuestion(facts Facts) *Question {
	switch e.stage {
	case Situation:
		if facts.situationComplete() {
			e.stage = Problem
			return e.pick(problemQuestions)
		}
		return e.pick(situationQuestions)

	case Problem:
		if facts.problemComplete() {
			e.stage = Implication
			return e.pick(implicationQuestions)
		}
		return e.pick(problemQuestions)

	case Implication:
		if facts.implicationComplete() {
			e.stage = NeedPayoff
			return e.pick(needPayoffQuestions)
		}
		return e.pick(implicationQuestions)

	default: // NeedPayoff: discovery done, move to closing.
		return nil
	}
}

func (f Facts) situationComplete() bool {
	return f.Income != nil && f.Employer != "" && f.ExistingEMIs != nil
}

func (f Facts) problemComplete() bool {
	return f.LoanPurpose != "" && f.RequestedAmount > 0
}

func (f Facts) implicationComplete() bool {
	return f.UrgencyKnown || f.ConsequencesCovered
}

func (e *Engine) pick(pool []Question) *Question {
	q := pool[e.rng.Intn(len(pool))]
	return &q
}

// Reset returns the engine to the start of discovery.
func (e *Engine) Reset() {
	e.stage = Situation
}

// Progress reports how far discovery has advanced, in percent.
func (e *Engine) Progress() int {
	switch e.stage {
	case Situation:
		return 25
	case Problem:
		return 50
	case Implication:
		return 75
	default:
		return 100
	}
}

// StagePrompt renders the persona guidance for the LLM at a given stage.
func StagePrompt(stage Stage, customerContext string) string {
	var description string
	switch stage {
	case Situation:
		description = "You are in the SITUATION stage. Ask factual questions to understand the customer's current financial state. Be conversational and gather basic information about income, employment, and existing loans."
	case Problem:
		description = "You are in the PROBLEM stage. Now that you know their situation, identify their specific pain points or needs. Ask about what's driving them to seek a loan, what challenges they face, and what they're trying to achieve."
	case Implication:
		description = "You are in the IMPLICATION stage. Help the customer understand the consequences of not solving their problem. Ask questions that make them realize the cost of inaction or delay in getting financing."
	case NeedPayoff:
		description = "You are in the NEED_PAYOFF stage. Focus on the value of your solution. Ask questions that get the customer to tell you why your instant approval process, competitive rates, and transparent terms are valuable to them."
	}

	return fmt.Sprintf(`%s

Customer Context: %s

Guidelines:
- Ask one question at a time
- Listen actively to their response before moving forward
- Use their language and concerns to frame your questions
- Build trust through genuine interest in their situation
- Smoothly guide them toward seeing the value of your loan product`, description, customerContext)
}
