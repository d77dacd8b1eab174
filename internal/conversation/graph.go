package conversation

import "finsync-advisor/internal/models"

// transition is one guarded edge. Guards are pure predicates over the
// context; they never mutate it.
type transition struct {
	to    State
	agent AgentRole
	guard func(*Context) bool
	// tasks are advisory labels for work that may run alongside the
	// transition (lookups, calculations, delivery). Never load-bearing.
	tasks []string
}

// node is one state's definition: owning agent, ordered transitions
// (first match wins), and the data fields callers should solicit next.
type node struct {
	agent        AgentRole
	transitions  []transition
	requiredData []string
}

var graph = map[State]node{
	StateInitial: {
		agent: AgentMaster,
		transitions: []transition{
			{to: StateGreeting, agent: AgentSales, guard: func(c *Context) bool {
				return c.MessageCount == 0
			}},
		},
	},

	StateGreeting: {
		agent: AgentSales,
		transitions: []transition{
			{to: StateIdentification, agent: AgentVerification, guard: func(c *Context) bool {
				return c.MessageCount > 0 && c.Customer == nil
			}, tasks: []string{"checkPhone", "checkEmail"}},
		},
	},

	StateIdentification: {
		agent:        AgentVerification,
		requiredData: []string{"phone", "email"},
		transitions: []transition{
			{to: StateKYCCollection, agent: AgentVerification, guard: func(c *Context) bool {
				return c.Customer == nil && c.HasContactInfo
			}},
			{to: StateLoanInquiry, agent: AgentSales, guard: func(c *Context) bool {
				return c.Customer != nil
			}, tasks: []string{"fetchCreditScore", "fetchExistingLoans"}},
		},
	},

	StateKYCCollection: {
		agent:        AgentVerification,
		requiredData: []string{"name", "dob", "pan", "address", "employer", "income", "existingEMIs"},
		transitions: []transition{
			{to: StateLoanInquiry, agent: AgentSales, guard: func(c *Context) bool {
				return c.Prospect.Complete()
			}},
		},
	},

	StateLoanInquiry: {
		agent: AgentSales,
		transitions: []transition{
			{to: StateAmountDiscussion, agent: AgentSales, guard: func(c *Context) bool {
				return c.LoanPurpose != ""
			}},
		},
	},

	StateAmountDiscussion: {
		agent: AgentSales,
		transitions: []transition{
			{to: StateEligibilityCheck, agent: AgentUnderwriting, guard: func(c *Context) bool {
				return c.RequestedAmount > 0 && c.TenureMonths > 0
			}},
		},
	},

	StateEligibilityCheck: {
		agent: AgentUnderwriting,
		transitions: []transition{
			{to: StateUnderwriting, agent: AgentUnderwriting, guard: func(c *Context) bool {
				return c.EligibilityPassed != nil && *c.EligibilityPassed
			}, tasks: []string{"calculateEMI", "checkAffordability", "assessRisk"}},
			{to: StateRejection, agent: AgentUnderwriting, guard: func(c *Context) bool {
				return c.EligibilityPassed != nil && !*c.EligibilityPassed
			}},
		},
	},

	StateUnderwriting: {
		agent: AgentUnderwriting,
		transitions: []transition{
			{to: StateFinalApproval, agent: AgentSanction, guard: func(c *Context) bool {
				return c.Decision == models.DecisionInstantApproved
			}},
			{to: StateConditionalApproval, agent: AgentUnderwriting, guard: func(c *Context) bool {
				return c.Decision == models.DecisionConditionalApproved
			}},
			{to: StateRejection, agent: AgentUnderwriting, guard: func(c *Context) bool {
				return c.Decision == models.DecisionRejected
			}},
		},
	},

	StateConditionalApproval: {
		agent: AgentUnderwriting,
		transitions: []transition{
			{to: StateDocumentUpload, agent: AgentVerification, guard: func(c *Context) bool {
				return c.AwaitingDocument
			}},
		},
	},

	StateDocumentUpload: {
		agent: AgentVerification,
		transitions: []transition{
			{to: StateFinalApproval, agent: AgentSanction, guard: func(c *Context) bool {
				return c.DocumentVerified && c.FinalDecision != models.DecisionRejected && c.FinalDecision != ""
			}},
			{to: StateRejection, agent: AgentUnderwriting, guard: func(c *Context) bool {
				return c.DocumentVerified && c.FinalDecision == models.DecisionRejected
			}},
		},
	},

	StateFinalApproval: {
		agent: AgentSanction,
		transitions: []transition{
			{to: StateSanctionLetter, agent: AgentSanction, guard: func(c *Context) bool {
				return c.SanctionLetterGenerated
			}},
		},
	},

	StateSanctionLetter: {
		agent: AgentSanction,
		transitions: []transition{
			{to: StateFarewell, agent: AgentSales, guard: func(c *Context) bool {
				return c.LetterDelivered
			}, tasks: []string{"generatePDF", "sendEmail", "logTransaction"}},
		},
	},

	StateRejection: {
		agent: AgentUnderwriting,
		transitions: []transition{
			{to: StateFarewell, agent: AgentSales, guard: func(c *Context) bool {
				return true
			}},
		},
	},

	StateFarewell: {
		agent: AgentSales,
	},
}
