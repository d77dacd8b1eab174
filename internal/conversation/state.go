// Package conversation implements the guarded state machine that drives a
// loan sales session from greeting to farewell.
package conversation

// State is one of the fixed conversation states. No dynamic creation.
type State string

const (
	StateInitial             State = "INITIAL"
	StateGreeting            State = "GREETING"
	StateIdentification      State = "IDENTIFICATION"
	StateKYCCollection       State = "KYC_COLLECTION"
	StateLoanInquiry         State = "LOAN_INQUIRY"
	StateAmountDiscussion    State = "AMOUNT_DISCUSSION"
	StateEligibilityCheck    State = "ELIGIBILITY_CHECK"
	StateUnderwriting        State = "UNDERWRITING"
	StateConditionalApproval State = "CONDITIONAL_APPROVAL"
	StateDocumentUpload      State = "DOCUMENT_UPLOAD"
	StateFinalApproval       State = "FINAL_APPROVAL"
	StateRejection           State = "REJECTION"
	StateSanctionLetter      State = "SANCTION_LETTER"
	StateFarewell            State = "FAREWELL"
)

// AllStates lists every state in graph order.
var AllStates = []State{
	StateInitial,
	StateGreeting,
	StateIdentification,
	StateKYCCollection,
	StateLoanInquiry,
	StateAmountDiscussion,
	StateEligibilityCheck,
	StateUnderwriting,
	StateConditionalApproval,
	StateDocumentUpload,
	StateFinalApproval,
	StateRejection,
	StateSanctionLetter,
	StateFarewell,
}

// Valid reports whether s names a known state.
func (s State) Valid() bool {
	_, ok := graph[s]
	return ok
}

// Terminal reports whether the conversation ends here. REJECTION is a soft
// terminal: one more forced step takes it to FAREWELL.
func (s State) Terminal() bool {
	return s == StateFarewell || s == StateRejection
}

// AgentRole labels which persona owns a state. Purely descriptive, used
// for prompt selection and observability.
type AgentRole string

const (
	AgentMaster       AgentRole = "MASTER"
	AgentSales        AgentRole = "SALES"
	AgentVerification AgentRole = "VERIFICATION"
	AgentUnderwriting AgentRole = "UNDERWRITING"
	AgentSanction     AgentRole = "SANCTION"
)
