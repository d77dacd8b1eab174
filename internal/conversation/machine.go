package conversation

import (
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/common/metrics"
)

// Machine tracks one session's current state and applies the shared graph
// to it. Each session owns exactly one Machine; no state is shared across
// sessions.
type Machine struct {
	current State
	log     logger.Logger
}

func NewMachine(log logger.Logger) *Machine {
	return &Machine{
		current: StateInitial,
		log:     log,
	}
}

// Resume restores a machine at a persisted state.
func Resume(state State, log logger.Logger) *Machine {
	if !state.Valid() {
		state = StateInitial
	}
	return &Machine{current: state, log: log}
}

// Current returns the machine's state.
func (m *Machine) Current() State {
	return m.current
}

// CurrentAgent returns the persona owning the current state.
func (m *Machine) CurrentAgent() AgentRole {
	return graph[m.current].agent
}

// RequiredData lists the field names callers should solicit next.
func (m *Machine) RequiredData() []string {
	return graph[m.current].requiredData
}

// IsTerminal reports whether the conversation has ended.
func (m *Machine) IsTerminal() bool {
	return m.current.Terminal()
}

// ParallelTasks returns the advisory task labels of the transition that
// would fire next, without taking it. Empty when no guard matches.
func (m *Machine) ParallelTasks(ctx *Context) []string {
	for _, t := range graph[m.current].transitions {
		if t.guard(ctx) {
			return t.tasks
		}
	}
	return nil
}

// Transition evaluates the current state's guards in declared order,
// first match wins, and moves to the matched target. No match leaves the
// state unchanged, a valid "still waiting for input" outcome. The context
// is read, never mutated.
func (m *Machine) Transition(ctx *Context) State {
	for _, t := range graph[m.current].transitions {
		if t.guard(ctx) {
			from := m.current
			m.current = t.to
			m.log.Info("state transition", map[string]interface{}{
				"sessionId": ctx.SessionID,
				"from":      string(from),
				"to":        string(t.to),
				"agent":     string(t.agent),
			})
			metrics.StateTransitions.WithLabelValues(string(from), string(t.to), "guarded").Inc()
			return m.current
		}
	}
	return m.current
}

// ForceTransition jumps directly to a state, bypassing guards. Used for
// synchronous decision results that must immediately reflect in state.
// Logged distinctly from guarded transitions.
func (m *Machine) ForceTransition(ctx *Context, to State) {
	if !to.Valid() {
		m.log.Warn("force transition to unknown state ignored", map[string]interface{}{
			"sessionId": ctx.SessionID,
			"to":        string(to),
		})
		return
	}
	from := m.current
	m.current = to
	m.log.Warn("forced state transition", map[string]interface{}{
		"sessionId": ctx.SessionID,
		"from":      string(from),
		"to":        string(to),
	})
	metrics.StateTransitions.WithLabelValues(string(from), string(to), "forced").Inc()
}
