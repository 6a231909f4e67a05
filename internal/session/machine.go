package session

import (
	"github.com/felixgeelhaar/statekit"
	"github.com/rs/zerolog"
)

// Phase is a state of the session statechart.
type Phase string

const (
	PhaseConfirmingStart   Phase = "confirming_start"
	PhaseConfiguringRules  Phase = "configuring_rules"
	PhaseConfiguringBudget Phase = "configuring_budget"
	PhaseConfiguringLength Phase = "configuring_length"
	PhaseAwaitingInput     Phase = "awaiting_input"
	PhaseShowingHistory    Phase = "showing_history"
	PhaseScoring           Phase = "scoring"
	PhaseConfirmingQuit    Phase = "confirming_quit"
	PhaseWon               Phase = "won"
	PhaseLost              Phase = "lost"
	PhaseAborted           Phase = "aborted"
)

// Terminal reports whether no transition leaves p.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost || p == PhaseAborted
}

const (
	evPlay        statekit.EventType = "PLAY"
	evDecline     statekit.EventType = "DECLINE"
	evRulesSet    statekit.EventType = "RULES_SET"
	evBudgetSet   statekit.EventType = "BUDGET_SET"
	evLengthSet   statekit.EventType = "LENGTH_SET"
	evAbandon     statekit.EventType = "ABANDON"
	evHistory     statekit.EventType = "HISTORY"
	evResume      statekit.EventType = "RESUME"
	evScore       statekit.EventType = "SCORE"
	evWin         statekit.EventType = "WIN"
	evLose        statekit.EventType = "LOSE"
	evContinue    statekit.EventType = "CONTINUE"
	evQuit        statekit.EventType = "QUIT"
	evConfirmQuit statekit.EventType = "CONFIRM_QUIT"
	evGiveUp      statekit.EventType = "GIVE_UP"
)

// machineContext is the statechart's extended state.
type machineContext struct {
	log         zerolog.Logger
	transitions int
}

func sid(p Phase) statekit.StateID { return statekit.StateID(p) }

// newMachine builds the session statechart.
func newMachine(mc *machineContext) (*statekit.MachineConfig[*machineContext], error) {
	return statekit.NewMachine[*machineContext]("session").
		WithInitial(sid(PhaseConfirmingStart)).
		WithContext(mc).
		WithAction("logEntry", logEntry).
		WithAction("countTransition", countTransition).
		State(sid(PhaseConfirmingStart)).
			OnEntry("logEntry").
			On(evPlay).Target(sid(PhaseConfiguringRules)).Do("countTransition").
			On(evDecline).Target(sid(PhaseAborted)).Do("countTransition").
			Done().
		State(sid(PhaseConfiguringRules)).
			OnEntry("logEntry").
			On(evRulesSet).Target(sid(PhaseConfiguringBudget)).Do("countTransition").
			Done().
		State(sid(PhaseConfiguringBudget)).
			OnEntry("logEntry").
			On(evBudgetSet).Target(sid(PhaseConfiguringLength)).Do("countTransition").
			On(evAbandon).Target(sid(PhaseAborted)).Do("countTransition").
			Done().
		State(sid(PhaseConfiguringLength)).
			OnEntry("logEntry").
			On(evLengthSet).Target(sid(PhaseAwaitingInput)).Do("countTransition").
			On(evAbandon).Target(sid(PhaseAborted)).Do("countTransition").
			Done().
		State(sid(PhaseAwaitingInput)).
			OnEntry("logEntry").
			On(evHistory).Target(sid(PhaseShowingHistory)).Do("countTransition").
			On(evScore).Target(sid(PhaseScoring)).Do("countTransition").
			On(evQuit).Target(sid(PhaseConfirmingQuit)).Do("countTransition").
			On(evGiveUp).Target(sid(PhaseAborted)).Do("countTransition").
			Done().
		State(sid(PhaseShowingHistory)).
			OnEntry("logEntry").
			On(evResume).Target(sid(PhaseAwaitingInput)).Do("countTransition").
			Done().
		State(sid(PhaseScoring)).
			OnEntry("logEntry").
			On(evWin).Target(sid(PhaseWon)).Do("countTransition").
			On(evLose).Target(sid(PhaseLost)).Do("countTransition").
			On(evContinue).Target(sid(PhaseAwaitingInput)).Do("countTransition").
			Done().
		State(sid(PhaseConfirmingQuit)).
			OnEntry("logEntry").
			On(evConfirmQuit).Target(sid(PhaseAborted)).Do("countTransition").
			On(evResume).Target(sid(PhaseAwaitingInput)).Do("countTransition").
			Done().
		State(sid(PhaseWon)).
			Final().
			OnEntry("logEntry").
			Done().
		State(sid(PhaseLost)).
			Final().
			OnEntry("logEntry").
			Done().
		State(sid(PhaseAborted)).
			Final().
			OnEntry("logEntry").
			Done().
		Build()
}

func logEntry(ctx **machineContext, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).log.Debug().Str("event", string(event.Type)).Msg("session phase entered")
}

func countTransition(ctx **machineContext, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).transitions++
}
