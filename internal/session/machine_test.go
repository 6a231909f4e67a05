package session

import (
	"testing"

	"github.com/felixgeelhaar/statekit"
	"github.com/rs/zerolog"
)

func TestMachinePaths(t *testing.T) {
	cases := []struct {
		name   string
		events []statekit.EventType
		want   Phase
	}{
		{"declined", []statekit.EventType{evDecline}, PhaseAborted},
		{"abandoned budget", []statekit.EventType{evPlay, evRulesSet, evAbandon}, PhaseAborted},
		{"abandoned length", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evAbandon}, PhaseAborted},
		{"ready", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet}, PhaseAwaitingInput},
		{"history", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evHistory}, PhaseShowingHistory},
		{"history and back", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evHistory, evResume}, PhaseAwaitingInput},
		{"scoring", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evScore}, PhaseScoring},
		{"miss", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evScore, evContinue}, PhaseAwaitingInput},
		{"win", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evScore, evWin}, PhaseWon},
		{"lose", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evScore, evLose}, PhaseLost},
		{"quit", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evQuit, evConfirmQuit}, PhaseAborted},
		{"quit declined", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evQuit, evResume}, PhaseAwaitingInput},
		{"give up", []statekit.EventType{evPlay, evRulesSet, evBudgetSet, evLengthSet, evGiveUp}, PhaseAborted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mc := &machineContext{log: zerolog.Nop()}
			machine, err := newMachine(mc)
			if err != nil {
				t.Fatalf("newMachine failed: %v", err)
			}
			interp := statekit.NewInterpreter(machine)
			interp.Start()
			if got := Phase(interp.State().Value); got != PhaseConfirmingStart {
				t.Fatalf("initial phase = %s", got)
			}
			for _, ev := range tc.events {
				interp.Send(statekit.Event{Type: ev})
			}
			if got := Phase(interp.State().Value); got != tc.want {
				t.Fatalf("phase = %s, want %s", got, tc.want)
			}
			if tc.want.Terminal() != interp.Done() {
				t.Fatalf("Done() = %v for phase %s", interp.Done(), tc.want)
			}
			if mc.transitions != len(tc.events) {
				t.Fatalf("transitions = %d, want %d", mc.transitions, len(tc.events))
			}
		})
	}
}
