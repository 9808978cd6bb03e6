package lifecycle

import "github.com/simpleiot/modemctl/mm"

// Action is what one driver step does for a given modem state
type Action int

// Actions, in lifecycle order
const (
	ActionNone Action = iota
	ActionRecover
	ActionUnlock
	ActionEnable
	ActionAttach
	ActionObserve
)

func (a Action) String() string {
	switch a {
	case ActionRecover:
		return "recover"
	case ActionUnlock:
		return "unlock"
	case ActionEnable:
		return "enable"
	case ActionAttach:
		return "attach"
	case ActionObserve:
		return "observe"
	default:
		return "none"
	}
}

// Plan returns the action a step takes for a modem in state s. States in
// which ModemManager is busy transitioning, or which need outside help
// (registration), map to ActionNone.
func Plan(s mm.ModemState) Action {
	switch s {
	case mm.ModemStateFailed:
		return ActionRecover
	case mm.ModemStateLocked:
		return ActionUnlock
	case mm.ModemStateDisabled:
		return ActionEnable
	case mm.ModemStateRegistered:
		return ActionAttach
	case mm.ModemStateConnected:
		return ActionObserve
	default:
		return ActionNone
	}
}

// Progresses returns true if taking the action may move the modem further
// along, so the caller should step again.
func (a Action) Progresses() bool {
	switch a {
	case ActionRecover, ActionUnlock, ActionEnable, ActionAttach:
		return true
	}
	return false
}
