package core

// Action is a semantic player intent, abstracted from physical key presses.
type Action int

const (
	ActionNone        Action = iota
	ActionUp                 // W, Up arrow
	ActionDown               // S, Down arrow
	ActionLeft               // A, Left arrow
	ActionRight              // D, Right arrow
	ActionPause              // Space, P
	ActionRestart            // Enter, R
	ActionConfirm            // Enter in dialogs
	ActionSkip               // Esc / N in the save dialog
	ActionLeaderboard        // L
	ActionQuit               // Q, Ctrl+C
)

// Direction returns the heading for a movement action, or DirNone.
func (a Action) Direction() Direction {
	switch a {
	case ActionUp:
		return DirUp
	case ActionDown:
		return DirDown
	case ActionLeft:
		return DirLeft
	case ActionRight:
		return DirRight
	default:
		return DirNone
	}
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionConfirm:
		return "Confirm"
	case ActionSkip:
		return "Skip"
	case ActionLeaderboard:
		return "Leaderboard"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
