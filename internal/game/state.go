package game

// State is the engine's position in its lifecycle.
type State int

const (
	StatePreStart State = iota
	StatePlaying
	StatePaused
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StatePreStart:
		return "pre-start"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}
