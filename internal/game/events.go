package game

// Event is emitted by the engine to its subscribers.
type Event interface {
	gameEvent()
}

// StartedEvent is emitted on the pre-start → playing transition.
type StartedEvent struct{}

func (StartedEvent) gameEvent() {}

// AppleEatenEvent is emitted when the head reaches the apple.
// The front-end uses it for eat feedback.
type AppleEatenEvent struct {
	Score int
	Speed int
}

func (AppleEatenEvent) gameEvent() {}

// PauseEvent is emitted whenever the pause state flips.
type PauseEvent struct {
	Paused bool
}

func (PauseEvent) gameEvent() {}

// GameOverEvent is emitted once, on the tick that ends the game.
// Won is set when the board filled up and no apple could be placed.
type GameOverEvent struct {
	Score int
	Won   bool
	Ticks uint64
}

func (GameOverEvent) gameEvent() {}

// ResetEvent is emitted when the engine returns to pre-start.
type ResetEvent struct{}

func (ResetEvent) gameEvent() {}

// Listener receives engine events synchronously, inside the call that
// produced them. Listeners must not block.
type Listener func(Event)
