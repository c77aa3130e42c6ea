package game

// Snapshot captures the engine state for determinism testing.
type Snapshot struct {
	Tick       uint64
	State      State
	Score      int
	Speed      int
	TailLength int
	BodyLen    int
	HeadX      int
	HeadY      int
	AppleX     int
	AppleY     int
	Won        bool
}

// Snapshot returns the current engine snapshot.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Tick:       e.ticks,
		State:      e.state,
		Score:      e.score,
		Speed:      e.speed,
		TailLength: e.tailLength,
		BodyLen:    len(e.body),
		HeadX:      e.head.X,
		HeadY:      e.head.Y,
		AppleX:     e.apple.X,
		AppleY:     e.apple.Y,
		Won:        e.won,
	}
}
