// Package game implements the snake simulation: a fixed-step engine driven
// by a variable-rate poll, with a small state machine and typed events for
// the presentation layer. It performs no I/O.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/snake-leaderboard/internal/core"
)

// ErrIllegalTransition is returned by Start when the engine is not in
// pre-start.
var ErrIllegalTransition = errors.New("game: illegal state transition")

// noApple marks the board as having no apple while a relocation is pending.
var noApple = core.Point{X: -1, Y: -1}

// Engine owns all simulation state for one game session.
type Engine struct {
	cfg Config
	rng *rand.Rand

	state State
	won   bool
	ticks uint64
	score int
	speed int

	// Snake state. body holds the last tailLength head positions, oldest
	// first; after a tick its last element equals head.
	head       core.Point
	body       []core.Point
	tailLength int
	velocity   core.Vec // applied on the last tick
	heading    core.Vec // applied on the next tick

	apple        core.Point
	applePending bool
	appleDue     time.Time

	now      time.Time // time of the latest Advance
	lastTick time.Time

	listeners []Listener
}

// New creates an engine in pre-start. The seed drives apple placement.
func New(cfg Config, seed int64) *Engine {
	e := &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
	e.resetSimulation()
	return e
}

// Subscribe registers a listener for engine events.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

func (e *Engine) emit(evt Event) {
	for _, l := range e.listeners {
		l(evt)
	}
}

// resetSimulation restores the fresh-session snake, score and speed.
func (e *Engine) resetSimulation() {
	e.won = false
	e.ticks = 0
	e.score = 0
	e.speed = e.cfg.InitialSpeed
	e.head = e.cfg.Start
	e.body = e.body[:0]
	e.tailLength = e.cfg.InitialLength
	e.velocity = core.Vec{}
	e.heading = core.Vec{}
	e.apple = noApple
	e.applePending = false
	e.appleDue = time.Time{}
	e.lastTick = time.Time{}
}

// Start begins a new game. Only legal from pre-start.
func (e *Engine) Start() error {
	if e.state != StatePreStart {
		return fmt.Errorf("%w: start from %s", ErrIllegalTransition, e.state)
	}
	e.resetSimulation()
	e.state = StatePlaying
	if !e.placeApple() {
		// A board too small for even the starting snake is a win on arrival.
		e.finish(true)
		return nil
	}
	e.emit(StartedEvent{})
	return nil
}

// Reset returns the engine to pre-start from any state.
func (e *Engine) Reset() {
	e.state = StatePreStart
	e.resetSimulation()
	e.emit(ResetEvent{})
}

// TogglePause flips between playing and paused. It is ignored before the
// snake has a heading, and in pre-start or game-over.
func (e *Engine) TogglePause() bool {
	if e.heading.IsZero() {
		return false
	}
	switch e.state {
	case StatePlaying:
		e.state = StatePaused
	case StatePaused:
		e.state = StatePlaying
		// Resume without a catch-up tick burst.
		e.lastTick = e.now
	default:
		return false
	}
	e.emit(PauseEvent{Paused: e.state == StatePaused})
	return true
}

// SetDirection requests a heading for the next tick. Reversals of the
// current heading or of the last applied velocity are dropped silently.
func (e *Engine) SetDirection(d core.Direction) bool {
	if e.state != StatePlaying {
		return false
	}
	v := d.Vec()
	if v.IsZero() {
		return false
	}
	if !e.velocity.IsZero() && v == e.velocity.Reverse() {
		return false
	}
	if !e.heading.IsZero() && v == e.heading.Reverse() {
		return false
	}
	e.heading = v
	return true
}

// Interval returns the real time between ticks at the current speed.
func (e *Engine) Interval() time.Duration {
	return time.Second / time.Duration(e.speed)
}

// Advance is called once per display frame. It processes at most one tick,
// and only when 1/speed seconds have elapsed since the previous one.
// Returns true if a tick ran.
func (e *Engine) Advance(now time.Time) bool {
	e.now = now
	if e.state != StatePlaying {
		return false
	}
	e.relocateAppleIfDue()
	if e.state != StatePlaying {
		return false
	}
	if !e.lastTick.IsZero() && now.Sub(e.lastTick) < e.Interval() {
		return false
	}
	e.lastTick = now
	e.Step()
	return true
}

// Step runs exactly one simulation tick, ignoring real time.
func (e *Engine) Step() {
	if e.state != StatePlaying {
		return
	}
	e.ticks++
	e.relocateAppleIfDue()
	if e.state != StatePlaying {
		return
	}

	e.velocity = e.heading
	e.head = e.head.Add(e.velocity)

	if e.collided() {
		e.finish(false)
		return
	}

	ate := !e.applePending && e.head == e.apple
	if ate {
		e.apple = noApple
		e.score++
		e.tailLength++
		if e.cfg.isThreshold(e.score) {
			e.speed++
		}
	}

	e.body = append(e.body, e.head)
	if extra := len(e.body) - e.tailLength; extra > 0 {
		e.body = append(e.body[:0], e.body[extra:]...)
	}

	if ate {
		e.emit(AppleEatenEvent{Score: e.score, Speed: e.speed})
		e.scheduleApple()
	}
}

// collided evaluates the game-over condition for the current head.
// A tick without velocity never ends the game.
func (e *Engine) collided() bool {
	if e.velocity.IsZero() {
		return false
	}
	if !e.head.In(e.cfg.BoardSize) {
		return true
	}
	for _, p := range e.body {
		if p == e.head {
			return true
		}
	}
	return false
}

func (e *Engine) finish(won bool) {
	e.state = StateGameOver
	e.won = won
	e.emit(GameOverEvent{Score: e.score, Won: won, Ticks: e.ticks})
}

// scheduleApple relocates the apple now or after the configured delay.
func (e *Engine) scheduleApple() {
	if e.cfg.AppleDelay <= 0 {
		if !e.placeApple() {
			e.finish(true)
		}
		return
	}
	e.applePending = true
	e.appleDue = e.now.Add(e.cfg.AppleDelay)
}

func (e *Engine) relocateAppleIfDue() {
	if !e.applePending || e.now.Before(e.appleDue) {
		return
	}
	e.applePending = false
	if !e.placeApple() {
		e.finish(true)
	}
}

// placeApple puts the apple on a random cell not covered by the snake.
// It tries rejection sampling first, then scans the free cells so the
// search is bounded. Returns false when the board is full.
func (e *Engine) placeApple() bool {
	size := e.cfg.BoardSize
	occupied := make([]bool, size*size)
	free := size * size
	mark := func(p core.Point) {
		if p.In(size) && !occupied[p.Y*size+p.X] {
			occupied[p.Y*size+p.X] = true
			free--
		}
	}
	mark(e.head)
	for _, p := range e.body {
		mark(p)
	}
	if free == 0 {
		e.apple = noApple
		return false
	}

	for range e.cfg.AppleAttempts {
		p := core.Point{X: e.rng.Intn(size), Y: e.rng.Intn(size)}
		if !occupied[p.Y*size+p.X] {
			e.apple = p
			return true
		}
	}

	n := e.rng.Intn(free)
	for i, taken := range occupied {
		if taken {
			continue
		}
		if n == 0 {
			e.apple = core.Point{X: i % size, Y: i / size}
			return true
		}
		n--
	}
	return false
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Score returns the number of apples eaten.
func (e *Engine) Score() int { return e.score }

// Speed returns the current tick rate in ticks per second.
func (e *Engine) Speed() int { return e.speed }

// Won reports whether the game ended by filling the board.
func (e *Engine) Won() bool { return e.won }

// Head returns the head position.
func (e *Engine) Head() core.Point { return e.head }

// Apple returns the apple position and whether one is on the board.
func (e *Engine) Apple() (core.Point, bool) {
	return e.apple, e.apple != noApple
}

// Body returns a copy of the body, oldest segment first.
func (e *Engine) Body() []core.Point {
	out := make([]core.Point, len(e.body))
	copy(out, e.body)
	return out
}

// BoardSize returns the side length of the board.
func (e *Engine) BoardSize() int { return e.cfg.BoardSize }
