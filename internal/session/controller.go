// Package session mediates between the game engine, the leaderboard and a
// presentation layer. It owns the player's name for the lifetime of the
// process and turns game-over events into save/skip decisions.
package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-leaderboard/internal/core"
	"github.com/vovakirdan/snake-leaderboard/internal/game"
	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

// ErrNoPendingScore is returned by Save when there is no finished game to
// save.
var ErrNoPendingScore = errors.New("session: no finished game to save")

// Result is the outcome of one finished game.
type Result struct {
	Username   string
	Score      int
	Won        bool
	Generation uint64 // game number within this session
}

// Saved is the outcome of a successful save.
type Saved struct {
	Record     leaderboard.Record
	Rank       leaderboard.Rank
	Top        []leaderboard.Record
	Generation uint64
}

// Controller drives one player's games.
type Controller struct {
	engine *game.Engine
	lb     *leaderboard.Service
	topN   int
	logger *log.Logger

	username   string
	generation uint64
	pending    *Result

	onGameOver []func(Result)
}

// Options configures a Controller.
type Options struct {
	TopN   int // rows returned after a save; default 5
	Logger *log.Logger
}

// New creates a controller. lb may be offline; it must not be nil.
func New(engine *game.Engine, lb *leaderboard.Service, opts Options) *Controller {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	c := &Controller{
		engine: engine,
		lb:     lb,
		topN:   opts.TopN,
		logger: opts.Logger,
	}
	engine.Subscribe(c.handleEvent)
	return c
}

func (c *Controller) handleEvent(evt game.Event) {
	over, ok := evt.(game.GameOverEvent)
	if !ok {
		return
	}
	res := Result{
		Username:   c.username,
		Score:      over.Score,
		Won:        over.Won,
		Generation: c.generation,
	}
	c.pending = &res
	c.logger.Info("game over", "username", res.Username, "score", res.Score, "won", res.Won, "ticks", over.Ticks)
	for _, fn := range c.onGameOver {
		fn(res)
	}
}

// OnGameOver registers a callback fired once per finished game.
func (c *Controller) OnGameOver(fn func(Result)) {
	c.onGameOver = append(c.onGameOver, fn)
}

// Engine returns the underlying engine.
func (c *Controller) Engine() *game.Engine { return c.engine }

// Username returns the remembered player name, empty before the first game.
func (c *Controller) Username() string { return c.username }

// SetUsername validates and remembers a name without starting a game, so
// a front-end can pre-fill its prompt.
func (c *Controller) SetUsername(name string) error {
	valid, err := leaderboard.Validate(name, 0)
	if err != nil {
		return err
	}
	c.username = valid
	return nil
}

// Generation returns the current game number.
func (c *Controller) Generation() uint64 { return c.generation }

// Online reports whether scores can be saved.
func (c *Controller) Online() bool { return c.lb.Available() }

// Start validates the username and begins a game. The name is kept for
// later games; duplicates across players are allowed.
func (c *Controller) Start(username string) error {
	name, err := leaderboard.Validate(username, 0)
	if err != nil {
		return err
	}
	if c.engine.State() != game.StatePreStart {
		c.Restart()
	}
	c.username = name
	c.pending = nil
	if err := c.engine.Start(); err != nil {
		return err
	}
	c.logger.Info("game started", "username", name, "generation", c.generation)
	return nil
}

// Restart abandons the current game and returns to pre-start. Results of
// saves still in flight for the old game are ignored by Accept.
func (c *Controller) Restart() {
	c.generation++
	c.pending = nil
	c.engine.Reset()
}

// Skip declines to save the finished game and restarts.
func (c *Controller) Skip() {
	c.Restart()
}

// Pending returns the finished game awaiting a save/skip decision.
func (c *Controller) Pending() (Result, bool) {
	if c.pending == nil {
		return Result{}, false
	}
	return *c.pending, true
}

// CanSave reports whether a save/skip choice should be offered.
func (c *Controller) CanSave() bool {
	return c.pending != nil && c.lb.Available()
}

// Save persists a finished game and ranks it. It only reads immutable
// controller fields, so a UI may run it off the main loop. Failures are
// returned for a user-initiated retry.
func (c *Controller) Save(ctx context.Context, res Result) (Saved, error) {
	if res.Username == "" {
		return Saved{Generation: res.Generation}, ErrNoPendingScore
	}
	rec, err := c.lb.Save(ctx, res.Username, res.Score)
	if err != nil {
		return Saved{Generation: res.Generation}, err
	}
	return Saved{
		Record:     rec,
		Rank:       c.lb.Rank(ctx, rec.Score, rec.CreatedAt),
		Top:        c.lb.Top(ctx, c.topN),
		Generation: res.Generation,
	}, nil
}

// Accept reports whether a save outcome belongs to the current game and,
// if so, clears the pending result.
func (c *Controller) Accept(s Saved) bool {
	if s.Generation != c.generation {
		return false
	}
	c.pending = nil
	return true
}

// Leaderboard returns the top n records, empty when offline.
func (c *Controller) Leaderboard(ctx context.Context, n int) []leaderboard.Record {
	return c.lb.Top(ctx, n)
}

// IsOwn reports whether a listed record is the player's saved one.
func (c *Controller) IsOwn(rec leaderboard.Record, saved leaderboard.Record) bool {
	if rec.ID != "" && saved.ID != "" {
		return rec.ID == saved.ID
	}
	return c.lb.Ranker().Matches(rec, saved.Score, saved.CreatedAt)
}

// HandleAction applies an in-game action and reports whether it changed
// anything.
func (c *Controller) HandleAction(a core.Action) bool {
	switch a {
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		return c.engine.SetDirection(a.Direction())
	case core.ActionPause:
		return c.engine.TogglePause()
	case core.ActionRestart:
		if c.engine.State() == game.StateGameOver {
			c.Restart()
			return true
		}
	}
	return false
}

// Advance forwards the frame clock to the engine.
func (c *Controller) Advance(now time.Time) bool {
	return c.engine.Advance(now)
}
