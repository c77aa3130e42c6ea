package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/snake-leaderboard/internal/core"
)

// instantConfig returns the default rules with immediate apple relocation.
func instantConfig() Config {
	cfg := DefaultConfig()
	cfg.AppleDelay = 0
	return cfg
}

func startedEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := New(cfg, 42)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	// Park the apple away from the paths used in tests.
	e.apple = core.Point{X: 0, Y: 0}
	return e
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BoardSize != 20 {
		t.Errorf("BoardSize = %d, want 20", cfg.BoardSize)
	}
	if cfg.Start != (core.Point{X: 10, Y: 10}) {
		t.Errorf("Start = %v, want (10,10)", cfg.Start)
	}
	if cfg.InitialLength != 2 || cfg.InitialSpeed != 9 {
		t.Errorf("InitialLength/InitialSpeed = %d/%d, want 2/9", cfg.InitialLength, cfg.InitialSpeed)
	}
	if cfg.AppleDelay != 80*time.Millisecond {
		t.Errorf("AppleDelay = %v, want 80ms", cfg.AppleDelay)
	}
}

func TestStateTransitions(t *testing.T) {
	e := New(instantConfig(), 1)
	if e.State() != StatePreStart {
		t.Fatalf("new engine state = %v, want pre-start", e.State())
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if e.State() != StatePlaying {
		t.Fatalf("state after Start = %v, want playing", e.State())
	}
	if err := e.Start(); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("second Start() error = %v, want ErrIllegalTransition", err)
	}

	e.Reset()
	if e.State() != StatePreStart {
		t.Errorf("state after Reset = %v, want pre-start", e.State())
	}
	if e.Score() != 0 || e.Speed() != 9 || len(e.Body()) != 0 {
		t.Errorf("Reset did not restore fresh session: score=%d speed=%d body=%d",
			e.Score(), e.Speed(), len(e.Body()))
	}
	if err := e.Start(); err != nil {
		t.Errorf("Start() after Reset failed: %v", err)
	}
}

func TestStartPlacesAppleOffSnake(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		e := New(DefaultConfig(), seed)
		if err := e.Start(); err != nil {
			t.Fatalf("Start() failed: %v", err)
		}
		apple, ok := e.Apple()
		if !ok {
			t.Fatalf("seed %d: no apple after Start", seed)
		}
		if apple == e.Head() {
			t.Fatalf("seed %d: apple placed on head", seed)
		}
		if !apple.In(e.BoardSize()) {
			t.Fatalf("seed %d: apple %v off board", seed, apple)
		}
	}
}

func TestNoImmediateReversal(t *testing.T) {
	e := startedEngine(t, instantConfig())

	if !e.SetDirection(core.DirRight) {
		t.Fatal("SetDirection(right) from rest rejected")
	}
	if e.SetDirection(core.DirLeft) {
		t.Error("SetDirection(left) accepted while heading right")
	}
	e.Step()

	// Up is a legal turn; left would reverse the applied velocity even
	// though the requested heading is now up.
	if !e.SetDirection(core.DirUp) {
		t.Fatal("SetDirection(up) rejected")
	}
	if e.SetDirection(core.DirLeft) {
		t.Error("SetDirection(left) accepted before the up turn was applied")
	}
	if e.SetDirection(core.DirDown) {
		t.Error("SetDirection(down) accepted while heading up")
	}
	e.Step()

	if got := e.Head(); got != (core.Point{X: 11, Y: 9}) {
		t.Errorf("Head() = %v, want (11,9)", got)
	}
	if e.State() != StatePlaying {
		t.Errorf("state = %v, want playing", e.State())
	}
}

func TestDirectionFromRestAcceptsAnyHeading(t *testing.T) {
	for _, d := range []core.Direction{core.DirUp, core.DirDown, core.DirLeft, core.DirRight} {
		t.Run(d.String(), func(t *testing.T) {
			e := startedEngine(t, instantConfig())
			if !e.SetDirection(d) {
				t.Errorf("SetDirection(%v) from rest rejected", d)
			}
		})
	}
}

func TestBodyGrowsToTailLength(t *testing.T) {
	e := startedEngine(t, instantConfig())
	e.SetDirection(core.DirDown)

	for k := 1; k <= 5; k++ {
		e.Step()
		want := min(k, 2)
		if got := len(e.Body()); got != want {
			t.Fatalf("after %d ticks len(body) = %d, want %d", k, got, want)
		}
		body := e.Body()
		if body[len(body)-1] != e.Head() {
			t.Fatalf("newest body segment %v != head %v", body[len(body)-1], e.Head())
		}
	}
}

func TestZeroVelocityNeverEndsGame(t *testing.T) {
	e := startedEngine(t, instantConfig())

	for range 10 {
		e.Step()
	}
	if e.State() != StatePlaying {
		t.Fatalf("state = %v after idle ticks, want playing", e.State())
	}
	body := e.Body()
	if len(body) != 2 || body[0] != e.Head() || body[1] != e.Head() {
		t.Fatalf("idle body = %v, want two copies of head", body)
	}

	// First real move must not collide with the stacked start cell.
	e.SetDirection(core.DirRight)
	e.Step()
	if e.State() != StatePlaying {
		t.Errorf("state = %v after first move, want playing", e.State())
	}
}

func TestWallCollision(t *testing.T) {
	tests := []struct {
		name  string
		dir   core.Direction
		steps int
	}{
		{"right", core.DirRight, 10},
		{"left", core.DirLeft, 11},
		{"up", core.DirUp, 11},
		{"down", core.DirDown, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := startedEngine(t, instantConfig())
			e.apple = core.Point{X: -1, Y: -1}
			var overs int
			e.Subscribe(func(evt Event) {
				if _, ok := evt.(GameOverEvent); ok {
					overs++
				}
			})
			e.SetDirection(tt.dir)

			for i := 1; i < tt.steps; i++ {
				e.Step()
				if e.State() != StatePlaying {
					t.Fatalf("game ended early at step %d, head %v", i, e.Head())
				}
			}
			e.Step()
			if e.State() != StateGameOver {
				t.Fatalf("state = %v at head %v, want game-over", e.State(), e.Head())
			}
			if e.Won() {
				t.Error("wall collision reported as a win")
			}

			e.Step()
			if overs != 1 {
				t.Errorf("GameOverEvent emitted %d times, want 1", overs)
			}
		})
	}
}

func TestSelfCollision(t *testing.T) {
	e := startedEngine(t, instantConfig())
	e.tailLength = 5

	e.SetDirection(core.DirRight)
	for range 4 {
		e.Step()
	}
	for _, d := range []core.Direction{core.DirDown, core.DirLeft} {
		if !e.SetDirection(d) {
			t.Fatalf("SetDirection(%v) rejected", d)
		}
		e.Step()
		if e.State() != StatePlaying {
			t.Fatalf("game ended early turning %v", d)
		}
	}
	e.SetDirection(core.DirUp)
	e.Step()
	if e.State() != StateGameOver {
		t.Fatalf("state = %v, want game-over after biting body", e.State())
	}
}

func TestMovingIntoLeavingTailCollides(t *testing.T) {
	e := startedEngine(t, instantConfig())
	e.tailLength = 4

	for _, d := range []core.Direction{core.DirRight, core.DirDown, core.DirLeft, core.DirUp} {
		e.SetDirection(d)
		e.Step()
	}
	if e.State() != StatePlaying {
		t.Fatalf("state = %v after loop, want playing", e.State())
	}
	e.SetDirection(core.DirRight)
	e.Step()
	if e.State() != StateGameOver {
		t.Errorf("state = %v, want game-over when entering the tail cell", e.State())
	}
}

func TestEatApple(t *testing.T) {
	e := startedEngine(t, instantConfig())
	e.apple = core.Point{X: 11, Y: 10}

	var eaten []AppleEatenEvent
	e.Subscribe(func(evt Event) {
		if a, ok := evt.(AppleEatenEvent); ok {
			eaten = append(eaten, a)
		}
	})

	e.SetDirection(core.DirRight)
	e.Step()

	if e.Score() != 1 {
		t.Errorf("Score() = %d, want 1", e.Score())
	}
	if e.tailLength != 3 {
		t.Errorf("tailLength = %d, want 3", e.tailLength)
	}
	if len(eaten) != 1 || eaten[0].Score != 1 {
		t.Errorf("AppleEatenEvent = %+v, want one event with score 1", eaten)
	}
	apple, ok := e.Apple()
	if !ok {
		t.Fatal("apple not relocated")
	}
	for _, p := range e.Body() {
		if p == apple {
			t.Errorf("relocated apple %v overlaps body", apple)
		}
	}
	if e.State() != StatePlaying {
		t.Errorf("eating ended the game: state %v", e.State())
	}
}

func TestSpeedThresholds(t *testing.T) {
	cfg := instantConfig()
	cfg.BoardSize = 40
	cfg.Start = core.Point{X: 0, Y: 20}
	e := startedEngine(t, cfg)
	e.SetDirection(core.DirRight)

	want := cfg.InitialSpeed
	for score := 1; score <= 25; score++ {
		e.apple = e.Head().Add(core.DirRight.Vec())
		e.Step()
		if e.Score() != score {
			t.Fatalf("Score() = %d, want %d", e.Score(), score)
		}
		switch score {
		case 2, 5, 10, 20:
			want++
		}
		if e.Speed() != want {
			t.Errorf("score %d: Speed() = %d, want %d", score, e.Speed(), want)
		}
	}
	if e.Speed() != cfg.InitialSpeed+4 {
		t.Errorf("final speed = %d, want %d", e.Speed(), cfg.InitialSpeed+4)
	}
}

func TestApplePlacementNearlyFullBoard(t *testing.T) {
	cfg := instantConfig()
	cfg.BoardSize = 3
	e := New(cfg, 7)
	e.state = StatePlaying

	free := core.Point{X: 2, Y: 1}
	e.body = e.body[:0]
	for y := range 3 {
		for x := range 3 {
			p := core.Point{X: x, Y: y}
			if p != free {
				e.body = append(e.body, p)
			}
		}
	}
	e.head = e.body[len(e.body)-1]
	e.tailLength = len(e.body)

	if !e.placeApple() {
		t.Fatal("placeApple() failed with one free cell")
	}
	if apple, _ := e.Apple(); apple != free {
		t.Errorf("apple = %v, want %v", apple, free)
	}

	e.body = append(e.body, free)
	if e.placeApple() {
		t.Error("placeApple() succeeded on a full board")
	}
	if _, ok := e.Apple(); ok {
		t.Error("apple reported on a full board")
	}
}

func TestFillingBoardWins(t *testing.T) {
	cfg := instantConfig()
	cfg.BoardSize = 2
	cfg.Start = core.Point{X: 0, Y: 0}
	e := New(cfg, 3)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	var over *GameOverEvent
	e.Subscribe(func(evt Event) {
		if g, ok := evt.(GameOverEvent); ok {
			over = &g
		}
	})

	moves := []struct {
		dir  core.Direction
		next core.Point
	}{
		{core.DirRight, core.Point{X: 1, Y: 0}},
		{core.DirDown, core.Point{X: 1, Y: 1}},
		{core.DirLeft, core.Point{X: 0, Y: 1}},
		{core.DirUp, core.Point{X: 0, Y: 0}},
	}
	for _, m := range moves {
		e.apple = m.next
		e.SetDirection(m.dir)
		e.Step()
	}

	if e.State() != StateGameOver || !e.Won() {
		t.Fatalf("state = %v won = %v, want game-over win", e.State(), e.Won())
	}
	if over == nil || !over.Won || over.Score != 4 {
		t.Errorf("GameOverEvent = %+v, want won with score 4", over)
	}
}

func TestPauseLegality(t *testing.T) {
	e := New(instantConfig(), 1)
	if e.TogglePause() {
		t.Error("TogglePause() accepted in pre-start")
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	e.apple = core.Point{X: 0, Y: 0}
	if e.TogglePause() {
		t.Error("TogglePause() accepted before the snake moved")
	}

	e.SetDirection(core.DirRight)
	if !e.TogglePause() || e.State() != StatePaused {
		t.Fatalf("TogglePause() did not pause: state %v", e.State())
	}
	if e.SetDirection(core.DirUp) {
		t.Error("SetDirection accepted while paused")
	}
	head := e.Head()
	e.Step()
	if e.Head() != head {
		t.Error("Step moved the snake while paused")
	}
	if !e.TogglePause() || e.State() != StatePlaying {
		t.Fatalf("TogglePause() did not resume: state %v", e.State())
	}

	e.finish(false)
	if e.TogglePause() {
		t.Error("TogglePause() accepted in game-over")
	}
}

func TestAdvanceThrottlesToSpeed(t *testing.T) {
	e := startedEngine(t, instantConfig())
	e.SetDirection(core.DirDown)
	t0 := time.Unix(1_000, 0)

	if !e.Advance(t0) {
		t.Fatal("first Advance did not tick")
	}
	if e.Advance(t0.Add(50 * time.Millisecond)) {
		t.Error("Advance ticked before 1/speed elapsed")
	}
	if !e.Advance(t0.Add(112 * time.Millisecond)) {
		t.Error("Advance did not tick after 1/speed elapsed")
	}
	if e.ticks != 2 {
		t.Errorf("ticks = %d, want 2", e.ticks)
	}
	if e.Interval() != time.Second/9 {
		t.Errorf("Interval() = %v, want %v", e.Interval(), time.Second/9)
	}
}

func TestAppleRelocationDelay(t *testing.T) {
	e := startedEngine(t, DefaultConfig())
	e.apple = core.Point{X: 11, Y: 10}
	e.SetDirection(core.DirRight)
	t0 := time.Unix(1_000, 0)

	e.Advance(t0)
	if e.Score() != 1 {
		t.Fatalf("Score() = %d, want 1", e.Score())
	}
	if _, ok := e.Apple(); ok {
		t.Error("apple present immediately after eating")
	}
	e.Advance(t0.Add(50 * time.Millisecond))
	if _, ok := e.Apple(); ok {
		t.Error("apple relocated before the delay")
	}
	e.Advance(t0.Add(90 * time.Millisecond))
	if _, ok := e.Apple(); !ok {
		t.Error("apple not relocated after the delay")
	}
}

func TestDeterminism(t *testing.T) {
	script := map[int]core.Direction{
		0:  core.DirUp,
		4:  core.DirLeft,
		9:  core.DirDown,
		15: core.DirRight,
	}
	run := func() []Snapshot {
		e := New(instantConfig(), 12345)
		if err := e.Start(); err != nil {
			t.Fatalf("Start() failed: %v", err)
		}
		var snaps []Snapshot
		for i := range 30 {
			if d, ok := script[i]; ok {
				e.SetDirection(d)
			}
			e.Step()
			snaps = append(snaps, e.Snapshot())
		}
		return snaps
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("snapshot %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRender(t *testing.T) {
	e := startedEngine(t, instantConfig())
	e.SetDirection(core.DirRight)
	e.Step()

	dst := core.NewScreen(80, 24)
	e.Render(dst, "alice")

	if !strings.Contains(dst.Row(0), "Score: 0") || !strings.Contains(dst.Row(0), "Player: alice") {
		t.Errorf("HUD row = %q", dst.Row(0))
	}
	// Board is 42 columns wide, centered: origin x = 19, y = 2.
	head := dst.GetCell(19+1+11*2, 2+1+10)
	if head.Rune != '█' || head.Color != core.ColorBrightGreen {
		t.Errorf("head cell = %+v, want bright green block", head)
	}
}

func TestRenderWindowTooSmall(t *testing.T) {
	e := New(DefaultConfig(), 1)
	dst := core.NewScreen(30, 10)
	e.Render(dst, "")
	if !strings.Contains(dst.String(), "Window too small") {
		t.Errorf("expected too-small message, got:\n%s", dst.String())
	}
}
