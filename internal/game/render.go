package game

import (
	"fmt"

	"github.com/vovakirdan/snake-leaderboard/internal/core"
)

// cellWidth is the number of terminal columns per board cell, which keeps
// the board roughly square in most fonts.
const cellWidth = 2

// hudRows is the height of the status bar above the board.
const hudRows = 2

// MinScreenSize returns the smallest screen that fits the board and HUD.
func (e *Engine) MinScreenSize() (w, h int) {
	return e.cfg.BoardSize*cellWidth + 2, e.cfg.BoardSize + 2 + hudRows
}

// Render draws the board, snake, apple and state overlays into dst.
func (e *Engine) Render(dst *core.Screen, player string) {
	dst.Clear()

	minW, minH := e.MinScreenSize()
	if dst.Width() < minW || dst.Height() < minH {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small", core.ColorBrightRed)
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("Need %dx%d", minW, minH), core.ColorGray)
		return
	}

	e.renderHUD(dst, player)

	ox := (dst.Width() - minW) / 2
	oy := hudRows
	dst.DrawBox(ox, oy, minW, e.cfg.BoardSize+2, core.ColorGray)

	cell := func(p core.Point, r rune, c core.Color) {
		x := ox + 1 + p.X*cellWidth
		y := oy + 1 + p.Y
		for i := range cellWidth {
			dst.SetColor(x+i, y, r, c)
		}
	}

	if apple, ok := e.Apple(); ok {
		cell(apple, '●', core.ColorRed)
	}
	for _, p := range e.body {
		cell(p, '█', core.ColorGreen)
	}
	if e.head.In(e.cfg.BoardSize) {
		cell(e.head, '█', core.ColorBrightGreen)
	}

	mid := oy + (e.cfg.BoardSize+2)/2
	switch e.state {
	case StatePreStart:
		e.renderOverlay(dst, mid, "Snake", "Press Enter to start", core.ColorYellow)
	case StatePaused:
		e.renderOverlay(dst, mid, "Paused", "Press P to continue", core.ColorYellow)
	case StateGameOver:
		if e.won {
			e.renderOverlay(dst, mid, "You Win!", fmt.Sprintf("Final Score: %d", e.score), core.ColorOrange)
		} else {
			e.renderOverlay(dst, mid, "Game Over", fmt.Sprintf("Final Score: %d", e.score), core.ColorBrightRed)
		}
	case StatePlaying:
		if e.heading.IsZero() {
			dst.DrawTextCentered(mid+2, "Use arrows or WASD to move", core.ColorGray)
		}
	}
}

func (e *Engine) renderHUD(dst *core.Screen, player string) {
	hud := fmt.Sprintf(" Score: %d  Speed: %d", e.score, e.speed)
	if player != "" {
		hud += "  Player: " + player
	}
	dst.DrawText(0, 0, hud, core.ColorBrightWhite)
	for x := range dst.Width() {
		dst.Set(x, 1, '─')
	}
}

func (e *Engine) renderOverlay(dst *core.Screen, y int, title, hint string, c core.Color) {
	w := max(len([]rune(title)), len([]rune(hint))) + 4
	x := (dst.Width() - w) / 2
	dst.DrawBox(x, y-2, w, 4, c)
	dst.DrawTextCentered(y-1, title, c)
	dst.DrawTextCentered(y, hint, core.ColorGray)
}
