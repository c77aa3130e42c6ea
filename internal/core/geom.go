// Package core provides the small value types shared by the snake engine,
// the leaderboard and the terminal front-end. It has no external
// dependencies so the simulation stays pure and testable.
package core

// Point is a cell coordinate on the square board.
type Point struct {
	X, Y int
}

// Add returns p translated by v.
func (p Point) Add(v Vec) Point {
	return Point{X: p.X + v.DX, Y: p.Y + v.DY}
}

// In reports whether p lies inside a size×size board.
func (p Point) In(size int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < size && p.Y < size
}

// Vec is a per-tick velocity. The engine only uses the zero vector and the
// four unit vectors.
type Vec struct {
	DX, DY int
}

// IsZero reports whether the vector does not move.
func (v Vec) IsZero() bool {
	return v.DX == 0 && v.DY == 0
}

// Reverse returns the opposite vector.
func (v Vec) Reverse() Vec {
	return Vec{DX: -v.DX, DY: -v.DY}
}

// Direction is a player's requested heading.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Vec returns the unit velocity for d (zero for DirNone).
func (d Direction) Vec() Vec {
	switch d {
	case DirUp:
		return Vec{DX: 0, DY: -1}
	case DirDown:
		return Vec{DX: 0, DY: 1}
	case DirLeft:
		return Vec{DX: -1, DY: 0}
	case DirRight:
		return Vec{DX: 1, DY: 0}
	default:
		return Vec{}
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
