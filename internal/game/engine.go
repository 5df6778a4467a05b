// internal/game/engine.go
//
// Core engine for a single Grid Chase session.
// Responsibilities:
//   - Create games for a chosen grid size (player at origin, target in the far corner).
//   - Apply directional moves with per-axis clamping.
//   - Track state transitions: active → won (terminal for moves).
//   - Reset in place, optionally with a new size.
//
// The engine is total: every input maps to a valid state. Size validation
// lives at the edge (ValidSize) so callers can reject unknown sizes there.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultSize is the grid size a fresh session starts with.
const DefaultSize = 7

// Sizes lists the grid sizes offered to players.
var Sizes = []int{5, 7, 9}

var (
	ErrInvalidSize      = errors.New("invalid grid size")
	ErrInvalidDirection = errors.New("invalid direction")
)

var deltas = map[Direction]Point{
	Up:    {X: 0, Y: 1},
	Down:  {X: 0, Y: -1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

// New constructs an active game on a size x size grid.
// Sizes below 1 are treated as 1.
func New(size int) *Game {
	g := &Game{ID: uuid.NewString()}
	g.Reset(size)
	return g
}

// ValidSize reports whether n is one of Sizes.
func ValidSize(n int) bool {
	for _, s := range Sizes {
		if s == n {
			return true
		}
	}
	return false
}

// ParseDirection maps user input ("up", "Left", ...) to a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := deltas[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Move applies a directional input and reports whether it changed anything.
//
// While active: the player moves by the direction's delta, each axis is
// clamped to [0, Size-1], the move counter increments (even when clamping
// leaves the position unchanged), and reaching the target sets Won.
// While won, or for an unknown direction, the call is a no-op.
func (g *Game) Move(d Direction) bool {
	delta, ok := deltas[d]
	if g.Won || !ok {
		return false
	}
	g.Player = Point{
		X: clamp(g.Player.X+delta.X, 0, g.Size-1),
		Y: clamp(g.Player.Y+delta.Y, 0, g.Size-1),
	}
	g.Moves++
	if g.Player == g.Target {
		g.Won = true
	}
	return true
}

// Reset reinitialises the game for the given size, keeping its ID.
func (g *Game) Reset(size int) {
	if size < 1 {
		size = 1
	}
	g.Size = size
	g.Player = Point{}
	g.Target = Point{X: size - 1, Y: size - 1}
	g.Moves = 0
	// A 1x1 board starts on the target.
	g.Won = g.Player == g.Target
}

// State reports a coarse string for the current state: "active" or "won".
func (g *Game) State() string {
	if g.Won {
		return "won"
	}
	return "active"
}

// Status is the read-only status line shown under the board.
func (g *Game) Status() string {
	s := fmt.Sprintf("Player (%d,%d) · Target (%d,%d) · Moves %d · Grid %dx%d",
		g.Player.X, g.Player.Y, g.Target.X, g.Target.Y, g.Moves, g.Size, g.Size)
	if g.Won {
		s += fmt.Sprintf(" · You caught the target in %d moves!", g.Moves)
	}
	return s
}

// Board renders the grid top row first: 'P' player, 'T' target, '*' both, '.' empty.
func (g *Game) Board() []string {
	rows := make([]string, 0, g.Size)
	for y := g.Size - 1; y >= 0; y-- {
		var b strings.Builder
		b.Grow(g.Size)
		for x := 0; x < g.Size; x++ {
			p := Point{X: x, Y: y}
			switch {
			case p == g.Player && p == g.Target:
				b.WriteByte('*')
			case p == g.Player:
				b.WriteByte('P')
			case p == g.Target:
				b.WriteByte('T')
			default:
				b.WriteByte('.')
			}
		}
		rows = append(rows, b.String())
	}
	return rows
}

// Clone returns an independent copy.
func (g *Game) Clone() *Game {
	c := *g
	return &c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
