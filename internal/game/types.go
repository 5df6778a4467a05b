// internal/game/types.go
//
// Core type definitions for the Grid Chase engine.
// Defines:
//   - Direction: one of the four directional inputs.
//   - Point: a cell on the grid.
//   - Game: state for a single in-progress or finished chase.

package game

// Direction is a directional input from the player.
// "up" increases Y so the target sits in the top-right corner of the board.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Point is a grid cell; (0,0) is the bottom-left corner.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Game holds the state of a single Grid Chase session.
type Game struct {
	ID     string `json:"id"`     // Session-scoped identifier.
	Size   int    `json:"size"`   // Grid is Size x Size.
	Player Point  `json:"player"` // Current player position.
	Target Point  `json:"target"` // Fixed at (Size-1, Size-1).
	Moves  int    `json:"moves"`  // Directional actions applied while active.
	Won    bool   `json:"won"`    // Terminal once true.
}
