package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New(7)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, 7, g.Size)
	assert.Equal(t, Point{0, 0}, g.Player)
	assert.Equal(t, Point{6, 6}, g.Target)
	assert.Equal(t, 0, g.Moves)
	assert.False(t, g.Won)
	assert.Equal(t, "active", g.State())
}

func TestMove(t *testing.T) {
	t.Run("Should win after 12 minimal moves on a 7x7 grid", func(t *testing.T) {
		g := New(7)
		seq := []Direction{Right, Up, Right, Up, Right, Up, Right, Up, Right, Up, Right}
		for _, d := range seq {
			require.True(t, g.Move(d))
			require.False(t, g.Won)
		}
		require.True(t, g.Move(Up))
		assert.True(t, g.Won)
		assert.Equal(t, 12, g.Moves)
		assert.Equal(t, Point{6, 6}, g.Player)
	})

	t.Run("Should count clamped moves at a wall", func(t *testing.T) {
		g := New(5)
		g.Move(Left)
		g.Move(Down)
		assert.Equal(t, Point{0, 0}, g.Player)
		assert.Equal(t, 2, g.Moves)
	})

	t.Run("Should count every action toward the winning total", func(t *testing.T) {
		g := New(5)
		g.Move(Left) // clamped
		for i := 0; i < 4; i++ {
			g.Move(Right)
		}
		g.Move(Right) // clamped at x=4
		for i := 0; i < 4; i++ {
			g.Move(Up)
		}
		assert.True(t, g.Won)
		assert.Equal(t, 10, g.Moves)
	})

	t.Run("Should ignore moves once won", func(t *testing.T) {
		g := New(5)
		g.Player = Point{4, 3}
		require.True(t, g.Move(Up))
		require.True(t, g.Won)
		before := *g

		for _, d := range []Direction{Down, Left, Up, Right} {
			assert.False(t, g.Move(d))
		}
		assert.Equal(t, before, *g)
	})

	t.Run("Should ignore unknown directions", func(t *testing.T) {
		g := New(5)
		assert.False(t, g.Move(Direction("diagonal")))
		assert.Equal(t, 0, g.Moves)
	})
}

func TestReset(t *testing.T) {
	t.Run("Should reinitialise after a win", func(t *testing.T) {
		g := New(5)
		g.Player = Point{3, 4}
		g.Move(Right)
		require.True(t, g.Won)
		id := g.ID

		g.Reset(5)
		assert.Equal(t, id, g.ID)
		assert.Equal(t, Point{0, 0}, g.Player)
		assert.Equal(t, Point{4, 4}, g.Target)
		assert.Equal(t, 0, g.Moves)
		assert.False(t, g.Won)
	})

	t.Run("Should move the target when the size changes", func(t *testing.T) {
		g := New(7)
		g.Move(Right)
		g.Reset(9)
		assert.Equal(t, 9, g.Size)
		assert.Equal(t, Point{8, 8}, g.Target)
		assert.Equal(t, Point{0, 0}, g.Player)
		assert.Equal(t, 0, g.Moves)
	})

	t.Run("Should treat a 1x1 board as already won", func(t *testing.T) {
		g := New(1)
		assert.True(t, g.Won)
		assert.False(t, g.Move(Up))
	})
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" Left ")
	require.NoError(t, err)
	assert.Equal(t, Left, d)

	_, err = ParseDirection("north")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestValidSize(t *testing.T) {
	for _, n := range []int{5, 7, 9} {
		assert.True(t, ValidSize(n))
	}
	for _, n := range []int{0, 1, 6, 11} {
		assert.False(t, ValidSize(n))
	}
}

func TestBoard(t *testing.T) {
	g := New(5)
	g.Move(Right)
	board := g.Board()
	require.Len(t, board, 5)
	assert.Equal(t, "....T", board[0])
	assert.Equal(t, ".P...", board[4])
	assert.Contains(t, g.Status(), "Moves 1")
}
