package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should return defaults when nothing is set", func(t *testing.T) {
		c, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 1500, c.CanvasSize)
		assert.Equal(t, 95, c.JPEGQuality)
		assert.Equal(t, 25*time.Second, c.FetchTimeout)
	})

	t.Run("Should override from environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("FETCH_TIMEOUT", "3s")
		t.Setenv("CANVAS_SIZE", "800")
		t.Setenv("UNRELATED_VAR", "x")

		c, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", c.Port)
		assert.Equal(t, 3*time.Second, c.FetchTimeout)
		assert.Equal(t, 800, c.CanvasSize)
	})

	t.Run("Should reject an invalid quality", func(t *testing.T) {
		t.Setenv("JPEG_QUALITY", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}
