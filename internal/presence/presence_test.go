package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOnline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsOnline(now, now))
	assert.True(t, IsOnline(now.Add(-4*time.Minute-59*time.Second), now))
	assert.False(t, IsOnline(now.Add(-Window), now), "the window boundary is exclusive")
	assert.False(t, IsOnline(now.Add(-time.Hour), now))
	assert.True(t, IsOnline(now.Add(time.Second), now), "clock skew counts as fresh")
}
