package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterWindow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.Equal(t, time.Minute, l.RetryAfter())
}

func TestLimiterIgnoresEmptyKey(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	assert.True(t, l.Allow(""))
	assert.True(t, l.Allow(""))
}
