package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHotScore_FreshBeatsStale(t *testing.T) {
	now := time.Now()

	fresh := hotScore(10, 0, now.Add(-1*time.Hour), now)
	stale := hotScore(10, 0, now.Add(-48*time.Hour), now)

	assert.Greater(t, fresh, stale)
}

func TestHotScore_NetVotes(t *testing.T) {
	now := time.Now()
	published := now.Add(-2 * time.Hour)

	positive := hotScore(10, 2, published, now)
	negative := hotScore(2, 10, published, now)

	assert.Greater(t, positive, 0.0)
	assert.Less(t, negative, 0.0)
	assert.Equal(t, 0.0, hotScore(5, 5, published, now))
}

func TestHotScore_ZeroAge(t *testing.T) {
	now := time.Now()

	// (10-0) / (0+2)^1.8
	score := hotScore(10, 0, now, now)
	assert.InDelta(t, 2.872, score, 0.01)
}

func TestHotScore_FutureTimestampClamped(t *testing.T) {
	now := time.Now()

	future := hotScore(10, 0, now.Add(1*time.Hour), now)
	zero := hotScore(10, 0, now, now)

	assert.Equal(t, zero, future)
}
