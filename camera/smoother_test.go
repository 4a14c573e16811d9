package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/milk9111/tokencam/common"
)

func TestSmootherSingleTokenSnaps(t *testing.T) {
	var s Smoother

	got, ok := s.Target([]common.Vec2{{X: 10, Y: 20}})
	assert.True(t, ok)
	assert.Equal(t, common.Vec2{X: 10, Y: 20}, got)

	// No lag on subsequent samples either.
	got, ok = s.Target([]common.Vec2{{X: 300, Y: -40}})
	assert.True(t, ok)
	assert.Equal(t, common.Vec2{X: 300, Y: -40}, got)
}

func TestSmootherMultiTokenEMA(t *testing.T) {
	var s Smoother

	// First multi-token sample seeds with the raw centroid.
	got, ok := s.Target([]common.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}})
	assert.True(t, ok)
	assert.Equal(t, common.Vec2{X: 5, Y: 0}, got)

	// Second sample moves a quarter of the way to the new centroid.
	got, ok = s.Target([]common.Vec2{{X: 0, Y: 0}, {X: 50, Y: 0}})
	assert.True(t, ok)
	assert.InDelta(t, 5+0.25*(25-5), got.X, 1e-9)
	assert.InDelta(t, 0, got.Y, 1e-9)
}

func TestSmootherResetsAcrossCountOne(t *testing.T) {
	var s Smoother

	_, _ = s.Target([]common.Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}})
	_, _ = s.Target([]common.Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}})

	// Dropping to one token snaps immediately.
	got, ok := s.Target([]common.Vec2{{X: 7, Y: 7}})
	assert.True(t, ok)
	assert.Equal(t, common.Vec2{X: 7, Y: 7}, got)

	// Growing back to many reseeds with the raw centroid instead of
	// blending against the stale single-token value.
	got, ok = s.Target([]common.Vec2{{X: 200, Y: 0}, {X: 400, Y: 0}})
	assert.True(t, ok)
	assert.Equal(t, common.Vec2{X: 300, Y: 0}, got)
}

func TestSmootherEmptyAndReset(t *testing.T) {
	var s Smoother

	_, ok := s.Target(nil)
	assert.False(t, ok)

	_, _ = s.Target([]common.Vec2{{X: 1, Y: 1}, {X: 3, Y: 3}})
	s.Reset()

	// After a reset the next multi-token sample seeds raw again.
	got, ok := s.Target([]common.Vec2{{X: 10, Y: 10}, {X: 30, Y: 30}})
	assert.True(t, ok)
	assert.Equal(t, common.Vec2{X: 20, Y: 20}, got)
}
