package camera

import "github.com/milk9111/tokencam/common"

// emaFactor is the per-sample weight for multi-token centroids. Low enough
// that independently wandering tokens don't jitter the camera.
const emaFactor = 0.25

// Smoother turns the tracked token set into one stable target point.
//
// The policy is deliberately asymmetric: a single token snaps exactly to
// its center every sample so solo follow feels immediate, while two or more
// tokens get an exponential moving average of their raw centroid. The
// internal state resets whenever the tracked count crosses into or out of
// exactly one, so switching between the two regimes never drags stale lag
// along.
type Smoother struct {
	value     common.Vec2
	hasValue  bool
	lastCount int
}

// Target folds the current token centers into the smoothed target point.
// ok is false when nothing is tracked.
func (s *Smoother) Target(centers []common.Vec2) (common.Vec2, bool) {
	n := len(centers)
	defer func() { s.lastCount = n }()

	if n == 0 {
		s.hasValue = false
		return common.Vec2{}, false
	}

	raw := centroid(centers)

	if n == 1 {
		// Exact snap; also reseeds so a later multi-token sample starts fresh.
		s.value = raw
		s.hasValue = true
		return raw, true
	}

	if !s.hasValue || s.lastCount == 1 {
		s.value = raw
		s.hasValue = true
		return raw, true
	}

	s.value = s.value.Add(raw.Sub(s.value).Scale(emaFactor))
	return s.value, true
}

// Reset drops all smoothing state.
func (s *Smoother) Reset() {
	s.value = common.Vec2{}
	s.hasValue = false
	s.lastCount = 0
}

func centroid(centers []common.Vec2) common.Vec2 {
	var sum common.Vec2
	for _, c := range centers {
		sum = sum.Add(c)
	}
	return sum.Scale(1 / float64(len(centers)))
}
