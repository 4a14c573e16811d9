package camera

import "math"

// Change-detection thresholds. The host only rebroadcasts its camera state
// when it moved past these; they trim redundant writes, they are not a
// correctness mechanism.
const (
	EpsilonPosition = 0.25
	EpsilonScale    = 1e-4
	EpsilonRotation = 1e-4
)

// State is the host's broadcast camera state. Guests apply it verbatim
// after checking OriginID against their own table; a mismatch means the
// state is stale and it is discarded silently.
type State struct {
	OriginID string  `json:"originId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Reason   string  `json:"reason,omitempty"`
}

// Equal reports whether two states are the same within the broadcast
// epsilons. Reason is advisory and ignored.
func (s State) Equal(o State) bool {
	return s.OriginID == o.OriginID &&
		math.Abs(s.X-o.X) <= EpsilonPosition &&
		math.Abs(s.Y-o.Y) <= EpsilonPosition &&
		math.Abs(s.Scale-o.Scale) <= EpsilonScale &&
		math.Abs(s.Rotation-o.Rotation) <= EpsilonRotation
}
