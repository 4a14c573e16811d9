package camera

import "time"

// Button identifies a pointer button in canvas-runtime numbering.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Decision is the arbiter's verdict on one input event.
type Decision int

const (
	// Allow lets the event through untouched.
	Allow Decision = iota
	// Block consumes the event entirely.
	Block
	// BlockAndCancel consumes the event and unwinds any in-progress
	// manual pan.
	BlockAndCancel
)

// gracePeriod is how long after releasing a manual pan the follow loop
// stays suppressed, so the release itself doesn't yank the camera.
const gracePeriod = 50 * time.Millisecond

// Arbiter filters manual camera input against the current authority mode.
// It tracks held buttons and the post-release grace window; the decision
// rules themselves are stateless and run in priority order.
type Arbiter struct {
	now func() time.Time

	held          map[Button]bool
	suppressUntil time.Time
	resumeArmed   bool
}

// NewArbiter creates an arbiter. now may be nil to use wall time.
func NewArbiter(now func() time.Time) *Arbiter {
	if now == nil {
		now = time.Now
	}
	return &Arbiter{now: now, held: make(map[Button]bool)}
}

// PointerDown decides a button press. moving reports whether any tracked
// token is currently in motion.
func (a *Arbiter) PointerDown(v View, btn Button, moving bool) Decision {
	if btn != ButtonMiddle && btn != ButtonRight {
		return Allow
	}
	if v.Inputs.CinematicActive && !v.IsHost {
		return Block
	}
	if moving {
		return BlockAndCancel
	}
	a.held[btn] = true
	return Allow
}

// PointerUp records a release. When the last button lifts, the grace
// window starts; with resumeOnRelease configured, the controller recenters
// and restarts the loop once the window elapses quietly.
func (a *Arbiter) PointerUp(btn Button, resumeOnRelease bool) {
	delete(a.held, btn)
	if len(a.held) > 0 {
		return
	}
	a.suppressUntil = a.now().Add(gracePeriod)
	if resumeOnRelease {
		a.resumeArmed = true
	}
}

// Wheel decides a scroll event.
func (a *Arbiter) Wheel(v View) Decision {
	if v.Inputs.CinematicActive && !v.IsHost {
		return Block
	}
	return Allow
}

// ContextMenu decides a context-menu event.
func (a *Arbiter) ContextMenu(v View) Decision {
	if v.Inputs.CinematicActive && !v.IsHost {
		return Block
	}
	return Allow
}

// HeldButtons reports whether a manual pan is in progress.
func (a *Arbiter) HeldButtons() bool {
	return len(a.held) > 0
}

// Suppressed reports whether the follow loop must stay off: a button is
// held or the post-release grace window is still open.
func (a *Arbiter) Suppressed() bool {
	if len(a.held) > 0 {
		return true
	}
	return a.now().Before(a.suppressUntil)
}

// ClearSuppression drops held state and the grace window, e.g. when the
// user explicitly re-enables follow.
func (a *Arbiter) ClearSuppression() {
	a.held = make(map[Button]bool)
	a.suppressUntil = time.Time{}
	a.resumeArmed = false
}

// ResumeDue reports (and consumes) a pending resume-on-release: the grace
// window elapsed with no buttons held and no token motion.
func (a *Arbiter) ResumeDue(moving bool) bool {
	if !a.resumeArmed || len(a.held) > 0 || moving {
		return false
	}
	if a.now().Before(a.suppressUntil) {
		return false
	}
	a.resumeArmed = false
	return true
}

// Token fields guests may not change while cinematic mode is active.
const (
	FieldPosition  = "position"
	FieldElevation = "elevation"
	FieldRotation  = "rotation"
)

// AllowTokenUpdate reports whether a client may apply an update to one of
// its own tokens' fields right now. Movement-class fields are frozen for
// guests during cinematic; unrelated fields always pass.
func AllowTokenUpdate(v View, field string) bool {
	if v.IsHost || !v.Inputs.CinematicActive {
		return true
	}
	switch field {
	case FieldPosition, FieldElevation, FieldRotation:
		return false
	default:
		return true
	}
}
