package camera

import "github.com/milk9111/tokencam/common"

// Token is the minimal view of a tracked entity: a stable identifier and a
// world-space center.
type Token struct {
	ID     string
	Center common.Vec2
}

// Canvas is the host canvas runtime surface the controller drives. The
// ebiten client implements it; tests use a fake.
type Canvas interface {
	// TableID identifies the viewing context. Broadcast camera states from
	// a different table are stale and must be discarded.
	TableID() string
	// ViewportSize returns the rendering viewport in pixels.
	ViewportSize() (w, h int)
	// Transform returns the current world-to-screen transform components.
	Transform() Transform
	// ScreenToWorld maps a screen pixel to world space using the runtime's
	// own facility. ok is false when the facility is unavailable.
	ScreenToWorld(sx, sy float64) (common.Vec2, bool)
	// NominalCenter is the table's default center point, the last-resort
	// camera target.
	NominalCenter() common.Vec2

	// Pan moves the viewport center to (x, y) at the given zoom scale.
	// scale <= 0 keeps the current zoom. durationMs 0 means instant.
	Pan(x, y, scale float64, durationMs int)
	// SetRotation sets the view rotation directly, in radians.
	SetRotation(radians float64)
	// Zoom returns the current zoom scale.
	Zoom() float64
	// Rotation returns the current view rotation in radians.
	Rotation() float64

	// SelectedTokens returns this client's current selection in order.
	SelectedTokens() []Token
	// TokensByID resolves identifiers to live tokens; unknown ids are
	// skipped.
	TokensByID(ids []string) []Token
	// Select replaces the current selection.
	Select(ids []string)

	// SetInteractive enables or disables manual canvas input. Guests are
	// locked out while cinematic mode runs.
	SetInteractive(on bool)
	// CancelPan unwinds any in-progress manual drag-pan, releasing pointer
	// capture and the runtime's internal drag state.
	CancelPan()
}

// Panel is the collapsible camera control UI. Its state round-trips through
// the cinematic snapshot so guests get their panel back on exit.
type Panel interface {
	State() string
	Apply(state string)
	Collapse()
}
