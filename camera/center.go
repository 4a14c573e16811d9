package camera

import (
	"math"

	"github.com/milk9111/tokencam/common"
)

// Transform holds the world-to-screen transform components the canvas
// reports: screen = R(rotation) * scale * world + translation.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
	Rotation   float64
}

// nearSingular is the determinant floor below which the analytic inverse is
// not trusted.
const nearSingular = 1e-9

// ScreenToWorld inverts the transform analytically for one screen point.
// ok is false when the transform is numerically degenerate; callers should
// then fall back to a nominal point instead of dividing by near-zero.
func (t Transform) ScreenToWorld(sx, sy float64) (common.Vec2, bool) {
	cos := math.Cos(t.Rotation)
	sin := math.Sin(t.Rotation)
	// 2x2 affine part: [a b; c d] = scale * [cos -sin; sin cos]
	a := t.Scale * cos
	b := t.Scale * -sin
	c := t.Scale * sin
	d := t.Scale * cos

	det := a*d - b*c
	if math.Abs(det) < nearSingular {
		return common.Vec2{}, false
	}

	dx := sx - t.TranslateX
	dy := sy - t.TranslateY
	return common.Vec2{
		X: (d*dx - b*dy) / det,
		Y: (a*dy - c*dx) / det,
	}, true
}

// ResolveCenter computes the world coordinate under the screen center.
// The canvas's own mapping facility is preferred since it accounts for any
// transform quirks; the analytic inverse covers its absence, and a
// degenerate transform falls back to the table's nominal center. This never
// fails.
func ResolveCenter(c Canvas) common.Vec2 {
	w, h := c.ViewportSize()
	sx := float64(w) / 2
	sy := float64(h) / 2

	if p, ok := c.ScreenToWorld(sx, sy); ok {
		return p
	}
	if p, ok := c.Transform().ScreenToWorld(sx, sy); ok {
		return p
	}
	return c.NominalCenter()
}
