// Package obj holds the concrete runtime objects behind the camera
// module's collaborator interfaces: the viewport transform and the
// rotation-extension notice.
package obj

import (
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/common"
	"github.com/milk9111/tokencam/ecs"
	"github.com/milk9111/tokencam/ecs/component"
)

// RotationNotice is forwarded to an external rotation extension whenever
// the view rotation changes.
type RotationNotice struct {
	AngleDegrees float64
	AngleRadians float64
	// DiscreteStep buckets the angle into eighth turns (0..7).
	DiscreteStep int
	Center       common.Vec2
}

// Viewport owns the world-to-screen transform for one client and
// implements camera.Canvas on top of the ECS world. It renders nothing
// itself; the game draws using its transform.
type Viewport struct {
	tableID string
	world   *ecs.World

	screenW int
	screenH int

	CenterX  float64
	CenterY  float64
	zoom     float64
	rotation float64

	worldW float64
	worldH float64

	interactive bool

	// drag state for a manual pan in progress
	DragButton  camera.Button
	Dragging    bool
	DragStartX  int
	DragStartY  int
	DragOriginX float64
	DragOriginY float64

	// OnPan fires after any pan, including the controller's own (the
	// controller squelches those itself).
	OnPan func()
	// OnSelectionChanged fires synchronously after the selection changes.
	OnSelectionChanged func(ids []string)
	// OnRotationChanged feeds the external rotation extension hook.
	OnRotationChanged func(RotationNotice)
}

// NewViewport creates a viewport centered on the table.
func NewViewport(tableID string, world *ecs.World, screenW, screenH int, worldW, worldH float64) *Viewport {
	return &Viewport{
		tableID:     tableID,
		world:       world,
		screenW:     screenW,
		screenH:     screenH,
		zoom:        1,
		worldW:      worldW,
		worldH:      worldH,
		CenterX:     worldW / 2,
		CenterY:     worldH / 2,
		interactive: true,
	}
}

// SetScreenSize updates the logical screen size.
func (v *Viewport) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	v.screenW = w
	v.screenH = h
}

// GeoM builds the world-to-screen transform.
func (v *Viewport) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-v.CenterX, -v.CenterY)
	g.Scale(v.zoom, v.zoom)
	g.Rotate(v.rotation)
	g.Translate(float64(v.screenW)/2, float64(v.screenH)/2)
	return g
}

// --- camera.Canvas ----------------------------------------------------------

func (v *Viewport) TableID() string {
	return v.tableID
}

func (v *Viewport) ViewportSize() (int, int) {
	return v.screenW, v.screenH
}

func (v *Viewport) Transform() camera.Transform {
	// screen = R * zoom * world + t, with t placing the center point at
	// the screen center.
	cos := math.Cos(v.rotation)
	sin := math.Sin(v.rotation)
	tx := float64(v.screenW)/2 - v.zoom*(cos*v.CenterX-sin*v.CenterY)
	ty := float64(v.screenH)/2 - v.zoom*(sin*v.CenterX+cos*v.CenterY)
	return camera.Transform{
		TranslateX: tx,
		TranslateY: ty,
		Scale:      v.zoom,
		Rotation:   v.rotation,
	}
}

func (v *Viewport) ScreenToWorld(sx, sy float64) (common.Vec2, bool) {
	g := v.GeoM()
	if !g.IsInvertible() {
		return common.Vec2{}, false
	}
	g.Invert()
	x, y := g.Apply(sx, sy)
	return common.Vec2{X: x, Y: y}, true
}

func (v *Viewport) NominalCenter() common.Vec2 {
	return common.Vec2{X: v.worldW / 2, Y: v.worldH / 2}
}

func (v *Viewport) Pan(x, y, scale float64, durationMs int) {
	_ = durationMs // pans are applied instantly
	v.CenterX = x
	v.CenterY = y
	if scale > 0 {
		v.zoom = common.Clamp(scale, 0.1, 10)
	}
	if v.OnPan != nil {
		v.OnPan()
	}
}

func (v *Viewport) SetRotation(radians float64) {
	if v.rotation == radians {
		return
	}
	v.rotation = radians
	if v.OnRotationChanged != nil {
		deg := radians * 180 / math.Pi
		step := int(math.Round(math.Mod(deg+360*4, 360)/45)) % 8
		v.OnRotationChanged(RotationNotice{
			AngleDegrees: deg,
			AngleRadians: radians,
			DiscreteStep: step,
			Center:       common.Vec2{X: v.CenterX, Y: v.CenterY},
		})
	}
}

func (v *Viewport) Zoom() float64 {
	return v.zoom
}

func (v *Viewport) Rotation() float64 {
	return v.rotation
}

// SetZoom changes the zoom directly (wheel input).
func (v *Viewport) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	v.zoom = common.Clamp(z, 0.1, 10)
}

func (v *Viewport) SelectedTokens() []camera.Token {
	type sel struct {
		order int
		tok   camera.Token
	}
	var picked []sel
	ecs.ForEach(v.world, component.SelectedComponent, func(e ecs.Entity, s *component.Selected) {
		tok, ok := ecs.Get(v.world, e, component.TokenComponent)
		if !ok {
			return
		}
		tr, ok := ecs.Get(v.world, e, component.TransformComponent)
		if !ok {
			return
		}
		picked = append(picked, sel{
			order: s.Order,
			tok:   camera.Token{ID: tok.ID, Center: common.Vec2{X: tr.X, Y: tr.Y}},
		})
	})
	sort.Slice(picked, func(i, j int) bool { return picked[i].order < picked[j].order })
	out := make([]camera.Token, len(picked))
	for i, p := range picked {
		out[i] = p.tok
	}
	return out
}

func (v *Viewport) TokensByID(ids []string) []camera.Token {
	byID := make(map[string]camera.Token)
	ecs.ForEach(v.world, component.TokenComponent, func(e ecs.Entity, tok *component.Token) {
		tr, ok := ecs.Get(v.world, e, component.TransformComponent)
		if !ok {
			return
		}
		byID[tok.ID] = camera.Token{ID: tok.ID, Center: common.Vec2{X: tr.X, Y: tr.Y}}
	})
	out := make([]camera.Token, 0, len(ids))
	for _, id := range ids {
		if tok, ok := byID[id]; ok {
			out = append(out, tok)
		}
	}
	return out
}

func (v *Viewport) Select(ids []string) {
	ecs.ForEach(v.world, component.SelectedComponent, func(e ecs.Entity, _ *component.Selected) {
		ecs.Remove(v.world, e, component.SelectedComponent)
	})
	want := make(map[string]int, len(ids))
	for i, id := range ids {
		want[id] = i
	}
	ecs.ForEach(v.world, component.TokenComponent, func(e ecs.Entity, tok *component.Token) {
		if order, ok := want[tok.ID]; ok {
			ecs.Add(v.world, e, component.SelectedComponent, component.Selected{Order: order})
		}
	})
	if v.OnSelectionChanged != nil {
		v.OnSelectionChanged(append([]string(nil), ids...))
	}
}

func (v *Viewport) SetInteractive(on bool) {
	v.interactive = on
}

// Interactive reports whether manual canvas input is enabled.
func (v *Viewport) Interactive() bool {
	return v.interactive
}

func (v *Viewport) CancelPan() {
	v.Dragging = false
}
