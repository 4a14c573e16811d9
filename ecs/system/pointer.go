// Package system contains the per-frame systems driving the tabletop
// canvas: manual pan/zoom input, token selection, token movement, and the
// camera follow glue.
package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/ecs"
	"github.com/milk9111/tokencam/obj"
)

// dragThresholdPx separates a click from a drag for context-menu purposes.
const dragThresholdPx = 4

// PointerSystem feeds manual camera input through the arbiter: middle and
// right buttons drag-pan, the wheel zooms, a right click without a drag is
// the context-menu gesture. Every event is gated by the controller before
// it touches the viewport.
type PointerSystem struct {
	Viewport   *obj.Viewport
	Controller *camera.Controller
}

// NewPointerSystem creates a PointerSystem.
func NewPointerSystem(viewport *obj.Viewport, controller *camera.Controller) *PointerSystem {
	return &PointerSystem{Viewport: viewport, Controller: controller}
}

var panButtons = []struct {
	eb  ebiten.MouseButton
	cam camera.Button
}{
	{ebiten.MouseButtonMiddle, camera.ButtonMiddle},
	{ebiten.MouseButtonRight, camera.ButtonRight},
}

// Update polls the mouse and applies allowed pan/zoom input.
func (s *PointerSystem) Update(w *ecs.World) {
	if s == nil || s.Viewport == nil || s.Controller == nil {
		return
	}
	v := s.Viewport
	if !v.Interactive() {
		// Input locked (guest in cinematic); events die here.
		return
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		if s.Controller.Wheel() == camera.Allow {
			v.SetZoom(v.Zoom() * math.Pow(1.1, dy))
		}
	}

	for _, btn := range panButtons {
		if inpututil.IsMouseButtonJustPressed(btn.eb) {
			if s.Controller.PointerDown(btn.cam) == camera.Allow {
				mx, my := ebiten.CursorPosition()
				v.Dragging = true
				v.DragButton = btn.cam
				v.DragStartX, v.DragStartY = mx, my
				v.DragOriginX, v.DragOriginY = v.CenterX, v.CenterY
			}
		}
		if inpututil.IsMouseButtonJustReleased(btn.eb) {
			wasDrag := false
			if v.Dragging && v.DragButton == btn.cam {
				mx, my := ebiten.CursorPosition()
				wasDrag = abs(mx-v.DragStartX) > dragThresholdPx || abs(my-v.DragStartY) > dragThresholdPx
				v.Dragging = false
			}
			if btn.cam == camera.ButtonRight && !wasDrag {
				if s.Controller.ContextMenu() == camera.Allow {
					// Context gesture on open canvas clears the selection.
					v.Select(nil)
				}
			}
			s.Controller.PointerUp(btn.cam)
		}
	}

	if v.Dragging {
		mx, my := ebiten.CursorPosition()
		dx := float64(mx - v.DragStartX)
		dy := float64(my - v.DragStartY)
		// Screen delta to world delta: un-rotate, un-scale.
		cos := math.Cos(-v.Rotation())
		sin := math.Sin(-v.Rotation())
		wx := (cos*dx - sin*dy) / v.Zoom()
		wy := (sin*dx + cos*dy) / v.Zoom()
		v.Pan(v.DragOriginX-wx, v.DragOriginY-wy, 0, 0)
		if w != nil {
			w.Events().Push(ecs.Event{Type: ecs.EventManualPan})
		}
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
