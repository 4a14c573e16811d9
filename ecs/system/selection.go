package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/ecs"
	"github.com/milk9111/tokencam/ecs/component"
	"github.com/milk9111/tokencam/obj"
)

// pickSlopPx is the pick radius around the cursor in world units.
const pickSlopPx = 4

// SelectionSystem resolves left clicks to tokens with a chipmunk spatial
// index: one kinematic body and circle shape per token, point-queried at
// the cursor's world position. Shift adds to or removes from the selection.
type SelectionSystem struct {
	Viewport   *obj.Viewport
	Controller *camera.Controller

	space  *cp.Space
	bodies map[string]*cp.Body
	shapes map[string]*cp.Shape
}

// NewSelectionSystem creates a SelectionSystem.
func NewSelectionSystem(viewport *obj.Viewport, controller *camera.Controller) *SelectionSystem {
	return &SelectionSystem{
		Viewport:   viewport,
		Controller: controller,
		space:      cp.NewSpace(),
		bodies:     make(map[string]*cp.Body),
		shapes:     make(map[string]*cp.Shape),
	}
}

// Update syncs the spatial index to token positions and handles clicks.
func (s *SelectionSystem) Update(w *ecs.World) {
	if s == nil || s.Viewport == nil || s.Controller == nil || w == nil {
		return
	}
	s.syncIndex(w)

	if !s.Viewport.Interactive() {
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}

	mx, my := ebiten.CursorPosition()
	wp, ok := s.Viewport.ScreenToWorld(float64(mx), float64(my))
	if !ok {
		return
	}

	var hit string
	info := s.space.PointQueryNearest(cp.Vector{X: wp.X, Y: wp.Y}, pickSlopPx, cp.SHAPE_FILTER_ALL)
	if info != nil && info.Shape != nil {
		if id, ok := info.Shape.UserData.(string); ok {
			hit = id
		}
	}

	current := make([]string, 0, 4)
	for _, t := range s.Viewport.SelectedTokens() {
		current = append(current, t.ID)
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	next := nextSelection(current, hit, shift)
	if sameIDs(current, next) {
		return
	}
	s.Viewport.Select(next)
}

func (s *SelectionSystem) syncIndex(w *ecs.World) {
	seen := make(map[string]bool)
	ecs.ForEach(w, component.TokenComponent, func(e ecs.Entity, tok *component.Token) {
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return
		}
		seen[tok.ID] = true
		body, exists := s.bodies[tok.ID]
		if !exists {
			body = cp.NewKinematicBody()
			s.space.AddBody(body)
			shape := cp.NewCircle(body, tok.Radius, cp.Vector{})
			shape.UserData = tok.ID
			s.space.AddShape(shape)
			s.bodies[tok.ID] = body
			s.shapes[tok.ID] = shape
		}
		body.SetPosition(cp.Vector{X: tr.X, Y: tr.Y})
		s.space.ReindexShapesForBody(body)
	})
	for id, body := range s.bodies {
		if seen[id] {
			continue
		}
		s.space.RemoveShape(s.shapes[id])
		s.space.RemoveBody(body)
		delete(s.bodies, id)
		delete(s.shapes, id)
	}
}

// nextSelection applies click semantics: plain click replaces, shift-click
// toggles, a miss clears (unless shift holds the set).
func nextSelection(current []string, hit string, shift bool) []string {
	if hit == "" {
		if shift {
			return current
		}
		return nil
	}
	if !shift {
		return []string{hit}
	}
	for i, id := range current {
		if id == hit {
			return append(append([]string(nil), current[:i]...), current[i+1:]...)
		}
	}
	return append(append([]string(nil), current...), hit)
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
