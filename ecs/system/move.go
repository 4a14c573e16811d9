package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/ecs"
	"github.com/milk9111/tokencam/ecs/component"
	"github.com/milk9111/tokencam/obj"
)

// tokenSpeedPxPerTick is the keyboard move step at the fixed 60Hz tick.
const tokenSpeedPxPerTick = 140.0 / 60.0

// elevationStep is the per-keypress elevation change.
const elevationStep = 5.0

// TokenMoveSystem moves the selected tokens the local client owns: arrow
// keys translate, PageUp/PageDown change elevation, Q/E rotate. Each field
// is gated separately so guests in a cinematic can still edit unrelated
// token data elsewhere while placement fields stay locked.
type TokenMoveSystem struct {
	Viewport   *obj.Viewport
	Controller *camera.Controller
	ClientID   string
}

// NewTokenMoveSystem creates a TokenMoveSystem.
func NewTokenMoveSystem(viewport *obj.Viewport, controller *camera.Controller, clientID string) *TokenMoveSystem {
	return &TokenMoveSystem{Viewport: viewport, Controller: controller, ClientID: clientID}
}

// Update applies keyboard movement to owned, selected tokens.
func (s *TokenMoveSystem) Update(w *ecs.World) {
	if s == nil || s.Viewport == nil || s.Controller == nil || w == nil {
		return
	}
	if !s.Viewport.Interactive() {
		return
	}

	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx -= tokenSpeedPxPerTick
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx += tokenSpeedPxPerTick
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy -= tokenSpeedPxPerTick
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy += tokenSpeedPxPerTick
	}

	var dElev float64
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		dElev += elevationStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		dElev -= elevationStep
	}

	var dRot float64
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		dRot -= 0.05
	}
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		dRot += 0.05
	}

	if dx == 0 && dy == 0 && dElev == 0 && dRot == 0 {
		return
	}

	moved := false
	ecs.ForEach(w, component.SelectedComponent, func(e ecs.Entity, _ *component.Selected) {
		tok, ok := ecs.Get(w, e, component.TokenComponent)
		if !ok || !s.owns(tok) {
			return
		}
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return
		}
		if (dx != 0 || dy != 0) && s.Controller.AllowTokenUpdate(camera.FieldPosition) {
			tr.X += dx
			tr.Y += dy
			moved = true
		}
		if dElev != 0 && s.Controller.AllowTokenUpdate(camera.FieldElevation) {
			tok.Elevation += dElev
		}
		if dRot != 0 && s.Controller.AllowTokenUpdate(camera.FieldRotation) {
			tr.Rotation += dRot
		}
	})
	if moved {
		w.Events().Push(ecs.Event{Type: ecs.EventTokenMoved})
	}
}

func (s *TokenMoveSystem) owns(tok *component.Token) bool {
	if s.Controller.IsHost() {
		return true
	}
	return tok.OwnerID == s.ClientID
}
