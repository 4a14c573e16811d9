package system

import (
	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/ecs"
)

// CameraSystem drains this frame's world events into the camera controller
// and ticks it once, after input and movement so the follow loop sees this
// frame's token positions.
type CameraSystem struct {
	Controller *camera.Controller
}

// NewCameraSystem creates a CameraSystem.
func NewCameraSystem(controller *camera.Controller) *CameraSystem {
	return &CameraSystem{Controller: controller}
}

func (s *CameraSystem) Update(w *ecs.World) {
	if s == nil || s.Controller == nil {
		return
	}
	if w != nil {
		for _, ev := range w.Events().Drain() {
			if ev.Type == ecs.EventTokenMoved {
				s.Controller.TokenMoved()
			}
		}
	}
	s.Controller.Update()
}
