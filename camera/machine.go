package camera

import (
	"sort"

	"github.com/milk9111/tokencam/common"
	"github.com/milk9111/tokencam/notify"
	"github.com/milk9111/tokencam/settings"
)

// Event is a trigger feeding the transition reducer. One type exists per
// trigger so handlers stay small and testable.
type Event interface{ isEvent() }

// LocalToggled fires after the per-user follow toggle changed.
type LocalToggled struct{ Enabled bool }

// ForceToggled fires after the world-shared forced-follow flag changed.
type ForceToggled struct{ Enabled bool }

// CinematicToggled fires after the world-shared cinematic flag changed.
type CinematicToggled struct{ Active bool }

// SubModeSwitched fires after the cinematic sub-mode changed while
// cinematic stayed active.
type SubModeSwitched struct{ CameraMode bool }

// RemoteStateReceived fires when a broadcast host camera state arrives.
type RemoteStateReceived struct{ State State }

// SelectionChanged fires after this client's token selection changed.
type SelectionChanged struct{ IDs []string }

func (LocalToggled) isEvent()        {}
func (ForceToggled) isEvent()        {}
func (CinematicToggled) isEvent()    {}
func (SubModeSwitched) isEvent()     {}
func (RemoteStateReceived) isEvent() {}
func (SelectionChanged) isEvent()    {}

// Command is a side effect the reducer requests. The controller executes
// commands in order against the canvas, store, and notifier.
type Command interface{ isCommand() }

// PanTo pans the viewport. Scale <= 0 keeps the current zoom.
type PanTo struct {
	X, Y, Scale float64
	DurationMs  int
}

// SetViewRotation sets the view rotation in radians.
type SetViewRotation struct{ Radians float64 }

// WriteSetting stores a value through the settings layer.
type WriteSetting struct {
	Key   settings.Key
	Value any
}

// Announce queues a user-visible banner.
type Announce struct {
	Level    notify.Level
	Audience notify.Audience
	Text     string
}

// StartLoop (re)activates the follow render loop.
type StartLoop struct{}

// StopLoop halts the follow render loop.
type StopLoop struct{}

// SelectTokens replaces the selection (deferred by the controller to break
// reentrancy with the selection-change notification).
type SelectTokens struct{ IDs []string }

// SetInteractive locks or unlocks manual canvas input.
type SetInteractive struct{ On bool }

// CollapsePanel hides the control panel UI.
type CollapsePanel struct{}

// ApplyPanel restores a saved control panel state.
type ApplyPanel struct{ State string }

// RecenterNow snaps the camera onto the current tracked targets.
type RecenterNow struct{}

// ApplyHostState re-applies the latest known broadcast camera state,
// bracketed by the controller's squelch flag.
type ApplyHostState struct{}

// ApplyRemoteState applies one specific broadcast state, squelched.
type ApplyRemoteState struct{ State State }

// CancelManualPan unwinds any held drag-pan.
type CancelManualPan struct{}

// ClearSuppression drops the manual-pan grace window.
type ClearSuppression struct{}

func (PanTo) isCommand()            {}
func (SetViewRotation) isCommand()  {}
func (WriteSetting) isCommand()     {}
func (Announce) isCommand()         {}
func (StartLoop) isCommand()        {}
func (StopLoop) isCommand()         {}
func (SelectTokens) isCommand()     {}
func (SetInteractive) isCommand()   {}
func (CollapsePanel) isCommand()    {}
func (ApplyPanel) isCommand()       {}
func (RecenterNow) isCommand()      {}
func (ApplyHostState) isCommand()   {}
func (ApplyRemoteState) isCommand() {}
func (CancelManualPan) isCommand()  {}
func (ClearSuppression) isCommand() {}

// View is the read-only snapshot of client state the reducer runs against.
// It is built after the triggering setting changed, so Inputs already
// reflect the new values.
type View struct {
	IsHost  bool
	TableID string
	Inputs  ModeInputs

	Snapshot *Snapshot

	Center   common.Vec2
	Zoom     float64
	Rotation float64

	SelectionIDs []string
	PanelState   string
	RetainZoom   bool

	// HostState is the last known broadcast camera state, if any.
	HostState *State
}

// CanToggleLocal reports whether this client may flip its local follow
// toggle right now. Guests are locked while forced follow targets them and
// while cinematic runs; during cinematic only the host in camera sub-mode
// keeps the toggle.
func CanToggleLocal(v View) (bool, string) {
	if v.Inputs.CinematicActive {
		if v.IsHost && v.Inputs.CinematicCamera {
			return true, ""
		}
		return false, "camera follow is locked while the cinematic view is active"
	}
	if !v.IsHost && v.Inputs.ForceFollow {
		return false, "camera follow is enforced by the GM"
	}
	return true, ""
}

// Reduce is the pure transition function: one event in, the next side
// effects out. It never touches the canvas or the store itself.
func Reduce(v View, ev Event) []Command {
	switch e := ev.(type) {
	case LocalToggled:
		return reduceLocalToggled(v, e)
	case ForceToggled:
		return reduceForceToggled(v, e)
	case CinematicToggled:
		if e.Active {
			return reduceCinematicOn(v)
		}
		return reduceCinematicOff(v)
	case SubModeSwitched:
		return reduceSubModeSwitched(v, e)
	case RemoteStateReceived:
		return reduceRemoteState(v, e)
	case SelectionChanged:
		return reduceSelectionChanged(v, e)
	default:
		return nil
	}
}

func reduceLocalToggled(v View, e LocalToggled) []Command {
	if e.Enabled {
		return []Command{CancelManualPan{}, ClearSuppression{}, RecenterNow{}, StartLoop{}}
	}
	if !FollowActive(v.Inputs, v.IsHost) {
		return []Command{StopLoop{}}
	}
	return nil
}

func reduceForceToggled(v View, e ForceToggled) []Command {
	var cmds []Command
	if e.Enabled {
		cmds = append(cmds,
			Announce{Level: notify.Info, Audience: notify.HostOnly, Text: "Forced follow is on. Players now follow their own tokens."},
			Announce{Level: notify.Info, Audience: notify.GuestsOnly, Text: "The GM turned on forced follow. Your camera tracks your tokens."},
		)
		if v.IsHost {
			// The host is never forced, only told. It keeps following its
			// own selection when its local toggle already says so.
			if v.Inputs.LocalEnabled {
				cmds = append(cmds, RecenterNow{}, StartLoop{})
			}
			return cmds
		}
		return append(cmds, RecenterNow{}, StartLoop{})
	}

	cmds = append(cmds,
		Announce{Level: notify.Info, Audience: notify.HostOnly, Text: "Forced follow is off."},
		Announce{Level: notify.Info, Audience: notify.GuestsOnly, Text: "The GM turned off forced follow."},
	)
	if !FollowActive(v.Inputs, v.IsHost) {
		cmds = append(cmds, StopLoop{})
	}
	return cmds
}

func reduceCinematicOn(v View) []Command {
	snap := Snapshot{
		WasLocalFollowEnabled:       v.Inputs.LocalEnabled,
		ZoomWasRetained:             v.RetainZoom,
		ZoomScale:                   v.Zoom,
		Center:                      v.Center,
		Rotation:                    v.Rotation,
		ModeAtEntry:                 subModeName(v.Inputs.CinematicCamera),
		PreClassicHostFollowEnabled: v.Inputs.LocalEnabled,
		LockedTokenIDs:              append([]string(nil), v.SelectionIDs...),
		ControlPanelState:           v.PanelState,
	}

	var cmds []Command
	if enc, err := snap.Encode(); err == nil {
		cmds = append(cmds, WriteSetting{Key: settings.KeyClientSnapshot, Value: enc})
	}

	if v.IsHost {
		// Classic turns the host into the reference selection-follower, so
		// its local toggle is forced on. Camera mode leaves it alone: the
		// host camera is the broadcast authority either way.
		if !v.Inputs.CinematicCamera && !v.Inputs.LocalEnabled {
			cmds = append(cmds, WriteSetting{Key: settings.KeyLocalEnabled, Value: true})
		}
	} else {
		cmds = append(cmds, SetInteractive{On: false}, CollapsePanel{}, ApplyHostState{})
	}

	if FollowActive(v.Inputs, v.IsHost) {
		cmds = append(cmds, StartLoop{})
	} else {
		cmds = append(cmds, StopLoop{})
	}
	return cmds
}

func reduceCinematicOff(v View) []Command {
	snap := v.Snapshot
	if snap == nil {
		// Nothing to restore; just settle the loop.
		if FollowActive(v.Inputs, v.IsHost) {
			return []Command{StartLoop{}}
		}
		return []Command{StopLoop{}}
	}

	var cmds []Command
	in := v.Inputs

	if v.IsHost {
		// Camera sub-mode exits without a rollback: the camera stays where
		// the host left it. Classic restores the pre-forced local toggle.
		if snap.ModeAtEntry == subModeClassic {
			cmds = append(cmds, WriteSetting{Key: settings.KeyLocalEnabled, Value: snap.PreClassicHostFollowEnabled})
			in.LocalEnabled = snap.PreClassicHostFollowEnabled
		}
	} else {
		restoreScale := snap.ZoomScale
		if snap.ZoomWasRetained {
			restoreScale = 0
		}
		cmds = append(cmds,
			SetInteractive{On: true},
			ApplyPanel{State: snap.ControlPanelState},
			SetViewRotation{Radians: snap.Rotation},
			PanTo{X: snap.Center.X, Y: snap.Center.Y, Scale: restoreScale},
			WriteSetting{Key: settings.KeyLocalEnabled, Value: snap.WasLocalFollowEnabled},
		)
		in.LocalEnabled = snap.WasLocalFollowEnabled
	}

	// Consume the snapshot; it is not trusted again until the next entry.
	cmds = append(cmds, WriteSetting{Key: settings.KeyClientSnapshot, Value: ""})

	if FollowActive(in, v.IsHost) {
		cmds = append(cmds, StartLoop{})
	} else {
		cmds = append(cmds, StopLoop{})
	}
	return cmds
}

func reduceSubModeSwitched(v View, e SubModeSwitched) []Command {
	if !v.Inputs.CinematicActive {
		return nil
	}

	if !v.IsHost {
		if e.CameraMode {
			return []Command{ApplyHostState{}, StopLoop{}}
		}
		return []Command{ApplyHostState{}, StartLoop{}}
	}

	if e.CameraMode {
		// Free-floating camera: without local follow the host drives by
		// hand and the loop must let go.
		if !v.Inputs.LocalEnabled {
			return []Command{StopLoop{}}
		}
		return nil
	}

	var cmds []Command
	if v.Snapshot != nil {
		snap := *v.Snapshot
		snap.PreClassicHostFollowEnabled = v.Inputs.LocalEnabled
		snap.ModeAtEntry = subModeClassic
		if enc, err := snap.Encode(); err == nil {
			cmds = append(cmds, WriteSetting{Key: settings.KeyClientSnapshot, Value: enc})
		}
	}
	if !v.Inputs.LocalEnabled {
		cmds = append(cmds, WriteSetting{Key: settings.KeyLocalEnabled, Value: true})
	}
	return append(cmds, RecenterNow{}, StartLoop{})
}

func reduceRemoteState(v View, e RemoteStateReceived) []Command {
	if v.IsHost || !v.Inputs.CinematicActive {
		return nil
	}
	if e.State.OriginID != v.TableID {
		// Stale-scene guard: the host is looking at a different table.
		return nil
	}
	current := State{
		OriginID: v.TableID,
		X:        v.Center.X,
		Y:        v.Center.Y,
		Scale:    v.Zoom,
		Rotation: v.Rotation,
	}
	if current.Equal(e.State) {
		// Idempotent: reapplying the same state is a no-op.
		return nil
	}
	return []Command{ApplyRemoteState{State: e.State}}
}

func reduceSelectionChanged(v View, e SelectionChanged) []Command {
	if v.IsHost || !v.Inputs.CinematicActive || v.Snapshot == nil {
		return nil
	}
	locked := v.Snapshot.LockedTokenIDs
	if len(locked) == 0 {
		return nil
	}
	if sameIDSet(e.IDs, locked) {
		return nil
	}
	return []Command{SelectTokens{IDs: append([]string(nil), locked...)}}
}

func subModeName(cameraMode bool) string {
	if cameraMode {
		return subModeCamera
	}
	return subModeClassic
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
