package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tokencam/common"
	"github.com/milk9111/tokencam/settings"
)

// commandOfType pulls the first command of type T out of the slice.
func commandOfType[T Command](t *testing.T, cmds []Command) (T, bool) {
	t.Helper()
	for _, c := range cmds {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func hasCommand[T Command](cmds []Command) bool {
	for _, c := range cmds {
		if _, ok := c.(T); ok {
			return true
		}
	}
	return false
}

func TestReduceLocalToggled(t *testing.T) {
	t.Run("enable_recenters_and_starts", func(t *testing.T) {
		cmds := Reduce(View{Inputs: ModeInputs{LocalEnabled: true}}, LocalToggled{Enabled: true})
		assert.True(t, hasCommand[CancelManualPan](cmds))
		assert.True(t, hasCommand[ClearSuppression](cmds))
		assert.True(t, hasCommand[RecenterNow](cmds))
		assert.True(t, hasCommand[StartLoop](cmds))
	})

	t.Run("disable_stops_when_nothing_else_follows", func(t *testing.T) {
		cmds := Reduce(View{}, LocalToggled{Enabled: false})
		assert.True(t, hasCommand[StopLoop](cmds))
	})

	t.Run("disable_keeps_loop_under_force", func(t *testing.T) {
		cmds := Reduce(View{Inputs: ModeInputs{ForceFollow: true}}, LocalToggled{Enabled: false})
		assert.False(t, hasCommand[StopLoop](cmds))
	})
}

func TestReduceForceToggled(t *testing.T) {
	t.Run("guest_forced_on", func(t *testing.T) {
		cmds := Reduce(View{Inputs: ModeInputs{ForceFollow: true}}, ForceToggled{Enabled: true})
		assert.True(t, hasCommand[RecenterNow](cmds))
		assert.True(t, hasCommand[StartLoop](cmds))
		assert.True(t, hasCommand[Announce](cmds))
	})

	t.Run("host_not_forced_without_local", func(t *testing.T) {
		cmds := Reduce(View{IsHost: true, Inputs: ModeInputs{ForceFollow: true}}, ForceToggled{Enabled: true})
		assert.False(t, hasCommand[StartLoop](cmds))
		assert.True(t, hasCommand[Announce](cmds))
	})

	t.Run("host_keeps_following_with_local", func(t *testing.T) {
		cmds := Reduce(View{IsHost: true, Inputs: ModeInputs{ForceFollow: true, LocalEnabled: true}}, ForceToggled{Enabled: true})
		assert.True(t, hasCommand[StartLoop](cmds))
	})

	t.Run("off_stops_loop_without_local", func(t *testing.T) {
		cmds := Reduce(View{}, ForceToggled{Enabled: false})
		assert.True(t, hasCommand[StopLoop](cmds))
	})
}

func TestReduceCinematicOn(t *testing.T) {
	t.Run("guest_locks_and_mirrors", func(t *testing.T) {
		v := View{
			Inputs:       ModeInputs{CinematicActive: true},
			Zoom:         1.7,
			Center:       common.Vec2{X: 5, Y: 6},
			SelectionIDs: []string{"a"},
			PanelState:   "expanded",
		}
		cmds := Reduce(v, CinematicToggled{Active: true})

		si, ok := commandOfType[SetInteractive](t, cmds)
		require.True(t, ok)
		assert.False(t, si.On)
		assert.True(t, hasCommand[CollapsePanel](cmds))
		assert.True(t, hasCommand[ApplyHostState](cmds))
		assert.True(t, hasCommand[StartLoop](cmds))

		ws, ok := commandOfType[WriteSetting](t, cmds)
		require.True(t, ok)
		assert.Equal(t, settings.KeyClientSnapshot, ws.Key)
		snap, err := DecodeSnapshot(ws.Value.(string))
		require.NoError(t, err)
		assert.Equal(t, 1.7, snap.ZoomScale)
		assert.Equal(t, []string{"a"}, snap.LockedTokenIDs)
		assert.Equal(t, "expanded", snap.ControlPanelState)
		assert.Equal(t, "classic", snap.ModeAtEntry)
	})

	t.Run("host_classic_forces_local_on", func(t *testing.T) {
		v := View{IsHost: true, Inputs: ModeInputs{CinematicActive: true}}
		cmds := Reduce(v, CinematicToggled{Active: true})

		found := false
		for _, c := range cmds {
			if ws, ok := c.(WriteSetting); ok && ws.Key == settings.KeyLocalEnabled {
				found = true
				assert.Equal(t, true, ws.Value)
			}
		}
		assert.True(t, found)
		assert.True(t, hasCommand[StartLoop](cmds))
	})

	t.Run("host_camera_mode_leaves_local_alone", func(t *testing.T) {
		v := View{IsHost: true, Inputs: ModeInputs{CinematicActive: true, CinematicCamera: true}}
		cmds := Reduce(v, CinematicToggled{Active: true})

		for _, c := range cmds {
			if ws, ok := c.(WriteSetting); ok {
				assert.NotEqual(t, settings.KeyLocalEnabled, ws.Key)
			}
		}
		assert.True(t, hasCommand[StopLoop](cmds), "host camera mode without local follow idles")
	})
}

func TestReduceCinematicOff(t *testing.T) {
	guestSnap := &Snapshot{
		WasLocalFollowEnabled: false,
		ZoomScale:             2.0,
		Center:                common.Vec2{X: 11, Y: 12},
		Rotation:              0.4,
		ModeAtEntry:           "classic",
		ControlPanelState:     "expanded",
	}

	t.Run("guest_restores_view_and_consumes_snapshot", func(t *testing.T) {
		v := View{Inputs: ModeInputs{}, Snapshot: guestSnap}
		cmds := Reduce(v, CinematicToggled{Active: false})

		si, ok := commandOfType[SetInteractive](t, cmds)
		require.True(t, ok)
		assert.True(t, si.On)

		ap, ok := commandOfType[ApplyPanel](t, cmds)
		require.True(t, ok)
		assert.Equal(t, "expanded", ap.State)

		rot, ok := commandOfType[SetViewRotation](t, cmds)
		require.True(t, ok)
		assert.Equal(t, 0.4, rot.Radians)

		pan, ok := commandOfType[PanTo](t, cmds)
		require.True(t, ok)
		assert.Equal(t, 11.0, pan.X)
		assert.Equal(t, 2.0, pan.Scale)

		consumed := false
		for _, c := range cmds {
			if ws, ok := c.(WriteSetting); ok && ws.Key == settings.KeyClientSnapshot {
				consumed = true
				assert.Equal(t, "", ws.Value)
			}
		}
		assert.True(t, consumed)
		assert.True(t, hasCommand[StopLoop](cmds), "local follow was off before entry")
	})

	t.Run("retained_zoom_is_not_rolled_back", func(t *testing.T) {
		snap := *guestSnap
		snap.ZoomWasRetained = true
		cmds := Reduce(View{Snapshot: &snap}, CinematicToggled{Active: false})

		pan, ok := commandOfType[PanTo](t, cmds)
		require.True(t, ok)
		assert.Equal(t, 0.0, pan.Scale, "scale 0 keeps the current zoom")
	})

	t.Run("host_classic_restores_pre_forced_toggle", func(t *testing.T) {
		snap := &Snapshot{ModeAtEntry: "classic", PreClassicHostFollowEnabled: false}
		v := View{IsHost: true, Inputs: ModeInputs{LocalEnabled: true}, Snapshot: snap}
		cmds := Reduce(v, CinematicToggled{Active: false})

		restored := false
		for _, c := range cmds {
			if ws, ok := c.(WriteSetting); ok && ws.Key == settings.KeyLocalEnabled {
				restored = true
				assert.Equal(t, false, ws.Value)
			}
		}
		assert.True(t, restored)
		assert.True(t, hasCommand[StopLoop](cmds))
	})

	t.Run("host_camera_mode_keeps_camera_where_it_is", func(t *testing.T) {
		snap := &Snapshot{ModeAtEntry: "camera"}
		cmds := Reduce(View{IsHost: true, Snapshot: snap}, CinematicToggled{Active: false})
		assert.False(t, hasCommand[PanTo](cmds))
		assert.False(t, hasCommand[SetViewRotation](cmds))
	})

	t.Run("missing_snapshot_just_settles_loop", func(t *testing.T) {
		cmds := Reduce(View{}, CinematicToggled{Active: false})
		assert.Equal(t, []Command{StopLoop{}}, cmds)
	})
}

func TestReduceSubModeSwitched(t *testing.T) {
	t.Run("ignored_outside_cinematic", func(t *testing.T) {
		assert.Nil(t, Reduce(View{}, SubModeSwitched{CameraMode: true}))
	})

	t.Run("guest_to_camera_stops_loop", func(t *testing.T) {
		v := View{Inputs: ModeInputs{CinematicActive: true, CinematicCamera: true}}
		cmds := Reduce(v, SubModeSwitched{CameraMode: true})
		assert.True(t, hasCommand[ApplyHostState](cmds))
		assert.True(t, hasCommand[StopLoop](cmds))
	})

	t.Run("guest_to_classic_starts_loop", func(t *testing.T) {
		v := View{Inputs: ModeInputs{CinematicActive: true}}
		cmds := Reduce(v, SubModeSwitched{CameraMode: false})
		assert.True(t, hasCommand[ApplyHostState](cmds))
		assert.True(t, hasCommand[StartLoop](cmds))
	})

	t.Run("host_to_classic_forces_local_and_recenters", func(t *testing.T) {
		snap := &Snapshot{ModeAtEntry: "camera"}
		v := View{IsHost: true, Inputs: ModeInputs{CinematicActive: true}, Snapshot: snap}
		cmds := Reduce(v, SubModeSwitched{CameraMode: false})

		ws, ok := commandOfType[WriteSetting](t, cmds)
		require.True(t, ok)
		assert.Equal(t, settings.KeyClientSnapshot, ws.Key)
		updated, err := DecodeSnapshot(ws.Value.(string))
		require.NoError(t, err)
		assert.Equal(t, "classic", updated.ModeAtEntry)

		assert.True(t, hasCommand[RecenterNow](cmds))
		assert.True(t, hasCommand[StartLoop](cmds))
	})

	t.Run("host_to_camera_without_local_stops", func(t *testing.T) {
		v := View{IsHost: true, Inputs: ModeInputs{CinematicActive: true, CinematicCamera: true}}
		cmds := Reduce(v, SubModeSwitched{CameraMode: true})
		assert.Equal(t, []Command{StopLoop{}}, cmds)
	})
}

func TestReduceRemoteState(t *testing.T) {
	incoming := State{OriginID: "t1", X: 50, Y: 60, Scale: 2, Rotation: 0.1}

	t.Run("host_ignores_broadcasts", func(t *testing.T) {
		v := View{IsHost: true, TableID: "t1", Inputs: ModeInputs{CinematicActive: true}}
		assert.Nil(t, Reduce(v, RemoteStateReceived{State: incoming}))
	})

	t.Run("ignored_outside_cinematic", func(t *testing.T) {
		assert.Nil(t, Reduce(View{TableID: "t1"}, RemoteStateReceived{State: incoming}))
	})

	t.Run("stale_origin_discarded", func(t *testing.T) {
		v := View{TableID: "t2", Inputs: ModeInputs{CinematicActive: true}}
		assert.Nil(t, Reduce(v, RemoteStateReceived{State: incoming}))
	})

	t.Run("identical_state_is_noop", func(t *testing.T) {
		v := View{
			TableID: "t1",
			Inputs:  ModeInputs{CinematicActive: true},
			Center:  common.Vec2{X: 50.1, Y: 60},
			Zoom:    2,
		}
		v.Rotation = 0.1
		assert.Nil(t, Reduce(v, RemoteStateReceived{State: incoming}))
	})

	t.Run("new_state_applies", func(t *testing.T) {
		v := View{TableID: "t1", Inputs: ModeInputs{CinematicActive: true}, Zoom: 1}
		cmds := Reduce(v, RemoteStateReceived{State: incoming})
		ar, ok := commandOfType[ApplyRemoteState](t, cmds)
		require.True(t, ok)
		assert.Equal(t, incoming, ar.State)
	})
}

func TestReduceSelectionChanged(t *testing.T) {
	snap := &Snapshot{LockedTokenIDs: []string{"a", "b"}}

	t.Run("guest_reverts_to_locked_set", func(t *testing.T) {
		v := View{Inputs: ModeInputs{CinematicActive: true}, Snapshot: snap}
		cmds := Reduce(v, SelectionChanged{IDs: []string{"c"}})
		sel, ok := commandOfType[SelectTokens](t, cmds)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, sel.IDs)
	})

	t.Run("same_set_any_order_is_noop", func(t *testing.T) {
		v := View{Inputs: ModeInputs{CinematicActive: true}, Snapshot: snap}
		assert.Nil(t, Reduce(v, SelectionChanged{IDs: []string{"b", "a"}}))
	})

	t.Run("host_unaffected", func(t *testing.T) {
		v := View{IsHost: true, Inputs: ModeInputs{CinematicActive: true}, Snapshot: snap}
		assert.Nil(t, Reduce(v, SelectionChanged{IDs: []string{"c"}}))
	})

	t.Run("no_locked_tokens_no_revert", func(t *testing.T) {
		v := View{Inputs: ModeInputs{CinematicActive: true}, Snapshot: &Snapshot{}}
		assert.Nil(t, Reduce(v, SelectionChanged{IDs: []string{"c"}}))
	})
}
