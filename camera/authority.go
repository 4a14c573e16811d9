package camera

import "github.com/milk9111/tokencam/settings"

// Mode is the single effective camera-authority mode for one client at one
// instant. Exactly one applies; cinematic dominates force dominates local.
type Mode int

const (
	ModeDisabled Mode = iota
	ModeLocalFollow
	ModeForcedFollow
	ModeCinematicClassic
	ModeCinematicCamera
)

func (m Mode) String() string {
	switch m {
	case ModeLocalFollow:
		return "local"
	case ModeForcedFollow:
		return "forced"
	case ModeCinematicClassic:
		return "cinematic-classic"
	case ModeCinematicCamera:
		return "cinematic-camera"
	default:
		return "disabled"
	}
}

// Cinematic reports whether m is either cinematic variant.
func (m Mode) Cinematic() bool {
	return m == ModeCinematicClassic || m == ModeCinematicCamera
}

// ModeInputs are the four underlying settings a mode is derived from.
type ModeInputs struct {
	LocalEnabled    bool
	ForceFollow     bool
	CinematicActive bool
	CinematicCamera bool
}

// ReadModeInputs loads the inputs from the store, applying the documented
// defaults for missing values (local defaults on, everything else off).
func ReadModeInputs(s settings.Store) ModeInputs {
	return ModeInputs{
		LocalEnabled:    settings.LocalEnabled(s),
		ForceFollow:     settings.Bool(s, settings.KeyForceFollow, false),
		CinematicActive: settings.Bool(s, settings.KeyCinematicActive, false),
		CinematicCamera: settings.Bool(s, settings.KeyCinematicCameraMode, false),
	}
}

// ResolveMode computes the effective mode for a client. The host is never
// subject to forced follow; force only changes what guests experience.
func ResolveMode(in ModeInputs, isHost bool) Mode {
	if in.CinematicActive {
		if in.CinematicCamera {
			return ModeCinematicCamera
		}
		return ModeCinematicClassic
	}
	if in.ForceFollow && !isHost {
		return ModeForcedFollow
	}
	if in.LocalEnabled {
		return ModeLocalFollow
	}
	return ModeDisabled
}

// FollowActive is the effective-follow predicate: whether the render loop
// should be driving this client's camera right now. Guests in cinematic
// camera mode mirror the host instead of following, so their value is false.
func FollowActive(in ModeInputs, isHost bool) bool {
	switch ResolveMode(in, isHost) {
	case ModeCinematicCamera:
		return isHost && in.LocalEnabled
	case ModeCinematicClassic:
		return true
	case ModeForcedFollow:
		return true
	case ModeLocalFollow:
		return true
	default:
		return false
	}
}
