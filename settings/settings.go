// Package settings provides the typed key-value layer the camera module
// reads its configuration and shared state through. Keys live in one of
// three scopes: per-user persistent, world-shared, or session-local.
// Missing values always resolve to a documented default instead of failing.
package settings

import "github.com/milk9111/tokencam/common"

// Scope describes where a key's value lives and who sees writes to it.
type Scope int

const (
	// ScopeUser is persisted per user and never shared.
	ScopeUser Scope = iota
	// ScopeWorld is shared across every client at the table.
	ScopeWorld
	// ScopeSession is process-local and not persisted.
	ScopeSession
)

// Key identifies a stored setting.
type Key string

const (
	KeyLocalEnabled        Key = "localEnabled"
	KeyRetainZoom          Key = "retainZoom"
	KeyZoomScale           Key = "zoomScale"
	KeyResponsiveness      Key = "responsiveness"
	KeyMaxSpeedPxPerSec    Key = "maxSpeedPxPerSec"
	KeyIdleMs              Key = "idleMs"
	KeyResumeOnRelease     Key = "resumeOnRelease"
	KeyClientSnapshot      Key = "clientSnapshot"
	KeyForceFollow         Key = "forceFollow"
	KeyCinematicActive     Key = "cinematicActive"
	KeyCinematicCameraMode Key = "cinematicUsesCameraMode"
	KeyHostCameraState     Key = "hostCameraState"
	KeyHostSelectionIDs    Key = "hostSelectionIds"
)

// ScopeOf returns the scope a key belongs to. Unknown keys are session-local.
func ScopeOf(k Key) Scope {
	switch k {
	case KeyLocalEnabled, KeyRetainZoom, KeyZoomScale, KeyResponsiveness,
		KeyMaxSpeedPxPerSec, KeyIdleMs, KeyResumeOnRelease, KeyClientSnapshot:
		return ScopeUser
	case KeyForceFollow, KeyCinematicActive, KeyCinematicCameraMode,
		KeyHostCameraState, KeyHostSelectionIDs:
		return ScopeWorld
	default:
		return ScopeSession
	}
}

// ChangeFunc is invoked after a key's value changes.
type ChangeFunc func(key Key, value any)

// Store is the minimal surface the camera module needs: typed-ish reads,
// fire-and-forget writes, and per-key change notification.
type Store interface {
	// Get returns the raw stored value, or ok=false when unset.
	Get(key Key) (value any, ok bool)
	// Set stores a value and notifies subscribers. Writes are
	// fire-and-forget: an error is reported but local state is not
	// rolled back.
	Set(key Key, value any) error
	// OnChange registers a callback for a key. The returned func
	// unsubscribes it.
	OnChange(key Key, fn ChangeFunc) (unsubscribe func())
}

// Bool reads a boolean setting, returning def when unset or mistyped.
func Bool(s Store, key Key, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Float reads a numeric setting, returning def when unset or mistyped.
func Float(s Store, key Key, def float64) float64 {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

// Strings reads a string-list setting, returning nil when unset or mistyped.
func Strings(s Store, key Key) []string {
	v, ok := s.Get(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Tuning defaults and ranges. Responsiveness and idle timeout are clamped
// on read so a hand-edited settings file cannot push the driver outside
// its stable range.
const (
	DefaultLocalEnabled   = true
	DefaultRetainZoom     = false
	DefaultZoomScale      = 1.0
	DefaultResponsiveness = 0.2
	MinResponsiveness     = 0.05
	MaxResponsiveness     = 0.5
	DefaultMaxSpeed       = 0.0
	DefaultIdleMs         = 300.0
	MinIdleMs             = 100.0
	MaxIdleMs             = 2000.0
)

// LocalEnabled reads the per-user follow toggle. Defaults to true: a
// missing value must never silently disable following.
func LocalEnabled(s Store) bool {
	return Bool(s, KeyLocalEnabled, DefaultLocalEnabled)
}

// Responsiveness reads the follow lerp coefficient clamped to its range.
func Responsiveness(s Store) float64 {
	return common.Clamp(Float(s, KeyResponsiveness, DefaultResponsiveness), MinResponsiveness, MaxResponsiveness)
}

// MaxSpeed reads the speed cap in px/s; 0 means uncapped.
func MaxSpeed(s Store) float64 {
	v := Float(s, KeyMaxSpeedPxPerSec, DefaultMaxSpeed)
	if v < 0 {
		return 0
	}
	return v
}

// IdleMs reads the idle stop timeout clamped to its range.
func IdleMs(s Store) float64 {
	return common.Clamp(Float(s, KeyIdleMs, DefaultIdleMs), MinIdleMs, MaxIdleMs)
}
