package camera

import (
	"encoding/json"
	"fmt"

	"github.com/milk9111/tokencam/common"
	"github.com/milk9111/tokencam/settings"
)

// Snapshot captures a client's camera and UI state at the instant cinematic
// mode is entered, so exit can restore it. Each client owns exactly one
// snapshot; it is overwritten on entry, read once on exit, and never merged
// with anyone else's.
type Snapshot struct {
	WasLocalFollowEnabled bool        `json:"wasLocalFollowEnabled"`
	ZoomWasRetained       bool        `json:"zoomWasRetained"`
	ZoomScale             float64     `json:"zoomScale"`
	Center                common.Vec2 `json:"center"`
	Rotation              float64     `json:"rotation"`
	// ModeAtEntry is the cinematic sub-mode active when the snapshot was
	// taken ("classic" or "camera").
	ModeAtEntry string `json:"modeAtEntry"`
	// PreClassicHostFollowEnabled remembers the host's local toggle from
	// before classic mode forced it on.
	PreClassicHostFollowEnabled bool     `json:"preClassicHostFollowEnabled"`
	LockedTokenIDs              []string `json:"lockedTokenIds,omitempty"`
	ControlPanelState           string   `json:"controlPanelState,omitempty"`
}

const (
	subModeClassic = "classic"
	subModeCamera  = "camera"
)

// Encode serializes the snapshot for storage in the per-user settings key.
func (s Snapshot) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("camera: encode snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot parses a stored snapshot. An empty value means no snapshot
// exists (it was consumed or never taken).
func DecodeSnapshot(raw string) (*Snapshot, error) {
	if raw == "" {
		return nil, nil
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("camera: decode snapshot: %w", err)
	}
	return &s, nil
}

// LoadSnapshot reads the client's stored snapshot, tolerating a missing or
// corrupt value by returning nil.
func LoadSnapshot(store settings.Store) *Snapshot {
	v, ok := store.Get(settings.KeyClientSnapshot)
	if !ok {
		return nil
	}
	raw, ok := v.(string)
	if !ok {
		return nil
	}
	s, err := DecodeSnapshot(raw)
	if err != nil {
		return nil
	}
	return s
}
