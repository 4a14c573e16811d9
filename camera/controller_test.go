package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tokencam/common"
	"github.com/milk9111/tokencam/notify"
	"github.com/milk9111/tokencam/settings"
)

type panCall struct {
	x, y, scale float64
}

type fakeCanvas struct {
	tableID     string
	center      common.Vec2
	zoom        float64
	rotation    float64
	selected    []Token
	byID        map[string]Token
	interactive bool

	panCalls    []panCall
	selectCalls [][]string
	cancels     int

	// selectHook mimics the viewport's synchronous selection notification.
	selectHook func(ids []string)
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{
		tableID:     "t1",
		center:      common.Vec2{X: 100, Y: 100},
		zoom:        1,
		interactive: true,
		byID:        map[string]Token{},
	}
}

func (f *fakeCanvas) TableID() string          { return f.tableID }
func (f *fakeCanvas) ViewportSize() (int, int) { return 800, 600 }
func (f *fakeCanvas) Transform() Transform {
	return Transform{TranslateX: 400 - f.center.X*f.zoom, TranslateY: 300 - f.center.Y*f.zoom, Scale: f.zoom}
}
func (f *fakeCanvas) ScreenToWorld(sx, sy float64) (common.Vec2, bool) {
	return f.Transform().ScreenToWorld(sx, sy)
}
func (f *fakeCanvas) NominalCenter() common.Vec2 { return common.Vec2{X: 640, Y: 360} }
func (f *fakeCanvas) Pan(x, y, scale float64, _ int) {
	f.center = common.Vec2{X: x, Y: y}
	if scale > 0 {
		f.zoom = scale
	}
	f.panCalls = append(f.panCalls, panCall{x, y, scale})
}
func (f *fakeCanvas) SetRotation(r float64) { f.rotation = r }
func (f *fakeCanvas) Zoom() float64         { return f.zoom }
func (f *fakeCanvas) Rotation() float64     { return f.rotation }
func (f *fakeCanvas) SelectedTokens() []Token {
	return append([]Token(nil), f.selected...)
}
func (f *fakeCanvas) TokensByID(ids []string) []Token {
	var out []Token
	for _, id := range ids {
		if t, ok := f.byID[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
func (f *fakeCanvas) Select(ids []string) {
	f.selectCalls = append(f.selectCalls, append([]string(nil), ids...))
	f.selected = f.TokensByID(ids)
	if f.selectHook != nil {
		f.selectHook(ids)
	}
}
func (f *fakeCanvas) SetInteractive(on bool) { f.interactive = on }
func (f *fakeCanvas) CancelPan()             { f.cancels++ }

type fakePanel struct {
	state     string
	collapses int
	applies   []string
}

func (p *fakePanel) State() string { return p.state }
func (p *fakePanel) Apply(s string) {
	p.state = s
	p.applies = append(p.applies, s)
}
func (p *fakePanel) Collapse() {
	p.state = "collapsed"
	p.collapses++
}

type harness struct {
	clock  *fakeClock
	store  *settings.Memory
	canvas *fakeCanvas
	panel  *fakePanel
	queue  *notify.Queue
	ctrl   *Controller
}

func newHarness(t *testing.T, isHost bool) *harness {
	t.Helper()
	h := &harness{
		clock:  newFakeClock(),
		store:  settings.NewMemory(),
		canvas: newFakeCanvas(),
		panel:  &fakePanel{state: "expanded"},
		queue:  notify.NewQueue(isHost),
	}
	h.ctrl = NewController(Config{
		Store:    h.store,
		Canvas:   h.canvas,
		Panel:    h.panel,
		Notifier: h.queue,
		IsHost:   isHost,
		Now:      h.clock.now,
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) set(t *testing.T, key settings.Key, v any) {
	t.Helper()
	require.NoError(t, h.store.Set(key, v))
}

func (h *harness) frame(d time.Duration) {
	h.clock.advance(d)
	h.ctrl.Update()
}

func TestControllerFollowLoopStepsTowardToken(t *testing.T) {
	h := newHarness(t, false)
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 200, Y: 100}}}

	// Enabling the toggle recenters exactly and starts the loop.
	h.set(t, settings.KeyLocalEnabled, true)
	h.frame(16 * time.Millisecond)
	require.True(t, h.ctrl.LoopRunning())
	require.InDelta(t, 200, h.canvas.center.X, 1e-9)

	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 300, Y: 100}}}
	h.ctrl.TokenMoved()
	h.frame(16 * time.Millisecond)

	// Default responsiveness is 0.2: the camera covers a fifth of the
	// remaining distance per frame.
	assert.InDelta(t, 220, h.canvas.center.X, 1e-9)
}

func TestControllerIdleTimeoutStopsLoop(t *testing.T) {
	h := newHarness(t, false)
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 200, Y: 100}}}

	h.set(t, settings.KeyLocalEnabled, true)
	h.frame(16 * time.Millisecond)
	h.ctrl.TokenMoved()
	h.frame(16 * time.Millisecond)
	require.True(t, h.ctrl.LoopRunning())

	// Default idle window is 300ms.
	h.frame(400 * time.Millisecond)
	assert.False(t, h.ctrl.LoopRunning())

	// Token motion wakes it back up.
	h.ctrl.TokenMoved()
	assert.True(t, h.ctrl.LoopRunning())
}

func TestControllerManualPanSuppressesAndResumes(t *testing.T) {
	h := newHarness(t, false)
	h.set(t, settings.KeyResumeOnRelease, true)
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 200, Y: 100}}}

	h.set(t, settings.KeyLocalEnabled, true)
	h.frame(16 * time.Millisecond)
	// Let the post-recenter motion window lapse so the press counts as a
	// deliberate manual pan, not a grab of a moving camera.
	h.frame(400 * time.Millisecond)

	assert.Equal(t, Allow, h.ctrl.PointerDown(ButtonMiddle))
	assert.False(t, h.ctrl.LoopRunning(), "manual pan pauses the loop")

	h.ctrl.PointerUp(ButtonMiddle)
	// Wait out the grace window.
	h.frame(500 * time.Millisecond)
	assert.True(t, h.ctrl.LoopRunning(), "resume-on-release restarts the loop")
	assert.InDelta(t, 200, h.canvas.center.X, 1e-9, "resume recenters exactly")
}

func TestControllerGuestCinematicRoundTrip(t *testing.T) {
	h := newHarness(t, false)
	h.canvas.center = common.Vec2{X: 77, Y: 88}
	h.canvas.zoom = 1.5
	h.canvas.selected = []Token{{ID: "mine", Center: common.Vec2{X: 77, Y: 88}}}
	h.canvas.byID["mine"] = h.canvas.selected[0]

	// Host state arrives ahead of the lock.
	h.set(t, settings.KeyHostCameraState, State{OriginID: "t1", X: 500, Y: 500, Scale: 2})
	h.set(t, settings.KeyCinematicActive, true)
	h.frame(16 * time.Millisecond)

	assert.False(t, h.canvas.interactive, "guest canvas locks")
	assert.Equal(t, 1, h.panel.collapses)
	assert.InDelta(t, 500, h.canvas.center.X, 1e-9, "guest mirrors the host state")

	snap := LoadSnapshot(h.store)
	require.NotNil(t, snap)
	assert.Equal(t, 77.0, snap.Center.X)
	assert.Equal(t, 1.5, snap.ZoomScale)

	h.set(t, settings.KeyCinematicActive, false)
	h.frame(16 * time.Millisecond)

	assert.True(t, h.canvas.interactive, "guest canvas unlocks")
	assert.InDelta(t, 77, h.canvas.center.X, 1e-9, "view restored")
	assert.InDelta(t, 1.5, h.canvas.zoom, 1e-9, "zoom restored")
	assert.Nil(t, LoadSnapshot(h.store), "snapshot consumed on exit")
}

func TestControllerGuestPanRevertedDuringCinematicCamera(t *testing.T) {
	h := newHarness(t, false)
	h.set(t, settings.KeyHostCameraState, State{OriginID: "t1", X: 300, Y: 300, Scale: 1})
	h.set(t, settings.KeyCinematicActive, true)
	h.set(t, settings.KeyCinematicCameraMode, true)
	h.frame(16 * time.Millisecond)

	// A pan that slipped past the input lock gets snapped back.
	h.canvas.center = common.Vec2{X: 5, Y: 5}
	h.ctrl.PanChanged()
	assert.InDelta(t, 300, h.canvas.center.X, 1e-9)
}

func TestControllerStaleOriginIgnored(t *testing.T) {
	h := newHarness(t, false)
	h.set(t, settings.KeyCinematicActive, true)
	h.frame(16 * time.Millisecond)

	before := h.canvas.center
	h.set(t, settings.KeyHostCameraState, State{OriginID: "other-table", X: 999, Y: 999, Scale: 3})
	h.frame(16 * time.Millisecond)
	assert.Equal(t, before, h.canvas.center, "state from another table is discarded")
}

func TestControllerHostPublishesDuringCinematic(t *testing.T) {
	h := newHarness(t, true)
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 400, Y: 200}}}

	h.ctrl.ToggleCinematic()
	h.frame(16 * time.Millisecond)

	v, ok := h.store.Get(settings.KeyHostCameraState)
	require.True(t, ok)
	st, ok := v.(State)
	require.True(t, ok)
	assert.Equal(t, "t1", st.OriginID)

	// The follow loop's pans keep the broadcast fresh.
	h.ctrl.TokenMoved()
	h.frame(16 * time.Millisecond)
	v, _ = h.store.Get(settings.KeyHostCameraState)
	moved := v.(State)
	assert.NotEqual(t, st.X, moved.X)
}

func TestControllerHostSelectionBroadcastDuringCinematic(t *testing.T) {
	h := newHarness(t, true)
	h.set(t, settings.KeyCinematicActive, true)
	h.frame(16 * time.Millisecond)

	h.ctrl.SelectionChanged([]string{"a", "b"})
	ids := settings.Strings(h.store, settings.KeyHostSelectionIDs)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestControllerGuestSelectionRevert(t *testing.T) {
	h := newHarness(t, false)
	h.canvas.byID["a"] = Token{ID: "a", Center: common.Vec2{X: 1, Y: 1}}
	h.canvas.byID["x"] = Token{ID: "x", Center: common.Vec2{X: 2, Y: 2}}
	h.canvas.selected = []Token{h.canvas.byID["a"]}
	h.canvas.selectHook = h.ctrl.SelectionChanged

	h.set(t, settings.KeyCinematicActive, true)
	h.frame(16 * time.Millisecond)

	snap := LoadSnapshot(h.store)
	require.NotNil(t, snap)
	require.Equal(t, []string{"a"}, snap.LockedTokenIDs)

	h.ctrl.SelectionChanged([]string{"x"})
	h.frame(16 * time.Millisecond)

	require.NotEmpty(t, h.canvas.selectCalls)
	assert.Equal(t, []string{"a"}, h.canvas.selectCalls[len(h.canvas.selectCalls)-1],
		"selection snaps back to the locked set")
}

func TestControllerGuestCannotToggleDuringCinematic(t *testing.T) {
	h := newHarness(t, false)
	h.set(t, settings.KeyCinematicActive, true)
	h.frame(16 * time.Millisecond)

	h.ctrl.ToggleLocal()
	v, ok := h.store.Get(settings.KeyLocalEnabled)
	if ok {
		assert.NotEqual(t, false, v, "toggle must not flip while locked")
	}
	assert.NotEmpty(t, h.queue.Active(), "user is told why")
}

func TestControllerGuestCannotForceOrCinematic(t *testing.T) {
	h := newHarness(t, false)

	h.ctrl.ToggleForce()
	_, ok := h.store.Get(settings.KeyForceFollow)
	assert.False(t, ok)

	h.ctrl.ToggleCinematic()
	_, ok = h.store.Get(settings.KeyCinematicActive)
	assert.False(t, ok)
}

func TestControllerMovingPanBlockedAndCancelled(t *testing.T) {
	h := newHarness(t, false)
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 200, Y: 100}}}
	h.set(t, settings.KeyLocalEnabled, true)
	h.frame(16 * time.Millisecond)
	h.ctrl.TokenMoved()

	// Enabling the toggle already unwound any held drag, so measure the
	// cancel the blocked press adds on top.
	before := h.canvas.cancels
	assert.Equal(t, BlockAndCancel, h.ctrl.PointerDown(ButtonMiddle))
	assert.Equal(t, before+1, h.canvas.cancels)
}

func TestControllerMaxSpeedClampsStep(t *testing.T) {
	h := newHarness(t, false)
	h.set(t, settings.KeyResponsiveness, 0.5)
	h.set(t, settings.KeyMaxSpeedPxPerSec, 100.0)
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 200, Y: 100}}}

	h.set(t, settings.KeyLocalEnabled, true)
	h.frame(16 * time.Millisecond)
	require.InDelta(t, 200, h.canvas.center.X, 1e-9, "enabling recenters exactly, uncapped")

	// 1000px away: the raw half-distance step (500px) clamps to the
	// 100px/s cap over a 100ms frame.
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 1200, Y: 100}}}
	h.ctrl.TokenMoved()
	h.frame(100 * time.Millisecond)
	assert.InDelta(t, 210, h.canvas.center.X, 1e-9)

	// A step already under the cap passes through untouched.
	h.canvas.selected = []Token{{ID: "a", Center: common.Vec2{X: 225, Y: 100}}}
	h.ctrl.TokenMoved()
	h.frame(100 * time.Millisecond)
	assert.InDelta(t, 217.5, h.canvas.center.X, 1e-9)
}

func TestControllerMultiTokenIdleCushion(t *testing.T) {
	h := newHarness(t, false)
	h.canvas.selected = []Token{
		{ID: "a", Center: common.Vec2{X: 200, Y: 100}},
		{ID: "b", Center: common.Vec2{X: 300, Y: 200}},
	}

	h.set(t, settings.KeyLocalEnabled, true)
	h.frame(16 * time.Millisecond)
	h.ctrl.TokenMoved()
	h.frame(16 * time.Millisecond)
	require.True(t, h.ctrl.LoopRunning())

	// With more than one tracked token the 300ms idle window gets the
	// extra cushion, so 416ms of silence is still inside it.
	h.frame(400 * time.Millisecond)
	assert.True(t, h.ctrl.LoopRunning())

	h.frame(100 * time.Millisecond)
	assert.False(t, h.ctrl.LoopRunning(), "silence past the stretched window stops the loop")
}
