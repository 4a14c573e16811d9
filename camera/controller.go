package camera

import (
	"log"
	"sync"
	"time"

	"github.com/milk9111/tokencam/common"
	"github.com/milk9111/tokencam/notify"
	"github.com/milk9111/tokencam/settings"
)

const (
	// minFrameDt floors the frame delta so a stalled clock can't blow up
	// the step division.
	minFrameDt = 1e-4
	// multiTrackCushion keeps the loop alive a little longer when several
	// tokens are tracked, avoiding start/stop churn as they move in turn.
	multiTrackCushion = 180 * time.Millisecond
)

// Config wires a Controller to its collaborators.
type Config struct {
	Store    settings.Store
	Canvas   Canvas
	Panel    Panel
	Notifier notify.Sink
	IsHost   bool
	// Now overrides the clock, for tests. Nil means wall time.
	Now func() time.Time
}

// Controller is the per-client camera authority. It owns the follow loop,
// executes reducer commands, and publishes the host's camera state while
// cinematic mode runs. Construct one on canvas ready and Close it on
// teardown; all methods are driven from the client's frame loop except the
// settings callbacks, which only enqueue events.
type Controller struct {
	store    settings.Store
	canvas   Canvas
	panel    Panel
	notifier notify.Sink
	isHost   bool
	now      func() time.Time

	smoother Smoother
	arbiter  *Arbiter

	// queueMu guards pending only; relay callbacks append from their own
	// goroutine, everything else runs on the frame loop.
	queueMu sync.Mutex
	pending []Event

	running   bool
	lastFrame time.Time
	lastMove  time.Time

	// squelch brackets self-triggered camera mutations so the corrective
	// pan handler ignores them.
	squelch bool
	// reselecting brackets the corrective re-selection pass.
	reselecting   bool
	pendingSelect []string

	lastSent *State

	unsubscribe []func()
}

// NewController builds a controller and subscribes it to the settings keys
// that drive mode transitions.
func NewController(cfg Config) *Controller {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		store:    cfg.Store,
		canvas:   cfg.Canvas,
		panel:    cfg.Panel,
		notifier: cfg.Notifier,
		isHost:   cfg.IsHost,
		now:      now,
		arbiter:  NewArbiter(now),
	}

	c.subscribe(settings.KeyLocalEnabled, func(v any) Event {
		b, _ := v.(bool)
		return LocalToggled{Enabled: b}
	})
	c.subscribe(settings.KeyForceFollow, func(v any) Event {
		b, _ := v.(bool)
		return ForceToggled{Enabled: b}
	})
	c.subscribe(settings.KeyCinematicActive, func(v any) Event {
		b, _ := v.(bool)
		return CinematicToggled{Active: b}
	})
	c.subscribe(settings.KeyCinematicCameraMode, func(v any) Event {
		b, _ := v.(bool)
		return SubModeSwitched{CameraMode: b}
	})
	c.subscribe(settings.KeyHostCameraState, func(v any) Event {
		st, ok := v.(State)
		if !ok {
			return nil
		}
		return RemoteStateReceived{State: st}
	})
	return c
}

func (c *Controller) subscribe(key settings.Key, build func(any) Event) {
	unsub := c.store.OnChange(key, func(_ settings.Key, value any) {
		ev := build(value)
		if ev == nil {
			return
		}
		c.queueMu.Lock()
		c.pending = append(c.pending, ev)
		c.queueMu.Unlock()
	})
	c.unsubscribe = append(c.unsubscribe, unsub)
}

// Close detaches the controller from the settings store and stops the loop.
func (c *Controller) Close() {
	for _, unsub := range c.unsubscribe {
		unsub()
	}
	c.unsubscribe = nil
	c.running = false
}

// --- user-triggerable actions -------------------------------------------

// ToggleLocal flips the per-user follow toggle, subject to lock checks.
func (c *Controller) ToggleLocal() {
	v := c.view()
	if ok, reason := CanToggleLocal(v); !ok {
		c.notifier.Notify(notify.Warn, notify.All, reason)
		return
	}
	c.write(settings.KeyLocalEnabled, !v.Inputs.LocalEnabled)
}

// ToggleForce flips the world-shared forced-follow flag. Host only.
func (c *Controller) ToggleForce() {
	if !c.isHost {
		c.notifier.Notify(notify.Warn, notify.All, "only the GM can enforce camera follow")
		return
	}
	in := ReadModeInputs(c.store)
	c.write(settings.KeyForceFollow, !in.ForceFollow)
}

// ToggleCinematic flips the world-shared cinematic lock. Host only.
func (c *Controller) ToggleCinematic() {
	if !c.isHost {
		c.notifier.Notify(notify.Warn, notify.All, "only the GM can start the cinematic view")
		return
	}
	in := ReadModeInputs(c.store)
	if !in.CinematicActive {
		// Seed the broadcast state so guests have something to mirror the
		// instant they lock.
		c.publishCameraState("cinematic-enter")
	}
	c.write(settings.KeyCinematicActive, !in.CinematicActive)
}

// ToggleSubMode switches between classic and camera cinematic sub-modes
// while cinematic is active. Host only.
func (c *Controller) ToggleSubMode() {
	if !c.isHost {
		return
	}
	in := ReadModeInputs(c.store)
	if !in.CinematicActive {
		return
	}
	c.write(settings.KeyCinematicCameraMode, !in.CinematicCamera)
}

// --- external query surface ----------------------------------------------

// FollowActive reports whether the follow loop should be driving the
// camera for this client right now. Recomputed fresh on every call.
func (c *Controller) FollowActive() bool {
	return FollowActive(ReadModeInputs(c.store), c.isHost)
}

// ViewportCenter returns the current world-space viewport center.
func (c *Controller) ViewportCenter() common.Vec2 {
	return ResolveCenter(c.canvas)
}

// LoopRunning reports whether the follow loop is currently stepping.
func (c *Controller) LoopRunning() bool {
	return c.running
}

// Mode returns the effective authority mode for this client.
func (c *Controller) Mode() Mode {
	return ResolveMode(ReadModeInputs(c.store), c.isHost)
}

// IsHost reports this client's role.
func (c *Controller) IsHost() bool {
	return c.isHost
}

// --- canvas-facing input hooks -------------------------------------------

// PointerDown arbitrates a button press. The caller must consume the event
// when anything other than Allow comes back.
func (c *Controller) PointerDown(btn Button) Decision {
	d := c.arbiter.PointerDown(c.view(), btn, c.moving())
	if d == BlockAndCancel {
		c.canvas.CancelPan()
	}
	if c.arbiter.HeldButtons() {
		// Manual pan in progress; the loop yields until release.
		c.running = false
	}
	return d
}

// PointerUp records a button release and arms the resume-on-release pass.
func (c *Controller) PointerUp(btn Button) {
	c.arbiter.PointerUp(btn, settings.Bool(c.store, settings.KeyResumeOnRelease, false))
}

// Wheel arbitrates a scroll event.
func (c *Controller) Wheel() Decision {
	return c.arbiter.Wheel(c.view())
}

// ContextMenu arbitrates a context-menu event.
func (c *Controller) ContextMenu() Decision {
	return c.arbiter.ContextMenu(c.view())
}

// SelectionChanged reports that this client's selection changed. The
// corrective re-selection pass is guarded so it doesn't re-trigger itself.
func (c *Controller) SelectionChanged(ids []string) {
	if c.reselecting {
		return
	}
	if c.isHost && ReadModeInputs(c.store).CinematicActive {
		c.write(settings.KeyHostSelectionIDs, append([]string(nil), ids...))
	}
	c.enqueue(SelectionChanged{IDs: append([]string(nil), ids...)})
}

// TokenMoved reports movement of a tracked token and wakes the loop.
func (c *Controller) TokenMoved() {
	c.lastMove = c.now()
	if !c.running && !c.arbiter.Suppressed() && c.FollowActive() {
		c.startLoop()
	}
}

// AllowTokenUpdate reports whether a local token field update may apply.
func (c *Controller) AllowTokenUpdate(field string) bool {
	return AllowTokenUpdate(c.view(), field)
}

// PanChanged reports a viewport pan that did not come from this
// controller's own mutations (those are squelched). Guests in cinematic
// revert it immediately.
func (c *Controller) PanChanged() {
	if c.squelch {
		return
	}
	v := c.view()
	if c.isHost || !v.Inputs.CinematicActive {
		return
	}
	if v.Inputs.CinematicCamera {
		c.applyHostState()
		return
	}
	c.recenter()
}

// --- frame loop ------------------------------------------------------------

// Update advances the controller one frame: drains queued events, runs
// deferred corrective passes, applies loop stop conditions, and steps the
// camera toward its target.
func (c *Controller) Update() {
	c.drainEvents()
	c.runDeferredSelect()

	now := c.now()

	if c.arbiter.ResumeDue(c.moving()) {
		c.recenter()
		c.startLoop()
	}

	// Host-side watcher: while cinematic runs, any camera change, manual
	// or loop-driven, is pushed out.
	if c.isHost && ReadModeInputs(c.store).CinematicActive {
		c.publishCameraState("watch")
	}

	if !c.running {
		c.lastFrame = now
		return
	}

	v := c.view()
	if !FollowActive(v.Inputs, c.isHost) {
		c.stopLoop()
		return
	}
	if c.arbiter.HeldButtons() {
		c.stopLoop()
		return
	}

	tracked := c.trackedTokens(v)
	if len(tracked) == 0 {
		c.smoother.Reset()
		c.stopLoop()
		return
	}

	idle := time.Duration(settings.IdleMs(c.store)) * time.Millisecond
	if len(tracked) > 1 {
		idle += multiTrackCushion
	}
	if now.Sub(c.lastMove) > idle {
		c.stopLoop()
		return
	}

	if c.arbiter.Suppressed() {
		c.lastFrame = now
		return
	}

	c.step(now, tracked)
}

func (c *Controller) step(now time.Time, tracked []Token) {
	dt := now.Sub(c.lastFrame).Seconds()
	if dt < minFrameDt {
		dt = minFrameDt
	}
	c.lastFrame = now

	centers := make([]common.Vec2, len(tracked))
	for i, t := range tracked {
		centers[i] = t.Center
	}
	target, ok := c.smoother.Target(centers)
	if !ok {
		return
	}

	current := ResolveCenter(c.canvas)
	step := target.Sub(current).Scale(settings.Responsiveness(c.store))
	if max := settings.MaxSpeed(c.store); max > 0 {
		step = step.ClampLen(max * dt)
	}
	next := current.Add(step)

	c.squelch = true
	c.canvas.Pan(next.X, next.Y, 0, 0)
	c.squelch = false

	if c.isHost && ReadModeInputs(c.store).CinematicActive {
		c.publishCameraState("follow")
	}
}

func (c *Controller) startLoop() {
	if !c.running {
		c.running = true
		c.lastFrame = c.now()
	}
	c.lastMove = c.now()
}

func (c *Controller) stopLoop() {
	c.running = false
}

// --- event plumbing --------------------------------------------------------

func (c *Controller) enqueue(ev Event) {
	c.queueMu.Lock()
	c.pending = append(c.pending, ev)
	c.queueMu.Unlock()
}

func (c *Controller) drainEvents() {
	for {
		c.queueMu.Lock()
		if len(c.pending) == 0 {
			c.queueMu.Unlock()
			return
		}
		ev := c.pending[0]
		c.pending = c.pending[1:]
		c.queueMu.Unlock()

		c.exec(Reduce(c.view(), ev))
	}
}

func (c *Controller) exec(cmds []Command) {
	for _, cmd := range cmds {
		switch cc := cmd.(type) {
		case PanTo:
			c.squelch = true
			c.canvas.Pan(cc.X, cc.Y, cc.Scale, cc.DurationMs)
			c.squelch = false
		case SetViewRotation:
			c.squelch = true
			c.canvas.SetRotation(cc.Radians)
			c.squelch = false
		case WriteSetting:
			c.write(cc.Key, cc.Value)
		case Announce:
			c.notifier.Notify(cc.Level, cc.Audience, cc.Text)
		case StartLoop:
			c.startLoop()
		case StopLoop:
			c.stopLoop()
		case SelectTokens:
			// Deferred to the next frame to break reentrancy with the
			// selection-change notification.
			c.pendingSelect = cc.IDs
		case SetInteractive:
			c.canvas.SetInteractive(cc.On)
		case CollapsePanel:
			if c.panel != nil {
				c.panel.Collapse()
			}
		case ApplyPanel:
			if c.panel != nil {
				c.panel.Apply(cc.State)
			}
		case RecenterNow:
			c.recenter()
		case ApplyHostState:
			c.applyHostState()
		case ApplyRemoteState:
			c.applyState(cc.State)
		case CancelManualPan:
			c.canvas.CancelPan()
		case ClearSuppression:
			c.arbiter.ClearSuppression()
		}
	}
}

func (c *Controller) runDeferredSelect() {
	if c.pendingSelect == nil {
		return
	}
	ids := c.pendingSelect
	c.pendingSelect = nil
	c.reselecting = true
	c.canvas.Select(ids)
	c.reselecting = false
}

// --- helpers ----------------------------------------------------------------

func (c *Controller) view() View {
	in := ReadModeInputs(c.store)
	v := View{
		IsHost:     c.isHost,
		TableID:    c.canvas.TableID(),
		Inputs:     in,
		Snapshot:   LoadSnapshot(c.store),
		Center:     ResolveCenter(c.canvas),
		Zoom:       c.canvas.Zoom(),
		Rotation:   c.canvas.Rotation(),
		PanelState: "",
		RetainZoom: settings.Bool(c.store, settings.KeyRetainZoom, settings.DefaultRetainZoom),
	}
	if c.panel != nil {
		v.PanelState = c.panel.State()
	}
	for _, t := range c.canvas.SelectedTokens() {
		v.SelectionIDs = append(v.SelectionIDs, t.ID)
	}
	if st, ok := c.store.Get(settings.KeyHostCameraState); ok {
		if s, ok := st.(State); ok {
			v.HostState = &s
		}
	}
	return v
}

// trackedTokens resolves which tokens the loop follows: guests in classic
// cinematic follow the host's broadcast selection, everyone else follows
// their own.
func (c *Controller) trackedTokens(v View) []Token {
	if !c.isHost && ResolveMode(v.Inputs, c.isHost) == ModeCinematicClassic {
		return c.canvas.TokensByID(settings.Strings(c.store, settings.KeyHostSelectionIDs))
	}
	return c.canvas.SelectedTokens()
}

// recenter snaps the camera straight onto the current targets, bypassing
// the per-frame lerp.
func (c *Controller) recenter() {
	v := c.view()
	tracked := c.trackedTokens(v)
	if len(tracked) == 0 {
		return
	}
	c.smoother.Reset()
	centers := make([]common.Vec2, len(tracked))
	for i, t := range tracked {
		centers[i] = t.Center
	}
	target, ok := c.smoother.Target(centers)
	if !ok {
		return
	}
	c.squelch = true
	c.canvas.Pan(target.X, target.Y, 0, 0)
	c.squelch = false
}

func (c *Controller) applyHostState() {
	st, ok := c.store.Get(settings.KeyHostCameraState)
	if !ok {
		return
	}
	s, ok := st.(State)
	if !ok {
		return
	}
	c.applyState(s)
}

func (c *Controller) applyState(s State) {
	if s.OriginID != c.canvas.TableID() {
		return
	}
	c.squelch = true
	c.canvas.Pan(s.X, s.Y, s.Scale, 0)
	c.canvas.SetRotation(s.Rotation)
	c.squelch = false
}

// publishCameraState pushes the host's current camera through the shared
// store when it moved past the change-detection epsilons.
func (c *Controller) publishCameraState(reason string) {
	center := ResolveCenter(c.canvas)
	st := State{
		OriginID: c.canvas.TableID(),
		X:        center.X,
		Y:        center.Y,
		Scale:    c.canvas.Zoom(),
		Rotation: c.canvas.Rotation(),
		Reason:   reason,
	}
	if c.lastSent != nil && c.lastSent.Equal(st) {
		return
	}
	c.lastSent = &st
	c.write(settings.KeyHostCameraState, st)
}

// write is fire-and-forget: a failed broadcast is logged and local state
// stands; the next state-changing event carries current truth anyway.
func (c *Controller) write(key settings.Key, value any) {
	if err := c.store.Set(key, value); err != nil {
		log.Printf("[camera] write %s: %v", key, err)
	}
}

func (c *Controller) moving() bool {
	idle := time.Duration(settings.IdleMs(c.store)) * time.Millisecond
	return c.now().Sub(c.lastMove) < idle
}
