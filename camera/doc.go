// Package camera arbitrates who drives the shared viewport and keeps it
// centered on tracked tokens.
//
// Every client runs the same state machine locally. The effective authority
// mode is recomputed from four underlying settings on every query (never
// cached): a per-user local-follow toggle, the world-shared forced-follow
// flag, the world-shared cinematic flag, and the cinematic sub-mode. While
// any cinematic mode is active the host's camera state is broadcast through
// the settings store and mirrored by guests; guests' own pan, zoom, and
// selection input is intercepted and reverted.
//
// The transition core is a pure reducer: each trigger becomes an Event,
// Reduce turns it into a list of side-effect Commands, and the Controller
// executes those against the canvas runtime, the settings store, and the
// notification sink. Nothing in this package talks to a rendering backend
// directly, so the whole machine is testable headless.
package camera
