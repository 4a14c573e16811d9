package main

import (
	"log"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/notify"
	"github.com/milk9111/tokencam/script"
)

// Director gates scripted shot playback behind the camera authority rules:
// only the host may play shots, and only while cinematic camera mode runs.
// The shot pans the host viewport; the controller's cinematic watcher
// broadcasts the result to guests like any other host camera motion.
type Director struct {
	game  *Game
	inner *script.Director
}

func NewDirector(g *Game, shotsDir string) *Director {
	return &Director{game: g, inner: script.NewDirector(g.viewport, shotsDir)}
}

// Toggle starts the default shot, or stops the one playing.
func (d *Director) Toggle() {
	if d.inner.Playing() {
		d.inner.Stop()
		return
	}
	if !d.game.isHost {
		d.game.banners.Notify(notify.Warn, notify.All, "only the GM can play camera shots")
		return
	}
	if d.game.controller.Mode() != camera.ModeCinematicCamera {
		d.game.banners.Notify(notify.Warn, notify.HostOnly, "camera shots need cinematic camera mode")
		return
	}
	if err := d.inner.Play(""); err != nil {
		log.Printf("[shots] play: %v", err)
		d.game.banners.Notify(notify.Error, notify.HostOnly, "camera shot failed to load")
	}
}

// Update steps playback, stopping if the mode no longer permits it.
func (d *Director) Update() {
	if d.inner.Playing() && d.game.controller.Mode() != camera.ModeCinematicCamera {
		d.inner.Stop()
	}
	d.inner.Update()
}

func (d *Director) Close() {
	d.inner.Close()
}
