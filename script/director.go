package script

import (
	"log"
	"path/filepath"
	"time"
)

// Director owns shot playback for the host. Shots step once per frame;
// an edited shot file reloads mid-playback via the watcher.
type Director struct {
	target  Target
	watcher *Watcher

	shot  *Shot
	name  string
	start time.Time
	now   func() time.Time
}

// NewDirector creates a Director. If watchDir is non-empty, shot files in
// it hot-reload during playback.
func NewDirector(target Target, watchDir string) *Director {
	d := &Director{target: target, now: time.Now}
	if watchDir != "" {
		w, err := NewWatcher(watchDir)
		if err != nil {
			log.Printf("[script] watch %s: %v", watchDir, err)
		} else {
			d.watcher = w
		}
	}
	return d
}

// Play loads and starts the named shot; an empty name plays the default.
func (d *Director) Play(name string) error {
	if name == "" {
		name = DefaultShot
	}
	src, err := LoadShot(name)
	if err != nil {
		return err
	}
	shot, err := Compile(src)
	if err != nil {
		return err
	}
	d.shot = shot
	d.name = name
	d.start = d.now()
	log.Printf("[script] playing shot %s", name)
	return nil
}

func (d *Director) Stop() {
	d.shot = nil
	d.name = ""
}

func (d *Director) Playing() bool {
	return d != nil && d.shot != nil
}

// Update steps the current shot and applies pending hot reloads.
func (d *Director) Update() {
	if d == nil {
		return
	}
	d.drainWatcher()
	if d.shot == nil {
		return
	}
	done, err := d.shot.Step(d.target, d.now().Sub(d.start))
	if err != nil {
		log.Printf("[script] shot %s: %v", d.name, err)
	}
	if done {
		log.Printf("[script] shot %s finished", d.name)
		d.Stop()
	}
}

func (d *Director) drainWatcher() {
	if d.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-d.watcher.Events:
			if !ok {
				d.watcher = nil
				return
			}
			if d.name != "" && filepath.Base(path) == filepath.Base(d.name) {
				if err := d.Play(d.name); err != nil {
					log.Printf("[script] reload %s: %v", path, err)
				}
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				d.watcher = nil
				return
			}
			log.Printf("[script] watch error: %v", err)
		default:
			return
		}
	}
}

// Close releases the watcher.
func (d *Director) Close() {
	if d != nil && d.watcher != nil {
		_ = d.watcher.Close()
	}
}
