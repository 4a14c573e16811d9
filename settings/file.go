package settings

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// File is a Store whose user-scope keys persist to a yaml file. World and
// session keys stay in memory only. The file is watched so edits made while
// the client is running are picked up and fanned out to subscribers.
type File struct {
	*Memory

	path    string
	watcher *fsnotify.Watcher
	closeCh chan struct{}
	once    sync.Once

	saveMu   sync.Mutex
	lastSave time.Time
}

// OpenFile loads path (if it exists) into a new store and starts watching
// it for external edits.
func OpenFile(path string) (*File, error) {
	f := &File{
		Memory:  NewMemory(),
		path:    path,
		closeCh: make(chan struct{}),
	}
	if err := f.load(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings: watch %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("settings: watch %s: %w", dir, err)
	}
	f.watcher = w
	go f.run()
	return f, nil
}

// Set stores the value and, for user-scope keys, rewrites the yaml file.
func (f *File) Set(key Key, value any) error {
	if err := f.Memory.Set(key, value); err != nil {
		return err
	}
	if ScopeOf(key) != ScopeUser {
		return nil
	}
	return f.save()
}

// Close stops the file watcher.
func (f *File) Close() error {
	var err error
	f.once.Do(func() {
		close(f.closeCh)
		if f.watcher != nil {
			err = f.watcher.Close()
		}
	})
	return err
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", f.path, err)
	}
	raw := make(map[Key]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("settings: parse %s: %w", f.path, err)
	}
	for k, v := range raw {
		if ScopeOf(k) != ScopeUser {
			continue
		}
		_ = f.Memory.Set(k, v)
	}
	return nil
}

func (f *File) save() error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	out := make(map[Key]any)
	for _, k := range []Key{
		KeyLocalEnabled, KeyRetainZoom, KeyZoomScale, KeyResponsiveness,
		KeyMaxSpeedPxPerSec, KeyIdleMs, KeyResumeOnRelease, KeyClientSnapshot,
	} {
		if v, ok := f.Memory.Get(k); ok {
			out[k] = v
		}
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("settings: encode %s: %w", f.path, err)
	}
	f.lastSave = time.Now()
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", f.path, err)
	}
	return nil
}

func (f *File) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now

			f.saveMu.Lock()
			own := now.Sub(f.lastSave) < 200*time.Millisecond
			f.saveMu.Unlock()
			if own {
				continue
			}
			if err := f.load(); err != nil {
				log.Printf("[settings] reload: %v", err)
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[settings] watcher: %v", err)
		case <-f.closeCh:
			return
		}
	}
}
