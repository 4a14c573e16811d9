package settings

import "sync"

// Memory is an in-process Store. It backs tests directly and acts as the
// local cache behind the relay-synced store.
type Memory struct {
	mu     sync.RWMutex
	values map[Key]any
	subs   map[Key]map[int]ChangeFunc
	nextID int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[Key]any),
		subs:   make(map[Key]map[int]ChangeFunc),
	}
}

// Get returns the stored value for key.
func (m *Memory) Get(key Key) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores value and notifies subscribers of key.
func (m *Memory) Set(key Key, value any) error {
	m.mu.Lock()
	m.values[key] = value
	fns := make([]ChangeFunc, 0, len(m.subs[key]))
	for _, fn := range m.subs[key] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	// Callbacks run outside the lock so a handler may read or write the
	// store without deadlocking.
	for _, fn := range fns {
		fn(key, value)
	}
	return nil
}

// OnChange registers fn for key and returns an unsubscribe func.
func (m *Memory) OnChange(key Key, fn ChangeFunc) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[key] == nil {
		m.subs[key] = make(map[int]ChangeFunc)
	}
	m.nextID++
	id := m.nextID
	m.subs[key][id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[key], id)
	}
}
