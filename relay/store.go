package relay

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/settings"
)

// Store is a settings.Store whose world-scope writes are published through
// the relay and whose reads come from a local cache kept current by a
// receive loop. User and session keys never leave the process.
//
// Writes are fire-and-forget: a publish failure is logged and the local
// value stands. The next state-changing event re-broadcasts current truth,
// which is all the consistency the camera module needs.
type Store struct {
	local settings.Store
	conn  *Conn
	done  chan struct{}
}

// NewStore wraps local with relay synchronization over conn and starts the
// receive loop. conn may be nil for an offline (single-client) session.
func NewStore(local settings.Store, conn *Conn) *Store {
	s := &Store{local: local, conn: conn, done: make(chan struct{})}
	if conn != nil {
		go s.receive()
	}
	return s
}

// Get returns the locally cached value for key.
func (s *Store) Get(key settings.Key) (any, bool) {
	return s.local.Get(key)
}

// Set stores the value locally and, for world-scope keys, publishes it.
func (s *Store) Set(key settings.Key, value any) error {
	if err := s.local.Set(key, value); err != nil {
		return err
	}
	if s.conn == nil || settings.ScopeOf(key) != settings.ScopeWorld {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("relay: encode %s: %w", key, err)
	}
	if err := s.conn.Publish(string(key), raw); err != nil {
		// Fire-and-forget: log, keep local state, self-heal on the next
		// write.
		log.Printf("[relay] publish %s: %v", key, err)
	}
	return nil
}

// OnChange registers a callback for key changes, local or remote.
func (s *Store) OnChange(key settings.Key, fn settings.ChangeFunc) func() {
	return s.local.OnChange(key, fn)
}

// Close stops the receive loop and closes the connection.
func (s *Store) Close() error {
	close(s.done)
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Store) receive() {
	for {
		msg, err := s.conn.Receive()
		if err != nil {
			select {
			case <-s.done:
			default:
				log.Printf("[relay] receive loop stopped: %v", err)
			}
			return
		}
		if msg.Type != TypeSet {
			continue
		}
		key := settings.Key(msg.Key)
		if settings.ScopeOf(key) != settings.ScopeWorld {
			// Remote writers cannot touch user or session scope.
			continue
		}
		value, err := decodeValue(key, msg.Value)
		if err != nil {
			log.Printf("[relay] decode %s: %v", key, err)
			continue
		}
		if err := s.local.Set(key, value); err != nil {
			log.Printf("[relay] apply %s: %v", key, err)
		}
	}
}

// decodeValue parses a wire value into the concrete type the rest of the
// module stores under that key.
func decodeValue(key settings.Key, raw json.RawMessage) (any, error) {
	switch key {
	case settings.KeyHostCameraState:
		var st camera.State
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, err
		}
		return st, nil
	case settings.KeyHostSelectionIDs:
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, err
		}
		return ids, nil
	case settings.KeyForceFollow, settings.KeyCinematicActive, settings.KeyCinematicCameraMode:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
