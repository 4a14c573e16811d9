// Package notify queues short-lived user-facing banners. Notifications are
// informational only and never block: the worst failure a user sees from
// the camera module is a warning banner.
package notify

import (
	"sync"
	"time"
)

// Level classifies a notification's severity.
type Level int

const (
	Info Level = iota
	Warn
	Error
)

// Audience restricts which clients should display a notification. Messages
// often come in host/guest variants with distinct wording.
type Audience int

const (
	All Audience = iota
	HostOnly
	GuestsOnly
)

// Message is a single banner.
type Message struct {
	Level    Level
	Audience Audience
	Text     string
	Deadline time.Time
}

// Sink receives notifications. The client's banner renderer implements it;
// tests use a recording stub.
type Sink interface {
	Notify(level Level, audience Audience, text string)
}

// DefaultDuration is how long a banner stays on screen.
const DefaultDuration = 4 * time.Second

// Queue is a Sink that retains messages until they expire. It filters by
// the local client's role so host-only and guest-only variants land on the
// right screens.
type Queue struct {
	mu     sync.Mutex
	isHost bool
	now    func() time.Time
	items  []Message
}

// NewQueue creates a queue for a client with the given role.
func NewQueue(isHost bool) *Queue {
	return &Queue{isHost: isHost, now: time.Now}
}

// Notify implements Sink.
func (q *Queue) Notify(level Level, audience Audience, text string) {
	if q == nil {
		return
	}
	if audience == HostOnly && !q.isHost {
		return
	}
	if audience == GuestsOnly && q.isHost {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Message{
		Level:    level,
		Audience: audience,
		Text:     text,
		Deadline: q.now().Add(DefaultDuration),
	})
}

// Active returns the banners that have not expired, pruning the rest.
func (q *Queue) Active() []Message {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	kept := q.items[:0]
	for _, m := range q.items {
		if m.Deadline.After(now) {
			kept = append(kept, m)
		}
	}
	q.items = kept
	out := make([]Message, len(kept))
	copy(out, kept)
	return out
}
