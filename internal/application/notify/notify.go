package notify

import (
	"context"
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notification struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Queue buffers transient notifications until the next response drains them. Older
// entries are dropped once the queue holds max items.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	max   int
	now   func() time.Time
}

func NewQueue(max int) *Queue {
	if max <= 0 {
		max = 20
	}
	return &Queue{max: max, now: time.Now}
}

func (q *Queue) Success(_ context.Context, message string) { q.push(KindSuccess, message) }

func (q *Queue) Error(_ context.Context, message string) { q.push(KindError, message) }

func (q *Queue) push(kind Kind, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Notification{Kind: kind, Message: message, At: q.now()})
	if over := len(q.items) - q.max; over > 0 {
		q.items = q.items[over:]
	}
}

// Drain returns pending notifications oldest first and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}
