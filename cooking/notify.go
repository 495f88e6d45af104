package cooking

import (
	"context"
	"sync"
	"time"
)

// Notifier delivers messages to the cook.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Notice is a message raised during a session.
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// NoticeBoard keeps notices until they are drained by the page.
type NoticeBoard struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (b *NoticeBoard) Notify(_ context.Context, message string) error {
	b.mu.Lock()
	b.notices = append(b.notices, Notice{Message: message, At: time.Now()})
	b.mu.Unlock()
	return nil
}

// Drain returns and clears queued notices.
func (b *NoticeBoard) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
