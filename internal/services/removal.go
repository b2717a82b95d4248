// Pending-removal scheduler.
//
// Chat replies that should not linger (status confirmations, /stats reposts)
// are queued here and deleted by the background driver once due. The queue is
// a plain in-memory list guarded by a one-slot semaphore; volume is a handful
// of items, so a single lock over the whole list is sufficient.
//
// DrainDue acquires the lock with a bounded wait and returns an empty result
// on timeout rather than blocking the driver tick: a once-due removal stays
// due forever, so it will simply be picked up on a later tick.
package services

import (
	"context"
	"time"
)

// PendingRemoval identifies a message the driver should delete.
type PendingRemoval struct {
	ChatID    int64
	MessageID int
}

type pendingItem struct {
	chatID    int64
	messageID int
	due       time.Time
}

// RemovalScheduler queues messages for deferred deletion. Construct with
// NewRemovalScheduler.
type RemovalScheduler struct {
	sem   chan struct{}
	items []pendingItem

	now       func() time.Time
	drainWait time.Duration
}

// NewRemovalScheduler returns an empty scheduler with a 1s drain lock wait.
func NewRemovalScheduler() *RemovalScheduler {
	return &RemovalScheduler{
		sem:       make(chan struct{}, 1),
		now:       time.Now,
		drainWait: time.Second,
	}
}

// ScheduleRemoval queues the message for deletion once delay has elapsed.
// A cancelled context drops the request silently.
func (s *RemovalScheduler) ScheduleRemoval(ctx context.Context, chatID int64, messageID int, delay time.Duration) {
	s.ScheduleRemovalAt(ctx, chatID, messageID, s.now().Add(delay))
}

// ScheduleRemovalAt queues the message for deletion at or after the given
// absolute time.
func (s *RemovalScheduler) ScheduleRemovalAt(ctx context.Context, chatID int64, messageID int, due time.Time) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	s.items = append(s.items, pendingItem{chatID: chatID, messageID: messageID, due: due})
	<-s.sem
}

// DrainDue atomically selects and removes all entries whose deadline has
// passed, returning them for the caller to act on. If the lock cannot be
// acquired within the bounded wait, it returns an empty result.
func (s *RemovalScheduler) DrainDue(ctx context.Context) []PendingRemoval {
	timer := time.NewTimer(s.drainWait)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
	defer func() { <-s.sem }()

	now := s.now()
	var due []PendingRemoval
	remaining := s.items[:0]
	for _, item := range s.items {
		if !item.due.After(now) {
			due = append(due, PendingRemoval{ChatID: item.chatID, MessageID: item.messageID})
			continue
		}
		remaining = append(remaining, item)
	}
	s.items = remaining
	return due
}
