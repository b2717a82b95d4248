// Background driver loop.
//
// One goroutine ticks on a fixed interval and performs two passes: refresh
// the pinned message of every dirty chat, then drain and execute due message
// removals. Failures inside one chat's refresh or one message's deletion are
// isolated; the batch always continues. Context cancellation is a clean
// shutdown, never logged as a failure. A panic escaping a tick is logged
// critical and stops the loop; a process-level supervisor is expected to
// restart the service.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTickInterval is the driver cadence when none is configured.
const DefaultTickInterval = 5 * time.Second

// Driver periodically runs the pinned-message synchronizer and the removal
// scheduler until its context is cancelled.
type Driver struct {
	Tracker   *ChatDirtyTracker
	Removals  *RemovalScheduler
	Sync      *PinnedSynchronizer
	Messenger Messenger
	Interval  time.Duration
	Log       zerolog.Logger
}

// Run blocks until ctx is cancelled, ticking every Interval. It returns nil
// on cancellation and an error only when a tick panicked.
func (d *Driver) Run(ctx context.Context) (err error) {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	d.Log.Info().Dur("interval", interval).Msg("background driver starting")
	defer d.Log.Info().Msg("background driver stopping")

	defer func() {
		if r := recover(); r != nil {
			d.Log.Error().Interface("panic", r).Msg("background driver crashed")
			err = fmt.Errorf("background driver panic: %v", r)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick performs one refresh-then-drain pass.
func (d *Driver) tick(ctx context.Context) {
	for _, mark := range d.Tracker.ConsumeDirty() {
		if ctx.Err() != nil {
			return
		}
		if err := d.Sync.RefreshOne(ctx, mark.ChatID); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// Leave the chat dirty; the next tick retries.
			d.Log.Error().Err(err).Int64("chat_id", mark.ChatID).Msg("pinned message refresh failed")
			continue
		}
		d.Tracker.Reset(mark.ChatID, mark.Gen)
	}

	for _, item := range d.Removals.DrainDue(ctx) {
		if ctx.Err() != nil {
			return
		}
		if err := d.Messenger.Delete(ctx, item.ChatID, item.MessageID); err != nil {
			// Dropped, never retried: a once-due removal stays due forever
			// and retrying would leak memory.
			d.Log.Warn().Err(err).
				Int64("chat_id", item.ChatID).
				Int("message_id", item.MessageID).
				Msg("scheduled message removal failed")
			messageRemovals.WithLabelValues("error").Inc()
			continue
		}
		messageRemovals.WithLabelValues("deleted").Inc()
	}
}
