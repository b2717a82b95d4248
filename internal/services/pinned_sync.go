// Pinned-message synchronizer.
//
// Per chat, the pinned status report moves through a small state machine:
// Clean -> (Mark) -> Dirty -> (refresh tick) -> Refreshing -> Clean on
// success, or back to Dirty on failure (the flag is left set and the next
// tick retries). The periodic path edits the existing pinned message in
// place, which avoids the re-pin notification spam of unpin/pin cycles; the
// user-triggered anchor path (a fresh /stats repost) unpins the old message
// and pins the new one.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-presence-bot/internal/domain"
)

// Messenger is the chat transport consumed by the engine. Implementations
// live in the bot package; all calls are remote and may fail transiently.
type Messenger interface {
	// SendText posts a message and returns its platform message id.
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	// EditText rewrites an existing message in place.
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	// Pin pins a message; silent suppresses the member notification.
	Pin(ctx context.Context, chatID int64, messageID int, silent bool) error
	// Unpin unpins a message.
	Unpin(ctx context.Context, chatID int64, messageID int) error
	// Delete removes a message.
	Delete(ctx context.Context, chatID int64, messageID int) error
	// ChatTitle resolves the chat's display title and invite link.
	ChatTitle(ctx context.Context, chatID int64) (title, inviteLink string, err error)
}

// StatusFormatter renders one chat's status views into the pinned report
// body. Implemented by the presenter package.
type StatusFormatter interface {
	Status(title string, views []domain.StatusView) string
}

// PinnedStore is the persistence contract required by the synchronizer.
type PinnedStore interface {
	GetAggregateStatus(ctx context.Context, db *gorm.DB, userID, chatID int64, broadcast bool) ([]domain.ChatStatusReport, error)
	GetPinnedMessage(ctx context.Context, db *gorm.DB, chatID int64, msgType domain.MessageType) (*domain.PinnedMessage, error)
	SetPinnedMessage(ctx context.Context, db *gorm.DB, chatID int64, messageID int, msgType domain.MessageType, t time.Time) error
}

// PinnedSynchronizer keeps each chat's pinned status message in line with the
// stored status records.
type PinnedSynchronizer struct {
	DB        *gorm.DB
	Store     PinnedStore
	Messenger Messenger
	Format    StatusFormatter
	Log       zerolog.Logger

	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// NewPinnedSynchronizer constructs a synchronizer with the real clock.
func NewPinnedSynchronizer(db *gorm.DB, store PinnedStore, m Messenger, f StatusFormatter, log zerolog.Logger) *PinnedSynchronizer {
	return &PinnedSynchronizer{DB: db, Store: store, Messenger: m, Format: f, Log: log, Now: time.Now}
}

// RefreshOne recomputes the aggregate status text for chatID and updates (or
// creates) the chat's pinned status message. The caller resets the dirty
// flag only when RefreshOne returns nil; any error leaves the chat dirty for
// the next tick.
func (p *PinnedSynchronizer) RefreshOne(ctx context.Context, chatID int64) error {
	reports, err := p.Store.GetAggregateStatus(ctx, p.DB, 0, chatID, false)
	if err != nil {
		pinnedRefreshes.WithLabelValues("error").Inc()
		return err
	}
	var views []domain.StatusView
	if len(reports) > 0 {
		views = reports[0].Statuses
	}

	title, _, err := p.Messenger.ChatTitle(ctx, chatID)
	if err != nil {
		// The report is still useful without a resolvable title.
		p.Log.Warn().Err(err).Int64("chat_id", chatID).Msg("chat title lookup failed")
		title = "not found"
	}
	text := p.Format.Status(title, views)

	pm, err := p.Store.GetPinnedMessage(ctx, p.DB, chatID, domain.MessageTypeStatus)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return p.createPinned(ctx, chatID, text)
	case err != nil:
		pinnedRefreshes.WithLabelValues("error").Inc()
		return err
	}

	if err := p.Messenger.EditText(ctx, chatID, pm.MessageID, text); err != nil {
		// The recorded message is gone or not editable; fall back to a
		// fresh pinned message. The orphaned record is overwritten below.
		p.Log.Warn().Err(err).
			Int64("chat_id", chatID).
			Int("message_id", pm.MessageID).
			Msg("pinned message edit failed, recreating")
		return p.createPinned(ctx, chatID, text)
	}

	pinnedRefreshes.WithLabelValues("edited").Inc()
	return nil
}

// createPinned posts a new status message, pins it silently, and records it
// as the chat's current pinned message.
func (p *PinnedSynchronizer) createPinned(ctx context.Context, chatID int64, text string) error {
	messageID, err := p.Messenger.SendText(ctx, chatID, text)
	if err != nil {
		pinnedRefreshes.WithLabelValues("error").Inc()
		return err
	}

	if err := p.Messenger.Pin(ctx, chatID, messageID, true); err != nil {
		// The message exists and can still be edited next tick; record it
		// even when pinning failed.
		p.Log.Warn().Err(err).
			Int64("chat_id", chatID).
			Int("message_id", messageID).
			Msg("pin failed")
	}

	if err := p.Store.SetPinnedMessage(ctx, p.DB, chatID, messageID, domain.MessageTypeStatus, p.Now()); err != nil {
		pinnedRefreshes.WithLabelValues("error").Inc()
		return err
	}

	pinnedRefreshes.WithLabelValues("created").Inc()
	return nil
}

// Anchor makes messageID the chat's pinned message of the given type. The
// previous pinned message, if any, is unpinned first (tolerating "already
// unpinned" failures). This is the user-triggered re-anchor path used right
// after a fresh /stats repost; the periodic refresh path and this one
// converge on a single PinnedMessage record per (chat, type).
func (p *PinnedSynchronizer) Anchor(ctx context.Context, chatID int64, messageID int, msgType domain.MessageType) error {
	prev, err := p.Store.GetPinnedMessage(ctx, p.DB, chatID, msgType)
	switch {
	case err == nil:
		if err := p.Messenger.Unpin(ctx, chatID, prev.MessageID); err != nil {
			p.Log.Warn().Err(err).
				Int64("chat_id", chatID).
				Int("message_id", prev.MessageID).
				Msg("unpin of previous message failed")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First pin for this chat and type.
	default:
		return err
	}

	if err := p.Messenger.Pin(ctx, chatID, messageID, true); err != nil {
		p.Log.Warn().Err(err).
			Int64("chat_id", chatID).
			Int("message_id", messageID).
			Msg("pin failed")
		return nil
	}

	return p.Store.SetPinnedMessage(ctx, p.DB, chatID, messageID, msgType, p.Now())
}
