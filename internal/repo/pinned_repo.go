// Repository functions for pinned message bookkeeping.
//
// A chat holds at most one pinned message per MessageType, enforced by a
// unique index on (chat_id, message_type). SetPinnedMessage upserts within a
// transaction so the invariant holds under concurrent refreshes.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-presence-bot/internal/domain"
)

// GetPinnedMessage fetches the pinned message record for (chatID, msgType).
// It returns ErrNotFound when the chat has no pinned message of that type,
// which callers treat as "create one", not as a failure.
func GetPinnedMessage(ctx context.Context, db *gorm.DB, chatID int64, msgType domain.MessageType) (*domain.PinnedMessage, error) {
	var pm domain.PinnedMessage
	err := db.WithContext(ctx).
		Where("chat_id = ? AND message_type = ?", chatID, msgType).
		First(&pm).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// SetPinnedMessage records messageID as the current pinned message of
// (chatID, msgType), creating the Chat row and the record as needed. An
// existing record is updated in place so the (chat, type) invariant is never
// violated.
func SetPinnedMessage(ctx context.Context, db *gorm.DB, chatID int64, messageID int, msgType domain.MessageType, t time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureChat(tx, chatID); err != nil {
			return err
		}

		var pm domain.PinnedMessage
		err := tx.Where("chat_id = ? AND message_type = ?", chatID, msgType).First(&pm).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			pm = domain.PinnedMessage{
				ChatID:      chatID,
				MessageID:   messageID,
				MessageType: msgType,
				Time:        t,
			}
			return tx.Create(&pm).Error
		case err != nil:
			return err
		}

		pm.MessageID = messageID
		pm.Time = t
		return tx.Save(&pm).Error
	})
}
