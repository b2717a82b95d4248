package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-presence-bot/internal/domain"
)

// Store adapts the repository free functions to the store interfaces consumed
// by the services package. This keeps services decoupled from the concrete
// repo package while reusing the existing functions. Store is stateless; the
// zero value is ready to use.
type Store struct{}

// UpdateStatus proxies repo.UpdateStatus.
func (Store) UpdateStatus(ctx context.Context, db *gorm.DB, userID, chatID int64, broadcast bool, name NameFields, status domain.Status, now time.Time) ([]int64, error) {
	return UpdateStatus(ctx, db, userID, chatID, broadcast, name, status, now)
}

// UpdateStatusByHook proxies repo.UpdateStatusByHook.
func (Store) UpdateStatusByHook(ctx context.Context, db *gorm.DB, hookID string, status domain.Status, now time.Time) (*HookUpdate, error) {
	return UpdateStatusByHook(ctx, db, hookID, status, now)
}

// GetAggregateStatus proxies repo.GetAggregateStatus.
func (Store) GetAggregateStatus(ctx context.Context, db *gorm.DB, userID, chatID int64, broadcast bool) ([]domain.ChatStatusReport, error) {
	return GetAggregateStatus(ctx, db, userID, chatID, broadcast)
}

// GetWebhookTokens proxies repo.GetWebhookTokens.
func (Store) GetWebhookTokens(ctx context.Context, db *gorm.DB, userID int64) (map[int64]string, error) {
	return GetWebhookTokens(ctx, db, userID)
}

// UpdateUserName proxies repo.UpdateUserName.
func (Store) UpdateUserName(ctx context.Context, db *gorm.DB, userID int64, column, value string) error {
	return UpdateUserName(ctx, db, userID, column, value)
}

// CountChatStatuses proxies repo.CountChatStatuses (pagination support).
func (Store) CountChatStatuses(ctx context.Context, db *gorm.DB, chatID int64) (int64, error) {
	return CountChatStatuses(ctx, db, chatID)
}

// ListChatStatusesPage proxies repo.ListChatStatusesPage (pagination support).
func (Store) ListChatStatusesPage(ctx context.Context, db *gorm.DB, chatID int64, offset, limit int) ([]domain.StatusView, error) {
	return ListChatStatusesPage(ctx, db, chatID, offset, limit)
}

// GetPinnedMessage proxies repo.GetPinnedMessage.
func (Store) GetPinnedMessage(ctx context.Context, db *gorm.DB, chatID int64, msgType domain.MessageType) (*domain.PinnedMessage, error) {
	return GetPinnedMessage(ctx, db, chatID, msgType)
}

// SetPinnedMessage proxies repo.SetPinnedMessage.
func (Store) SetPinnedMessage(ctx context.Context, db *gorm.DB, chatID int64, messageID int, msgType domain.MessageType, t time.Time) error {
	return SetPinnedMessage(ctx, db, chatID, messageID, msgType, t)
}
