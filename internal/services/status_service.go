// StatusService coordinates status mutations: it persists the change through
// the store, then marks every affected chat dirty so the synchronizer
// refreshes the pinned report on its next tick. Reads (reports, webhook
// tokens, paginated listings) pass straight through to the store.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-presence-bot/internal/domain"
	"github.com/tbourn/go-presence-bot/internal/repo"
)

// StatusStore defines the persistence contract required by StatusService.
type StatusStore interface {
	// UpdateStatus records a status change and returns the affected chat ids.
	UpdateStatus(ctx context.Context, db *gorm.DB, userID, chatID int64, broadcast bool, name repo.NameFields, status domain.Status, now time.Time) ([]int64, error)

	// UpdateStatusByHook mutates the record addressed by hookID.
	UpdateStatusByHook(ctx context.Context, db *gorm.DB, hookID string, status domain.Status, now time.Time) (*repo.HookUpdate, error)

	// GetAggregateStatus returns in-scope status views grouped per chat.
	GetAggregateStatus(ctx context.Context, db *gorm.DB, userID, chatID int64, broadcast bool) ([]domain.ChatStatusReport, error)

	// GetWebhookTokens returns the user's hook tokens keyed by chat id.
	GetWebhookTokens(ctx context.Context, db *gorm.DB, userID int64) (map[int64]string, error)

	// UpdateUserName updates one display name column for the user.
	UpdateUserName(ctx context.Context, db *gorm.DB, userID int64, column, value string) error

	// CountChatStatuses returns the number of status records in a chat.
	CountChatStatuses(ctx context.Context, db *gorm.DB, chatID int64) (int64, error)

	// ListChatStatusesPage returns a page of a chat's status views.
	ListChatStatusesPage(ctx context.Context, db *gorm.DB, chatID int64, offset, limit int) ([]domain.StatusView, error)
}

// NamePart selects a mutable display name field for rename commands.
type NamePart int

const (
	NamePartNick NamePart = iota
	NamePartFirst
	NamePartLast
)

// HookResult is the outcome of a webhook-addressed status change, carrying
// what the confirmation text needs.
type HookResult struct {
	ChatID   int64
	Previous domain.Status
	New      domain.Status
	Time     time.Time
}

// StatusService provides status-changing operations and reads over the
// presence store, and feeds the dirty tracker on every successful write.
type StatusService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the status store used by this service.
	Repo StatusStore
	// Dirty receives a mark for every chat affected by a write.
	Dirty *ChatDirtyTracker

	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// NewStatusService constructs a StatusService bound to the given store and
// dirty tracker.
func NewStatusService(db *gorm.DB, store StatusStore, dirty *ChatDirtyTracker) *StatusService {
	return &StatusService{DB: db, Repo: store, Dirty: dirty, Now: time.Now}
}

// SetStatus records a status change for the user. With broadcast=true (a
// change issued from a private context) every chat the user belongs to is
// updated; otherwise only the named chat. All affected chats are marked
// dirty. The affected chat ids are returned.
func (s *StatusService) SetStatus(ctx context.Context, userID, chatID int64, broadcast bool, name repo.NameFields, status domain.Status) ([]int64, error) {
	ids, err := s.Repo.UpdateStatus(ctx, s.DB, userID, chatID, broadcast, name, status, s.Now())
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.Dirty.Mark(id)
	}
	return ids, nil
}

// SetStatusByHook applies a webhook-addressed status change. The token must
// be one of came, left, stay; an unknown token or an unissued hook id yields
// ErrUnknownStatusToken / ErrStatusNotFound respectively, both of which the
// endpoint maps to a not-found response. The dirty tracker is only touched
// on success.
func (s *StatusService) SetStatusByHook(ctx context.Context, hookID, token string) (*HookResult, error) {
	status, ok := domain.ParseStatusToken(token)
	if !ok {
		return nil, ErrUnknownStatusToken
	}

	upd, err := s.Repo.UpdateStatusByHook(ctx, s.DB, hookID, status, s.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, err
	}

	s.Dirty.Mark(upd.ChatID)
	return &HookResult{
		ChatID:   upd.ChatID,
		Previous: upd.Previous,
		New:      status,
		Time:     upd.Time,
	}, nil
}

// Report returns the aggregate status views in scope: every chat the user
// belongs to when broadcast is set, otherwise the single named chat.
func (s *StatusService) Report(ctx context.Context, userID, chatID int64, broadcast bool) ([]domain.ChatStatusReport, error) {
	return s.Repo.GetAggregateStatus(ctx, s.DB, userID, chatID, broadcast)
}

// WebhookTokens returns every hook token the user owns, keyed by chat id.
func (s *StatusService) WebhookTokens(ctx context.Context, userID int64) (map[int64]string, error) {
	return s.Repo.GetWebhookTokens(ctx, s.DB, userID)
}

// SetName updates one display name part for the user.
func (s *StatusService) SetName(ctx context.Context, userID int64, part NamePart, value string) error {
	var column string
	switch part {
	case NamePartNick:
		column = "nick_name"
	case NamePartFirst:
		column = "first_name"
	case NamePartLast:
		column = "last_name"
	default:
		return ErrUnknownNamePart
	}

	if err := s.Repo.UpdateUserName(ctx, s.DB, userID, column, value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// StatusesPage returns a page of a chat's status views plus the total count,
// applying defaults for invalid page/pageSize.
func (s *StatusService) StatusesPage(ctx context.Context, chatID int64, page, pageSize int) ([]domain.StatusView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountChatStatuses(ctx, s.DB, chatID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.StatusView{}, 0, nil
	}

	items, err := s.Repo.ListChatStatusesPage(ctx, s.DB, chatID, offset, pageSize)
	return items, total, err
}
