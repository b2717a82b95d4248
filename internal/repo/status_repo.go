// Repository functions for users, chats, and status records.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Concurrency contract: every mutating function runs inside a transaction so
// a racing writer observes either none or all of its effects. Combined with
// SQLite's single-writer model this makes status writes linearizable per
// (user, chat) key: the last write to commit wins, and each writer's result
// reflects its own committed state.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-presence-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// NameFields carries the mutable display name parts captured from an
// incoming message. Empty fields leave the stored value untouched.
type NameFields struct {
	NickName  string
	FirstName string
	LastName  string
}

// HookUpdate is the outcome of a successful webhook-addressed status write.
type HookUpdate struct {
	ChatID   int64
	Previous domain.Status
	Time     time.Time
}

// UpdateStatus records a status change for userID at time now and returns the
// affected chat ids.
//
// With broadcast=false the single (userID, chatID) record is updated,
// creating the User, Chat, and StatusRecord rows as needed; the result is
// {chatID}. With broadcast=true every StatusRecord owned by the user is
// updated in place and all their chat ids are returned; no new records are
// created in that mode.
func UpdateStatus(ctx context.Context, db *gorm.DB, userID, chatID int64, broadcast bool, name NameFields, status domain.Status, now time.Time) ([]int64, error) {
	var affected []int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, userID, name); err != nil {
			return err
		}

		if broadcast {
			var records []domain.StatusRecord
			if err := tx.Where("user_id = ?", userID).Find(&records).Error; err != nil {
				return err
			}
			for i := range records {
				records[i].Status = status
				records[i].Time = now
				if err := tx.Save(&records[i]).Error; err != nil {
					return err
				}
				affected = append(affected, records[i].ChatID)
			}
			return nil
		}

		if err := ensureChat(tx, chatID); err != nil {
			return err
		}

		var rec domain.StatusRecord
		err := tx.Where("user_id = ? AND chat_id = ?", userID, chatID).First(&rec).Error
		switch {
		case err == nil:
			rec.Status = status
			rec.Time = now
			if err := tx.Save(&rec).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			rec = domain.StatusRecord{
				UserID: userID,
				ChatID: chatID,
				Status: status,
				Time:   now,
				HookID: uuid.NewString(),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		default:
			return err
		}

		affected = append(affected, chatID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

// UpdateStatusByHook looks up the unique StatusRecord identified by hookID
// and mutates its status and timestamp. It returns ErrNotFound when the hook
// id is not issued; callers treat that as a benign negative outcome, not a
// storage failure. The previous status is returned for confirmation text.
func UpdateStatusByHook(ctx context.Context, db *gorm.DB, hookID string, status domain.Status, now time.Time) (*HookUpdate, error) {
	var out *HookUpdate

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec domain.StatusRecord
		if err := tx.Where("hook_id = ?", hookID).First(&rec).Error; err != nil {
			return err
		}

		prev := rec.Status
		rec.Status = status
		rec.Time = now
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}

		out = &HookUpdate{ChatID: rec.ChatID, Previous: prev, Time: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAggregateStatus returns the in-scope status records with denormalized
// user display names, grouped per chat. With broadcast=true the scope is
// every chat the user participates in; otherwise the single named chat.
// Within each chat, records are ordered most-recently-changed first.
func GetAggregateStatus(ctx context.Context, db *gorm.DB, userID, chatID int64, broadcast bool) ([]domain.ChatStatusReport, error) {
	chatIDs := []int64{chatID}
	if broadcast {
		var err error
		chatIDs, err = listUserChatIDs(ctx, db, userID)
		if err != nil {
			return nil, err
		}
	}

	reports := make([]domain.ChatStatusReport, 0, len(chatIDs))
	for _, id := range chatIDs {
		views, err := listChatStatuses(ctx, db, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, domain.ChatStatusReport{ChatID: id, Statuses: views})
	}
	return reports, nil
}

// GetWebhookTokens returns every hook token owned by userID, keyed by chat id.
func GetWebhookTokens(ctx context.Context, db *gorm.DB, userID int64) (map[int64]string, error) {
	var records []domain.StatusRecord
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("chat_id asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(records))
	for _, r := range records {
		out[r.ChatID] = r.HookID
	}
	return out, nil
}

// UpdateUserName updates a single display name part for userID. The part is
// restricted to the known columns; unknown parts are rejected by the caller
// (service layer), so this function trusts its input.
func UpdateUserName(ctx context.Context, db *gorm.DB, userID int64, column, value string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountChatStatuses returns the number of status records within a chat.
func CountChatStatuses(ctx context.Context, db *gorm.DB, chatID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.StatusRecord{}).
		Where("chat_id = ?", chatID).
		Count(&total).Error
	return total, err
}

// ListChatStatusesPage returns a page of a chat's status views, ordered
// most-recently-changed first. Use CountChatStatuses for pagination metadata.
func ListChatStatusesPage(ctx context.Context, db *gorm.DB, chatID int64, offset, limit int) ([]domain.StatusView, error) {
	var rows []statusRow
	err := db.WithContext(ctx).
		Model(&domain.StatusRecord{}).
		Select("statuses.user_id, statuses.chat_id, statuses.status, statuses.time, users.nick_name, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = statuses.user_id").
		Where("statuses.chat_id = ?", chatID).
		Order("statuses.time desc").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return viewsFromRows(rows), nil
}

// ---- internals ----

// statusRow is the scan target for the joined status+user projection.
type statusRow struct {
	UserID    int64
	ChatID    int64
	Status    domain.Status
	Time      time.Time
	NickName  string
	FirstName string
	LastName  string
}

func viewsFromRows(rows []statusRow) []domain.StatusView {
	out := make([]domain.StatusView, 0, len(rows))
	for _, r := range rows {
		name := r.NickName
		if r.FirstName != "" || r.LastName != "" {
			name = r.FirstName
			if r.LastName != "" {
				if name != "" {
					name += " "
				}
				name += r.LastName
			}
		}
		if name == "" {
			name = "unknown"
		}
		out = append(out, domain.StatusView{
			UserID:      r.UserID,
			ChatID:      r.ChatID,
			Status:      r.Status,
			Time:        r.Time,
			DisplayName: name,
		})
	}
	return out
}

func listChatStatuses(ctx context.Context, db *gorm.DB, chatID int64) ([]domain.StatusView, error) {
	var rows []statusRow
	err := db.WithContext(ctx).
		Model(&domain.StatusRecord{}).
		Select("statuses.user_id, statuses.chat_id, statuses.status, statuses.time, users.nick_name, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = statuses.user_id").
		Where("statuses.chat_id = ?", chatID).
		Order("statuses.time desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return viewsFromRows(rows), nil
}

func listUserChatIDs(ctx context.Context, db *gorm.DB, userID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&domain.StatusRecord{}).
		Where("user_id = ?", userID).
		Order("chat_id asc").
		Pluck("chat_id", &ids).Error
	return ids, err
}

// ensureUser creates the user row on first contact, or refreshes any name
// parts the platform supplied on this interaction.
func ensureUser(tx *gorm.DB, userID int64, name NameFields) error {
	var user domain.User
	err := tx.Where("id = ?", userID).First(&user).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		user = domain.User{
			ID:        userID,
			NickName:  name.NickName,
			FirstName: name.FirstName,
			LastName:  name.LastName,
		}
		return tx.Create(&user).Error
	case err != nil:
		return err
	}

	updates := map[string]any{}
	if name.NickName != "" && name.NickName != user.NickName {
		updates["nick_name"] = name.NickName
	}
	if name.FirstName != "" && name.FirstName != user.FirstName {
		updates["first_name"] = name.FirstName
	}
	if name.LastName != "" && name.LastName != user.LastName {
		updates["last_name"] = name.LastName
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&user).Updates(updates).Error
}

func ensureChat(tx *gorm.DB, chatID int64) error {
	var chat domain.Chat
	err := tx.Where("id = ?", chatID).First(&chat).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&domain.Chat{ID: chatID}).Error
	}
	return err
}
