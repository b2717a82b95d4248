// Persistence models, mapped with GORM. Identity for users and chats is the
// numeric id assigned by the messaging platform; rows are created lazily on
// the first status-changing interaction and never deleted.
package domain

import "time"

// User is a tracked member identified by their external (platform) user id.
// Display name parts are mutable via the set_*name commands.
type User struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement:false"`
	NickName  string    `json:"nick_name"  gorm:"type:varchar(64);not null;default:''"`
	FirstName string    `json:"first_name" gorm:"type:varchar(64);not null;default:''"`
	LastName  string    `json:"last_name"  gorm:"type:varchar(64);not null;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Chat is a conversation the bot participates in, identified by the external
// chat id.
type Chat struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// StatusRecord is the core mutable fact: the latest presence status of one
// user in one chat. Exactly one record exists per (user, chat) pair; only the
// latest status and its timestamp are retained.
//
// Fields:
//   - HookID: opaque token issued once at creation, unique across all
//     records, used by the webhook endpoint to address this record without
//     authentication.
//   - Time: timestamp of the most recent successful status write.
type StatusRecord struct {
	ID     uint      `json:"-"       gorm:"primaryKey"`
	UserID int64     `json:"user_id" gorm:"not null;uniqueIndex:ux_status_user_chat,priority:1;index"`
	ChatID int64     `json:"chat_id" gorm:"not null;uniqueIndex:ux_status_user_chat,priority:2;index"`
	Status Status    `json:"status"  gorm:"not null;default:0"`
	Time   time.Time `json:"time"`
	HookID string    `json:"-" gorm:"type:char(36);not null;uniqueIndex:ux_status_hook"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for StatusRecord.
func (StatusRecord) TableName() string { return "statuses" }

// PinnedMessage records which platform message currently serves as a chat's
// pinned slot for a given message type. At most one row exists per
// (chat, type); the row is replaced in place on every refresh.
type PinnedMessage struct {
	ID          uint        `json:"-"            gorm:"primaryKey"`
	ChatID      int64       `json:"chat_id"      gorm:"not null;uniqueIndex:ux_pinned_chat_type,priority:1"`
	MessageID   int         `json:"message_id"   gorm:"not null"`
	MessageType MessageType `json:"message_type" gorm:"not null;default:0;uniqueIndex:ux_pinned_chat_type,priority:2"`
	Time        time.Time   `json:"time"`

	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PinnedMessage.
func (PinnedMessage) TableName() string { return "pinned_messages" }

// StatusView is a StatusRecord augmented with the owning user's current
// display name, as consumed by the presenter. DisplayName prefers
// "First Last" and falls back to the nickname.
type StatusView struct {
	UserID      int64     `json:"user_id"`
	ChatID      int64     `json:"chat_id"`
	Status      Status    `json:"status"`
	Time        time.Time `json:"time"`
	DisplayName string    `json:"display_name"`
}

// ChatStatusReport groups the status views of a single chat, ordered
// most-recently-changed first.
type ChatStatusReport struct {
	ChatID   int64        `json:"chat_id"`
	Statuses []StatusView `json:"statuses"`
}
