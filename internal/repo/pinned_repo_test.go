package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-presence-bot/internal/domain"
)

func TestGetPinnedMessage_NotFound(t *testing.T) {
	db := newRepoDB(t)
	pm, err := GetPinnedMessage(context.Background(), db, 100, domain.MessageTypeStatus)
	if err != ErrNotFound || pm != nil {
		t.Fatalf("expected ErrNotFound, got pm=%v err=%v", pm, err)
	}
}

func TestSetPinnedMessage_CreateThenUpdate(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	t1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := SetPinnedMessage(ctx, db, 100, 555, domain.MessageTypeStatus, t1); err != nil {
		t.Fatalf("SetPinnedMessage create: %v", err)
	}

	pm, err := GetPinnedMessage(ctx, db, 100, domain.MessageTypeStatus)
	if err != nil {
		t.Fatalf("GetPinnedMessage: %v", err)
	}
	if pm.MessageID != 555 || !pm.Time.Equal(t1) {
		t.Fatalf("unexpected pinned message: %+v", pm)
	}

	t2 := t1.Add(5 * time.Minute)
	if err := SetPinnedMessage(ctx, db, 100, 556, domain.MessageTypeStatus, t2); err != nil {
		t.Fatalf("SetPinnedMessage update: %v", err)
	}

	pm, err = GetPinnedMessage(ctx, db, 100, domain.MessageTypeStatus)
	if err != nil {
		t.Fatalf("GetPinnedMessage after update: %v", err)
	}
	if pm.MessageID != 556 || !pm.Time.Equal(t2) {
		t.Fatalf("record not replaced in place: %+v", pm)
	}

	var count int64
	db.Model(&domain.PinnedMessage{}).Where("chat_id = 100").Count(&count)
	if count != 1 {
		t.Fatalf("expected one record per (chat, type), got %d", count)
	}
}

func TestSetPinnedMessage_TypesAreIndependent(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := SetPinnedMessage(ctx, db, 100, 1, domain.MessageTypeStatus, now); err != nil {
		t.Fatalf("status slot: %v", err)
	}
	if err := SetPinnedMessage(ctx, db, 100, 2, domain.MessageTypePoll, now); err != nil {
		t.Fatalf("poll slot: %v", err)
	}

	st, err := GetPinnedMessage(ctx, db, 100, domain.MessageTypeStatus)
	if err != nil || st.MessageID != 1 {
		t.Fatalf("status slot = %+v err=%v", st, err)
	}
	poll, err := GetPinnedMessage(ctx, db, 100, domain.MessageTypePoll)
	if err != nil || poll.MessageID != 2 {
		t.Fatalf("poll slot = %+v err=%v", poll, err)
	}
}
