package services

import (
	"sync"
	"testing"
)

func findMark(marks []ChatMark, chatID int64) (ChatMark, bool) {
	for _, m := range marks {
		if m.ChatID == chatID {
			return m, true
		}
	}
	return ChatMark{}, false
}

func TestDirtyTracker_MarkIsIdempotent(t *testing.T) {
	tr := NewChatDirtyTracker()

	for i := 0; i < 5; i++ {
		tr.Mark(100)
	}

	marks := tr.ConsumeDirty()
	if len(marks) != 1 || marks[0].ChatID != 100 {
		t.Fatalf("ConsumeDirty = %+v, want exactly one mark for chat 100", marks)
	}

	tr.Reset(100, marks[0].Gen)
	if left := tr.ConsumeDirty(); len(left) != 0 {
		t.Fatalf("chat still dirty after reset: %+v", left)
	}
}

func TestDirtyTracker_ConsumeLeavesFlagSet(t *testing.T) {
	tr := NewChatDirtyTracker()
	tr.Mark(100)

	if first := tr.ConsumeDirty(); len(first) != 1 {
		t.Fatalf("first consume = %+v", first)
	}
	// No Reset: the chat must still be reported (failed refresh retry).
	if second := tr.ConsumeDirty(); len(second) != 1 {
		t.Fatalf("second consume = %+v, want chat still dirty", second)
	}
}

func TestDirtyTracker_NoLostWakeup(t *testing.T) {
	tr := NewChatDirtyTracker()
	tr.Mark(100)

	marks := tr.ConsumeDirty()
	m, ok := findMark(marks, 100)
	if !ok {
		t.Fatalf("chat 100 not in snapshot: %+v", marks)
	}

	// A mark lands while the refresh is in flight.
	tr.Mark(100)
	tr.Reset(100, m.Gen)

	after := tr.ConsumeDirty()
	if _, ok := findMark(after, 100); !ok {
		t.Fatalf("mark between snapshot and reset was lost: %+v", after)
	}
}

func TestDirtyTracker_ChatsAreIndependent(t *testing.T) {
	tr := NewChatDirtyTracker()
	tr.Mark(100)
	tr.Mark(200)

	marks := tr.ConsumeDirty()
	if len(marks) != 2 {
		t.Fatalf("ConsumeDirty = %+v, want two chats", marks)
	}

	m100, _ := findMark(marks, 100)
	tr.Reset(100, m100.Gen)

	left := tr.ConsumeDirty()
	if len(left) != 1 || left[0].ChatID != 200 {
		t.Fatalf("expected only chat 200 dirty, got %+v", left)
	}
}

func TestDirtyTracker_ConcurrentMarks(t *testing.T) {
	tr := NewChatDirtyTracker()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tr.Mark(chat)
				tr.ConsumeDirty()
			}
		}(int64(100 + g%4))
	}
	wg.Wait()

	marks := tr.ConsumeDirty()
	if len(marks) != 4 {
		t.Fatalf("expected 4 dirty chats, got %+v", marks)
	}
}
