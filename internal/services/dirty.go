// Chat dirty tracker.
//
// The tracker decouples the high-frequency status write path (every chat
// command and webhook hit) from the comparatively expensive refresh path
// (format plus a remote message edit), batching bursts of updates into a
// single refresh per polling interval.
//
// Each chat owns an independent entry guarded by its own mutex, so marking
// one chat never blocks operations on another. Entries carry a generation
// counter: ConsumeDirty snapshots the generation together with the flag, and
// Reset only clears the flag when the generation is unchanged. A mark that
// lands between snapshot and reset therefore keeps the chat dirty and forces
// another refresh on a later tick.
package services

import "sync"

// ChatMark is a snapshot of a dirty chat taken by ConsumeDirty. Gen must be
// passed back to Reset unchanged.
type ChatMark struct {
	ChatID int64
	Gen    uint64
}

// ChatDirtyTracker maps chat ids to dirty flags. The zero value is not
// usable; construct with NewChatDirtyTracker.
type ChatDirtyTracker struct {
	mu      sync.Mutex
	entries map[int64]*dirtyEntry
}

type dirtyEntry struct {
	mu    sync.Mutex
	dirty bool
	gen   uint64
}

// NewChatDirtyTracker returns an empty tracker.
func NewChatDirtyTracker() *ChatDirtyTracker {
	return &ChatDirtyTracker{entries: make(map[int64]*dirtyEntry)}
}

// entry returns the chat's entry, creating it on first use. The tracker-wide
// lock is held only for the map access, never while an entry is mutated.
func (t *ChatDirtyTracker) entry(chatID int64) *dirtyEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[chatID]
	if !ok {
		e = &dirtyEntry{}
		t.entries[chatID] = e
	}
	return e
}

// Mark flags the chat's pinned message as stale. Calling Mark repeatedly
// before the next ConsumeDirty/Reset cycle still results in a single refresh.
func (t *ChatDirtyTracker) Mark(chatID int64) {
	e := t.entry(chatID)
	e.mu.Lock()
	e.dirty = true
	e.gen++
	e.mu.Unlock()
}

// ConsumeDirty returns a snapshot of all currently dirty chats. Flags are
// left set; the caller resets each chat individually after its refresh
// succeeded, so a failed refresh is retried on the next tick.
func (t *ChatDirtyTracker) ConsumeDirty() []ChatMark {
	t.mu.Lock()
	snapshot := make(map[int64]*dirtyEntry, len(t.entries))
	for id, e := range t.entries {
		snapshot[id] = e
	}
	t.mu.Unlock()

	var marks []ChatMark
	for id, e := range snapshot {
		e.mu.Lock()
		if e.dirty {
			marks = append(marks, ChatMark{ChatID: id, Gen: e.gen})
		}
		e.mu.Unlock()
	}
	return marks
}

// Reset clears the chat's dirty flag, but only if no Mark arrived since the
// snapshot identified by gen was taken.
func (t *ChatDirtyTracker) Reset(chatID int64, gen uint64) {
	e := t.entry(chatID)
	e.mu.Lock()
	if e.gen == gen {
		e.dirty = false
	}
	e.mu.Unlock()
}
