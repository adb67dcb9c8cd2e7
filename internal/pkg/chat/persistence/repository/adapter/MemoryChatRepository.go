package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
)

// MemoryChatRepository is an in-process implementation of the repository
// port with the same contract as PgChatRepository: ascending history order,
// soft-delete exclusion and a forward-only read cursor. It backs tests and
// local tooling that should not need a database.
type MemoryChatRepository struct {
	mu       sync.Mutex
	nextID   int64
	messages []chat.Message
	cursors  map[string]chat.ReadCursor
	now      func() time.Time
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		nextID:  1,
		cursors: make(map[string]chat.ReadCursor),
		now:     time.Now,
	}
}

func (r *MemoryChatRepository) SaveMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.ID = r.nextID
	r.nextID++
	m.Timestamp = r.now()
	r.messages = append(r.messages, m)
	return m, nil
}

func (r *MemoryChatRepository) History(_ context.Context, room string) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var msgs []chat.Message
	for _, m := range r.messages {
		if m.Room == room && !m.Deleted {
			msgs = append(msgs, m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func (r *MemoryChatRepository) ReadCursor(_ context.Context, room string) (chat.ReadCursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cursor, ok := r.cursors[room]; ok {
		return cursor, nil
	}
	return chat.ReadCursor{Room: room}, nil
}

func (r *MemoryChatRepository) UpdateReadCursor(_ context.Context, room string, messageID int64, reader string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cursor, ok := r.cursors[room]; ok && cursor.LastReadID >= messageID {
		return nil
	}
	r.cursors[room] = chat.ReadCursor{Room: room, LastReadID: messageID, LastReadBy: reader}
	return nil
}

func (r *MemoryChatRepository) PurgeDeleted(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.messages[:0]
	var purged int64
	for _, m := range r.messages {
		if m.Deleted && m.Timestamp.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, m)
	}
	r.messages = kept
	return purged, nil
}

// MarkDeleted flips the soft-delete flag on a stored message. The event
// surface never exercises deletion; this exists so history filtering and the
// retention sweep can be driven in tests.
func (r *MemoryChatRepository) MarkDeleted(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages[i].Deleted = true
			return true
		}
	}
	return false
}
