package port

import (
	"context"
	"time"

	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the chat domain.
type ChatRepository interface {
	// SaveMessage stores the message and returns a copy with the
	// store-assigned id and timestamp filled in.
	SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error)

	// History returns every non-deleted message in the room in ascending
	// timestamp order, ids breaking ties.
	History(ctx context.Context, room string) ([]chat.Message, error)

	// ReadCursor returns the room's cursor. A room with no cursor row yields
	// a zero cursor, not an error.
	ReadCursor(ctx context.Context, room string) (chat.ReadCursor, error)

	// UpdateReadCursor advances the cursor only when messageID is strictly
	// greater than the stored value. The row is created on first update.
	UpdateReadCursor(ctx context.Context, room string, messageID int64, reader string) error

	// PurgeDeleted hard-deletes soft-deleted messages older than cutoff and
	// reports how many rows were removed.
	PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error)
}
