package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgChatRepository persists messages and per-room read cursors in Postgres.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

// InitSchema provisions the messages and read_receipts tables. A failure here
// leaves the store unusable, so callers should treat it as fatal.
func (r *PgChatRepository) InitSchema(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			sender VARCHAR(50) NOT NULL,
			recipient VARCHAR(50) NOT NULL,
			room VARCHAR(100) NOT NULL,
			text TEXT,
			url TEXT,
			type VARCHAR(50) DEFAULT 'text',
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			edited BOOLEAN DEFAULT FALSE,
			deleted BOOLEAN DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_ts ON messages (room, timestamp)`,
		`CREATE TABLE IF NOT EXISTS read_receipts (
			room VARCHAR(100) PRIMARY KEY,
			last_read_message_id BIGINT DEFAULT 0,
			last_read_by_user VARCHAR(50) NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("chat schema: %w", err)
		}
	}
	return nil
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgChatRepository: nil pool")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender, recipient, room, text, url, type)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING id, timestamp
	`, m.Sender, m.Recipient, m.Room, m.Text, m.MediaURL, string(m.Kind)).Scan(&m.ID, &m.Timestamp)
	if err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PgChatRepository) History(ctx context.Context, room string) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender, recipient, COALESCE(text, ''), COALESCE(url, ''), type, timestamp, edited, deleted
		FROM messages
		WHERE room = $1 AND deleted = FALSE
		ORDER BY timestamp ASC, id ASC
	`, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var (
			m    chat.Message
			kind string
		)
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Text, &m.MediaURL, &kind, &m.Timestamp, &m.Edited, &m.Deleted); err != nil {
			return nil, err
		}
		m.Room = room
		m.Kind = chat.Kind(kind)
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgChatRepository) ReadCursor(ctx context.Context, room string) (chat.ReadCursor, error) {
	if r == nil || r.pool == nil {
		return chat.ReadCursor{}, errors.New("PgChatRepository: nil pool")
	}
	cursor := chat.ReadCursor{Room: room}
	err := r.pool.QueryRow(ctx, `
		SELECT last_read_message_id, last_read_by_user
		FROM read_receipts
		WHERE room = $1
	`, room).Scan(&cursor.LastReadID, &cursor.LastReadBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.ReadCursor{Room: room}, nil
	}
	if err != nil {
		return chat.ReadCursor{}, err
	}
	return cursor, nil
}

// UpdateReadCursor races between two concurrent readers are settled by the
// greater-than condition rather than a lock: the write only applies when it
// moves the cursor forward.
func (r *PgChatRepository) UpdateReadCursor(ctx context.Context, room string, messageID int64, reader string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO read_receipts (room, last_read_message_id, last_read_by_user)
		VALUES ($1, $2, $3)
		ON CONFLICT (room)
		DO UPDATE SET last_read_message_id = EXCLUDED.last_read_message_id,
		              last_read_by_user = EXCLUDED.last_read_by_user
		WHERE read_receipts.last_read_message_id < EXCLUDED.last_read_message_id
	`, room, messageID, reader)
	return err
}

func (r *PgChatRepository) PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM messages
		WHERE deleted = TRUE AND timestamp < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
