package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
	repository "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
)

const defaultHistoryTTL = 5 * time.Minute

// LoadHistoryUseCase returns a room's backlog annotated per viewer. The
// is_read flag answers "has the other party read my outgoing message": it is
// true only for the viewer's own messages at or below the room's cursor.
//
// Any persistence failure degrades to an empty backlog instead of blocking
// the room join — availability over completeness.
type LoadHistoryUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional cache for raw rows; cursor reads always hit the store
	TTL   time.Duration
}

func NewLoadHistoryUseCase(repo repository.ChatRepository, cache cacheport.Cache) *LoadHistoryUseCase {
	return &LoadHistoryUseCase{Repo: repo, Cache: cache, TTL: defaultHistoryTTL}
}

func (uc *LoadHistoryUseCase) Execute(ctx context.Context, room, viewer string) []chat.Message {
	msgs, err := uc.roomHistory(ctx, room)
	if err != nil {
		slog.Warn("history fetch failed, serving empty backlog", "room", room, "error", err)
		return nil
	}

	cursor, err := uc.Repo.ReadCursor(ctx, room)
	if err != nil {
		slog.Warn("read cursor fetch failed, serving empty backlog", "room", room, "error", err)
		return nil
	}

	for i := range msgs {
		msgs[i].IsRead = msgs[i].Sender == viewer && msgs[i].ID <= cursor.LastReadID
	}
	return msgs
}

func (uc *LoadHistoryUseCase) roomHistory(ctx context.Context, room string) ([]chat.Message, error) {
	if uc.Cache != nil {
		raw, err := uc.Cache.Get(ctx, historyCacheKey(room))
		switch {
		case err == nil:
			var msgs []chat.Message
			if json.Unmarshal([]byte(raw), &msgs) == nil {
				return msgs, nil
			}
		case !errors.Is(err, cacheport.ErrMiss):
			slog.Debug("history cache read failed", "room", room, "error", err)
		}
	}

	msgs, err := uc.Repo.History(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(msgs); err == nil {
			if err := uc.Cache.Set(ctx, historyCacheKey(room), string(raw), uc.TTL); err != nil {
				slog.Debug("history cache write failed", "room", room, "error", err)
			}
		}
	}
	return msgs, nil
}
