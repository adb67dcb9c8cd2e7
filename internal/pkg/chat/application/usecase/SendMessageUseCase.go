package usecase

import (
	"context"
	"fmt"
	"log/slog"

	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
	repository "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to append a text message.
type SendMessageInput struct {
	Sender    string
	Recipient string
	Room      string
	Text      string
}

// SendMessageUseCase persists a text message. Persist-then-publish: the
// caller only fans the message out after Execute returns it with an id, so
// no client ever observes a message absent from history.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional; invalidated on append
}

func NewSendMessageUseCase(repo repository.ChatRepository, cache cacheport.Cache) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Cache: cache}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(chat.Message{
		Sender:    in.Sender,
		Recipient: in.Recipient,
		Room:      in.Room,
		Text:      in.Text,
		Kind:      chat.KindText,
	})
	if err != nil {
		return nil, err
	}

	saved, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	invalidateHistory(ctx, uc.Cache, in.Room)
	return &saved, nil
}

func invalidateHistory(ctx context.Context, cache cacheport.Cache, room string) {
	if cache == nil {
		return
	}
	if _, err := cache.Del(ctx, historyCacheKey(room)); err != nil {
		slog.Debug("history cache invalidation failed", "room", room, "error", err)
	}
}
