package usecase

import (
	"context"
	"fmt"

	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
	repository "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
)

// MediaStore is the slice of the media layer the file path depends on.
type MediaStore interface {
	SaveUpload(data, filename, mimeType string) (url string, kind chat.Kind, err error)
}

// SendFileInput carries an uploaded payload destined for a room.
type SendFileInput struct {
	Sender    string
	Recipient string
	Room      string
	Filename  string
	MimeType  string
	Data      string // base64 data-URL payload
}

// SendFileUseCase writes the payload to the media store first and persists
// the message second, so a stored message never references a file that was
// not written.
type SendFileUseCase struct {
	Repo  repository.ChatRepository
	Media MediaStore
	Cache cacheport.Cache
}

func NewSendFileUseCase(repo repository.ChatRepository, media MediaStore, cache cacheport.Cache) *SendFileUseCase {
	return &SendFileUseCase{Repo: repo, Media: media, Cache: cache}
}

func (uc *SendFileUseCase) Execute(ctx context.Context, in SendFileInput) (*chat.Message, error) {
	url, kind, err := uc.Media.SaveUpload(in.Data, in.Filename, in.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaStore, err)
	}

	msg, err := chat.NewMessage(chat.Message{
		Sender:    in.Sender,
		Recipient: in.Recipient,
		Room:      in.Room,
		Text:      in.Filename,
		MediaURL:  url,
		Kind:      kind,
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
