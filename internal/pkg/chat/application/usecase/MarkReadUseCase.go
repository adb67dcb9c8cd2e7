package usecase

import (
	"context"
	"fmt"

	repository "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
)

// MarkReadUseCase advances a room's read cursor. The repository applies the
// update conditionally, so a stale acknowledgement can never move the cursor
// backwards.
type MarkReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, room string, messageID int64, reader string) error {
	if room == "" || messageID <= 0 {
		return nil
	}
	if err := uc.Repo.UpdateReadCursor(ctx, room, messageID, reader); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
