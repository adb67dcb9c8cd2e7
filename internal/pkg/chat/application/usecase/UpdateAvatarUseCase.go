package usecase

import (
	"fmt"
)

// AvatarStore is the slice of the media layer the avatar path depends on.
type AvatarStore interface {
	SaveAvatar(username, data string) (url string, err error)
}

// AvatarRegistry is the identity-store surface profile updates touch.
type AvatarRegistry interface {
	SetAvatar(username, url string) bool
	Avatars() map[string]string
}

// UpdateAvatarUseCase writes a new avatar file and swaps the user's avatar
// reference in the identity store. The swap is in-memory only: avatars do
// not survive a process restart.
type UpdateAvatarUseCase struct {
	Media AvatarStore
	Users AvatarRegistry
}

func NewUpdateAvatarUseCase(media AvatarStore, users AvatarRegistry) *UpdateAvatarUseCase {
	return &UpdateAvatarUseCase{Media: media, Users: users}
}

// Execute returns the new avatar URL plus the full refreshed avatar map for
// broadcasting.
func (uc *UpdateAvatarUseCase) Execute(username, data string) (string, map[string]string, error) {
	url, err := uc.Media.SaveAvatar(username, data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMediaStore, err)
	}
	if !uc.Users.SetAvatar(username, url) {
		return "", nil, fmt.Errorf("unknown user %q", username)
	}
	return url, uc.Users.Avatars(), nil
}
