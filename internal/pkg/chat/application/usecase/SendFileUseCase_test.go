package usecase

import (
	"context"
	"errors"
	"testing"

	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/adapter"
)

// fakeMedia returns a canned result or error without touching the disk.
type fakeMedia struct {
	url  string
	kind chat.Kind
	err  error

	calls int
}

func (m *fakeMedia) SaveUpload(data, filename, mimeType string) (string, chat.Kind, error) {
	m.calls++
	if m.err != nil {
		return "", "", m.err
	}
	return m.url, m.kind, nil
}

func TestSendFileStoresMediaThenMessage(t *testing.T) {
	repo := adapter.NewMemoryChatRepository()
	cache := newFakeCache()
	media := &fakeMedia{url: "/uploads/1_voice.webm", kind: chat.KindVoice}
	uc := NewSendFileUseCase(repo, media, cache)

	msg, err := uc.Execute(context.Background(), SendFileInput{
		Sender:    "Yahyo",
		Recipient: "Fedya",
		Room:      "Fedya-Yahyo",
		Filename:  "voice.webm",
		MimeType:  "audio/webm",
		Data:      "data:audio/webm;base64,aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if msg.MediaURL != "/uploads/1_voice.webm" {
		t.Errorf("MediaURL = %q", msg.MediaURL)
	}
	if msg.Kind != chat.KindVoice {
		t.Errorf("Kind = %q, want %q", msg.Kind, chat.KindVoice)
	}
	if msg.Text != "voice.webm" {
		t.Errorf("Text = %q, want the original filename", msg.Text)
	}

	history, err := repo.History(context.Background(), "Fedya-Yahyo")
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("repository holds %d messages, want 1", len(history))
	}
	if got := cache.deletedKeys(); len(got) != 1 {
		t.Errorf("cache invalidations = %v, want one", got)
	}
}

func TestSendFileMediaFailureSkipsPersistence(t *testing.T) {
	repo := adapter.NewMemoryChatRepository()
	media := &fakeMedia{err: errStoreDown}
	uc := NewSendFileUseCase(repo, media, nil)

	_, err := uc.Execute(context.Background(), SendFileInput{
		Sender:    "Yahyo",
		Recipient: "Fedya",
		Room:      "Fedya-Yahyo",
		Filename:  "pic.png",
		MimeType:  "image/png",
		Data:      "data:image/png;base64,aGVsbG8=",
	})
	if !errors.Is(err, ErrMediaStore) {
		t.Fatalf("Execute() error = %v, want ErrMediaStore", err)
	}

	history, _ := repo.History(context.Background(), "Fedya-Yahyo")
	if len(history) != 0 {
		t.Error("a message was persisted even though the upload failed")
	}
}

func TestSendFilePersistenceFailure(t *testing.T) {
	media := &fakeMedia{url: "/uploads/1_pic.png", kind: chat.KindImage}
	uc := NewSendFileUseCase(failingRepo{}, media, nil)

	_, err := uc.Execute(context.Background(), SendFileInput{
		Sender:    "Yahyo",
		Recipient: "Fedya",
		Room:      "Fedya-Yahyo",
		Filename:  "pic.png",
		MimeType:  "image/png",
		Data:      "data:image/png;base64,aGVsbG8=",
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Execute() error = %v, want ErrPersistence", err)
	}
	if media.calls != 1 {
		t.Errorf("media store called %d times, want 1", media.calls)
	}
}
