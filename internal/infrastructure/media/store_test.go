package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
)

// fixedClock returns a clock pinned to the given millisecond timestamp.
func fixedClock(millis int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(millis) }
}

func newTestStore(t *testing.T, millis int64) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), WithClock(fixedClock(millis)))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return s
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t, 1700000000000)

	// "aGVsbG8=" decodes to "hello".
	url, kind, err := s.SaveUpload("data:image/jpeg;base64,aGVsbG8=", "photo", "image/jpeg")
	if err != nil {
		t.Fatalf("SaveUpload() error: %v", err)
	}
	if url != "/uploads/1700000000000_photo.jpg" {
		t.Errorf("url = %q, want /uploads/1700000000000_photo.jpg", url)
	}
	if kind != chat.KindImage {
		t.Errorf("kind = %q, want %q", kind, chat.KindImage)
	}

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "1700000000000_photo.jpg"))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(raw) != "hello" {
		t.Errorf("stored contents = %q, want decoded payload", raw)
	}
}

func TestSaveUploadNamesIncludeTick(t *testing.T) {
	var millis int64 = 1700000000000
	s, err := NewStore(t.TempDir(), WithClock(func() time.Time {
		millis++
		return time.UnixMilli(millis)
	}))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	first, _, err := s.SaveUpload("data:image/png;base64,aGVsbG8=", "pic", "image/png")
	if err != nil {
		t.Fatalf("SaveUpload() error: %v", err)
	}
	second, _, err := s.SaveUpload("data:image/png;base64,aGVsbG8=", "pic", "image/png")
	if err != nil {
		t.Fatalf("SaveUpload() error: %v", err)
	}
	if first == second {
		t.Errorf("two uploads on different ticks produced the same name %q", first)
	}
}

func TestSaveUploadStripsDirectoryFromName(t *testing.T) {
	s := newTestStore(t, 42)

	url, _, err := s.SaveUpload("data:application/pdf;base64,aGVsbG8=", "../../etc/passwd", "application/pdf")
	if err != nil {
		t.Fatalf("SaveUpload() error: %v", err)
	}
	if url != "/uploads/42_passwd.pdf" {
		t.Errorf("url = %q, path segments must be stripped", url)
	}
}

func TestSaveUploadUnknownMime(t *testing.T) {
	s := newTestStore(t, 42)

	url, kind, err := s.SaveUpload("data:;base64,aGVsbG8=", "blob", "")
	if err != nil {
		t.Fatalf("SaveUpload() error: %v", err)
	}
	if url != "/uploads/42_blob.dat" {
		t.Errorf("url = %q, want .dat fallback extension", url)
	}
	if kind != chat.KindFile {
		t.Errorf("kind = %q, want %q", kind, chat.KindFile)
	}
}

func TestSaveUploadBadPayload(t *testing.T) {
	s := newTestStore(t, 42)

	tests := []struct {
		name string
		data string
	}{
		{name: "no base64 marker", data: "data:image/png,rawbytes"},
		{name: "invalid base64", data: "data:image/png;base64,@@@@"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.SaveUpload(tt.data, "pic", "image/png"); !errors.Is(err, ErrBadPayload) {
				t.Errorf("SaveUpload() error = %v, want ErrBadPayload", err)
			}
		})
	}
}

func TestSaveAvatar(t *testing.T) {
	s := newTestStore(t, 1700000000001)

	url, err := s.SaveAvatar("Boyka", "data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("SaveAvatar() error: %v", err)
	}
	if url != "/uploads/Boyka_avatar_1700000000001.png" {
		t.Errorf("url = %q, want /uploads/Boyka_avatar_1700000000001.png", url)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "Boyka_avatar_1700000000001.png")); err != nil {
		t.Errorf("avatar file not written: %v", err)
	}
}

func TestSaveAvatarExtensionFallsBackToJpg(t *testing.T) {
	s := newTestStore(t, 7)

	url, err := s.SaveAvatar("Fedya", "data:application/octet-stream;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("SaveAvatar() error: %v", err)
	}
	if url != "/uploads/Fedya_avatar_7.jpg" {
		t.Errorf("url = %q, want .jpg fallback", url)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want chat.Kind
	}{
		{mime: "image/png", want: chat.KindImage},
		{mime: "image/jpeg", want: chat.KindImage},
		{mime: "video/mp4", want: chat.KindVideo},
		{mime: "audio/webm", want: chat.KindVoice},
		{mime: "audio/mpeg", want: chat.KindVoice},
		{mime: "application/pdf", want: chat.KindFile},
		{mime: "text/plain", want: chat.KindFile},
		{mime: "", want: chat.KindFile},
	}
	for _, tt := range tests {
		if got := Classify(tt.mime); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}
