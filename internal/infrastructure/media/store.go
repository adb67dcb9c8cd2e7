package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
)

const base64Marker = ";base64,"

// ErrBadPayload signals a payload without a decodable base64 segment.
var ErrBadPayload = errors.New("media: malformed base64 payload")

// Store writes uploaded payloads beneath a base directory and hands back the
// browser-facing path under /uploads/. Names are prefixed with a millisecond
// timestamp, so two uploads of the same file on different ticks never
// collide; a true same-millisecond collision is last-write-wins.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates the uploads directory if needed.
func NewStore(dir string, opts ...func(*Store)) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create uploads dir: %w", err)
	}
	s := &Store{dir: dir, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// WithClock overrides the timestamp source used for filenames.
func WithClock(now func() time.Time) func(*Store) {
	return func(s *Store) { s.now = now }
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string { return s.dir }

// SaveUpload decodes a data-URL payload and writes it as
// <millis>_<name>.<ext>, the extension derived from the declared MIME type.
// The returned kind folds audio types into voice and unrecognized MIME types
// into the generic file kind.
func (s *Store) SaveUpload(data, filename, mimeType string) (string, chat.Kind, error) {
	raw, err := decodePayload(data)
	if err != nil {
		return "", "", err
	}

	name := fmt.Sprintf("%d_%s.%s", s.now().UnixMilli(), filepath.Base(filename), extensionFor(mimeType))
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", "", fmt.Errorf("media: write upload: %w", err)
	}

	return "/uploads/" + name, Classify(mimeType), nil
}

// SaveAvatar writes an avatar payload as <username>_avatar_<millis>.<ext>,
// the extension taken from the data-URL prefix.
func (s *Store) SaveAvatar(username, data string) (string, error) {
	raw, err := decodePayload(data)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_avatar_%d.%s", username, s.now().UnixMilli(), avatarExtension(data))
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("media: write avatar: %w", err)
	}

	return "/uploads/" + name, nil
}

// Classify maps a declared MIME type onto a message kind. Audio becomes
// voice; anything outside the known primary categories is a generic file.
func Classify(mimeType string) chat.Kind {
	primary, _, _ := strings.Cut(mimeType, "/")
	switch primary {
	case "audio":
		return chat.KindVoice
	case "image":
		return chat.KindImage
	case "video":
		return chat.KindVideo
	default:
		return chat.KindFile
	}
}

func decodePayload(data string) ([]byte, error) {
	idx := strings.Index(data, base64Marker)
	if idx < 0 {
		return nil, ErrBadPayload
	}
	raw, err := base64.StdEncoding.DecodeString(data[idx+len(base64Marker):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return raw, nil
}

func extensionFor(mimeType string) string {
	_, sub, ok := strings.Cut(mimeType, "/")
	if !ok || sub == "" {
		return "dat"
	}
	if sub == "jpeg" {
		return "jpg"
	}
	return sub
}

func avatarExtension(data string) string {
	rest, ok := strings.CutPrefix(data, "data:image/")
	if !ok {
		return "jpg"
	}
	sub, _, found := strings.Cut(rest, ";")
	if !found || sub == "" {
		return "jpg"
	}
	if sub == "jpeg" {
		return "jpg"
	}
	return sub
}
