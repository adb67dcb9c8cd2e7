package chat

import (
	"errors"
	"strings"
	"time"
)

// Kind classifies message content. Uploads are classified by the media store
// from the declared MIME type; everything a client types is KindText.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindVoice Kind = "voice"
	KindFile  Kind = "file"
)

// Domain-level errors for message construction
var (
	ErrIncompleteAddress = errors.New("chat: sender, recipient and room are required")
	ErrEmptyMessage      = errors.New("chat: empty message (no text or media)")
)

// Message is an immutable log entry in a room. ID and Timestamp are assigned
// by the persistence layer at insert time and identify display order; the
// ID doubles as the read-cursor key. IsRead is derived per viewer when
// history is loaded and is never stored.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Room      string    `json:"room"`
	Text      string    `json:"text"`
	MediaURL  string    `json:"url,omitempty"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Edited    bool      `json:"edited"`
	Deleted   bool      `json:"deleted"`
	IsRead    bool      `json:"is_read"`
}

// NewMessage validates and normalizes a message before it is handed to the
// persistence layer. A message must carry text or a media reference.
func NewMessage(m Message) (*Message, error) {
	if m.Sender == "" || m.Recipient == "" || m.Room == "" {
		return nil, ErrIncompleteAddress
	}

	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" && m.MediaURL == "" {
		return nil, ErrEmptyMessage
	}

	if m.Kind == "" {
		m.Kind = KindText
	}

	return &m, nil
}
