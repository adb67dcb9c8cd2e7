package chat

import (
	"errors"
	"testing"
)

func TestNewMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      Message
		wantErr error
	}{
		{
			name:    "missing sender",
			in:      Message{Recipient: "Fedya", Room: "Fedya-Yahyo", Text: "hi"},
			wantErr: ErrIncompleteAddress,
		},
		{
			name:    "missing recipient",
			in:      Message{Sender: "Yahyo", Room: "Fedya-Yahyo", Text: "hi"},
			wantErr: ErrIncompleteAddress,
		},
		{
			name:    "missing room",
			in:      Message{Sender: "Yahyo", Recipient: "Fedya", Text: "hi"},
			wantErr: ErrIncompleteAddress,
		},
		{
			name:    "whitespace only text without media",
			in:      Message{Sender: "Yahyo", Recipient: "Fedya", Room: "Fedya-Yahyo", Text: "   \t\n"},
			wantErr: ErrEmptyMessage,
		},
		{
			name: "valid text message",
			in:   Message{Sender: "Yahyo", Recipient: "Fedya", Room: "Fedya-Yahyo", Text: "hi"},
		},
		{
			name: "media without text",
			in:   Message{Sender: "Yahyo", Recipient: "Fedya", Room: "Fedya-Yahyo", MediaURL: "/uploads/1_a.jpg", Kind: KindImage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewMessage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMessage() unexpected error: %v", err)
			}
			if msg == nil {
				t.Fatal("NewMessage() returned nil message without error")
			}
		})
	}
}

func TestNewMessageNormalizes(t *testing.T) {
	msg, err := NewMessage(Message{Sender: "Yahyo", Recipient: "Fedya", Room: "Fedya-Yahyo", Text: "  hello  "})
	if err != nil {
		t.Fatalf("NewMessage() error: %v", err)
	}
	if msg.Text != "hello" {
		t.Errorf("Text = %q, want trimmed %q", msg.Text, "hello")
	}
	if msg.Kind != KindText {
		t.Errorf("Kind = %q, want default %q", msg.Kind, KindText)
	}
}

func TestNewMessageKeepsExplicitKind(t *testing.T) {
	msg, err := NewMessage(Message{Sender: "Yahyo", Recipient: "Fedya", Room: "Fedya-Yahyo", Text: "clip.webm", MediaURL: "/uploads/1_clip.webm", Kind: KindVoice})
	if err != nil {
		t.Fatalf("NewMessage() error: %v", err)
	}
	if msg.Kind != KindVoice {
		t.Errorf("Kind = %q, want %q", msg.Kind, KindVoice)
	}
}
