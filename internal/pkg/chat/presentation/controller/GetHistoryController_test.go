package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/adapter"
)

func newHistoryEngine(repo *adapter.MemoryChatRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	ctl := NewGetHistoryController(repo, nil)
	engine.GET("/api/v1/rooms/:peer/messages", ctl.Handle())
	return engine
}

func TestGetHistory(t *testing.T) {
	repo := adapter.NewMemoryChatRepository()
	ctx := context.Background()
	for _, text := range []string{"one", "two"} {
		if _, err := repo.SaveMessage(ctx, chat.Message{
			Sender:    "Yahyo",
			Recipient: "Fedya",
			Room:      "Fedya-Yahyo",
			Text:      text,
			Kind:      chat.KindText,
		}); err != nil {
			t.Fatalf("SaveMessage() error: %v", err)
		}
	}
	engine := newHistoryEngine(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/Fedya/messages?user=Yahyo", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Room     string         `json:"room"`
		Messages []chat.Message `json:"messages"`
		Count    int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Room != "Fedya-Yahyo" {
		t.Errorf("room = %q, want Fedya-Yahyo", body.Room)
	}
	if body.Count != 2 || len(body.Messages) != 2 {
		t.Errorf("count = %d, messages = %d, want 2", body.Count, len(body.Messages))
	}
	if body.Messages[0].Text != "one" {
		t.Errorf("messages[0].Text = %q, want ascending order", body.Messages[0].Text)
	}
}

func TestGetHistoryRequiresViewer(t *testing.T) {
	engine := newHistoryEngine(adapter.NewMemoryChatRepository())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/Fedya/messages", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetHistoryEmptyRoom(t *testing.T) {
	engine := newHistoryEngine(adapter.NewMemoryChatRepository())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/Boyka/messages?user=Yahyo", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Messages []chat.Message `json:"messages"`
		Count    int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 0 || body.Messages == nil {
		t.Errorf("empty room must serve an empty array, got %+v", body)
	}
}
