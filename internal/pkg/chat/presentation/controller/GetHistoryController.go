package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/usecase"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
)

// GetHistoryController serves a room's backlog over plain HTTP (one
// controller per endpoint). The room is derived from the viewer and peer, so
// both parties address the same history.
type GetHistoryController struct {
	UC *usecase.LoadHistoryUseCase
}

func NewGetHistoryController(repo port.ChatRepository, cache cacheport.Cache) *GetHistoryController {
	return &GetHistoryController{UC: usecase.NewLoadHistoryUseCase(repo, cache)}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		peer := c.Param("peer")
		viewer := c.Query("user")
		if peer == "" || viewer == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "peer and user are required"})
			return
		}

		room := chat.RoomID(viewer, peer)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		history := h.UC.Execute(ctx, room, viewer)

		if history == nil {
			history = []chat.Message{}
		}
		c.JSON(http.StatusOK, gin.H{
			"room":     room,
			"messages": history,
			"count":    len(history),
		})
	}
}
