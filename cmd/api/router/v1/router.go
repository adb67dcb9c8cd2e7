package v1

import (
	"github.com/gin-gonic/gin"

	httpHandler "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1 plus the
// websocket endpoint at /ws.
func RegisterRoutes(r *gin.Engine, deps httpHandler.Deps) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(r, v1, deps)
}
