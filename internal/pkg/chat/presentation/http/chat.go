package http

import (
	"github.com/gin-gonic/gin"

	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	"github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/media"
	"github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/realtime"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/presentation/controller"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/identity"
)

// Deps bundles the collaborators the chat endpoints are wired with.
type Deps struct {
	Repo     port.ChatRepository
	Cache    cacheport.Cache // optional
	Media    *media.Store
	Users    *identity.Store
	Realtime *realtime.Router
}

// RegisterRoutes mounts the realtime websocket endpoint on the engine and
// the read-only chat API on the given group. Controllers are constructed
// per endpoint and bound directly to routes.
func RegisterRoutes(r *gin.Engine, g *gin.RouterGroup, deps Deps) {
	socketCtl := controller.NewChatSocketController(deps.Repo, deps.Cache, deps.Media, deps.Users, deps.Realtime)
	historyCtl := controller.NewGetHistoryController(deps.Repo, deps.Cache)

	// GET /ws -> bidirectional event channel, one per client
	r.GET("/ws", socketCtl.Handle())

	// GET /api/v1/rooms/:peer/messages?user=<viewer> -> room backlog
	g.GET("/rooms/:peer/messages", historyCtl.Handle())
}
