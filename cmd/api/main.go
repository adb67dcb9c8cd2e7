package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/FTYEDUCATION/FYBGram12341/cmd/api/router/v1"
	cacheadapter "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/adapter"
	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	"github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/database"
	"github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/media"
	queueadapter "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/queue/adapter"
	"github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/realtime"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/task"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/adapter"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
	httpHandler "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/presentation/http"
	"github.com/FTYEDUCATION/FYBGram12341/internal/pkg/identity"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	// Credential hashing must finish before any connection can authenticate.
	users, err := identity.NewStore(identity.DefaultSeeds())
	if err != nil {
		log.Fatalf("seed users: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	repo := adapter.NewPgChatRepository(pool)
	if err := repo.InitSchema(ctx); err != nil {
		// The only fatal runtime class: without the schema nothing works.
		log.Fatalf("provision chat schema: %v", err)
	}

	dataDir := os.Getenv("CHAT_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	uploads, err := media.NewStore(filepath.Join(dataDir, "uploads"))
	if err != nil {
		log.Fatalf("create uploads dir: %v", err)
	}
	avatarsDir := filepath.Join(dataDir, "avatars")
	if err := os.MkdirAll(avatarsDir, 0o755); err != nil {
		log.Fatalf("create avatars dir: %v", err)
	}

	var historyCache cacheport.Cache
	if os.Getenv("REDIS_URL") != "" {
		rc, err := cacheadapter.NewRedisAdapter()
		if err != nil {
			log.Printf("history cache disabled: %v", err)
		} else {
			historyCache = rc
			defer rc.Close()
		}
	}

	rt := realtime.NewRouter()
	defer rt.Close()

	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	r.Static("/uploads", uploads.Dir())
	r.Static("/avatars", avatarsDir)
	if pub := os.Getenv("CHAT_PUBLIC_DIR"); pub != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(pub))))
	}

	v1.RegisterRoutes(r, httpHandler.Deps{
		Repo:     repo,
		Cache:    historyCache,
		Media:    uploads,
		Users:    users,
		Realtime: rt,
	})

	startRetentionSweep(repo)

	// Blocks until shutdown; listens on PORT when set.
	if err := r.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// startRetentionSweep wires the optional background purge of soft-deleted
// messages. It needs both a queue backend and an explicit retention window;
// without either, soft-deleted rows are simply kept.
func startRetentionSweep(repo port.ChatRepository) {
	retentionStr := os.Getenv("CHAT_RETENTION")
	if retentionStr == "" || os.Getenv("REDIS_URL") == "" {
		return
	}
	retention, err := time.ParseDuration(retentionStr)
	if err != nil || retention <= 0 {
		log.Printf("invalid CHAT_RETENTION %q, retention sweep disabled", retentionStr)
		return
	}

	client, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Printf("retention sweep disabled: %v", err)
		return
	}
	srv, err := queueadapter.NewAsynqServer()
	if err != nil {
		log.Printf("retention sweep disabled: %v", err)
		return
	}

	task.RegisterPurgeDeletedTask(srv, client, repo)
	go func() {
		if err := srv.Run(context.Background()); err != nil {
			log.Printf("queue server stopped: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := task.EnqueueSweep(ctx, client, retention, 0); err != nil {
		log.Printf("seed retention sweep: %v", err)
	}
}
