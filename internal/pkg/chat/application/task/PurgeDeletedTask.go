package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	qport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/queue/port"
	repository "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/persistence/repository/port"
)

// PurgeDeletedTaskType is the queue task name for the retention sweep that
// hard-deletes soft-deleted messages past the retention window.
const PurgeDeletedTaskType = "chat:purge_deleted"

// PurgeDeletedPayload is the JSON payload transported via the queue.
type PurgeDeletedPayload struct {
	Retention string `json:"retention"` // Go duration string, e.g. "720h"
}

// RegisterPurgeDeletedTask binds the sweep handler to the provided server.
// After each run the handler re-enqueues itself one retention interval out,
// so a single seed enqueue at startup keeps the sweep scheduled.
func RegisterPurgeDeletedTask(srv qport.Server, client qport.Client, repo repository.ChatRepository) {
	srv.Register(PurgeDeletedTaskType, func(ctx context.Context, t qport.Task) error {
		var p PurgeDeletedPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}
		retention, err := time.ParseDuration(p.Retention)
		if err != nil || retention <= 0 {
			return fmt.Errorf("purge task: bad retention %q", p.Retention)
		}

		runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		purged, err := repo.PurgeDeleted(runCtx, time.Now().Add(-retention))
		if err != nil {
			return err
		}
		if purged > 0 {
			slog.Info("purged soft-deleted messages", "count", purged)
		}

		return EnqueueSweep(runCtx, client, retention, retention)
	})
}

// EnqueueSweep schedules the next retention sweep to run after the given
// delay. The uniqueness window keeps restarts from stacking up sweeps.
func EnqueueSweep(ctx context.Context, client qport.Client, retention, in time.Duration) error {
	b, err := json.Marshal(PurgeDeletedPayload{Retention: retention.String()})
	if err != nil {
		return err
	}
	_, err = client.Enqueue(ctx, qport.Task{Type: PurgeDeletedTaskType, Payload: b}, qport.EnqueueOption{
		Queue:     "chat",
		ProcessIn: in,
		UniqueTTL: retention,
	})
	return err
}
