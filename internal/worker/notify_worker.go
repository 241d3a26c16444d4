package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/notify"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotifyWorker consumes the level-change queue and delivers events through
// the configured sink, one at a time with retry on failure.
type NotifyWorker struct {
	rdb  *redis.Client
	sink notify.Sink
	log  zerolog.Logger
}

// NewNotifyWorker creates a new NotifyWorker.
func NewNotifyWorker(rdb *redis.Client, sink notify.Sink, log zerolog.Logger) *NotifyWorker {
	return &NotifyWorker{
		rdb:  rdb,
		sink: sink,
		log:  log.With().Str("component", "notify_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *NotifyWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.LevelChangeQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var event notify.LevelChange
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		w.log.Error().Err(err).Msg("Discarding malformed level change event")
		return
	}

	if err := w.sink.SendLevelChange(ctx, event); err != nil {
		w.log.Error().Err(err).
			Str("candidate_id", event.CandidateID.String()).
			Msg("Delivery failed, retrying in 5s")
		// Push back for retry.
		w.rdb.RPush(ctx, config.WorkerKey.LevelChangeQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

// drain delivers all remaining queued events before shutdown.
func (w *NotifyWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.LevelChangeQueue).Result()
		if err != nil {
			break
		}

		var event notify.LevelChange
		if err := json.Unmarshal([]byte(result), &event); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.sink.SendLevelChange(ctx, event); err != nil {
			w.log.Error().Err(err).Msg("Drain delivery error")
			w.rdb.RPush(ctx, config.WorkerKey.LevelChangeQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining events")
	}
}
