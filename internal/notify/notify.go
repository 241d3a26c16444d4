package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LevelChange is dispatched when a completed exam moves a candidate to a new
// proficiency level. Delivery is fire-and-forget: completion never blocks on
// the notification sink.
type LevelChange struct {
	CandidateID   uuid.UUID    `json:"candidate_id"`
	SessionID     uuid.UUID    `json:"session_id"`
	PreviousLevel *model.Level `json:"previous_level,omitempty"`
	NewLevel      model.Level  `json:"new_level"`
	Score         int          `json:"score"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// Sink delivers level-change events to the external notification/email
// service. The engine owns dispatch, not rendering.
type Sink interface {
	SendLevelChange(ctx context.Context, event LevelChange) error
}

// Dispatcher queues level-change events to Redis for asynchronous delivery
// by the notify worker.
type Dispatcher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(rdb *redis.Client, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		rdb: rdb,
		log: log.With().Str("component", "notify_dispatcher").Logger(),
	}
}

// EnqueueLevelChange pushes the event onto the delivery queue.
func (d *Dispatcher) EnqueueLevelChange(ctx context.Context, event LevelChange) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal level change: %w", err)
	}
	if err := d.rdb.RPush(ctx, config.WorkerKey.LevelChangeQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue level change: %w", err)
	}
	d.log.Debug().
		Str("candidate_id", event.CandidateID.String()).
		Str("new_level", string(event.NewLevel)).
		Msg("Level change queued")
	return nil
}
