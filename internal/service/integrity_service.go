package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/engine"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ViolationEvent is the wire form pushed onto the persist queue and the
// proctor PubSub channel.
type ViolationEvent struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// EventPublisher fans violation events out to the persistence queue and the
// live proctor feed.
type EventPublisher interface {
	PublishViolation(ctx context.Context, event ViolationEvent) error
}

// RedisEventPublisher queues events for the violation worker and mirrors
// them onto the session's PubSub channel for connected proctors.
type RedisEventPublisher struct {
	rdb *redis.Client
}

// NewRedisEventPublisher creates a RedisEventPublisher.
func NewRedisEventPublisher(rdb *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{rdb: rdb}
}

// PublishViolation pushes to the persist queue and the live channel.
func (p *RedisEventPublisher) PublishViolation(ctx context.Context, event ViolationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}
	if err := p.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		return fmt.Errorf("queue violation: %w", err)
	}
	// Live feed is best-effort; the queued copy is the durable one.
	_ = p.rdb.Publish(ctx, config.CacheKey.SessionIntegrityChannel(event.SessionID), payload).Err()
	return nil
}

// IntegrityService accumulates externally reported violation events into an
// integrity score and applies the termination threshold. It never detects
// anything itself.
type IntegrityService struct {
	sessions   SessionStore
	violations ViolationStore
	publisher  EventPublisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewIntegrityService creates a new IntegrityService.
func NewIntegrityService(
	sessions SessionStore,
	violations ViolationStore,
	publisher EventPublisher,
	log zerolog.Logger,
) *IntegrityService {
	return &IntegrityService{
		sessions:   sessions,
		violations: violations,
		publisher:  publisher,
		log:        log.With().Str("component", "integrity_service").Logger(),
		now:        time.Now,
	}
}

// ViolationAck tells the client whether it must force-complete the session.
type ViolationAck struct {
	Logged          bool                  `json:"logged"`
	IntegrityScore  int                   `json:"integrity_score"`
	IntegrityStatus model.IntegrityStatus `json:"integrity_status"`
	ShouldTerminate bool                  `json:"should_terminate"`
}

// ReportViolation increments the session's saturating counter, recomputes
// the integrity status, and fans the event out for persistence and live
// proctoring.
func (s *IntegrityService) ReportViolation(ctx context.Context, candidateID, sessionID uuid.UUID, kind, detail string) (*ViolationAck, error) {
	session, err := ownedSession(ctx, s.sessions, candidateID, sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case model.SessionStatusCompleted:
		return nil, ErrSessionAlreadyCompleted
	case model.SessionStatusCheatingDetected:
		return nil, ErrSessionTerminated
	case model.SessionStatusAssigned:
		return nil, ErrSessionNotStarted
	}

	count, err := s.sessions.IncrementIntegrity(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The session left STARTED between the load and the increment.
			return nil, ErrSessionNotStarted
		}
		return nil, fmt.Errorf("increment integrity: %w", err)
	}

	status := engine.IntegrityStatusFor(count)
	if err := s.sessions.SetIntegrityStatus(ctx, sessionID, status); err != nil {
		return nil, fmt.Errorf("set integrity status: %w", err)
	}

	event := ViolationEvent{
		SessionID: sessionID.String(),
		Kind:      kind,
		Detail:    detail,
		Timestamp: s.now().Unix(),
	}
	if err := s.publisher.PublishViolation(ctx, event); err != nil {
		// The counter on the session row is authoritative; losing the detail
		// record is logged, not fatal.
		s.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Violation event publish failed")
	}

	return &ViolationAck{
		Logged:          true,
		IntegrityScore:  count,
		IntegrityStatus: status,
		ShouldTerminate: engine.ShouldTerminate(count),
	}, nil
}

// Terminate performs the immediate, irrevocable cheating termination:
// STARTED → CHEATING_DETECTED with the violation list recorded. The scoring
// engine never runs; a cheating-terminated session has no valid score.
func (s *IntegrityService) Terminate(ctx context.Context, candidateID, sessionID uuid.UUID, violations []model.ReportViolationRequest) error {
	session, err := ownedSession(ctx, s.sessions, candidateID, sessionID)
	if err != nil {
		return err
	}
	switch session.Status {
	case model.SessionStatusCompleted:
		return ErrSessionAlreadyCompleted
	case model.SessionStatusCheatingDetected:
		return ErrSessionTerminated
	case model.SessionStatusAssigned:
		return ErrSessionNotStarted
	}

	integrityScore := session.IntegrityScore
	if len(violations) > integrityScore {
		integrityScore = len(violations)
	}

	rows, err := s.sessions.TerminateForCheating(ctx, sessionID, integrityScore, s.now())
	if err != nil {
		return fmt.Errorf("terminate session: %w", err)
	}
	if rows == 0 {
		return ErrSessionTerminated
	}

	if err := s.violations.InsertMany(ctx, sessionID, violations); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Violation list persist failed")
	}

	s.log.Warn().
		Str("session_id", sessionID.String()).
		Int("violations", len(violations)).
		Msg("Session terminated for cheating")
	return nil
}
