package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/middleware"
	"github.com/lingua-prep/adaptive-exam-engine/internal/service"
	ws "github.com/lingua-prep/adaptive-exam-engine/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ProctorWSHandler streams live integrity events to proctor consoles.
type ProctorWSHandler struct {
	rdb      *redis.Client
	sessions service.SessionStore
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewProctorWSHandler creates a new ProctorWSHandler.
func NewProctorWSHandler(rdb *redis.Client, sessions service.SessionStore, log zerolog.Logger, allowedOrigins []string) *ProctorWSHandler {
	return &ProctorWSHandler{
		rdb:      rdb,
		sessions: sessions,
		log:      log.With().Str("component", "proctor_ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionIntegrityStream godoc
// WS /ws/v1/proctor/sessions/:id/stream
// Upgrades to WebSocket and forwards the session's violation events as they
// are reported, via the Redis PubSub channel.
func (h *ProctorWSHandler) SessionIntegrityStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	// A proctor token scoped to an organization may only watch that
	// organization's sessions.
	if claims.OrganizationID != nil &&
		(session.OrganizationID == nil || *session.OrganizationID != *claims.OrganizationID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "session outside your organization"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Proctor connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.rdb.Subscribe(ctx, config.CacheKey.SessionIntegrityChannel(sessionID.String()))
	defer sub.Close()

	// Reader goroutine: answers pings and detects the close.
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Proctor disconnected")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-sub.Channel():
			if !open {
				return
			}
			h.forward(conn, wsLog, msg.Payload)
		}
	}
}

func (h *ProctorWSHandler) forward(conn *websocket.Conn, wsLog zerolog.Logger, payload string) {
	var event service.ViolationEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		wsLog.Error().Err(err).Msg("Malformed violation event on channel")
		return
	}

	notice := ws.ViolationNotice{
		Event:     ws.EventViolation,
		SessionID: event.SessionID,
		Kind:      event.Kind,
		Detail:    event.Detail,
		Timestamp: event.Timestamp,
	}
	if err := ws.WriteTyped(conn, notice); err != nil {
		wsLog.Debug().Err(err).Msg("Write to proctor failed")
	}
}
