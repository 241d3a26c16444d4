package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/handler"
	"github.com/lingua-prep/adaptive-exam-engine/internal/middleware"
	"github.com/lingua-prep/adaptive-exam-engine/internal/response"
	"github.com/lingua-prep/adaptive-exam-engine/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Session   *handler.SessionHandler
	Flow      *handler.FlowHandler
	Integrity *handler.IntegrityHandler
	ProctorWS *handler.ProctorWSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/candidate/login", handlers.Auth.CandidateLogin)
		auth.GET("/candidate/me", middleware.RequireCandidateJWT(authService), handlers.Auth.GetCandidateProfile)
	}

	// ─── 2. Session Group (Candidate JWT) ──────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	sessions.Use(middleware.RequireCandidateJWT(authService))
	{
		sessions.POST("", handlers.Session.CreateSession)
		sessions.GET("", handlers.Session.ListSessions)
		sessions.POST("/:id/start", handlers.Session.StartSession)
		sessions.GET("/:id/state", handlers.Session.GetSessionState)
		sessions.POST("/:id/complete", handlers.Session.CompleteSession)

		sessions.GET("/:id/next-question", handlers.Flow.NextQuestion)
		sessions.POST("/:id/answers", handlers.Flow.SubmitAnswer)
		sessions.PUT("/:id/answers", handlers.Flow.AutosaveAnswer)

		sessions.POST("/:id/violations", handlers.Integrity.ReportViolation)
		sessions.POST("/:id/terminate", handlers.Integrity.TerminateSession)
	}

	// ─── 3. Results Group (Public Verification) ────────────────────────
	results := router.Group("/api/v1/results")
	{
		results.GET("/:id/verify", handlers.Session.VerifyResult)
	}

	// ─── 4. WebSocket Group (Proctor WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireProctorWSAuth(authService))
	{
		ws.GET("/proctor/sessions/:id/stream", handlers.ProctorWS.SessionIntegrityStream)
	}

	return router
}
