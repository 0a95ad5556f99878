package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/api/handler"
	"github.com/qs3c/zubari_server/internal/api/middleware"
	"github.com/qs3c/zubari_server/internal/pkg/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	AI        *handler.AIHandler
	Payment   *handler.PaymentHandler
	WebSocket *handler.WebSocketHandler
	Health    *handler.HealthHandler
}

type Router struct {
	handlers Handlers
	checker  middleware.RevocationChecker
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRouter builds the router. checker may be nil, in which case logged-out
// tokens stay valid until they expire.
func NewRouter(handlers Handlers, checker middleware.RevocationChecker, cfg *config.Config, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		handlers: handlers,
		checker:  checker,
		cfg:      cfg,
		logger:   logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(r.logger))
	engine.Use(middleware.RequestLogger(r.logger))
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.handlers.Health.Liveness)
	engine.GET("/readyz", r.handlers.Health.Readiness)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api/v1")
	{
		// token is passed as a query parameter
		api.GET("/ws", r.handlers.WebSocket.Handle)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.handlers.Auth.Signup)
			auth.POST("/login", r.handlers.Auth.Login)
		}

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret, r.checker))
		{
			authenticated.POST("/auth/logout", r.handlers.Auth.Logout)
			authenticated.GET("/user/status", r.handlers.User.Status)

			aiGroup := authenticated.Group("/ai")
			{
				aiGroup.POST("/generate-questions", r.handlers.AI.GenerateQuestions)
				aiGroup.POST("/summarize", r.handlers.AI.Summarize)
				aiGroup.POST("/answer-question", r.handlers.AI.AnswerQuestion)
				aiGroup.POST("/generate-study-plan", r.handlers.AI.GenerateStudyPlan)
			}

			payments := authenticated.Group("/payments")
			{
				payments.POST("/initiate", r.handlers.Payment.Initiate)
				payments.POST("/verify", r.handlers.Payment.Verify)
				payments.GET("", r.handlers.Payment.List)
			}
		}
	}

	return engine
}
