package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/conceptgraph-backend/internal/handlers"
	"github.com/yungbote/conceptgraph-backend/internal/middleware"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/envutil"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Auth        *middleware.AuthMiddleware
	Review      *handlers.ReviewHandler
	Concepts    *handlers.ConceptHandler
	Events      *handlers.EventsHandler
	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{envutil.GetEnv("FRONTEND_ORIGIN", "http://localhost:3000", cfg.Log)},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.Auth.RequireAuth())
	{
		api.POST("/ingest", cfg.Review.Ingest)
		api.GET("/review-sessions/pending", cfg.Review.ListPending)
		api.GET("/review-sessions/:id", cfg.Review.GetSession)
		api.POST("/review-sessions/:id/approve", cfg.Review.ApproveSession)
		api.POST("/review-sessions/:id/cancel", cfg.Review.CancelSession)
		api.GET("/concepts", cfg.Concepts.GetGraph)
		api.GET("/events", cfg.Events.Stream)
	}

	return router
}
