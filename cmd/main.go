package main

import (
	"context"
	"log"
	"time"

	"github.com/yungbote/conceptgraph-backend/internal/clients/extraction"
	redisclient "github.com/yungbote/conceptgraph-backend/internal/clients/redis"
	"github.com/yungbote/conceptgraph-backend/internal/data/repos/knowledge"
	reviewrepo "github.com/yungbote/conceptgraph-backend/internal/data/repos/review"
	"github.com/yungbote/conceptgraph-backend/internal/db"
	"github.com/yungbote/conceptgraph-backend/internal/handlers"
	"github.com/yungbote/conceptgraph-backend/internal/middleware"
	"github.com/yungbote/conceptgraph-backend/internal/observability"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/envutil"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/platform/neo4jdb"
	"github.com/yungbote/conceptgraph-backend/internal/server"
	"github.com/yungbote/conceptgraph-backend/internal/services"
	"github.com/yungbote/conceptgraph-backend/internal/sse"
)

func main() {
	appLog, err := logger.New(envutil.GetEnv("APP_MODE", "dev", nil))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, appLog, observability.OtelConfig{
		ServiceName: "conceptgraph-backend",
		Environment: envutil.GetEnv("APP_MODE", "dev", appLog),
		Version:     envutil.GetEnv("APP_VERSION", "dev", appLog),
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				appLog.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	pg, err := db.NewPostgresService(appLog)
	if err != nil {
		appLog.Fatal("failed to connect to postgres", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		appLog.Fatal("failed to migrate postgres tables", "error", err)
	}
	gdb := pg.DB()

	neo4jClient, err := neo4jdb.NewFromEnv(appLog)
	if err != nil {
		appLog.Warn("neo4j unavailable, continuing without graph mirror", "error", err)
		neo4jClient = nil
	}
	if neo4jClient != nil {
		defer neo4jClient.Close(ctx)
	}

	hub := sse.NewHub(appLog)

	var bus redisclient.ReviewBus
	if b, err := redisclient.NewReviewBus(appLog); err != nil {
		appLog.Warn("redis unavailable, review events stay local", "error", err)
	} else {
		bus = b
		defer bus.Close()
		if err := bus.StartForwarder(ctx, hub.Publish); err != nil {
			appLog.Warn("failed to start review event forwarder", "error", err)
		}
	}

	extractor, err := extraction.NewClient(appLog)
	if err != nil {
		appLog.Fatal("failed to initialize extraction client", "error", err)
	}

	conceptRepo := knowledge.NewConceptRepo(gdb, appLog)
	edgeRepo := knowledge.NewConceptEdgeRepo(gdb, appLog)
	sessionRepo := reviewrepo.NewSessionRepo(gdb, appLog)
	reviewConceptRepo := reviewrepo.NewConceptRepo(gdb, appLog)
	conflictRepo := reviewrepo.NewConflictRepo(gdb, appLog)

	notifier := services.NewReviewNotifier(appLog, bus, hub)
	sessionService := services.NewReviewSessionService(gdb, appLog, sessionRepo, reviewConceptRepo, conflictRepo, conceptRepo, edgeRepo, neo4jClient, notifier)
	ingestService := services.NewIngestService(gdb, appLog, extractor, conceptRepo, sessionRepo, reviewConceptRepo, conflictRepo, sessionService, notifier)
	conceptService := services.NewConceptService(gdb, appLog, conceptRepo, edgeRepo)

	jwtSecret := envutil.GetEnv("JWT_SECRET", "", appLog)
	if jwtSecret == "" {
		appLog.Fatal("JWT_SECRET is required")
	}

	router := server.NewRouter(server.RouterConfig{
		Log:         appLog,
		Auth:        middleware.NewAuthMiddleware(appLog, jwtSecret),
		Review:      handlers.NewReviewHandler(appLog, ingestService, sessionService),
		Concepts:    handlers.NewConceptHandler(conceptService),
		Events:      handlers.NewEventsHandler(appLog, hub),
		ServiceName: "conceptgraph-backend",
	})

	port := envutil.GetEnv("PORT", "8080", appLog)
	appLog.Info("starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		appLog.Fatal("server exited", "error", err)
	}
}
