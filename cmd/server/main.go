package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/match-insights/internal/api/handlers"
	"github.com/stitts-dev/match-insights/internal/providers"
	"github.com/stitts-dev/match-insights/internal/services"
	"github.com/stitts-dev/match-insights/internal/websocket"
	"github.com/stitts-dev/match-insights/pkg/config"
	"github.com/stitts-dev/match-insights/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger("info", cfg.IsDevelopment())
	logger.WithService(cfg.ServiceName).WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting match insights service")

	if cfg.GeminiAPIKey == "" {
		logger.WithService(cfg.ServiceName).Warn("GEMINI_API_KEY is not set, generation endpoints will fail")
	}

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize core services
	statsbombClient := providers.NewStatsBombClient(cfg, structuredLogger)
	geminiClient := services.NewGeminiClient(cfg, structuredLogger)
	promptBuilder := services.NewPromptBuilder(structuredLogger)

	// WebSocket hub streaming agent reasoning progress to the dashboard
	wsHub := websocket.NewAgentHub(structuredLogger)
	go wsHub.Run()

	reactAgent := services.NewReactAgent(geminiClient, statsbombClient, wsHub, structuredLogger, cfg.AgentMaxSteps)

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CorsOrigins,
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	// Initialize handlers
	matchHandler := handlers.NewMatchHandler(statsbombClient, cfg, structuredLogger)
	profileHandler := handlers.NewProfileHandler(statsbombClient, cfg, structuredLogger)
	assistantHandler := handlers.NewAssistantHandler(
		statsbombClient,
		geminiClient,
		promptBuilder,
		reactAgent,
		cfg,
		structuredLogger,
	)
	healthHandler := handlers.NewHealthHandler(geminiClient, wsHub, structuredLogger)

	// Match data endpoints
	router.GET("/partidas/:id", matchHandler.GetMatchEvents)
	router.GET("/partidas/:id/events", matchHandler.GetFilteredMatchEvents)
	router.GET("/competitions", matchHandler.GetCompetitions)
	router.GET("/matches", matchHandler.GetMatches)

	// Derived statistics and assistants
	router.POST("/player_profile", profileHandler.GetPlayerProfile)
	router.POST("/match_summary", assistantHandler.CreateMatchSummary)
	router.POST("/commentary", assistantHandler.CreateCommentary)
	router.POST("/react_agent", assistantHandler.AskAgent)

	// WebSocket endpoint for agent progress updates
	router.GET("/ws/agent/:session_id", wsHub.HandleWebSocket)

	// Health check endpoints
	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.HEAD("/ready", healthHandler.GetReady)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithService(cfg.ServiceName).WithField("port", cfg.Port).Info("Match insights service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService(cfg.ServiceName).Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService(cfg.ServiceName).Info("Shutting down match insights service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService(cfg.ServiceName).Fatalf("Match insights service forced to shutdown: %v", err)
	}

	logger.WithService(cfg.ServiceName).Info("Match insights service exited")
}
