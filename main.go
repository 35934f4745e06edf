// File: smiledesk/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smiledesk/config"
	"smiledesk/cron"
	"smiledesk/database"
	appointmentRepo "smiledesk/database/repository/appointment"
	profileRepo "smiledesk/database/repository/profile"
	"smiledesk/handlers"
	"smiledesk/middleware"
	"smiledesk/routes"
	"smiledesk/services/assistant"
	"smiledesk/services/booking"
	"smiledesk/services/calendar"
	"smiledesk/services/knowledge"
	"smiledesk/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	database.InitDB()
	database.InitES()
	utils.InitSessionCache()

	if err := appointmentRepo.EnsureIndex(database.ESClient, cfg.ESAppointmentIndex); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure appointment index: %v", err)
	}
	if err := knowledge.EnsureIndex(database.ESClient, cfg.ESKnowledgeIndex); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure knowledge index: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	limiter := middleware.NewSlidingWindowLimiter(cfg.RateLimitMax, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	router.Use(middleware.RateLimitMiddleware(limiter))

	// Repositories.
	apptRepo := appointmentRepo.NewESAppointmentRepo(database.ESClient, cfg.ESAppointmentIndex)
	profRepo := profileRepo.NewMongoProfileRepo()

	// Collaborators.
	clinicLoc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Sugar().Warnf("main: unknown clinic timezone %q, falling back to UTC", cfg.ClinicTimezone)
		clinicLoc = time.UTC
	}

	calClient, err := calendar.NewGoogleClient(context.Background(), cfg.GoogleCalendarID, cfg.GoogleCredsFile, cfg.ClinicTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar client: %v", err)
	}

	cron.InitReminderWorker()
	reminders := cron.NewReminderScheduler(time.Duration(cfg.ReminderLeadHours) * time.Hour)

	// Services.
	orchestrator := &booking.DefaultOrchestrator{
		Calendar:  calClient,
		Repo:      apptRepo,
		Profiles:  profRepo,
		Reminders: reminders,
		Clinic:    clinicLoc,
		Logger:    logger,
	}

	sessionStore := assistant.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(cfg.SessionTTLMin)*time.Minute,
	)

	var engine assistant.Engine = assistant.NewRuleEngine()
	var searcher knowledge.Searcher
	var ingester knowledge.Ingester
	if cfg.GeminiAPIKey != "" {
		gem := assistant.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbedModel, cfg.GeminiRPM)
		engine = &assistant.GeminiEngine{Client: gem, Fallback: engine, Logger: logger}
		store := &knowledge.ESStore{Client: database.ESClient, Index: cfg.ESKnowledgeIndex, Embedder: gem}
		searcher = store
		ingester = store
	} else {
		logger.Warn("GEMINI_API_KEY not set; using the rule-based assistant engine")
	}

	assistantSvc := &assistant.DefaultAssistantService{
		Store:     sessionStore,
		Engine:    engine,
		Booking:   orchestrator,
		Policy:    assistant.NewPolicyScreen(cfg.PolicyBlocklist),
		Knowledge: searcher,
		Profiles:  profRepo,
		Logger:    logger,
		Opts: assistant.Options{
			LockThreshold: cfg.LockThreshold,
			LockMarker:    cfg.LockMarker,
		},
	}

	chatHandler := handlers.NewChatHandler(assistantSvc, logger)
	bookingHandler := handlers.NewBookingHandler(orchestrator, logger)
	knowledgeHandler := handlers.NewKnowledgeHandler(ingester, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:  chatHandler.HandleChat,
		ResetHandler: chatHandler.HandleReset,

		CreateAppointmentHandler: bookingHandler.CreateAppointment,
		CheckSlotHandler:         bookingHandler.CheckSlot,
		ListAppointmentsHandler:  bookingHandler.ListAppointments,

		IngestKnowledgeHandler: knowledgeHandler.IngestKnowledge,

		HealthHandler: handlers.HealthHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)
	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient, database.ESClient)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
