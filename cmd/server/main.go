package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/that-that/waldo/config"
	"github.com/that-that/waldo/handlers"
	"github.com/that-that/waldo/internal/analyzer"
	"github.com/that-that/waldo/internal/events"
	"github.com/that-that/waldo/internal/pipeline"
	"github.com/that-that/waldo/internal/worker"
	"github.com/that-that/waldo/middleware"
	"github.com/that-that/waldo/repository"
	"github.com/that-that/waldo/services"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db, err := repository.InitDB(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	subRepo := repository.NewSubmissionRepository(db)
	clipRepo := repository.NewClipRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	userRepo := repository.NewUserRepository(db)

	publisher := events.NewPublisher(cfg.KafkaBroker, cfg.KafkaTopic, log)
	defer publisher.Close()

	dispatcher := worker.NewDispatcher(cfg.Workers, cfg.JobQueueSize, log)
	dispatcher.Run()

	orchestrator := pipeline.NewOrchestrator(
		subRepo,
		clipRepo,
		pipeline.NewHTTPDownloader(),
		analyzer.NewProcessRunner(cfg.AnalyzerPath),
		publisher,
		dispatcher,
		cfg.ClipStorageRoot,
		cfg.WorkDir,
		log,
	)

	metadataClient := services.NewHTTPMetadataClient(cfg.MetadataServiceURL)
	submissionService := services.NewSubmissionService(subRepo, clipRepo, metadataClient, orchestrator, cfg.ClipStorageRoot, log)
	reviewService := services.NewReviewService(subRepo, voteRepo, cfg.SingleVotePerReviewer, log)

	h := handlers.NewApplicationHandler(submissionService, reviewService, log)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	apiV1 := app.Group("/api/v1", middleware.Auth(cfg.JWTSecret, userRepo, log))

	apiV1.Post("/submissions", h.CreateSubmission)
	apiV1.Get("/submissions", h.ListSubmissions)
	apiV1.Get("/submissions/:id", h.GetSubmission)
	apiV1.Patch("/submissions/:id", h.UpdateSubmission)
	apiV1.Delete("/submissions/:id", h.DeleteSubmission)
	apiV1.Get("/submissions/:id/clips", h.ListClips)

	apiV1.Get("/review/next", h.NextReviewItem)
	apiV1.Post("/review/votes", h.CastVote)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()
	log.WithField("port", cfg.Port).Info("Server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	if err := app.Shutdown(); err != nil {
		log.WithField("error", err.Error()).Error("Server shutdown failed")
	}
	dispatcher.Stop()
	log.Info("Shutdown complete")
}
