package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/internal/config"
	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/internal/telemetry"
	"github.com/Ramprakash852/AI-storyteller/middleware"
	"github.com/Ramprakash852/AI-storyteller/routes"
	"github.com/Ramprakash852/AI-storyteller/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("ai-storyteller")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// AI clients
	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	var imageClient ai.ImageGenerator
	if cfg.OpenAIAPIKey != "" {
		imageClient, err = ai.NewOpenAIImageClient(cfg.OpenAIAPIKey, cfg.OpenAIImageModel)
		if err != nil {
			log.Fatal("Failed to initialize image client:", err)
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, illustrations disabled")
	}

	transcriber := ai.NewAssemblyAIClient(cfg.AssemblyAIAPIKey, cfg.AssemblyAIBaseURL)

	// Storage and indexing
	blobStore, err := services.NewLocalBlobStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob store:", err)
	}
	repo := services.NewMongoRepository(db)
	vectorIndex := services.NewVectorIndex(db, cfg)
	embedder := ai.ConfigEmbedder(cfg)
	chunker := services.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap)
	indexer := services.NewIndexer(embedder, vectorIndex, chunker)
	retriever := services.NewRetriever(embedder, vectorIndex, cfg.RetrievalTopK)

	// Domain services
	userService := services.NewUserService(repo, cfg.BcryptCost)
	storyService := services.NewStoryService(repo, retriever, geminiClient, imageClient, blobStore, indexer)
	assignmentService := services.NewAssignmentService(repo, repo, repo, geminiClient)
	audioService := services.NewAudioService(repo, repo, transcriber, geminiClient, blobStore)
	bookService := services.NewBookService(repo, blobStore, indexer, cfg.MaxFileSize)

	// Background reindexing of books whose first pass failed
	scheduler := services.NewIndexScheduler(bookService)
	if err := scheduler.Start(10 * time.Minute); err != nil {
		logger.Warn("Failed to start index scheduler", "error", err)
	}
	defer scheduler.Stop()

	// Redis-backed extras degrade gracefully when Redis is down
	var taskEnqueuer routes.TaskEnqueuer
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, rate limiting and task queue disabled", "error", err)
	} else {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer asynqClient.Close()
		taskEnqueuer = asynqClient
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	router.Static("/storage", cfg.FileStorageDir)

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	api := router.Group("/api")

	routes.NewUserRoutes(userService, cfg).Register(api, authMiddleware)
	routes.NewStoryRoutes(storyService, assignmentService, userService).Register(api, authMiddleware)
	routes.NewBookRoutes(bookService, userService, taskEnqueuer).Register(api, authMiddleware)
	routes.NewAudioRoutes(audioService, taskEnqueuer).Register(api, authMiddleware)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
