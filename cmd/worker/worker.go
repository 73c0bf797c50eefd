package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/internal/config"
	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/internal/queue"
	"github.com/Ramprakash852/AI-storyteller/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.DBName)

	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTier)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	transcriber := ai.NewAssemblyAIClient(cfg.AssemblyAIAPIKey, cfg.AssemblyAIBaseURL)

	blobStore, err := services.NewLocalBlobStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob store:", err)
	}
	repo := services.NewMongoRepository(db)
	vectorIndex := services.NewVectorIndex(db, cfg)
	embedder := ai.ConfigEmbedder(cfg)
	chunker := services.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap)
	indexer := services.NewIndexer(embedder, vectorIndex, chunker)

	audioService := services.NewAudioService(repo, repo, transcriber, geminiClient, blobStore)
	bookService := services.NewBookService(repo, blobStore, indexer, cfg.MaxFileSize)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 20,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(audioService, bookService)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskProcessAudio, processor.ProcessAudio)
	mux.HandleFunc(queue.TaskIndexBook, processor.IndexBook)

	logger.Info("Starting worker", "redis", cfg.RedisURL, "concurrency", 20)
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
