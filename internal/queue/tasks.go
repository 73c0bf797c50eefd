package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/services"
)

const (
	TaskProcessAudio = "audio:process"
	TaskIndexBook    = "library:index"
)

type AudioProcessPayload struct {
	AudioID string `json:"audio_id"`
}

type BookIndexPayload struct {
	BookID string `json:"book_id"`
}

// Task creators

func NewAudioProcessTask(audioID string) (*asynq.Task, error) {
	payload, err := json.Marshal(AudioProcessPayload{AudioID: audioID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskProcessAudio,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

func NewBookIndexTask(bookID string) (*asynq.Task, error) {
	payload, err := json.Marshal(BookIndexPayload{BookID: bookID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIndexBook,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("low"),
	), nil
}

// TaskProcessor runs queued background work: audio assessment and book
// index retries.
type TaskProcessor struct {
	audioService *services.AudioService
	bookService  *services.BookService
}

func NewTaskProcessor(audioService *services.AudioService, bookService *services.BookService) *TaskProcessor {
	return &TaskProcessor{
		audioService: audioService,
		bookService:  bookService,
	}
}

func (p *TaskProcessor) ProcessAudio(ctx context.Context, t *asynq.Task) error {
	var payload AudioProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Processing audio task", "audio_id", payload.AudioID)
	if _, err := p.audioService.ProcessAudio(ctx, payload.AudioID); err != nil {
		return err
	}
	return nil
}

func (p *TaskProcessor) IndexBook(ctx context.Context, t *asynq.Task) error {
	var payload BookIndexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Processing book index task", "book_id", payload.BookID)
	return p.bookService.IndexBookByID(ctx, payload.BookID)
}
