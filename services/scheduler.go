package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Ramprakash852/AI-storyteller/internal/logger"
)

// IndexScheduler periodically retries indexing for books that failed
// their initial pass.
type IndexScheduler struct {
	scheduler *gocron.Scheduler
	books     *BookService
	cancel    context.CancelFunc
	ctx       context.Context
}

func NewIndexScheduler(books *BookService) *IndexScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &IndexScheduler{
		scheduler: s,
		books:     books,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the reindex job and runs the scheduler in the
// background.
func (s *IndexScheduler) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	_, err := s.scheduler.Every(interval).Tag("book-reindex").Do(func() {
		ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
		defer cancel()
		s.books.ReindexPending(ctx, 20)
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	logger.Info("Index scheduler started", "interval", interval.String())
	return nil
}

func (s *IndexScheduler) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}
