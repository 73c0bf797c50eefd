package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/models"
)

const storySystemPrompt = `You are a helpful and creative assistant designed to generate engaging and age-appropriate stories for children. Your stories should be fun, imaginative, and suitable for the given age group.`

// ContextRetriever supplies grounding passages for generation.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, query, ownerID string, childAge int, useBooks, useHistory bool) []string
}

// DocumentIndexer feeds finished documents into the library index.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, ownerID, sourceID, sourceType, title, author, body string, childAge int) error
	RemoveDocument(ctx context.Context, sourceID string) error
}

// StoryService runs the story generation pipeline: retrieve context,
// generate pages, optionally illustrate, persist, then index the new
// story for future retrieval.
type StoryService struct {
	stories    StoryStore
	retriever  ContextRetriever
	completer  ai.Completer
	images     ai.ImageGenerator
	blobs      BlobStore
	indexer    DocumentIndexer
	httpClient *http.Client
}

func NewStoryService(
	stories StoryStore,
	retriever ContextRetriever,
	completer ai.Completer,
	images ai.ImageGenerator,
	blobs BlobStore,
	indexer DocumentIndexer,
) *StoryService {
	return &StoryService{
		stories:    stories,
		retriever:  retriever,
		completer:  completer,
		images:     images,
		blobs:      blobs,
		indexer:    indexer,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generatedStory struct {
	StoryTitle       string `json:"storyTitle"`
	StoryDescription string `json:"storyDescription"`
	StoryContent     []struct {
		PageText string `json:"pageText"`
	} `json:"storyContent"`
}

// CreateStory generates and persists a new story for the user.
func (s *StoryService) CreateStory(ctx context.Context, req *models.CreateStoryRequest, userID primitive.ObjectID, authorName string) (*models.Story, error) {
	contextStr := s.buildLibraryContext(ctx, req, userID)

	generated, err := s.generateStoryContent(ctx, req, contextStr)
	if err != nil {
		return nil, err
	}

	pageImages := s.generateIllustrations(ctx, req, generated)

	pages := make([]models.PageContent, 0, len(generated.StoryContent))
	for i, page := range generated.StoryContent {
		pages = append(pages, models.PageContent{
			PageText:  page.PageText,
			PageImage: pageImages[i],
		})
	}

	now := time.Now()
	story := &models.Story{
		StoryTitle:       req.StoryTitle,
		StoryDescription: req.StoryDescription,
		StoryContent:     pages,
		StoryAuthor:      authorName,
		CreatedBy:        userID,
		MaxPages:         req.MaxPages,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	id, err := s.stories.InsertStory(ctx, story)
	if err != nil {
		return nil, err
	}
	story.ID = id

	// Index the finished story for future context retrieval. The story
	// is already saved, so indexing failures only log.
	if err := s.indexer.IndexDocument(ctx, userID.Hex(), id.Hex(), models.SourceTypeStory,
		story.StoryTitle, authorName, story.WholeText(), req.ChildAge); err != nil {
		logger.Warn("Failed to index story", "story_id", id.Hex(), "error", err)
	}

	logger.Info("Story created", "story_id", id.Hex(), "pages", len(pages), "user_id", userID.Hex())
	return story, nil
}

func (s *StoryService) buildLibraryContext(ctx context.Context, req *models.CreateStoryRequest, userID primitive.ObjectID) string {
	query := req.StoryTitle + " " + req.StoryDescription
	texts := s.retriever.RetrieveContext(ctx, query, userID.Hex(), req.ChildAge, req.UseBooksContext, req.UseHistoryContext)
	if len(texts) == 0 {
		return ""
	}

	parts := make([]string, 0, len(texts))
	for i, text := range texts {
		// Truncate on rune boundaries so a multi-byte character is never
		// split mid-sequence.
		if r := []rune(text); len(r) > 400 {
			text = string(r[:400])
		}
		parts = append(parts, fmt.Sprintf("From your reading history %d:\n%s...", i+1, text))
	}
	logger.Info("Retrieved library context", "documents", len(texts), "user_id", userID.Hex())
	return strings.Join(parts, "\n\n")
}

func (s *StoryService) generateStoryContent(ctx context.Context, req *models.CreateStoryRequest, libraryContext string) (*generatedStory, error) {
	systemPrompt := storySystemPrompt
	if libraryContext != "" {
		systemPrompt += "\n\nThe child has read the following books. You may draw inspiration from themes, styles, or concepts they enjoyed, but create something completely original and unique:\n\n" + libraryContext
	}

	userPrompt := fmt.Sprintf(`Generate a story for a child of age %d with the following details:
- Story Title: %q
- Story Description: %q
- The story should contain a maximum of %d pages.
- Each page should have a "pageText" field containing a portion of the story.
- Each page should have a minimum of 250 words.
- The response should follow this format:

{
  "storyTitle": %q,
  "storyDescription": %q,
  "storyContent": [
    {
      "pageText": "Text for page 1"
    },
    {
      "pageText": "Text for page 2"
    }
  ]
}

Ensure that the story is age-appropriate for a child of age %d.
Create an original and unique story.
Return ONLY valid JSON.`,
		req.ChildAge, req.StoryTitle, req.StoryDescription, req.MaxPages,
		req.StoryTitle, req.StoryDescription, req.ChildAge)

	raw, usage, err := s.completer.Complete(ctx, systemPrompt, userPrompt, 0.7)
	if err != nil {
		return nil, fmt.Errorf("%w: story generation failed: %v", ErrUpstream, err)
	}
	logger.Info("Story generation usage", "prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)

	var generated generatedStory
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &generated); err != nil {
		return nil, fmt.Errorf("%w: failed to parse story JSON: %v", ErrInvalidLLMOutput, err)
	}
	if len(generated.StoryContent) == 0 {
		return nil, fmt.Errorf("%w: missing or invalid storyContent", ErrInvalidLLMOutput)
	}
	if len(generated.StoryContent) > req.MaxPages {
		return nil, fmt.Errorf("%w: %d pages returned, limit is %d", ErrInvalidLLMOutput, len(generated.StoryContent), req.MaxPages)
	}
	for i, page := range generated.StoryContent {
		if strings.TrimSpace(page.PageText) == "" {
			return nil, fmt.Errorf("%w: page %d has no text", ErrInvalidLLMOutput, i+1)
		}
	}
	return &generated, nil
}

// generateIllustrations fans out one goroutine per illustrated page.
// Pages at index i%3 == 1 are skipped to break up the visual rhythm. A
// failed illustration leaves that page without an image; the story is
// never blocked on artwork.
func (s *StoryService) generateIllustrations(ctx context.Context, req *models.CreateStoryRequest, generated *generatedStory) []string {
	images := make([]string, len(generated.StoryContent))
	if !req.IncludeImage || s.images == nil {
		return images
	}

	var wg sync.WaitGroup
	for i, page := range generated.StoryContent {
		if i%3 == 1 {
			continue
		}
		wg.Add(1)
		go func(idx int, pageText string) {
			defer wg.Done()
			remoteURL, err := s.images.GenerateIllustration(ctx, pageText, req.ChildAge, req.StoryTitle)
			if err != nil || remoteURL == "" {
				logger.Warn("Illustration generation failed", "page", idx, "error", err)
				return
			}
			images[idx] = s.persistIllustration(ctx, remoteURL)
		}(i, page.PageText)
	}
	wg.Wait()
	return images
}

// persistIllustration downloads the generated image and stores it in
// the blob store. On any failure the short-lived provider URL is kept
// so the page still renders.
func (s *StoryService) persistIllustration(ctx context.Context, remoteURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return remoteURL
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("Failed to download illustration", "error", err)
		return remoteURL
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("Failed to download illustration", "status", resp.StatusCode)
		return remoteURL
	}

	url, _, err := s.blobs.Put(ctx, "illustrations", "illustration.png", io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		logger.Warn("Failed to store illustration", "error", err)
		return remoteURL
	}
	return url
}

// GetStory returns a story after verifying the caller owns it.
func (s *StoryService) GetStory(ctx context.Context, storyID string, userID primitive.ObjectID) (*models.Story, error) {
	sid, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, ErrNotFound
	}
	story, err := s.stories.GetStory(ctx, sid)
	if err != nil {
		return nil, err
	}
	if story.CreatedBy != userID {
		return nil, ErrForbidden
	}
	return story, nil
}

// GetAllStories lists the user's stories newest first.
func (s *StoryService) GetAllStories(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Story, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.stories.ListStoriesByUser(ctx, userID, page, limit)
}
