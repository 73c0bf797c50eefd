package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/models"
)

const storyJSON = `{
  "storyTitle": "The Brave Turtle",
  "storyDescription": "A turtle learns courage",
  "storyContent": [
    {"pageText": "Page one text."},
    {"pageText": "Page two text."},
    {"pageText": "Page three text."},
    {"pageText": "Page four text."}
  ]
}`

func newTestStoryService(completer *fakeCompleter, images *fakeImageGen) (*StoryService, *memStoryStore, *fakeIndexer) {
	store := newMemStoryStore()
	indexer := &fakeIndexer{}
	var gen ai.ImageGenerator
	if images != nil {
		gen = images
	}
	svc := NewStoryService(store, &fakeRetriever{}, completer, gen, newMemBlobStore(), indexer)
	return svc, store, indexer
}

func createReq(includeImage bool) *models.CreateStoryRequest {
	return &models.CreateStoryRequest{
		StoryTitle:       "The Brave Turtle",
		StoryDescription: "A turtle learns courage",
		ChildAge:         6,
		MaxPages:         4,
		IncludeImage:     includeImage,
	}
}

func TestCreateStoryParsesFencedAndUnfencedIdentically(t *testing.T) {
	userID := primitive.NewObjectID()

	plain, _, _ := newTestStoryService(&fakeCompleter{responses: []string{storyJSON}}, nil)
	fenced, _, _ := newTestStoryService(&fakeCompleter{responses: []string{"```json\n" + storyJSON + "\n```"}}, nil)

	storyA, err := plain.CreateStory(context.Background(), createReq(false), userID, "Parent")
	if err != nil {
		t.Fatalf("unfenced: %v", err)
	}
	storyB, err := fenced.CreateStory(context.Background(), createReq(false), userID, "Parent")
	if err != nil {
		t.Fatalf("fenced: %v", err)
	}

	if len(storyA.StoryContent) != len(storyB.StoryContent) {
		t.Fatalf("page counts differ: %d vs %d", len(storyA.StoryContent), len(storyB.StoryContent))
	}
	for i := range storyA.StoryContent {
		if storyA.StoryContent[i].PageText != storyB.StoryContent[i].PageText {
			t.Errorf("page %d differs", i)
		}
	}
}

func TestCreateStoryRejectsInvalidModelOutput(t *testing.T) {
	userID := primitive.NewObjectID()

	for _, raw := range []string{
		"this is not json at all",
		`{"storyTitle": "x", "storyContent": []}`,
		`{"storyTitle": "x"}`,
	} {
		svc, _, _ := newTestStoryService(&fakeCompleter{responses: []string{raw}}, nil)
		_, err := svc.CreateStory(context.Background(), createReq(false), userID, "Parent")
		if !errors.Is(err, ErrInvalidLLMOutput) {
			t.Errorf("response %q: expected ErrInvalidLLMOutput, got %v", raw, err)
		}
	}
}

func TestCreateStoryRejectsExcessPages(t *testing.T) {
	sixPages := `{
  "storyTitle": "The Brave Turtle",
  "storyContent": [
    {"pageText": "One."}, {"pageText": "Two."}, {"pageText": "Three."},
    {"pageText": "Four."}, {"pageText": "Five."}, {"pageText": "Six."}
  ]
}`
	userID := primitive.NewObjectID()
	svc, store, _ := newTestStoryService(&fakeCompleter{responses: []string{sixPages}}, nil)

	// createReq caps the story at four pages.
	_, err := svc.CreateStory(context.Background(), createReq(false), userID, "Parent")
	if !errors.Is(err, ErrInvalidLLMOutput) {
		t.Fatalf("expected ErrInvalidLLMOutput for a six page response, got %v", err)
	}
	if stories, _, _ := store.ListStoriesByUser(context.Background(), userID, 1, 10); len(stories) != 0 {
		t.Errorf("over-long story was persisted: %d stories", len(stories))
	}
}

func TestCreateStoryContextTruncatesOnRuneBoundaries(t *testing.T) {
	// 500 three-byte runes: a byte-indexed cut at 400 would land inside
	// a character and corrupt the prompt.
	retriever := &fakeRetriever{texts: []string{strings.Repeat("亀", 500)}}
	completer := &fakeCompleter{responses: []string{storyJSON}}
	store := newMemStoryStore()
	svc := NewStoryService(store, retriever, completer, nil, newMemBlobStore(), &fakeIndexer{})

	req := createReq(false)
	req.UseBooksContext = true
	if _, err := svc.CreateStory(context.Background(), req, primitive.NewObjectID(), "Parent"); err != nil {
		t.Fatal(err)
	}

	if !utf8.ValidString(completer.lastSystem) {
		t.Fatal("system prompt contains a split multi-byte character")
	}
	if !strings.Contains(completer.lastSystem, strings.Repeat("亀", 400)) {
		t.Error("expected 400 characters of context in the prompt")
	}
	if strings.Contains(completer.lastSystem, strings.Repeat("亀", 401)) {
		t.Error("context was not truncated to 400 characters")
	}
}

func TestCreateStoryPropagatesUpstreamFailure(t *testing.T) {
	svc, _, _ := newTestStoryService(&fakeCompleter{err: errors.New("model down")}, nil)
	_, err := svc.CreateStory(context.Background(), createReq(false), primitive.NewObjectID(), "Parent")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCreateStoryWithoutImagesNeverCallsImageCapability(t *testing.T) {
	images := &fakeImageGen{url: "https://img.example/1.png"}
	svc, _, _ := newTestStoryService(&fakeCompleter{responses: []string{storyJSON}}, images)

	_, err := svc.CreateStory(context.Background(), createReq(false), primitive.NewObjectID(), "Parent")
	if err != nil {
		t.Fatal(err)
	}
	if images.calls != 0 {
		t.Fatalf("expected zero image calls, got %d", images.calls)
	}
}

func TestCreateStoryIllustratesEveryThirdPagePattern(t *testing.T) {
	images := &fakeImageGen{err: errors.New("image provider down")}
	svc, _, _ := newTestStoryService(&fakeCompleter{responses: []string{storyJSON}}, images)

	story, err := svc.CreateStory(context.Background(), createReq(true), primitive.NewObjectID(), "Parent")
	if err != nil {
		t.Fatal(err)
	}

	// Pages 0, 2, 3 get illustration attempts; page 1 is skipped.
	if images.calls != 3 {
		t.Errorf("expected 3 illustration attempts for 4 pages, got %d", images.calls)
	}
	// Failed illustrations leave the page without an image but never
	// fail the story.
	for i, page := range story.StoryContent {
		if page.PageImage != "" {
			t.Errorf("page %d should have no image after generation failure", i)
		}
	}
}

func TestCreateStoryIndexesResult(t *testing.T) {
	svc, store, indexer := newTestStoryService(&fakeCompleter{responses: []string{storyJSON}}, nil)

	story, err := svc.CreateStory(context.Background(), createReq(false), primitive.NewObjectID(), "Parent")
	if err != nil {
		t.Fatal(err)
	}
	if len(indexer.indexed) != 1 || indexer.indexed[0] != story.ID.Hex() {
		t.Errorf("expected story indexed under its ID, got %v", indexer.indexed)
	}
	if _, err := store.GetStory(context.Background(), story.ID); err != nil {
		t.Errorf("story not persisted: %v", err)
	}
}

func TestCreateStorySurvivesIndexFailure(t *testing.T) {
	store := newMemStoryStore()
	svc := NewStoryService(store, &fakeRetriever{}, &fakeCompleter{responses: []string{storyJSON}}, nil, newMemBlobStore(), &fakeIndexer{err: errors.New("index down")})

	story, err := svc.CreateStory(context.Background(), createReq(false), primitive.NewObjectID(), "Parent")
	if err != nil {
		t.Fatalf("index failure must not fail creation: %v", err)
	}
	if _, err := store.GetStory(context.Background(), story.ID); err != nil {
		t.Errorf("story not persisted: %v", err)
	}
}

func TestGetStoryEnforcesOwnership(t *testing.T) {
	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()
	svc, store, _ := newTestStoryService(&fakeCompleter{responses: []string{storyJSON}}, nil)

	id, err := store.InsertStory(context.Background(), &models.Story{CreatedBy: owner})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetStory(context.Background(), id.Hex(), owner); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.GetStory(context.Background(), id.Hex(), intruder); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.GetStory(context.Background(), "not-an-id", owner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed ID, got %v", err)
	}
}
