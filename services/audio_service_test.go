package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/models"
)

func seedAudio(t *testing.T, store *memAudioStore, wholeStory string) primitive.ObjectID {
	t.Helper()
	id, err := store.InsertAudio(context.Background(), &models.Audio{
		FilePath:   "http://localhost/storage/audio/test.mp3",
		FileName:   "test.mp3",
		WholeStory: wholeStory,
		UID:        primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestUploadAudioSnapshotsStoryText(t *testing.T) {
	stories := newMemStoryStore()
	owner := primitive.NewObjectID()
	sid, err := stories.InsertStory(context.Background(), &models.Story{
		CreatedBy: owner,
		StoryContent: []models.PageContent{
			{PageText: "The quick brown fox."},
			{PageText: "It jumped high."},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	audios := newMemAudioStore()
	svc := NewAudioService(audios, stories, &fakeTranscriber{}, &fakeCompleter{responses: []string{""}}, newMemBlobStore())

	audio, err := svc.UploadAudio(context.Background(), sid.Hex(), owner, "reading.mp3", strings.NewReader("fake-audio-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if audio.WholeStory != "The quick brown fox. It jumped high." {
		t.Errorf("unexpected snapshot: %q", audio.WholeStory)
	}
	if audio.FilePath == "" || audio.FileKey == "" {
		t.Errorf("file not stored: %+v", audio)
	}
}

func TestProcessAudioScoresEnhancedTranscript(t *testing.T) {
	audios := newMemAudioStore()
	aid := seedAudio(t, audios, "The quick brown fox.")

	// Transcription misheard one word; enhancement corrects it back.
	transcriber := &fakeTranscriber{transcript: "The quick round fox."}
	completer := &fakeCompleter{responses: []string{"The quick brown fox."}}
	svc := NewAudioService(audios, newMemStoryStore(), transcriber, completer, newMemBlobStore())

	assessment, err := svc.ProcessAudio(context.Background(), aid.Hex())
	if err != nil {
		t.Fatal(err)
	}

	if assessment.Transcript != "The quick round fox." {
		t.Errorf("raw transcript altered: %q", assessment.Transcript)
	}
	if assessment.EnhancedTranscript != "The quick brown fox." {
		t.Errorf("enhancement not applied: %q", assessment.EnhancedTranscript)
	}
	if assessment.Score != 100 {
		t.Errorf("expected score 100 after correction, got %f", assessment.Score)
	}

	stored, err := audios.GetAudio(context.Background(), aid)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Transcript == nil || *stored.Transcript != "The quick round fox." {
		t.Errorf("raw transcript not persisted: %v", stored.Transcript)
	}
	if stored.Score == nil || *stored.Score != 100 {
		t.Errorf("score not persisted: %v", stored.Score)
	}
}

func TestProcessAudioEnhancementFallsBackToRaw(t *testing.T) {
	audios := newMemAudioStore()
	aid := seedAudio(t, audios, "The quick brown fox.")

	transcriber := &fakeTranscriber{transcript: "The quick red fox."}
	completer := &fakeCompleter{err: errors.New("model down")}
	svc := NewAudioService(audios, newMemStoryStore(), transcriber, completer, newMemBlobStore())

	assessment, err := svc.ProcessAudio(context.Background(), aid.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if assessment.EnhancedTranscript != "The quick red fox." {
		t.Errorf("expected raw transcript on enhancement failure, got %q", assessment.EnhancedTranscript)
	}
	if math.Abs(assessment.Score-75.0) > 1e-9 {
		t.Errorf("expected score 75.0, got %f", assessment.Score)
	}
}

func TestProcessAudioTranscriptionFailureAborts(t *testing.T) {
	audios := newMemAudioStore()
	aid := seedAudio(t, audios, "The quick brown fox.")

	svc := NewAudioService(audios, newMemStoryStore(), &fakeTranscriber{err: errors.New("service down")}, &fakeCompleter{responses: []string{""}}, newMemBlobStore())

	_, err := svc.ProcessAudio(context.Background(), aid.Hex())
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	stored, err := audios.GetAudio(context.Background(), aid)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Transcript != nil || stored.Score != nil {
		t.Errorf("failed run must not persist results: %+v", stored)
	}
}

func TestProcessAudioProducesDiffArtifacts(t *testing.T) {
	audios := newMemAudioStore()
	aid := seedAudio(t, audios, "Hello, world!")

	transcriber := &fakeTranscriber{transcript: "Hello world."}
	completer := &fakeCompleter{responses: []string{"Hello world."}}
	svc := NewAudioService(audios, newMemStoryStore(), transcriber, completer, newMemBlobStore())

	assessment, err := svc.ProcessAudio(context.Background(), aid.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if len(assessment.PunctuationAnalysis) != 1 {
		t.Fatalf("expected 1 punctuation difference, got %d", len(assessment.PunctuationAnalysis))
	}
	if assessment.HighlightedDiff == "" {
		t.Error("expected non-empty highlighted diff")
	}
}

func TestGetAudioFeedbackReturnsStory(t *testing.T) {
	stories := newMemStoryStore()
	sid, err := stories.InsertStory(context.Background(), &models.Story{StoryTitle: "T"})
	if err != nil {
		t.Fatal(err)
	}

	audios := newMemAudioStore()
	aid, err := audios.InsertAudio(context.Background(), &models.Audio{SID: sid, WholeStory: "text"})
	if err != nil {
		t.Fatal(err)
	}

	svc := NewAudioService(audios, stories, &fakeTranscriber{}, &fakeCompleter{responses: []string{""}}, newMemBlobStore())
	audio, story, err := svc.GetAudioFeedback(context.Background(), aid.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if audio == nil || story == nil {
		t.Fatalf("expected both audio and story, got %v / %v", audio, story)
	}
	if story.StoryTitle != "T" {
		t.Errorf("wrong story returned: %+v", story)
	}
}
