package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/models"
)

const enhanceSystemPrompt = `You are the most important part of word error calculator. You will be given two strings 'content' and 'context'. Context is the corrected expected string and content is the sentence or paragraph spoken by the speaker. Your job is to replace the incorrect or out of context words in the content string with the corrected spelling or within context words in the context string. Your job is not to return the final corrected string, just make necessary changes in the content string and output it, not even a word(or character) extra. You don't have to add words or mess with the punctuation, just correct them`

// AudioService handles reading attempt uploads and the assessment
// pipeline: transcribe, correct, score, and diff against the story.
type AudioService struct {
	audios      AudioStore
	stories     StoryStore
	transcriber ai.Transcriber
	completer   ai.Completer
	blobs       BlobStore
}

func NewAudioService(audios AudioStore, stories StoryStore, transcriber ai.Transcriber, completer ai.Completer, blobs BlobStore) *AudioService {
	return &AudioService{
		audios:      audios,
		stories:     stories,
		transcriber: transcriber,
		completer:   completer,
		blobs:       blobs,
	}
}

// UploadAudio stores a reading recording and snapshots the story text
// it will be scored against.
func (a *AudioService) UploadAudio(ctx context.Context, storyID string, userID primitive.ObjectID, fileName string, r io.Reader) (*models.Audio, error) {
	sid, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, ErrNotFound
	}
	story, err := a.stories.GetStory(ctx, sid)
	if err != nil {
		return nil, err
	}

	url, key, err := a.blobs.Put(ctx, "audio", fileName, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store audio file: %w", err)
	}

	audio := &models.Audio{
		FilePath:   url,
		FileName:   fileName,
		FileKey:    key,
		WholeStory: story.WholeText(),
		SID:        sid,
		UID:        userID,
		CreatedAt:  time.Now(),
	}
	id, err := a.audios.InsertAudio(ctx, audio)
	if err != nil {
		return nil, err
	}
	audio.ID = id

	logger.Info("Audio uploaded", "audio_id", id.Hex(), "story_id", storyID)
	return audio, nil
}

// ProcessAudio runs the assessment pipeline on a stored recording.
// The raw transcript is persisted as soon as transcription succeeds so
// a later failure never loses it. Transcript correction is best effort
// and falls back to the raw text; scoring uses whichever survived.
func (a *AudioService) ProcessAudio(ctx context.Context, audioID string) (*models.AudioAssessment, error) {
	aid, err := primitive.ObjectIDFromHex(audioID)
	if err != nil {
		return nil, ErrNotFound
	}
	audio, err := a.audios.GetAudio(ctx, aid)
	if err != nil {
		return nil, err
	}
	if audio.WholeStory == "" {
		return nil, fmt.Errorf("story content not found for audio %s", audioID)
	}

	transcript, err := a.transcriber.Transcribe(ctx, audio.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: transcription failed: %v", ErrUpstream, err)
	}
	if err := a.audios.SetAudioTranscript(ctx, aid, transcript); err != nil {
		return nil, err
	}

	enhanced := a.enhanceTranscript(ctx, transcript, audio.WholeStory)

	score := ReadingScore(audio.WholeStory, enhanced)
	if err := a.audios.SetAudioScore(ctx, aid, score); err != nil {
		return nil, err
	}

	assessment := &models.AudioAssessment{
		Transcript:          transcript,
		EnhancedTranscript:  enhanced,
		Score:               score,
		PunctuationAnalysis: AnalyzePunctuation(transcript, audio.WholeStory),
		HighlightedDiff:     HighlightDifferences(audio.WholeStory, transcript),
	}

	logger.Info("Audio processed", "audio_id", audioID, "score", score)
	return assessment, nil
}

// enhanceTranscript asks the model for context-aware word corrections
// so transcription artifacts do not penalize the reading score. On any
// failure the raw transcript is used as-is.
func (a *AudioService) enhanceTranscript(ctx context.Context, transcript, story string) string {
	userPrompt := fmt.Sprintf("content: %s context: %s", transcript, story)
	corrected, _, err := a.completer.Complete(ctx, enhanceSystemPrompt, userPrompt, 0.2)
	if err != nil || corrected == "" {
		logger.Warn("Transcript enhancement failed, using raw transcript", "error", err)
		return transcript
	}
	return corrected
}

// GetAudioFeedback returns the stored assessment together with the
// story it was read from.
func (a *AudioService) GetAudioFeedback(ctx context.Context, audioID string) (*models.Audio, *models.Story, error) {
	aid, err := primitive.ObjectIDFromHex(audioID)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	audio, err := a.audios.GetAudio(ctx, aid)
	if err != nil {
		return nil, nil, err
	}

	var story *models.Story
	if !audio.SID.IsZero() {
		story, err = a.stories.GetStory(ctx, audio.SID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}
	}
	return audio, story, nil
}
