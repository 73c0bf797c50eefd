package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audio is one reading attempt. WholeStory snapshots the reference text
// at upload time so later story edits cannot skew the score. Transcript
// and Score stay nil until the assessment pipeline runs; Score may be
// overwritten on reprocessing.
type Audio struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FilePath   string             `bson:"file_path" json:"filePath"`
	FileName   string             `bson:"file_name" json:"fileName"`
	FileKey    string             `bson:"file_key" json:"-"`
	WholeStory string             `bson:"whole_story" json:"wholeStory"`
	Transcript *string            `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Score      *float64           `bson:"score,omitempty" json:"score,omitempty"`
	SID        primitive.ObjectID `bson:"sid,omitempty" json:"sid,omitempty"`
	UID        primitive.ObjectID `bson:"uid" json:"uid"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

// PunctuationDiff is one sentence-level punctuation mismatch.
type PunctuationDiff struct {
	SentenceIndex         int      `json:"sentence_index"`
	TranscriptPunctuation []string `json:"transcript_punctuation"`
	StoryPunctuation      []string `json:"story_punctuation"`
}

// AudioAssessment is the result payload of one assessment run.
type AudioAssessment struct {
	Transcript          string            `json:"transcript"`
	EnhancedTranscript  string            `json:"enhanced_transcript"`
	Score               float64           `json:"score"`
	PunctuationAnalysis []PunctuationDiff `json:"punctuation_analysis"`
	HighlightedDiff     string            `json:"highlighted_diff"`
}
