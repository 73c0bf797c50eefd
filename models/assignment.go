package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is one comprehension question with its reference answer.
// UserAnswer stays empty until the child submits answers.
type Question struct {
	Question   string `bson:"question" json:"question"`
	Answer     string `bson:"answer" json:"answer"`
	UserAnswer string `bson:"user_answer" json:"userAnswer"`
}

// Assignment is created lazily per (story, owner) pair and is idempotent:
// a second request returns the existing one instead of regenerating.
type Assignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SID       primitive.ObjectID `bson:"sid" json:"sid"`
	UID       primitive.ObjectID `bson:"uid" json:"uid"`
	Questions []Question         `bson:"questions" json:"questions"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// SubmitAnswersRequest carries one answer per assignment question.
type SubmitAnswersRequest struct {
	Answers []string `json:"answers" binding:"required,len=5"`
}
