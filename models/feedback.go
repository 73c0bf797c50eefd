package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackItem is one graded answer. Rating is 0-5.
type FeedbackItem struct {
	Question              string `bson:"question" json:"question"`
	Answer                string `bson:"answer" json:"answer"`
	UserAnswer            string `bson:"user_answer" json:"userAnswer"`
	Rating                int    `bson:"rating" json:"rating"`
	Feedback              string `bson:"feedback" json:"feedback"`
	PositiveReinforcement string `bson:"positive_reinforcement,omitempty" json:"positiveReinforcement,omitempty"`
}

// Feedback records one grading run. Every submission inserts a new
// document; reads return the newest for the (story, owner) pair.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SID       primitive.ObjectID `bson:"sid" json:"sid"`
	UID       primitive.ObjectID `bson:"uid" json:"uid"`
	Feedbacks []FeedbackItem     `bson:"feedbacks" json:"feedbacks"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
