package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageContent is one story page. Ordering is significant: page N's text
// may depend narratively on page N-1.
type PageContent struct {
	PageText  string `bson:"page_text" json:"pageText"`
	PageImage string `bson:"page_image,omitempty" json:"pageImage,omitempty"`
}

type Story struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoryTitle       string             `bson:"story_title" json:"storyTitle"`
	StoryDescription string             `bson:"story_description" json:"storyDescription"`
	StoryContent     []PageContent      `bson:"story_content" json:"storyContent"`
	StoryAuthor      string             `bson:"story_author" json:"storyAuthor"`
	CreatedBy        primitive.ObjectID `bson:"created_by" json:"createdBy"`
	MaxPages         int                `bson:"max_pages" json:"maxPages"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}

// WholeText joins all page text in page order.
func (s *Story) WholeText() string {
	parts := make([]string, 0, len(s.StoryContent))
	for _, page := range s.StoryContent {
		parts = append(parts, page.PageText)
	}
	return strings.Join(parts, " ")
}

type CreateStoryRequest struct {
	StoryTitle        string `json:"storyTitle" binding:"required,min=1,max=200"`
	StoryDescription  string `json:"storyDescription" binding:"required,min=1,max=2000"`
	ChildAge          int    `json:"childAge" binding:"required,min=1,max=17"`
	MaxPages          int    `json:"maxPages" binding:"required,min=1,max=20"`
	IncludeImage      bool   `json:"includeImage"`
	UseBooksContext   bool   `json:"useBooksContext"`
	UseHistoryContext bool   `json:"useHistoryContext"`
}
