package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is an uploaded library document. IsIndexed flips to true once all
// derived chunks are durably written to the vector index; indexing is
// best-effort and retried out of band, so false never fails the upload.
type Book struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookTitle  string             `bson:"book_title" json:"bookTitle"`
	BookAuthor string             `bson:"book_author,omitempty" json:"bookAuthor,omitempty"`
	FileURL    string             `bson:"file_url" json:"fileUrl"`
	FileKey    string             `bson:"file_key" json:"-"`
	FileType   string             `bson:"file_type" json:"fileType"`
	FileSize   int64              `bson:"file_size" json:"fileSize"`
	RawText    string             `bson:"raw_text" json:"-"`
	UploadedBy primitive.ObjectID `bson:"uploaded_by" json:"uploadedBy"`
	ChildAge   int                `bson:"child_age" json:"childAge"`
	IsIndexed  bool               `bson:"is_indexed" json:"isIndexed"`
	UploadDate time.Time          `bson:"upload_date" json:"uploadDate"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

type BookListResponse struct {
	Books []Book `json:"books"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
