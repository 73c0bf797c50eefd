package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Source types for library chunks.
const (
	SourceTypeBook  = "book"
	SourceTypeStory = "story"
)

// LibraryChunk is a denormalized chunk for Atlas VectorSearch. Keeping a
// separate collection enables efficient $vectorSearch. Owner and source
// IDs are stored as hex strings so the same filters work in both the
// Atlas and scan search paths. Chunks are immutable once embedded;
// stale chunks from deleted sources may remain but are through-filtered
// by owner on retrieval.
type LibraryChunk struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ChunkID    string             `bson:"chunk_id"`
	OwnerID    string             `bson:"owner_id"`
	SourceID   string             `bson:"source_id"`
	SourceType string             `bson:"source_type"`
	ChildAge   int                `bson:"child_age"`
	Order      int                `bson:"chunk_index"`
	Text       string             `bson:"text"`
	Vector     []float32          `bson:"vector,omitempty"`
}
