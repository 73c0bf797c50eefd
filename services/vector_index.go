package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ramprakash852/AI-storyteller/internal/config"
	"github.com/Ramprakash852/AI-storyteller/models"
)

// ScoredChunk pairs an indexed chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk models.LibraryChunk
	Score float64
}

// VectorIndex stores embedded library chunks in MongoDB and answers
// nearest-neighbour queries. When VectorSearchEnabled is set it uses an
// Atlas $vectorSearch index; otherwise it scans the caller-scoped
// candidate set and ranks by cosine similarity in process.
type VectorIndex struct {
	collection *mongo.Collection
	cfg        *config.Config
}

func NewVectorIndex(db *mongo.Database, cfg *config.Config) *VectorIndex {
	return &VectorIndex{
		collection: db.Collection("library_chunks"),
		cfg:        cfg,
	}
}

// UpsertChunks replaces all chunks of a source document with a fresh
// set, keyed by chunk_id so re-indexing is idempotent.
func (v *VectorIndex) UpsertChunks(ctx context.Context, sourceID string, chunks []models.LibraryChunk) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := v.collection.DeleteMany(ctx, bson.M{"source_id": sourceID}); err != nil {
		return fmt.Errorf("failed to clear existing chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]interface{}, len(chunks))
	for i, c := range chunks {
		docs[i] = c
	}
	if _, err := v.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// DeleteSource removes every chunk belonging to a source document.
func (v *VectorIndex) DeleteSource(ctx context.Context, sourceID string) error {
	_, err := v.collection.DeleteMany(ctx, bson.M{"source_id": sourceID})
	if err != nil {
		return fmt.Errorf("failed to delete source chunks: %w", err)
	}
	return nil
}

// Search returns the top-k chunks most similar to the query vector,
// restricted to the given filter.
func (v *VectorIndex) Search(ctx context.Context, queryVector []float32, filter bson.M, k int) ([]ScoredChunk, error) {
	if v.cfg.VectorSearchEnabled {
		return v.atlasSearch(ctx, queryVector, filter, k)
	}
	return v.scanSearch(ctx, queryVector, filter, k)
}

func (v *VectorIndex) atlasSearch(ctx context.Context, queryVector []float32, filter bson.M, k int) ([]ScoredChunk, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.M{
			"index":         v.cfg.VectorIndexName,
			"path":          "vector",
			"queryVector":   queryVector,
			"numCandidates": k * 10,
			"limit":         k,
			"filter":        filter,
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"search_score": bson.M{"$meta": "vectorSearchScore"},
		}}},
	}

	cursor, err := v.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []ScoredChunk
	for cursor.Next(ctx) {
		var doc struct {
			models.LibraryChunk `bson:",inline"`
			SearchScore         float64 `bson:"search_score"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode search result: %w", err)
		}
		results = append(results, ScoredChunk{Chunk: doc.LibraryChunk, Score: doc.SearchScore})
	}
	return results, cursor.Err()
}

func (v *VectorIndex) scanSearch(ctx context.Context, queryVector []float32, filter bson.M, k int) ([]ScoredChunk, error) {
	cursor, err := v.collection.Find(ctx, filter, options.Find().SetLimit(5000))
	if err != nil {
		return nil, fmt.Errorf("chunk scan failed: %w", err)
	}
	defer cursor.Close(ctx)

	var scored []ScoredChunk
	for cursor.Next(ctx) {
		var chunk models.LibraryChunk
		if err := cursor.Decode(&chunk); err != nil {
			return nil, fmt.Errorf("failed to decode chunk: %w", err)
		}
		scored = append(scored, ScoredChunk{
			Chunk: chunk,
			Score: CosineSimilarity(queryVector, chunk.Vector),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
