package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/models"
)

// ChunkSearcher is the nearest-neighbour lookup the retriever depends on.
type ChunkSearcher interface {
	Search(ctx context.Context, queryVector []float32, filter bson.M, k int) ([]ScoredChunk, error)
}

// Retriever builds grounding context for story generation from the
// user's indexed library. Retrieval is strictly best effort: any
// failure degrades to an empty context rather than blocking the
// pipeline.
type Retriever struct {
	embedder ai.Embedder
	searcher ChunkSearcher
	topK     int
}

func NewRetriever(embedder ai.Embedder, searcher ChunkSearcher, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{embedder: embedder, searcher: searcher, topK: topK}
}

// RetrieveContext embeds the query and returns up to topK chunk texts
// scoped to the owner, the child's age, and the requested source types.
// When neither source type is requested it returns nil without calling
// the embedder.
func (r *Retriever) RetrieveContext(ctx context.Context, query, ownerID string, childAge int, useBooks, useHistory bool) []string {
	if !useBooks && !useHistory {
		return nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Context retrieval skipped, embedding failed", "error", err, "owner_id", ownerID)
		return nil
	}

	sourceTypes := allowedSourceTypes(useBooks, useHistory)

	// Over-fetch so post-filtering still leaves enough candidates. The
	// Atlas path filters server-side but the scan path checks here too,
	// so both modes enforce the same scoping.
	filter := bson.M{
		"owner_id":    ownerID,
		"child_age":   childAge,
		"source_type": bson.M{"$in": sourceTypes},
	}
	scored, err := r.searcher.Search(ctx, vector, filter, r.topK*3)
	if err != nil {
		logger.Warn("Context retrieval skipped, search failed", "error", err, "owner_id", ownerID)
		return nil
	}

	allowed := make(map[string]bool, len(sourceTypes))
	for _, t := range sourceTypes {
		allowed[t] = true
	}

	var texts []string
	for _, sc := range scored {
		c := sc.Chunk
		if c.OwnerID != ownerID || c.ChildAge != childAge || !allowed[c.SourceType] {
			continue
		}
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		texts = append(texts, c.Text)
		if len(texts) >= r.topK {
			break
		}
	}
	return texts
}

func allowedSourceTypes(useBooks, useHistory bool) []string {
	var types []string
	if useBooks {
		types = append(types, models.SourceTypeBook)
	}
	if useHistory {
		types = append(types, models.SourceTypeStory)
	}
	return types
}
