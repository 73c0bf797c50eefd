package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/models"
)

// ChunkWriter is the persistence surface the indexer writes through.
type ChunkWriter interface {
	UpsertChunks(ctx context.Context, sourceID string, chunks []models.LibraryChunk) error
	DeleteSource(ctx context.Context, sourceID string) error
}

// Indexer chunks a document, embeds each chunk, and writes the result
// into the vector index under the owner's scope.
type Indexer struct {
	embedder ai.Embedder
	writer   ChunkWriter
	chunker  *Chunker
}

func NewIndexer(embedder ai.Embedder, writer ChunkWriter, chunker *Chunker) *Indexer {
	return &Indexer{embedder: embedder, writer: writer, chunker: chunker}
}

// IndexDocument composes the title, author and body into one text,
// splits it, embeds every chunk, and replaces the source's chunks in
// the index. A single embedding failure aborts the whole document so a
// partially embedded source never lands in the index.
func (ix *Indexer) IndexDocument(ctx context.Context, ownerID, sourceID, sourceType, title, author, body string, childAge int) error {
	text := composeIndexText(title, author, body)
	pieces := ix.chunker.Split(text)
	if len(pieces) == 0 {
		return ix.writer.UpsertChunks(ctx, sourceID, nil)
	}

	chunks := make([]models.LibraryChunk, 0, len(pieces))
	for i, piece := range pieces {
		vector, err := ix.embedder.Embed(ctx, piece)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of %s: %w", i, sourceID, err)
		}
		chunks = append(chunks, models.LibraryChunk{
			ChunkID:    uuid.New().String(),
			OwnerID:    ownerID,
			SourceID:   sourceID,
			SourceType: sourceType,
			ChildAge:   childAge,
			Order:      i,
			Text:       piece,
			Vector:     vector,
		})
	}

	if err := ix.writer.UpsertChunks(ctx, sourceID, chunks); err != nil {
		return fmt.Errorf("failed to store chunks for %s: %w", sourceID, err)
	}
	logger.Info("Document indexed", "source_id", sourceID, "source_type", sourceType, "chunks", len(chunks))
	return nil
}

// RemoveDocument drops a source from the index, used when a book is
// deleted.
func (ix *Indexer) RemoveDocument(ctx context.Context, sourceID string) error {
	return ix.writer.DeleteSource(ctx, sourceID)
}

func composeIndexText(title, author, body string) string {
	var b strings.Builder
	if t := strings.TrimSpace(title); t != "" {
		b.WriteString("Title: " + t + "\n")
	}
	if a := strings.TrimSpace(author); a != "" {
		b.WriteString("Author: " + a + "\n")
	}
	b.WriteString(strings.TrimSpace(body))
	return b.String()
}
