package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/models"
)

// BookService manages the user's uploaded library and keeps it in sync
// with the vector index.
type BookService struct {
	books   BookStore
	blobs   BlobStore
	indexer DocumentIndexer
	maxSize int64
}

func NewBookService(books BookStore, blobs BlobStore, indexer DocumentIndexer, maxSize int64) *BookService {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &BookService{books: books, blobs: blobs, indexer: indexer, maxSize: maxSize}
}

// UploadBook validates, extracts, stores, and indexes an uploaded book.
// The upload succeeds as soon as the file and record are saved; if
// indexing fails the book stays marked unindexed and the cron retries.
func (b *BookService) UploadBook(ctx context.Context, userID primitive.ObjectID, childAge int, title, author, fileName string, fileContent []byte) (*models.Book, error) {
	if !SupportedBookExtension(fileName) {
		return nil, fmt.Errorf("unsupported file type %q: only .pdf, .txt and .epub are accepted", filepath.Ext(fileName))
	}
	if int64(len(fileContent)) > b.maxSize {
		return nil, fmt.Errorf("file too large: %d bytes exceeds limit of %d", len(fileContent), b.maxSize)
	}

	rawText, err := ExtractBookText(fileName, fileContent)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	url, key, err := b.blobs.Put(ctx, "books", fileName, bytes.NewReader(fileContent))
	if err != nil {
		return nil, fmt.Errorf("failed to store book file: %w", err)
	}

	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	now := time.Now()
	book := &models.Book{
		BookTitle:  title,
		BookAuthor: author,
		FileURL:    url,
		FileKey:    key,
		FileType:   strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), "."),
		FileSize:   int64(len(fileContent)),
		RawText:    rawText,
		UploadedBy: userID,
		ChildAge:   childAge,
		IsIndexed:  false,
		UploadDate: now,
		UpdatedAt:  now,
	}
	id, err := b.books.InsertBook(ctx, book)
	if err != nil {
		return nil, err
	}
	book.ID = id

	b.indexBook(ctx, book)

	logger.Info("Book uploaded", "book_id", id.Hex(), "user_id", userID.Hex(), "indexed", book.IsIndexed)
	return book, nil
}

// indexBook pushes the book into the vector index and flips the
// is_indexed flag on success. Failures only log.
func (b *BookService) indexBook(ctx context.Context, book *models.Book) {
	err := b.indexer.IndexDocument(ctx, book.UploadedBy.Hex(), book.ID.Hex(), models.SourceTypeBook,
		book.BookTitle, book.BookAuthor, book.RawText, book.ChildAge)
	if err != nil {
		logger.Warn("Failed to index book", "book_id", book.ID.Hex(), "error", err)
		return
	}
	if err := b.books.SetBookIndexed(ctx, book.ID, true); err != nil {
		logger.Warn("Failed to mark book indexed", "book_id", book.ID.Hex(), "error", err)
		return
	}
	book.IsIndexed = true
}

// IndexBookByID indexes a single stored book, used by the queue worker.
func (b *BookService) IndexBookByID(ctx context.Context, bookID string) error {
	id, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return ErrNotFound
	}
	book, err := b.books.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if book.IsIndexed {
		return nil
	}
	if err := b.indexer.IndexDocument(ctx, book.UploadedBy.Hex(), book.ID.Hex(), models.SourceTypeBook,
		book.BookTitle, book.BookAuthor, book.RawText, book.ChildAge); err != nil {
		return err
	}
	return b.books.SetBookIndexed(ctx, id, true)
}

// ReindexPending retries indexing for books whose initial attempt
// failed. Called from the scheduler.
func (b *BookService) ReindexPending(ctx context.Context, batchSize int) {
	books, err := b.books.ListUnindexedBooks(ctx, batchSize)
	if err != nil {
		logger.Error("Failed to list unindexed books", "error", err)
		return
	}
	for i := range books {
		b.indexBook(ctx, &books[i])
	}
	if len(books) > 0 {
		logger.Info("Reindex pass finished", "candidates", len(books))
	}
}

// ListBooks returns the user's books newest first.
func (b *BookService) ListBooks(ctx context.Context, userID primitive.ObjectID, page, limit int) (*models.BookListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	books, total, err := b.books.ListBooksByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return &models.BookListResponse{Books: books, Total: total, Page: page, Limit: limit}, nil
}

// DeleteBook removes a book, its chunks, and its stored file. Only the
// uploader may delete it. Blob and index cleanup are best effort once
// the record is gone.
func (b *BookService) DeleteBook(ctx context.Context, bookID string, userID primitive.ObjectID) error {
	id, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return ErrNotFound
	}
	book, err := b.books.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if book.UploadedBy != userID {
		return ErrForbidden
	}

	if err := b.books.DeleteBook(ctx, id); err != nil {
		return err
	}
	if err := b.indexer.RemoveDocument(ctx, id.Hex()); err != nil {
		logger.Warn("Failed to remove book chunks", "book_id", bookID, "error", err)
	}
	if err := b.blobs.Delete(ctx, book.FileKey); err != nil {
		logger.Warn("Failed to delete book file", "book_id", bookID, "error", err)
	}

	logger.Info("Book deleted", "book_id", bookID, "user_id", userID.Hex())
	return nil
}
