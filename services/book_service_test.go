package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUploadBookIndexesAndMarks(t *testing.T) {
	books := newMemBookStore()
	indexer := &fakeIndexer{}
	svc := NewBookService(books, newMemBlobStore(), indexer, 1<<20)
	owner := primitive.NewObjectID()

	book, err := svc.UploadBook(context.Background(), owner, 6, "My Book", "An Author", "book.txt", []byte("Once upon a time there was a pond."))
	if err != nil {
		t.Fatal(err)
	}
	if !book.IsIndexed {
		t.Error("book should be marked indexed after a successful pass")
	}
	if len(indexer.indexed) != 1 || indexer.indexed[0] != book.ID.Hex() {
		t.Errorf("expected book indexed under its ID, got %v", indexer.indexed)
	}
	if book.FileType != "txt" {
		t.Errorf("unexpected file type %q", book.FileType)
	}
}

func TestUploadBookSurvivesIndexFailure(t *testing.T) {
	books := newMemBookStore()
	svc := NewBookService(books, newMemBlobStore(), &fakeIndexer{err: errors.New("index down")}, 1<<20)

	book, err := svc.UploadBook(context.Background(), primitive.NewObjectID(), 6, "My Book", "", "book.txt", []byte("Some story text."))
	if err != nil {
		t.Fatalf("index failure must not fail upload: %v", err)
	}
	if book.IsIndexed {
		t.Error("book must stay unindexed when the index write fails")
	}

	pending, err := books.ListUnindexedBooks(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending book for retry, got %d", len(pending))
	}
}

func TestUploadBookRejectsBadInput(t *testing.T) {
	svc := NewBookService(newMemBookStore(), newMemBlobStore(), &fakeIndexer{}, 10)

	if _, err := svc.UploadBook(context.Background(), primitive.NewObjectID(), 6, "T", "", "book.docx", []byte("x")); err == nil {
		t.Error("expected rejection of unsupported extension")
	}
	if _, err := svc.UploadBook(context.Background(), primitive.NewObjectID(), 6, "T", "", "book.txt", []byte("this exceeds the ten byte limit")); err == nil {
		t.Error("expected rejection of oversized file")
	}
}

func TestUploadBookDefaultsTitleFromFilename(t *testing.T) {
	svc := NewBookService(newMemBookStore(), newMemBlobStore(), &fakeIndexer{}, 1<<20)

	book, err := svc.UploadBook(context.Background(), primitive.NewObjectID(), 6, "  ", "", "the-hobbit.txt", []byte("In a hole in the ground."))
	if err != nil {
		t.Fatal(err)
	}
	if book.BookTitle != "the-hobbit" {
		t.Errorf("expected filename-derived title, got %q", book.BookTitle)
	}
}

func TestReindexPendingRetries(t *testing.T) {
	books := newMemBookStore()
	failing := &fakeIndexer{err: errors.New("index down")}
	svc := NewBookService(books, newMemBlobStore(), failing, 1<<20)

	if _, err := svc.UploadBook(context.Background(), primitive.NewObjectID(), 6, "T", "", "b.txt", []byte("text")); err != nil {
		t.Fatal(err)
	}

	// Index recovers; the retry pass picks the book up.
	failing.err = nil
	svc.ReindexPending(context.Background(), 10)

	pending, err := books.ListUnindexedBooks(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending books after retry, got %d", len(pending))
	}
}

func TestDeleteBookEnforcesOwnership(t *testing.T) {
	books := newMemBookStore()
	indexer := &fakeIndexer{}
	svc := NewBookService(books, newMemBlobStore(), indexer, 1<<20)
	owner := primitive.NewObjectID()

	book, err := svc.UploadBook(context.Background(), owner, 6, "T", "", "b.txt", []byte("text"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteBook(context.Background(), book.ID.Hex(), primitive.NewObjectID()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if err := svc.DeleteBook(context.Background(), book.ID.Hex(), owner); err != nil {
		t.Fatal(err)
	}
	if len(indexer.removed) != 1 || indexer.removed[0] != book.ID.Hex() {
		t.Errorf("expected chunks removed for deleted book, got %v", indexer.removed)
	}
	if _, err := books.GetBook(context.Background(), book.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("book still present after delete")
	}
}
