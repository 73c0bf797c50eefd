package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestTranscriber(t *testing.T, handler http.Handler) *AssemblyAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewAssemblyAIClient("test-key", srv.URL)
	c.pollInterval = time.Millisecond
	return c
}

func TestTranscribeSubmitsAndPolls(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcript", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req transcriptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.AudioURL != "https://cdn.example.com/reading.mp3" {
			t.Errorf("unexpected audio url %q", req.AudioURL)
		}
		json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "queued"})
	})
	mux.HandleFunc("GET /transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "processing"})
			return
		}
		json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "completed", Text: "the quick brown fox"})
	})

	c := newTestTranscriber(t, mux)
	text, err := c.Transcribe(context.Background(), "https://cdn.example.com/reading.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if text != "the quick brown fox" {
		t.Errorf("unexpected transcript %q", text)
	}
	if polls.Load() != 2 {
		t.Errorf("expected 2 polls, got %d", polls.Load())
	}
}

func TestTranscribeJobError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcript", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transcriptResponse{ID: "job-2", Status: "error", Error: "unusable audio"})
	})

	c := newTestTranscriber(t, mux)
	_, err := c.Transcribe(context.Background(), "https://cdn.example.com/bad.mp3")
	if err == nil || !strings.Contains(err.Error(), "unusable audio") {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestTranscribeHTTPError(t *testing.T) {
	c := newTestTranscriber(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	_, err := c.Transcribe(context.Background(), "https://cdn.example.com/reading.mp3")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestTranscribeRespectsContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcript", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transcriptResponse{ID: "job-3", Status: "queued"})
	})
	mux.HandleFunc("GET /transcript/job-3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transcriptResponse{ID: "job-3", Status: "processing"})
	})

	c := newTestTranscriber(t, mux)
	c.pollInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Transcribe(ctx, "https://cdn.example.com/reading.mp3")
	if err == nil {
		t.Fatal("expected context cancellation")
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	c := NewAssemblyAIClient("", "")
	if _, err := c.Transcribe(context.Background(), "https://cdn.example.com/reading.mp3"); err == nil {
		t.Fatal("expected error without api key")
	}
}
