package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/models"
)

// In-memory test doubles for the store and capability interfaces.

type fakeCompleter struct {
	mu         sync.Mutex
	responses  []string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, ai.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", ai.Usage{}, f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, ai.Usage{}, nil
}

type fakeImageGen struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (f *fakeImageGen) GenerateIllustration(ctx context.Context, pageText string, childAge int, storyTitle string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

type fakeRetriever struct {
	texts []string
	calls int
}

func (f *fakeRetriever) RetrieveContext(ctx context.Context, query, ownerID string, childAge int, useBooks, useHistory bool) []string {
	f.calls++
	if !useBooks && !useHistory {
		return nil
	}
	return f.texts
}

type fakeIndexer struct {
	indexed []string
	removed []string
	err     error
}

func (f *fakeIndexer) IndexDocument(ctx context.Context, ownerID, sourceID, sourceType, title, author, body string, childAge int) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, sourceID)
	return nil
}

func (f *fakeIndexer) RemoveDocument(ctx context.Context, sourceID string) error {
	f.removed = append(f.removed, sourceID)
	return nil
}

type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (m *memBlobStore) Put(ctx context.Context, folder, filename string, r io.Reader) (string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%d-%s", folder, len(m.blobs), filename)
	m.blobs[key] = data
	return "mem://" + key, key, nil
}

func (m *memBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *memUserStore) InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	m.users[id] = &stored
	return id, nil
}

func (m *memUserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ParentEmail == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUserStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

type memBookStore struct {
	mu    sync.Mutex
	books map[primitive.ObjectID]*models.Book
}

func newMemBookStore() *memBookStore {
	return &memBookStore{books: make(map[primitive.ObjectID]*models.Book)}
}

func (m *memBookStore) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *book
	stored.ID = id
	m.books[id] = &stored
	return id, nil
}

func (m *memBookStore) GetBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memBookStore) ListBooksByUser(ctx context.Context, uid primitive.ObjectID, page, limit int) ([]models.Book, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Book
	for _, b := range m.books {
		if b.UploadedBy == uid {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memBookStore) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *memBookStore) SetBookIndexed(ctx context.Context, id primitive.ObjectID, indexed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.books[id]; ok {
		b.IsIndexed = indexed
	}
	return nil
}

func (m *memBookStore) ListUnindexedBooks(ctx context.Context, limit int) ([]models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Book
	for _, b := range m.books {
		if !b.IsIndexed {
			out = append(out, *b)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type memStoryStore struct {
	mu      sync.Mutex
	stories map[primitive.ObjectID]*models.Story
}

func newMemStoryStore() *memStoryStore {
	return &memStoryStore{stories: make(map[primitive.ObjectID]*models.Story)}
}

func (m *memStoryStore) InsertStory(ctx context.Context, story *models.Story) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *story
	stored.ID = id
	m.stories[id] = &stored
	return id, nil
}

func (m *memStoryStore) GetStory(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	story, ok := m.stories[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *story
	return &copied, nil
}

func (m *memStoryStore) ListStoriesByUser(ctx context.Context, uid primitive.ObjectID, page, limit int) ([]models.Story, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Story
	for _, s := range m.stories {
		if s.CreatedBy == uid {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

type memAssignmentStore struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]*models.Assignment
}

func newMemAssignmentStore() *memAssignmentStore {
	return &memAssignmentStore{assignments: make(map[primitive.ObjectID]*models.Assignment)}
}

func (m *memAssignmentStore) FindAssignment(ctx context.Context, sid, uid primitive.ObjectID) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.SID == sid && a.UID == uid {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memAssignmentStore) InsertAssignment(ctx context.Context, assignment *models.Assignment) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *assignment
	stored.ID = id
	m.assignments[id] = &stored
	return id, nil
}

func (m *memAssignmentStore) UpdateAssignmentQuestions(ctx context.Context, id primitive.ObjectID, questions []models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assignments[id]; ok {
		a.Questions = questions
	}
	return nil
}

type memFeedbackStore struct {
	mu        sync.Mutex
	feedbacks []*models.Feedback
}

func (m *memFeedbackStore) InsertFeedback(ctx context.Context, feedback *models.Feedback) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *feedback
	stored.ID = id
	m.feedbacks = append(m.feedbacks, &stored)
	return id, nil
}

func (m *memFeedbackStore) LatestFeedback(ctx context.Context, sid, uid primitive.ObjectID) (*models.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.feedbacks) - 1; i >= 0; i-- {
		f := m.feedbacks[i]
		if f.SID == sid && f.UID == uid {
			copied := *f
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

type memAudioStore struct {
	mu     sync.Mutex
	audios map[primitive.ObjectID]*models.Audio
}

func newMemAudioStore() *memAudioStore {
	return &memAudioStore{audios: make(map[primitive.ObjectID]*models.Audio)}
}

func (m *memAudioStore) InsertAudio(ctx context.Context, audio *models.Audio) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *audio
	stored.ID = id
	m.audios[id] = &stored
	return id, nil
}

func (m *memAudioStore) GetAudio(ctx context.Context, id primitive.ObjectID) (*models.Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	audio, ok := m.audios[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *audio
	return &copied, nil
}

func (m *memAudioStore) SetAudioTranscript(ctx context.Context, id primitive.ObjectID, transcript string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.audios[id]; ok {
		a.Transcript = &transcript
	}
	return nil
}

func (m *memAudioStore) SetAudioScore(ctx context.Context, id primitive.ObjectID, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.audios[id]; ok {
		a.Score = &score
	}
	return nil
}
