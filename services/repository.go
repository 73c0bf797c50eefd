package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ramprakash852/AI-storyteller/models"
)

// Narrow per-aggregate store interfaces. Services depend on these, the
// Mongo implementations below are the only production bindings.

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type StoryStore interface {
	InsertStory(ctx context.Context, story *models.Story) (primitive.ObjectID, error)
	GetStory(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	ListStoriesByUser(ctx context.Context, uid primitive.ObjectID, page, limit int) ([]models.Story, int64, error)
}

type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	GetBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	ListBooksByUser(ctx context.Context, uid primitive.ObjectID, page, limit int) ([]models.Book, int64, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) error
	SetBookIndexed(ctx context.Context, id primitive.ObjectID, indexed bool) error
	ListUnindexedBooks(ctx context.Context, limit int) ([]models.Book, error)
}

type AssignmentStore interface {
	FindAssignment(ctx context.Context, sid, uid primitive.ObjectID) (*models.Assignment, error)
	InsertAssignment(ctx context.Context, assignment *models.Assignment) (primitive.ObjectID, error)
	UpdateAssignmentQuestions(ctx context.Context, id primitive.ObjectID, questions []models.Question) error
}

type FeedbackStore interface {
	InsertFeedback(ctx context.Context, feedback *models.Feedback) (primitive.ObjectID, error)
	LatestFeedback(ctx context.Context, sid, uid primitive.ObjectID) (*models.Feedback, error)
}

type AudioStore interface {
	InsertAudio(ctx context.Context, audio *models.Audio) (primitive.ObjectID, error)
	GetAudio(ctx context.Context, id primitive.ObjectID) (*models.Audio, error)
	SetAudioTranscript(ctx context.Context, id primitive.ObjectID, transcript string) error
	SetAudioScore(ctx context.Context, id primitive.ObjectID, score float64) error
}

// MongoRepository implements every store interface over one database
// handle.
type MongoRepository struct {
	users       *mongo.Collection
	stories     *mongo.Collection
	books       *mongo.Collection
	assignments *mongo.Collection
	feedbacks   *mongo.Collection
	audios      *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		users:       db.Collection("users"),
		stories:     db.Collection("stories"),
		books:       db.Collection("books"),
		assignments: db.Collection("assignments"),
		feedbacks:   db.Collection("feedbacks"),
		audios:      db.Collection("audios"),
	}
}

const dbTimeout = 10 * time.Second

func (r *MongoRepository) InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var user models.User
	err := r.users.FindOne(ctx, bson.M{"parent_email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *MongoRepository) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *MongoRepository) InsertStory(ctx context.Context, story *models.Story) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.stories.InsertOne(ctx, story)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert story: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoRepository) GetStory(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var story models.Story
	err := r.stories.FindOne(ctx, bson.M{"_id": id}).Decode(&story)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	return &story, nil
}

func (r *MongoRepository) ListStoriesByUser(ctx context.Context, uid primitive.ObjectID, page, limit int) ([]models.Story, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	filter := bson.M{"created_by": uid}
	total, err := r.stories.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count stories: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.stories.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stories: %w", err)
	}
	defer cursor.Close(ctx)

	stories := make([]models.Story, 0)
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, 0, fmt.Errorf("failed to decode stories: %w", err)
	}
	return stories, total, nil
}

func (r *MongoRepository) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.books.InsertOne(ctx, book)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert book: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoRepository) GetBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var book models.Book
	err := r.books.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return &book, nil
}

func (r *MongoRepository) ListBooksByUser(ctx context.Context, uid primitive.ObjectID, page, limit int) ([]models.Book, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	filter := bson.M{"uploaded_by": uid}
	total, err := r.books.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "upload_date", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.books.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer cursor.Close(ctx)

	books := make([]models.Book, 0)
	if err := cursor.All(ctx, &books); err != nil {
		return nil, 0, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, total, nil
}

func (r *MongoRepository) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.books.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) SetBookIndexed(ctx context.Context, id primitive.ObjectID, indexed bool) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.books.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_indexed": indexed, "updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to update book index flag: %w", err)
	}
	return nil
}

func (r *MongoRepository) ListUnindexedBooks(ctx context.Context, limit int) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "upload_date", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.books.Find(ctx, bson.M{"is_indexed": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list unindexed books: %w", err)
	}
	defer cursor.Close(ctx)

	books := make([]models.Book, 0)
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, nil
}

func (r *MongoRepository) FindAssignment(ctx context.Context, sid, uid primitive.ObjectID) (*models.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var assignment models.Assignment
	err := r.assignments.FindOne(ctx, bson.M{"sid": sid, "uid": uid}).Decode(&assignment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return &assignment, nil
}

func (r *MongoRepository) InsertAssignment(ctx context.Context, assignment *models.Assignment) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.assignments.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert assignment: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoRepository) UpdateAssignmentQuestions(ctx context.Context, id primitive.ObjectID, questions []models.Question) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.assignments.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"questions": questions},
	})
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return nil
}

func (r *MongoRepository) InsertFeedback(ctx context.Context, feedback *models.Feedback) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.feedbacks.InsertOne(ctx, feedback)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoRepository) LatestFeedback(ctx context.Context, sid, uid primitive.ObjectID) (*models.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var feedback models.Feedback
	err := r.feedbacks.FindOne(ctx, bson.M{"sid": sid, "uid": uid}, opts).Decode(&feedback)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find feedback: %w", err)
	}
	return &feedback, nil
}

func (r *MongoRepository) InsertAudio(ctx context.Context, audio *models.Audio) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.audios.InsertOne(ctx, audio)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert audio: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoRepository) GetAudio(ctx context.Context, id primitive.ObjectID) (*models.Audio, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var audio models.Audio
	err := r.audios.FindOne(ctx, bson.M{"_id": id}).Decode(&audio)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find audio: %w", err)
	}
	return &audio, nil
}

func (r *MongoRepository) SetAudioTranscript(ctx context.Context, id primitive.ObjectID, transcript string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.audios.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"transcript": transcript},
	})
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}

func (r *MongoRepository) SetAudioScore(ctx context.Context, id primitive.ObjectID, score float64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := r.audios.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"score": score},
	})
	if err != nil {
		return fmt.Errorf("failed to save score: %w", err)
	}
	return nil
}
