package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	usersCollection := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parent_email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := usersCollection.Indexes().CreateMany(context.Background(), userIndexes)
	if err != nil {
		return err
	}

	storiesCollection := db.Collection("stories")
	storyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err = storiesCollection.Indexes().CreateMany(context.Background(), storyIndexes)
	if err != nil {
		return err
	}

	booksCollection := db.Collection("books")
	bookIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploaded_by", Value: 1}, {Key: "upload_date", Value: -1}}},
		{Keys: bson.D{{Key: "is_indexed", Value: 1}}},
	}
	_, err = booksCollection.Indexes().CreateMany(context.Background(), bookIndexes)
	if err != nil {
		return err
	}

	// Assignments are get-or-create keyed by (story, owner)
	assignmentsCollection := db.Collection("assignments")
	assignmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sid", Value: 1}, {Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err = assignmentsCollection.Indexes().CreateMany(context.Background(), assignmentIndexes)
	if err != nil {
		return err
	}

	// Feedbacks are append-only per submission, newest wins on read
	feedbacksCollection := db.Collection("feedbacks")
	feedbackIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sid", Value: 1}, {Key: "uid", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err = feedbacksCollection.Indexes().CreateMany(context.Background(), feedbackIndexes)
	if err != nil {
		return err
	}

	audiosCollection := db.Collection("audios")
	audioIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sid", Value: 1}}},
	}
	_, err = audiosCollection.Indexes().CreateMany(context.Background(), audioIndexes)
	if err != nil {
		return err
	}

	// Library chunks collection for vector search filters
	chunksCollection := db.Collection("library_chunks")
	chunkIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "source_id", Value: 1}}},
		{Keys: bson.D{{Key: "chunk_id", Value: 1}}},
	}
	_, err = chunksCollection.Indexes().CreateMany(context.Background(), chunkIndexes)
	if err != nil {
		return err
	}

	return nil
}
