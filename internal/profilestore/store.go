package profilestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/otakushelf/otakushelf/internal/domain"
)

const collectionProfiles = "profiles"

// Store persists per-user profile documents in MongoDB. The pipeline works
// on in-memory copies; Save is the explicit write-back step.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects with pooling configured and verifies the connection.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Store{
		client:     client,
		collection: client.Database(dbName).Collection(collectionProfiles),
	}, nil
}

// Get loads a user's profile document.
func (s *Store) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	var profile domain.Profile
	err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile user=%d: %w", userID, err)
	}
	if profile.TasteVectors == nil {
		profile.TasteVectors = make(map[string]*domain.TasteVector)
	}
	return &profile, nil
}

// Save upserts the whole document.
func (s *Store) Save(ctx context.Context, profile *domain.Profile) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"userId": profile.UserID}, profile, opts)
	if err != nil {
		return fmt.Errorf("save profile user=%d: %w", profile.UserID, err)
	}
	return nil
}

// ForEach streams every profile through fn; used by the decay job.
func (s *Store) ForEach(ctx context.Context, fn func(*domain.Profile) error) error {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var profile domain.Profile
		if err := cursor.Decode(&profile); err != nil {
			return fmt.Errorf("decode profile: %w", err)
		}
		if err := fn(&profile); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// Ping connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
