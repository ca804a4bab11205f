package mongodb

import (
	"context"
	"errors"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/domain/repository"
	apperrors "gomarket/internal/shared/errors"
	"gomarket/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionStore implements the SessionStore interface over a MongoDB
// collection. Expiry is enforced by the session layer, not by a Mongo TTL
// index: the cleanup job owns deletion so that counts stay observable.
type MongoSessionStore struct {
	collection *mongo.Collection
	log        logger.Logger
}

// NewMongoSessionStore creates a session store over the "sessions" collection
// and ensures its indexes.
func NewMongoSessionStore(db *mongo.Database, log logger.Logger) (*MongoSessionStore, error) {
	store := &MongoSessionStore{
		collection: db.Collection("sessions"),
		log:        log.WithComponent("mongo-session-store"),
	}

	ctx := context.Background()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}
	if _, err := store.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}

	return store, nil
}

// Put upserts a record keyed by its session ID.
func (s *MongoSessionStore) Put(ctx context.Context, record *model.SessionRecord) error {
	if record == nil {
		return apperrors.NewValidationError("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"session_id": record.SessionID}, record, opts)
	if err != nil {
		s.log.Errorf("failed to upsert session %s: %v", record.SessionID, err)
		return err
	}
	return nil
}

// Get returns the record for the given session ID.
func (s *MongoSessionStore) Get(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	var record model.SessionRecord
	err := s.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Delete removes a single record. Deleting an absent record is not an error.
func (s *MongoSessionStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		s.log.Errorf("failed to delete session %s: %v", sessionID, err)
		return err
	}
	return nil
}

// FindByUserID returns every record belonging to a user.
func (s *MongoSessionStore) FindByUserID(ctx context.Context, userID string) ([]*model.SessionRecord, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return decodeRecords(ctx, cursor)
}

// FindExpiredBefore returns at most limit records with expires_at < tsMillis.
func (s *MongoSessionStore) FindExpiredBefore(ctx context.Context, tsMillis int64, limit int64) ([]*model.SessionRecord, error) {
	opts := options.Find().SetLimit(limit)
	cursor, err := s.collection.Find(ctx, bson.M{"expires_at": bson.M{"$lt": tsMillis}}, opts)
	if err != nil {
		return nil, err
	}
	return decodeRecords(ctx, cursor)
}

// DeleteMany removes the given records and returns the count actually deleted.
// The filter targets exact session IDs only, so partial failure can never
// touch unrelated keys.
func (s *MongoSessionStore) DeleteMany(ctx context.Context, records []*model.SessionRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.SessionID)
	}

	result, err := s.collection.DeleteMany(ctx, bson.M{"session_id": bson.M{"$in": ids}})
	if err != nil {
		s.log.Errorf("failed to batch delete %d sessions: %v", len(ids), err)
		return 0, err
	}
	return result.DeletedCount, nil
}

// ListActive returns at most limit records with expires_at > nowMillis,
// most recent activity first.
func (s *MongoSessionStore) ListActive(ctx context.Context, nowMillis int64, limit int64) ([]*model.SessionRecord, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "last_activity", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"expires_at": bson.M{"$gt": nowMillis}}, opts)
	if err != nil {
		return nil, err
	}
	return decodeRecords(ctx, cursor)
}

func decodeRecords(ctx context.Context, cursor *mongo.Cursor) ([]*model.SessionRecord, error) {
	defer cursor.Close(ctx)

	var records []*model.SessionRecord
	for cursor.Next(ctx) {
		var record model.SessionRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure MongoSessionStore implements the SessionStore interface
var _ repository.SessionStore = (*MongoSessionStore)(nil)
