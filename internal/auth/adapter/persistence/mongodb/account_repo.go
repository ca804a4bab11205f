package mongodb

import (
	"context"
	"errors"
	"time"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/domain/repository"
	apperrors "gomarket/internal/shared/errors"
	"gomarket/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAccountRepository implements the AccountRepository interface using MongoDB.
type MongoAccountRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

// NewMongoAccountRepository creates an account repository over the "users"
// collection and ensures its unique email index.
func NewMongoAccountRepository(db *mongo.Database, log logger.Logger) (*MongoAccountRepository, error) {
	repo := &MongoAccountRepository{
		collection: db.Collection("users"),
		log:        log.WithComponent("mongo-account-repo"),
	}

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.collection.Indexes().CreateOne(context.Background(), emailIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// CreateUser creates a new user in the database.
func (r *MongoAccountRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return apperrors.NewValidationError("user cannot be nil")
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("email is already taken").WithCause(err)
		}
		r.log.Errorf("failed to create user: %v", err)
		return err
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (r *MongoAccountRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *MongoAccountRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces the stored password hash for a user.
func (r *MongoAccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	update := bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.log.Errorf("failed to update password for user %s: %v", id, err)
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Ensure MongoAccountRepository implements the AccountRepository interface
var _ repository.AccountRepository = (*MongoAccountRepository)(nil)
