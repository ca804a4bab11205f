package repository

import (
	"context"

	"gomarket/internal/auth/domain/model"
)

// SessionStore is the durable persistence port for session records. The cache
// in front of it is a read optimization only; every write goes through here.
//
// Read operations report an absent record with apperrors.ErrSessionNotFound.
// Delete operations are idempotent: deleting an absent record is not an error.
type SessionStore interface {
	// Put upserts a record keyed by its session ID.
	Put(ctx context.Context, record *model.SessionRecord) error

	// Get returns the record for the given session ID.
	Get(ctx context.Context, sessionID string) (*model.SessionRecord, error)

	// Delete removes a single record.
	Delete(ctx context.Context, sessionID string) error

	// FindByUserID returns every record belonging to a user, for bulk revocation.
	FindByUserID(ctx context.Context, userID string) ([]*model.SessionRecord, error)

	// FindExpiredBefore returns at most limit records with expiresAt < tsMillis.
	FindExpiredBefore(ctx context.Context, tsMillis int64, limit int64) ([]*model.SessionRecord, error)

	// DeleteMany removes the given records best-effort and returns how many were
	// actually deleted. Partial failure must not affect unrelated keys.
	DeleteMany(ctx context.Context, records []*model.SessionRecord) (int64, error)

	// ListActive returns at most limit records with expiresAt > nowMillis.
	ListActive(ctx context.Context, nowMillis int64, limit int64) ([]*model.SessionRecord, error)
}
