package usecase

import (
	"context"
	"errors"
	"time"

	"gomarket/internal/auth/cache"
	"gomarket/internal/auth/config"
	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/domain/repository"
	apperrors "gomarket/internal/shared/errors"
	"gomarket/internal/shared/logger"
)

// SessionManagerInterface defines the contract for session lifecycle operations.
type SessionManagerInterface interface {
	Create(ctx context.Context, userID, email, role string) (*model.SessionRecord, error)
	Resolve(ctx context.Context, sessionID string) (*model.SessionRecord, error)
	ResolveCached(sessionID string) *model.SessionRecord
	Update(ctx context.Context, sessionID string, fields map[string]string) (bool, error)
	Destroy(ctx context.Context, sessionID string) error
	DestroyAllForUser(ctx context.Context, userID string) (int64, error)
	ListActive(ctx context.Context) ([]*model.SessionRecord, error)
	Stats(ctx context.Context) (*SessionStats, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// SessionStats is a read-only administrative view over non-expired sessions.
// It must never feed an authorization decision.
type SessionStats struct {
	Total  int64            `json:"total"`
	Active int64            `json:"active"` // activity within the configured window
	ByRole map[string]int64 `json:"byRole"`
}

// SessionManager owns session creation, resolution with sliding expiration,
// partial updates, and destruction. Reads go cache-first with the durable
// store as authority; writes always go through the store.
type SessionManager struct {
	store  repository.SessionStore
	cache  *cache.Cache
	config *config.Config
	log    logger.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewSessionManager creates a session manager over the given store and cache.
// The cache instance must be the same one handed to the fast-path reader.
func NewSessionManager(
	store repository.SessionStore,
	c *cache.Cache,
	cfg *config.Config,
	log logger.Logger,
) *SessionManager {
	return &SessionManager{
		store:  store,
		cache:  c,
		config: cfg,
		log:    log.WithComponent("session-manager"),
		now:    time.Now,
	}
}

// Create validates the role, generates a fresh identifier, persists the record
// and mirrors it into the cache. Storage errors propagate: the caller must not
// claim a session exists when the write failed.
func (m *SessionManager) Create(ctx context.Context, userID, email, role string) (*model.SessionRecord, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required")
	}
	parsedRole, err := model.ParseRole(role)
	if err != nil {
		return nil, err
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	nowMillis := m.now().UnixMilli()
	record := &model.SessionRecord{
		SessionID:    sessionID,
		UserID:       userID,
		Email:        email,
		Role:         parsedRole,
		CreatedAt:    nowMillis,
		ExpiresAt:    nowMillis + m.config.SessionTTL.Milliseconds(),
		LastActivity: nowMillis,
	}

	if err := m.store.Put(ctx, record); err != nil {
		m.log.WithContext(ctx).Errorf("failed to persist new session for user %s: %v", userID, err)
		return nil, apperrors.NewInfrastructureError("failed to create session").WithCause(err)
	}
	m.cache.Set(sessionID, record)

	return record, nil
}

// Resolve looks up a session by identifier: cache first, durable store on a
// miss or stale entry. Expired records are lazily deleted from both tiers.
// A plain miss returns (nil, nil); the read path never fails open, so storage
// errors also resolve to absent.
func (m *SessionManager) Resolve(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	if sessionID == "" {
		return nil, nil
	}

	nowMillis := m.now().UnixMilli()

	if record, _, ok := m.cache.Get(sessionID); ok {
		if record.Expired(nowMillis) {
			m.expire(ctx, sessionID)
			return nil, nil
		}
		return m.maybeRenew(ctx, record), nil
	}

	record, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			// Fail closed: a storage hiccup is anonymous, never authenticated.
			m.log.WithContext(ctx).Errorf("session store read failed: %v", err)
		}
		return nil, nil
	}
	if record.Expired(nowMillis) {
		m.expire(ctx, sessionID)
		return nil, nil
	}

	m.cache.Set(sessionID, record)
	return m.maybeRenew(ctx, record), nil
}

// ResolveCached is the fast-path lookup: it consults only the in-process
// cache, honoring both the cache TTL and the record's own expiry, and never
// touches the durable store. It may return absent for a session that exists
// durably but has not been cached on this process; callers must treat that as
// "unknown", not as proof of absence, and must not use this path for
// authorization decisions that require certainty.
func (m *SessionManager) ResolveCached(sessionID string) *model.SessionRecord {
	if sessionID == "" {
		return nil
	}
	record, _, ok := m.cache.Get(sessionID)
	if !ok {
		return nil
	}
	if record.Expired(m.now().UnixMilli()) {
		return nil
	}
	return record
}

// Update applies a partial update to a session. Only the email field is
// mutable; userId, createdAt and the identifier itself are silently stripped,
// and role reassignment is not supported through this path. Returns false
// without error when the session does not exist.
func (m *SessionManager) Update(ctx context.Context, sessionID string, fields map[string]string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	record, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return false, nil
		}
		return false, apperrors.NewInfrastructureError("failed to load session for update").WithCause(err)
	}
	if record.Expired(m.now().UnixMilli()) {
		m.expire(ctx, sessionID)
		return false, nil
	}

	if _, ok := fields["role"]; ok {
		return false, apperrors.NewValidationError("role cannot be changed through session update")
	}
	if email, ok := fields["email"]; ok && email != "" {
		if !model.ValidEmail(email) {
			return false, apperrors.NewValidationError("invalid email format")
		}
		record.Email = email
	}
	record.LastActivity = m.now().UnixMilli()

	if err := m.store.Put(ctx, record); err != nil {
		m.log.WithContext(ctx).Errorf("failed to update session %s: %v", sessionID, err)
		return false, apperrors.NewInfrastructureError("failed to update session").WithCause(err)
	}

	// Invalidate, do not repopulate: the next resolve re-fetches authoritative
	// data instead of trusting this process's view.
	m.cache.Delete(sessionID)

	return true, nil
}

// Destroy removes a session from both tiers. Destroying an absent or already
// destroyed session is not an error.
func (m *SessionManager) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	m.cache.Delete(sessionID)
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.log.WithContext(ctx).Errorf("failed to delete session %s: %v", sessionID, err)
		return apperrors.NewInfrastructureError("failed to delete session").WithCause(err)
	}
	return nil
}

// DestroyAllForUser revokes every session belonging to a user and returns the
// number destroyed. Used on password change and forced global logout. Zero
// matches is not an error.
func (m *SessionManager) DestroyAllForUser(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperrors.NewValidationError("userId is required")
	}

	records, err := m.store.FindByUserID(ctx, userID)
	if err != nil {
		return 0, apperrors.NewInfrastructureError("failed to query user sessions").WithCause(err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	deleted, err := m.store.DeleteMany(ctx, records)
	for _, record := range records {
		m.cache.Delete(record.SessionID)
	}
	if err != nil {
		return deleted, apperrors.NewInfrastructureError("failed to revoke user sessions").WithCause(err)
	}

	m.log.WithContext(ctx).Infof("revoked %d sessions for user %s", deleted, userID)
	return deleted, nil
}

// ListActive enumerates currently non-expired sessions, bounded by the
// configured listing cap.
func (m *SessionManager) ListActive(ctx context.Context) ([]*model.SessionRecord, error) {
	records, err := m.store.ListActive(ctx, m.now().UnixMilli(), m.config.ListingCap)
	if err != nil {
		return nil, apperrors.NewInfrastructureError("failed to list sessions").WithCause(err)
	}
	return records, nil
}

// Stats derives aggregate counts from the bounded active listing.
func (m *SessionManager) Stats(ctx context.Context) (*SessionStats, error) {
	records, err := m.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	stats := &SessionStats{ByRole: make(map[string]int64)}
	activeSince := m.now().UnixMilli() - m.config.ActiveWindow.Milliseconds()
	for _, record := range records {
		stats.Total++
		if record.LastActivity >= activeSince {
			stats.Active++
		}
		stats.ByRole[string(record.Role)]++
	}
	return stats, nil
}

// CleanupExpired deletes one bounded batch of expired records and returns the
// count removed. Safe to invoke repeatedly and concurrently: deleting an
// already-deleted record is a no-op, so racing invocations never double-count
// against the store.
func (m *SessionManager) CleanupExpired(ctx context.Context) (int64, error) {
	nowMillis := m.now().UnixMilli()

	expired, err := m.store.FindExpiredBefore(ctx, nowMillis, m.config.CleanupBatchSize)
	if err != nil {
		return 0, apperrors.NewInfrastructureError("failed to query expired sessions").WithCause(err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	deleted, err := m.store.DeleteMany(ctx, expired)
	for _, record := range expired {
		m.cache.Delete(record.SessionID)
	}
	if err != nil {
		return deleted, apperrors.NewInfrastructureError("failed to delete expired sessions").WithCause(err)
	}

	m.log.Infof("cleanup removed %d expired sessions", deleted)
	return deleted, nil
}

// maybeRenew applies sliding expiration: when the time since the last recorded
// activity crosses the configured threshold, the expiry is recomputed from now
// and written back. The staleness gate batches writes so an active user's
// session slides forward without a store write on every request. A failed
// renewal write is logged and the session stays valid until its old expiry.
func (m *SessionManager) maybeRenew(ctx context.Context, record *model.SessionRecord) *model.SessionRecord {
	nowMillis := m.now().UnixMilli()
	if nowMillis-record.LastActivity < m.config.ActivityThreshold.Milliseconds() {
		return record
	}

	renewed := record.Clone()
	renewed.LastActivity = nowMillis
	renewed.ExpiresAt = nowMillis + m.config.SessionTTL.Milliseconds()

	if err := m.store.Put(ctx, renewed); err != nil {
		m.log.WithContext(ctx).Errorf("failed to renew session %s: %v", record.SessionID, err)
		return record
	}

	// Invalidate so the next read repopulates from the authoritative store.
	m.cache.Delete(record.SessionID)

	return renewed
}

// expire lazily removes a record that was observed past its expiry.
func (m *SessionManager) expire(ctx context.Context, sessionID string) {
	m.cache.Delete(sessionID)
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.log.WithContext(ctx).Warnf("failed to delete expired session %s: %v", sessionID, err)
	}
}

// Ensure SessionManager implements SessionManagerInterface
var _ SessionManagerInterface = (*SessionManager)(nil)
