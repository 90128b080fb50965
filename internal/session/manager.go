// Package session owns session identity: creation, lookup, channel switching
// and synchronization between the cache tier and the durable store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/omnichat/orchestrator/internal/cache"
	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/store"
)

// ErrSessionNotFound is returned by operations that require an existing
// session.
var ErrSessionNotFound = errors.New("session not found")

// ErrUserNotFound is returned by AttachUser when the user does not exist.
var ErrUserNotFound = errors.New("user not found")

// Manager keeps session state coherent across the cache and durable tiers.
// The cache is a pure performance layer: every cache failure degrades to a
// durable-store read and is logged, never surfaced.
type Manager struct {
	store store.Store
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewManager creates a session manager. ttl is the inactivity window after
// which sessions expire on both tiers.
func NewManager(st store.Store, c cache.Cache, ttl time.Duration) *Manager {
	return &Manager{
		store: st,
		cache: c,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Updates carries the optional fields merged by Update.
type Updates struct {
	Channel domain.Channel
	UserID  string
}

// Ensure resolves sessionID if given, otherwise creates a new session with a
// freshly generated id. Repeated calls with the same existing id are
// idempotent and return the stored session unchanged.
func (m *Manager) Ensure(ctx context.Context, sessionID, userID string, channel domain.Channel) (*domain.Session, error) {
	if sessionID != "" {
		existing, err := m.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	if channel == "" {
		channel = domain.ChannelWeb
	}
	now := m.now()
	session := &domain.Session{
		SessionID:    "sess-" + uuid.New().String(),
		UserID:       userID,
		Channel:      channel,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.ttl),
	}

	if err := m.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	// The conversation row is created exactly once, here. Append and merge
	// operations never create it implicitly.
	conv := &domain.Conversation{
		SessionID:    session.SessionID,
		UserID:       userID,
		Channel:      channel,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.store.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	m.writeCache(ctx, session)
	return session, nil
}

// Get resolves a session from cache, falling back to the durable store and
// repopulating the cache on a miss. Returns (nil, nil) when the session is
// absent in both tiers.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	raw, ok, err := m.cache.Get(ctx, cache.SessionKey(sessionID))
	if err != nil {
		log.Printf("WARN: session cache get failed, falling back to store: %v", err)
	} else if ok {
		var session domain.Session
		if err := json.Unmarshal(raw, &session); err == nil {
			return &session, nil
		}
		log.Printf("WARN: session cache entry corrupt for %s, falling back to store", sessionID)
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	m.writeCache(ctx, session)
	return session, nil
}

// Update merges the given fields into the session on both tiers, refreshes
// last-activity and pushes the expiry window forward.
func (m *Manager) Update(ctx context.Context, sessionID string, updates Updates) (*domain.Session, error) {
	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if updates.Channel != "" {
		session.Channel = updates.Channel
	}
	if updates.UserID != "" {
		session.UserID = updates.UserID
	}
	now := m.now()
	session.LastActivity = now
	session.ExpiresAt = now.Add(m.ttl)

	if err := m.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	m.writeCache(ctx, session)
	return session, nil
}

// Touch refreshes last-activity and the expiry window after an interaction.
func (m *Manager) Touch(ctx context.Context, sessionID string) error {
	_, err := m.Update(ctx, sessionID, Updates{})
	return err
}

// SwitchChannel moves the session to a new channel without altering any
// other state. The same conversation continues on the new surface.
func (m *Manager) SwitchChannel(ctx context.Context, sessionID string, channel domain.Channel) (*domain.Session, error) {
	session, err := m.Update(ctx, sessionID, Updates{Channel: channel})
	if err != nil {
		return nil, err
	}
	if err := m.store.UpdateConversationChannel(ctx, sessionID, channel, session.LastActivity); err != nil {
		return nil, err
	}
	return session, nil
}

// AttachUser binds an anonymous session to an authenticated user.
func (m *Manager) AttachUser(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	session, err := m.Update(ctx, sessionID, Updates{UserID: user.UserID})
	if err != nil {
		return nil, err
	}
	if err := m.store.UpdateConversationUser(ctx, sessionID, user.UserID); err != nil {
		return nil, err
	}
	return session, nil
}

// Destroy removes the session from both tiers. Used for explicit logout, not
// for normal expiry.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	if err := m.cache.Delete(ctx, cache.SessionKey(sessionID)); err != nil {
		log.Printf("WARN: session cache delete failed for %s: %v", sessionID, err)
	}
	return m.store.DeleteSession(ctx, sessionID)
}

// SweepExpired deletes sessions whose inactivity window has lapsed on the
// durable tier. Cache entries expire on their own TTL.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx, m.now())
}

func (m *Manager) writeCache(ctx context.Context, session *domain.Session) {
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, cache.SessionKey(session.SessionID), raw, m.ttl); err != nil {
		log.Printf("WARN: session cache set failed for %s: %v", session.SessionID, err)
	}
}
