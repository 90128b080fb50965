// Package conversation owns the append-only message log and the shared
// context map layered on top of a session's conversation.
package conversation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/session"
	"github.com/omnichat/orchestrator/internal/store"
)

// ErrConversationNotFound is returned when no conversation row exists for a
// session. Conversations are created with their session, never lazily.
var ErrConversationNotFound = errors.New("conversation not found")

// Manager provides context and message-log operations for conversations.
type Manager struct {
	store    store.Store
	sessions *session.Manager
	now      func() time.Time
}

// NewManager creates a conversation manager.
func NewManager(st store.Store, sessions *session.Manager) *Manager {
	return &Manager{
		store:    st,
		sessions: sessions,
		now:      time.Now,
	}
}

// GetContext returns the full conversation (message log, context map,
// channel, owning user) or (nil, nil) if no conversation exists.
func (m *Manager) GetContext(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	if sessionID == "" {
		return nil, nil
	}
	return m.store.GetConversation(ctx, sessionID)
}

// AppendMessage appends one message to the log and refreshes last-activity.
// The log is append-only; nothing is ever truncated or reordered.
func (m *Manager) AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string, intent domain.Intent) (*domain.Message, error) {
	msg := &domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Intent:    intent,
		CreatedAt: m.now(),
	}
	if err := m.store.CreateMessage(ctx, msg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if err := m.sessions.Touch(ctx, sessionID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		return nil, err
	}
	return msg, nil
}

// MergeContext shallow-merges update into the conversation's context map,
// last write wins per key, and refreshes last-activity.
func (m *Manager) MergeContext(ctx context.Context, sessionID string, update domain.ContextUpdate) (*domain.Context, error) {
	conv, err := m.store.GetConversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	merged := conv.Context
	merged.Apply(update)

	now := m.now()
	if err := m.store.UpdateConversationContext(ctx, sessionID, merged, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if err := m.sessions.Touch(ctx, sessionID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		return nil, err
	}
	return &merged, nil
}

// RecentMessages returns the last limit messages in chronological order.
func (m *Manager) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	return m.store.GetRecentMessages(ctx, sessionID, limit)
}

// SwitchChannel delegates to the session manager and keeps the
// conversation's channel field consistent.
func (m *Manager) SwitchChannel(ctx context.Context, sessionID string, channel domain.Channel) (*domain.Conversation, error) {
	if _, err := m.sessions.SwitchChannel(ctx, sessionID, channel); err != nil {
		return nil, err
	}
	return m.GetContext(ctx, sessionID)
}
