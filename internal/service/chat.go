package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/omnichat/orchestrator/internal/agent"
	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/intent"
	"github.com/omnichat/orchestrator/internal/nlg"
	"github.com/omnichat/orchestrator/internal/session"
)

// historyWindow is how many recent messages ground the reply prompt.
const historyWindow = 10

// HandleMessage runs one inbound message through the full pipeline: session
// resolution, intent classification, capability dispatch, reply composition
// and fan-out. Handling is serialized per session.
func (s *Service) HandleMessage(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	if req.Channel != "" && !domain.ValidChannel(req.Channel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, req.Channel)
	}

	sess, err := s.sessions.Ensure(ctx, req.SessionID, req.UserID, req.Channel)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	unlock := s.locks.lock(sess.SessionID)
	defer unlock()

	// A message arriving on a different channel moves the whole session
	// there; the conversation continues uninterrupted.
	if req.Channel != "" && req.Channel != sess.Channel {
		if sess, err = s.sessions.SwitchChannel(ctx, sess.SessionID, req.Channel); err != nil {
			return nil, fmt.Errorf("switch channel: %w", err)
		}
	}
	if req.UserID != "" && req.UserID != sess.UserID {
		switched, err := s.sessions.AttachUser(ctx, sess.SessionID, req.UserID)
		switch {
		case err == nil:
			sess = switched
		case errors.Is(err, session.ErrUserNotFound):
			// An unknown user never fails the conversational path; the
			// session keeps its current identity.
			log.Printf("WARN: unknown user %s on session %s, keeping existing identity", req.UserID, sess.SessionID)
		default:
			return nil, fmt.Errorf("attach user: %w", err)
		}
	}

	msgIntent := intent.Classify(req.Message)

	if _, err := s.conversations.AppendMessage(ctx, sess.SessionID, domain.RoleUser, req.Message, msgIntent); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	result, err := s.dispatch(ctx, msgIntent, sess, req.Message)
	if err != nil {
		return nil, fmt.Errorf("handle %s: %w", msgIntent, err)
	}

	reply := s.composeReply(ctx, sess.SessionID, msgIntent, req.Message, result)

	if _, err := s.conversations.AppendMessage(ctx, sess.SessionID, domain.RoleAssistant, reply, msgIntent); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	if err := s.mergeResultContext(ctx, sess.SessionID, msgIntent, result); err != nil {
		return nil, fmt.Errorf("merge context: %w", err)
	}

	now := s.now()
	if s.publisher != nil {
		event := domain.ChatEvent{
			SessionID: sess.SessionID,
			Role:      domain.RoleAssistant,
			Content:   reply,
			Intent:    msgIntent,
			Result:    result,
			Timestamp: now,
		}
		if err := s.publisher.PublishJSON(sess.SessionID, event); err != nil {
			log.Printf("WARN: publish chat event failed for %s: %v", sess.SessionID, err)
		}
	}

	return &domain.ChatResponse{
		SessionID: sess.SessionID,
		Intent:    msgIntent,
		Reply:     reply,
		Result:    result,
		Channel:   sess.Channel,
		UserID:    sess.UserID,
		Timestamp: now,
	}, nil
}

func (s *Service) dispatch(ctx context.Context, msgIntent domain.Intent, sess *domain.Session, message string) (any, error) {
	switch msgIntent {
	case domain.IntentInventory:
		return s.agents.Inventory.Handle(ctx, sess.UserID, message)
	case domain.IntentPayment:
		return s.agents.Payment.Handle(ctx, sess.UserID, sess.Channel, message)
	case domain.IntentFulfillment:
		return s.agents.Fulfillment.Handle(ctx, sess.UserID, message)
	case domain.IntentLoyalty:
		return s.agents.Loyalty.Handle(ctx, sess.UserID, message)
	case domain.IntentPostPurchase:
		return s.agents.PostPurchase.Handle(ctx, sess.UserID, message)
	default:
		return s.agents.Recommendation.Handle(ctx, sess.UserID, message)
	}
}

// composeReply renders the handler result into conversational text. A
// generator failure never fails the message; the structured result still
// reaches the caller alongside a plain fallback.
func (s *Service) composeReply(ctx context.Context, sessionID string, msgIntent domain.Intent, message string, result any) string {
	history, err := s.conversations.RecentMessages(ctx, sessionID, historyWindow)
	if err != nil {
		log.Printf("WARN: loading history for reply failed for %s: %v", sessionID, err)
	}

	prompt := nlg.BuildReplyPrompt(msgIntent, message, result, history)
	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("WARN: reply generation failed for %s: %v", sessionID, err)
		return fallbackReply(msgIntent)
	}
	return reply
}

func fallbackReply(msgIntent domain.Intent) string {
	switch msgIntent {
	case domain.IntentPayment:
		return "Your payment request has been processed. Please check the order details."
	case domain.IntentFulfillment:
		return "Your fulfillment preference has been recorded."
	case domain.IntentInventory:
		return "Here is the latest stock information."
	case domain.IntentLoyalty:
		return "Your loyalty benefits have been applied."
	case domain.IntentPostPurchase:
		return "Your request has been noted. Our team will follow up."
	}
	return "Here are some products you might like."
}

// mergeResultContext records the outcome of the turn in conversation
// context: the current focus always, plus handler-specific state.
func (s *Service) mergeResultContext(ctx context.Context, sessionID string, msgIntent domain.Intent, result any) error {
	focus := msgIntent
	update := domain.ContextUpdate{CurrentFocus: &focus}

	if rec, ok := result.(agent.RecommendationResult); ok && len(rec.Products) > 0 {
		update.SelectedProducts = rec.SKUs()
	}

	_, err := s.conversations.MergeContext(ctx, sessionID, update)
	return err
}
