// Package services – ChatService
//
// This file implements ChatService, the application-level component that
// owns the lifecycle of tutoring conversations. It validates inputs, checks
// conversation ownership, routes topics to a provider model, and persists
// the user/assistant message pairs.
//
// Failure containment: the external model capability may time out, be rate
// limited, or return garbage. None of that surfaces to the student as an
// error. The orchestrator substitutes a fixed fallback utterance and appends
// it as a normal assistant message, keeping the conversation well-formed so
// the user can simply retry.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// user/topic/conversation identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// openingUtterance is the synthetic first user turn sent to the model
	// when a conversation starts. It is never persisted.
	openingUtterance = "Hello, I'd like to start practicing for the GMAT."

	// welcomeFallback replaces a failed welcome-turn generation.
	welcomeFallback = "Welcome to GMAT practice! I'm your AI assistant ready to help you prepare for the exam. What topic would you like to focus on today?"

	// genericFallback replaces a failed assistant reply.
	genericFallback = "I'm sorry, there was an error processing your request. Please try again."

	// busyFallback replaces an assistant reply rejected by provider rate limits.
	busyFallback = "I'm receiving a lot of requests right now. Please give me a moment and try again."
)

// ChatService coordinates topics, conversations, and assistant replies.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// LLM is the external model capability.
	LLM llm.Chat
	// Policy routes topics to provider models.
	Policy ModelPolicy

	// MaxPromptRunes caps posted message length; 0 disables the check.
	MaxPromptRunes int

	Log zerolog.Logger
}

// Topics returns the full topic catalogue.
func (s *ChatService) Topics(ctx context.Context) ([]domain.Topic, error) {
	return repo.ListTopics(ctx, s.DB)
}

// Topic returns a single topic or ErrTopicNotFound.
func (s *ChatService) Topic(ctx context.Context, id uint) (*domain.Topic, error) {
	t, err := repo.GetTopic(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return t, nil
}

// OpenTopic returns the user's active conversation for a topic, creating one
// (with a generated welcome message) when none exists. An existing active
// conversation is returned untouched, so reopening a topic resumes where the
// student left off.
func (s *ChatService) OpenTopic(ctx context.Context, userID, topicID uint) (*domain.Conversation, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "OpenTopic",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Int64("topic.id", int64(topicID)),
		),
	)
	defer span.End()

	topic, err := s.Topic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	conv, err := repo.ActiveConversation(ctx, s.DB, userID, topicID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	return s.createWithWelcome(ctx, userID, topic)
}

// StartConversation always creates a fresh conversation for the topic, with
// a generated welcome message, regardless of any existing active one.
func (s *ChatService) StartConversation(ctx context.Context, userID, topicID uint) (*domain.Conversation, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "StartConversation",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Int64("topic.id", int64(topicID)),
		),
	)
	defer span.End()

	topic, err := s.Topic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return s.createWithWelcome(ctx, userID, topic)
}

// createWithWelcome creates the conversation record, asks the capability for
// an opening assistant turn, and appends it. A capability failure degrades to
// the fixed welcome fallback; the conversation is created either way.
func (s *ChatService) createWithWelcome(ctx context.Context, userID uint, topic *domain.Topic) (*domain.Conversation, error) {
	model := s.Policy.Select(topic.Title)
	conv, err := repo.CreateConversation(ctx, s.DB, userID, topic.ID, model)
	if err != nil {
		return nil, err
	}

	content, responseID := welcomeFallback, ""
	reply, err := s.LLM.Complete(ctx, llm.Request{
		Instructions: topic.Prompt,
		Turns:        []llm.Turn{{Role: domain.RoleUser, Content: openingUtterance}},
		Model:        model,
	})
	if err != nil {
		s.Log.Warn().Err(err).
			Uint("conversation_id", conv.ID).
			Str("model", model).
			Msg("welcome generation failed, using fallback")
	} else if strings.TrimSpace(reply.Content) != "" {
		content, responseID = reply.Content, reply.ResponseID
	}

	if _, err := repo.CreateMessage(s.DB.WithContext(ctx), conv.ID, domain.RoleAssistant, content, responseID); err != nil {
		return nil, err
	}
	return conv, nil
}

// PostMessage appends a user turn to the conversation and returns the
// generated assistant reply. The user's message is persisted before the
// capability is invoked and is never rolled back.
func (s *ChatService) PostMessage(ctx context.Context, userID, convID uint, text string) (*domain.Message, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "PostMessage",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Int64("conversation.id", int64(convID)),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(text) > s.MaxPromptRunes {
		return nil, ErrTooLong
	}

	conv, err := repo.GetConversation(ctx, s.DB, convID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrForbidden
	}

	topic, err := s.Topic(ctx, conv.TopicID)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	if _, err := repo.CreateMessage(db, conv.ID, domain.RoleUser, text, ""); err != nil {
		return nil, err
	}

	history, err := repo.ListMessages(db, conv.ID, 0)
	if err != nil {
		return nil, err
	}
	prevID, err := repo.LastResponseID(db, conv.ID)
	if err != nil {
		return nil, err
	}

	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}

	content, responseID := "", ""
	reply, err := s.LLM.Complete(ctx, llm.Request{
		Instructions:       topic.Prompt,
		Turns:              turns,
		Model:              conv.Model,
		PreviousResponseID: prevID,
	})
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		content = busyFallback
		s.Log.Warn().Err(err).
			Uint("conversation_id", conv.ID).
			Msg("reply rate limited, using busy fallback")
	case err != nil:
		content = genericFallback
		s.Log.Warn().Err(err).
			Uint("conversation_id", conv.ID).
			Msg("reply generation failed, using fallback")
	case strings.TrimSpace(reply.Content) == "":
		content = genericFallback
		s.Log.Warn().
			Uint("conversation_id", conv.ID).
			Msg("empty reply from model, using fallback")
	default:
		content, responseID = reply.Content, reply.ResponseID
	}

	return repo.CreateMessage(db, conv.ID, domain.RoleAssistant, content, responseID)
}

// Conversations lists all conversations owned by the user, newest first.
func (s *ChatService) Conversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	return repo.ListConversations(ctx, s.DB, userID)
}

// Conversation fetches a conversation, enforcing that the caller owns it or
// is an admin.
func (s *ChatService) Conversation(ctx context.Context, userID uint, isAdmin bool, convID uint) (*domain.Conversation, error) {
	conv, err := repo.GetConversation(ctx, s.DB, convID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return conv, nil
}

// Messages returns the full ordered history of a conversation, enforcing the
// same access rule as Conversation.
func (s *ChatService) Messages(ctx context.Context, userID uint, isAdmin bool, convID uint) ([]domain.Message, error) {
	if _, err := s.Conversation(ctx, userID, isAdmin, convID); err != nil {
		return nil, err
	}
	return repo.ListMessages(s.DB.WithContext(ctx), convID, 0)
}
