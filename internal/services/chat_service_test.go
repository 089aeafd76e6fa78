package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

func newChat(t *testing.T, fake *fakeChat) (*ChatService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	s := &ChatService{
		DB:             db,
		LLM:            fake,
		Policy:         testPolicy(),
		MaxPromptRunes: 4000,
		Log:            zerolog.Nop(),
	}
	return s, db
}

func seedTopic(t *testing.T, db *gorm.DB, title string) *domain.Topic {
	t.Helper()
	topic := &domain.Topic{
		Title:       title,
		Prompt:      "You are a tutor for " + title + ".",
		Description: "practice",
		Icon:        "calculator",
	}
	if err := repo.CreateTopic(context.Background(), db, topic); err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	return topic
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, username, username+"@example.com", "x", false)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestOpenTopic_CreatesConversationWithWelcome(t *testing.T) {
	fake := &fakeChat{reply: llm.Reply{Content: "Welcome aboard!", ResponseID: "resp_1"}}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Quant - Problem Solving")
	alice := seedUser(t, db, "alice")

	conv, err := s.OpenTopic(ctx, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("OpenTopic: %v", err)
	}
	if conv.Model != "o3-mini" {
		t.Errorf("model = %q, want o3-mini for quant topic", conv.Model)
	}

	msgs, err := repo.ListMessages(db, conv.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1 welcome", len(msgs))
	}
	if msgs[0].Role != domain.RoleAssistant || msgs[0].Content != "Welcome aboard!" {
		t.Errorf("welcome message wrong: %+v", msgs[0])
	}
	if msgs[0].ResponseID != "resp_1" {
		t.Errorf("welcome should carry the continuation token, got %q", msgs[0].ResponseID)
	}

	// The capability saw the topic instructions and the opening utterance.
	if len(fake.calls) != 1 {
		t.Fatalf("capability calls = %d, want 1", len(fake.calls))
	}
	req := fake.calls[0]
	if req.Instructions != topic.Prompt {
		t.Errorf("instructions = %q", req.Instructions)
	}
	if len(req.Turns) != 1 || req.Turns[0].Content != "Hello, I'd like to start practicing for the GMAT." {
		t.Errorf("opening turn wrong: %+v", req.Turns)
	}
}

func TestOpenTopic_ReturnsExistingActiveUntouched(t *testing.T) {
	fake := &fakeChat{reply: llm.Reply{Content: "Welcome!"}}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Verbal - Critical Reasoning")
	alice := seedUser(t, db, "alice")

	first, err := s.OpenTopic(ctx, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("first OpenTopic: %v", err)
	}
	second, err := s.OpenTopic(ctx, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("second OpenTopic: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("reopening created a new conversation: %d != %d", second.ID, first.ID)
	}
	if len(fake.calls) != 1 {
		t.Errorf("capability calls = %d, want 1 (no new welcome)", len(fake.calls))
	}
}

func TestStartConversation_AlwaysCreatesFresh(t *testing.T) {
	fake := &fakeChat{reply: llm.Reply{Content: "Welcome!"}}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Integrated Reasoning")
	alice := seedUser(t, db, "alice")

	first, err := s.StartConversation(ctx, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("first StartConversation: %v", err)
	}
	second, err := s.StartConversation(ctx, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("second StartConversation: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("second conversation id %d should exceed first %d", second.ID, first.ID)
	}

	// The newest one is now the active conversation.
	active, err := repo.ActiveConversation(ctx, db, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("ActiveConversation: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active = %d, want %d", active.ID, second.ID)
	}
	if conv, _ := s.OpenTopic(ctx, alice.ID, topic.ID); conv.ID != second.ID {
		t.Errorf("OpenTopic = %d, want newest %d", conv.ID, second.ID)
	}
}

func TestOpenTopic_UnknownTopic(t *testing.T) {
	s, db := newChat(t, &fakeChat{})
	alice := seedUser(t, db, "alice")
	if _, err := s.OpenTopic(context.Background(), alice.ID, 42); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("err = %v, want ErrTopicNotFound", err)
	}
}

func TestOpenTopic_WelcomeFallbackOnCapabilityFailure(t *testing.T) {
	fake := &fakeChat{err: errors.New("boom")}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Test Strategy & Timing")
	alice := seedUser(t, db, "alice")

	conv, err := s.OpenTopic(ctx, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("OpenTopic should not propagate capability failure: %v", err)
	}
	msgs, _ := repo.ListMessages(db, conv.ID, 0)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if !strings.HasPrefix(msgs[0].Content, "Welcome to GMAT practice!") {
		t.Errorf("welcome fallback missing, got %q", msgs[0].Content)
	}
	if msgs[0].ResponseID != "" {
		t.Errorf("fallback must not carry a continuation token")
	}
}

func TestPostMessage_HappyPath(t *testing.T) {
	fake := &fakeChat{reply: llm.Reply{Content: "It's 4.", ResponseID: "resp_2"}}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Quant - Problem Solving")
	alice := seedUser(t, db, "alice")
	conv, err := s.OpenTopic(ctx, alice.ID, topic.ID)
	if err != nil {
		t.Fatalf("OpenTopic: %v", err)
	}

	reply, err := s.PostMessage(ctx, alice.ID, conv.ID, "What is 2+2?")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if reply.Role != domain.RoleAssistant || reply.Content != "It's 4." {
		t.Errorf("reply = %+v", reply)
	}

	msgs, _ := repo.ListMessages(db, conv.ID, 0)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want welcome/user/reply", len(msgs))
	}
	if msgs[0].Role != domain.RoleAssistant || msgs[1].Role != domain.RoleUser || msgs[2].Role != domain.RoleAssistant {
		t.Errorf("history order wrong: %v %v %v", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}
	if msgs[1].Content != "What is 2+2?" {
		t.Errorf("user turn = %q", msgs[1].Content)
	}

	// Second capability call carries the model pinned at creation, the full
	// history so far, and the welcome's continuation token.
	req := fake.calls[len(fake.calls)-1]
	if req.Model != "o3-mini" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Turns) != 2 {
		t.Errorf("turns = %d, want welcome + user", len(req.Turns))
	}
	if req.PreviousResponseID != "resp_2" && req.PreviousResponseID != "resp_1" {
		// The welcome stored whatever the fake returned on the first call.
		t.Errorf("previous response id = %q", req.PreviousResponseID)
	}
}

func TestPostMessage_ForwardsLatestContinuationToken(t *testing.T) {
	fake := &fakeChat{reply: llm.Reply{Content: "ok", ResponseID: "resp_a"}}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Verbal - Sentence Correction")
	alice := seedUser(t, db, "alice")
	conv, _ := s.OpenTopic(ctx, alice.ID, topic.ID)

	fake.reply = llm.Reply{Content: "ok again", ResponseID: "resp_b"}
	if _, err := s.PostMessage(ctx, alice.ID, conv.ID, "first"); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if _, err := s.PostMessage(ctx, alice.ID, conv.ID, "second"); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}

	last := fake.calls[len(fake.calls)-1]
	if last.PreviousResponseID != "resp_b" {
		t.Errorf("previous response id = %q, want resp_b", last.PreviousResponseID)
	}
}

func TestPostMessage_Validation(t *testing.T) {
	s, db := newChat(t, &fakeChat{reply: llm.Reply{Content: "hi"}})
	ctx := context.Background()

	topic := seedTopic(t, db, "Integrated Reasoning")
	alice := seedUser(t, db, "alice")
	conv, _ := s.OpenTopic(ctx, alice.ID, topic.ID)

	if _, err := s.PostMessage(ctx, alice.ID, conv.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank: err = %v, want ErrEmptyMessage", err)
	}
	s.MaxPromptRunes = 5
	if _, err := s.PostMessage(ctx, alice.ID, conv.ID, "this is too long"); !errors.Is(err, ErrTooLong) {
		t.Errorf("oversized: err = %v, want ErrTooLong", err)
	}
	s.MaxPromptRunes = 4000
	if _, err := s.PostMessage(ctx, alice.ID, 9999, "hello"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("missing conversation: err = %v, want ErrConversationNotFound", err)
	}
}

func TestPostMessage_OwnershipEnforced(t *testing.T) {
	s, db := newChat(t, &fakeChat{reply: llm.Reply{Content: "hi"}})
	ctx := context.Background()

	topic := seedTopic(t, db, "Integrated Reasoning")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv, _ := s.OpenTopic(ctx, alice.ID, topic.ID)

	if _, err := s.PostMessage(ctx, bob.ID, conv.ID, "hello"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestPostMessage_RateLimitFallbackKeepsUserMessage(t *testing.T) {
	fake := &fakeChat{reply: llm.Reply{Content: "Welcome!"}}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Quant - Data Sufficiency")
	alice := seedUser(t, db, "alice")
	conv, _ := s.OpenTopic(ctx, alice.ID, topic.ID)

	fake.err = llm.ErrRateLimited
	reply, err := s.PostMessage(ctx, alice.ID, conv.ID, "Is statement one sufficient?")
	if err != nil {
		t.Fatalf("PostMessage should contain the failure: %v", err)
	}
	if reply.Content != busyFallback {
		t.Errorf("reply = %q, want busy fallback", reply.Content)
	}

	msgs, _ := repo.ListMessages(db, conv.ID, 0)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want welcome/user/fallback", len(msgs))
	}
	if msgs[1].Role != domain.RoleUser || msgs[1].Content != "Is statement one sufficient?" {
		t.Errorf("user message must remain intact: %+v", msgs[1])
	}
	if msgs[2].ResponseID != "" {
		t.Errorf("fallback must not carry a continuation token")
	}
}

func TestPostMessage_GenericFallback(t *testing.T) {
	fake := &fakeChat{reply: llm.Reply{Content: "Welcome!"}}
	s, db := newChat(t, fake)
	ctx := context.Background()

	topic := seedTopic(t, db, "Analytical Writing Assessment")
	alice := seedUser(t, db, "alice")
	conv, _ := s.OpenTopic(ctx, alice.ID, topic.ID)

	fake.err = errors.New("upstream exploded")
	reply, err := s.PostMessage(ctx, alice.ID, conv.ID, "Critique this argument.")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if reply.Content != genericFallback {
		t.Errorf("reply = %q, want generic fallback", reply.Content)
	}
}

func TestConversationAccess(t *testing.T) {
	s, db := newChat(t, &fakeChat{reply: llm.Reply{Content: "Welcome!"}})
	ctx := context.Background()

	topic := seedTopic(t, db, "Verbal - Reading Comprehension")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv, _ := s.OpenTopic(ctx, alice.ID, topic.ID)

	if _, err := s.Conversation(ctx, alice.ID, false, conv.ID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := s.Conversation(ctx, bob.ID, false, conv.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger read: err = %v, want ErrForbidden", err)
	}
	if _, err := s.Conversation(ctx, bob.ID, true, conv.ID); err != nil {
		t.Errorf("admin read: %v", err)
	}
	if _, err := s.Conversation(ctx, alice.ID, false, 9999); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("missing: err = %v, want ErrConversationNotFound", err)
	}

	msgs, err := s.Messages(ctx, alice.ID, false, conv.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("messages = %d, want welcome only", len(msgs))
	}
	if _, err := s.Messages(ctx, bob.ID, false, conv.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger messages: err = %v, want ErrForbidden", err)
	}
}
