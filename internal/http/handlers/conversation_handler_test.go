package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

func chatHandlers(chat ChatService) *Handlers {
	return New(nil, chat, nil, nil, CookieOptions{})
}

func TestListTopicsHandler(t *testing.T) {
	chat := &stubChat{
		topicsFn: func(context.Context) ([]domain.Topic, error) {
			return []domain.Topic{{ID: 1, Title: "Quant - Problem Solving"}}, nil
		},
	}
	r := newTestRouter(chatHandlers(chat), 7, false)

	w := doJSON(r, http.MethodGet, "/topics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Quant - Problem Solving") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetTopicHandler(t *testing.T) {
	chat := &stubChat{
		topicFn: func(ctx context.Context, id uint) (*domain.Topic, error) {
			if id == 3 {
				return &domain.Topic{ID: 3, Title: "Integrated Reasoning"}, nil
			}
			return nil, services.ErrTopicNotFound
		},
	}
	r := newTestRouter(chatHandlers(chat), 7, false)

	w := doJSON(r, http.MethodGet, "/topics/3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("existing topic: status = %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/topics/99", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing topic: status = %d, want 404", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/topics/abc", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want 400", w.Code)
	}
}

func TestStartConversationHandler(t *testing.T) {
	chat := &stubChat{
		startFn: func(ctx context.Context, userID, topicID uint) (*domain.Conversation, error) {
			if userID != 7 || topicID != 2 {
				t.Errorf("args = (%d, %d), want (7, 2)", userID, topicID)
			}
			return &domain.Conversation{ID: 11, UserID: userID, TopicID: topicID, Model: "gpt-4o"}, nil
		},
	}
	r := newTestRouter(chatHandlers(chat), 7, false)

	w := doJSON(r, http.MethodPost, "/conversations", `{"topic_id":2}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"id":11`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestStartConversationHandlerValidation(t *testing.T) {
	r := newTestRouter(chatHandlers(&stubChat{}), 7, false)

	for _, body := range []string{`{}`, `{"topic_id":0}`, `not json`} {
		w := doJSON(r, http.MethodPost, "/conversations", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestStartConversationHandlerUnknownTopic(t *testing.T) {
	chat := &stubChat{
		startFn: func(context.Context, uint, uint) (*domain.Conversation, error) {
			return nil, services.ErrTopicNotFound
		},
	}
	r := newTestRouter(chatHandlers(chat), 7, false)

	w := doJSON(r, http.MethodPost, "/conversations", `{"topic_id":99}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestOpenTopicHandler(t *testing.T) {
	chat := &stubChat{
		openTopicFn: func(ctx context.Context, userID, topicID uint) (*domain.Conversation, error) {
			if userID != 7 || topicID != 4 {
				t.Errorf("args = (%d, %d), want (7, 4)", userID, topicID)
			}
			return &domain.Conversation{ID: 12, UserID: userID, TopicID: topicID}, nil
		},
	}
	r := newTestRouter(chatHandlers(chat), 7, false)

	w := doJSON(r, http.MethodGet, "/conversations/active/4", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"id":12`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestListConversationsHandler(t *testing.T) {
	chat := &stubChat{
		conversationsFn: func(ctx context.Context, userID uint) ([]domain.Conversation, error) {
			return []domain.Conversation{{ID: 2, UserID: userID}, {ID: 1, UserID: userID}}, nil
		},
	}
	r := newTestRouter(chatHandlers(chat), 7, false)

	w := doJSON(r, http.MethodGet, "/conversations", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"conversations"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetConversationHandlerAccess(t *testing.T) {
	chat := &stubChat{
		conversationFn: func(ctx context.Context, userID uint, isAdmin bool, convID uint) (*domain.Conversation, error) {
			if isAdmin {
				return &domain.Conversation{ID: convID, UserID: 1}, nil
			}
			return nil, services.ErrForbidden
		},
	}

	r := newTestRouter(chatHandlers(chat), 7, false)
	w := doJSON(r, http.MethodGet, "/conversations/9", "", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner: status = %d, want 403", w.Code)
	}

	r = newTestRouter(chatHandlers(chat), 8, true)
	w = doJSON(r, http.MethodGet, "/conversations/9", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", w.Code)
	}
}
