package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newIdemRouter(opts IdempotencyOptions, lookup IdempotencyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/conversations/:id/messages",
		func(c *gin.Context) {
			c.Set(ctxKeyUserID, uint(7))
			c.Next()
		},
		IdempotencyValidator(opts, lookup),
		func(c *gin.Context) {
			key, _ := GetIdempotencyKey(c)
			c.JSON(http.StatusOK, gin.H{"key": key, "replay": IsReplay(c)})
		},
	)
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations/12/messages", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyAbsentHeaderIsNoop(t *testing.T) {
	r := newIdemRouter(IdempotencyOptions{}, nil)
	w := postWithKey(r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"key":""`) {
		t.Fatalf("key should be empty: %s", w.Body.String())
	}
}

func TestIdempotencyMalformedKeyRejected(t *testing.T) {
	r := newIdemRouter(IdempotencyOptions{}, nil)

	cases := []string{
		"has spaces in it",
		"emoji-\U0001F600",
		strings.Repeat("x", 201),
	}
	for _, key := range cases {
		w := postWithKey(r, key)
		if w.Code != http.StatusBadRequest {
			t.Errorf("key %.20q: status = %d, want 400", key, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"bad_idempotency_key"`) {
			t.Errorf("key %.20q: body missing error code: %s", key, w.Body.String())
		}
	}
}

func TestIdempotencyValidKeyStashed(t *testing.T) {
	r := newIdemRouter(IdempotencyOptions{}, nil)
	w := postWithKey(r, "retry-abc.123:v1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"key":"retry-abc.123:v1"`) {
		t.Fatalf("key not stashed: %s", body)
	}
	if !strings.Contains(body, `"replay":false`) {
		t.Fatalf("replay should be false without a lookup hit: %s", body)
	}
}

func TestIdempotencyReplayDetection(t *testing.T) {
	var gotUser, gotConv uint
	var gotKey string
	lookup := func(ctx context.Context, userID, conversationID uint, key string, now time.Time) (bool, error) {
		gotUser, gotConv, gotKey = userID, conversationID, key
		return true, nil
	}
	r := newIdemRouter(IdempotencyOptions{}, lookup)

	w := postWithKey(r, "dup-key")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"replay":true`) {
		t.Fatalf("replay not flagged: %s", w.Body.String())
	}
	if gotUser != 7 || gotConv != 12 || gotKey != "dup-key" {
		t.Fatalf("lookup args = (%d, %d, %q), want (7, 12, dup-key)", gotUser, gotConv, gotKey)
	}
}

func TestIdempotencyLookupErrorDoesNotBlock(t *testing.T) {
	lookup := func(ctx context.Context, userID, conversationID uint, key string, now time.Time) (bool, error) {
		return false, context.DeadlineExceeded
	}
	r := newIdemRouter(IdempotencyOptions{}, lookup)

	w := postWithKey(r, "any-key")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"replay":false`) {
		t.Fatalf("lookup error should not mark replay: %s", w.Body.String())
	}
}

func TestConversationIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		raw  string
		want uint
	}{
		{"15", 15},
		{"0", 0},
		{"abc", 0},
		{"-3", 0},
		{"", 0},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if tc.raw != "" {
			c.Params = gin.Params{{Key: "id", Value: tc.raw}}
		}
		if got := conversationIDParam(c); got != tc.want {
			t.Errorf("conversationIDParam(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
