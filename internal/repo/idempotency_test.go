package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

func TestIdempotency_CreateAndGet(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, 1, 2, "key-1", 42, 200, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.MessageID != 42 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, 1, 2, "key-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.MessageID != 42 || got.Status != 200 {
		t.Fatalf("mismatch: %+v", got)
	}
}

func TestIdempotency_DuplicateKey(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, 1, 2, "key", 1, 200, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, 1, 2, "key", 2, 200, time.Hour); err != ErrDuplicate {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	// Different conversation, same key is a distinct tuple.
	if _, err := CreateIdempotency(ctx, db, 1, 3, "key", 3, 200, time.Hour); err != nil {
		t.Fatalf("distinct tuple rejected: %v", err)
	}
}

func TestIdempotency_Expiry(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, 1, 2, "key", 1, 200, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := GetIdempotency(ctx, db, 1, 2, "key", time.Now().UTC().Add(time.Second))
	if err != ErrNotFound {
		t.Fatalf("expired record should be ErrNotFound, got %v", err)
	}
}

func TestIdempotency_ZeroConversationIsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	_, err := GetIdempotency(context.Background(), db, 1, 0, "key", time.Now().UTC())
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
