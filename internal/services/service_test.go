package services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/llm"
)

// newTestDB opens a throwaway file-backed sqlite store with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/svc.db"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{}, &domain.Topic{}, &domain.Conversation{}, &domain.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fakeChat records requests and returns scripted replies.
type fakeChat struct {
	reply llm.Reply
	err   error
	calls []llm.Request
}

func (f *fakeChat) Complete(_ context.Context, req llm.Request) (llm.Reply, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return llm.Reply{}, f.err
	}
	return f.reply, nil
}

func testPolicy() ModelPolicy {
	return ModelPolicy{
		QuantModel:   "o3-mini",
		DefaultModel: "gpt-4o",
		Keywords:     []string{"quant", "problem solving", "data sufficiency", "math", "數學"},
	}
}
