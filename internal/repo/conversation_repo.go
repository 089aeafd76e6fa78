// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Conversation model, including the "active conversation" derived query.
//
// Functions:
//
//   - CreateConversation(ctx, db, userID, topicID, model) -> *domain.Conversation, error
//     Inserts a new Conversation row with UTC timestamp.
//
//   - GetConversation(ctx, db, id) -> *domain.Conversation, error
//     Fetches a single conversation by ID, or ErrNotFound if missing.
//
//   - ListConversations(ctx, db, userID) -> []domain.Conversation, error
//     Returns all conversations for a user, newest first.
//
//   - ActiveConversation(ctx, db, userID, topicID) -> *domain.Conversation, error
//     Returns the most recently created conversation for (user, topic),
//     or ErrNotFound when the pair has none. Ties on created_at resolve to
//     the greater id, so the query is deterministic.
//
//   - ListRecent(ctx, db, limit) -> []domain.Conversation, error
//     Returns the newest conversations across all users (admin analytics).
//
// This repository is designed to be wrapped by a higher-level service
// (see services.ChatService) which enforces business rules such as
// ownership and welcome-message creation.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// CreateConversation inserts a new Conversation row owned by userID under
// topicID, pinned to the given model identifier.
func CreateConversation(ctx context.Context, db *gorm.DB, userID, topicID uint, model string) (*domain.Conversation, error) {
	c := &domain.Conversation{
		UserID:    userID,
		TopicID:   topicID,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetConversation fetches a conversation by its ID, or ErrNotFound.
func GetConversation(ctx context.Context, db *gorm.DB, id uint) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns all conversations belonging to userID, ordered
// by creation time descending (most recent first).
func ListConversations(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// ActiveConversation returns the active conversation for (userID, topicID):
// the maximum-created-at row, ties broken by maximum id. ErrNotFound when
// the pair has no conversations yet.
func ActiveConversation(ctx context.Context, db *gorm.DB, userID, topicID uint) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Order("created_at desc, id desc").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountConversations returns the total number of conversations.
func CountConversations(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Conversation{}).Count(&total).Error
	return total, err
}

// ListRecent returns the newest conversations across all users, capped at
// limit. Used by the admin analytics listing.
func ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	q := db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
