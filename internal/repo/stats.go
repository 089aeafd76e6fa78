// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the admin
// analytics endpoints. Each function is context-aware and read-only.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// Totals holds the store-wide entity counts for the analytics summary.
type Totals struct {
	Users         int64
	Conversations int64
	Messages      int64
}

// CountTotals returns the total user, conversation, and message counts.
// All counts reflect the store at call time; there is no caching.
func CountTotals(ctx context.Context, db *gorm.DB) (Totals, error) {
	var t Totals
	if err := db.WithContext(ctx).Model(&domain.User{}).Count(&t.Users).Error; err != nil {
		return Totals{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Conversation{}).Count(&t.Conversations).Error; err != nil {
		return Totals{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Message{}).Count(&t.Messages).Error; err != nil {
		return Totals{}, err
	}
	return t, nil
}

// CountActiveUsersSince returns the number of distinct users owning at least
// one conversation with a message created at or after the cutoff.
func CountActiveUsersSince(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Joins("JOIN messages ON messages.conversation_id = conversations.id").
		Where("messages.created_at >= ?", cutoff).
		Distinct("conversations.user_id").
		Count(&total).Error
	return total, err
}

// MessageCountsByConversation returns a map of conversation id -> message
// count for the given ids. Conversations without messages are absent from
// the map; callers treat missing keys as zero.
func MessageCountsByConversation(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ConversationID uint
		N              int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("conversation_id, COUNT(*) as n").
		Where("conversation_id IN ?", ids).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ConversationID] = r.N
	}
	return out, nil
}
