// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// CreateMessage appends a new message row. Timestamps are assigned here in
// UTC; combined with the autoincrement id this keeps history ordering stable
// and reproducible.
func CreateMessage(db *gorm.DB, conversationID uint, role domain.Role, content, responseID string) (*domain.Message, error) {
	m := &domain.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ResponseID:     responseID,
		CreatedAt:      time.Now().UTC(),
	}
	return m, db.Create(m).Error
}

// ListMessages returns messages ordered deterministically (CreatedAt ASC, ID ASC).
func ListMessages(db *gorm.DB, conversationID uint, limit int) ([]domain.Message, error) {
	var out []domain.Message
	q := db.Where("conversation_id = ?", conversationID).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error (as tests expect).
func CountMessages(db *gorm.DB, conversationID uint) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM messages WHERE conversation_id = ?", conversationID).Scan(&total).Error
	return total, err
}

// GetMessage fetches a message by ID.
func GetMessage(db *gorm.DB, id uint) (*domain.Message, error) {
	var m domain.Message
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// LastResponseID returns the continuation token of the most recent message
// in the conversation that carries one, or "" when none exists.
func LastResponseID(db *gorm.DB, conversationID uint) (string, error) {
	var m domain.Message
	err := db.
		Where("conversation_id = ? AND response_id <> ''", conversationID).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return m.ResponseID, nil
}
