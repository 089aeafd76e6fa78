// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Topic
// model. Topics are seeded once at startup and read-only afterwards, so the
// surface here is create + lookups only.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// CreateTopic inserts a topic record. Used by the seeder only.
func CreateTopic(ctx context.Context, db *gorm.DB, t *domain.Topic) error {
	return db.WithContext(ctx).Create(t).Error
}

// GetTopic fetches a topic by primary key, or ErrNotFound.
func GetTopic(ctx context.Context, db *gorm.DB, id uint) (*domain.Topic, error) {
	var t domain.Topic
	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTopics returns the full catalog in id order.
func ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	var out []domain.Topic
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// CountTopics returns the catalog size; the seeder uses it for idempotence.
func CountTopics(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Topic{}).Count(&total).Error
	return total, err
}
