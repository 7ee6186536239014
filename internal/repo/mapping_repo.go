// Package repo implements the optional durable persistence layer for
// thread mappings. This file provides the repository functions the
// durable store variant is built on.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
)

// GetMapping fetches the mapping for a canonical order key. Returns
// (nil, nil) when no row exists; a miss is not an error.
func GetMapping(ctx context.Context, db *gorm.DB, orderKey string) (*domain.ThreadMapping, error) {
	var m domain.ThreadMapping
	err := db.WithContext(ctx).First(&m, "order_key = ?", orderKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMapping writes a full mapping row (insert or replace). Merge
// decisions are made by the caller; this is a plain upsert on the
// primary key.
func SaveMapping(ctx context.Context, db *gorm.DB, m *domain.ThreadMapping) error {
	return db.WithContext(ctx).Save(m).Error
}

// DeleteMapping removes the row for orderKey. Deleting a missing key is
// a no-op.
func DeleteMapping(ctx context.Context, db *gorm.DB, orderKey string) error {
	return db.WithContext(ctx).Delete(&domain.ThreadMapping{}, "order_key = ?", orderKey).Error
}
