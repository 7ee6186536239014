package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
	"github.com/tbourn/go-shopify-slack-notifier/internal/repo"
)

// Durable is the SQLite-backed Store. It applies the same canonical-key
// and merge rules as Memory; read-modify-write cycles for one order are
// serialized by the dispatcher's per-key lock, so no row locking is done
// here.
type Durable struct {
	db *gorm.DB
}

// NewDurable wraps a GORM handle (see repo.OpenSQLite / repo.AutoMigrate)
// as a Store.
func NewDurable(db *gorm.DB) *Durable {
	return &Durable{db: db}
}

// Get returns the mapping for orderKey, or (nil, nil) on miss.
func (s *Durable) Get(ctx context.Context, orderKey string) (*domain.ThreadMapping, error) {
	key := domain.CanonicalOrderKey(orderKey)
	if key == "" {
		return nil, nil
	}
	return repo.GetMapping(ctx, s.db, key)
}

// Put upserts m under its canonical order key with merge semantics.
func (s *Durable) Put(ctx context.Context, m *domain.ThreadMapping) error {
	key := domain.CanonicalOrderKey(m.OrderKey)
	if key == "" {
		return ErrNoOrderKey
	}
	now := time.Now().UTC()

	existing, err := repo.GetMapping(ctx, s.db, key)
	if err != nil {
		return err
	}
	if existing != nil {
		merged := merge(existing, m)
		merged.UpdatedAt = now
		return repo.SaveMapping(ctx, s.db, merged)
	}
	cp := m.Clone()
	cp.OrderKey = key
	cp.CreatedAt = now
	cp.UpdatedAt = now
	return repo.SaveMapping(ctx, s.db, cp)
}

// Clear removes the mapping for orderKey, if any.
func (s *Durable) Clear(ctx context.Context, orderKey string) error {
	key := domain.CanonicalOrderKey(orderKey)
	if key == "" {
		return nil
	}
	return repo.DeleteMapping(ctx, s.db, key)
}
