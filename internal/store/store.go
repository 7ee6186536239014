// Package store provides the order tracking store: the single source of
// truth for "which Slack thread belongs to this order" and "which status
// values were already announced". Two implementations exist: a
// process-local in-memory map (the default) and a SQLite-backed variant.
// Dispatch logic must work with either, so nothing here guarantees
// survival across restarts.
package store

import (
	"context"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
)

// Store is the tracking-store contract consumed by the dispatcher.
//
// Lookups and inserts are keyed by the canonical order key only; all
// implementations normalize keys via domain.CanonicalOrderKey so "#1278"
// and " 1278 " address the same entry.
//
// Put has upsert-merge semantics: for an existing entry, RootID and
// Channel are never overwritten, and a nil Last* field in the argument
// preserves the previously recorded value instead of erasing it.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the mapping for an order, or (nil, nil) when none exists.
	// A miss is a legitimate state, not an error.
	Get(ctx context.Context, orderKey string) (*domain.ThreadMapping, error)

	// Put upserts a mapping under its canonical order key (merge, not
	// overwrite).
	Put(ctx context.Context, m *domain.ThreadMapping) error

	// Clear removes an order's mapping. Administrative; removing a missing
	// key is a no-op.
	Clear(ctx context.Context, orderKey string) error
}

// merge folds an update into an existing mapping under the store's merge
// rules. Shared by both implementations.
func merge(existing, update *domain.ThreadMapping) *domain.ThreadMapping {
	out := existing.Clone()
	if update.LastPaymentStatus != nil {
		out.LastPaymentStatus = update.LastPaymentStatus
	}
	if update.LastFulfillmentStatus != nil {
		out.LastFulfillmentStatus = update.LastFulfillmentStatus
	}
	if update.LastStockStatus != nil {
		out.LastStockStatus = update.LastStockStatus
	}
	return out
}
