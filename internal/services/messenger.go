package services

import (
	"context"

	"github.com/tbourn/go-shopify-slack-notifier/internal/slackapi"
)

// Messenger is the messaging boundary consumed by the locator and
// dispatcher. The production implementation is slackapi.Client; tests
// substitute fakes.
//
// Implementations must be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type Messenger interface {
	// History returns up to limit recent messages for a channel, newest
	// first.
	History(ctx context.Context, channel string, limit int) ([]slackapi.Message, error)

	// PostReply posts text as a threaded reply under rootID and returns
	// the confirmed new message ID.
	PostReply(ctx context.Context, channel, rootID, text string) (string, error)

	// PostRoot posts a top-level message and returns its confirmed ID.
	PostRoot(ctx context.Context, channel, text string) (string, error)
}

// StockChecker is the optional commerce boundary for the stock domain.
// A nil checker disables stock processing entirely.
type StockChecker interface {
	// StockStatus returns the raw stock-availability value for an order,
	// "" when none is recorded.
	StockStatus(ctx context.Context, orderID uint64) (string, error)
}
