// Locator resolution for Slack threads.
//
// This file implements the thread locator: given an order key, scan the
// configured channels' recent history for the message announcing that
// order. The first match in the first channel wins across channels, and
// within a channel the earliest-posted match wins, since the original
// announcement is by definition the oldest candidate.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-shopify-slack-notifier/internal/match"
)

// DefaultHistoryLimit bounds the per-channel history window when no limit
// is configured.
const DefaultHistoryLimit = 200

// Locator searches channel history for an order's root announcement.
type Locator struct {
	// Messenger provides channel history.
	Messenger Messenger
	// Channels is scanned in order; the first channel with a match wins.
	Channels []string
	// Limit caps messages fetched per channel (DefaultHistoryLimit if <= 0).
	Limit int
}

// Locate returns the root message ID and channel announcing orderKey, or
// ("", "", nil) when nothing announces it yet, a legitimate "not yet
// posted" state, not an error. Transport failures against a channel are
// logged and scanning continues with the next channel.
func (l *Locator) Locate(ctx context.Context, orderKey string) (rootID, channel string, err error) {
	tr := otel.Tracer("services/Locator")
	ctx, span := tr.Start(ctx, "Locate",
		trace.WithAttributes(attribute.String("order.key", orderKey)),
	)
	defer span.End()

	limit := l.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	for _, ch := range l.Channels {
		msgs, herr := l.Messenger.History(ctx, ch, limit)
		if herr != nil {
			// Treated as "not found in this channel"; the next channel may
			// still yield a match.
			log.Warn().Err(herr).Str("channel", ch).Str("order", orderKey).
				Msg("history fetch failed, skipping channel")
			locatorScans.WithLabelValues("error").Inc()
			continue
		}

		// History arrives newest first; walk oldest to newest so the
		// first-posted candidate wins when several match.
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			if m.IsReply() {
				continue
			}
			if match.IsOrderAnnouncement(m.Text, orderKey) {
				log.Info().Str("order", orderKey).Str("channel", ch).Str("root", m.ID).
					Msg("located order announcement")
				locatorScans.WithLabelValues("hit").Inc()
				return m.ID, ch, nil
			}
		}
		locatorScans.WithLabelValues("miss").Inc()
	}
	return "", "", nil
}
