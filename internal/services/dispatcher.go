// Package services: the update dispatcher.
//
// This file implements the update dispatcher, the component that turns an
// inbound order event into zero or more threaded Slack replies. It
// resolves the order's thread (store lookup, then history scan), computes
// which status domains actually changed against the last announced
// values, posts the formatted replies, and records a domain's new value
// only once Slack has confirmed the send.
//
// The "last announced value" comparison is the de-duplication mechanism:
// webhook delivery is at-least-once and possibly out of order, so a
// redelivered event must find its status already recorded and post
// nothing.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
	"github.com/tbourn/go-shopify-slack-notifier/internal/shopify"
	"github.com/tbourn/go-shopify-slack-notifier/internal/status"
	"github.com/tbourn/go-shopify-slack-notifier/internal/store"
)

// Outcome classifies how an event was handled. This is the whole
// vocabulary a webhook sender needs: retry later, done, or don't retry.
type Outcome string

const (
	// OutcomeAccepted: the event was processed; replies (if any were due)
	// were attempted.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeDeferred: the order's thread could not be resolved yet; the
	// sender should redeliver once the announcement exists.
	OutcomeDeferred Outcome = "deferred"
	// OutcomeRejected: the event is malformed; retrying is pointless.
	OutcomeRejected Outcome = "rejected"
)

// Result is the structured outcome of one dispatched event. No fault from
// a remote call ever escapes Handle; everything folds into this.
type Result struct {
	Outcome  Outcome
	OrderKey string
	// Reason explains Deferred and Rejected outcomes.
	Reason string
	// Posted lists domains whose reply Slack confirmed during this call.
	Posted []status.Domain
	// Failed lists domains whose send (or side query) failed; their last
	// values stay unchanged so a future event retries them.
	Failed []status.Domain
}

// Announce modes for the orders/create topic. Exactly one is active per
// deployment.
const (
	// AnnounceExternal: an external flow posts the root announcement;
	// orders/create is a no-op here.
	AnnounceExternal = "external"
	// AnnounceSelf: this service posts the root announcement itself.
	AnnounceSelf = "self"
)

// topicDomains scopes inbound topics to the status domains they may
// post. Topics absent from the table are permissive: all domains
// eligible.
var topicDomains = map[string][]status.Domain{
	"orders/updated":      {status.Payment, status.Fulfillment, status.Stock},
	"orders/paid":         {status.Payment},
	"fulfillments/create": {status.Fulfillment},
	"fulfillments/update": {status.Fulfillment},
}

var allDomains = []status.Domain{status.Payment, status.Fulfillment, status.Stock}

// TopicOrdersCreate is handled specially: it never enters the
// locate-and-reply path.
const TopicOrdersCreate = "orders/create"

// eligibleDomains returns the domains an inbound topic may post.
func eligibleDomains(topic string) []status.Domain {
	if d, ok := topicDomains[topic]; ok {
		return d
	}
	return allDomains
}

// metricTopic collapses unrecognized topics to "unknown" so the topic
// metric label stays a fixed vocabulary regardless of what the sender
// puts in the header.
func metricTopic(topic string) string {
	if topic == TopicOrdersCreate {
		return topic
	}
	if _, ok := topicDomains[topic]; ok {
		return topic
	}
	return "unknown"
}

// Dispatcher orchestrates event handling. Construct with NewDispatcher;
// the optional fields can be set before first use.
type Dispatcher struct {
	Store     store.Store
	Locator   *Locator
	Messenger Messenger

	// Stock is the optional commerce boundary; nil disables the stock
	// domain.
	Stock StockChecker

	// AnnounceMode selects the orders/create behavior (AnnounceExternal
	// by default).
	AnnounceMode string

	keys *keyMutex
}

// NewDispatcher wires a dispatcher over the given store, locator, and
// messenger.
func NewDispatcher(st store.Store, loc *Locator, m Messenger) *Dispatcher {
	return &Dispatcher{
		Store:        st,
		Locator:      loc,
		Messenger:    m,
		AnnounceMode: AnnounceExternal,
		keys:         newKeyMutex(),
	}
}

// Handle processes one inbound order event to completion. All work for a
// given order key is serialized, so two concurrent events for the same
// order cannot both read a stale last value and double-post.
func (d *Dispatcher) Handle(ctx context.Context, p *shopify.OrderPayload, topic string) Result {
	tr := otel.Tracer("services/Dispatcher")
	ctx, span := tr.Start(ctx, "Handle",
		trace.WithAttributes(attribute.String("webhook.topic", topic)),
	)
	defer span.End()

	key := p.OrderKey()
	if key == "" {
		eventsTotal.WithLabelValues(metricTopic(topic), string(OutcomeRejected)).Inc()
		return Result{Outcome: OutcomeRejected, Reason: ErrMissingOrderKey.Error()}
	}
	span.SetAttributes(attribute.String("order.key", key))

	unlock := d.keys.lock(key)
	defer unlock()

	var res Result
	if topic == TopicOrdersCreate {
		res = d.handleCreate(ctx, p, key)
	} else {
		res = d.handleUpdate(ctx, p, topic, key)
	}
	eventsTotal.WithLabelValues(metricTopic(topic), string(res.Outcome)).Inc()
	return res
}

// handleUpdate runs the locate → diff → post → record sequence for one
// status event.
func (d *Dispatcher) handleUpdate(ctx context.Context, p *shopify.OrderPayload, topic, key string) Result {
	mapping, err := d.resolve(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("order", key).Msg("tracking store unavailable")
		return Result{Outcome: OutcomeDeferred, OrderKey: key, Reason: "tracking store unavailable"}
	}
	if mapping == nil {
		log.Info().Str("order", key).Msg("no announcement message for order yet, deferring")
		return Result{Outcome: OutcomeDeferred, OrderKey: key, Reason: ErrThreadNotFound.Error()}
	}

	res := Result{Outcome: OutcomeAccepted, OrderKey: key}
	for _, dom := range eligibleDomains(topic) {
		value, details, derr := d.domainValue(ctx, p, dom)
		if derr != nil {
			log.Warn().Err(derr).Str("order", key).Str("domain", string(dom)).
				Msg("status lookup failed, skipping domain for this event")
			res.Failed = append(res.Failed, dom)
			continue
		}
		if value == "" {
			continue
		}
		if last, ok := mapping.Last(dom); ok && last == value {
			continue // already announced
		}

		text := status.Format(dom, value, details)
		if _, perr := d.Messenger.PostReply(ctx, mapping.Channel, mapping.RootID, text); perr != nil {
			// Last value stays untouched so the next event for this status
			// retries the send.
			log.Warn().Err(perr).Str("order", key).Str("domain", string(dom)).
				Msg("reply post failed")
			sendFailures.WithLabelValues(string(dom)).Inc()
			res.Failed = append(res.Failed, dom)
			continue
		}
		repliesTotal.WithLabelValues(string(dom)).Inc()

		upd := &domain.ThreadMapping{OrderKey: key, RootID: mapping.RootID, Channel: mapping.Channel}
		upd.SetLast(dom, value)
		if serr := d.Store.Put(ctx, upd); serr != nil {
			// The reply is already in Slack; losing the record risks one
			// duplicate on the next event, nothing worse.
			log.Error().Err(serr).Str("order", key).Str("domain", string(dom)).
				Msg("failed to record announced status")
		}
		mapping.SetLast(dom, value)
		res.Posted = append(res.Posted, dom)
	}
	return res
}

// handleCreate covers the orders/create topic. In external mode another
// flow posts the announcement and this is a no-op; in self mode the root
// is posted here and the mapping recorded only once Slack confirms its
// ID.
func (d *Dispatcher) handleCreate(ctx context.Context, p *shopify.OrderPayload, key string) Result {
	if d.AnnounceMode != AnnounceSelf {
		log.Info().Str("order", key).Msg("orders/create received, announcement handled externally")
		return Result{Outcome: OutcomeAccepted, OrderKey: key, Reason: "creation handled externally"}
	}

	// Redelivered create: the root already exists.
	if m, err := d.Store.Get(ctx, key); err == nil && m != nil {
		return Result{Outcome: OutcomeAccepted, OrderKey: key, Reason: "already announced"}
	}

	if len(d.Locator.Channels) == 0 {
		return Result{Outcome: OutcomeDeferred, OrderKey: key, Reason: "no announcement channel configured"}
	}
	channel := d.Locator.Channels[0]

	id, err := d.Messenger.PostRoot(ctx, channel, p.AnnouncementText())
	if err != nil {
		log.Warn().Err(err).Str("order", key).Msg("announcement post failed")
		return Result{Outcome: OutcomeDeferred, OrderKey: key, Reason: "announcement post failed"}
	}
	if err := d.Store.Put(ctx, &domain.ThreadMapping{OrderKey: key, RootID: id, Channel: channel}); err != nil {
		// The announcement matches the locator's primary format, so the
		// mapping is re-discoverable from history.
		log.Error().Err(err).Str("order", key).Msg("failed to record new thread mapping")
	}
	return Result{Outcome: OutcomeAccepted, OrderKey: key}
}

// resolve returns the order's thread mapping, discovering and recording
// it from channel history on a store miss. (nil, nil) means not yet
// announced.
func (d *Dispatcher) resolve(ctx context.Context, key string) (*domain.ThreadMapping, error) {
	m, err := d.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}

	rootID, channel, err := d.Locator.Locate(ctx, key)
	if err != nil {
		return nil, err
	}
	if rootID == "" {
		return nil, nil
	}
	if err := d.Store.Put(ctx, &domain.ThreadMapping{OrderKey: key, RootID: rootID, Channel: channel}); err != nil {
		return nil, err
	}
	return d.Store.Get(ctx, key)
}

// domainValue extracts (and for stock, fetches) the canonical new value
// and detail lines for one status domain. "" means the domain is absent
// from this event.
func (d *Dispatcher) domainValue(ctx context.Context, p *shopify.OrderPayload, dom status.Domain) (string, []status.Detail, error) {
	switch dom {
	case status.Payment:
		return p.PaymentValue(), p.PaymentDetails(), nil
	case status.Fulfillment:
		return p.FulfillmentValue(), p.FulfillmentDetails(), nil
	case status.Stock:
		if d.Stock == nil || p.ID <= 0 {
			return "", nil, nil
		}
		raw, err := d.Stock.StockStatus(ctx, uint64(p.ID))
		if err != nil {
			return "", nil, err
		}
		return shopify.NormalizeStatus(raw), nil, nil
	}
	return "", nil, nil
}
