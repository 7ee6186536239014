package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-shopify-slack-notifier/internal/http/middleware"
	"github.com/tbourn/go-shopify-slack-notifier/internal/services"
	"github.com/tbourn/go-shopify-slack-notifier/internal/shopify"
)

// OrderDispatcher is the processing boundary the webhook endpoint talks
// to. It is satisfied by *services.Dispatcher.
type OrderDispatcher interface {
	Handle(ctx context.Context, p *shopify.OrderPayload, topic string) services.Result
}

// Handlers bundles HTTP endpoint dependencies.
type Handlers struct {
	Dispatcher OrderDispatcher
}

// New constructs the handler set over the given dispatcher.
func New(d OrderDispatcher) *Handlers {
	return &Handlers{Dispatcher: d}
}

// WebhookAck is the JSON body returned for every webhook response,
// success or deferral. Code mirrors the dispatch outcome so callers can
// branch without parsing the message.
type WebhookAck struct {
	Code     string `json:"code" example:"accepted"`
	OrderKey string `json:"order_key,omitempty" example:"1278"`
	Message  string `json:"message,omitempty" example:"thread not found yet"`
}

// ShopifyWebhook handles POST /webhooks/shopify.
//
// The event topic is read from the X-Shopify-Topic header; an absent
// header dispatches under "unknown". Status mapping:
//
//	200 - event processed (including intentional no-ops)
//	202 - thread not resolvable yet; the sender should redeliver
//	400 - payload malformed or missing an order identifier
func (h *Handlers) ShopifyWebhook(c *gin.Context) {
	var payload shopify.OrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid webhook payload")
		return
	}

	topic := c.GetHeader("X-Shopify-Topic")
	if topic == "" {
		topic = "unknown"
	}

	res := h.Dispatcher.Handle(c.Request.Context(), &payload, topic)

	lg := middleware.LoggerFrom(c)
	switch res.Outcome {
	case services.OutcomeRejected:
		fail(c, http.StatusBadRequest, ErrCodeOrderUnidentified, res.Reason)
	case services.OutcomeDeferred:
		lg.Info().
			Str("topic", topic).
			Str("order_key", res.OrderKey).
			Str("reason", res.Reason).
			Msg("event deferred")
		ok(c, http.StatusAccepted, WebhookAck{
			Code:     string(res.Outcome),
			OrderKey: res.OrderKey,
			Message:  res.Reason,
		})
	default:
		if len(res.Failed) > 0 {
			lg.Warn().
				Str("topic", topic).
				Str("order_key", res.OrderKey).
				Int("failed_domains", len(res.Failed)).
				Msg("event processed with partial failures")
		}
		ok(c, http.StatusOK, WebhookAck{
			Code:     string(res.Outcome),
			OrderKey: res.OrderKey,
		})
	}
}

// Health handles GET /health. It reports process liveness only.
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}
