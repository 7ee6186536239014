// Package shopify owns the commerce boundary: the inbound webhook payload
// schema with its documented field-fallback rules, vendor status
// normalization, and the Admin API client used for the stock metafield
// side query.
package shopify

import (
	"strconv"
	"strings"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
	"github.com/tbourn/go-shopify-slack-notifier/internal/status"
	"github.com/tbourn/go-shopify-slack-notifier/internal/sysutil"
)

// Money is a single presentment amount inside a price set.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// PriceSet mirrors Shopify's *_set money pairs.
type PriceSet struct {
	PresentmentMoney Money `json:"presentment_money"`
	ShopMoney        Money `json:"shop_money"`
}

// Fulfillment is a nested fulfillment record carried by order payloads.
type Fulfillment struct {
	Status          string   `json:"status"`
	TrackingNumbers []string `json:"tracking_numbers"`
	TrackingCompany string   `json:"tracking_company"`
}

// Customer is the order's contact block. Used only when this service
// synthesizes the root announcement itself; never included in status
// replies.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// OrderPayload is the explicit input schema for an inbound order webhook.
// Every field is optional at the JSON level; the accessor methods below
// encode the fallback rules, so callers never chain raw fields.
type OrderPayload struct {
	ID          int64  `json:"id"`
	OrderNumber int64  `json:"order_number"`
	Name        string `json:"name"`

	FinancialStatus   string `json:"financial_status"`
	PaymentStatus     string `json:"payment_status"` // legacy alias some senders use
	FulfillmentStatus string `json:"fulfillment_status"`

	Gateway       string    `json:"gateway"`
	TotalPrice    string    `json:"total_price"`
	TotalPriceSet *PriceSet `json:"total_price_set"`

	TrackingNumbers []string      `json:"tracking_numbers"`
	TrackingCompany string        `json:"tracking_company"`
	Fulfillments    []Fulfillment `json:"fulfillments"`

	Customer *Customer `json:"customer"`
}

// OrderKey extracts the canonical order key, preferring the explicit
// order number, then the display name ("#1278"), then the internal id.
// A candidate that canonicalizes to nothing (a non-numeric name, say)
// falls through to the next one. Returns "" when the payload carries no
// usable identifier.
func (p *OrderPayload) OrderKey() string {
	num := ""
	if p.OrderNumber > 0 {
		num = strconv.FormatInt(p.OrderNumber, 10)
	}
	id := ""
	if p.ID > 0 {
		id = strconv.FormatInt(p.ID, 10)
	}
	for _, cand := range []string{num, p.Name, id} {
		if key := domain.CanonicalOrderKey(cand); key != "" {
			return key
		}
	}
	return ""
}

// vendorStatus maps raw vendor vocabulary to the canonical form used by
// the formatter tables and last-value comparisons.
var vendorStatus = map[string]string{
	"pending":             "payment pending",
	"partially_fulfilled": "partially fulfilled",
	"partial":             "partially fulfilled",
}

// NormalizeStatus converts a raw vendor status to canonical form:
// lower-cased, whitespace collapsed, known vendor values translated, and
// underscores turned into spaces ("partially_paid" -> "partially paid").
func NormalizeStatus(raw string) string {
	norm := status.Normalize(raw)
	if mapped, ok := vendorStatus[norm]; ok {
		return mapped
	}
	return strings.ReplaceAll(norm, "_", " ")
}

// PaymentValue returns the canonical payment-domain value, honoring the
// financial_status → payment_status fallback. "" means not present.
func (p *OrderPayload) PaymentValue() string {
	return NormalizeStatus(sysutil.FirstNonEmpty(p.FinancialStatus, p.PaymentStatus))
}

// FulfillmentValue returns the canonical fulfillment-domain value, or "".
func (p *OrderPayload) FulfillmentValue() string {
	return NormalizeStatus(p.FulfillmentStatus)
}

// Amount returns the order total, preferring total_price and falling
// back to the presentment amount of total_price_set.
func (p *OrderPayload) Amount() string {
	if p.TotalPrice != "" {
		return p.TotalPrice
	}
	if p.TotalPriceSet != nil {
		return p.TotalPriceSet.PresentmentMoney.Amount
	}
	return ""
}

// PaymentDetails builds the supplementary lines for a payment reply.
func (p *OrderPayload) PaymentDetails() []status.Detail {
	var details []status.Detail
	if amt := p.Amount(); amt != "" {
		details = append(details, status.Detail{Key: "Amount", Value: "$" + amt})
	}
	if p.Gateway != "" {
		details = append(details, status.Detail{Key: "Method", Value: p.Gateway})
	}
	return details
}

// FulfillmentDetails builds the supplementary lines for a fulfillment
// reply, falling back to nested fulfillment records when the top-level
// tracking fields are absent.
func (p *OrderPayload) FulfillmentDetails() []status.Detail {
	numbers := p.TrackingNumbers
	company := p.TrackingCompany
	for _, f := range p.Fulfillments {
		if len(numbers) == 0 && len(f.TrackingNumbers) > 0 {
			numbers = f.TrackingNumbers
		}
		if company == "" && f.TrackingCompany != "" {
			company = f.TrackingCompany
		}
	}

	var details []status.Detail
	if len(numbers) > 0 {
		details = append(details, status.Detail{Key: "Tracking", Value: strings.Join(numbers, ", ")})
	}
	if company != "" {
		details = append(details, status.Detail{Key: "Carrier", Value: company})
	}
	return details
}

// CustomerName returns the contact's display name, or "".
func (p *OrderPayload) CustomerName() string {
	if p.Customer == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(p.Customer.FirstName) + " " + strings.TrimSpace(p.Customer.LastName))
}

// AnnouncementText renders the root announcement for self-announce
// deployments. The shape intentionally matches the matcher's primary
// format so a later history scan re-discovers it after a restart.
func (p *OrderPayload) AnnouncementText() string {
	parts := []string{"ST.order #" + p.OrderKey()}
	if name := p.CustomerName(); name != "" {
		parts = append(parts, name)
	}
	if amt := p.Amount(); amt != "" {
		parts = append(parts, "$"+amt)
	}
	return strings.Join(parts, " | ")
}
