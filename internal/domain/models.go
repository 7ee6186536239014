// Package domain defines the core model shared by the tracking store,
// repository, and dispatch layers: the mapping from an order to its Slack
// thread. The type is mapped with GORM so the durable store variant can
// persist it unchanged.
package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/tbourn/go-shopify-slack-notifier/internal/status"
)

var digitsRE = regexp.MustCompile(`[0-9]+`)

// CanonicalOrderKey normalizes an order identifier to its canonical
// digits-only form: surrounding whitespace and a leading "#" are stripped
// and the first digit run is taken, so "1278", "#1278" and " 1278 " all
// resolve to "1278". Returns "" when no digits are present.
func CanonicalOrderKey(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	return digitsRE.FindString(s)
}

// ThreadMapping correlates one order with the Slack message anchoring its
// thread, plus the last status value announced per domain. RootID and
// Channel are immutable once set; only the Last* fields mutate, and only
// after a reply for that domain was confirmed sent.
//
// Fields:
//   - OrderKey: canonical digits-only order identifier (primary key).
//   - RootID: Slack timestamp of the root announcement message.
//   - Channel: channel the root message lives in.
//   - LastPaymentStatus / LastFulfillmentStatus / LastStockStatus:
//     nil until the first successful reply in that domain.
type ThreadMapping struct {
	OrderKey              string    `json:"order_key"  gorm:"type:varchar(32);primaryKey"`
	RootID                string    `json:"root_id"    gorm:"type:varchar(32);not null"`
	Channel               string    `json:"channel"    gorm:"type:varchar(32);not null"`
	LastPaymentStatus     *string   `json:"last_payment_status,omitempty"     gorm:"type:varchar(64)"`
	LastFulfillmentStatus *string   `json:"last_fulfillment_status,omitempty" gorm:"type:varchar(64)"`
	LastStockStatus       *string   `json:"last_stock_status,omitempty"       gorm:"type:varchar(64)"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName returns the database table name for ThreadMapping.
func (ThreadMapping) TableName() string { return "thread_mappings" }

// Last returns the last announced value for a status domain, or ("", false)
// when nothing has been announced yet.
func (m *ThreadMapping) Last(d status.Domain) (string, bool) {
	p := m.field(d)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// SetLast records v as the last announced value for a status domain.
// Unknown domains are ignored.
func (m *ThreadMapping) SetLast(d status.Domain, v string) {
	if p := m.field(d); p != nil {
		*p = &v
	}
}

// Clone returns a deep copy so store callers can mutate the result without
// racing other readers.
func (m *ThreadMapping) Clone() *ThreadMapping {
	cp := *m
	cp.LastPaymentStatus = cloneStr(m.LastPaymentStatus)
	cp.LastFulfillmentStatus = cloneStr(m.LastFulfillmentStatus)
	cp.LastStockStatus = cloneStr(m.LastStockStatus)
	return &cp
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// field maps a status domain to its nullable column.
func (m *ThreadMapping) field(d status.Domain) **string {
	switch d {
	case status.Payment:
		return &m.LastPaymentStatus
	case status.Fulfillment:
		return &m.LastFulfillmentStatus
	case status.Stock:
		return &m.LastStockStatus
	}
	return nil
}
