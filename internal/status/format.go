// Package status renders order status changes as Slack-ready text.
//
// Each status domain (payment, fulfillment, stock) owns a fixed table
// mapping canonical status values to an emoji and a short title. Values
// missing from the table fall back to a generic marker with the raw value
// presented in title case, so an unexpected vendor status still produces
// a readable line instead of an error.
package status

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Domain identifies an independent axis of order state. Each domain keeps
// its own "last announced value" in the tracking store.
type Domain string

// Known status domains.
const (
	Payment     Domain = "payment"
	Fulfillment Domain = "fulfillment"
	Stock       Domain = "stock"
)

// Detail is a single supplementary line appended to a formatted status,
// e.g. {"Tracking", "ABC123"}. Details with empty values are omitted.
// Order is preserved as given.
type Detail struct {
	Key   string
	Value string
}

// entry pairs an emoji with a short human title for one status value.
type entry struct {
	emoji string
	title string
}

var paymentTable = map[string]entry{
	"paid":            {"✅", "Payment Paid"},
	"payment pending": {"⏳", "Payment Pending"},
	"authorized":      {"🔒", "Payment Authorized"},
	"refunded":        {"↩️", "Payment Refunded"},
	"voided":          {"❌", "Payment Voided"},
}

var fulfillmentTable = map[string]entry{
	"fulfilled":           {"🚀", "Fulfilled"},
	"unfulfilled":         {"📦", "Unfulfilled"},
	"partially fulfilled": {"📤", "Partially Fulfilled"},
	"in progress":         {"⚙️", "In Progress"},
	"on hold":             {"⏸️", "On Hold"},
}

var stockTable = map[string]entry{
	"in stock":     {"🟢", "In Stock"},
	"low stock":    {"🟡", "Low Stock"},
	"out of stock": {"🔴", "Out of Stock"},
	"backordered":  {"🟠", "Backordered"},
}

// titleCaser renders unmapped raw statuses, e.g. "partially_paid" -> "Partially_Paid".
var titleCaser = cases.Title(language.English)

// now is a seam for tests; the embedded clock stamp is advisory text only.
var now = time.Now

// Normalize lower-cases a raw status value and collapses internal
// whitespace, producing the canonical form used for table lookups and
// last-value comparisons. Empty input normalizes to "".
func Normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// Format renders a (domain, status) pair as an annotated one-liner with an
// advisory local-time stamp, followed by one line per non-empty detail:
//
//	💳 ✅ *Payment Paid* • 3:04 PM
//	Amount: $99.00
//
// Unrecognized domains get a generic prefix; unrecognized statuses fall
// back to a generic marker with the value in title case. Deterministic
// except for the clock stamp.
func Format(domain Domain, raw string, details []Detail) string {
	var table map[string]entry
	var prefix string
	switch domain {
	case Payment:
		table, prefix = paymentTable, "💳"
	case Fulfillment:
		table, prefix = fulfillmentTable, "📦"
	case Stock:
		table, prefix = stockTable, "🏷️"
	default:
		table, prefix = nil, "📝"
	}

	e := entry{"❓", "Unknown Status"}
	if norm := Normalize(raw); norm != "" {
		var ok bool
		if e, ok = table[norm]; !ok {
			e = entry{"📝", titleCaser.String(norm)}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s *%s* • %s", prefix, e.emoji, e.title, now().Format("3:04 PM"))
	for _, d := range details {
		if strings.TrimSpace(d.Value) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", d.Key, d.Value)
	}
	return b.String()
}
