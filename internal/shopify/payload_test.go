package shopify

import (
	"encoding/json"
	"testing"
)

func TestOrderKey_FallbackOrder(t *testing.T) {
	cases := []struct {
		name string
		p    OrderPayload
		want string
	}{
		{"order number preferred", OrderPayload{OrderNumber: 1278, Name: "#9999", ID: 42}, "1278"},
		{"display name next", OrderPayload{Name: "#9999", ID: 42}, "9999"},
		{"internal id last", OrderPayload{ID: 42}, "42"},
		{"non-numeric name skipped", OrderPayload{Name: "draft", ID: 42}, "42"},
		{"nothing", OrderPayload{}, ""},
	}
	for _, tc := range cases {
		if got := tc.p.OrderKey(); got != tc.want {
			t.Errorf("%s: OrderKey() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"pending":             "payment pending",
		"Pending":             "payment pending",
		"partially_fulfilled": "partially fulfilled",
		"partial":             "partially fulfilled",
		"paid":                "paid",
		"partially_paid":      "partially paid",
		"":                    "",
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPaymentValue_LegacyAlias(t *testing.T) {
	p := OrderPayload{PaymentStatus: "paid"}
	if got := p.PaymentValue(); got != "paid" {
		t.Fatalf("PaymentValue() = %q", got)
	}
	p = OrderPayload{FinancialStatus: "pending", PaymentStatus: "paid"}
	if got := p.PaymentValue(); got != "payment pending" {
		t.Fatalf("financial_status must win over the alias, got %q", got)
	}
}

func TestAmount_PriceSetFallback(t *testing.T) {
	raw := `{
		"order_number": 1278,
		"total_price_set": {"presentment_money": {"amount": "49.90", "currency_code": "EUR"}}
	}`
	var p OrderPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := p.Amount(); got != "49.90" {
		t.Fatalf("Amount() = %q", got)
	}

	p.TotalPrice = "50.00"
	if got := p.Amount(); got != "50.00" {
		t.Fatalf("total_price must win, got %q", got)
	}
}

func TestFulfillmentDetails_NestedFallback(t *testing.T) {
	p := OrderPayload{
		Fulfillments: []Fulfillment{
			{TrackingNumbers: []string{"ABC123", "DEF456"}, TrackingCompany: "DHL"},
		},
	}
	details := p.FulfillmentDetails()
	if len(details) != 2 {
		t.Fatalf("details = %+v", details)
	}
	if details[0].Key != "Tracking" || details[0].Value != "ABC123, DEF456" {
		t.Fatalf("tracking detail = %+v", details[0])
	}
	if details[1].Key != "Carrier" || details[1].Value != "DHL" {
		t.Fatalf("carrier detail = %+v", details[1])
	}

	// Top-level fields take precedence over nested records.
	p.TrackingNumbers = []string{"XYZ"}
	p.TrackingCompany = "UPS"
	details = p.FulfillmentDetails()
	if details[0].Value != "XYZ" || details[1].Value != "UPS" {
		t.Fatalf("top-level fields must win: %+v", details)
	}
}

func TestAnnouncementText(t *testing.T) {
	p := OrderPayload{
		OrderNumber: 1278,
		TotalPrice:  "99.00",
		Customer:    &Customer{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
	}
	if got, want := p.AnnouncementText(), "ST.order #1278 | Jane Doe | $99.00"; got != want {
		t.Fatalf("AnnouncementText() = %q, want %q", got, want)
	}

	// Minimal payload still yields a matchable announcement.
	p = OrderPayload{OrderNumber: 7}
	if got, want := p.AnnouncementText(), "ST.order #7"; got != want {
		t.Fatalf("AnnouncementText() = %q, want %q", got, want)
	}
}
