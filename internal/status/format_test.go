package status

import (
	"strings"
	"testing"
	"time"
)

// fixClock pins the formatter clock for deterministic output.
func fixClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2025, 6, 1, 15, 4, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"Paid":                  "paid",
		"  Partially   Filled ": "partially filled",
		"IN\tPROGRESS":          "in progress",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormat_KnownPaymentStatus(t *testing.T) {
	fixClock(t)
	got := Format(Payment, "paid", nil)
	want := "💳 ✅ *Payment Paid* • 3:04 PM"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestFormat_NormalizesBeforeLookup(t *testing.T) {
	fixClock(t)
	got := Format(Fulfillment, "  Partially   Fulfilled ", nil)
	if !strings.Contains(got, "📤 *Partially Fulfilled*") {
		t.Fatalf("expected table hit after normalization, got %q", got)
	}
}

func TestFormat_UnknownStatusFallsBackTitleCase(t *testing.T) {
	fixClock(t)
	got := Format(Payment, "partially refunded", nil)
	if !strings.Contains(got, "📝 *Partially Refunded*") {
		t.Fatalf("expected title-case fallback, got %q", got)
	}
	if !strings.HasPrefix(got, "💳") {
		t.Fatalf("expected payment prefix, got %q", got)
	}
}

func TestFormat_EmptyStatus(t *testing.T) {
	fixClock(t)
	got := Format(Fulfillment, "", nil)
	if !strings.Contains(got, "❓ *Unknown Status*") {
		t.Fatalf("expected unknown marker, got %q", got)
	}
}

func TestFormat_UnrecognizedDomain(t *testing.T) {
	fixClock(t)
	got := Format(Domain("returns"), "open", nil)
	if !strings.HasPrefix(got, "📝") {
		t.Fatalf("expected generic prefix, got %q", got)
	}
	if !strings.Contains(got, "*Open*") {
		t.Fatalf("expected title-cased value, got %q", got)
	}
}

func TestFormat_DetailsSkipEmptyAndKeepOrder(t *testing.T) {
	fixClock(t)
	got := Format(Fulfillment, "fulfilled", []Detail{
		{Key: "Tracking", Value: "ABC123, DEF456"},
		{Key: "Carrier", Value: ""},
		{Key: "Service", Value: "express"},
	})
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if lines[1] != "Tracking: ABC123, DEF456" || lines[2] != "Service: express" {
		t.Fatalf("unexpected detail lines: %q", lines[1:])
	}
}

func TestFormat_StockTable(t *testing.T) {
	fixClock(t)
	got := Format(Stock, "out of stock", nil)
	if !strings.Contains(got, "🔴 *Out of Stock*") {
		t.Fatalf("expected stock table hit, got %q", got)
	}
}
