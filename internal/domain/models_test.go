package domain

import (
	"testing"

	"github.com/tbourn/go-shopify-slack-notifier/internal/status"
)

func TestCanonicalOrderKey(t *testing.T) {
	cases := map[string]string{
		"1278":    "1278",
		"#1278":   "1278",
		" 1278 ":  "1278",
		" #1278 ": "1278",
		"#ST1278": "1278",
		"":        "",
		"#":       "",
		"pending": "",
	}
	for in, want := range cases {
		if got := CanonicalOrderKey(in); got != want {
			t.Errorf("CanonicalOrderKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestThreadMapping_LastSetLast(t *testing.T) {
	m := &ThreadMapping{OrderKey: "1278", RootID: "169.1", Channel: "C01"}

	if _, ok := m.Last(status.Payment); ok {
		t.Fatal("expected no payment value before SetLast")
	}
	m.SetLast(status.Payment, "paid")
	if v, ok := m.Last(status.Payment); !ok || v != "paid" {
		t.Fatalf("Last(payment) = %q,%v after SetLast", v, ok)
	}
	// Other domains stay untouched.
	if _, ok := m.Last(status.Fulfillment); ok {
		t.Fatal("fulfillment value leaked from payment SetLast")
	}

	// Unknown domains are a no-op, not a panic.
	m.SetLast(status.Domain("returns"), "open")
	if _, ok := m.Last(status.Domain("returns")); ok {
		t.Fatal("unknown domain should never report a value")
	}
}

func TestThreadMapping_CloneIsDeep(t *testing.T) {
	m := &ThreadMapping{OrderKey: "9", RootID: "1.2", Channel: "C01"}
	m.SetLast(status.Payment, "paid")

	cp := m.Clone()
	cp.SetLast(status.Payment, "refunded")

	if v, _ := m.Last(status.Payment); v != "paid" {
		t.Fatalf("mutating the clone changed the original: %q", v)
	}
}
