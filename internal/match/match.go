// Package match decides whether a Slack message is the canonical "new
// order" announcement for a given order. The announcement anchors the
// order's thread, so precision matters more than recall here: a reply or
// an unrelated message mistaken for the announcement would hijack the
// thread for every later status update.
//
// All functions are pure; no I/O.
package match

import (
	"regexp"
	"strings"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
)

// statusTerms mark a text as a status update (or other bot output) rather
// than an original order announcement. Any hit disqualifies the candidate,
// keeping a previously posted reply from being re-matched as a root during
// a later history scan.
var statusTerms = []string{
	"fulfilled",
	"tracking",
	"report",
	"generated",
	"payment",
}

var digitRunRE = regexp.MustCompile(`[0-9]+`)

// announcementRE captures the digits of the loose announcement formats:
// "st.order #1278", "order 1278", "#1278". Applied to normalized text.
var announcementRE = regexp.MustCompile(`(?:st\.order|order)?\s*#?([0-9]+)`)

// normalize lower-cases and collapses whitespace for safer matching.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// IsOrderAnnouncement reports whether text is the order announcement for
// orderKey.
//
// Recognized formats, strictest first:
//   - "st.order" anywhere plus the exact order number ("ST.order #1278 | Jane | …")
//   - "#1278" or "order 1278" (the digit run must equal the key exactly,
//     so order "12" never matches "#123")
//   - a bare "1278", accepted only when the text also carries a contextual
//     "order" token; this loose fallback is best-effort and the false
//     positive risk is covered by the status-term blacklist and the tests.
func IsOrderAnnouncement(text, orderKey string) bool {
	key := domain.CanonicalOrderKey(orderKey)
	if key == "" {
		return false
	}
	norm := normalize(text)
	if norm == "" {
		return false
	}
	for _, term := range statusTerms {
		if strings.Contains(norm, term) {
			return false
		}
	}

	runs := exactRunIndexes(norm, key)
	if len(runs) == 0 {
		return false
	}

	// Primary format: an ST.order announcement mentioning the number.
	if strings.Contains(norm, "st.order") {
		return true
	}
	// Anchored alternates: "#1278" or "order 1278". Any occurrence of the
	// number may carry the anchor ("1278 | Jane | see #1278").
	for _, idx := range runs {
		if anchoredAt(norm, idx) {
			return true
		}
	}
	// Bare number: require a contextual "order" token elsewhere.
	return hasWord(norm, "order")
}

// ExtractOrderKey pulls the order number out of an announcement-shaped
// text, or returns "" when none is present. It applies the same
// status-term blacklist as IsOrderAnnouncement so replies never yield a
// key.
func ExtractOrderKey(text string) string {
	norm := normalize(text)
	if norm == "" {
		return ""
	}
	for _, term := range statusTerms {
		if strings.Contains(norm, term) {
			return ""
		}
	}
	for _, m := range announcementRE.FindAllStringSubmatchIndex(norm, -1) {
		// Only accept digits that are anchored by a prefix or an order token.
		start := m[2]
		if anchoredAt(norm, start) || strings.Contains(norm, "st.order") {
			return norm[m[2]:m[3]]
		}
	}
	return ""
}

// exactRunIndexes returns the starts of every maximal digit run in s
// equal to key. Equality is on the whole run: "1278" is not found inside
// "12780" or "#127".
func exactRunIndexes(s, key string) []int {
	var starts []int
	for _, loc := range digitRunRE.FindAllStringIndex(s, -1) {
		if s[loc[0]:loc[1]] == key {
			starts = append(starts, loc[0])
		}
	}
	return starts
}

// anchoredAt reports whether the digit run starting at idx is prefixed by
// "#" or preceded by an "order" token ("order 1278", "st.order 1278").
func anchoredAt(s string, idx int) bool {
	if idx > 0 && s[idx-1] == '#' {
		return true
	}
	head := strings.TrimRight(s[:idx], " ")
	return head == "order" ||
		strings.HasSuffix(head, " order") ||
		strings.HasSuffix(head, ".order")
}

// hasWord reports whether s contains w as a whole token (ignoring
// punctuation glued to the token, e.g. "order:" or "st.order").
func hasWord(s, w string) bool {
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, ".,:;!?#|")
		if f == w || strings.HasSuffix(f, "."+w) {
			return true
		}
	}
	return false
}
