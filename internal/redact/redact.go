// Package redact scrubs obvious personal data from strings before they are
// logged. Patients type their full name, birth date and phone number into
// the bot, so every log line that carries user text goes through here.
//
// The package reduces but does not eliminate leakage: names cannot be
// recognised reliably and are left as is.
package redact

import "regexp"

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// 01.02.1990, 1-2-90, 01/02/1990
	dateRE = regexp.MustCompile(`\b\d{1,2}[./\-]\d{1,2}[./\-]\d{2,4}\b`)
	// At least ten digits with optional separators: +7 (999) 123-45-67,
	// 89991234567, +1 212 555 1212.
	phoneRE = regexp.MustCompile(`\+?\d(?:[ \-().]*\d){9,14}`)
	// Shorter local numbers such as 555-123-4567 or 123-45-67.
	localPhoneRE = regexp.MustCompile(`\b\d{3}[ .\-]\d{2,3}[ .\-]\d{2,4}\b`)
)

// String replaces ids, e-mail addresses, dates and phone numbers with
// typed placeholders. Order matters: uuids first so their digit groups are
// not taken for phones, dates before phones for the same reason.
func String(s string) string {
	if s == "" {
		return s
	}
	out := uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
	out = dateRE.ReplaceAllString(out, "[REDACTED:date]")
	out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	out = localPhoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	return out
}

// Preview is String truncated to at most n runes, for log fields that
// should stay short.
func Preview(s string, n int) string {
	s = String(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
