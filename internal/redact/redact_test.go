package redact

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	cases := []struct {
		name, in string
		gone     []string
		want     []string
	}{
		{
			name: "submission",
			in:   "Иванов Иван Иванович, 01.02.1990, +7 (999) 123-45-67",
			gone: []string{"01.02.1990", "999", "123-45-67"},
			want: []string{"Иванов Иван Иванович", "[REDACTED:date]", "[REDACTED:phone]"},
		},
		{
			name: "compact phone",
			in:   "телефон 89991234567",
			gone: []string{"89991234567"},
			want: []string{"телефон [REDACTED:phone]"},
		},
		{
			name: "email and uuid",
			in:   "a.b+tag@example.com id=123e4567-e89b-12d3-a456-426614174000",
			gone: []string{"example.com", "426614174000"},
			want: []string{"[REDACTED:email]", "[REDACTED:id]"},
		},
		{
			name: "local phone",
			in:   "call 555-123-4567",
			gone: []string{"4567"},
			want: []string{"[REDACTED:phone]"},
		},
		{
			name: "lab values untouched",
			in:   "Мне 32 и ТТГ 36 — это нормально?",
			want: []string{"Мне 32 и ТТГ 36 — это нормально?"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := String(tc.in)
			for _, g := range tc.gone {
				if strings.Contains(got, g) {
					t.Fatalf("%q still contains %q", got, g)
				}
			}
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Fatalf("%q does not contain %q", got, w)
				}
			}
		})
	}
	if String("") != "" {
		t.Fatalf("empty string must stay empty")
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("ОАК, ТТГ", 3); got != "ОАК…" {
		t.Fatalf("Preview = %q", got)
	}
	if got := Preview("ОАК", 0); got != "ОАК" {
		t.Fatalf("Preview without limit = %q", got)
	}
	if got := Preview("tel 89991234567", 100); got != "tel [REDACTED:phone]" {
		t.Fatalf("Preview should redact, got %q", got)
	}
}
