package router

import (
	"strings"

	"github.com/tbourn/elix-bot/internal/session"
)

// Intent is the classified purpose of an inbound message.
type Intent int

const (
	IntentNone Intent = iota
	IntentStart
	IntentMenuResults
	IntentMenuPricing
	IntentMenuConsult
	IntentMenuSupport
	IntentConsultDoctor
	IntentConsultAI
	IntentConsultAdmin
	IntentBack
	IntentConsent
	IntentSubmitData
	IntentInvalidData
	IntentPriceLookup
	IntentAskAI
	IntentAdminRequests
	IntentAdminStatus
)

var intentNames = [...]string{
	IntentNone:          "none",
	IntentStart:         "start",
	IntentMenuResults:   "menu_results",
	IntentMenuPricing:   "menu_pricing",
	IntentMenuConsult:   "menu_consult",
	IntentMenuSupport:   "menu_support",
	IntentConsultDoctor: "consult_doctor",
	IntentConsultAI:     "consult_ai",
	IntentConsultAdmin:  "consult_admin",
	IntentBack:          "back",
	IntentConsent:       "consent",
	IntentSubmitData:    "submit_data",
	IntentInvalidData:   "invalid_data",
	IntentPriceLookup:   "price_lookup",
	IntentAskAI:         "ask_ai",
	IntentAdminRequests: "admin_requests",
	IntentAdminStatus:   "admin_status",
}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return "none"
	}
	return intentNames[i]
}

// Classify applies the routing rules in strict priority order; the first
// rule that matches wins:
//
//  1. command tokens (/start; /requests and /status for admins only)
//  2. menu buttons
//  3. the consent button
//  4. exactly two commas: a data submission
//  5. pricing vocabulary
//  6. medical vocabulary
//  7. nothing
//
// kb never reorders rules 1-4. It only decides two ambiguous cases: a
// comma-free question matching both vocabularies goes to the assistant on
// the consultation keyboard, and comma-separated text that matched no
// vocabulary gets an explicit invalid-format intent while consent is
// pending.
func Classify(text string, kb session.KeyboardContext, isAdmin bool) Intent {
	t := strings.TrimSpace(text)
	if t == "" {
		return IntentNone
	}

	// 1
	if cmd, _, ok := parseCommand(t); ok {
		switch cmd {
		case "start":
			return IntentStart
		case "requests":
			if isAdmin {
				return IntentAdminRequests
			}
		case "status":
			if isAdmin {
				return IntentAdminStatus
			}
		}
	}

	// 2
	switch {
	case strings.HasPrefix(t, KeycapResults):
		return IntentMenuResults
	case strings.HasPrefix(t, KeycapPricing):
		return IntentMenuPricing
	case strings.HasPrefix(t, KeycapConsult):
		return IntentMenuConsult
	case strings.HasPrefix(t, KeycapSupport):
		return IntentMenuSupport
	}
	switch t {
	case LabelDoctor:
		return IntentConsultDoctor
	case LabelAI:
		return IntentConsultAI
	case LabelAdmin:
		return IntentConsultAdmin
	case LabelBack:
		return IntentBack
	}

	// 3
	if t == LabelConsent {
		return IntentConsent
	}

	// 4
	commas := strings.Count(t, ",")
	if commas == 2 {
		return IntentSubmitData
	}

	// 5, 6. A comma list is a price list even on the consultation keyboard.
	lower := strings.ToLower(t)
	pricing := containsAny(lower, pricingVocabulary)
	medical := containsAny(lower, medicalVocabulary)
	switch {
	case pricing && medical && kb == session.ConsultMenu && commas == 0:
		return IntentAskAI
	case pricing:
		return IntentPriceLookup
	case medical:
		return IntentAskAI
	}

	// 7. Malformed personal data replaces the silent fall-through.
	if commas > 0 && kb == session.ConsentPending {
		return IntentInvalidData
	}
	return IntentNone
}

// parseCommand splits "/cmd@bot args" into ("cmd", "args").
func parseCommand(t string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(t, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(t, " ")
	head, _, _ = strings.Cut(head[1:], "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
