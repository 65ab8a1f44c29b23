// Package parsers contains the deterministic entity extractors for customer
// messages. All extractors are total: malformed input yields the zero value,
// never an error.
package parsers

import (
	"strings"

	"hf_cortex_backend/platform/textkit"
)

// Message text can arrive under several key names depending on the chat
// transport, sometimes one level deep.
var (
	directTextKeys = []string{"text", "MESSAGE", "message", "body", "msg", "TEXT"}
	nestedMapKeys  = []string{"message", "msg", "data", "payload"}
	innerTextKeys  = []string{"text", "MESSAGE", "message", "body", "TEXT"}
)

// MessageText pulls the canonical message text out of a loosely-typed message
// object. Returns the empty string when nothing usable is found.
func MessageText(msg map[string]any) string {
	if msg == nil {
		return ""
	}

	for _, key := range directTextKeys {
		if s, ok := msg[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	for _, key := range nestedMapKeys {
		nested, ok := msg[key].(map[string]any)
		if !ok {
			continue
		}
		for _, inner := range innerTextKeys {
			if s, ok := nested[inner].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	return ""
}

// NormalizeMessageText is the canonical normalization every extractor applies.
func NormalizeMessageText(text string) string {
	return textkit.Normalize(text)
}
