// Package render substitutes {{placeholder}} tokens in template subject and
// body strings. It is pure: no I/O, no side effects.
package render

import (
	"regexp"
	"strings"
)

// Recipient placeholder keys filled from lead or recipient snapshot data.
const (
	KeyName    = "name"
	KeyCompany = "company"
	KeyEmail   = "email"
	KeyPhone   = "phone"
)

// Sender placeholder keys filled from the sending user's profile.
const (
	KeySenderName     = "sender_name"
	KeySenderPosition = "sender_position"
	KeySenderCompany  = "sender_company"
	KeySenderEmail    = "sender_email"
	KeySenderPhone    = "sender_phone"
)

// placeholder matches {{ key }} tokens. Whitespace around the key is
// tolerated; the key itself is lowercase with underscores.
var placeholder = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// Render replaces every placeholder token in s with its value from data.
// Keys missing from data substitute with the empty string, never the literal
// token text.
func Render(s string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(tok string) string {
		key := placeholder.FindStringSubmatch(tok)[1]
		return data[key]
	})
}

// HasTokens reports whether s still contains any placeholder token. Useful
// for asserting a fully rendered document.
func HasTokens(s string) bool {
	return strings.Contains(s, "{{") && placeholder.MatchString(s)
}
