package mailbox

import (
	"strings"
	"unicode"
)

const (
	deliveryIDDomainMarker = "google.com"
	deliveryIDToken        = "SMTP id"
)

// ExtractDeliveryID recovers the provider-assigned SMTP id from decoded
// Received header text. The text must carry both the provider domain marker
// and the literal "SMTP id" token; the id is the first whitespace/semicolon
// delimited word after the token. Delivery-trace headers have no formal
// grammar, so this is a best-effort convention: malformed or absent trace
// headers yield an empty result, never an error.
func ExtractDeliveryID(header string) string {
	if !strings.Contains(header, deliveryIDDomainMarker) {
		return ""
	}

	_, rest, found := strings.Cut(header, deliveryIDToken)
	if !found {
		return ""
	}

	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r == ';' || unicode.IsSpace(r)
	})
	switch {
	case end == 0:
		return ""
	case end < 0:
		return rest
	default:
		return rest[:end]
	}
}
