// Package intent classifies inbound messages into capability intents.
package intent

import (
	"strings"

	"github.com/omnichat/orchestrator/internal/domain"
)

// rule pairs an intent with the keywords that trigger it.
type rule struct {
	intent   domain.Intent
	keywords []string
}

// rules is evaluated in order, first match wins. Transactional and support
// intents outrank passive discovery when keywords co-occur, so post-purchase
// is checked before payment and payment before fulfillment.
var rules = []rule{
	{domain.IntentPostPurchase, []string{"track", "return", "exchange"}},
	{domain.IntentPayment, []string{"pay", "checkout", "upi", "card"}},
	{domain.IntentFulfillment, []string{"pickup", "reserve", "delivery"}},
	{domain.IntentLoyalty, []string{"offer", "discount", "loyalty"}},
	{domain.IntentInventory, []string{"stock", "availability"}},
}

// Classify maps a message to an intent. It is pure: no I/O, no state. The
// default when nothing matches is product discovery.
func Classify(message string) domain.Intent {
	text := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.intent
			}
		}
	}
	return domain.IntentRecommendation
}
