package pricing

import "strings"

// InvoiceDiscountAmount selects the payment-method rule with the highest
// minimum-purchase threshold that the pre-discount base still meets and
// applies its rate to the already-discounted subtotal. The asymmetry
// (eligibility on base, amount on discounted) is deliberate and documented.
func InvoiceDiscountAmount(base, discounted Money, rules []InvoiceDiscount, method string) (Money, int32) {
	if base <= 0 || discounted <= 0 {
		return 0, 0
	}
	var best *InvoiceDiscount
	for i := range rules {
		rule := rules[i]
		if !strings.EqualFold(strings.TrimSpace(rule.Method), strings.TrimSpace(method)) {
			continue
		}
		if base < rule.MinPurchase {
			continue
		}
		if best == nil || rule.MinPurchase > best.MinPurchase ||
			(rule.MinPurchase == best.MinPurchase && rule.RateBps > best.RateBps) {
			best = &rule
		}
	}
	if best == nil || best.RateBps <= 0 {
		return 0, 0
	}
	amount := bpsAmount(discounted, best.RateBps)
	if amount > discounted {
		amount = discounted
	}
	return amount, best.RateBps
}
