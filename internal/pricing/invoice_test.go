package pricing

import "testing"

func TestInvoiceDiscountHighestQualifyingThreshold(t *testing.T) {
	rules := []InvoiceDiscount{
		{Method: "COD", MinPurchase: 0, RateBps: 0},
		{Method: "COD", MinPurchase: 2_000_000, RateBps: 300},
	}

	// Eligibility checks the pre-discount base, the amount applies to the
	// discounted subtotal.
	amount, rate := InvoiceDiscountAmount(2_500_000, 2_300_000, rules, "COD")
	if amount != 69_000 || rate != 300 {
		t.Fatalf("got amount=%d rate=%d, want 69000 / 300", amount, rate)
	}
}

func TestInvoiceDiscountBaseBelowThreshold(t *testing.T) {
	rules := []InvoiceDiscount{
		{Method: "COD", MinPurchase: 0, RateBps: 0},
		{Method: "COD", MinPurchase: 2_000_000, RateBps: 300},
	}
	amount, rate := InvoiceDiscountAmount(1_900_000, 1_900_000, rules, "COD")
	if amount != 0 || rate != 0 {
		t.Fatalf("got amount=%d rate=%d, want 0 / 0", amount, rate)
	}
}

func TestInvoiceDiscountMethodMismatch(t *testing.T) {
	rules := []InvoiceDiscount{{Method: "TRANSFER", MinPurchase: 0, RateBps: 200}}
	if amount, _ := InvoiceDiscountAmount(3_000_000, 3_000_000, rules, "COD"); amount != 0 {
		t.Fatalf("amount = %d, want 0 for a non-matching payment method", amount)
	}
	if amount, _ := InvoiceDiscountAmount(3_000_000, 3_000_000, rules, "transfer"); amount != 60_000 {
		t.Fatalf("amount = %d, want 60000 (method match is case-insensitive)", amount)
	}
}

func TestInvoiceDiscountCappedAtSubtotal(t *testing.T) {
	rules := []InvoiceDiscount{{Method: "COD", MinPurchase: 0, RateBps: 10_000}}
	amount, _ := InvoiceDiscountAmount(1_000_000, 500, rules, "COD")
	if amount != 500 {
		t.Fatalf("amount = %d, want 500 (never exceeds the discounted subtotal)", amount)
	}
}
