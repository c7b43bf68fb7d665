package pricing

import "testing"

func loyaltyCatalog() Catalog {
	return Catalog{
		Products: map[string]Product{
			"P1": {ID: "P1", Principal: "ALPHA", CasePrice: 100_000, PiecesPerCase: 10},
			"P2": {ID: "P2", Principal: "BETA", CasePrice: 90_000, PiecesPerCase: 10},
		},
		CashbackPrincipals: []string{"ALPHA"},
		LoyaltyRules: []LoyaltyRule{
			{Class: "GOLD", StoreType: StoreGrosir, MonthlyTarget: 10_000_000, CashbackBps: 150},
			{Class: "GOLD", StoreType: StoreAll, MonthlyTarget: 8_000_000, CashbackBps: 100},
		},
	}
}

func TestCashbackHappyPath(t *testing.T) {
	ctx := testContext()
	ctx.LoyaltyClass = "gold"
	cart := Cart{Lines: []CartLine{{ProductID: "P1", CaseQty: 1}}}

	est := Cashback(1_000_000, cart, loyaltyCatalog(), ctx)
	if !est.Eligible {
		t.Fatalf("estimate not eligible: %+v", est)
	}
	if est.RateBps != 150 || est.Amount != 15_000 {
		t.Fatalf("got rate=%d amount=%d, want 150 / 15000 (exact store-type rule preferred)", est.RateBps, est.Amount)
	}
	if est.MonthlyTarget != 10_000_000 {
		t.Fatalf("monthly target = %d, want 10000000", est.MonthlyTarget)
	}
}

func TestCashbackRoundsHalfUp(t *testing.T) {
	ctx := testContext()
	ctx.LoyaltyClass = "GOLD"
	cart := Cart{Lines: []CartLine{{ProductID: "P1", CaseQty: 1}}}

	// 333,333 x 1.5% = 4,999.995, rounds to 5,000.
	est := Cashback(333_333, cart, loyaltyCatalog(), ctx)
	if est.Amount != 5_000 {
		t.Fatalf("amount = %d, want 5000", est.Amount)
	}
}

func TestCashbackPreconditionReasons(t *testing.T) {
	cat := loyaltyCatalog()
	alphaCart := Cart{Lines: []CartLine{{ProductID: "P1", CaseQty: 1}}}
	betaCart := Cart{Lines: []CartLine{{ProductID: "P2", CaseQty: 1}}}

	retail := testContext()
	retail.StoreType = StoreRetail
	retail.LoyaltyClass = "GOLD"
	if est := Cashback(1_000_000, alphaCart, cat, retail); est.Reason != ReasonStoreType || est.Amount != 0 {
		t.Fatalf("retail store: got %+v, want reason %q", est, ReasonStoreType)
	}

	noClass := testContext()
	if est := Cashback(1_000_000, alphaCart, cat, noClass); est.Reason != ReasonNoClass {
		t.Fatalf("no class: got %+v, want reason %q", est, ReasonNoClass)
	}

	withClass := testContext()
	withClass.LoyaltyClass = "GOLD"
	if est := Cashback(1_000_000, betaCart, cat, withClass); est.Reason != ReasonIneligiblePrincipal || est.Eligible {
		t.Fatalf("wrong principal: got %+v, want reason %q", est, ReasonIneligiblePrincipal)
	}

	denied := loyaltyCatalog()
	denied.LoyaltyClassRules = []AvailabilityRule{denyZone("GOLD", "Z1")}
	if est := Cashback(1_000_000, alphaCart, denied, withClass); est.Reason != ReasonClassUnavailable {
		t.Fatalf("denied class: got %+v, want reason %q", est, ReasonClassUnavailable)
	}

	noRule := loyaltyCatalog()
	noRule.LoyaltyRules = nil
	if est := Cashback(1_000_000, alphaCart, noRule, withClass); est.Reason != ReasonNoRule {
		t.Fatalf("missing rule: got %+v, want reason %q", est, ReasonNoRule)
	}
}

func TestCashbackStoreTypeFallback(t *testing.T) {
	ctx := testContext()
	ctx.LoyaltyClass = "GOLD"
	cart := Cart{Lines: []CartLine{{ProductID: "P1", CaseQty: 1}}}

	cat := loyaltyCatalog()
	cat.LoyaltyRules = []LoyaltyRule{
		{Class: "GOLD", StoreType: StoreAll, MonthlyTarget: 8_000_000, CashbackBps: 100},
	}
	if est := Cashback(1_000_000, cart, cat, ctx); est.RateBps != 100 {
		t.Fatalf("rate = %d, want 100 from the all-store fallback rule", est.RateBps)
	}

	cat.LoyaltyRules = []LoyaltyRule{
		{Class: "GOLD", StoreType: "unknown", MonthlyTarget: 5_000_000, CashbackBps: 75},
	}
	if est := Cashback(1_000_000, cart, cat, ctx); est.RateBps != 75 {
		t.Fatalf("rate = %d, want 75 from the first-defined fallback rule", est.RateBps)
	}
}
