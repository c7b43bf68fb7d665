package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func pipelineCatalog() Catalog {
	return Catalog{
		Version: "test",
		Products: map[string]Product{
			"P1": {ID: "P1", Principal: "ALPHA", Group: "SNACK", CasePrice: 1_500_000, PiecesPerCase: 12},
			"P2": {ID: "P2", Principal: "BETA", Group: "SNACK", CasePrice: 500_000, PiecesPerCase: 10},
		},
		GroupMembers: map[string][]string{"SNACK": {"P1", "P2"}},
		PrincipalTiers: []PrincipalTier{
			{PromoID: "PD-1", Principals: []string{"ALPHA"}, MinSpend: 1_000_000, RateBps: 500},
		},
		GroupPromos: []GroupPromo{{ID: "GS-1", Group: "SNACK", Unit: UnitCase, Mode: TierNonMix}},
		GroupTiers: []GroupTier{
			{PromoID: "GS-1", MinQty: decimal.NewFromInt(2), PerUnit: 2_000},
		},
		BundlePromos: []BundlePromo{{ID: "BN-1", PerPackage: 5_000}},
		BundleBuckets: []BundleBucket{
			{PromoID: "BN-1", BucketID: "A", Required: decimal.NewFromInt(2), Unit: UnitCase},
			{PromoID: "BN-1", BucketID: "B", Required: decimal.NewFromInt(1), Unit: UnitCase},
		},
		BucketMembers: map[string][]string{"A": {"P1"}, "B": {"P2"}},
		InvoiceDiscounts: []InvoiceDiscount{
			{Method: "COD", MinPurchase: 2_000_000, RateBps: 100},
		},
		LoyaltyRules: []LoyaltyRule{
			{Class: "GOLD", StoreType: StoreGrosir, MonthlyTarget: 10_000_000, CashbackBps: 100},
		},
		CashbackPrincipals: []string{"ALPHA"},
	}
}

func TestPriceFullStack(t *testing.T) {
	ctx := testContext()
	ctx.PaymentMethod = "COD"
	ctx.LoyaltyClass = "GOLD"
	cart := Cart{Lines: []CartLine{
		{ProductID: "P1", CaseQty: 3},
		{ProductID: "P2", CaseQty: 2},
	}}

	result, err := Price(cart, pipelineCatalog(), ctx)
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}

	if result.Base != 5_500_000 {
		t.Fatalf("base = %d, want 5500000", result.Base)
	}
	// ALPHA spend 4.5M hits the 5% tier; the rate applies per line, so BETA
	// lines stay untouched.
	if result.PrincipalDiscount != 225_000 {
		t.Fatalf("principal discount = %d, want 225000", result.PrincipalDiscount)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("got %d line results, want 2", len(result.Lines))
	}
	if result.Lines[0].PrincipalRateBps != 500 || result.Lines[1].PrincipalRateBps != 0 {
		t.Fatalf("line rates = %d/%d, want 500/0",
			result.Lines[0].PrincipalRateBps, result.Lines[1].PrincipalRateBps)
	}
	// 5 cases in the SNACK group at 2,000 per case.
	if result.StrataDiscount != 10_000 {
		t.Fatalf("strata discount = %d, want 10000", result.StrataDiscount)
	}
	// Bucket A fits 1 package, bucket B fits 2; the bottleneck is 1.
	if result.BundleDiscount != 5_000 {
		t.Fatalf("bundle discount = %d, want 5000", result.BundleDiscount)
	}
	// 1% of the post-discount subtotal 5,260,000.
	if result.InvoiceDiscount != 52_600 || result.InvoiceRateBps != 100 {
		t.Fatalf("invoice discount = %d (rate %d), want 52600 / 100",
			result.InvoiceDiscount, result.InvoiceRateBps)
	}
	if result.Net != 5_207_400 {
		t.Fatalf("net = %d, want 5207400", result.Net)
	}
	if !result.Cashback.Eligible || result.Cashback.Amount != 52_074 {
		t.Fatalf("cashback = %+v, want eligible 52074", result.Cashback)
	}
}

func TestPriceInvalidCatalog(t *testing.T) {
	_, err := Price(Cart{}, Catalog{}, testContext())
	if !errors.Is(err, ErrCatalogInvalid) {
		t.Fatalf("err = %v, want ErrCatalogInvalid", err)
	}
}

func TestPriceSkipsUnknownProducts(t *testing.T) {
	cart := Cart{Lines: []CartLine{
		{ProductID: "P1", CaseQty: 1},
		{ProductID: "MISSING", CaseQty: 4},
	}}
	result, err := Price(cart, pipelineCatalog(), testContext())
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	if result.Base != 1_500_000 {
		t.Fatalf("base = %d, want 1500000 (unknown line skipped)", result.Base)
	}
	if len(result.SkippedProducts) != 1 || result.SkippedProducts[0] != "MISSING" {
		t.Fatalf("skipped = %v, want [MISSING]", result.SkippedProducts)
	}
}

func TestPriceNetNeverNegative(t *testing.T) {
	cat := pipelineCatalog()
	// A strata tier larger than the whole cart value.
	cat.GroupTiers = []GroupTier{
		{PromoID: "GS-1", MinQty: decimal.NewFromInt(1), PerUnit: 10_000_000},
	}
	cart := Cart{Lines: []CartLine{{ProductID: "P2", CaseQty: 1}}}

	result, err := Price(cart, cat, testContext())
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	if result.Net != 0 {
		t.Fatalf("net = %d, want clamp at 0", result.Net)
	}
	for _, stage := range []Money{
		result.PrincipalDiscount, result.StrataDiscount,
		result.BundleDiscount, result.InvoiceDiscount,
	} {
		if stage < 0 {
			t.Fatalf("negative discount stage in %+v", result)
		}
	}
}

func TestPriceDeterministic(t *testing.T) {
	ctx := testContext()
	ctx.PaymentMethod = "COD"
	cart := Cart{Lines: []CartLine{
		{ProductID: "P1", CaseQty: 3},
		{ProductID: "P2", CaseQty: 2},
	}}
	cat := pipelineCatalog()

	first, err := Price(cart, cat, ctx)
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Price(cart, cat, ctx)
		if err != nil {
			t.Fatalf("Price returned error: %v", err)
		}
		if again.Net != first.Net || again.Base != first.Base {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}
