package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func strataCatalog() Catalog {
	return Catalog{
		Products: map[string]Product{
			"P1": {ID: "P1", Principal: "ALPHA", Group: "SNACK", CasePrice: 100_000, PiecesPerCase: 10},
			"P2": {ID: "P2", Principal: "ALPHA", Group: "SNACK", CasePrice: 80_000, PiecesPerCase: 10},
		},
		GroupMembers: map[string][]string{"SNACK": {"P1", "P2"}},
		GroupPromos:  []GroupPromo{{ID: "GS-1", Group: "SNACK", Unit: UnitCase, Mode: TierNonMix}},
		GroupTiers: []GroupTier{
			{PromoID: "GS-1", MinQty: decimal.NewFromFloat(0.5), PerUnit: 2_300},
			{PromoID: "GS-1", MinQty: decimal.NewFromInt(1), PerUnit: 2_300},
			{PromoID: "GS-1", MinQty: decimal.NewFromInt(2), PerUnit: 2_750},
		},
	}
}

func TestGroupDiscountsLadderSelection(t *testing.T) {
	cat := strataCatalog()
	cases := []struct {
		name     string
		lines    []CartLine
		tierMin  decimal.Decimal
		discount Money
	}{
		{
			// 1 case + 5 pieces = 1.5 cases; tier min 1 wins (1.5 < 2),
			// discount per whole case: floor(1.5) x 2,300.
			name:     "one and a half cases",
			lines:    []CartLine{{ProductID: "P1", CaseQty: 1, PieceQty: 5}},
			tierMin:  decimal.NewFromInt(1),
			discount: 2_300,
		},
		{
			// 7 pieces = 0.7 cases; the sub-unit tier pays a fixed amount.
			name:     "sub-unit tier",
			lines:    []CartLine{{ProductID: "P1", PieceQty: 7}},
			tierMin:  decimal.NewFromFloat(0.5),
			discount: 2_300,
		},
		{
			// 2.5 cases hit the open-ended top tier: floor(2.5) x 2,750.
			name:     "top tier",
			lines:    []CartLine{{ProductID: "P1", CaseQty: 2, PieceQty: 5}},
			tierMin:  decimal.NewFromInt(2),
			discount: 5_500,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, groups := GroupDiscounts(Cart{Lines: tc.lines}, cat, testContext())
			if total != tc.discount {
				t.Fatalf("discount = %d, want %d", total, tc.discount)
			}
			if len(groups) != 1 {
				t.Fatalf("got %d group results, want 1", len(groups))
			}
			if !groups[0].TierMin.Equal(tc.tierMin) {
				t.Fatalf("matched tier min = %s, want %s", groups[0].TierMin, tc.tierMin)
			}
		})
	}
}

func TestGroupDiscountsBelowMinimum(t *testing.T) {
	cat := strataCatalog()
	cart := Cart{Lines: []CartLine{{ProductID: "P1", PieceQty: 3}}} // 0.3 cases

	total, groups := GroupDiscounts(cart, cat, testContext())
	if total != 0 {
		t.Fatalf("discount = %d, want 0", total)
	}
	if len(groups) != 1 || groups[0].Reason != StrataBelowMinimum {
		t.Fatalf("group result = %+v, want reason %q", groups, StrataBelowMinimum)
	}
}

func TestGroupDiscountsMixVariantRequirement(t *testing.T) {
	cat := strataCatalog()
	cat.GroupPromos[0].Mode = TierMix
	for i := range cat.GroupTiers {
		cat.GroupTiers[i].MinVariants = 2
	}

	// Enough quantity but only one distinct product.
	cart := Cart{Lines: []CartLine{{ProductID: "P1", CaseQty: 2}}}
	total, groups := GroupDiscounts(cart, cat, testContext())
	if total != 0 || groups[0].Reason != StrataVariantShortfall {
		t.Fatalf("got total=%d reason=%q, want 0 / %q", total, groups[0].Reason, StrataVariantShortfall)
	}

	// A second variant satisfies the mix requirement.
	cart.Lines = append(cart.Lines, CartLine{ProductID: "P2", CaseQty: 1})
	total, groups = GroupDiscounts(cart, cat, testContext())
	if total != 8_250 {
		t.Fatalf("discount = %d, want 8250 (3 cases x 2750)", total)
	}
	if groups[0].Reason != "" {
		t.Fatalf("unexpected reason %q on a granted discount", groups[0].Reason)
	}
}

func TestGroupDiscountsUnavailableGroup(t *testing.T) {
	cat := strataCatalog()
	cat.GroupRules = []AvailabilityRule{denyZone("SNACK", "Z1")}
	cart := Cart{Lines: []CartLine{{ProductID: "P1", CaseQty: 2}}}

	total, groups := GroupDiscounts(cart, cat, testContext())
	if total != 0 {
		t.Fatalf("discount = %d, want 0 for a denied group", total)
	}
	if len(groups) != 1 || groups[0].Reason != StrataGroupUnavailable {
		t.Fatalf("group result = %+v, want reason %q", groups, StrataGroupUnavailable)
	}
}

func TestGroupDiscountsBestPromoWins(t *testing.T) {
	cat := strataCatalog()
	cat.GroupPromos = append(cat.GroupPromos, GroupPromo{ID: "GS-2", Group: "SNACK", Unit: UnitCase, Mode: TierNonMix})
	cat.GroupTiers = append(cat.GroupTiers,
		GroupTier{PromoID: "GS-2", MinQty: decimal.NewFromInt(1), PerUnit: 3_000})

	cart := Cart{Lines: []CartLine{{ProductID: "P1", CaseQty: 1}}}
	total, groups := GroupDiscounts(cart, cat, testContext())
	if total != 3_000 {
		t.Fatalf("discount = %d, want 3000 (larger benefit wins the group)", total)
	}
	if groups[0].PromoID != "GS-2" {
		t.Fatalf("winning promo = %s, want GS-2", groups[0].PromoID)
	}
}
