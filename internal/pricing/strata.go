package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Strata reason codes attached to zero-discount group outcomes.
const (
	StrataGroupUnavailable = "group not available"
	StrataBelowMinimum     = "below minimum quantity"
	StrataVariantShortfall = "variant requirement not met"
)

var decimalOne = decimal.NewFromInt(1)

// GroupDiscounts computes quantity-ladder discounts per product group and
// returns the total plus the per-group breakdown. Group membership comes from
// the catalog's membership map, not the product's own group field. When
// several available promos target one group, the winner is chosen by maximum
// rule specificity first, then the larger discount.
func GroupDiscounts(cart Cart, cat Catalog, ctx Context) (Money, []GroupResult) {
	promosByGroup := make(map[string][]GroupPromo)
	for _, p := range cat.GroupPromos {
		group := NormalizeCode(p.Group)
		promosByGroup[group] = append(promosByGroup[group], p)
	}
	tiersByPromo := make(map[string][]GroupTier)
	for _, t := range cat.GroupTiers {
		id := NormalizeCode(t.PromoID)
		tiersByPromo[id] = append(tiersByPromo[id], t)
	}

	groupRules := IndexRules(cat.GroupRules)
	groups := make([]string, 0, len(promosByGroup))
	for group := range promosByGroup {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var total Money
	var results []GroupResult
	for _, group := range groups {
		members := cat.GroupMembers[group]
		lines, distinct := groupLines(cart, members)
		if len(lines) == 0 {
			continue
		}
		if !IsAvailable(group, groupRules[group], GroupDimensions, ctx) {
			results = append(results, GroupResult{Group: group, Reason: StrataGroupUnavailable})
			continue
		}

		specificity := MatchSpecificity(group, groupRules[group], ctx)
		best := GroupResult{Group: group, Reason: StrataBelowMinimum}
		bestScore := -1
		for _, promo := range promosByGroup[group] {
			candidate := evaluateGroupPromo(promo, tiersByPromo[NormalizeCode(promo.ID)], cat, lines, distinct)
			candidate.Group = group
			// Two-pass winner: max specificity observed, then max benefit.
			score := 0
			if candidate.Discount > 0 {
				score = specificity
			}
			if score > bestScore || (score == bestScore && candidate.Discount > best.Discount) {
				best = candidate
				bestScore = score
			}
		}
		total += best.Discount
		results = append(results, best)
	}
	return total, results
}

// evaluateGroupPromo locates the ladder tier for the cart's total quantity in
// the promo's declared unit and prices it. Sub-unit tiers pay a fixed amount;
// whole-unit tiers pay per completed whole unit.
func evaluateGroupPromo(promo GroupPromo, tiers []GroupTier, cat Catalog, lines []CartLine, distinct int) GroupResult {
	result := GroupResult{PromoID: promo.ID, Reason: StrataBelowMinimum}
	if len(tiers) == 0 {
		return result
	}

	total := decimal.Zero
	for _, line := range lines {
		product, ok := cat.Products[line.ProductID]
		if !ok {
			continue
		}
		total = total.Add(LineQuantity(product, line, promo.Unit))
	}
	result.Quantity = total
	if total.IsZero() {
		return result
	}

	sorted := make([]GroupTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinQty.LessThan(sorted[j].MinQty)
	})

	var matched *GroupTier
	for i := range sorted {
		if sorted[i].MinQty.LessThanOrEqual(total) {
			matched = &sorted[i]
		}
	}
	if matched == nil {
		return result
	}
	result.TierMin = matched.MinQty

	if promo.Mode == TierMix && matched.MinVariants > 0 && distinct < matched.MinVariants {
		result.Reason = StrataVariantShortfall
		return result
	}

	if matched.MinQty.LessThan(decimalOne) {
		result.Discount = matched.PerUnit
	} else {
		wholeUnits := total.Floor().IntPart()
		result.Discount = matched.PerUnit * wholeUnits
	}
	if result.Discount < 0 {
		result.Discount = 0
	}
	if result.Discount > 0 {
		result.Reason = ""
	}
	return result
}

// groupLines selects cart lines whose product belongs to the member set and
// counts distinct products with any ordered quantity.
func groupLines(cart Cart, members []string) ([]CartLine, int) {
	memberSet := make(map[string]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}
	var lines []CartLine
	distinct := make(map[string]struct{})
	for _, line := range cart.Lines {
		if _, ok := memberSet[line.ProductID]; !ok {
			continue
		}
		if line.CaseQty <= 0 && line.PieceQty <= 0 {
			continue
		}
		lines = append(lines, line)
		distinct[line.ProductID] = struct{}{}
	}
	return lines, len(distinct)
}
