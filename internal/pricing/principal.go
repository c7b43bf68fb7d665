package pricing

import "sort"

// PrincipalRates resolves the best available discount rate per principal
// code. Cumulative spend is computed across the whole cart per principal,
// tax inclusive; within a promo the highest qualifying threshold wins, and
// across promos the maximum rate per principal is kept.
func PrincipalRates(cart Cart, cat Catalog, ctx Context) map[string]int32 {
	spend := principalSpend(cart, cat)
	if len(spend) == 0 || len(cat.PrincipalTiers) == 0 {
		return map[string]int32{}
	}

	byPromo := make(map[string][]PrincipalTier)
	for _, t := range cat.PrincipalTiers {
		byPromo[NormalizeCode(t.PromoID)] = append(byPromo[NormalizeCode(t.PromoID)], t)
	}

	promoRules := IndexRules(cat.PromoRules)
	rates := make(map[string]int32)
	for promoID, tiers := range byPromo {
		if !IsAvailable(promoID, promoRules[promoID], PromoDimensions, ctx) {
			continue
		}
		sort.Slice(tiers, func(i, j int) bool {
			return tiers[i].MinSpend > tiers[j].MinSpend
		})
		applied := make(map[string]bool, len(spend))
		for _, tier := range tiers {
			for _, raw := range tier.Principals {
				principal := NormalizeCode(raw)
				if principal == "" || applied[principal] {
					continue
				}
				if spend[principal] < tier.MinSpend {
					continue
				}
				applied[principal] = true
				if tier.RateBps > rates[principal] {
					rates[principal] = tier.RateBps
				}
			}
		}
	}
	return rates
}

// principalSpend sums tax-inclusive line subtotals per principal. Lines whose
// product is missing from reference data contribute nothing.
func principalSpend(cart Cart, cat Catalog) map[string]Money {
	spend := make(map[string]Money)
	for _, line := range cart.Lines {
		product, ok := cat.Products[line.ProductID]
		if !ok {
			continue
		}
		principal := NormalizeCode(product.Principal)
		if principal == "" {
			continue
		}
		spend[principal] += LineSubtotal(product, line)
	}
	return spend
}
