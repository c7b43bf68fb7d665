package pricing

import "github.com/shopspring/decimal"

// BundleDiscounts sums the discounts of every available bundle promo.
// Completed packages per promo are the minimum across its buckets — every
// bucket requirement must be satisfiable simultaneously — clamped to the
// promo's optional package cap.
func BundleDiscounts(cart Cart, cat Catalog, ctx Context) Money {
	if len(cat.BundlePromos) == 0 {
		return 0
	}
	bucketsByPromo := make(map[string][]BundleBucket)
	for _, b := range cat.BundleBuckets {
		id := NormalizeCode(b.PromoID)
		bucketsByPromo[id] = append(bucketsByPromo[id], b)
	}

	promoRules := IndexRules(cat.PromoRules)
	var total Money
	for _, promo := range cat.BundlePromos {
		id := NormalizeCode(promo.ID)
		buckets := bucketsByPromo[id]
		if len(buckets) == 0 || promo.PerPackage <= 0 {
			continue
		}
		if !IsAvailable(id, promoRules[id], PromoDimensions, ctx) {
			continue
		}
		packages := completedPackages(cart, cat, buckets)
		if packages <= 0 {
			continue
		}
		if promo.MaxPackages > 0 && packages > promo.MaxPackages {
			packages = promo.MaxPackages
		}
		total += promo.PerPackage * packages
	}
	return total
}

// completedPackages returns the bottleneck minimum of floor(total/required)
// across the promo's buckets, or zero when any bucket is unsatisfiable.
func completedPackages(cart Cart, cat Catalog, buckets []BundleBucket) int64 {
	packages := int64(-1)
	for _, bucket := range buckets {
		if bucket.Required.Sign() <= 0 {
			return 0
		}
		bucketTotal := decimal.Zero
		for _, id := range cat.BucketMembers[bucket.BucketID] {
			bucketTotal = bucketTotal.Add(memberQuantity(cart, cat, id, bucket.Unit))
		}
		fit := bucketTotal.Div(bucket.Required).Floor().IntPart()
		if packages < 0 || fit < packages {
			packages = fit
		}
		if packages == 0 {
			return 0
		}
	}
	if packages < 0 {
		return 0
	}
	return packages
}

func memberQuantity(cart Cart, cat Catalog, productID string, unit Unit) decimal.Decimal {
	total := decimal.Zero
	product, ok := cat.Products[productID]
	if !ok {
		return total
	}
	for _, line := range cart.Lines {
		if line.ProductID != productID {
			continue
		}
		total = total.Add(LineQuantity(product, line, unit))
	}
	return total
}
