package pricing

import (
	"errors"
	"sort"
)

// ErrCatalogInvalid signals a snapshot that cannot support pricing at all.
var ErrCatalogInvalid = errors.New("pricing: catalog snapshot invalid")

// Price runs the full discount pipeline over one cart. Stage order is fixed:
// base, principal discount, group strata, bundle, invoice discount, then the
// off-invoice cashback estimate computed from the net. Later stages see the
// subtotal left by earlier ones; the net never goes below zero.
func Price(cart Cart, cat Catalog, ctx Context) (Result, error) {
	if cat.Products == nil {
		return Result{}, ErrCatalogInvalid
	}

	rates := PrincipalRates(cart, cat, ctx)

	var result Result
	skipped := make(map[string]struct{})
	for _, line := range cart.Lines {
		product, ok := cat.Products[line.ProductID]
		if !ok {
			skipped[line.ProductID] = struct{}{}
			continue
		}
		subtotal := LineSubtotal(product, line)
		principal := NormalizeCode(product.Principal)
		rate := rates[principal]
		discount := bpsAmount(subtotal, rate)
		result.Base += subtotal
		result.PrincipalDiscount += discount
		result.Lines = append(result.Lines, LineResult{
			ProductID:         line.ProductID,
			Principal:         principal,
			Subtotal:          subtotal,
			PrincipalRateBps:  rate,
			PrincipalDiscount: discount,
		})
	}
	if len(skipped) > 0 {
		for id := range skipped {
			result.SkippedProducts = append(result.SkippedProducts, id)
		}
		sort.Strings(result.SkippedProducts)
	}

	result.StrataDiscount, result.Groups = GroupDiscounts(cart, cat, ctx)
	result.BundleDiscount = BundleDiscounts(cart, cat, ctx)

	afterDiscount := result.Base - result.PrincipalDiscount - result.StrataDiscount - result.BundleDiscount
	if afterDiscount < 0 {
		afterDiscount = 0
	}
	result.InvoiceDiscount, result.InvoiceRateBps = InvoiceDiscountAmount(
		result.Base, afterDiscount, cat.InvoiceDiscounts, ctx.PaymentMethod)

	result.Net = afterDiscount - result.InvoiceDiscount
	if result.Net < 0 {
		result.Net = 0
	}

	result.Cashback = Cashback(result.Net, cart, cat, ctx)
	return result, nil
}
