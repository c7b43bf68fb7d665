package pricing

// Cashback reason codes. Failed preconditions yield a zero estimate carrying
// one of these, never an error.
const (
	ReasonStoreType           = "store type not eligible"
	ReasonNoClass             = "no loyalty class selected"
	ReasonIneligiblePrincipal = "ineligible principal"
	ReasonClassUnavailable    = "loyalty class not available"
	ReasonNoRule              = "no cashback rule for class"
)

// Cashback estimates the off-invoice loyalty cashback from the finished net
// total. All preconditions must hold: eligible store type, a selected class,
// at least one cart line from a cashback-eligible principal, and the class
// available for the caller's geography.
func Cashback(net Money, cart Cart, cat Catalog, ctx Context) CashbackEstimate {
	eligibleStore := NormalizeCode(cat.LoyaltyStoreType)
	if eligibleStore == "" {
		eligibleStore = NormalizeCode(StoreGrosir)
	}
	if NormalizeCode(ctx.StoreType) != eligibleStore {
		return CashbackEstimate{Reason: ReasonStoreType}
	}
	class := NormalizeCode(ctx.LoyaltyClass)
	if class == "" {
		return CashbackEstimate{Reason: ReasonNoClass}
	}
	if !cartHasPrincipal(cart, cat, cat.CashbackPrincipals) {
		return CashbackEstimate{Class: class, Reason: ReasonIneligiblePrincipal}
	}
	classRules := targetRules(class, cat.LoyaltyClassRules)
	if !IsAvailable(class, classRules, LoyaltyDimensions, ctx) {
		return CashbackEstimate{Class: class, Reason: ReasonClassUnavailable}
	}

	rule, ok := resolveLoyaltyRule(cat.LoyaltyRules, class, ctx.StoreType)
	if !ok {
		return CashbackEstimate{Class: class, Reason: ReasonNoRule}
	}

	amount := Money(0)
	if net > 0 && rule.CashbackBps > 0 {
		// Round to the nearest whole currency unit.
		amount = (net*int64(rule.CashbackBps) + 5000) / 10000
	}
	return CashbackEstimate{
		Eligible:      true,
		Class:         class,
		RateBps:       rule.CashbackBps,
		MonthlyTarget: rule.MonthlyTarget,
		Amount:        amount,
	}
}

// resolveLoyaltyRule prefers an exact store-type match, then an "all" rule,
// then the first rule defined for the class.
func resolveLoyaltyRule(rules []LoyaltyRule, class, storeType string) (LoyaltyRule, bool) {
	store := NormalizeCode(storeType)
	var allRule, firstRule *LoyaltyRule
	for i := range rules {
		rule := rules[i]
		if NormalizeCode(rule.Class) != class {
			continue
		}
		switch NormalizeCode(rule.StoreType) {
		case store:
			return rule, true
		case "ALL":
			if allRule == nil {
				allRule = &rule
			}
		}
		if firstRule == nil {
			firstRule = &rule
		}
	}
	if allRule != nil {
		return *allRule, true
	}
	if firstRule != nil {
		return *firstRule, true
	}
	return LoyaltyRule{}, false
}

func cartHasPrincipal(cart Cart, cat Catalog, principals []string) bool {
	if len(principals) == 0 {
		return false
	}
	allowed := make(map[string]struct{}, len(principals))
	for _, p := range principals {
		if code := NormalizeCode(p); code != "" {
			allowed[code] = struct{}{}
		}
	}
	for _, line := range cart.Lines {
		product, ok := cat.Products[line.ProductID]
		if !ok {
			continue
		}
		if _, ok := allowed[NormalizeCode(product.Principal)]; ok {
			return true
		}
	}
	return false
}
