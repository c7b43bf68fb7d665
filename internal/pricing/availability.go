package pricing

// RuleDimensions flags which optional dimensions a rule set carries. The one
// resolver algorithm serves promos, product groups, and loyalty classes; only
// the dimensions differ per target type.
type RuleDimensions struct {
	StoreType bool
	DateRange bool
}

// Dimension profiles for the three rule catalogs.
var (
	PromoDimensions   = RuleDimensions{StoreType: true, DateRange: true}
	GroupDimensions   = RuleDimensions{StoreType: true, DateRange: true}
	LoyaltyDimensions = RuleDimensions{StoreType: false, DateRange: false}
)

// IndexRules groups rules by normalized target id so repeated availability
// checks against one snapshot avoid scanning the whole catalog per call.
func IndexRules(rules []AvailabilityRule) map[string][]AvailabilityRule {
	idx := make(map[string][]AvailabilityRule, len(rules))
	for _, r := range rules {
		id := NormalizeCode(r.TargetID)
		idx[id] = append(idx[id], r)
	}
	return idx
}

// IsAvailable resolves whether a target (promo, product group, or loyalty
// class) applies under the given context. Deny rules have absolute
// precedence; a target with no rules at all is available (default-open), as
// is a deny-only catalog whose deny rules do not match.
func IsAvailable(targetID string, rules []AvailabilityRule, dims RuleDimensions, ctx Context) bool {
	matched := targetRules(targetID, rules)
	if len(matched) == 0 {
		return true
	}

	if dims.DateRange {
		kept := matched[:0:0]
		for _, r := range matched {
			if r.ValidFrom != nil && ctx.Date.Before(*r.ValidFrom) {
				continue
			}
			if r.ValidTo != nil && ctx.Date.After(*r.ValidTo) {
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			return false
		}
		matched = kept
	}

	if dims.StoreType {
		store := NormalizeCode(ctx.StoreType)
		kept := matched[:0:0]
		for _, r := range matched {
			rs := NormalizeCode(r.StoreType)
			if rs == "" || rs == "ALL" || rs == store {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			return false
		}
		matched = kept
	}

	allows := 0
	for _, r := range matched {
		if r.Kind == RuleDeny {
			if r.MatchesGeo(ctx.Geo) {
				return false
			}
			continue
		}
		allows++
	}
	if allows == 0 {
		return true
	}
	for _, r := range matched {
		if r.Kind != RuleDeny && r.MatchesGeo(ctx.Geo) {
			return true
		}
	}
	return false
}

// MatchSpecificity returns the highest specificity score among the target's
// allow rules that match the context, or zero when none do. Engines use it to
// let narrow local rules outrank broad national ones before comparing benefit.
func MatchSpecificity(targetID string, rules []AvailabilityRule, ctx Context) int {
	best := 0
	for _, r := range targetRules(targetID, rules) {
		if r.Kind == RuleDeny {
			continue
		}
		if r.MatchesGeo(ctx.Geo) && r.Specificity() > best {
			best = r.Specificity()
		}
	}
	return best
}

func targetRules(targetID string, rules []AvailabilityRule) []AvailabilityRule {
	id := NormalizeCode(targetID)
	var matched []AvailabilityRule
	for _, r := range rules {
		if NormalizeCode(r.TargetID) == id {
			matched = append(matched, r)
		}
	}
	return matched
}
