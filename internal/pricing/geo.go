package pricing

// matchCodes reports whether a rule's code set contains the user's value at
// one scope level. Empty sets never match; the sentinel "all" inside a set
// matches any value.
func matchCodes(codes []string, value string) bool {
	if len(codes) == 0 {
		return false
	}
	v := NormalizeCode(value)
	for _, c := range codes {
		code := NormalizeCode(c)
		if code == "" {
			continue
		}
		if code == "ALL" || code == v {
			return true
		}
	}
	return false
}

// MatchesGeo reports whether the rule's geographic scope covers the given
// geography. A rule at level "all" always matches.
func (r AvailabilityRule) MatchesGeo(geo Geography) bool {
	switch r.Level {
	case ScopeAll:
		return true
	case ScopeZone:
		return matchCodes(r.Zones, geo.Zone)
	case ScopeRegion:
		return matchCodes(r.Regions, geo.Region)
	case ScopeDepot:
		return matchCodes(r.Depots, geo.Depot)
	default:
		return false
	}
}

// Specificity scores the rule's scope narrowness. Narrower scopes outrank
// broader ones: depot > region > zone > all.
func (r AvailabilityRule) Specificity() int {
	switch r.Level {
	case ScopeDepot:
		return 3
	case ScopeRegion:
		return 2
	case ScopeZone:
		return 1
	default:
		return 0
	}
}
