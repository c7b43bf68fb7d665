package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Store types recognised by rule evaluation.
const (
	StoreGrosir = "grosir"
	StoreRetail = "retail"
	StoreAll    = "all"
)

// RuleKind distinguishes allow rules from deny rules.
type RuleKind string

const (
	RuleAllow RuleKind = "allow"
	RuleDeny  RuleKind = "deny"
)

// ScopeLevel identifies the geographic granularity of an availability rule.
type ScopeLevel string

const (
	ScopeZone   ScopeLevel = "zone"
	ScopeRegion ScopeLevel = "region"
	ScopeDepot  ScopeLevel = "depot"
	ScopeAll    ScopeLevel = "all"
)

// Unit identifies which physical unit quantities are counted in.
type Unit string

const (
	UnitCase  Unit = "case"
	UnitPiece Unit = "piece"
)

// TierMode controls whether a group promo requires product variety.
type TierMode string

const (
	TierMix    TierMode = "mix"
	TierNonMix TierMode = "non_mix"
)

// Geography carries the caller's zone, region, and depot codes.
type Geography struct {
	Zone   string `json:"zone"`
	Region string `json:"region"`
	Depot  string `json:"depot"`
}

// CartLine is one ordered product with quantities in case and piece units.
type CartLine struct {
	ProductID string `json:"productId"`
	CaseQty   int64  `json:"caseQty"`
	PieceQty  int64  `json:"pieceQty"`
}

// Cart is the set of lines to be priced.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Product is immutable reference data for one calculation. CasePrice is the
// tax-inclusive price for one case, already filtered to the caller's zone.
type Product struct {
	ID            string `json:"id"`
	Principal     string `json:"principal"`
	Group         string `json:"group"`
	CasePrice     Money  `json:"casePrice"`
	PiecesPerCase int64  `json:"piecesPerCase"`
}

// AvailabilityRule scopes a promo, product group, or loyalty class to a
// geography, store type, and date window. Empty code sets never match.
type AvailabilityRule struct {
	TargetID  string     `json:"targetId"`
	Kind      RuleKind   `json:"kind"`
	Level     ScopeLevel `json:"level"`
	Zones     []string   `json:"zones"`
	Regions   []string   `json:"regions"`
	Depots    []string   `json:"depots"`
	StoreType string     `json:"storeType"`
	ValidFrom *time.Time `json:"validFrom,omitempty"`
	ValidTo   *time.Time `json:"validTo,omitempty"`
}

// PrincipalTier grants a discount rate once cumulative spend with the covered
// principals reaches MinSpend. RateBps is the rate in basis points.
type PrincipalTier struct {
	PromoID    string   `json:"promoId"`
	Principals []string `json:"principals"`
	MinSpend   Money    `json:"minSpend"`
	RateBps    int32    `json:"rateBps"`
}

// GroupPromo is the header of a quantity-strata promo for one product group.
type GroupPromo struct {
	ID    string   `json:"id"`
	Group string   `json:"group"`
	Unit  Unit     `json:"unit"`
	Mode  TierMode `json:"mode"`
}

// GroupTier is one rung of a group promo's ascending quantity ladder.
// PerUnit is a fixed amount for sub-unit tiers (MinQty below one whole unit)
// and a per-whole-unit amount otherwise.
type GroupTier struct {
	PromoID     string          `json:"promoId"`
	MinQty      decimal.Decimal `json:"minQty"`
	PerUnit     Money           `json:"perUnit"`
	MinVariants int             `json:"minVariants"`
}

// BundlePromo rewards complete multi-bucket packages.
type BundlePromo struct {
	ID          string `json:"id"`
	PerPackage  Money  `json:"perPackage"`
	MaxPackages int64  `json:"maxPackages"`
}

// BundleBucket is one bucket requirement of a bundle promo. Every bucket must
// be satisfied simultaneously for a package to count.
type BundleBucket struct {
	PromoID  string          `json:"promoId"`
	BucketID string          `json:"bucketId"`
	Required decimal.Decimal `json:"required"`
	Unit     Unit            `json:"unit"`
}

// InvoiceDiscount is a payment-method-conditioned percentage discount.
type InvoiceDiscount struct {
	Method      string `json:"method"`
	MinPurchase Money  `json:"minPurchase"`
	RateBps     int32  `json:"rateBps"`
}

// LoyaltyRule defines cashback for a loyalty class at a store type.
type LoyaltyRule struct {
	Class         string `json:"class"`
	StoreType     string `json:"storeType"`
	MonthlyTarget Money  `json:"monthlyTarget"`
	CashbackBps   int32  `json:"cashbackBps"`
}

// Catalog bundles every read-only snapshot Price needs. The core never
// mutates it and holds no state between calls.
type Catalog struct {
	Version            string                     `json:"version"`
	Products           map[string]Product         `json:"products"`
	GroupMembers       map[string][]string        `json:"groupMembers"`
	PrincipalTiers     []PrincipalTier            `json:"principalTiers"`
	GroupPromos        []GroupPromo               `json:"groupPromos"`
	GroupTiers         []GroupTier                `json:"groupTiers"`
	BundlePromos       []BundlePromo              `json:"bundlePromos"`
	BundleBuckets      []BundleBucket             `json:"bundleBuckets"`
	BucketMembers      map[string][]string        `json:"bucketMembers"`
	InvoiceDiscounts   []InvoiceDiscount          `json:"invoiceDiscounts"`
	LoyaltyRules       []LoyaltyRule              `json:"loyaltyRules"`
	PromoRules         []AvailabilityRule         `json:"promoRules"`
	GroupRules         []AvailabilityRule         `json:"groupRules"`
	LoyaltyClassRules  []AvailabilityRule         `json:"loyaltyClassRules"`
	CashbackPrincipals []string                   `json:"cashbackPrincipals"`
	LoyaltyStoreType   string                     `json:"loyaltyStoreType"`
}

// Context captures the sales situation a cart is priced under.
type Context struct {
	StoreType     string    `json:"storeType"`
	Geo           Geography `json:"geo"`
	PaymentMethod string    `json:"paymentMethod"`
	LoyaltyClass  string    `json:"loyaltyClass"`
	Date          time.Time `json:"date"`
}

// LineResult is the per-line breakdown in a priced result.
type LineResult struct {
	ProductID         string `json:"productId"`
	Principal         string `json:"principal"`
	Subtotal          Money  `json:"subtotal"`
	PrincipalRateBps  int32  `json:"principalRateBps"`
	PrincipalDiscount Money  `json:"principalDiscount"`
}

// GroupResult is the per-group strata breakdown.
type GroupResult struct {
	Group    string          `json:"group"`
	PromoID  string          `json:"promoId"`
	Quantity decimal.Decimal `json:"quantity"`
	TierMin  decimal.Decimal `json:"tierMin"`
	Discount Money           `json:"discount"`
	Reason   string          `json:"reason,omitempty"`
}

// CashbackEstimate is the off-invoice loyalty estimate. It is informational
// and never part of the payable net total.
type CashbackEstimate struct {
	Eligible      bool   `json:"eligible"`
	Class         string `json:"class,omitempty"`
	RateBps       int32  `json:"rateBps,omitempty"`
	MonthlyTarget Money  `json:"monthlyTarget,omitempty"`
	Amount        Money  `json:"amount"`
	Reason        string `json:"reason,omitempty"`
}

// Result is the layered discount stack for one cart.
type Result struct {
	Base              Money            `json:"base"`
	PrincipalDiscount Money            `json:"principalDiscount"`
	StrataDiscount    Money            `json:"strataDiscount"`
	BundleDiscount    Money            `json:"bundleDiscount"`
	InvoiceDiscount   Money            `json:"invoiceDiscount"`
	InvoiceRateBps    int32            `json:"invoiceRateBps"`
	Net               Money            `json:"net"`
	Lines             []LineResult     `json:"lines"`
	Groups            []GroupResult    `json:"groups"`
	Cashback          CashbackEstimate `json:"cashback"`
	SkippedProducts   []string         `json:"skippedProducts,omitempty"`
}

// NormalizeCode canonicalises principal, group, and geography codes before
// comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseCodeList splits a delimited code string ("A, B;C") into normalized
// codes. Loaders use it for legacy principal-code columns.
func ParseCodeList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if code := NormalizeCode(f); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// LineSubtotal converts a line's case and piece quantities into money using
// the product's tax-inclusive case price. Piece quantities price at the
// fractional per-piece share of the case price.
func LineSubtotal(p Product, l CartLine) Money {
	caseQty := l.CaseQty
	pieceQty := l.PieceQty
	if caseQty < 0 {
		caseQty = 0
	}
	if pieceQty < 0 {
		pieceQty = 0
	}
	price := decimal.NewFromInt(p.CasePrice)
	total := decimal.NewFromInt(caseQty).Mul(price)
	if pieceQty > 0 && p.PiecesPerCase > 0 {
		perPiece := price.Div(decimal.NewFromInt(p.PiecesPerCase))
		total = total.Add(decimal.NewFromInt(pieceQty).Mul(perPiece))
	}
	return total.Round(0).IntPart()
}

// LineQuantity converts a line's quantities into the requested unit. Case
// totals include the fractional contribution of leftover pieces, which is what
// lets sub-unit tiers (half a case) match.
func LineQuantity(p Product, l CartLine, unit Unit) decimal.Decimal {
	caseQty := l.CaseQty
	pieceQty := l.PieceQty
	if caseQty < 0 {
		caseQty = 0
	}
	if pieceQty < 0 {
		pieceQty = 0
	}
	switch unit {
	case UnitPiece:
		total := decimal.NewFromInt(pieceQty)
		if p.PiecesPerCase > 0 {
			total = total.Add(decimal.NewFromInt(caseQty).Mul(decimal.NewFromInt(p.PiecesPerCase)))
		}
		return total
	default:
		total := decimal.NewFromInt(caseQty)
		if pieceQty > 0 && p.PiecesPerCase > 0 {
			total = total.Add(decimal.NewFromInt(pieceQty).Div(decimal.NewFromInt(p.PiecesPerCase)))
		}
		return total
	}
}

func bpsAmount(base Money, rateBps int32) Money {
	if base <= 0 || rateBps <= 0 {
		return 0
	}
	return (base * int64(rateBps)) / 10000
}
