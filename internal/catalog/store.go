package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-grosir/internal/pricing"
)

// Rule target types as stored in availability_rules.target_type.
const (
	TargetPromo        = "promo"
	TargetGroup        = "group"
	TargetLoyaltyClass = "loyalty_class"
)

// Store loads pricing snapshots from Postgres. Prices are resolved per zone;
// products without a price row for the requested zone are excluded, which is
// what keeps the core free of zone lookups.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Load assembles a complete catalog snapshot for one pricing zone.
func (s *Store) Load(ctx context.Context, zone string) (pricing.Catalog, error) {
	cat := pricing.Catalog{
		Products:      map[string]pricing.Product{},
		GroupMembers:  map[string][]string{},
		BucketMembers: map[string][]string{},
	}

	if err := s.loadProducts(ctx, zone, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	if err := s.loadGroupMembers(ctx, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	if err := s.loadPrincipalTiers(ctx, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	if err := s.loadGroupPromos(ctx, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	if err := s.loadBundles(ctx, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	if err := s.loadInvoiceDiscounts(ctx, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	if err := s.loadLoyaltyRules(ctx, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	if err := s.loadAvailabilityRules(ctx, &cat); err != nil {
		return pricing.Catalog{}, err
	}
	return cat, nil
}

func (s *Store) loadProducts(ctx context.Context, zone string, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.principal, p.group_code, p.pieces_per_case, pp.case_price
		FROM products p
		JOIN product_prices pp ON pp.product_id = p.id
		WHERE pp.zone = $1`, pricing.NormalizeCode(zone))
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p pricing.Product
		if err := rows.Scan(&p.ID, &p.Principal, &p.Group, &p.PiecesPerCase, &p.CasePrice); err != nil {
			return fmt.Errorf("scan product: %w", err)
		}
		cat.Products[p.ID] = p
	}
	return rows.Err()
}

func (s *Store) loadGroupMembers(ctx context.Context, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `SELECT group_code, product_id FROM product_group_members`)
	if err != nil {
		return fmt.Errorf("load group members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var group, productID string
		if err := rows.Scan(&group, &productID); err != nil {
			return fmt.Errorf("scan group member: %w", err)
		}
		group = pricing.NormalizeCode(group)
		cat.GroupMembers[group] = append(cat.GroupMembers[group], productID)
	}
	return rows.Err()
}

func (s *Store) loadPrincipalTiers(ctx context.Context, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `
		SELECT promo_id, principals, min_spend, rate_bps
		FROM principal_tiers ORDER BY promo_id, min_spend`)
	if err != nil {
		return fmt.Errorf("load principal tiers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tier pricing.PrincipalTier
		var principals string
		if err := rows.Scan(&tier.PromoID, &principals, &tier.MinSpend, &tier.RateBps); err != nil {
			return fmt.Errorf("scan principal tier: %w", err)
		}
		// Principal codes live in a delimited legacy column.
		tier.Principals = pricing.ParseCodeList(principals)
		cat.PrincipalTiers = append(cat.PrincipalTiers, tier)
	}
	return rows.Err()
}

func (s *Store) loadGroupPromos(ctx context.Context, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `SELECT id, group_code, unit, mode FROM group_promos`)
	if err != nil {
		return fmt.Errorf("load group promos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var promo pricing.GroupPromo
		var unit, mode string
		if err := rows.Scan(&promo.ID, &promo.Group, &unit, &mode); err != nil {
			return fmt.Errorf("scan group promo: %w", err)
		}
		promo.Unit = pricing.Unit(unit)
		promo.Mode = pricing.TierMode(mode)
		cat.GroupPromos = append(cat.GroupPromos, promo)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tierRows, err := s.pool.Query(ctx, `
		SELECT promo_id, min_qty::text, per_unit, min_variants
		FROM group_promo_tiers ORDER BY promo_id, min_qty`)
	if err != nil {
		return fmt.Errorf("load group tiers: %w", err)
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var tier pricing.GroupTier
		var minQty string
		if err := tierRows.Scan(&tier.PromoID, &minQty, &tier.PerUnit, &tier.MinVariants); err != nil {
			return fmt.Errorf("scan group tier: %w", err)
		}
		tier.MinQty = ParseQuantity(minQty)
		cat.GroupTiers = append(cat.GroupTiers, tier)
	}
	return tierRows.Err()
}

func (s *Store) loadBundles(ctx context.Context, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `SELECT id, per_package, max_packages FROM bundle_promos`)
	if err != nil {
		return fmt.Errorf("load bundle promos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var promo pricing.BundlePromo
		if err := rows.Scan(&promo.ID, &promo.PerPackage, &promo.MaxPackages); err != nil {
			return fmt.Errorf("scan bundle promo: %w", err)
		}
		cat.BundlePromos = append(cat.BundlePromos, promo)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	bucketRows, err := s.pool.Query(ctx, `
		SELECT promo_id, bucket_id, required::text, unit FROM bundle_buckets`)
	if err != nil {
		return fmt.Errorf("load bundle buckets: %w", err)
	}
	defer bucketRows.Close()
	for bucketRows.Next() {
		var bucket pricing.BundleBucket
		var required, unit string
		if err := bucketRows.Scan(&bucket.PromoID, &bucket.BucketID, &required, &unit); err != nil {
			return fmt.Errorf("scan bundle bucket: %w", err)
		}
		bucket.Required = ParseQuantity(required)
		bucket.Unit = pricing.Unit(unit)
		cat.BundleBuckets = append(cat.BundleBuckets, bucket)
	}
	if err := bucketRows.Err(); err != nil {
		return err
	}

	memberRows, err := s.pool.Query(ctx, `SELECT bucket_id, product_id FROM bucket_members`)
	if err != nil {
		return fmt.Errorf("load bucket members: %w", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var bucketID, productID string
		if err := memberRows.Scan(&bucketID, &productID); err != nil {
			return fmt.Errorf("scan bucket member: %w", err)
		}
		cat.BucketMembers[bucketID] = append(cat.BucketMembers[bucketID], productID)
	}
	return memberRows.Err()
}

func (s *Store) loadInvoiceDiscounts(ctx context.Context, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `
		SELECT method, min_purchase, rate_bps FROM invoice_discounts ORDER BY method, min_purchase`)
	if err != nil {
		return fmt.Errorf("load invoice discounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rule pricing.InvoiceDiscount
		if err := rows.Scan(&rule.Method, &rule.MinPurchase, &rule.RateBps); err != nil {
			return fmt.Errorf("scan invoice discount: %w", err)
		}
		cat.InvoiceDiscounts = append(cat.InvoiceDiscounts, rule)
	}
	return rows.Err()
}

func (s *Store) loadLoyaltyRules(ctx context.Context, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `
		SELECT class, store_type, monthly_target, cashback_bps FROM loyalty_rules ORDER BY class`)
	if err != nil {
		return fmt.Errorf("load loyalty rules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rule pricing.LoyaltyRule
		if err := rows.Scan(&rule.Class, &rule.StoreType, &rule.MonthlyTarget, &rule.CashbackBps); err != nil {
			return fmt.Errorf("scan loyalty rule: %w", err)
		}
		cat.LoyaltyRules = append(cat.LoyaltyRules, rule)
	}
	return rows.Err()
}

func (s *Store) loadAvailabilityRules(ctx context.Context, cat *pricing.Catalog) error {
	rows, err := s.pool.Query(ctx, `
		SELECT target_id, target_type, kind, level, zones, regions, depots,
		       COALESCE(store_type, ''), valid_from, valid_to
		FROM availability_rules`)
	if err != nil {
		return fmt.Errorf("load availability rules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rule pricing.AvailabilityRule
		var targetType, kind, level string
		var zones, regions, depots []byte
		var from, to *time.Time
		if err := rows.Scan(&rule.TargetID, &targetType, &kind, &level,
			&zones, &regions, &depots, &rule.StoreType, &from, &to); err != nil {
			return fmt.Errorf("scan availability rule: %w", err)
		}
		rule.Kind = pricing.RuleKind(kind)
		rule.Level = pricing.ScopeLevel(level)
		// Geography columns are normalized once here so the matchers never
		// re-parse legacy encodings.
		rule.Zones = ParseCodes(zones)
		rule.Regions = ParseCodes(regions)
		rule.Depots = ParseCodes(depots)
		rule.ValidFrom = from
		rule.ValidTo = to

		switch targetType {
		case TargetGroup:
			cat.GroupRules = append(cat.GroupRules, rule)
		case TargetLoyaltyClass:
			cat.LoyaltyClassRules = append(cat.LoyaltyClassRules, rule)
		default:
			cat.PromoRules = append(cat.PromoRules, rule)
		}
	}
	return rows.Err()
}
