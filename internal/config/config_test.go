package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":       "postgres://localhost/grosir",
		"REDIS_URL":          "redis://localhost:6379/0",
		"JWT_SECRET":         "secret",
		"PRICING_ZONE":       "",
		"LOYALTY_STORE_TYPE": "",
		"QUOTE_RATE_LIMIT":   "",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PricingZone != "NATIONAL" {
		t.Fatalf("pricing zone = %q, want NATIONAL", cfg.PricingZone)
	}
	if cfg.LoyaltyStoreType != "grosir" {
		t.Fatalf("loyalty store type = %q, want grosir", cfg.LoyaltyStoreType)
	}
	if cfg.CatalogCacheTTL != 5*time.Minute {
		t.Fatalf("cache ttl = %v, want 5m", cfg.CatalogCacheTTL)
	}
	if cfg.QuoteRateLimit != 60 {
		t.Fatalf("quote rate limit = %d, want 60", cfg.QuoteRateLimit)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("http addr = %q, want :8080", cfg.HTTPAddr())
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost/grosir",
		"REDIS_URL":           "redis://localhost:6379/0",
		"JWT_SECRET":          "secret",
		"PRICING_ZONE":        "jkt-01",
		"CASHBACK_PRINCIPALS": "UL, WINGS ,",
		"CATALOG_CACHE_TTL":   "90s",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PricingZone != "JKT-01" {
		t.Fatalf("pricing zone = %q, want JKT-01", cfg.PricingZone)
	}
	if len(cfg.CashbackPrincipals) != 2 || cfg.CashbackPrincipals[0] != "UL" || cfg.CashbackPrincipals[1] != "WINGS" {
		t.Fatalf("cashback principals = %#v", cfg.CashbackPrincipals)
	}
	if cfg.CatalogCacheTTL != 90*time.Second {
		t.Fatalf("cache ttl = %v, want 90s", cfg.CatalogCacheTTL)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "secret",
	})
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}
