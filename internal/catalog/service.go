package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/pricing"
)

// Loader supplies a fresh catalog snapshot for one pricing zone.
type Loader interface {
	Load(ctx context.Context, zone string) (pricing.Catalog, error)
}

// Service hands out versioned, zone-keyed catalog snapshots. Reads go through
// the Redis cache first; a miss falls back to the loader and repopulates the
// cache. Refresh bypasses the cache unconditionally.
type Service struct {
	loader             Loader
	cache              *Cache
	logger             zerolog.Logger
	loyaltyStoreType   string
	cashbackPrincipals []string

	mu   sync.RWMutex
	last map[string]pricing.Catalog
}

// ServiceConfig groups Service dependencies. LoyaltyStoreType and
// CashbackPrincipals are deployment policy, so they are stamped onto every
// snapshot here instead of living in the database.
type ServiceConfig struct {
	Loader             Loader
	Cache              *Cache
	Logger             zerolog.Logger
	LoyaltyStoreType   string
	CashbackPrincipals []string
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Loader == nil {
		return nil, errors.New("catalog: loader is required")
	}
	return &Service{
		loader:             cfg.Loader,
		cache:              cfg.Cache,
		logger:             cfg.Logger,
		loyaltyStoreType:   cfg.LoyaltyStoreType,
		cashbackPrincipals: cfg.CashbackPrincipals,
		last:               map[string]pricing.Catalog{},
	}, nil
}

// Snapshot returns the catalog for a zone, cached when possible. When both
// the cache and the loader fail, the last snapshot successfully served for
// that zone is returned so pricing degrades to stale data instead of erroring.
func (s *Service) Snapshot(ctx context.Context, zone string) (pricing.Catalog, error) {
	zone = pricing.NormalizeCode(zone)

	var cached pricing.Catalog
	ok, err := s.cache.GetJSON(ctx, snapshotKey(zone), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("zone", zone).Msg("catalog cache read failed")
	}
	if ok && cached.Products != nil {
		s.remember(zone, cached)
		return cached, nil
	}

	cat, err := s.Refresh(ctx, zone)
	if err != nil {
		if stale, ok := s.recall(zone); ok {
			s.logger.Warn().Err(err).Str("zone", zone).Msg("serving stale catalog snapshot")
			return stale, nil
		}
		return pricing.Catalog{}, err
	}
	return cat, nil
}

// Refresh loads a fresh snapshot from the backing store, stamps a version,
// and repopulates the cache.
func (s *Service) Refresh(ctx context.Context, zone string) (pricing.Catalog, error) {
	zone = pricing.NormalizeCode(zone)
	cat, err := s.loader.Load(ctx, zone)
	if err != nil {
		return pricing.Catalog{}, common.NewAppError(
			"CATALOG_REFRESH_FAILED",
			fmt.Sprintf("could not refresh catalog snapshot for zone %s", zone),
			http.StatusBadGateway,
			err,
		)
	}
	cat.Version = time.Now().UTC().Format(time.RFC3339)
	cat.LoyaltyStoreType = s.loyaltyStoreType
	cat.CashbackPrincipals = s.cashbackPrincipals

	if err := s.cache.SetJSON(ctx, snapshotKey(zone), cat); err != nil {
		s.logger.Warn().Err(err).Str("zone", zone).Msg("catalog cache write failed")
	}
	s.remember(zone, cat)
	return cat, nil
}

// Version reports the version of the snapshot last served for a zone, or an
// empty string when none has been loaded yet.
func (s *Service) Version(zone string) string {
	if cat, ok := s.recall(pricing.NormalizeCode(zone)); ok {
		return cat.Version
	}
	return ""
}

func (s *Service) remember(zone string, cat pricing.Catalog) {
	s.mu.Lock()
	s.last[zone] = cat
	s.mu.Unlock()
}

func (s *Service) recall(zone string) (pricing.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cat, ok := s.last[zone]
	return cat, ok
}
