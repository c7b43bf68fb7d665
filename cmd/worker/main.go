package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-grosir/internal/catalog"
	"github.com/noah-isme/backend-grosir/internal/config"
	"github.com/noah-isme/backend-grosir/internal/lock"
	"github.com/noah-isme/backend-grosir/internal/obs"
)

const taskCatalogRefresh = "catalog:refresh"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "grosir"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "grosir-worker"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Loader:             catalog.NewStore(pool),
		Cache:              catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Logger:             logger,
		LoyaltyStoreType:   cfg.LoyaltyStoreType,
		CashbackPrincipals: cfg.CashbackPrincipals,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	refresher := snapshotRefresher{
		service: catalogService,
		locker:  lock.Locker{R: redisClient},
		logger:  logger,
		zones:   refreshZones(cfg),
	}

	asynqOpt := asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(taskCatalogRefresh, refresher.Handle)

	server := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency: envInt("WORKER_CONCURRENCY", 2),
		Logger:      asynqLogger{logger},
	})

	scheduler := asynq.NewScheduler(asynqOpt, &asynq.SchedulerOpts{
		Logger: asynqLogger{logger},
	})
	interval := cfg.CatalogRefreshInterval
	if interval < time.Minute {
		interval = time.Minute
	}
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := scheduler.Register(spec, asynq.NewTask(taskCatalogRefresh, nil)); err != nil {
		logger.Fatal().Err(err).Msg("register refresh schedule")
	}

	if err := server.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}
	if err := scheduler.Start(); err != nil {
		server.Shutdown()
		logger.Fatal().Err(err).Msg("start scheduler")
	}

	logger.Info().
		Str("interval", interval.String()).
		Strs("zones", refresher.zones).
		Msg("worker started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	scheduler.Shutdown()
	server.Shutdown()
}

// snapshotRefresher rebuilds catalog snapshots on a schedule so API instances
// keep serving warm caches. The lock ensures only one worker refreshes a zone
// at a time across the fleet.
type snapshotRefresher struct {
	service *catalog.Service
	locker  lock.Locker
	logger  zerolog.Logger
	zones   []string
}

func (s snapshotRefresher) Handle(ctx context.Context, _ *asynq.Task) error {
	for _, zone := range s.zones {
		if err := s.refreshZone(ctx, zone); err != nil {
			s.logger.Error().Err(err).Str("zone", zone).Msg("refresh catalog snapshot")
		}
	}
	return nil
}

func (s snapshotRefresher) refreshZone(ctx context.Context, zone string) error {
	return s.locker.WithLock(ctx, "lock:catalog:refresh:"+zone, 2*time.Minute, func(ctx context.Context) error {
		start := time.Now()
		_, err := s.service.Refresh(ctx, zone)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		if obs.SnapshotBuildTotal != nil {
			obs.SnapshotBuildTotal.WithLabelValues(zone, outcome).Inc()
		}
		if obs.SnapshotBuildDuration != nil {
			obs.SnapshotBuildDuration.Observe(float64(time.Since(start).Milliseconds()))
		}
		if err == nil {
			s.logger.Info().Str("zone", zone).Dur("took", time.Since(start)).Msg("catalog snapshot refreshed")
		}
		return err
	})
}

func refreshZones(cfg *config.Config) []string {
	raw := envOrDefault("CATALOG_REFRESH_ZONES", "")
	if raw == "" {
		return []string{cfg.PricingZone}
	}
	parts := strings.Split(raw, ",")
	zones := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToUpper(strings.TrimSpace(part))
		if trimmed != "" {
			zones = append(zones, trimmed)
		}
	}
	if len(zones) == 0 {
		return []string{cfg.PricingZone}
	}
	return zones
}

// asynqLogger adapts zerolog to the asynq logging interface.
type asynqLogger struct {
	logger zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		var parsed int
		if _, err := fmt.Sscanf(strings.TrimSpace(val), "%d", &parsed); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
