package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/config"
	"github.com/stokku/inventory-service/internal/alert"
	"github.com/stokku/inventory-service/internal/forecast"
	"github.com/stokku/inventory-service/internal/inventory"
	"github.com/stokku/inventory-service/pkg/cache"
)

const (
	sweepLockKey    = "lock:sweep:alerts"
	forecastLockKey = "lock:sweep:forecast"
	lockTTL         = 10 * time.Minute
	jobTimeout      = 5 * time.Minute
)

// Scheduler runs the periodic stock-health sweep and forecast cache warm-up.
// Each job is a bounded unit of work; the redis lease keeps it single-flight
// across service instances.
type Scheduler struct {
	cron      *cron.Cron
	alerts    *alert.Engine
	forecasts *forecast.Engine
	invRepo   inventory.Repository
	redis     *cache.RedisClient
	cfg       config.SchedulerConfig
	logger    *zap.Logger
}

func NewScheduler(
	cfg config.SchedulerConfig,
	alerts *alert.Engine,
	forecasts *forecast.Engine,
	invRepo inventory.Repository,
	redis *cache.RedisClient,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(),
		alerts:    alerts,
		forecasts: forecasts,
		invRepo:   invRepo,
		redis:     redis,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("alert_sweep", s.cfg.AlertSweepCron),
		zap.String("forecast_warm", s.cfg.ForecastWarmCron))

	if _, err := s.cron.AddFunc(s.cfg.AlertSweepCron, s.runAlertSweep); err != nil {
		s.logger.Error("failed to schedule alert sweep", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.ForecastWarmCron, s.runForecastWarm); err != nil {
		s.logger.Error("failed to schedule forecast warm-up", zap.Error(err))
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runAlertSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	release, ok := s.tryLock(ctx, sweepLockKey)
	if !ok {
		return
	}
	defer release()

	if err := s.alerts.Sweep(ctx); err != nil {
		s.logger.Error("alert sweep failed", zap.Error(err))
	}
}

// runForecastWarm recomputes forecasts for every row at or below its reorder
// point so that planning reads hit a fresh cache.
func (s *Scheduler) runForecastWarm() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	release, ok := s.tryLock(ctx, forecastLockKey)
	if !ok {
		return
	}
	defer release()

	items, err := s.invRepo.FindLowStock(ctx, "")
	if err != nil {
		s.logger.Error("forecast warm-up failed to list candidates", zap.Error(err))
		return
	}

	for i := range items {
		_, err := s.forecasts.Forecast(ctx, items[i].ProductID, items[i].StoreID, 30, 0.95)
		if err != nil {
			s.logger.Warn("forecast warm-up failed",
				zap.String("store_id", items[i].StoreID),
				zap.String("product_id", items[i].ProductID),
				zap.Error(err))
		}
	}

	s.logger.Info("forecast warm-up finished", zap.Int("candidates", len(items)))
}

// tryLock acquires the single-flight lease. When redis is unavailable the
// job runs anyway; overlapping sweeps are wasteful but harmless.
func (s *Scheduler) tryLock(ctx context.Context, key string) (func(), bool) {
	if s.redis == nil {
		return func() {}, true
	}

	token := uuid.New().String()
	ok, err := s.redis.AcquireLock(ctx, key, token, lockTTL)
	if err != nil {
		s.logger.Warn("lease acquisition failed, running unlocked", zap.String("key", key), zap.Error(err))
		return func() {}, true
	}
	if !ok {
		s.logger.Info("another instance holds the lease, skipping", zap.String("key", key))
		return nil, false
	}

	return func() {
		if err := s.redis.ReleaseLock(ctx, key, token); err != nil {
			s.logger.Warn("lease release failed", zap.String("key", key), zap.Error(err))
		}
	}, true
}
