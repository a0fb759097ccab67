package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/store"
)

// DashboardService assembles the landing-page summary. When a Redis
// client is wired in, the summary is cached briefly; without one every
// request recomputes from the stores.
type DashboardService struct {
	router     dataRouter
	attendance *AttendanceService
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewDashboardService constructs a DashboardService. cache may be nil.
func NewDashboardService(router dataRouter, attendance *AttendanceService, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{
		router:     router,
		attendance: attendance,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// DashboardSummary is the landing-page snapshot for one day.
type DashboardSummary struct {
	Date           string              `json:"date"`
	Online         bool                `json:"online"`
	TotalWorkers   int                 `json:"total_workers"`
	ActiveWorkers  int                 `json:"active_workers"`
	Marked         int                 `json:"marked"`
	Unmarked       int                 `json:"unmarked"`
	Metrics        models.DailyMetrics `json:"metrics"`
	SectionMetrics map[string]int      `json:"present_by_section"`
}

// Summary builds the snapshot for the given date.
func (s *DashboardService) Summary(ctx context.Context, date string) (*DashboardSummary, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:%s", date)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached DashboardSummary
			if json.Unmarshal(raw, &cached) == nil {
				// Connectivity is live state, never served stale.
				cached.Online = s.router.Online(ctx)
				return &cached, nil
			}
		}
	}

	reg, err := s.attendance.DailyRegister(ctx, date, RegisterFilter{})
	if err != nil {
		return nil, err
	}
	workerRows, err := s.router.Read(ctx, store.TableWorkers)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		Date:           reg.Date,
		Online:         s.router.Online(ctx),
		Metrics:        reg.Metrics,
		Marked:         reg.Metrics.Total,
		SectionMetrics: map[string]int{},
	}
	for _, row := range workerRows {
		w := models.WorkerFromRow(row)
		summary.TotalWorkers++
		if w.Active {
			summary.ActiveWorkers++
		}
	}
	if summary.ActiveWorkers > summary.Marked {
		summary.Unmarked = summary.ActiveWorkers - summary.Marked
	}
	for _, rec := range reg.Records {
		if rec.Status == models.StatusPresent || rec.Status == models.StatusLate {
			summary.SectionMetrics[rec.Section]++
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary for a date after writes.
func (s *DashboardService) Invalidate(ctx context.Context, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf("dashboard:%s", date)).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
