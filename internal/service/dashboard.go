package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/repository"
)

const (
	dashboardStatsKey = "storefront:dashboard:stats"
	dashboardStatsTTL = 5 * time.Minute
)

// DashboardStats is the admin overview aggregate.
type DashboardStats struct {
	TotalOrders   int     `json:"total_orders"`
	TotalProducts int     `json:"total_products"`
	TotalUsers    int     `json:"total_users"`
	TotalRevenue  float64 `json:"total_revenue"`
	GeneratedAt   string  `json:"generated_at"`
}

// DashboardService aggregates read-only store statistics, cached in Redis
// with a short TTL. Cache failures fall back to the database silently.
type DashboardService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	cache    *redis.Client
	logger   *slog.Logger
}

// NewDashboardService creates a new dashboard service. The cache client may
// be nil, in which case every call hits the database.
func NewDashboardService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	cache *redis.Client,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		orders:   orders,
		products: products,
		users:    users,
		cache:    cache,
		logger:   logger,
	}
}

// GetStats returns the dashboard aggregate, served from cache when fresh.
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardStatsKey).Bytes()
		if err == nil {
			var stats DashboardStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
			s.logger.WarnContext(ctx, "corrupt dashboard cache entry, recomputing")
		} else if err != redis.Nil {
			s.logger.WarnContext(ctx, "dashboard cache read failed",
				slog.String("error", err.Error()))
		}
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, dashboardStatsKey, data, dashboardStatsTTL).Err(); err != nil {
				s.logger.WarnContext(ctx, "dashboard cache write failed",
					slog.String("error", err.Error()))
			}
		}
	}

	return stats, nil
}

func (s *DashboardService) computeStats(ctx context.Context) (*DashboardStats, error) {
	orderCount, err := s.orders.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	productCount, err := s.products.Count(ctx, repository.ListParams{})
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	revenue, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	return &DashboardStats{
		TotalOrders:   orderCount,
		TotalProducts: productCount,
		TotalUsers:    userCount,
		TotalRevenue:  revenue,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}
