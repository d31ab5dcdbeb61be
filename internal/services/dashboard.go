package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"financetracker/internal/cache"
	"financetracker/internal/core"
	"financetracker/internal/storage"
)

const RecentTransactionsLimit = 10

// Dashboard is the monthly overview of one user.
type Dashboard struct {
	Year               int
	Month              time.Month
	Summary            core.Summary
	RecentTransactions []core.Transaction
	Budgets            []core.Utilization
	ExpenseBreakdown   []core.CategoryTotal
}

// CurrentMonth renders the month as "January 2006".
func (d Dashboard) CurrentMonth() string {
	return time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

type DashboardService struct {
	repo  *storage.SQLiteRepository
	cache cache.Cache[Dashboard]
	now   func() time.Time

	// generations advance on every Invalidate. Keys carry the generation
	// so a Build that started before an invalidation never fills a key
	// later readers will look up.
	mu          sync.Mutex
	generations map[int64]uint64
}

// NewDashboardService builds the service. A nil cache disables caching.
func NewDashboardService(repo *storage.SQLiteRepository, c cache.Cache[Dashboard]) *DashboardService {
	return &DashboardService{repo: repo, cache: c, now: time.Now, generations: make(map[int64]uint64)}
}

// Today is the day dashboards default to.
func (s *DashboardService) Today() core.Date {
	return core.DateOf(s.now())
}

func dashboardPrefix(userID int64) string {
	return fmt.Sprintf("dashboard:%d:", userID)
}

func dashboardKey(userID int64, generation uint64, year int, month time.Month) string {
	return fmt.Sprintf("%sg%d:%04d-%02d", dashboardPrefix(userID), generation, year, int(month))
}

func (s *DashboardService) generation(userID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// Build assembles the dashboard for (year, month). Monthly budgets are
// measured over that month.
func (s *DashboardService) Build(ctx context.Context, userID int64, year int, month time.Month) (Dashboard, error) {
	gen := s.generation(userID)
	key := dashboardKey(userID, gen, year, month)
	if s.cache != nil {
		if d, ok := s.cache.Get(ctx, key); ok {
			slog.DebugContext(ctx, "Dashboard cache hit", "user_id", userID, "key", key)
			return d, nil
		}
	}

	window := core.MonthRange(year, month)
	var (
		monthTxs []core.Transaction
		recent   []core.Transaction
		budgets  []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthTxs, err = s.repo.TransactionsInRange(gctx, userID, window)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.repo.RecentTransactions(gctx, userID, RecentTransactionsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.repo.ListBudgets(gctx, userID, core.Monthly)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard data: %w", err)
	}

	d := Dashboard{
		Year:               year,
		Month:              month,
		Summary:            core.MonthlySummary(monthTxs, year, month),
		RecentTransactions: recent,
		Budgets:            make([]core.Utilization, 0, len(budgets)),
		ExpenseBreakdown:   core.CategoryBreakdown(monthTxs, year, month),
	}
	for _, b := range budgets {
		d.Budgets = append(d.Budgets, core.BudgetUtilization(b, monthTxs, window))
	}

	if s.cache == nil {
		return d, nil
	}
	if s.generation(userID) != gen {
		slog.DebugContext(ctx, "Dashboard invalidated during build, not caching", "user_id", userID, "key", key)
		return d, nil
	}
	s.cache.Set(ctx, key, d)
	return d, nil
}

// Invalidate drops every cached month of the user.
func (s *DashboardService) Invalidate(ctx context.Context, userID int64) {
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, dashboardPrefix(userID))
}
