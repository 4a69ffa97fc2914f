package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tankhah/internal/cache"
	"tankhah/internal/core"
	"tankhah/internal/jalali"
)

const statsCacheKey = "dashboard"

// ExpenseLister is the read surface the stats service aggregates over.
type ExpenseLister interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
}

// StatsService computes dashboard aggregates over the stored expenses.
// Results are cached until the next expense write clears the cache.
type StatsService struct {
	store ExpenseLister
	cache cache.Cache[core.DashboardStats]
	now   func() time.Time
}

func NewStatsService(store ExpenseLister, statsCache cache.Cache[core.DashboardStats]) *StatsService {
	return &StatsService{
		store: store,
		cache: statsCache,
		now:   time.Now,
	}
}

// Dashboard returns the aggregate figures for the dashboard screen.
func (s *StatsService) Dashboard(ctx context.Context) (core.DashboardStats, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(statsCacheKey); ok {
			return cached, nil
		}
	}

	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("list expenses for stats: %w", err)
	}

	stats := s.compute(expenses)

	if s.cache != nil {
		s.cache.Set(statsCacheKey, stats)
	}
	return stats, nil
}

func (s *StatsService) compute(expenses []core.Expense) core.DashboardStats {
	now := s.now()
	nowJalali := jalali.ToJalali(now)
	today := midnight(now)

	// The weekly window runs Sunday through Saturday around now, matching
	// the trend chart's weekday labelling.
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)

	var stats core.DashboardStats
	monthTotals := make(map[string]int64)

	for _, e := range expenses {
		stats.TotalExpenses.Tomans += e.Amount.Tomans

		day := midnight(e.Date)
		if day.Equal(today) {
			stats.TodayExpenses.Tomans += e.Amount.Tomans
		}
		if !day.Before(weekStart) && day.Before(weekEnd) {
			stats.WeeklyExpenses.Tomans += e.Amount.Tomans
		}

		d := jalali.ToJalali(e.Date)
		if d.Year == nowJalali.Year && d.Month == nowJalali.Month {
			stats.MonthlyExpenses.Tomans += e.Amount.Tomans
			monthTotals[e.CategoryID] += e.Amount.Tomans
		}
	}

	stats.MonthlyFormatted = core.FormatCompactCurrency(stats.MonthlyExpenses)
	stats.CategoryBreakdown = breakdown(monthTotals, stats.MonthlyExpenses.Tomans)
	stats.DailyTrend = s.dailyTrend(expenses, today)
	return stats
}

// breakdown converts per-category month totals into shares sorted by
// amount descending, category id ascending on ties.
func breakdown(totals map[string]int64, monthTotal int64) []core.CategoryShare {
	shares := make([]core.CategoryShare, 0, len(totals))
	for id, amount := range totals {
		share := core.CategoryShare{
			CategoryID: id,
			Amount:     core.Money{Tomans: amount},
			Formatted:  core.FormatCurrency(core.Money{Tomans: amount}),
		}
		if monthTotal > 0 {
			share.Percentage = float64(amount) / float64(monthTotal) * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount.Tomans != shares[j].Amount.Tomans {
			return shares[i].Amount.Tomans > shares[j].Amount.Tomans
		}
		return shares[i].CategoryID < shares[j].CategoryID
	})
	return shares
}

// dailyTrend sums spending per day over the last seven days ending today,
// labelling each day with its Persian weekday name.
func (s *StatsService) dailyTrend(expenses []core.Expense, today time.Time) []core.TrendPoint {
	points := make([]core.TrendPoint, 7)
	byDay := make(map[string]int64)

	for _, e := range expenses {
		byDay[midnight(e.Date).Format("2006-01-02")] += e.Amount.Tomans
	}

	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i-6)
		key := day.Format("2006-01-02")
		points[i] = core.TrendPoint{
			Date:   key,
			Label:  jalali.WeekdayName(day),
			Amount: core.Money{Tomans: byDay[key]},
		}
	}
	return points
}

// midnight normalizes to the UTC calendar day, the convention stored
// expense dates already use.
func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
