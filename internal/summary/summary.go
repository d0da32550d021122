// Package summary renders spending overviews as speakable text and as
// chart series for the dashboard.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"khata/internal/cache"
	"khata/internal/core"
	"khata/internal/storage"
)

// Series is the raw aggregate data behind the dashboard charts.
type Series struct {
	CategoryBreakdown []CategoryPoint `json:"category_breakdown"`
	Daily             []DayPoint      `json:"daily"`
}

type CategoryPoint struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type DayPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// Service computes summaries over the expense store. Rendered texts are
// cached briefly; Invalidate drops them after a write.
type Service struct {
	store storage.Store
	texts *cache.LRUCache[string]
}

func NewService(store storage.Store, ttl time.Duration) *Service {
	return &Service{
		store: store,
		texts: cache.NewLRUCache[string](16, ttl),
	}
}

// Invalidate drops cached summaries. Call after any write.
func (s *Service) Invalidate() {
	s.texts.Purge()
}

// RegisterCleanup adds the text cache to a manager's cleanup rotation.
func (s *Service) RegisterCleanup(m *cache.Manager) {
	m.Register(s.texts)
}

// WeeklyText summarizes the trailing seven days.
func (s *Service) WeeklyText(ctx context.Context, now time.Time) (string, error) {
	key := "weekly@" + now.Format(core.ISODate)
	if text, ok := s.texts.Get(key); ok {
		return text, nil
	}

	to := core.NewDate(now.Year(), int(now.Month()), now.Day())
	from := core.Date{Time: to.AddDate(0, 0, -6)}
	daily, err := s.store.DailyTotals(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("weekly totals: %w", err)
	}

	var totalCents int64
	for _, day := range daily {
		totalCents += day.Total.Cents
	}
	total := core.Money{Cents: totalCents}.Rupees()
	avg := total / 7

	lines := []string{
		fmt.Sprintf("Weekly spend: ₹%.2f", total),
		fmt.Sprintf("Daily average: ₹%.2f", avg),
	}
	if top := s.topCategories(ctx, 3); top != "" {
		lines = append(lines, "Top categories: "+top)
	}

	text := strings.Join(lines, "\n")
	s.texts.Set(key, text)
	return text, nil
}

// MonthlyText summarizes the current calendar month.
func (s *Service) MonthlyText(ctx context.Context, now time.Time) (string, error) {
	key := "monthly@" + now.Format("2006-01")
	if text, ok := s.texts.Get(key); ok {
		return text, nil
	}

	from := core.NewDate(now.Year(), int(now.Month()), 1)
	to := core.Date{Time: from.AddDate(0, 1, -1)}
	daily, err := s.store.DailyTotals(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("monthly totals: %w", err)
	}
	var totalCents int64
	for _, day := range daily {
		totalCents += day.Total.Cents
	}
	total := core.Money{Cents: totalCents}.Rupees()

	lines := []string{
		fmt.Sprintf("%s total: ₹%.2f", now.Format("January 2006"), total),
	}
	if top := s.topCategories(ctx, 5); top != "" {
		lines = append(lines, "Leading categories: "+top)
	}

	text := strings.Join(lines, "\n")
	s.texts.Set(key, text)
	return text, nil
}

// BalanceText reports today's spend.
func (s *Service) BalanceText(ctx context.Context, now time.Time) (string, error) {
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	total, err := s.store.TotalForDate(ctx, today)
	if err != nil {
		return "", fmt.Errorf("today total: %w", err)
	}
	return fmt.Sprintf("You have spent %s today.", total), nil
}

// ChartSeries returns the aggregates the dashboard charts are drawn from:
// the all-time category breakdown and the trailing week of daily totals.
func (s *Service) ChartSeries(ctx context.Context, now time.Time) (Series, error) {
	var series Series

	byCategory, err := s.store.TotalsByCategory(ctx)
	if err != nil {
		return series, fmt.Errorf("category breakdown: %w", err)
	}
	for _, ct := range byCategory {
		series.CategoryBreakdown = append(series.CategoryBreakdown, CategoryPoint{
			Category: ct.Category,
			Total:    ct.Total.Rupees(),
		})
	}

	to := core.NewDate(now.Year(), int(now.Month()), now.Day())
	from := core.Date{Time: to.AddDate(0, 0, -6)}
	daily, err := s.store.DailyTotals(ctx, from, to)
	if err != nil {
		return series, fmt.Errorf("daily totals: %w", err)
	}
	for _, day := range daily {
		series.Daily = append(series.Daily, DayPoint{
			Date:  day.Date.ISO(),
			Total: day.Total.Rupees(),
		})
	}
	return series, nil
}

// ChartText narrates the chart series in one speakable line.
func (s *Service) ChartText(ctx context.Context, now time.Time) (string, error) {
	series, err := s.ChartSeries(ctx, now)
	if err != nil {
		return "", err
	}
	if len(series.CategoryBreakdown) == 0 {
		return "Nothing recorded yet.", nil
	}
	top := series.CategoryBreakdown[0]
	var weekTotal float64
	for _, day := range series.Daily {
		weekTotal += day.Total
	}
	return fmt.Sprintf("This week you spent ₹%.0f; %s leads overall at ₹%.0f.",
		weekTotal, top.Category, top.Total), nil
}

func (s *Service) topCategories(ctx context.Context, n int) string {
	byCategory, err := s.store.TotalsByCategory(ctx)
	if err != nil || len(byCategory) == 0 {
		return ""
	}
	if len(byCategory) > n {
		byCategory = byCategory[:n]
	}
	parts := make([]string, len(byCategory))
	for i, ct := range byCategory {
		parts[i] = fmt.Sprintf("%s (₹%.0f)", ct.Category, ct.Total.Rupees())
	}
	return strings.Join(parts, ", ")
}
