package backoffice

import (
	"context"
	"math"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
)

// RecentCount is how many links the dashboard lists as recently added.
const RecentCount = 5

type DashboardAPI interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	AllLinks(ctx context.Context) ([]domain.Link, error)
}

// DashboardStats is the read-only summary on the dashboard home.
type DashboardStats struct {
	TotalLinks    int
	CategoryCount int
	CategoryNames []string
	ActiveLinks   int
	ActivePercent int // rounded, 0 when there are no links
	Recent        []domain.Link
}

// ComputeStats derives the dashboard numbers. Recent is the first links in
// fetch order; no date sort is applied.
func ComputeStats(categories []domain.Category, links []domain.Link) DashboardStats {
	stats := DashboardStats{
		TotalLinks:    len(links),
		CategoryCount: len(categories),
		CategoryNames: make([]string, 0, len(categories)),
		ActiveLinks:   len(domain.ActiveLinks(links)),
	}
	for _, c := range categories {
		stats.CategoryNames = append(stats.CategoryNames, c.Name)
	}
	if stats.TotalLinks > 0 {
		stats.ActivePercent = int(math.Round(float64(stats.ActiveLinks) / float64(stats.TotalLinks) * 100))
	}

	n := min(RecentCount, len(links))
	stats.Recent = append([]domain.Link(nil), links[:n]...)
	return stats
}

type DashboardHome struct {
	api    DashboardAPI
	logger logger.Logger
}

func NewDashboardHome(api DashboardAPI, log logger.Logger) *DashboardHome {
	return &DashboardHome{api: api, logger: log.Named("dashboard")}
}

// Load fetches categories and links once and summarizes them.
func (h *DashboardHome) Load(ctx context.Context) (DashboardStats, error) {
	categories, err := h.api.Categories(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	links, err := h.api.AllLinks(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := ComputeStats(categories, links)
	h.logger.Debug("dashboard loaded",
		logger.Int("links", stats.TotalLinks),
		logger.Int("categories", stats.CategoryCount))
	return stats, nil
}
