package app

import (
	"context"

	"impactdash/domain/core"
	"impactdash/domain/dashboard"
	"impactdash/domain/filter"
	"impactdash/domain/insight"
	"impactdash/domain/news"
	"impactdash/domain/startup"
	"impactdash/internal/errors"
	"impactdash/ports"
)

// MsgDataUnavailable is shown when the startup list cannot be read
const MsgDataUnavailable = "Startup-Daten konnten nicht geladen werden"

// StartupDetail is one startup with everything known about it
type StartupDetail struct {
	Startup startup.Startup  `json:"startup"`
	Insight *insight.Insight `json:"insight,omitempty"`
	News    []news.Item      `json:"news"`
	SDGs    []startup.SDG    `json:"sdgs"`
}

// StartupList is a filtered table
type StartupList struct {
	Startups    []startup.Startup `json:"startups"`
	Total       int               `json:"total"`
	Filtered    int               `json:"filtered"`
	ActiveCount int               `json:"activeFilters"`
}

// DashboardService answers the read-only dashboard views
type DashboardService struct {
	data ports.DataSource
}

// NewDashboardService creates a dashboard service
func NewDashboardService(data ports.DataSource) *DashboardService {
	return &DashboardService{data: data}
}

func (s *DashboardService) load(ctx context.Context) (*ports.Snapshot, error) {
	snap, err := s.data.Load(ctx)
	if err != nil {
		return nil, &errors.AppError{Code: errors.CodeInternalError, Message: MsgDataUnavailable, Cause: err}
	}
	return snap, nil
}

// Startups returns the startups matching criteria in file order
func (s *DashboardService) Startups(ctx context.Context, criteria filter.Criteria) (*StartupList, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	matched := filter.Apply(snap.Startups, criteria)
	return &StartupList{
		Startups:    matched,
		Total:       len(snap.Startups),
		Filtered:    len(matched),
		ActiveCount: criteria.ActiveCount(),
	}, nil
}

// Startup returns one startup with its insight and news
func (s *DashboardService) Startup(ctx context.Context, id core.StartupID) (*StartupDetail, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range snap.Startups {
		if st.ID != id.String() {
			continue
		}
		detail := &StartupDetail{Startup: st, SDGs: snap.SDGs}
		if in, ok := snap.Insights.Get(st.ID); ok {
			detail.Insight = &in
		}
		items := news.ForStartup(snap.News.News, st.ID)
		news.SortByDateDesc(items)
		detail.News = items
		return detail, nil
	}
	return nil, &errors.AppError{Code: errors.CodeNotFound, Message: "Startup nicht gefunden", Cause: core.NewNotFoundError("startup", id.String())}
}

// Facets returns the filter options present in the data
func (s *DashboardService) Facets(ctx context.Context) (filter.Facets, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return filter.Facets{}, err
	}
	return filter.BuildFacets(snap.Startups), nil
}

// KPIs computes the headline numbers over the filtered startups
func (s *DashboardService) KPIs(ctx context.Context, criteria filter.Criteria) (dashboard.KPIs, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return dashboard.KPIs{}, err
	}
	return dashboard.ComputeKPIs(filter.Apply(snap.Startups, criteria)), nil
}

// Charts computes the chart series over the filtered startups
func (s *DashboardService) Charts(ctx context.Context, criteria filter.Criteria) (dashboard.Charts, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return dashboard.Charts{}, err
	}
	return dashboard.ComputeCharts(filter.Apply(snap.Startups, criteria), snap.SDGs), nil
}

// Quality computes the data quality report over all startups
func (s *DashboardService) Quality(ctx context.Context) (dashboard.QualityReport, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return dashboard.QualityReport{}, err
	}
	return dashboard.ComputeQuality(snap.Startups), nil
}

// SDGs returns the goal catalogue
func (s *DashboardService) SDGs(ctx context.Context) ([]startup.SDG, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.SDGs == nil {
		return []startup.SDG{}, nil
	}
	return snap.SDGs, nil
}

// CrawlRuns returns the recorded crawl runs
func (s *DashboardService) CrawlRuns(ctx context.Context) ([]startup.CrawlRun, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.CrawlRuns == nil {
		return []startup.CrawlRun{}, nil
	}
	return snap.CrawlRuns, nil
}

// ExportRows returns the filtered startups and the SDG catalogue for export
func (s *DashboardService) ExportRows(ctx context.Context, criteria filter.Criteria) ([]startup.Startup, []startup.SDG, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return filter.Apply(snap.Startups, criteria), snap.SDGs, nil
}
