package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
)

// StatusCount is one slice of the leads-by-status breakdown.
type StatusCount struct {
	Status domain.LeadStatus `json:"status"`
	Count  int64             `json:"count"`
}

// TypeCount is one slice of the activities-by-type breakdown.
type TypeCount struct {
	Type  domain.ActivityType `json:"type"`
	Count int64               `json:"count"`
}

// DashboardStats aggregates the numbers behind the dashboard view.
type DashboardStats struct {
	TotalLeads       int64              `json:"totalLeads"`
	TotalActivities  int64              `json:"totalActivities"`
	LeadsByStatus    []StatusCount      `json:"leadsByStatus"`
	ActivitiesByType []TypeCount        `json:"activitiesByType"`
	RecentLeads      []*domain.Lead     `json:"recentLeads"`
	RecentActivities []*domain.Activity `json:"recentActivities"`
}

// DashboardService computes aggregate stats. SALES_EXEC principals see only
// their own leads and the activities on them.
type DashboardService interface {
	Stats(ctx context.Context, p policy.Principal) (*DashboardStats, error)
}
