package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
	"github.com/leadstack/crm-api/internal/core/ports"
)

const recentItems = 5

// DashboardService aggregates the stats behind the dashboard view.
// SALES_EXEC principals are scoped to their own leads and the activities on
// them; higher roles see everything.
type DashboardService struct {
	leads      ports.LeadRepository
	activities ports.ActivityRepository
	log        zerolog.Logger
}

func NewDashboardService(leads ports.LeadRepository, activities ports.ActivityRepository, log zerolog.Logger) *DashboardService {
	return &DashboardService{leads: leads, activities: activities, log: log}
}

// Stats computes lead and activity aggregates plus the most recent items.
func (s *DashboardService) Stats(ctx context.Context, p policy.Principal) (*ports.DashboardStats, error) {
	var ownerID *int64
	if !policy.AtLeast(p, domain.RoleManager) {
		ownerID = &p.UserID
	}

	statusCounts, err := s.leads.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: lead counts: %w", err)
	}
	typeCounts, err := s.activities.CountByType(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: activity counts: %w", err)
	}
	recentLeads, err := s.leads.Recent(ctx, ownerID, recentItems)
	if err != nil {
		return nil, fmt.Errorf("dashboard: recent leads: %w", err)
	}
	recentActivities, err := s.activities.Recent(ctx, ownerID, recentItems)
	if err != nil {
		return nil, fmt.Errorf("dashboard: recent activities: %w", err)
	}

	stats := &ports.DashboardStats{
		RecentLeads:      recentLeads,
		RecentActivities: recentActivities,
	}

	// Stable chart ordering: pipeline order for statuses, declaration order
	// for types.
	for _, status := range []domain.LeadStatus{
		domain.StatusNew, domain.StatusContacted, domain.StatusQualified,
		domain.StatusWon, domain.StatusLost,
	} {
		count := statusCounts[status]
		stats.TotalLeads += count
		stats.LeadsByStatus = append(stats.LeadsByStatus, ports.StatusCount{Status: status, Count: count})
	}
	for _, typ := range []domain.ActivityType{
		domain.ActivityNote, domain.ActivityCall, domain.ActivityMeeting,
		domain.ActivityEmail, domain.ActivityStatusChange,
	} {
		count := typeCounts[typ]
		stats.TotalActivities += count
		stats.ActivitiesByType = append(stats.ActivitiesByType, ports.TypeCount{Type: typ, Count: count})
	}

	return stats, nil
}
