package service

import (
	"context"
	"testing"

	"github.com/leadstack/crm-api/internal/core/domain"
)

func TestDashboardStats_StableOrderingWithZeroes(t *testing.T) {
	leads := newStubLeadRepo()
	activities := newStubActivityRepo()
	svc := NewDashboardService(leads, activities, discardLogger)

	leads.put(&domain.Lead{Title: "a", Status: domain.StatusNew})
	leads.put(&domain.Lead{Title: "b", Status: domain.StatusWon})
	leads.put(&domain.Lead{Title: "c", Status: domain.StatusWon})
	_ = activities.Create(context.Background(), &domain.Activity{LeadID: 1, Type: domain.ActivityCall})

	stats, err := svc.Stats(context.Background(), admin(1))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalLeads != 3 || stats.TotalActivities != 1 {
		t.Fatalf("totals: got %d leads, %d activities", stats.TotalLeads, stats.TotalActivities)
	}

	// All five statuses appear in pipeline order, zero counts included.
	wantStatuses := []domain.LeadStatus{
		domain.StatusNew, domain.StatusContacted, domain.StatusQualified,
		domain.StatusWon, domain.StatusLost,
	}
	if len(stats.LeadsByStatus) != len(wantStatuses) {
		t.Fatalf("expected %d status buckets, got %d", len(wantStatuses), len(stats.LeadsByStatus))
	}
	for i, want := range wantStatuses {
		if stats.LeadsByStatus[i].Status != want {
			t.Fatalf("bucket %d: got %s, want %s", i, stats.LeadsByStatus[i].Status, want)
		}
	}
	if stats.LeadsByStatus[3].Count != 2 || stats.LeadsByStatus[1].Count != 0 {
		t.Fatalf("unexpected counts: %+v", stats.LeadsByStatus)
	}

	if len(stats.ActivitiesByType) != 5 {
		t.Fatalf("expected all five type buckets, got %d", len(stats.ActivitiesByType))
	}
}

func TestDashboardStats_SalesExecScoped(t *testing.T) {
	leads := newStubLeadRepo()
	activities := newStubActivityRepo()
	svc := NewDashboardService(leads, activities, discardLogger)

	leads.put(&domain.Lead{Title: "mine", Status: domain.StatusNew, OwnerID: i64Ptr(7)})
	leads.put(&domain.Lead{Title: "theirs", Status: domain.StatusNew, OwnerID: i64Ptr(8)})

	stats, err := svc.Stats(context.Background(), salesExec(7))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalLeads != 1 {
		t.Fatalf("sales exec should only count their own leads, got %d", stats.TotalLeads)
	}
	if len(stats.RecentLeads) != 1 || stats.RecentLeads[0].Title != "mine" {
		t.Fatalf("recent leads should be scoped, got %+v", stats.RecentLeads)
	}
}
