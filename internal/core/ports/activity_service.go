package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
)

// AddActivityInput carries all data needed to record an activity on a lead.
type AddActivityInput struct {
	LeadID int64
	Type   string
	Note   string
	Meta   map[string]any
}

// ActivityService records and reads activity log entries. Adding an activity
// is a workflow operation: the lead's owner is notified when someone else
// logs work on their lead.
type ActivityService interface {
	Add(ctx context.Context, p policy.Principal, in AddActivityInput) (*domain.Activity, error)
	Get(ctx context.Context, p policy.Principal, id int64) (*domain.Activity, error)
	List(ctx context.Context, p policy.Principal, leadID *int64) ([]*domain.Activity, error)
}
