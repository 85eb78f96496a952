package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// ActivityRepository defines persistence operations for activities.
type ActivityRepository interface {
	// Create inserts the activity, filling ID and timestamp.
	Create(ctx context.Context, a *domain.Activity) error

	// FindByID retrieves an activity with its lead and creator joined.
	FindByID(ctx context.Context, id int64) (*domain.Activity, error)

	// ListByLead returns a lead's activities, most recent first, creators
	// joined. A nil leadID returns activities across all leads.
	ListByLead(ctx context.Context, leadID *int64) ([]*domain.Activity, error)

	// CountByType returns activity counts grouped by type. When ownerID is
	// non-nil, only activities on leads owned by that user are counted.
	CountByType(ctx context.Context, ownerID *int64) (map[domain.ActivityType]int64, error)

	// Recent returns the most recent activities, leads and creators joined,
	// scoped to leads owned by ownerID when non-nil.
	Recent(ctx context.Context, ownerID *int64, limit int) ([]*domain.Activity, error)
}
