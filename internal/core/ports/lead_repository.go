package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// ListLeadsFilter carries all query parameters for listing leads.
// OwnerID is forced to the principal's own id by the service layer for
// SALES_EXEC principals.
type ListLeadsFilter struct {
	OwnerID *int64 // nil = no owner filter
	Status  string // optional: filter by lead status
	Page    int    // 1-based
	Limit   int    // max rows per page (capped at 100 by service)
}

// LeadRepository defines persistence operations for leads and their
// append-only history.
type LeadRepository interface {
	// Create inserts the lead and, when activity is non-nil, the derived
	// creation activity in a single transaction. ID and timestamps are
	// filled on the passed lead.
	Create(ctx context.Context, lead *domain.Lead, activity *domain.Activity) error

	// FindByID retrieves a lead with its owner joined.
	FindByID(ctx context.Context, id int64) (*domain.Lead, error)

	// List returns a page of leads matching filter and the total count,
	// most recent first, owners joined.
	List(ctx context.Context, filter ListLeadsFilter) ([]*domain.Lead, int64, error)

	// Update persists the patched lead fields and, when non-nil, appends the
	// history entry and derived activity, all in a single transaction. A
	// failing history insert aborts the whole update.
	Update(ctx context.Context, lead *domain.Lead, history *domain.LeadHistory, activity *domain.Activity) error

	// Delete hard-deletes the lead. Child activity and history rows are
	// removed by the storage layer (ON DELETE CASCADE).
	Delete(ctx context.Context, id int64) error

	// History returns the lead's status transitions, most recent first,
	// changers joined.
	History(ctx context.Context, leadID int64) ([]*domain.LeadHistory, error)

	// CountByStatus returns lead counts grouped by status, scoped to ownerID
	// when non-nil.
	CountByStatus(ctx context.Context, ownerID *int64) (map[domain.LeadStatus]int64, error)

	// Recent returns the most recently created leads, scoped to ownerID when
	// non-nil.
	Recent(ctx context.Context, ownerID *int64, limit int) ([]*domain.Lead, error)
}
