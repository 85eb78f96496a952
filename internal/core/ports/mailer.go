package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// Mailer sends outbound notification emails. Implementations may block up to
// the context deadline; the workflow engine wraps every call in a best-effort
// guard, so errors returned here are logged and swallowed, never propagated.
type Mailer interface {
	SendLeadAssigned(ctx context.Context, recipient, leadTitle string, leadID int64) error
	SendStatusChanged(ctx context.Context, recipient, leadTitle string, from, to domain.LeadStatus) error
	SendActivityAdded(ctx context.Context, recipient, leadTitle string, activityType domain.ActivityType, note string) error
}
