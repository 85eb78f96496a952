package domain

import "time"

// ActivityType classifies a log entry attached to a lead.
type ActivityType string

const (
	ActivityNote         ActivityType = "NOTE"
	ActivityCall         ActivityType = "CALL"
	ActivityMeeting      ActivityType = "MEETING"
	ActivityEmail        ActivityType = "EMAIL"
	ActivityStatusChange ActivityType = "STATUS_CHANGE"
)

var activityTypes = map[ActivityType]struct{}{
	ActivityNote:         {},
	ActivityCall:         {},
	ActivityMeeting:      {},
	ActivityEmail:        {},
	ActivityStatusChange: {},
}

// IsValid reports whether t is a known activity type.
func (t ActivityType) IsValid() bool {
	_, ok := activityTypes[t]
	return ok
}

// Activity is a timestamped log entry on a lead, either user-created (notes,
// calls, meetings) or derived by the workflow engine (lead creation, status
// changes). Immutable once created.
type Activity struct {
	ID        int64          `json:"id"`
	LeadID    int64          `json:"leadId"`
	Type      ActivityType   `json:"type"`
	Note      string         `json:"note,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedBy int64          `json:"createdBy"`
	Creator   *UserRef       `json:"creator,omitempty"`
	Lead      *LeadRef       `json:"lead,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LeadRef is the lightweight lead projection embedded in activity views.
type LeadRef struct {
	ID     int64      `json:"id"`
	Title  string     `json:"title"`
	Status LeadStatus `json:"status"`
}
