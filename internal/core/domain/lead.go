package domain

import "time"

// LeadStatus represents the pipeline stage of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "NEW"
	StatusContacted LeadStatus = "CONTACTED"
	StatusQualified LeadStatus = "QUALIFIED"
	StatusWon       LeadStatus = "WON"
	StatusLost      LeadStatus = "LOST"
)

// leadStatuses is the closed set of valid pipeline stages. Transitions are
// unrestricted: any status may move to any other, WON and LOST included.
var leadStatuses = map[LeadStatus]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusQualified: {},
	StatusWon:       {},
	StatusLost:      {},
}

// IsValid reports whether s is one of the five pipeline stages.
func (s LeadStatus) IsValid() bool {
	_, ok := leadStatuses[s]
	return ok
}

// Lead is the core aggregate root: a sales prospect tracked through the
// status pipeline.
type Lead struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Company   string     `json:"company,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Status    LeadStatus `json:"status"`
	OwnerID   *int64     `json:"ownerId"`
	Owner     *UserRef   `json:"owner,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LeadHistory is one entry of the append-only audit trail of status
// transitions. From is nil only for the initial creation entry. Rows are
// never updated or deleted.
type LeadHistory struct {
	ID        int64       `json:"id"`
	LeadID    int64       `json:"leadId"`
	From      *LeadStatus `json:"from"`
	To        LeadStatus  `json:"to"`
	ChangedBy int64       `json:"changedBy"`
	Changer   *UserRef    `json:"changer,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
