package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
)

// CreateLeadInput carries all data needed to create a lead.
type CreateLeadInput struct {
	Title   string
	Company string
	Email   string
	Phone   string
	Status  string // defaults to NEW when empty
	OwnerID *int64 // overridden for SALES_EXEC principals
}

// UpdateLeadInput is a partial patch; nil fields are left unchanged.
type UpdateLeadInput struct {
	Title   *string
	Company *string
	Email   *string
	Phone   *string
	Status  *string
	OwnerID *int64
}

// ListLeadsInput carries all parameters for the list endpoint.
type ListLeadsInput struct {
	Status  string
	OwnerID *int64
	Page    int
	Limit   int
}

// ListLeadsResult is returned by List.
type ListLeadsResult struct {
	Items []*domain.Lead
	Total int64
	Page  int
	Limit int
	Pages int
}

// LeadDetail is the full lead view: owner, activities and history joined.
type LeadDetail struct {
	domain.Lead
	Activities []*domain.Activity    `json:"activities"`
	History    []*domain.LeadHistory `json:"history"`
}

// LeadService is the lead workflow engine: it orchestrates lead mutations,
// their audit trail, and the notification fan-out.
type LeadService interface {
	Create(ctx context.Context, p policy.Principal, in CreateLeadInput) (*domain.Lead, error)
	Get(ctx context.Context, p policy.Principal, id int64) (*LeadDetail, error)
	List(ctx context.Context, p policy.Principal, in ListLeadsInput) (*ListLeadsResult, error)
	Update(ctx context.Context, p policy.Principal, id int64, in UpdateLeadInput) (*domain.Lead, error)
	Delete(ctx context.Context, p policy.Principal, id int64) error
}
