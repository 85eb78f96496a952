package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/api/metrics"
	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
	"github.com/leadstack/crm-api/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// LeadService is the lead workflow engine. A mutation flows through three
// phases: access checks and validation first (no partial side effects precede
// a rejection), then the transactional primary write (lead fields plus the
// history and derived activity rows), then the best-effort fan-out
// (notification, events, email), which observes the pre-update snapshot and
// can never fail the request.
type LeadService struct {
	leads      ports.LeadRepository
	activities ports.ActivityRepository
	users      ports.UserRepository
	notifier   *Notifier
	log        zerolog.Logger
}

func NewLeadService(
	leads ports.LeadRepository,
	activities ports.ActivityRepository,
	users ports.UserRepository,
	notifier *Notifier,
	log zerolog.Logger,
) *LeadService {
	return &LeadService{
		leads:      leads,
		activities: activities,
		users:      users,
		notifier:   notifier,
		log:        log,
	}
}

// Create persists a new lead with a derived "Lead created" activity, then
// notifies the assigned owner (if any) and broadcasts the creation.
func (s *LeadService) Create(ctx context.Context, p policy.Principal, in ports.CreateLeadInput) (*domain.Lead, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	status := domain.StatusNew
	if in.Status != "" {
		status = domain.LeadStatus(in.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, in.Status)
		}
	}

	// SALES_EXEC principals may only create self-owned leads; the requested
	// owner is silently overridden, not rejected.
	ownerID := policy.ForcedOwner(p, in.OwnerID)

	var owner *domain.User
	if ownerID != nil {
		u, err := s.users.FindByID(ctx, *ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, fmt.Errorf("%w: owner %d does not exist", domain.ErrValidation, *ownerID)
			}
			return nil, fmt.Errorf("create lead: resolve owner: %w", err)
		}
		owner = u
	}

	lead := &domain.Lead{
		Title:   in.Title,
		Company: in.Company,
		Email:   in.Email,
		Phone:   in.Phone,
		Status:  status,
		OwnerID: ownerID,
	}
	activity := &domain.Activity{
		Type:      domain.ActivityNote,
		Note:      "Lead created",
		CreatedBy: p.UserID,
	}

	if err := s.leads.Create(ctx, lead, activity); err != nil {
		s.log.Error().Err(err).Str("title", in.Title).Msg("failed to create lead")
		return nil, fmt.Errorf("create lead: %w", err)
	}
	lead.Owner = owner.Ref()
	metrics.LeadsCreatedTotal.WithLabelValues(string(lead.Status)).Inc()

	if owner != nil {
		s.notifier.Notify(ctx, owner.ID, "New Lead Assigned",
			fmt.Sprintf("A new lead %q has been assigned to you.", lead.Title))
		s.notifier.Email(ctx, owner.Email, func(ctx context.Context) error {
			return s.notifier.Mailer().SendLeadAssigned(ctx, owner.Email, lead.Title, lead.ID)
		})
	}
	s.notifier.Publish(ctx, ports.TopicGlobal, ports.EventLeadCreated, lead)

	s.log.Info().Int64("lead_id", lead.ID).Str("title", lead.Title).Msg("lead created")
	return lead, nil
}

// Get returns the full lead view with owner, activities and history joined.
func (s *LeadService) Get(ctx context.Context, p policy.Principal, id int64) (*ports.LeadDetail, error) {
	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewLead(p, lead) {
		return nil, domain.ErrForbidden
	}

	activities, err := s.activities.ListByLead(ctx, &id)
	if err != nil {
		return nil, fmt.Errorf("get lead: activities: %w", err)
	}
	history, err := s.leads.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lead: history: %w", err)
	}

	return &ports.LeadDetail{Lead: *lead, Activities: activities, History: history}, nil
}

// List returns a page of leads. SALES_EXEC principals are always scoped to
// their own leads regardless of the requested owner filter.
func (s *LeadService) List(ctx context.Context, p policy.Principal, in ports.ListLeadsInput) (*ports.ListLeadsResult, error) {
	page := in.Page
	if page < 1 {
		page = defaultPage
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	ownerID := in.OwnerID
	if !policy.AtLeast(p, domain.RoleManager) {
		ownerID = &p.UserID
	}

	items, total, err := s.leads.List(ctx, ports.ListLeadsFilter{
		OwnerID: ownerID,
		Status:  in.Status,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListLeadsResult{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}, nil
}

// statusChangedPayload is pushed on lead:<id> when the pipeline stage moves.
type statusChangedPayload struct {
	LeadID int64             `json:"leadId"`
	From   domain.LeadStatus `json:"from"`
	To     domain.LeadStatus `json:"to"`
}

// ownerChangedPayload is pushed on lead:<id> when the lead is reassigned.
type ownerChangedPayload struct {
	LeadID     int64 `json:"leadId"`
	NewOwnerID int64 `json:"newOwnerId"`
}

// Update applies a partial patch to a lead. A status change and an ownership
// change are independent diffs; both may fire side effects in the same call.
// The patched fields, the history entry and the derived activity are
// committed as one transaction: a failing history write aborts everything.
// All fan-out after the commit observes the pre-update snapshot, so
// notifications report the old status and owner alongside the new ones.
func (s *LeadService) Update(ctx context.Context, p policy.Principal, id int64, in ports.UpdateLeadInput) (*domain.Lead, error) {
	snapshot, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateLead(p, snapshot) {
		return nil, domain.ErrForbidden
	}

	patched := *snapshot
	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
		}
		patched.Title = *in.Title
	}
	if in.Company != nil {
		patched.Company = *in.Company
	}
	if in.Email != nil {
		patched.Email = *in.Email
	}
	if in.Phone != nil {
		patched.Phone = *in.Phone
	}

	statusChanged := false
	if in.Status != nil {
		next := domain.LeadStatus(*in.Status)
		if !next.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, *in.Status)
		}
		if next != snapshot.Status {
			statusChanged = true
			patched.Status = next
		}
	}

	ownerChanged := false
	if in.OwnerID != nil && (snapshot.OwnerID == nil || *snapshot.OwnerID != *in.OwnerID) {
		ownerChanged = true
		patched.OwnerID = in.OwnerID
	}

	// Primary atomic unit: patched fields + history + derived activity.
	var history *domain.LeadHistory
	var activity *domain.Activity
	if statusChanged {
		from := snapshot.Status
		history = &domain.LeadHistory{
			LeadID:    id,
			From:      &from,
			To:        patched.Status,
			ChangedBy: p.UserID,
		}
		activity = &domain.Activity{
			LeadID:    id,
			Type:      domain.ActivityStatusChange,
			Note:      fmt.Sprintf("Status changed from %s to %s", snapshot.Status, patched.Status),
			CreatedBy: p.UserID,
		}
	}
	if err := s.leads.Update(ctx, &patched, history, activity); err != nil {
		s.log.Error().Err(err).Int64("lead_id", id).Msg("failed to update lead")
		return nil, fmt.Errorf("update lead: %w", err)
	}

	// Everything below is best-effort fan-out; failures are logged and
	// swallowed, never surfaced to the caller.
	if statusChanged {
		metrics.StatusTransitionsTotal.WithLabelValues(string(snapshot.Status), string(patched.Status)).Inc()

		if snapshot.OwnerID != nil {
			if owner, err := s.users.FindByID(ctx, *snapshot.OwnerID); err != nil {
				s.log.Warn().Err(err).Int64("lead_id", id).Msg("failed to resolve owner for status notification")
			} else {
				s.notifier.Notify(ctx, owner.ID, "Lead Status Updated",
					fmt.Sprintf("Lead %q status changed to %s", snapshot.Title, patched.Status))
				s.notifier.Email(ctx, owner.Email, func(ctx context.Context) error {
					return s.notifier.Mailer().SendStatusChanged(ctx, owner.Email, snapshot.Title, snapshot.Status, patched.Status)
				})
			}
		}
		s.notifier.Publish(ctx, ports.TopicLead(id), ports.EventLeadStatusChange, statusChangedPayload{
			LeadID: id,
			From:   snapshot.Status,
			To:     patched.Status,
		})
	}

	if ownerChanged {
		// Skip the owner-side effects silently when the new owner cannot be
		// resolved; the reassignment itself has already been persisted.
		if newOwner, err := s.users.FindByID(ctx, *in.OwnerID); err != nil {
			s.log.Warn().Err(err).Int64("lead_id", id).Int64("owner_id", *in.OwnerID).
				Msg("failed to resolve new owner for assignment notification")
		} else {
			s.notifier.Notify(ctx, newOwner.ID, "New Lead Assigned",
				fmt.Sprintf("Lead %q has been assigned to you.", snapshot.Title))
			s.notifier.Email(ctx, newOwner.Email, func(ctx context.Context) error {
				return s.notifier.Mailer().SendLeadAssigned(ctx, newOwner.Email, snapshot.Title, id)
			})
		}
		s.notifier.Publish(ctx, ports.TopicLead(id), ports.EventLeadOwnerChange, ownerChangedPayload{
			LeadID:     id,
			NewOwnerID: *in.OwnerID,
		})
	}

	// Final broadcast carries the fully-updated lead with its owner joined.
	updated, err := s.leads.FindByID(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Int64("lead_id", id).Msg("failed to reload lead after update")
		updated = &patched
	}
	s.notifier.Publish(ctx, ports.TopicLead(id), ports.EventLeadUpdated, updated)

	s.log.Info().Int64("lead_id", id).Bool("status_changed", statusChanged).
		Bool("owner_changed", ownerChanged).Msg("lead updated")
	return updated, nil
}

// Delete hard-deletes a lead. Child activity and history rows go with it.
func (s *LeadService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if _, err := s.leads.FindByID(ctx, id); err != nil {
		return err
	}
	if !policy.CanDeleteLead(p) {
		return domain.ErrForbidden
	}
	if err := s.leads.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("lead_id", id).Msg("failed to delete lead")
		return fmt.Errorf("delete lead: %w", err)
	}
	s.log.Info().Int64("lead_id", id).Msg("lead deleted")
	return nil
}
