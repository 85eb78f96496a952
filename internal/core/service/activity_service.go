package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
	"github.com/leadstack/crm-api/internal/core/ports"
)

// ActivityService records and reads the activity log. Adding an activity is
// part of the lead workflow: when someone logs work on a lead they do not
// own, the owner is notified through the best-effort channels.
type ActivityService struct {
	activities ports.ActivityRepository
	leads      ports.LeadRepository
	users      ports.UserRepository
	notifier   *Notifier
	log        zerolog.Logger
}

func NewActivityService(
	activities ports.ActivityRepository,
	leads ports.LeadRepository,
	users ports.UserRepository,
	notifier *Notifier,
	log zerolog.Logger,
) *ActivityService {
	return &ActivityService{
		activities: activities,
		leads:      leads,
		users:      users,
		notifier:   notifier,
		log:        log,
	}
}

// Add records an activity on a lead and fans out to the lead's owner when
// the actor is someone else.
func (s *ActivityService) Add(ctx context.Context, p policy.Principal, in ports.AddActivityInput) (*domain.Activity, error) {
	if in.LeadID == 0 || in.Type == "" {
		return nil, fmt.Errorf("%w: lead id and activity type are required", domain.ErrValidation)
	}
	activityType := domain.ActivityType(in.Type)
	if !activityType.IsValid() {
		return nil, fmt.Errorf("%w: invalid activity type %q", domain.ErrValidation, in.Type)
	}

	lead, err := s.leads.FindByID(ctx, in.LeadID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateLead(p, lead) {
		return nil, domain.ErrForbidden
	}

	activity := &domain.Activity{
		LeadID:    in.LeadID,
		Type:      activityType,
		Note:      in.Note,
		Meta:      in.Meta,
		CreatedBy: p.UserID,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.log.Error().Err(err).Int64("lead_id", in.LeadID).Msg("failed to create activity")
		return nil, fmt.Errorf("add activity: %w", err)
	}

	if lead.OwnerID != nil && *lead.OwnerID != p.UserID {
		if owner, err := s.users.FindByID(ctx, *lead.OwnerID); err != nil {
			s.log.Warn().Err(err).Int64("lead_id", lead.ID).Msg("failed to resolve owner for activity notification")
		} else {
			s.notifier.Notify(ctx, owner.ID, "New Activity Added",
				fmt.Sprintf("A new %s activity has been added to lead %q.",
					strings.ToLower(string(activityType)), lead.Title))
			s.notifier.Email(ctx, owner.Email, func(ctx context.Context) error {
				return s.notifier.Mailer().SendActivityAdded(ctx, owner.Email, lead.Title, activityType, in.Note)
			})
		}
	}
	s.notifier.Publish(ctx, ports.TopicLead(lead.ID), ports.EventActivityCreated, activity)

	// Reload for the joined lead and creator projections; the bare row is
	// good enough if the read fails.
	if joined, err := s.activities.FindByID(ctx, activity.ID); err != nil {
		s.log.Warn().Err(err).Int64("activity_id", activity.ID).Msg("failed to reload activity after create")
	} else {
		activity = joined
	}

	s.log.Info().Int64("activity_id", activity.ID).Int64("lead_id", lead.ID).
		Str("type", string(activityType)).Msg("activity recorded")
	return activity, nil
}

// Get returns one activity, enforcing the same owner scoping as lead views.
func (s *ActivityService) Get(ctx context.Context, p policy.Principal, id int64) (*domain.Activity, error) {
	activity, err := s.activities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lead, err := s.leads.FindByID(ctx, activity.LeadID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if !policy.CanViewLead(p, lead) {
		return nil, domain.ErrForbidden
	}
	return activity, nil
}

// List returns activities, optionally scoped to one lead. When a lead filter
// is given, access to that lead is checked first.
func (s *ActivityService) List(ctx context.Context, p policy.Principal, leadID *int64) ([]*domain.Activity, error) {
	if leadID != nil {
		lead, err := s.leads.FindByID(ctx, *leadID)
		if err != nil {
			return nil, err
		}
		if !policy.CanViewLead(p, lead) {
			return nil, domain.ErrForbidden
		}
	}
	activities, err := s.activities.ListByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}
