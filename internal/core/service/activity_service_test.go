package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/ports"
)

type activityFixture struct {
	leads         *stubLeadRepo
	activities    *stubActivityRepo
	users         *stubUserRepo
	notifications *stubNotificationRepo
	bus           *stubBus
	mailer        *stubMailer
	service       *ActivityService
}

func newActivityFixture(users ...*domain.User) *activityFixture {
	f := &activityFixture{
		leads:         newStubLeadRepo(),
		activities:    newStubActivityRepo(),
		users:         newStubUserRepo(users...),
		notifications: &stubNotificationRepo{},
		bus:           &stubBus{},
		mailer:        &stubMailer{},
	}
	notifier := NewNotifier(f.notifications, f.bus, f.mailer, time.Second, discardLogger)
	f.service = NewActivityService(f.activities, f.leads, f.users, notifier, discardLogger)
	return f
}

func TestAddActivity_Validation(t *testing.T) {
	f := newActivityFixture()

	_, err := f.service.Add(context.Background(), admin(1), ports.AddActivityInput{Type: "CALL"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing lead id: expected validation error, got %v", err)
	}

	_, err = f.service.Add(context.Background(), admin(1), ports.AddActivityInput{LeadID: 1, Type: "PIGEON"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad type: expected validation error, got %v", err)
	}
}

func TestAddActivity_LeadNotFound(t *testing.T) {
	f := newActivityFixture()

	_, err := f.service.Add(context.Background(), admin(1), ports.AddActivityInput{LeadID: 404, Type: "CALL"})
	if !errors.Is(err, domain.ErrLeadNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddActivity_SalesExecForeignLeadForbidden(t *testing.T) {
	f := newActivityFixture()
	lead := &domain.Lead{Title: "Acme", Status: domain.StatusNew, OwnerID: i64Ptr(8)}
	f.leads.put(lead)

	_, err := f.service.Add(context.Background(), salesExec(7), ports.AddActivityInput{LeadID: lead.ID, Type: "NOTE"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(f.activities.items) != 0 {
		t.Fatalf("nothing may be persisted on rejection")
	}
}

func TestAddActivity_NotifiesOwnerWhenActorDiffers(t *testing.T) {
	owner := &domain.User{ID: 5, Email: "owner@example.com", Name: "Owner", Role: domain.RoleSalesExec}
	f := newActivityFixture(owner)
	lead := &domain.Lead{Title: "Acme", Status: domain.StatusNew, OwnerID: i64Ptr(5)}
	f.leads.put(lead)

	activity, err := f.service.Add(context.Background(), manager(2), ports.AddActivityInput{
		LeadID: lead.ID,
		Type:   "CALL",
		Note:   "left voicemail",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if activity.Type != domain.ActivityCall || activity.CreatedBy != 2 {
		t.Fatalf("unexpected activity: %+v", activity)
	}

	if len(f.notifications.items) != 1 || f.notifications.items[0].UserID != 5 {
		t.Fatalf("owner should be notified, got %+v", f.notifications.items)
	}
	if f.notifications.items[0].Message != `A new call activity has been added to lead "Acme".` {
		t.Fatalf("unexpected message: %q", f.notifications.items[0].Message)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != "activity:owner@example.com" {
		t.Fatalf("owner should receive email, got %v", f.mailer.sent)
	}

	events := f.bus.byName(ports.EventActivityCreated)
	if len(events) != 1 || events[0].Topic != ports.TopicLead(lead.ID) {
		t.Fatalf("expected one activity:created on the lead room, got %+v", events)
	}
}

func TestAddActivity_SelfActivityDoesNotNotify(t *testing.T) {
	owner := &domain.User{ID: 5, Email: "owner@example.com", Name: "Owner", Role: domain.RoleSalesExec}
	f := newActivityFixture(owner)
	lead := &domain.Lead{Title: "Acme", Status: domain.StatusNew, OwnerID: i64Ptr(5)}
	f.leads.put(lead)

	_, err := f.service.Add(context.Background(), salesExec(5), ports.AddActivityInput{LeadID: lead.ID, Type: "NOTE"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(f.notifications.items) != 0 || len(f.mailer.sent) != 0 {
		t.Fatalf("owner logging their own work must not self-notify")
	}
	// The room event still fires.
	if len(f.bus.byName(ports.EventActivityCreated)) != 1 {
		t.Fatalf("activity:created should still broadcast")
	}
}

func TestAddActivity_ReloadFailureReturnsBareRow(t *testing.T) {
	f := newActivityFixture()
	lead := &domain.Lead{Title: "Acme", Status: domain.StatusNew}
	f.leads.put(lead)
	f.activities.findErr = errors.New("read replica lagging")

	activity, err := f.service.Add(context.Background(), admin(1), ports.AddActivityInput{LeadID: lead.ID, Type: "NOTE"})
	if err != nil {
		t.Fatalf("reload failure must not fail the add: %v", err)
	}
	if activity.ID == 0 {
		t.Fatalf("bare row should still carry the new id")
	}
}

func TestGetActivity_ScopedByLeadOwnership(t *testing.T) {
	f := newActivityFixture()
	lead := &domain.Lead{Title: "Acme", Status: domain.StatusNew, OwnerID: i64Ptr(8)}
	f.leads.put(lead)
	_ = f.activities.Create(context.Background(), &domain.Activity{LeadID: lead.ID, Type: domain.ActivityNote})

	_, err := f.service.Get(context.Background(), salesExec(7), 1)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	got, err := f.service.Get(context.Background(), salesExec(8), 1)
	if err != nil || got.ID != 1 {
		t.Fatalf("owner should read the activity, got %v, %v", got, err)
	}
}

func TestListActivities_LeadFilterChecksAccess(t *testing.T) {
	f := newActivityFixture()
	lead := &domain.Lead{Title: "Acme", Status: domain.StatusNew, OwnerID: i64Ptr(8)}
	f.leads.put(lead)

	_, err := f.service.List(context.Background(), salesExec(7), &lead.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := f.service.List(context.Background(), manager(1), &lead.ID); err != nil {
		t.Fatalf("manager list: %v", err)
	}
}
