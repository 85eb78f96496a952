package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
	"github.com/leadstack/crm-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubLeadRepo struct {
	leads     map[int64]*domain.Lead
	histories []*domain.LeadHistory
	nextID    int64

	createErr error
	updateErr error
	listErr   error

	// activities passed alongside Create/Update, in call order
	txActivities []*domain.Activity
	deleted      []int64
}

func newStubLeadRepo() *stubLeadRepo {
	return &stubLeadRepo{leads: make(map[int64]*domain.Lead)}
}

func (r *stubLeadRepo) put(l *domain.Lead) *domain.Lead {
	if l.ID == 0 {
		r.nextID++
		l.ID = r.nextID
	} else if l.ID > r.nextID {
		r.nextID = l.ID
	}
	clone := *l
	r.leads[l.ID] = &clone
	return l
}

func (r *stubLeadRepo) Create(_ context.Context, lead *domain.Lead, activity *domain.Activity) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(lead)
	if activity != nil {
		activity.LeadID = lead.ID
		r.txActivities = append(r.txActivities, activity)
	}
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	return nil
}

func (r *stubLeadRepo) FindByID(_ context.Context, id int64) (*domain.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *stubLeadRepo) List(_ context.Context, f ports.ListLeadsFilter) ([]*domain.Lead, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var matched []*domain.Lead
	for _, l := range r.leads {
		if f.OwnerID != nil && (l.OwnerID == nil || *l.OwnerID != *f.OwnerID) {
			continue
		}
		if f.Status != "" && string(l.Status) != f.Status {
			continue
		}
		clone := *l
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []*domain.Lead{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubLeadRepo) Update(_ context.Context, lead *domain.Lead, history *domain.LeadHistory, activity *domain.Activity) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.leads[lead.ID]; !ok {
		return domain.ErrLeadNotFound
	}
	r.put(lead)
	if history != nil {
		clone := *history
		r.histories = append(r.histories, &clone)
	}
	if activity != nil {
		r.txActivities = append(r.txActivities, activity)
	}
	return nil
}

func (r *stubLeadRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.leads[id]; !ok {
		return domain.ErrLeadNotFound
	}
	delete(r.leads, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubLeadRepo) History(_ context.Context, leadID int64) ([]*domain.LeadHistory, error) {
	var out []*domain.LeadHistory
	for _, h := range r.histories {
		if h.LeadID == leadID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *stubLeadRepo) CountByStatus(_ context.Context, ownerID *int64) (map[domain.LeadStatus]int64, error) {
	out := make(map[domain.LeadStatus]int64)
	for _, l := range r.leads {
		if ownerID != nil && (l.OwnerID == nil || *l.OwnerID != *ownerID) {
			continue
		}
		out[l.Status]++
	}
	return out, nil
}

func (r *stubLeadRepo) Recent(_ context.Context, ownerID *int64, limit int) ([]*domain.Lead, error) {
	items, _, err := r.List(context.Background(), ports.ListLeadsFilter{OwnerID: ownerID, Page: 1, Limit: limit})
	return items, err
}

type stubActivityRepo struct {
	items     map[int64]*domain.Activity
	nextID    int64
	createErr error
	findErr   error
}

func newStubActivityRepo() *stubActivityRepo {
	return &stubActivityRepo{items: make(map[int64]*domain.Activity)}
}

func (r *stubActivityRepo) Create(_ context.Context, a *domain.Activity) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Now()
	clone := *a
	r.items[a.ID] = &clone
	return nil
}

func (r *stubActivityRepo) FindByID(_ context.Context, id int64) (*domain.Activity, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.items[id]
	if !ok {
		return nil, domain.ErrActivityNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubActivityRepo) ListByLead(_ context.Context, leadID *int64) ([]*domain.Activity, error) {
	var out []*domain.Activity
	for _, a := range r.items {
		if leadID != nil && a.LeadID != *leadID {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubActivityRepo) CountByType(_ context.Context, _ *int64) (map[domain.ActivityType]int64, error) {
	out := make(map[domain.ActivityType]int64)
	for _, a := range r.items {
		out[a.Type]++
	}
	return out, nil
}

func (r *stubActivityRepo) Recent(_ context.Context, _ *int64, limit int) ([]*domain.Activity, error) {
	out, _ := r.ListByLead(context.Background(), nil)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubNotificationRepo struct {
	items     []*domain.Notification
	nextID    int64
	createErr error
	markErr   error
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	clone := *n
	r.items = append(r.items, &clone)
	return nil
}

func (r *stubNotificationRepo) List(_ context.Context, userID int64, read *bool) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range r.items {
		if n.UserID != userID {
			continue
		}
		if read != nil && n.Read != *read {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, userID int64) (int64, error) {
	if r.markErr != nil {
		return 0, r.markErr
	}
	for _, n := range r.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, userID int64) error {
	for _, n := range r.items {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

type stubUserRepo struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	updateErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
		clone := *u
		r.users[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) EmailTakenByOther(_ context.Context, email string, id int64) (bool, error) {
	for _, u := range r.users {
		if u.Email == email && u.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*ports.UserSummary, error) {
	var out []*ports.UserSummary
	for _, u := range r.users {
		out = append(out, &ports.UserSummary{User: *u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Counts(_ context.Context, _ int64) (int64, int64, error) {
	return 0, 0, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Stub bus and mailer
// ---------------------------------------------------------------------------

type publishedEvent struct {
	Topic   string
	Name    string
	Payload any
}

type stubBus struct {
	published  []publishedEvent
	publishErr error
}

func (b *stubBus) Publish(_ context.Context, topic, name string, payload any) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedEvent{Topic: topic, Name: name, Payload: payload})
	return nil
}

func (b *stubBus) Subscribe(context.Context, string) (ports.Subscription, error) {
	return nil, nil
}

func (b *stubBus) Close() error { return nil }

func (b *stubBus) byName(name string) []publishedEvent {
	var out []publishedEvent
	for _, ev := range b.published {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

type stubMailer struct {
	sent    []string // "assigned:<recipient>", "status:<recipient>", "activity:<recipient>"
	sendErr error
}

func (m *stubMailer) SendLeadAssigned(_ context.Context, recipient, _ string, _ int64) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, "assigned:"+recipient)
	return nil
}

func (m *stubMailer) SendStatusChanged(_ context.Context, recipient, _ string, _, _ domain.LeadStatus) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, "status:"+recipient)
	return nil
}

func (m *stubMailer) SendActivityAdded(_ context.Context, recipient, _ string, _ domain.ActivityType, _ string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, "activity:"+recipient)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture helpers
// ---------------------------------------------------------------------------

type leadFixture struct {
	leads         *stubLeadRepo
	activities    *stubActivityRepo
	users         *stubUserRepo
	notifications *stubNotificationRepo
	bus           *stubBus
	mailer        *stubMailer
	service       *LeadService
}

func newLeadFixture(users ...*domain.User) *leadFixture {
	f := &leadFixture{
		leads:         newStubLeadRepo(),
		activities:    newStubActivityRepo(),
		users:         newStubUserRepo(users...),
		notifications: &stubNotificationRepo{},
		bus:           &stubBus{},
		mailer:        &stubMailer{},
	}
	notifier := NewNotifier(f.notifications, f.bus, f.mailer, time.Second, discardLogger)
	f.service = NewLeadService(f.leads, f.activities, f.users, notifier, discardLogger)
	return f
}

func admin(id int64) policy.Principal  { return policy.Principal{UserID: id, Role: domain.RoleAdmin} }
func manager(id int64) policy.Principal {
	return policy.Principal{UserID: id, Role: domain.RoleManager}
}
func salesExec(id int64) policy.Principal {
	return policy.Principal{UserID: id, Role: domain.RoleSalesExec}
}
