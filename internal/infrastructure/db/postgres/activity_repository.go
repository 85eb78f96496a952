package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/leadstack/crm-api/internal/core/domain"
)

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// rowQueryer is satisfied by both *sql.DB and *sql.Tx, so activity inserts
// can run inside lead transactions.
type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertActivity(ctx context.Context, q rowQueryer, a *domain.Activity) error {
	var meta []byte
	if a.Meta != nil {
		var err error
		if meta, err = json.Marshal(a.Meta); err != nil {
			return err
		}
	}
	return q.QueryRowContext(ctx, `
		INSERT INTO activities (lead_id, type, note, meta, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		a.LeadID, a.Type, nullString(a.Note), meta, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	return insertActivity(ctx, r.db, a)
}

const activityBaseQuery = `
	SELECT a.id, a.lead_id, a.type, a.note, a.meta, a.created_by, a.created_at,
	       l.id, l.title, l.status, u.id, u.name, u.email
	FROM activities a
	JOIN leads l ON l.id = a.lead_id
	LEFT JOIN users u ON u.id = a.created_by`

func scanActivity(row interface{ Scan(...any) error }) (*domain.Activity, error) {
	var a domain.Activity
	var note sql.NullString
	var meta []byte
	var leadID int64
	var leadTitle string
	var leadStatus domain.LeadStatus
	var refID sql.NullInt64
	var refName, refEmail sql.NullString

	err := row.Scan(
		&a.ID, &a.LeadID, &a.Type, &note, &meta, &a.CreatedBy, &a.CreatedAt,
		&leadID, &leadTitle, &leadStatus, &refID, &refName, &refEmail,
	)
	if err != nil {
		return nil, err
	}
	a.Note = note.String
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &a.Meta); err != nil {
			return nil, err
		}
	}
	a.Lead = &domain.LeadRef{ID: leadID, Title: leadTitle, Status: leadStatus}
	if refID.Valid {
		a.Creator = &domain.UserRef{ID: refID.Int64, Name: refName.String, Email: refEmail.String}
	}
	return &a, nil
}

func (r *ActivityRepository) FindByID(ctx context.Context, id int64) (*domain.Activity, error) {
	activity, err := scanActivity(r.db.QueryRowContext(ctx, activityBaseQuery+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, err
	}
	return activity, nil
}

// ListByLead returns activities most recent first, across all leads when
// leadID is nil.
func (r *ActivityRepository) ListByLead(ctx context.Context, leadID *int64) ([]*domain.Activity, error) {
	query := activityBaseQuery
	var args []any
	if leadID != nil {
		query += ` WHERE a.lead_id = $1`
		args = append(args, *leadID)
	}
	query += ` ORDER BY a.created_at DESC`

	return r.queryActivities(ctx, query, args...)
}

func (r *ActivityRepository) CountByType(ctx context.Context, ownerID *int64) (map[domain.ActivityType]int64, error) {
	query := `SELECT a.type, COUNT(*) FROM activities a`
	var args []any
	if ownerID != nil {
		query += ` JOIN leads l ON l.id = a.lead_id WHERE l.owner_id = $1`
		args = append(args, *ownerID)
	}
	query += ` GROUP BY a.type`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ActivityType]int64)
	for rows.Next() {
		var typ domain.ActivityType
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		counts[typ] = count
	}
	return counts, rows.Err()
}

func (r *ActivityRepository) Recent(ctx context.Context, ownerID *int64, limit int) ([]*domain.Activity, error) {
	query := activityBaseQuery
	args := []any{}
	if ownerID != nil {
		args = append(args, *ownerID)
		query += ` WHERE l.owner_id = $1`
	}
	args = append(args, limit)
	if ownerID != nil {
		query += ` ORDER BY a.created_at DESC LIMIT $2`
	} else {
		query += ` ORDER BY a.created_at DESC LIMIT $1`
	}

	return r.queryActivities(ctx, query, args...)
}

func (r *ActivityRepository) queryActivities(ctx context.Context, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
