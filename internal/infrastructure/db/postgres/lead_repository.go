package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/ports"
)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `
	l.id, l.title, l.company, l.email, l.phone, l.status, l.owner_id,
	l.created_at, l.updated_at, u.id, u.name, u.email`

const leadBaseQuery = `
	SELECT` + leadColumns + `
	FROM leads l
	LEFT JOIN users u ON u.id = l.owner_id`

// scanLead reads one lead row with its owner projection.
func scanLead(row interface{ Scan(...any) error }) (*domain.Lead, error) {
	var l domain.Lead
	var company, email, phone sql.NullString
	var ownerID sql.NullInt64
	var refID sql.NullInt64
	var refName, refEmail sql.NullString

	err := row.Scan(
		&l.ID, &l.Title, &company, &email, &phone, &l.Status, &ownerID,
		&l.CreatedAt, &l.UpdatedAt, &refID, &refName, &refEmail,
	)
	if err != nil {
		return nil, err
	}
	l.Company = company.String
	l.Email = email.String
	l.Phone = phone.String
	if ownerID.Valid {
		l.OwnerID = &ownerID.Int64
	}
	if refID.Valid {
		l.Owner = &domain.UserRef{ID: refID.Int64, Name: refName.String, Email: refEmail.String}
	}
	return &l, nil
}

// Create inserts the lead and its derived creation activity in one
// transaction.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead, activity *domain.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO leads (title, company, email, phone, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		lead.Title, nullString(lead.Company), nullString(lead.Email),
		nullString(lead.Phone), lead.Status, lead.OwnerID,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return err
	}

	if activity != nil {
		activity.LeadID = lead.ID
		if err := insertActivity(ctx, tx, activity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*domain.Lead, error) {
	lead, err := scanLead(r.db.QueryRowContext(ctx, leadBaseQuery+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

// List returns a page of leads matching filter and the total count.
func (r *LeadRepository) List(ctx context.Context, filter ports.ListLeadsFilter) ([]*domain.Lead, int64, error) {
	var conditions []string
	var args []any
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("l.owner_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads l`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(
		leadBaseQuery+where+` ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args),
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

// Update persists the patched lead fields and, when non-nil, the history
// entry and derived activity, all in one transaction.
func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead, history *domain.LeadHistory, activity *domain.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE leads
		SET title = $1, company = $2, email = $3, phone = $4, status = $5,
		    owner_id = $6, updated_at = NOW()
		WHERE id = $7`,
		lead.Title, nullString(lead.Company), nullString(lead.Email),
		nullString(lead.Phone), lead.Status, lead.OwnerID, lead.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrLeadNotFound
	}

	if history != nil {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO lead_history (lead_id, from_status, to_status, changed_by)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			history.LeadID, history.From, history.To, history.ChangedBy,
		).Scan(&history.ID, &history.CreatedAt)
		if err != nil {
			return err
		}
	}
	if activity != nil {
		if err := insertActivity(ctx, tx, activity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

// History returns the lead's transitions, most recent first.
func (r *LeadRepository) History(ctx context.Context, leadID int64) ([]*domain.LeadHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT h.id, h.lead_id, h.from_status, h.to_status, h.changed_by,
		       h.created_at, u.id, u.name
		FROM lead_history h
		LEFT JOIN users u ON u.id = h.changed_by
		WHERE h.lead_id = $1
		ORDER BY h.created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LeadHistory
	for rows.Next() {
		var h domain.LeadHistory
		var from sql.NullString
		var refID sql.NullInt64
		var refName sql.NullString
		if err := rows.Scan(&h.ID, &h.LeadID, &from, &h.To, &h.ChangedBy,
			&h.CreatedAt, &refID, &refName); err != nil {
			return nil, err
		}
		if from.Valid {
			status := domain.LeadStatus(from.String)
			h.From = &status
		}
		if refID.Valid {
			h.Changer = &domain.UserRef{ID: refID.Int64, Name: refName.String}
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}

func (r *LeadRepository) CountByStatus(ctx context.Context, ownerID *int64) (map[domain.LeadStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM leads`
	var args []any
	if ownerID != nil {
		query += ` WHERE owner_id = $1`
		args = append(args, *ownerID)
	}
	query += ` GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LeadStatus]int64)
	for rows.Next() {
		var status domain.LeadStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *LeadRepository) Recent(ctx context.Context, ownerID *int64, limit int) ([]*domain.Lead, error) {
	query := leadBaseQuery
	var args []any
	if ownerID != nil {
		args = append(args, *ownerID)
		query += ` WHERE l.owner_id = $1`
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY l.created_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
