package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// AuditRepository is the data access contract for the audit log.
type AuditRepository interface {
	// Log inserts an entry and sets its ID.
	Log(ctx context.Context, entry *Entry) error

	// List returns one page of matching entries, newest first, and the
	// total number of matches.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Entry, int, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a MariaDB-backed AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Log stores Details as JSON, or NULL when there are none.
func (r *auditRepository) Log(ctx context.Context, entry *Entry) error {
	var details sql.NullString
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("encoding audit details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor, action, resource_type, resource_id, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Actor, entry.Action, entry.ResourceType, entry.ResourceID, details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading audit entry id: %w", err)
	}
	entry.ID = id
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Entry, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.Actor != "" {
		where = append(where, "actor = ?")
		args = append(args, filter.Actor)
	}
	if filter.ResourceType != "" {
		where = append(where, "resource_type = ?")
		args = append(args, filter.ResourceType)
	}
	if filter.ResourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting audit entries: %w", err)
	}

	query := `SELECT id, actor, action, resource_type, resource_id, details, created_at
	          FROM audit_log` + clause + `
	          ORDER BY created_at DESC, id DESC
	          LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.ResourceType, &e.ResourceID, &details, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning audit entry: %w", err)
		}
		if details.Valid && details.String != "" {
			// A damaged details blob should not hide the entry itself.
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				e.Details = map[string]string{"_parse_error": "invalid JSON"}
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating audit rows: %w", err)
	}
	return entries, total, nil
}
