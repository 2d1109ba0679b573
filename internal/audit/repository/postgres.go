package repository

import (
	"context"
	"database/sql"

	"gui-replay/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const auditColumns = `id, client_id, action, resource, resource_id, ip, metadata, created_at`

// ListByClient returns audit logs for the given client, newest first, paginated
// by limit and offset. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByClient(ctx context.Context, clientID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs WHERE client_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the audit log to the database. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO audit_logs
		(id, client_id, action, resource, resource_id, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ClientID, a.Action, a.Resource,
		sql.NullString{String: a.ResourceID, Valid: a.ResourceID != ""},
		a.IP,
		sql.NullString{String: a.Metadata, Valid: a.Metadata != ""},
		a.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditLog(row rowScanner) (*domain.AuditLog, error) {
	var a domain.AuditLog
	var resourceID, metadata sql.NullString
	err := row.Scan(&a.ID, &a.ClientID, &a.Action, &a.Resource, &resourceID, &a.IP, &metadata, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if resourceID.Valid {
		a.ResourceID = resourceID.String
	}
	if metadata.Valid {
		a.Metadata = metadata.String
	}
	return &a, nil
}
