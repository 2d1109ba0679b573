package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gui-replay/backend/internal/client/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a client repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the client for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, hostname, secret_hash, refresh_jti, revoked_at, created_at
		FROM recorder_clients WHERE id = $1`, id)
	var c domain.Client
	var jti sql.NullString
	var revoked sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.Hostname, &c.SecretHash, &jti, &revoked, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if jti.Valid {
		c.RefreshJTI = jti.String
	}
	if revoked.Valid {
		c.RevokedAt = &revoked.Time
	}
	return &c, nil
}

// List returns all clients, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, hostname, secret_hash, refresh_jti, revoked_at, created_at
		FROM recorder_clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Client
	for rows.Next() {
		var c domain.Client
		var jti sql.NullString
		var revoked sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Hostname, &c.SecretHash, &jti, &revoked, &c.CreatedAt); err != nil {
			return nil, err
		}
		if jti.Valid {
			c.RefreshJTI = jti.String
		}
		if revoked.Valid {
			c.RevokedAt = &revoked.Time
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Create persists the client. The client must have ID and SecretHash set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO recorder_clients
		(id, name, hostname, secret_hash, refresh_jti, revoked_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Hostname, c.SecretHash,
		sql.NullString{String: c.RefreshJTI, Valid: c.RefreshJTI != ""},
		timeToNullTime(c.RevokedAt), c.CreatedAt)
	return err
}

// UpdateRefreshJTI binds the client to its current refresh token for rotation.
func (r *PostgresRepository) UpdateRefreshJTI(ctx context.Context, id, jti string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recorder_clients SET refresh_jti = $2 WHERE id = $1`, id, jti)
	return err
}

// Revoke marks the client as revoked. Returns an error if the update fails.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recorder_clients SET revoked_at = $2 WHERE id = $1`, id, time.Now())
	return err
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
