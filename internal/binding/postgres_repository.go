package binding

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siaga-app/siaga/internal/apperr"
)

// PostgresRepository stores bindings in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed binding repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, b Binding) error {
	_, err := r.db.Exec(ctx, `INSERT INTO device_auth (user_id, device_id, device_hash, last_access, is_active)
        VALUES ($1, $2, $3, $4, TRUE)
        ON CONFLICT (user_id, device_id) DO UPDATE SET
            device_hash = EXCLUDED.device_hash,
            last_access = EXCLUDED.last_access,
            is_active = TRUE`,
		b.UserID, b.DeviceID, b.DeviceHash, b.LastAccess.UTC())
	if err != nil {
		return apperr.Persistence("upsert device binding", err)
	}
	return nil
}

func (r *PostgresRepository) FindActiveByDevice(ctx context.Context, deviceID string) (Binding, error) {
	var b Binding
	err := r.db.QueryRow(ctx, `SELECT id, user_id, device_id, device_hash, last_access, is_active
        FROM device_auth
        WHERE device_id = $1 AND is_active
        ORDER BY last_access DESC, id DESC
        LIMIT 1`, deviceID).
		Scan(&b.ID, &b.UserID, &b.DeviceID, &b.DeviceHash, &b.LastAccess, &b.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Binding{}, errBindingNotFound
		}
		return Binding{}, apperr.Persistence("find device binding", err)
	}
	b.LastAccess = b.LastAccess.UTC()
	return b, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, userID int64, deviceID string) error {
	if _, err := r.db.Exec(ctx, `UPDATE device_auth SET is_active = FALSE WHERE user_id = $1 AND device_id = $2`, userID, deviceID); err != nil {
		return apperr.Persistence("deactivate device binding", err)
	}
	return nil
}
