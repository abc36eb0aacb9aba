package binding

import (
	"context"
	"database/sql"
	"errors"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/storage/sqlitestore"
)

// SQLiteRepository stores bindings in the device_auth table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed binding repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, b Binding) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO device_auth (user_id, device_id, device_hash, last_access, is_active)
        VALUES (?, ?, ?, ?, 1)
        ON CONFLICT(user_id, device_id) DO UPDATE SET
            device_hash = excluded.device_hash,
            last_access = excluded.last_access,
            is_active = 1`,
		b.UserID, b.DeviceID, b.DeviceHash, sqlitestore.ToMillis(b.LastAccess))
	if err != nil {
		return apperr.Persistence("upsert device binding", err)
	}
	return nil
}

func (r *SQLiteRepository) FindActiveByDevice(ctx context.Context, deviceID string) (Binding, error) {
	var (
		b          Binding
		lastAccess int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, device_id, device_hash, last_access, is_active
        FROM device_auth
        WHERE device_id = ? AND is_active = 1
        ORDER BY last_access DESC, id DESC
        LIMIT 1`, deviceID).
		Scan(&b.ID, &b.UserID, &b.DeviceID, &b.DeviceHash, &lastAccess, &b.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Binding{}, errBindingNotFound
		}
		return Binding{}, apperr.Persistence("find device binding", err)
	}
	b.LastAccess = sqlitestore.FromMillis(lastAccess)
	return b, nil
}

func (r *SQLiteRepository) Deactivate(ctx context.Context, userID int64, deviceID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE device_auth SET is_active = 0 WHERE user_id = ? AND device_id = ?`, userID, deviceID)
	if err != nil {
		return apperr.Persistence("deactivate device binding", err)
	}
	return nil
}
