package emergency

import (
	"context"
	"database/sql"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/storage/sqlitestore"
)

// SQLiteRepository stores emergency logs in the local database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed emergency log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, l Log) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO emergency_logs (user_id, emergency_type, location, timestamp, status)
        VALUES (?, ?, NULLIF(?, ''), ?, ?)`,
		l.UserID, l.Type, l.Location, sqlitestore.ToMillis(l.Timestamp), l.Status)
	if err != nil {
		return 0, apperr.Persistence("create emergency log", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Persistence("create emergency log", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]Log, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, COALESCE(emergency_type, ''), COALESCE(location, ''), timestamp, status
        FROM emergency_logs WHERE user_id = ? ORDER BY timestamp DESC, id DESC`, userID)
	if err != nil {
		return nil, apperr.Persistence("list emergency logs", err)
	}
	defer rows.Close()

	logs := []Log{}
	for rows.Next() {
		var (
			l  Log
			ts int64
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.Type, &l.Location, &ts, &l.Status); err != nil {
			return nil, apperr.Persistence("list emergency logs", err)
		}
		l.Timestamp = sqlitestore.FromMillis(ts)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list emergency logs", err)
	}
	return logs, nil
}
