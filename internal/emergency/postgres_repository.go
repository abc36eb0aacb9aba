package emergency

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siaga-app/siaga/internal/apperr"
)

// PostgresRepository stores emergency logs in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed emergency log repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, l Log) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO emergency_logs (user_id, emergency_type, location, timestamp, status)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5) RETURNING id`,
		l.UserID, l.Type, l.Location, l.Timestamp.UTC(), l.Status).Scan(&id)
	if err != nil {
		return 0, apperr.Persistence("create emergency log", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Log, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, COALESCE(emergency_type, ''), COALESCE(location, ''), timestamp, status
        FROM emergency_logs WHERE user_id = $1 ORDER BY timestamp DESC, id DESC`, userID)
	if err != nil {
		return nil, apperr.Persistence("list emergency logs", err)
	}
	defer rows.Close()

	logs := []Log{}
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Type, &l.Location, &l.Timestamp, &l.Status); err != nil {
			return nil, apperr.Persistence("list emergency logs", err)
		}
		l.Timestamp = l.Timestamp.UTC()
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list emergency logs", err)
	}
	return logs, nil
}
