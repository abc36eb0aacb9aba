package news

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siaga-app/siaga/internal/apperr"
)

// PostgresRepository stores news in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed news repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgItemColumns = `id, title, description, COALESCE(category, ''), COALESCE(author_id, 0), created_at, COALESCE(image_path, ''), status`

func (r *PostgresRepository) Create(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO news (title, description, category, author_id, created_at, image_path, status)
        VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, 0), $5, NULLIF($6, ''), $7) RETURNING id`,
		item.Title, item.Description, item.Category, item.AuthorID, item.CreatedAt.UTC(), item.ImagePath, item.Status).Scan(&id)
	if err != nil {
		return 0, apperr.Persistence("create news item", err)
	}
	return id, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT `+pgItemColumns+` FROM news ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Persistence("list news", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanPgItem(rows)
		if err != nil {
			return nil, apperr.Persistence("list news", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list news", err)
	}
	return items, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Item, error) {
	item, err := scanPgItem(r.db.QueryRow(ctx, `SELECT `+pgItemColumns+` FROM news WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, errItemNotFound
		}
		return Item{}, apperr.Persistence("load news item", err)
	}
	return item, nil
}

func scanPgItem(row pgx.Row) (Item, error) {
	var item Item
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Category, &item.AuthorID, &item.CreatedAt, &item.ImagePath, &item.Status); err != nil {
		return Item{}, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}
