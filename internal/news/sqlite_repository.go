package news

import (
	"context"
	"database/sql"
	"errors"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/storage/sqlitestore"
)

// SQLiteRepository stores news in the local database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed news repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteItemColumns = `id, title, description, COALESCE(category, ''), COALESCE(author_id, 0), created_at, COALESCE(image_path, ''), status`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) Create(ctx context.Context, item Item) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO news (title, description, category, author_id, created_at, image_path, status)
        VALUES (?, ?, NULLIF(?, ''), NULLIF(?, 0), ?, NULLIF(?, ''), ?)`,
		item.Title, item.Description, item.Category, item.AuthorID, sqlitestore.ToMillis(item.CreatedAt), item.ImagePath, item.Status)
	if err != nil {
		return 0, apperr.Persistence("create news item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Persistence("create news item", err)
	}
	return id, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteItemColumns+` FROM news ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Persistence("list news", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanSQLiteItem(rows)
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

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (Item, error) {
	item, err := scanSQLiteItem(r.db.QueryRowContext(ctx, `SELECT `+sqliteItemColumns+` FROM news WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, errItemNotFound
		}
		return Item{}, apperr.Persistence("load news item", err)
	}
	return item, nil
}

func scanSQLiteItem(row rowScanner) (Item, error) {
	var (
		item      Item
		createdAt int64
	)
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Category, &item.AuthorID, &createdAt, &item.ImagePath, &item.Status); err != nil {
		return Item{}, err
	}
	item.CreatedAt = sqlitestore.FromMillis(createdAt)
	return item, nil
}
