package news

import (
	"context"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
)

// Status values for a news item.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Item is a community news post.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AuthorID    int64     `json:"author_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ImagePath   string    `json:"image_path,omitempty"`
	Status      string    `json:"status"`
}

// SubmitInput carries the news form.
type SubmitInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
	AuthorID    int64  `json:"-"`
}

// Repository persists news items.
type Repository interface {
	Create(ctx context.Context, item Item) (int64, error)
	// List returns every item newest first.
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
}

var errItemNotFound = apperr.NotFound("news item not found")
