// Package news stores the community news feed.
package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
)

// Service submits and reads news items.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a news service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Submit stores a new item. Items posted from the app are published
// immediately.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Item, error) {
	item := Item{
		Title:       strings.TrimSpace(in.Title),
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		ImagePath:   strings.TrimSpace(in.ImagePath),
		AuthorID:    in.AuthorID,
		CreatedAt:   s.now(),
		Status:      StatusApproved,
	}
	if item.Title == "" || item.Category == "" || item.Description == "" {
		return Item{}, apperr.Validation("Please fill in all fields")
	}

	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return Item{}, err
	}
	item.ID = id
	s.logger.Info("news submitted", slog.Int64("news_id", id), slog.Int64("author_id", item.AuthorID))
	return item, nil
}

// List returns the feed newest first.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.repo.Get(ctx, id)
}
