// Package emergency lists the emergency hotlines and records reported
// emergencies, alerting the reporter's emergency contacts.
package emergency

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siaga-app/siaga/internal/identity"
	"github.com/siaga-app/siaga/internal/notification"
)

// ProfileLoader resolves a user id to its profile.
type ProfileLoader interface {
	Profile(ctx context.Context, id int64) (identity.Profile, error)
}

// Service records emergencies.
type Service struct {
	repo     Repository
	users    ProfileLoader
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds an emergency service.
func NewService(repo Repository, users ProfileLoader, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, notifier: notifier, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Services returns the dialable hotlines.
func (s *Service) Services() []Hotline {
	out := make([]Hotline, len(hotlines))
	copy(out, hotlines)
	return out
}

// Report logs an emergency and alerts the user's emergency contacts. Alert
// delivery is best effort; the log is written regardless.
func (s *Service) Report(ctx context.Context, in ReportInput) (Report, error) {
	hotline, ok := lookupHotline(strings.ToLower(strings.TrimSpace(in.Type)))
	if !ok {
		return Report{}, errUnknownType
	}
	profile, err := s.users.Profile(ctx, in.UserID)
	if err != nil {
		return Report{}, err
	}

	entry := Log{
		UserID:    in.UserID,
		Type:      hotline.Type,
		Location:  strings.TrimSpace(in.Location),
		Timestamp: s.now(),
		Status:    StatusInitiated,
	}
	id, err := s.repo.Create(ctx, entry)
	if err != nil {
		return Report{}, err
	}
	entry.ID = id

	report := Report{Log: entry, Dial: hotline.Number}
	body := alertBody(profile, hotline, entry.Location)
	for _, contact := range profile.Contacts() {
		msg := notification.Message{Kind: notification.KindEmergencyAlert, Destination: contact, Body: body}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("emergency alert failed", slog.Int64("log_id", id), slog.String("destination", contact), slog.Any("error", err))
			continue
		}
		report.Notified++
	}

	s.logger.Info("emergency reported",
		slog.Int64("log_id", id),
		slog.Int64("user_id", in.UserID),
		slog.String("type", hotline.Type),
		slog.Int("notified", report.Notified))
	return report, nil
}

// History returns the user's reported emergencies newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Log, error) {
	return s.repo.ListByUser(ctx, userID)
}

func lookupHotline(kind string) (Hotline, bool) {
	for _, h := range hotlines {
		if h.Type == kind {
			return h, true
		}
	}
	return Hotline{}, false
}

func alertBody(profile identity.Profile, hotline Hotline, location string) string {
	body := fmt.Sprintf("%s (%s) reported a %s emergency and is calling %s.", profile.Name, profile.Phone, hotline.Type, hotline.Number)
	if location != "" {
		body += " Location: " + location
	}
	return body
}
