package notifications

import (
	"context"
	"log/slog"
)

// Mailer delivers the email copy of a notification. Implementations decide
// whether to actually send; the in-app row is written either way.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store  *Store
	mailer Mailer
	from   string
}

func NewService(store *Store, mailer Mailer, fromAddress string) *Service {
	return &Service{store: store, mailer: mailer, from: fromAddress}
}

// Create writes the in-app notification and mails a copy on a best-effort
// basis. A failed email never fails the notification.
func (s *Service) Create(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if _, err := s.store.Insert(ctx, tenantID, userID, ntype, title, body); err != nil {
		return err
	}
	if s.mailer == nil {
		return nil
	}
	to, err := s.store.UserEmail(ctx, tenantID, userID)
	if err != nil || to == "" {
		return nil
	}
	if err := s.mailer.Send(ctx, s.from, to, title, body); err != nil {
		slog.Warn("notification email failed", "userId", userID, "type", ntype, "err", err)
	}
	return nil
}

func (s *Service) Count(ctx context.Context, tenantID, userID string, unreadOnly bool) (int, error) {
	return s.store.Count(ctx, tenantID, userID, unreadOnly)
}

func (s *Service) List(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.store.List(ctx, tenantID, userID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) (bool, error) {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.MarkAllRead(ctx, tenantID, userID)
}
