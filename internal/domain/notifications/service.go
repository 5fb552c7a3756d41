package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store        StoreAPI
	Mailer       Mailer
	From         string
	EmailEnabled bool
}

func New(store StoreAPI, mailer Mailer, from string, emailEnabled bool) *Service {
	return &Service{store: store, Mailer: mailer, From: from, EmailEnabled: emailEnabled}
}

// Create persists the notification row and optionally mirrors it by email.
// Email failures are logged but never fail the triggering request.
func (s *Service) Create(ctx context.Context, orgID, userID, ntype, title, body string) error {
	if userID == "" {
		return nil
	}
	if err := s.store.CreateNotification(ctx, orgID, userID, ntype, title, body); err != nil {
		return err
	}

	if s.Mailer == nil || !s.EmailEnabled {
		return nil
	}
	email, err := s.store.UserEmail(ctx, orgID, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

// NotifyEmployee resolves the employee's linked user account, if any, and
// notifies it. Employees without accounts are silently skipped.
func (s *Service) NotifyEmployee(ctx context.Context, orgID, employeeID, ntype, title, body string) error {
	userID, err := s.store.UserIDForEmployee(ctx, orgID, employeeID)
	if err != nil {
		return err
	}
	return s.Create(ctx, orgID, userID, ntype, title, body)
}

func (s *Service) List(ctx context.Context, orgID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, orgID, userID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, orgID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, orgID, userID, notificationID)
}
