package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidStatusChange = errors.New("work log entry is not open for a decision")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, tenantID, entryID string) (*WorkLogEntry, error) {
	return s.store.Get(ctx, tenantID, entryID)
}

func (s *Service) Count(ctx context.Context, tenantID, employeeID, status string) (int, error) {
	return s.store.Count(ctx, tenantID, employeeID, status)
}

func (s *Service) List(ctx context.Context, tenantID, employeeID, status string, limit, offset int) ([]WorkLogEntry, error) {
	return s.store.List(ctx, tenantID, employeeID, status, limit, offset)
}

func (s *Service) ListApprovedForPeriod(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) ([]WorkLogEntry, error) {
	return s.store.ListApprovedForPeriod(ctx, tenantID, employeeID, periodStart, periodEnd)
}

// Submit validates and records a new pending entry. The duration check runs
// here so a negative span never reaches the table.
func (s *Service) Submit(ctx context.Context, tenantID string, entry WorkLogEntry) (string, error) {
	if _, err := WorkingMinutes(entry); err != nil {
		return "", err
	}
	if entry.Multiplier <= 0 {
		return "", fmt.Errorf("multiplier must be positive")
	}
	return s.store.Create(ctx, tenantID, entry)
}

// Decide moves a pending entry to approved or rejected.
func (s *Service) Decide(ctx context.Context, tenantID, entryID, target, decidedBy string) error {
	entry, err := s.store.Get(ctx, tenantID, entryID)
	if err != nil {
		return err
	}
	if !CanTransitionStatus(entry.Status, target) {
		return ErrInvalidStatusChange
	}
	updated, err := s.store.UpdateStatus(ctx, tenantID, entryID, target, decidedBy)
	if err != nil {
		return err
	}
	if !updated {
		return ErrInvalidStatusChange
	}
	return nil
}
