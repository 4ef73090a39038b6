// Package recurring materializes due occurrences of recurring transaction
// templates.
//
// Idempotency is not a read-then-write check: the store's insert-if-absent
// primitive (one occurrence per template per calendar day) decides whether a
// sweep generated anything, so concurrent or re-entered sweeps cannot double
// fire. Each template's due check, occurrence insert and balance effect share
// one unit of work, and a failure on one template never aborts the sweep.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/fintrack/fintrack/pkg/repository"
	"github.com/fintrack/fintrack/pkg/service/ledger"
	"github.com/google/uuid"
)

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Errors    []string `json:"errors"`
}

// Service is the recurring scheduler.
type Service struct {
	uow    repository.UnitOfWork
	ledger *ledger.Service
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source. For tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// New creates a recurring scheduler service.
func New(uow repository.UnitOfWork, l *ledger.Service, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{uow: uow, ledger: l, clock: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunSweep walks every template and materializes at most one due occurrence
// per template. Overdue templates catch up one occurrence per sweep. Errors
// are collected per template; the sweep itself always runs to completion.
func (s *Service) RunSweep(ctx context.Context) (*SweepResult, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	templates, err := repo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recurring templates: %w", err)
	}

	result := &SweepResult{Errors: []string{}}
	for _, tpl := range templates {
		result.Processed++
		created, err := s.sweepTemplate(ctx, tpl)
		if err != nil {
			s.logger.Warn("Recurring template failed", "template", tpl.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("template %s: %v", tpl.ID, err))
			continue
		}
		if created {
			result.Created++
		}
	}
	s.logger.Info("Recurring sweep finished",
		"processed", result.Processed, "created", result.Created, "errors", len(result.Errors))
	return result, nil
}

// sweepTemplate runs one template's due-check, occurrence insert and balance
// effect inside a single unit of work.
func (s *Service) sweepTemplate(ctx context.Context, tpl *transaction.Transaction) (bool, error) {
	var created bool
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		latest, err := repo.LatestOccurrenceDate(ctx, tpl.ID)
		if err != nil {
			return err
		}
		reference := day(tpl.Date)
		if !latest.IsZero() {
			reference = day(latest).AddDate(0, 0, 1)
		}
		candidate := day(transaction.NextOccurrence(day(tpl.Date), tpl.Frequency, reference))
		if candidate.After(day(s.clock())) {
			return nil
		}

		now := s.clock().UTC()
		parentID := tpl.ID
		occurrence := &transaction.Transaction{
			ID:            uuid.New(),
			OwnerID:       tpl.OwnerID,
			AccountID:     tpl.AccountID,
			DestinationID: tpl.DestinationID,
			Kind:          tpl.Kind,
			Amount:        tpl.Amount,
			Category:      tpl.Category,
			Date:          candidate,
			ParentID:      &parentID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		inserted, err := repo.CreateOccurrence(ctx, occurrence)
		if err != nil {
			return err
		}
		if !inserted {
			// Another sweep already materialized this day.
			return nil
		}
		if err := s.ledger.ApplyEffect(ctx, uow, occurrence); err != nil {
			return err
		}
		created = true
		s.logger.Info("Recurring occurrence generated",
			"template", tpl.ID, "occurrence", occurrence.ID, "date", candidate.Format("2006-01-02"))
		return nil
	})
	return created, err
}

// day truncates t to its calendar day in UTC.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
