package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Scope is the half-open date range [From, To) of one business.
type Scope struct {
	BusinessID uuid.UUID
	From       time.Time
	To         time.Time
}

// ScopeFor builds the scope of a calendar month.
func ScopeFor(businessID uuid.UUID, period Period) Scope {
	return Scope{BusinessID: businessID, From: period.Start(), To: period.End()}
}

// Source is the read capability the engine needs. It is passed in explicitly so tests
// can substitute a fixture and production can hand in the elevated-privilege pool.
type Source interface {
	DailyRecords(ctx context.Context, scope Scope) ([]DailyRecord, error)
	Invoices(ctx context.Context, scope Scope) ([]Invoice, error)
	ProductUsage(ctx context.Context, scope Scope) ([]ProductUsage, error)
	IncomeLines(ctx context.Context, scope Scope) ([]IncomeLine, error)
	// Goal returns nil without error when no goal row exists.
	Goal(ctx context.Context, businessID uuid.UUID, period Period) (*GoalRow, error)
	// BusinessDefaults returns ErrConfigurationMissing when the business is unknown.
	BusinessDefaults(ctx context.Context, businessID uuid.UUID) (BusinessDefaults, error)
	Schedule(ctx context.Context, businessID uuid.UUID) ([]ScheduleSlot, error)
}

// Fetcher reads every record set of a refresh concurrently.
type Fetcher struct {
	source Source
}

// NewFetcher wraps a Source.
func NewFetcher(source Source) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch attempts every read even when one fails. A defaults failure aborts the refresh;
// other failures are joined and returned once all reads have finished.
func (f *Fetcher) Fetch(ctx context.Context, businessID uuid.UUID, period Period) (Snapshot, error) {
	if f == nil || f.source == nil {
		return Snapshot{}, errors.New("metrics: fetcher not configured")
	}
	snap := Snapshot{BusinessID: businessID, Period: period}
	scope := ScopeFor(businessID, period)

	var (
		defaultsErr error
		errs        [9]error
		g           errgroup.Group
	)
	g.Go(func() error {
		snap.Defaults, defaultsErr = f.source.BusinessDefaults(ctx, businessID)
		return nil
	})
	g.Go(func() error {
		snap.Daily, errs[0] = f.source.DailyRecords(ctx, scope)
		return nil
	})
	g.Go(func() error {
		snap.Invoices, errs[1] = f.source.Invoices(ctx, scope)
		return nil
	})
	g.Go(func() error {
		snap.Usage, errs[2] = f.source.ProductUsage(ctx, scope)
		return nil
	})
	g.Go(func() error {
		snap.Income, errs[3] = f.source.IncomeLines(ctx, scope)
		return nil
	})
	g.Go(func() error {
		snap.Goal, errs[4] = f.source.Goal(ctx, businessID, period)
		return nil
	})
	g.Go(func() error {
		snap.Schedule, errs[5] = f.source.Schedule(ctx, businessID)
		return nil
	})
	g.Go(func() error {
		snap.PrevMonthDaily, errs[6] = f.source.DailyRecords(ctx, ScopeFor(businessID, period.PreviousMonth()))
		return nil
	})
	g.Go(func() error {
		snap.PrevYearDaily, errs[7] = f.source.DailyRecords(ctx, ScopeFor(businessID, period.PreviousYear()))
		return nil
	})
	_ = g.Wait()

	if defaultsErr != nil {
		if errors.Is(defaultsErr, ErrConfigurationMissing) {
			return Snapshot{}, defaultsErr
		}
		return Snapshot{}, fmt.Errorf("metrics: read business defaults: %w", defaultsErr)
	}
	if err := errors.Join(errs[:]...); err != nil {
		return Snapshot{}, fmt.Errorf("metrics: read %s: %w", period, err)
	}
	return snap, nil
}
