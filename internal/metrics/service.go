package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Store persists and reads back metrics rows.
type Store interface {
	UpsertMetrics(ctx context.Context, row MetricsRow) error
	GetMetrics(ctx context.Context, businessID uuid.UUID, period Period) (MetricsRow, error)
	ListMetrics(ctx context.Context, businessID uuid.UUID, year int) ([]MetricsRow, error)
}

// Service orchestrates fetch, compute and persist for one (business, month) key.
type Service struct {
	fetcher *Fetcher
	store   Store
	cache   *Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the service. cache and logger may be nil.
func NewService(source Source, store Store, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: NewFetcher(source),
		store:   store,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the clock stamped into computed_at.
func (s *Service) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

func validateKey(businessID uuid.UUID, year, month int) (Period, error) {
	if businessID == uuid.Nil {
		return Period{}, ErrInvalidBusiness
	}
	return NewPeriod(year, month)
}

// RefreshMetrics recomputes and persists the metrics row of a month. Running it twice
// over unchanged data yields the same row except for computed_at.
func (s *Service) RefreshMetrics(ctx context.Context, businessID uuid.UUID, year, month int) (MetricsRow, error) {
	period, err := validateKey(businessID, year, month)
	if err != nil {
		return MetricsRow{}, err
	}
	log := s.logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("business_id", businessID.String()),
		slog.String("period", period.String()),
	)
	start := time.Now()

	snap, err := s.fetcher.Fetch(ctx, businessID, period)
	if err != nil {
		log.Error("metrics fetch", slog.Any("error", err))
		return MetricsRow{}, err
	}
	row := Compute(snap).Row(s.now())

	if err := ctx.Err(); err != nil {
		log.Warn("metrics refresh cancelled before persist", slog.Any("error", err))
		return MetricsRow{}, err
	}
	if err := s.store.UpsertMetrics(ctx, row); err != nil {
		log.Error("metrics persist", slog.Any("error", err))
		return MetricsRow{}, err
	}
	if err := s.cache.Bump(ctx, businessID); err != nil {
		log.Warn("metrics cache bump", slog.Any("error", err))
	}
	log.Info("metrics refreshed",
		slog.Int("work_days", row.ActualWorkDays),
		slog.Float64("monthly_pace", row.MonthlyPace),
		slog.Duration("duration", time.Since(start)),
	)
	return row, nil
}

// GetMetrics returns the persisted row of a month through the read cache.
func (s *Service) GetMetrics(ctx context.Context, businessID uuid.UUID, year, month int) (MetricsRow, error) {
	period, err := validateKey(businessID, year, month)
	if err != nil {
		return MetricsRow{}, err
	}
	key, err := s.cache.BuildKey(ctx, businessID, "row", period.String())
	if err != nil {
		return MetricsRow{}, fmt.Errorf("metrics cache key: %w", err)
	}
	var row MetricsRow
	err = s.cache.FetchJSON(ctx, key, &row, func(ctx context.Context) (interface{}, error) {
		return s.store.GetMetrics(ctx, businessID, period)
	})
	if err != nil {
		return MetricsRow{}, err
	}
	return row, nil
}

// ListYear returns every persisted month of a year through the read cache.
func (s *Service) ListYear(ctx context.Context, businessID uuid.UUID, year int) ([]MetricsRow, error) {
	if _, err := validateKey(businessID, year, 1); err != nil {
		return nil, err
	}
	key, err := s.cache.BuildKey(ctx, businessID, "year", strconv.Itoa(year))
	if err != nil {
		return nil, fmt.Errorf("metrics cache key: %w", err)
	}
	rows := []MetricsRow{}
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		list, err := s.store.ListMetrics(ctx, businessID, year)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []MetricsRow{}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
