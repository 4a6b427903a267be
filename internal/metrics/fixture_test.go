package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

func ptr(v float64) *float64 { return &v }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func mustPeriod(year, month int) Period {
	p, err := NewPeriod(year, month)
	if err != nil {
		panic(err)
	}
	return p
}

// memorySource is an in-memory Source keyed by the month a scope starts in.
type memorySource struct {
	mu       sync.Mutex
	daily    map[Period][]DailyRecord
	invoices []Invoice
	usage    []ProductUsage
	income   []IncomeLine
	goal     *GoalRow
	defaults *BusinessDefaults
	schedule []ScheduleSlot
	errs     map[string]error
	calls    map[string]int
}

func newMemorySource(businessID uuid.UUID) *memorySource {
	return &memorySource{
		daily:    make(map[Period][]DailyRecord),
		defaults: &BusinessDefaults{BusinessID: businessID, Name: "Cafe"},
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (m *memorySource) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	return m.errs[name]
}

func (m *memorySource) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func scopePeriod(scope Scope) Period {
	return Period{Year: scope.From.Year(), Month: scope.From.Month()}
}

func (m *memorySource) DailyRecords(ctx context.Context, scope Scope) ([]DailyRecord, error) {
	key := "daily:" + scopePeriod(scope).String()
	if err := m.record(key); err != nil {
		return nil, err
	}
	return m.daily[scopePeriod(scope)], nil
}

func (m *memorySource) Invoices(ctx context.Context, scope Scope) ([]Invoice, error) {
	if err := m.record("invoices"); err != nil {
		return nil, err
	}
	return m.invoices, nil
}

func (m *memorySource) ProductUsage(ctx context.Context, scope Scope) ([]ProductUsage, error) {
	if err := m.record("usage"); err != nil {
		return nil, err
	}
	return m.usage, nil
}

func (m *memorySource) IncomeLines(ctx context.Context, scope Scope) ([]IncomeLine, error) {
	if err := m.record("income"); err != nil {
		return nil, err
	}
	return m.income, nil
}

func (m *memorySource) Goal(ctx context.Context, businessID uuid.UUID, period Period) (*GoalRow, error) {
	if err := m.record("goal"); err != nil {
		return nil, err
	}
	return m.goal, nil
}

func (m *memorySource) BusinessDefaults(ctx context.Context, businessID uuid.UUID) (BusinessDefaults, error) {
	if err := m.record("defaults"); err != nil {
		return BusinessDefaults{}, err
	}
	if m.defaults == nil {
		return BusinessDefaults{}, ErrConfigurationMissing
	}
	return *m.defaults, nil
}

func (m *memorySource) Schedule(ctx context.Context, businessID uuid.UUID) ([]ScheduleSlot, error) {
	if err := m.record("schedule"); err != nil {
		return nil, err
	}
	return m.schedule, nil
}

// memoryStore replaces whole rows under a lock, mirroring the single-statement upsert.
type memoryStore struct {
	mu     sync.Mutex
	rows   map[string]MetricsRow
	writes int
	reads  int
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[string]MetricsRow)}
}

func storeKey(businessID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s:%d:%d", businessID, year, month)
}

func (s *memoryStore) UpsertMetrics(ctx context.Context, row MetricsRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return fmt.Errorf("metrics: persist: %w", s.err)
	}
	s.writes++
	s.rows[storeKey(row.BusinessID, row.Year, row.Month)] = row
	return nil
}

func (s *memoryStore) GetMetrics(ctx context.Context, businessID uuid.UUID, period Period) (MetricsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	row, ok := s.rows[storeKey(businessID, period.Year, int(period.Month))]
	if !ok {
		return MetricsRow{}, ErrMetricsNotFound
	}
	return row, nil
}

func (s *memoryStore) ListMetrics(ctx context.Context, businessID uuid.UUID, year int) ([]MetricsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	var out []MetricsRow
	for _, row := range s.rows {
		if row.BusinessID == businessID && row.Year == year {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *memoryStore) get(businessID uuid.UUID, year, month int) (MetricsRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[storeKey(businessID, year, month)]
	return row, ok
}
