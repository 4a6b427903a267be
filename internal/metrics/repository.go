package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	goalQuery = `SELECT id, business_id, year, month,
	vat_percentage::float8, markup_multiplier::float8, revenue_target::float8,
	labor_cost_target_pct::float8, food_cost_target_pct::float8, current_expenses_target_pct::float8
FROM goals
WHERE business_id = $1 AND year = $2 AND month = $3
LIMIT 1`

	goalProductTargetsQuery = `SELECT product_id, target_pct::float8
FROM goal_product_targets
WHERE goal_id = $1 AND target_pct IS NOT NULL`

	businessDefaultsQuery = `SELECT id, name,
	vat_percentage::float8, markup_multiplier::float8, manager_monthly_salary::float8,
	revenue_target::float8, labor_cost_target_pct::float8, food_cost_target_pct::float8,
	current_expenses_target_pct::float8
FROM businesses
WHERE id = $1`

	scheduleQuery = `SELECT day_of_week, COALESCE(day_factor, 0)::float8
FROM business_schedule
WHERE business_id = $1
ORDER BY day_of_week`
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository reads raw records and persists metrics rows through pgx.
type Repository struct {
	db dbtx
}

// NewRepository builds a repository on the pool. The pool must be able to read every
// business the caller may refresh; authorization happens before the engine is invoked.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func collect[T any](ctx context.Context, db dbtx, q monthQuery, scope Scope, scan func(pgx.CollectableRow) (T, error)) ([]T, error) {
	rows, err := db.Query(ctx, q.SQL(), q.Args(scope)...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

// DailyRecords returns the non-deleted daily entries in scope.
func (r *Repository) DailyRecords(ctx context.Context, scope Scope) ([]DailyRecord, error) {
	records, err := collect(ctx, r.db, dailyRecordsQuery, scope, func(row pgx.CollectableRow) (DailyRecord, error) {
		var rec DailyRecord
		err := row.Scan(&rec.ID, &rec.BusinessID, &rec.EntryDate, &rec.TotalRegister,
			&rec.LaborCost, &rec.LaborHours, &rec.Discounts, &rec.DayFactor)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("daily records: %w", err)
	}
	return records, nil
}

// Invoices returns the non-deleted invoices in scope tagged with the supplier category.
func (r *Repository) Invoices(ctx context.Context, scope Scope) ([]Invoice, error) {
	invoices, err := collect(ctx, r.db, invoicesQuery, scope, func(row pgx.CollectableRow) (Invoice, error) {
		var (
			inv      Invoice
			category string
		)
		err := row.Scan(&inv.ID, &inv.SupplierID, &inv.InvoiceDate, &inv.Subtotal, &category)
		inv.Category = ExpenseCategory(category)
		return inv, err
	})
	if err != nil {
		return nil, fmt.Errorf("invoices: %w", err)
	}
	return invoices, nil
}

// ProductUsage returns managed product usage recorded on daily entries in scope.
func (r *Repository) ProductUsage(ctx context.Context, scope Scope) ([]ProductUsage, error) {
	usage, err := collect(ctx, r.db, productUsageQuery, scope, func(row pgx.CollectableRow) (ProductUsage, error) {
		var u ProductUsage
		err := row.Scan(&u.DailyEntryID, &u.ProductID, &u.ProductName, &u.DisplayOrder, &u.DefaultTargetPct,
			&u.OpeningStock, &u.ReceivedQuantity, &u.ClosingStock, &u.UnitCostAtTime)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("product usage: %w", err)
	}
	return usage, nil
}

// IncomeLines returns the income breakdown lines of daily entries in scope.
func (r *Repository) IncomeLines(ctx context.Context, scope Scope) ([]IncomeLine, error) {
	lines, err := collect(ctx, r.db, incomeLinesQuery, scope, func(row pgx.CollectableRow) (IncomeLine, error) {
		var (
			line   IncomeLine
			origin string
		)
		err := row.Scan(&line.DailyEntryID, &line.SourceID, &line.SourceName, &origin, &line.Amount, &line.OrdersCount)
		line.Origin = IncomeOrigin(origin)
		return line, err
	})
	if err != nil {
		return nil, fmt.Errorf("income lines: %w", err)
	}
	return lines, nil
}

// Goal loads the monthly goal and its product targets. It returns nil when none exists.
func (r *Repository) Goal(ctx context.Context, businessID uuid.UUID, period Period) (*GoalRow, error) {
	var goal GoalRow
	err := r.db.QueryRow(ctx, goalQuery, businessID, period.Year, int(period.Month)).Scan(
		&goal.ID, &goal.BusinessID, &goal.Year, &goal.Month,
		&goal.VATPercentage, &goal.MarkupMultiplier, &goal.RevenueTarget,
		&goal.LaborTargetPct, &goal.FoodTargetPct, &goal.CurrentTargetPct,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	rows, err := r.db.Query(ctx, goalProductTargetsQuery, goal.ID)
	if err != nil {
		return nil, fmt.Errorf("goal product targets: %w", err)
	}
	defer rows.Close()
	goal.ProductTargetPct = make(map[uuid.UUID]float64)
	for rows.Next() {
		var (
			productID uuid.UUID
			target    float64
		)
		if err := rows.Scan(&productID, &target); err != nil {
			return nil, fmt.Errorf("goal product targets: %w", err)
		}
		goal.ProductTargetPct[productID] = target
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goal product targets: %w", err)
	}
	return &goal, nil
}

// BusinessDefaults loads the business-level fallbacks.
func (r *Repository) BusinessDefaults(ctx context.Context, businessID uuid.UUID) (BusinessDefaults, error) {
	var d BusinessDefaults
	err := r.db.QueryRow(ctx, businessDefaultsQuery, businessID).Scan(
		&d.BusinessID, &d.Name,
		&d.VATPercentage, &d.MarkupMultiplier, &d.ManagerSalary,
		&d.RevenueTarget, &d.LaborTargetPct, &d.FoodTargetPct, &d.CurrentTargetPct,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return BusinessDefaults{}, ErrConfigurationMissing
	}
	if err != nil {
		return BusinessDefaults{}, err
	}
	return d, nil
}

// Schedule loads the weekly schedule of a business.
func (r *Repository) Schedule(ctx context.Context, businessID uuid.UUID) ([]ScheduleSlot, error) {
	rows, err := r.db.Query(ctx, scheduleQuery, businessID)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	slots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ScheduleSlot, error) {
		var slot ScheduleSlot
		err := row.Scan(&slot.DayOfWeek, &slot.DayFactor)
		return slot, err
	})
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	return slots, nil
}

// UpsertMetrics writes the row in one statement, replacing any existing row for the key.
func (r *Repository) UpsertMetrics(ctx context.Context, row MetricsRow) error {
	if _, err := r.db.Exec(ctx, upsertMetricsSQL(), row.values()...); err != nil {
		return fmt.Errorf("metrics: persist: %w", err)
	}
	return nil
}

// GetMetrics loads the persisted row of a period.
func (r *Repository) GetMetrics(ctx context.Context, businessID uuid.UUID, period Period) (MetricsRow, error) {
	rows, err := r.db.Query(ctx, selectMetricsSQL("business_id", "year", "month"), businessID, period.Year, int(period.Month))
	if err != nil {
		return MetricsRow{}, err
	}
	row, err := pgx.CollectExactlyOneRow(rows, scanMetricsRow)
	if errors.Is(err, pgx.ErrNoRows) {
		return MetricsRow{}, ErrMetricsNotFound
	}
	if err != nil {
		return MetricsRow{}, err
	}
	return row, nil
}

// ListMetrics loads every persisted month of a year ordered by month.
func (r *Repository) ListMetrics(ctx context.Context, businessID uuid.UUID, year int) ([]MetricsRow, error) {
	rows, err := r.db.Query(ctx, selectMetricsSQL("business_id", "year"), businessID, year)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanMetricsRow)
}

func scanMetricsRow(row pgx.CollectableRow) (MetricsRow, error) {
	var m MetricsRow
	if err := row.Scan(m.pointers()...); err != nil {
		return MetricsRow{}, err
	}
	if m.ManagedProducts == nil {
		m.ManagedProducts = []ProductMetrics{}
	}
	return m, nil
}
