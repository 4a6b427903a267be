package metrics

import (
	"strconv"
	"strings"
)

const (
	tableDailyEntries    = "daily_entries"
	tableIncomeBreakdown = "daily_income_breakdown"
	tableIncomeSources   = "income_sources"
	tableInvoices        = "invoices"
	tableSuppliers       = "suppliers"
	tableProductUsage    = "daily_product_usage"
	tableManagedProducts = "managed_products"
	tableMonthlyMetrics  = "business_monthly_metrics"
)

// monthQuery renders a SELECT restricted to one business and a half-open date range.
// Identifiers come from package constants only; runtime values are always bound as
// $1 (business), $2 (from) and $3 (to).
type monthQuery struct {
	columns    []string
	from       string
	joins      []string
	business   string
	date       string
	softDelete []string
	filters    []string
	orderBy    []string
}

// SQL renders the statement text.
func (q monthQuery) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	for _, join := range q.joins {
		b.WriteString(" JOIN ")
		b.WriteString(join)
	}
	conds := []string{
		q.business + " = $1",
		q.date + " >= $2",
		q.date + " < $3",
	}
	for _, col := range q.softDelete {
		conds = append(conds, col+" IS NULL")
	}
	conds = append(conds, q.filters...)
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(conds, " AND "))
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}
	return b.String()
}

// Args returns the positional arguments matching SQL.
func (q monthQuery) Args(scope Scope) []any {
	return []any{scope.BusinessID, scope.From, scope.To}
}

var (
	dailyRecordsQuery = monthQuery{
		columns: []string{
			"de.id",
			"de.business_id",
			"de.entry_date",
			"COALESCE(de.total_register, 0)::float8",
			"COALESCE(de.labor_cost, 0)::float8",
			"COALESCE(de.labor_hours, 0)::float8",
			"COALESCE(de.discounts, 0)::float8",
			"COALESCE(de.day_factor, 1)::float8",
		},
		from:       tableDailyEntries + " de",
		business:   "de.business_id",
		date:       "de.entry_date",
		softDelete: []string{"de.deleted_at"},
		orderBy:    []string{"de.entry_date"},
	}

	invoicesQuery = monthQuery{
		columns: []string{
			"i.id",
			"i.supplier_id",
			"i.invoice_date",
			"COALESCE(i.subtotal, 0)::float8",
			"COALESCE(s.expense_type, '')",
		},
		from:       tableInvoices + " i",
		joins:      []string{tableSuppliers + " s ON s.id = i.supplier_id"},
		business:   "i.business_id",
		date:       "i.invoice_date",
		softDelete: []string{"i.deleted_at"},
		orderBy:    []string{"i.invoice_date", "i.id"},
	}

	productUsageQuery = monthQuery{
		columns: []string{
			"u.daily_entry_id",
			"u.product_id",
			"p.name",
			"COALESCE(p.display_order, 0)::int4",
			"p.target_pct::float8",
			"COALESCE(u.opening_stock, 0)::float8",
			"COALESCE(u.received_quantity, 0)::float8",
			"COALESCE(u.closing_stock, 0)::float8",
			"COALESCE(u.unit_cost_at_time, 0)::float8",
		},
		from: tableProductUsage + " u",
		joins: []string{
			tableDailyEntries + " de ON de.id = u.daily_entry_id",
			tableManagedProducts + " p ON p.id = u.product_id",
		},
		business:   "de.business_id",
		date:       "de.entry_date",
		softDelete: []string{"de.deleted_at"},
		filters:    []string{"p.is_active"},
		orderBy:    []string{"de.entry_date", "p.display_order"},
	}

	incomeLinesQuery = monthQuery{
		columns: []string{
			"b.daily_entry_id",
			"src.id",
			"src.name",
			"COALESCE(src.income_type, '')",
			"COALESCE(b.amount, 0)::float8",
			"COALESCE(b.orders_count, 0)::float8",
		},
		from: tableIncomeBreakdown + " b",
		joins: []string{
			tableDailyEntries + " de ON de.id = b.daily_entry_id",
			tableIncomeSources + " src ON src.id = b.income_source_id",
		},
		business:   "de.business_id",
		date:       "de.entry_date",
		softDelete: []string{"de.deleted_at"},
		orderBy:    []string{"de.entry_date", "src.name"},
	}
)

// upsertColumns lists the persisted columns in insert order. The key columns come first.
var upsertColumns = []string{
	"business_id", "year", "month",
	"actual_work_days", "actual_day_weight_sum", "expected_work_days",
	"total_income", "income_before_vat", "monthly_pace", "daily_average",
	"revenue_target", "revenue_target_diff_pct", "revenue_target_diff_amount",
	"labor_cost", "labor_cost_pct", "labor_target_pct", "labor_target_diff_pct", "labor_target_diff_amount",
	"food_cost", "food_cost_pct", "food_target_pct", "food_target_diff_pct", "food_target_diff_amount",
	"current_expenses", "current_expenses_pct", "current_target_pct", "current_target_diff_pct", "current_target_diff_amount",
	"managed_products",
	"private_income", "private_orders", "private_avg_ticket",
	"business_income", "business_orders", "business_avg_ticket",
	"prev_month_revenue", "prev_month_change_pct", "prev_year_revenue", "prev_year_change_pct",
	"vat_rate", "vat_source", "markup", "markup_source", "manager_salary", "manager_daily_cost",
	"labor_hours", "discounts",
	"computed_at",
}

const upsertKeyColumns = 3

// upsertMetricsSQL renders the single-statement insert-or-replace of a metrics row.
func upsertMetricsSQL() string {
	placeholders := make([]string, len(upsertColumns))
	for i := range upsertColumns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	updates := make([]string, 0, len(upsertColumns)-upsertKeyColumns)
	for _, col := range upsertColumns[upsertKeyColumns:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	return "INSERT INTO " + tableMonthlyMetrics + " (" + strings.Join(upsertColumns, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ") ON CONFLICT (business_id, year, month) DO UPDATE SET " +
		strings.Join(updates, ", ")
}

// selectMetricsSQL renders a read of persisted rows filtered by the given key columns.
func selectMetricsSQL(keys ...string) string {
	conds := make([]string, len(keys))
	for i, key := range keys {
		conds[i] = key + " = $" + strconv.Itoa(i+1)
	}
	return "SELECT " + strings.Join(upsertColumns, ", ") + " FROM " + tableMonthlyMetrics +
		" WHERE " + strings.Join(conds, " AND ") + " ORDER BY year, month"
}
