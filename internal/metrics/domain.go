package metrics

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory classifies supplier invoices.
type ExpenseCategory string

const (
	// CategoryGoods marks goods purchases (food cost).
	CategoryGoods ExpenseCategory = "goods_purchases"
	// CategoryCurrent marks recurring current expenses.
	CategoryCurrent ExpenseCategory = "current_expenses"
	// CategoryLabor is used for goal targets only; labor never comes from invoices.
	CategoryLabor ExpenseCategory = "labor"
)

// IncomeOrigin tags an income source as private or business customers.
type IncomeOrigin string

const (
	// OriginPrivate covers walk-in and private customers.
	OriginPrivate IncomeOrigin = "private"
	// OriginBusiness covers business customers.
	OriginBusiness IncomeOrigin = "business"
)

// MaxManagedProducts caps the number of product blocks on a metrics row.
const MaxManagedProducts = 3

// DailyRecord is one non-deleted day of operational totals.
type DailyRecord struct {
	ID            uuid.UUID
	BusinessID    uuid.UUID
	EntryDate     time.Time
	TotalRegister float64
	LaborCost     float64
	LaborHours    float64
	Discounts     float64
	DayFactor     float64
}

// Invoice carries the pre-tax subtotal and the supplier's expense category.
type Invoice struct {
	ID          uuid.UUID
	SupplierID  uuid.UUID
	InvoiceDate time.Time
	Subtotal    float64
	Category    ExpenseCategory
}

// IncomeLine is a breakdown line joined with its income source.
type IncomeLine struct {
	DailyEntryID uuid.UUID
	SourceID     uuid.UUID
	SourceName   string
	Origin       IncomeOrigin
	Amount       float64
	OrdersCount  float64
}

// GoalRow holds optional monthly overrides. Nil fields fall back to the business defaults.
type GoalRow struct {
	ID               uuid.UUID
	BusinessID       uuid.UUID
	Year             int
	Month            int
	VATPercentage    *float64
	MarkupMultiplier *float64
	RevenueTarget    *float64
	LaborTargetPct   *float64
	FoodTargetPct    *float64
	CurrentTargetPct *float64
	ProductTargetPct map[uuid.UUID]float64
}

// BusinessDefaults holds business level fallbacks.
type BusinessDefaults struct {
	BusinessID       uuid.UUID
	Name             string
	VATPercentage    *float64
	MarkupMultiplier *float64
	ManagerSalary    *float64
	RevenueTarget    *float64
	LaborTargetPct   *float64
	FoodTargetPct    *float64
	CurrentTargetPct *float64
}

// ScheduleSlot maps a weekday (Sunday = 0) to an expected work-day weight.
type ScheduleSlot struct {
	DayOfWeek int
	DayFactor float64
}

// ProductUsage is one day of consumption of a managed product.
type ProductUsage struct {
	DailyEntryID     uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	DisplayOrder     int
	DefaultTargetPct *float64
	OpeningStock     float64
	ReceivedQuantity float64
	ClosingStock     float64
	UnitCostAtTime   float64
}

// Consumed returns opening + received - closing.
func (u ProductUsage) Consumed() float64 {
	return u.OpeningStock + u.ReceivedQuantity - u.ClosingStock
}

// Cost values the consumption at the unit cost stamped when it was recorded.
func (u ProductUsage) Cost() float64 {
	return u.Consumed() * u.UnitCostAtTime
}

// Snapshot is everything one refresh reads before any formula runs.
type Snapshot struct {
	BusinessID     uuid.UUID
	Period         Period
	Daily          []DailyRecord
	Invoices       []Invoice
	Usage          []ProductUsage
	Income         []IncomeLine
	Goal           *GoalRow
	Defaults       BusinessDefaults
	Schedule       []ScheduleSlot
	PrevMonthDaily []DailyRecord
	PrevYearDaily  []DailyRecord
}

var (
	// ErrConfigurationMissing occurs when the business defaults row cannot be found.
	ErrConfigurationMissing = errors.New("metrics: business defaults missing")
	// ErrInvalidPeriod occurs when year or month are out of range.
	ErrInvalidPeriod = errors.New("metrics: invalid period")
	// ErrInvalidBusiness occurs when the business id is empty.
	ErrInvalidBusiness = errors.New("metrics: invalid business id")
	// ErrMetricsNotFound occurs when no row was persisted for the key.
	ErrMetricsNotFound = errors.New("metrics: row not found")
)
