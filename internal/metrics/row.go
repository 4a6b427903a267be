package metrics

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductMetrics is one persisted managed-product block.
type ProductMetrics struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Quantity      float64   `json:"quantity"`
	Cost          float64   `json:"cost"`
	CostPct       float64   `json:"cost_pct"`
	TargetPct     float64   `json:"target_pct"`
	TargetDiffPct *float64  `json:"target_diff_pct"`
	TargetDiffAmt *float64  `json:"target_diff_amount"`
}

// MetricsRow is the persisted monthly row. It is fully derived and replaced on every refresh.
type MetricsRow struct {
	BusinessID uuid.UUID `json:"business_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`

	ActualWorkDays     int     `json:"actual_work_days"`
	ActualDayWeightSum float64 `json:"actual_day_weight_sum"`
	ExpectedWorkDays   float64 `json:"expected_work_days"`

	TotalIncome          float64  `json:"total_income"`
	IncomeBeforeVAT      float64  `json:"income_before_vat"`
	MonthlyPace          float64  `json:"monthly_pace"`
	DailyAverage         float64  `json:"daily_average"`
	RevenueTarget        float64  `json:"revenue_target"`
	RevenueTargetDiffPct *float64 `json:"revenue_target_diff_pct"`
	RevenueTargetDiffAmt *float64 `json:"revenue_target_diff_amount"`

	LaborCost          float64  `json:"labor_cost"`
	LaborCostPct       float64  `json:"labor_cost_pct"`
	LaborTargetPct     float64  `json:"labor_target_pct"`
	LaborTargetDiffPct *float64 `json:"labor_target_diff_pct"`
	LaborTargetDiffAmt *float64 `json:"labor_target_diff_amount"`

	FoodCost          float64  `json:"food_cost"`
	FoodCostPct       float64  `json:"food_cost_pct"`
	FoodTargetPct     float64  `json:"food_target_pct"`
	FoodTargetDiffPct *float64 `json:"food_target_diff_pct"`
	FoodTargetDiffAmt *float64 `json:"food_target_diff_amount"`

	CurrentExpenses      float64          `json:"current_expenses"`
	CurrentExpensesPct   float64          `json:"current_expenses_pct"`
	CurrentTargetPct     float64          `json:"current_target_pct"`
	CurrentTargetDiffPct *float64         `json:"current_target_diff_pct"`
	CurrentTargetDiffAmt *float64         `json:"current_target_diff_amount"`
	ManagedProducts      []ProductMetrics `json:"managed_products"`

	PrivateIncome     float64 `json:"private_income"`
	PrivateOrders     float64 `json:"private_orders"`
	PrivateAvgTicket  float64 `json:"private_avg_ticket"`
	BusinessIncome    float64 `json:"business_income"`
	BusinessOrders    float64 `json:"business_orders"`
	BusinessAvgTicket float64 `json:"business_avg_ticket"`

	PrevMonthRevenue   float64 `json:"prev_month_revenue"`
	PrevMonthChangePct float64 `json:"prev_month_change_pct"`
	PrevYearRevenue    float64 `json:"prev_year_revenue"`
	PrevYearChangePct  float64 `json:"prev_year_change_pct"`

	VATRate          float64     `json:"vat_rate"`
	VATSource        ValueSource `json:"vat_source"`
	Markup           float64     `json:"markup"`
	MarkupSource     ValueSource `json:"markup_source"`
	ManagerSalary    float64     `json:"manager_salary"`
	ManagerDailyCost float64     `json:"manager_daily_cost"`

	LaborHours float64 `json:"labor_hours"`
	Discounts  float64 `json:"discounts"`

	ComputedAt time.Time `json:"computed_at"`
}

// Row rounds the computation to its persisted form. This is the only place rounding happens.
func (c Computation) Row(computedAt time.Time) MetricsRow {
	products := make([]ProductMetrics, 0, len(c.Products))
	for _, p := range c.Products {
		products = append(products, ProductMetrics{
			ProductID:     p.ProductID,
			Name:          p.Name,
			Quantity:      round2(p.Quantity),
			Cost:          round2(p.Amount),
			CostPct:       round2(p.Pct),
			TargetPct:     round2(p.Target.Value),
			TargetDiffPct: round2Ptr(p.DiffPct),
			TargetDiffAmt: round2Ptr(p.DiffAmount),
		})
	}
	return MetricsRow{
		BusinessID: c.BusinessID,
		Year:       c.Period.Year,
		Month:      int(c.Period.Month),

		ActualWorkDays:     c.ActualWorkDays,
		ActualDayWeightSum: round2(c.ActualDayWeightSum),
		ExpectedWorkDays:   round2(c.ExpectedWorkDays),

		TotalIncome:          round2(c.Revenue.Gross),
		IncomeBeforeVAT:      round2(c.Revenue.BeforeVAT),
		MonthlyPace:          round2(c.Revenue.MonthlyPace),
		DailyAverage:         round2(c.Revenue.DailyAverage),
		RevenueTarget:        round2(c.Revenue.Target.Value),
		RevenueTargetDiffPct: round2Ptr(c.Revenue.DiffPct),
		RevenueTargetDiffAmt: round2Ptr(c.Revenue.DiffAmount),

		LaborCost:          round2(c.Labor.Amount),
		LaborCostPct:       round2(c.Labor.Pct),
		LaborTargetPct:     round2(c.Labor.Target.Value),
		LaborTargetDiffPct: round2Ptr(c.Labor.DiffPct),
		LaborTargetDiffAmt: round2Ptr(c.Labor.DiffAmount),

		FoodCost:          round2(c.Goods.Amount),
		FoodCostPct:       round2(c.Goods.Pct),
		FoodTargetPct:     round2(c.Goods.Target.Value),
		FoodTargetDiffPct: round2Ptr(c.Goods.DiffPct),
		FoodTargetDiffAmt: round2Ptr(c.Goods.DiffAmount),

		CurrentExpenses:      round2(c.Current.Amount),
		CurrentExpensesPct:   round2(c.Current.Pct),
		CurrentTargetPct:     round2(c.Current.Target.Value),
		CurrentTargetDiffPct: round2Ptr(c.Current.DiffPct),
		CurrentTargetDiffAmt: round2Ptr(c.Current.DiffAmount),
		ManagedProducts:      products,

		PrivateIncome:     round2(c.Income.Private.Total),
		PrivateOrders:     round2(c.Income.Private.Orders),
		PrivateAvgTicket:  round2(c.Income.Private.AverageTicket),
		BusinessIncome:    round2(c.Income.Business.Total),
		BusinessOrders:    round2(c.Income.Business.Orders),
		BusinessAvgTicket: round2(c.Income.Business.AverageTicket),

		PrevMonthRevenue:   round2(c.PrevMonth.Pace),
		PrevMonthChangePct: round2(c.PrevMonth.ChangePct),
		PrevYearRevenue:    round2(c.PrevYear.Pace),
		PrevYearChangePct:  round2(c.PrevYear.ChangePct),

		VATRate:          roundN(c.VATRate.Value, 4),
		VATSource:        c.VATRate.Source,
		Markup:           roundN(c.Markup.Value, 4),
		MarkupSource:     c.Markup.Source,
		ManagerSalary:    round2(c.ManagerSalary),
		ManagerDailyCost: round2(c.ManagerDailyCost),

		LaborHours: round2(c.LaborHours),
		Discounts:  round2(c.Discounts),

		ComputedAt: computedAt.UTC(),
	}
}

func round2(v float64) float64 {
	return roundN(v, 2)
}

func roundN(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

// values returns the row in upsertColumns order.
func (m MetricsRow) values() []any {
	products := m.ManagedProducts
	if products == nil {
		products = []ProductMetrics{}
	}
	return []any{
		m.BusinessID, m.Year, m.Month,
		m.ActualWorkDays, m.ActualDayWeightSum, m.ExpectedWorkDays,
		m.TotalIncome, m.IncomeBeforeVAT, m.MonthlyPace, m.DailyAverage,
		m.RevenueTarget, m.RevenueTargetDiffPct, m.RevenueTargetDiffAmt,
		m.LaborCost, m.LaborCostPct, m.LaborTargetPct, m.LaborTargetDiffPct, m.LaborTargetDiffAmt,
		m.FoodCost, m.FoodCostPct, m.FoodTargetPct, m.FoodTargetDiffPct, m.FoodTargetDiffAmt,
		m.CurrentExpenses, m.CurrentExpensesPct, m.CurrentTargetPct, m.CurrentTargetDiffPct, m.CurrentTargetDiffAmt,
		products,
		m.PrivateIncome, m.PrivateOrders, m.PrivateAvgTicket,
		m.BusinessIncome, m.BusinessOrders, m.BusinessAvgTicket,
		m.PrevMonthRevenue, m.PrevMonthChangePct, m.PrevYearRevenue, m.PrevYearChangePct,
		m.VATRate, string(m.VATSource), m.Markup, string(m.MarkupSource), m.ManagerSalary, m.ManagerDailyCost,
		m.LaborHours, m.Discounts,
		m.ComputedAt,
	}
}

// pointers returns scan targets in upsertColumns order.
func (m *MetricsRow) pointers() []any {
	return []any{
		&m.BusinessID, &m.Year, &m.Month,
		&m.ActualWorkDays, &m.ActualDayWeightSum, &m.ExpectedWorkDays,
		&m.TotalIncome, &m.IncomeBeforeVAT, &m.MonthlyPace, &m.DailyAverage,
		&m.RevenueTarget, &m.RevenueTargetDiffPct, &m.RevenueTargetDiffAmt,
		&m.LaborCost, &m.LaborCostPct, &m.LaborTargetPct, &m.LaborTargetDiffPct, &m.LaborTargetDiffAmt,
		&m.FoodCost, &m.FoodCostPct, &m.FoodTargetPct, &m.FoodTargetDiffPct, &m.FoodTargetDiffAmt,
		&m.CurrentExpenses, &m.CurrentExpensesPct, &m.CurrentTargetPct, &m.CurrentTargetDiffPct, &m.CurrentTargetDiffAmt,
		&m.ManagedProducts,
		&m.PrivateIncome, &m.PrivateOrders, &m.PrivateAvgTicket,
		&m.BusinessIncome, &m.BusinessOrders, &m.BusinessAvgTicket,
		&m.PrevMonthRevenue, &m.PrevMonthChangePct, &m.PrevYearRevenue, &m.PrevYearChangePct,
		&m.VATRate, &m.VATSource, &m.Markup, &m.MarkupSource, &m.ManagerSalary, &m.ManagerDailyCost,
		&m.LaborHours, &m.Discounts,
		&m.ComputedAt,
	}
}
