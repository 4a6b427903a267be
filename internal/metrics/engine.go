package metrics

import "github.com/google/uuid"

// Computation holds every derived figure at full precision.
type Computation struct {
	BusinessID uuid.UUID
	Period     Period

	ActualWorkDays     int
	ActualDayWeightSum float64
	ExpectedWorkDays   float64

	Revenue  RevenueFigures
	Labor    CostBlock
	Goods    CostBlock
	Current  CostBlock
	Products []ProductBlock
	Income   IncomeBreakdown

	PrevMonth Comparison
	PrevYear  Comparison

	VATRate          Resolved
	Markup           Resolved
	ManagerSalary    float64
	ManagerDailyCost float64
	LaborHours       float64
	Discounts        float64
}

// Compute runs the formula pipeline over a fetched snapshot. It performs no I/O.
func Compute(snap Snapshot) Computation {
	resolver := NewGoalResolver(snap.Goal, snap.Defaults)
	vat := resolver.VATRate()
	markup := resolver.Markup()

	totals := sumDaily(snap.Daily)
	expected := ExpectedWorkDays(snap.Schedule, snap.Period)

	var salary float64
	if snap.Defaults.ManagerSalary != nil {
		salary = *snap.Defaults.ManagerSalary
	}
	labor := AllocateLabor(LaborInput{
		RecordedLaborCost:  totals.Labor,
		ActualDayWeightSum: totals.WeightSum,
		ExpectedWorkDays:   expected,
		ManagerSalary:      salary,
		Markup:             markup.Value,
	})

	revenue := RevenueKPIs(totals.Gross, vat.Value, totals.WeightSum, expected, resolver.RevenueTarget())
	invoices := sumInvoices(snap.Invoices)

	return Computation{
		BusinessID:         snap.BusinessID,
		Period:             snap.Period,
		ActualWorkDays:     totals.Count,
		ActualDayWeightSum: totals.WeightSum,
		ExpectedWorkDays:   expected,
		Revenue:            revenue,
		Labor:              CostKPIs(labor.Total, revenue.BeforeVAT, resolver.CategoryTarget(CategoryLabor)),
		Goods:              CostKPIs(invoices[CategoryGoods], revenue.BeforeVAT, resolver.CategoryTarget(CategoryGoods)),
		Current:            CostKPIs(invoices[CategoryCurrent], revenue.BeforeVAT, resolver.CategoryTarget(CategoryCurrent)),
		Products:           ProductKPIs(snap.Usage, revenue.BeforeVAT, resolver),
		Income:             BreakdownIncome(snap.Income),
		PrevMonth:          Compare(snap.PrevMonthDaily, snap.Period.PreviousMonth(), snap.Schedule, vat.Value, revenue.MonthlyPace),
		PrevYear:           Compare(snap.PrevYearDaily, snap.Period.PreviousYear(), snap.Schedule, vat.Value, revenue.MonthlyPace),
		VATRate:            vat,
		Markup:             markup,
		ManagerSalary:      salary,
		ManagerDailyCost:   labor.ManagerDailyCost,
		LaborHours:         totals.Hours,
		Discounts:          totals.Discounts,
	}
}
