package metrics

import (
	"sort"

	"github.com/google/uuid"
)

// RevenueFigures is the VAT-adjusted revenue block.
type RevenueFigures struct {
	Gross        float64
	BeforeVAT    float64
	DailyAverage float64
	MonthlyPace  float64
	Target       Resolved
	DiffPct      *float64
	DiffAmount   *float64
}

// CostBlock expresses a cost against the VAT-excluded revenue and its target.
type CostBlock struct {
	Amount     float64
	Pct        float64
	Target     Resolved
	DiffPct    *float64
	DiffAmount *float64
}

// ProductBlock is a CostBlock for one managed product.
type ProductBlock struct {
	ProductID uuid.UUID
	Name      string
	Quantity  float64
	CostBlock
}

// dailyTotals sums the raw daily records of one period.
type dailyTotals struct {
	Gross     float64
	Labor     float64
	Hours     float64
	Discounts float64
	WeightSum float64
	Count     int
}

func sumDaily(records []DailyRecord) dailyTotals {
	var t dailyTotals
	for _, rec := range records {
		t.Gross += rec.TotalRegister
		t.Labor += rec.LaborCost
		t.Hours += rec.LaborHours
		t.Discounts += rec.Discounts
		t.WeightSum += rec.DayFactor
		t.Count++
	}
	return t
}

// IncomeBeforeVAT backs VAT out of the gross register total.
func IncomeBeforeVAT(gross, vatRate float64) float64 {
	return safeDiv(gross, 1+vatRate)
}

// CostPercentage returns amount as a percentage of the VAT-excluded income.
func CostPercentage(amount, incomeBeforeVAT float64) float64 {
	if incomeBeforeVAT <= 0 {
		return 0
	}
	return amount / incomeBeforeVAT * 100
}

// RevenueKPIs derives the pace figures and their comparison to the revenue target.
func RevenueKPIs(gross, vatRate, weightSum, expectedWorkDays float64, target Resolved) RevenueFigures {
	before := IncomeBeforeVAT(gross, vatRate)
	daily := safeDiv(before, weightSum)
	pace := daily * expectedWorkDays
	fig := RevenueFigures{
		Gross:        gross,
		BeforeVAT:    before,
		DailyAverage: daily,
		MonthlyPace:  pace,
		Target:       target,
	}
	if target.Value > 0 {
		pct := (pace/target.Value - 1) * 100
		amount := pace - target.Value
		fig.DiffPct = &pct
		fig.DiffAmount = &amount
	}
	return fig
}

// CostKPIs derives the percentage and target differences for one cost figure.
// Target differences stay nil when the target is unset.
func CostKPIs(amount, incomeBeforeVAT float64, target Resolved) CostBlock {
	block := CostBlock{
		Amount: amount,
		Pct:    CostPercentage(amount, incomeBeforeVAT),
		Target: target,
	}
	if !target.IsSet() {
		return block
	}
	diff := block.Pct - target.Value
	diffAmount := diff * incomeBeforeVAT / 100
	block.DiffPct = &diff
	block.DiffAmount = &diffAmount
	return block
}

// sumInvoices totals invoice subtotals per expense category.
func sumInvoices(invoices []Invoice) map[ExpenseCategory]float64 {
	totals := make(map[ExpenseCategory]float64)
	for _, inv := range invoices {
		totals[inv.Category] += inv.Subtotal
	}
	return totals
}

// ProductKPIs groups usage per product, keeps at most MaxManagedProducts ordered by
// display order then name, and costs each one at its frozen unit costs.
func ProductKPIs(usage []ProductUsage, incomeBeforeVAT float64, resolver GoalResolver) []ProductBlock {
	type acc struct {
		id       uuid.UUID
		name     string
		order    int
		target   *float64
		quantity float64
		cost     float64
	}
	byProduct := make(map[uuid.UUID]*acc)
	for _, u := range usage {
		a, ok := byProduct[u.ProductID]
		if !ok {
			a = &acc{id: u.ProductID, name: u.ProductName, order: u.DisplayOrder, target: u.DefaultTargetPct}
			byProduct[u.ProductID] = a
		}
		a.quantity += u.Consumed()
		a.cost += u.Cost()
	}
	list := make([]*acc, 0, len(byProduct))
	for _, a := range byProduct {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].order != list[j].order {
			return list[i].order < list[j].order
		}
		if list[i].name != list[j].name {
			return list[i].name < list[j].name
		}
		return list[i].id.String() < list[j].id.String()
	})
	if len(list) > MaxManagedProducts {
		list = list[:MaxManagedProducts]
	}
	blocks := make([]ProductBlock, 0, len(list))
	for _, a := range list {
		target := resolver.ProductTarget(a.id, a.target)
		blocks = append(blocks, ProductBlock{
			ProductID: a.id,
			Name:      a.name,
			Quantity:  a.quantity,
			CostBlock: CostKPIs(a.cost, incomeBeforeVAT, target),
		})
	}
	return blocks
}
