package metrics

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIncomeBeforeVATRoundTrip(t *testing.T) {
	for _, vat := range []float64{0.01, 0.17, 0.18, 0.25} {
		for _, gross := range []float64{0.01, 99.99, 11800, 1234567.89} {
			before := IncomeBeforeVAT(gross, vat)
			require.InDelta(t, gross, before*(1+vat), 1e-6, "gross=%v vat=%v", gross, vat)
			require.InDelta(t, gross, round2(before)*(1+vat), 0.01*(1+vat), "gross=%v vat=%v", gross, vat)
		}
	}
}

func TestCostPercentageGuardsIncome(t *testing.T) {
	require.InDelta(t, 22.0, CostPercentage(2200, 10000), 1e-9)
	require.Zero(t, CostPercentage(2200, 0))
	require.Zero(t, CostPercentage(2200, -50))
}

func TestRevenueKPIsAgainstTarget(t *testing.T) {
	got := RevenueKPIs(11800, 0.18, 10, 22, Resolved{Value: 20000, Source: FromGoal})

	require.InDelta(t, 10000.0, got.BeforeVAT, 1e-9)
	require.InDelta(t, 1000.0, got.DailyAverage, 1e-9)
	require.InDelta(t, 22000.0, got.MonthlyPace, 1e-9)
	require.NotNil(t, got.DiffPct)
	require.NotNil(t, got.DiffAmount)
	require.InDelta(t, 10.0, *got.DiffPct, 1e-9)
	require.InDelta(t, 2000.0, *got.DiffAmount, 1e-9)
}

func TestRevenueKPIsWithoutTargetOrDays(t *testing.T) {
	got := RevenueKPIs(11800, 0.18, 0, 22, Resolved{Source: FromConstant})

	require.InDelta(t, 10000.0, got.BeforeVAT, 1e-9)
	require.Zero(t, got.DailyAverage)
	require.Zero(t, got.MonthlyPace)
	require.Nil(t, got.DiffPct)
	require.Nil(t, got.DiffAmount)
}

func TestCostKPIsUnsetTargetHasNoDiffs(t *testing.T) {
	got := CostKPIs(4500, 10000, Resolved{Source: FromConstant})

	require.InDelta(t, 45.0, got.Pct, 1e-9)
	require.Nil(t, got.DiffPct)
	require.Nil(t, got.DiffAmount)
}

func TestCostKPIsTargetDiff(t *testing.T) {
	got := CostKPIs(2200, 10000, Resolved{Value: 20, Source: FromBusinessDefault})

	require.InDelta(t, 22.0, got.Pct, 1e-9)
	require.InDelta(t, 2.0, *got.DiffPct, 1e-9)
	require.InDelta(t, 200.0, *got.DiffAmount, 1e-9)
}

func TestCostKPIsNoIncome(t *testing.T) {
	got := CostKPIs(800, 0, Resolved{Value: 30, Source: FromGoal})

	require.Zero(t, got.Pct)
	require.InDelta(t, -30.0, *got.DiffPct, 1e-9)
	require.Zero(t, *got.DiffAmount)
	require.False(t, math.IsNaN(*got.DiffAmount))
}

func TestSumInvoicesByCategory(t *testing.T) {
	totals := sumInvoices([]Invoice{
		{Subtotal: 100, Category: CategoryGoods},
		{Subtotal: 50, Category: CategoryGoods},
		{Subtotal: 70, Category: CategoryCurrent},
		{Subtotal: 999, Category: ExpenseCategory("equipment")},
	})
	require.InDelta(t, 150.0, totals[CategoryGoods], 1e-9)
	require.InDelta(t, 70.0, totals[CategoryCurrent], 1e-9)
}

func TestProductKPIsOrderingCapAndFrozenCost(t *testing.T) {
	salmon := uuid.New()
	beef := uuid.New()
	rice := uuid.New()
	oil := uuid.New()
	usage := []ProductUsage{
		{ProductID: oil, ProductName: "Oil", DisplayOrder: 3, OpeningStock: 10, ClosingStock: 5, UnitCostAtTime: 1},
		{ProductID: salmon, ProductName: "Salmon", DisplayOrder: 1, OpeningStock: 10, ReceivedQuantity: 5, ClosingStock: 3, UnitCostAtTime: 50},
		{ProductID: salmon, ProductName: "Salmon", DisplayOrder: 1, OpeningStock: 3, ReceivedQuantity: 10, ClosingStock: 5, UnitCostAtTime: 55},
		{ProductID: rice, ProductName: "Rice", DisplayOrder: 2, OpeningStock: 20, ClosingStock: 10, UnitCostAtTime: 4, DefaultTargetPct: ptr(1)},
		{ProductID: beef, ProductName: "Beef", DisplayOrder: 1, OpeningStock: 4, ClosingStock: 2, UnitCostAtTime: 100},
	}
	resolver := NewGoalResolver(&GoalRow{ProductTargetPct: map[uuid.UUID]float64{salmon: 10}}, BusinessDefaults{})

	got := ProductKPIs(usage, 10000, resolver)

	require.Len(t, got, MaxManagedProducts)
	require.Equal(t, []uuid.UUID{beef, salmon, rice}, []uuid.UUID{got[0].ProductID, got[1].ProductID, got[2].ProductID})

	// 12 units at 50 plus 8 units at 55.
	require.InDelta(t, 20.0, got[1].Quantity, 1e-9)
	require.InDelta(t, 1040.0, got[1].Amount, 1e-9)
	require.InDelta(t, 10.4, got[1].Pct, 1e-9)
	require.Equal(t, FromGoal, got[1].Target.Source)
	require.InDelta(t, 0.4, *got[1].DiffPct, 1e-9)

	require.Nil(t, got[0].DiffPct)
	require.Equal(t, FromBusinessDefault, got[2].Target.Source)
	require.InDelta(t, -0.6, *got[2].DiffPct, 1e-9)
}
